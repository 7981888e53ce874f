// Package prompt embeds the system instructions template.
package prompt

import (
	_ "embed"
	"strings"
)

//go:embed template/system.txt
var systemRaw string

const tagPlaceholder = "{{TAG_LIST}}"

// SystemInstructions renders the template with the catalog's tag
// vocabulary so the model only suggests tags that exist.
func SystemInstructions(tags []string) string {
	return strings.TrimSpace(strings.ReplaceAll(systemRaw, tagPlaceholder, strings.Join(tags, ", ")))
}
