package orchestrator

import (
	"regexp"
	"strings"

	contractx "github.com/example/tablebook/agent/contract"
)

// Gemma occasionally leaks its own turn scaffolding back into the
// completion. Strip it before the text reaches extraction or the user.
var (
	trailingEndOfTurn = regexp.MustCompile(regexp.QuoteMeta(contractx.EndOfTurn) + `\s*$`)
	turnPrefixes      = regexp.MustCompile(regexp.QuoteMeta(contractx.StartOfTurn) + `(?:model|user)\s*`)
	parenWrap         = regexp.MustCompile(`(?s)^\s*\((.*)\)\s*$`)
)

func sanitize(text string) string {
	text = trailingEndOfTurn.ReplaceAllString(text, "")
	text = turnPrefixes.ReplaceAllString(text, "")
	if m := parenWrap.FindStringSubmatch(text); m != nil {
		text = m[1]
	}
	return strings.TrimSpace(text)
}
