package llm

import (
	"strings"

	contractx "github.com/example/tablebook/agent/contract"
)

// FormatHistory renders the conversation as a turn-marked prompt. The
// system instructions ride inside the first user turn and the prompt
// always ends with an open model turn for the completion.
func FormatHistory(turns []contractx.Turn, instructions string) string {
	var b strings.Builder

	if len(turns) == 0 {
		b.WriteString(contractx.StartOfTurn)
		b.WriteString(string(contractx.RoleUser))
		b.WriteByte('\n')
		b.WriteString(instructions)
		b.WriteString(contractx.EndOfTurn)
		b.WriteByte('\n')
		b.WriteString(contractx.StartOfTurn)
		b.WriteString(string(contractx.RoleModel))
		b.WriteByte('\n')
		return b.String()
	}

	for i, turn := range turns {
		content := turn.Content
		if i == 0 && turn.Role == contractx.RoleUser {
			content = instructions + "\n" + content
		}
		b.WriteString(contractx.StartOfTurn)
		b.WriteString(string(turn.Role))
		b.WriteByte('\n')
		b.WriteString(content)
		b.WriteString(contractx.EndOfTurn)
		b.WriteByte('\n')
	}
	b.WriteString(contractx.StartOfTurn)
	b.WriteString(string(contractx.RoleModel))
	b.WriteByte('\n')
	return b.String()
}
