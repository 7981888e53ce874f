// Package extract locates function-call directives embedded in
// free-form model output.
package extract

import (
	"strings"

	"github.com/bytedance/sonic"

	contractx "github.com/example/tablebook/agent/contract"
)

const directiveKey = `"function_call"`

type envelope struct {
	FunctionCall *struct {
		Name       string         `json:"name"`
		Parameters map[string]any `json:"parameters"`
	} `json:"function_call"`
}

// Directive scans text for an embedded {"function_call": ...} object.
// The object may be surrounded by ordinary prose. ok is false when no
// well-formed directive is present; that is a normal outcome, not an
// error, and callers treat the whole text as a plain answer.
func Directive(text string) (contractx.Directive, bool) {
	keyIdx := strings.Index(text, directiveKey)
	if keyIdx < 0 {
		return contractx.Directive{}, false
	}

	// Candidates are the balanced objects opened by each brace before
	// the key, nearest first; the first one that decodes wins.
	for start := strings.LastIndex(text[:keyIdx], "{"); start >= 0; start = strings.LastIndex(text[:start], "{") {
		end, ok := matchBrace(text, start)
		if !ok || end < keyIdx {
			continue
		}
		var env envelope
		if err := sonic.Unmarshal([]byte(text[start:end+1]), &env); err != nil || env.FunctionCall == nil {
			continue
		}
		return contractx.Directive{
			Name:       env.FunctionCall.Name,
			Parameters: env.FunctionCall.Parameters,
		}, true
	}
	return contractx.Directive{}, false
}

// matchBrace returns the index of the brace closing the one at start,
// skipping braces inside JSON strings.
func matchBrace(s string, start int) (int, bool) {
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		ch := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}
		switch ch {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i, true
			}
		}
	}
	return 0, false
}
