package contract

// Role identifies which side of the conversation authored a turn.
type Role string

const (
	RoleUser  Role = "user"
	RoleModel Role = "model"
)

// Gemma renders a conversation as a single text block delimited by turn
// markers. Model output may leak them back and must be stripped.
const (
	StartOfTurn = "<start_of_turn>"
	EndOfTurn   = "<end_of_turn>"
)

// Turn is one message in the conversation history. Synthetic turns
// (tool results, tool errors) carry RoleUser so the model treats them as
// new information to react to.
type Turn struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Directive is a structured function-call instruction extracted from
// free-form generated text. Ephemeral, never persisted.
type Directive struct {
	Name       string         `json:"name"`
	Parameters map[string]any `json:"parameters"`
}
