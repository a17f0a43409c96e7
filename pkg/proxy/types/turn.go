package types

import "fmt"

// Role identifies the author of a turn.
type Role string

// Turn roles.
const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is one entry of a conversation transcript.
// Turns are values; a transcript never mutates a turn after appending it.
type Turn struct {
	// Role is the author of the turn.
	Role Role `json:"role"`

	// Content is the turn text. Assistant content is markdown.
	Content string `json:"content"`
}

// String implements fmt.Stringer for log output.
func (t Turn) String() string {
	return fmt.Sprintf("%s(%d chars)", t.Role, len(t.Content))
}

// UserTurn returns a turn authored by the user.
func UserTurn(content string) Turn {
	return Turn{Role: RoleUser, Content: content}
}

// AssistantTurn returns a turn authored by the model.
func AssistantTurn(content string) Turn {
	return Turn{Role: RoleAssistant, Content: content}
}

// SystemTurn returns a system instruction turn.
func SystemTurn(content string) Turn {
	return Turn{Role: RoleSystem, Content: content}
}
