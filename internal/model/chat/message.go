package chat

// Role tags the speaker of a Turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is one message exchanged in a conversation.
type Turn struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// UserTurn builds a user Turn.
func UserTurn(content string) Turn {
	return Turn{Role: RoleUser, Content: content}
}

// AssistantTurn builds an assistant Turn.
func AssistantTurn(content string) Turn {
	return Turn{Role: RoleAssistant, Content: content}
}
