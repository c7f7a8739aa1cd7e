package llm

// Message roles understood by every provider.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message represents a single role-tagged message in a prompt.
type Message struct {
	Role    string `json:"role"`    // "system", "user", "assistant"
	Content string `json:"content"` // literal text content
}

// NewMessage creates a text message with the given role and content.
func NewMessage(role, text string) Message {
	return Message{
		Role:    role,
		Content: text,
	}
}
