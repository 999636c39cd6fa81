package memory

// Role identifies who authored a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// DefaultCapacity is the number of messages kept per user.
const DefaultCapacity = 10

// Message is one turn of a conversation.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Store is short-term conversation memory keyed by user ID.
// Implementations must be safe for concurrent use.
type Store interface {
	// Append adds a message at the tail of the user's history, evicting
	// the oldest messages once the capacity is exceeded.
	Append(userID string, role Role, content string)

	// Read returns a copy of the user's history, oldest first.
	// An unseen user gets an empty history.
	Read(userID string) []Message

	// Reset clears the user's history.
	Reset(userID string)
}
