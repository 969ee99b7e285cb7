package model

// ChatRole identifies who wrote a chat message.
type ChatRole string

// Chat roles.
const (
	RoleUser  ChatRole = "user"
	RoleModel ChatRole = "model"
)

// ChatMessage is one turn in a follow-up conversation.
type ChatMessage struct {
	Role ChatRole `json:"role"`
	Text string   `json:"text"`
}
