package models

import "time"

// Role identifies who produced a turn
type Role string

const (
	RoleUser  Role = "user"
	RoleModel Role = "model"
)

// ChatTurn represents one message in a conversation.
// Text of a pending model turn is empty until it is resolved.
type ChatTurn struct {
	Role      Role      `json:"role"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
	IsError   bool      `json:"is_error,omitempty"`
}

// IsUser reports whether the turn was written by the user
func (t ChatTurn) IsUser() bool {
	return t.Role == RoleUser
}

// IsPending reports whether the turn is a model turn still awaiting text
func (t ChatTurn) IsPending() bool {
	return t.Role == RoleModel && !t.IsError && t.Text == ""
}

// Clock formats the timestamp the way the chat shows it (HH:MM)
func (t ChatTurn) Clock() string {
	return t.Timestamp.Format("15:04")
}
