package models

import "time"

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

type Conversation struct {
	ID      uint   `gorm:"primaryKey" json:"id"`
	UserID  int64  `gorm:"index" json:"user_id"`
	Role    string `json:"role"` // user / assistant
	Content string `json:"content"`

	CreatedAt time.Time `json:"created_at"`
}
