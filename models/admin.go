package models

import "time"

// Admin is a dashboard account, not a Telegram user.
type Admin struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	Username string `gorm:"unique" json:"username"`
	Password string `json:"-"`
	Role     string `json:"role"`

	CreatedAt time.Time `json:"created_at"`
}
