package models

import "time"

const (
	PlanFree    = "free"
	PlanPremium = "premium"
	PlanVIP     = "vip"
)

type User struct {
	UserID   int64  `gorm:"primaryKey" json:"user_id"` // Telegram chat ID
	Username string `json:"username"`

	Plan string `gorm:"default:free" json:"plan"`
	// Only set while Plan == premium. VIP never expires.
	PremiumExpires *time.Time `json:"premium_expires"`

	DailyRequests   int    `gorm:"default:0" json:"daily_requests"`
	LastRequestDate string `json:"last_request_date"` // YYYY-MM-DD, day of last counter reset

	CreatedAt time.Time `json:"created_at"`
}
