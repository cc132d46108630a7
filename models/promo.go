package models

import "time"

const (
	PromoVIP      = "vip"
	PromoPremium  = "premium"
	PromoRequests = "requests"
)

// PromoCode rows are kept even after the use pool hits zero.
type PromoCode struct {
	Code string `gorm:"primaryKey" json:"code"` // always stored uppercase
	Type string `json:"type"`                   // vip / premium / requests

	Days     int `json:"days"`     // premium only
	Requests int `json:"requests"` // requests only

	UsesLeft  int       `json:"uses_left"`
	CreatedAt time.Time `json:"created_at"`
}

// PromoRedemption marks that a user has already redeemed a code.
// The composite key enforces one redemption per user per code.
type PromoRedemption struct {
	UserID int64     `gorm:"primaryKey" json:"user_id"`
	Code   string    `gorm:"primaryKey" json:"code"`
	UsedAt time.Time `gorm:"autoCreateTime" json:"used_at"`
}
