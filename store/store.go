package store

import (
	"errors"

	"gorm.io/gorm"
)

// Recoverable domain errors. Anything else coming out of the store is a
// storage failure and should abort the in-flight request.
var (
	ErrUserNotFound     = errors.New("user not found")
	ErrPromoNotFound    = errors.New("promo code not found")
	ErrPromoAlreadyUsed = errors.New("promo code already used")
	ErrPromoExhausted   = errors.New("promo code exhausted")
	ErrInvalidPromo     = errors.New("invalid promo code parameters")
)

// Store owns all persisted state: users, promo codes, the redemption
// ledger and conversation history. Every method is its own transaction;
// no cross-call transactions are exposed.
type Store struct {
	db         *gorm.DB
	dailyLimit int
}

func New(db *gorm.DB, dailyLimit int) *Store {
	return &Store{db: db, dailyLimit: dailyLimit}
}

// DailyLimit is the free-plan request allowance per calendar day.
func (s *Store) DailyLimit() int {
	return s.dailyLimit
}
