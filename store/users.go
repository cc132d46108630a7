package store

import (
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"gembot/logger"
	"gembot/models"
)

const dayFormat = "2006-01-02"

// Allowance is the result of a quota check. Unlimited is a tagged value,
// not a big number: callers must neither decrement the counter nor warn
// about low balance when it is set.
type Allowance struct {
	Unlimited bool
	Remaining int
}

func (s *Store) GetUser(userID int64) (*models.User, error) {
	var user models.User
	if err := s.db.Where("user_id = ?", userID).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

// CreateUser registers a user on first contact. Calling it again for the
// same ID is a no-op: the first write wins.
func (s *Store) CreateUser(userID int64, username string) error {
	user := models.User{
		UserID:          userID,
		Username:        username,
		Plan:            models.PlanFree,
		DailyRequests:   0,
		LastRequestDate: time.Now().Format(dayFormat),
	}
	res := s.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&user)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected > 0 {
		logger.Get().Info("new user registered", zap.Int64("user_id", userID), zap.String("username", username))
	}
	return nil
}

// SetPlan overwrites the plan and premium_expires together. Premium
// requires days > 0; vip and free always clear the expiry.
func (s *Store) SetPlan(userID int64, plan string, days int) error {
	return setPlan(s.db, userID, plan, days)
}

func setPlan(db *gorm.DB, userID int64, plan string, days int) error {
	updates := map[string]interface{}{"plan": plan, "premium_expires": nil}
	switch plan {
	case models.PlanVIP, models.PlanFree:
	case models.PlanPremium:
		if days <= 0 {
			return ErrInvalidPromo
		}
		updates["premium_expires"] = time.Now().AddDate(0, 0, days)
	default:
		return fmt.Errorf("unknown plan %q", plan)
	}

	res := db.Model(&models.User{}).Where("user_id = ?", userID).Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}

// RemainingRequests reports how many AI requests the user has left today.
// Despite looking like a read, it may write: an expired premium plan is
// demoted to free here, and the daily counter is reset on the first call
// of a new day.
func (s *Store) RemainingRequests(userID int64) (Allowance, error) {
	user, err := s.GetUser(userID)
	if err != nil {
		return Allowance{}, err
	}

	switch user.Plan {
	case models.PlanVIP:
		return Allowance{Unlimited: true}, nil
	case models.PlanPremium:
		if user.PremiumExpires != nil && user.PremiumExpires.After(time.Now()) {
			return Allowance{Unlimited: true}, nil
		}
		// premium ran out: demote and fall through to the free computation
		if err := s.SetPlan(userID, models.PlanFree, 0); err != nil {
			return Allowance{}, err
		}
		logger.Get().Info("premium expired, demoted to free", zap.Int64("user_id", userID))
	}

	today := time.Now().Format(dayFormat)
	if user.LastRequestDate != today {
		err := s.db.Model(&models.User{}).Where("user_id = ?", userID).
			Updates(map[string]interface{}{"daily_requests": 0, "last_request_date": today}).Error
		if err != nil {
			return Allowance{}, err
		}
		return Allowance{Remaining: s.dailyLimit}, nil
	}

	remaining := s.dailyLimit - user.DailyRequests
	if remaining < 0 {
		remaining = 0
	}
	return Allowance{Remaining: remaining}, nil
}

// ConsumeRequest bumps the daily counter by one. There is no bounds
// check: the caller is expected to have verified remaining > 0 first.
func (s *Store) ConsumeRequest(userID int64) error {
	return s.db.Model(&models.User{}).Where("user_id = ?", userID).
		UpdateColumn("daily_requests", gorm.Expr("daily_requests + 1")).Error
}

func (s *Store) ListUsers() ([]models.User, error) {
	var users []models.User
	if err := s.db.Order("created_at desc").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}
