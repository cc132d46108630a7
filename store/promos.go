package store

import (
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"gembot/logger"
	"gembot/models"
)

// CreatePromo registers a code issued by an admin. Codes are stored
// uppercase; re-issuing an existing code replaces it.
func (s *Store) CreatePromo(code, promoType string, days, requests, uses int) (*models.PromoCode, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return nil, ErrInvalidPromo
	}

	switch promoType {
	case models.PromoVIP:
		days, requests = 0, 0
	case models.PromoPremium:
		if days <= 0 {
			return nil, ErrInvalidPromo
		}
		requests = 0
	case models.PromoRequests:
		if requests <= 0 {
			return nil, ErrInvalidPromo
		}
		days = 0
	default:
		return nil, ErrInvalidPromo
	}

	if uses < 1 {
		uses = 1
	}

	promo := models.PromoCode{
		Code:      code,
		Type:      promoType,
		Days:      days,
		Requests:  requests,
		UsesLeft:  uses,
		CreatedAt: time.Now(),
	}
	if err := s.db.Clauses(clause.OnConflict{UpdateAll: true}).Create(&promo).Error; err != nil {
		return nil, err
	}

	logger.Get().Info("promo code created", zap.String("code", code), zap.String("type", promoType), zap.Int("uses", uses))
	return &promo, nil
}

func (s *Store) ListPromos() ([]models.PromoCode, error) {
	var promos []models.PromoCode
	if err := s.db.Order("created_at desc").Find(&promos).Error; err != nil {
		return nil, err
	}
	return promos, nil
}

// RedeemPromo validates and applies a code for a user in one transaction,
// so two racing redemptions of the last remaining use cannot both
// succeed. All checks pass before anything is written. The applied promo
// is returned so the caller can render a confirmation.
func (s *Store) RedeemPromo(userID int64, code string) (*models.PromoCode, error) {
	code = strings.ToUpper(strings.TrimSpace(code))

	var promo models.PromoCode
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("code = ?", code).First(&promo).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrPromoNotFound
			}
			return err
		}

		var used models.PromoRedemption
		err := tx.Where("user_id = ? AND code = ?", userID, code).First(&used).Error
		if err == nil {
			return ErrPromoAlreadyUsed
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		if promo.UsesLeft <= 0 {
			return ErrPromoExhausted
		}

		switch promo.Type {
		case models.PromoVIP:
			if err := setPlan(tx, userID, models.PlanVIP, 0); err != nil {
				return err
			}
		case models.PromoPremium:
			if err := setPlan(tx, userID, models.PlanPremium, promo.Days); err != nil {
				return err
			}
		case models.PromoRequests:
			// Grants allowance by reducing the consumed count. The
			// counter can go negative; RemainingRequests clamps at zero
			// on the other side, never here.
			res := tx.Model(&models.User{}).Where("user_id = ?", userID).
				UpdateColumn("daily_requests", gorm.Expr("daily_requests - ?", promo.Requests))
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return ErrUserNotFound
			}
		}

		if err := tx.Create(&models.PromoRedemption{UserID: userID, Code: code}).Error; err != nil {
			return err
		}
		return tx.Model(&models.PromoCode{}).Where("code = ?", code).
			UpdateColumn("uses_left", gorm.Expr("uses_left - 1")).Error
	})
	if err != nil {
		return nil, err
	}

	logger.Get().Info("promo code redeemed", zap.Int64("user_id", userID), zap.String("code", code), zap.String("type", promo.Type))
	return &promo, nil
}
