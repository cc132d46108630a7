package store

import (
	"go.uber.org/zap"

	"gembot/logger"
	"gembot/models"
)

// RecordTurn appends one conversation turn. Role is "user" or "assistant".
func (s *Store) RecordTurn(userID int64, role, content string) error {
	return s.db.Create(&models.Conversation{
		UserID:  userID,
		Role:    role,
		Content: content,
	}).Error
}

// History returns the most recent limit turns, oldest first.
func (s *Store) History(userID int64, limit int) ([]models.Conversation, error) {
	var turns []models.Conversation
	err := s.db.Where("user_id = ?", userID).
		Order("id desc").Limit(limit).Find(&turns).Error
	if err != nil {
		return nil, err
	}
	for i, j := 0, len(turns)-1; i < j; i, j = i+1, j-1 {
		turns[i], turns[j] = turns[j], turns[i]
	}
	return turns, nil
}

func (s *Store) ClearHistory(userID int64) error {
	err := s.db.Where("user_id = ?", userID).Delete(&models.Conversation{}).Error
	if err != nil {
		return err
	}
	logger.Get().Info("history cleared", zap.Int64("user_id", userID))
	return nil
}

// MessageCount counts the turns the user sent, not the assistant's.
func (s *Store) MessageCount(userID int64) (int64, error) {
	var count int64
	err := s.db.Model(&models.Conversation{}).
		Where("user_id = ? AND role = ?", userID, models.RoleUser).
		Count(&count).Error
	return count, err
}
