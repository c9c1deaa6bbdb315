package services

import (
	"encoding/json"
	"fmt"

	"gorm.io/gorm"
	"rewards-backend/internal/models"
)

// NotificationService queues user-facing notifications. Creation is best-effort
// for callers: delivery happens outside this service.
type NotificationService struct {
	db *gorm.DB
}

func NewNotificationService(db *gorm.DB) *NotificationService {
	return &NotificationService{db: db}
}

// CreateTx writes a notification inside an existing transaction
func (s *NotificationService) CreateTx(tx *gorm.DB, userID uint, ntype models.NotificationType, title, message string, payload interface{}) error {
	n := models.Notification{
		UserID:  userID,
		Type:    ntype,
		Title:   title,
		Message: message,
	}
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to marshal notification payload: %w", err)
		}
		n.Payload = string(raw)
	}
	if err := tx.Create(&n).Error; err != nil {
		return fmt.Errorf("failed to create notification: %w", err)
	}
	return nil
}

// Create writes a notification outside any transaction
func (s *NotificationService) Create(userID uint, ntype models.NotificationType, title, message string, payload interface{}) error {
	return s.CreateTx(s.db, userID, ntype, title, message, payload)
}

// List returns the most recent notifications for a user
func (s *NotificationService) List(userID uint, limit int) ([]models.Notification, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	var notifications []models.Notification
	if err := s.db.Where("user_id = ?", userID).
		Order("id DESC").Limit(limit).Find(&notifications).Error; err != nil {
		return nil, err
	}
	return notifications, nil
}

// MarkRead marks a single notification as read
func (s *NotificationService) MarkRead(userID, notificationID uint) error {
	res := s.db.Model(&models.Notification{}).
		Where("id = ? AND user_id = ?", notificationID, userID).
		Update("read", true)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// MarkAllRead marks every unread notification for the user as read
func (s *NotificationService) MarkAllRead(userID uint) (int64, error) {
	res := s.db.Model(&models.Notification{}).
		Where("user_id = ? AND read = ?", userID, false).
		Update("read", true)
	return res.RowsAffected, res.Error
}
