package models

import (
	"time"
)

// NotificationType categorizes user-facing notifications
type NotificationType string

const (
	NotificationReferral   NotificationType = "REFERRAL"
	NotificationTask       NotificationType = "TASK"
	NotificationBonus      NotificationType = "BONUS"
	NotificationWithdrawal NotificationType = "WITHDRAWAL"
)

// Notification is a queued user-facing message. Delivery (push, bot message)
// happens elsewhere and is best-effort.
type Notification struct {
	ID      uint             `gorm:"primaryKey" json:"id"`
	UserID  uint             `gorm:"not null;index" json:"user_id"`
	User    *User            `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Type    NotificationType `gorm:"size:32;not null" json:"type"`
	Title   string           `gorm:"size:255;not null" json:"title"`
	Message string           `gorm:"type:text" json:"message"`
	Payload string           `gorm:"type:text" json:"payload,omitempty"`
	Read    bool             `gorm:"default:false;index" json:"read"`

	CreatedAt time.Time `json:"created_at"`
}

// TableName specifies the table name for Notification model
func (Notification) TableName() string {
	return "notifications"
}
