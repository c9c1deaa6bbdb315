package models

import (
	"time"
)

// UserStatus marks account standing. Users are never hard-deleted.
type UserStatus string

const (
	UserStatusActive UserStatus = "ACTIVE"
	UserStatusBanned UserStatus = "BANNED"
)

// User represents a Telegram mini-app user and their spendable balance
type User struct {
	ID           uint   `gorm:"primaryKey" json:"id"`
	TelegramID   int64  `gorm:"uniqueIndex;not null" json:"telegram_id"`
	Username     string `gorm:"size:64;index" json:"username"`
	FirstName    string `gorm:"size:128" json:"first_name"`
	LanguageCode string `gorm:"size:8" json:"language_code"`

	Balance        int64 `gorm:"not null;default:0" json:"balance"`
	TasksCompleted int   `gorm:"default:0" json:"tasks_completed"`
	ReferralCount  int   `gorm:"default:0" json:"referral_count"`

	ReferralCode string `gorm:"uniqueIndex;size:20;not null" json:"referral_code"`
	ReferredByID *uint  `gorm:"index" json:"referred_by_id,omitempty"`
	ReferredBy   *User  `gorm:"foreignKey:ReferredByID" json:"referred_by,omitempty"`

	Status  UserStatus `gorm:"size:20;default:ACTIVE" json:"status"`
	IsAdmin bool       `gorm:"default:false" json:"is_admin"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the table name for User model
func (User) TableName() string {
	return "users"
}
