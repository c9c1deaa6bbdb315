package models

import (
	"time"
)

// Wallet mirrors a user's balance plus lifetime earn/withdraw aggregates.
// It is updated in lockstep with User.Balance inside the same transaction.
type Wallet struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	UserID         uint      `gorm:"uniqueIndex;not null" json:"user_id"`
	User           *User     `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Balance        int64     `gorm:"not null;default:0" json:"balance"`
	TotalEarned    int64     `gorm:"not null;default:0" json:"total_earned"`
	TotalWithdrawn int64     `gorm:"not null;default:0" json:"total_withdrawn"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// TableName specifies the table name for Wallet model
func (Wallet) TableName() string {
	return "wallets"
}
