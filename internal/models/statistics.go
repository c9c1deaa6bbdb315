package models

import (
	"time"
)

// UserStatistics holds streak state and period earnings aggregates for a user.
// LastBonusClaimAt doubles as the conditional-update guard for daily claims.
type UserStatistics struct {
	ID     uint  `gorm:"primaryKey" json:"id"`
	UserID uint  `gorm:"uniqueIndex;not null" json:"user_id"`
	User   *User `gorm:"foreignKey:UserID" json:"user,omitempty"`

	CurrentStreak    int        `gorm:"default:0" json:"current_streak"`
	LongestStreak    int        `gorm:"default:0" json:"longest_streak"`
	LastBonusClaimAt *time.Time `json:"last_bonus_claim_at,omitempty"`

	DailyEarnings   int64 `gorm:"default:0" json:"daily_earnings"`
	WeeklyEarnings  int64 `gorm:"default:0" json:"weekly_earnings"`
	MonthlyEarnings int64 `gorm:"default:0" json:"monthly_earnings"`
	TotalEarnings   int64 `gorm:"default:0" json:"total_earnings"`

	LastTaskCompletedAt *time.Time `json:"last_task_completed_at,omitempty"`

	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the table name for UserStatistics model
func (UserStatistics) TableName() string {
	return "user_statistics"
}
