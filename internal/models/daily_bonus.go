package models

import (
	"time"
)

// DailyBonus records one successful daily bonus claim. The most recent row per
// user drives eligibility and the streak position of the next claim.
type DailyBonus struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	User      *User     `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Day       int       `gorm:"not null" json:"day"`
	Reward    int64     `gorm:"not null" json:"reward"`
	Claimed   bool      `gorm:"default:true" json:"claimed"`
	ClaimedAt time.Time `gorm:"not null;index" json:"claimed_at"`
}

// TableName specifies the table name for DailyBonus model
func (DailyBonus) TableName() string {
	return "daily_bonuses"
}
