package models

import (
	"time"
)

// Referral is an edge in the referral tree: referrer earned commission from
// referred at the given depth. One row per (referrer, referred, level); the
// composite unique index keeps repeated distribution calls from duplicating it.
type Referral struct {
	ID         uint  `gorm:"primaryKey" json:"id"`
	ReferrerID uint  `gorm:"not null;uniqueIndex:idx_referral_edge" json:"referrer_id"`
	Referrer   *User `gorm:"foreignKey:ReferrerID" json:"referrer,omitempty"`
	ReferredID uint  `gorm:"not null;uniqueIndex:idx_referral_edge" json:"referred_id"`
	Referred   *User `gorm:"foreignKey:ReferredID" json:"referred,omitempty"`
	// Level is the referral depth, 1..3
	Level      int       `gorm:"not null;uniqueIndex:idx_referral_edge" json:"level"`
	Commission int64     `gorm:"not null;default:0" json:"commission"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// TableName specifies the table name for Referral model
func (Referral) TableName() string {
	return "referrals"
}

// ReferralTree holds per-referrer rollups of counts and earnings by level.
// Upserted additively on every commission payout.
type ReferralTree struct {
	ID     uint  `gorm:"primaryKey" json:"id"`
	UserID uint  `gorm:"uniqueIndex;not null" json:"user_id"`
	User   *User `gorm:"foreignKey:UserID" json:"user,omitempty"`

	Level1Count int `gorm:"default:0" json:"level1_count"`
	Level2Count int `gorm:"default:0" json:"level2_count"`
	Level3Count int `gorm:"default:0" json:"level3_count"`

	Level1Earnings        int64 `gorm:"default:0" json:"level1_earnings"`
	Level2Earnings        int64 `gorm:"default:0" json:"level2_earnings"`
	Level3Earnings        int64 `gorm:"default:0" json:"level3_earnings"`
	TotalReferralEarnings int64 `gorm:"default:0" json:"total_referral_earnings"`

	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the table name for ReferralTree model
func (ReferralTree) TableName() string {
	return "referral_trees"
}
