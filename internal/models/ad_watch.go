package models

import (
	"time"
)

// AdType is the kind of ad placement that was watched
type AdType string

const (
	AdTypeRewardedVideo AdType = "rewarded_video"
	AdTypeInterstitial  AdType = "interstitial"
	AdTypeBanner        AdType = "banner"
)

// AdWatch logs a single ad view. The count of rows since local midnight
// enforces the per-user daily ceiling.
type AdWatch struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	UserID   uint   `gorm:"not null;index" json:"user_id"`
	User     *User  `gorm:"foreignKey:UserID" json:"user,omitempty"`
	AdType   AdType `gorm:"size:32;not null" json:"ad_type"`
	Platform string `gorm:"size:32" json:"platform"`
	AdUnitID string `gorm:"size:128" json:"ad_unit_id"`
	Reward   int64  `gorm:"not null" json:"reward"`

	WatchedAt time.Time `gorm:"not null;index" json:"watched_at"`
}

// TableName specifies the table name for AdWatch model
func (AdWatch) TableName() string {
	return "ad_watches"
}
