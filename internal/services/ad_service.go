package services

import (
	"errors"
	"fmt"
	"log"
	"time"

	"gorm.io/gorm"
	"rewards-backend/internal/models"
)

var (
	ErrAdLimitReached = errors.New("daily ad limit reached")
	ErrUnknownAdType  = errors.New("unknown ad type")
)

// adRewards maps ad placement kinds to their per-view reward
var adRewards = map[models.AdType]int64{
	models.AdTypeRewardedVideo: 50,
	models.AdTypeInterstitial:  20,
	models.AdTypeBanner:        5,
}

// AdService credits ad-watch rewards, capped by a per-user daily view count
// (rows since local midnight). Unlike tasks the same ad type repeats, so the
// guard is a ceiling, not a uniqueness constraint.
type AdService struct {
	db         *gorm.DB
	ledger     *LedgerService
	referrals  *ReferralService
	dailyLimit int
	now        func() time.Time
}

func NewAdService(db *gorm.DB, dailyLimit int) *AdService {
	if dailyLimit <= 0 {
		dailyLimit = 20
	}
	return &AdService{
		db:         db,
		ledger:     NewLedgerService(db),
		referrals:  NewReferralService(db),
		dailyLimit: dailyLimit,
		now:        time.Now,
	}
}

// AdWatchResult is the outcome of a credited ad view
type AdWatchResult struct {
	Reward         int64 `json:"reward"`
	NewBalance     int64 `json:"new_balance"`
	WatchedToday   int   `json:"watched_today"`
	RemainingToday int   `json:"remaining_today"`
}

// RecordAdWatch logs the view and credits its reward inside one transaction,
// then fans out referral commissions best-effort.
func (s *AdService) RecordAdWatch(userID uint, adType models.AdType, platform, adUnitID string) (*AdWatchResult, error) {
	reward, ok := adRewards[adType]
	if !ok {
		return nil, ErrUnknownAdType
	}

	var user models.User
	if err := s.db.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	now := s.now()
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	var result AdWatchResult
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var watchedToday int64
		if err := tx.Model(&models.AdWatch{}).
			Where("user_id = ? AND watched_at >= ?", userID, midnight).
			Count(&watchedToday).Error; err != nil {
			return err
		}
		if watchedToday >= int64(s.dailyLimit) {
			return ErrAdLimitReached
		}

		watch := models.AdWatch{
			UserID:    userID,
			AdType:    adType,
			Platform:  platform,
			AdUnitID:  adUnitID,
			Reward:    reward,
			WatchedAt: now,
		}
		if err := tx.Create(&watch).Error; err != nil {
			return fmt.Errorf("failed to record ad watch: %w", err)
		}

		newBalance, err := s.ledger.Credit(tx, userID, models.LedgerAdReward, reward,
			fmt.Sprintf("Ad reward: %s on %s", adType, platform))
		if err != nil {
			return err
		}

		result = AdWatchResult{
			Reward:         reward,
			NewBalance:     newBalance,
			WatchedToday:   int(watchedToday) + 1,
			RemainingToday: s.dailyLimit - int(watchedToday) - 1,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := s.referrals.DistributeCommissions(userID, reward,
		fmt.Sprintf("ad watch (%s)", adType)); err != nil {
		log.Printf("commission distribution failed for user %d ad watch: %v", userID, err)
	}

	return &result, nil
}

// WatchedToday returns today's view count for a user
func (s *AdService) WatchedToday(userID uint) (int, error) {
	now := s.now()
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	var count int64
	if err := s.db.Model(&models.AdWatch{}).
		Where("user_id = ? AND watched_at >= ?", userID, midnight).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return int(count), nil
}
