package services

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"rewards-backend/internal/models"
)

var ErrBonusCooldown = errors.New("daily bonus already claimed, come back later")

// dailyBonusRewards is indexed by streak day; days past 7 keep paying the
// day-7 value.
var dailyBonusRewards = []int64{100, 150, 200, 300, 500, 750, 1000}

const (
	bonusCooldown     = 24 * time.Hour
	streakGraceWindow = 48 * time.Hour
)

// DailyBonusService pays the streak-scaled daily bonus. Claims are guarded by
// a single conditional update on UserStatistics so two concurrent claims
// cannot both be granted.
type DailyBonusService struct {
	db     *gorm.DB
	ledger *LedgerService
	now    func() time.Time
}

func NewDailyBonusService(db *gorm.DB) *DailyBonusService {
	return &DailyBonusService{
		db:     db,
		ledger: NewLedgerService(db),
		now:    time.Now,
	}
}

// BonusStatus reports claim eligibility for a user
type BonusStatus struct {
	CanClaim      bool          `json:"can_claim"`
	Streak        int           `json:"streak"`
	NextReward    int64         `json:"next_reward"`
	TimeUntilNext time.Duration `json:"time_until_next"`
}

// ClaimResult is the outcome of a successful daily bonus claim
type ClaimResult struct {
	Reward     int64 `json:"reward"`
	Streak     int   `json:"streak"`
	NewBalance int64 `json:"new_balance"`
}

// CanClaim reports whether the user's cooldown has elapsed and what the next
// claim would pay
func (s *DailyBonusService) CanClaim(userID uint) (*BonusStatus, error) {
	now := s.now()

	var last models.DailyBonus
	err := s.db.Where("user_id = ?", userID).Order("claimed_at DESC").First(&last).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &BonusStatus{CanClaim: true, Streak: 0, NextReward: rewardForStreak(1)}, nil
	}
	if err != nil {
		return nil, err
	}

	streak := last.Day
	if now.Sub(last.ClaimedAt) > streakGraceWindow {
		streak = 0
	}
	status := &BonusStatus{
		Streak:     streak,
		NextReward: rewardForStreak(nextStreakAfter(&last, now)),
	}
	elapsed := now.Sub(last.ClaimedAt)
	if elapsed >= bonusCooldown {
		status.CanClaim = true
	} else {
		status.TimeUntilNext = bonusCooldown - elapsed
	}
	return status, nil
}

// Claim grants the daily bonus if the user is eligible. Eligibility is
// re-verified inside the transaction with a conditional update, turning a
// concurrent double claim into a clean cooldown reject.
func (s *DailyBonusService) Claim(userID uint) (*ClaimResult, error) {
	now := s.now()
	var result ClaimResult

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.First(&user, userID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrUserNotFound
			}
			return err
		}

		var last models.DailyBonus
		newStreak := 1
		err := tx.Where("user_id = ?", userID).Order("claimed_at DESC").First(&last).Error
		if err == nil {
			if now.Sub(last.ClaimedAt) < bonusCooldown {
				return ErrBonusCooldown
			}
			newStreak = nextStreakAfter(&last, now)
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		reward := rewardForStreak(newStreak)

		stats := models.UserStatistics{UserID: userID}
		if err := tx.Where("user_id = ?", userID).FirstOrCreate(&stats).Error; err != nil {
			return fmt.Errorf("failed to ensure statistics: %w", err)
		}
		longest := stats.LongestStreak
		if newStreak > longest {
			longest = newStreak
		}

		// Server-side eligibility re-check: only one concurrent claim can pass
		res := tx.Model(&models.UserStatistics{}).
			Where("user_id = ? AND (last_bonus_claim_at IS NULL OR last_bonus_claim_at <= ?)",
				userID, now.Add(-bonusCooldown)).
			Updates(map[string]interface{}{
				"current_streak":      newStreak,
				"longest_streak":      longest,
				"last_bonus_claim_at": now,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrBonusCooldown
		}

		bonus := models.DailyBonus{
			UserID:    userID,
			Day:       newStreak,
			Reward:    reward,
			Claimed:   true,
			ClaimedAt: now,
		}
		if err := tx.Create(&bonus).Error; err != nil {
			return fmt.Errorf("failed to record daily bonus: %w", err)
		}

		newBalance, err := s.ledger.Credit(tx, userID, models.LedgerDailyBonus, reward,
			fmt.Sprintf("Daily bonus day %d", newStreak))
		if err != nil {
			return err
		}

		result = ClaimResult{Reward: reward, Streak: newStreak, NewBalance: newBalance}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// nextStreakAfter computes the streak position of a claim at now, given the
// previous claim: continue within the 48h grace window, reset beyond it. The
// streak itself keeps counting past the reward table; only the reward caps.
func nextStreakAfter(last *models.DailyBonus, now time.Time) int {
	if now.Sub(last.ClaimedAt) > streakGraceWindow {
		return 1
	}
	return last.Day + 1
}

// rewardForStreak maps a streak day to its reward, capped at the day-7 value
func rewardForStreak(streak int) int64 {
	if streak < 1 {
		streak = 1
	}
	if streak > len(dailyBonusRewards) {
		streak = len(dailyBonusRewards)
	}
	return dailyBonusRewards[streak-1]
}
