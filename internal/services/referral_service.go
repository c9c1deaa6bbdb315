package services

import (
	"errors"
	"fmt"
	"log"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"rewards-backend/internal/models"
)

var (
	ErrSelfReferral         = errors.New("cannot use your own referral code")
	ErrAlreadyReferred      = errors.New("user already has a referrer")
	ErrReferralCodeNotFound = errors.New("referral code not found")
)

// directReferralBonus is the one-time flat bonus paid to the level-1 referrer
// when a referred signup is confirmed.
const directReferralBonus = 5000

// commissionRates maps referral level (index+1) to the share of a referred
// user's earnings paid to that ancestor. Amounts are floored to whole units.
var commissionRates = []decimal.Decimal{
	decimal.NewFromFloat(0.10),
	decimal.NewFromFloat(0.05),
	decimal.NewFromFloat(0.02),
}

const maxCommissionLevels = 3

// ReferralService owns the referral tree: code application, the one-time
// signup bonus and the per-earning commission fan-out up to three levels.
type ReferralService struct {
	db            *gorm.DB
	ledger        *LedgerService
	notifications *NotificationService
}

func NewReferralService(db *gorm.DB) *ReferralService {
	return &ReferralService{
		db:            db,
		ledger:        NewLedgerService(db),
		notifications: NewNotificationService(db),
	}
}

// ApplyReferralCode links userID to the owner of code and pays the direct
// signup bonus. A user can be referred at most once, and never by themselves.
func (s *ReferralService) ApplyReferralCode(userID uint, code string) error {
	var owner models.User
	if err := s.db.Where("referral_code = ?", code).First(&owner).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrReferralCodeNotFound
		}
		return err
	}

	if owner.ID == userID {
		return ErrSelfReferral
	}

	var user models.User
	if err := s.db.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	if user.ReferredByID != nil {
		return ErrAlreadyReferred
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		// Guard the link server-side so two concurrent applies cannot both win
		res := tx.Model(&models.User{}).
			Where("id = ? AND referred_by_id IS NULL", userID).
			Update("referred_by_id", owner.ID)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrAlreadyReferred
		}
		return tx.Model(&models.User{}).Where("id = ?", owner.ID).
			Update("referral_count", gorm.Expr("referral_count + 1")).Error
	})
	if err != nil {
		return err
	}

	// The link is committed at this point; a bonus failure must not surface
	// as a failed apply
	if err := s.ProcessNewReferral(owner.ID, userID); err != nil {
		log.Printf("signup bonus failed for referrer %d: %v", owner.ID, err)
	}
	return nil
}

// ProcessNewReferral pays the one-time flat bonus for a confirmed referral
// signup. Idempotent per referred user: the unique level-1 edge makes a second
// call a no-op.
func (s *ReferralService) ProcessNewReferral(referrerID, referredID uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		edge := models.Referral{
			ReferrerID: referrerID,
			ReferredID: referredID,
			Level:      1,
			Commission: directReferralBonus,
		}
		if err := tx.Create(&edge).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				// Signup bonus already granted for this referred user
				return nil
			}
			return fmt.Errorf("failed to create referral edge: %w", err)
		}

		if _, err := s.ledger.Credit(tx, referrerID, models.LedgerReferralBonus,
			directReferralBonus, "Direct referral signup bonus"); err != nil {
			return err
		}

		if err := s.recordReferralEarning(tx, referrerID, 1, directReferralBonus); err != nil {
			return err
		}

		return s.notifications.CreateTx(tx, referrerID, models.NotificationReferral,
			"New referral",
			fmt.Sprintf("You earned %d for inviting a friend", directReferralBonus),
			map[string]interface{}{"referred_id": referredID, "bonus": directReferralBonus})
	})
}

// DistributeCommissions walks the beneficiary's referrer chain up to three
// levels and pays each ancestor their tiered share of baseAmount. A missing
// ancestor is a normal stopping condition; storage failures roll the whole
// distribution back and propagate.
func (s *ReferralService) DistributeCommissions(beneficiaryID uint, baseAmount int64, description string) error {
	if baseAmount <= 0 {
		return nil
	}

	var beneficiary models.User
	if err := s.db.First(&beneficiary, beneficiaryID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	if beneficiary.ReferredByID == nil {
		return nil
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		visited := map[uint]bool{beneficiary.ID: true}
		nextID := beneficiary.ReferredByID

		for level := 1; level <= maxCommissionLevels && nextID != nil; level++ {
			var ancestor models.User
			if err := tx.First(&ancestor, *nextID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					break
				}
				return err
			}
			// The domain guarantees a tree; stop rather than loop if the data lies
			if visited[ancestor.ID] {
				break
			}
			visited[ancestor.ID] = true

			commission := commissionRates[level-1].
				Mul(decimal.NewFromInt(baseAmount)).Floor().IntPart()

			if commission > 0 {
				desc := fmt.Sprintf("Level %d referral commission: %s", level, description)
				if _, err := s.ledger.Credit(tx, ancestor.ID, models.LedgerReferralBonus, commission, desc); err != nil {
					return err
				}
				if err := s.upsertReferralEdge(tx, ancestor.ID, beneficiary.ID, level, commission); err != nil {
					return err
				}
				if err := s.recordReferralEarning(tx, ancestor.ID, level, commission); err != nil {
					return err
				}
				if err := s.notifications.CreateTx(tx, ancestor.ID, models.NotificationReferral,
					"Referral commission",
					fmt.Sprintf("You earned %d from your level %d referral", commission, level),
					map[string]interface{}{"referred_id": beneficiary.ID, "level": level, "commission": commission}); err != nil {
					return err
				}
			}

			nextID = ancestor.ReferredByID
		}
		return nil
	})
}

// GetReferralTree returns the aggregate tree rollup for a referrer, creating
// an empty one if none exists yet
func (s *ReferralService) GetReferralTree(userID uint) (*models.ReferralTree, error) {
	var tree models.ReferralTree
	err := s.db.Where("user_id = ?", userID).First(&tree).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		tree = models.ReferralTree{UserID: userID}
		if err := s.db.Create(&tree).Error; err != nil {
			return nil, err
		}
		return &tree, nil
	}
	if err != nil {
		return nil, err
	}
	return &tree, nil
}

// GetReferrals returns the commission edges where the user is the referrer
func (s *ReferralService) GetReferrals(userID uint) ([]models.Referral, error) {
	var referrals []models.Referral
	if err := s.db.Where("referrer_id = ?", userID).
		Preload("Referred").Order("created_at DESC").Find(&referrals).Error; err != nil {
		return nil, err
	}
	return referrals, nil
}

// upsertReferralEdge records a commission payout against the (referrer,
// referred, level) edge, creating it on first payout at that level
func (s *ReferralService) upsertReferralEdge(tx *gorm.DB, referrerID, referredID uint, level int, commission int64) error {
	edge := models.Referral{
		ReferrerID: referrerID,
		ReferredID: referredID,
		Level:      level,
	}
	res := tx.Where("referrer_id = ? AND referred_id = ? AND level = ?",
		referrerID, referredID, level).FirstOrCreate(&edge)
	if res.Error != nil {
		return fmt.Errorf("failed to upsert referral edge: %w", res.Error)
	}
	return tx.Model(&models.Referral{}).Where("id = ?", edge.ID).
		Update("commission", gorm.Expr("commission + ?", commission)).Error
}

// recordReferralEarning additively upserts the referrer's tree rollup for one
// commission payout. Called exactly once per payout.
func (s *ReferralService) recordReferralEarning(tx *gorm.DB, referrerID uint, level int, amount int64) error {
	tree := models.ReferralTree{UserID: referrerID}
	if err := tx.Where("user_id = ?", referrerID).FirstOrCreate(&tree).Error; err != nil {
		return fmt.Errorf("failed to ensure referral tree: %w", err)
	}

	updates := map[string]interface{}{
		"total_referral_earnings": gorm.Expr("total_referral_earnings + ?", amount),
	}
	switch level {
	case 1:
		updates["level1_count"] = gorm.Expr("level1_count + 1")
		updates["level1_earnings"] = gorm.Expr("level1_earnings + ?", amount)
	case 2:
		updates["level2_count"] = gorm.Expr("level2_count + 1")
		updates["level2_earnings"] = gorm.Expr("level2_earnings + ?", amount)
	case 3:
		updates["level3_count"] = gorm.Expr("level3_count + 1")
		updates["level3_earnings"] = gorm.Expr("level3_earnings + ?", amount)
	default:
		return fmt.Errorf("invalid referral level %d", level)
	}

	return tx.Model(&models.ReferralTree{}).Where("user_id = ?", referrerID).
		Updates(updates).Error
}
