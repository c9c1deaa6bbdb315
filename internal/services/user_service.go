package services

import (
	"errors"
	"fmt"
	"log"

	"gorm.io/gorm"
	"rewards-backend/internal/auth"
	"rewards-backend/internal/models"
	"rewards-backend/internal/utils"
)

// UserService creates users on first contact and serves profile reads
type UserService struct {
	db              *gorm.DB
	referrals       *ReferralService
	initialBalance  int64
	referredBalance int64
}

func NewUserService(db *gorm.DB, initialBalance, referredBalance int64) *UserService {
	return &UserService{
		db:              db,
		referrals:       NewReferralService(db),
		initialBalance:  initialBalance,
		referredBalance: referredBalance,
	}
}

// GetOrCreateFromTelegram resolves a validated Telegram identity to a local
// user, creating the account (with its wallet and statistics satellites) on
// first contact. referralCode, when present and valid, links the new user to
// their referrer and triggers the one-time signup bonus.
func (s *UserService) GetOrCreateFromTelegram(tg *auth.TelegramUser, referralCode string) (*models.User, bool, error) {
	var user models.User
	err := s.db.Where("telegram_id = ?", tg.ID).First(&user).Error
	if err == nil {
		return &user, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, err
	}

	var referrer *models.User
	if referralCode != "" {
		var owner models.User
		if err := s.db.Where("referral_code = ?", referralCode).First(&owner).Error; err == nil {
			if owner.TelegramID != tg.ID {
				referrer = &owner
			}
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, false, err
		}
	}

	balance := s.initialBalance
	if referrer != nil {
		balance = s.referredBalance
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		code, err := s.uniqueReferralCode(tx)
		if err != nil {
			return err
		}

		user = models.User{
			TelegramID:   tg.ID,
			Username:     tg.Username,
			FirstName:    tg.FirstName,
			LanguageCode: tg.LanguageCode,
			Balance:      balance,
			ReferralCode: code,
			Status:       models.UserStatusActive,
		}
		if referrer != nil {
			user.ReferredByID = &referrer.ID
		}
		if err := tx.Create(&user).Error; err != nil {
			return fmt.Errorf("failed to create user: %w", err)
		}

		wallet := models.Wallet{UserID: user.ID, Balance: balance}
		if err := tx.Create(&wallet).Error; err != nil {
			return fmt.Errorf("failed to create wallet: %w", err)
		}

		stats := models.UserStatistics{UserID: user.ID}
		if err := tx.Create(&stats).Error; err != nil {
			return fmt.Errorf("failed to create statistics: %w", err)
		}

		if referrer != nil {
			return tx.Model(&models.User{}).Where("id = ?", referrer.ID).
				Update("referral_count", gorm.Expr("referral_count + 1")).Error
		}
		return nil
	})
	if err != nil {
		return nil, false, err
	}

	// The signup bonus is a separate one-time event; its failure must not
	// undo the account that already exists
	if referrer != nil {
		if err := s.referrals.ProcessNewReferral(referrer.ID, user.ID); err != nil {
			log.Printf("signup bonus failed for referrer %d: %v", referrer.ID, err)
		}
	}

	return &user, true, nil
}

// GetByID returns a user by primary key
func (s *UserService) GetByID(userID uint) (*models.User, error) {
	var user models.User
	if err := s.db.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

// Profile bundles a user with their wallet and statistics satellites
type Profile struct {
	User       models.User           `json:"user"`
	Wallet     models.Wallet         `json:"wallet"`
	Statistics models.UserStatistics `json:"statistics"`
	Tree       models.ReferralTree   `json:"referral_tree"`
}

// GetProfile returns the full profile view for a user
func (s *UserService) GetProfile(userID uint) (*Profile, error) {
	user, err := s.GetByID(userID)
	if err != nil {
		return nil, err
	}

	var wallet models.Wallet
	if err := s.db.Where("user_id = ?", userID).FirstOrCreate(&wallet, models.Wallet{UserID: userID}).Error; err != nil {
		return nil, err
	}

	var stats models.UserStatistics
	if err := s.db.Where("user_id = ?", userID).FirstOrCreate(&stats, models.UserStatistics{UserID: userID}).Error; err != nil {
		return nil, err
	}

	tree, err := s.referrals.GetReferralTree(userID)
	if err != nil {
		return nil, err
	}

	return &Profile{User: *user, Wallet: wallet, Statistics: stats, Tree: *tree}, nil
}

// uniqueReferralCode generates a code and retries on the rare collision
func (s *UserService) uniqueReferralCode(tx *gorm.DB) (string, error) {
	for attempt := 0; attempt < 5; attempt++ {
		code, err := utils.GenerateReferralCode()
		if err != nil {
			return "", err
		}
		var count int64
		if err := tx.Model(&models.User{}).Where("referral_code = ?", code).Count(&count).Error; err != nil {
			return "", err
		}
		if count == 0 {
			return code, nil
		}
	}
	return "", fmt.Errorf("failed to generate a unique referral code")
}
