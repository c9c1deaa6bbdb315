package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"rewards-backend/internal/models"
	"rewards-backend/internal/payouts"
)

var (
	ErrWithdrawalNotFound     = errors.New("withdrawal not found")
	ErrWithdrawalNotPending   = errors.New("withdrawal is not pending")
	ErrInvalidWalletAddress   = errors.New("invalid wallet address")
	ErrBelowMinimumWithdrawal = errors.New("amount below minimum withdrawal")
)

// Payer settles an approved withdrawal and returns a transaction signature
type Payer interface {
	Pay(ctx context.Context, recipient string, units int64) (string, error)
}

type WithdrawalService struct {
	db            *gorm.DB
	ledger        *LedgerService
	notifications *NotificationService
	payer         Payer
	minWithdrawal int64
}

func NewWithdrawalService(db *gorm.DB, ledger *LedgerService, notifications *NotificationService, payer Payer, minWithdrawal int64) *WithdrawalService {
	return &WithdrawalService{
		db:            db,
		ledger:        ledger,
		notifications: notifications,
		payer:         payer,
		minWithdrawal: minWithdrawal,
	}
}

// Request debits the user immediately and creates a pending withdrawal.
// The debit fails with ErrInsufficientBalance before anything is written.
func (s *WithdrawalService) Request(userID uint, amount int64, walletAddress string) (*models.Withdrawal, error) {
	if amount < s.minWithdrawal {
		return nil, ErrBelowMinimumWithdrawal
	}
	if err := payouts.ValidateAddress(walletAddress); err != nil {
		return nil, ErrInvalidWalletAddress
	}

	withdrawal := &models.Withdrawal{
		UserID:        userID,
		Amount:        amount,
		WalletAddress: walletAddress,
		Status:        models.WithdrawalPending,
		Reference:     uuid.New().String(),
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if _, err := s.ledger.Debit(tx, userID, models.LedgerWithdrawal, amount,
			fmt.Sprintf("Withdrawal request %s", withdrawal.Reference)); err != nil {
			return err
		}

		if err := tx.Create(withdrawal).Error; err != nil {
			return fmt.Errorf("failed to create withdrawal: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return withdrawal, nil
}

// Approve pays the withdrawal out and marks it PAID. The row is claimed with
// a conditional PENDING to PROCESSING transition before any funds move, so
// only one of several concurrent approvals reaches the payout.
func (s *WithdrawalService) Approve(ctx context.Context, withdrawalID uint) (*models.Withdrawal, error) {
	var withdrawal models.Withdrawal
	if err := s.db.First(&withdrawal, withdrawalID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrWithdrawalNotFound
		}
		return nil, fmt.Errorf("failed to load withdrawal: %w", err)
	}

	claim := s.db.Model(&models.Withdrawal{}).
		Where("id = ? AND status = ?", withdrawalID, models.WithdrawalPending).
		Update("status", models.WithdrawalProcessing)
	if claim.Error != nil {
		return nil, fmt.Errorf("failed to claim withdrawal: %w", claim.Error)
	}
	if claim.RowsAffected == 0 {
		return nil, ErrWithdrawalNotPending
	}

	signature, err := s.payer.Pay(ctx, withdrawal.WalletAddress, withdrawal.Amount)
	if err != nil {
		// Return the row to the queue so the admin can retry or reject
		revert := s.db.Model(&models.Withdrawal{}).
			Where("id = ? AND status = ?", withdrawalID, models.WithdrawalProcessing).
			Update("status", models.WithdrawalPending)
		if revert.Error != nil {
			log.Printf("Failed to release withdrawal %d after payout error: %v", withdrawalID, revert.Error)
		}
		return nil, fmt.Errorf("payout failed: %w", err)
	}

	now := time.Now()
	result := s.db.Model(&models.Withdrawal{}).
		Where("id = ? AND status = ?", withdrawalID, models.WithdrawalProcessing).
		Updates(map[string]interface{}{
			"status":       models.WithdrawalPaid,
			"tx_signature": signature,
			"paid_at":      now,
		})
	if result.Error != nil {
		return nil, fmt.Errorf("failed to mark withdrawal paid: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		log.Printf("Warning: withdrawal %d paid on-chain (%s) but left processing state", withdrawalID, signature)
		return nil, ErrWithdrawalNotPending
	}

	withdrawal.Status = models.WithdrawalPaid
	withdrawal.TxSignature = signature
	withdrawal.PaidAt = &now

	if err := s.notifications.Create(withdrawal.UserID, models.NotificationWithdrawal,
		"Withdrawal paid",
		fmt.Sprintf("Your withdrawal of %d has been paid out", withdrawal.Amount),
		map[string]interface{}{
			"amount":    withdrawal.Amount,
			"signature": signature,
		}); err != nil {
		log.Printf("Failed to create withdrawal notification for user %d: %v", withdrawal.UserID, err)
	}

	return &withdrawal, nil
}

// Reject refunds the debited amount and marks the withdrawal REJECTED
func (s *WithdrawalService) Reject(withdrawalID uint, reason string) (*models.Withdrawal, error) {
	var withdrawal models.Withdrawal

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&withdrawal, withdrawalID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrWithdrawalNotFound
			}
			return fmt.Errorf("failed to load withdrawal: %w", err)
		}

		result := tx.Model(&models.Withdrawal{}).
			Where("id = ? AND status = ?", withdrawalID, models.WithdrawalPending).
			Updates(map[string]interface{}{
				"status":        models.WithdrawalRejected,
				"reject_reason": reason,
			})
		if result.Error != nil {
			return fmt.Errorf("failed to reject withdrawal: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return ErrWithdrawalNotPending
		}

		if _, err := s.ledger.Credit(tx, withdrawal.UserID, models.LedgerWithdrawalRefund,
			withdrawal.Amount, fmt.Sprintf("Refund for rejected withdrawal %s", withdrawal.Reference)); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	withdrawal.Status = models.WithdrawalRejected
	withdrawal.RejectReason = reason

	if err := s.notifications.Create(withdrawal.UserID, models.NotificationWithdrawal,
		"Withdrawal rejected",
		fmt.Sprintf("Your withdrawal of %d was rejected and refunded", withdrawal.Amount),
		map[string]interface{}{
			"amount": withdrawal.Amount,
			"reason": reason,
		}); err != nil {
		log.Printf("Failed to create withdrawal notification for user %d: %v", withdrawal.UserID, err)
	}

	return &withdrawal, nil
}

func (s *WithdrawalService) ListPending() ([]models.Withdrawal, error) {
	var withdrawals []models.Withdrawal
	if err := s.db.Where("status = ?", models.WithdrawalPending).
		Order("created_at ASC").Find(&withdrawals).Error; err != nil {
		return nil, fmt.Errorf("failed to list pending withdrawals: %w", err)
	}
	return withdrawals, nil
}

func (s *WithdrawalService) ListByUser(userID uint, limit int) ([]models.Withdrawal, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	var withdrawals []models.Withdrawal
	if err := s.db.Where("user_id = ?", userID).
		Order("created_at DESC").Limit(limit).Find(&withdrawals).Error; err != nil {
		return nil, fmt.Errorf("failed to list withdrawals: %w", err)
	}
	return withdrawals, nil
}
