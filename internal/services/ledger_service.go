package services

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
	"rewards-backend/internal/models"
)

var (
	ErrUserNotFound        = errors.New("user not found")
	ErrInsufficientBalance = errors.New("insufficient balance")
)

// LedgerService is the single write path for balances. Every mutation touches
// User.Balance, the Wallet aggregate and the reward ledger inside one
// transaction, so a balance is never visible without its audit row.
type LedgerService struct {
	db *gorm.DB
}

func NewLedgerService(db *gorm.DB) *LedgerService {
	return &LedgerService{db: db}
}

// Credit atomically adds amount to the user's balance and appends the matching
// ledger entry. It must be called inside the caller's transaction. BalanceBefore
// is derived from the post-increment balance read in the same transaction, so
// the entry invariant balanceAfter == balanceBefore + amount always holds.
func (s *LedgerService) Credit(tx *gorm.DB, userID uint, entryType models.LedgerEntryType, amount int64, description string) (int64, error) {
	if amount < 0 {
		return 0, fmt.Errorf("credit amount must be non-negative, got %d", amount)
	}

	res := tx.Model(&models.User{}).Where("id = ?", userID).
		Update("balance", gorm.Expr("balance + ?", amount))
	if res.Error != nil {
		return 0, fmt.Errorf("failed to credit user %d: %w", userID, res.Error)
	}
	if res.RowsAffected == 0 {
		return 0, ErrUserNotFound
	}

	balanceAfter, err := s.readBalance(tx, userID)
	if err != nil {
		return 0, err
	}

	if err := s.ensureWallet(tx, userID); err != nil {
		return 0, err
	}
	walletUpdates := map[string]interface{}{
		"balance": gorm.Expr("balance + ?", amount),
	}
	if isEarningType(entryType) {
		walletUpdates["total_earned"] = gorm.Expr("total_earned + ?", amount)
	}
	if entryType == models.LedgerWithdrawalRefund {
		walletUpdates["total_withdrawn"] = gorm.Expr("total_withdrawn - ?", amount)
	}
	if err := tx.Model(&models.Wallet{}).Where("user_id = ?", userID).
		Updates(walletUpdates).Error; err != nil {
		return 0, fmt.Errorf("failed to update wallet for user %d: %w", userID, err)
	}

	entry := models.RewardLedgerEntry{
		UserID:        userID,
		Type:          entryType,
		Amount:        amount,
		Description:   description,
		BalanceBefore: balanceAfter - amount,
		BalanceAfter:  balanceAfter,
	}
	if err := tx.Create(&entry).Error; err != nil {
		return 0, fmt.Errorf("failed to append ledger entry: %w", err)
	}

	if amount > 0 && isEarningType(entryType) {
		if err := s.addEarnings(tx, userID, amount); err != nil {
			return 0, err
		}
	}

	return balanceAfter, nil
}

// Debit atomically subtracts amount from the user's balance and appends a
// negative ledger entry. The balance check is a single conditional statement
// evaluated by the store, so two concurrent debits cannot overdraw.
func (s *LedgerService) Debit(tx *gorm.DB, userID uint, entryType models.LedgerEntryType, amount int64, description string) (int64, error) {
	if amount <= 0 {
		return 0, fmt.Errorf("debit amount must be positive, got %d", amount)
	}

	res := tx.Model(&models.User{}).
		Where("id = ? AND balance >= ?", userID, amount).
		Update("balance", gorm.Expr("balance - ?", amount))
	if res.Error != nil {
		return 0, fmt.Errorf("failed to debit user %d: %w", userID, res.Error)
	}
	if res.RowsAffected == 0 {
		var count int64
		if err := tx.Model(&models.User{}).Where("id = ?", userID).Count(&count).Error; err != nil {
			return 0, err
		}
		if count == 0 {
			return 0, ErrUserNotFound
		}
		return 0, ErrInsufficientBalance
	}

	balanceAfter, err := s.readBalance(tx, userID)
	if err != nil {
		return 0, err
	}

	if err := s.ensureWallet(tx, userID); err != nil {
		return 0, err
	}
	walletUpdates := map[string]interface{}{
		"balance": gorm.Expr("balance - ?", amount),
	}
	if entryType == models.LedgerWithdrawal {
		walletUpdates["total_withdrawn"] = gorm.Expr("total_withdrawn + ?", amount)
	}
	if err := tx.Model(&models.Wallet{}).Where("user_id = ?", userID).
		Updates(walletUpdates).Error; err != nil {
		return 0, fmt.Errorf("failed to update wallet for user %d: %w", userID, err)
	}

	entry := models.RewardLedgerEntry{
		UserID:        userID,
		Type:          entryType,
		Amount:        -amount,
		Description:   description,
		BalanceBefore: balanceAfter + amount,
		BalanceAfter:  balanceAfter,
	}
	if err := tx.Create(&entry).Error; err != nil {
		return 0, fmt.Errorf("failed to append ledger entry: %w", err)
	}

	return balanceAfter, nil
}

// GetLedger returns the most recent ledger entries for a user
func (s *LedgerService) GetLedger(userID uint, limit int) ([]models.RewardLedgerEntry, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	var entries []models.RewardLedgerEntry
	if err := s.db.Where("user_id = ?", userID).
		Order("id DESC").Limit(limit).Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

func (s *LedgerService) readBalance(tx *gorm.DB, userID uint) (int64, error) {
	var user models.User
	if err := tx.Select("balance").Where("id = ?", userID).Take(&user).Error; err != nil {
		return 0, fmt.Errorf("failed to read balance for user %d: %w", userID, err)
	}
	return user.Balance, nil
}

func (s *LedgerService) ensureWallet(tx *gorm.DB, userID uint) error {
	wallet := models.Wallet{UserID: userID}
	if err := tx.Where("user_id = ?", userID).FirstOrCreate(&wallet).Error; err != nil {
		return fmt.Errorf("failed to ensure wallet for user %d: %w", userID, err)
	}
	return nil
}

// addEarnings bumps the period earnings aggregates on UserStatistics
func (s *LedgerService) addEarnings(tx *gorm.DB, userID uint, amount int64) error {
	stats := models.UserStatistics{UserID: userID}
	if err := tx.Where("user_id = ?", userID).FirstOrCreate(&stats).Error; err != nil {
		return fmt.Errorf("failed to ensure statistics for user %d: %w", userID, err)
	}
	return tx.Model(&models.UserStatistics{}).Where("user_id = ?", userID).
		Updates(map[string]interface{}{
			"daily_earnings":   gorm.Expr("daily_earnings + ?", amount),
			"weekly_earnings":  gorm.Expr("weekly_earnings + ?", amount),
			"monthly_earnings": gorm.Expr("monthly_earnings + ?", amount),
			"total_earnings":   gorm.Expr("total_earnings + ?", amount),
		}).Error
}

// isEarningType reports whether an entry type counts toward earnings aggregates
func isEarningType(t models.LedgerEntryType) bool {
	switch t {
	case models.LedgerTaskCompletion, models.LedgerReferralBonus,
		models.LedgerDailyBonus, models.LedgerAdReward, models.LedgerGameWin:
		return true
	}
	return false
}
