package services

import (
	"errors"
	"fmt"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"rewards-backend/internal/models"
)

// setupTestDB opens a named in-memory database so each test gets an isolated
// schema. cache=shared keeps the DB alive across gorm's pooled connections.
func setupTestDB(t *testing.T) *gorm.DB {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("failed to connect database: %v", err)
	}

	err = db.AutoMigrate(
		&models.User{},
		&models.Wallet{},
		&models.RewardLedgerEntry{},
		&models.UserStatistics{},
		&models.Notification{},
		&models.Referral{},
		&models.ReferralTree{},
		&models.Task{},
		&models.TaskCompletion{},
		&models.DailyBonus{},
		&models.AdWatch{},
		&models.Withdrawal{},
	)
	if err != nil {
		t.Fatalf("failed to migrate database: %v", err)
	}

	return db
}

func createTestUser(t *testing.T, db *gorm.DB, telegramID int64, balance int64) *models.User {
	t.Helper()
	user := models.User{
		TelegramID:   telegramID,
		Username:     fmt.Sprintf("user%d", telegramID),
		Balance:      balance,
		ReferralCode: fmt.Sprintf("CODE%d", telegramID),
		Status:       models.UserStatusActive,
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("failed to create user: %v", err)
	}
	if err := db.Create(&models.Wallet{UserID: user.ID, Balance: balance}).Error; err != nil {
		t.Fatalf("failed to create wallet: %v", err)
	}
	if err := db.Create(&models.UserStatistics{UserID: user.ID}).Error; err != nil {
		t.Fatalf("failed to create statistics: %v", err)
	}
	return &user
}

func TestCreditAppendsConsistentLedgerEntry(t *testing.T) {
	db := setupTestDB(t)
	service := NewLedgerService(db)
	user := createTestUser(t, db, 1001, 500)

	newBalance, err := service.Credit(db, user.ID, models.LedgerTaskCompletion, 300, "test credit")
	if err != nil {
		t.Fatalf("Credit failed: %v", err)
	}
	if newBalance != 800 {
		t.Errorf("expected balance 800, got %d", newBalance)
	}

	var entry models.RewardLedgerEntry
	if err := db.Where("user_id = ?", user.ID).First(&entry).Error; err != nil {
		t.Fatalf("failed to load ledger entry: %v", err)
	}
	if entry.BalanceBefore != 500 || entry.BalanceAfter != 800 {
		t.Errorf("entry balances: got before=%d after=%d, want 500/800", entry.BalanceBefore, entry.BalanceAfter)
	}
	if entry.BalanceAfter != entry.BalanceBefore+entry.Amount {
		t.Errorf("entry not self-consistent: %d != %d + %d", entry.BalanceAfter, entry.BalanceBefore, entry.Amount)
	}

	var stored models.User
	db.First(&stored, user.ID)
	if stored.Balance != 800 {
		t.Errorf("stored balance: expected 800, got %d", stored.Balance)
	}
}

func TestCreditUnknownUser(t *testing.T) {
	db := setupTestDB(t)
	service := NewLedgerService(db)

	_, err := service.Credit(db, 9999, models.LedgerDailyBonus, 100, "ghost")
	if !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestDebitInsufficientBalance(t *testing.T) {
	db := setupTestDB(t)
	service := NewLedgerService(db)
	user := createTestUser(t, db, 1002, 100)

	_, err := service.Debit(db, user.ID, models.LedgerWithdrawal, 200, "too much")
	if !errors.Is(err, ErrInsufficientBalance) {
		t.Fatalf("expected ErrInsufficientBalance, got %v", err)
	}

	// No ledger entry and no balance change on a declined debit
	var count int64
	db.Model(&models.RewardLedgerEntry{}).Where("user_id = ?", user.ID).Count(&count)
	if count != 0 {
		t.Errorf("expected no ledger entries, got %d", count)
	}
	var stored models.User
	db.First(&stored, user.ID)
	if stored.Balance != 100 {
		t.Errorf("balance changed on declined debit: %d", stored.Balance)
	}
}

func TestDebitWritesNegativeEntry(t *testing.T) {
	db := setupTestDB(t)
	service := NewLedgerService(db)
	user := createTestUser(t, db, 1003, 1000)

	newBalance, err := service.Debit(db, user.ID, models.LedgerWithdrawal, 400, "withdraw")
	if err != nil {
		t.Fatalf("Debit failed: %v", err)
	}
	if newBalance != 600 {
		t.Errorf("expected balance 600, got %d", newBalance)
	}

	var entry models.RewardLedgerEntry
	if err := db.Where("user_id = ?", user.ID).First(&entry).Error; err != nil {
		t.Fatalf("failed to load ledger entry: %v", err)
	}
	if entry.Amount != -400 {
		t.Errorf("expected amount -400, got %d", entry.Amount)
	}
	if entry.BalanceAfter != entry.BalanceBefore+entry.Amount {
		t.Errorf("entry not self-consistent: %d != %d + %d", entry.BalanceAfter, entry.BalanceBefore, entry.Amount)
	}

	var wallet models.Wallet
	db.Where("user_id = ?", user.ID).First(&wallet)
	if wallet.TotalWithdrawn != 400 {
		t.Errorf("expected total_withdrawn 400, got %d", wallet.TotalWithdrawn)
	}
}

func TestEarningTypesUpdateAggregates(t *testing.T) {
	db := setupTestDB(t)
	service := NewLedgerService(db)
	user := createTestUser(t, db, 1004, 0)

	if _, err := service.Credit(db, user.ID, models.LedgerAdReward, 50, "ad"); err != nil {
		t.Fatalf("Credit failed: %v", err)
	}
	if _, err := service.Credit(db, user.ID, models.LedgerDailyBonus, 100, "bonus"); err != nil {
		t.Fatalf("Credit failed: %v", err)
	}

	var stats models.UserStatistics
	db.Where("user_id = ?", user.ID).First(&stats)
	if stats.TotalEarnings != 150 {
		t.Errorf("expected total earnings 150, got %d", stats.TotalEarnings)
	}
	if stats.DailyEarnings != 150 {
		t.Errorf("expected daily earnings 150, got %d", stats.DailyEarnings)
	}

	var wallet models.Wallet
	db.Where("user_id = ?", user.ID).First(&wallet)
	if wallet.TotalEarned != 150 {
		t.Errorf("expected total earned 150, got %d", wallet.TotalEarned)
	}
}

func TestInitialBalanceIsNotLedgered(t *testing.T) {
	db := setupTestDB(t)
	user := createTestUser(t, db, 1005, 2000)

	// A seeded signup balance carries no ledger history
	var count int64
	db.Model(&models.RewardLedgerEntry{}).Where("user_id = ?", user.ID).Count(&count)
	if count != 0 {
		t.Errorf("expected no ledger entries for seeded balance, got %d", count)
	}
	var stored models.User
	db.First(&stored, user.ID)
	if stored.Balance != 2000 {
		t.Errorf("expected balance 2000, got %d", stored.Balance)
	}
}
