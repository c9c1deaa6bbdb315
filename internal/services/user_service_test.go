package services

import (
	"testing"

	"rewards-backend/internal/auth"
	"rewards-backend/internal/models"
)

func TestGetOrCreateFromTelegram(t *testing.T) {
	db := setupTestDB(t)
	service := NewUserService(db, 2000, 2500)

	tg := &auth.TelegramUser{ID: 7001, FirstName: "Alice", Username: "alice"}

	user, created, err := service.GetOrCreateFromTelegram(tg, "")
	if err != nil {
		t.Fatalf("GetOrCreateFromTelegram failed: %v", err)
	}
	if !created {
		t.Error("expected a new user")
	}
	if user.Balance != 2000 {
		t.Errorf("expected organic initial balance 2000, got %d", user.Balance)
	}
	if user.ReferralCode == "" {
		t.Error("expected a referral code to be assigned")
	}

	// Wallet and statistics satellites created alongside
	var wallet models.Wallet
	if err := db.Where("user_id = ?", user.ID).First(&wallet).Error; err != nil {
		t.Fatalf("wallet not created: %v", err)
	}
	var stats models.UserStatistics
	if err := db.Where("user_id = ?", user.ID).First(&stats).Error; err != nil {
		t.Fatalf("statistics not created: %v", err)
	}

	// Second login resolves the same account
	again, created, err := service.GetOrCreateFromTelegram(tg, "")
	if err != nil {
		t.Fatalf("second GetOrCreateFromTelegram failed: %v", err)
	}
	if created {
		t.Error("expected existing user on second login")
	}
	if again.ID != user.ID {
		t.Errorf("resolved different user: %d vs %d", again.ID, user.ID)
	}
}

func TestSignupWithReferralCode(t *testing.T) {
	db := setupTestDB(t)
	service := NewUserService(db, 2000, 2500)

	referrer := createTestUser(t, db, 7002, 0)

	tg := &auth.TelegramUser{ID: 7003, FirstName: "Bob", StartParam: referrer.ReferralCode}
	user, created, err := service.GetOrCreateFromTelegram(tg, referrer.ReferralCode)
	if err != nil {
		t.Fatalf("GetOrCreateFromTelegram failed: %v", err)
	}
	if !created {
		t.Fatal("expected a new user")
	}

	if user.Balance != 2500 {
		t.Errorf("expected referred initial balance 2500, got %d", user.Balance)
	}
	if user.ReferredByID == nil || *user.ReferredByID != referrer.ID {
		t.Error("user not linked to referrer")
	}

	// Initial balance is seeded, not ledgered
	var entries int64
	db.Model(&models.RewardLedgerEntry{}).Where("user_id = ?", user.ID).Count(&entries)
	if entries != 0 {
		t.Errorf("expected no ledger entries for seeded balance, got %d", entries)
	}

	// Referrer got the one-time signup bonus, and that one IS ledgered
	var stored models.User
	db.First(&stored, referrer.ID)
	if stored.Balance != 5000 {
		t.Errorf("expected signup bonus 5000, got %d", stored.Balance)
	}
	if stored.ReferralCount != 1 {
		t.Errorf("expected referral_count 1, got %d", stored.ReferralCount)
	}
	db.Model(&models.RewardLedgerEntry{}).Where("user_id = ?", referrer.ID).Count(&entries)
	if entries != 1 {
		t.Errorf("expected 1 ledger entry for referrer, got %d", entries)
	}
}

func TestSignupWithUnknownCodeIsOrganic(t *testing.T) {
	db := setupTestDB(t)
	service := NewUserService(db, 2000, 2500)

	tg := &auth.TelegramUser{ID: 7004, FirstName: "Carol"}
	user, _, err := service.GetOrCreateFromTelegram(tg, "NOSUCHCODE")
	if err != nil {
		t.Fatalf("GetOrCreateFromTelegram failed: %v", err)
	}
	if user.ReferredByID != nil {
		t.Error("unknown code should not link a referrer")
	}
	if user.Balance != 2000 {
		t.Errorf("expected organic balance 2000, got %d", user.Balance)
	}
}

func TestGetProfile(t *testing.T) {
	db := setupTestDB(t)
	service := NewUserService(db, 2000, 2500)
	user := createTestUser(t, db, 7005, 300)

	profile, err := service.GetProfile(user.ID)
	if err != nil {
		t.Fatalf("GetProfile failed: %v", err)
	}
	if profile.User.ID != user.ID {
		t.Errorf("wrong user in profile: %d", profile.User.ID)
	}
	if profile.Wallet.UserID != user.ID {
		t.Error("wallet missing from profile")
	}
	if profile.Tree.UserID != user.ID {
		t.Error("referral tree missing from profile")
	}
}
