package services

import (
	"errors"
	"testing"
	"time"

	"rewards-backend/internal/models"
)

func TestRecordAdWatchCredits(t *testing.T) {
	db := setupTestDB(t)
	service := NewAdService(db, 3)
	user := createTestUser(t, db, 6001, 0)

	result, err := service.RecordAdWatch(user.ID, models.AdTypeRewardedVideo, "adsgram", "unit-1")
	if err != nil {
		t.Fatalf("RecordAdWatch failed: %v", err)
	}
	if result.Reward != 50 {
		t.Errorf("expected reward 50, got %d", result.Reward)
	}
	if result.NewBalance != 50 {
		t.Errorf("expected balance 50, got %d", result.NewBalance)
	}
	if result.WatchedToday != 1 || result.RemainingToday != 2 {
		t.Errorf("counters: watched=%d remaining=%d", result.WatchedToday, result.RemainingToday)
	}
}

func TestRecordAdWatchDailyCeiling(t *testing.T) {
	db := setupTestDB(t)
	service := NewAdService(db, 2)
	user := createTestUser(t, db, 6002, 0)

	for i := 0; i < 2; i++ {
		if _, err := service.RecordAdWatch(user.ID, models.AdTypeBanner, "adsgram", ""); err != nil {
			t.Fatalf("watch %d failed: %v", i+1, err)
		}
	}

	// The third view of the day is declined and credits nothing
	_, err := service.RecordAdWatch(user.ID, models.AdTypeBanner, "adsgram", "")
	if !errors.Is(err, ErrAdLimitReached) {
		t.Fatalf("expected ErrAdLimitReached, got %v", err)
	}

	var stored models.User
	db.First(&stored, user.ID)
	if stored.Balance != 10 {
		t.Errorf("expected balance 10 (2 banner views), got %d", stored.Balance)
	}
}

func TestRecordAdWatchCeilingResetsNextDay(t *testing.T) {
	db := setupTestDB(t)
	service := NewAdService(db, 1)
	user := createTestUser(t, db, 6003, 0)

	base := time.Date(2025, 6, 1, 23, 0, 0, 0, time.UTC)
	service.now = func() time.Time { return base }

	if _, err := service.RecordAdWatch(user.ID, models.AdTypeInterstitial, "adsgram", ""); err != nil {
		t.Fatalf("RecordAdWatch failed: %v", err)
	}
	if _, err := service.RecordAdWatch(user.ID, models.AdTypeInterstitial, "adsgram", ""); !errors.Is(err, ErrAdLimitReached) {
		t.Fatalf("expected ErrAdLimitReached, got %v", err)
	}

	// Two hours later it is the next calendar day and the counter is fresh
	service.now = func() time.Time { return base.Add(2 * time.Hour) }
	if _, err := service.RecordAdWatch(user.ID, models.AdTypeInterstitial, "adsgram", ""); err != nil {
		t.Fatalf("RecordAdWatch after midnight failed: %v", err)
	}

	watched, err := service.WatchedToday(user.ID)
	if err != nil {
		t.Fatalf("WatchedToday failed: %v", err)
	}
	if watched != 1 {
		t.Errorf("expected 1 watched today, got %d", watched)
	}
}

func TestRecordAdWatchUnknownType(t *testing.T) {
	db := setupTestDB(t)
	service := NewAdService(db, 5)
	user := createTestUser(t, db, 6004, 0)

	if _, err := service.RecordAdWatch(user.ID, models.AdType("popup"), "adsgram", ""); !errors.Is(err, ErrUnknownAdType) {
		t.Fatalf("expected ErrUnknownAdType, got %v", err)
	}
}

func TestAdRewardFansOutCommissions(t *testing.T) {
	db := setupTestDB(t)
	service := NewAdService(db, 5)
	referrer := createTestUser(t, db, 6005, 0)
	viewer := createTestUser(t, db, 6006, 0)
	linkReferral(t, db, referrer.ID, viewer.ID)

	if _, err := service.RecordAdWatch(viewer.ID, models.AdTypeRewardedVideo, "adsgram", ""); err != nil {
		t.Fatalf("RecordAdWatch failed: %v", err)
	}

	// 10% of the 50 reward reaches the level-1 referrer
	var stored models.User
	db.First(&stored, referrer.ID)
	if stored.Balance != 5 {
		t.Errorf("expected commission 5, got %d", stored.Balance)
	}
}
