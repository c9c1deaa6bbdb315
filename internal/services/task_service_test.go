package services

import (
	"errors"
	"testing"

	"gorm.io/gorm"
	"rewards-backend/internal/models"
)

func createTestTask(t *testing.T, db *gorm.DB, reward int64, verification models.TaskVerification) *models.Task {
	t.Helper()
	task := models.Task{
		Title:        "Follow the channel",
		Reward:       reward,
		Verification: verification,
		IsActive:     true,
	}
	if err := db.Create(&task).Error; err != nil {
		t.Fatalf("failed to create task: %v", err)
	}
	return &task
}

func TestCompleteTaskCreditsOnce(t *testing.T) {
	db := setupTestDB(t)
	service := NewTaskService(db)
	user := createTestUser(t, db, 2001, 0)
	task := createTestTask(t, db, 500, models.VerificationNone)

	result, err := service.CompleteTask(user.ID, task.ID, "")
	if err != nil {
		t.Fatalf("CompleteTask failed: %v", err)
	}
	if result.RewardAmount != 500 {
		t.Errorf("expected reward 500, got %d", result.RewardAmount)
	}
	if result.NewBalance != 500 {
		t.Errorf("expected balance 500, got %d", result.NewBalance)
	}

	// Second completion is declined and credits nothing
	_, err = service.CompleteTask(user.ID, task.ID, "")
	if !errors.Is(err, ErrTaskAlreadyCompleted) {
		t.Fatalf("expected ErrTaskAlreadyCompleted, got %v", err)
	}

	var stored models.User
	db.First(&stored, user.ID)
	if stored.Balance != 500 {
		t.Errorf("balance changed on repeated completion: %d", stored.Balance)
	}
	if stored.TasksCompleted != 1 {
		t.Errorf("expected tasks_completed 1, got %d", stored.TasksCompleted)
	}

	var entries int64
	db.Model(&models.RewardLedgerEntry{}).Where("user_id = ?", user.ID).Count(&entries)
	if entries != 1 {
		t.Errorf("expected exactly 1 ledger entry, got %d", entries)
	}

	var storedTask models.Task
	db.First(&storedTask, task.ID)
	if storedTask.CompletionsCount != 1 {
		t.Errorf("expected completions_count 1, got %d", storedTask.CompletionsCount)
	}
}

func TestCompleteTaskWithBonusReward(t *testing.T) {
	db := setupTestDB(t)
	service := NewTaskService(db)
	user := createTestUser(t, db, 2002, 0)

	task := models.Task{Title: "Boosted task", Reward: 300, BonusReward: 200, IsActive: true, Verification: models.VerificationNone}
	if err := db.Create(&task).Error; err != nil {
		t.Fatalf("failed to create task: %v", err)
	}

	result, err := service.CompleteTask(user.ID, task.ID, "")
	if err != nil {
		t.Fatalf("CompleteTask failed: %v", err)
	}
	if result.RewardAmount != 500 {
		t.Errorf("expected combined reward 500, got %d", result.RewardAmount)
	}
}

func TestCompleteTaskInactive(t *testing.T) {
	db := setupTestDB(t)
	service := NewTaskService(db)
	user := createTestUser(t, db, 2003, 0)

	task := models.Task{Title: "Retired task", Reward: 100, IsActive: false, Verification: models.VerificationNone}
	if err := db.Create(&task).Error; err != nil {
		t.Fatalf("failed to create task: %v", err)
	}
	// IsActive carries gorm:"default:true", so the zero value is dropped on
	// insert; force the column to make the task actually inactive.
	if err := db.Model(&task).Update("is_active", false).Error; err != nil {
		t.Fatalf("failed to deactivate task: %v", err)
	}

	_, err := service.CompleteTask(user.ID, task.ID, "")
	if !errors.Is(err, ErrTaskInactive) {
		t.Fatalf("expected ErrTaskInactive, got %v", err)
	}
}

func TestCompleteTaskNotFound(t *testing.T) {
	db := setupTestDB(t)
	service := NewTaskService(db)
	user := createTestUser(t, db, 2004, 0)

	_, err := service.CompleteTask(user.ID, 9999, "")
	if !errors.Is(err, ErrTaskNotFound) {
		t.Fatalf("expected ErrTaskNotFound, got %v", err)
	}
}

func TestTaskVerificationDispatch(t *testing.T) {
	db := setupTestDB(t)
	service := NewTaskService(db)

	t.Run("link visit requires matching proof", func(t *testing.T) {
		user := createTestUser(t, db, 2005, 0)
		task := models.Task{
			Title:        "Visit site",
			Reward:       100,
			Verification: models.VerificationLinkVisit,
			LinkURL:      "https://example.com/promo",
			IsActive:     true,
		}
		db.Create(&task)

		if _, err := service.CompleteTask(user.ID, task.ID, ""); !errors.Is(err, ErrVerificationFailed) {
			t.Fatalf("expected ErrVerificationFailed for empty proof, got %v", err)
		}
		if _, err := service.CompleteTask(user.ID, task.ID, "https://other.com"); !errors.Is(err, ErrVerificationFailed) {
			t.Fatalf("expected ErrVerificationFailed for wrong proof, got %v", err)
		}

		result, err := service.CompleteTask(user.ID, task.ID, "https://example.com/promo")
		if err != nil {
			t.Fatalf("CompleteTask failed: %v", err)
		}
		if !result.Verified {
			t.Error("expected completion to be verified")
		}
	})

	t.Run("manual tasks record unverified", func(t *testing.T) {
		user := createTestUser(t, db, 2006, 0)
		task := models.Task{Title: "Manual review", Reward: 100, Verification: models.VerificationManual, IsActive: true}
		db.Create(&task)

		result, err := service.CompleteTask(user.ID, task.ID, "")
		if err != nil {
			t.Fatalf("CompleteTask failed: %v", err)
		}
		if result.Verified {
			t.Error("manual completion should start unverified")
		}
		if result.NewBalance != 100 {
			t.Errorf("reward should still land immediately, got balance %d", result.NewBalance)
		}

		var completion models.TaskCompletion
		db.Where("user_id = ?", user.ID).First(&completion)
		if err := service.VerifyCompletion(completion.ID); err != nil {
			t.Fatalf("VerifyCompletion failed: %v", err)
		}
		db.First(&completion, completion.ID)
		if !completion.Verified {
			t.Error("completion not verified after admin confirmation")
		}
	})
}
