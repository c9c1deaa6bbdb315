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
	ErrTaskNotFound         = errors.New("task not found")
	ErrTaskInactive         = errors.New("task is not available")
	ErrTaskAlreadyCompleted = errors.New("task already completed")
	ErrVerificationFailed   = errors.New("task verification failed")
)

// TaskService grants task rewards. The reward-granting unit (completion row,
// balance, ledger, counters) is all-or-nothing; the commission fan-out and the
// notification run after commit and are best-effort.
type TaskService struct {
	db            *gorm.DB
	ledger        *LedgerService
	referrals     *ReferralService
	notifications *NotificationService
}

func NewTaskService(db *gorm.DB) *TaskService {
	return &TaskService{
		db:            db,
		ledger:        NewLedgerService(db),
		referrals:     NewReferralService(db),
		notifications: NewNotificationService(db),
	}
}

// CompleteTaskResult is the outcome of a successful task completion
type CompleteTaskResult struct {
	RewardAmount int64 `json:"reward_amount"`
	NewBalance   int64 `json:"new_balance"`
	Verified     bool  `json:"verified"`
}

// ListActive returns the active task catalog
func (s *TaskService) ListActive() ([]models.Task, error) {
	var tasks []models.Task
	if err := s.db.Where("is_active = ?", true).Order("id").Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

// CompleteTask grants the task reward exactly once per (user, task). The
// unique index on task_completions turns a repeated or concurrent completion
// into a clean ErrTaskAlreadyCompleted.
func (s *TaskService) CompleteTask(userID, taskID uint, proof string) (*CompleteTaskResult, error) {
	var task models.Task
	if err := s.db.First(&task, taskID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, err
	}
	if !task.IsActive {
		return nil, ErrTaskInactive
	}

	var user models.User
	if err := s.db.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	verified, err := verifyCompletion(&task, proof)
	if err != nil {
		return nil, err
	}

	reward := task.Reward + task.BonusReward
	var result CompleteTaskResult

	err = s.db.Transaction(func(tx *gorm.DB) error {
		completion := models.TaskCompletion{
			UserID:       userID,
			TaskID:       taskID,
			RewardAmount: reward,
			Verified:     verified,
		}
		if err := tx.Create(&completion).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrTaskAlreadyCompleted
			}
			return fmt.Errorf("failed to record task completion: %w", err)
		}

		newBalance, err := s.ledger.Credit(tx, userID, models.LedgerTaskCompletion, reward,
			fmt.Sprintf("Task completed: %s", task.Title))
		if err != nil {
			return err
		}

		if err := tx.Model(&models.User{}).Where("id = ?", userID).
			Update("tasks_completed", gorm.Expr("tasks_completed + 1")).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.Task{}).Where("id = ?", taskID).
			Update("completions_count", gorm.Expr("completions_count + 1")).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.UserStatistics{}).Where("user_id = ?", userID).
			Update("last_task_completed_at", time.Now()).Error; err != nil {
			return err
		}

		result = CompleteTaskResult{RewardAmount: reward, NewBalance: newBalance, Verified: verified}
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Post-commit side effects must never undo the reward that already landed
	if err := s.referrals.DistributeCommissions(userID, reward,
		fmt.Sprintf("task %q", task.Title)); err != nil {
		log.Printf("commission distribution failed for user %d task %d: %v", userID, taskID, err)
	}
	if err := s.notifications.Create(userID, models.NotificationTask,
		"Task completed",
		fmt.Sprintf("You earned %d for completing %q", reward, task.Title),
		map[string]interface{}{"task_id": taskID, "reward": reward}); err != nil {
		log.Printf("task notification failed for user %d: %v", userID, err)
	}

	return &result, nil
}

// VerifyCompletion flips a manually-reviewed completion to verified
func (s *TaskService) VerifyCompletion(completionID uint) error {
	res := s.db.Model(&models.TaskCompletion{}).
		Where("id = ?", completionID).Update("verified", true)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// verifyCompletion dispatches on the task's verification kind. The set is
// closed: an unknown kind is a configuration error, not a user reject.
func verifyCompletion(task *models.Task, proof string) (bool, error) {
	switch task.Verification {
	case models.VerificationNone:
		return true, nil
	case models.VerificationManual:
		// Recorded unverified; an admin confirms later
		return false, nil
	case models.VerificationLinkVisit:
		return verifyLinkVisit(task, proof)
	case models.VerificationTelegramJoin:
		return verifyTelegramJoin(task, proof)
	default:
		return false, fmt.Errorf("unknown verification kind %q for task %d", task.Verification, task.ID)
	}
}

func verifyLinkVisit(task *models.Task, proof string) (bool, error) {
	if proof == "" {
		return false, ErrVerificationFailed
	}
	if task.LinkURL != "" && proof != task.LinkURL {
		return false, ErrVerificationFailed
	}
	return true, nil
}

func verifyTelegramJoin(task *models.Task, proof string) (bool, error) {
	if proof == "" {
		return false, ErrVerificationFailed
	}
	if task.ChatID != "" && proof != task.ChatID {
		return false, ErrVerificationFailed
	}
	return true, nil
}
