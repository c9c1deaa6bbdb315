package models

import (
	"time"
)

// TaskVerification is the closed set of completion-check kinds
type TaskVerification string

const (
	VerificationNone         TaskVerification = "none"
	VerificationManual       TaskVerification = "manual"
	VerificationLinkVisit    TaskVerification = "link_visit"
	VerificationTelegramJoin TaskVerification = "telegram_join"
)

// Task is a catalog entry users can complete once for a reward
type Task struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	Title       string `gorm:"size:255;not null" json:"title"`
	Description string `gorm:"type:text" json:"description"`
	Reward      int64  `gorm:"not null" json:"reward"`
	BonusReward int64  `gorm:"default:0" json:"bonus_reward"`

	Verification TaskVerification `gorm:"size:32;not null;default:none" json:"verification"`
	// LinkURL is the target for link_visit tasks, ChatID the channel for telegram_join
	LinkURL string `gorm:"size:500" json:"link_url,omitempty"`
	ChatID  string `gorm:"size:128" json:"chat_id,omitempty"`

	IsActive         bool  `gorm:"default:true;index" json:"is_active"`
	CompletionsCount int64 `gorm:"default:0" json:"completions_count"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the table name for Task model
func (Task) TableName() string {
	return "tasks"
}

// TaskCompletion records that a user completed a task. The composite unique
// index on (user_id, task_id) is the idempotency guard for reward granting.
type TaskCompletion struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	UserID       uint      `gorm:"not null;uniqueIndex:idx_user_task" json:"user_id"`
	User         *User     `gorm:"foreignKey:UserID" json:"user,omitempty"`
	TaskID       uint      `gorm:"not null;uniqueIndex:idx_user_task" json:"task_id"`
	Task         *Task     `gorm:"foreignKey:TaskID" json:"task,omitempty"`
	RewardAmount int64     `gorm:"not null" json:"reward_amount"`
	Verified     bool      `gorm:"default:false" json:"verified"`
	CompletedAt  time.Time `gorm:"autoCreateTime;index" json:"completed_at"`
}

// TableName specifies the table name for TaskCompletion model
func (TaskCompletion) TableName() string {
	return "task_completions"
}
