package models

import (
	"time"
)

// LedgerEntryType categorizes balance-affecting events
type LedgerEntryType string

const (
	LedgerTaskCompletion   LedgerEntryType = "TASK_COMPLETION"
	LedgerReferralBonus    LedgerEntryType = "REFERRAL_BONUS"
	LedgerDailyBonus       LedgerEntryType = "DAILY_BONUS"
	LedgerAdReward         LedgerEntryType = "AD_REWARD"
	LedgerGameWin          LedgerEntryType = "GAME_WIN"
	LedgerWithdrawal       LedgerEntryType = "WITHDRAWAL"
	LedgerWithdrawalRefund LedgerEntryType = "WITHDRAWAL_REFUND"
)

// RewardLedgerEntry is an append-only record of a single balance change.
// Rows are never updated or deleted; BalanceAfter == BalanceBefore + Amount.
type RewardLedgerEntry struct {
	ID            uint            `gorm:"primaryKey" json:"id"`
	UserID        uint            `gorm:"not null;index" json:"user_id"`
	User          *User           `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Type          LedgerEntryType `gorm:"size:32;not null;index" json:"type"`
	Amount        int64           `gorm:"not null" json:"amount"`
	Description   string          `gorm:"type:text" json:"description"`
	BalanceBefore int64           `gorm:"not null" json:"balance_before"`
	BalanceAfter  int64           `gorm:"not null" json:"balance_after"`
	CreatedAt     time.Time       `gorm:"index" json:"created_at"`
}

// TableName specifies the table name for RewardLedgerEntry model
func (RewardLedgerEntry) TableName() string {
	return "reward_ledger_entries"
}
