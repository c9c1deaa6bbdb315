package models

import (
	"time"
)

// WithdrawalStatus is the settlement state of a withdrawal request
type WithdrawalStatus string

const (
	WithdrawalPending    WithdrawalStatus = "PENDING"
	WithdrawalProcessing WithdrawalStatus = "PROCESSING"
	WithdrawalPaid       WithdrawalStatus = "PAID"
	WithdrawalRejected   WithdrawalStatus = "REJECTED"
)

// Withdrawal is a request to cash out balance to an on-chain wallet. The
// balance is debited when the request is created; a rejection refunds it.
type Withdrawal struct {
	ID            uint             `gorm:"primaryKey" json:"id"`
	UserID        uint             `gorm:"not null;index" json:"user_id"`
	User          *User            `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Amount        int64            `gorm:"not null" json:"amount"`
	WalletAddress string           `gorm:"size:64;not null" json:"wallet_address"`
	Reference     string           `gorm:"uniqueIndex;size:64;not null" json:"reference"`
	Status        WithdrawalStatus `gorm:"size:20;default:PENDING;index" json:"status"`
	TxSignature   string           `gorm:"size:128" json:"tx_signature,omitempty"`
	RejectReason  string           `gorm:"size:255" json:"reject_reason,omitempty"`

	CreatedAt time.Time  `json:"created_at"`
	PaidAt    *time.Time `json:"paid_at,omitempty"`
}

// TableName specifies the table name for Withdrawal model
func (Withdrawal) TableName() string {
	return "withdrawals"
}
