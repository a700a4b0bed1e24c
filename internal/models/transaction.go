package models

import (
	"time"
)

// Transaction types
const (
	TransactionTypeDeposit    = "deposit"
	TransactionTypeWithdrawal = "withdrawal"
	TransactionTypePayment    = "payment"
	TransactionTypeReceived   = "received"
	TransactionTypeTransfer   = "transfer"
	TransactionTypeExchange   = "exchange"
	TransactionTypeFee        = "fee"
	TransactionTypeRefund     = "refund"
	TransactionTypeStake      = "stake"
	TransactionTypeUnstake    = "unstake"
)

// Transaction statuses
const (
	TransactionStatusPending    = "pending"
	TransactionStatusProcessing = "processing"
	TransactionStatusCompleted  = "completed"
	TransactionStatusFailed     = "failed"
	TransactionStatusCancelled  = "cancelled"
	TransactionStatusRefunded   = "refunded"
)

// WalletTransaction is one entry of the append-only ledger. Rows are
// created once, never deleted; only Status, Error and the external
// references move after creation.
type WalletTransaction struct {
	ID                    uint     `gorm:"primarykey" json:"-"`
	TransactionID         string   `gorm:"uniqueIndex;not null" json:"id"`
	WalletID              uint     `gorm:"index;not null" json:"-"`
	UserID                uint     `gorm:"index" json:"userId"`
	Type                  string   `gorm:"not null" json:"type"`
	Amount                float64  `gorm:"not null" json:"amount"`
	Currency              string   `gorm:"not null" json:"currency"`
	Status                string   `gorm:"not null;default:'pending'" json:"status"`
	FeeAmount             float64  `gorm:"default:0" json:"feeAmount"`
	CryptoAmount          *float64 `json:"cryptoAmount,omitempty"`
	ExchangeRate          *float64 `json:"exchangeRate,omitempty"`
	PaymentMethodID       string   `json:"paymentMethodId,omitempty"`
	PaymentMethodType     string   `json:"paymentMethodType,omitempty"`
	ProviderID            string   `gorm:"index" json:"providerId,omitempty"`
	ExternalTransactionID string   `json:"externalTransactionId,omitempty"`
	TxHash                string   `json:"txHash,omitempty"`
	PropertyID            string   `json:"propertyId,omitempty"`
	ReservationID         string   `json:"reservationId,omitempty"`
	CounterpartyID        *uint    `json:"counterpartyId,omitempty"`
	ConfirmationsRequired int      `json:"confirmationsRequired,omitempty"`
	Description           string   `json:"description,omitempty"`
	Error                 string   `json:"error,omitempty"`
	Metadata              JSON     `gorm:"type:jsonb" json:"metadata,omitempty"`
	CreatedAt             time.Time  `json:"createdAt"`
	UpdatedAt             time.Time  `json:"updatedAt"`
	CompletedAt           *time.Time `json:"completedAt,omitempty"`
}

// IsTerminalStatus reports whether s admits no further transition
// other than completed -> refunded.
func IsTerminalStatus(s string) bool {
	switch s {
	case TransactionStatusCompleted, TransactionStatusFailed,
		TransactionStatusCancelled, TransactionStatusRefunded:
		return true
	}
	return false
}

// validTransitions is the transaction state machine. The ledger
// enforces it; callers cannot resurrect a terminal entry.
var validTransitions = map[string][]string{
	TransactionStatusPending: {
		TransactionStatusProcessing,
		TransactionStatusCompleted,
		TransactionStatusFailed,
		TransactionStatusCancelled,
	},
	TransactionStatusProcessing: {
		TransactionStatusCompleted,
		TransactionStatusFailed,
	},
	TransactionStatusCompleted: {
		TransactionStatusRefunded,
	},
}

// CanTransition reports whether a transaction may move from -> to.
func CanTransition(from, to string) bool {
	if from == to {
		return false
	}
	for _, allowed := range validTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// IsValidTransactionType reports whether t is a known ledger entry type.
func IsValidTransactionType(t string) bool {
	switch t {
	case TransactionTypeDeposit, TransactionTypeWithdrawal, TransactionTypePayment,
		TransactionTypeReceived, TransactionTypeTransfer, TransactionTypeExchange,
		TransactionTypeFee, TransactionTypeRefund, TransactionTypeStake,
		TransactionTypeUnstake:
		return true
	}
	return false
}
