package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type TransferStatus string

const (
	TransferStatusCompleted   TransferStatus = "completed"
	TransferStatusRejected    TransferStatus = "rejected"
	TransferStatusCompensated TransferStatus = "compensated"
)

// StatusFor maps a final coordinator state onto the recorded status.
func StatusFor(state TransferState) TransferStatus {
	switch state {
	case StateCommitted:
		return TransferStatusCompleted
	case StateCompensated:
		return TransferStatusCompensated
	default:
		return TransferStatusRejected
	}
}

// Transaction is the record kept for every transfer attempt.
type Transaction struct {
	ID                 uuid.UUID       `json:"id"`
	SenderAccountID    int64           `json:"sender_account_id"`
	RecipientAccountID int64           `json:"recipient_account_id"`
	Amount             decimal.Decimal `json:"amount"`
	IdempotencyKey     *uuid.UUID      `json:"idempotency_key,omitempty"`
	Status             TransferStatus  `json:"status"`
	State              TransferState   `json:"state"`
	SenderBalance      decimal.Decimal `json:"sender_balance"`
	RecipientBalance   decimal.Decimal `json:"recipient_balance"`
	FailureReason      string          `json:"failure_reason,omitempty"`
	CreatedAt          time.Time       `json:"created_at"`
}

type TransactionRepository interface {
	CreateTransaction(tx *Transaction) error
	GetTransactionByID(id uuid.UUID) (*Transaction, error)
	GetTransactionByIdempotencyKey(key uuid.UUID) (*Transaction, error)
	// WithIdempotencyKey runs fn while holding the key, so concurrent
	// requests with the same key execute once.
	WithIdempotencyKey(key uuid.UUID, fn func() error) error
}
