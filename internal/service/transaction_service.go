package service

import (
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"account-ledger/internal/domain"
	"account-ledger/internal/errors"
	"account-ledger/internal/repository"
)

type TransactionService struct {
	store  *repository.Store
	logger *slog.Logger
	now    func() time.Time
}

func NewTransactionService(store *repository.Store, logger *slog.Logger) *TransactionService {
	return &TransactionService{
		store:  store,
		logger: logger,
		now:    time.Now,
	}
}

type TransferRequest struct {
	SenderAccountID    int64
	RecipientAccountID int64
	Amount             decimal.Decimal
	IdempotencyKey     *uuid.UUID
}

// Transfer runs a transfer and records its outcome. A request repeating an
// idempotency key returns the recorded transaction without moving money.
//
// A compensated transfer returns both the recorded transaction and an error.
func (s *TransactionService) Transfer(req *TransferRequest) (*domain.Transaction, error) {
	s.logger.Info("Processing transfer",
		"sender_account_id", req.SenderAccountID,
		"recipient_account_id", req.RecipientAccountID,
		"amount", req.Amount)

	if req.IdempotencyKey == nil {
		return s.execute(req)
	}

	var (
		transaction *domain.Transaction
		err         error
	)
	lockErr := s.store.Transaction().WithIdempotencyKey(*req.IdempotencyKey, func() error {
		existing, lookupErr := s.store.Transaction().GetTransactionByIdempotencyKey(*req.IdempotencyKey)
		if lookupErr != nil {
			return lookupErr
		}
		if existing != nil {
			s.logger.Info("Returning existing transaction for idempotency key",
				"idempotency_key", *req.IdempotencyKey,
				"transaction_id", existing.ID)
			transaction = existing
			return nil
		}
		transaction, err = s.execute(req)
		return nil
	})
	if lockErr != nil {
		return nil, lockErr
	}
	return transaction, err
}

func (s *TransactionService) GetTransaction(id uuid.UUID) (*domain.Transaction, error) {
	return s.store.Transaction().GetTransactionByID(id)
}

func (s *TransactionService) execute(req *TransferRequest) (*domain.Transaction, error) {
	sender, err := s.store.Account().Find(req.SenderAccountID)
	if err != nil {
		return nil, err
	}
	recipient, err := s.store.Account().Find(req.RecipientAccountID)
	if err != nil {
		return nil, err
	}

	result, transferErr := domain.Transfer(sender, recipient, req.Amount)

	transaction := &domain.Transaction{
		ID:                 uuid.New(),
		SenderAccountID:    result.SenderID,
		RecipientAccountID: result.RecipientID,
		Amount:             result.Amount,
		IdempotencyKey:     req.IdempotencyKey,
		Status:             domain.StatusFor(result.State),
		State:              result.State,
		SenderBalance:      result.SenderBalance,
		RecipientBalance:   result.RecipientBalance,
		CreatedAt:          s.now(),
	}
	if transferErr != nil {
		transaction.FailureReason = transferErr.Error()
	}

	if err := s.store.Transaction().CreateTransaction(transaction); err != nil {
		s.logger.Error("Failed to record transaction", "transaction_id", transaction.ID, "error", err)
		if transferErr == nil {
			return nil, err
		}
	}

	switch result.State {
	case domain.StateCommitted:
		s.logger.Info("Transfer completed successfully",
			"transaction_id", transaction.ID,
			"sender_balance", result.SenderBalance,
			"recipient_balance", result.RecipientBalance)
		return transaction, nil
	case domain.StateCompensated:
		s.logger.Error("Transfer compensated", "transaction_id", transaction.ID, "error", transferErr)
		return transaction, transferErr
	default:
		s.logger.Warn("Transfer rejected", "transaction_id", transaction.ID, "error", transferErr)
		if transferErr == nil {
			transferErr = errors.NewAppError(errors.InternalError, "transfer ended without completing")
		}
		return nil, transferErr
	}
}
