package repository

import (
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"account-ledger/internal/domain"
	"account-ledger/internal/errors"
)

type keyLock struct {
	mu   sync.Mutex
	refs int
}

type transactionRepository struct {
	mu     sync.RWMutex
	byID   map[uuid.UUID]domain.Transaction
	byKey  map[uuid.UUID]uuid.UUID
	keysMu sync.Mutex
	keys   map[uuid.UUID]*keyLock
	logger *slog.Logger
}

func NewTransactionRepository(logger *slog.Logger) domain.TransactionRepository {
	return &transactionRepository{
		byID:   make(map[uuid.UUID]domain.Transaction),
		byKey:  make(map[uuid.UUID]uuid.UUID),
		keys:   make(map[uuid.UUID]*keyLock),
		logger: logger,
	}
}

func (r *transactionRepository) CreateTransaction(tx *domain.Transaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byID[tx.ID]; exists {
		r.logger.Warn("Duplicate transaction id", "transaction_id", tx.ID)
		return errors.NewAppError(errors.DuplicateTransaction, "transaction already recorded")
	}

	if tx.IdempotencyKey != nil {
		if _, exists := r.byKey[*tx.IdempotencyKey]; exists {
			r.logger.Warn("Duplicate idempotency key", "idempotency_key", *tx.IdempotencyKey)
			return errors.NewAppError(errors.DuplicateTransaction, "transaction already processed")
		}
		r.byKey[*tx.IdempotencyKey] = tx.ID
	}

	r.byID[tx.ID] = *tx
	r.logger.Info("Transaction recorded", "transaction_id", tx.ID, "status", tx.Status)
	return nil
}

func (r *transactionRepository) GetTransactionByID(id uuid.UUID) (*domain.Transaction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tx, ok := r.byID[id]
	if !ok {
		return nil, errors.NewAppErrorf(errors.TransferNotFound, "transfer %s not found", id)
	}
	return &tx, nil
}

// GetTransactionByIdempotencyKey returns nil without error when the key has
// not been used.
func (r *transactionRepository) GetTransactionByIdempotencyKey(key uuid.UUID) (*domain.Transaction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byKey[key]
	if !ok {
		return nil, nil
	}
	tx := r.byID[id]
	return &tx, nil
}

func (r *transactionRepository) WithIdempotencyKey(key uuid.UUID, fn func() error) error {
	r.keysMu.Lock()
	l, ok := r.keys[key]
	if !ok {
		l = &keyLock{}
		r.keys[key] = l
	}
	l.refs++
	r.keysMu.Unlock()

	l.mu.Lock()
	defer func() {
		l.mu.Unlock()
		r.keysMu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(r.keys, key)
		}
		r.keysMu.Unlock()
	}()

	return fn()
}
