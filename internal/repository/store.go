package repository

import (
	"log/slog"

	"account-ledger/internal/domain"
)

// Store groups the in-memory repositories owned by one running service.
type Store struct {
	accounts     *Registry
	transactions domain.TransactionRepository
	logger       *slog.Logger
}

// NewStore creates an empty Store. Options configure the account registry.
func NewStore(logger *slog.Logger, opts ...RegistryOption) *Store {
	return &Store{
		accounts:     NewRegistry(logger, opts...),
		transactions: NewTransactionRepository(logger),
		logger:       logger,
	}
}

// Account returns the account registry
func (s *Store) Account() domain.AccountRepository {
	return s.accounts
}

// Transaction returns the transfer log
func (s *Store) Transaction() domain.TransactionRepository {
	return s.transactions
}
