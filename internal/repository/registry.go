package repository

import (
	"iter"
	"log/slog"
	"math/rand/v2"
	"slices"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"account-ledger/internal/domain"
	"account-ledger/internal/errors"
)

const (
	minAccountNumber int64 = 100_000_000_000
	maxAccountNumber int64 = 999_999_999_999

	// maxIDAttempts bounds collision retries in Register.
	maxIDAttempts = 32
)

// RandomAccountNumber returns a random 12-digit account number.
func RandomAccountNumber() int64 {
	return minAccountNumber + rand.Int64N(maxAccountNumber-minAccountNumber+1)
}

// Registry is the in-memory owner of all accounts. It is the only place new
// account ids are created.
type Registry struct {
	mu       sync.RWMutex
	accounts map[int64]*domain.Account
	order    []*domain.Account
	nextID   func() int64
	limits   domain.Limits
	clock    func() time.Time
	logger   *slog.Logger
}

type RegistryOption func(*Registry)

// WithIDGenerator replaces the random account number source.
func WithIDGenerator(gen func() int64) RegistryOption {
	return func(r *Registry) {
		if gen != nil {
			r.nextID = gen
		}
	}
}

// WithDefaultLimits sets the ceilings given to newly registered accounts.
func WithDefaultLimits(limits domain.Limits) RegistryOption {
	return func(r *Registry) {
		r.limits = limits.Normalize()
	}
}

func WithClock(now func() time.Time) RegistryOption {
	return func(r *Registry) {
		if now != nil {
			r.clock = now
		}
	}
}

func NewRegistry(logger *slog.Logger, opts ...RegistryOption) *Registry {
	r := &Registry{
		accounts: make(map[int64]*domain.Account),
		nextID:   RandomAccountNumber,
		limits:   domain.DefaultLimits(),
		clock:    time.Now,
		logger:   logger,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

var _ domain.AccountRepository = (*Registry)(nil)

// Register opens an account under a fresh id. Generated ids that are
// already taken are discarded and drawn again.
func (r *Registry) Register(holderName string, openingDeposit decimal.Decimal, opts ...domain.AccountOption) (*domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	id, err := r.generateIDLocked()
	if err != nil {
		return nil, err
	}

	accountOpts := append([]domain.AccountOption{
		domain.WithLimits(r.limits),
		domain.WithClock(r.clock),
	}, opts...)

	account, err := domain.NewAccount(id, holderName, openingDeposit, accountOpts...)
	if err != nil {
		r.logger.Warn("Account registration rejected", "holder_name", holderName, "error", err)
		return nil, err
	}

	r.accounts[id] = account
	r.order = append(r.order, account)

	r.logger.Info("Account registered", "account_id", id, "opening_deposit", account.Balance())
	return account, nil
}

func (r *Registry) generateIDLocked() (int64, error) {
	for attempt := 1; attempt <= maxIDAttempts; attempt++ {
		id := r.nextID()
		if id <= 0 {
			continue
		}
		if _, taken := r.accounts[id]; !taken {
			return id, nil
		}
		r.logger.Warn("Account number collision, retrying", "account_id", id, "attempt", attempt)
	}
	r.logger.Error("Failed to generate a unique account number", "attempts", maxIDAttempts)
	return 0, errors.NewAppError(errors.InternalError, "failed to generate a unique account number")
}

func (r *Registry) Find(id int64) (*domain.Account, error) {
	r.mu.RLock()
	account, ok := r.accounts[id]
	r.mu.RUnlock()

	if !ok {
		r.logger.Warn("Account not found", "account_id", id)
		return nil, errors.NewAppErrorf(errors.AccountNotFound, "account %d not found", id)
	}
	return account, nil
}

// All yields accounts in registration order. Each iteration works on the
// accounts registered when it started, so the sequence can be ranged over
// any number of times.
func (r *Registry) All() iter.Seq[*domain.Account] {
	return func(yield func(*domain.Account) bool) {
		r.mu.RLock()
		accounts := slices.Clone(r.order)
		r.mu.RUnlock()

		for _, account := range accounts {
			if !yield(account) {
				return
			}
		}
	}
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.accounts)
}
