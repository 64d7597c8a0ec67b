package service

import (
	"iter"
	"log/slog"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"account-ledger/internal/domain"
	"account-ledger/internal/errors"
	"account-ledger/internal/repository"
)

type AccountService struct {
	store  *repository.Store
	logger *slog.Logger
}

func NewAccountService(store *repository.Store, logger *slog.Logger) *AccountService {
	return &AccountService{
		store:  store,
		logger: logger,
	}
}

func (s *AccountService) CreateAccount(holderName string, openingDeposit decimal.Decimal, opts ...domain.AccountOption) (*domain.Account, error) {
	s.logger.Info("Creating account", "holder_name", holderName, "opening_deposit", openingDeposit)

	account, err := s.store.Account().Register(holderName, openingDeposit, opts...)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Account created successfully", "account_id", account.ID())
	return account, nil
}

// GetAccount looks an account up by its textual id.
func (s *AccountService) GetAccount(accountID string) (*domain.Account, error) {
	id, err := ParseAccountID(accountID)
	if err != nil {
		return nil, err
	}
	return s.FindAccount(id)
}

func (s *AccountService) FindAccount(id int64) (*domain.Account, error) {
	return s.store.Account().Find(id)
}

// ListAccounts yields every account in registration order.
func (s *AccountService) ListAccounts() iter.Seq[*domain.Account] {
	return s.store.Account().All()
}

func (s *AccountService) Deposit(accountID int64, amount decimal.Decimal) (domain.Entry, error) {
	s.logger.Info("Processing deposit", "account_id", accountID, "amount", amount)

	account, err := s.store.Account().Find(accountID)
	if err != nil {
		return domain.Entry{}, err
	}

	entry, err := account.Deposit(amount)
	if err != nil {
		s.logger.Warn("Deposit rejected", "account_id", accountID, "amount", amount, "error", err)
		return domain.Entry{}, err
	}

	s.logger.Info("Deposit completed", "account_id", accountID, "entry_id", entry.ID(), "balance", entry.BalanceAfter())
	return entry, nil
}

func (s *AccountService) Withdraw(accountID int64, amount decimal.Decimal) (domain.Entry, error) {
	s.logger.Info("Processing withdrawal", "account_id", accountID, "amount", amount)

	account, err := s.store.Account().Find(accountID)
	if err != nil {
		return domain.Entry{}, err
	}

	entry, err := account.Withdraw(amount)
	if err != nil {
		s.logger.Warn("Withdrawal rejected", "account_id", accountID, "amount", amount, "error", err)
		return domain.Entry{}, err
	}

	s.logger.Info("Withdrawal completed", "account_id", accountID, "entry_id", entry.ID(), "balance", entry.BalanceAfter())
	return entry, nil
}

func (s *AccountService) Rename(accountID int64, holderName string) (domain.Entry, error) {
	s.logger.Info("Renaming account", "account_id", accountID)

	account, err := s.store.Account().Find(accountID)
	if err != nil {
		return domain.Entry{}, err
	}

	entry, err := account.Rename(holderName)
	if err != nil {
		s.logger.Warn("Rename rejected", "account_id", accountID, "error", err)
		return domain.Entry{}, err
	}

	s.logger.Info("Account renamed", "account_id", accountID, "entry_id", entry.ID())
	return entry, nil
}

func (s *AccountService) History(accountID int64) ([]domain.Entry, error) {
	account, err := s.store.Account().Find(accountID)
	if err != nil {
		return nil, err
	}
	return account.History(), nil
}

// VerifyLedger reconciles every account against its ledger and returns the
// first violation found.
func (s *AccountService) VerifyLedger() error {
	for account := range s.store.Account().All() {
		if err := account.Reconcile(); err != nil {
			s.logger.Error("Ledger invariant violated", "account_id", account.ID(), "error", err)
			return err
		}
	}
	return nil
}

// ParseAccountID parses a positive decimal account id.
func ParseAccountID(accountID string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(accountID), 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.NewAppError(errors.InvalidInput, "invalid account ID")
	}
	return id, nil
}
