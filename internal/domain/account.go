package domain

import (
	"fmt"
	"iter"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"account-ledger/internal/errors"
)

// Account holds a holder's balance together with its append-only ledger.
// The mutex guards name, balance and history as one unit: a reader never
// sees a balance without the entry that produced it.
type Account struct {
	mu         sync.Mutex
	id         int64
	holderName string
	balance    decimal.Decimal
	history    []Entry
	limits     Limits
	createdAt  time.Time
	now        func() time.Time
}

// AccountSnapshot is a consistent point-in-time view of an account.
type AccountSnapshot struct {
	ID         int64
	HolderName string
	Balance    decimal.Decimal
	EntryCount int
	Limits     Limits
	CreatedAt  time.Time
}

type AccountOption func(*Account)

// WithLimits overrides the default ceilings for one account.
func WithLimits(limits Limits) AccountOption {
	return func(a *Account) {
		a.limits = limits.Normalize()
	}
}

// WithClock sets the time source used for entry timestamps.
func WithClock(now func() time.Time) AccountOption {
	return func(a *Account) {
		if now != nil {
			a.now = now
		}
	}
}

type AccountRepository interface {
	Register(holderName string, openingDeposit decimal.Decimal, opts ...AccountOption) (*Account, error)
	Find(id int64) (*Account, error)
	All() iter.Seq[*Account]
	Len() int
}

// NewAccount validates holderName and opens an account. A positive opening
// deposit becomes the first DEPOSIT entry.
func NewAccount(id int64, holderName string, openingDeposit decimal.Decimal, opts ...AccountOption) (*Account, error) {
	name, err := ValidateHolderName(holderName)
	if err != nil {
		return nil, err
	}

	if openingDeposit.IsNegative() {
		return nil, errors.NewAppError(errors.ValidationFailed, "opening deposit cannot be negative")
	}

	a := &Account{
		id:         id,
		holderName: name,
		balance:    decimal.Zero,
		limits:     DefaultLimits(),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	a.createdAt = a.now()

	if err := checkAmountScale(openingDeposit, "opening deposit"); err != nil {
		return nil, err
	}
	opening := RoundAmount(openingDeposit)
	if opening.GreaterThan(MaxEntryAmount) {
		return nil, errors.NewAppErrorf(errors.LimitExceeded,
			"opening deposit exceeds maximum limit of %s", FormatAmount(MaxEntryAmount))
	}
	if opening.IsPositive() {
		if _, err := a.apply(KindDeposit, opening, "Initial deposit"); err != nil {
			return nil, err
		}
	}

	return a, nil
}

func (a *Account) ID() int64 {
	return a.id
}

func (a *Account) HolderName() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.holderName
}

func (a *Account) Balance() decimal.Decimal {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.balance
}

// Limits are fixed at creation and need no locking.
func (a *Account) Limits() Limits {
	return a.limits
}

func (a *Account) CreatedAt() time.Time {
	return a.createdAt
}

func (a *Account) Snapshot() AccountSnapshot {
	a.mu.Lock()
	defer a.mu.Unlock()
	return AccountSnapshot{
		ID:         a.id,
		HolderName: a.holderName,
		Balance:    a.balance,
		EntryCount: len(a.history),
		Limits:     a.limits,
		CreatedAt:  a.createdAt,
	}
}

// History returns a copy of the ledger in chronological order.
func (a *Account) History() []Entry {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]Entry, len(a.history))
	copy(out, a.history)
	return out
}

// Deposit credits amount and returns the recorded entry.
func (a *Account) Deposit(amount decimal.Decimal) (Entry, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	rounded, err := a.checkDeposit(amount)
	if err != nil {
		return Entry{}, err
	}
	return a.apply(KindDeposit, rounded, "Cash deposit")
}

// Withdraw debits amount and returns the recorded entry.
func (a *Account) Withdraw(amount decimal.Decimal) (Entry, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	rounded, err := a.checkWithdraw(amount)
	if err != nil {
		return Entry{}, err
	}
	return a.apply(KindWithdrawal, rounded, "Cash withdrawal")
}

// Rename records a NAME_UPDATE entry and then changes the holder name.
func (a *Account) Rename(newName string) (Entry, error) {
	name, err := ValidateHolderName(newName)
	if err != nil {
		return Entry{}, err
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	old := a.holderName
	entry, err := a.apply(KindNameUpdate, decimal.Zero,
		fmt.Sprintf("Name changed from '%s' to '%s'", old, name))
	if err != nil {
		return Entry{}, err
	}
	a.holderName = name
	return entry, nil
}

// Reconcile recomputes the balance from the ledger and reports a mismatch
// or a negative balance as an internal error.
func (a *Account) Reconcile() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.reconcileLocked()
}

func (a *Account) reconcileLocked() error {
	sum := decimal.Zero
	for _, e := range a.history {
		sum = sum.Add(e.SignedAmount())
	}
	if !sum.Equal(a.balance) {
		return errors.NewAppErrorf(errors.InternalError,
			"account %d balance %s does not match ledger total %s",
			a.id, FormatAmount(a.balance), FormatAmount(sum))
	}
	if a.balance.IsNegative() {
		return errors.NewAppErrorf(errors.InternalError,
			"account %d has negative balance %s", a.id, FormatAmount(a.balance))
	}
	return nil
}

// checkDeposit validates a credit of amount. Caller holds a.mu.
func (a *Account) checkDeposit(amount decimal.Decimal) (decimal.Decimal, error) {
	if amount.IsNegative() {
		return decimal.Zero, errors.NewAppError(errors.ValidationFailed, "deposit amount cannot be negative")
	}
	if err := checkAmountScale(amount, "deposit"); err != nil {
		return decimal.Zero, err
	}

	rounded := RoundAmount(amount)
	if !rounded.IsPositive() {
		return decimal.Zero, errors.NewAppError(errors.ValidationFailed, "deposit amount must be greater than 0")
	}

	if rounded.GreaterThan(a.limits.MaxDeposit) {
		return decimal.Zero, errors.NewAppErrorf(errors.LimitExceeded,
			"deposit amount exceeds maximum deposit limit of %s", FormatAmount(a.limits.MaxDeposit))
	}

	return rounded, nil
}

// checkWithdraw validates a debit of amount. Caller holds a.mu.
func (a *Account) checkWithdraw(amount decimal.Decimal) (decimal.Decimal, error) {
	if !amount.IsPositive() {
		return decimal.Zero, errors.NewAppError(errors.ValidationFailed, "withdrawal amount must be greater than 0")
	}
	if err := checkAmountScale(amount, "withdrawal"); err != nil {
		return decimal.Zero, err
	}

	rounded := RoundAmount(amount)
	if !rounded.IsPositive() {
		return decimal.Zero, errors.NewAppError(errors.ValidationFailed, "withdrawal amount must be greater than 0")
	}

	if rounded.GreaterThan(a.limits.MaxWithdrawal) {
		return decimal.Zero, errors.NewAppErrorf(errors.LimitExceeded,
			"withdrawal amount exceeds maximum withdrawal limit of %s", FormatAmount(a.limits.MaxWithdrawal))
	}

	if rounded.GreaterThan(a.balance) {
		return decimal.Zero, errors.NewInsufficientFunds(a.balance, rounded)
	}

	return rounded, nil
}

// apply moves the balance by the signed amount and appends the matching
// entry. Caller holds a.mu. Nothing changes when the result would be negative.
func (a *Account) apply(kind Kind, amount decimal.Decimal, description string) (Entry, error) {
	amount = clampEntryAmount(amount)
	delta := amount.Mul(decimal.NewFromInt(int64(kind.Sign())))
	next := a.balance.Add(delta)
	if next.IsNegative() {
		return Entry{}, errors.NewAppErrorf(errors.InternalError,
			"account %d would reach negative balance %s", a.id, FormatAmount(next))
	}

	at := a.now()
	if n := len(a.history); n > 0 && at.Before(a.history[n-1].timestamp) {
		at = a.history[n-1].timestamp
	}

	entry := NewEntry(a.id, kind, amount, next, at, description)
	a.balance = next
	a.history = append(a.history, entry)
	return entry, nil
}
