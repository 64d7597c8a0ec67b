package domain

import (
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"account-ledger/internal/errors"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func assertAmount(t *testing.T, expected string, actual decimal.Decimal, msgAndArgs ...interface{}) {
	t.Helper()
	assert.Equal(t, expected, FormatAmount(actual), msgAndArgs...)
}

func newTestAccount(t *testing.T, id int64, opening string, opts ...AccountOption) *Account {
	t.Helper()
	account, err := NewAccount(id, "John Doe", dec(opening), opts...)
	require.NoError(t, err)
	return account
}

func TestNewAccountWithOpeningDeposit(t *testing.T) {
	account := newTestAccount(t, 100000000001, "1000.00")

	assert.Equal(t, int64(100000000001), account.ID())
	assert.Equal(t, "John Doe", account.HolderName())
	assertAmount(t, "1000.00", account.Balance())

	history := account.History()
	require.Len(t, history, 1)
	assert.Equal(t, KindDeposit, history[0].Kind())
	assertAmount(t, "1000.00", history[0].Amount())
	assertAmount(t, "1000.00", history[0].BalanceAfter())
	assert.Equal(t, "Initial deposit", history[0].Description())
	assert.NoError(t, account.Reconcile())
}

func TestNewAccountWithoutOpeningDeposit(t *testing.T) {
	account := newTestAccount(t, 1, "0")

	assertAmount(t, "0.00", account.Balance())
	assert.Empty(t, account.History())
}

func TestNewAccountRoundsOpeningDeposit(t *testing.T) {
	account := newTestAccount(t, 1, "10.005")

	assertAmount(t, "10.01", account.Balance())
	assert.NoError(t, account.Reconcile())
}

func TestNewAccountRejectsBadInput(t *testing.T) {
	_, err := NewAccount(1, "John Doe", dec("-1"))
	assert.True(t, errors.Is(err, errors.ErrValidation))

	_, err = NewAccount(1, "John Doe", dec("10000000.01"))
	assert.True(t, errors.Is(err, errors.ErrLimitExceeded))

	_, err = NewAccount(1, "", decimal.Zero)
	assert.True(t, errors.Is(err, errors.ErrValidation))
}

func TestValidateHolderName(t *testing.T) {
	valid := map[string]string{
		"Jo":                    "Jo",
		"  Mary-Jane O'Neil  ":  "Mary-Jane O'Neil",
		"Dr. Zoë Ångström":      "Dr. Zoë Ångström",
		strings.Repeat("a", 50): strings.Repeat("a", 50),
	}
	for input, expected := range valid {
		name, err := ValidateHolderName(input)
		require.NoError(t, err, "input %q", input)
		assert.Equal(t, expected, name)
	}

	invalid := []string{
		"",
		"   ",
		"J",
		" J ",
		strings.Repeat("a", 51),
		"John3",
		"John_Doe",
		"Robert'); DROP",
	}
	for _, input := range invalid {
		_, err := ValidateHolderName(input)
		assert.True(t, errors.Is(err, errors.ErrValidation), "input %q should be rejected", input)
	}
}

func TestDepositAndWithdraw(t *testing.T) {
	account := newTestAccount(t, 1, "1000.00")

	entry, err := account.Deposit(dec("500.00"))
	require.NoError(t, err)
	assert.Equal(t, KindDeposit, entry.Kind())
	assertAmount(t, "1500.00", entry.BalanceAfter())
	assertAmount(t, "1500.00", account.Balance())

	_, err = account.Withdraw(dec("2000.00"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrInsufficientFunds))

	var funds *errors.InsufficientFundsError
	require.True(t, errors.As(err, &funds))
	assertAmount(t, "1500.00", funds.Balance)
	assertAmount(t, "2000.00", funds.Requested)
	assertAmount(t, "500.00", funds.Shortfall)

	assertAmount(t, "1500.00", account.Balance())
	assert.Len(t, account.History(), 2)

	entry, err = account.Withdraw(dec("250.25"))
	require.NoError(t, err)
	assert.Equal(t, KindWithdrawal, entry.Kind())
	assertAmount(t, "1249.75", account.Balance())
	assert.NoError(t, account.Reconcile())
}

func TestDepositValidation(t *testing.T) {
	account := newTestAccount(t, 1, "0")

	for _, amount := range []string{"-1", "-0.001", "0", "0.004"} {
		_, err := account.Deposit(dec(amount))
		assert.True(t, errors.Is(err, errors.ErrValidation), "amount %s", amount)
	}

	entry, err := account.Deposit(dec("0.005"))
	require.NoError(t, err)
	assertAmount(t, "0.01", entry.Amount())
}

func TestWithdrawValidation(t *testing.T) {
	account := newTestAccount(t, 1, "100")

	for _, amount := range []string{"-5", "0", "0.001"} {
		_, err := account.Withdraw(dec(amount))
		assert.True(t, errors.Is(err, errors.ErrValidation), "amount %s", amount)
	}
	assertAmount(t, "100.00", account.Balance())
}

func TestCeilingBoundaries(t *testing.T) {
	account := newTestAccount(t, 1, "100000.00")

	_, err := account.Deposit(dec("1000000.00"))
	assert.NoError(t, err)
	_, err = account.Deposit(dec("1000000.01"))
	assert.True(t, errors.Is(err, errors.ErrLimitExceeded))

	_, err = account.Withdraw(dec("50000.00"))
	assert.NoError(t, err)
	_, err = account.Withdraw(dec("50000.01"))
	assert.True(t, errors.Is(err, errors.ErrLimitExceeded))

	assertAmount(t, "1050000.00", account.Balance())
	assert.NoError(t, account.Reconcile())
}

func TestWithdrawLimitCheckedBeforeBalance(t *testing.T) {
	account := newTestAccount(t, 1, "10.00")

	_, err := account.Withdraw(dec("60000"))
	assert.True(t, errors.Is(err, errors.ErrLimitExceeded))
	assert.False(t, errors.Is(err, errors.ErrInsufficientFunds))
}

func TestCustomLimits(t *testing.T) {
	account := newTestAccount(t, 1, "0", WithLimits(Limits{MaxDeposit: dec("100")}))

	assertAmount(t, "100.00", account.Limits().MaxDeposit)
	assertAmount(t, "50000.00", account.Limits().MaxWithdrawal)

	_, err := account.Deposit(dec("100.01"))
	assert.True(t, errors.Is(err, errors.ErrLimitExceeded))
}

func TestLimitsAreCappedAtEntryMaximum(t *testing.T) {
	account := newTestAccount(t, 1, "0", WithLimits(Limits{
		MaxDeposit:    dec("20000000"),
		MaxWithdrawal: dec("1e12"),
	}))

	assertAmount(t, "10000000.00", account.Limits().MaxDeposit)
	assertAmount(t, "10000000.00", account.Limits().MaxWithdrawal)

	_, err := account.Deposit(dec("15000000"))
	assert.True(t, errors.Is(err, errors.ErrLimitExceeded))
	assertAmount(t, "0.00", account.Balance())
	assert.Empty(t, account.History())

	entry, err := account.Deposit(dec("10000000"))
	require.NoError(t, err)
	assertAmount(t, "10000000.00", entry.Amount())
	assertAmount(t, "10000000.00", account.Balance())
}

func TestExtremeExponentsAreRejected(t *testing.T) {
	huge := decimal.New(1, 50_000_000)
	tiny := decimal.New(1, -50_000_000)

	_, err := NewAccount(1, "John Doe", huge)
	assert.True(t, errors.Is(err, errors.ErrLimitExceeded))

	account := newTestAccount(t, 1, "100")

	_, err = account.Deposit(huge)
	assert.True(t, errors.Is(err, errors.ErrLimitExceeded))
	_, err = account.Withdraw(huge)
	assert.True(t, errors.Is(err, errors.ErrLimitExceeded))

	_, err = account.Deposit(tiny)
	assert.True(t, errors.Is(err, errors.ErrValidation))
	_, err = account.Withdraw(tiny)
	assert.True(t, errors.Is(err, errors.ErrValidation))

	_, err = account.Deposit(decimal.New(1, 7))
	assert.True(t, errors.Is(err, errors.ErrLimitExceeded), "10000000 is above the default deposit ceiling")

	assertAmount(t, "100.00", account.Balance())
	assert.Len(t, account.History(), 1)
}

func TestRename(t *testing.T) {
	account := newTestAccount(t, 1, "50")

	entry, err := account.Rename("  Jane Doe ")
	require.NoError(t, err)
	assert.Equal(t, KindNameUpdate, entry.Kind())
	assertAmount(t, "0.00", entry.Amount())
	assertAmount(t, "50.00", entry.BalanceAfter())
	assert.Equal(t, "Name changed from 'John Doe' to 'Jane Doe'", entry.Description())
	assert.Equal(t, "Jane Doe", account.HolderName())

	_, err = account.Rename("X")
	assert.True(t, errors.Is(err, errors.ErrValidation))
	assert.Equal(t, "Jane Doe", account.HolderName())
	assert.Len(t, account.History(), 2)
	assert.NoError(t, account.Reconcile())
}

func TestHistoryIsACopy(t *testing.T) {
	account := newTestAccount(t, 1, "10")
	_, err := account.Deposit(dec("5"))
	require.NoError(t, err)

	first := account.History()
	second := account.History()
	assert.Equal(t, first, second)

	first[0] = Entry{}
	assert.Equal(t, second, account.History())
	assert.Len(t, account.History(), 2)
}

func TestTimestampsNeverGoBackwards(t *testing.T) {
	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	ticks := []time.Time{base, base.Add(time.Minute), base.Add(-time.Hour), base.Add(2 * time.Minute)}
	var mu sync.Mutex
	i := 0
	clock := func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		ts := ticks[i%len(ticks)]
		i++
		return ts
	}

	account, err := NewAccount(1, "John Doe", dec("10"), WithClock(clock))
	require.NoError(t, err)
	for n := 0; n < 3; n++ {
		_, err := account.Deposit(dec("1"))
		require.NoError(t, err)
	}

	history := account.History()
	for n := 1; n < len(history); n++ {
		assert.False(t, history[n].Timestamp().Before(history[n-1].Timestamp()), "entry %d", n)
	}
}

func TestConcurrentMovementsKeepLedgerConsistent(t *testing.T) {
	account := newTestAccount(t, 1, "1000")

	const workers = 100
	var wg sync.WaitGroup
	wg.Add(2 * workers)
	for n := 0; n < workers; n++ {
		go func() {
			defer wg.Done()
			_, err := account.Deposit(dec("1.10"))
			assert.NoError(t, err)
		}()
		go func() {
			defer wg.Done()
			_, err := account.Withdraw(dec("0.10"))
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assertAmount(t, "1100.00", account.Balance())
	assert.Len(t, account.History(), 1+2*workers)
	assert.NoError(t, account.Reconcile())
}

func TestReconcileDetectsBrokenLedger(t *testing.T) {
	account := newTestAccount(t, 1, "10")
	account.balance = dec("11")

	err := account.Reconcile()
	assert.True(t, errors.Is(err, errors.ErrInternal))
}

func TestRoundAmountIsIdempotent(t *testing.T) {
	for _, raw := range []string{"0", "0.004", "0.005", "1.235", "99999.999", "12.3"} {
		once := RoundAmount(dec(raw))
		assert.True(t, once.Equal(RoundAmount(once)), "amount %s", raw)
	}
	assertAmount(t, "1.24", RoundAmount(dec("1.235")))
}
