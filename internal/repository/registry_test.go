package repository

import (
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"account-ledger/internal/domain"
	"account-ledger/internal/errors"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// sequence returns a generator yielding ids in order, repeating the last.
func sequence(ids ...int64) func() int64 {
	var mu sync.Mutex
	i := 0
	return func() int64 {
		mu.Lock()
		defer mu.Unlock()
		id := ids[min(i, len(ids)-1)]
		i++
		return id
	}
}

func TestRegisterAndFind(t *testing.T) {
	registry := NewRegistry(discardLogger())

	account, err := registry.Register("John Doe", decimal.NewFromInt(1000))
	require.NoError(t, err)
	assert.GreaterOrEqual(t, account.ID(), minAccountNumber)
	assert.LessOrEqual(t, account.ID(), maxAccountNumber)

	found, err := registry.Find(account.ID())
	require.NoError(t, err)
	assert.Same(t, account, found)
	assert.Equal(t, 1, registry.Len())
}

func TestRegisterRejectsInvalidName(t *testing.T) {
	registry := NewRegistry(discardLogger())

	_, err := registry.Register("J", decimal.Zero)
	assert.True(t, errors.Is(err, errors.ErrValidation))
	assert.Equal(t, 0, registry.Len())
}

func TestFindUnknownAccount(t *testing.T) {
	registry := NewRegistry(discardLogger())

	_, err := registry.Find(42)
	assert.True(t, errors.Is(err, errors.ErrAccountNotFound))
}

func TestRegisterRetriesOnCollision(t *testing.T) {
	registry := NewRegistry(discardLogger(), WithIDGenerator(sequence(5, 5, 5, 7)))

	first, err := registry.Register("John Doe", decimal.Zero)
	require.NoError(t, err)
	second, err := registry.Register("Jane Roe", decimal.Zero)
	require.NoError(t, err)

	assert.Equal(t, int64(5), first.ID())
	assert.Equal(t, int64(7), second.ID())

	found, err := registry.Find(5)
	require.NoError(t, err)
	assert.Equal(t, "John Doe", found.HolderName(), "collision must not overwrite the existing account")
}

func TestRegisterGivesUpAfterRepeatedCollisions(t *testing.T) {
	registry := NewRegistry(discardLogger(), WithIDGenerator(sequence(9)))

	_, err := registry.Register("John Doe", decimal.Zero)
	require.NoError(t, err)

	_, err = registry.Register("Jane Roe", decimal.Zero)
	assert.True(t, errors.Is(err, errors.ErrInternal))
	assert.Equal(t, 1, registry.Len())
}

func TestRegisterAppliesDefaultLimits(t *testing.T) {
	limits := domain.Limits{MaxDeposit: decimal.NewFromInt(10)}
	registry := NewRegistry(discardLogger(), WithDefaultLimits(limits))

	account, err := registry.Register("John Doe", decimal.Zero)
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(10).Equal(account.Limits().MaxDeposit))

	custom, err := registry.Register("Jane Roe", decimal.Zero,
		domain.WithLimits(domain.Limits{MaxDeposit: decimal.NewFromInt(20)}))
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(20).Equal(custom.Limits().MaxDeposit))
}

func TestAllYieldsRegistrationOrder(t *testing.T) {
	registry := NewRegistry(discardLogger(), WithIDGenerator(sequence(30, 10, 20)))
	for _, name := range []string{"Alice", "Bob", "Carol"} {
		_, err := registry.Register(name, decimal.Zero)
		require.NoError(t, err)
	}

	collect := func() []string {
		var names []string
		for account := range registry.All() {
			names = append(names, account.HolderName())
		}
		return names
	}

	assert.Equal(t, []string{"Alice", "Bob", "Carol"}, collect())
	assert.Equal(t, collect(), collect(), "sequence should be restartable")

	var first []int64
	for account := range registry.All() {
		first = append(first, account.ID())
		break
	}
	assert.Equal(t, []int64{30}, first)
}

func TestConcurrentRegisterProducesUniqueIDs(t *testing.T) {
	registry := NewRegistry(discardLogger())

	const workers = 200
	ids := make(chan int64, workers)
	var wg sync.WaitGroup
	wg.Add(workers)
	for n := 0; n < workers; n++ {
		go func() {
			defer wg.Done()
			account, err := registry.Register("John Doe", decimal.NewFromInt(1))
			if assert.NoError(t, err) {
				ids <- account.ID()
			}
		}()
	}
	wg.Wait()
	close(ids)

	seen := make(map[int64]struct{})
	for id := range ids {
		_, dup := seen[id]
		assert.False(t, dup, "duplicate id %d", id)
		seen[id] = struct{}{}
	}
	assert.Len(t, seen, workers)
	assert.Equal(t, workers, registry.Len())
}
