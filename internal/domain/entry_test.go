package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseKind(t *testing.T) {
	cases := map[string]Kind{
		"DEPOSIT":        KindDeposit,
		"deposit":        KindDeposit,
		" withdrawal ":   KindWithdrawal,
		"TRANSFER_OUT":   KindTransferOut,
		"TRANSFER_IN":    KindTransferIn,
		"NAME_UPDATE":    KindNameUpdate,
		"ACCOUNT_UPDATE": KindNameUpdate,
		"TRANSFER":       KindUnknown,
		"":               KindUnknown,
	}
	for input, expected := range cases {
		assert.Equal(t, expected, ParseKind(input), "input %q", input)
	}
}

func TestNewEntryNormalizes(t *testing.T) {
	at := time.Now()

	entry := NewEntry(7, Kind("refund"), dec("12.345"), dec("100"), at, "  note  ")
	assert.Equal(t, KindUnknown, entry.Kind())
	assertAmount(t, "12.35", entry.Amount())
	assertAmount(t, "0.00", entry.SignedAmount())
	assert.Equal(t, "note", entry.Description())
	assert.Equal(t, int64(7), entry.AccountID())
	assert.Equal(t, at, entry.Timestamp())

	entry = NewEntry(7, KindDeposit, dec("20000000"), dec("0"), at, "")
	assertAmount(t, "10000000.00", entry.Amount())

	entry = NewEntry(7, KindWithdrawal, dec("-3"), dec("0"), at, "")
	assertAmount(t, "0.00", entry.Amount())

	entry = NewEntry(7, KindNameUpdate, dec("50"), dec("0"), at, "")
	assertAmount(t, "0.00", entry.Amount())
}

func TestEntryIDsAreUnique(t *testing.T) {
	seen := make(map[string]struct{})
	for n := 0; n < 1000; n++ {
		id := NewEntry(1, KindDeposit, dec("1"), dec("1"), time.Now(), "").ID().String()
		_, dup := seen[id]
		assert.False(t, dup)
		seen[id] = struct{}{}
	}
}

func TestSignedAmount(t *testing.T) {
	at := time.Now()
	assertAmount(t, "5.00", NewEntry(1, KindDeposit, dec("5"), dec("5"), at, "").SignedAmount())
	assertAmount(t, "5.00", NewEntry(1, KindTransferIn, dec("5"), dec("5"), at, "").SignedAmount())
	assertAmount(t, "-5.00", NewEntry(1, KindWithdrawal, dec("5"), dec("0"), at, "").SignedAmount())
	assertAmount(t, "-5.00", NewEntry(1, KindTransferOut, dec("5"), dec("0"), at, "").SignedAmount())
}
