package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Kind classifies a ledger entry.
type Kind string

const (
	KindDeposit     Kind = "DEPOSIT"
	KindWithdrawal  Kind = "WITHDRAWAL"
	KindTransferOut Kind = "TRANSFER_OUT"
	KindTransferIn  Kind = "TRANSFER_IN"
	KindNameUpdate  Kind = "NAME_UPDATE"
	KindUnknown     Kind = "UNKNOWN"
)

// ParseKind maps s onto a known Kind. Anything unrecognized becomes
// KindUnknown.
func ParseKind(s string) Kind {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case string(KindDeposit):
		return KindDeposit
	case string(KindWithdrawal):
		return KindWithdrawal
	case string(KindTransferOut):
		return KindTransferOut
	case string(KindTransferIn):
		return KindTransferIn
	case string(KindNameUpdate), "ACCOUNT_UPDATE":
		return KindNameUpdate
	default:
		return KindUnknown
	}
}

// Sign is +1 for credits, -1 for debits and 0 for entries that do not move
// money.
func (k Kind) Sign() int {
	switch k {
	case KindDeposit, KindTransferIn:
		return 1
	case KindWithdrawal, KindTransferOut:
		return -1
	default:
		return 0
	}
}

func (k Kind) String() string {
	return string(k)
}

// Entry is an immutable record of one balance-affecting event on an account.
type Entry struct {
	id           uuid.UUID
	accountID    int64
	kind         Kind
	amount       decimal.Decimal
	balanceAfter decimal.Decimal
	timestamp    time.Time
	description  string
}

// NewEntry builds an entry, normalizing the kind, clamping and rounding the
// amount and trimming the description.
func NewEntry(accountID int64, kind Kind, amount, balanceAfter decimal.Decimal, at time.Time, description string) Entry {
	kind = ParseKind(string(kind))
	amount = clampEntryAmount(amount)
	if kind == KindNameUpdate {
		amount = decimal.Zero
	}

	return Entry{
		id:           uuid.New(),
		accountID:    accountID,
		kind:         kind,
		amount:       amount,
		balanceAfter: RoundAmount(balanceAfter),
		timestamp:    at,
		description:  strings.TrimSpace(description),
	}
}

func (e Entry) ID() uuid.UUID                 { return e.id }
func (e Entry) AccountID() int64              { return e.accountID }
func (e Entry) Kind() Kind                    { return e.kind }
func (e Entry) Amount() decimal.Decimal       { return e.amount }
func (e Entry) BalanceAfter() decimal.Decimal { return e.balanceAfter }
func (e Entry) Timestamp() time.Time          { return e.timestamp }
func (e Entry) Description() string           { return e.description }

// SignedAmount is the entry's effect on the owning account's balance.
func (e Entry) SignedAmount() decimal.Decimal {
	return e.amount.Mul(decimal.NewFromInt(int64(e.kind.Sign())))
}
