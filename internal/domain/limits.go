package domain

import (
	"github.com/shopspring/decimal"
)

// Limits holds the per-operation ceilings applied to one account.
// An amount equal to a ceiling is accepted.
type Limits struct {
	MaxDeposit    decimal.Decimal
	MaxWithdrawal decimal.Decimal
	MaxTransfer   decimal.Decimal
}

func DefaultLimits() Limits {
	return Limits{
		MaxDeposit:    decimal.NewFromInt(1_000_000),
		MaxWithdrawal: decimal.NewFromInt(50_000),
		MaxTransfer:   decimal.NewFromInt(100_000),
	}
}

// Normalize replaces missing or non-positive ceilings with the defaults,
// rounds the rest and caps each at MaxEntryAmount.
func (l Limits) Normalize() Limits {
	def := DefaultLimits()
	pick := func(v, fallback decimal.Decimal) decimal.Decimal {
		if !v.IsPositive() {
			return fallback
		}
		if v.Exponent() > maxAmountExponent {
			return MaxEntryAmount
		}
		return decimal.Min(RoundAmount(v), MaxEntryAmount)
	}
	return Limits{
		MaxDeposit:    pick(l.MaxDeposit, def.MaxDeposit),
		MaxWithdrawal: pick(l.MaxWithdrawal, def.MaxWithdrawal),
		MaxTransfer:   pick(l.MaxTransfer, def.MaxTransfer),
	}
}
