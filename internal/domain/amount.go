package domain

import (
	"github.com/shopspring/decimal"

	"account-ledger/internal/errors"
)

// AmountPlaces is the number of fractional digits every amount is kept at.
const AmountPlaces = 2

// MaxEntryAmount bounds the amount recorded on a single ledger entry.
var MaxEntryAmount = decimal.NewFromInt(10_000_000)

// Exponent window of any amount a ledger entry can carry. A non-zero value
// above maxAmountExponent is at least 10^8, past MaxEntryAmount.
const (
	maxAmountExponent = 7
	minAmountExponent = -18
)

// checkAmountScale rejects amounts whose exponent lies outside the entry
// window. It runs before any rounding or comparison, both of which rescale
// the coefficient.
func checkAmountScale(amount decimal.Decimal, operation string) error {
	if amount.IsZero() {
		return nil
	}
	if amount.Exponent() > maxAmountExponent {
		return errors.NewAppErrorf(errors.LimitExceeded,
			"%s amount exceeds maximum limit of %s", operation, FormatAmount(MaxEntryAmount))
	}
	if amount.Exponent() < minAmountExponent {
		return errors.NewAppErrorf(errors.ValidationFailed,
			"%s amount has too many decimal places", operation)
	}
	return nil
}

// RoundAmount rounds d half away from zero to two fractional digits.
// Rounding an already rounded amount returns it unchanged.
func RoundAmount(d decimal.Decimal) decimal.Decimal {
	return d.Round(AmountPlaces)
}

// clampEntryAmount forces an entry amount into [0, MaxEntryAmount].
func clampEntryAmount(d decimal.Decimal) decimal.Decimal {
	d = RoundAmount(d)
	if d.IsNegative() {
		return decimal.Zero
	}
	if d.GreaterThan(MaxEntryAmount) {
		return MaxEntryAmount
	}
	return d
}

// FormatAmount renders d with exactly two fractional digits.
func FormatAmount(d decimal.Decimal) string {
	return d.StringFixed(AmountPlaces)
}
