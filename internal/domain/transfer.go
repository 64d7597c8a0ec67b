package domain

import (
	"fmt"

	"github.com/shopspring/decimal"

	"account-ledger/internal/errors"
)

// TransferState tracks how far a transfer got.
type TransferState string

const (
	StateValidating  TransferState = "VALIDATING"
	StateDebiting    TransferState = "DEBITING"
	StateCrediting   TransferState = "CREDITING"
	StateCommitted   TransferState = "COMMITTED"
	StateRejected    TransferState = "REJECTED"
	StateCompensated TransferState = "COMPENSATED"
)

// TransferResult describes the outcome of one transfer attempt. Balances are
// the values observed when both accounts were released.
type TransferResult struct {
	SenderID         int64
	RecipientID      int64
	Amount           decimal.Decimal
	State            TransferState
	SenderBalance    decimal.Decimal
	RecipientBalance decimal.Decimal
	SenderEntries    []Entry
	RecipientEntries []Entry
}

// Transfer moves amount from sender to recipient.
//
// Both accounts stay locked, in ascending id order, from the debit check
// until the ledger entries are written. A committed transfer adds exactly one
// TRANSFER_OUT and one TRANSFER_IN entry. If the recipient refuses the credit
// the debit is recorded as a WITHDRAWAL and refunded by a DEPOSIT, leaving
// the sender's balance where it started.
func Transfer(sender, recipient *Account, amount decimal.Decimal) (*TransferResult, error) {
	res := &TransferResult{
		SenderID:    sender.id,
		RecipientID: recipient.id,
		State:       StateValidating,
	}
	if checkAmountScale(amount, "transfer") == nil {
		res.Amount = RoundAmount(amount)
	}

	if err := validateTransfer(sender, recipient, amount); err != nil {
		res.State = StateRejected
		res.SenderBalance = sender.Balance()
		res.RecipientBalance = recipient.Balance()
		return res, err
	}

	unlock := lockPair(sender, recipient)
	defer unlock()

	defer func() {
		res.SenderBalance = sender.balance
		res.RecipientBalance = recipient.balance
	}()

	res.State = StateDebiting
	debit, err := sender.checkWithdraw(amount)
	if err != nil {
		res.State = StateRejected
		return res, err
	}

	res.State = StateCrediting
	if _, err := recipient.checkDeposit(debit); err != nil {
		return res, compensate(res, sender, recipient, debit, err)
	}

	out, err := sender.apply(KindTransferOut, debit,
		fmt.Sprintf("Transfer to %s (Account: %d)", recipient.holderName, recipient.id))
	if err != nil {
		res.State = StateRejected
		return res, err
	}
	in, err := recipient.apply(KindTransferIn, debit,
		fmt.Sprintf("Transfer from %s (Account: %d)", sender.holderName, sender.id))
	if err != nil {
		// recipient credits cannot go negative; reaching this is a defect
		panic(err)
	}

	res.State = StateCommitted
	res.SenderEntries = []Entry{out}
	res.RecipientEntries = []Entry{in}
	return res, nil
}

func validateTransfer(sender, recipient *Account, amount decimal.Decimal) error {
	if sender.id == recipient.id {
		return errors.NewAppError(errors.SameAccountTransfer, "cannot transfer to the same account")
	}

	if !amount.IsPositive() {
		return errors.NewAppError(errors.ValidationFailed, "transfer amount must be greater than 0")
	}
	if err := checkAmountScale(amount, "transfer"); err != nil {
		return err
	}

	rounded := RoundAmount(amount)
	if !rounded.IsPositive() {
		return errors.NewAppError(errors.ValidationFailed, "transfer amount must be greater than 0")
	}

	if rounded.GreaterThan(sender.limits.MaxTransfer) {
		return errors.NewAppErrorf(errors.LimitExceeded,
			"transfer amount exceeds maximum transfer limit of %s", FormatAmount(sender.limits.MaxTransfer))
	}

	return nil
}

// compensate records the debit that already passed validation and refunds
// it. Caller holds both locks.
func compensate(res *TransferResult, sender, recipient *Account, amount decimal.Decimal, cause error) error {
	withdrawal, err := sender.apply(KindWithdrawal, amount,
		fmt.Sprintf("Transfer to account %d", recipient.id))
	if err != nil {
		res.State = StateRejected
		return err
	}

	refund, err := sender.apply(KindDeposit, amount,
		fmt.Sprintf("Refund: transfer to account %d failed", recipient.id))
	if err != nil {
		// the withdrawal above cannot be left unpaired
		panic(err)
	}

	res.State = StateCompensated
	res.SenderEntries = []Entry{withdrawal, refund}
	return errors.NewAppErrorf(errors.TransferCompensated,
		"transfer to account %d failed and was refunded", recipient.id).WithCause(cause)
}

// lockPair locks both accounts in ascending id order and returns the unlock
// function.
func lockPair(a, b *Account) func() {
	first, second := a, b
	if b.id < a.id {
		first, second = b, a
	}
	first.mu.Lock()
	second.mu.Lock()
	return func() {
		second.mu.Unlock()
		first.mu.Unlock()
	}
}
