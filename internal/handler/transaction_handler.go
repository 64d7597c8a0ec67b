package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"account-ledger/internal/domain"
	"account-ledger/internal/errors"
	"account-ledger/internal/service"
)

type TransactionHandler struct {
	transactionService *service.TransactionService
}

func NewTransactionHandler(transactionService *service.TransactionService) *TransactionHandler {
	return &TransactionHandler{
		transactionService: transactionService,
	}
}

type TransferRequest struct {
	SenderAccountID    json.Number `json:"sender_account_id"`
	RecipientAccountID json.Number `json:"recipient_account_id"`
	Amount             string      `json:"amount"`
	IdempotencyKey     string      `json:"idempotency_key,omitempty"`
}

type TransferResponse struct {
	TransactionID      string    `json:"transaction_id"`
	Status             string    `json:"status"`
	State              string    `json:"state"`
	SenderAccountID    int64     `json:"sender_account_id"`
	RecipientAccountID int64     `json:"recipient_account_id"`
	Amount             string    `json:"amount"`
	SenderBalance      string    `json:"sender_balance"`
	RecipientBalance   string    `json:"recipient_balance"`
	FailureReason      string    `json:"failure_reason,omitempty"`
	IdempotencyKey     *string   `json:"idempotency_key,omitempty"`
	CreatedAt          time.Time `json:"created_at"`
}

func newTransferResponse(transaction *domain.Transaction) TransferResponse {
	response := TransferResponse{
		TransactionID:      transaction.ID.String(),
		Status:             string(transaction.Status),
		State:              string(transaction.State),
		SenderAccountID:    transaction.SenderAccountID,
		RecipientAccountID: transaction.RecipientAccountID,
		Amount:             domain.FormatAmount(transaction.Amount),
		SenderBalance:      domain.FormatAmount(transaction.SenderBalance),
		RecipientBalance:   domain.FormatAmount(transaction.RecipientBalance),
		FailureReason:      transaction.FailureReason,
		CreatedAt:          transaction.CreatedAt,
	}

	if transaction.IdempotencyKey != nil {
		keyStr := transaction.IdempotencyKey.String()
		response.IdempotencyKey = &keyStr
	}
	return response
}

func (h *TransactionHandler) Transfer(w http.ResponseWriter, r *http.Request) {
	var req TransferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, errors.NewAppError(errors.InvalidInput, "invalid request body").WithDetails(err.Error()))
		return
	}

	senderID, err := service.ParseAccountID(req.SenderAccountID.String())
	if err != nil {
		writeErr(w, err)
		return
	}
	recipientID, err := service.ParseAccountID(req.RecipientAccountID.String())
	if err != nil {
		writeErr(w, err)
		return
	}

	amount, appErr := parseAmount(req.Amount, "amount")
	if appErr != nil {
		writeError(w, appErr)
		return
	}

	// Parse optional idempotency key
	var idempotencyKey *uuid.UUID
	if req.IdempotencyKey != "" {
		key, err := uuid.Parse(req.IdempotencyKey)
		if err != nil {
			writeError(w, errors.NewAppError(errors.InvalidInput, "invalid idempotency_key format").WithDetails(err.Error()))
			return
		}
		idempotencyKey = &key
	}

	transaction, err := h.transactionService.Transfer(&service.TransferRequest{
		SenderAccountID:    senderID,
		RecipientAccountID: recipientID,
		Amount:             amount,
		IdempotencyKey:     idempotencyKey,
	})
	if err != nil {
		if transaction != nil {
			writeErrorWithData(w, errors.AsAppError(err), newTransferResponse(transaction))
			return
		}
		writeErr(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, newTransferResponse(transaction))
}

func (h *TransactionHandler) GetTransfer(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["transfer_id"])
	if err != nil {
		writeError(w, errors.NewAppError(errors.InvalidInput, "invalid transfer ID").WithDetails(err.Error()))
		return
	}

	transaction, err := h.transactionService.GetTransaction(id)
	if err != nil {
		writeErr(w, err)
		return
	}

	writeJSON(w, http.StatusOK, newTransferResponse(transaction))
}
