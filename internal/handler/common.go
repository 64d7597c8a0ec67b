package handler

import (
	"encoding/json"
	"net/http"
	"regexp"
	"time"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"

	"account-ledger/internal/domain"
	"account-ledger/internal/errors"
	"account-ledger/internal/service"
)

type Response struct {
	Data  interface{} `json:"data,omitempty"`
	Error *Error      `json:"error,omitempty"`
}

type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

type AccountResponse struct {
	AccountID  int64     `json:"account_id"`
	HolderName string    `json:"holder_name"`
	Balance    string    `json:"balance"`
	EntryCount int       `json:"entry_count"`
	CreatedAt  time.Time `json:"created_at"`
}

type EntryResponse struct {
	EntryID      string    `json:"entry_id"`
	AccountID    int64     `json:"account_id"`
	Kind         string    `json:"kind"`
	Amount       string    `json:"amount"`
	BalanceAfter string    `json:"balance_after"`
	Timestamp    time.Time `json:"timestamp"`
	Description  string    `json:"description,omitempty"`
}

func newAccountResponse(account *domain.Account) AccountResponse {
	snap := account.Snapshot()
	return AccountResponse{
		AccountID:  snap.ID,
		HolderName: snap.HolderName,
		Balance:    domain.FormatAmount(snap.Balance),
		EntryCount: snap.EntryCount,
		CreatedAt:  snap.CreatedAt,
	}
}

func newEntryResponse(entry domain.Entry) EntryResponse {
	return EntryResponse{
		EntryID:      entry.ID().String(),
		AccountID:    entry.AccountID(),
		Kind:         entry.Kind().String(),
		Amount:       domain.FormatAmount(entry.Amount()),
		BalanceAfter: domain.FormatAmount(entry.BalanceAfter()),
		Timestamp:    entry.Timestamp(),
		Description:  entry.Description(),
	}
}

// amountPattern accepts plain decimal notation only. Exponents are refused so
// a short body cannot expand into a huge coefficient.
var amountPattern = regexp.MustCompile(`^-?\d{1,15}(\.\d{1,18})?$`)

// parseAmount reads a decimal amount sent as a JSON string.
func parseAmount(raw string, field string) (decimal.Decimal, *errors.AppError) {
	if !amountPattern.MatchString(raw) {
		return decimal.Zero, errors.NewAppErrorf(errors.ValidationFailed, "invalid %s format", field).
			WithDetails("must be a decimal number with up to 18 fractional digits")
	}
	amount, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, errors.NewAppErrorf(errors.ValidationFailed, "invalid %s format", field).WithDetails(err.Error())
	}
	return amount, nil
}

func accountIDFromPath(r *http.Request) (int64, error) {
	return service.ParseAccountID(mux.Vars(r)["account_id"])
}

func writeJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	response := Response{Data: data}
	json.NewEncoder(w).Encode(response)
}

func writeError(w http.ResponseWriter, appErr *errors.AppError) {
	writeErrorWithData(w, appErr, nil)
}

func writeErrorWithData(w http.ResponseWriter, appErr *errors.AppError, data interface{}) {
	w.Header().Set("Content-Type", "application/json")

	statusCode := appErr.HTTPStatus()
	errResponse := Error{
		Code:    string(appErr.Code),
		Message: appErr.Message,
		Details: appErr.Details,
	}

	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(Response{Data: data, Error: &errResponse})
}

// writeErr writes any error returned by the services.
func writeErr(w http.ResponseWriter, err error) {
	writeError(w, errors.AsAppError(err))
}
