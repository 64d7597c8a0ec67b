package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"

	"account-ledger/internal/domain"
	"account-ledger/internal/errors"
	"account-ledger/internal/service"
)

type AccountHandler struct {
	accountService *service.AccountService
}

func NewAccountHandler(accountService *service.AccountService) *AccountHandler {
	return &AccountHandler{
		accountService: accountService,
	}
}

type CreateAccountRequest struct {
	HolderName     string `json:"holder_name"`
	OpeningDeposit string `json:"opening_deposit,omitempty"`
}

type RenameAccountRequest struct {
	HolderName string `json:"holder_name"`
}

type AmountRequest struct {
	Amount string `json:"amount"`
}

type MovementResponse struct {
	Account AccountResponse `json:"account"`
	Entry   EntryResponse   `json:"entry"`
}

func (h *AccountHandler) CreateAccount(w http.ResponseWriter, r *http.Request) {
	var req CreateAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, errors.NewAppError(errors.InvalidInput, "invalid request body").WithDetails(err.Error()))
		return
	}

	openingDeposit := decimal.Zero
	if req.OpeningDeposit != "" {
		amount, appErr := parseAmount(req.OpeningDeposit, "opening_deposit")
		if appErr != nil {
			writeError(w, appErr)
			return
		}
		openingDeposit = amount
	}

	account, err := h.accountService.CreateAccount(req.HolderName, openingDeposit)
	if err != nil {
		writeErr(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, newAccountResponse(account))
}

func (h *AccountHandler) ListAccounts(w http.ResponseWriter, r *http.Request) {
	accounts := []AccountResponse{}
	for account := range h.accountService.ListAccounts() {
		accounts = append(accounts, newAccountResponse(account))
	}

	writeJSON(w, http.StatusOK, accounts)
}

func (h *AccountHandler) GetAccount(w http.ResponseWriter, r *http.Request) {
	account, err := h.accountService.GetAccount(mux.Vars(r)["account_id"])
	if err != nil {
		writeErr(w, err)
		return
	}

	writeJSON(w, http.StatusOK, newAccountResponse(account))
}

func (h *AccountHandler) RenameAccount(w http.ResponseWriter, r *http.Request) {
	id, err := accountIDFromPath(r)
	if err != nil {
		writeErr(w, err)
		return
	}

	var req RenameAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, errors.NewAppError(errors.InvalidInput, "invalid request body").WithDetails(err.Error()))
		return
	}

	h.movement(w, id, func() (MovementResponse, error) {
		entry, err := h.accountService.Rename(id, req.HolderName)
		return MovementResponse{Entry: newEntryResponse(entry)}, err
	})
}

func (h *AccountHandler) Deposit(w http.ResponseWriter, r *http.Request) {
	h.amountMovement(w, r, h.accountService.Deposit)
}

func (h *AccountHandler) Withdraw(w http.ResponseWriter, r *http.Request) {
	h.amountMovement(w, r, h.accountService.Withdraw)
}

func (h *AccountHandler) History(w http.ResponseWriter, r *http.Request) {
	id, err := accountIDFromPath(r)
	if err != nil {
		writeErr(w, err)
		return
	}

	history, err := h.accountService.History(id)
	if err != nil {
		writeErr(w, err)
		return
	}

	entries := make([]EntryResponse, 0, len(history))
	for _, entry := range history {
		entries = append(entries, newEntryResponse(entry))
	}

	writeJSON(w, http.StatusOK, entries)
}

func (h *AccountHandler) amountMovement(w http.ResponseWriter, r *http.Request, op func(int64, decimal.Decimal) (domain.Entry, error)) {
	id, err := accountIDFromPath(r)
	if err != nil {
		writeErr(w, err)
		return
	}

	var req AmountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, errors.NewAppError(errors.InvalidInput, "invalid request body").WithDetails(err.Error()))
		return
	}

	amount, appErr := parseAmount(req.Amount, "amount")
	if appErr != nil {
		writeError(w, appErr)
		return
	}

	h.movement(w, id, func() (MovementResponse, error) {
		entry, err := op(id, amount)
		return MovementResponse{Entry: newEntryResponse(entry)}, err
	})
}

// movement runs op and answers with the entry it produced plus the
// account's current state.
func (h *AccountHandler) movement(w http.ResponseWriter, id int64, op func() (MovementResponse, error)) {
	resp, err := op()
	if err != nil {
		writeErr(w, err)
		return
	}

	account, err := h.accountService.FindAccount(id)
	if err != nil {
		writeErr(w, err)
		return
	}
	resp.Account = newAccountResponse(account)

	writeJSON(w, http.StatusOK, resp)
}
