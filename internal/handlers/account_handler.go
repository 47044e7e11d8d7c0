package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/ibanking/backend/internal/models"
	"github.com/shopspring/decimal"
	qrcode "github.com/skip2/go-qrcode"
	"go.uber.org/zap"
)

const qrImageSize = 256

type AccountService interface {
	ListAccounts(ctx context.Context, externalID string) ([]models.Account, error)
	GetAccount(ctx context.Context, externalID, iban string) (*models.Account, error)
	OpenAccount(ctx context.Context, externalID string) (*models.Account, error)
	CloseAccount(ctx context.Context, externalID, iban string) (int64, error)
}

type accountResponse struct {
	AccountIBAN string          `json:"accountIban"`
	Balance     decimal.Decimal `json:"balance"`
	DateOpened  time.Time       `json:"dateOpened"`
}

func newAccountResponse(a models.Account) accountResponse {
	return accountResponse{AccountIBAN: a.IBAN, Balance: a.Balance, DateOpened: a.DateOpened}
}

type AccountHandler struct {
	service AccountService
	log     *zap.Logger
}

func NewAccountHandler(service AccountService, log *zap.Logger) *AccountHandler {
	return &AccountHandler{service: service, log: log}
}

// ListAccounts handles GET /accounts.
func (h *AccountHandler) ListAccounts(w http.ResponseWriter, r *http.Request) {
	externalID, ok := callerID(w, r)
	if !ok {
		return
	}

	accounts, err := h.service.ListAccounts(r.Context(), externalID)
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}

	resp := make([]accountResponse, 0, len(accounts))
	for _, a := range accounts {
		resp = append(resp, newAccountResponse(a))
	}
	writeJSON(w, http.StatusOK, resp)
}

// GetAccount handles GET /accounts/{iban}.
func (h *AccountHandler) GetAccount(w http.ResponseWriter, r *http.Request) {
	externalID, ok := callerID(w, r)
	if !ok {
		return
	}

	account, err := h.service.GetAccount(r.Context(), externalID, chi.URLParam(r, "iban"))
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, newAccountResponse(*account))
}

// OpenAccount handles POST /accounts.
func (h *AccountHandler) OpenAccount(w http.ResponseWriter, r *http.Request) {
	externalID, ok := callerID(w, r)
	if !ok {
		return
	}

	account, err := h.service.OpenAccount(r.Context(), externalID)
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusCreated, newAccountResponse(*account))
}

// CloseAccount handles DELETE /accounts/{iban}.
func (h *AccountHandler) CloseAccount(w http.ResponseWriter, r *http.Request) {
	externalID, ok := callerID(w, r)
	if !ok {
		return
	}

	if _, err := h.service.CloseAccount(r.Context(), externalID, chi.URLParam(r, "iban")); err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// AccountQR handles GET /accounts/{iban}/qr and renders the IBAN as a PNG
// QR code that a payer can scan to prefill a transfer.
func (h *AccountHandler) AccountQR(w http.ResponseWriter, r *http.Request) {
	externalID, ok := callerID(w, r)
	if !ok {
		return
	}

	account, err := h.service.GetAccount(r.Context(), externalID, chi.URLParam(r, "iban"))
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}

	png, err := qrcode.Encode(account.IBAN, qrcode.Medium, qrImageSize)
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	w.Write(png)
}
