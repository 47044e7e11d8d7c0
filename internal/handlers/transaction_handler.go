package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/ibanking/backend/internal/models"
	"github.com/ibanking/backend/internal/services"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type TransactionService interface {
	ListTopUps(ctx context.Context, externalID, iban string) ([]models.TopUp, error)
	GetTopUp(ctx context.Context, externalID string, id uuid.UUID) (*models.TopUp, error)
	ListTransfers(ctx context.Context, externalID, iban string) ([]models.Transfer, error)
	GetTransfer(ctx context.Context, externalID string, id uuid.UUID) (*models.Transfer, error)
	TopUp(ctx context.Context, externalID string, amount decimal.Decimal, iban string) (*services.TopUpResult, error)
	Transfer(ctx context.Context, externalID string, req services.TransferRequest) (*models.Transfer, error)
}

type topUpRequest struct {
	AccountIBAN string          `json:"accountIban" validate:"required"`
	Sum         decimal.Decimal `json:"sum" validate:"dec_gte=10,dec_places=2"`
}

var topUpMessages = map[string]string{
	"Sum":            "The minimum top-up sum 10 Eur.",
	"Sum.dec_places": "Incorrect amount.",
}

type transferRequest struct {
	SenderIBAN   string          `json:"senderAccountIban" validate:"required"`
	ReceiverIBAN string          `json:"receiverAccountIban" validate:"required"`
	ReceiverName string          `json:"receiverName" validate:"required,max=128"`
	Purpose      string          `json:"purpose" validate:"max=255"`
	Sum          decimal.Decimal `json:"sum" validate:"dec_gte=0.01,dec_places=2"`
}

var transferMessages = map[string]string{
	"Sum": "Incorrect amount.",
}

type topUpSummary struct {
	ID              uuid.UUID       `json:"id"`
	Sum             decimal.Decimal `json:"sum"`
	DateTransferred time.Time       `json:"dateTransferred"`
}

type topUpDetail struct {
	AccountIBAN     string          `json:"accountIban"`
	Sum             decimal.Decimal `json:"sum"`
	DateTransferred time.Time       `json:"dateTransferred"`
}

type topUpResponse struct {
	ID              uuid.UUID       `json:"id"`
	AccountIBAN     string          `json:"accountIban"`
	Sum             decimal.Decimal `json:"sum"`
	Balance         decimal.Decimal `json:"balance"`
	DateTransferred time.Time       `json:"dateTransferred"`
}

type transferSummary struct {
	ID              uuid.UUID       `json:"id"`
	Purpose         string          `json:"purpose"`
	Sum             decimal.Decimal `json:"sum"`
	DateTransferred time.Time       `json:"dateTransferred"`
}

type TransactionHandler struct {
	service   TransactionService
	validator *services.ValidationHelper
	log       *zap.Logger
}

func NewTransactionHandler(service TransactionService, log *zap.Logger) *TransactionHandler {
	return &TransactionHandler{
		service:   service,
		validator: services.NewValidationHelper(),
		log:       log,
	}
}

// ListTopUps handles GET /transfers/{iban}/topUps.
func (h *TransactionHandler) ListTopUps(w http.ResponseWriter, r *http.Request) {
	externalID, ok := callerID(w, r)
	if !ok {
		return
	}

	topUps, err := h.service.ListTopUps(r.Context(), externalID, chi.URLParam(r, "iban"))
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}

	resp := make([]topUpSummary, 0, len(topUps))
	for _, t := range topUps {
		resp = append(resp, topUpSummary{ID: t.ID, Sum: t.Sum, DateTransferred: t.DateTransferred})
	}
	writeJSON(w, http.StatusOK, resp)
}

// GetTopUp handles GET /transfers/topUps/{id}.
func (h *TransactionHandler) GetTopUp(w http.ResponseWriter, r *http.Request) {
	externalID, ok := callerID(w, r)
	if !ok {
		return
	}
	id, ok := recordID(w, r)
	if !ok {
		return
	}

	topUp, err := h.service.GetTopUp(r.Context(), externalID, id)
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, topUpDetail{
		AccountIBAN:     topUp.AccountIBAN,
		Sum:             topUp.Sum,
		DateTransferred: topUp.DateTransferred,
	})
}

// ListTransfers handles GET /accounts/{iban}/transfers.
func (h *TransactionHandler) ListTransfers(w http.ResponseWriter, r *http.Request) {
	externalID, ok := callerID(w, r)
	if !ok {
		return
	}

	transfers, err := h.service.ListTransfers(r.Context(), externalID, chi.URLParam(r, "iban"))
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}

	resp := make([]transferSummary, 0, len(transfers))
	for _, t := range transfers {
		resp = append(resp, transferSummary{ID: t.ID, Purpose: t.Purpose, Sum: t.Sum, DateTransferred: t.DateTransferred})
	}
	writeJSON(w, http.StatusOK, resp)
}

// GetTransfer handles GET /transfers/{id}.
func (h *TransactionHandler) GetTransfer(w http.ResponseWriter, r *http.Request) {
	externalID, ok := callerID(w, r)
	if !ok {
		return
	}
	id, ok := recordID(w, r)
	if !ok {
		return
	}

	transfer, err := h.service.GetTransfer(r.Context(), externalID, id)
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, transfer)
}

// TopUp handles POST /transfers/topUpAccount.
func (h *TransactionHandler) TopUp(w http.ResponseWriter, r *http.Request) {
	externalID, ok := callerID(w, r)
	if !ok {
		return
	}

	var req topUpRequest
	if !decodeJSON(w, r, &req) || !validate(w, h.validator, &req, topUpMessages) {
		return
	}

	result, err := h.service.TopUp(r.Context(), externalID, req.Sum, req.AccountIBAN)
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, topUpResponse{
		ID:              result.TopUp.ID,
		AccountIBAN:     result.TopUp.AccountIBAN,
		Sum:             result.TopUp.Sum,
		Balance:         result.Balance,
		DateTransferred: result.TopUp.DateTransferred,
	})
}

// MakeTransfer handles POST /transfers/makeTransfer.
func (h *TransactionHandler) MakeTransfer(w http.ResponseWriter, r *http.Request) {
	externalID, ok := callerID(w, r)
	if !ok {
		return
	}

	var req transferRequest
	if !decodeJSON(w, r, &req) || !validate(w, h.validator, &req, transferMessages) {
		return
	}

	transfer, err := h.service.Transfer(r.Context(), externalID, services.TransferRequest{
		SenderIBAN:   req.SenderIBAN,
		ReceiverIBAN: req.ReceiverIBAN,
		ReceiverName: req.ReceiverName,
		Purpose:      req.Purpose,
		Amount:       req.Sum,
	})
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, transfer)
}
