package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/ibanking/backend/internal/middleware"
	"github.com/ibanking/backend/internal/models"
	"github.com/ibanking/backend/internal/services"
	"github.com/shopspring/decimal"
)

// ---- mock implementations ----

type mockAccountService struct {
	listFn  func(externalID string) ([]models.Account, error)
	getFn   func(externalID, iban string) (*models.Account, error)
	openFn  func(externalID string) (*models.Account, error)
	closeFn func(externalID, iban string) (int64, error)
}

func (m *mockAccountService) ListAccounts(_ context.Context, externalID string) ([]models.Account, error) {
	if m.listFn != nil {
		return m.listFn(externalID)
	}
	return nil, fmt.Errorf("not configured")
}

func (m *mockAccountService) GetAccount(_ context.Context, externalID, iban string) (*models.Account, error) {
	if m.getFn != nil {
		return m.getFn(externalID, iban)
	}
	return nil, fmt.Errorf("not configured")
}

func (m *mockAccountService) OpenAccount(_ context.Context, externalID string) (*models.Account, error) {
	if m.openFn != nil {
		return m.openFn(externalID)
	}
	return nil, fmt.Errorf("not configured")
}

func (m *mockAccountService) CloseAccount(_ context.Context, externalID, iban string) (int64, error) {
	if m.closeFn != nil {
		return m.closeFn(externalID, iban)
	}
	return 0, fmt.Errorf("not configured")
}

type mockTransactionService struct {
	listTopUpsFn    func(externalID, iban string) ([]models.TopUp, error)
	getTopUpFn      func(externalID string, id uuid.UUID) (*models.TopUp, error)
	listTransfersFn func(externalID, iban string) ([]models.Transfer, error)
	getTransferFn   func(externalID string, id uuid.UUID) (*models.Transfer, error)
	topUpFn         func(externalID string, amount decimal.Decimal, iban string) (*services.TopUpResult, error)
	transferFn      func(externalID string, req services.TransferRequest) (*models.Transfer, error)
}

func (m *mockTransactionService) ListTopUps(_ context.Context, externalID, iban string) ([]models.TopUp, error) {
	if m.listTopUpsFn != nil {
		return m.listTopUpsFn(externalID, iban)
	}
	return nil, fmt.Errorf("not configured")
}

func (m *mockTransactionService) GetTopUp(_ context.Context, externalID string, id uuid.UUID) (*models.TopUp, error) {
	if m.getTopUpFn != nil {
		return m.getTopUpFn(externalID, id)
	}
	return nil, fmt.Errorf("not configured")
}

func (m *mockTransactionService) ListTransfers(_ context.Context, externalID, iban string) ([]models.Transfer, error) {
	if m.listTransfersFn != nil {
		return m.listTransfersFn(externalID, iban)
	}
	return nil, fmt.Errorf("not configured")
}

func (m *mockTransactionService) GetTransfer(_ context.Context, externalID string, id uuid.UUID) (*models.Transfer, error) {
	if m.getTransferFn != nil {
		return m.getTransferFn(externalID, id)
	}
	return nil, fmt.Errorf("not configured")
}

func (m *mockTransactionService) TopUp(_ context.Context, externalID string, amount decimal.Decimal, iban string) (*services.TopUpResult, error) {
	if m.topUpFn != nil {
		return m.topUpFn(externalID, amount, iban)
	}
	return nil, fmt.Errorf("not configured")
}

func (m *mockTransactionService) Transfer(_ context.Context, externalID string, req services.TransferRequest) (*models.Transfer, error) {
	if m.transferFn != nil {
		return m.transferFn(externalID, req)
	}
	return nil, fmt.Errorf("not configured")
}

type mockAuthService struct {
	signUpFn func(req services.SignUpRequest) (*services.SignUpResponse, error)
	signInFn func(req services.SignInRequest) (*services.SignInResponse, error)
}

func (m *mockAuthService) SignUp(_ context.Context, req services.SignUpRequest) (*services.SignUpResponse, error) {
	if m.signUpFn != nil {
		return m.signUpFn(req)
	}
	return nil, fmt.Errorf("not configured")
}

func (m *mockAuthService) SignIn(_ context.Context, req services.SignInRequest) (*services.SignInResponse, error) {
	if m.signInFn != nil {
		return m.signInFn(req)
	}
	return nil, fmt.Errorf("not configured")
}

// ---- helpers ----

func fakeAuth(externalID string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if externalID != "" {
				r = r.WithContext(middleware.WithExternalID(r.Context(), externalID))
			}
			next.ServeHTTP(w, r)
		})
	}
}

func newTestRouter(externalID string, mount func(r chi.Router)) *chi.Mux {
	r := chi.NewRouter()
	r.Use(fakeAuth(externalID))
	mount(r)
	return r
}

func doRequest(router http.Handler, method, url string, body any) *httptest.ResponseRecorder {
	var req *http.Request
	switch b := body.(type) {
	case nil:
		req = httptest.NewRequest(method, url, nil)
	case string:
		req = httptest.NewRequest(method, url, strings.NewReader(b))
	default:
		payload, _ := json.Marshal(b)
		req = httptest.NewRequest(method, url, strings.NewReader(string(payload)))
	}
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeError(w *httptest.ResponseRecorder) services.ErrorResponse {
	var resp services.ErrorResponse
	json.Unmarshal(w.Body.Bytes(), &resp)
	return resp
}
