package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	mW "github.com/ibanking/backend/internal/middleware"
	"go.uber.org/zap"
)

// RouterConfig carries everything NewRouter mounts.
type RouterConfig struct {
	Accounts       *AccountHandler
	Transactions   *TransactionHandler
	Auth           *AuthHandler
	JWTSecret      string
	JWTIssuer      string
	AllowedOrigins []string
	RequestTimeout time.Duration
	Log            *zap.Logger
}

// NewRouter builds the full HTTP handler chain with the API under /api/v1.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(mW.RequestLogger(cfg.Log))
	r.Use(chimw.Recoverer)
	r.Use(mW.SecurityHeaders)
	if cfg.RequestTimeout > 0 {
		r.Use(chimw.Timeout(cfg.RequestTimeout))
	}

	// Cross-origin access is off unless origins are configured.
	if len(cfg.AllowedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   cfg.AllowedOrigins,
			AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
			ExposedHeaders:   []string{"Link"},
			AllowCredentials: false,
			MaxAge:           86400,
		}))
	}

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
	})

	r.Route("/api/v1", func(r chi.Router) {
		// Public endpoints
		r.Post("/auth/signUp", cfg.Auth.SignUp)
		r.Post("/auth/signIn", cfg.Auth.SignIn)

		// Protected endpoints
		r.Group(func(r chi.Router) {
			r.Use(mW.Auth(cfg.JWTSecret, cfg.JWTIssuer, cfg.Log))
			r.Use(mW.RequireVerifiedEmail)

			r.Get("/accounts", cfg.Accounts.ListAccounts)
			r.Post("/accounts", cfg.Accounts.OpenAccount)
			r.Get("/accounts/{iban}", cfg.Accounts.GetAccount)
			r.Delete("/accounts/{iban}", cfg.Accounts.CloseAccount)
			r.Get("/accounts/{iban}/qr", cfg.Accounts.AccountQR)
			r.Get("/accounts/{iban}/transfers", cfg.Transactions.ListTransfers)

			r.Get("/transfers/{iban}/topUps", cfg.Transactions.ListTopUps)
			r.Get("/transfers/topUps/{id}", cfg.Transactions.GetTopUp)
			r.Get("/transfers/{id}", cfg.Transactions.GetTransfer)
			r.Post("/transfers/topUpAccount", cfg.Transactions.TopUp)
			r.Post("/transfers/makeTransfer", cfg.Transactions.MakeTransfer)
		})
	})

	return r
}
