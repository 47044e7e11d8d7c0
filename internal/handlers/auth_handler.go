package handlers

import (
	"context"
	"net/http"

	"github.com/ibanking/backend/internal/services"
	"go.uber.org/zap"
)

type AuthService interface {
	SignUp(ctx context.Context, req services.SignUpRequest) (*services.SignUpResponse, error)
	SignIn(ctx context.Context, req services.SignInRequest) (*services.SignInResponse, error)
}

type AuthHandler struct {
	service   AuthService
	validator *services.ValidationHelper
	log       *zap.Logger
}

func NewAuthHandler(service AuthService, log *zap.Logger) *AuthHandler {
	return &AuthHandler{
		service:   service,
		validator: services.NewValidationHelper(),
		log:       log,
	}
}

// SignUp handles POST /auth/signUp.
func (h *AuthHandler) SignUp(w http.ResponseWriter, r *http.Request) {
	var req services.SignUpRequest
	if !decodeJSON(w, r, &req) || !validate(w, h.validator, &req, nil) {
		return
	}

	resp, err := h.service.SignUp(r.Context(), req)
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

// SignIn handles POST /auth/signIn.
func (h *AuthHandler) SignIn(w http.ResponseWriter, r *http.Request) {
	var req services.SignInRequest
	if !decodeJSON(w, r, &req) || !validate(w, h.validator, &req, nil) {
		return
	}

	resp, err := h.service.SignIn(r.Context(), req)
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}
