package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/ibanking/backend/internal/identity"
	"github.com/ibanking/backend/internal/middleware"
	"github.com/ibanking/backend/internal/services"
	"go.uber.org/zap"
)

const maxBodyBytes = 1_048_576

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

// decodeJSON reads exactly one JSON object into dst and writes the 400
// response itself when the body is unusable.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		services.SendErrorResponse(w, "Invalid request body", http.StatusBadRequest, nil)
		return false
	}

	if err := dec.Decode(&struct{}{}); err != io.EOF {
		services.SendErrorResponse(w, "Request body must only contain a single JSON object", http.StatusBadRequest, nil)
		return false
	}
	return true
}

// validate runs struct validation. The first failing field's entry in
// messages, if any, becomes the top-level error message.
func validate(w http.ResponseWriter, v *services.ValidationHelper, req any, messages map[string]string) bool {
	err := v.ValidateStruct(req)
	if err == nil {
		return true
	}

	message := "Validation failed"
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		if m, ok := services.MessageFor(fieldErrs[0], messages); ok {
			message = m
		}
	}
	services.SendErrorResponse(w, message, http.StatusBadRequest, err, messages)
	return false
}

// writeServiceError maps domain and identity-provider errors to their status
// codes. Everything else is logged and reported as 500.
func writeServiceError(w http.ResponseWriter, log *zap.Logger, err error) {
	var domainErr *services.Error
	var identityErr *identity.Error
	switch {
	case errors.As(err, &domainErr):
		services.SendErrorResponse(w, domainErr.Message, domainErr.StatusCode(), nil)
	case errors.As(err, &identityErr):
		services.SendErrorResponse(w, identityErr.Message, http.StatusBadRequest, nil)
	default:
		log.Error("[HTTP] Request failed", zap.Error(err))
		services.SendErrorResponse(w, "Internal server error", http.StatusInternalServerError, nil)
	}
}

func callerID(w http.ResponseWriter, r *http.Request) (string, bool) {
	externalID, ok := middleware.ExternalIDFromContext(r.Context())
	if !ok {
		services.SendErrorResponse(w, "Unauthorized", http.StatusUnauthorized, nil)
		return "", false
	}
	return externalID, true
}

func recordID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		services.SendErrorResponse(w, "Invalid id", http.StatusBadRequest, nil)
		return uuid.Nil, false
	}
	return id, true
}
