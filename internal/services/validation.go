package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// ErrorResponse represents error response structure
type ErrorResponse struct {
	Error   string            `json:"error"`             // Error message
	Details map[string]string `json:"details,omitempty"` // Validation details
}

// ValidationHelper provides shared validation functionality
type ValidationHelper struct {
	validator *validator.Validate
}

// NewValidationHelper creates a new validation helper. Decimal fields reach
// the validator as their exact string form and are checked with the
// dec_gte=<amount> and dec_places=<n> tags.
func NewValidationHelper() *ValidationHelper {
	v := validator.New()
	v.RegisterCustomTypeFunc(func(field reflect.Value) any {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			return d.String()
		}
		return nil
	}, decimal.Decimal{})
	v.RegisterValidation("dec_gte", decimalGTE)
	v.RegisterValidation("dec_places", decimalPlaces)
	return &ValidationHelper{validator: v}
}

func decimalGTE(fl validator.FieldLevel) bool {
	value, err := decimal.NewFromString(fl.Field().String())
	if err != nil {
		return false
	}
	limit, err := decimal.NewFromString(fl.Param())
	if err != nil {
		return false
	}
	return value.GreaterThanOrEqual(limit)
}

func decimalPlaces(fl validator.FieldLevel) bool {
	value, err := decimal.NewFromString(fl.Field().String())
	if err != nil {
		return false
	}
	places, err := strconv.ParseInt(fl.Param(), 10, 32)
	if err != nil {
		return false
	}
	return value.Equal(value.Truncate(int32(places)))
}

// ValidateStruct validates a struct and returns validation errors
func (vh *ValidationHelper) ValidateStruct(s any) error {
	return vh.validator.Struct(s)
}

// SendErrorResponse sends a JSON error response. When validationErr carries
// field errors, each field's detail comes from MessageFor.
func SendErrorResponse(w http.ResponseWriter, message string, statusCode int, validationErr error, messages ...map[string]string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	errorResp := ErrorResponse{Error: message}
	var fieldErrs validator.ValidationErrors
	if errors.As(validationErr, &fieldErrs) {
		errorResp.Details = make(map[string]string)
		for _, err := range fieldErrs {
			errorResp.Details[err.Field()] = fieldMessage(err, messages)
		}
	}

	json.NewEncoder(w).Encode(errorResp)
}

func fieldMessage(err validator.FieldError, messages []map[string]string) string {
	for _, m := range messages {
		if msg, ok := MessageFor(err, m); ok {
			return msg
		}
	}
	return fmt.Sprintf("Field Validation Failed on '%s' tag", err.Tag())
}

// MessageFor looks up a custom message keyed "Field.tag", then "Field".
func MessageFor(err validator.FieldError, messages map[string]string) (string, bool) {
	if msg, ok := messages[err.Field()+"."+err.Tag()]; ok {
		return msg, true
	}
	msg, ok := messages[err.Field()]
	return msg, ok
}
