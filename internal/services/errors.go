package services

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorKind classifies a client-facing failure of the transaction engine.
type ErrorKind string

const (
	KindNotFound          ErrorKind = "NOT_FOUND"
	KindInvalidState      ErrorKind = "INVALID_STATE"
	KindInsufficientFunds ErrorKind = "INSUFFICIENT_FUNDS"
)

// Error is returned for every business-rule violation. Anything else coming out
// of a service is a collaborator failure and is passed through untouched.
type Error struct {
	Kind    ErrorKind
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// StatusCode maps the kind to the HTTP status class callers are expected to use.
func (e *Error) StatusCode() int {
	switch e.Kind {
	case KindNotFound:
		return http.StatusNotFound
	case KindInvalidState, KindInsufficientFunds:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func newError(kind ErrorKind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// KindOf returns the kind of a domain error, or "" for any other error.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

func IsNotFound(err error) bool          { return KindOf(err) == KindNotFound }
func IsInvalidState(err error) bool      { return KindOf(err) == KindInvalidState }
func IsInsufficientFunds(err error) bool { return KindOf(err) == KindInsufficientFunds }

func errUserNotRegistered(externalID string) *Error {
	return newError(KindNotFound, "User with id: %s is not registered", externalID)
}

func errAccountNotOwned(iban string) *Error {
	return newError(KindNotFound, "You do not have account with IBAN: %s", iban)
}

func errCloseAccountNotOwned(iban string) *Error {
	return newError(KindNotFound, "You do not have the account with IBAN: %s", iban)
}

func errAccountNotEmpty(iban string) *Error {
	return newError(KindInvalidState, "You cannot close the account with IBAN: %s till there is some money", iban)
}

func errTopUpNotFound(id fmt.Stringer) *Error {
	return newError(KindNotFound, "You do not have TopUP with Id: %s", id)
}

func errTransferNotFound(id fmt.Stringer) *Error {
	return newError(KindNotFound, "You do not have the transfer with Id: %s", id)
}

func errSenderNotOwned(iban string) *Error {
	return newError(KindNotFound, "You do not have account with IBAN: %s.", iban)
}

func errReceiverNotFound(iban string) *Error {
	return newError(KindNotFound, "The receiver with account IBAN: %s does not exist.", iban)
}

func errInsufficientFunds(iban string) *Error {
	return newError(KindInsufficientFunds, "There is not enough money in your account with IBAN: %s", iban)
}
