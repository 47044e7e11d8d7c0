package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Account is a single balance owned by exactly one user.
type Account struct {
	ID         uuid.UUID       `json:"id" db:"id"`
	IBAN       string          `json:"accountIban" db:"iban"`
	UserID     uuid.UUID       `json:"-" db:"user_id"`
	Balance    decimal.Decimal `json:"balance" db:"balance"`
	DateOpened time.Time       `json:"dateOpened" db:"date_opened"`
}

// WithBalance returns a copy of the account carrying the given balance.
func (a Account) WithBalance(balance decimal.Decimal) Account {
	a.Balance = balance
	return a
}
