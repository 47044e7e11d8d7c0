package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TopUp records a unilateral deposit into one account.
type TopUp struct {
	ID              uuid.UUID       `json:"id" db:"id"`
	AccountIBAN     string          `json:"accountIban" db:"account_iban"`
	Sum             decimal.Decimal `json:"sum" db:"sum"`
	DateTransferred time.Time       `json:"dateTransferred" db:"date_transferred"`
}

// Transfer records a movement between a sender and a receiver account.
// SenderName is denormalized from the caller at write time; ReceiverName is
// whatever the caller supplied.
type Transfer struct {
	ID              uuid.UUID       `json:"id" db:"id"`
	SenderName      string          `json:"senderName" db:"sender_name"`
	SenderIBAN      string          `json:"senderAccountIban" db:"sender_iban"`
	ReceiverName    string          `json:"receiverName" db:"receiver_name"`
	ReceiverIBAN    string          `json:"receiverAccountIban" db:"receiver_iban"`
	Purpose         string          `json:"purpose" db:"purpose"`
	Sum             decimal.Decimal `json:"sum" db:"sum"`
	DateTransferred time.Time       `json:"dateTransferred" db:"date_transferred"`
}
