package services

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/ibanking/backend/internal/models"
)

// UserDirectory resolves an identity-provider subject to an internal user.
// GetUser returns (nil, nil) when the subject is not registered.
type UserDirectory interface {
	GetUser(ctx context.Context, externalID string) (*models.User, error)
}

// UserRegistry persists newly signed-up users.
type UserRegistry interface {
	SaveUser(ctx context.Context, user *models.User) (int64, error)
}

// AccountStore persists accounts. Lookups return (nil, nil) when nothing matches.
type AccountStore interface {
	GetOwnedAccount(ctx context.Context, iban string, userID uuid.UUID) (*models.Account, error)
	GetAccount(ctx context.Context, iban string) (*models.Account, error)
	ListAccounts(ctx context.Context, userID uuid.UUID) ([]models.Account, error)
	Upsert(ctx context.Context, account *models.Account) (int64, error)
	Delete(ctx context.Context, iban string) (int64, error)
}

// LedgerStore persists top-up and transfer records. Lookups by id return
// (nil, nil) when the record does not exist.
type LedgerStore interface {
	ListTopUps(ctx context.Context, iban string) ([]models.TopUp, error)
	GetTopUp(ctx context.Context, id uuid.UUID) (*models.TopUp, error)
	ListTransfers(ctx context.Context, iban string) ([]models.Transfer, error)
	GetTransfer(ctx context.Context, id uuid.UUID) (*models.Transfer, error)
	SaveTopUp(ctx context.Context, topUp *models.TopUp) (int64, error)
	SaveTransfer(ctx context.Context, transfer *models.Transfer) (int64, error)
	DeleteTopUpsByAccount(ctx context.Context, iban string) (int64, error)
}

// IDGenerator hands out record ids and IBAN tokens.
type IDGenerator interface {
	NewID() uuid.UUID
	NewIBAN() string
}

// RandomIDs draws both ids and IBANs from random (v4) UUIDs. An IBAN is the
// 128-bit token rendered as 32 hex digits.
type RandomIDs struct{}

func (RandomIDs) NewID() uuid.UUID {
	return uuid.New()
}

func (RandomIDs) NewIBAN() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}
