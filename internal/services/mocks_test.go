package services

import (
	"context"

	"github.com/google/uuid"
	"github.com/ibanking/backend/internal/identity"
	"github.com/ibanking/backend/internal/models"
	"github.com/stretchr/testify/mock"
)

type MockUserDirectory struct {
	mock.Mock
}

func (m *MockUserDirectory) GetUser(ctx context.Context, externalID string) (*models.User, error) {
	args := m.Called(ctx, externalID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

type MockUserRegistry struct {
	mock.Mock
}

func (m *MockUserRegistry) SaveUser(ctx context.Context, user *models.User) (int64, error) {
	args := m.Called(ctx, user)
	return args.Get(0).(int64), args.Error(1)
}

type MockAccountStore struct {
	mock.Mock
}

func (m *MockAccountStore) GetOwnedAccount(ctx context.Context, iban string, userID uuid.UUID) (*models.Account, error) {
	args := m.Called(ctx, iban, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Account), args.Error(1)
}

func (m *MockAccountStore) GetAccount(ctx context.Context, iban string) (*models.Account, error) {
	args := m.Called(ctx, iban)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Account), args.Error(1)
}

func (m *MockAccountStore) ListAccounts(ctx context.Context, userID uuid.UUID) ([]models.Account, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Account), args.Error(1)
}

func (m *MockAccountStore) Upsert(ctx context.Context, account *models.Account) (int64, error) {
	args := m.Called(ctx, account)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockAccountStore) Delete(ctx context.Context, iban string) (int64, error) {
	args := m.Called(ctx, iban)
	return args.Get(0).(int64), args.Error(1)
}

type MockLedgerStore struct {
	mock.Mock
}

func (m *MockLedgerStore) ListTopUps(ctx context.Context, iban string) ([]models.TopUp, error) {
	args := m.Called(ctx, iban)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.TopUp), args.Error(1)
}

func (m *MockLedgerStore) GetTopUp(ctx context.Context, id uuid.UUID) (*models.TopUp, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.TopUp), args.Error(1)
}

func (m *MockLedgerStore) ListTransfers(ctx context.Context, iban string) ([]models.Transfer, error) {
	args := m.Called(ctx, iban)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Transfer), args.Error(1)
}

func (m *MockLedgerStore) GetTransfer(ctx context.Context, id uuid.UUID) (*models.Transfer, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Transfer), args.Error(1)
}

func (m *MockLedgerStore) SaveTopUp(ctx context.Context, topUp *models.TopUp) (int64, error) {
	args := m.Called(ctx, topUp)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockLedgerStore) SaveTransfer(ctx context.Context, transfer *models.Transfer) (int64, error) {
	args := m.Called(ctx, transfer)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockLedgerStore) DeleteTopUpsByAccount(ctx context.Context, iban string) (int64, error) {
	args := m.Called(ctx, iban)
	return args.Get(0).(int64), args.Error(1)
}

// fixedIDs hands out a predetermined sequence of ids and IBANs.
type fixedIDs struct {
	ids   []uuid.UUID
	ibans []string
}

func (f *fixedIDs) NewID() uuid.UUID {
	id := f.ids[0]
	f.ids = f.ids[1:]
	return id
}

func (f *fixedIDs) NewIBAN() string {
	iban := f.ibans[0]
	f.ibans = f.ibans[1:]
	return iban
}

type MockIdentityProvider struct {
	mock.Mock
}

func (m *MockIdentityProvider) SignUp(ctx context.Context, email, password string) (*identity.SignUpResponse, error) {
	args := m.Called(ctx, email, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.SignUpResponse), args.Error(1)
}

func (m *MockIdentityProvider) SignIn(ctx context.Context, email, password string) (*identity.SignInResponse, error) {
	args := m.Called(ctx, email, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.SignInResponse), args.Error(1)
}

func (m *MockIdentityProvider) LookupUser(ctx context.Context, idToken string) (*identity.UserInfo, error) {
	args := m.Called(ctx, idToken)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.UserInfo), args.Error(1)
}

func (m *MockIdentityProvider) SendEmailVerification(ctx context.Context, idToken string) error {
	args := m.Called(ctx, idToken)
	return args.Error(0)
}
