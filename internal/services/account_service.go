package services

import (
	"context"
	"time"

	"github.com/ibanking/backend/internal/audit"
	"github.com/ibanking/backend/internal/models"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// AccountService owns the account lifecycle: list, get, open and close.
type AccountService struct {
	users    UserDirectory
	accounts AccountStore
	ledger   LedgerStore
	ids      IDGenerator
	audit    *audit.Logger
	log      *zap.Logger
	now      func() time.Time
}

func NewAccountService(users UserDirectory, accounts AccountStore, ledger LedgerStore, ids IDGenerator, log *zap.Logger) *AccountService {
	return &AccountService{
		users:    users,
		accounts: accounts,
		ledger:   ledger,
		ids:      ids,
		audit:    audit.NewLogger(log),
		log:      log,
		now:      time.Now,
	}
}

// ListAccounts returns every account owned by the caller. An empty result is not an error.
func (s *AccountService) ListAccounts(ctx context.Context, externalID string) ([]models.Account, error) {
	user, err := resolveUser(ctx, s.users, externalID)
	if err != nil {
		return nil, err
	}

	accounts, err := s.accounts.ListAccounts(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	if accounts == nil {
		accounts = []models.Account{}
	}
	return accounts, nil
}

// GetAccount returns the caller's account with the given IBAN.
func (s *AccountService) GetAccount(ctx context.Context, externalID, iban string) (*models.Account, error) {
	user, err := resolveUser(ctx, s.users, externalID)
	if err != nil {
		return nil, err
	}

	account, err := s.accounts.GetOwnedAccount(ctx, iban, user.ID)
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, errAccountNotOwned(iban)
	}
	return account, nil
}

// OpenAccount creates an empty account with a fresh IBAN for the caller.
func (s *AccountService) OpenAccount(ctx context.Context, externalID string) (*models.Account, error) {
	user, err := resolveUser(ctx, s.users, externalID)
	if err != nil {
		return nil, err
	}

	account := &models.Account{
		ID:         s.ids.NewID(),
		IBAN:       s.ids.NewIBAN(),
		UserID:     user.ID,
		Balance:    decimal.Zero,
		DateOpened: s.now(),
	}

	if _, err := s.accounts.Upsert(ctx, account); err != nil {
		s.log.Error("[ACCOUNT] Failed to open account", zap.String("user_id", user.ID.String()), zap.Error(err))
		return nil, err
	}

	s.log.Info("[ACCOUNT] Account opened", zap.String("iban", account.IBAN), zap.String("user_id", user.ID.String()))
	s.audit.LogAccountOpened(account.IBAN, user.ID.String())
	return account, nil
}

// CloseAccount deletes an empty account together with its top-up history and
// returns the number of account rows removed. The two deletions run
// concurrently and are not atomic with respect to each other.
func (s *AccountService) CloseAccount(ctx context.Context, externalID, iban string) (int64, error) {
	user, err := resolveUser(ctx, s.users, externalID)
	if err != nil {
		return 0, err
	}

	account, err := s.accounts.GetOwnedAccount(ctx, iban, user.ID)
	if err != nil {
		return 0, err
	}
	if account == nil {
		return 0, errCloseAccountNotOwned(iban)
	}
	if account.Balance.IsPositive() {
		return 0, errAccountNotEmpty(iban)
	}

	var accountRows, topUpRows int64
	var g errgroup.Group
	g.Go(func() error {
		var err error
		accountRows, err = s.accounts.Delete(ctx, iban)
		return err
	})
	g.Go(func() error {
		var err error
		topUpRows, err = s.ledger.DeleteTopUpsByAccount(ctx, iban)
		return err
	})
	if err := g.Wait(); err != nil {
		s.log.Error("[ACCOUNT] Failed to close account", zap.String("iban", iban), zap.Error(err))
		s.audit.LogError("close_account", iban, err)
		return 0, err
	}

	s.log.Info("[ACCOUNT] Account closed", zap.String("iban", iban), zap.Int64("topups_removed", topUpRows))
	s.audit.LogAccountClosed(iban, topUpRows)
	return accountRows, nil
}

// resolveUser maps the identity-provider subject to an internal user and fails
// fast with NotFound when the subject was never registered.
func resolveUser(ctx context.Context, users UserDirectory, externalID string) (*models.User, error) {
	user, err := users.GetUser(ctx, externalID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, errUserNotRegistered(externalID)
	}
	return user, nil
}
