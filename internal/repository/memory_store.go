package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/ibanking/backend/internal/models"
)

// MemoryStore is an in-process implementation of every store interface.
// Records are copied on the way in and out so callers never share state
// with the store.
type MemoryStore struct {
	mu        sync.RWMutex
	users     map[string]models.User
	accounts  map[string]models.Account
	topUps    map[uuid.UUID]models.TopUp
	transfers map[uuid.UUID]models.Transfer
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:     make(map[string]models.User),
		accounts:  make(map[string]models.Account),
		topUps:    make(map[uuid.UUID]models.TopUp),
		transfers: make(map[uuid.UUID]models.Transfer),
	}
}

func (s *MemoryStore) GetUser(_ context.Context, externalID string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[externalID]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (s *MemoryStore) SaveUser(_ context.Context, user *models.User) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.users[user.ExternalID] = *user
	return 1, nil
}

func (s *MemoryStore) GetOwnedAccount(_ context.Context, iban string, userID uuid.UUID) (*models.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.accounts[iban]
	if !ok || a.UserID != userID {
		return nil, nil
	}
	return &a, nil
}

func (s *MemoryStore) GetAccount(_ context.Context, iban string) (*models.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.accounts[iban]
	if !ok {
		return nil, nil
	}
	return &a, nil
}

func (s *MemoryStore) ListAccounts(_ context.Context, userID uuid.UUID) ([]models.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var accounts []models.Account
	for _, a := range s.accounts {
		if a.UserID == userID {
			accounts = append(accounts, a)
		}
	}
	sort.Slice(accounts, func(i, j int) bool {
		return accounts[i].DateOpened.Before(accounts[j].DateOpened)
	})
	return accounts, nil
}

// Upsert keeps the stored identity fields of an existing IBAN and replaces its balance.
func (s *MemoryStore) Upsert(_ context.Context, account *models.Account) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.accounts[account.IBAN]; ok {
		s.accounts[account.IBAN] = existing.WithBalance(account.Balance)
		return 1, nil
	}
	s.accounts[account.IBAN] = *account
	return 1, nil
}

func (s *MemoryStore) Delete(_ context.Context, iban string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.accounts[iban]; !ok {
		return 0, nil
	}
	delete(s.accounts, iban)
	return 1, nil
}

func (s *MemoryStore) ListTopUps(_ context.Context, iban string) ([]models.TopUp, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var topUps []models.TopUp
	for _, t := range s.topUps {
		if t.AccountIBAN == iban {
			topUps = append(topUps, t)
		}
	}
	sort.Slice(topUps, func(i, j int) bool {
		return topUps[i].DateTransferred.After(topUps[j].DateTransferred)
	})
	return topUps, nil
}

func (s *MemoryStore) GetTopUp(_ context.Context, id uuid.UUID) (*models.TopUp, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.topUps[id]
	if !ok {
		return nil, nil
	}
	return &t, nil
}

func (s *MemoryStore) ListTransfers(_ context.Context, iban string) ([]models.Transfer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var transfers []models.Transfer
	for _, t := range s.transfers {
		if t.SenderIBAN == iban || t.ReceiverIBAN == iban {
			transfers = append(transfers, t)
		}
	}
	sort.Slice(transfers, func(i, j int) bool {
		return transfers[i].DateTransferred.After(transfers[j].DateTransferred)
	})
	return transfers, nil
}

func (s *MemoryStore) GetTransfer(_ context.Context, id uuid.UUID) (*models.Transfer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.transfers[id]
	if !ok {
		return nil, nil
	}
	return &t, nil
}

func (s *MemoryStore) SaveTopUp(_ context.Context, topUp *models.TopUp) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.topUps[topUp.ID] = *topUp
	return 1, nil
}

func (s *MemoryStore) SaveTransfer(_ context.Context, transfer *models.Transfer) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.transfers[transfer.ID] = *transfer
	return 1, nil
}

func (s *MemoryStore) DeleteTopUpsByAccount(_ context.Context, iban string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var removed int64
	for id, t := range s.topUps {
		if t.AccountIBAN == iban {
			delete(s.topUps, id)
			removed++
		}
	}
	return removed, nil
}
