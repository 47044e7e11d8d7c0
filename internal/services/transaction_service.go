package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/ibanking/backend/internal/audit"
	"github.com/ibanking/backend/internal/models"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// TransferRequest describes a movement from one of the caller's accounts to
// any existing account.
type TransferRequest struct {
	SenderIBAN   string
	ReceiverIBAN string
	ReceiverName string
	Purpose      string
	Amount       decimal.Decimal
}

// TopUpResult is the outcome of a successful top-up.
type TopUpResult struct {
	TopUp   models.TopUp
	Balance decimal.Decimal
}

// TransactionService moves money (top-ups, transfers) and answers ledger queries.
//
// There is no per-account serialization: two concurrent operations on the
// same account each read the balance and write back their own result.
type TransactionService struct {
	users    UserDirectory
	accounts AccountStore
	ledger   LedgerStore
	ids      IDGenerator
	audit    *audit.Logger
	log      *zap.Logger
	now      func() time.Time
}

func NewTransactionService(users UserDirectory, accounts AccountStore, ledger LedgerStore, ids IDGenerator, log *zap.Logger) *TransactionService {
	return &TransactionService{
		users:    users,
		accounts: accounts,
		ledger:   ledger,
		ids:      ids,
		audit:    audit.NewLogger(log),
		log:      log,
		now:      time.Now,
	}
}

// ListTopUps returns all top-ups of an account owned by the caller.
func (s *TransactionService) ListTopUps(ctx context.Context, externalID, iban string) ([]models.TopUp, error) {
	if _, err := s.ownedAccount(ctx, externalID, iban); err != nil {
		return nil, err
	}

	topUps, err := s.ledger.ListTopUps(ctx, iban)
	if err != nil {
		return nil, err
	}
	if topUps == nil {
		topUps = []models.TopUp{}
	}
	return topUps, nil
}

// GetTopUp returns a single top-up. A top-up on somebody else's account is
// reported exactly like a missing one.
func (s *TransactionService) GetTopUp(ctx context.Context, externalID string, id uuid.UUID) (*models.TopUp, error) {
	user, err := resolveUser(ctx, s.users, externalID)
	if err != nil {
		return nil, err
	}

	topUp, err := s.ledger.GetTopUp(ctx, id)
	if err != nil {
		return nil, err
	}
	if topUp == nil {
		return nil, errTopUpNotFound(id)
	}

	account, err := s.accounts.GetOwnedAccount(ctx, topUp.AccountIBAN, user.ID)
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, errTopUpNotFound(id)
	}
	return topUp, nil
}

// ListTransfers returns every transfer where the caller's account is the sender or the receiver.
func (s *TransactionService) ListTransfers(ctx context.Context, externalID, iban string) ([]models.Transfer, error) {
	if _, err := s.ownedAccount(ctx, externalID, iban); err != nil {
		return nil, err
	}

	transfers, err := s.ledger.ListTransfers(ctx, iban)
	if err != nil {
		return nil, err
	}
	if transfers == nil {
		transfers = []models.Transfer{}
	}
	return transfers, nil
}

// GetTransfer returns a transfer visible to the caller, i.e. one whose sender
// or receiver account the caller owns.
func (s *TransactionService) GetTransfer(ctx context.Context, externalID string, id uuid.UUID) (*models.Transfer, error) {
	user, err := resolveUser(ctx, s.users, externalID)
	if err != nil {
		return nil, err
	}

	transfer, err := s.ledger.GetTransfer(ctx, id)
	if err != nil {
		return nil, err
	}
	if transfer == nil {
		return nil, errTransferNotFound(id)
	}

	sender, err := s.accounts.GetOwnedAccount(ctx, transfer.SenderIBAN, user.ID)
	if err != nil {
		return nil, err
	}
	receiver, err := s.accounts.GetOwnedAccount(ctx, transfer.ReceiverIBAN, user.ID)
	if err != nil {
		return nil, err
	}
	if sender == nil && receiver == nil {
		return nil, errTransferNotFound(id)
	}
	return transfer, nil
}

// TopUp credits amount to the caller's account and records it. The minimum
// amount is a boundary policy and is not checked here.
func (s *TransactionService) TopUp(ctx context.Context, externalID string, amount decimal.Decimal, iban string) (*TopUpResult, error) {
	account, err := s.ownedAccount(ctx, externalID, iban)
	if err != nil {
		return nil, err
	}

	updated := account.WithBalance(account.Balance.Add(amount))
	topUp := models.TopUp{
		ID:              s.ids.NewID(),
		AccountIBAN:     updated.IBAN,
		Sum:             amount,
		DateTransferred: s.now(),
	}

	var g errgroup.Group
	g.Go(func() error {
		_, err := s.accounts.Upsert(ctx, &updated)
		return err
	})
	g.Go(func() error {
		_, err := s.ledger.SaveTopUp(ctx, &topUp)
		return err
	})
	if err := g.Wait(); err != nil {
		s.log.Error("[TOPUP] Failed to persist top-up", zap.String("iban", iban), zap.Stringer("amount", amount), zap.Error(err))
		s.audit.LogError("topup", iban, err)
		return nil, err
	}

	s.log.Info("[TOPUP] Account credited", zap.String("iban", iban), zap.Stringer("amount", amount), zap.Stringer("balance", updated.Balance))
	s.audit.LogTopUp(topUp.ID.String(), iban, amount, updated.Balance)
	return &TopUpResult{TopUp: topUp, Balance: updated.Balance}, nil
}

// Transfer moves req.Amount from the caller's sender account to the receiver
// account. The ledger record, the debit and the credit are three sequential
// writes; the first failure stops the sequence and is returned.
func (s *TransactionService) Transfer(ctx context.Context, externalID string, req TransferRequest) (*models.Transfer, error) {
	user, err := resolveUser(ctx, s.users, externalID)
	if err != nil {
		return nil, err
	}

	sender, err := s.accounts.GetOwnedAccount(ctx, req.SenderIBAN, user.ID)
	if err != nil {
		return nil, err
	}
	if sender == nil {
		return nil, errSenderNotOwned(req.SenderIBAN)
	}

	receiver, err := s.accounts.GetAccount(ctx, req.ReceiverIBAN)
	if err != nil {
		return nil, err
	}
	if receiver == nil {
		return nil, errReceiverNotFound(req.ReceiverIBAN)
	}

	if req.Amount.GreaterThan(sender.Balance) {
		s.log.Info("[TRANSFER] Insufficient balance", zap.String("iban", req.SenderIBAN),
			zap.Stringer("balance", sender.Balance), zap.Stringer("amount", req.Amount))
		return nil, errInsufficientFunds(req.SenderIBAN)
	}

	transfer := models.Transfer{
		ID:              s.ids.NewID(),
		SenderName:      user.Username,
		SenderIBAN:      req.SenderIBAN,
		ReceiverName:    req.ReceiverName,
		ReceiverIBAN:    req.ReceiverIBAN,
		Purpose:         req.Purpose,
		Sum:             req.Amount,
		DateTransferred: s.now(),
	}

	if _, err := s.ledger.SaveTransfer(ctx, &transfer); err != nil {
		return nil, s.transferFailed(transfer, "save_transfer", err)
	}

	debited := sender.WithBalance(sender.Balance.Sub(req.Amount))
	if _, err := s.accounts.Upsert(ctx, &debited); err != nil {
		return nil, s.transferFailed(transfer, "debit_sender", err)
	}

	// A self-transfer must credit the already debited balance.
	if receiver.IBAN == debited.IBAN {
		receiver = &debited
	}
	credited := receiver.WithBalance(receiver.Balance.Add(req.Amount))
	if _, err := s.accounts.Upsert(ctx, &credited); err != nil {
		return nil, s.transferFailed(transfer, "credit_receiver", err)
	}

	s.log.Info("[TRANSFER] Transfer completed", zap.String("id", transfer.ID.String()),
		zap.String("from", transfer.SenderIBAN), zap.String("to", transfer.ReceiverIBAN), zap.Stringer("amount", transfer.Sum))
	s.audit.LogTransfer(transfer.ID.String(), transfer.SenderIBAN, transfer.ReceiverIBAN, transfer.Sum, "SUCCESS")
	return &transfer, nil
}

func (s *TransactionService) transferFailed(transfer models.Transfer, step string, err error) error {
	s.log.Error("[TRANSFER] Transfer step failed", zap.String("id", transfer.ID.String()), zap.String("step", step), zap.Error(err))
	s.audit.LogTransfer(transfer.ID.String(), transfer.SenderIBAN, transfer.ReceiverIBAN, transfer.Sum, "FAILED")
	return err
}

func (s *TransactionService) ownedAccount(ctx context.Context, externalID, iban string) (*models.Account, error) {
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
