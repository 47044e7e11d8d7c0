package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/ibanking/backend/internal/models"
)

// LedgerRepository persists top-up and transfer records in PostgreSQL.
type LedgerRepository struct {
	db *sql.DB
}

func NewLedgerRepository(db *sql.DB) *LedgerRepository {
	return &LedgerRepository{db: db}
}

func (r *LedgerRepository) ListTopUps(ctx context.Context, iban string) ([]models.TopUp, error) {
	query := `
		SELECT id, account_iban, sum, date_transferred
		FROM topups
		WHERE account_iban = $1
		ORDER BY date_transferred DESC
	`
	rows, err := r.db.QueryContext(ctx, query, iban)
	if err != nil {
		return nil, fmt.Errorf("failed to list top-ups: %w", err)
	}
	defer rows.Close()

	var topUps []models.TopUp
	for rows.Next() {
		var t models.TopUp
		if err := rows.Scan(&t.ID, &t.AccountIBAN, &t.Sum, &t.DateTransferred); err != nil {
			return nil, fmt.Errorf("failed to scan top-up: %w", err)
		}
		topUps = append(topUps, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list top-ups: %w", err)
	}
	return topUps, nil
}

func (r *LedgerRepository) GetTopUp(ctx context.Context, id uuid.UUID) (*models.TopUp, error) {
	query := `
		SELECT id, account_iban, sum, date_transferred
		FROM topups
		WHERE id = $1
	`
	var t models.TopUp
	err := r.db.QueryRowContext(ctx, query, id).Scan(&t.ID, &t.AccountIBAN, &t.Sum, &t.DateTransferred)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get top-up: %w", err)
	}
	return &t, nil
}

// ListTransfers returns transfers where iban is the sender or the receiver, newest first.
func (r *LedgerRepository) ListTransfers(ctx context.Context, iban string) ([]models.Transfer, error) {
	query := `
		SELECT id, sender_name, sender_iban, receiver_name, receiver_iban, purpose, sum, date_transferred
		FROM transfers
		WHERE sender_iban = $1 OR receiver_iban = $1
		ORDER BY date_transferred DESC
	`
	rows, err := r.db.QueryContext(ctx, query, iban)
	if err != nil {
		return nil, fmt.Errorf("failed to list transfers: %w", err)
	}
	defer rows.Close()

	var transfers []models.Transfer
	for rows.Next() {
		var t models.Transfer
		if err := rows.Scan(&t.ID, &t.SenderName, &t.SenderIBAN, &t.ReceiverName,
			&t.ReceiverIBAN, &t.Purpose, &t.Sum, &t.DateTransferred); err != nil {
			return nil, fmt.Errorf("failed to scan transfer: %w", err)
		}
		transfers = append(transfers, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list transfers: %w", err)
	}
	return transfers, nil
}

func (r *LedgerRepository) GetTransfer(ctx context.Context, id uuid.UUID) (*models.Transfer, error) {
	query := `
		SELECT id, sender_name, sender_iban, receiver_name, receiver_iban, purpose, sum, date_transferred
		FROM transfers
		WHERE id = $1
	`
	var t models.Transfer
	err := r.db.QueryRowContext(ctx, query, id).Scan(&t.ID, &t.SenderName, &t.SenderIBAN,
		&t.ReceiverName, &t.ReceiverIBAN, &t.Purpose, &t.Sum, &t.DateTransferred)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get transfer: %w", err)
	}
	return &t, nil
}

func (r *LedgerRepository) SaveTopUp(ctx context.Context, topUp *models.TopUp) (int64, error) {
	query := `
		INSERT INTO topups (id, account_iban, sum, date_transferred)
		VALUES ($1, $2, $3, $4)
	`
	result, err := r.db.ExecContext(ctx, query, topUp.ID, topUp.AccountIBAN, topUp.Sum, topUp.DateTransferred)
	if err != nil {
		return 0, fmt.Errorf("failed to save top-up: %w", err)
	}
	return rowsAffected(result)
}

func (r *LedgerRepository) SaveTransfer(ctx context.Context, transfer *models.Transfer) (int64, error) {
	query := `
		INSERT INTO transfers (id, sender_name, sender_iban, receiver_name, receiver_iban, purpose, sum, date_transferred)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	result, err := r.db.ExecContext(ctx, query,
		transfer.ID, transfer.SenderName, transfer.SenderIBAN, transfer.ReceiverName,
		transfer.ReceiverIBAN, transfer.Purpose, transfer.Sum, transfer.DateTransferred,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to save transfer: %w", err)
	}
	return rowsAffected(result)
}

// DeleteTopUpsByAccount removes the top-up history of an account. Transfers are kept.
func (r *LedgerRepository) DeleteTopUpsByAccount(ctx context.Context, iban string) (int64, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM topups WHERE account_iban = $1`, iban)
	if err != nil {
		return 0, fmt.Errorf("failed to delete top-ups: %w", err)
	}
	return rowsAffected(result)
}
