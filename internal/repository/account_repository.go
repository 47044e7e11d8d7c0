package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/ibanking/backend/internal/models"
)

// AccountRepository persists accounts in PostgreSQL.
type AccountRepository struct {
	db *sql.DB
}

func NewAccountRepository(db *sql.DB) *AccountRepository {
	return &AccountRepository{db: db}
}

const accountColumns = `id, iban, user_id, balance, date_opened`

// GetOwnedAccount returns the account only when it belongs to userID.
func (r *AccountRepository) GetOwnedAccount(ctx context.Context, iban string, userID uuid.UUID) (*models.Account, error) {
	query := `
		SELECT ` + accountColumns + `
		FROM accounts
		WHERE iban = $1 AND user_id = $2
	`
	account, err := scanAccount(r.db.QueryRowContext(ctx, query, iban, userID))
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	return account, nil
}

func (r *AccountRepository) GetAccount(ctx context.Context, iban string) (*models.Account, error) {
	query := `
		SELECT ` + accountColumns + `
		FROM accounts
		WHERE iban = $1
	`
	account, err := scanAccount(r.db.QueryRowContext(ctx, query, iban))
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	return account, nil
}

func (r *AccountRepository) ListAccounts(ctx context.Context, userID uuid.UUID) ([]models.Account, error) {
	query := `
		SELECT ` + accountColumns + `
		FROM accounts
		WHERE user_id = $1
		ORDER BY date_opened
	`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	defer rows.Close()

	var accounts []models.Account
	for rows.Next() {
		var a models.Account
		if err := rows.Scan(&a.ID, &a.IBAN, &a.UserID, &a.Balance, &a.DateOpened); err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		accounts = append(accounts, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	return accounts, nil
}

// Upsert inserts the account or, when the IBAN already exists, overwrites its balance.
func (r *AccountRepository) Upsert(ctx context.Context, account *models.Account) (int64, error) {
	query := `
		INSERT INTO accounts (id, iban, user_id, balance, date_opened)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (iban) DO UPDATE SET balance = EXCLUDED.balance
	`
	result, err := r.db.ExecContext(ctx, query,
		account.ID, account.IBAN, account.UserID, account.Balance, account.DateOpened,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to save account: %w", err)
	}
	return rowsAffected(result)
}

func (r *AccountRepository) Delete(ctx context.Context, iban string) (int64, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM accounts WHERE iban = $1`, iban)
	if err != nil {
		return 0, fmt.Errorf("failed to delete account: %w", err)
	}
	return rowsAffected(result)
}

// scanAccount maps sql.ErrNoRows to (nil, nil).
func scanAccount(row *sql.Row) (*models.Account, error) {
	var a models.Account
	err := row.Scan(&a.ID, &a.IBAN, &a.UserID, &a.Balance, &a.DateOpened)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func rowsAffected(result sql.Result) (int64, error) {
	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to check rows affected: %w", err)
	}
	return rows, nil
}
