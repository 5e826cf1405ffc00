package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/heronbank/account-service/internal/models"
)

// Store opens units of work against the account write store. Every
// mutating engine operation runs inside exactly one Tx: all of its writes
// commit together or not at all.
type Store interface {
	Begin(ctx context.Context) (Tx, error)
}

// Tx is one unit of work over the account write store. Get and Save
// report models.ErrAccountNotFound for missing ids. Flush forces pending
// writes to be issued before the next statement; it exists so the
// transfer path can sequence its payee credit ahead of its origin debit.
type Tx interface {
	Get(ctx context.Context, id int64) (*models.Account, error)
	Insert(ctx context.Context, account *models.Account) error
	Save(ctx context.Context, account *models.Account) error
	Delete(ctx context.Context, id int64) error
	Flush(ctx context.Context) error
	Commit() error
	Rollback() error
}

// AccountStore is the PostgreSQL implementation of Store (source of truth).
type AccountStore struct {
	db *sql.DB
}

func NewAccountStore(db *sql.DB) *AccountStore {
	return &AccountStore{db: db}
}

func (s *AccountStore) Begin(ctx context.Context) (Tx, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	return &accountTx{tx: tx}, nil
}

type accountTx struct {
	tx *sql.Tx
}

func (t *accountTx) Get(ctx context.Context, id int64) (*models.Account, error) {
	query := `
		SELECT id, name, currency, balance, treasury, created_at, updated_at
		FROM accounts
		WHERE id = $1
	`
	var account models.Account
	err := t.tx.QueryRowContext(ctx, query, id).Scan(
		&account.ID, &account.Name, &account.Currency,
		&account.Balance, &account.Treasury,
		&account.CreatedAt, &account.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrAccountNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	return &account, nil
}

// Insert persists a new account. The store assigns the id; whatever id the
// caller carried is overwritten with the generated one.
func (t *accountTx) Insert(ctx context.Context, account *models.Account) error {
	query := `
		INSERT INTO accounts (name, currency, balance, treasury, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`
	err := t.tx.QueryRowContext(ctx, query,
		account.Name, account.Currency, account.Balance, account.Treasury,
		account.CreatedAt, account.UpdatedAt,
	).Scan(&account.ID)
	if err != nil {
		return fmt.Errorf("failed to create account: %w", err)
	}
	return nil
}

func (t *accountTx) Save(ctx context.Context, account *models.Account) error {
	query := `
		UPDATE accounts
		SET name = $2, currency = $3, balance = $4, treasury = $5, updated_at = $6
		WHERE id = $1
	`
	result, err := t.tx.ExecContext(ctx, query,
		account.ID, account.Name, account.Currency,
		account.Balance, account.Treasury, account.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update account: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if rows == 0 {
		return models.ErrAccountNotFound
	}
	return nil
}

func (t *accountTx) Delete(ctx context.Context, id int64) error {
	result, err := t.tx.ExecContext(ctx, `DELETE FROM accounts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete account: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if rows == 0 {
		return models.ErrAccountNotFound
	}
	return nil
}

// Flush is a no-op here: within a SQL transaction each statement is issued
// to the server in order, so the payee credit is already sequenced ahead
// of the origin debit. The method stays on the interface as the ordering
// hook for stores that buffer writes.
func (t *accountTx) Flush(ctx context.Context) error {
	return nil
}

func (t *accountTx) Commit() error {
	if err := t.tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// Rollback aborts the unit of work. Safe to defer after Commit.
func (t *accountTx) Rollback() error {
	if err := t.tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		return fmt.Errorf("failed to roll back transaction: %w", err)
	}
	return nil
}
