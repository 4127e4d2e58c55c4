// ABOUTME: Account entity store methods for login identities
// ABOUTME: Accounts hold the email and bcrypt password hash used by the login page

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

// CreateAccount inserts a new login account.
// Returns ErrDuplicateEmail when the email is already registered.
func (s *SQLiteStore) CreateAccount(ctx context.Context, account *Account) error {
	query := `
		INSERT INTO accounts (id, email, password_hash, created_at)
		VALUES (?, ?, ?, ?)
	`

	if account.CreatedAt.IsZero() {
		account.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, query,
		account.ID,
		account.Email,
		account.PasswordHash,
		formatTime(account.CreatedAt),
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return ErrDuplicateEmail
		}
		return fmt.Errorf("creating account: %w", err)
	}

	s.logger.Debug("created account", "account_id", account.ID, "email", account.Email)
	return nil
}

// GetAccount retrieves an account by id
func (s *SQLiteStore) GetAccount(ctx context.Context, id string) (*Account, error) {
	query := `SELECT id, email, password_hash, created_at FROM accounts WHERE id = ?`
	return s.scanAccount(s.db.QueryRowContext(ctx, query, id))
}

// GetAccountByEmail retrieves an account by email
func (s *SQLiteStore) GetAccountByEmail(ctx context.Context, email string) (*Account, error) {
	query := `SELECT id, email, password_hash, created_at FROM accounts WHERE email = ?`
	return s.scanAccount(s.db.QueryRowContext(ctx, query, email))
}

func (s *SQLiteStore) scanAccount(row *sql.Row) (*Account, error) {
	var a Account
	var createdAt string
	err := row.Scan(&a.ID, &a.Email, &a.PasswordHash, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scanning account: %w", err)
	}
	a.CreatedAt = parseTime(createdAt)
	return &a, nil
}

// ListAccounts returns all accounts, newest first
func (s *SQLiteStore) ListAccounts(ctx context.Context) ([]Account, error) {
	query := `SELECT id, email, password_hash, created_at FROM accounts ORDER BY created_at DESC`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing accounts: %w", err)
	}
	defer rows.Close()

	var accounts []Account
	for rows.Next() {
		var a Account
		var createdAt string
		if err := rows.Scan(&a.ID, &a.Email, &a.PasswordHash, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning account: %w", err)
		}
		a.CreatedAt = parseTime(createdAt)
		accounts = append(accounts, a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating accounts: %w", err)
	}

	if accounts == nil {
		accounts = []Account{}
	}

	return accounts, nil
}
