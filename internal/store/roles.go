// ABOUTME: Primary and fallback role table operations for the access gate
// ABOUTME: Upserts conflict on user_id so bootstrap re-runs are idempotent

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// GetAdminRole returns the role from the primary role table.
// Returns ErrNotFound when the user has no row or the role column is NULL.
func (s *SQLiteStore) GetAdminRole(ctx context.Context, userID string) (string, error) {
	return s.getRole(ctx, "admin_users", userID)
}

// GetProfileRole returns the role from the fallback role table.
// Returns ErrNotFound when the user has no row or the role column is NULL.
func (s *SQLiteStore) GetProfileRole(ctx context.Context, userID string) (string, error) {
	return s.getRole(ctx, "profiles", userID)
}

func (s *SQLiteStore) getRole(ctx context.Context, table, userID string) (string, error) {
	query := fmt.Sprintf(`SELECT role FROM %s WHERE user_id = ?`, table)

	var role sql.NullString
	err := s.db.QueryRowContext(ctx, query, userID).Scan(&role)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("reading role from %s: %w", table, err)
	}

	if !role.Valid || role.String == "" {
		return "", ErrNotFound
	}

	return role.String, nil
}

// UpsertAdminRole writes a role row into the primary role table, updating the
// role and email on conflict. The operation is idempotent per user id.
func (s *SQLiteStore) UpsertAdminRole(ctx context.Context, userID, email, role string) error {
	query := `
		INSERT INTO admin_users (user_id, email, role, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET
			email = excluded.email,
			role = excluded.role,
			updated_at = excluded.updated_at
	`

	now := formatTime(time.Now())
	if _, err := s.db.ExecContext(ctx, query, userID, email, role, now, now); err != nil {
		return fmt.Errorf("upserting admin role: %w", err)
	}

	s.logger.Debug("upserted admin role", "user_id", userID, "role", role)
	return nil
}

// UpsertProfileRole writes a role row into the fallback role table, updating
// the role and email on conflict. The display name is left untouched.
func (s *SQLiteStore) UpsertProfileRole(ctx context.Context, userID, email, role string) error {
	query := `
		INSERT INTO profiles (user_id, email, role, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET
			email = excluded.email,
			role = excluded.role,
			updated_at = excluded.updated_at
	`

	now := formatTime(time.Now())
	if _, err := s.db.ExecContext(ctx, query, userID, email, role, now, now); err != nil {
		return fmt.Errorf("upserting profile role: %w", err)
	}

	s.logger.Debug("upserted profile role", "user_id", userID, "role", role)
	return nil
}

// CountAdminUsers returns the number of rows in the primary role table.
// Used by the bootstrap path to detect the first user ever.
func (s *SQLiteStore) CountAdminUsers(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM admin_users`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting admin users: %w", err)
	}
	return count, nil
}

// ListAdminUsers returns all rows in the primary role table, newest first.
func (s *SQLiteStore) ListAdminUsers(ctx context.Context) ([]AdminUser, error) {
	query := `
		SELECT user_id, email, role, created_at, updated_at
		FROM admin_users
		ORDER BY created_at DESC
	`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing admin users: %w", err)
	}
	defer rows.Close()

	var users []AdminUser
	for rows.Next() {
		var u AdminUser
		var role sql.NullString
		var createdAt, updatedAt string
		if err := rows.Scan(&u.UserID, &u.Email, &role, &createdAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("scanning admin user: %w", err)
		}
		u.Role = role.String
		u.CreatedAt = parseTime(createdAt)
		u.UpdatedAt = parseTime(updatedAt)
		users = append(users, u)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating admin users: %w", err)
	}

	if users == nil {
		users = []AdminUser{}
	}

	return users, nil
}
