// ABOUTME: Contact message entity store methods for the public contact form
// ABOUTME: Messages land unread; admins mark them read from the inbox

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// CreateContactMessage inserts a contact form submission
func (s *SQLiteStore) CreateContactMessage(ctx context.Context, msg *ContactMessage) error {
	query := `
		INSERT INTO contact_messages (id, name, email, subject, body, read, created_at)
		VALUES (?, ?, ?, ?, ?, 0, ?)
	`

	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, query,
		msg.ID,
		msg.Name,
		msg.Email,
		msg.Subject,
		msg.Body,
		formatTime(msg.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("creating contact message: %w", err)
	}

	s.logger.Debug("created contact message", "message_id", msg.ID)
	return nil
}

// GetContactMessage retrieves a contact message by id
func (s *SQLiteStore) GetContactMessage(ctx context.Context, id string) (*ContactMessage, error) {
	query := `
		SELECT id, name, email, subject, body, read, created_at
		FROM contact_messages WHERE id = ?
	`
	return scanContactMessage(s.db.QueryRowContext(ctx, query, id))
}

// ListContactMessages returns messages newest first, optionally unread only
func (s *SQLiteStore) ListContactMessages(ctx context.Context, unreadOnly bool, limit int) ([]*ContactMessage, error) {
	query := `
		SELECT id, name, email, subject, body, read, created_at
		FROM contact_messages
	`
	if unreadOnly {
		query += ` WHERE read = 0`
	}
	query += ` ORDER BY created_at DESC LIMIT ?`

	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("listing contact messages: %w", err)
	}
	defer rows.Close()

	var msgs []*ContactMessage
	for rows.Next() {
		msg, err := scanContactMessage(rows)
		if err != nil {
			return nil, err
		}
		msgs = append(msgs, msg)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating contact messages: %w", err)
	}

	return msgs, nil
}

// MarkContactMessageRead marks a message as read. Idempotent.
func (s *SQLiteStore) MarkContactMessageRead(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `UPDATE contact_messages SET read = 1 WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("marking contact message read: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking mark-read result: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}

	return nil
}

func scanContactMessage(row rowScanner) (*ContactMessage, error) {
	var m ContactMessage
	var createdAt string

	err := row.Scan(&m.ID, &m.Name, &m.Email, &m.Subject, &m.Body, &m.Read, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scanning contact message: %w", err)
	}

	m.CreatedAt = parseTime(createdAt)
	return &m, nil
}
