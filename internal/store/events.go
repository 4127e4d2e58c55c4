// ABOUTME: Calendar event entity store methods with bilingual fields
// ABOUTME: Upcoming queries compare against a caller-supplied reference time

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// CreateEvent inserts a new event. CreatedAt is stamped if zero.
func (s *SQLiteStore) CreateEvent(ctx context.Context, event *Event) error {
	query := `
		INSERT INTO events (id, title_bg, title_en, location, starts_at, ends_at,
			description_bg, description_en, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, query,
		event.ID,
		event.TitleBG,
		event.TitleEN,
		event.Location,
		formatTime(event.StartsAt),
		formatNullableTime(event.EndsAt),
		event.DescriptionBG,
		event.DescriptionEN,
		formatTime(event.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("creating event: %w", err)
	}

	s.logger.Debug("created event", "event_id", event.ID, "starts_at", event.StartsAt)
	return nil
}

// GetEvent retrieves an event by id
func (s *SQLiteStore) GetEvent(ctx context.Context, id string) (*Event, error) {
	query := selectEvent + ` WHERE id = ?`
	return scanEvent(s.db.QueryRowContext(ctx, query, id))
}

// DeleteEvent removes an event by id
func (s *SQLiteStore) DeleteEvent(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM events WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting event: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking delete result: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}

	return nil
}

// ListEvents returns events ordered by start time, soonest first
func (s *SQLiteStore) ListEvents(ctx context.Context, limit int) ([]*Event, error) {
	query := selectEvent + ` ORDER BY starts_at LIMIT ?`
	return s.queryEvents(ctx, query, limit)
}

// ListUpcomingEvents returns events starting at or after the given time,
// soonest first
func (s *SQLiteStore) ListUpcomingEvents(ctx context.Context, now time.Time, limit int) ([]*Event, error) {
	query := selectEvent + ` WHERE starts_at >= ? ORDER BY starts_at LIMIT ?`
	return s.queryEvents(ctx, query, formatTime(now), limit)
}

func (s *SQLiteStore) queryEvents(ctx context.Context, query string, args ...any) ([]*Event, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing events: %w", err)
	}
	defer rows.Close()

	var events []*Event
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, event)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating events: %w", err)
	}

	return events, nil
}

const selectEvent = `
	SELECT id, title_bg, title_en, location, starts_at, ends_at,
		description_bg, description_en, created_at
	FROM events`

func scanEvent(row rowScanner) (*Event, error) {
	var e Event
	var startsAt, createdAt string
	var endsAt sql.NullString

	err := row.Scan(&e.ID, &e.TitleBG, &e.TitleEN, &e.Location, &startsAt, &endsAt,
		&e.DescriptionBG, &e.DescriptionEN, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scanning event: %w", err)
	}

	e.StartsAt = parseTime(startsAt)
	e.EndsAt = parseNullableTime(endsAt)
	e.CreatedAt = parseTime(createdAt)
	return &e, nil
}
