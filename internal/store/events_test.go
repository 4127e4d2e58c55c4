// ABOUTME: Tests for calendar event store operations
// ABOUTME: Covers create, delete, ordering, and the upcoming filter

package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testEvent(id string, startsAt time.Time) *Event {
	return &Event{
		ID:       id,
		TitleBG:  "Общо събрание",
		TitleEN:  "General assembly",
		Location: "Room 204",
		StartsAt: startsAt,
	}
}

func TestEventStore_CreateAndGet(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	starts := time.Date(2026, 9, 15, 10, 0, 0, 0, time.UTC)
	require.NoError(t, store.CreateEvent(ctx, testEvent("ev-1", starts)))

	event, err := store.GetEvent(ctx, "ev-1")
	require.NoError(t, err)
	assert.Equal(t, "Общо събрание", event.TitleBG)
	assert.True(t, event.StartsAt.Equal(starts))
	assert.Nil(t, event.EndsAt)
}

func TestEventStore_EndsAt(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	starts := time.Date(2026, 9, 15, 10, 0, 0, 0, time.UTC)
	ends := starts.Add(2 * time.Hour)
	event := testEvent("ev-1", starts)
	event.EndsAt = &ends
	require.NoError(t, store.CreateEvent(ctx, event))

	got, err := store.GetEvent(ctx, "ev-1")
	require.NoError(t, err)
	require.NotNil(t, got.EndsAt)
	assert.True(t, got.EndsAt.Equal(ends))
}

func TestEventStore_ListOrdering(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	base := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, store.CreateEvent(ctx, testEvent("ev-late", base.AddDate(0, 1, 0))))
	require.NoError(t, store.CreateEvent(ctx, testEvent("ev-early", base)))

	events, err := store.ListEvents(ctx, 10)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "ev-early", events[0].ID)
	assert.Equal(t, "ev-late", events[1].ID)
}

func TestEventStore_Upcoming(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	now := time.Date(2026, 9, 10, 0, 0, 0, 0, time.UTC)
	require.NoError(t, store.CreateEvent(ctx, testEvent("ev-past", now.AddDate(0, 0, -5))))
	require.NoError(t, store.CreateEvent(ctx, testEvent("ev-future", now.AddDate(0, 0, 5))))

	events, err := store.ListUpcomingEvents(ctx, now, 10)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "ev-future", events[0].ID)
}

func TestEventStore_Delete(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.CreateEvent(ctx, testEvent("ev-1", time.Now())))
	require.NoError(t, store.DeleteEvent(ctx, "ev-1"))

	_, err := store.GetEvent(ctx, "ev-1")
	assert.True(t, errors.Is(err, ErrNotFound))

	err = store.DeleteEvent(ctx, "ev-1")
	assert.True(t, errors.Is(err, ErrNotFound))
}
