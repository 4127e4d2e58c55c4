// ABOUTME: Tests for role resolution and bootstrap provisioning
// ABOUTME: Covers lookup ordering, fallback, first-user admin, and failures

package auth

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uchsavet/savet-portal/internal/store"
)

func testIdentity() *Identity {
	return &Identity{UserID: "user-123", Email: "a@example.org"}
}

func TestResolver_PrimaryWins(t *testing.T) {
	m := store.NewMockStore()
	ctx := context.Background()

	require.NoError(t, m.UpsertAdminRole(ctx, "user-123", "a@example.org", store.RoleEditor))
	require.NoError(t, m.UpsertProfileRole(ctx, "user-123", "a@example.org", store.RoleUser))

	role, err := NewResolver(m).Resolve(ctx, testIdentity())
	require.NoError(t, err)
	assert.Equal(t, store.RoleEditor, role, "primary table wins over fallback")
}

func TestResolver_FallbackConsulted(t *testing.T) {
	m := store.NewMockStore()
	ctx := context.Background()

	require.NoError(t, m.UpsertProfileRole(ctx, "user-123", "a@example.org", store.RoleModerator))
	// Keep the primary table non-empty so bootstrap is not triggered
	require.NoError(t, m.UpsertAdminRole(ctx, "someone-else", "b@example.org", store.RoleAdmin))

	role, err := NewResolver(m).Resolve(ctx, testIdentity())
	require.NoError(t, err)
	assert.Equal(t, store.RoleModerator, role)
}

func TestResolver_Bootstrap_FirstUserBecomesAdmin(t *testing.T) {
	m := store.NewMockStore()
	ctx := context.Background()

	role, err := NewResolver(m).Resolve(ctx, testIdentity())
	require.NoError(t, err)
	assert.Equal(t, store.RoleAdmin, role)

	// Both tables carry the mirrored record afterwards
	primary, err := m.GetAdminRole(ctx, "user-123")
	require.NoError(t, err)
	assert.Equal(t, store.RoleAdmin, primary)

	fallback, err := m.GetProfileRole(ctx, "user-123")
	require.NoError(t, err)
	assert.Equal(t, store.RoleAdmin, fallback)
}

func TestResolver_Bootstrap_LaterUserGetsUserRole(t *testing.T) {
	m := store.NewMockStore()
	ctx := context.Background()

	require.NoError(t, m.UpsertAdminRole(ctx, "someone-else", "b@example.org", store.RoleAdmin))

	role, err := NewResolver(m).Resolve(ctx, testIdentity())
	require.NoError(t, err)
	assert.Equal(t, store.RoleUser, role)

	primary, err := m.GetAdminRole(ctx, "user-123")
	require.NoError(t, err)
	assert.Equal(t, store.RoleUser, primary)
}

func TestResolver_Bootstrap_CountFailureMeansFirstUser(t *testing.T) {
	m := store.NewMockStore()
	ctx := context.Background()

	m.FailCount = errors.New("table is on fire")

	role, err := NewResolver(m).Resolve(ctx, testIdentity())
	require.NoError(t, err)
	assert.Equal(t, store.RoleAdmin, role, "unknown count is treated as empty table")
}

func TestResolver_Bootstrap_WriteFailure(t *testing.T) {
	m := store.NewMockStore()
	ctx := context.Background()

	m.FailUpsert = errors.New("disk full")

	_, err := NewResolver(m).Resolve(ctx, testIdentity())
	assert.True(t, errors.Is(err, ErrBootstrapWrite))
}

func TestResolver_LookupFailure(t *testing.T) {
	m := store.NewMockStore()
	ctx := context.Background()

	m.FailAdminRole = errors.New("connection reset")

	_, err := NewResolver(m).Resolve(ctx, testIdentity())
	assert.True(t, errors.Is(err, ErrRoleLookup))
}

func TestResolver_FallbackLookupFailure(t *testing.T) {
	m := store.NewMockStore()
	ctx := context.Background()

	m.FailProfileRole = errors.New("connection reset")

	_, err := NewResolver(m).Resolve(ctx, testIdentity())
	assert.True(t, errors.Is(err, ErrRoleLookup))
}

func TestResolver_Idempotent(t *testing.T) {
	m := store.NewMockStore()
	ctx := context.Background()

	r := NewResolver(m)

	first, err := r.Resolve(ctx, testIdentity())
	require.NoError(t, err)

	second, err := r.Resolve(ctx, testIdentity())
	require.NoError(t, err)
	assert.Equal(t, first, second)

	// Still a single row: the second call read, not re-bootstrapped
	count, err := m.CountAdminUsers(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}
