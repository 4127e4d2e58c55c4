// ABOUTME: Role resolution across the primary and fallback role tables
// ABOUTME: Ordered lookups with bootstrap provisioning for users without a record

package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/uchsavet/savet-portal/internal/store"
)

// ErrRoleLookup wraps unexpected storage errors during role resolution.
// The gate fails closed on it.
var ErrRoleLookup = errors.New("role lookup failed")

// ErrBootstrapWrite wraps storage errors during bootstrap provisioning.
var ErrBootstrapWrite = errors.New("bootstrap write failed")

// roleLookup is one named strategy consulted in order. Get returns
// store.ErrNotFound when the table has no usable role for the user.
type roleLookup struct {
	name string
	get  func(ctx context.Context, userID string) (string, error)
}

// Resolver produces exactly one authoritative role per request by consulting
// the primary role table, then the fallback, then bootstrapping a record for
// users that have none. It never caches: every call re-reads storage.
type Resolver struct {
	lookups []roleLookup
	roles   store.RoleStore
	logger  *slog.Logger
}

// NewResolver creates a resolver over the two role tables
func NewResolver(roles store.RoleStore) *Resolver {
	return &Resolver{
		lookups: []roleLookup{
			{name: "admin_users", get: roles.GetAdminRole},
			{name: "profiles", get: roles.GetProfileRole},
		},
		roles:  roles,
		logger: slog.Default().With("component", "roles"),
	}
}

// Resolve returns the authoritative role for the identity. Users with no
// record in either table are provisioned through bootstrap: the first user
// ever becomes admin, everyone after that gets the plain user role.
func (r *Resolver) Resolve(ctx context.Context, id *Identity) (string, error) {
	for _, lookup := range r.lookups {
		role, err := lookup.get(ctx, id.UserID)
		if err == nil {
			return role, nil
		}
		if errors.Is(err, store.ErrNotFound) {
			continue
		}
		r.logger.Error("role lookup failed", "lookup", lookup.name, "user_id", id.UserID, "error", err)
		return "", fmt.Errorf("%w: %s: %v", ErrRoleLookup, lookup.name, err)
	}

	return r.bootstrap(ctx, id)
}

// bootstrap provisions a role record for a user with none. The count-then
// -decide check is not atomic: two concurrent first requests can both see an
// empty table. The upsert's conflict key keeps the tables consistent per
// user, but which users end up admin depends on write ordering.
func (r *Resolver) bootstrap(ctx context.Context, id *Identity) (string, error) {
	role := store.RoleUser

	count, err := r.roles.CountAdminUsers(ctx)
	if err != nil {
		// Unknown count is treated as an empty table
		r.logger.Warn("counting admin users failed, assuming first user", "user_id", id.UserID, "error", err)
		count = 0
	}
	if count == 0 {
		role = store.RoleAdmin
	}

	if err := r.roles.UpsertAdminRole(ctx, id.UserID, id.Email, role); err != nil {
		r.logger.Error("bootstrap write failed", "table", "admin_users", "user_id", id.UserID, "error", err)
		return "", fmt.Errorf("%w: %v", ErrBootstrapWrite, err)
	}

	// Mirrored write, best effort; the tables are not updated transactionally
	if err := r.roles.UpsertProfileRole(ctx, id.UserID, id.Email, role); err != nil {
		r.logger.Error("bootstrap write failed", "table", "profiles", "user_id", id.UserID, "error", err)
		return "", fmt.Errorf("%w: %v", ErrBootstrapWrite, err)
	}

	r.logger.Info("bootstrapped role record", "user_id", id.UserID, "role", role)
	return role, nil
}
