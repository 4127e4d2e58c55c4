// Package auth provides authentication and authorization for savet-portal.
//
// # Sessions
//
// Admin users authenticate with an email/password login that issues an HS256
// JWT in a cookie. Sessions roll: once more than half the TTL has elapsed,
// any verified request gets a refreshed cookie, including requests the gate
// ends up denying.
//
// # Role Resolution
//
// A user's role lives in one of two tables, consulted in order: admin_users
// (primary) and profiles (fallback). The first table with a non-null role
// wins. Users with no record in either table are bootstrapped: the first
// user ever becomes admin, later users get the plain "user" role. Records
// are written into both tables with upserts keyed on the user id.
//
// The first-user check counts rows and then decides, without a transaction.
// Two concurrent first requests can therefore both be provisioned as admin;
// the upsert semantics keep each user's rows consistent but the race itself
// is accepted.
//
// # The Gate
//
// Gate.Middleware protects the configured path prefix. Roles admin, editor
// and moderator pass; anything else is redirected to the site root, and
// missing sessions to the login page with a redirect parameter. Storage
// failures during resolution fail closed to the root. Every response
// passing through the gate carries a fixed set of security headers.
package auth
