// Package store provides persistence for savet-portal.
//
// The production implementation is SQLiteStore (modernc.org/sqlite, pure Go).
// Tables are created automatically on open. Timestamps are stored as RFC3339
// text in UTC.
//
// Two tables serve the access gate's role resolution: admin_users is the
// primary role table and profiles is the fallback. They are deliberately
// independent stores of user→role; the gate consults them in order and
// mirrors bootstrap writes into both. See the auth package for the
// resolution rules.
//
// MockStore is an in-memory implementation for tests, with optional failure
// injection for exercising the gate's fail-closed paths.
package store
