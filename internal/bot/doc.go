// Package bot manages the council's Matrix presence.
//
// Supervisor owns the single live connection handle per process. The first
// Acquire establishes the connection; while the handshake is in flight,
// concurrent callers wait on it (up to a fixed ceiling) instead of starting
// their own. A disabled integration or a missing access token makes Acquire
// return nil without ever touching the network.
//
// The connection answers simple commands in allowed rooms (!events, !news)
// and carries announcements for newly published posts into the configured
// announce room.
package bot
