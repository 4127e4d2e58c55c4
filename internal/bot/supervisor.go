// ABOUTME: Connection supervisor owning the single live chat gateway handle
// ABOUTME: De-duplicates concurrent handshakes and exposes acquire/release

package bot

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Handle is a live connection to the chat gateway. Acquire returning non-nil
// does not imply readiness; callers inspect Ready on the handle itself.
type Handle interface {
	Ready() bool
	Announce(ctx context.Context, text string) error
	Close(ctx context.Context) error
}

// Hooks are lifecycle observers a Connector must register on the connection.
// They are the only thing that settles an in-flight handshake.
type Hooks struct {
	OnReady        func()
	OnError        func(err error)
	OnDisconnect   func()
	OnReconnecting func()
}

// Connector establishes gateway connections. Connect authenticates with the
// configured credential and returns a handle that may still be connecting.
type Connector interface {
	Connect(ctx context.Context, hooks Hooks) (Handle, error)
}

// Callers waiting on an in-flight handshake give up after the ceiling.
const (
	connectWaitInterval = 500 * time.Millisecond
	connectWaitAttempts = 20
)

// Supervisor owns at most one live gateway handle per process. Concurrent
// acquisitions while a handshake is in flight wait for that handshake rather
// than starting their own.
type Supervisor struct {
	enabled   bool
	token     string
	connector Connector
	logger    *slog.Logger

	// waitCeiling is how long a caller waits on an in-flight handshake
	waitCeiling time.Duration

	mu          sync.Mutex
	handle      Handle
	connecting  bool
	readyEarly  bool          // ready fired before the handle was stored
	attemptDone chan struct{} // closed when the current attempt settles
}

// NewSupervisor creates a supervisor. With enabled false or an empty token,
// Acquire always returns nil without attempting a connection.
func NewSupervisor(enabled bool, token string, connector Connector) *Supervisor {
	return &Supervisor{
		enabled:     enabled,
		token:       token,
		connector:   connector,
		logger:      slog.Default().With("component", "bot"),
		waitCeiling: connectWaitAttempts * connectWaitInterval,
	}
}

// Acquire returns the shared gateway handle, establishing the connection on
// first demand. Returns nil when the integration is disabled, the credential
// is missing, or an in-flight handshake does not become ready before the
// wait ceiling; none of these are fatal and the caller may retry later.
func (s *Supervisor) Acquire(ctx context.Context) Handle {
	if s == nil || !s.enabled {
		return nil
	}

	if s.token == "" {
		s.logger.Warn("gateway credential not configured, bot unavailable")
		return nil
	}

	s.mu.Lock()

	if s.handle != nil && s.handle.Ready() {
		h := s.handle
		s.mu.Unlock()
		return h
	}

	if s.connecting {
		done := s.attemptDone
		s.mu.Unlock()
		return s.awaitAttempt(ctx, done)
	}

	// In-flight marker is set before the handshake begins and cleared only
	// by a lifecycle observer firing.
	s.connecting = true
	s.attemptDone = make(chan struct{})
	s.mu.Unlock()

	handle, err := s.connector.Connect(ctx, Hooks{
		OnReady: func() {
			s.logger.Info("gateway connection ready")
			s.settleReady()
		},
		OnError: func(err error) {
			s.logger.Error("gateway connection error", "error", err)
			s.settleAttempt()
		},
		OnDisconnect: func() {
			s.logger.Info("gateway disconnected")
			s.settleAttempt()
		},
		OnReconnecting: func() {
			s.logger.Info("gateway reconnecting")
			s.markInFlight()
		},
	})
	if err != nil {
		s.logger.Error("gateway handshake failed", "error", err)
		s.settleAttempt()
		return nil
	}

	s.publish(handle)

	return handle
}

// publish stores the new handle and delivers a ready signal that fired while
// Connect was still returning, so waiters never wake before the handle is
// visible to them.
func (s *Supervisor) publish(h Handle) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.handle = h
	if s.readyEarly {
		s.readyEarly = false
		if s.connecting {
			s.connecting = false
			close(s.attemptDone)
		}
	}
}

// awaitAttempt blocks until the in-flight handshake settles, the ceiling is
// reached, or the context is cancelled. Only a settled, ready handle is
// returned; a timeout yields nil and the caller may retry.
func (s *Supervisor) awaitAttempt(ctx context.Context, done <-chan struct{}) Handle {
	timer := time.NewTimer(s.waitCeiling)
	defer timer.Stop()

	select {
	case <-done:
	case <-timer.C:
		s.logger.Warn("timed out waiting for gateway handshake")
		return nil
	case <-ctx.Done():
		return nil
	}

	s.mu.Lock()
	h := s.handle
	s.mu.Unlock()

	if h != nil && h.Ready() {
		return h
	}
	return nil
}

// Connected reports whether a ready handle currently exists. Unlike
// Acquire it never starts a connection attempt.
func (s *Supervisor) Connected() bool {
	if s == nil || !s.enabled {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.handle != nil && s.handle.Ready()
}

// Release tears down a ready handle and returns the supervisor to the
// absent state. No-op when there is nothing to release.
func (s *Supervisor) Release(ctx context.Context) {
	s.mu.Lock()
	h := s.handle
	if h == nil || !h.Ready() {
		s.mu.Unlock()
		return
	}
	s.handle = nil
	s.mu.Unlock()

	if err := h.Close(ctx); err != nil {
		s.logger.Error("gateway teardown failed", "error", err)
		return
	}
	s.logger.Info("gateway connection released")
}

// settleReady settles the attempt once the handle is stored. A ready signal
// arriving from inside Connect is held until publish runs.
func (s *Supervisor) settleReady() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.handle == nil {
		s.readyEarly = true
		return
	}
	if s.connecting {
		s.connecting = false
		close(s.attemptDone)
	}
}

// settleAttempt clears the in-flight marker and wakes waiting callers
func (s *Supervisor) settleAttempt() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.readyEarly = false
	if s.connecting {
		s.connecting = false
		close(s.attemptDone)
	}
}

// markInFlight re-arms the in-flight marker while the client reconnects
func (s *Supervisor) markInFlight() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.connecting {
		s.connecting = true
		s.attemptDone = make(chan struct{})
	}
}
