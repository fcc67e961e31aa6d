// Package token owns the device push credential: obtaining it from the
// transport, caching it in memory, and registering it with the backend.
package token

import (
	"context"
	"log"
	"sync"
	"time"

	"hrpulse/internal/api"
	"hrpulse/internal/metrics"
	"hrpulse/internal/session"
	"hrpulse/internal/transport"

	"golang.org/x/sync/singleflight"
)

type Manager struct {
	transport transport.Transport
	api       *api.Client
	// registerTimeout is the hard ceiling on Register so a slow transport
	// never blocks a login flow.
	registerTimeout time.Duration

	sf singleflight.Group

	mu         sync.Mutex
	asked      bool
	granted    bool
	token      string
	issuedAt   time.Time
	registered bool
}

func NewManager(tr transport.Transport, client *api.Client, registerTimeout time.Duration) *Manager {
	return &Manager{transport: tr, api: client, registerTimeout: registerTimeout}
}

// RequestPermission asks the transport for notification permission. Denial is
// a normal outcome; this never returns an error.
func (m *Manager) RequestPermission(ctx context.Context) bool {
	granted, err := m.transport.RequestPermission(ctx)
	if err != nil {
		log.Printf("[Token] permission request failed: %v", err)
		granted = false
	}
	m.mu.Lock()
	m.asked = true
	m.granted = granted
	m.mu.Unlock()
	return granted
}

// GenerateToken returns a device credential. Concurrent callers share a single
// in-flight transport call. No retry is built in; callers apply their own
// timeout and backoff.
func (m *Manager) GenerateToken(ctx context.Context) (string, error) {
	m.mu.Lock()
	asked, granted := m.asked, m.granted
	m.mu.Unlock()
	if !asked {
		granted = m.RequestPermission(ctx)
	}
	if !granted {
		return "", transport.ErrPermissionDenied
	}

	v, err, _ := m.sf.Do("token", func() (interface{}, error) {
		tok, err := m.transport.Token(ctx)
		if err != nil {
			return "", err
		}
		if tok == "" {
			return "", transport.ErrTokenUnavailable
		}
		return tok, nil
	})
	if err != nil {
		return "", err
	}
	tok := v.(string)
	m.mu.Lock()
	m.token = tok
	m.issuedAt = time.Now()
	m.mu.Unlock()
	return tok, nil
}

// Register generates a token and registers it for the session's user. It is
// bounded by the configured ceiling and returns false on any failure: login
// flows proceed with degraded notification service rather than blocking.
// Re-registering on every session start is expected; tokens rotate under the
// transport's control.
func (m *Manager) Register(ctx context.Context, sess *session.Session) bool {
	ctx, cancel := context.WithTimeout(ctx, m.registerTimeout)
	defer cancel()

	tok, err := m.GenerateToken(ctx)
	if err != nil {
		log.Printf("[Token] registration skipped: %v", err)
		metrics.Registrations.WithLabelValues("skipped").Inc()
		return false
	}
	if err := m.api.RegisterToken(ctx, tok, sess.UserID, sess.UserType); err != nil {
		log.Printf("[Token] backend registration failed for %s/%s: %v", sess.UserType, sess.UserID, err)
		metrics.Registrations.WithLabelValues("failed").Inc()
		return false
	}
	metrics.Registrations.WithLabelValues("ok").Inc()
	m.mu.Lock()
	m.registered = true
	m.mu.Unlock()
	return true
}

// Registered reports whether the last registration attempt succeeded.
func (m *Manager) Registered() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.registered
}

// Current returns the cached token without touching the transport. Empty until
// GenerateToken has succeeded once.
func (m *Manager) Current() (string, time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.token, m.issuedAt
}
