// Package transporttest provides a scriptable in-memory Transport for tests.
package transporttest

import (
	"context"
	"sync"

	"hrpulse/internal/transport"
)

// Transport implements transport.Transport with controllable behavior.
type Transport struct {
	mu         sync.Mutex
	Permission bool
	TokenValue string
	TokenErr   error
	// TokenDelay, when set, is closed by the test to release Token calls.
	TokenDelay chan struct{}

	tokenCalls int
	listeners  []func(transport.Message)
}

func New() *Transport {
	return &Transport{Permission: true, TokenValue: "tok-1"}
}

func (t *Transport) RequestPermission(ctx context.Context) (bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.Permission, nil
}

func (t *Transport) Token(ctx context.Context) (string, error) {
	t.mu.Lock()
	t.tokenCalls++
	delay := t.TokenDelay
	val, err := t.TokenValue, t.TokenErr
	t.mu.Unlock()
	if delay != nil {
		select {
		case <-delay:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	if err != nil {
		return "", err
	}
	if val == "" {
		return "", transport.ErrTokenUnavailable
	}
	return val, nil
}

func (t *Transport) Listen(ctx context.Context, fn func(transport.Message)) (func(), error) {
	t.mu.Lock()
	t.listeners = append(t.listeners, fn)
	idx := len(t.listeners) - 1
	t.mu.Unlock()
	return func() {
		t.mu.Lock()
		t.listeners[idx] = nil
		t.mu.Unlock()
	}, nil
}

// Deliver fans msg out to all active listeners, as a foreground push would.
func (t *Transport) Deliver(msg transport.Message) {
	t.mu.Lock()
	fns := make([]func(transport.Message), 0, len(t.listeners))
	for _, fn := range t.listeners {
		if fn != nil {
			fns = append(fns, fn)
		}
	}
	t.mu.Unlock()
	for _, fn := range fns {
		fn(msg)
	}
}

// TokenCalls reports how many times Token was invoked.
func (t *Transport) TokenCalls() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.tokenCalls
}

// ListenerCount reports how many listeners are currently attached.
func (t *Transport) ListenerCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	n := 0
	for _, fn := range t.listeners {
		if fn != nil {
			n++
		}
	}
	return n
}
