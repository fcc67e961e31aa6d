// Package wspush implements transport.Transport over a WebSocket push relay.
// The device credential is a locally issued UUID registered with the backend;
// foreground messages arrive as JSON frames on the relay connection.
package wspush

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"

	"hrpulse/internal/transport"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const redialInterval = 5 * time.Second

type Transport struct {
	relayURL string
	granted  bool

	mu    sync.Mutex
	token string
}

func New(relayURL string, permissionGranted bool) *Transport {
	return &Transport{relayURL: relayURL, granted: permissionGranted}
}

func (t *Transport) RequestPermission(ctx context.Context) (bool, error) {
	return t.granted, nil
}

// Token returns the device credential, issuing one on first use. The relay
// treats it as opaque; rotation happens by restarting the agent.
func (t *Transport) Token(ctx context.Context) (string, error) {
	if t.relayURL == "" {
		return "", transport.ErrTokenUnavailable
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.token == "" {
		t.token = uuid.NewString()
	}
	return t.token, nil
}

// Listen dials the relay and delivers each JSON frame to fn. The connection is
// redialed on failure until stop is called or ctx is cancelled.
func (t *Transport) Listen(ctx context.Context, fn func(transport.Message)) (func(), error) {
	token, err := t.Token(ctx)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithCancel(ctx)
	go t.run(ctx, token, fn)
	return cancel, nil
}

func (t *Transport) run(ctx context.Context, token string, fn func(transport.Message)) {
	for {
		if ctx.Err() != nil {
			return
		}
		if err := t.readOnce(ctx, token, fn); err != nil && ctx.Err() == nil {
			log.Printf("[WSPush] relay connection lost: %v", err)
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(redialInterval):
		}
	}
}

func (t *Transport) readOnce(ctx context.Context, token string, fn func(transport.Message)) error {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, t.relayURL+"?token="+token, nil)
	if err != nil {
		return err
	}
	defer conn.Close()
	// Close the connection when the listener is torn down so ReadMessage unblocks.
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-done:
		}
	}()
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return err
		}
		var msg transport.Message
		if err := json.Unmarshal(data, &msg); err != nil {
			log.Printf("[WSPush] dropping malformed frame: %v", err)
			continue
		}
		fn(msg)
	}
}
