// Package bus normalizes raw transport payloads into typed notification
// events and fans them out to in-process subscribers. It never mutates the
// notification store; it only signals that a re-sync is due.
package bus

import (
	"context"
	"sync"

	"github.com/asaskevich/EventBus"

	"hrpulse/internal/domain"
	"hrpulse/internal/metrics"
	"hrpulse/internal/models"
	"hrpulse/internal/transport"
)

type Bus struct {
	events EventBus.Bus
	tr     transport.Transport

	mu        sync.Mutex
	listening bool
	stop      func()
}

func New(tr transport.Transport) *Bus {
	return &Bus{events: EventBus.New(), tr: tr}
}

// Arm attaches the foreground listener. Idempotent: a second call while
// already armed is a no-op, so duplicate delivery cannot happen.
func (b *Bus) Arm(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.listening {
		return nil
	}
	stop, err := b.tr.Listen(ctx, b.handle)
	if err != nil {
		return err
	}
	b.stop = stop
	b.listening = true
	return nil
}

// Disarm detaches the foreground listener. Safe to call when not armed.
func (b *Bus) Disarm() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.listening {
		return
	}
	b.stop()
	b.stop = nil
	b.listening = false
}

// Listening reports whether the foreground listener is armed.
func (b *Bus) Listening() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.listening
}

func (b *Bus) handle(msg transport.Message) {
	metrics.PushEvents.Inc()
	evt := ParseEvent(msg)
	b.events.Publish(domain.TopicRawMessage, msg)
	b.events.Publish(domain.TopicEvent, evt)
	b.events.Publish(domain.TopicBellUpdate)
}

// ParseEvent converts a raw payload into a typed event. An unknown or missing
// data.type collapses to GENERIC rather than being dropped.
func ParseEvent(msg transport.Message) models.Event {
	t := domain.TypeGeneric
	if msg.Data != nil {
		if raw, ok := msg.Data["type"]; ok && domain.KnownType(raw) {
			t = raw
		}
	}
	return models.Event{Type: t, Title: msg.Title, Body: msg.Body, Data: msg.Data}
}

// SubscribeEvents registers fn for typed notification events.
func (b *Bus) SubscribeEvents(fn func(models.Event)) error {
	return b.events.Subscribe(domain.TopicEvent, fn)
}

func (b *Bus) UnsubscribeEvents(fn func(models.Event)) error {
	return b.events.Unsubscribe(domain.TopicEvent, fn)
}

// SubscribeRaw registers fn for raw transport payloads.
func (b *Bus) SubscribeRaw(fn func(transport.Message)) error {
	return b.events.Subscribe(domain.TopicRawMessage, fn)
}

// SubscribeRefresh registers fn on both invalidation topics; push arrival and
// explicit refresh requests converge on the same reconciliation path.
func (b *Bus) SubscribeRefresh(fn func()) error {
	if err := b.events.Subscribe(domain.TopicBellUpdate, fn); err != nil {
		return err
	}
	return b.events.Subscribe(domain.TopicForceResync, fn)
}

func (b *Bus) UnsubscribeRefresh(fn func()) {
	_ = b.events.Unsubscribe(domain.TopicBellUpdate, fn)
	_ = b.events.Unsubscribe(domain.TopicForceResync, fn)
}

// ForceRefresh asks the scheduler for an out-of-band reconciliation, e.g.
// after a user action that is known to have changed server state.
func (b *Bus) ForceRefresh() {
	b.events.Publish(domain.TopicForceResync)
}
