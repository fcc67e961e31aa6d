// Package syncer reconciles the notification store against the backend. Four
// independent triggers (burst poll after session start, steady poll, push
// arrival, window focus) converge on one fetch path, coalesced so overlapping
// triggers never produce redundant concurrent requests.
package syncer

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"hrpulse/config"
	"hrpulse/internal/bus"
	"hrpulse/internal/metrics"
	"hrpulse/internal/session"
	"hrpulse/internal/store"
)

type Scheduler struct {
	store *store.Store
	bus   *bus.Bus
	sess  *session.Session
	cfg   config.Sync

	mu          sync.Mutex
	running     bool
	inflight    bool
	lastFetchAt time.Time
	cancel      context.CancelFunc
	ctx         context.Context
	refreshFn   func()
	wg          sync.WaitGroup
}

func New(st *store.Store, b *bus.Bus, sess *session.Session, cfg config.Sync) *Scheduler {
	return &Scheduler{store: st, bus: b, sess: sess, cfg: cfg}
}

// Start arms the foreground listener, subscribes to invalidation signals, and
// begins polling: every BurstInterval for BurstDuration (covering transport
// delivery latency right after login), then every SteadyInterval for the life
// of the session. Idempotent.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return nil
	}
	ctx, cancel := context.WithCancel(ctx)
	s.ctx = ctx
	s.cancel = cancel
	s.running = true
	s.refreshFn = func() { s.Trigger() }
	s.mu.Unlock()

	if err := s.bus.Arm(ctx); err != nil {
		log.Printf("[Sync] foreground listener unavailable: %v", err)
	}
	if err := s.bus.SubscribeRefresh(s.refreshFn); err != nil {
		s.Stop()
		return err
	}

	s.wg.Add(1)
	go s.pollLoop(ctx)
	s.Trigger()
	return nil
}

// Stop tears down timers, subscriptions, and the listener as a unit and closes
// the store so late-resolving fetches cannot mutate torn-down state.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	cancel := s.cancel
	refreshFn := s.refreshFn
	s.mu.Unlock()

	cancel()
	s.bus.UnsubscribeRefresh(refreshFn)
	s.bus.Disarm()
	s.store.Close()
	s.wg.Wait()
}

// NotifyFocus schedules an out-of-band fetch for a regained window focus.
func (s *Scheduler) NotifyFocus() {
	s.Trigger()
}

// LastFetchAt reports when the last fetch completed.
func (s *Scheduler) LastFetchAt() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastFetchAt
}

func (s *Scheduler) pollLoop(ctx context.Context) {
	defer s.wg.Done()
	burstEnd := time.Now().Add(s.cfg.BurstDuration)
	ticker := time.NewTicker(s.cfg.BurstInterval)
	defer ticker.Stop()
	steady := false
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if !steady && time.Now().After(burstEnd) {
				ticker.Reset(s.cfg.SteadyInterval)
				steady = true
			}
			s.Trigger()
		}
	}
}

// Trigger requests a reconciliation. If a fetch is already in flight the
// trigger is satisfied by it; if one completed within the debounce window the
// trigger is dropped. Otherwise a fetch starts.
func (s *Scheduler) Trigger() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	if s.inflight || time.Since(s.lastFetchAt) < s.cfg.Debounce {
		metrics.CoalescedTriggers.Inc()
		s.mu.Unlock()
		return
	}
	s.inflight = true
	ctx := s.ctx
	s.mu.Unlock()

	s.wg.Add(1)
	go s.fetch(ctx)
}

func (s *Scheduler) fetch(ctx context.Context) {
	defer s.wg.Done()
	metrics.UnreadFetches.Inc()
	if _, err := s.store.RefreshUnread(ctx, s.sess.UserType, s.sess.UserID); err != nil {
		s.logFetchErr(ctx, err)
	}
	if _, err := s.store.RefreshRecent(ctx, s.sess.UserType, s.sess.UserID); err != nil {
		s.logFetchErr(ctx, err)
	}
	s.mu.Lock()
	s.inflight = false
	s.lastFetchAt = time.Now()
	s.mu.Unlock()
}

func (s *Scheduler) logFetchErr(ctx context.Context, err error) {
	// Cancellation during teardown is expected, not a failed fetch.
	if errors.Is(ctx.Err(), context.Canceled) {
		return
	}
	log.Printf("[Sync] fetch failed, will self-heal on next cycle: %v", err)
}
