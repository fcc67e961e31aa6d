// Package store keeps the client's view of the notification ledger: a small
// advisory cache of recent records plus the authoritative unread count. Reads
// always come from the backend; the count is never derived from the cached
// list, which would drift from server truth when another device also mutates
// read state.
package store

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"hrpulse/internal/api"
	"hrpulse/internal/models"
)

var (
	// ErrFetchFailed marks a failed read; data stays stale until the next
	// scheduled sync self-heals.
	ErrFetchFailed = errors.New("notification fetch failed")
	// ErrMutationFailed marks a mark-read/delete that failed after its
	// optimistic local application. The mutation is not rolled back; the next
	// authoritative refresh re-establishes truth.
	ErrMutationFailed = errors.New("notification mutation failed")
)

type Store struct {
	api         *api.Client
	recentLimit int

	mu     sync.Mutex
	recent []models.Notification
	unread int
	closed bool
	// touched tracks ids optimistically marked read or deleted since the last
	// authoritative refresh, so repeating a mutation never double-decrements.
	touched map[string]struct{}
}

func New(client *api.Client, recentLimit int) *Store {
	return &Store{api: client, recentLimit: recentLimit, touched: make(map[string]struct{})}
}

// Close marks the store torn down. In-flight fetches resolving after Close
// must not mutate state; all applies check this flag.
func (s *Store) Close() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
}

// UnreadCount returns the cached authoritative count.
func (s *Store) UnreadCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.unread
}

// Recent returns a copy of the cached recent records.
func (s *Store) Recent() []models.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Notification, len(s.recent))
	copy(out, s.recent)
	return out
}

// Unconfirmed reports how many optimistic mutations await confirmation by an
// authoritative refresh.
func (s *Store) Unconfirmed() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.touched)
}

// RefreshUnread fetches the authoritative unread count and replaces the cached
// value. A successful refresh confirms (clears) all pending optimistic
// mutations: the server result already reflects whichever of them landed.
func (s *Store) RefreshUnread(ctx context.Context, userType, userID string) (int, error) {
	n, err := s.api.UnreadCount(ctx, userType, userID)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return n, nil
	}
	s.unread = n
	s.touched = make(map[string]struct{})
	return n, nil
}

// RefreshRecent fetches the most recent records and replaces the cache.
func (s *Store) RefreshRecent(ctx context.Context, userType, userID string) ([]models.Notification, error) {
	list, err := s.api.Recent(ctx, userType, userID, s.recentLimit)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}
	if len(list) > s.recentLimit {
		list = list[:s.recentLimit]
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return list, nil
	}
	s.recent = list
	return list, nil
}

// MarkRead marks one notification read: optimistic local decrement first, then
// the backend call. Repeating the call for the same id is a no-op locally and
// idempotent server-side.
func (s *Store) MarkRead(ctx context.Context, id string) error {
	s.mu.Lock()
	if !s.closed {
		if _, done := s.touched[id]; !done {
			known, wasRead := false, false
			for i := range s.recent {
				if s.recent[i].ID == id {
					known = true
					wasRead = s.recent[i].IsRead
					s.recent[i].IsRead = true
					break
				}
			}
			if !known || !wasRead {
				s.decrementLocked(1)
			}
			s.touched[id] = struct{}{}
		}
	}
	s.mu.Unlock()

	if err := s.api.MarkRead(ctx, id); err != nil {
		return fmt.Errorf("%w: %v", ErrMutationFailed, err)
	}
	return nil
}

// MarkAllRead zeroes the unread count locally and asks the backend to mark
// everything read. An empty target set is a no-op server-side.
func (s *Store) MarkAllRead(ctx context.Context, userType, userID string) (int, error) {
	s.mu.Lock()
	if !s.closed {
		s.unread = 0
		for i := range s.recent {
			s.recent[i].IsRead = true
		}
	}
	s.mu.Unlock()

	n, err := s.api.MarkAllRead(ctx, userType, userID)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrMutationFailed, err)
	}
	return n, nil
}

// Delete removes one notification, optimistically dropping it from the cache
// and decrementing the count if it was unread. A record already gone
// server-side still succeeds.
func (s *Store) Delete(ctx context.Context, id string) error {
	s.removeLocal(id)
	if err := s.api.Delete(ctx, id); err != nil {
		return fmt.Errorf("%w: %v", ErrMutationFailed, err)
	}
	return nil
}

// DeleteBatch removes several notifications. Members missing server-side do
// not fail the batch; the returned count is how many the backend deleted.
func (s *Store) DeleteBatch(ctx context.Context, ids []string) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	for _, id := range ids {
		s.removeLocal(id)
	}
	n, err := s.api.DeleteBatch(ctx, ids)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrMutationFailed, err)
	}
	return n, nil
}

func (s *Store) removeLocal(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	if _, done := s.touched[id]; done {
		// Already marked read or deleted locally; removing it again must not
		// decrement a second time.
		s.dropFromRecentLocked(id)
		return
	}
	wasRead := false
	known := false
	for i := range s.recent {
		if s.recent[i].ID == id {
			known = true
			wasRead = s.recent[i].IsRead
			break
		}
	}
	s.dropFromRecentLocked(id)
	if !known || !wasRead {
		s.decrementLocked(1)
	}
	s.touched[id] = struct{}{}
}

func (s *Store) dropFromRecentLocked(id string) {
	for i := range s.recent {
		if s.recent[i].ID == id {
			s.recent = append(s.recent[:i], s.recent[i+1:]...)
			return
		}
	}
}

// decrementLocked lowers the unread count, never below zero.
func (s *Store) decrementLocked(by int) {
	s.unread -= by
	if s.unread < 0 {
		s.unread = 0
	}
}
