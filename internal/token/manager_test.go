package token

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"hrpulse/internal/api"
	"hrpulse/internal/session"
	"hrpulse/internal/transport"
	"hrpulse/internal/transport/transporttest"
)

func registerBackend(t *testing.T, calls *int64) *api.Client {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/fcm/register-token" && r.Method == http.MethodPost {
			atomic.AddInt64(calls, 1)
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"status":"ok"}`))
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	t.Cleanup(srv.Close)
	return api.New(srv.URL, 5*time.Second)
}

func testSession() *session.Session {
	return &session.Session{UserID: "u-1", UserType: "EMPLOYEE"}
}

func TestRegisterSucceeds(t *testing.T) {
	var calls int64
	tr := transporttest.New()
	m := NewManager(tr, registerBackend(t, &calls), 5*time.Second)

	assert.True(t, m.Register(context.Background(), testSession()))
	assert.True(t, m.Registered())
	assert.EqualValues(t, 1, atomic.LoadInt64(&calls))

	tok, issued := m.Current()
	assert.Equal(t, "tok-1", tok)
	assert.False(t, issued.IsZero())
}

func TestRegisterIsRepeatable(t *testing.T) {
	var calls int64
	tr := transporttest.New()
	m := NewManager(tr, registerBackend(t, &calls), 5*time.Second)

	assert.True(t, m.Register(context.Background(), testSession()))
	assert.True(t, m.Register(context.Background(), testSession()))
	assert.EqualValues(t, 2, atomic.LoadInt64(&calls))
}

func TestPermissionDeniedDegradesQuietly(t *testing.T) {
	var calls int64
	tr := transporttest.New()
	tr.Permission = false
	m := NewManager(tr, registerBackend(t, &calls), 5*time.Second)

	assert.False(t, m.RequestPermission(context.Background()))

	_, err := m.GenerateToken(context.Background())
	assert.ErrorIs(t, err, transport.ErrPermissionDenied)

	assert.False(t, m.Register(context.Background(), testSession()))
	assert.EqualValues(t, 0, atomic.LoadInt64(&calls), "no backend call without a token")
}

func TestTokenUnavailable(t *testing.T) {
	var calls int64
	tr := transporttest.New()
	tr.TokenValue = ""
	m := NewManager(tr, registerBackend(t, &calls), 5*time.Second)

	_, err := m.GenerateToken(context.Background())
	assert.ErrorIs(t, err, transport.ErrTokenUnavailable)
	assert.False(t, m.Register(context.Background(), testSession()))
}

func TestRegisterHonorsCeiling(t *testing.T) {
	var calls int64
	tr := transporttest.New()
	tr.TokenDelay = make(chan struct{}) // never released: transport hangs
	m := NewManager(tr, registerBackend(t, &calls), 50*time.Millisecond)

	start := time.Now()
	ok := m.Register(context.Background(), testSession())
	assert.False(t, ok)
	assert.Less(t, time.Since(start), time.Second, "a hung transport must not block the caller")
	assert.False(t, m.Registered())
}

func TestConcurrentGenerationIsShared(t *testing.T) {
	tr := transporttest.New()
	tr.TokenDelay = make(chan struct{})
	m := NewManager(tr, nil, 5*time.Second)
	m.RequestPermission(context.Background())

	var wg sync.WaitGroup
	results := make([]string, 5)
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			tok, err := m.GenerateToken(context.Background())
			assert.NoError(t, err)
			results[i] = tok
		}(i)
	}
	// Let the callers pile up on the in-flight generation, then release it.
	time.Sleep(50 * time.Millisecond)
	close(tr.TokenDelay)
	wg.Wait()

	for _, tok := range results {
		assert.Equal(t, "tok-1", tok)
	}
	assert.Equal(t, 1, tr.TokenCalls(), "simultaneous callers share one transport call")
}
