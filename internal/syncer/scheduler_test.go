package syncer

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"hrpulse/config"
	"hrpulse/internal/api"
	"hrpulse/internal/bus"
	"hrpulse/internal/domain"
	"hrpulse/internal/session"
	"hrpulse/internal/store"
	"hrpulse/internal/stub"
	"hrpulse/internal/transport"
	"hrpulse/internal/transport/transporttest"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fixture struct {
	scheduler *Scheduler
	store     *store.Store
	bus       *bus.Bus
	tr        *transporttest.Transport
	db        *gorm.DB
	// countFetches counts unread-count requests reaching the backend.
	countFetches *int64
}

func setup(t *testing.T, cfg config.Sync) *fixture {
	t.Helper()
	db, err := stub.OpenDB("file:" + uuid.NewString() + "?mode=memory&cache=shared&_busy_timeout=5000")
	require.NoError(t, err)
	server := stub.NewServer(db, nil, "test-secret", time.Hour)

	var fetches int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/unread-count") {
			atomic.AddInt64(&fetches, 1)
		}
		server.Engine().ServeHTTP(w, r)
	}))
	t.Cleanup(srv.Close)

	tr := transporttest.New()
	b := bus.New(tr)
	st := store.New(api.New(srv.URL, 5*time.Second), 10)
	sess := &session.Session{UserID: "u-1", UserType: domain.UserTypeEmployee}
	return &fixture{
		scheduler:    New(st, b, sess, cfg),
		store:        st,
		bus:          b,
		tr:           tr,
		db:           db,
		countFetches: &fetches,
	}
}

func (f *fixture) fetchCount() int64 {
	return atomic.LoadInt64(f.countFetches)
}

func seed(t *testing.T, db *gorm.DB, id string, read bool) {
	t.Helper()
	require.NoError(t, db.Create(&stub.Notification{
		ID:                id,
		NotificationType:  domain.TypeJobOpening,
		Title:             "t",
		Body:              "b",
		SentAt:            time.Now(),
		IsRead:            read,
		RecipientUserID:   "u-1",
		RecipientUserType: domain.UserTypeEmployee,
	}).Error)
}

// quiet returns a config whose timers won't fire during a short test.
func quiet() config.Sync {
	return config.Sync{
		BurstInterval:  time.Hour,
		BurstDuration:  time.Hour,
		SteadyInterval: time.Hour,
		Debounce:       time.Second,
		RecentLimit:    10,
	}
}

func TestTriggersCoalesceIntoOneFetch(t *testing.T) {
	f := setup(t, quiet())
	require.NoError(t, f.scheduler.Start(context.Background()))
	defer f.scheduler.Stop()

	// Push signal, explicit refresh, and focus all land inside the window of
	// the startup fetch or its debounce.
	f.tr.Deliver(transport.Message{Data: map[string]string{"type": domain.TypeGeneric}})
	f.bus.ForceRefresh()
	f.scheduler.NotifyFocus()

	time.Sleep(300 * time.Millisecond)
	assert.EqualValues(t, 1, f.fetchCount(), "overlapping triggers must share one backend call")
}

func TestPushArrivalRefreshesStore(t *testing.T) {
	cfg := quiet()
	cfg.Debounce = time.Millisecond
	f := setup(t, cfg)
	require.NoError(t, f.scheduler.Start(context.Background()))
	defer f.scheduler.Stop()

	// Let the startup fetch settle on an empty ledger.
	assert.Eventually(t, func() bool { return f.fetchCount() >= 1 }, time.Second, 10*time.Millisecond)

	seed(t, f.db, "n1", false)
	f.tr.Deliver(transport.Message{
		Title: "New job opening",
		Data:  map[string]string{"type": domain.TypeJobOpening},
	})

	assert.Eventually(t, func() bool {
		return f.store.UnreadCount() == 1 && len(f.store.Recent()) == 1
	}, time.Second, 10*time.Millisecond, "badge and list must reflect the push within one cycle")
}

func TestFocusTriggersRefresh(t *testing.T) {
	cfg := quiet()
	cfg.Debounce = time.Millisecond
	f := setup(t, cfg)
	require.NoError(t, f.scheduler.Start(context.Background()))
	defer f.scheduler.Stop()
	assert.Eventually(t, func() bool { return f.fetchCount() >= 1 }, time.Second, 10*time.Millisecond)

	seed(t, f.db, "n1", false)
	f.scheduler.NotifyFocus()
	assert.Eventually(t, func() bool {
		return f.store.UnreadCount() == 1
	}, time.Second, 10*time.Millisecond)
}

func TestBurstPolling(t *testing.T) {
	cfg := config.Sync{
		BurstInterval:  20 * time.Millisecond,
		BurstDuration:  time.Hour,
		SteadyInterval: time.Hour,
		Debounce:       time.Millisecond,
		RecentLimit:    10,
	}
	f := setup(t, cfg)
	require.NoError(t, f.scheduler.Start(context.Background()))
	defer f.scheduler.Stop()

	assert.Eventually(t, func() bool { return f.fetchCount() >= 3 }, time.Second, 10*time.Millisecond,
		"burst phase must poll repeatedly")
}

func TestStopCancelsEverything(t *testing.T) {
	cfg := config.Sync{
		BurstInterval:  20 * time.Millisecond,
		BurstDuration:  time.Hour,
		SteadyInterval: time.Hour,
		Debounce:       time.Millisecond,
		RecentLimit:    10,
	}
	f := setup(t, cfg)
	require.NoError(t, f.scheduler.Start(context.Background()))
	assert.Eventually(t, func() bool { return f.fetchCount() >= 2 }, time.Second, 10*time.Millisecond)

	f.scheduler.Stop()
	after := f.fetchCount()
	time.Sleep(150 * time.Millisecond)
	assert.Equal(t, after, f.fetchCount(), "a leaked timer hitting the backend after teardown is a defect")
	assert.False(t, f.bus.Listening())

	// A trigger after teardown is ignored.
	f.scheduler.Trigger()
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, after, f.fetchCount())
}

func TestMarkAllReadThenNewPush(t *testing.T) {
	cfg := quiet()
	cfg.Debounce = time.Millisecond
	f := setup(t, cfg)
	ctx := context.Background()

	seed(t, f.db, "n1", false)
	seed(t, f.db, "n2", false)
	require.NoError(t, f.scheduler.Start(ctx))
	defer f.scheduler.Stop()
	assert.Eventually(t, func() bool { return f.store.UnreadCount() == 2 }, time.Second, 10*time.Millisecond)

	n, err := f.store.MarkAllRead(ctx, domain.UserTypeEmployee, "u-1")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, 0, f.store.UnreadCount())

	// A new push lands after the bulk clear: the count becomes exactly 1.
	seed(t, f.db, "n3", false)
	f.tr.Deliver(transport.Message{Data: map[string]string{"type": domain.TypeJobOpening}})
	assert.Eventually(t, func() bool { return f.store.UnreadCount() == 1 }, time.Second, 10*time.Millisecond)
}

func TestStartIsIdempotent(t *testing.T) {
	f := setup(t, quiet())
	ctx := context.Background()
	require.NoError(t, f.scheduler.Start(ctx))
	require.NoError(t, f.scheduler.Start(ctx))
	defer f.scheduler.Stop()
	assert.Equal(t, 1, f.tr.ListenerCount(), "double start must not double-arm the listener")
}
