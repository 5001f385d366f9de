package health

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type statusBody struct {
	Status string
	Checks map[string]string
}

func decodeStatus(t *testing.T, w *httptest.ResponseRecorder) statusBody {
	t.Helper()
	body := statusBody{Checks: map[string]string{}}
	err := jx.DecodeBytes(w.Body.Bytes()).ObjBytes(func(d *jx.Decoder, key []byte) error {
		switch string(key) {
		case "status":
			s, err := d.Str()
			body.Status = s
			return err
		case "checks":
			return d.ObjBytes(func(d *jx.Decoder, name []byte) error {
				s, err := d.Str()
				body.Checks[string(name)] = s
				return err
			})
		default:
			return d.Skip()
		}
	})
	require.NoError(t, err)
	return body
}

func serve(h http.HandlerFunc) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	h(w, httptest.NewRequest(http.MethodGet, "/", nil))
	return w
}

func failing(msg string) CheckFunc {
	return func(context.Context) error { return errors.New(msg) }
}

func passing() CheckFunc {
	return func(context.Context) error { return nil }
}

func observeN(h *Health, endpoint Endpoint, n int) {
	for range n {
		for _, c := range h.checks[endpoint] {
			c.observe(context.Background())
		}
	}
}

func TestLiveEndpoint(t *testing.T) {
	tests := []struct {
		name       string
		check      CheckFunc
		runs       int
		opts       []Option
		wantStatus int
	}{
		{"passing", passing(), 3, nil, http.StatusOK},
		{"below failure threshold", failing("temporary"), 2, nil, http.StatusOK},
		{"failure threshold reached", failing("connection refused"), 3, nil, http.StatusServiceUnavailable},
		{"custom threshold", failing("down"), 1, []Option{Thresholds(1, 0)}, http.StatusServiceUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := New()
			h.Add(Liveness, "db", time.Second, tt.check, tt.opts...)
			observeN(h, Liveness, tt.runs)

			w := serve(h.LiveEndpoint)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
			body := decodeStatus(t, w)
			if tt.wantStatus == http.StatusOK {
				assert.Equal(t, "ok", body.Status)
				assert.Empty(t, body.Checks)
				return
			}
			assert.Equal(t, "unhealthy", body.Status)
			assert.Contains(t, body.Checks, "db")
		})
	}
}

func TestReadyEndpoint(t *testing.T) {
	h := New()
	h.Add(Readiness, "postgres", time.Second, passing())
	h.Add(Readiness, "redis", time.Second, failing("redis down"))
	h.Add(Liveness, "goroutines", time.Second, failing("too many"))

	w := serve(h.ReadyEndpoint)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, map[string]string{"_readiness": "service is not ready"}, decodeStatus(t, w).Checks)

	h.SetReady(true)
	assert.Equal(t, http.StatusOK, serve(h.ReadyEndpoint).Code)
	assert.True(t, h.IsReady())

	observeN(h, Readiness, 3)
	w = serve(h.ReadyEndpoint)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, map[string]string{"redis": "redis down"}, decodeStatus(t, w).Checks)
	assert.False(t, h.IsReady())

	h.SetReady(false)
	assert.Len(t, decodeStatus(t, serve(h.ReadyEndpoint)).Checks, 2)
}

func TestCheckRecovery(t *testing.T) {
	var fail atomic.Bool
	fail.Store(true)
	h := New()
	h.Add(Readiness, "flaky", time.Second, func(context.Context) error {
		if fail.Load() {
			return errors.New("down")
		}
		return nil
	}, Thresholds(2, 2))
	h.SetReady(true)

	observeN(h, Readiness, 2)
	require.False(t, h.IsReady())

	fail.Store(false)
	observeN(h, Readiness, 1)
	assert.False(t, h.IsReady(), "one success is below the success threshold")
	observeN(h, Readiness, 1)
	assert.True(t, h.IsReady())
}

func TestStartAndStop(t *testing.T) {
	var calls atomic.Int32
	h := New()
	h.Add(Liveness, "count", time.Second, func(context.Context) error {
		calls.Add(1)
		return nil
	})

	h.Start(context.Background(), 10*time.Millisecond)
	require.Eventually(t, func() bool { return calls.Load() >= 2 }, time.Second, 5*time.Millisecond)

	h.Stop()
	h.Stop()
	time.Sleep(30 * time.Millisecond)
	settled := calls.Load()
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, settled, calls.Load())
}

func TestCheckTimeout(t *testing.T) {
	h := New()
	h.Add(Liveness, "slow", 5*time.Millisecond, func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	}, Thresholds(1, 1))

	observeN(h, Liveness, 1)
	body := decodeStatus(t, serve(h.LiveEndpoint))
	assert.Equal(t, context.DeadlineExceeded.Error(), body.Checks["slow"])
}

func TestConcurrentAccess(t *testing.T) {
	h := New()
	h.Add(Readiness, "db", time.Second, passing())
	h.SetReady(true)
	h.Start(context.Background(), time.Millisecond)
	defer h.Stop()

	var wg sync.WaitGroup
	for range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 50 {
				_ = h.IsReady()
				_ = serve(h.ReadyEndpoint)
			}
		}()
	}
	wg.Wait()
}

type pingerFunc func(context.Context) error

func (f pingerFunc) Ping(ctx context.Context) error { return f(ctx) }

func TestPingCheck(t *testing.T) {
	ok := PingCheck("postgres", pingerFunc(func(context.Context) error { return nil }))
	require.NoError(t, ok(context.Background()))

	bad := PingCheck("redis", pingerFunc(func(context.Context) error { return errors.New("refused") }))
	err := bad(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ping redis")
}

func TestGoroutineCountCheck(t *testing.T) {
	require.NoError(t, GoroutineCountCheck(100000)(context.Background()))
	require.Error(t, GoroutineCountCheck(0)(context.Background()))
}
