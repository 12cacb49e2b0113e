package middleware

import (
	"context"
	"encoding/json"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/pribylovaa/web3-hub/internal/http/apierrors"
	logctx "github.com/pribylovaa/web3-hub/pkg/log"
)

// capHandler — тестовый slog.Handler: копит базовые attrs и attrs последней записи.
type capHandler struct {
	mu      sync.Mutex
	base    []slog.Attr
	lastMsg string
	attrs   map[string]any
	count   int
}

func (h *capHandler) Enabled(context.Context, slog.Level) bool { return true }

func (h *capHandler) Handle(_ context.Context, r slog.Record) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	out := make(map[string]any, len(h.base)+8)
	for _, a := range h.base {
		out[a.Key] = a.Value.Any()
	}
	r.Attrs(func(a slog.Attr) bool {
		out[a.Key] = a.Value.Any()
		return true
	})

	h.count++
	h.lastMsg = r.Message
	h.attrs = out

	return nil
}

func (h *capHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.base = append(h.base, attrs...)
	return h
}

func (h *capHandler) WithGroup(string) slog.Handler { return h }

func makeReq(target string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	req.RemoteAddr = (&net.TCPAddr{IP: net.ParseIP("127.0.0.1"), Port: 12345}).String()
	return req
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestChain_Order(t *testing.T) {
	var order []string

	mark := func(name string) Middleware {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name+">")
				next.ServeHTTP(w, r)
				order = append(order, "<"+name)
			})
		}
	}

	final := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		order = append(order, "handler")
		w.WriteHeader(http.StatusAccepted)
	})

	rr := httptest.NewRecorder()
	Chain(final, mark("outer"), mark("inner")).ServeHTTP(rr, makeReq("/chain"))

	require.Equal(t, []string{"outer>", "inner>", "handler", "<inner", "<outer"}, order)
	require.Equal(t, http.StatusAccepted, rr.Code)
}

func TestRequestID_GenerateAndPropagate(t *testing.T) {
	var headerID, ctxID string

	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		headerID = r.Header.Get(HeaderRequestID)
		ctxID = RequestIDFrom(r.Context())
	})

	rr := httptest.NewRecorder()
	Chain(h, RequestID()).ServeHTTP(rr, makeReq("/rid"))

	respID := rr.Header().Get(HeaderRequestID)
	require.Len(t, respID, 32)
	require.Equal(t, respID, headerID)
	require.Equal(t, respID, ctxID)
}

func TestRequestID_KeepsIncoming(t *testing.T) {
	const given = "client-supplied-id"
	var ctxID string

	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctxID = RequestIDFrom(r.Context())
	})

	req := makeReq("/rid")
	req.Header.Set(HeaderRequestID, given)
	rr := httptest.NewRecorder()
	Chain(h, RequestID()).ServeHTTP(rr, req)

	require.Equal(t, given, rr.Header().Get(HeaderRequestID))
	require.Equal(t, given, ctxID)
}

func TestRequestIDFrom_Empty(t *testing.T) {
	require.Empty(t, RequestIDFrom(context.Background()))
}

func TestTimeout_SetsDeadline(t *testing.T) {
	var left time.Duration
	var ok bool

	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var dl time.Time
		dl, ok = r.Context().Deadline()
		left = time.Until(dl)
	})

	Chain(h, Timeout(200*time.Millisecond)).ServeHTTP(httptest.NewRecorder(), makeReq("/t"))

	require.True(t, ok)
	require.Greater(t, left, time.Duration(0))
	require.LessOrEqual(t, left, 200*time.Millisecond)
}

func TestTimeout_KeepsEarlierParentDeadline(t *testing.T) {
	var childDL time.Time

	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		childDL, _ = r.Context().Deadline()
	})

	parent, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	Chain(h, Timeout(time.Second)).ServeHTTP(httptest.NewRecorder(), makeReq("/t").WithContext(parent))

	parentDL, _ := parent.Deadline()
	require.WithinDuration(t, parentDL, childDL, time.Millisecond)
}

func TestTimeout_TightensLaterParentDeadline(t *testing.T) {
	var left time.Duration

	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		dl, _ := r.Context().Deadline()
		left = time.Until(dl)
	})

	parent, cancel := context.WithTimeout(context.Background(), time.Hour)
	defer cancel()

	Chain(h, Timeout(50*time.Millisecond)).ServeHTTP(httptest.NewRecorder(), makeReq("/t").WithContext(parent))
	require.LessOrEqual(t, left, 50*time.Millisecond)
}

func TestTimeout_LogsExceeded(t *testing.T) {
	h := &capHandler{}
	slow := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	})

	req := makeReq("/api/news").WithContext(logctx.Into(context.Background(), slog.New(h)))
	Chain(slow, Timeout(10*time.Millisecond)).ServeHTTP(httptest.NewRecorder(), req)

	require.Equal(t, 1, h.count)
	require.Equal(t, "request_deadline_exceeded", h.lastMsg)
	require.Equal(t, "/api/news", h.attrs["path"])
	require.Equal(t, 10*time.Millisecond, h.attrs["limit"])
}

func TestTimeout_ZeroIsNoop(t *testing.T) {
	var has bool

	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, has = r.Context().Deadline()
	})

	Chain(h, Timeout(0)).ServeHTTP(httptest.NewRecorder(), makeReq("/t"))
	require.False(t, has)
}

func TestRecover_PanicBecomes500(t *testing.T) {
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	})

	rr := httptest.NewRecorder()
	Chain(h, Recover()).ServeHTTP(rr, makeReq("/panic"))

	require.Equal(t, http.StatusInternalServerError, rr.Code)
	require.Equal(t, "application/json", rr.Header().Get("Content-Type"))

	var resp apierrors.ErrorResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.Equal(t, "internal", resp.Code)
	require.NotContains(t, resp.Error, "boom")
}

func TestLogging_RecordsRequest(t *testing.T) {
	h := &capHandler{}
	const rid = "rid-789"

	var fromCtx *slog.Logger
	final := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fromCtx = logctx.From(r.Context())
		_, _ = w.Write([]byte(`{"ok":true}`))
	})

	req := makeReq("/api/news")
	req.Header.Set(HeaderRequestID, rid)
	rr := httptest.NewRecorder()
	Chain(final, RequestID(), Logging(slog.New(h))).ServeHTTP(rr, req)

	require.NotNil(t, fromCtx)
	require.Equal(t, 1, h.count)
	require.Equal(t, "http", h.lastMsg)
	require.Equal(t, http.MethodGet, h.attrs["method"])
	require.Equal(t, "/api/news", h.attrs["path"])
	require.EqualValues(t, http.StatusOK, h.attrs["status"])
	require.EqualValues(t, len(`{"ok":true}`), h.attrs["bytes"])
	require.Equal(t, rid, h.attrs["request_id"])
	require.Contains(t, h.attrs, "dur")
}

func TestLogging_NoWriteStillLogs200(t *testing.T) {
	h := &capHandler{}
	final := http.HandlerFunc(func(http.ResponseWriter, *http.Request) {})

	Chain(final, Logging(slog.New(h))).ServeHTTP(httptest.NewRecorder(), makeReq("/empty"))

	require.EqualValues(t, http.StatusOK, h.attrs["status"])
	require.EqualValues(t, 0, h.attrs["bytes"])
}

func TestResponseMeter(t *testing.T) {
	rm := meter(httptest.NewRecorder())
	require.Equal(t, http.StatusOK, rm.Status())

	_, _ = rm.Write([]byte("abcd"))
	require.Equal(t, http.StatusOK, rm.Status())
	require.Equal(t, 4, rm.written)

	rec := httptest.NewRecorder()
	rm = meter(rec)
	rm.WriteHeader(http.StatusTooManyRequests)
	require.Equal(t, http.StatusTooManyRequests, rm.Status())
	require.Same(t, rec, rm.Unwrap())
}
