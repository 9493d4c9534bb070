package offload

import (
	"context"
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/skein-dev/skein/pkg/lis"
)

// newTestDaemon serves one websocket endpoint that handles each request
// frame with handle.
func newTestDaemon(t *testing.T, handle func(conn *websocket.Conn, req Request)) *httptest.Server {
	t.Helper()
	upgrader := websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }}
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		for {
			var req Request
			if err := conn.ReadJSON(&req); err != nil {
				return
			}
			handle(conn, req)
		}
	}))
}

func wsURL(srv *httptest.Server) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func TestRemoteCompute(t *testing.T) {
	srv := newTestDaemon(t, func(conn *websocket.Conn, req Request) {
		conn.WriteJSON(Response{ID: req.ID, Indices: lis.Find(req.Positions)})
	})
	defer srv.Close()

	ch, err := Dial(context.Background(), wsURL(srv))
	if err != nil {
		t.Fatalf("unexpected dial error: %v", err)
	}
	defer ch.Close()

	indices, err := ch.Compute(context.Background(),
		NewBuffer([]float64{3, lis.Skip, 0, 1, 4}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []int{2, 3, 4}
	if len(indices) != len(want) {
		t.Fatalf("expected %v, got %v", want, indices)
	}
	for i := range want {
		if indices[i] != want[i] {
			t.Errorf("index %d: expected %d, got %d", i, want[i], indices[i])
		}
	}
}

func TestRemoteComputeError(t *testing.T) {
	srv := newTestDaemon(t, func(conn *websocket.Conn, req Request) {
		conn.WriteJSON(Response{ID: req.ID, Error: "synthetic failure"})
	})
	defer srv.Close()

	ch, err := Dial(context.Background(), wsURL(srv))
	if err != nil {
		t.Fatalf("unexpected dial error: %v", err)
	}
	defer ch.Close()

	_, err = ch.Compute(context.Background(), NewBuffer([]float64{1, 2}))
	var oerr *Error
	if !errors.As(err, &oerr) || oerr.Kind != KindCompute {
		t.Fatalf("expected compute kind, got %v", err)
	}
	if !strings.Contains(err.Error(), "synthetic failure") {
		t.Errorf("expected daemon message in error, got %v", err)
	}
}

func TestRemoteTimeout(t *testing.T) {
	srv := newTestDaemon(t, func(conn *websocket.Conn, req Request) {
		// Never answer.
	})
	defer srv.Close()

	ch, err := Dial(context.Background(), wsURL(srv), WithTimeout(50*time.Millisecond))
	if err != nil {
		t.Fatalf("unexpected dial error: %v", err)
	}
	defer ch.Close()

	_, err = ch.Compute(context.Background(), NewBuffer([]float64{1, 2}))
	if !errors.Is(err, ErrTimeout) {
		t.Fatalf("expected ErrTimeout, got %v", err)
	}
	var oerr *Error
	if !errors.As(err, &oerr) || oerr.Kind != KindTimeout {
		t.Errorf("expected timeout kind, got %v", err)
	}
}

func TestRemoteSkipsStaleFrames(t *testing.T) {
	srv := newTestDaemon(t, func(conn *websocket.Conn, req Request) {
		// A leftover frame from an abandoned call arrives first.
		conn.WriteJSON(Response{ID: req.ID + 1000, Indices: []int{9}})
		conn.WriteJSON(Response{ID: req.ID, Indices: lis.Find(req.Positions)})
	})
	defer srv.Close()

	ch, err := Dial(context.Background(), wsURL(srv))
	if err != nil {
		t.Fatalf("unexpected dial error: %v", err)
	}
	defer ch.Close()

	indices, err := ch.Compute(context.Background(), NewBuffer([]float64{0, 1}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(indices) != 2 {
		t.Errorf("expected the matching response, got %v", indices)
	}
}

func TestRemoteMalformedInputResolvesLocally(t *testing.T) {
	var served atomic.Bool
	srv := newTestDaemon(t, func(conn *websocket.Conn, req Request) {
		served.Store(true)
	})
	defer srv.Close()

	ch, err := Dial(context.Background(), wsURL(srv))
	if err != nil {
		t.Fatalf("unexpected dial error: %v", err)
	}
	defer ch.Close()

	indices, err := ch.Compute(context.Background(),
		NewBuffer([]float64{1, lis.Skip, 2, math.Inf(1)}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if indices != nil {
		t.Errorf("expected empty result for malformed input, got %v", indices)
	}
	if served.Load() {
		t.Error("expected malformed input to be rejected before the wire")
	}
}

func TestRemoteClosed(t *testing.T) {
	srv := newTestDaemon(t, func(conn *websocket.Conn, req Request) {})
	defer srv.Close()

	ch, err := Dial(context.Background(), wsURL(srv))
	if err != nil {
		t.Fatalf("unexpected dial error: %v", err)
	}

	if err := ch.Close(); err != nil {
		t.Fatalf("unexpected close error: %v", err)
	}
	if err := ch.Close(); err != nil {
		t.Errorf("expected idempotent close, got %v", err)
	}

	_, err = ch.Compute(context.Background(), NewBuffer([]float64{1, 2}))
	if !errors.Is(err, ErrClosed) {
		t.Errorf("expected ErrClosed, got %v", err)
	}
}

func TestRemoteDialFailure(t *testing.T) {
	_, err := Dial(context.Background(), "ws://127.0.0.1:1/offload",
		WithTimeout(200*time.Millisecond))
	if err == nil {
		t.Fatal("expected dial failure")
	}
	var oerr *Error
	if !errors.As(err, &oerr) || oerr.Kind != KindTransport {
		t.Errorf("expected transport kind, got %v", err)
	}
}
