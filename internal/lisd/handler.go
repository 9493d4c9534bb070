package lisd

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/skein-dev/skein/pkg/lis"
	"github.com/skein-dev/skein/pkg/offload"
)

// handleOffload upgrades the connection and answers offload frames until
// the client goes away. One connection carries one request at a time.
func (s *Server) handleOffload(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("offload upgrade failed", "error", err, "remote", r.RemoteAddr)
		return
	}
	defer conn.Close()

	s.metrics.connectionsTotal.Inc()
	conn.SetReadLimit(s.config.Offload.ReadLimitBytes)

	logger := s.logger.With("remote", r.RemoteAddr)
	logger.Debug("offload connection open")

	for {
		var req offload.Request
		if err := conn.ReadJSON(&req); err != nil {
			if err == websocket.ErrReadLimit {
				s.metrics.rejectedTotal.WithLabelValues("frame_too_large").Inc()
				logger.Warn("offload frame over read limit", "limit", s.config.Offload.ReadLimitBytes)
				return
			}
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				logger.Warn("offload read failed", "error", err)
			}
			return
		}

		resp := s.serveRequest(r.Context(), &req)

		conn.SetWriteDeadline(time.Now().Add(s.config.Offload.WriteTimeout()))
		if err := conn.WriteJSON(resp); err != nil {
			var netErr net.Error
			if errors.As(err, &netErr) && netErr.Timeout() {
				s.metrics.writeTimeoutsTotal.Inc()
			}
			logger.Warn("offload write failed", "error", err, "id", req.ID)
			return
		}
	}
}

// serveRequest runs one computation under a span and returns its frame.
func (s *Server) serveRequest(ctx context.Context, req *offload.Request) *offload.Response {
	_, span := s.tracer.Start(ctx, "lisd.offload",
		trace.WithSpanKind(trace.SpanKindServer),
		trace.WithAttributes(
			attribute.Int64("lisd.request_id", int64(req.ID)),
			attribute.Int("lisd.positions", len(req.Positions)),
		),
	)
	defer span.End()

	if len(req.Positions) > s.config.Offload.MaxPositions {
		s.metrics.rejectedTotal.WithLabelValues("oversized").Inc()
		msg := fmt.Sprintf("positions length %d exceeds limit %d", len(req.Positions), s.config.Offload.MaxPositions)
		span.SetStatus(codes.Error, msg)
		return &offload.Response{ID: req.ID, Error: msg}
	}

	s.metrics.inflightRequests.Inc()
	start := time.Now()

	indices, err := s.compute(req.Positions)

	s.metrics.requestDuration.Observe(time.Since(start).Seconds())
	s.metrics.inflightRequests.Dec()

	if err != nil {
		s.metrics.requestsTotal.WithLabelValues("error").Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return &offload.Response{ID: req.ID, Error: err.Error()}
	}

	s.metrics.requestsTotal.WithLabelValues("success").Inc()
	span.SetStatus(codes.Ok, "")
	span.SetAttributes(attribute.Int("lisd.result_count", len(indices)))
	return &offload.Response{ID: req.ID, Indices: indices}
}

// compute runs the engine. Panics become error frames so one bad request
// cannot take the connection down.
func (s *Server) compute(positions []float64) (indices []int, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("compute panic: %v", r)
		}
	}()

	var opts []lis.Option
	if s.config.Offload.PathThreshold > 0 {
		opts = append(opts, lis.WithThreshold(s.config.Offload.PathThreshold))
	}
	return lis.Find(positions, opts...), nil
}
