package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/herald-chat/herald/internal/infrastructure/logging"
	"github.com/herald-chat/herald/internal/infrastructure/metrics"
	"github.com/herald-chat/herald/internal/infrastructure/ratelimiter"
	"github.com/herald-chat/herald/internal/infrastructure/registry"
	"github.com/herald-chat/herald/internal/infrastructure/ws"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

func (g *Gateway) bind() map[string]HandlerFunc {
	return map[string]HandlerFunc{
		ws.ChatJoin:    g.handleChatJoin,
		ws.ChatLeave:   g.handleChatLeave,
		ws.ChatMessage: g.handleChatMessage,
		ws.ChatTyping:  g.handleChatTyping,
		ws.ChatHistory: g.handleChatHistory,

		ws.RoomCreate: g.handleRoomCreate,
		ws.RoomJoin:   g.handleRoomJoin,
		ws.RoomLeave:  g.handleRoomLeave,
		ws.RoomList:   g.handleRoomList,
		ws.RoomInfo:   g.handleRoomInfo,

		ws.NotificationSubscribe:   g.handleSubscribe,
		ws.NotificationUnsubscribe: g.handleUnsubscribe,
		ws.NotificationMarkRead:    g.handleMarkRead,

		ws.Ping:       g.handlePing,
		ws.UserStatus: g.handleUserStatus,
		ws.Heartbeat:  g.handleHeartbeat,
	}
}

// Dispatch runs one inbound frame through the limiter, the bound
// handler, and the failure boundary. Frames for one connection arrive
// serially from its read pump, so per-connection ordering holds.
func (g *Gateway) Dispatch(ctx context.Context, c *registry.Connection, frame *ws.Frame) {
	handler, ok := g.handlers[frame.Event]
	if !ok {
		g.log.Debug(logging.Socket, logging.Dispatch, "unknown event", map[logging.ExtraKey]any{
			logging.ConnectionID: c.ID,
			logging.EventName:    frame.Event,
		})
		if frame.AckID != 0 {
			c.Send(ws.NewAck(frame.AckID, ws.ErrorPayload{Error: "unknown event", Code: CodeInvalidInput}))
		}
		return
	}

	allowed, retryAfter := g.limiter.Allow(ratelimiter.Key(c.ID, frame.Event))
	if !allowed {
		g.metrics.IncrementCounter(metrics.RateLimitedTotal, frame.Event)
		g.log.Warn(logging.Socket, logging.RateLimiting, "rate limit exceeded", map[logging.ExtraKey]any{
			logging.ConnectionID: c.ID,
			logging.UserID:       c.UserID,
			logging.EventName:    frame.Event,
			"retryAfter":         retryAfter.String(),
		})
		// Silent drop when the client did not ask for an ack.
		if frame.AckID != 0 {
			c.Send(ws.NewAck(frame.AckID, ws.ErrorPayload{Error: "rate limit exceeded", Code: CodeRateLimited}))
		}
		return
	}

	ctx, span := g.tracer.Start(ctx, frame.Event, trace.WithAttributes(
		attribute.String("herald.connection_id", c.ID),
		attribute.String("herald.user_id", c.UserID),
		attribute.Bool("herald.ack_requested", frame.AckID != 0),
	))
	defer span.End()

	start := time.Now()
	result, err := g.invoke(ctx, handler, c, frame.Data)
	g.metrics.ObserveHistogram(metrics.EventDuration, time.Since(start).Seconds(), frame.Event)

	if err != nil {
		g.metrics.IncrementCounter(metrics.EventsTotal, frame.Event, "error")
		g.fail(c, frame, span, err)
		return
	}

	g.metrics.IncrementCounter(metrics.EventsTotal, frame.Event, "ok")
	if frame.AckID != 0 {
		c.Send(ws.NewAck(frame.AckID, result))
	}
}

// invoke is the failure boundary: a panicking handler is converted
// into an error instead of tearing down the read pump.
func (g *Gateway) invoke(ctx context.Context, handler HandlerFunc, c *registry.Connection, data []byte) (result any, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &panicError{value: r, stack: debug.Stack()}
		}
	}()
	return handler(ctx, c, data)
}

// fail delivers a handler error to the peer: via the ack when one was
// requested, as a generic error event otherwise. Unexpected errors are
// logged in full and masked on the wire.
func (g *Gateway) fail(c *registry.Connection, frame *ws.Frame, span trace.Span, err error) {
	msg, code, internal := classify(err)

	if internal {
		extra := map[logging.ExtraKey]any{
			logging.ConnectionID: c.ID,
			logging.UserID:       c.UserID,
			logging.EventName:    frame.Event,
			logging.ErrorMessage: err.Error(),
		}

		var pe *panicError
		if errors.As(err, &pe) {
			g.metrics.IncrementCounter(metrics.PanicsTotal, frame.Event)
			extra["stack"] = string(pe.stack)
		}
		g.log.Error(logging.Internal, logging.Dispatch, "handler failed", extra)

		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())

		if g.opts.SentryEnabled {
			hub := sentry.CurrentHub().Clone()
			hub.ConfigureScope(func(scope *sentry.Scope) {
				scope.SetTag("event", frame.Event)
				scope.SetUser(sentry.User{ID: c.UserID})
			})
			if pe != nil {
				hub.Recover(pe.value)
			} else {
				hub.CaptureException(err)
			}
		}
	}

	payload := ws.ErrorPayload{Error: msg, Code: code}
	if frame.AckID != 0 {
		c.Send(ws.NewAck(frame.AckID, payload))
		return
	}
	c.Send(&ws.OutFrame{Event: ws.ErrorEvent, Data: payload})
}

type panicError struct {
	value any
	stack []byte
}

func (e *panicError) Error() string {
	return fmt.Sprintf("handler panic: %v", e.value)
}

func decode(data []byte, dst any) error {
	if len(data) == 0 {
		return validationError("missing payload")
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return validationError("malformed payload")
	}
	return nil
}

func decodeOptional(data []byte, dst any) error {
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return validationError("malformed payload")
	}
	return nil
}
