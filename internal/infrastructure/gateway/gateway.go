package gateway

import (
	"context"
	"sync"
	"time"

	"github.com/herald-chat/herald/internal/infrastructure/chat"
	"github.com/herald-chat/herald/internal/infrastructure/logging"
	"github.com/herald-chat/herald/internal/infrastructure/metrics"
	"github.com/herald-chat/herald/internal/infrastructure/notifications"
	"github.com/herald-chat/herald/internal/infrastructure/ratelimiter"
	"github.com/herald-chat/herald/internal/infrastructure/registry"
	"github.com/herald-chat/herald/internal/infrastructure/rooms"
	"github.com/herald-chat/herald/internal/infrastructure/tracing"
	"github.com/herald-chat/herald/internal/infrastructure/ws"
	"go.opentelemetry.io/otel/trace"
)

const (
	defaultSweepInterval = 1 * time.Minute
	defaultStaleAfter    = 5 * time.Minute
)

type Options struct {
	// DefaultRooms are joined automatically on connect.
	DefaultRooms []string

	// SweepInterval paces the housekeeping loop; StaleAfter is how long
	// a connection may go without a heartbeat before the sweep closes
	// it. The transport's own ping/pong deadline usually fires first.
	SweepInterval time.Duration
	StaleAfter    time.Duration

	// SentryEnabled forwards handler panics and unexpected errors to
	// Sentry in addition to the log.
	SentryEnabled bool
}

func (o Options) withDefaults() Options {
	if o.SweepInterval <= 0 {
		o.SweepInterval = defaultSweepInterval
	}
	if o.StaleAfter <= 0 {
		o.StaleAfter = defaultStaleAfter
	}
	return o
}

// Gateway ties the components together: it owns the event table, runs
// every inbound frame through the rate limiter and the matching
// handler, and drives connection lifecycle.
type Gateway struct {
	registry  *registry.Registry
	chat      *chat.Manager
	directory *rooms.Directory
	hub       *notifications.Hub
	limiter   ratelimiter.Limiter
	publisher EventPublisher
	metrics   metrics.Manager
	log       logging.Logger
	opts      Options

	handlers map[string]HandlerFunc
	tracer   trace.Tracer

	done      chan struct{}
	closeOnce sync.Once
}

// HandlerFunc processes one inbound event. The returned value becomes
// the ack payload when the client asked for one.
type HandlerFunc func(ctx context.Context, c *registry.Connection, data []byte) (any, error)

func New(
	reg *registry.Registry,
	chatManager *chat.Manager,
	directory *rooms.Directory,
	hub *notifications.Hub,
	limiter ratelimiter.Limiter,
	publisher EventPublisher,
	metricsManager metrics.Manager,
	log logging.Logger,
	opts Options,
) *Gateway {
	if publisher == nil {
		publisher = NopPublisher{}
	}
	if metricsManager == nil {
		metricsManager = metrics.NopManager{}
	}

	g := &Gateway{
		registry:  reg,
		chat:      chatManager,
		directory: directory,
		hub:       hub,
		limiter:   limiter,
		publisher: publisher,
		metrics:   metricsManager,
		log:       log,
		opts:      opts.withDefaults(),
		tracer:    tracing.GetTracer("gateway"),
		done:      make(chan struct{}),
	}
	g.handlers = g.bind()
	return g
}

// Connect registers the connection, announces presence to everyone
// else, and joins the default rooms. user:online goes out on every
// connect, even when the user already has other devices attached.
func (g *Gateway) Connect(ctx context.Context, c *registry.Connection) {
	g.registry.Add(c)

	g.registry.BroadcastAll(ws.NewUserOnline(c.UserID), c.ID)

	for _, roomID := range g.opts.DefaultRooms {
		participants, err := g.chat.Join(c.ID, c.UserID, roomID)
		if err != nil {
			g.log.Warn(logging.Socket, logging.Connect, "default room join failed", map[logging.ExtraKey]any{
				logging.ConnectionID: c.ID,
				logging.RoomID:       roomID,
				logging.ErrorMessage: err.Error(),
			})
			continue
		}
		c.JoinRoom(roomID)
		if err := g.publisher.MemberJoined(ctx, roomID, c.UserID, participants); err != nil {
			g.warnPublishFailure("member joined", roomID, err)
		}
	}

	g.metrics.SetGauge(metrics.GatewayConnections, float64(g.registry.Count()))
	g.metrics.SetGauge(metrics.GatewayUsersOnline, float64(g.registry.UserCount()))

	g.log.Info(logging.Socket, logging.Connect, "connection established", map[logging.ExtraKey]any{
		logging.ConnectionID: c.ID,
		logging.UserID:       c.UserID,
	})
}

// Disconnect tears a connection down: chat rooms are left one by one
// (which broadcasts chat:user_left to the remaining members), topic
// subscriptions are dropped, and user:offline goes out only when this
// was the user's last connection.
func (g *Gateway) Disconnect(ctx context.Context, connID string) {
	c, lastOfUser, ok := g.registry.Remove(connID)
	if !ok {
		return
	}

	for _, roomID := range c.Rooms() {
		res := g.chat.Leave(c.ID, c.UserID, roomID)
		if !res.Removed {
			continue
		}
		if err := g.publisher.MemberLeft(ctx, roomID, c.UserID, res.Remaining); err != nil {
			g.warnPublishFailure("member left", roomID, err)
		}
		if res.Emptied {
			if err := g.publisher.RoomEmptied(ctx, roomID, res.MessagesDropped); err != nil {
				g.warnPublishFailure("room emptied", roomID, err)
			}
		}
	}

	g.hub.RemoveConnection(c.ID)

	if lastOfUser {
		g.registry.BroadcastAll(ws.NewUserOffline(c.UserID), c.ID)
	}

	g.metrics.SetGauge(metrics.GatewayConnections, float64(g.registry.Count()))
	g.metrics.SetGauge(metrics.GatewayUsersOnline, float64(g.registry.UserCount()))

	g.log.Info(logging.Socket, logging.Disconnect, "connection closed", map[logging.ExtraKey]any{
		logging.ConnectionID: c.ID,
		logging.UserID:       c.UserID,
		"lastOfUser":         lastOfUser,
	})
}

// Run drives periodic housekeeping until the context ends or Close is
// called.
func (g *Gateway) Run(ctx context.Context) {
	ticker := time.NewTicker(g.opts.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-g.done:
			return
		case <-ticker.C:
			g.sweep()
		}
	}
}

func (g *Gateway) sweep() {
	if s, ok := g.limiter.(interface{ Sweep() int }); ok {
		if removed := s.Sweep(); removed > 0 {
			g.log.Debug(logging.Internal, logging.Housekeeping, "expired limiter windows removed", map[logging.ExtraKey]any{
				"removed": removed,
			})
		}
	}

	// Safety net for connections whose transport deadline never fired.
	for _, c := range g.registry.Stale(g.opts.StaleAfter) {
		g.log.Warn(logging.Socket, logging.Housekeeping, "closing stale connection", map[logging.ExtraKey]any{
			logging.ConnectionID: c.ID,
			logging.UserID:       c.UserID,
		})
		c.Close()
	}

	g.metrics.SetGauge(metrics.ChatRooms, float64(g.chat.RoomCount()))
	g.metrics.SetGauge(metrics.NotificationTopics, float64(g.hub.TopicCount()))
}

func (g *Gateway) Close() {
	g.closeOnce.Do(func() {
		close(g.done)
	})
}
