package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/herald-chat/herald/internal/infrastructure/configs"
	"github.com/herald-chat/herald/internal/infrastructure/logging"
	"github.com/herald-chat/herald/internal/infrastructure/metrics"
	"github.com/herald-chat/herald/internal/infrastructure/ratelimiter"
	healthHandler "github.com/herald-chat/herald/internal/presentation/handler/health"
	notificationsHandler "github.com/herald-chat/herald/internal/presentation/handler/notifications"
	presenceHandler "github.com/herald-chat/herald/internal/presentation/handler/presence"
	roomsHandler "github.com/herald-chat/herald/internal/presentation/handler/rooms"
	socketHandler "github.com/herald-chat/herald/internal/presentation/handler/socket"
	"github.com/prometheus/client_golang/prometheus"
	httpSwagger "github.com/swaggo/http-swagger/v2"
)

type Application struct {
	config               *configs.Config
	socketHandler        *socketHandler.Handler
	roomsHandler         *roomsHandler.Handler
	notificationsHandler *notificationsHandler.Handler
	presenceHandler      *presenceHandler.Handler
	healthHandler        *healthHandler.Handler
	metrics              metrics.Manager
	promRegistry         *prometheus.Registry
	ratelimiter          ratelimiter.Limiter
	logger               logging.Logger
}

func NewApplication(
	config *configs.Config,
	socket *socketHandler.Handler,
	rooms *roomsHandler.Handler,
	notifications *notificationsHandler.Handler,
	presence *presenceHandler.Handler,
	health *healthHandler.Handler,
	metricsManager metrics.Manager,
	promRegistry *prometheus.Registry,
	limiter ratelimiter.Limiter,
	logger logging.Logger,
) *Application {
	return &Application{
		config:               config,
		socketHandler:        socket,
		roomsHandler:         rooms,
		notificationsHandler: notifications,
		presenceHandler:      presence,
		healthHandler:        health,
		metrics:              metricsManager,
		promRegistry:         promRegistry,
		ratelimiter:          limiter,
		logger:               logger,
	}
}

func (app *Application) Mount() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Use(app.enableCors)

	// The socket route stays outside the request timeout: upgraded
	// connections live for hours.
	r.Get("/ws", app.socketHandler.ServeHandler)

	r.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(60 * time.Second))
		r.Use(app.loggerMiddleware)
		r.Use(app.rateLimiterMiddleware)

		r.Route("/api", func(r chi.Router) {
			r.Route("/rooms", func(r chi.Router) {
				r.Get("/", app.roomsHandler.ListRoomsHandler)
				r.Post("/", app.roomsHandler.CreateRoomHandler)
				r.Get("/{roomId}", app.roomsHandler.GetRoomHandler)
				r.Get("/{roomId}/history", app.roomsHandler.GetRoomHistoryHandler)
				r.Get("/{roomId}/audit", app.roomsHandler.GetRoomAuditHandler)
			})

			r.Route("/notifications", func(r chi.Router) {
				r.Post("/", app.notificationsHandler.PublishHandler)
				r.Get("/topics/{topic}", app.notificationsHandler.GetTopicHandler)
			})

			r.Get("/presence", app.presenceHandler.GetPresenceHandler)

			r.Get("/health", app.healthHandler.GetHealth)
			r.Get("/healthz", app.healthHandler.GetHealth)
			r.Get("/ready", app.healthHandler.GetHealth)
			r.Get("/live", app.healthHandler.GetHealth)
		})

		r.Get("/swagger/*", httpSwagger.Handler(
			httpSwagger.URL("/swagger/doc.json"),
		))
	})

	metrics.Routes(r, app.metrics, app.promRegistry)

	return r
}

func (app *Application) Run(mux http.Handler) error {
	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", app.config.HTTP.Host, app.config.HTTP.Port),
		Handler:      mux,
		WriteTimeout: app.config.HTTP.WriteTimeout,
		ReadTimeout:  app.config.HTTP.ReadTimeout,
		IdleTimeout:  time.Minute,
	}

	shutdown := make(chan error)

	go func() {
		quit := make(chan os.Signal, 1)

		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		s := <-quit

		app.logger.Info(logging.General, logging.Shutdown, "signal caught", map[logging.ExtraKey]any{
			"signal": s.String(),
		})

		healthHandler.SetUnhealthy()

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		shutdown <- srv.Shutdown(ctx)
	}()

	app.logger.Info(logging.General, logging.Startup, "server has started", map[logging.ExtraKey]any{
		"addr": srv.Addr,
	})

	err := srv.ListenAndServe()
	if !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	err = <-shutdown
	if err != nil {
		return err
	}

	app.logger.Info(logging.General, logging.Shutdown, "server has stopped", map[logging.ExtraKey]any{
		"addr": srv.Addr,
	})

	return nil
}
