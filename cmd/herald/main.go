package main

import (
	"context"
	"expvar"
	"log"
	"runtime"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/sync/errgroup"

	_ "github.com/herald-chat/herald/docs"
	"github.com/herald-chat/herald/internal/domain"
	"github.com/herald-chat/herald/internal/infrastructure/chat"
	"github.com/herald-chat/herald/internal/infrastructure/configs"
	"github.com/herald-chat/herald/internal/infrastructure/events"
	"github.com/herald-chat/herald/internal/infrastructure/gateway"
	"github.com/herald-chat/herald/internal/infrastructure/logging"
	"github.com/herald-chat/herald/internal/infrastructure/messaging"
	"github.com/herald-chat/herald/internal/infrastructure/metrics"
	"github.com/herald-chat/herald/internal/infrastructure/notifications"
	"github.com/herald-chat/herald/internal/infrastructure/profanity"
	"github.com/herald-chat/herald/internal/infrastructure/ratelimiter"
	"github.com/herald-chat/herald/internal/infrastructure/registry"
	"github.com/herald-chat/herald/internal/infrastructure/rooms"
	"github.com/herald-chat/herald/internal/infrastructure/tracing"
	"github.com/herald-chat/herald/internal/persistence/db"
	"github.com/herald-chat/herald/internal/persistence/repository"
	"github.com/herald-chat/herald/internal/presentation/api"
	healthHandler "github.com/herald-chat/herald/internal/presentation/handler/health"
	notificationsHandler "github.com/herald-chat/herald/internal/presentation/handler/notifications"
	presenceHandler "github.com/herald-chat/herald/internal/presentation/handler/presence"
	roomsHandler "github.com/herald-chat/herald/internal/presentation/handler/rooms"
	socketHandler "github.com/herald-chat/herald/internal/presentation/handler/socket"
)

const (
	serviceName = "herald-gateway"
)

// @title        Herald Gateway API
// @version      1.0
// @description  REST companion to the Herald realtime event gateway: room directory, notification publishing, presence and health.
// @BasePath     /api
func main() {
	configPath := configs.DetermineConfigPath()
	cfg, err := configs.Load(configPath)
	if err != nil {
		log.Fatal(err)
	}

	logger := logging.NewLogger(logging.NewDefaultConfig())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.Tracing.Enabled {
		tracerCfg := tracing.NewDefaultConfig(serviceName)
		if cfg.Tracing.Endpoint != "" {
			tracerCfg.Endpoint = cfg.Tracing.Endpoint
		}

		sh, err := tracing.InitTracer(tracerCfg)
		if err != nil {
			log.Fatalf("Failed to initialize the tracer: %v", err)
		}
		defer sh(ctx)
	}

	if cfg.Sentry.DSN != "" {
		err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.Sentry.DSN,
			Environment:      cfg.Sentry.Environment,
			TracesSampleRate: cfg.Sentry.SampleRate,
		})
		if err != nil {
			log.Fatalf("Failed to initialize sentry: %v", err)
		}
		defer sentry.Flush(2 * time.Second)
	}

	logger.Info(logging.General, logging.Startup, "starting herald", map[logging.ExtraKey]any{
		logging.AppName: serviceName,
	})

	limiterOpts := ratelimiter.Options{
		MaxEvents:  cfg.RateLimiter.MaxEvents,
		Window:     cfg.RateLimiter.Window,
		SweepEvery: cfg.RateLimiter.SweepEvery,
	}

	var limiter ratelimiter.Limiter
	switch cfg.RateLimiter.Backend {
	case "redis":
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Fatalf("Failed to connect to redis: %v", err)
		}
		defer rdb.Close()

		limiter = ratelimiter.NewRedisFixedWindow(rdb, limiterOpts, logger)
	default:
		limiter = ratelimiter.NewFixedWindow(limiterOpts)
	}
	defer limiter.Close()

	reg := registry.New()

	chatOpts := chat.Options{HistoryCapacity: cfg.Chat.HistoryCapacity}
	if cfg.Chat.FilterProfanity {
		chatOpts.Filter = profanity.New()
	}
	chatManager := chat.NewManager(reg, logger, chatOpts)

	directory := rooms.NewDirectory(chatManager, cfg.Rooms.Capacity, cfg.Rooms.IdleExpiry)
	hub := notifications.NewHub(reg, logger)
	metricsManager, promRegistry := metrics.NewManager()

	var auditRepo domain.RoomAuditRepository
	if cfg.Audit.Enabled {
		mongoClient, err := db.NewMongoClient(ctx, &db.MongoConfig{
			URI:               cfg.Audit.MongoURI,
			Database:          cfg.Audit.Database,
			ConnectionTimeout: db.DefaultConnectionTimeout,
		})
		if err != nil {
			log.Fatalf("Failed to connect to mongodb: %v", err)
		}
		defer mongoClient.Disconnect(ctx)

		auditRepo = repository.NewRoomAuditLogRepository(mongoClient.Database(cfg.Audit.Database))
		if err := auditRepo.EnsureIndexes(ctx); err != nil {
			log.Fatalf("Failed to ensure mongodb indexes: %v", err)
		}

		if cfg.Audit.Retention > 0 {
			go runAuditRetention(ctx, auditRepo, cfg.Audit.Retention, logger)
		}
	}

	var publisher gateway.EventPublisher
	if cfg.Messaging.Enabled {
		rabbitmq, err := messaging.NewRabbitMQ(cfg.Messaging.URI)
		if err != nil {
			log.Fatal(err)
		}
		defer rabbitmq.Close()

		if err := rabbitmq.DeclareTopology(); err != nil {
			log.Fatal(err)
		}

		log.Println("Starting RabbitMQ connection")

		publisher = events.NewRoomPublisher(rabbitmq)

		notificationConsumer := events.NewNotificationConsumer(rabbitmq, hub, metricsManager, logger)
		go notificationConsumer.Listen()

		if auditRepo != nil {
			auditConsumer := events.NewAuditConsumer(rabbitmq, auditRepo, logger)
			go auditConsumer.Listen()
		}
	}

	g := gateway.New(reg, chatManager, directory, hub, limiter, publisher, metricsManager, logger, gateway.Options{
		DefaultRooms:  cfg.Gateway.DefaultRooms,
		SweepInterval: cfg.Gateway.SweepInterval,
		SentryEnabled: cfg.Sentry.DSN != "",
	})
	defer g.Close()

	wsHandler := socketHandler.NewHandler(g, socketHandler.Options{
		AllowedOrigins: cfg.HTTP.AllowedOrigins,
		SendBuffer:     cfg.Gateway.SendBuffer,
		MaxFrameBytes:  cfg.Gateway.MaxFrameBytes,
	})
	roomHandler := roomsHandler.NewHandler(directory, chatManager, auditRepo, publisher)
	notificationHandler := notificationsHandler.NewHandler(hub, metricsManager)
	presenceHdl := presenceHandler.NewHandler(reg)
	healthHdl := healthHandler.NewHandler()

	app := api.NewApplication(cfg, wsHandler, roomHandler, notificationHandler, presenceHdl, healthHdl, metricsManager, promRegistry, limiter, logger)

	expvar.Publish("goroutines", expvar.Func(func() any {
		return runtime.NumGoroutine()
	}))

	mux := otelhttp.NewHandler(app.Mount(), "herald")

	grp, grpCtx := errgroup.WithContext(ctx)

	grp.Go(func() error {
		g.Run(grpCtx)
		return nil
	})

	grp.Go(func() error {
		defer cancel()
		return app.Run(mux)
	})

	if err := grp.Wait(); err != nil {
		logger.Fatal(logging.General, logging.Shutdown, "server terminated", map[logging.ExtraKey]any{
			logging.ErrorMessage: err.Error(),
		})
	}
}

func runAuditRetention(ctx context.Context, repo domain.RoomAuditRepository, retention time.Duration, logger logging.Logger) {
	ticker := time.NewTicker(24 * time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := repo.DeleteOlderThan(ctx, time.Now().Add(-retention)); err != nil {
				logger.Error(logging.Mongo, logging.Audit, "audit retention sweep failed", map[logging.ExtraKey]any{
					logging.ErrorMessage: err.Error(),
				})
			}
		}
	}
}
