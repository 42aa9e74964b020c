package main

import (
	"context"
	"log"
	"time"

	redislib "github.com/redis/go-redis/v9"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	apiHandler "github.com/taskboard/backend/api/handler"
	"github.com/taskboard/backend/internal/config"
	"github.com/taskboard/backend/internal/infrastructure/monitor"
	pgInfra "github.com/taskboard/backend/internal/infrastructure/postgres"
	redisInfra "github.com/taskboard/backend/internal/infrastructure/redis"
	"github.com/taskboard/backend/internal/middleware"
	"github.com/taskboard/backend/internal/router"
	"github.com/taskboard/backend/internal/services/lifecycle"
	"github.com/taskboard/backend/pkg/httpcontext"
	"github.com/taskboard/backend/pkg/logger"
	"github.com/taskboard/backend/repository"
	"github.com/taskboard/backend/repository/identityapi"
	"github.com/taskboard/backend/repository/postgres"
	redisRepo "github.com/taskboard/backend/repository/redis"
	profileUC "github.com/taskboard/backend/usecase/profile"
	taskUC "github.com/taskboard/backend/usecase/task"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	zapLogger, err := logger.New(logger.Config{
		Level:    cfg.Logger.Level,
		Encoding: cfg.Logger.Encoding,
	})
	if err != nil {
		log.Fatalf("logger error: %v", err)
	}
	defer zapLogger.Sync()

	appCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	manager := lifecycle.New(cfg.Context.ShutdownTimeout, zapLogger)
	manager.Listen(cancel)

	if cfg.Migrations.Enabled {
		if err := pgInfra.RunMigrations(cfg, zapLogger); err != nil {
			zapLogger.Fatal("migrations failed", zap.Error(err))
		}
	}

	pool, err := pgInfra.NewPool(appCtx, cfg.Database, zapLogger)
	if err != nil {
		zapLogger.Fatal("postgres connection failed", zap.Error(err))
	}
	manager.Register("postgres", func(ctx context.Context) error {
		pool.Close()
		return nil
	})

	// The cache is optional: without Redis every request pays a provider
	// round trip, but nothing breaks.
	var identityCache repository.IdentityCache
	var redisClient *redislib.Client
	if cfg.Redis.URL != "" {
		redisClient, err = redisInfra.NewClient(cfg.Redis)
		if err != nil {
			zapLogger.Warn("redis unavailable, token resolution cache disabled", zap.Error(err))
			redisClient = nil
		}
	}
	if redisClient != nil {
		identityCache = redisRepo.NewIdentityCache(redisClient, cfg.Redis.CacheTTL)
		manager.Register("redis", func(ctx context.Context) error {
			return redisClient.Close()
		})
	}

	identityClient, err := identityapi.NewClient(identityapi.Config{
		URL:     cfg.Identity.URL,
		AnonKey: cfg.Identity.AnonKey,
		Timeout: cfg.Identity.Timeout,
	}, zapLogger)
	if err != nil {
		zapLogger.Fatal("identity provider configuration invalid", zap.Error(err))
	}

	mon := monitor.New(pool, redisClient, identityClient, 10*time.Second, zapLogger)
	mon.Start()
	manager.Register("monitor", func(ctx context.Context) error {
		mon.Stop()
		return nil
	})

	taskRepo := postgres.NewTaskRepository(pool)

	taskUseCase := taskUC.New(taskRepo, zapLogger)
	profileUseCase := profileUC.New(identityClient, taskRepo, zapLogger)

	ctxAdapter := httpcontext.NewAdapter(cfg.Context.RequestTimeout)

	handlers := router.Handlers{
		Health:  apiHandler.NewHealthHandler(mon, ctxAdapter, zapLogger),
		Task:    apiHandler.NewTaskHandler(taskUseCase, ctxAdapter, zapLogger),
		Profile: apiHandler.NewProfileHandler(profileUseCase, ctxAdapter, zapLogger),
	}

	gate := middleware.AccessGate(identityClient, identityCache, middleware.GateConfig{
		ServiceKey:     cfg.Identity.ServiceRoleKey,
		ResolveTimeout: cfg.Identity.Timeout,
		CacheTTL:       cfg.Redis.CacheTTL,
	}, zapLogger)

	r := router.New(handlers, gate)

	corsConfig := middleware.DefaultCORSConfig()
	corsConfig.Origins = cfg.HTTP.CORSOrigins

	server := &fasthttp.Server{
		Handler:      middleware.CORS(corsConfig)(r.Handler),
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
		Name:         cfg.AppName,
	}

	go func() {
		zapLogger.Info("server started", zap.String("address", cfg.Address()))
		if err := server.ListenAndServe(cfg.Address()); err != nil {
			zapLogger.Fatal("server crashed", zap.Error(err))
		}
	}()

	manager.Register("http_server", func(ctx context.Context) error {
		return server.Shutdown()
	})

	<-appCtx.Done()

	if err := manager.Shutdown(context.Background()); err != nil {
		zapLogger.Error("graceful shutdown error", zap.Error(err))
	}
}
