package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/krishisakhi/backend/internal/advisor"
	"github.com/krishisakhi/backend/internal/detection"
	"github.com/krishisakhi/backend/internal/domain"
	"github.com/krishisakhi/backend/internal/featureflags"
	"github.com/krishisakhi/backend/internal/handler"
	"github.com/krishisakhi/backend/internal/infrastructure/logger"
	"github.com/krishisakhi/backend/internal/infrastructure/redis"
	"github.com/krishisakhi/backend/internal/knowledge"
	"github.com/krishisakhi/backend/internal/observability/tracing"
	"github.com/krishisakhi/backend/internal/repository"
	"github.com/krishisakhi/backend/internal/security"
	"github.com/krishisakhi/backend/internal/security/audit"
	"github.com/krishisakhi/backend/internal/security/auth"
	"github.com/krishisakhi/backend/internal/security/ratelimit"
	"github.com/krishisakhi/backend/internal/service"
	"github.com/krishisakhi/backend/internal/weather"
	"github.com/krishisakhi/backend/internal/worker"
	"github.com/krishisakhi/backend/pkg/cache"
	"github.com/krishisakhi/backend/pkg/config"
	"github.com/krishisakhi/backend/pkg/database"
)

// stores groups the repositories of one backend.
type stores struct {
	farmers    domain.FarmerRepository
	farms      domain.FarmRepository
	activities interface {
		domain.ActivityRepository
		domain.ActivityStats
	}
	detections domain.DetectionRepository
}

func main() {
	// 1. Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// 2. Initialize structured logger and tracing
	log := logger.NewLogger(cfg.LogLevel)
	log.Info("starting Krishi Sakhi server",
		slog.String("environment", cfg.Environment),
		slog.String("store", cfg.Store),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	shutdownTracing, err := tracing.Init(ctx, log, tracing.Options{
		ServiceName: "krishisakhi",
		Environment: cfg.Environment,
		Endpoint:    cfg.OTLPEndpoint,
	})
	if err != nil {
		log.Error("failed to initialize tracing", slog.String("error", err.Error()))
		os.Exit(1)
	}

	checks := map[string]handler.CheckFunc{}

	// 3. Initialize the record store
	var st stores
	switch cfg.Store {
	case config.StoreMemory:
		mem := repository.NewMemoryStore()
		st = stores{farmers: mem.Farmers(), farms: mem.Farms(), activities: mem.Activities(), detections: mem.Detections()}
		log.Warn("using in-memory store; records are lost on restart")
	default:
		pool, err := database.NewConnectionPool(ctx, &database.Config{
			Host:     cfg.Database.Host,
			Port:     cfg.Database.Port,
			User:     cfg.Database.User,
			Password: cfg.Database.Password,
			Database: cfg.Database.Name,
			SSLMode:  cfg.Database.SSLMode,
		}, log)
		if err != nil {
			log.Error("failed to connect to Postgres", slog.String("error", err.Error()))
			os.Exit(1)
		}
		defer pool.Close()
		if err := pool.Migrate(ctx); err != nil {
			log.Error("failed to migrate database", slog.String("error", err.Error()))
			os.Exit(1)
		}
		db := pool.GetDB()
		st = stores{
			farmers:    repository.NewPostgresFarmerRepository(db, log),
			farms:      repository.NewPostgresFarmRepository(db, log),
			activities: repository.NewPostgresActivityRepository(db, log),
			detections: repository.NewPostgresDetectionRepository(db, log),
		}
		checks["postgres"] = pool.Health
	}

	// 4. Initialize the forecast cache
	var forecasts domain.ForecastCache
	if cfg.RedisURL != "" {
		redisClient, err := redis.NewClient(ctx, cfg.RedisURL, log)
		if err != nil {
			log.Error("failed to connect to Redis", slog.String("error", err.Error()))
			os.Exit(1)
		}
		defer redisClient.Close()
		forecasts = redisClient
		checks["redis"] = redisClient.Ping
	} else {
		local := cache.New[*domain.Forecast]()
		forecasts = weather.NewMemoryCache(local)
		janitor := worker.NewJanitor(map[string]worker.Purger{"forecast": local}, log, cfg.CacheJanitorInterval)
		go janitor.Start(ctx)
	}

	// 5. Initialize security components
	tokenManager := auth.NewTokenManager(cfg.JWTSecret, cfg.JWTIssuer, cfg.TokenTTL)
	rateLimiter := ratelimit.NewLimiter(cfg.RateLimitPerMinute, time.Minute)
	auditLogger := audit.NewLogger(log)
	guard := security.NewOwnershipGuard(st.farms, st.activities, log)
	flags := featureflags.FromEnv()

	// 6. Initialize services
	catalog, err := knowledge.Load()
	if err != nil {
		log.Error("failed to load knowledge catalog", slog.String("error", err.Error()))
		os.Exit(1)
	}
	deps := handler.Deps{
		Auth:          service.NewAuthService(st.farmers, tokenManager, auditLogger, log),
		Records:       service.NewRecordService(st.farms, st.activities, st.activities, guard, auditLogger, log),
		Detections:    detection.NewService(catalog, nil, st.detections, guard, auditLogger, log),
		Weather:       weather.NewService(forecasts, cfg.ForecastCacheTTL, log),
		Catalog:       catalog,
		Advisor:       advisor.NewEngine(advisor.GeneratorFor(cfg.LLM, flags, log), log),
		Tokens:        tokenManager,
		Limiter:       rateLimiter,
		AuditLog:      auditLogger,
		Flags:         flags,
		LoginAttempts: cfg.LoginAttemptsPerMinute,
		Origins:       cfg.CORSAllowedOrigins,
		Checks:        checks,
		Logger:        log,
	}

	// 7. Start HTTP server
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      otelhttp.NewHandler(handler.NewRouter(deps), "krishisakhi"),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	log.Info("server starting",
		slog.Int("port", cfg.ServerPort),
		slog.String("auth", "jwt"),
		slog.Int("rate_limit", cfg.RateLimitPerMinute),
		slog.Bool("demo_login", flags.Enabled(featureflags.DemoLogin)),
		slog.Bool("generative_chat", flags.Enabled(featureflags.GenerativeChat)),
	)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", slog.String("error", err.Error()))
			sigChan <- syscall.SIGTERM
		}
	}()

	<-sigChan
	log.Info("shutdown signal received")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown error", slog.String("error", err.Error()))
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		log.Error("tracing shutdown error", slog.String("error", err.Error()))
	}

	cancel()
	rateLimiter.Stop()
	log.Info("server stopped")
}
