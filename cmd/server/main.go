package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/benvon/team-builder/internal/catalog"
	"github.com/benvon/team-builder/internal/config"
	"github.com/benvon/team-builder/internal/database"
	"github.com/benvon/team-builder/internal/handlers"
	"github.com/benvon/team-builder/internal/logger"
	"github.com/benvon/team-builder/internal/metrics"
	"github.com/benvon/team-builder/internal/middleware"
	"github.com/benvon/team-builder/internal/ratelimit"
	"github.com/benvon/team-builder/internal/services/ai"
	"github.com/benvon/team-builder/internal/services/team"
	"github.com/benvon/team-builder/internal/telemetry"
	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/rs/cors"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gorilla/mux/otelmux"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
)

const serviceName = "team-builder-api"

func main() {
	debugFlag := flag.Bool("debug", false, "Enable debug mode for LLM API logging")
	flag.Parse()

	// .env is optional; real environment variables win
	envFileErr := godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	debugMode := cfg.ServerDebugMode || *debugFlag

	zapLogger, err := logger.New(debugMode, cfg.LogFormat)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() { _ = logger.Sync(zapLogger) }()

	if envFileErr != nil {
		zapLogger.Debug("env_file_not_loaded", zap.Error(envFileErr))
	}

	zapLogger.Info("starting_server",
		zap.Bool("debug_mode", debugMode),
		zap.String("server_port", cfg.ServerPort),
		zap.String("frontend_url", cfg.FrontendURL),
		zap.String("openai_api_key", ai.SanitizeAPIKey(cfg.OpenAIKey)),
		zap.Int("teams_per_day_limit", cfg.TeamsPerDayLimit),
		zap.String("rate_limit_algorithm", cfg.RateLimitAlgorithm),
		zap.String("rate_limit_store", cfg.RateLimitStore),
		zap.String("rate_limit_fail_mode", cfg.RateLimitFailMode),
		zap.Bool("otel_enabled", cfg.OTELEnabled),
	)

	tracerProvider := initTracing(cfg, zapLogger)
	if tracerProvider != nil {
		defer func() {
			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer shutdownCancel()
			if err := telemetry.Shutdown(shutdownCtx, tracerProvider); err != nil {
				zapLogger.Error("failed_to_shutdown_otel_tracer", zap.Error(err))
			}
		}()
	}

	checks := map[string]handlers.CheckFunc{}

	redisClient := connectRedis(cfg, zapLogger)
	if redisClient != nil {
		defer func() {
			if err := redisClient.Close(); err != nil {
				zapLogger.Warn("failed_to_close_redis_connection", zap.Error(err))
			}
		}()
		checks["redis"] = func(ctx context.Context) error {
			return ratelimit.Ping(ctx, redisClient, 2*time.Second)
		}
	}

	limiterOpts := ratelimit.OptionsFromConfig(cfg)

	db := connectDatabase(cfg, zapLogger)
	if db != nil {
		defer func() {
			if err := db.Close(); err != nil {
				zapLogger.Warn("failed_to_close_database_connection", zap.Error(err))
			}
		}()
		checks["database"] = db.Ping
		limiterOpts.ConfigStore = database.NewRatelimitConfigRepository(db)
	}

	limiter, reloader, err := ratelimit.Build(limiterOpts, redisClient, zapLogger)
	if err != nil {
		zapLogger.Fatal("failed_to_build_rate_limiter", zap.Error(err))
	}

	reloadCtx, reloadCancel := context.WithCancel(context.Background())
	defer reloadCancel()
	if reloader != nil {
		reloader.Load(reloadCtx)
		go reloader.Start(reloadCtx)
		zapLogger.Info("rate_limit_reloader_started",
			zap.String("rate", reloader.Rate().String()),
			zap.Duration("interval", cfg.RateLimitReloadInterval),
		)
	}

	recorder := metrics.NewRecorder()
	teamCatalog := catalog.MustLoad()

	if cfg.OpenAIKey == "" {
		zapLogger.Warn("openai_api_key_not_configured_generation_will_fail")
	}
	provider := ai.NewOpenAIProvider(ai.OpenAIConfig{
		APIKey:    cfg.OpenAIKey,
		BaseURL:   cfg.AIBaseURL,
		Model:     cfg.AIModel,
		Timeout:   cfg.AITimeout,
		Logger:    zapLogger,
		DebugMode: debugMode,
	})
	zapLogger.Info("ai_provider_initialized", zap.String("model", provider.Model()))
	generator := team.NewService(provider, teamCatalog, ai.CompletionOptions{
		Model:       provider.Model(),
		Temperature: cfg.AITemperature,
		MaxTokens:   cfg.AIMaxTokens,
	},
		team.WithMetrics(recorder),
		team.WithLogger(zapLogger, debugMode),
	)

	teamHandler := handlers.NewTeamHandler(limiter, generator, handlers.TeamHandlerConfig{
		FailOpen:  cfg.FailOpen(),
		AITimeout: cfg.AITimeout,
		Metrics:   recorder,
		Logger:    zapLogger,
	})

	r := mux.NewRouter()

	// gorilla/mux runs middleware in registration order: the first registered is outermost
	if tracerProvider != nil {
		r.Use(otelmux.Middleware(serviceName))
	}
	r.Use(middleware.RequestID)
	r.Use(middleware.SecurityHeaders(cfg.EnableHSTS))
	r.Use(middleware.Logging(zapLogger))
	r.Use(middleware.Metrics(recorder))
	r.Use(middleware.Audit(zapLogger))
	r.Use(middleware.ErrorHandler(zapLogger))
	r.Use(middleware.MaxRequestSize(middleware.DefaultMaxRequestSize, zapLogger))
	r.Use(middleware.ContentType(zapLogger))
	r.Use(middleware.Timeout(cfg.RequestTimeout))

	teamHandler.RegisterRoutes(r)
	handlers.NewCatalogHandler(teamCatalog).RegisterRoutes(r)
	handlers.NewHealthChecker(checks).RegisterRoutes(r)
	handlers.NewOpenAPIHandler(cfg.OpenAPIPath).RegisterRoutes(r)
	r.Handle("/metrics", recorder.Handler()).Methods(http.MethodGet)

	// CORS wraps the router so preflight requests are answered before route matching
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   allowedOrigins(cfg.FrontendURL),
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Content-Type", middleware.RequestIDHeader},
		ExposedHeaders:   []string{"X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset", "Retry-After", middleware.RequestIDHeader},
		AllowCredentials: false,
		MaxAge:           600,
	}).Handler(r)

	srv := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           corsHandler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		// Must outlast the request timeout so timed out handlers can still answer
		WriteTimeout:   cfg.RequestTimeout + 10*time.Second,
		IdleTimeout:    60 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	go func() {
		zapLogger.Info("server_starting", zap.String("port", cfg.ServerPort))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLogger.Fatal("server_failed_to_start", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zapLogger.Info("server_shutting_down")
	reloadCancel()

	// In-flight generations may take up to the AI timeout
	ctx, cancel := context.WithTimeout(context.Background(), cfg.AITimeout+5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		zapLogger.Error("server_forced_to_shutdown", zap.Error(err))
	}

	zapLogger.Info("server_exited")
}

func initTracing(cfg *config.Config, zapLogger *zap.Logger) *sdktrace.TracerProvider {
	if !cfg.OTELEnabled {
		return nil
	}
	if cfg.OTELEndpoint == "" {
		zapLogger.Warn("otel_enabled_but_endpoint_not_configured")
		return nil
	}
	tp, err := telemetry.InitTracer(context.Background(), serviceName, cfg.OTELEndpoint)
	if err != nil {
		zapLogger.Warn("failed_to_initialize_otel_tracer", zap.Error(err))
		return nil
	}
	zapLogger.Info("otel_tracer_initialized", zap.String("endpoint", cfg.OTELEndpoint))
	return tp
}

// connectRedis returns nil for the memory store. An unreachable Redis is fatal only when the
// limiter fails closed; in open mode requests keep flowing while Redis recovers.
func connectRedis(cfg *config.Config, zapLogger *zap.Logger) *redis.Client {
	if cfg.RateLimitStore == config.RateLimitStoreMemory {
		zapLogger.Warn("using_in_memory_rate_limit_store_single_instance_only")
		return nil
	}

	client, err := ratelimit.NewRedisClient(cfg.RedisURL)
	if err != nil {
		zapLogger.Fatal("invalid_redis_url", zap.Error(err))
	}

	if err := ratelimit.Ping(context.Background(), client, 5*time.Second); err != nil {
		if !cfg.FailOpen() {
			zapLogger.Fatal("failed_to_connect_to_redis", zap.Error(err))
		}
		zapLogger.Warn("redis_unreachable_failing_open", zap.Error(err))
		return client
	}

	zapLogger.Info("connected_to_redis")
	return client
}

// connectDatabase returns nil when no database is configured or it cannot be reached;
// the limiter then runs on the configured rate without hot reload.
func connectDatabase(cfg *config.Config, zapLogger *zap.Logger) *database.DB {
	if cfg.DatabaseURL == "" {
		return nil
	}

	db, err := database.New(cfg.DatabaseURL)
	if err != nil {
		zapLogger.Warn("failed_to_connect_to_database_rate_limit_reload_disabled", zap.Error(err))
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := db.EnsureSchema(ctx); err != nil {
		zapLogger.Warn("failed_to_ensure_database_schema_rate_limit_reload_disabled", zap.Error(err))
		_ = db.Close()
		return nil
	}

	zapLogger.Info("connected_to_database")
	return db
}

// allowedOrigins splits a comma separated FRONTEND_URL
func allowedOrigins(frontendURL string) []string {
	var origins []string
	for _, origin := range strings.Split(frontendURL, ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			origins = append(origins, origin)
		}
	}
	return origins
}
