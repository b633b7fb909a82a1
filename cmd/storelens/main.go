// Command storelens runs the PageGrid admin data explorer API.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pagegrid/storelens/internal/catalog"
	"github.com/pagegrid/storelens/internal/config"
	"github.com/pagegrid/storelens/internal/db/mongo"
	"github.com/pagegrid/storelens/internal/domain/query/request"
	logpkg "github.com/pagegrid/storelens/internal/logger"
	"github.com/pagegrid/storelens/internal/metrics"
	chiTransport "github.com/pagegrid/storelens/internal/transport/chi"
	healthuc "github.com/pagegrid/storelens/internal/usecase/health"
	queryuc "github.com/pagegrid/storelens/internal/usecase/query"
	schemauc "github.com/pagegrid/storelens/internal/usecase/schema"
	"github.com/pagegrid/storelens/internal/version"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "storelens",
		Short: "Read-only query and schema introspection API for the PageGrid store",
	}

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the storelens API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run()
		},
	}

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("storelens %s (commit %s, built %s)\n", version.Version, version.Commit, version.Date)
		},
	}

	rootCmd.AddCommand(serveCmd, versionCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run() error {
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting storelens API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("database", cfg.Store.Database),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store, err := mongo.NewStore(ctx, mongo.Config{
		URI:            cfg.Store.URI,
		Database:       cfg.Store.Database,
		ConnectTimeout: time.Duration(cfg.Store.ConnectTimeoutSec) * time.Second,
		MaxPoolSize:    cfg.Store.MaxPoolSize,
	})
	if err != nil {
		return fmt.Errorf("create store: %w", err)
	}
	defer func() {
		if err := store.Close(context.Background()); err != nil {
			logger.Error("Error closing store", zap.Error(err))
		}
	}()

	// An unreachable store is not fatal: the catalog still serves
	// introspection, and queries surface store_unavailable until the
	// store comes back.
	if err := store.WaitForReady(ctx, time.Duration(cfg.Store.ReadinessTimeoutSec)*time.Second); err != nil {
		logger.Warn("Store not ready, starting degraded", zap.Error(err))
	} else {
		logger.Info("Connected to store")
	}

	reg, err := catalog.New()
	if err != nil {
		return fmt.Errorf("build catalog: %w", err)
	}
	names := make([]string, 0, len(reg.List()))
	for _, entry := range reg.List() {
		names = append(names, entry.Name())
	}
	logger.Info("Collection catalog loaded", zap.Strings("collections", names))

	// Register query metrics explicitly (no init())
	metrics.RegisterQueryMetrics()

	limits := request.Limits{
		MaxRows:               cfg.Query.MaxRows,
		DefaultLimit:          cfg.Query.DefaultLimit,
		MaxTimeoutSeconds:     cfg.Query.MaxTimeoutSec,
		DefaultTimeoutSeconds: cfg.Query.DefaultTimeoutSec,
	}

	schemaSvc := schemauc.New(reg, store)
	querySvc := queryuc.New(reg, store, limits)
	healthSvc := healthuc.New(store)

	server := chiTransport.NewServer(schemaSvc, querySvc, healthSvc, logger)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(chiTransport.BearerAuthMiddleware(cfg.Auth.Tokens))
	if cfg.RateLimit.Enabled {
		rl := chiTransport.NewRateLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst)
		rl.StartCleanup(ctx, time.Minute, 10*time.Minute)
		r.Use(chiTransport.RateLimitMiddleware(rl))
	}
	r.Use(metrics.Middleware())
	server.Mount(r)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-quit:
		logger.Info("Received shutdown signal")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
	return nil
}

// jsonRecoverer is a recovery middleware that returns JSON instead of a plain text stacktrace.
func jsonRecoverer(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rvr := recover(); rvr != nil {
					logger.Error("panic recovered",
						zap.Any("panic", rvr),
						zap.Stack("stacktrace"),
					)
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					_ = json.NewEncoder(w).Encode(map[string]string{
						"code":    "internal",
						"message": "internal error",
					})
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// wideEventMiddleware emits a canonical log line per request and propagates X-Request-ID.
func wideEventMiddleware(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			// chi.middleware.RequestID already placed request_id in context
			requestID := chiMiddleware.GetReqID(r.Context())

			// Set X-Request-ID in response header
			if requestID != "" {
				w.Header().Set("X-Request-ID", requestID)
			}

			// Per-request logger with request_id
			reqLogger := logger.With(zap.String("request_id", requestID))
			ctx := logpkg.ContextWithLogger(r.Context(), reqLogger)

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			// Canonical log line — one line per request
			reqLogger.Info("http_request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("latency", time.Since(start)),
				zap.String("ip", r.RemoteAddr),
				zap.Int64("content_length", r.ContentLength),
				zap.String("user_agent", r.UserAgent()),
				zap.Int("response_bytes", ww.BytesWritten()),
			)
		})
	}
}
