// Package main initializes and starts the TwoHearts API server,
// setting up configuration, logging, database connections, repositories,
// services, handlers, object storage, rate limiting and optional TLS.
package main

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	nethttp "net/http"

	"github.com/atinyakov/TwoHearts/internal/config"
	"github.com/atinyakov/TwoHearts/internal/db"
	"github.com/atinyakov/TwoHearts/internal/logger"
	"github.com/atinyakov/TwoHearts/internal/middleware"
	"github.com/atinyakov/TwoHearts/internal/repository"
	"github.com/atinyakov/TwoHearts/internal/server/handler/http"
	"github.com/atinyakov/TwoHearts/internal/service"
	"github.com/atinyakov/TwoHearts/internal/storage"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

var (
	// version holds the build version set via ldflags.
	version string
	// buildDate holds the build timestamp set via ldflags.
	buildDate string
)

func main() {
	// Print build metadata (or "N/A" if unset).
	fmt.Printf("Build version: %s\n", cmp.Or(version, "N/A"))
	fmt.Printf("Build date: %s\n", cmp.Or(buildDate, "N/A"))

	// Parse command-line, file and environment configuration.
	options, err := config.Parse()
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		os.Exit(2)
	}

	// Initialize structured logging.
	log := logger.New()
	if err := log.Init(options.LogLevel); err != nil {
		fmt.Fprintf(os.Stderr, "failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Log.Sync() }()
	zapLogger := log.Log

	if err := run(options, zapLogger); err != nil {
		zapLogger.Fatal("server stopped", zap.Error(err))
	}
}

func run(options *config.Options, zapLogger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize PostgreSQL connection and schema.
	postgresDB, err := db.InitPostgres(options.DatabaseDSN)
	if err != nil {
		return fmt.Errorf("cannot init database: %w", err)
	}
	defer postgresDB.Close()

	// Purge expired login sessions in the background.
	db.StartSessionCleaner(ctx, postgresDB, options.SessionCleanupInterval, zapLogger)

	// Object storage for avatars and gallery uploads.
	store, err := storage.New(ctx, options)
	if err != nil {
		return fmt.Errorf("cannot init object storage: %w", err)
	}
	var objects service.ObjectStore
	if store != nil {
		objects = store
	} else {
		zapLogger.Warn("object storage disabled; uploads will be rejected")
	}

	// Initialize repositories.
	userRepo := repository.NewPostgresUserRepository(postgresDB)
	entryRepo := repository.NewPostgresEntryRepository(postgresDB)
	partnerRepo := repository.NewPostgresPartnerRepository(postgresDB)

	// Initialize business-logic services.
	authService := service.NewAuthService(userRepo, []byte(options.JWTSecret), options.TokenTTL)
	profileService := service.NewProfileService(userRepo, objects)
	entryService := service.NewEntryService(entryRepo, objects)
	partnerService := service.NewPartnerService(partnerRepo, userRepo)

	// Rate limit register and login when Redis is configured.
	var limiter *middleware.RateLimiter
	if options.RedisURL != "" {
		redisOpts, err := redis.ParseURL(options.RedisURL)
		if err != nil {
			return fmt.Errorf("invalid redis url: %w", err)
		}
		rdb := redis.NewClient(redisOpts)
		defer rdb.Close()

		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		err = rdb.Ping(pingCtx).Err()
		cancel()
		if err != nil {
			return fmt.Errorf("failed to connect to Redis: %w", err)
		}
		limiter = middleware.NewRateLimiter(rdb, options.RateLimitMax, options.RateLimitWindow, zapLogger)
	}

	// Build the router with middleware and routes.
	router := http.NewRouter(http.RouterOptions{
		Auth:           &http.AuthHandler{AuthService: authService, Log: zapLogger},
		Profile:        &http.ProfileHandler{Profiles: profileService, Log: zapLogger},
		Entries:        &http.EntryHandler{Entries: entryService, Log: zapLogger},
		Partner:        &http.PartnerHandler{Partners: partnerService, Log: zapLogger},
		Authenticator:  authService,
		RateLimiter:    limiter,
		AllowedOrigins: options.AllowedOrigins,
		TrustProxy:     options.TrustProxy,
		Logger:         zapLogger,
	})

	server := &nethttp.Server{
		Addr:              options.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if options.UseTLS() {
			zapLogger.Info("starting HTTPS server", zap.String("addr", options.Addr))
			errCh <- server.ListenAndServeTLS(options.TLSCert, options.TLSKey)
			return
		}
		zapLogger.Info("starting HTTP server", zap.String("addr", options.Addr))
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, nethttp.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	zapLogger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), options.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown: %w", err)
	}
	return nil
}
