// Command api runs the notekeeper HTTP service. Every dependency is
// constructed here and injected explicitly; nothing initializes itself on
// import.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"notekeeper/interfaces/http/rest"
	"notekeeper/internal/config"
	"notekeeper/internal/repository"
	"notekeeper/internal/repository/dynamodb"
	"notekeeper/internal/repository/resilience"
	"notekeeper/internal/service/content"
	"notekeeper/internal/service/user"
	"notekeeper/pkg/auth"
	"notekeeper/pkg/observability"
)

const shutdownTimeout = 15 * time.Second

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, err := newLogger(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Sync()

	ctx := context.Background()
	client, err := dynamodb.NewClient(ctx, cfg.AWSRegion)
	if err != nil {
		return fmt.Errorf("init dynamodb client: %w", err)
	}

	var (
		categories repository.CategoryRepository = dynamodb.NewCategoryRepository(client, cfg.DynamoDBTable)
		notes      repository.NoteRepository     = dynamodb.NewNoteRepository(client, cfg.DynamoDBTable)
		users      repository.UserRepository     = dynamodb.NewUserRepository(client, cfg.DynamoDBTable)
	)
	if cfg.EnableBreaker {
		categories = resilience.NewCategoryRepository(categories, logger)
		notes = resilience.NewNoteRepository(notes, logger)
		users = resilience.NewUserRepository(users, logger)
		logger.Info("storage circuit breakers enabled")
	}

	secret := cfg.JWTSecret
	if secret == "" {
		// Config validation already rejects this in production.
		secret = "insecure-dev-secret"
		logger.Warn("JWT_SECRET not set, using insecure development secret")
	}
	authCfg := auth.Config{
		SecretKey: secret,
		Issuer:    cfg.JWTIssuer,
		TokenTTL:  cfg.TokenTTL,
	}
	validator, err := auth.NewValidator(authCfg)
	if err != nil {
		return fmt.Errorf("init token validator: %w", err)
	}
	generator, err := auth.NewGenerator(authCfg)
	if err != nil {
		return fmt.Errorf("init token generator: %w", err)
	}

	var metrics *observability.Collector
	if cfg.EnableMetrics {
		metrics = observability.NewCollector("notekeeper")
	}

	cascade := content.NewCascadeEnforcer(notes, users, logger)
	contentSvc := content.NewService(categories, notes, cascade, metrics, logger)
	userSvc := user.NewService(users, generator, logger)

	router := rest.NewRouter(rest.RouterConfig{
		ContentService: contentSvc,
		UserService:    userSvc,
		TokenValidator: validator,
		Metrics:        metrics,
		Logger:         logger,
	})

	server := &http.Server{
		Addr:         cfg.ServerAddress,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting",
			zap.String("address", cfg.ServerAddress),
			zap.String("environment", cfg.Environment),
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("server: %w", err)
	case sig := <-stop:
		logger.Info("shutting down", zap.String("signal", sig.String()))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	logger.Info("server stopped")
	return nil
}

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	var zapCfg zap.Config
	if cfg.IsProduction() {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
	}
	if err := zapCfg.Level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", cfg.LogLevel, err)
	}
	return zapCfg.Build()
}
