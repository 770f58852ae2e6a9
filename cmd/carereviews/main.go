package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"carereviews/api/server"
	"carereviews/core/audit"
	"carereviews/core/auth"
	"carereviews/core/config"
	"carereviews/core/logging"
	"carereviews/core/notify"
	"carereviews/core/ratelimit"
	"carereviews/core/storage"
)

const moderatorQueue = "moderators"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := logging.NewLogger(cfg.LogLevel, cfg.LogFormat, cfg.ServiceName)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("review service stopped", zap.Error(err))
	}
}

func run(cfg *config.Config, logger *zap.Logger) error {
	logger.Info("Starting review service", zap.String("env", cfg.Env), zap.String("version", server.ServiceVersion()))

	// === Storage ===
	dek, err := cfg.DecodeDataKey()
	if err != nil {
		return err
	}
	store, err := storage.NewStorage(cfg.DBPath, dek)
	if err != nil {
		return err
	}
	defer store.Close()

	// === Rate limiting ===
	limiter, closeLimiter, err := newLimiter(cfg, store, logger)
	if err != nil {
		return err
	}
	defer closeLimiter()

	// === Moderation ===
	auditLogger := audit.NewZapAuditLogger(logger)
	if cfg.APIKey == "" && cfg.JWTSecret == "" {
		logger.Warn("neither API_KEY nor JWT_SECRET set; moderator routes will reject every request")
	}
	authorizer := &auth.Authorizer{
		Secret:      []byte(cfg.JWTSecret),
		APIKey:      cfg.APIKey,
		AuditLogger: auditLogger,
	}

	srv := server.NewServer(server.Options{
		ListenAddr: cfg.ListenAddr,
		TLS:        cfg.TLS,
		Store:      store,
		Limiter:    limiter,
		Authorizer: authorizer,
		Audit:      auditLogger,
		Notifier:   notify.NewLogNotifier(logger, moderatorQueue),
		Logger:     logger,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("Shutting down review service")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func newLimiter(cfg *config.Config, store *storage.Storage, logger *zap.Logger) (ratelimit.Limiter, func(), error) {
	opts := ratelimit.Options{Window: cfg.RateLimit.Window, MaxRequests: cfg.RateLimit.PerWindow}

	if cfg.RateLimit.Backend == "redis" {
		client := ratelimit.NewRedisClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := client.Ping(ctx).Err(); err != nil {
			client.Close()
			return nil, nil, err
		}
		logger.Info("rate limiting via redis", zap.String("addr", cfg.Redis.Addr))
		return ratelimit.NewRedisLimiter(client, opts, logger), func() { client.Close() }, nil
	}

	limiter, err := ratelimit.NewMemoryLimiter(opts, store, logger)
	if err != nil {
		return nil, nil, err
	}
	logger.Info("rate limiting in memory", zap.Int("per_window", opts.MaxRequests), zap.Duration("window", opts.Window))
	return limiter, func() {}, nil
}
