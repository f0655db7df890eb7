package cmd

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fieldworks/woms/internal/config"
	"github.com/fieldworks/woms/internal/core"
	"github.com/fieldworks/woms/internal/core/store"
	apperrors "github.com/fieldworks/woms/internal/errors"
	"github.com/fieldworks/woms/internal/observability"
	"github.com/fieldworks/woms/internal/ratelimit"
	"github.com/fieldworks/woms/internal/realtime"
	"github.com/fieldworks/woms/internal/scheduling"
	"github.com/fieldworks/woms/internal/server"
	"github.com/fieldworks/woms/internal/server/handlers"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long: `Start the HTTP server with graceful shutdown support.

Ctrl+C (SIGINT) or SIGTERM triggers a graceful shutdown: in-flight
requests drain, websocket clients are disconnected and logs are flushed.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return apperrors.WrapConfigInvalid(cmd.Context(), err, "failed to load configuration")
		}

		observability.InitServerLogger("woms", cfg.Logging.Level, cfg.Logging.Format)
		logger := observability.ServerLogger

		logger.Info("Initializing server",
			zap.String("version", versionInfo.Version),
			zap.String("host", cfg.Server.Host),
			zap.Int("port", cfg.Server.Port))

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		st, err := store.Open(ctx, cfg.Store)
		if err != nil {
			return apperrors.WrapDatabaseError(ctx, err, "failed to open store")
		}
		defer st.Close() // nolint:errcheck

		if err := st.Migrate(ctx); err != nil {
			return apperrors.WrapDatabaseError(ctx, err, "failed to run migrations")
		}
		if err := st.EnsureTenant(ctx, core.DefaultTenantID, "Default"); err != nil {
			return apperrors.WrapDatabaseError(ctx, err, "failed to ensure default tenant")
		}

		hub := realtime.NewHub(logger)
		go hub.Run(ctx)

		limiter, stopSweeper, err := buildLimiter(ctx, cfg)
		if err != nil {
			return err
		}
		if stopSweeper != nil {
			defer stopSweeper()
		}

		scheduler := scheduling.NewService(st, hub, logger)
		api := handlers.NewAPI(st, scheduler, hub, logger)

		health := handlers.NewHealthManager(versionInfo.Version)
		health.RegisterChecker("store", handlers.HealthCheckerFunc(st.Ping))
		health.RegisterChecker("hub", handlers.HealthCheckerFunc(hub.Ping))

		srv := server.New(server.Options{
			Config:  *cfg,
			API:     api,
			Health:  health,
			Limiter: limiter,
			Hub:     hub,
		})

		serveErr := make(chan error, 1)
		go func() {
			serveErr <- srv.Start()
		}()

		select {
		case err := <-serveErr:
			if err != nil && !errors.Is(err, http.ErrServerClosed) {
				return apperrors.WrapInternal(ctx, err, "server failed")
			}
			return nil
		case <-ctx.Done():
		}

		shutdownTimeout := cfg.Server.ShutdownTimeout
		if shutdownTimeout <= 0 {
			shutdownTimeout = 10 * time.Second
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Warn("Shutdown did not complete cleanly", zap.Error(err))
		}
		_ = logger.Sync() // nolint:errcheck

		return nil
	},
}

// buildLimiter wires the rate-limit counter store selected by config. The
// memory store gets a background sweeper; redis expires its own keys.
func buildLimiter(ctx context.Context, cfg *config.Config) (*ratelimit.Limiter, func(), error) {
	logger := observability.ServerLogger

	switch cfg.RateLimit.Store {
	case "", "memory":
		mem := ratelimit.NewMemoryStore()
		interval := cfg.RateLimit.SweepInterval
		if interval <= 0 {
			interval = 5 * time.Minute
		}
		stop := mem.StartSweeper(interval)
		logger.Info("Rate limiter using in-memory store",
			zap.Duration("sweep_interval", interval))
		return ratelimit.New(mem), stop, nil

	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			return nil, nil, apperrors.WrapInternal(ctx, err, "failed to connect to redis")
		}
		logger.Info("Rate limiter using redis store", zap.String("addr", cfg.Redis.Addr))
		return ratelimit.New(ratelimit.NewRedisStore(client)), func() {
			_ = client.Close() // nolint:errcheck
		}, nil

	default:
		return nil, nil, apperrors.NewConfigInvalidError("rate_limit.store must be \"memory\" or \"redis\"")
	}
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
