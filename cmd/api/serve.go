package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/complaint-service/internal/api/http"
	"github.com/spec-kit/complaint-service/internal/api/http/handlers"
	"github.com/spec-kit/complaint-service/internal/auth"
	"github.com/spec-kit/complaint-service/internal/config"
	"github.com/spec-kit/complaint-service/internal/events"
	"github.com/spec-kit/complaint-service/internal/notify"
	"github.com/spec-kit/complaint-service/internal/observability"
	"github.com/spec-kit/complaint-service/internal/persistence"
	"github.com/spec-kit/complaint-service/internal/service"
	"github.com/spec-kit/complaint-service/internal/worker"
)

const shutdownTimeout = 15 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return serve(cmd.Context())
	},
}

func serve(parent context.Context) error {
	if parent == nil {
		parent = context.Background()
	}
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	store, err := openStores(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to open store", zap.String("driver", cfg.Store.Driver), zap.Error(err))
		return err
	}
	defer store.close()

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	metrics := observability.NewMetrics()
	dispatcher := events.NewInMemoryDispatcher(logger, time.Duration(cfg.Notification.DispatchTimeoutSeconds)*time.Second)

	authService := service.NewAuthService(*cfg, service.AuthDependencies{UserRepo: store.users})
	tokens := authService.TokenManager()
	if !tokens.Configured() {
		logger.Warn("AUTH_JWT_SECRET not set; every credential will be rejected")
	}

	complaintService := service.NewComplaintService(service.ComplaintDependencies{
		ComplaintRepo: store.complaints,
		Dispatcher:    dispatcher,
	})
	notificationService := service.NewNotificationService(cfg.Notification, cfg.App.BaseURL, service.NotificationDependencies{
		Dispatcher: dispatcher,
		Mailer:     notify.NewMailer(cfg.Notification, logger),
		Metrics:    metrics,
		Logger:     logger,
	})
	notifications := worker.StartNotificationWorker(notificationService, dispatcher, logger)

	edgeVerifier, err := auth.NewEdgeVerifier(cfg.Auth.EdgeVerification, tokens)
	if err != nil {
		return err
	}
	if cfg.Auth.EdgeVerification == config.VerificationStructural {
		logger.Warn("edge redirector uses structural verification; signatures are only checked by API guards")
	}

	readiness := map[string]handlers.Pinger{"store": store.pinger}
	if redis.Client != nil {
		readiness["redis"] = redis
	}

	app := fiber.New(fiber.Config{
		AppName:               cfg.App.Name,
		DisableStartupMessage: cfg.App.IsProduction(),
	})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())
	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:     handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, readiness),
		Users:      handlers.NewUsersHandler(authService, handlers.CookieOptions{Secure: cfg.Auth.CookieSecure}),
		Complaints: handlers.NewComplaintsHandler(complaintService),
		Pages:      handlers.NewPagesHandler(cfg.App.Name),
		Guard:      auth.NewGuard(tokens.FullVerifier()),
		Redirector: auth.NewEdgeRedirector(edgeVerifier, auth.DefaultRedirectorConfig(), logger),
		RateLimit:  httptransport.RateLimit(redis.Client, cfg.RateLimit.AuthRequests, cfg.RateLimit.Window(), logger),
		Metrics:    metrics.Handler(),
	})

	listenErr := make(chan error, 1)
	go func() {
		logger.Info("listening", zap.String("addr", cfg.App.Addr()), zap.String("store", cfg.Store.Driver))
		listenErr <- app.Listen(cfg.App.Addr())
	}()

	select {
	case err := <-listenErr:
		if err != nil {
			logger.Error("fiber listen", zap.Error(err))
			return err
		}
	case sig := <-waitForShutdown(ctx):
		logger.Info("shutting down", zap.String("signal", sig))
	}

	if err := app.ShutdownWithTimeout(shutdownTimeout); err != nil {
		logger.Warn("http shutdown", zap.Error(err))
	}
	notifications.Stop(shutdownTimeout)
	return nil
}

func waitForShutdown(ctx context.Context) <-chan string {
	out := make(chan string, 1)
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		defer signal.Stop(sigCh)
		select {
		case sig := <-sigCh:
			out <- sig.String()
		case <-ctx.Done():
			out <- "context canceled"
		}
	}()
	return out
}
