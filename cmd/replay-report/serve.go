package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"replay_report/internal/config"
	"replay_report/internal/server"
	"replay_report/internal/service"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"go.uber.org/fx"
)

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the report over HTTP, re-running the queries on every request",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			return runServer(cmd.Context(), newServerApp(cfg, logger), logger)
		},
	}
}

func newServerApp(cfg config.Config, logger *logrus.Logger) *fx.App {
	return fx.New(
		fx.NopLogger,
		fx.Supply(cfg, logger),
		fx.Provide(
			service.NewReportServiceFromConfig,
			provideRenderer,
			server.NewServer,
		),
		fx.Invoke(registerLifecycleHooks),
	)
}

func provideRenderer(svc *service.ReportService) server.ReportRenderer {
	return svc
}

// registerLifecycleHooks настраивает хуки жизненного цикла приложения
func registerLifecycleHooks(
	srv *server.Server,
	cfg config.Config,
	logger *logrus.Logger,
	lc fx.Lifecycle,
) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.Start(cfg.Server.Address); err != nil && !errors.Is(err, http.ErrServerClosed) {
					logger.WithError(err).Error("HTTP server stopped")
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return srv.Shutdown(ctx)
		},
	})
}

// runServer обрабатывает жизненный цикл приложения с обработкой сигналов
func runServer(ctx context.Context, app *fx.App, logger *logrus.Logger) error {
	if err := app.Err(); err != nil {
		return err
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	startCtx, startCancel := context.WithTimeout(ctx, 15*time.Second)
	defer startCancel()

	if err := app.Start(startCtx); err != nil {
		return err
	}

	select {
	case <-quit:
		logger.Info("shutdown signal received")
	case <-ctx.Done():
	}

	stopCtx, stopCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer stopCancel()

	return app.Stop(stopCtx)
}
