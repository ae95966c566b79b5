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

	"maintenance/cmd"
	httpadapter "maintenance/internal/adapters/in/http"
	"maintenance/internal/adapters/out/postgres"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gorm.io/gorm/logger"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	configs, err := cmd.LoadConfig(".env")
	if err != nil {
		return err
	}

	log, err := newLogger(configs.LogLevel)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := postgres.Open(configs.DBDriver, configs.DSN(), logger.Default.LogMode(logger.Warn))
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	if err = postgres.Migrate(db); err != nil {
		return fmt.Errorf("migrate database: %w", err)
	}

	app := cmd.NewCompositionRoot(configs, db, log)

	notifyCtx, stopNotify := context.WithCancel(context.Background())
	app.StartNotifications(notifyCtx)

	jobManager := app.CreateJobManager()
	if err = jobManager.StartAll(); err != nil {
		stopNotify()
		return err
	}

	routerConfig, err := app.CreateRouterConfig()
	if err != nil {
		stopNotify()
		jobManager.StopAll()
		return err
	}
	e, err := httpadapter.NewRouter(ctx, routerConfig, app.CreateHTTPServer())
	if err != nil {
		stopNotify()
		jobManager.StopAll()
		return err
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info("http server listening", zap.String("port", configs.HTTPPort))
		serveErr <- e.Start(fmt.Sprintf("0.0.0.0:%s", configs.HTTPPort))
	}()

	select {
	case <-ctx.Done():
		log.Info("shutting down")
	case err = <-serveErr:
		if !errors.Is(err, http.ErrServerClosed) {
			log.Error("http server stopped", zap.Error(err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if shutdownErr := e.Shutdown(shutdownCtx); shutdownErr != nil {
		log.Warn("http shutdown", zap.Error(shutdownErr))
	}
	jobManager.StopAll()

	stopNotify()
	app.WaitNotifications()

	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("parse LOG_LEVEL: %w", err)
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	return cfg.Build()
}
