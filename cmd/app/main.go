package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"fooddispatch/cmd"
	"fooddispatch/internal/adapters/out/amqppub"
	"fooddispatch/internal/core/ports"
	"fooddispatch/internal/pkg/clock"
	"fooddispatch/internal/pkg/telemetry"

	"github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const serviceName = "fooddispatch"

func main() {
	configs, err := cmd.LoadConfig()
	if err != nil {
		log.Fatalf("Error loading configuration: %v", err)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: configs.LogLevel}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err = run(ctx, configs, logger); err != nil {
		logger.Error("service stopped with error", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, configs cmd.Config, logger *slog.Logger) error {
	shutdownTracing, err := telemetry.Setup(ctx, serviceName, configs.OTLPEndpoint)
	if err != nil {
		return err
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), configs.ShutdownTimeout)
		defer cancel()
		if err := shutdownTracing(flushCtx); err != nil {
			logger.Error("tracing shutdown failed", "error", err)
		}
	}()

	publisher, closeBroker, err := newPublisher(configs, logger)
	if err != nil {
		return err
	}
	defer closeBroker()

	infra, closeDB, err := newInfrastructure(ctx, configs, publisher, logger)
	if err != nil {
		return err
	}
	defer closeDB()

	app := cmd.NewCompositionRoot(configs, infra, clock.System{}, logger)

	server, err := app.CreateHTTPServer(ctx)
	if err != nil {
		return err
	}

	jobManager := app.CreateJobManager()
	if err = jobManager.StartAll(); err != nil {
		return err
	}
	defer jobManager.StopAll()

	return startWebServer(ctx, server.NewEcho(), configs, logger)
}

func newPublisher(configs cmd.Config, logger *slog.Logger) (ports.EventPublisher, func(), error) {
	if configs.AMQPURL == "" {
		logger.Info("AMQP_URL is not set, events go to the log")
		return amqppub.NewLoggingPublisher(logger), func() {}, nil
	}

	broker, err := amqppub.Dial(configs.AMQPURL, configs.AMQPExchange)
	if err != nil {
		return nil, nil, err
	}
	publisher, err := amqppub.NewPublisher(broker.Channel(), configs.AMQPExchange)
	if err != nil {
		_ = broker.Close()
		return nil, nil, err
	}
	return publisher, func() {
		if err := broker.Close(); err != nil {
			logger.Error("broker close failed", "error", err)
		}
	}, nil
}

func newInfrastructure(
	ctx context.Context,
	configs cmd.Config,
	publisher ports.EventPublisher,
	logger *slog.Logger,
) (cmd.Infrastructure, func(), error) {
	if configs.Store == cmd.StoreMemory {
		logger.Warn("using the in-memory store, state is lost on restart")
		infra, _ := cmd.NewMemoryInfrastructure(publisher, logger)
		return infra, func() {}, nil
	}

	gormDB, err := gorm.Open(postgres.Open(configs.DSN()), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return cmd.Infrastructure{}, nil, fmt.Errorf("connect to database: %w", err)
	}
	sqlDB, err := gormDB.DB()
	if err != nil {
		return cmd.Infrastructure{}, nil, err
	}
	closeDB := func() { closeQuietly(sqlDB, logger) }

	infra, err := cmd.NewPostgresInfrastructure(ctx, gormDB, publisher, logger)
	if err != nil {
		closeDB()
		return cmd.Infrastructure{}, nil, err
	}
	return infra, closeDB, nil
}

func closeQuietly(db *sql.DB, logger *slog.Logger) {
	if err := db.Close(); err != nil {
		logger.Error("database close failed", "error", err)
	}
}

func startWebServer(ctx context.Context, e *echo.Echo, configs cmd.Config, logger *slog.Logger) error {
	serveErr := make(chan error, 1)
	go func() {
		logger.Info("http server listening", "port", configs.HTTPPort)
		serveErr <- e.Start(fmt.Sprintf("0.0.0.0:%s", configs.HTTPPort))
	}()

	select {
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), configs.ShutdownTimeout)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}
