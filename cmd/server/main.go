package main // gateway HTTP server

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/astacala/gateway/internal/config"
	"github.com/astacala/gateway/internal/database"
	"github.com/astacala/gateway/internal/events"
	"github.com/astacala/gateway/internal/logger"
	"github.com/astacala/gateway/internal/router"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		_, _ = os.Stderr.WriteString("config: " + err.Error() + "\n")
		os.Exit(1)
	}

	log, err := logger.New(logger.Config{Level: cfg.LogLevel, Dev: cfg.LogDev})
	if err != nil {
		_, _ = os.Stderr.WriteString("logger: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	if err := run(cfg, log); err != nil {
		log.Fatal("server stopped", zap.Error(err))
	}
}

func run(cfg config.Config, log *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Open(cfg.DBDriver, dsn(cfg))
	if err != nil {
		return err
	}
	defer db.Close()
	if cfg.DBAutoMigrate {
		if err := database.EnsureSchema(ctx, db); err != nil {
			return err
		}
	}

	var rdb *redis.Client
	if cfg.RateLimit.Enabled {
		rdb, err = config.NewRedisClient(cfg.Redis)
		if err != nil {
			log.Warn("redis unavailable, rate limiting disabled", zap.Error(err))
			rdb = nil
		} else {
			defer rdb.Close()
		}
	}

	var pub events.Publisher = events.Nop{}
	if cfg.RabbitMQURL != "" {
		amqpPub := events.NewAMQPPublisher(cfg.RabbitMQURL, cfg.EventsQueue, log)
		defer amqpPub.Close()
		pub = amqpPub
	} else {
		log.Info("RABBITMQ_URL not set, events are discarded")
	}

	e, err := router.New(router.Deps{
		Config: cfg,
		DB:     db,
		Redis:  rdb,
		Events: pub,
		Log:    log,
	})
	if err != nil {
		return err
	}

	addr := ":" + cfg.Port
	errCh := make(chan error, 1)
	go func() {
		log.Info("listening", zap.String("addr", addr), zap.String("env", cfg.Env))
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}

func dsn(cfg config.Config) string {
	if strings.EqualFold(cfg.DBDriver, database.DriverSQLite) {
		return cfg.DBPath
	}
	return database.MySQLDSN(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
}
