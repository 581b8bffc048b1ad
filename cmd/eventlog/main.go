// Command eventlog drains the gateway events queue into daily rotated log
// files.
package main

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	rotatelogs "github.com/lestrrat-go/file-rotatelogs"
	"go.uber.org/zap"

	"github.com/astacala/gateway/internal/events"
	"github.com/astacala/gateway/internal/logger"
)

type settings struct {
	RabbitMQURL string        `envconfig:"RABBITMQ_URL" required:"true"`
	EventsQueue string        `envconfig:"EVENTS_QUEUE" default:"astacala.events"`
	EventLogDir string        `envconfig:"EVENT_LOG_DIR" default:"logs"`
	MaxAge      time.Duration `envconfig:"EVENT_LOG_MAX_AGE" default:"336h"`
	LogLevel    string        `envconfig:"LOG_LEVEL" default:"info"`
	LogDev      bool          `envconfig:"LOG_DEV" default:"false"`
}

func main() {
	_ = godotenv.Load() // optional
	var s settings
	if err := envconfig.Process("", &s); err != nil {
		_, _ = os.Stderr.WriteString("config: " + err.Error() + "\n")
		os.Exit(1)
	}

	log, err := logger.New(logger.Config{Level: s.LogLevel, Dev: s.LogDev})
	if err != nil {
		_, _ = os.Stderr.WriteString("logger: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	if err := os.MkdirAll(s.EventLogDir, 0o755); err != nil {
		log.Fatal("create log dir", zap.Error(err))
	}
	w, err := rotatelogs.New(
		filepath.Join(s.EventLogDir, "events.%Y%m%d.log"),
		rotatelogs.WithLinkName(filepath.Join(s.EventLogDir, "events.log")),
		rotatelogs.WithMaxAge(s.MaxAge),
		rotatelogs.WithRotationTime(24*time.Hour),
	)
	if err != nil {
		log.Fatal("open rotating log", zap.Error(err))
	}
	defer w.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info("consuming events", zap.String("queue", s.EventsQueue), zap.String("dir", s.EventLogDir))
	if err := events.NewConsumer(s.RabbitMQURL, s.EventsQueue, w, log).Run(ctx); err != nil && ctx.Err() == nil {
		log.Error("consumer stopped", zap.Error(err))
	}
	log.Info("stopped")
}
