package config // package config loads application configuration from environment variables

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"golang.org/x/crypto/bcrypt"
)

// Config holds all runtime configuration values. Each field corresponds to
// an environment variable; defaults follow the local development setup.
type Config struct {
	Env      string `envconfig:"APP_ENV" default:"development"` // application environment (development/test/production)
	Port     string `envconfig:"APP_PORT" default:"8080"`       // HTTP port to listen on
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`      // zap level name
	LogDev   bool   `envconfig:"LOG_DEV" default:"false"`       // human readable development logging

	DBDriver      string        `envconfig:"DB_DRIVER" default:"mysql"` // mysql or sqlite
	DBUser        string        `envconfig:"DB_USER"`
	DBPass        string        `envconfig:"DB_PASS"` // empty allowed
	DBHost        string        `envconfig:"DB_HOST"`
	DBPort        string        `envconfig:"DB_PORT" default:"3306"`
	DBName        string        `envconfig:"DB_NAME"`
	DBPath        string        `envconfig:"DB_PATH" default:"gateway.db"` // sqlite file
	DBAutoMigrate bool          `envconfig:"DB_AUTO_MIGRATE" default:"false"`
	StoreTimeout  time.Duration `envconfig:"STORE_TIMEOUT" default:"5s"` // bound on every backing-store round trip

	TokenTTL          time.Duration `envconfig:"TOKEN_TTL" default:"0s"` // 0 means tokens never expire on their own
	BcryptCost        int           `envconfig:"BCRYPT_COST" default:"12"`
	LegacyLoginDomain string        `envconfig:"LEGACY_LOGIN_DOMAIN" default:"admin.astacala.local"`

	BroadcastSecret    string        `envconfig:"BROADCAST_SECRET"`
	BroadcastTicketTTL time.Duration `envconfig:"BROADCAST_TICKET_TTL" default:"5m"`

	RabbitMQURL string `envconfig:"RABBITMQ_URL"` // empty disables event publishing
	EventsQueue string `envconfig:"EVENTS_QUEUE" default:"astacala.events"`
	EventLogDir string `envconfig:"EVENT_LOG_DIR" default:"logs"`

	MetricsEnabled bool `envconfig:"METRICS_ENABLED" default:"true"`

	RateLimit RateLimitConfig `ignored:"true"`
	Redis     RedisConfig     `ignored:"true"`
}

// Load reads an optional .env file (ENV_FILE, default ".env") and then the
// process environment, and validates the result for the HTTP gateway.
// Variables already set in the environment win over the file.
func Load() (Config, error) {
	cfg, err := load()
	if err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadStore is Load for tools that only touch the database.
func LoadStore() (Config, error) {
	cfg, err := load()
	if err != nil {
		return Config{}, err
	}
	if err := errors.Join(cfg.validateStore()...); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func load() (Config, error) {
	path := os.Getenv("ENV_FILE")
	if path == "" {
		path = ".env"
	}
	if _, err := os.Stat(path); err == nil {
		if err := godotenv.Load(path); err != nil {
			return Config{}, fmt.Errorf("load %s: %w", path, err)
		}
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, fmt.Errorf("process env: %w", err)
	}
	rl, err := LoadRateLimitConfig()
	if err != nil {
		return Config{}, err
	}
	cfg.RateLimit = rl
	rc, err := LoadRedisConfig()
	if err != nil {
		return Config{}, err
	}
	cfg.Redis = rc
	return cfg, nil
}

// Validate reports configuration combinations that cannot work.
func (c Config) Validate() error {
	errs := c.validateStore()
	if c.BroadcastSecret == "" {
		errs = append(errs, errors.New("missing required env var: BROADCAST_SECRET"))
	}
	if c.TokenTTL < 0 {
		errs = append(errs, errors.New("TOKEN_TTL must not be negative"))
	}
	return errors.Join(errs...)
}

func (c Config) validateStore() []error {
	var errs []error
	switch strings.ToLower(c.DBDriver) {
	case "mysql":
		for _, kv := range [][2]string{{"DB_USER", c.DBUser}, {"DB_HOST", c.DBHost}, {"DB_NAME", c.DBName}} {
			if kv[1] == "" {
				errs = append(errs, fmt.Errorf("missing required env var: %s", kv[0]))
			}
		}
	case "sqlite":
		if c.DBPath == "" {
			errs = append(errs, errors.New("missing required env var: DB_PATH"))
		}
	default:
		errs = append(errs, fmt.Errorf("unsupported DB_DRIVER %q", c.DBDriver))
	}
	if c.BcryptCost < bcrypt.MinCost || c.BcryptCost > bcrypt.MaxCost {
		errs = append(errs, fmt.Errorf("BCRYPT_COST must be within [%d,%d]", bcrypt.MinCost, bcrypt.MaxCost))
	}
	if c.StoreTimeout <= 0 {
		errs = append(errs, errors.New("STORE_TIMEOUT must be positive"))
	}
	return errs
}
