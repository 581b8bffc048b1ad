package config

// Redis backs the login rate limiter only. Token validity is never cached, so
// an unreachable Redis degrades to "no rate limiting" instead of failing
// requests.

import (
	"context"
	"crypto/tls"
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/redis/go-redis/v9"
)

// RedisConfig holds REDIS_* connection settings. REDIS_HOST and REDIS_PORT
// together take precedence over REDIS_ADDR.
type RedisConfig struct {
	Host     string `envconfig:"HOST"`
	Port     string `envconfig:"PORT"`
	Addr     string `envconfig:"ADDR" default:"localhost:6379"`
	Password string `envconfig:"PASSWORD"`
	DB       int    `envconfig:"DB" default:"0"`
	TLS      bool   `envconfig:"TLS" default:"false"`
}

// LoadRedisConfig reads REDIS_* variables.
func LoadRedisConfig() (RedisConfig, error) {
	var rc RedisConfig
	if err := envconfig.Process("REDIS", &rc); err != nil {
		return RedisConfig{}, fmt.Errorf("process redis env: %w", err)
	}
	return rc, nil
}

// Address resolves the host:port to dial.
func (rc RedisConfig) Address() string {
	if rc.Host != "" && rc.Port != "" {
		return rc.Host + ":" + rc.Port
	}
	return rc.Addr
}

// NewRedisClient dials Redis and pings it with a short timeout. It returns
// the ping error together with a nil client when the server is unreachable;
// callers disable rate limiting in that case.
func NewRedisClient(rc RedisConfig) (*redis.Client, error) {
	var tlsConf *tls.Config
	if rc.TLS {
		tlsConf = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	client := redis.NewClient(&redis.Options{
		Addr:      rc.Address(),
		Password:  rc.Password,
		DB:        rc.DB,
		TLSConfig: tlsConf,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis %s: %w", rc.Address(), err)
	}
	return client, nil
}
