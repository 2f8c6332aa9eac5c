// Package redisconn provides a ready-made configuration key and
// Create/Close collaborators for sharing *redis.Client instances through
// connshare.
package redisconn

import (
	"context"
	"crypto/tls"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/unkn0wn-root/connshare"
)

// Credentials for the connection. Held by pointer inside Config so the
// "no credentials" case can be normalized to one shared sentinel.
type Credentials struct {
	Username string
	Password string
}

// NoCredentials is the canonical "authentication disabled" instance.
// Normalize maps a nil Credentials field here, so two callers who both
// supply no credentials hit the same cache entry instead of minting two
// clients.
var NoCredentials = &Credentials{}

// Config identifies a Redis connection. It is comparable: two configs with
// equal field values are the same cache key.
type Config struct {
	Addr        string
	DB          int
	Credentials *Credentials

	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration

	TLS bool
}

// Normalize canonicalizes cfg for use as a cache key.
func Normalize(cfg Config) Config {
	if cfg.Credentials == nil {
		cfg.Credentials = NoCredentials
	}
	return cfg
}

// Clone deep-copies cfg for the Create call. The client constructor owns the
// copy and may mutate it; the cached key keeps the normalized original.
func Clone(cfg Config) Config {
	if cfg.Credentials != nil {
		creds := *cfg.Credentials
		cfg.Credentials = &creds
	}
	return cfg
}

// Create opens a client and verifies the connection with a ping.
func Create(ctx context.Context, cfg Config) (*redis.Client, error) {
	opts := &redis.Options{
		Addr:         cfg.Addr,
		DB:           cfg.DB,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}
	if cfg.Credentials != nil {
		opts.Username = cfg.Credentials.Username
		opts.Password = cfg.Credentials.Password
	}
	if cfg.TLS {
		opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}
	return client, nil
}

// Close releases the client's pooled connections.
func Close(client *redis.Client) error {
	return client.Close()
}

// Options wires the package into connshare with the given capacity.
func Options(capacity int) connshare.Options[Config, *redis.Client] {
	return connshare.Options[Config, *redis.Client]{
		Capacity:  capacity,
		Create:    Create,
		Close:     Close,
		Normalize: Normalize,
		Clone:     Clone,
	}
}
