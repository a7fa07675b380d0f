package config

// Redis backs the token-bucket rate limiter on the credential endpoints.  A
// nil client is a valid outcome: the limiter then lets every request through.

import (
    "context"
    "crypto/tls"
    "os"
    "strings"
    "time"

    "github.com/redis/go-redis/v9"
)

// RedisConfig describes how to reach Redis.
//   REDIS_ADDR – host:port shorthand
//   REDIS_HOST and REDIS_PORT – override REDIS_ADDR when both are set
//   REDIS_PASSWORD – optional password
//   REDIS_DB – database number (default 0)
//   REDIS_TLS – enable TLS when "true" or "1"
type RedisConfig struct {
    Addr     string
    Password string
    DB       int
    TLS      bool
}

func LoadRedisConfig() RedisConfig {
    addr := envStr("REDIS_ADDR", "localhost:6379")
    if host, port := os.Getenv("REDIS_HOST"), os.Getenv("REDIS_PORT"); host != "" && port != "" {
        addr = host + ":" + port
    }
    tlsEnv := os.Getenv("REDIS_TLS")
    return RedisConfig{
        Addr:     addr,
        Password: os.Getenv("REDIS_PASSWORD"),
        DB:       envInt("REDIS_DB", 0),
        TLS:      strings.EqualFold(tlsEnv, "true") || tlsEnv == "1",
    }
}

// NewRedisClient dials Redis and pings it with a short timeout.  It returns
// nil when the server is unreachable so callers can degrade gracefully.
func NewRedisClient(ctx context.Context, rc RedisConfig) *redis.Client {
    opts := &redis.Options{
        Addr:     rc.Addr,
        Password: rc.Password,
        DB:       rc.DB,
    }
    if rc.TLS {
        opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
    }
    client := redis.NewClient(opts)

    pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
    defer cancel()
    if err := client.Ping(pingCtx).Err(); err != nil {
        _ = client.Close()
        return nil
    }
    return client
}
