package infra

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// Each pool worker parks one connection in BRPOP; the rest of the service
// (device registry, dispatcher, health) shares this many more.
const redisPoolHeadroom = 4

// RedisOptions configures the shared client.
type RedisOptions struct {
	URL             string
	Workers         int
	ConnectAttempts int
	PingTimeout     time.Duration
}

// NewRedis connects and pings, retrying with doubling backoff while the
// server is still starting.
func NewRedis(ctx context.Context, o RedisOptions) (*redis.Client, error) {
	opts, err := redis.ParseURL(o.URL)
	if err != nil {
		return nil, fmt.Errorf("redis: invalid url: %w", err)
	}
	if opts.PoolSize == 0 {
		opts.PoolSize = 10 * runtime.GOMAXPROCS(0)
	}
	if need := o.Workers + redisPoolHeadroom; opts.PoolSize < need {
		opts.PoolSize = need
	}
	attempts := o.ConnectAttempts
	if attempts < 1 {
		attempts = 1
	}
	pingTimeout := o.PingTimeout
	if pingTimeout <= 0 {
		pingTimeout = 2 * time.Second
	}

	rdb := redis.NewClient(opts)
	backoff := 500 * time.Millisecond
	for attempt := 1; ; attempt++ {
		pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
		err = rdb.Ping(pingCtx).Err()
		cancel()
		if err == nil {
			log.Info().
				Str("addr", opts.Addr).
				Int("db", opts.DB).
				Int("pool_size", opts.PoolSize).
				Msg("redis connected")
			return rdb, nil
		}
		if attempt >= attempts {
			_ = rdb.Close()
			return nil, fmt.Errorf("redis: ping %s failed after %d attempts: %w", opts.Addr, attempt, err)
		}
		log.Warn().Err(err).Str("addr", opts.Addr).Int("attempt", attempt).Msg("redis not ready, retrying")
		select {
		case <-ctx.Done():
			_ = rdb.Close()
			return nil, ctx.Err()
		case <-time.After(backoff):
		}
		backoff *= 2
	}
}
