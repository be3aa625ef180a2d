package lock

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-redsync/redsync/v4"
	"github.com/go-redsync/redsync/v4/redis/goredis/v9"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/hirelink/messaging-api/internal/domain/messaging"
)

const keyPrefix = "messaging:v1:conversation-pair:"

// PairKey is the lock name for a normalized user pair.
func PairKey(userA, userB string) string {
	p1, p2 := messaging.NormalizePair(userA, userB)
	return keyPrefix + p1 + ":" + p2
}

// RedisPairLocker serializes first-contact creation across replicas with a redsync mutex.
type RedisPairLocker struct {
	client redis.UniversalClient
	rs     *redsync.Redsync
	ttl    time.Duration
	wait   time.Duration
	log    zerolog.Logger
}

var _ messaging.PairLocker = (*RedisPairLocker)(nil)

func NewRedisPairLocker(client redis.UniversalClient, ttl, wait time.Duration, log zerolog.Logger) *RedisPairLocker {
	return &RedisPairLocker{
		client: client,
		rs:     redsync.New(goredis.NewPool(client)),
		ttl:    ttl,
		wait:   wait,
		log:    log.With().Str("component", "pair-lock").Logger(),
	}
}

// WithPairLock implements messaging.PairLocker.
func (l *RedisPairLocker) WithPairLock(ctx context.Context, userA, userB string, fn func(ctx context.Context) error) error {
	lockCtx := ctx
	if l.wait > 0 {
		var cancel context.CancelFunc
		lockCtx, cancel = context.WithTimeout(ctx, l.wait)
		defer cancel()
	}

	mutex := l.rs.NewMutex(PairKey(userA, userB), redsync.WithExpiry(l.ttl))
	if err := mutex.LockContext(lockCtx); err != nil {
		return fmt.Errorf("acquire pair lock: %w", err)
	}

	defer func() {
		if _, err := mutex.UnlockContext(context.WithoutCancel(ctx)); err != nil {
			l.log.Error().Err(err).Str("lock", mutex.Name()).Msg("failed to unlock pair mutex")
		}
	}()

	return fn(ctx)
}

func (l *RedisPairLocker) Close() error {
	return l.client.Close()
}

// NoopPairLocker runs fn directly. The unique pair index remains the only guard.
type NoopPairLocker struct{}

var _ messaging.PairLocker = NoopPairLocker{}

func (NoopPairLocker) WithPairLock(ctx context.Context, _, _ string, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// NewRedisClient connects to one or more comma separated redis URLs or host:port addresses.
func NewRedisClient(ctx context.Context, redisURL string) (redis.UniversalClient, error) {
	opts, err := buildUniversalOptions(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}
	if len(opts.Addrs) > 1 {
		opts.DB = 0
	}

	client := redis.NewUniversalClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return client, nil
}

func buildUniversalOptions(raw string) (*redis.UniversalOptions, error) {
	opts := &redis.UniversalOptions{}

	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if !strings.Contains(part, "://") {
			opts.Addrs = append(opts.Addrs, part)
			continue
		}

		parsed, err := redis.ParseURL(part)
		if err != nil {
			return nil, err
		}
		opts.Addrs = append(opts.Addrs, parsed.Addr)
		if opts.Username == "" {
			opts.Username = parsed.Username
		}
		if opts.Password == "" {
			opts.Password = parsed.Password
		}
		if opts.DB == 0 {
			opts.DB = parsed.DB
		}
		if opts.TLSConfig == nil {
			opts.TLSConfig = parsed.TLSConfig
		}
	}

	if len(opts.Addrs) == 0 {
		return nil, fmt.Errorf("no Redis addresses provided")
	}
	return opts, nil
}
