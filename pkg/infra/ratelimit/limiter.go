package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	domain "github.com/NeuralTrust/RealtimeGateway/pkg/domain/ratelimit"
	"github.com/NeuralTrust/RealtimeGateway/pkg/infra/cache"
	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Limit is the allowance of one named limit per client and window. A
// non-positive Limit disables it.
type Limit struct {
	Limit  int
	Window time.Duration
}

type Options struct {
	TimeProvider func() time.Time
	UuidProvider func() uuid.UUID
	Repository   domain.Repository
	Logger       *logrus.Logger
}

// Limiter enforces per-client limits in redis. Requests use a sliding window
// over a sorted set; tokens use a fixed window counter because token costs
// are only known after the fact.
type Limiter struct {
	redis        *redis.Client
	limits       map[string]Limit
	timeProvider func() time.Time
	uuidProvider func() uuid.UUID
	repo         domain.Repository
	logger       *logrus.Logger
}

func NewLimiter(redisClient *redis.Client, limits map[string]Limit, opts *Options) *Limiter {
	l := &Limiter{
		redis:        redisClient,
		limits:       limits,
		timeProvider: time.Now,
		uuidProvider: uuid.New,
		logger:       logrus.New(),
	}
	if opts != nil {
		if opts.TimeProvider != nil {
			l.timeProvider = opts.TimeProvider
		}
		if opts.UuidProvider != nil {
			l.uuidProvider = opts.UuidProvider
		}
		if opts.Logger != nil {
			l.logger = opts.Logger
		}
		l.repo = opts.Repository
	}
	return l
}

// Allow charges cost units of the named limit. A zero cost only reports the
// current status. The returned status is nil for unconfigured limits.
func (l *Limiter) Allow(
	ctx context.Context,
	clientID string,
	sessionID uuid.UUID,
	name string,
	cost int,
) (*domain.RateLimit, bool, error) {
	cfg, ok := l.limits[name]
	if !ok || cfg.Limit <= 0 || cfg.Window <= 0 {
		return nil, true, nil
	}

	var (
		status  *domain.RateLimit
		allowed bool
		err     error
	)
	if name == domain.NameTokens {
		status, allowed, err = l.fixedWindow(ctx, clientID, name, cfg, cost)
	} else {
		status, allowed, err = l.slidingWindow(ctx, clientID, name, cfg, cost)
	}
	if err != nil {
		return nil, false, err
	}
	status.ClientID = clientID
	status.SessionID = sessionID
	l.mirror(ctx, status)
	return status, allowed, nil
}

func (l *Limiter) slidingWindow(ctx context.Context, clientID, name string, cfg Limit, cost int) (*domain.RateLimit, bool, error) {
	key := fmt.Sprintf(cache.RateLimitKeyPattern, clientID, name)
	now := l.timeProvider()
	windowStart := now.Add(-cfg.Window).Unix()

	count, err := l.redis.ZCount(ctx, key,
		strconv.FormatInt(windowStart, 10),
		strconv.FormatInt(now.Unix(), 10)).Result()
	if err != nil {
		return nil, false, fmt.Errorf("failed to get count for %s: %w", name, err)
	}

	status := &domain.RateLimit{
		Name:      name,
		Limit:     cfg.Limit,
		Remaining: remaining(cfg.Limit, count),
		ResetAt:   now.Add(cfg.Window),
	}
	if cost == 0 {
		return status, count < int64(cfg.Limit), nil
	}
	if count+int64(cost) > int64(cfg.Limit) {
		return status, false, nil
	}

	pipe := l.redis.TxPipeline()
	pipe.ZRemRangeByScore(ctx, key, "0", strconv.FormatInt(windowStart, 10))
	for i := 0; i < cost; i++ {
		pipe.ZAdd(ctx, key, &redis.Z{
			Score:  float64(now.Unix()),
			Member: fmt.Sprintf("%d:%s", now.Unix(), l.uuidProvider().String()),
		})
	}
	pipe.Expire(ctx, key, cfg.Window)
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, false, fmt.Errorf("failed to execute rate limit pipeline: %w", err)
	}
	status.Remaining = remaining(cfg.Limit, count+int64(cost))
	return status, true, nil
}

// fixedWindow always records cost; admission depends on usage before it.
func (l *Limiter) fixedWindow(ctx context.Context, clientID, name string, cfg Limit, cost int) (*domain.RateLimit, bool, error) {
	now := l.timeProvider()
	bucket := now.Truncate(cfg.Window)
	key := fmt.Sprintf(cache.RateLimitKeyPattern, clientID, name) + ":" + strconv.FormatInt(bucket.Unix(), 10)

	used, err := l.redis.Get(ctx, key).Int64()
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, false, fmt.Errorf("failed to get usage for %s: %w", name, err)
	}

	status := &domain.RateLimit{
		Name:      name,
		Limit:     cfg.Limit,
		Remaining: remaining(cfg.Limit, used),
		ResetAt:   bucket.Add(cfg.Window),
	}
	allowed := used < int64(cfg.Limit)
	if cost <= 0 {
		return status, allowed, nil
	}

	pipe := l.redis.TxPipeline()
	pipe.IncrBy(ctx, key, int64(cost))
	pipe.Expire(ctx, key, cfg.Window)
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, false, fmt.Errorf("failed to execute rate limit pipeline: %w", err)
	}
	status.Remaining = remaining(cfg.Limit, used+int64(cost))
	return status, allowed, nil
}

func (l *Limiter) mirror(ctx context.Context, status *domain.RateLimit) {
	if l.repo == nil {
		return
	}
	if err := l.repo.Upsert(ctx, status); err != nil {
		l.logger.WithError(err).WithFields(logrus.Fields{
			"client_id": status.ClientID,
			"limit":     status.Name,
		}).Warn("failed to store rate limit status")
	}
}

func remaining(limit int, used int64) int {
	r := int64(limit) - used
	if r < 0 {
		return 0
	}
	return int(r)
}
