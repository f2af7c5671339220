package cache

import (
	"context"
	"crypto/tls"
	"fmt"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"
)

const (
	SessionStateKeyPattern = "session_state:%s"
	SessionValidKeyPattern = "session_valid:%s"
	RateLimitKeyPattern    = "ratelimit:%s:%s"

	SynthesisTTLName = "synthesis"
)

//go:generate mockery --name=Client --dir=. --output=./mocks --filename=client_mock.go --case=underscore --with-expecter
type Client interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value string, expiration time.Duration) error
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
	RedisClient() *redis.Client
	CreateTTLMap(name string, ttl time.Duration) *TTLMap
	PurgeTTLMaps() int
	StartJanitor(interval time.Duration)
	Close() error
}

type Config struct {
	Host     string
	Port     int
	Password string
	DB       int
	TLS      bool
}

type client struct {
	redisClient *redis.Client
	ttlMaps     sync.Map
	logger      *logrus.Logger
	stop        chan struct{}
	stopOnce    sync.Once
}

func NewClient(config Config, logger *logrus.Logger) (Client, error) {
	options := &redis.Options{
		Addr:     fmt.Sprintf("%s:%d", config.Host, config.Port),
		Password: config.Password,
		DB:       config.DB,
	}
	if config.TLS {
		options.TLSConfig = &tls.Config{
			InsecureSkipVerify: true, // #nosec G402
		}
	}
	redisClient := redis.NewClient(options)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.WithFields(logrus.Fields{
			"host":  config.Host,
			"port":  config.Port,
			"error": err.Error(),
		}).Error("failed to connect to redis")
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	logger.WithFields(logrus.Fields{
		"host": config.Host,
		"port": config.Port,
	}).Info("redis connected successfully")

	c := newClient(redisClient)
	c.logger = logger
	return c, nil
}

// NewClientFromRedis wraps an existing connection, e.g. a redismock client.
func NewClientFromRedis(redisClient *redis.Client) Client {
	return newClient(redisClient)
}

func newClient(redisClient *redis.Client) *client {
	return &client{
		redisClient: redisClient,
		stop:        make(chan struct{}),
	}
}

func (c *client) Get(ctx context.Context, key string) (string, error) {
	return c.redisClient.Get(ctx, key).Result()
}

func (c *client) Set(ctx context.Context, key string, value string, expiration time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return c.redisClient.Set(ctx, key, value, expiration).Err()
}

func (c *client) Delete(ctx context.Context, key string) error {
	return c.redisClient.Del(ctx, key).Err()
}

func (c *client) Exists(ctx context.Context, key string) (bool, error) {
	n, err := c.redisClient.Exists(ctx, key).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (c *client) RedisClient() *redis.Client {
	return c.redisClient
}

func (c *client) CreateTTLMap(name string, ttl time.Duration) *TTLMap {
	ttlMap := NewTTLMap(ttl)
	actual, _ := c.ttlMaps.LoadOrStore(name, ttlMap)
	return actual.(*TTLMap)
}

// PurgeTTLMaps drops expired entries from every local map.
func (c *client) PurgeTTLMaps() int {
	dropped := 0
	c.ttlMaps.Range(func(_, value interface{}) bool {
		if ttlMap, ok := value.(*TTLMap); ok {
			dropped += ttlMap.Purge()
		}
		return true
	})
	return dropped
}

// StartJanitor purges the local maps every interval until Close. Without it
// entries only expire when read again.
func (c *client) StartJanitor(interval time.Duration) {
	if interval <= 0 {
		return
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-c.stop:
				return
			case <-ticker.C:
				if n := c.PurgeTTLMaps(); n > 0 && c.logger != nil {
					c.logger.WithField("dropped", n).Debug("purged expired cache entries")
				}
			}
		}
	}()
}

func (c *client) Close() error {
	c.stopOnce.Do(func() { close(c.stop) })
	return c.redisClient.Close()
}
