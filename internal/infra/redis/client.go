// Package redis caches the wallet session in Redis.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/vietddude/suiwork/internal/core/domain"
)

// Client wraps Redis operations for the session cache.
type Client struct {
	rdb       *redis.Client
	keyPrefix string
	ttl       time.Duration
	scope     string
}

// Config holds Redis connection configuration.
type Config struct {
	URL        string        `yaml:"url"`
	Password   string        `yaml:"password"`
	KeyPrefix  string        `yaml:"key_prefix"`
	SessionTTL time.Duration `yaml:"session_ttl"`
}

// NewClient creates a new Redis client. scope separates sessions of
// different profiles sharing one Redis.
func NewClient(cfg Config, scope string) (*Client, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}
	if cfg.Password != "" {
		opts.Password = cfg.Password
	}

	rdb := redis.NewClient(opts)

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return newClient(rdb, cfg, scope), nil
}

func newClient(rdb *redis.Client, cfg Config, scope string) *Client {
	prefix := cfg.KeyPrefix
	if prefix == "" {
		prefix = "suiwork"
	}
	if scope == "" {
		scope = "default"
	}
	return &Client{rdb: rdb, keyPrefix: prefix, ttl: cfg.SessionTTL, scope: scope}
}

// Close closes the Redis connection.
func (c *Client) Close() error {
	return c.rdb.Close()
}

// Name identifies the client in health reports.
func (c *Client) Name() string { return "redis" }

// Ping checks the connection.
func (c *Client) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

func (c *Client) sessionKey() string {
	return sessionKey(c.keyPrefix, c.scope)
}

func sessionKey(prefix, scope string) string {
	return fmt.Sprintf("%s:session:%s", prefix, scope)
}

// Save stores the session. A zero TTL keeps it until cleared.
func (c *Client) Save(ctx context.Context, s domain.Session) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	if err := c.rdb.Set(ctx, c.sessionKey(), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("set failed: %w", err)
	}
	return nil
}

// Load returns the cached session, if any.
func (c *Client) Load(ctx context.Context) (domain.Session, bool, error) {
	var s domain.Session
	data, err := c.rdb.Get(ctx, c.sessionKey()).Bytes()
	if errors.Is(err, redis.Nil) {
		return s, false, nil
	}
	if err != nil {
		return s, false, fmt.Errorf("get failed: %w", err)
	}
	if err := json.Unmarshal(data, &s); err != nil {
		return s, false, fmt.Errorf("decode session: %w", err)
	}
	return s, true, nil
}

// Clear removes the cached session.
func (c *Client) Clear(ctx context.Context) error {
	return c.rdb.Del(ctx, c.sessionKey()).Err()
}
