package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/ikkim/homecart-backend/config"
	"github.com/ikkim/homecart-backend/pkg/logger"
	"github.com/redis/go-redis/v9"
)

var client *redis.Client

// Init initializes Redis connection
func Init(cfg *config.RedisConfig) error {
	logger.Info("Initializing Redis connection", map[string]interface{}{
		"addr": cfg.Addr(),
		"db":   cfg.DB,
	})

	client = redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		logger.Error("Failed to connect to Redis", err, map[string]interface{}{
			"addr": cfg.Addr(),
		})
		return fmt.Errorf("failed to connect to Redis: %w", err)
	}

	logger.Info("Redis connection established successfully")
	return nil
}

// GetClient returns the Redis client instance
func GetClient() *redis.Client {
	return client
}

// Close closes the Redis connection
func Close() error {
	if client != nil {
		logger.Info("Closing Redis connection")
		return client.Close()
	}
	return nil
}

// SessionStore keeps revoked token ids until the tokens would have expired anyway.
type SessionStore struct {
	client *redis.Client
}

func NewSessionStore(c *redis.Client) *SessionStore {
	return &SessionStore{client: c}
}

func revokedKey(tokenID string) string {
	return fmt.Sprintf("session:revoked:%s", tokenID)
}

// Revoke marks the token id as revoked for ttl.
func (s *SessionStore) Revoke(ctx context.Context, tokenID string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	logger.Debug("Revoking session token", map[string]interface{}{
		"token_id": tokenID,
		"ttl":      ttl.String(),
	})

	if err := s.client.Set(ctx, revokedKey(tokenID), "revoked", ttl).Err(); err != nil {
		logger.Error("Failed to revoke session token", err, map[string]interface{}{
			"token_id": tokenID,
		})
		return err
	}
	return nil
}

// IsRevoked reports whether the token id was revoked.
func (s *SessionStore) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	n, err := s.client.Exists(ctx, revokedKey(tokenID)).Result()
	if err != nil {
		logger.Error("Failed to check revoked session token", err, map[string]interface{}{
			"token_id": tokenID,
		})
		return false, err
	}
	return n > 0, nil
}

// NopSessionStore is used when Redis is disabled; nothing is ever revoked.
type NopSessionStore struct{}

func (NopSessionStore) Revoke(context.Context, string, time.Duration) error { return nil }

func (NopSessionStore) IsRevoked(context.Context, string) (bool, error) { return false, nil }
