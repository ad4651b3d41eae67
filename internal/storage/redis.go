package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/hyperjump/asistan/internal/config"
	"github.com/hyperjump/asistan/internal/models"
)

const stateKeyPrefix = "asistan:state:"

// RedisStateStorage caches conversation state in Redis with a TTL and
// delegates messages, and state writes, to a base store.
type RedisStateStorage struct {
	Storage
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewRedisClient creates a client from cfg.
func NewRedisClient(cfg *config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:         cfg.Address,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})
}

// NewRedisStateStorage wraps base with a Redis state cache.
func NewRedisStateStorage(base Storage, client *redis.Client, ttl time.Duration, logger *zap.Logger) *RedisStateStorage {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisStateStorage{Storage: base, client: client, ttl: ttl, logger: logger}
}

// Ping checks the Redis connection.
func (s *RedisStateStorage) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}

func stateKey(conversationID string) string {
	return stateKeyPrefix + conversationID
}

// GetState reads from Redis first and falls back to the base store,
// repopulating the cache on a miss. Redis errors degrade to the base store.
func (s *RedisStateStorage) GetState(ctx context.Context, conversationID string) (*models.ConversationState, error) {
	val, err := s.client.Get(ctx, stateKey(conversationID)).Result()
	switch {
	case err == nil:
		var state models.ConversationState
		if jerr := json.Unmarshal([]byte(val), &state); jerr == nil {
			return &state, nil
		}
		s.logger.Warn("Discarding unreadable cached state", zap.String("conversation_id", conversationID))
	case !errors.Is(err, redis.Nil):
		s.logger.Warn("Redis state read failed", zap.String("conversation_id", conversationID), zap.Error(err))
	}

	state, err := s.Storage.GetState(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	s.cache(ctx, state)
	return state, nil
}

// SaveState writes through to the base store, then refreshes the cache.
func (s *RedisStateStorage) SaveState(ctx context.Context, state *models.ConversationState) error {
	if err := s.Storage.SaveState(ctx, state); err != nil {
		return err
	}
	s.cache(ctx, state)
	return nil
}

func (s *RedisStateStorage) cache(ctx context.Context, state *models.ConversationState) {
	data, err := json.Marshal(state)
	if err != nil {
		return
	}
	if err := s.client.Set(ctx, stateKey(state.ID), data, s.ttl).Err(); err != nil {
		s.logger.Warn("Redis state write failed", zap.String("conversation_id", state.ID), zap.Error(err))
	}
}

// CountMessages delegates to the base store.
func (s *RedisStateStorage) CountMessages(ctx context.Context) (int64, error) {
	c, ok := s.Storage.(MessageCounter)
	if !ok {
		return 0, ErrUnsupported
	}
	return c.CountMessages(ctx)
}

// Close closes the Redis client and the base store.
func (s *RedisStateStorage) Close() error {
	cerr := s.client.Close()
	if err := s.Storage.Close(); err != nil {
		return err
	}
	return cerr
}
