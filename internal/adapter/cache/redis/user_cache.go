package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Abdurahmanit/review-service/internal/domain"
	"github.com/Abdurahmanit/review-service/internal/platform/logger"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const userKeyPrefix = "review-service:user:"

// NewRedisClient connects and pings with a short timeout.
func NewRedisClient(ctx context.Context, addr, password string, db int, log *logger.Logger) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := rdb.Ping(pingCtx).Err(); err != nil {
		log.Error("Failed to connect to Redis", zap.String("address", addr), zap.Error(err))
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to ping redis at %s: %w", addr, err)
	}
	log.Info("Successfully connected to Redis", zap.String("address", addr))
	return rdb, nil
}

// CachedUserService is a read-through cache in front of the user service.
// Redis failures degrade to a direct lookup; they never fail the caller.
type CachedUserService struct {
	next   domain.UserService
	client *redis.Client
	ttl    time.Duration
	logger *logger.Logger
}

func NewCachedUserService(next domain.UserService, client *redis.Client, ttl time.Duration, log *logger.Logger) *CachedUserService {
	return &CachedUserService{
		next:   next,
		client: client,
		ttl:    ttl,
		logger: log.Named("UserCache"),
	}
}

func (c *CachedUserService) GetUser(ctx context.Context, userID, token string) (*domain.UserProfile, error) {
	key := userKeyPrefix + userID

	raw, err := c.client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var profile domain.UserProfile
		if jsonErr := json.Unmarshal(raw, &profile); jsonErr == nil {
			return &profile, nil
		}
		c.logger.Warn("Discarding undecodable cached user profile", zap.String("key", key))
	case errors.Is(err, redis.Nil):
	default:
		c.logger.Warn("Redis Get failed, falling back to user service", zap.String("key", key), zap.Error(err))
	}

	profile, err := c.next.GetUser(ctx, userID, token)
	if err != nil {
		return nil, err
	}

	if payload, err := json.Marshal(profile); err == nil {
		if err := c.client.Set(ctx, key, payload, c.ttl).Err(); err != nil {
			c.logger.Warn("Redis Set failed", zap.String("key", key), zap.Error(err))
		}
	}
	return profile, nil
}
