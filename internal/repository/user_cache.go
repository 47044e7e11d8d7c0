package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/ibanking/backend/internal/models"
	"go.uber.org/zap"
)

const userKeyPrefix = "user:ext:"

// UserSource is the authoritative lookup behind the cache.
type UserSource interface {
	GetUser(ctx context.Context, externalID string) (*models.User, error)
}

// cachedUser carries ExternalID, which models.User hides from JSON.
type cachedUser struct {
	ID          string    `json:"id"`
	ExternalID  string    `json:"externalId"`
	Username    string    `json:"username"`
	Email       string    `json:"email"`
	DateCreated time.Time `json:"dateCreated"`
}

// CachedUserDirectory resolves users through Redis and falls back to the
// source on a miss. Only registered users are cached. Redis errors are
// logged and the lookup continues against the source.
type CachedUserDirectory struct {
	source UserSource
	redis  *redis.Client
	ttl    time.Duration
	log    *zap.Logger
}

func NewCachedUserDirectory(source UserSource, client *redis.Client, ttl time.Duration, log *zap.Logger) *CachedUserDirectory {
	return &CachedUserDirectory{source: source, redis: client, ttl: ttl, log: log}
}

func (c *CachedUserDirectory) GetUser(ctx context.Context, externalID string) (*models.User, error) {
	key := userKeyPrefix + externalID

	raw, err := c.redis.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		if user, ok := c.decode(raw); ok {
			return user, nil
		}
	case !errors.Is(err, redis.Nil):
		c.log.Warn("[CACHE] User lookup failed, falling back to store", zap.String("key", key), zap.Error(err))
	}

	user, err := c.source.GetUser(ctx, externalID)
	if err != nil || user == nil {
		return user, err
	}

	payload, err := json.Marshal(cachedUser{
		ID:          user.ID.String(),
		ExternalID:  user.ExternalID,
		Username:    user.Username,
		Email:       user.Email,
		DateCreated: user.DateCreated,
	})
	if err == nil {
		err = c.redis.Set(ctx, key, payload, c.ttl).Err()
	}
	if err != nil {
		c.log.Warn("[CACHE] Failed to cache user", zap.String("key", key), zap.Error(err))
	}
	return user, nil
}

func (c *CachedUserDirectory) decode(raw []byte) (*models.User, bool) {
	var entry cachedUser
	if err := json.Unmarshal(raw, &entry); err != nil {
		c.log.Warn("[CACHE] Discarding malformed user entry", zap.Error(err))
		return nil, false
	}
	user := &models.User{
		ExternalID:  entry.ExternalID,
		Username:    entry.Username,
		Email:       entry.Email,
		DateCreated: entry.DateCreated,
	}
	if err := user.ID.UnmarshalText([]byte(entry.ID)); err != nil {
		c.log.Warn("[CACHE] Discarding malformed user entry", zap.Error(err))
		return nil, false
	}
	return user, true
}
