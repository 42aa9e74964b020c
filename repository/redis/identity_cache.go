package redis

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"

	redislib "github.com/redis/go-redis/v9"

	"github.com/taskboard/backend/domain"
	"github.com/taskboard/backend/repository"
)

type identityCache struct {
	client *redislib.Client
	prefix string
	ttl    time.Duration
}

// NewIdentityCache creates a Redis-backed token-resolution cache. Only
// a digest of the token is stored as the key, never the token itself.
func NewIdentityCache(client *redislib.Client, ttl time.Duration) repository.IdentityCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &identityCache{
		client: client,
		prefix: "identity:",
		ttl:    ttl,
	}
}

func (c *identityCache) Get(ctx context.Context, token string) (*domain.Identity, error) {
	result, err := c.client.Get(ctx, c.key(token)).Result()
	if err != nil {
		if err == redislib.Nil {
			return nil, nil
		}
		return nil, err
	}

	var identity domain.Identity
	if err := json.Unmarshal([]byte(result), &identity); err != nil {
		return nil, err
	}
	return &identity, nil
}

func (c *identityCache) Set(ctx context.Context, token string, identity *domain.Identity, ttl time.Duration) error {
	if identity == nil {
		return nil
	}
	if ttl <= 0 || ttl > c.ttl {
		ttl = c.ttl
	}

	payload, err := json.Marshal(identity)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.key(token), payload, ttl).Err()
}

func (c *identityCache) key(token string) string {
	digest := sha256.Sum256([]byte(token))
	return c.prefix + hex.EncodeToString(digest[:])
}
