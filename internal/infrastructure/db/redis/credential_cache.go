package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/cobros/console-gateway/internal/core/domain"
)

const (
	tokenKey    = "session:token"
	identityKey = "session:identity"
)

// CredentialCache persists the session token and identity snapshot between
// gateway restarts. It is the gateway's analog of the console's persisted
// credential storage: restore reads it without contacting the login endpoint.
type CredentialCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewCredentialCache wraps the given Redis client. Entries expire after ttl,
// which should match the upstream token lifetime.
func NewCredentialCache(client *redis.Client, ttl time.Duration) *CredentialCache {
	return &CredentialCache{client: client, ttl: ttl}
}

// Save stores the token and serialized identity atomically.
func (c *CredentialCache) Save(ctx context.Context, token string, identity *domain.Identity) error {
	doc, err := json.Marshal(identity)
	if err != nil {
		return fmt.Errorf("encode identity: %w", err)
	}

	pipe := c.client.TxPipeline()
	pipe.Set(ctx, tokenKey, token, c.ttl)
	pipe.Set(ctx, identityKey, doc, c.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("cache save: %w", err)
	}
	return nil
}

// Load returns the cached token and identity. An empty cache is not an
// error: it returns an empty token and nil identity.
func (c *CredentialCache) Load(ctx context.Context) (string, *domain.Identity, error) {
	token, err := c.client.Get(ctx, tokenKey).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil, nil
	}
	if err != nil {
		return "", nil, fmt.Errorf("cache load token: %w", err)
	}

	doc, err := c.client.Get(ctx, identityKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return "", nil, nil
	}
	if err != nil {
		return "", nil, fmt.Errorf("cache load identity: %w", err)
	}

	var identity domain.Identity
	if err := json.Unmarshal(doc, &identity); err != nil {
		return "", nil, fmt.Errorf("decode identity: %w", err)
	}
	return token, &identity, nil
}

// Clear removes both entries. Missing keys are not an error.
func (c *CredentialCache) Clear(ctx context.Context) error {
	if err := c.client.Del(ctx, tokenKey, identityKey).Err(); err != nil {
		return fmt.Errorf("cache clear: %w", err)
	}
	return nil
}
