package oauth

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisTokenStore keeps each service's token in a Redis hash.
type RedisTokenStore struct {
	redis  *redis.Client
	prefix string
}

// NewRedisTokenStore creates a store on redisClient.
func NewRedisTokenStore(redisClient *redis.Client) *RedisTokenStore {
	if redisClient == nil {
		panic("redis client cannot be nil")
	}
	return &RedisTokenStore{redis: redisClient, prefix: "flickr:oauth:"}
}

func (s *RedisTokenStore) Token(ctx context.Context, service string) (Token, error) {
	fields, err := s.redis.HGetAll(ctx, s.prefix+service).Result()
	if err != nil {
		return Token{}, fmt.Errorf("redis hgetall: %w", err)
	}
	if len(fields) == 0 {
		return Token{}, ErrNoToken
	}

	t := Token{Token: fields["token"], Secret: fields["secret"]}
	if raw := fields["extra"]; raw != "" {
		if err := json.Unmarshal([]byte(raw), &t.Extra); err != nil {
			return Token{}, fmt.Errorf("parse token extra: %w", err)
		}
	}
	return t, nil
}

// StoreToken replaces the hash in one MULTI/EXEC so readers never see a
// token paired with a stale secret.
func (s *RedisTokenStore) StoreToken(ctx context.Context, service string, token Token) error {
	extra := ""
	if len(token.Extra) > 0 {
		b, err := json.Marshal(token.Extra)
		if err != nil {
			return fmt.Errorf("marshal token extra: %w", err)
		}
		extra = string(b)
	}

	key := s.prefix + service
	_, err := s.redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, key)
		pipe.HSet(ctx, key, "token", token.Token, "secret", token.Secret, "extra", extra)
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis store token: %w", err)
	}
	return nil
}
