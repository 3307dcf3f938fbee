package otp

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore implements Store on redis so that multiple instances share
// challenge state. Keys get a TTL past the verification window; expiry is
// still reported from the challenge itself so a stale code answers
// "expired" rather than "not found".
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func key(email string) string {
	return "otp:" + email
}

func (s *RedisStore) Put(ctx context.Context, email string, ch Challenge) error {
	data, err := json.Marshal(ch)
	if err != nil {
		return err
	}
	ttl := time.Until(ch.Expires) + Window
	return s.client.Set(ctx, key(email), data, ttl).Err()
}

func (s *RedisStore) Get(ctx context.Context, email string) (Challenge, error) {
	data, err := s.client.Get(ctx, key(email)).Bytes()
	if errors.Is(err, redis.Nil) {
		return Challenge{}, ErrNotFound
	}
	if err != nil {
		return Challenge{}, err
	}

	var ch Challenge
	if err := json.Unmarshal(data, &ch); err != nil {
		return Challenge{}, err
	}
	return ch, nil
}

func (s *RedisStore) MarkVerified(ctx context.Context, email string) error {
	ch, err := s.Get(ctx, email)
	if err != nil {
		return err
	}
	ch.Verified = true
	return s.Put(ctx, email, ch)
}

func (s *RedisStore) Delete(ctx context.Context, email string) error {
	return s.client.Del(ctx, key(email)).Err()
}

var _ Store = (*RedisStore)(nil)
