package repository

import (
	"compliance_edu_backend/internal/util"
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/go-redis/redis/v8"
)

// SessionRepository 把进行中的情景/测评会话存在 Redis，过期即丢弃
type SessionRepository struct {
	Redis *redis.Client
}

func NewSessionRepository(rdb *redis.Client) *SessionRepository {
	return &SessionRepository{Redis: rdb}
}

func (r *SessionRepository) Save(ctx context.Context, key string, v interface{}, ttl time.Duration) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return r.Redis.Set(ctx, key, data, ttl).Err()
}

func (r *SessionRepository) Load(ctx context.Context, key string, v interface{}) error {
	data, err := r.Redis.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return util.ErrSessionNotFound
	}
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}

func (r *SessionRepository) Delete(ctx context.Context, key string) error {
	return r.Redis.Del(ctx, key).Err()
}

func (r *SessionRepository) Claim(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	return r.Redis.SetNX(ctx, key, 1, ttl).Result()
}
