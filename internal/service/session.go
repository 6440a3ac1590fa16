package service

import (
	"context"
	"time"
)

// SessionStore 保存进行中的情景/测评会话
type SessionStore interface {
	Save(ctx context.Context, key string, v interface{}, ttl time.Duration) error
	Load(ctx context.Context, key string, v interface{}) error
	Delete(ctx context.Context, key string) error
	// Claim 原子地占用 key，已被占用时返回 false
	Claim(ctx context.Context, key string, ttl time.Duration) (bool, error)
}

const (
	scenarioSessionPrefix = "scenario:session:"
	quizSessionPrefix     = "quiz:session:"
)

func scenarioSessionKey(id string) string {
	return scenarioSessionPrefix + id
}

func quizSessionKey(id string) string {
	return quizSessionPrefix + id
}

func quizSubmitKey(id string) string {
	return quizSessionPrefix + id + ":submit"
}
