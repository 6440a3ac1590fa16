package testkit

import (
	"compliance_edu_backend/internal/util"
	"context"
	"encoding/json"
	"sync"
	"time"
)

// SessionStore 与 Redis 实现一样走 JSON 序列化，能暴露不可序列化的状态
type SessionStore struct {
	mu      sync.Mutex
	Data    map[string][]byte
	TTLs    map[string]time.Duration
	SaveErr error
}

func NewSessionStore() *SessionStore {
	return &SessionStore{
		Data: make(map[string][]byte),
		TTLs: make(map[string]time.Duration),
	}
}

func (s *SessionStore) Save(_ context.Context, key string, v interface{}, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.SaveErr != nil {
		return s.SaveErr
	}
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	s.Data[key] = data
	s.TTLs[key] = ttl
	return nil
}

func (s *SessionStore) Load(_ context.Context, key string, v interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.Data[key]
	if !ok {
		return util.ErrSessionNotFound
	}
	return json.Unmarshal(data, v)
}

func (s *SessionStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.Data, key)
	delete(s.TTLs, key)
	return nil
}

// Expire 模拟会话过期
func (s *SessionStore) Expire(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.Data, key)
}

func (s *SessionStore) Claim(_ context.Context, key string, ttl time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.Data[key]; ok {
		return false, nil
	}
	s.Data[key] = []byte("1")
	s.TTLs[key] = ttl
	return true, nil
}
