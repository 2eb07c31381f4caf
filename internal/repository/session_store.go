package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"grievance-app/internal/models"

	"github.com/redis/go-redis/v9"
)

const sessionKeyPrefix = "call_session:"

// maxCASRetries ограничивает повторы при конкурентных изменениях одной сессии.
const maxCASRetries = 5

// SessionStore держит состояние звонка между вебхуками Twilio.
// Отсутствующая сессия — валидный результат, а не ошибка.
type SessionStore interface {
	Get(ctx context.Context, callID string) (*models.CallSession, bool, error)
	// Update читает (или создает пустую) сессию, применяет fn и сохраняет атомарно.
	Update(ctx context.Context, callID string, fn func(*models.CallSession)) (*models.CallSession, error)
	Delete(ctx context.Context, callID string) error
}

type RedisSessionStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisSessionStore(rdb *redis.Client, ttl time.Duration) *RedisSessionStore {
	return &RedisSessionStore{rdb: rdb, ttl: ttl}
}

func (s *RedisSessionStore) Get(ctx context.Context, callID string) (*models.CallSession, bool, error) {
	raw, err := s.rdb.Get(ctx, sessionKeyPrefix+callID).Result()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	var session models.CallSession
	if err := json.Unmarshal([]byte(raw), &session); err != nil {
		return nil, false, err
	}
	return &session, true, nil
}

// Update выполняет compare-and-set через WATCH: если другой вебхук того же
// звонка успел записать сессию, транзакция откатывается и повторяется.
func (s *RedisSessionStore) Update(ctx context.Context, callID string, fn func(*models.CallSession)) (*models.CallSession, error) {
	key := sessionKeyPrefix + callID
	var updated *models.CallSession

	txf := func(tx *redis.Tx) error {
		var session models.CallSession
		raw, err := tx.Get(ctx, key).Result()
		switch {
		case errors.Is(err, redis.Nil):
			// первая реплика звонка — начинаем с пустой сессии
		case err != nil:
			return err
		default:
			if err := json.Unmarshal([]byte(raw), &session); err != nil {
				return err
			}
		}

		fn(&session)
		data, err := json.Marshal(&session)
		if err != nil {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, s.ttl)
			return nil
		})
		if err == nil {
			updated = &session
		}
		return err
	}

	for i := 0; i < maxCASRetries; i++ {
		err := s.rdb.Watch(ctx, txf, key)
		if err == nil {
			return updated, nil
		}
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return nil, err
	}
	return nil, fmt.Errorf("session %s: too many concurrent updates", callID)
}

func (s *RedisSessionStore) Delete(ctx context.Context, callID string) error {
	return s.rdb.Del(ctx, sessionKeyPrefix+callID).Err()
}

// MemorySessionStore — вариант в памяти с тем же TTL-контрактом.
type MemorySessionStore struct {
	mu       sync.Mutex
	ttl      time.Duration
	sessions map[string]memorySession
}

type memorySession struct {
	data      models.CallSession
	expiresAt time.Time
}

func NewMemorySessionStore(ttl time.Duration) *MemorySessionStore {
	return &MemorySessionStore{
		ttl:      ttl,
		sessions: make(map[string]memorySession),
	}
}

func (s *MemorySessionStore) Get(ctx context.Context, callID string) (*models.CallSession, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.sessions[callID]
	if !ok || time.Now().After(entry.expiresAt) {
		delete(s.sessions, callID)
		return nil, false, nil
	}
	session := entry.data
	return &session, true, nil
}

func (s *MemorySessionStore) Update(ctx context.Context, callID string, fn func(*models.CallSession)) (*models.CallSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var session models.CallSession
	if entry, ok := s.sessions[callID]; ok && time.Now().Before(entry.expiresAt) {
		session = entry.data
	}
	fn(&session)
	s.sessions[callID] = memorySession{data: session, expiresAt: time.Now().Add(s.ttl)}
	result := session
	return &result, nil
}

func (s *MemorySessionStore) Delete(ctx context.Context, callID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, callID)
	return nil
}
