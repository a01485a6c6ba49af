// README: User repositories; Redis for the server, in-memory for tests.
package users

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"
)

const (
	userKeyPrefix = "users:user:%s"
	userIndexKey  = "users:index"
	userSeqKey    = "users:seq"
	profileKey    = "users:profile"
)

// Repository persists users and the current profile. GetProfile returns
// ErrNotFound until a profile has been saved.
type Repository interface {
	NextID(ctx context.Context) (int64, error)
	Save(ctx context.Context, u User) error
	List(ctx context.Context) ([]User, error)
	GetProfile(ctx context.Context) (Profile, error)
	SaveProfile(ctx context.Context, p Profile) error
}

type RedisStore struct {
	redis *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{redis: client}
}

func (s *RedisStore) NextID(ctx context.Context) (int64, error) {
	return s.redis.Incr(ctx, userSeqKey).Result()
}

func (s *RedisStore) Save(ctx context.Context, u User) error {
	body, err := json.Marshal(u)
	if err != nil {
		return fmt.Errorf("encode user: %w", err)
	}
	pipe := s.redis.TxPipeline()
	pipe.Set(ctx, fmt.Sprintf(userKeyPrefix, u.ID), body, 0)
	pipe.RPush(ctx, userIndexKey, u.ID)
	_, err = pipe.Exec(ctx)
	return err
}

func (s *RedisStore) List(ctx context.Context) ([]User, error) {
	ids, err := s.redis.LRange(ctx, userIndexKey, 0, -1).Result()
	if err != nil {
		return nil, err
	}
	out := make([]User, 0, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = fmt.Sprintf(userKeyPrefix, id)
	}
	vals, err := s.redis.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}
	for i, v := range vals {
		str, ok := v.(string)
		if !ok {
			continue
		}
		var u User
		if err := json.Unmarshal([]byte(str), &u); err != nil {
			return nil, fmt.Errorf("decode user %s: %w", ids[i], err)
		}
		out = append(out, u)
	}
	return out, nil
}

func (s *RedisStore) GetProfile(ctx context.Context) (Profile, error) {
	body, err := s.redis.Get(ctx, profileKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return Profile{}, ErrNotFound
	}
	if err != nil {
		return Profile{}, err
	}
	var p Profile
	if err := json.Unmarshal(body, &p); err != nil {
		return Profile{}, fmt.Errorf("decode profile: %w", err)
	}
	return p, nil
}

func (s *RedisStore) SaveProfile(ctx context.Context, p Profile) error {
	body, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("encode profile: %w", err)
	}
	return s.redis.Set(ctx, profileKey, body, 0).Err()
}

// MemoryStore keeps users in process memory.
type MemoryStore struct {
	mu      sync.RWMutex
	seq     int64
	users   []User
	profile *Profile
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) NextID(context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	return s.seq, nil
}

func (s *MemoryStore) Save(_ context.Context, u User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users = append(s.users, u)
	return nil
}

func (s *MemoryStore) List(context.Context) ([]User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]User, len(s.users))
	copy(out, s.users)
	return out, nil
}

func (s *MemoryStore) GetProfile(context.Context) (Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.profile == nil {
		return Profile{}, ErrNotFound
	}
	return *s.profile, nil
}

func (s *MemoryStore) SaveProfile(_ context.Context, p Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profile = &p
	return nil
}
