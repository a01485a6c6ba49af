// README: Plan repositories; Redis for the server, in-memory for tools and tests.
package plans

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"
)

const (
	planKeyPrefix = "plans:plan:%s"
	planIndexKey  = "plans:index"
	planSeqKey    = "plans:seq"
)

// Repository persists plans. NextID returns a fresh sequence number.
type Repository interface {
	NextID(ctx context.Context) (int64, error)
	Save(ctx context.Context, p Plan) error
	Get(ctx context.Context, id string) (Plan, error)
	List(ctx context.Context) ([]Plan, error)
}

type RedisStore struct {
	redis *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{redis: client}
}

func (s *RedisStore) NextID(ctx context.Context) (int64, error) {
	return s.redis.Incr(ctx, planSeqKey).Result()
}

// Save writes the plan body and appends its id to the creation-order index.
func (s *RedisStore) Save(ctx context.Context, p Plan) error {
	body, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("encode plan: %w", err)
	}
	pipe := s.redis.TxPipeline()
	pipe.Set(ctx, planKey(p.ID), body, 0)
	pipe.RPush(ctx, planIndexKey, p.ID)
	_, err = pipe.Exec(ctx)
	return err
}

func (s *RedisStore) Get(ctx context.Context, id string) (Plan, error) {
	body, err := s.redis.Get(ctx, planKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return Plan{}, ErrNotFound
	}
	if err != nil {
		return Plan{}, err
	}
	var p Plan
	if err := json.Unmarshal(body, &p); err != nil {
		return Plan{}, fmt.Errorf("decode plan %s: %w", id, err)
	}
	return p, nil
}

func (s *RedisStore) List(ctx context.Context) ([]Plan, error) {
	ids, err := s.redis.LRange(ctx, planIndexKey, 0, -1).Result()
	if err != nil {
		return nil, err
	}
	out := make([]Plan, 0, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = planKey(id)
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
		var p Plan
		if err := json.Unmarshal([]byte(str), &p); err != nil {
			return nil, fmt.Errorf("decode plan %s: %w", ids[i], err)
		}
		out = append(out, p)
	}
	return out, nil
}

func planKey(id string) string {
	return fmt.Sprintf(planKeyPrefix, id)
}

// MemoryStore keeps plans in process memory.
type MemoryStore struct {
	mu    sync.RWMutex
	seq   int64
	order []string
	plans map[string]Plan
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{plans: make(map[string]Plan)}
}

func (s *MemoryStore) NextID(context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	return s.seq, nil
}

func (s *MemoryStore) Save(_ context.Context, p Plan) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.plans[p.ID]; !ok {
		s.order = append(s.order, p.ID)
	}
	s.plans[p.ID] = p
	return nil
}

func (s *MemoryStore) Get(_ context.Context, id string) (Plan, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.plans[id]
	if !ok {
		return Plan{}, ErrNotFound
	}
	return p, nil
}

func (s *MemoryStore) List(context.Context) ([]Plan, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Plan, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.plans[id])
	}
	return out, nil
}
