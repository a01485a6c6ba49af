package plans

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedisRepo(t *testing.T) *RedisStore {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisStore(client)
}

func repos(t *testing.T) map[string]Repository {
	return map[string]Repository{
		"redis":  newRedisRepo(t),
		"memory": NewMemoryStore(),
	}
}

func TestCreateGetList(t *testing.T) {
	for name, repo := range repos(t) {
		t.Run(name, func(t *testing.T) {
			svc := NewService(repo)
			svc.now = func() time.Time { return time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC) }
			ctx := context.Background()

			first, err := svc.Create(ctx, Draft{Destination: " Paris ", Duration: 5, Budget: 1200, Interests: []string{"art"}})
			require.NoError(t, err)
			assert.Equal(t, "plan_1", first.ID)
			assert.Equal(t, "Paris", first.Destination)
			assert.Equal(t, StatusDraft, first.Status)
			assert.Equal(t, time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC), first.CreatedAt)

			second, err := svc.Create(ctx, Draft{Destination: "Tokyo", Duration: 7})
			require.NoError(t, err)
			assert.Equal(t, "plan_2", second.ID)
			assert.NotNil(t, second.Interests)

			got, err := svc.Get(ctx, "plan_1")
			require.NoError(t, err)
			assert.Equal(t, first, got)

			all, err := svc.List(ctx)
			require.NoError(t, err)
			require.Len(t, all, 2)
			assert.Equal(t, "plan_1", all[0].ID)
			assert.Equal(t, "plan_2", all[1].ID)
		})
	}
}

func TestGetMissing(t *testing.T) {
	for name, repo := range repos(t) {
		t.Run(name, func(t *testing.T) {
			_, err := NewService(repo).Get(context.Background(), "plan_404")
			assert.True(t, errors.Is(err, ErrNotFound))
		})
	}
}

func TestListEmpty(t *testing.T) {
	for name, repo := range repos(t) {
		t.Run(name, func(t *testing.T) {
			all, err := NewService(repo).List(context.Background())
			require.NoError(t, err)
			assert.NotNil(t, all)
			assert.Empty(t, all)
		})
	}
}

func TestCreateValidation(t *testing.T) {
	svc := NewService(NewMemoryStore())
	cases := []Draft{
		{Destination: "", Duration: 3},
		{Destination: "Bali", Duration: 0},
		{Destination: "Bali", Duration: 2, Budget: -1},
	}
	for _, d := range cases {
		_, err := svc.Create(context.Background(), d)
		assert.True(t, errors.Is(err, ErrInvalid), "%+v", d)
	}
	all, _ := svc.List(context.Background())
	assert.Empty(t, all)
}

func TestRedisStoreUnavailable(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { _ = client.Close() })
	mr.Close()

	_, err := NewService(NewRedisStore(client)).Create(context.Background(), Draft{Destination: "Oslo", Duration: 2})
	assert.Error(t, err)
}
