package redis

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	rdb "github.com/redis/go-redis/v9"

	"github.com/sanosuguru/go-festival-cashless/internal/config"
	"github.com/sanosuguru/go-festival-cashless/internal/domain/stats"
)

func setupTestRedis(t *testing.T) *rdb.Client {
	client := NewClient(&config.RedisConfig{Host: "localhost", Port: "6379"})
	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()
	if err := Ping(ctx, client); err != nil {
		t.Skip("Redis not available")
	}
	t.Cleanup(func() { client.Close() })
	return client
}

func sampleStats(festivalID string) *stats.FestivalStats {
	return &stats.FestivalStats{
		FestivalID:  festivalID,
		TicketsSold: 42,
		Revenue:     decimal.NewFromInt(1260),
		TopUpTotal:  decimal.NewFromInt(500),
		SpendTotal:  decimal.NewFromInt(320),
		ComputedAt:  time.Now().UTC().Truncate(time.Second),
	}
}

func TestStatsCache_GetSet(t *testing.T) {
	client := setupTestRedis(t)
	cache := NewStatsCache(client)
	ctx := context.Background()
	festivalID := "test-festival-123"
	t.Cleanup(func() { _ = cache.Invalidate(ctx, festivalID) })

	t.Run("キャッシュミス時はErrCacheMissを返す", func(t *testing.T) {
		_, err := cache.Get(ctx, festivalID)
		assert.ErrorIs(t, err, ErrCacheMiss)
	})

	t.Run("キャッシュにセットしたスナップショットを取得できる", func(t *testing.T) {
		want := sampleStats(festivalID)
		err := cache.Set(ctx, want, 30*time.Second)
		require.NoError(t, err)

		got, err := cache.Get(ctx, festivalID)
		require.NoError(t, err)
		assert.Equal(t, want.FestivalID, got.FestivalID)
		assert.Equal(t, want.TicketsSold, got.TicketsSold)
		assert.True(t, want.Revenue.Equal(got.Revenue))
		assert.True(t, want.TopUpTotal.Equal(got.TopUpTotal))
		assert.True(t, want.SpendTotal.Equal(got.SpendTotal))
	})

	t.Run("キャッシュを無効化できる", func(t *testing.T) {
		err := cache.Set(ctx, sampleStats(festivalID), 30*time.Second)
		require.NoError(t, err)

		err = cache.Invalidate(ctx, festivalID)
		require.NoError(t, err)

		_, err = cache.Get(ctx, festivalID)
		assert.ErrorIs(t, err, ErrCacheMiss)
	})
}

func TestStatsCache_TTL(t *testing.T) {
	client := setupTestRedis(t)
	cache := NewStatsCache(client)
	ctx := context.Background()
	festivalID := "test-festival-ttl"
	t.Cleanup(func() { _ = cache.Invalidate(ctx, festivalID) })

	t.Run("TTL経過後はキャッシュミスになる", func(t *testing.T) {
		err := cache.Set(ctx, sampleStats(festivalID), 1*time.Second)
		require.NoError(t, err)

		time.Sleep(1500 * time.Millisecond)

		_, err = cache.Get(ctx, festivalID)
		assert.ErrorIs(t, err, ErrCacheMiss)
	})
}

func TestStatsCache_壊れたスナップショットはミス扱い(t *testing.T) {
	client := setupTestRedis(t)
	cache := NewStatsCache(client)
	ctx := context.Background()
	festivalID := "test-festival-broken"
	t.Cleanup(func() { client.Del(ctx, "stats:festival:"+festivalID) })

	err := client.Set(ctx, "stats:festival:"+festivalID, "not-json", 30*time.Second).Err()
	require.NoError(t, err)

	_, err = cache.Get(ctx, festivalID)
	assert.ErrorIs(t, err, ErrCacheMiss)
}
