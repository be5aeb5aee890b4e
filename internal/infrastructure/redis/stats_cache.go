package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/sanosuguru/go-festival-cashless/internal/domain/stats"
)

var (
	ErrCacheMiss = errors.New("キャッシュが見つかりません")
)

// StatsCache はフェスティバル集計スナップショットのキャッシュを管理する
type StatsCache struct {
	client *redis.Client
}

// NewStatsCache は新しいStatsCacheインスタンスを作成する
func NewStatsCache(client *redis.Client) *StatsCache {
	return &StatsCache{client: client}
}

// Get はフェスティバルの集計スナップショットをキャッシュから取得する
func (c *StatsCache) Get(ctx context.Context, festivalID string) (*stats.FestivalStats, error) {
	key := c.statsKey(festivalID)
	raw, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrCacheMiss
		}
		return nil, fmt.Errorf("キャッシュ取得に失敗: %w", err)
	}

	var s stats.FestivalStats
	if err := json.Unmarshal(raw, &s); err != nil {
		// 壊れたスナップショットはミス扱いにして再計算させる
		return nil, ErrCacheMiss
	}
	return &s, nil
}

// Set はフェスティバルの集計スナップショットをキャッシュに保存する
func (c *StatsCache) Set(ctx context.Context, s *stats.FestivalStats, ttl time.Duration) error {
	raw, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("スナップショットのシリアライズに失敗: %w", err)
	}
	key := c.statsKey(s.FestivalID)
	if err := c.client.Set(ctx, key, raw, ttl).Err(); err != nil {
		return fmt.Errorf("キャッシュ保存に失敗: %w", err)
	}
	return nil
}

// Invalidate はフェスティバルのキャッシュを無効化する
func (c *StatsCache) Invalidate(ctx context.Context, festivalID string) error {
	key := c.statsKey(festivalID)
	if err := c.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("キャッシュ無効化に失敗: %w", err)
	}
	return nil
}

func (c *StatsCache) statsKey(festivalID string) string {
	return fmt.Sprintf("stats:festival:%s", festivalID)
}
