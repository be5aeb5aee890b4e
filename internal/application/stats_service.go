package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/sanosuguru/go-festival-cashless/internal/domain/festival"
	"github.com/sanosuguru/go-festival-cashless/internal/domain/stats"
	redisinfra "github.com/sanosuguru/go-festival-cashless/internal/infrastructure/redis"
	"github.com/sanosuguru/go-festival-cashless/internal/pkg/logger"
)

// StatsService はフェスティバル単位の読み取り専用集計を提供する
// スナップショットはRedisにTTL付きでキャッシュし、ミス時に再計算する
type StatsService struct {
	statsRepo    stats.Repository
	festivalRepo festival.Repository
	cache        *redisinfra.StatsCache
	cacheTTL     time.Duration
}

func NewStatsService(sr stats.Repository, fr festival.Repository, cache *redisinfra.StatsCache, cacheTTL time.Duration) *StatsService {
	if cacheTTL <= 0 {
		cacheTTL = 30 * time.Second
	}
	return &StatsService{
		statsRepo:    sr,
		festivalRepo: fr,
		cache:        cache,
		cacheTTL:     cacheTTL,
	}
}

// GetStats はフェスティバルの集計を取得する
// キャッシュヒット時はスナップショットを返し、ミス時は台帳から再計算する
func (s *StatsService) GetStats(ctx context.Context, festivalID string) (*stats.FestivalStats, error) {
	if s.cache != nil {
		cached, err := s.cache.Get(ctx, festivalID)
		if err == nil {
			return cached, nil
		}
		if !errors.Is(err, redisinfra.ErrCacheMiss) {
			// キャッシュ障害は集計の可用性に影響させない
			logger.Warn("キャッシュ取得に失敗、再計算します", zap.Error(err))
		}
	}
	return s.Recompute(ctx, festivalID)
}

// Recompute は台帳を走査して集計を正確に再計算し、キャッシュを更新する
func (s *StatsService) Recompute(ctx context.Context, festivalID string) (*stats.FestivalStats, error) {
	if _, err := s.festivalRepo.GetByID(ctx, festivalID); err != nil {
		return nil, err
	}

	computed, err := s.statsRepo.ComputeByFestivalID(ctx, festivalID)
	if err != nil {
		return nil, fmt.Errorf("集計の計算に失敗: %w", err)
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, computed, s.cacheTTL); err != nil {
			logger.Warn("キャッシュ保存に失敗しました", zap.Error(err))
		}
	}
	return computed, nil
}
