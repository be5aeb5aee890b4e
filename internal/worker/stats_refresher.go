package worker

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/sanosuguru/go-festival-cashless/internal/domain/festival"
	"github.com/sanosuguru/go-festival-cashless/internal/domain/stats"
	"github.com/sanosuguru/go-festival-cashless/internal/pkg/logger"
)

// StatsRecomputer は集計を再計算するインターフェース
type StatsRecomputer interface {
	Recompute(ctx context.Context, festivalID string) (*stats.FestivalStats, error)
}

// FestivalLister はフェスティバル一覧を取得するインターフェース
type FestivalLister interface {
	List(ctx context.Context, limit, offset int) ([]*festival.Festival, error)
}

// StatsRefresher は公開中フェスティバルの集計スナップショットを
// 定期的に再計算してキャッシュを温めるワーカー
type StatsRefresher struct {
	statsService StatsRecomputer
	festivalRepo FestivalLister
	interval     time.Duration
	stopCh       chan struct{}
	doneCh       chan struct{}
}

// NewStatsRefresher は新しいリフレッシャーを作成
func NewStatsRefresher(ss StatsRecomputer, fr FestivalLister, interval time.Duration) *StatsRefresher {
	return &StatsRefresher{
		statsService: ss,
		festivalRepo: fr,
		interval:     interval,
		stopCh:       make(chan struct{}),
		doneCh:       make(chan struct{}),
	}
}

// Start はリフレッシャーを開始
func (r *StatsRefresher) Start(ctx context.Context) {
	logger.Info("集計リフレッシャー開始", zap.Duration("interval", r.interval))

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()
	defer close(r.doneCh)

	for {
		select {
		case <-ctx.Done():
			logger.Info("集計リフレッシャー停止（コンテキストキャンセル）")
			return
		case <-r.stopCh:
			logger.Info("集計リフレッシャー停止（シグナル受信）")
			return
		case <-ticker.C:
			r.refresh(ctx)
		}
	}
}

// Stop はリフレッシャーを停止
func (r *StatsRefresher) Stop() {
	close(r.stopCh)
	<-r.doneCh
}

// refresh は公開中フェスティバルの集計を再計算
func (r *StatsRefresher) refresh(ctx context.Context) {
	log := logger.Get()
	log.Debug("集計リフレッシュ開始")

	const pageSize = 100
	festivals, err := r.festivalRepo.List(ctx, pageSize, 0)
	if err != nil {
		log.Error("フェスティバル一覧の取得に失敗", zap.Error(err))
		return
	}

	refreshed := 0
	for _, f := range festivals {
		if !f.IsPublished() {
			continue
		}
		if _, err := r.statsService.Recompute(ctx, f.ID); err != nil {
			log.Error("集計の再計算に失敗",
				zap.String("festival_id", f.ID),
				zap.Error(err),
			)
			continue
		}
		refreshed++
	}

	if refreshed > 0 {
		log.Debug("集計リフレッシュ完了", zap.Int("count", refreshed))
	}
}
