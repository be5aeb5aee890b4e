package stats

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// FestivalStats はフェスティバル単位の読み取り専用集計を表す
// 元データ（購入・台帳）から常に正確に再計算できる
type FestivalStats struct {
	FestivalID  string          `json:"festival_id"`
	TicketsSold int             `json:"tickets_sold"`
	Revenue     decimal.Decimal `json:"revenue"`
	TopUpTotal  decimal.Decimal `json:"topup_total"`
	SpendTotal  decimal.Decimal `json:"spend_total"`
	ComputedAt  time.Time       `json:"computed_at"`
}

// Repository は集計リポジトリのインターフェース
// 元データを一切変更しない読み取り専用の契約
type Repository interface {
	// ComputeByFestivalID は台帳を走査して集計を正確に算出する
	ComputeByFestivalID(ctx context.Context, festivalID string) (*FestivalStats, error)
}
