package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/sanosuguru/go-festival-cashless/internal/domain/stats"
)

// StatsRepository は集計リポジトリのPostgreSQL実装
// SELECTのみを発行し、元データを一切変更しない
type StatsRepository struct {
	db *sqlx.DB
}

// NewStatsRepository はStatsRepositoryを作成する
func NewStatsRepository(db *sqlx.DB) *StatsRepository {
	return &StatsRepository{db: db}
}

// ComputeByFestivalID は購入・台帳を走査して集計をゼロから算出する
func (r *StatsRepository) ComputeByFestivalID(ctx context.Context, festivalID string) (*stats.FestivalStats, error) {
	result := &stats.FestivalStats{
		FestivalID: festivalID,
		Revenue:    decimal.Zero,
		TopUpTotal: decimal.Zero,
		SpendTotal: decimal.Zero,
		ComputedAt: time.Now(),
	}

	// 販売枚数と売上（キャンセル済みチケットは販売数から除外）
	salesQuery := `
		SELECT COUNT(t.id) AS tickets_sold, COALESCE(SUM(l.unit_price), 0) AS revenue
		FROM assigned_tickets t
		JOIN purchase_lines l ON l.id = t.purchase_line_id
		WHERE t.festival_id = $1 AND t.status <> 'cancelled'
	`
	var salesRow struct {
		TicketsSold int             `db:"tickets_sold"`
		Revenue     decimal.Decimal `db:"revenue"`
	}
	if err := r.db.GetContext(ctx, &salesRow, salesQuery, festivalID); err != nil {
		return nil, fmt.Errorf("販売集計に失敗しました: %w", err)
	}
	result.TicketsSold = salesRow.TicketsSold
	result.Revenue = salesRow.Revenue

	// チャージ・消費の合計
	ledgerQuery := `
		SELECT
			COALESCE(SUM(amount) FILTER (WHERE kind = 'topup'), 0) AS topup_total,
			COALESCE(SUM(amount) FILTER (WHERE kind = 'spend'), 0) AS spend_total
		FROM balance_transactions
		WHERE festival_id = $1
	`
	var ledgerRow struct {
		TopUpTotal decimal.Decimal `db:"topup_total"`
		SpendTotal decimal.Decimal `db:"spend_total"`
	}
	if err := r.db.GetContext(ctx, &ledgerRow, ledgerQuery, festivalID); err != nil {
		return nil, fmt.Errorf("台帳集計に失敗しました: %w", err)
	}
	result.TopUpTotal = ledgerRow.TopUpTotal
	result.SpendTotal = ledgerRow.SpendTotal

	return result, nil
}

var _ stats.Repository = (*StatsRepository)(nil)
