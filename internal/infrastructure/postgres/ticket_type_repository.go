package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/sanosuguru/go-festival-cashless/internal/domain/ticket"
	"github.com/sanosuguru/go-festival-cashless/internal/domain/transaction"
)

type ticketTypeRow struct {
	ID                 string          `db:"id"`
	FestivalID         string          `db:"festival_id"`
	Name               string          `db:"name"`
	Description        *string         `db:"description"`
	Price              decimal.Decimal `db:"price"`
	Stock              int             `db:"stock"`
	RequiresNomination bool            `db:"requires_nomination"`
	CreatedAt          time.Time       `db:"created_at"`
	UpdatedAt          time.Time       `db:"updated_at"`
	Version            int             `db:"version"`
}

func (r *ticketTypeRow) toEntity() *ticket.TicketType {
	var desc string
	if r.Description != nil {
		desc = *r.Description
	}
	return &ticket.TicketType{
		ID:                 r.ID,
		FestivalID:         r.FestivalID,
		Name:               r.Name,
		Description:        desc,
		Price:              r.Price,
		Stock:              r.Stock,
		RequiresNomination: r.RequiresNomination,
		CreatedAt:          r.CreatedAt,
		UpdatedAt:          r.UpdatedAt,
		Version:            r.Version,
	}
}

// TicketTypeRepository は券種リポジトリのPostgreSQL実装
type TicketTypeRepository struct {
	db *sqlx.DB
}

// NewTicketTypeRepository はTicketTypeRepositoryを作成する
func NewTicketTypeRepository(db *sqlx.DB) *TicketTypeRepository {
	return &TicketTypeRepository{db: db}
}

// Create は新しい券種を作成する
func (r *TicketTypeRepository) Create(ctx context.Context, t *ticket.TicketType) error {
	query := `
		INSERT INTO ticket_types (festival_id, name, description, price, stock, requires_nomination, created_at, updated_at, version)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id
	`
	var desc *string
	if t.Description != "" {
		desc = &t.Description
	}
	err := r.db.QueryRowContext(ctx, query,
		t.FestivalID, t.Name, desc, t.Price, t.Stock, t.RequiresNomination, t.CreatedAt, t.UpdatedAt, t.Version,
	).Scan(&t.ID)
	if err != nil {
		return fmt.Errorf("券種作成に失敗しました: %w", err)
	}
	return nil
}

// GetByID はIDから券種を取得する
func (r *TicketTypeRepository) GetByID(ctx context.Context, id string) (*ticket.TicketType, error) {
	query := `SELECT id, festival_id, name, description, price, stock, requires_nomination, created_at, updated_at, version FROM ticket_types WHERE id = $1`

	var row ticketTypeRow
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ticket.ErrTicketTypeNotFound
		}
		return nil, fmt.Errorf("券種取得に失敗しました: %w", err)
	}
	return row.toEntity(), nil
}

// ListByFestivalID はフェスティバルの券種一覧を取得する
func (r *TicketTypeRepository) ListByFestivalID(ctx context.Context, festivalID string) ([]*ticket.TicketType, error) {
	query := `SELECT id, festival_id, name, description, price, stock, requires_nomination, created_at, updated_at, version FROM ticket_types WHERE festival_id = $1 ORDER BY created_at`

	var rows []ticketTypeRow
	if err := r.db.SelectContext(ctx, &rows, query, festivalID); err != nil {
		return nil, fmt.Errorf("券種一覧取得に失敗しました: %w", err)
	}
	types := make([]*ticket.TicketType, len(rows))
	for i, row := range rows {
		types[i] = row.toEntity()
	}
	return types, nil
}

// DecrementStock は在庫のチェックと減算を単一のUPDATE文で行い、減算後の残数を返す
// チェックと減算が不可分なため、同一券種への並行予約は直列化される
func (r *TicketTypeRepository) DecrementStock(ctx context.Context, tx transaction.Tx, id string, quantity int) (int, error) {
	sqlxTx := UnwrapTx(tx)
	if sqlxTx == nil {
		return 0, fmt.Errorf("トランザクションが不正です")
	}

	query := `UPDATE ticket_types SET stock = stock - $1, updated_at = NOW(), version = version + 1 WHERE id = $2 AND stock >= $1 RETURNING stock`
	var remaining int
	err := sqlxTx.GetContext(ctx, &remaining, query, quantity, id)
	if err == nil {
		return remaining, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("在庫減算に失敗しました: %w", err)
	}

	// 残量をエラーに含める（行が存在しない場合は NotFound）
	if err := sqlxTx.GetContext(ctx, &remaining, `SELECT stock FROM ticket_types WHERE id = $1`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, ticket.ErrTicketTypeNotFound
		}
		return 0, fmt.Errorf("在庫確認に失敗しました: %w", err)
	}
	return 0, &ticket.StockInsufficientError{TicketTypeID: id, Remaining: remaining, Requested: quantity}
}

// IncrementStock はキャンセル時に在庫を戻す
func (r *TicketTypeRepository) IncrementStock(ctx context.Context, tx transaction.Tx, id string, quantity int) error {
	sqlxTx := UnwrapTx(tx)
	if sqlxTx == nil {
		return fmt.Errorf("トランザクションが不正です")
	}

	query := `UPDATE ticket_types SET stock = stock + $1, updated_at = NOW(), version = version + 1 WHERE id = $2`
	result, err := sqlxTx.ExecContext(ctx, query, quantity, id)
	if err != nil {
		return fmt.Errorf("在庫加算に失敗しました: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ticket.ErrTicketTypeNotFound
	}
	return nil
}

var _ ticket.TypeRepository = (*TicketTypeRepository)(nil)
