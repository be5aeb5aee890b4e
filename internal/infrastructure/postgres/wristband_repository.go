package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/sanosuguru/go-festival-cashless/internal/domain/transaction"
	"github.com/sanosuguru/go-festival-cashless/internal/domain/wristband"
)

type wristbandRow struct {
	ID               string          `db:"id"`
	UID              string          `db:"uid"`
	FestivalID       string          `db:"festival_id"`
	AssignedTicketID *string         `db:"assigned_ticket_id"`
	Balance          decimal.Decimal `db:"balance"`
	Active           bool            `db:"active"`
	BoundAt          *time.Time      `db:"bound_at"`
	CreatedAt        time.Time       `db:"created_at"`
	UpdatedAt        time.Time       `db:"updated_at"`
	Version          int             `db:"version"`
}

func (r *wristbandRow) toEntity() *wristband.Wristband {
	return &wristband.Wristband{
		ID:               r.ID,
		UID:              r.UID,
		FestivalID:       r.FestivalID,
		AssignedTicketID: r.AssignedTicketID,
		Balance:          r.Balance,
		Active:           r.Active,
		BoundAt:          r.BoundAt,
		CreatedAt:        r.CreatedAt,
		UpdatedAt:        r.UpdatedAt,
		Version:          r.Version,
	}
}

const wristbandColumns = `id, uid, festival_id, assigned_ticket_id, balance, active, bound_at, created_at, updated_at, version`

// WristbandRepository はリストバンドリポジトリのPostgreSQL実装
type WristbandRepository struct {
	db *sqlx.DB
}

// NewWristbandRepository はWristbandRepositoryを作成する
func NewWristbandRepository(db *sqlx.DB) *WristbandRepository {
	return &WristbandRepository{db: db}
}

// Create は新しいリストバンドを作成する
func (r *WristbandRepository) Create(ctx context.Context, tx transaction.Tx, w *wristband.Wristband) error {
	sqlxTx := UnwrapTx(tx)
	if sqlxTx == nil {
		return fmt.Errorf("トランザクションが不正です")
	}

	query := `
		INSERT INTO wristbands (uid, festival_id, assigned_ticket_id, balance, active, bound_at, created_at, updated_at, version)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id
	`
	err := sqlxTx.QueryRowContext(ctx, query,
		w.UID, w.FestivalID, w.AssignedTicketID, w.Balance, w.Active, w.BoundAt, w.CreatedAt, w.UpdatedAt, w.Version,
	).Scan(&w.ID)
	if err != nil {
		return fmt.Errorf("リストバンド作成に失敗しました: %w", err)
	}
	return nil
}

// GetByUID は物理UIDからリストバンドを取得する
func (r *WristbandRepository) GetByUID(ctx context.Context, uid string) (*wristband.Wristband, error) {
	var row wristbandRow
	query := `SELECT ` + wristbandColumns + ` FROM wristbands WHERE uid = $1`
	if err := r.db.GetContext(ctx, &row, query, uid); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, wristband.ErrWristbandNotFound
		}
		return nil, fmt.Errorf("リストバンド取得に失敗しました: %w", err)
	}
	return row.toEntity(), nil
}

// ListByFestivalID はフェスティバルのリストバンド一覧を取得する
func (r *WristbandRepository) ListByFestivalID(ctx context.Context, festivalID string, limit, offset int) ([]*wristband.Wristband, error) {
	var rows []wristbandRow
	query := `SELECT ` + wristbandColumns + ` FROM wristbands WHERE festival_id = $1 ORDER BY created_at LIMIT $2 OFFSET $3`
	if err := r.db.SelectContext(ctx, &rows, query, festivalID, limit, offset); err != nil {
		return nil, fmt.Errorf("リストバンド一覧取得に失敗しました: %w", err)
	}
	wristbands := make([]*wristband.Wristband, len(rows))
	for i, row := range rows {
		wristbands[i] = row.toEntity()
	}
	return wristbands, nil
}

// UpdateBinding は紐付け状態を更新する
func (r *WristbandRepository) UpdateBinding(ctx context.Context, tx transaction.Tx, w *wristband.Wristband) error {
	sqlxTx := UnwrapTx(tx)
	if sqlxTx == nil {
		return fmt.Errorf("トランザクションが不正です")
	}

	query := `UPDATE wristbands SET assigned_ticket_id = $1, active = $2, bound_at = $3, updated_at = NOW(), version = version + 1 WHERE id = $4`
	result, err := sqlxTx.ExecContext(ctx, query, w.AssignedTicketID, w.Active, w.BoundAt, w.ID)
	if err != nil {
		// 別UIDが同じチケットを先に取った場合は一意制約違反になる
		if pgErr, ok := err.(*pq.Error); ok && pgErr.Code == "23505" {
			return wristband.ErrTicketAlreadyLinked
		}
		return fmt.Errorf("リストバンド更新に失敗しました: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return wristband.ErrWristbandNotFound
	}
	return nil
}

// AddBalance はキャッシュ残高を加算し、更新後残高を返す
func (r *WristbandRepository) AddBalance(ctx context.Context, tx transaction.Tx, id string, amount decimal.Decimal) (decimal.Decimal, error) {
	sqlxTx := UnwrapTx(tx)
	if sqlxTx == nil {
		return decimal.Zero, fmt.Errorf("トランザクションが不正です")
	}

	var balance decimal.Decimal
	query := `UPDATE wristbands SET balance = balance + $1, updated_at = NOW(), version = version + 1 WHERE id = $2 AND active RETURNING balance`
	if err := sqlxTx.QueryRowContext(ctx, query, amount, id).Scan(&balance); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return decimal.Zero, wristband.ErrWristbandInactive
		}
		return decimal.Zero, fmt.Errorf("残高加算に失敗しました: %w", err)
	}
	return balance, nil
}

// DeductBalance は残高のチェックと減算を単一のUPDATE文で行い、更新後残高を返す
// チェックと減算が不可分なため、同一リストバンドへの並行消費はチェックをすり抜けない
func (r *WristbandRepository) DeductBalance(ctx context.Context, tx transaction.Tx, id string, amount decimal.Decimal) (decimal.Decimal, error) {
	sqlxTx := UnwrapTx(tx)
	if sqlxTx == nil {
		return decimal.Zero, fmt.Errorf("トランザクションが不正です")
	}

	var balance decimal.Decimal
	query := `UPDATE wristbands SET balance = balance - $1, updated_at = NOW(), version = version + 1 WHERE id = $2 AND active AND balance >= $1 RETURNING balance`
	err := sqlxTx.QueryRowContext(ctx, query, amount, id).Scan(&balance)
	if err == nil {
		return balance, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return decimal.Zero, fmt.Errorf("残高減算に失敗しました: %w", err)
	}

	// 条件不成立の理由を特定する（残高不足か、無効化か）
	var row wristbandRow
	if err := sqlxTx.GetContext(ctx, &row, `SELECT `+wristbandColumns+` FROM wristbands WHERE id = $1`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return decimal.Zero, wristband.ErrWristbandNotFound
		}
		return decimal.Zero, fmt.Errorf("リストバンド確認に失敗しました: %w", err)
	}
	if !row.Active {
		return decimal.Zero, wristband.ErrWristbandInactive
	}
	return decimal.Zero, &wristband.InsufficientFundsError{UID: row.UID, Balance: row.Balance, Requested: amount}
}

var _ wristband.Repository = (*WristbandRepository)(nil)

// LedgerRepository は台帳リポジトリのPostgreSQL実装
// 追記専用であり、UPDATE・DELETE は発行しない
type LedgerRepository struct {
	db *sqlx.DB
}

// NewLedgerRepository はLedgerRepositoryを作成する
func NewLedgerRepository(db *sqlx.DB) *LedgerRepository {
	return &LedgerRepository{db: db}
}

type ledgerRow struct {
	ID          int64           `db:"id"`
	WristbandID string          `db:"wristband_id"`
	FestivalID  string          `db:"festival_id"`
	Kind        string          `db:"kind"`
	Amount      decimal.Decimal `db:"amount"`
	Method      *string         `db:"method"`
	Description *string         `db:"description"`
	CreatedAt   time.Time       `db:"created_at"`
}

// Append は台帳レコードを追記する
func (r *LedgerRepository) Append(ctx context.Context, tx transaction.Tx, t *wristband.BalanceTransaction) error {
	sqlxTx := UnwrapTx(tx)
	if sqlxTx == nil {
		return fmt.Errorf("トランザクションが不正です")
	}

	var method, description *string
	if t.Method != "" {
		method = &t.Method
	}
	if t.Description != "" {
		description = &t.Description
	}

	query := `INSERT INTO balance_transactions (wristband_id, festival_id, kind, amount, method, description, created_at) VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`
	if err := sqlxTx.QueryRowContext(ctx, query, t.WristbandID, t.FestivalID, string(t.Kind), t.Amount, method, description, t.CreatedAt).Scan(&t.ID); err != nil {
		return fmt.Errorf("台帳追記に失敗しました: %w", err)
	}
	return nil
}

// ListByWristbandID はリストバンドの台帳をコミット順で取得する
func (r *LedgerRepository) ListByWristbandID(ctx context.Context, wristbandID string) ([]*wristband.BalanceTransaction, error) {
	var rows []ledgerRow
	query := `SELECT id, wristband_id, festival_id, kind, amount, method, description, created_at FROM balance_transactions WHERE wristband_id = $1 ORDER BY id`
	if err := r.db.SelectContext(ctx, &rows, query, wristbandID); err != nil {
		return nil, fmt.Errorf("台帳取得に失敗しました: %w", err)
	}
	txs := make([]*wristband.BalanceTransaction, len(rows))
	for i, row := range rows {
		var method, description string
		if row.Method != nil {
			method = *row.Method
		}
		if row.Description != nil {
			description = *row.Description
		}
		txs[i] = &wristband.BalanceTransaction{
			ID:          row.ID,
			WristbandID: row.WristbandID,
			FestivalID:  row.FestivalID,
			Kind:        wristband.Kind(row.Kind),
			Amount:      row.Amount,
			Method:      method,
			Description: description,
			CreatedAt:   row.CreatedAt,
		}
	}
	return txs, nil
}

var _ wristband.LedgerRepository = (*LedgerRepository)(nil)
