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

type purchaseRow struct {
	ID         string          `db:"id"`
	BuyerEmail string          `db:"buyer_email"`
	PaymentRef string          `db:"payment_ref"`
	Total      decimal.Decimal `db:"total"`
	CreatedAt  time.Time       `db:"created_at"`
}

type purchaseLineRow struct {
	ID           string          `db:"id"`
	PurchaseID   string          `db:"purchase_id"`
	TicketTypeID string          `db:"ticket_type_id"`
	Quantity     int             `db:"quantity"`
	UnitPrice    decimal.Decimal `db:"unit_price"`
}

// PurchaseRepository は購入リポジトリのPostgreSQL実装
// Purchase が PurchaseLine を所有するため、明細は常に購入と同一トランザクションで書き込む
type PurchaseRepository struct {
	db *sqlx.DB
}

// NewPurchaseRepository はPurchaseRepositoryを作成する
func NewPurchaseRepository(db *sqlx.DB) *PurchaseRepository {
	return &PurchaseRepository{db: db}
}

// Create は購入と明細を作成する
func (r *PurchaseRepository) Create(ctx context.Context, tx transaction.Tx, p *ticket.Purchase) error {
	sqlxTx := UnwrapTx(tx)
	if sqlxTx == nil {
		return fmt.Errorf("トランザクションが不正です")
	}

	query := `INSERT INTO purchases (buyer_email, payment_ref, total, created_at) VALUES ($1, $2, $3, $4) RETURNING id`
	if err := sqlxTx.QueryRowContext(ctx, query, p.BuyerEmail, p.PaymentRef, p.Total, p.CreatedAt).Scan(&p.ID); err != nil {
		return fmt.Errorf("購入作成に失敗しました: %w", err)
	}

	lineQuery := `INSERT INTO purchase_lines (purchase_id, ticket_type_id, quantity, unit_price) VALUES ($1, $2, $3, $4) RETURNING id`
	for _, l := range p.Lines {
		l.PurchaseID = p.ID
		if err := sqlxTx.QueryRowContext(ctx, lineQuery, l.PurchaseID, l.TicketTypeID, l.Quantity, l.UnitPrice).Scan(&l.ID); err != nil {
			return fmt.Errorf("購入明細作成に失敗しました: %w", err)
		}
	}
	return nil
}

// GetByID はIDから購入を取得する（明細込み）
func (r *PurchaseRepository) GetByID(ctx context.Context, id string) (*ticket.Purchase, error) {
	var row purchaseRow
	query := `SELECT id, buyer_email, payment_ref, total, created_at FROM purchases WHERE id = $1`
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ticket.ErrPurchaseNotFound
		}
		return nil, fmt.Errorf("購入取得に失敗しました: %w", err)
	}
	return r.loadLines(ctx, &row)
}

// GetByPaymentRef は決済参照IDから購入を取得する
func (r *PurchaseRepository) GetByPaymentRef(ctx context.Context, paymentRef string) (*ticket.Purchase, error) {
	var row purchaseRow
	query := `SELECT id, buyer_email, payment_ref, total, created_at FROM purchases WHERE payment_ref = $1`
	if err := r.db.GetContext(ctx, &row, query, paymentRef); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ticket.ErrPurchaseNotFound
		}
		return nil, fmt.Errorf("購入取得に失敗しました: %w", err)
	}
	return r.loadLines(ctx, &row)
}

func (r *PurchaseRepository) loadLines(ctx context.Context, row *purchaseRow) (*ticket.Purchase, error) {
	var lineRows []purchaseLineRow
	query := `SELECT id, purchase_id, ticket_type_id, quantity, unit_price FROM purchase_lines WHERE purchase_id = $1 ORDER BY id`
	if err := r.db.SelectContext(ctx, &lineRows, query, row.ID); err != nil {
		return nil, fmt.Errorf("購入明細取得に失敗しました: %w", err)
	}
	lines := make([]*ticket.PurchaseLine, len(lineRows))
	for i, lr := range lineRows {
		lines[i] = &ticket.PurchaseLine{
			ID:           lr.ID,
			PurchaseID:   lr.PurchaseID,
			TicketTypeID: lr.TicketTypeID,
			Quantity:     lr.Quantity,
			UnitPrice:    lr.UnitPrice,
		}
	}
	return &ticket.Purchase{
		ID:         row.ID,
		BuyerEmail: row.BuyerEmail,
		PaymentRef: row.PaymentRef,
		Total:      row.Total,
		Lines:      lines,
		CreatedAt:  row.CreatedAt,
	}, nil
}

var _ ticket.PurchaseRepository = (*PurchaseRepository)(nil)
