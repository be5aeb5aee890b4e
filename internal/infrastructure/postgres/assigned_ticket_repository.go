package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/sanosuguru/go-festival-cashless/internal/domain/ticket"
	"github.com/sanosuguru/go-festival-cashless/internal/domain/transaction"
)

type assignedTicketRow struct {
	ID             string     `db:"id"`
	PurchaseLineID string     `db:"purchase_line_id"`
	TicketTypeID   string     `db:"ticket_type_id"`
	FestivalID     string     `db:"festival_id"`
	Code           string     `db:"code"`
	Status         string     `db:"status"`
	AttendeeID     *string    `db:"attendee_id"`
	NominatedAt    *time.Time `db:"nominated_at"`
	UsedAt         *time.Time `db:"used_at"`
	CreatedAt      time.Time  `db:"created_at"`
	UpdatedAt      time.Time  `db:"updated_at"`
}

func (r *assignedTicketRow) toEntity() *ticket.AssignedTicket {
	return &ticket.AssignedTicket{
		ID:             r.ID,
		PurchaseLineID: r.PurchaseLineID,
		TicketTypeID:   r.TicketTypeID,
		FestivalID:     r.FestivalID,
		Code:           r.Code,
		Status:         ticket.Status(r.Status),
		AttendeeID:     r.AttendeeID,
		NominatedAt:    r.NominatedAt,
		UsedAt:         r.UsedAt,
		CreatedAt:      r.CreatedAt,
		UpdatedAt:      r.UpdatedAt,
	}
}

const assignedTicketColumns = `id, purchase_line_id, ticket_type_id, festival_id, code, status, attendee_id, nominated_at, used_at, created_at, updated_at`

// AssignedTicketRepository は割り当て済みチケットリポジトリのPostgreSQL実装
type AssignedTicketRepository struct {
	db *sqlx.DB
}

// NewAssignedTicketRepository はAssignedTicketRepositoryを作成する
func NewAssignedTicketRepository(db *sqlx.DB) *AssignedTicketRepository {
	return &AssignedTicketRepository{db: db}
}

// CreateBulk は複数のチケットをマルチバリューINSERTで一括作成する
func (r *AssignedTicketRepository) CreateBulk(ctx context.Context, tx transaction.Tx, tickets []*ticket.AssignedTicket) error {
	if len(tickets) == 0 {
		return nil
	}
	sqlxTx := UnwrapTx(tx)
	if sqlxTx == nil {
		return fmt.Errorf("トランザクションが不正です")
	}

	query := `INSERT INTO assigned_tickets (purchase_line_id, ticket_type_id, festival_id, code, status, created_at, updated_at) VALUES `
	args := make([]interface{}, 0, len(tickets)*7)
	placeholders := make([]string, 0, len(tickets))

	for i, t := range tickets {
		base := i * 7
		placeholders = append(placeholders, fmt.Sprintf("($%d, $%d, $%d, $%d, $%d, $%d, $%d)",
			base+1, base+2, base+3, base+4, base+5, base+6, base+7))
		args = append(args, t.PurchaseLineID, t.TicketTypeID, t.FestivalID, t.Code, string(t.Status), t.CreatedAt, t.UpdatedAt)
	}

	query += strings.Join(placeholders, ", ") + " RETURNING id"
	rows, err := sqlxTx.QueryContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("チケット一括作成に失敗しました: %w", err)
	}
	defer rows.Close()

	for i := 0; rows.Next(); i++ {
		if err := rows.Scan(&tickets[i].ID); err != nil {
			return fmt.Errorf("チケットID取得に失敗しました: %w", err)
		}
	}
	return rows.Err()
}

// GetByID はIDからチケットを取得する
func (r *AssignedTicketRepository) GetByID(ctx context.Context, id string) (*ticket.AssignedTicket, error) {
	var row assignedTicketRow
	query := `SELECT ` + assignedTicketColumns + ` FROM assigned_tickets WHERE id = $1`
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ticket.ErrTicketNotFound
		}
		return nil, fmt.Errorf("チケット取得に失敗しました: %w", err)
	}
	return row.toEntity(), nil
}

// GetByCode はQRコードのペイロードからチケットを取得する
func (r *AssignedTicketRepository) GetByCode(ctx context.Context, code string) (*ticket.AssignedTicket, error) {
	var row assignedTicketRow
	query := `SELECT ` + assignedTicketColumns + ` FROM assigned_tickets WHERE code = $1`
	if err := r.db.GetContext(ctx, &row, query, code); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ticket.ErrTicketNotFound
		}
		return nil, fmt.Errorf("チケット取得に失敗しました: %w", err)
	}
	return row.toEntity(), nil
}

// ListByPurchaseID は購入に属するチケット一覧を取得する
func (r *AssignedTicketRepository) ListByPurchaseID(ctx context.Context, purchaseID string) ([]*ticket.AssignedTicket, error) {
	var rows []assignedTicketRow
	query := `
		SELECT t.id, t.purchase_line_id, t.ticket_type_id, t.festival_id, t.code, t.status, t.attendee_id, t.nominated_at, t.used_at, t.created_at, t.updated_at
		FROM assigned_tickets t
		JOIN purchase_lines l ON l.id = t.purchase_line_id
		WHERE l.purchase_id = $1
		ORDER BY t.id
	`
	if err := r.db.SelectContext(ctx, &rows, query, purchaseID); err != nil {
		return nil, fmt.Errorf("チケット一覧取得に失敗しました: %w", err)
	}
	tickets := make([]*ticket.AssignedTicket, len(rows))
	for i, row := range rows {
		tickets[i] = row.toEntity()
	}
	return tickets, nil
}

// ListByFestivalID はフェスティバルのチケット一覧を取得する
func (r *AssignedTicketRepository) ListByFestivalID(ctx context.Context, festivalID string, limit, offset int) ([]*ticket.AssignedTicket, error) {
	var rows []assignedTicketRow
	query := `SELECT ` + assignedTicketColumns + ` FROM assigned_tickets WHERE festival_id = $1 ORDER BY created_at LIMIT $2 OFFSET $3`
	if err := r.db.SelectContext(ctx, &rows, query, festivalID, limit, offset); err != nil {
		return nil, fmt.Errorf("チケット一覧取得に失敗しました: %w", err)
	}
	tickets := make([]*ticket.AssignedTicket, len(rows))
	for i, row := range rows {
		tickets[i] = row.toEntity()
	}
	return tickets, nil
}

// Update はチケットの状態・記名を更新する
// 更新前ステータスを条件に含めた単一のUPDATEで、並行する遷移との競合を検出する
func (r *AssignedTicketRepository) Update(ctx context.Context, tx transaction.Tx, t *ticket.AssignedTicket, from ticket.Status) error {
	sqlxTx := UnwrapTx(tx)
	if sqlxTx == nil {
		return fmt.Errorf("トランザクションが不正です")
	}

	query := `UPDATE assigned_tickets SET status = $1, attendee_id = $2, nominated_at = $3, used_at = $4, updated_at = $5 WHERE id = $6 AND status = $7`
	result, err := sqlxTx.ExecContext(ctx, query, string(t.Status), t.AttendeeID, t.NominatedAt, t.UsedAt, t.UpdatedAt, t.ID, string(from))
	if err != nil {
		return fmt.Errorf("チケット更新に失敗しました: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		// 0件の場合は存在しないのか、他の操作に先を越されたのかを読み直して区別する
		var current string
		if err := sqlxTx.GetContext(ctx, &current, `SELECT status FROM assigned_tickets WHERE id = $1`, t.ID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ticket.ErrTicketNotFound
			}
			return fmt.Errorf("チケット状態の確認に失敗しました: %w", err)
		}
		return ticket.ErrTicketStateConflict
	}
	return nil
}

var _ ticket.AssignedRepository = (*AssignedTicketRepository)(nil)
