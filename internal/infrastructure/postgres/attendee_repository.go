package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/sanosuguru/go-festival-cashless/internal/domain/attendee"
	"github.com/sanosuguru/go-festival-cashless/internal/domain/transaction"
	"github.com/sanosuguru/go-festival-cashless/internal/pkg/pii"
)

type attendeeRow struct {
	ID        string    `db:"id"`
	Name      string    `db:"name"`
	Email     string    `db:"email"`
	EmailHash string    `db:"email_hash"`
	Phone     *string   `db:"phone"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// AttendeeRepository は参加者リポジトリのPostgreSQL実装
// 個人情報（氏名・メール・電話）は永続化境界で暗号化し、
// メールの一意性・検索は決定的ハッシュ列で担保する
type AttendeeRepository struct {
	db    *sqlx.DB
	codec pii.Codec
}

// NewAttendeeRepository はAttendeeRepositoryを作成する
func NewAttendeeRepository(db *sqlx.DB, codec pii.Codec) *AttendeeRepository {
	return &AttendeeRepository{db: db, codec: codec}
}

// Create は新しい参加者を作成する
func (r *AttendeeRepository) Create(ctx context.Context, tx transaction.Tx, a *attendee.Attendee) error {
	sqlxTx := UnwrapTx(tx)
	if sqlxTx == nil {
		return fmt.Errorf("トランザクションが不正です")
	}

	encName, err := r.codec.Encode(a.Name)
	if err != nil {
		return fmt.Errorf("氏名の暗号化に失敗しました: %w", err)
	}
	encEmail, err := r.codec.Encode(a.Email)
	if err != nil {
		return fmt.Errorf("メールアドレスの暗号化に失敗しました: %w", err)
	}
	var encPhone *string
	if a.Phone != "" {
		p, err := r.codec.Encode(a.Phone)
		if err != nil {
			return fmt.Errorf("電話番号の暗号化に失敗しました: %w", err)
		}
		encPhone = &p
	}

	query := `INSERT INTO attendees (name, email, email_hash, phone, created_at, updated_at) VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`
	if err := sqlxTx.QueryRowContext(ctx, query, encName, encEmail, pii.HashEmail(a.Email), encPhone, a.CreatedAt, a.UpdatedAt).Scan(&a.ID); err != nil {
		if pgErr, ok := err.(*pq.Error); ok && pgErr.Code == "23505" {
			return attendee.ErrEmailAlreadyRegistered
		}
		return fmt.Errorf("参加者作成に失敗しました: %w", err)
	}
	return nil
}

// GetByID はIDから参加者を取得する
func (r *AttendeeRepository) GetByID(ctx context.Context, id string) (*attendee.Attendee, error) {
	var row attendeeRow
	query := `SELECT id, name, email, email_hash, phone, created_at, updated_at FROM attendees WHERE id = $1`
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, attendee.ErrAttendeeNotFound
		}
		return nil, fmt.Errorf("参加者取得に失敗しました: %w", err)
	}
	return r.toEntity(&row)
}

// GetByEmail はメールアドレスから参加者を取得する（ハッシュ検索）
func (r *AttendeeRepository) GetByEmail(ctx context.Context, email string) (*attendee.Attendee, error) {
	var row attendeeRow
	query := `SELECT id, name, email, email_hash, phone, created_at, updated_at FROM attendees WHERE email_hash = $1`
	if err := r.db.GetContext(ctx, &row, query, pii.HashEmail(email)); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, attendee.ErrAttendeeNotFound
		}
		return nil, fmt.Errorf("参加者取得に失敗しました: %w", err)
	}
	return r.toEntity(&row)
}

func (r *AttendeeRepository) toEntity(row *attendeeRow) (*attendee.Attendee, error) {
	name, err := r.codec.Decode(row.Name)
	if err != nil {
		return nil, fmt.Errorf("氏名の復号に失敗しました: %w", err)
	}
	email, err := r.codec.Decode(row.Email)
	if err != nil {
		return nil, fmt.Errorf("メールアドレスの復号に失敗しました: %w", err)
	}
	var phone string
	if row.Phone != nil {
		phone, err = r.codec.Decode(*row.Phone)
		if err != nil {
			return nil, fmt.Errorf("電話番号の復号に失敗しました: %w", err)
		}
	}
	return &attendee.Attendee{
		ID:        row.ID,
		Name:      name,
		Email:     email,
		Phone:     phone,
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
	}, nil
}

var _ attendee.Repository = (*AttendeeRepository)(nil)
