package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/sanosuguru/go-festival-cashless/internal/domain/festival"
)

// festivalRow はDBの行を表す構造体
type festivalRow struct {
	ID          string    `db:"id"`
	Name        string    `db:"name"`
	Description *string   `db:"description"`
	Location    *string   `db:"location"`
	StartDate   time.Time `db:"start_date"`
	EndDate     time.Time `db:"end_date"`
	Status      string    `db:"status"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
	Version     int       `db:"version"`
}

func (r *festivalRow) toEntity() *festival.Festival {
	var desc, loc string
	if r.Description != nil {
		desc = *r.Description
	}
	if r.Location != nil {
		loc = *r.Location
	}
	return &festival.Festival{
		ID:          r.ID,
		Name:        r.Name,
		Description: desc,
		Location:    loc,
		StartDate:   r.StartDate,
		EndDate:     r.EndDate,
		Status:      festival.Status(r.Status),
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
		Version:     r.Version,
	}
}

// FestivalRepository はフェスティバルリポジトリのPostgreSQL実装
type FestivalRepository struct {
	db *sqlx.DB
}

// NewFestivalRepository はFestivalRepositoryを作成する
func NewFestivalRepository(db *sqlx.DB) *FestivalRepository {
	return &FestivalRepository{db: db}
}

// Create は新しいフェスティバルを作成する
func (r *FestivalRepository) Create(ctx context.Context, f *festival.Festival) error {
	query := `
		INSERT INTO festivals (name, description, location, start_date, end_date, status, created_at, updated_at, version)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id
	`
	var desc, loc *string
	if f.Description != "" {
		desc = &f.Description
	}
	if f.Location != "" {
		loc = &f.Location
	}

	err := r.db.QueryRowContext(ctx, query,
		f.Name, desc, loc, f.StartDate, f.EndDate, string(f.Status), f.CreatedAt, f.UpdatedAt, f.Version,
	).Scan(&f.ID)
	if err != nil {
		return fmt.Errorf("フェスティバル作成に失敗しました: %w", err)
	}
	return nil
}

// GetByID はIDからフェスティバルを取得する
func (r *FestivalRepository) GetByID(ctx context.Context, id string) (*festival.Festival, error) {
	query := `SELECT id, name, description, location, start_date, end_date, status, created_at, updated_at, version FROM festivals WHERE id = $1`

	var row festivalRow
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, festival.ErrFestivalNotFound
		}
		return nil, fmt.Errorf("フェスティバル取得に失敗しました: %w", err)
	}
	return row.toEntity(), nil
}

// List はフェスティバル一覧を取得する
func (r *FestivalRepository) List(ctx context.Context, limit, offset int) ([]*festival.Festival, error) {
	query := `SELECT id, name, description, location, start_date, end_date, status, created_at, updated_at, version FROM festivals ORDER BY start_date DESC LIMIT $1 OFFSET $2`

	var rows []festivalRow
	if err := r.db.SelectContext(ctx, &rows, query, limit, offset); err != nil {
		return nil, fmt.Errorf("フェスティバル一覧取得に失敗しました: %w", err)
	}
	festivals := make([]*festival.Festival, len(rows))
	for i, row := range rows {
		festivals[i] = row.toEntity()
	}
	return festivals, nil
}

// Update はフェスティバルを更新する（楽観的ロック）
func (r *FestivalRepository) Update(ctx context.Context, f *festival.Festival) error {
	query := `
		UPDATE festivals
		SET name = $1, description = $2, location = $3, start_date = $4, end_date = $5, status = $6, updated_at = $7, version = version + 1
		WHERE id = $8 AND version = $9
	`
	var desc, loc *string
	if f.Description != "" {
		desc = &f.Description
	}
	if f.Location != "" {
		loc = &f.Location
	}

	result, err := r.db.ExecContext(ctx, query,
		f.Name, desc, loc, f.StartDate, f.EndDate, string(f.Status), time.Now(), f.ID, f.Version,
	)
	if err != nil {
		return fmt.Errorf("フェスティバル更新に失敗しました: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return festival.ErrFestivalNotFound
	}
	f.Version++
	return nil
}

var _ festival.Repository = (*FestivalRepository)(nil)
