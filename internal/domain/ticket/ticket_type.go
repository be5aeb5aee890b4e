package ticket

import (
	"time"

	"github.com/shopspring/decimal"
)

// TicketType はフェスティバル内の購入可能な券種を表す
// Stock は購入オーケストレーター以外から変更してはならない
type TicketType struct {
	ID                 string
	FestivalID         string
	Name               string
	Description        string
	Price              decimal.Decimal
	Stock              int
	RequiresNomination bool
	CreatedAt          time.Time
	UpdatedAt          time.Time
	Version            int // 楽観的ロック用
}

// NewTicketType は新しい券種を作成する
func NewTicketType(festivalID, name, description string, price decimal.Decimal, stock int, requiresNomination bool) *TicketType {
	now := time.Now()
	return &TicketType{
		FestivalID:         festivalID,
		Name:               name,
		Description:        description,
		Price:              price,
		Stock:              stock,
		RequiresNomination: requiresNomination,
		CreatedAt:          now,
		UpdatedAt:          now,
		Version:            0,
	}
}

// Validate は券種の検証を行う
func (t *TicketType) Validate() error {
	if t.FestivalID == "" {
		return ErrFestivalIDRequired
	}
	if t.Name == "" {
		return ErrTicketTypeNameRequired
	}
	if t.Price.IsNegative() {
		return ErrInvalidPrice
	}
	if t.Stock < 0 {
		return ErrInvalidStock
	}
	return nil
}
