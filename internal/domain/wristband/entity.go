package wristband

import (
	"time"

	"github.com/shopspring/decimal"
)

// Wristband はキャッシュレス決済用のNFCリストバンドを表す
// 1本のリストバンドは同時に1枚の記名済みチケットにのみ紐付き、
// フェスティバル単位にスコープされる
// Balance は台帳（BalanceTransaction）から常に再計算可能なキャッシュ値で、
// 台帳の追記と同一トランザクションで更新される
type Wristband struct {
	ID               string
	UID              string
	FestivalID       string
	AssignedTicketID *string
	Balance          decimal.Decimal
	Active           bool
	BoundAt          *time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
	Version          int // 楽観的ロック用
}

// NewWristband は残高0・有効状態の新しいリストバンドを作成する
func NewWristband(uid, festivalID string) *Wristband {
	now := time.Now()
	return &Wristband{
		UID:        uid,
		FestivalID: festivalID,
		Balance:    decimal.Zero,
		Active:     true,
		CreatedAt:  now,
		UpdatedAt:  now,
		Version:    0,
	}
}

// IsBound はチケットに紐付いているかを返す
func (w *Wristband) IsBound() bool {
	return w.AssignedTicketID != nil
}

// IsBoundTo は指定チケットに紐付いているかを返す
func (w *Wristband) IsBoundTo(ticketID string) bool {
	return w.AssignedTicketID != nil && *w.AssignedTicketID == ticketID
}

// Bind はチケットへの紐付けを記録する
// 別のチケットに紐付け済みの場合は AlreadyBoundError を返す
func (w *Wristband) Bind(ticketID string) error {
	if !w.Active {
		return ErrWristbandInactive
	}
	if w.AssignedTicketID != nil && *w.AssignedTicketID != ticketID {
		return &AlreadyBoundError{UID: w.UID, BoundTicketID: *w.AssignedTicketID}
	}
	now := time.Now()
	w.AssignedTicketID = &ticketID
	w.BoundAt = &now
	w.Active = true
	w.UpdatedAt = now
	return nil
}

// Validate はリストバンドの検証を行う
func (w *Wristband) Validate() error {
	if w.UID == "" {
		return ErrUIDRequired
	}
	if w.FestivalID == "" {
		return ErrFestivalIDRequired
	}
	if w.Balance.IsNegative() {
		return ErrNegativeBalance
	}
	return nil
}
