package ticket

import "time"

// Status は割り当て済みチケットの状態を表す
type Status string

const (
	StatusUnassigned Status = "unassigned"
	StatusNominated  Status = "nominated"
	StatusUsed       Status = "used"
	StatusCancelled  Status = "cancelled"
)

// AssignedTicket は販売された1枚単位のチケットを表す
// Code はQRペイロードとなる不透明な一意コードで、発行後は不変・再利用不可
// 状態遷移は UNASSIGNED → NOMINATED → USED の前進のみ（CANCELLED は終端）
type AssignedTicket struct {
	ID             string
	PurchaseLineID string
	TicketTypeID   string
	FestivalID     string
	Code           string
	Status         Status
	AttendeeID     *string
	NominatedAt    *time.Time
	UsedAt         *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// NewAssignedTicket は UNASSIGNED 状態の新しいチケットを作成する
func NewAssignedTicket(purchaseLineID, ticketTypeID, festivalID, code string) *AssignedTicket {
	now := time.Now()
	return &AssignedTicket{
		PurchaseLineID: purchaseLineID,
		TicketTypeID:   ticketTypeID,
		FestivalID:     festivalID,
		Code:           code,
		Status:         StatusUnassigned,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

// IsNominated はチケットが参加者に記名済みかを返す
func (t *AssignedTicket) IsNominated() bool {
	return t.Status == StatusNominated && t.AttendeeID != nil
}

// Nominate はチケットを参加者に記名する
// UNASSIGNED からの記名と、使用前の NOMINATED からの記名変更を許可する
func (t *AssignedTicket) Nominate(attendeeID string) error {
	switch t.Status {
	case StatusUnassigned, StatusNominated:
		now := time.Now()
		t.AttendeeID = &attendeeID
		t.NominatedAt = &now
		t.Status = StatusNominated
		t.UpdatedAt = now
		return nil
	case StatusUsed:
		return ErrTicketAlreadyUsed
	default:
		return ErrTicketCancelled
	}
}

// MarkUsed は入場スキャン時にチケットを使用済みにする（終端状態）
func (t *AssignedTicket) MarkUsed() error {
	switch t.Status {
	case StatusNominated:
		now := time.Now()
		t.Status = StatusUsed
		t.UsedAt = &now
		t.UpdatedAt = now
		return nil
	case StatusUsed:
		return ErrTicketAlreadyUsed
	case StatusCancelled:
		return ErrTicketCancelled
	default:
		return ErrTicketNotNominated
	}
}

// Cancel はチケットをキャンセルする（終端状態、在庫は呼び出し側で戻す）
func (t *AssignedTicket) Cancel() error {
	switch t.Status {
	case StatusUnassigned, StatusNominated:
		t.Status = StatusCancelled
		t.UpdatedAt = time.Now()
		return nil
	case StatusUsed:
		return ErrTicketAlreadyUsed
	default:
		return ErrTicketCancelled
	}
}
