package handler

import (
	"context"

	"github.com/sanosuguru/go-festival-cashless/internal/application"
	"github.com/sanosuguru/go-festival-cashless/internal/domain/festival"
	"github.com/sanosuguru/go-festival-cashless/internal/domain/stats"
	"github.com/sanosuguru/go-festival-cashless/internal/domain/ticket"
	"github.com/sanosuguru/go-festival-cashless/internal/domain/wristband"
)

// FestivalServiceInterface はフェスティバルサービスのインターフェース
type FestivalServiceInterface interface {
	CreateFestival(ctx context.Context, f *festival.Festival) (*festival.Festival, error)
	GetFestival(ctx context.Context, id string) (*festival.Festival, error)
	ListFestivals(ctx context.Context, limit, offset int) ([]*festival.Festival, error)
	ChangeStatus(ctx context.Context, id string, next festival.Status) (*festival.Festival, error)
}

// TicketTypeServiceInterface は券種サービスのインターフェース
type TicketTypeServiceInterface interface {
	CreateTicketType(ctx context.Context, t *ticket.TicketType) (*ticket.TicketType, error)
	GetTicketType(ctx context.Context, id string) (*ticket.TicketType, error)
	ListTicketTypes(ctx context.Context, festivalID string) ([]*ticket.TicketType, error)
}

// PurchaseServiceInterface は購入サービスのインターフェース
type PurchaseServiceInterface interface {
	CreatePurchase(ctx context.Context, input application.CreatePurchaseInput) (*ticket.Purchase, error)
	GetPurchase(ctx context.Context, id string) (*ticket.Purchase, error)
	ListPurchaseTickets(ctx context.Context, purchaseID string) ([]*ticket.AssignedTicket, error)
}

// TicketServiceInterface はチケットサービスのインターフェース
type TicketServiceInterface interface {
	Nominate(ctx context.Context, input application.NominateInput) (*ticket.AssignedTicket, error)
	CheckIn(ctx context.Context, code string) (*ticket.AssignedTicket, error)
	CancelTicket(ctx context.Context, id string) (*ticket.AssignedTicket, error)
	GetTicket(ctx context.Context, id string) (*ticket.AssignedTicket, error)
	GetTicketByCode(ctx context.Context, code string) (*ticket.AssignedTicket, error)
	RenderQR(ctx context.Context, id string, size int) ([]byte, error)
}

// WristbandServiceInterface はリストバンドサービスのインターフェース
type WristbandServiceInterface interface {
	Bind(ctx context.Context, input application.BindInput) (*wristband.Wristband, error)
	TopUp(ctx context.Context, input application.TopUpInput) (*wristband.Wristband, error)
	Spend(ctx context.Context, input application.SpendInput) (*wristband.Wristband, error)
	GetWristband(ctx context.Context, uid string) (*wristband.Wristband, error)
	GetLedger(ctx context.Context, uid string) ([]*wristband.BalanceTransaction, error)
}

// StatsServiceInterface は集計サービスのインターフェース
type StatsServiceInterface interface {
	GetStats(ctx context.Context, festivalID string) (*stats.FestivalStats, error)
	Recompute(ctx context.Context, festivalID string) (*stats.FestivalStats, error)
}
