package application

import (
	"context"
	"fmt"

	"github.com/sanosuguru/go-festival-cashless/internal/domain/festival"
	"github.com/sanosuguru/go-festival-cashless/internal/domain/ticket"
)

type TicketTypeService struct {
	typeRepo     ticket.TypeRepository
	festivalRepo festival.Repository
}

func NewTicketTypeService(tr ticket.TypeRepository, fr festival.Repository) *TicketTypeService {
	return &TicketTypeService{typeRepo: tr, festivalRepo: fr}
}

// CreateTicketType はフェスティバルに券種を追加する
// 公開後の券種追加も許可する（追加販売）
func (s *TicketTypeService) CreateTicketType(ctx context.Context, t *ticket.TicketType) (*ticket.TicketType, error) {
	if err := t.Validate(); err != nil {
		return nil, err
	}
	if _, err := s.festivalRepo.GetByID(ctx, t.FestivalID); err != nil {
		return nil, err
	}
	if err := s.typeRepo.Create(ctx, t); err != nil {
		return nil, fmt.Errorf("券種作成に失敗: %w", err)
	}
	return t, nil
}

func (s *TicketTypeService) GetTicketType(ctx context.Context, id string) (*ticket.TicketType, error) {
	return s.typeRepo.GetByID(ctx, id)
}

func (s *TicketTypeService) ListTicketTypes(ctx context.Context, festivalID string) ([]*ticket.TicketType, error) {
	if _, err := s.festivalRepo.GetByID(ctx, festivalID); err != nil {
		return nil, err
	}
	return s.typeRepo.ListByFestivalID(ctx, festivalID)
}
