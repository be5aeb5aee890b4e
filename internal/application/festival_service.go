package application

import (
	"context"
	"fmt"

	"github.com/sanosuguru/go-festival-cashless/internal/domain/festival"
)

type FestivalService struct {
	festivalRepo festival.Repository
}

func NewFestivalService(fr festival.Repository) *FestivalService {
	return &FestivalService{festivalRepo: fr}
}

func (s *FestivalService) CreateFestival(ctx context.Context, f *festival.Festival) (*festival.Festival, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}
	if err := s.festivalRepo.Create(ctx, f); err != nil {
		return nil, fmt.Errorf("フェスティバル作成に失敗: %w", err)
	}
	return f, nil
}

func (s *FestivalService) GetFestival(ctx context.Context, id string) (*festival.Festival, error) {
	return s.festivalRepo.GetByID(ctx, id)
}

func (s *FestivalService) ListFestivals(ctx context.Context, limit, offset int) ([]*festival.Festival, error) {
	if limit <= 0 {
		limit = 20
	}
	return s.festivalRepo.List(ctx, limit, offset)
}

// ChangeStatus はフェスティバルの状態遷移を行う
// 許可されない遷移はドメイン層で拒否される
func (s *FestivalService) ChangeStatus(ctx context.Context, id string, next festival.Status) (*festival.Festival, error) {
	f, err := s.festivalRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := f.ChangeStatus(next); err != nil {
		return nil, err
	}
	if err := s.festivalRepo.Update(ctx, f); err != nil {
		return nil, fmt.Errorf("フェスティバル更新に失敗: %w", err)
	}
	return f, nil
}
