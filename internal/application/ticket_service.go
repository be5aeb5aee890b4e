package application

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/sanosuguru/go-festival-cashless/internal/domain/attendee"
	"github.com/sanosuguru/go-festival-cashless/internal/domain/ticket"
	"github.com/sanosuguru/go-festival-cashless/internal/domain/transaction"
	"github.com/sanosuguru/go-festival-cashless/internal/pkg/logger"
	"github.com/sanosuguru/go-festival-cashless/internal/pkg/qrcode"
)

// TicketService は発行済みチケットの記名・入場・キャンセルを扱う
type TicketService struct {
	txManager    transaction.Manager
	assignedRepo ticket.AssignedRepository
	attendeeRepo attendee.Repository
	typeRepo     ticket.TypeRepository
}

func NewTicketService(
	tm transaction.Manager,
	ar ticket.AssignedRepository,
	atr attendee.Repository,
	tr ticket.TypeRepository,
) *TicketService {
	return &TicketService{
		txManager:    tm,
		assignedRepo: ar,
		attendeeRepo: atr,
		typeRepo:     tr,
	}
}

type NominateInput struct {
	TicketID string
	Name     string
	Email    string
	Phone    string
}

// Nominate はチケットを参加者に記名する
// 参加者はメールアドレスで検索し、存在しなければ同一トランザクションで作成する
func (s *TicketService) Nominate(ctx context.Context, input NominateInput) (*ticket.AssignedTicket, error) {
	t, err := s.assignedRepo.GetByID(ctx, input.TicketID)
	if err != nil {
		return nil, err
	}

	tx, err := s.txManager.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("トランザクション開始に失敗: %w", err)
	}
	defer tx.Rollback()

	// 参加者の検索または作成
	at, err := s.attendeeRepo.GetByEmail(ctx, input.Email)
	if errors.Is(err, attendee.ErrAttendeeNotFound) {
		at = attendee.NewAttendee(input.Name, input.Email, input.Phone)
		if err := at.Validate(); err != nil {
			return nil, err
		}
		if err := s.attendeeRepo.Create(ctx, tx, at); err != nil {
			return nil, err
		}
	} else if err != nil {
		return nil, fmt.Errorf("参加者検索に失敗: %w", err)
	}

	prev := t.Status
	if err := t.Nominate(at.ID); err != nil {
		return nil, err
	}
	if err := s.assignedRepo.Update(ctx, tx, t, prev); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("コミットに失敗: %w", err)
	}

	logger.Info("チケットを記名しました",
		zap.String("ticket_id", t.ID),
		zap.String("attendee_id", at.ID),
	)
	return t, nil
}

// CheckIn は入場スキャンを処理し、チケットを使用済みにする
// 記名済みのチケットのみ入場でき、使用済み状態は終端となる
func (s *TicketService) CheckIn(ctx context.Context, code string) (*ticket.AssignedTicket, error) {
	t, err := s.assignedRepo.GetByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	prev := t.Status
	if err := t.MarkUsed(); err != nil {
		return nil, err
	}

	tx, err := s.txManager.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("トランザクション開始に失敗: %w", err)
	}
	defer tx.Rollback()

	if err := s.assignedRepo.Update(ctx, tx, t, prev); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("コミットに失敗: %w", err)
	}

	logger.Info("入場を記録しました", zap.String("ticket_id", t.ID))
	return t, nil
}

// CancelTicket はチケットをキャンセルし、同一トランザクションで在庫を戻す
func (s *TicketService) CancelTicket(ctx context.Context, id string) (*ticket.AssignedTicket, error) {
	t, err := s.assignedRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	prev := t.Status
	if err := t.Cancel(); err != nil {
		return nil, err
	}

	tx, err := s.txManager.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("トランザクション開始に失敗: %w", err)
	}
	defer tx.Rollback()

	// 更新前ステータスを条件にすることで、並行するキャンセルや入場との
	// 競合時に在庫が二重に戻らないようにする
	if err := s.assignedRepo.Update(ctx, tx, t, prev); err != nil {
		return nil, err
	}
	if err := s.typeRepo.IncrementStock(ctx, tx, t.TicketTypeID, 1); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("コミットに失敗: %w", err)
	}

	logger.Info("チケットをキャンセルしました", zap.String("ticket_id", t.ID))
	return t, nil
}

func (s *TicketService) GetTicket(ctx context.Context, id string) (*ticket.AssignedTicket, error) {
	return s.assignedRepo.GetByID(ctx, id)
}

func (s *TicketService) GetTicketByCode(ctx context.Context, code string) (*ticket.AssignedTicket, error) {
	return s.assignedRepo.GetByCode(ctx, code)
}

// RenderQR はチケットのQRコードをPNG画像として返す
// 表示専用であり、チケットの状態には影響しない
func (s *TicketService) RenderQR(ctx context.Context, id string, size int) ([]byte, error) {
	t, err := s.assignedRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return qrcode.Render(t.Code, size)
}
