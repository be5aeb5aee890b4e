package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/sanosuguru/go-festival-cashless/internal/domain/ticket"
	"github.com/sanosuguru/go-festival-cashless/internal/domain/transaction"
	"github.com/sanosuguru/go-festival-cashless/internal/domain/wristband"
	redislock "github.com/sanosuguru/go-festival-cashless/internal/infrastructure/redis"
	"github.com/sanosuguru/go-festival-cashless/internal/pkg/logger"
	"github.com/sanosuguru/go-festival-cashless/internal/pkg/metrics"
)

// WristbandService はNFCリストバンドの紐付けと残高操作を扱う
// 同一UIDへの操作は分散ロックで直列化し、残高の減算は
// 単一文の条件付きUPDATEで二重に保護する
type WristbandService struct {
	txManager     transaction.Manager
	wristbandRepo wristband.Repository
	ledgerRepo    wristband.LedgerRepository
	assignedRepo  ticket.AssignedRepository
	lockManager   *redislock.LockManager
	lockPolicy    LockPolicy
}

func NewWristbandService(
	tm transaction.Manager,
	wr wristband.Repository,
	lr wristband.LedgerRepository,
	ar ticket.AssignedRepository,
	lm *redislock.LockManager,
	policy LockPolicy,
) *WristbandService {
	if policy.TTL == 0 {
		policy = DefaultLockPolicy
	}
	return &WristbandService{
		txManager:     tm,
		wristbandRepo: wr,
		ledgerRepo:    lr,
		assignedRepo:  ar,
		lockManager:   lm,
		lockPolicy:    policy,
	}
}

type BindInput struct {
	UID      string
	TicketID string
}

// Bind はリストバンドをチケットに紐付ける
// 未登録のUIDは遅延作成し、同一チケットへの再実行は冪等に成功する
func (s *WristbandService) Bind(ctx context.Context, input BindInput) (*wristband.Wristband, error) {
	unlock, err := s.lockUID(ctx, input.UID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	t, err := s.assignedRepo.GetByID(ctx, input.TicketID)
	if err != nil {
		return nil, err
	}
	if !t.IsNominated() {
		return nil, ticket.ErrTicketNotNominated
	}

	tx, err := s.txManager.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("トランザクション開始に失敗: %w", err)
	}
	defer tx.Rollback()

	w, err := s.wristbandRepo.GetByUID(ctx, input.UID)
	if errors.Is(err, wristband.ErrWristbandNotFound) {
		// 初回タッチで遅延作成
		w = wristband.NewWristband(input.UID, t.FestivalID)
		if err := w.Validate(); err != nil {
			return nil, err
		}
		if err := s.wristbandRepo.Create(ctx, tx, w); err != nil {
			return nil, err
		}
	} else if err != nil {
		return nil, fmt.Errorf("リストバンド取得に失敗: %w", err)
	}

	// リストバンドはフェスティバル単位にスコープされる
	if w.FestivalID != t.FestivalID {
		return nil, wristband.ErrFestivalMismatch
	}

	// 同一チケットへの再紐付けは冪等に成功する
	if w.IsBoundTo(t.ID) {
		if err := tx.Commit(); err != nil {
			return nil, fmt.Errorf("コミットに失敗: %w", err)
		}
		return w, nil
	}

	if err := w.Bind(t.ID); err != nil {
		return nil, err
	}
	if err := s.wristbandRepo.UpdateBinding(ctx, tx, w); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("コミットに失敗: %w", err)
	}

	logger.Info("リストバンドを紐付けました",
		zap.String("uid", w.UID),
		zap.String("ticket_id", t.ID),
	)
	return w, nil
}

type TopUpInput struct {
	UID    string
	Amount decimal.Decimal
	Method string
}

// TopUp はリストバンドにチャージする
// 台帳の追記と残高キャッシュの更新を同一トランザクションで行う
func (s *WristbandService) TopUp(ctx context.Context, input TopUpInput) (*wristband.Wristband, error) {
	if !input.Amount.IsPositive() {
		return nil, wristband.ErrAmountNotPositive
	}

	unlock, err := s.lockUID(ctx, input.UID)
	if err != nil {
		s.countBalanceOp("topup", "conflict")
		return nil, err
	}
	defer unlock()

	w, err := s.wristbandRepo.GetByUID(ctx, input.UID)
	if err != nil {
		return nil, err
	}
	if !w.Active {
		return nil, wristband.ErrWristbandInactive
	}

	tx, err := s.txManager.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("トランザクション開始に失敗: %w", err)
	}
	defer tx.Rollback()

	entry := wristband.NewTopUp(w.ID, w.FestivalID, input.Amount, input.Method)
	if err := s.ledgerRepo.Append(ctx, tx, entry); err != nil {
		s.countBalanceOp("topup", "error")
		return nil, err
	}
	newBalance, err := s.wristbandRepo.AddBalance(ctx, tx, w.ID, input.Amount)
	if err != nil {
		s.countBalanceOp("topup", "error")
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("コミットに失敗: %w", err)
	}

	w.Balance = newBalance
	s.countBalanceOp("topup", "success")
	logger.Info("チャージが完了しました",
		zap.String("uid", w.UID),
		zap.String("amount", input.Amount.String()),
		zap.String("balance", newBalance.String()),
	)
	return w, nil
}

type SpendInput struct {
	UID         string
	FestivalID  string
	Amount      decimal.Decimal
	Description string
}

// Spend はリストバンドの残高から減算する
// 決済端末のフェスティバルとリストバンドのフェスティバルが一致しない場合は拒否する
// 残高不足の場合は不足額を含む InsufficientFundsError を返し、台帳には何も残さない
func (s *WristbandService) Spend(ctx context.Context, input SpendInput) (*wristband.Wristband, error) {
	if !input.Amount.IsPositive() {
		return nil, wristband.ErrAmountNotPositive
	}

	unlock, err := s.lockUID(ctx, input.UID)
	if err != nil {
		s.countBalanceOp("spend", "conflict")
		return nil, err
	}
	defer unlock()

	w, err := s.wristbandRepo.GetByUID(ctx, input.UID)
	if err != nil {
		return nil, err
	}
	if !w.Active {
		return nil, wristband.ErrWristbandInactive
	}
	if w.FestivalID != input.FestivalID {
		return nil, wristband.ErrFestivalMismatch
	}

	tx, err := s.txManager.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("トランザクション開始に失敗: %w", err)
	}
	defer tx.Rollback()

	// 残高チェックと減算を単一文で行う（失敗時は台帳に追記しない）
	newBalance, err := s.wristbandRepo.DeductBalance(ctx, tx, w.ID, input.Amount)
	if err != nil {
		if errors.Is(err, wristband.ErrInsufficientFunds) {
			s.countBalanceOp("spend", "insufficient")
		} else {
			s.countBalanceOp("spend", "error")
		}
		return nil, err
	}
	entry := wristband.NewSpend(w.ID, w.FestivalID, input.Amount, input.Description)
	if err := s.ledgerRepo.Append(ctx, tx, entry); err != nil {
		s.countBalanceOp("spend", "error")
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("コミットに失敗: %w", err)
	}

	w.Balance = newBalance
	s.countBalanceOp("spend", "success")
	logger.Info("決済が完了しました",
		zap.String("uid", w.UID),
		zap.String("amount", input.Amount.String()),
		zap.String("balance", newBalance.String()),
	)
	return w, nil
}

// GetWristband はUIDからリストバンドを取得する（残高照会）
func (s *WristbandService) GetWristband(ctx context.Context, uid string) (*wristband.Wristband, error) {
	return s.wristbandRepo.GetByUID(ctx, uid)
}

// GetLedger はリストバンドの台帳をコミット順で返す
func (s *WristbandService) GetLedger(ctx context.Context, uid string) ([]*wristband.BalanceTransaction, error) {
	w, err := s.wristbandRepo.GetByUID(ctx, uid)
	if err != nil {
		return nil, err
	}
	return s.ledgerRepo.ListByWristbandID(ctx, w.ID)
}

// lockUID は同一UIDへの操作を直列化する
// リトライ上限に達した場合は一時的な競合として呼び出し側に返す
func (s *WristbandService) lockUID(ctx context.Context, uid string) (func(), error) {
	if s.lockManager == nil {
		return func() {}, nil
	}
	lockStart := time.Now()
	lock, err := s.lockManager.AcquireLockWithRetry(
		ctx, "wristband:"+uid, s.lockPolicy.TTL, s.lockPolicy.MaxRetries, s.lockPolicy.RetryDelay)
	if err != nil {
		observeLockDuration("wristband_uid", "failed", lockStart)
		if errors.Is(err, redislock.ErrLockNotAcquired) {
			return nil, ErrTransientConflict
		}
		return nil, fmt.Errorf("ロック取得に失敗: %w", err)
	}
	observeLockDuration("wristband_uid", "acquired", lockStart)
	return func() { lock.Release(ctx) }, nil
}

func (s *WristbandService) countBalanceOp(kind, status string) {
	if m := metrics.Get(); m != nil {
		m.BalanceOperationsTotal.WithLabelValues(kind, status).Inc()
	}
}
