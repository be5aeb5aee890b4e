package application

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/sanosuguru/go-festival-cashless/internal/domain/festival"
	"github.com/sanosuguru/go-festival-cashless/internal/domain/ticket"
	"github.com/sanosuguru/go-festival-cashless/internal/domain/transaction"
	"github.com/sanosuguru/go-festival-cashless/internal/infrastructure/mail"
	redislock "github.com/sanosuguru/go-festival-cashless/internal/infrastructure/redis"
	"github.com/sanosuguru/go-festival-cashless/internal/pkg/logger"
	"github.com/sanosuguru/go-festival-cashless/internal/pkg/metrics"
	"github.com/sanosuguru/go-festival-cashless/internal/pkg/qrcode"
)

// PaymentConfirmer は決済ゲートウェイでの決済完了を検証する
type PaymentConfirmer interface {
	// Confirm は決済参照IDを照会し、完了済みかつ金額一致であることを確認する
	Confirm(ctx context.Context, paymentRef string, amount decimal.Decimal) error
}

// LockPolicy は分散ロックのリトライポリシー
type LockPolicy struct {
	TTL        time.Duration
	MaxRetries int
	RetryDelay time.Duration
}

// DefaultLockPolicy は設定が無い場合のフォールバック
var DefaultLockPolicy = LockPolicy{
	TTL:        10 * time.Second,
	MaxRetries: 3,
	RetryDelay: 100 * time.Millisecond,
}

type PurchaseService struct {
	txManager    transaction.Manager
	typeRepo     ticket.TypeRepository
	purchaseRepo ticket.PurchaseRepository
	assignedRepo ticket.AssignedRepository
	festivalRepo festival.Repository
	confirmer    PaymentConfirmer
	lockManager  *redislock.LockManager
	lockPolicy   LockPolicy
	mailer       *mail.Mailer
}

func NewPurchaseService(
	tm transaction.Manager,
	tr ticket.TypeRepository,
	pr ticket.PurchaseRepository,
	ar ticket.AssignedRepository,
	fr festival.Repository,
	pc PaymentConfirmer,
	lm *redislock.LockManager,
	policy LockPolicy,
	mailer *mail.Mailer,
) *PurchaseService {
	if policy.TTL == 0 {
		policy = DefaultLockPolicy
	}
	return &PurchaseService{
		txManager:    tm,
		typeRepo:     tr,
		purchaseRepo: pr,
		assignedRepo: ar,
		festivalRepo: fr,
		confirmer:    pc,
		lockManager:  lm,
		lockPolicy:   policy,
		mailer:       mailer,
	}
}

type PurchaseItem struct {
	TicketTypeID string
	Quantity     int
}

type CreatePurchaseInput struct {
	FestivalID string
	BuyerEmail string
	PaymentRef string
	Items      []PurchaseItem
}

// CreatePurchase は購入オーケストレーションを実行する
// 決済検証はトランザクションの外で行い、在庫の減算・購入・チケット発行を
// 単一トランザクションでコミットする。決済参照IDは冪等性キーを兼ねる
func (s *PurchaseService) CreatePurchase(ctx context.Context, input CreatePurchaseInput) (*ticket.Purchase, error) {
	// 冪等性チェック
	existing, err := s.purchaseRepo.GetByPaymentRef(ctx, input.PaymentRef)
	if err == nil {
		logger.Info("既存の購入を返却（冪等）", zap.String("payment_ref", input.PaymentRef))
		return existing, nil
	}
	if !errors.Is(err, ticket.ErrPurchaseNotFound) {
		return nil, fmt.Errorf("冪等性チェックに失敗: %w", err)
	}

	// フェスティバル確認
	fest, err := s.festivalRepo.GetByID(ctx, input.FestivalID)
	if err != nil {
		return nil, err
	}
	if !fest.IsPublished() {
		return nil, festival.ErrFestivalNotPublished
	}

	// 券種確認と明細の構築（価格は予約時点のスナップショット）
	lines := make([]*ticket.PurchaseLine, 0, len(input.Items))
	for _, item := range input.Items {
		tt, err := s.typeRepo.GetByID(ctx, item.TicketTypeID)
		if err != nil {
			return nil, err
		}
		if tt.FestivalID != input.FestivalID {
			return nil, ticket.ErrTicketTypeNotFound
		}
		lines = append(lines, &ticket.PurchaseLine{
			TicketTypeID: tt.ID,
			Quantity:     item.Quantity,
			UnitPrice:    tt.Price,
		})
	}

	p := ticket.NewPurchase(input.BuyerEmail, input.PaymentRef, lines)
	if err := p.Validate(); err != nil {
		return nil, err
	}

	// 決済検証（トランザクションの外）
	// 決済が通らない限り在庫・購入レコードには一切触れない
	if err := s.confirmer.Confirm(ctx, input.PaymentRef, p.Total); err != nil {
		s.countPurchase("payment_failed")
		return nil, err
	}

	// 分散ロックを取得（券種IDをソートしてデッドロック防止）
	lockKey := s.buildStockLockKey(input.Items)
	if s.lockManager != nil {
		lockStart := time.Now()
		lock, err := s.lockManager.AcquireLockWithRetry(
			ctx, lockKey, s.lockPolicy.TTL, s.lockPolicy.MaxRetries, s.lockPolicy.RetryDelay)
		if err != nil {
			observeLockDuration("purchase_stock", "failed", lockStart)
			if errors.Is(err, redislock.ErrLockNotAcquired) {
				s.countPurchase("conflict")
				return nil, ErrTransientConflict
			}
			return nil, fmt.Errorf("ロック取得に失敗: %w", err)
		}
		observeLockDuration("purchase_stock", "acquired", lockStart)
		defer lock.Release(ctx)
	}

	// トランザクション
	tx, err := s.txManager.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("トランザクション開始に失敗: %w", err)
	}
	defer tx.Rollback()

	remainingStock := make(map[string]int, len(lines))
	for _, line := range lines {
		remaining, err := s.typeRepo.DecrementStock(ctx, tx, line.TicketTypeID, line.Quantity)
		if err != nil {
			if errors.Is(err, ticket.ErrStockInsufficient) {
				s.countPurchase("sold_out")
			}
			return nil, err
		}
		remainingStock[line.TicketTypeID] = remaining
	}

	if err := s.purchaseRepo.Create(ctx, tx, p); err != nil {
		s.countPurchase("error")
		return nil, err
	}

	// 明細の数量分のチケットを未記名状態で発行する
	var issued []*ticket.AssignedTicket
	for _, line := range p.Lines {
		for i := 0; i < line.Quantity; i++ {
			issued = append(issued, ticket.NewAssignedTicket(
				line.ID, line.TicketTypeID, input.FestivalID, qrcode.NewTicketCode()))
		}
	}
	if err := s.assignedRepo.CreateBulk(ctx, tx, issued); err != nil {
		s.countPurchase("error")
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("コミットに失敗: %w", err)
	}

	s.countPurchase("success")
	if m := metrics.Get(); m != nil {
		// 減算後にDBが返した実残数を記録する
		for id, remaining := range remainingStock {
			m.TicketStockRemaining.WithLabelValues(id).Set(float64(remaining))
		}
	}

	logger.Info("購入が完了しました",
		zap.String("purchase_id", p.ID),
		zap.String("payment_ref", p.PaymentRef),
		zap.Int("tickets", len(issued)),
	)

	s.mailer.SendAsync(p.BuyerEmail, fest.Name, len(issued))
	return p, nil
}

func (s *PurchaseService) GetPurchase(ctx context.Context, id string) (*ticket.Purchase, error) {
	return s.purchaseRepo.GetByID(ctx, id)
}

func (s *PurchaseService) ListPurchaseTickets(ctx context.Context, purchaseID string) ([]*ticket.AssignedTicket, error) {
	if _, err := s.purchaseRepo.GetByID(ctx, purchaseID); err != nil {
		return nil, err
	}
	return s.assignedRepo.ListByPurchaseID(ctx, purchaseID)
}

// buildStockLockKey は券種IDからロックキーを生成（ソートしてデッドロック防止）
func (s *PurchaseService) buildStockLockKey(items []PurchaseItem) string {
	ids := make([]string, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.TicketTypeID)
	}
	sort.Strings(ids)
	return "stock:" + strings.Join(ids, ",")
}

func (s *PurchaseService) countPurchase(status string) {
	if m := metrics.Get(); m != nil {
		m.PurchasesTotal.WithLabelValues(status).Inc()
	}
}

// observeLockDuration は分散ロック取得の所要時間を記録する
func observeLockDuration(operation, status string, start time.Time) {
	if m := metrics.Get(); m != nil {
		m.DistributedLockDuration.WithLabelValues(operation, status).Observe(time.Since(start).Seconds())
	}
}
