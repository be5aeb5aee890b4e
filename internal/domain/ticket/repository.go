package ticket

import (
	"context"

	"github.com/sanosuguru/go-festival-cashless/internal/domain/transaction"
)

// TypeRepository は券種リポジトリのインターフェース
type TypeRepository interface {
	// Create は新しい券種を作成する
	Create(ctx context.Context, t *TicketType) error

	// GetByID はIDから券種を取得する
	GetByID(ctx context.Context, id string) (*TicketType, error)

	// ListByFestivalID はフェスティバルの券種一覧を取得する
	ListByFestivalID(ctx context.Context, festivalID string) ([]*TicketType, error)

	// DecrementStock は在庫のチェックと減算を単一文で行い、減算後の残数を返す（トランザクション必須）
	// 在庫不足の場合は StockInsufficientError を返す
	DecrementStock(ctx context.Context, tx transaction.Tx, id string, quantity int) (int, error)

	// IncrementStock はキャンセル時に在庫を戻す（トランザクション必須）
	IncrementStock(ctx context.Context, tx transaction.Tx, id string, quantity int) error
}

// PurchaseRepository は購入リポジトリのインターフェース
// Purchase は自身の PurchaseLine の所有者であり、同一トランザクションで書き込む
type PurchaseRepository interface {
	// Create は購入と明細を作成する（トランザクション必須）
	Create(ctx context.Context, tx transaction.Tx, p *Purchase) error

	// GetByID はIDから購入を取得する（明細込み）
	GetByID(ctx context.Context, id string) (*Purchase, error)

	// GetByPaymentRef は決済参照IDから購入を取得する（冪等性チェック用）
	GetByPaymentRef(ctx context.Context, paymentRef string) (*Purchase, error)
}

// AssignedRepository は割り当て済みチケットリポジトリのインターフェース
type AssignedRepository interface {
	// CreateBulk は複数のチケットを一括作成する（トランザクション必須）
	CreateBulk(ctx context.Context, tx transaction.Tx, tickets []*AssignedTicket) error

	// GetByID はIDからチケットを取得する
	GetByID(ctx context.Context, id string) (*AssignedTicket, error)

	// GetByCode はQRコードのペイロードからチケットを取得する
	GetByCode(ctx context.Context, code string) (*AssignedTicket, error)

	// ListByPurchaseID は購入に属するチケット一覧を取得する
	ListByPurchaseID(ctx context.Context, purchaseID string) ([]*AssignedTicket, error)

	// ListByFestivalID はフェスティバルのチケット一覧を取得する
	ListByFestivalID(ctx context.Context, festivalID string, limit, offset int) ([]*AssignedTicket, error)

	// Update はチケットの状態・記名を更新する（トランザクション必須）
	// from は更新前に期待するステータスで、一致しない場合は ErrTicketStateConflict を返す
	Update(ctx context.Context, tx transaction.Tx, t *AssignedTicket, from Status) error
}
