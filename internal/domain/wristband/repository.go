package wristband

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/sanosuguru/go-festival-cashless/internal/domain/transaction"
)

// Repository はリストバンドリポジトリのインターフェース
type Repository interface {
	// Create は新しいリストバンドを作成する（トランザクション必須）
	Create(ctx context.Context, tx transaction.Tx, w *Wristband) error

	// GetByUID は物理UIDからリストバンドを取得する
	GetByUID(ctx context.Context, uid string) (*Wristband, error)

	// ListByFestivalID はフェスティバルのリストバンド一覧を取得する
	ListByFestivalID(ctx context.Context, festivalID string, limit, offset int) ([]*Wristband, error)

	// UpdateBinding は紐付け状態を更新する（トランザクション必須）
	UpdateBinding(ctx context.Context, tx transaction.Tx, w *Wristband) error

	// AddBalance はキャッシュ残高を加算する（トランザクション必須）
	AddBalance(ctx context.Context, tx transaction.Tx, id string, amount decimal.Decimal) (decimal.Decimal, error)

	// DeductBalance は残高のチェックと減算を単一文で行う（トランザクション必須）
	// 残高不足の場合は InsufficientFundsError を返す
	DeductBalance(ctx context.Context, tx transaction.Tx, id string, amount decimal.Decimal) (decimal.Decimal, error)
}

// LedgerRepository は追記専用の台帳リポジトリのインターフェース
type LedgerRepository interface {
	// Append は台帳レコードを追記する（残高更新と同一トランザクション必須）
	Append(ctx context.Context, tx transaction.Tx, t *BalanceTransaction) error

	// ListByWristbandID はリストバンドの台帳をコミット順で取得する
	ListByWristbandID(ctx context.Context, wristbandID string) ([]*BalanceTransaction, error)
}
