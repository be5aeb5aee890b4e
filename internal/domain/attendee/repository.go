package attendee

import (
	"context"

	"github.com/sanosuguru/go-festival-cashless/internal/domain/transaction"
)

// Repository は参加者リポジトリのインターフェース
// メールアドレスの検索は決定的ハッシュで行い、平文と暗号文を直接比較しない
type Repository interface {
	// Create は新しい参加者を作成する（トランザクション必須）
	// メールアドレス重複時は ErrEmailAlreadyRegistered を返す
	Create(ctx context.Context, tx transaction.Tx, a *Attendee) error

	// GetByID はIDから参加者を取得する
	GetByID(ctx context.Context, id string) (*Attendee, error)

	// GetByEmail はメールアドレスから参加者を取得する
	GetByEmail(ctx context.Context, email string) (*Attendee, error)
}
