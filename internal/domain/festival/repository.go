package festival

import "context"

// Repository はフェスティバルリポジトリのインターフェース
type Repository interface {
	// Create は新しいフェスティバルを作成する
	Create(ctx context.Context, f *Festival) error

	// GetByID はIDからフェスティバルを取得する
	GetByID(ctx context.Context, id string) (*Festival, error)

	// List はフェスティバル一覧を取得する
	List(ctx context.Context, limit, offset int) ([]*Festival, error)

	// Update はフェスティバルを更新する（楽観的ロック）
	Update(ctx context.Context, f *Festival) error
}
