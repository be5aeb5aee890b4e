package transaction

import "context"

// Tx はDBトランザクションの抽象
// 在庫減算と購入作成、台帳追記と残高更新のように複数リポジトリへの
// 書き込みを1つの境界でコミットするためにサービス層が使う
type Tx interface {
	Commit() error
	Rollback() error
}

// Manager はトランザクションの開始点
// ドメイン層・サービス層をsqlxなどの実装から切り離す
type Manager interface {
	Begin(ctx context.Context) (Tx, error)
}
