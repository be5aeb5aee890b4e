package ticket

import (
	"errors"
	"fmt"
)

// Ticket ドメインのエラー定義
var (
	ErrTicketTypeNotFound     = errors.New("券種が見つかりません")
	ErrTicketNotFound         = errors.New("チケットが見つかりません")
	ErrPurchaseNotFound       = errors.New("購入が見つかりません")
	ErrStockInsufficient      = errors.New("在庫が不足しています")
	ErrTicketAlreadyUsed      = errors.New("チケットは既に使用されています")
	ErrTicketCancelled        = errors.New("チケットはキャンセルされています")
	ErrTicketNotNominated     = errors.New("チケットは記名されていません")
	ErrTicketStateConflict    = errors.New("チケットの状態が他の操作によって変更されました")
	ErrFestivalIDRequired     = errors.New("フェスティバルIDは必須です")
	ErrTicketTypeNameRequired = errors.New("券種名は必須です")
	ErrTicketTypeIDRequired   = errors.New("券種IDは必須です")
	ErrInvalidPrice           = errors.New("価格は0以上である必要があります")
	ErrInvalidStock           = errors.New("在庫は0以上である必要があります")
	ErrInvalidQuantity        = errors.New("数量は1以上である必要があります")
	ErrBuyerEmailRequired     = errors.New("購入者メールアドレスは必須です")
	ErrPaymentRefRequired     = errors.New("決済参照IDは必須です")
	ErrPurchaseLinesRequired  = errors.New("購入明細は必須です")
)

// StockInsufficientError は在庫不足の詳細を保持する
// errors.Is(err, ErrStockInsufficient) で判定できる
type StockInsufficientError struct {
	TicketTypeID string
	Remaining    int
	Requested    int
}

func (e *StockInsufficientError) Error() string {
	return fmt.Sprintf("券種 %s の在庫が不足しています（残り %d、要求 %d）", e.TicketTypeID, e.Remaining, e.Requested)
}

func (e *StockInsufficientError) Is(target error) bool {
	return target == ErrStockInsufficient
}
