package wristband

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Wristband ドメインのエラー定義
var (
	ErrWristbandNotFound     = errors.New("リストバンドが見つかりません")
	ErrWristbandInactive     = errors.New("リストバンドは無効化されています")
	ErrWristbandAlreadyBound = errors.New("リストバンドは既に別のチケットに紐付いています")
	ErrWristbandNotBound     = errors.New("リストバンドはチケットに紐付いていません")
	ErrTicketAlreadyLinked   = errors.New("チケットは既に別のリストバンドに紐付いています")
	ErrInsufficientFunds     = errors.New("残高が不足しています")
	ErrFestivalMismatch      = errors.New("リストバンドのフェスティバルとチケットのフェスティバルが一致しません")
	ErrAmountNotPositive     = errors.New("金額は0より大きい必要があります")
	ErrUIDRequired           = errors.New("リストバンドUIDは必須です")
	ErrFestivalIDRequired    = errors.New("フェスティバルIDは必須です")
	ErrNegativeBalance       = errors.New("残高は0以上である必要があります")
)

// AlreadyBoundError は二重紐付けの詳細を保持する
// errors.Is(err, ErrWristbandAlreadyBound) で判定できる
type AlreadyBoundError struct {
	UID           string
	BoundTicketID string
}

func (e *AlreadyBoundError) Error() string {
	return fmt.Sprintf("リストバンド %s は既にチケット %s に紐付いています", e.UID, e.BoundTicketID)
}

func (e *AlreadyBoundError) Is(target error) bool {
	return target == ErrWristbandAlreadyBound
}

// InsufficientFundsError は残高不足の詳細（不足額）を保持する
// errors.Is(err, ErrInsufficientFunds) で判定できる
type InsufficientFundsError struct {
	UID       string
	Balance   decimal.Decimal
	Requested decimal.Decimal
}

func (e *InsufficientFundsError) Error() string {
	shortfall := e.Requested.Sub(e.Balance)
	return fmt.Sprintf("リストバンド %s の残高が不足しています（残高 %s、要求 %s、不足 %s）",
		e.UID, e.Balance.String(), e.Requested.String(), shortfall.String())
}

func (e *InsufficientFundsError) Is(target error) bool {
	return target == ErrInsufficientFunds
}

// Shortfall は不足額を返す
func (e *InsufficientFundsError) Shortfall() decimal.Decimal {
	return e.Requested.Sub(e.Balance)
}
