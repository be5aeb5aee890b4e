package wristband

import (
	"time"

	"github.com/shopspring/decimal"
)

// Kind は台帳トランザクションの種別を表す
type Kind string

const (
	KindTopUp Kind = "topup"
	KindSpend Kind = "spend"
)

// BalanceTransaction は追記専用の台帳レコードを表す
// 一度コミットされたレコードは不変であり、削除・更新されない
// 残高 = Σ TOPUP − Σ SPEND が全コミット境界で成立する
type BalanceTransaction struct {
	ID          int64
	WristbandID string
	FestivalID  string
	Kind        Kind
	Amount      decimal.Decimal // 常に正の値、符号は Kind で表す
	Method      string          // TOPUP の決済手段（cash / card など）
	Description string          // SPEND の消費内容
	CreatedAt   time.Time
}

// NewTopUp はチャージの台帳レコードを作成する
func NewTopUp(wristbandID, festivalID string, amount decimal.Decimal, method string) *BalanceTransaction {
	return &BalanceTransaction{
		WristbandID: wristbandID,
		FestivalID:  festivalID,
		Kind:        KindTopUp,
		Amount:      amount,
		Method:      method,
		CreatedAt:   time.Now(),
	}
}

// NewSpend は消費の台帳レコードを作成する
func NewSpend(wristbandID, festivalID string, amount decimal.Decimal, description string) *BalanceTransaction {
	return &BalanceTransaction{
		WristbandID: wristbandID,
		FestivalID:  festivalID,
		Kind:        KindSpend,
		Amount:      amount,
		Description: description,
		CreatedAt:   time.Now(),
	}
}

// Signed は台帳レコードの符号付き金額を返す
func (t *BalanceTransaction) Signed() decimal.Decimal {
	if t.Kind == KindSpend {
		return t.Amount.Neg()
	}
	return t.Amount
}

// Replay は台帳の並びから残高を再計算する
func Replay(txs []*BalanceTransaction) decimal.Decimal {
	balance := decimal.Zero
	for _, t := range txs {
		balance = balance.Add(t.Signed())
	}
	return balance
}
