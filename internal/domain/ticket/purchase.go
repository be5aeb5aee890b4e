package ticket

import (
	"time"

	"github.com/shopspring/decimal"
)

// Purchase は購入を表す
// PaymentRef は決済ゲートウェイの参照IDで、冪等性キーを兼ねる
type Purchase struct {
	ID         string
	BuyerEmail string
	PaymentRef string
	Total      decimal.Decimal
	Lines      []*PurchaseLine
	CreatedAt  time.Time
}

// PurchaseLine は購入明細を表す
// UnitPrice は予約時点の価格のスナップショットで、作成後は不変
type PurchaseLine struct {
	ID           string
	PurchaseID   string
	TicketTypeID string
	Quantity     int
	UnitPrice    decimal.Decimal
}

// Subtotal は明細の小計を返す
func (l *PurchaseLine) Subtotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// NewPurchase は明細付きの新しい購入を作成し、合計を算出する
func NewPurchase(buyerEmail, paymentRef string, lines []*PurchaseLine) *Purchase {
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.Subtotal())
	}
	return &Purchase{
		BuyerEmail: buyerEmail,
		PaymentRef: paymentRef,
		Total:      total,
		Lines:      lines,
		CreatedAt:  time.Now(),
	}
}

// Validate は購入の検証を行う
func (p *Purchase) Validate() error {
	if p.BuyerEmail == "" {
		return ErrBuyerEmailRequired
	}
	if p.PaymentRef == "" {
		return ErrPaymentRefRequired
	}
	if len(p.Lines) == 0 {
		return ErrPurchaseLinesRequired
	}
	for _, l := range p.Lines {
		if l.TicketTypeID == "" {
			return ErrTicketTypeIDRequired
		}
		if l.Quantity <= 0 {
			return ErrInvalidQuantity
		}
	}
	return nil
}
