package payment

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	stripe "github.com/stripe/stripe-go/v78"
	"github.com/stripe/stripe-go/v78/client"
	"go.uber.org/zap"

	"github.com/sanosuguru/go-festival-cashless/internal/pkg/logger"
)

var (
	// ErrPaymentNotConfirmed は決済が完了状態でない場合に返す
	ErrPaymentNotConfirmed = errors.New("決済が完了していません")
	// ErrPaymentAmountMismatch は決済金額が注文金額と一致しない場合に返す
	ErrPaymentAmountMismatch = errors.New("決済金額が一致しません")
)

// StripeConfirmer はStripe PaymentIntentの照会による決済確認を行う
type StripeConfirmer struct {
	sc       *client.API
	currency string
}

// NewStripeConfirmer は新しいStripeConfirmerインスタンスを作成する
func NewStripeConfirmer(apiKey, currency string) *StripeConfirmer {
	sc := &client.API{}
	sc.Init(apiKey, nil)
	return &StripeConfirmer{sc: sc, currency: strings.ToLower(currency)}
}

// Confirm は決済参照（PaymentIntent ID）を照会し、
// succeeded かつ金額・通貨が一致していることを検証する
func (c *StripeConfirmer) Confirm(ctx context.Context, paymentRef string, amount decimal.Decimal) error {
	params := &stripe.PaymentIntentParams{}
	params.Context = ctx

	pi, err := c.sc.PaymentIntents.Get(paymentRef, params)
	if err != nil {
		var stripeErr *stripe.Error
		if errors.As(err, &stripeErr) && stripeErr.HTTPStatusCode == 404 {
			return fmt.Errorf("%w: 決済参照が見つかりません", ErrPaymentNotConfirmed)
		}
		return fmt.Errorf("決済照会に失敗しました: %w", err)
	}

	if pi.Status != stripe.PaymentIntentStatusSucceeded {
		logger.Warn("決済が未完了です",
			zap.String("payment_ref", paymentRef),
			zap.String("status", string(pi.Status)),
		)
		return ErrPaymentNotConfirmed
	}

	// Stripeは最小通貨単位（セント）で金額を持つ
	wantCents := amount.Mul(decimal.NewFromInt(100)).IntPart()
	if pi.Amount != wantCents || string(pi.Currency) != c.currency {
		logger.Warn("決済金額が一致しません",
			zap.String("payment_ref", paymentRef),
			zap.Int64("expected_cents", wantCents),
			zap.Int64("actual_cents", pi.Amount),
			zap.String("currency", string(pi.Currency)),
		)
		return ErrPaymentAmountMismatch
	}

	return nil
}
