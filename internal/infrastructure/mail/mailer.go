package mail

import (
	"fmt"

	"go.uber.org/zap"
	gomail "gopkg.in/gomail.v2"

	"github.com/sanosuguru/go-festival-cashless/internal/config"
	"github.com/sanosuguru/go-festival-cashless/internal/pkg/logger"
)

// Mailer は購入確認などの通知メールを送信する
type Mailer struct {
	dialer *gomail.Dialer
	from   string
}

// NewMailer は新しいMailerインスタンスを作成する
// SMTPホストが未設定の場合はnilを返し、呼び出し側は送信をスキップする
func NewMailer(cfg *config.SMTPConfig) *Mailer {
	if cfg.Host == "" {
		return nil
	}
	return &Mailer{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Password),
		from:   cfg.From,
	}
}

// SendPurchaseConfirmation は購入完了メールを送信する
func (m *Mailer) SendPurchaseConfirmation(to, festivalName string, ticketCount int) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", fmt.Sprintf("【%s】チケット購入完了のお知らせ", festivalName))
	msg.SetBody("text/plain", fmt.Sprintf(
		"%s のチケット %d 枚の購入が完了しました。\nマイページから各チケットの記名を行ってください。\n",
		festivalName, ticketCount,
	))

	if err := m.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("購入確認メールの送信に失敗しました: %w", err)
	}
	return nil
}

// SendAsync はバックグラウンドで送信し、失敗はログに残すだけにする
func (m *Mailer) SendAsync(to, festivalName string, ticketCount int) {
	if m == nil {
		return
	}
	go func() {
		if err := m.SendPurchaseConfirmation(to, festivalName, ticketCount); err != nil {
			logger.Error("メール送信に失敗しました", zap.String("to", to), zap.Error(err))
		}
	}()
}
