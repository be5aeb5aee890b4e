package qrcode

import (
	"fmt"

	"github.com/google/uuid"
	qr "github.com/skip2/go-qrcode"
)

// NewTicketCode はチケットのQRペイロードとなる不透明な一意コードを生成する
// 生成後は不変であり、再利用されない
func NewTicketCode() string {
	return "tkt_" + uuid.New().String()
}

// Render はペイロードをQRコードのPNG画像に変換する
// 表示専用であり、チケットの状態には一切影響しない
func Render(payload string, size int) ([]byte, error) {
	if size <= 0 {
		size = 256
	}
	png, err := qr.Encode(payload, qr.Medium, size)
	if err != nil {
		return nil, fmt.Errorf("QRコード生成に失敗しました: %w", err)
	}
	return png, nil
}
