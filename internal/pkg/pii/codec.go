package pii

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strings"
)

var (
	ErrInvalidKey        = errors.New("暗号化キーは32バイトである必要があります")
	ErrInvalidCiphertext = errors.New("暗号文の形式が不正です")
)

// Codec は個人情報を永続化境界で暗号化・復号するインターフェース
// 核内では平文として扱い、平文と暗号文を直接比較しない
type Codec interface {
	Encode(plaintext string) (string, error)
	Decode(ciphertext string) (string, error)
}

// AESCodec は AES-256-GCM による Codec の実装
// キーは起動時に設定から注入され、グローバル状態には置かない
type AESCodec struct {
	aead cipher.AEAD
}

// NewAESCodec は32バイトのキーから AESCodec を作成する
func NewAESCodec(key []byte) (*AESCodec, error) {
	if len(key) != 32 {
		return nil, ErrInvalidKey
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("暗号器の初期化に失敗しました: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("GCMモードの初期化に失敗しました: %w", err)
	}
	return &AESCodec{aead: aead}, nil
}

// NewAESCodecFromHex は hex 64文字のキー文字列から AESCodec を作成する
// 設定ファイル・環境変数からの読み込み用
func NewAESCodecFromHex(hexKey string) (*AESCodec, error) {
	key, err := hex.DecodeString(hexKey)
	if err != nil {
		return nil, ErrInvalidKey
	}
	return NewAESCodec(key)
}

// Encode は平文を暗号化し base64 文字列で返す
// ノンスはレコードごとにランダム生成されるため、同じ平文でも暗号文は毎回異なる
func (c *AESCodec) Encode(plaintext string) (string, error) {
	nonce := make([]byte, c.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("ノンス生成に失敗しました: %w", err)
	}
	sealed := c.aead.Seal(nonce, nonce, []byte(plaintext), nil)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

// Decode は Encode の出力を復号する
func (c *AESCodec) Decode(ciphertext string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(ciphertext)
	if err != nil {
		return "", ErrInvalidCiphertext
	}
	if len(raw) < c.aead.NonceSize() {
		return "", ErrInvalidCiphertext
	}
	nonce, sealed := raw[:c.aead.NonceSize()], raw[c.aead.NonceSize():]
	plaintext, err := c.aead.Open(nil, nonce, sealed, nil)
	if err != nil {
		return "", fmt.Errorf("復号に失敗しました: %w", err)
	}
	return string(plaintext), nil
}

// HashEmail はメールアドレスの決定的ハッシュを返す
// 一意性制約と検索のための値であり、暗号化の代わりにはならない
func HashEmail(email string) string {
	sum := sha256.Sum256([]byte(strings.ToLower(strings.TrimSpace(email))))
	return hex.EncodeToString(sum[:])
}

var _ Codec = (*AESCodec)(nil)
