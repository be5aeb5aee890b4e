package pii

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCodec(t *testing.T) *AESCodec {
	t.Helper()
	key := bytes.Repeat([]byte{0xAB}, 32)
	codec, err := NewAESCodec(key)
	require.NoError(t, err)
	return codec
}

func TestNewAESCodec(t *testing.T) {
	tests := []struct {
		name    string
		keyLen  int
		wantErr bool
	}{
		{name: "32バイトのキー", keyLen: 32, wantErr: false},
		{name: "16バイトのキーは不正", keyLen: 16, wantErr: true},
		{name: "空のキーは不正", keyLen: 0, wantErr: true},
		{name: "33バイトのキーは不正", keyLen: 33, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewAESCodec(bytes.Repeat([]byte{0x01}, tt.keyLen))
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidKey)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestNewAESCodecFromHex(t *testing.T) {
	t.Run("hex64文字のキー", func(t *testing.T) {
		codec, err := NewAESCodecFromHex("00112233445566778899aabbccddeeff00112233445566778899aabbccddeeff")
		require.NoError(t, err)
		assert.NotNil(t, codec)
	})

	t.Run("hexとして不正な文字列", func(t *testing.T) {
		_, err := NewAESCodecFromHex("zz")
		assert.ErrorIs(t, err, ErrInvalidKey)
	})

	t.Run("長さ不足のhexキー", func(t *testing.T) {
		_, err := NewAESCodecFromHex("0011")
		assert.ErrorIs(t, err, ErrInvalidKey)
	})
}

func TestAESCodec_EncodeDecode(t *testing.T) {
	codec := testCodec(t)

	t.Run("暗号化と復号の往復", func(t *testing.T) {
		ciphertext, err := codec.Encode("taro@example.com")
		require.NoError(t, err)
		assert.NotEqual(t, "taro@example.com", ciphertext)

		plaintext, err := codec.Decode(ciphertext)
		require.NoError(t, err)
		assert.Equal(t, "taro@example.com", plaintext)
	})

	t.Run("同じ平文でも暗号文は毎回異なる", func(t *testing.T) {
		c1, err := codec.Encode("taro@example.com")
		require.NoError(t, err)
		c2, err := codec.Encode("taro@example.com")
		require.NoError(t, err)

		assert.NotEqual(t, c1, c2)
	})

	t.Run("不正なbase64は復号できない", func(t *testing.T) {
		_, err := codec.Decode("!!not-base64!!")
		assert.ErrorIs(t, err, ErrInvalidCiphertext)
	})

	t.Run("ノンスより短い暗号文は復号できない", func(t *testing.T) {
		_, err := codec.Decode("AAAA")
		assert.ErrorIs(t, err, ErrInvalidCiphertext)
	})

	t.Run("別のキーでは復号できない", func(t *testing.T) {
		other, err := NewAESCodec(bytes.Repeat([]byte{0xCD}, 32))
		require.NoError(t, err)

		ciphertext, err := codec.Encode("taro@example.com")
		require.NoError(t, err)

		_, err = other.Decode(ciphertext)
		assert.Error(t, err)
	})
}

func TestHashEmail(t *testing.T) {
	t.Run("決定的なハッシュ", func(t *testing.T) {
		assert.Equal(t, HashEmail("taro@example.com"), HashEmail("taro@example.com"))
	})

	t.Run("大文字小文字と前後の空白を正規化する", func(t *testing.T) {
		assert.Equal(t, HashEmail("taro@example.com"), HashEmail("  Taro@Example.COM "))
	})

	t.Run("異なるメールアドレスは異なるハッシュ", func(t *testing.T) {
		assert.NotEqual(t, HashEmail("taro@example.com"), HashEmail("jiro@example.com"))
	})
}
