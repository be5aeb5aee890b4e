package attendee

import "errors"

// Attendee ドメインのエラー定義
var (
	ErrAttendeeNotFound       = errors.New("参加者が見つかりません")
	ErrEmailAlreadyRegistered = errors.New("メールアドレスは既に登録されています")
	ErrEmailRequired          = errors.New("メールアドレスは必須です")
	ErrNameRequired           = errors.New("参加者名は必須です")
)
