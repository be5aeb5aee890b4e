package festival

import "errors"

// Festival ドメインのエラー定義
var (
	ErrFestivalNotFound        = errors.New("フェスティバルが見つかりません")
	ErrFestivalNotPublished    = errors.New("フェスティバルは公開されていません")
	ErrInvalidStatusTransition = errors.New("許可されていない状態遷移です")
	ErrFestivalNameRequired    = errors.New("フェスティバル名は必須です")
	ErrInvalidFestivalDates    = errors.New("終了日は開始日より後である必要があります")
)
