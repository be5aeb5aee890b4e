package application

import "errors"

var (
	// ErrTransientConflict はロック競合などの一時的な失敗を表す
	// 呼び出し側はそのまま再試行してよい
	ErrTransientConflict = errors.New("一時的な競合が発生しました。再試行してください")
)
