package middleware

import (
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

// SetupMiddleware はAPI全体に適用する共通ミドルウェアを登録する
// 入場ゲート・POS端末・購入サイトのどこから来てもリクエストIDで追跡できるようにする
func SetupMiddleware(e *echo.Echo) {
	e.Use(middleware.RequestID())
	e.Use(RequestLogger())
	e.Use(middleware.Recover())

	// 購入サイトとPOS端末はオリジンが異なるためCORSを許可する
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{echo.GET, echo.HEAD, echo.PUT, echo.PATCH, echo.POST, echo.DELETE},
	}))

	// リクエストボディは1MBまで
	e.Use(middleware.BodyLimit("1M"))
}
