package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/sanosuguru/go-festival-cashless/internal/application"
	"github.com/sanosuguru/go-festival-cashless/internal/domain/attendee"
	"github.com/sanosuguru/go-festival-cashless/internal/domain/festival"
	"github.com/sanosuguru/go-festival-cashless/internal/domain/ticket"
	"github.com/sanosuguru/go-festival-cashless/internal/domain/wristband"
)

// domainHTTPError はドメインエラーをHTTPステータスに変換する
//   - 404: 対象が存在しない
//   - 409: 在庫不足・二重紐付け・一時的な競合
//   - 402: 残高不足
//   - 412: 状態の前提条件を満たさない
func domainHTTPError(err error) *echo.HTTPError {
	switch {
	case errors.Is(err, festival.ErrFestivalNotFound),
		errors.Is(err, ticket.ErrTicketTypeNotFound),
		errors.Is(err, ticket.ErrTicketNotFound),
		errors.Is(err, ticket.ErrPurchaseNotFound),
		errors.Is(err, attendee.ErrAttendeeNotFound),
		errors.Is(err, wristband.ErrWristbandNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())

	case errors.Is(err, ticket.ErrStockInsufficient),
		errors.Is(err, ticket.ErrTicketStateConflict),
		errors.Is(err, wristband.ErrWristbandAlreadyBound),
		errors.Is(err, wristband.ErrTicketAlreadyLinked),
		errors.Is(err, attendee.ErrEmailAlreadyRegistered),
		errors.Is(err, application.ErrTransientConflict):
		return echo.NewHTTPError(http.StatusConflict, err.Error())

	case errors.Is(err, wristband.ErrInsufficientFunds):
		return echo.NewHTTPError(http.StatusPaymentRequired, err.Error())

	case errors.Is(err, festival.ErrFestivalNotPublished),
		errors.Is(err, festival.ErrInvalidStatusTransition),
		errors.Is(err, ticket.ErrTicketAlreadyUsed),
		errors.Is(err, ticket.ErrTicketCancelled),
		errors.Is(err, ticket.ErrTicketNotNominated),
		errors.Is(err, wristband.ErrWristbandInactive),
		errors.Is(err, wristband.ErrWristbandNotBound),
		errors.Is(err, wristband.ErrFestivalMismatch):
		return echo.NewHTTPError(http.StatusPreconditionFailed, err.Error())

	default:
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
}
