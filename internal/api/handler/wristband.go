package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/sanosuguru/go-festival-cashless/internal/application"
	"github.com/sanosuguru/go-festival-cashless/internal/domain/wristband"
)

type WristbandHandler struct {
	service WristbandServiceInterface
}

func NewWristbandHandler(s WristbandServiceInterface) *WristbandHandler {
	return &WristbandHandler{service: s}
}

type BindWristbandRequest struct {
	TicketID string `json:"ticket_id" validate:"required" example:"550e8400-e29b-41d4-a716-446655440000"`
}

type TopUpRequest struct {
	Amount string `json:"amount" validate:"required" example:"20.00"`
	Method string `json:"method" validate:"required,oneof=cash card" example:"cash"`
}

type SpendRequest struct {
	FestivalID  string `json:"festival_id" validate:"required" example:"550e8400-e29b-41d4-a716-446655440000"`
	Amount      string `json:"amount" validate:"required" example:"8.50"`
	Description string `json:"description" example:"ドリンク2点"`
}

type WristbandResponse struct {
	ID               string     `json:"id"`
	UID              string     `json:"uid" example:"04A2B3C4D5E6F7"`
	FestivalID       string     `json:"festival_id"`
	AssignedTicketID *string    `json:"assigned_ticket_id,omitempty"`
	Balance          string     `json:"balance" example:"11.50"`
	Active           bool       `json:"active"`
	BoundAt          *time.Time `json:"bound_at,omitempty"`
}

type LedgerEntryResponse struct {
	ID          int64     `json:"id"`
	Kind        string    `json:"kind" example:"topup"`
	Amount      string    `json:"amount" example:"20.00"`
	Method      string    `json:"method,omitempty" example:"cash"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

func toWristbandResponse(w *wristband.Wristband) WristbandResponse {
	return WristbandResponse{
		ID: w.ID, UID: w.UID, FestivalID: w.FestivalID,
		AssignedTicketID: w.AssignedTicketID,
		Balance:          w.Balance.StringFixed(2),
		Active:           w.Active, BoundAt: w.BoundAt,
	}
}

func toLedgerEntryResponse(t *wristband.BalanceTransaction) LedgerEntryResponse {
	return LedgerEntryResponse{
		ID: t.ID, Kind: string(t.Kind), Amount: t.Amount.StringFixed(2),
		Method: t.Method, Description: t.Description, CreatedAt: t.CreatedAt,
	}
}

// Bind godoc
// @Summary リストバンドをチケットに紐付け
// @Description NFCリストバンドを記名済みチケットに紐付けます。未登録のUIDは遅延作成され、同一チケットへの再実行は冪等に成功します
// @Tags wristbands
// @Accept json
// @Produce json
// @Param uid path string true "リストバンドの物理UID"
// @Param request body BindWristbandRequest true "チケットID"
// @Success 200 {object} WristbandResponse
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string "別のチケットに紐付け済み"
// @Failure 412 {object} map[string]string "未記名チケットまたはフェスティバル不一致"
// @Router /wristbands/{uid}/bind [post]
func (h *WristbandHandler) Bind(c echo.Context) error {
	var req BindWristbandRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "無効なリクエスト")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	w, err := h.service.Bind(c.Request().Context(), application.BindInput{
		UID:      c.Param("uid"),
		TicketID: req.TicketID,
	})
	if err != nil {
		return domainHTTPError(err)
	}
	return c.JSON(http.StatusOK, toWristbandResponse(w))
}

// TopUp godoc
// @Summary リストバンドにチャージ
// @Description 台帳への追記と残高の更新を1トランザクションで行います
// @Tags wristbands
// @Accept json
// @Produce json
// @Param uid path string true "リストバンドの物理UID"
// @Param request body TopUpRequest true "チャージ金額と決済手段"
// @Success 200 {object} WristbandResponse
// @Failure 404 {object} map[string]string
// @Failure 412 {object} map[string]string "無効化済みリストバンド"
// @Router /wristbands/{uid}/topup [post]
func (h *WristbandHandler) TopUp(c echo.Context) error {
	var req TopUpRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "無効なリクエスト")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "金額の形式が不正です")
	}
	w, err := h.service.TopUp(c.Request().Context(), application.TopUpInput{
		UID:    c.Param("uid"),
		Amount: amount,
		Method: req.Method,
	})
	if err != nil {
		return domainHTTPError(err)
	}
	return c.JSON(http.StatusOK, toWristbandResponse(w))
}

// Spend godoc
// @Summary リストバンドで決済
// @Description 残高不足の場合は402と不足額を返し、台帳には何も記録されません
// @Tags wristbands
// @Accept json
// @Produce json
// @Param uid path string true "リストバンドの物理UID"
// @Param request body SpendRequest true "決済金額・内容・決済端末のフェスティバルID"
// @Success 200 {object} WristbandResponse
// @Failure 402 {object} map[string]string "残高不足"
// @Failure 404 {object} map[string]string
// @Failure 412 {object} map[string]string "フェスティバル不一致"
// @Router /wristbands/{uid}/spend [post]
func (h *WristbandHandler) Spend(c echo.Context) error {
	var req SpendRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "無効なリクエスト")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "金額の形式が不正です")
	}
	w, err := h.service.Spend(c.Request().Context(), application.SpendInput{
		UID:         c.Param("uid"),
		FestivalID:  req.FestivalID,
		Amount:      amount,
		Description: req.Description,
	})
	if err != nil {
		return domainHTTPError(err)
	}
	return c.JSON(http.StatusOK, toWristbandResponse(w))
}

// GetByUID godoc
// @Summary リストバンドを取得（残高照会）
// @Tags wristbands
// @Produce json
// @Param uid path string true "リストバンドの物理UID"
// @Success 200 {object} WristbandResponse
// @Failure 404 {object} map[string]string
// @Router /wristbands/{uid} [get]
func (h *WristbandHandler) GetByUID(c echo.Context) error {
	w, err := h.service.GetWristband(c.Request().Context(), c.Param("uid"))
	if err != nil {
		return domainHTTPError(err)
	}
	return c.JSON(http.StatusOK, toWristbandResponse(w))
}

// GetLedger godoc
// @Summary リストバンドの台帳を取得
// @Description チャージと決済の履歴をコミット順で返します
// @Tags wristbands
// @Produce json
// @Param uid path string true "リストバンドの物理UID"
// @Success 200 {array} LedgerEntryResponse
// @Failure 404 {object} map[string]string
// @Router /wristbands/{uid}/transactions [get]
func (h *WristbandHandler) GetLedger(c echo.Context) error {
	entries, err := h.service.GetLedger(c.Request().Context(), c.Param("uid"))
	if err != nil {
		return domainHTTPError(err)
	}
	resp := make([]LedgerEntryResponse, len(entries))
	for i, e := range entries {
		resp[i] = toLedgerEntryResponse(e)
	}
	return c.JSON(http.StatusOK, resp)
}
