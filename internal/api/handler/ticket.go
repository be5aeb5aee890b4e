package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/sanosuguru/go-festival-cashless/internal/application"
	"github.com/sanosuguru/go-festival-cashless/internal/domain/ticket"
)

type TicketHandler struct {
	service TicketServiceInterface
}

func NewTicketHandler(s TicketServiceInterface) *TicketHandler {
	return &TicketHandler{service: s}
}

type NominateTicketRequest struct {
	Name  string `json:"name" validate:"required" example:"山田太郎"`
	Email string `json:"email" validate:"required,email" example:"taro@example.com"`
	Phone string `json:"phone" example:"090-1234-5678"`
}

type CheckInRequest struct {
	Code string `json:"code" validate:"required" example:"tkt_550e8400-e29b-41d4-a716-446655440000"`
}

type TicketResponse struct {
	ID           string     `json:"id"`
	TicketTypeID string     `json:"ticket_type_id"`
	FestivalID   string     `json:"festival_id"`
	Code         string     `json:"code" example:"tkt_550e8400-e29b-41d4-a716-446655440000"`
	Status       string     `json:"status" example:"nominated"`
	AttendeeID   *string    `json:"attendee_id,omitempty"`
	NominatedAt  *time.Time `json:"nominated_at,omitempty"`
	UsedAt       *time.Time `json:"used_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}

func toTicketResponse(t *ticket.AssignedTicket) TicketResponse {
	return TicketResponse{
		ID: t.ID, TicketTypeID: t.TicketTypeID, FestivalID: t.FestivalID,
		Code: t.Code, Status: string(t.Status), AttendeeID: t.AttendeeID,
		NominatedAt: t.NominatedAt, UsedAt: t.UsedAt, CreatedAt: t.CreatedAt,
	}
}

// Nominate godoc
// @Summary チケットを記名
// @Description チケットを参加者に記名します。使用前であれば記名の変更も可能です
// @Tags tickets
// @Accept json
// @Produce json
// @Param id path string true "チケットID"
// @Param request body NominateTicketRequest true "参加者情報"
// @Success 200 {object} TicketResponse
// @Failure 404 {object} map[string]string
// @Failure 412 {object} map[string]string "使用済み・キャンセル済み"
// @Router /tickets/{id}/nominate [post]
func (h *TicketHandler) Nominate(c echo.Context) error {
	var req NominateTicketRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "無効なリクエスト")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	t, err := h.service.Nominate(c.Request().Context(), application.NominateInput{
		TicketID: c.Param("id"),
		Name:     req.Name,
		Email:    req.Email,
		Phone:    req.Phone,
	})
	if err != nil {
		return domainHTTPError(err)
	}
	return c.JSON(http.StatusOK, toTicketResponse(t))
}

// CheckIn godoc
// @Summary 入場スキャンを処理
// @Description QRコードのペイロードからチケットを使用済みにします
// @Tags tickets
// @Accept json
// @Produce json
// @Param request body CheckInRequest true "QRペイロード"
// @Success 200 {object} TicketResponse
// @Failure 404 {object} map[string]string
// @Failure 412 {object} map[string]string "未記名または使用済み"
// @Router /tickets/check-in [post]
func (h *TicketHandler) CheckIn(c echo.Context) error {
	var req CheckInRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "無効なリクエスト")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	t, err := h.service.CheckIn(c.Request().Context(), req.Code)
	if err != nil {
		return domainHTTPError(err)
	}
	return c.JSON(http.StatusOK, toTicketResponse(t))
}

// Cancel godoc
// @Summary チケットをキャンセル
// @Description チケットをキャンセルし、在庫を戻します
// @Tags tickets
// @Produce json
// @Param id path string true "チケットID"
// @Success 200 {object} TicketResponse
// @Failure 404 {object} map[string]string
// @Failure 412 {object} map[string]string "使用済み"
// @Router /tickets/{id}/cancel [post]
func (h *TicketHandler) Cancel(c echo.Context) error {
	t, err := h.service.CancelTicket(c.Request().Context(), c.Param("id"))
	if err != nil {
		return domainHTTPError(err)
	}
	return c.JSON(http.StatusOK, toTicketResponse(t))
}

// GetByID godoc
// @Summary チケットを取得
// @Tags tickets
// @Produce json
// @Param id path string true "チケットID"
// @Success 200 {object} TicketResponse
// @Failure 404 {object} map[string]string
// @Router /tickets/{id} [get]
func (h *TicketHandler) GetByID(c echo.Context) error {
	t, err := h.service.GetTicket(c.Request().Context(), c.Param("id"))
	if err != nil {
		return domainHTTPError(err)
	}
	return c.JSON(http.StatusOK, toTicketResponse(t))
}

// RenderQR godoc
// @Summary チケットのQRコードを取得
// @Description チケットコードをQRコードのPNG画像として返します
// @Tags tickets
// @Produce png
// @Param id path string true "チケットID"
// @Param size query int false "画像サイズ（ピクセル）" default(256)
// @Success 200 {file} binary
// @Failure 404 {object} map[string]string
// @Router /tickets/{id}/qr [get]
func (h *TicketHandler) RenderQR(c echo.Context) error {
	size, _ := strconv.Atoi(c.QueryParam("size"))
	png, err := h.service.RenderQR(c.Request().Context(), c.Param("id"), size)
	if err != nil {
		return domainHTTPError(err)
	}
	return c.Blob(http.StatusOK, "image/png", png)
}
