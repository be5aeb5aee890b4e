package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/sanosuguru/go-festival-cashless/internal/application"
	"github.com/sanosuguru/go-festival-cashless/internal/domain/ticket"
)

type PurchaseHandler struct {
	service PurchaseServiceInterface
}

func NewPurchaseHandler(s PurchaseServiceInterface) *PurchaseHandler {
	return &PurchaseHandler{service: s}
}

type PurchaseItemRequest struct {
	TicketTypeID string `json:"ticket_type_id" validate:"required" example:"550e8400-e29b-41d4-a716-446655440000"`
	Quantity     int    `json:"quantity" validate:"required,gte=1" example:"2"`
}

type CreatePurchaseRequest struct {
	FestivalID string                `json:"festival_id" validate:"required" example:"550e8400-e29b-41d4-a716-446655440000"`
	BuyerEmail string                `json:"buyer_email" validate:"required,email" example:"buyer@example.com"`
	PaymentRef string                `json:"payment_ref" validate:"required" example:"pi_3OaBcD2eZvKYlo2C"`
	Items      []PurchaseItemRequest `json:"items" validate:"required,min=1,dive"`
}

type PurchaseLineResponse struct {
	ID           string `json:"id"`
	TicketTypeID string `json:"ticket_type_id"`
	Quantity     int    `json:"quantity" example:"2"`
	UnitPrice    string `json:"unit_price" example:"50.00"`
	Subtotal     string `json:"subtotal" example:"100.00"`
}

type PurchaseResponse struct {
	ID         string                 `json:"id"`
	BuyerEmail string                 `json:"buyer_email" example:"buyer@example.com"`
	PaymentRef string                 `json:"payment_ref" example:"pi_3OaBcD2eZvKYlo2C"`
	Total      string                 `json:"total" example:"100.00"`
	Lines      []PurchaseLineResponse `json:"lines"`
	CreatedAt  time.Time              `json:"created_at"`
}

func toPurchaseResponse(p *ticket.Purchase) PurchaseResponse {
	lines := make([]PurchaseLineResponse, len(p.Lines))
	for i, l := range p.Lines {
		lines[i] = PurchaseLineResponse{
			ID: l.ID, TicketTypeID: l.TicketTypeID, Quantity: l.Quantity,
			UnitPrice: l.UnitPrice.StringFixed(2),
			Subtotal:  l.Subtotal().StringFixed(2),
		}
	}
	return PurchaseResponse{
		ID: p.ID, BuyerEmail: p.BuyerEmail, PaymentRef: p.PaymentRef,
		Total: p.Total.StringFixed(2), Lines: lines, CreatedAt: p.CreatedAt,
	}
}

// Create godoc
// @Summary チケットを購入
// @Description 決済検証後、在庫の減算とチケット発行を1トランザクションで行います。決済参照IDは冪等性キーを兼ねます
// @Tags purchases
// @Accept json
// @Produce json
// @Param request body CreatePurchaseRequest true "購入情報"
// @Success 201 {object} PurchaseResponse
// @Failure 400 {object} map[string]string
// @Failure 409 {object} map[string]string "在庫不足または一時的な競合"
// @Router /purchases [post]
func (h *PurchaseHandler) Create(c echo.Context) error {
	var req CreatePurchaseRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "無効なリクエスト")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	items := make([]application.PurchaseItem, len(req.Items))
	for i, item := range req.Items {
		items[i] = application.PurchaseItem{TicketTypeID: item.TicketTypeID, Quantity: item.Quantity}
	}
	p, err := h.service.CreatePurchase(c.Request().Context(), application.CreatePurchaseInput{
		FestivalID: req.FestivalID,
		BuyerEmail: req.BuyerEmail,
		PaymentRef: req.PaymentRef,
		Items:      items,
	})
	if err != nil {
		return domainHTTPError(err)
	}
	return c.JSON(http.StatusCreated, toPurchaseResponse(p))
}

// GetByID godoc
// @Summary 購入を取得
// @Tags purchases
// @Produce json
// @Param id path string true "購入ID"
// @Success 200 {object} PurchaseResponse
// @Failure 404 {object} map[string]string
// @Router /purchases/{id} [get]
func (h *PurchaseHandler) GetByID(c echo.Context) error {
	p, err := h.service.GetPurchase(c.Request().Context(), c.Param("id"))
	if err != nil {
		return domainHTTPError(err)
	}
	return c.JSON(http.StatusOK, toPurchaseResponse(p))
}

// ListTickets godoc
// @Summary 購入に属するチケット一覧を取得
// @Tags purchases
// @Produce json
// @Param id path string true "購入ID"
// @Success 200 {array} TicketResponse
// @Failure 404 {object} map[string]string
// @Router /purchases/{id}/tickets [get]
func (h *PurchaseHandler) ListTickets(c echo.Context) error {
	tickets, err := h.service.ListPurchaseTickets(c.Request().Context(), c.Param("id"))
	if err != nil {
		return domainHTTPError(err)
	}
	resp := make([]TicketResponse, len(tickets))
	for i, t := range tickets {
		resp[i] = toTicketResponse(t)
	}
	return c.JSON(http.StatusOK, resp)
}
