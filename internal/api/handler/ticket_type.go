package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/sanosuguru/go-festival-cashless/internal/domain/ticket"
)

type TicketTypeHandler struct {
	service TicketTypeServiceInterface
}

func NewTicketTypeHandler(s TicketTypeServiceInterface) *TicketTypeHandler {
	return &TicketTypeHandler{service: s}
}

type CreateTicketTypeRequest struct {
	Name               string `json:"name" validate:"required" example:"1日券"`
	Description        string `json:"description" example:"8月1日のみ有効"`
	Price              string `json:"price" validate:"required" example:"50.00"`
	Stock              int    `json:"stock" validate:"gte=0" example:"1000"`
	RequiresNomination bool   `json:"requires_nomination" example:"true"`
}

type TicketTypeResponse struct {
	ID                 string `json:"id" example:"550e8400-e29b-41d4-a716-446655440000"`
	FestivalID         string `json:"festival_id"`
	Name               string `json:"name" example:"1日券"`
	Description        string `json:"description,omitempty"`
	Price              string `json:"price" example:"50.00"`
	Stock              int    `json:"stock" example:"1000"`
	RequiresNomination bool   `json:"requires_nomination"`
}

func toTicketTypeResponse(t *ticket.TicketType) TicketTypeResponse {
	return TicketTypeResponse{
		ID: t.ID, FestivalID: t.FestivalID, Name: t.Name, Description: t.Description,
		Price: t.Price.StringFixed(2), Stock: t.Stock,
		RequiresNomination: t.RequiresNomination,
	}
}

// Create godoc
// @Summary 券種を作成
// @Description フェスティバルに購入可能な券種を追加します
// @Tags ticket-types
// @Accept json
// @Produce json
// @Param festival_id path string true "フェスティバルID"
// @Param request body CreateTicketTypeRequest true "券種情報"
// @Success 201 {object} TicketTypeResponse
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /festivals/{festival_id}/ticket-types [post]
func (h *TicketTypeHandler) Create(c echo.Context) error {
	var req CreateTicketTypeRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "無効なリクエスト")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	price, err := decimal.NewFromString(req.Price)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "価格の形式が不正です")
	}
	t, err := h.service.CreateTicketType(c.Request().Context(),
		ticket.NewTicketType(c.Param("festival_id"), req.Name, req.Description, price, req.Stock, req.RequiresNomination))
	if err != nil {
		return domainHTTPError(err)
	}
	return c.JSON(http.StatusCreated, toTicketTypeResponse(t))
}

// ListByFestival godoc
// @Summary フェスティバルの券種一覧を取得
// @Tags ticket-types
// @Produce json
// @Param festival_id path string true "フェスティバルID"
// @Success 200 {array} TicketTypeResponse
// @Failure 404 {object} map[string]string
// @Router /festivals/{festival_id}/ticket-types [get]
func (h *TicketTypeHandler) ListByFestival(c echo.Context) error {
	types, err := h.service.ListTicketTypes(c.Request().Context(), c.Param("festival_id"))
	if err != nil {
		return domainHTTPError(err)
	}
	resp := make([]TicketTypeResponse, len(types))
	for i, t := range types {
		resp[i] = toTicketTypeResponse(t)
	}
	return c.JSON(http.StatusOK, resp)
}

// GetByID godoc
// @Summary 券種を取得
// @Tags ticket-types
// @Produce json
// @Param id path string true "券種ID"
// @Success 200 {object} TicketTypeResponse
// @Failure 404 {object} map[string]string
// @Router /ticket-types/{id} [get]
func (h *TicketTypeHandler) GetByID(c echo.Context) error {
	t, err := h.service.GetTicketType(c.Request().Context(), c.Param("id"))
	if err != nil {
		return domainHTTPError(err)
	}
	return c.JSON(http.StatusOK, toTicketTypeResponse(t))
}
