package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/sanosuguru/go-festival-cashless/internal/domain/stats"
)

type StatsHandler struct {
	service StatsServiceInterface
}

func NewStatsHandler(s StatsServiceInterface) *StatsHandler {
	return &StatsHandler{service: s}
}

type StatsResponse struct {
	FestivalID  string    `json:"festival_id"`
	TicketsSold int       `json:"tickets_sold" example:"1234"`
	Revenue     string    `json:"revenue" example:"61700.00"`
	TopUpTotal  string    `json:"topup_total" example:"24680.00"`
	SpendTotal  string    `json:"spend_total" example:"19530.50"`
	ComputedAt  time.Time `json:"computed_at"`
}

func toStatsResponse(s *stats.FestivalStats) StatsResponse {
	return StatsResponse{
		FestivalID:  s.FestivalID,
		TicketsSold: s.TicketsSold,
		Revenue:     s.Revenue.StringFixed(2),
		TopUpTotal:  s.TopUpTotal.StringFixed(2),
		SpendTotal:  s.SpendTotal.StringFixed(2),
		ComputedAt:  s.ComputedAt,
	}
}

// Get godoc
// @Summary フェスティバルの集計を取得
// @Description 販売枚数・売上・チャージ総額・消費総額のスナップショットを返します
// @Tags stats
// @Produce json
// @Param festival_id path string true "フェスティバルID"
// @Success 200 {object} StatsResponse
// @Failure 404 {object} map[string]string
// @Router /festivals/{festival_id}/stats [get]
func (h *StatsHandler) Get(c echo.Context) error {
	s, err := h.service.GetStats(c.Request().Context(), c.Param("festival_id"))
	if err != nil {
		return domainHTTPError(err)
	}
	return c.JSON(http.StatusOK, toStatsResponse(s))
}

// Recompute godoc
// @Summary フェスティバルの集計を再計算
// @Description キャッシュを無視して台帳から正確に再計算します
// @Tags stats
// @Produce json
// @Param festival_id path string true "フェスティバルID"
// @Success 200 {object} StatsResponse
// @Failure 404 {object} map[string]string
// @Router /festivals/{festival_id}/stats/recompute [post]
func (h *StatsHandler) Recompute(c echo.Context) error {
	s, err := h.service.Recompute(c.Request().Context(), c.Param("festival_id"))
	if err != nil {
		return domainHTTPError(err)
	}
	return c.JSON(http.StatusOK, toStatsResponse(s))
}
