package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/sanosuguru/go-festival-cashless/internal/domain/festival"
)

type FestivalHandler struct {
	service FestivalServiceInterface
}

func NewFestivalHandler(s FestivalServiceInterface) *FestivalHandler {
	return &FestivalHandler{service: s}
}

type CreateFestivalRequest struct {
	Name        string `json:"name" validate:"required" example:"Summer Beats 2026"`
	Description string `json:"description" example:"真夏の野外フェス"`
	Location    string `json:"location" example:"幕張海浜公園"`
	StartDate   string `json:"start_date" validate:"required" example:"2026-08-01"`
	EndDate     string `json:"end_date" validate:"required" example:"2026-08-03"`
}

type ChangeFestivalStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=published cancelled finished" example:"published"`
}

type FestivalResponse struct {
	ID          string    `json:"id" example:"550e8400-e29b-41d4-a716-446655440000"`
	Name        string    `json:"name" example:"Summer Beats 2026"`
	Description string    `json:"description,omitempty"`
	Location    string    `json:"location,omitempty"`
	StartDate   string    `json:"start_date" example:"2026-08-01"`
	EndDate     string    `json:"end_date" example:"2026-08-03"`
	Status      string    `json:"status" example:"published"`
	CreatedAt   time.Time `json:"created_at"`
}

func toFestivalResponse(f *festival.Festival) FestivalResponse {
	return FestivalResponse{
		ID: f.ID, Name: f.Name, Description: f.Description, Location: f.Location,
		StartDate: f.StartDate.Format("2006-01-02"),
		EndDate:   f.EndDate.Format("2006-01-02"),
		Status:    string(f.Status), CreatedAt: f.CreatedAt,
	}
}

// Create godoc
// @Summary フェスティバルを作成
// @Description 新しいフェスティバルをDRAFT状態で作成します
// @Tags festivals
// @Accept json
// @Produce json
// @Param request body CreateFestivalRequest true "フェスティバル情報"
// @Success 201 {object} FestivalResponse
// @Failure 400 {object} map[string]string
// @Router /festivals [post]
func (h *FestivalHandler) Create(c echo.Context) error {
	var req CreateFestivalRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "無効なリクエスト")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	start, err := time.Parse("2006-01-02", req.StartDate)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "開始日の形式が不正です")
	}
	end, err := time.Parse("2006-01-02", req.EndDate)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "終了日の形式が不正です")
	}
	f, err := h.service.CreateFestival(c.Request().Context(),
		festival.NewFestival(req.Name, req.Description, req.Location, start, end))
	if err != nil {
		return domainHTTPError(err)
	}
	return c.JSON(http.StatusCreated, toFestivalResponse(f))
}

// GetByID godoc
// @Summary フェスティバルを取得
// @Tags festivals
// @Produce json
// @Param id path string true "フェスティバルID"
// @Success 200 {object} FestivalResponse
// @Failure 404 {object} map[string]string
// @Router /festivals/{id} [get]
func (h *FestivalHandler) GetByID(c echo.Context) error {
	f, err := h.service.GetFestival(c.Request().Context(), c.Param("id"))
	if err != nil {
		return domainHTTPError(err)
	}
	return c.JSON(http.StatusOK, toFestivalResponse(f))
}

// List godoc
// @Summary フェスティバル一覧を取得
// @Tags festivals
// @Produce json
// @Param limit query int false "取得件数" default(20)
// @Param offset query int false "オフセット" default(0)
// @Success 200 {array} FestivalResponse
// @Router /festivals [get]
func (h *FestivalHandler) List(c echo.Context) error {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	offset, _ := strconv.Atoi(c.QueryParam("offset"))
	festivals, err := h.service.ListFestivals(c.Request().Context(), limit, offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	resp := make([]FestivalResponse, len(festivals))
	for i, f := range festivals {
		resp[i] = toFestivalResponse(f)
	}
	return c.JSON(http.StatusOK, resp)
}

// ChangeStatus godoc
// @Summary フェスティバルの状態を変更
// @Description DRAFT→PUBLISHED、PUBLISHED→CANCELLED/FINISHED の遷移のみ許可されます
// @Tags festivals
// @Accept json
// @Produce json
// @Param id path string true "フェスティバルID"
// @Param request body ChangeFestivalStatusRequest true "遷移先の状態"
// @Success 200 {object} FestivalResponse
// @Failure 404 {object} map[string]string
// @Failure 412 {object} map[string]string "許可されない状態遷移"
// @Router /festivals/{id}/status [put]
func (h *FestivalHandler) ChangeStatus(c echo.Context) error {
	var req ChangeFestivalStatusRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "無効なリクエスト")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	f, err := h.service.ChangeStatus(c.Request().Context(), c.Param("id"), festival.Status(req.Status))
	if err != nil {
		return domainHTTPError(err)
	}
	return c.JSON(http.StatusOK, toFestivalResponse(f))
}
