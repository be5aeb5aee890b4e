package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/sanosuguru/go-festival-cashless/internal/application"
	"github.com/sanosuguru/go-festival-cashless/internal/domain/ticket"
	"github.com/sanosuguru/go-festival-cashless/internal/domain/wristband"
)

// MockWristbandService はWristbandServiceInterfaceのモック
type MockWristbandService struct {
	mock.Mock
}

func (m *MockWristbandService) Bind(ctx context.Context, input application.BindInput) (*wristband.Wristband, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*wristband.Wristband), args.Error(1)
}

func (m *MockWristbandService) TopUp(ctx context.Context, input application.TopUpInput) (*wristband.Wristband, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*wristband.Wristband), args.Error(1)
}

func (m *MockWristbandService) Spend(ctx context.Context, input application.SpendInput) (*wristband.Wristband, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*wristband.Wristband), args.Error(1)
}

func (m *MockWristbandService) GetWristband(ctx context.Context, uid string) (*wristband.Wristband, error) {
	args := m.Called(ctx, uid)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*wristband.Wristband), args.Error(1)
}

func (m *MockWristbandService) GetLedger(ctx context.Context, uid string) ([]*wristband.BalanceTransaction, error) {
	args := m.Called(ctx, uid)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*wristband.BalanceTransaction), args.Error(1)
}

func testBoundWristband() *wristband.Wristband {
	now := time.Now()
	ticketID := "tick-1"
	return &wristband.Wristband{
		ID: "wb-1", UID: "04A2B3", FestivalID: "fes-1",
		AssignedTicketID: &ticketID,
		Balance:          decimal.NewFromInt(20),
		Active:           true, BoundAt: &now, CreatedAt: now, UpdatedAt: now,
	}
}

func TestWristbandHandler_Bind(t *testing.T) {
	e := NewTestEcho()

	t.Run("正常にリストバンドを紐付けできる", func(t *testing.T) {
		mockService := new(MockWristbandService)
		mockService.On("Bind", mock.Anything, application.BindInput{UID: "04A2B3", TicketID: "tick-1"}).
			Return(testBoundWristband(), nil)

		handler := NewWristbandHandler(mockService)

		reqBody := `{"ticket_id": "tick-1"}`
		req := httptest.NewRequest(http.MethodPost, "/wristbands/04A2B3/bind", strings.NewReader(reqBody))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.SetParamNames("uid")
		c.SetParamValues("04A2B3")

		err := handler.Bind(c)

		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, rec.Code)

		var resp WristbandResponse
		err = json.Unmarshal(rec.Body.Bytes(), &resp)
		require.NoError(t, err)
		assert.Equal(t, "04A2B3", resp.UID)
		require.NotNil(t, resp.AssignedTicketID)
		assert.Equal(t, "tick-1", *resp.AssignedTicketID)

		mockService.AssertExpectations(t)
	})

	t.Run("別のチケットに紐付け済みの場合409", func(t *testing.T) {
		mockService := new(MockWristbandService)
		mockService.On("Bind", mock.Anything, mock.Anything).
			Return(nil, &wristband.AlreadyBoundError{UID: "04A2B3", BoundTicketID: "tick-other"})

		handler := NewWristbandHandler(mockService)

		reqBody := `{"ticket_id": "tick-1"}`
		req := httptest.NewRequest(http.MethodPost, "/wristbands/04A2B3/bind", strings.NewReader(reqBody))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.SetParamNames("uid")
		c.SetParamValues("04A2B3")

		err := handler.Bind(c)

		require.Error(t, err)
		he, ok := err.(*echo.HTTPError)
		require.True(t, ok)
		assert.Equal(t, http.StatusConflict, he.Code)
	})

	t.Run("チケットが別のリストバンドに取られていた場合409", func(t *testing.T) {
		mockService := new(MockWristbandService)
		mockService.On("Bind", mock.Anything, mock.Anything).
			Return(nil, wristband.ErrTicketAlreadyLinked)

		handler := NewWristbandHandler(mockService)

		reqBody := `{"ticket_id": "tick-1"}`
		req := httptest.NewRequest(http.MethodPost, "/wristbands/04B5C6/bind", strings.NewReader(reqBody))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.SetParamNames("uid")
		c.SetParamValues("04B5C6")

		err := handler.Bind(c)

		require.Error(t, err)
		he, ok := err.(*echo.HTTPError)
		require.True(t, ok)
		assert.Equal(t, http.StatusConflict, he.Code)
	})

	t.Run("未記名チケットの場合412", func(t *testing.T) {
		mockService := new(MockWristbandService)
		mockService.On("Bind", mock.Anything, mock.Anything).
			Return(nil, ticket.ErrTicketNotNominated)

		handler := NewWristbandHandler(mockService)

		reqBody := `{"ticket_id": "tick-1"}`
		req := httptest.NewRequest(http.MethodPost, "/wristbands/04A2B3/bind", strings.NewReader(reqBody))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.SetParamNames("uid")
		c.SetParamValues("04A2B3")

		err := handler.Bind(c)

		require.Error(t, err)
		he, ok := err.(*echo.HTTPError)
		require.True(t, ok)
		assert.Equal(t, http.StatusPreconditionFailed, he.Code)
	})
}

func TestWristbandHandler_TopUp(t *testing.T) {
	e := NewTestEcho()

	t.Run("正常にチャージできる", func(t *testing.T) {
		mockService := new(MockWristbandService)
		w := testBoundWristband()
		w.Balance = decimal.NewFromInt(40)
		mockService.On("TopUp", mock.Anything, application.TopUpInput{
			UID: "04A2B3", Amount: decimal.RequireFromString("20.00"), Method: "cash",
		}).Return(w, nil)

		handler := NewWristbandHandler(mockService)

		reqBody := `{"amount": "20.00", "method": "cash"}`
		req := httptest.NewRequest(http.MethodPost, "/wristbands/04A2B3/topup", strings.NewReader(reqBody))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.SetParamNames("uid")
		c.SetParamValues("04A2B3")

		err := handler.TopUp(c)

		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, rec.Code)

		var resp WristbandResponse
		err = json.Unmarshal(rec.Body.Bytes(), &resp)
		require.NoError(t, err)
		assert.Equal(t, "40.00", resp.Balance)

		mockService.AssertExpectations(t)
	})

	t.Run("金額の形式が不正な場合400", func(t *testing.T) {
		mockService := new(MockWristbandService)
		handler := NewWristbandHandler(mockService)

		reqBody := `{"amount": "twenty", "method": "cash"}`
		req := httptest.NewRequest(http.MethodPost, "/wristbands/04A2B3/topup", strings.NewReader(reqBody))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.SetParamNames("uid")
		c.SetParamValues("04A2B3")

		err := handler.TopUp(c)

		require.Error(t, err)
		he, ok := err.(*echo.HTTPError)
		require.True(t, ok)
		assert.Equal(t, http.StatusBadRequest, he.Code)
		mockService.AssertNotCalled(t, "TopUp", mock.Anything, mock.Anything)
	})

	t.Run("不正な決済手段はバリデーションエラー", func(t *testing.T) {
		mockService := new(MockWristbandService)
		handler := NewWristbandHandler(mockService)

		reqBody := `{"amount": "20.00", "method": "bitcoin"}`
		req := httptest.NewRequest(http.MethodPost, "/wristbands/04A2B3/topup", strings.NewReader(reqBody))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.SetParamNames("uid")
		c.SetParamValues("04A2B3")

		err := handler.TopUp(c)

		require.Error(t, err)
		mockService.AssertNotCalled(t, "TopUp", mock.Anything, mock.Anything)
	})
}

func TestWristbandHandler_Spend(t *testing.T) {
	e := NewTestEcho()

	t.Run("正常に決済できる", func(t *testing.T) {
		mockService := new(MockWristbandService)
		w := testBoundWristband()
		w.Balance = decimal.RequireFromString("11.50")
		mockService.On("Spend", mock.Anything, application.SpendInput{
			UID: "04A2B3", FestivalID: "fes-1", Amount: decimal.RequireFromString("8.50"), Description: "ドリンク2点",
		}).Return(w, nil)

		handler := NewWristbandHandler(mockService)

		reqBody := `{"festival_id": "fes-1", "amount": "8.50", "description": "ドリンク2点"}`
		req := httptest.NewRequest(http.MethodPost, "/wristbands/04A2B3/spend", strings.NewReader(reqBody))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.SetParamNames("uid")
		c.SetParamValues("04A2B3")

		err := handler.Spend(c)

		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, rec.Code)

		var resp WristbandResponse
		err = json.Unmarshal(rec.Body.Bytes(), &resp)
		require.NoError(t, err)
		assert.Equal(t, "11.50", resp.Balance)

		mockService.AssertExpectations(t)
	})

	t.Run("残高不足の場合402", func(t *testing.T) {
		mockService := new(MockWristbandService)
		mockService.On("Spend", mock.Anything, mock.Anything).
			Return(nil, &wristband.InsufficientFundsError{
				UID: "04A2B3", Balance: decimal.NewFromInt(5), Requested: decimal.NewFromInt(12),
			})

		handler := NewWristbandHandler(mockService)

		reqBody := `{"festival_id": "fes-1", "amount": "12.00"}`
		req := httptest.NewRequest(http.MethodPost, "/wristbands/04A2B3/spend", strings.NewReader(reqBody))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.SetParamNames("uid")
		c.SetParamValues("04A2B3")

		err := handler.Spend(c)

		require.Error(t, err)
		he, ok := err.(*echo.HTTPError)
		require.True(t, ok)
		assert.Equal(t, http.StatusPaymentRequired, he.Code)
	})

	t.Run("別フェスティバルの端末からの決済は412", func(t *testing.T) {
		mockService := new(MockWristbandService)
		mockService.On("Spend", mock.Anything, mock.Anything).
			Return(nil, wristband.ErrFestivalMismatch)

		handler := NewWristbandHandler(mockService)

		reqBody := `{"festival_id": "other-fes", "amount": "8.50"}`
		req := httptest.NewRequest(http.MethodPost, "/wristbands/04A2B3/spend", strings.NewReader(reqBody))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.SetParamNames("uid")
		c.SetParamValues("04A2B3")

		err := handler.Spend(c)

		require.Error(t, err)
		he, ok := err.(*echo.HTTPError)
		require.True(t, ok)
		assert.Equal(t, http.StatusPreconditionFailed, he.Code)
	})

	t.Run("フェスティバルIDが無いリクエストはバリデーションで弾かれる", func(t *testing.T) {
		mockService := new(MockWristbandService)
		handler := NewWristbandHandler(mockService)

		reqBody := `{"amount": "8.50"}`
		req := httptest.NewRequest(http.MethodPost, "/wristbands/04A2B3/spend", strings.NewReader(reqBody))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.SetParamNames("uid")
		c.SetParamValues("04A2B3")

		err := handler.Spend(c)

		require.Error(t, err)
		mockService.AssertNotCalled(t, "Spend", mock.Anything, mock.Anything)
	})

	t.Run("リストバンドが見つからない場合404", func(t *testing.T) {
		mockService := new(MockWristbandService)
		mockService.On("Spend", mock.Anything, mock.Anything).
			Return(nil, wristband.ErrWristbandNotFound)

		handler := NewWristbandHandler(mockService)

		reqBody := `{"festival_id": "fes-1", "amount": "8.50"}`
		req := httptest.NewRequest(http.MethodPost, "/wristbands/UNKNOWN/spend", strings.NewReader(reqBody))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.SetParamNames("uid")
		c.SetParamValues("UNKNOWN")

		err := handler.Spend(c)

		require.Error(t, err)
		he, ok := err.(*echo.HTTPError)
		require.True(t, ok)
		assert.Equal(t, http.StatusNotFound, he.Code)
	})
}

func TestWristbandHandler_GetLedger(t *testing.T) {
	e := NewTestEcho()

	t.Run("台帳をコミット順で取得できる", func(t *testing.T) {
		mockService := new(MockWristbandService)
		entries := []*wristband.BalanceTransaction{
			wristband.NewTopUp("wb-1", "fes-1", decimal.NewFromInt(20), "cash"),
			wristband.NewSpend("wb-1", "fes-1", decimal.RequireFromString("8.50"), "ドリンク"),
		}
		mockService.On("GetLedger", mock.Anything, "04A2B3").Return(entries, nil)

		handler := NewWristbandHandler(mockService)

		req := httptest.NewRequest(http.MethodGet, "/wristbands/04A2B3/transactions", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.SetParamNames("uid")
		c.SetParamValues("04A2B3")

		err := handler.GetLedger(c)

		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, rec.Code)

		var resp []LedgerEntryResponse
		err = json.Unmarshal(rec.Body.Bytes(), &resp)
		require.NoError(t, err)
		require.Len(t, resp, 2)
		assert.Equal(t, "topup", resp[0].Kind)
		assert.Equal(t, "spend", resp[1].Kind)

		mockService.AssertExpectations(t)
	})
}
