package http_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"ordering/internal/adapters/in/auth"
	apihttp "ordering/internal/adapters/in/http"
	"ordering/internal/core/application/usecases/commands"
	"ordering/internal/core/application/usecases/queries"
	"ordering/internal/core/domain/model/actor"
	"ordering/internal/core/domain/model/kernel"
	"ordering/internal/core/domain/model/order"
	"ordering/internal/pkg/errs"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"golang.org/x/time/rate"
)

type createOrderMock struct{ mock.Mock }

func (m *createOrderMock) Handle(ctx context.Context, cmd commands.CreateOrderCommand) (*order.Order, error) {
	args := m.Called(ctx, cmd)
	o, _ := args.Get(0).(*order.Order)
	return o, args.Error(1)
}

type transitionMock struct{ mock.Mock }

func (m *transitionMock) Handle(ctx context.Context, cmd commands.RequestTransitionCommand) (*order.Order, error) {
	args := m.Called(ctx, cmd)
	o, _ := args.Get(0).(*order.Order)
	return o, args.Error(1)
}

type updateItemsMock struct{ mock.Mock }

func (m *updateItemsMock) Handle(ctx context.Context, cmd commands.UpdateOrderItemsCommand) (*order.Order, error) {
	args := m.Called(ctx, cmd)
	o, _ := args.Get(0).(*order.Order)
	return o, args.Error(1)
}

type setEditingMock struct{ mock.Mock }

func (m *setEditingMock) Handle(ctx context.Context, cmd commands.SetEditingCommand) (order.EditingState, error) {
	args := m.Called(ctx, cmd)
	return args.Get(0).(order.EditingState), args.Error(1)
}

type syncDMSMock struct{ mock.Mock }

func (m *syncDMSMock) Handle(ctx context.Context, cmd commands.SyncDMSCommand) (commands.SyncDMSResult, error) {
	args := m.Called(ctx, cmd)
	return args.Get(0).(commands.SyncDMSResult), args.Error(1)
}

type getOrderMock struct{ mock.Mock }

func (m *getOrderMock) Handle(ctx context.Context, query queries.GetOrderQuery) (queries.OrderView, error) {
	args := m.Called(ctx, query)
	return args.Get(0).(queries.OrderView), args.Error(1)
}

type listOrdersMock struct{ mock.Mock }

func (m *listOrdersMock) Handle(ctx context.Context, query queries.ListCompanyOrdersQuery) ([]queries.OrderSummary, error) {
	args := m.Called(ctx, query)
	summaries, _ := args.Get(0).([]queries.OrderSummary)
	return summaries, args.Error(1)
}

type ServerTestSuite struct {
	suite.Suite

	e      *echo.Echo
	tokens *auth.TokenParser

	createOrder *createOrderMock
	transition  *transitionMock
	updateItems *updateItemsMock
	setEditing  *setEditingMock
	syncDMS     *syncDMSMock
	getOrder    *getOrderMock
	listOrders  *listOrdersMock

	companyID kernel.UUID
	admin     actor.Actor
	client    actor.Actor
}

func TestServerSuite(t *testing.T) {
	suite.Run(t, new(ServerTestSuite))
}

func (s *ServerTestSuite) SetupTest() {
	s.createOrder = &createOrderMock{}
	s.transition = &transitionMock{}
	s.updateItems = &updateItemsMock{}
	s.setEditing = &setEditingMock{}
	s.syncDMS = &syncDMSMock{}
	s.getOrder = &getOrderMock{}
	s.listOrders = &listOrdersMock{}

	s.tokens = auth.NewTokenParser("test-secret")
	s.companyID = kernel.NewUUID()

	var err error
	s.admin, err = actor.New(kernel.NewUUID(), "Bob", actor.Admin, nil)
	s.Require().NoError(err)
	s.client, err = actor.New(kernel.NewUUID(), "Alice", actor.ClientAdmin, &s.companyID)
	s.Require().NoError(err)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	server := apihttp.NewServer(
		s.createOrder, s.transition, s.updateItems, s.setEditing,
		s.syncDMS, s.getOrder, s.listOrders, logger,
	)

	s.e = echo.New()
	api := s.e.Group("/api/v1", apihttp.Authenticate(s.tokens))
	server.Register(api, apihttp.NewRateLimiter(rate.Inf, 1).Middleware())
}

func (s *ServerTestSuite) TearDownTest() {
	s.createOrder.AssertExpectations(s.T())
	s.transition.AssertExpectations(s.T())
	s.updateItems.AssertExpectations(s.T())
	s.setEditing.AssertExpectations(s.T())
	s.syncDMS.AssertExpectations(s.T())
	s.getOrder.AssertExpectations(s.T())
	s.listOrders.AssertExpectations(s.T())
}

func (s *ServerTestSuite) do(method, path string, as *actor.Actor, body string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if as != nil {
		token, err := s.tokens.Issue(*as, time.Hour)
		s.Require().NoError(err)
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	return v
}

func (s *ServerTestSuite) pendingView(orderID kernel.UUID) queries.OrderView {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	tva := decimal.NewFromInt(20)
	return queries.OrderView{
		OrderSummary: queries.OrderSummary{
			ID:             orderID,
			CompanyID:      s.companyID,
			DMSRef:         "CMD-1",
			Status:         order.Pending,
			TotalHT:        decimal.RequireFromString("25.50"),
			CreatedAt:      now,
			LastModifiedAt: now,
		},
		Items: []queries.OrderItemView{{
			ProductRef:   "P-1",
			Designation:  "Filter",
			Quantity:     3,
			UnitPrice:    decimal.RequireFromString("8.50"),
			TVARate:      &tva,
			Availability: order.Available,
			TotalHT:      decimal.RequireFromString("25.50"),
		}},
		TotalTVA:          decimal.RequireFromString("5.10"),
		TotalTTC:          decimal.RequireFromString("30.60"),
		CooldownRemaining: 11500 * time.Millisecond,
	}
}

func (s *ServerTestSuite) Test_MissingTokenIsUnauthorized() {
	rec := s.do(http.MethodGet, "/api/v1/orders/"+kernel.NewUUID().String(), nil, "")

	s.Equal(http.StatusUnauthorized, rec.Code)
	body := decode[apihttp.Error](s.T(), rec)
	s.Equal(http.StatusUnauthorized, body.Code)
}

func (s *ServerTestSuite) Test_GetOrder() {
	orderID := kernel.NewUUID()
	s.getOrder.On("Handle", mock.Anything, mock.MatchedBy(func(q queries.GetOrderQuery) bool {
		return q.OrderID() == orderID && q.Caller().ID() == s.client.ID()
	})).Return(s.pendingView(orderID), nil)

	rec := s.do(http.MethodGet, "/api/v1/orders/"+orderID.String(), &s.client, "")

	s.Require().Equal(http.StatusOK, rec.Code)
	body := decode[map[string]any](s.T(), rec)
	s.Equal(orderID.String(), body["id"])
	s.Equal("PENDING", body["status"])
	s.Equal("25.5", body["totalHt"])
	s.Equal(false, body["isEditing"])
	s.Nil(body["editingByUserName"])
	s.InDelta(12, body["cooldownRemainingSeconds"], 0)
	s.Len(body["items"], 1)
}

func (s *ServerTestSuite) Test_GetOrder_InvalidID() {
	rec := s.do(http.MethodGet, "/api/v1/orders/not-a-uuid", &s.client, "")

	s.Equal(http.StatusBadRequest, rec.Code)
}

func (s *ServerTestSuite) Test_GetOrder_NotFound() {
	orderID := kernel.NewUUID()
	s.getOrder.On("Handle", mock.Anything, mock.Anything).
		Return(queries.OrderView{}, errs.NewObjectNotFoundError("order", orderID.String()))

	rec := s.do(http.MethodGet, "/api/v1/orders/"+orderID.String(), &s.client, "")

	s.Equal(http.StatusNotFound, rec.Code)
}

func (s *ServerTestSuite) Test_RequestTransition() {
	orderID := kernel.NewUUID()
	view := s.pendingView(orderID)
	view.Status = order.Validated

	s.transition.On("Handle", mock.Anything, mock.MatchedBy(func(cmd commands.RequestTransitionCommand) bool {
		return cmd.OrderID() == orderID && cmd.Target() == order.Validated
	})).Return(nil, nil)
	s.getOrder.On("Handle", mock.Anything, mock.Anything).Return(view, nil)

	rec := s.do(http.MethodPatch, "/api/v1/orders/"+orderID.String()+"/status", &s.client, `{"status":"validated"}`)

	s.Require().Equal(http.StatusOK, rec.Code)
	body := decode[map[string]any](s.T(), rec)
	s.Equal("VALIDATED", body["status"])
}

func (s *ServerTestSuite) Test_RequestTransition_Refusals() {
	tests := []struct {
		name     string
		err      error
		code     int
		validate func(body apihttp.Error)
	}{
		{
			name: "cooldown",
			err:  errs.NewCooldownError(19200 * time.Millisecond),
			code: http.StatusPreconditionFailed,
			validate: func(body apihttp.Error) {
				s.Require().NotNil(body.RemainingSeconds)
				s.Equal(20, *body.RemainingSeconds)
				s.Empty(body.EditingByUserName)
			},
		},
		{
			name: "being edited",
			err:  errs.NewOrderIsBeingEditedError("Carol"),
			code: http.StatusPreconditionFailed,
			validate: func(body apihttp.Error) {
				s.Nil(body.RemainingSeconds)
				s.Equal("Carol", body.EditingByUserName)
			},
		},
		{
			name: "invalid transition",
			err:  errs.NewInvalidTransitionError(order.Shipped, order.Pending),
			code: http.StatusConflict,
		},
		{
			name: "stale version",
			err:  errs.NewVersionIsInvalidError("order", 3),
			code: http.StatusConflict,
		},
		{
			name: "forbidden",
			err:  errs.NewForbiddenError("validate order", "someone"),
			code: http.StatusForbidden,
		},
		{
			name: "unexpected",
			err:  assert.AnError,
			code: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			s.SetupTest()
			s.transition.On("Handle", mock.Anything, mock.Anything).Return(nil, tt.err)

			rec := s.do(http.MethodPatch, "/api/v1/orders/"+kernel.NewUUID().String()+"/status", &s.client,
				`{"status":"VALIDATED"}`)

			s.Equal(tt.code, rec.Code)
			body := decode[apihttp.Error](s.T(), rec)
			s.Equal(tt.code, body.Code)
			if tt.validate != nil {
				tt.validate(body)
			}
		})
	}
}

func (s *ServerTestSuite) Test_RequestTransition_UnknownStatus() {
	rec := s.do(http.MethodPatch, "/api/v1/orders/"+kernel.NewUUID().String()+"/status", &s.client,
		`{"status":"LOST"}`)

	s.Equal(http.StatusBadRequest, rec.Code)
}

func (s *ServerTestSuite) Test_SetEditing() {
	orderID := kernel.NewUUID()
	started := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	userID := s.client.ID()

	s.setEditing.On("Handle", mock.Anything, mock.MatchedBy(func(cmd commands.SetEditingCommand) bool {
		return cmd.OrderID() == orderID && cmd.IsEditing()
	})).Return(order.EditingState{UserID: &userID, UserName: "Alice", StartedAt: &started}, nil)

	rec := s.do(http.MethodPatch, "/api/v1/orders/"+orderID.String()+"/editing", &s.client, `{"isEditing":true}`)

	s.Require().Equal(http.StatusOK, rec.Code)
	body := decode[apihttp.Editing](s.T(), rec)
	s.True(body.IsEditing)
	s.Require().NotNil(body.EditingByUserID)
	s.Equal(userID.String(), *body.EditingByUserID)
	s.Require().NotNil(body.EditingByUserName)
	s.Equal("Alice", *body.EditingByUserName)
}

func (s *ServerTestSuite) Test_SetEditing_LockHeld() {
	s.setEditing.On("Handle", mock.Anything, mock.Anything).
		Return(order.EditingState{}, errs.NewLockHeldError(kernel.NewUUID().String(), "Carol"))

	rec := s.do(http.MethodPatch, "/api/v1/orders/"+kernel.NewUUID().String()+"/editing", &s.client,
		`{"isEditing":true}`)

	s.Equal(http.StatusLocked, rec.Code)
	body := decode[apihttp.Error](s.T(), rec)
	s.Equal("Carol", body.HolderName)
}

func (s *ServerTestSuite) Test_SetEditing_RequiresFlag() {
	rec := s.do(http.MethodPatch, "/api/v1/orders/"+kernel.NewUUID().String()+"/editing", &s.client, `{}`)

	s.Equal(http.StatusBadRequest, rec.Code)
}

func (s *ServerTestSuite) Test_UpdateOrderItems() {
	orderID := kernel.NewUUID()
	s.updateItems.On("Handle", mock.Anything, mock.MatchedBy(func(cmd commands.UpdateOrderItemsCommand) bool {
		return cmd.OrderID() == orderID && len(cmd.Items()) == 2
	})).Return(nil, nil)
	s.getOrder.On("Handle", mock.Anything, mock.Anything).Return(s.pendingView(orderID), nil)

	rec := s.do(http.MethodPut, "/api/v1/orders/"+orderID.String(), &s.client, `{"items":[
		{"productRef":"P-1","designation":"Filter","quantity":3,"unitPrice":"8.50","tvaRate":"20"},
		{"productRef":"P-2","quantity":1,"unitPrice":"4","availability":"RUPTURE"}
	]}`)

	s.Equal(http.StatusOK, rec.Code)
}

func (s *ServerTestSuite) Test_UpdateOrderItems_InvalidLine() {
	rec := s.do(http.MethodPut, "/api/v1/orders/"+kernel.NewUUID().String(), &s.client,
		`{"items":[{"productRef":"P-1","quantity":0,"unitPrice":"1"}]}`)

	s.Equal(http.StatusBadRequest, rec.Code)
}

func (s *ServerTestSuite) Test_UpdateOrderItems_NotEditable() {
	s.updateItems.On("Handle", mock.Anything, mock.Anything).Return(nil, order.ErrOrderIsNotEditable)

	rec := s.do(http.MethodPut, "/api/v1/orders/"+kernel.NewUUID().String(), &s.client,
		`{"items":[{"productRef":"P-1","quantity":1,"unitPrice":"1"}]}`)

	s.Equal(http.StatusConflict, rec.Code)
}

func (s *ServerTestSuite) Test_CreateOrder() {
	item, err := order.NewItem("P-1", "", 1, decimal.NewFromInt(4), nil, order.Available)
	s.Require().NoError(err)
	created, err := order.NewOrder(kernel.NewUUID(), s.companyID, "CMD-9", []order.Item{item}, time.Now())
	s.Require().NoError(err)

	s.createOrder.On("Handle", mock.Anything, mock.MatchedBy(func(cmd commands.CreateOrderCommand) bool {
		return !cmd.OrderID().IsZero() && cmd.CompanyID() == s.companyID &&
			cmd.DMSRef() == "CMD-9" && len(cmd.Items()) == 1
	})).Return(created, nil)
	s.getOrder.On("Handle", mock.Anything, mock.MatchedBy(func(q queries.GetOrderQuery) bool {
		return q.OrderID() == created.ID()
	})).Return(s.pendingView(created.ID()), nil)

	body := `{"companyId":"` + s.companyID.String() + `","dmsRef":"CMD-9",` +
		`"items":[{"productRef":"P-1","quantity":1,"unitPrice":"4"}]}`
	rec := s.do(http.MethodPost, "/api/v1/orders", &s.client, body)

	s.Require().Equal(http.StatusCreated, rec.Code)
	response := decode[apihttp.Order](s.T(), rec)
	s.Equal(created.ID().String(), response.ID)
}

func (s *ServerTestSuite) Test_CreateOrder_NoLines() {
	body := `{"companyId":"` + s.companyID.String() + `","items":[]}`
	rec := s.do(http.MethodPost, "/api/v1/orders", &s.client, body)

	s.Equal(http.StatusBadRequest, rec.Code)
}

func (s *ServerTestSuite) Test_ListOrders_ClientDefaultsToOwnCompany() {
	s.listOrders.On("Handle", mock.Anything, mock.MatchedBy(func(q queries.ListCompanyOrdersQuery) bool {
		return q.CompanyID() == s.companyID && q.Status() == order.Unknown
	})).Return([]queries.OrderSummary{s.pendingView(kernel.NewUUID()).OrderSummary}, nil)

	rec := s.do(http.MethodGet, "/api/v1/orders", &s.client, "")

	s.Require().Equal(http.StatusOK, rec.Code)
	body := decode[[]apihttp.OrderSummary](s.T(), rec)
	s.Len(body, 1)
	s.Equal("PENDING", body[0].Status)
}

func (s *ServerTestSuite) Test_ListOrders_StatusFilter() {
	s.listOrders.On("Handle", mock.Anything, mock.MatchedBy(func(q queries.ListCompanyOrdersQuery) bool {
		return q.CompanyID() == s.companyID && q.Status() == order.Shipped
	})).Return([]queries.OrderSummary{}, nil)

	rec := s.do(http.MethodGet, "/api/v1/orders?companyId="+s.companyID.String()+"&status=shipped", &s.admin, "")

	s.Require().Equal(http.StatusOK, rec.Code)
	s.JSONEq(`[]`, rec.Body.String())
}

func (s *ServerTestSuite) Test_ListOrders_InternalNeedsCompany() {
	rec := s.do(http.MethodGet, "/api/v1/orders", &s.admin, "")

	s.Equal(http.StatusBadRequest, rec.Code)
}

func (s *ServerTestSuite) Test_SyncDMS() {
	s.syncDMS.On("Handle", mock.Anything, mock.Anything).
		Return(commands.SyncDMSResult{Synced: 2, Message: "2 orders synchronized"}, nil)

	rec := s.do(http.MethodPost, "/api/v1/orders/sync-dms", &s.admin, "")

	s.Require().Equal(http.StatusOK, rec.Code)
	s.JSONEq(`{"synced":2,"errors":[],"message":"2 orders synchronized"}`, rec.Body.String())
}

func (s *ServerTestSuite) Test_SyncDMS_Unavailable() {
	s.syncDMS.On("Handle", mock.Anything, mock.Anything).
		Return(commands.SyncDMSResult{}, errs.NewExternalUnavailableError("dms", assert.AnError))

	rec := s.do(http.MethodPost, "/api/v1/orders/sync-dms", &s.admin, "")

	s.Equal(http.StatusServiceUnavailable, rec.Code)
}

func TestRateLimiter_RefusesOverBudget(t *testing.T) {
	tokens := auth.NewTokenParser("test-secret")
	admin, err := actor.New(kernel.NewUUID(), "Bob", actor.Admin, nil)
	require.NoError(t, err)
	token, err := tokens.Issue(admin, time.Hour)
	require.NoError(t, err)

	e := echo.New()
	limiter := apihttp.NewRateLimiter(rate.Every(time.Hour), 1)
	e.POST("/", func(c echo.Context) error { return c.NoContent(http.StatusNoContent) },
		apihttp.Authenticate(tokens), limiter.Middleware())

	send := func() int {
		req := httptest.NewRequest(http.MethodPost, "/", nil)
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusNoContent, send())
	assert.Equal(t, http.StatusTooManyRequests, send())
}

func TestRegisterDocs_ServesOpenAPIDocument(t *testing.T) {
	e := echo.New()
	apihttp.RegisterDocs(e)

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/swagger/doc.json", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var doc struct {
		BasePath string                    `json:"basePath"`
		Paths    map[string]map[string]any `json:"paths"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &doc))
	assert.Equal(t, "/api/v1", doc.BasePath)
	assert.Contains(t, doc.Paths["/orders/{id}/status"], "patch")
	assert.Contains(t, doc.Paths["/orders/sync-dms"], "post")
	assert.Contains(t, doc.Paths["/orders"], "post")
}
