package http

import (
	"context"
	"log/slog"
	"net/http"

	"ordering/internal/core/application/usecases/commands"
	"ordering/internal/core/application/usecases/queries"
	"ordering/internal/core/domain/model/actor"
	"ordering/internal/core/domain/model/kernel"
	"ordering/internal/core/domain/model/order"
	"ordering/internal/pkg/errs"

	"github.com/labstack/echo/v4"
)

// Use case ports of the server. The application handlers satisfy them
// through their pointer receivers.
type (
	CreateOrderHandler interface {
		Handle(ctx context.Context, cmd commands.CreateOrderCommand) (*order.Order, error)
	}
	RequestTransitionHandler interface {
		Handle(ctx context.Context, cmd commands.RequestTransitionCommand) (*order.Order, error)
	}
	UpdateOrderItemsHandler interface {
		Handle(ctx context.Context, cmd commands.UpdateOrderItemsCommand) (*order.Order, error)
	}
	SetEditingHandler interface {
		Handle(ctx context.Context, cmd commands.SetEditingCommand) (order.EditingState, error)
	}
	SyncDMSHandler interface {
		Handle(ctx context.Context, cmd commands.SyncDMSCommand) (commands.SyncDMSResult, error)
	}
	GetOrderHandler interface {
		Handle(ctx context.Context, query queries.GetOrderQuery) (queries.OrderView, error)
	}
	ListCompanyOrdersHandler interface {
		Handle(ctx context.Context, query queries.ListCompanyOrdersQuery) ([]queries.OrderSummary, error)
	}
)

// Server handles the REST API. It coordinates between HTTP handlers and
// application use cases; every mutating endpoint answers with the order as
// it is after the change.
type Server struct {
	// Command handlers
	createOrderHandler       CreateOrderHandler
	requestTransitionHandler RequestTransitionHandler
	updateOrderItemsHandler  UpdateOrderItemsHandler
	setEditingHandler        SetEditingHandler
	syncDMSHandler           SyncDMSHandler

	// Query handlers
	getOrderHandler          GetOrderHandler
	listCompanyOrdersHandler ListCompanyOrdersHandler

	logger *slog.Logger
}

// NewServer creates a new HTTP server with the required command and query handlers.
func NewServer(
	createOrderHandler CreateOrderHandler,
	requestTransitionHandler RequestTransitionHandler,
	updateOrderItemsHandler UpdateOrderItemsHandler,
	setEditingHandler SetEditingHandler,
	syncDMSHandler SyncDMSHandler,
	getOrderHandler GetOrderHandler,
	listCompanyOrdersHandler ListCompanyOrdersHandler,
	logger *slog.Logger,
) *Server {
	return &Server{
		createOrderHandler:       createOrderHandler,
		requestTransitionHandler: requestTransitionHandler,
		updateOrderItemsHandler:  updateOrderItemsHandler,
		setEditingHandler:        setEditingHandler,
		syncDMSHandler:           syncDMSHandler,
		getOrderHandler:          getOrderHandler,
		listCompanyOrdersHandler: listCompanyOrdersHandler,
		logger:                   logger.With("component", "http_server"),
	}
}

// Register mounts the order routes on api, which must already authenticate.
// mutating wraps every route that changes state, typically the rate limiter.
func (s *Server) Register(api *echo.Group, mutating ...echo.MiddlewareFunc) {
	api.GET("/orders", s.ListOrders)
	api.GET("/orders/:id", s.GetOrder)

	api.POST("/orders", s.CreateOrder, mutating...)
	api.POST("/orders/sync-dms", s.SyncDMS, mutating...)
	api.PUT("/orders/:id", s.UpdateOrderItems, mutating...)
	api.PATCH("/orders/:id/status", s.RequestTransition, mutating...)
	api.PATCH("/orders/:id/editing", s.SetEditing, mutating...)
}

// ListOrders handles GET /api/v1/orders?companyId=&status=.
// Client users default to their own company; internal users must name one.
//
//	@Summary		List company orders
//	@Tags			orders
//	@Produce		json
//	@Security		BearerAuth
//	@Param			companyId	query		string	false	"Company id, defaults to the caller's company"	format(uuid)
//	@Param			status		query		string	false	"Status filter"	Enums(PENDING, VALIDATED, PREPARATION, SHIPPED, INVOICED, CANCELLED)
//	@Success		200			{array}		OrderSummary
//	@Failure		400			{object}	Error
//	@Failure		401			{object}	Error
//	@Failure		403			{object}	Error
//	@Router			/orders [get]
func (s *Server) ListOrders(ctx echo.Context) error {
	caller, err := s.caller(ctx)
	if err != nil {
		return s.fail(ctx, err)
	}

	var companyID kernel.UUID
	switch raw := ctx.QueryParam("companyId"); {
	case raw != "":
		if companyID, err = kernel.UUIDFromString(raw); err != nil {
			return badRequest(ctx, "Invalid companyId")
		}
	case caller.CompanyID() != nil:
		companyID = *caller.CompanyID()
	default:
		return badRequest(ctx, "companyId is required")
	}

	status := order.Unknown
	if raw := ctx.QueryParam("status"); raw != "" {
		if status, err = order.ParseStatus(raw); err != nil {
			return badRequest(ctx, "Invalid status")
		}
	}

	query, err := queries.NewListCompanyOrdersQuery(companyID, status, caller)
	if err != nil {
		return s.fail(ctx, err)
	}

	summaries, err := s.listCompanyOrdersHandler.Handle(ctx.Request().Context(), query)
	if err != nil {
		return s.fail(ctx, err)
	}

	response := make([]OrderSummary, 0, len(summaries))
	for _, summary := range summaries {
		response = append(response, summaryFromView(summary))
	}

	return ctx.JSON(http.StatusOK, response)
}

// GetOrder handles GET /api/v1/orders/:id.
//
//	@Summary		Get an order
//	@Tags			orders
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id	path		string	true	"Order id"	format(uuid)
//	@Success		200	{object}	Order
//	@Failure		400	{object}	Error
//	@Failure		401	{object}	Error
//	@Failure		404	{object}	Error
//	@Router			/orders/{id} [get]
func (s *Server) GetOrder(ctx echo.Context) error {
	caller, orderID, err := s.target(ctx)
	if err != nil {
		return s.fail(ctx, err)
	}

	return s.respondWithOrder(ctx, http.StatusOK, orderID, caller)
}

// CreateOrder handles POST /api/v1/orders.
//
//	@Summary		Create an order
//	@Tags			orders
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			order	body		NewOrder	true	"Order to create"
//	@Success		201		{object}	Order
//	@Failure		400		{object}	Error
//	@Failure		401		{object}	Error
//	@Failure		403		{object}	Error
//	@Failure		429		{object}	Error
//	@Router			/orders [post]
func (s *Server) CreateOrder(ctx echo.Context) error {
	caller, err := s.caller(ctx)
	if err != nil {
		return s.fail(ctx, err)
	}

	var body NewOrder
	if err = ctx.Bind(&body); err != nil {
		return badRequest(ctx, "Invalid request body")
	}

	items, err := itemsToDomain(body.Items)
	if err != nil {
		return s.fail(ctx, err)
	}

	cmd, err := commands.NewCreateOrderCommand(kernel.NewUUID(), body.CompanyID, body.DMSRef, items, caller)
	if err != nil {
		return s.fail(ctx, err)
	}

	created, err := s.createOrderHandler.Handle(ctx.Request().Context(), cmd)
	if err != nil {
		return s.fail(ctx, err)
	}

	return s.respondWithOrder(ctx, http.StatusCreated, created.ID(), caller)
}

// RequestTransition handles PATCH /api/v1/orders/:id/status.
//
//	@Summary		Change the status of an order
//	@Tags			orders
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id		path		string			true	"Order id"	format(uuid)
//	@Param			status	body		StatusChange	true	"Target status"
//	@Success		200		{object}	Order
//	@Failure		400		{object}	Error
//	@Failure		403		{object}	Error
//	@Failure		404		{object}	Error
//	@Failure		409		{object}	Error
//	@Failure		412		{object}	Error	"Cooldown running or order being edited"
//	@Failure		429		{object}	Error
//	@Router			/orders/{id}/status [patch]
func (s *Server) RequestTransition(ctx echo.Context) error {
	caller, orderID, err := s.target(ctx)
	if err != nil {
		return s.fail(ctx, err)
	}

	var body StatusChange
	if err = ctx.Bind(&body); err != nil {
		return badRequest(ctx, "Invalid request body")
	}

	target, err := order.ParseStatus(body.Status)
	if err != nil {
		return s.fail(ctx, err)
	}

	cmd, err := commands.NewRequestTransitionCommand(orderID, target, caller)
	if err != nil {
		return s.fail(ctx, err)
	}

	if _, err = s.requestTransitionHandler.Handle(ctx.Request().Context(), cmd); err != nil {
		return s.fail(ctx, err)
	}

	return s.respondWithOrder(ctx, http.StatusOK, orderID, caller)
}

// UpdateOrderItems handles PUT /api/v1/orders/:id.
//
//	@Summary		Replace the lines of an order
//	@Tags			orders
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id		path		string		true	"Order id"	format(uuid)
//	@Param			items	body		OrderItems	true	"New lines"
//	@Success		200		{object}	Order
//	@Failure		400		{object}	Error
//	@Failure		403		{object}	Error
//	@Failure		404		{object}	Error
//	@Failure		409		{object}	Error
//	@Failure		423		{object}	Error	"Edit lock held by someone else"
//	@Failure		429		{object}	Error
//	@Router			/orders/{id} [put]
func (s *Server) UpdateOrderItems(ctx echo.Context) error {
	caller, orderID, err := s.target(ctx)
	if err != nil {
		return s.fail(ctx, err)
	}

	var body OrderItems
	if err = ctx.Bind(&body); err != nil {
		return badRequest(ctx, "Invalid request body")
	}

	items, err := itemsToDomain(body.Items)
	if err != nil {
		return s.fail(ctx, err)
	}

	cmd, err := commands.NewUpdateOrderItemsCommand(orderID, items, caller)
	if err != nil {
		return s.fail(ctx, err)
	}

	if _, err = s.updateOrderItemsHandler.Handle(ctx.Request().Context(), cmd); err != nil {
		return s.fail(ctx, err)
	}

	return s.respondWithOrder(ctx, http.StatusOK, orderID, caller)
}

// SetEditing handles PATCH /api/v1/orders/:id/editing and answers with the
// lock state after the call.
//
//	@Summary		Take or release the edit lock
//	@Tags			orders
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id		path		string			true	"Order id"	format(uuid)
//	@Param			editing	body		EditingChange	true	"Lock request"
//	@Success		200		{object}	Editing
//	@Failure		400		{object}	Error
//	@Failure		403		{object}	Error
//	@Failure		404		{object}	Error
//	@Failure		423		{object}	Error
//	@Failure		429		{object}	Error
//	@Router			/orders/{id}/editing [patch]
func (s *Server) SetEditing(ctx echo.Context) error {
	caller, orderID, err := s.target(ctx)
	if err != nil {
		return s.fail(ctx, err)
	}

	var body EditingChange
	if err = ctx.Bind(&body); err != nil || body.IsEditing == nil {
		return badRequest(ctx, "isEditing is required")
	}

	cmd, err := commands.NewSetEditingCommand(orderID, *body.IsEditing, caller)
	if err != nil {
		return s.fail(ctx, err)
	}

	state, err := s.setEditingHandler.Handle(ctx.Request().Context(), cmd)
	if err != nil {
		return s.fail(ctx, err)
	}

	return ctx.JSON(http.StatusOK, editingFromState(state))
}

// SyncDMS handles POST /api/v1/orders/sync-dms. Per-document failures are
// part of a 200 response; only a pass that could not run at all fails.
//
//	@Summary		Reconcile orders with the DMS
//	@Tags			dms
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{object}	commands.SyncDMSResult
//	@Failure		403	{object}	Error
//	@Failure		429	{object}	Error
//	@Failure		503	{object}	Error
//	@Router			/orders/sync-dms [post]
func (s *Server) SyncDMS(ctx echo.Context) error {
	caller, err := s.caller(ctx)
	if err != nil {
		return s.fail(ctx, err)
	}

	cmd, err := commands.NewSyncDMSCommand(caller)
	if err != nil {
		return s.fail(ctx, err)
	}

	result, err := s.syncDMSHandler.Handle(ctx.Request().Context(), cmd)
	if err != nil {
		return s.fail(ctx, err)
	}
	if result.Errors == nil {
		result.Errors = []commands.SyncError{}
	}

	return ctx.JSON(http.StatusOK, result)
}

func (s *Server) respondWithOrder(ctx echo.Context, status int, orderID kernel.UUID, caller actor.Actor) error {
	query, err := queries.NewGetOrderQuery(orderID, caller)
	if err != nil {
		return s.fail(ctx, err)
	}

	view, err := s.getOrderHandler.Handle(ctx.Request().Context(), query)
	if err != nil {
		return s.fail(ctx, err)
	}

	return ctx.JSON(status, orderFromView(view))
}

func (s *Server) caller(ctx echo.Context) (actor.Actor, error) {
	caller, ok := actorFrom(ctx)
	if !ok {
		return actor.Actor{}, errUnauthenticated
	}
	return caller, nil
}

func (s *Server) target(ctx echo.Context) (actor.Actor, kernel.UUID, error) {
	caller, err := s.caller(ctx)
	if err != nil {
		return actor.Actor{}, kernel.UUID{}, err
	}

	orderID, err := kernel.UUIDFromString(ctx.Param("id"))
	if err != nil {
		return actor.Actor{}, kernel.UUID{}, errs.NewValueIsInvalidErrorWithCause("id", err)
	}

	return caller, orderID, nil
}
