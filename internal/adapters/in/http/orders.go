package http

import (
	"net/http"

	"fooddispatch/internal/core/application/usecases/commands"
	"fooddispatch/internal/core/application/usecases/queries"
	"fooddispatch/internal/core/domain/model/access"
	"fooddispatch/internal/core/domain/model/kernel"
	"fooddispatch/internal/core/domain/model/order"
	"fooddispatch/internal/pkg/errs"

	"github.com/labstack/echo/v4"
	"github.com/oapi-codegen/runtime"
)

// CreateOrder places an order priced from the restaurant's current menu.
//
//	@Summary	Place an order
//	@Tags		orders
//	@Accept		json
//	@Produce	json
//	@Param		body	body		CreateOrderRequest	true	"order lines"
//	@Success	201		{object}	OrderResponse
//	@Failure	400		{object}	ErrorResponse
//	@Failure	404		{object}	ErrorResponse
//	@Security	bearerAuth
//	@Router		/api/v1/orders [post]
func (s *Server) CreateOrder(c echo.Context) error {
	var req CreateOrderRequest
	if err := c.Bind(&req); err != nil {
		return err
	}

	actor := principalFrom(c)
	cmd, err := commands.NewCreateOrderCommand(actor, kernel.NewUUID(),
		kernel.UUIDFromGoogle(req.RestaurantID), req.lines())
	if err != nil {
		return err
	}

	ctx := c.Request().Context()
	if err = s.handlers.CreateOrder.Handle(ctx, cmd); err != nil {
		return err
	}

	view, err := s.orderView(ctx, actor, cmd.OrderID())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, view)
}

// ListOrders streams the caller's scope and returns the first page.
//
//	@Summary	List visible orders, newest first
//	@Tags		orders
//	@Produce	json
//	@Param		status	query		string	false	"status filter"
//	@Param		limit	query		int		false	"page size"
//	@Success	200		{object}	OrderListResponse
//	@Security	bearerAuth
//	@Router		/api/v1/orders [get]
func (s *Server) ListOrders(c echo.Context) error {
	limit, err := queryLimit(c)
	if err != nil {
		return err
	}

	var rawStatus *string
	if err = runtime.BindQueryParameter("form", true, false, "status", c.QueryParams(), &rawStatus); err != nil {
		return errs.NewValueIsInvalidErrorWithCause("status", err)
	}
	var status *order.Status
	if rawStatus != nil {
		parsed, parseErr := order.ParseStatus(*rawStatus)
		if parseErr != nil {
			return parseErr
		}
		status = &parsed
	}

	query, err := queries.NewListOrdersQuery(principalFrom(c), status, limit)
	if err != nil {
		return err
	}
	seq, err := s.handlers.ListOrders.Handle(c.Request().Context(), query)
	if err != nil {
		return err
	}

	resp := OrderListResponse{Items: make([]OrderResponse, 0, query.PageSize())}
	for view, iterErr := range seq {
		if iterErr != nil {
			return iterErr
		}
		resp.Items = append(resp.Items, orderResponseOf(view))
		if len(resp.Items) == query.PageSize() {
			break
		}
	}
	return c.JSON(http.StatusOK, resp)
}

// GetOrder returns one order with its status history.
//
//	@Summary	Read an order
//	@Tags		orders
//	@Produce	json
//	@Param		id	path		string	true	"order id"
//	@Success	200	{object}	OrderResponse
//	@Failure	404	{object}	ErrorResponse
//	@Security	bearerAuth
//	@Router		/api/v1/orders/{id} [get]
func (s *Server) GetOrder(c echo.Context) error {
	id, err := pathUUID(c, "id")
	if err != nil {
		return err
	}
	view, err := s.orderView(c.Request().Context(), principalFrom(c), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, view)
}

// AcceptOrder moves a placed order into preparation.
//
//	@Summary	Accept an order
//	@Tags		orders
//	@Produce	json
//	@Param		id	path		string	true	"order id"
//	@Success	200	{object}	OrderResponse
//	@Failure	409	{object}	ErrorResponse
//	@Security	bearerAuth
//	@Router		/api/v1/orders/{id}/accept [post]
func (s *Server) AcceptOrder(c echo.Context) error {
	return s.transition(c, func(actor access.Principal, id kernel.UUID) error {
		cmd, err := commands.NewAcceptOrderCommand(actor, id)
		if err != nil {
			return err
		}
		return s.handlers.AcceptOrder.Handle(c.Request().Context(), cmd)
	})
}

// MarkReady answers 202 when no driver could be found yet.
//
//	@Summary	Mark an order ready and dispatch it
//	@Tags		orders
//	@Produce	json
//	@Param		id	path		string	true	"order id"
//	@Success	200	{object}	DispatchResponse
//	@Success	202	{object}	DispatchResponse
//	@Failure	409	{object}	ErrorResponse
//	@Security	bearerAuth
//	@Router		/api/v1/orders/{id}/ready [post]
func (s *Server) MarkReady(c echo.Context) error {
	return s.dispatching(c, func(actor access.Principal, id kernel.UUID) (commands.AssignDriverResult, error) {
		cmd, err := commands.NewMarkReadyCommand(actor, id)
		if err != nil {
			return commands.AssignDriverResult{}, err
		}
		return s.handlers.MarkReady.Handle(c.Request().Context(), cmd)
	})
}

// CancelOrder frees the driver slot when an admin cancels an order out for delivery.
//
//	@Summary	Cancel an order
//	@Tags		orders
//	@Produce	json
//	@Param		id	path		string	true	"order id"
//	@Success	200	{object}	OrderResponse
//	@Failure	409	{object}	ErrorResponse
//	@Security	bearerAuth
//	@Router		/api/v1/orders/{id}/cancel [post]
func (s *Server) CancelOrder(c echo.Context) error {
	return s.transition(c, func(actor access.Principal, id kernel.UUID) error {
		cmd, err := commands.NewCancelOrderCommand(actor, id)
		if err != nil {
			return err
		}
		return s.handlers.CancelOrder.Handle(c.Request().Context(), cmd)
	})
}

// ConfirmDelivered
//
//	@Summary	Confirm delivery
//	@Tags		orders
//	@Produce	json
//	@Param		id	path		string	true	"order id"
//	@Success	200	{object}	OrderResponse
//	@Failure	409	{object}	ErrorResponse
//	@Security	bearerAuth
//	@Router		/api/v1/orders/{id}/deliver [post]
func (s *Server) ConfirmDelivered(c echo.Context) error {
	return s.transition(c, func(actor access.Principal, id kernel.UUID) error {
		cmd, err := commands.NewConfirmDeliveredCommand(actor, id)
		if err != nil {
			return err
		}
		return s.handlers.ConfirmDelivered.Handle(c.Request().Context(), cmd)
	})
}

// ReassignDriver omits the order from the body once it belongs to another driver.
//
//	@Summary	Hand an order back and dispatch it again
//	@Tags		orders
//	@Produce	json
//	@Param		id	path		string	true	"order id"
//	@Success	200	{object}	DispatchResponse
//	@Success	202	{object}	DispatchResponse
//	@Failure	409	{object}	ErrorResponse
//	@Security	bearerAuth
//	@Router		/api/v1/orders/{id}/reassign [post]
func (s *Server) ReassignDriver(c echo.Context) error {
	return s.dispatching(c, func(actor access.Principal, id kernel.UUID) (commands.AssignDriverResult, error) {
		cmd, err := commands.NewReassignDriverCommand(actor, id)
		if err != nil {
			return commands.AssignDriverResult{}, err
		}
		return s.handlers.ReassignDriver.Handle(c.Request().Context(), cmd)
	})
}

// AssignDriver
//
//	@Summary	Trigger dispatch of a ready order
//	@Tags		orders
//	@Produce	json
//	@Param		id	path		string	true	"order id"
//	@Success	200	{object}	DispatchResponse
//	@Success	202	{object}	DispatchResponse
//	@Failure	409	{object}	ErrorResponse
//	@Security	bearerAuth
//	@Router		/api/v1/orders/{id}/dispatch [post]
func (s *Server) AssignDriver(c echo.Context) error {
	return s.dispatching(c, func(actor access.Principal, id kernel.UUID) (commands.AssignDriverResult, error) {
		cmd, err := commands.NewAssignDriverCommand(actor, id)
		if err != nil {
			return commands.AssignDriverResult{}, err
		}
		return s.handlers.AssignDriver.Handle(c.Request().Context(), cmd)
	})
}

func (s *Server) transition(c echo.Context, run func(access.Principal, kernel.UUID) error) error {
	id, err := pathUUID(c, "id")
	if err != nil {
		return err
	}
	actor := principalFrom(c)
	if err = run(actor, id); err != nil {
		return err
	}

	view, err := s.orderView(c.Request().Context(), actor, id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, view)
}

func (s *Server) dispatching(
	c echo.Context,
	run func(access.Principal, kernel.UUID) (commands.AssignDriverResult, error),
) error {
	id, err := pathUUID(c, "id")
	if err != nil {
		return err
	}
	result, err := run(principalFrom(c), id)
	if err != nil {
		return err
	}
	result.OrderID = id
	return s.dispatchResponse(c, result)
}
