// Package http is the inbound JSON API. Every route under /api/v1 resolves the
// caller through the auth guard, is validated against the embedded OpenAPI
// contract and then builds exactly one command or query.
package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"fooddispatch/internal/core/application/auth"
	"fooddispatch/internal/core/application/usecases/commands"
	"fooddispatch/internal/core/application/usecases/queries"
	"fooddispatch/internal/core/domain/model/access"
	"fooddispatch/internal/core/domain/model/kernel"
	"fooddispatch/internal/pkg/errs"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	echoSwagger "github.com/swaggo/echo-swagger"
)

// Handlers groups the use cases exposed over HTTP.
type Handlers struct {
	CreateOrder      commands.CreateOrderCommandHandler
	AcceptOrder      commands.AcceptOrderCommandHandler
	MarkReady        commands.MarkReadyCommandHandler
	CancelOrder      commands.CancelOrderCommandHandler
	ConfirmDelivered commands.ConfirmDeliveredCommandHandler
	ReassignDriver   commands.ReassignDriverCommandHandler
	AssignDriver     commands.AssignDriverCommandHandler
	RegisterDriver   commands.RegisterDriverCommandHandler
	SetAvailability  commands.SetDriverAvailabilityCommandHandler
	SetActivation    commands.SetDriverActivationCommandHandler

	ListOrders  queries.ListOrdersQueryHandler
	GetOrder    queries.GetOrderQueryHandler
	ListDrivers queries.ListDriversQueryHandler
}

// Server coordinates between HTTP handlers and application use cases.
type Server struct {
	handlers Handlers
	guard    *auth.Guard
	spec     *Spec
	logger   *slog.Logger
}

func NewServer(handlers Handlers, guard *auth.Guard, spec *Spec, logger *slog.Logger) (*Server, error) {
	if guard == nil {
		return nil, errs.NewValueIsRequiredError("guard")
	}
	if spec == nil {
		return nil, errs.NewValueIsRequiredError("spec")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		handlers: handlers,
		guard:    guard,
		spec:     spec,
		logger:   logger.With("component", "http"),
	}, nil
}

// NewEcho builds the echo instance with every route registered.
func (s *Server) NewEcho() *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = errorHandler(s.logger)
	e.Use(middleware.Recover())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:   true,
		LogURI:      true,
		LogStatus:   true,
		LogLatency:  true,
		HandleError: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			s.logger.LogAttrs(c.Request().Context(), slog.LevelInfo, "request",
				slog.String("method", v.Method),
				slog.String("uri", v.URI),
				slog.Int("status", v.Status),
				slog.Duration("latency", v.Latency),
			)
			return nil
		},
	}))

	e.GET("/health", func(c echo.Context) error {
		return c.String(http.StatusOK, "Healthy")
	})
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	api := e.Group("/api/v1")
	api.GET("/openapi.json", func(c echo.Context) error {
		return c.JSONBlob(http.StatusOK, s.spec.JSON())
	})

	validate := validateRequest(s.spec)
	route := func(caps ...access.Capability) []echo.MiddlewareFunc {
		return []echo.MiddlewareFunc{authorize(s.guard, caps...), validate}
	}

	api.POST("/orders", s.CreateOrder, route(access.CustomerWrite)...)
	api.GET("/orders", s.ListOrders, route(access.Read)...)
	api.GET("/orders/:id", s.GetOrder, route(access.Read)...)
	api.POST("/orders/:id/accept", s.AcceptOrder, route(access.RestaurantWrite)...)
	api.POST("/orders/:id/ready", s.MarkReady, route(access.RestaurantWrite)...)
	api.POST("/orders/:id/cancel", s.CancelOrder, route(access.CustomerWrite, access.AdminWrite)...)
	api.POST("/orders/:id/deliver", s.ConfirmDelivered, route(access.DriverWrite)...)
	api.POST("/orders/:id/reassign", s.ReassignDriver, route(access.DriverWrite, access.AdminWrite)...)
	api.POST("/orders/:id/dispatch", s.AssignDriver, route(access.AdminWrite)...)

	api.POST("/drivers", s.RegisterDriver, route(access.AdminWrite)...)
	api.GET("/drivers", s.ListDrivers, route(access.AdminWrite)...)
	api.PUT("/drivers/me/availability", s.SetAvailability, route(access.DriverWrite)...)
	api.PUT("/drivers/:id/activation", s.SetActivation, route(access.AdminWrite)...)

	return e
}

// orderView re-reads an order as the caller sees it after a command.
func (s *Server) orderView(ctx context.Context, actor access.Principal, id kernel.UUID) (OrderResponse, error) {
	query, err := queries.NewGetOrderQuery(actor, id)
	if err != nil {
		return OrderResponse{}, err
	}
	view, err := s.handlers.GetOrder.Handle(ctx, query)
	if err != nil {
		return OrderResponse{}, err
	}
	return orderResponseOf(view), nil
}

// dispatchResponse answers a transition that ended in a dispatch attempt:
// 200 when a driver was assigned, 202 when the order waits for one.
func (s *Server) dispatchResponse(c echo.Context, result commands.AssignDriverResult) error {
	ctx := c.Request().Context()
	resp := DispatchResponse{Dispatch: dispatchBodyOf(result)}

	view, err := s.orderView(ctx, principalFrom(c), result.OrderID)
	switch {
	case err == nil:
		resp.Order = &view
	case errors.Is(err, errs.ErrObjectNotFound):
		// handed to another driver
	default:
		return err
	}

	status := http.StatusOK
	if result.Outcome != commands.DriverAssigned {
		status = http.StatusAccepted
	}
	return c.JSON(status, resp)
}
