package commands

import (
	"context"

	"fooddispatch/internal/core/domain/model/kernel"
	"fooddispatch/internal/core/domain/model/order"
	"fooddispatch/internal/core/ports"
	"fooddispatch/internal/pkg/errs"

	"go.opentelemetry.io/otel/attribute"
)

// CreateOrderCommandHandler prices the requested lines from the catalog,
// creates a Placed order and stores it.
//
// Example:
//
//	handler := NewCreateOrderCommandHandler(uowFactory, catalog, clock.System{})
//	if err := handler.Handle(ctx, cmd); err != nil {
//	    return fmt.Errorf("order creation failed: %w", err)
//	}
type CreateOrderCommandHandler struct {
	uowFactory OrderUoWFactory
	catalog    ports.MenuCatalog
	clock      ports.Clock
}

func NewCreateOrderCommandHandler(
	uowFactory OrderUoWFactory,
	catalog ports.MenuCatalog,
	clock ports.Clock,
) CreateOrderCommandHandler {
	return CreateOrderCommandHandler{
		uowFactory: uowFactory,
		catalog:    catalog,
		clock:      clock,
	}
}

// Handle captures unit prices and the delivery fee at creation time; later
// catalog changes never affect the stored order.
func (h CreateOrderCommandHandler) Handle(ctx context.Context, cmd CreateOrderCommand) (err error) {
	if err = cmd.Validate(); err != nil {
		return err
	}

	ctx, span := startSpan(ctx, "CreateOrder", attribute.String("order.id", cmd.OrderID().String()))
	defer func() { endSpan(span, err) }()

	lines := cmd.Lines()
	menuItemIDs := make([]kernel.UUID, 0, len(lines))
	for _, line := range lines {
		menuItemIDs = append(menuItemIDs, line.MenuItemID)
	}

	prices, err := h.catalog.UnitPrices(ctx, cmd.RestaurantID(), menuItemIDs)
	if err != nil {
		return err
	}
	fee, err := h.catalog.DeliveryFee(ctx, cmd.RestaurantID())
	if err != nil {
		return err
	}

	items := make([]order.Item, 0, len(lines))
	for _, line := range lines {
		price, ok := prices[line.MenuItemID]
		if !ok {
			return errs.NewObjectNotFoundError("menuItemId", line.MenuItemID)
		}
		item, itemErr := order.NewItem(line.MenuItemID, line.Quantity, price)
		if itemErr != nil {
			return itemErr
		}
		items = append(items, item)
	}

	o, err := order.NewOrder(cmd.OrderID(), cmd.Actor().UserID(), cmd.RestaurantID(), items, fee, h.clock.Now())
	if err != nil {
		return err
	}

	uow := h.uowFactory.Create()
	if err = uow.Begin(ctx); err != nil {
		return err
	}
	defer func() {
		_ = uow.Rollback(ctx)
	}()

	if err = uow.OrderRepository().Add(ctx, o); err != nil {
		return err
	}

	return uow.Commit(ctx)
}
