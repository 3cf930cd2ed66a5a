package http

import (
	"time"

	"fooddispatch/internal/core/application/usecases/commands"
	"fooddispatch/internal/core/application/usecases/queries"
	"fooddispatch/internal/core/domain/model/kernel"
	"fooddispatch/internal/core/domain/model/order"

	openapi_types "github.com/oapi-codegen/runtime/types"
)

type OrderLineRequest struct {
	MenuItemID openapi_types.UUID `json:"menu_item_id"`
	Quantity   int                `json:"quantity"`
}

type CreateOrderRequest struct {
	RestaurantID openapi_types.UUID `json:"restaurant_id"`
	Items        []OrderLineRequest `json:"items"`
}

type RegisterDriverRequest struct {
	UserID       openapi_types.UUID `json:"user_id"`
	VehicleType  string             `json:"vehicle_type"`
	LicensePlate string             `json:"license_plate"`
}

type AvailabilityRequest struct {
	Available *bool `json:"available"`
}

type ActivationRequest struct {
	Active *bool `json:"active"`
}

type ItemResponse struct {
	MenuItemID string `json:"menu_item_id"`
	Quantity   int    `json:"quantity"`
	UnitPrice  int64  `json:"unit_price"`
	LineTotal  int64  `json:"line_total"`
}

type StatusChangeResponse struct {
	From      string    `json:"from,omitempty"`
	To        string    `json:"to"`
	Action    string    `json:"action"`
	ActorID   string    `json:"actor_id"`
	ActorRole string    `json:"actor_role"`
	At        time.Time `json:"at"`
}

type OrderResponse struct {
	ID           string                 `json:"id"`
	CustomerID   string                 `json:"customer_id"`
	RestaurantID string                 `json:"restaurant_id"`
	DriverID     *string                `json:"driver_id"`
	Status       string                 `json:"status"`
	Items        []ItemResponse         `json:"items"`
	DeliveryFee  int64                  `json:"delivery_fee"`
	TotalAmount  int64                  `json:"total_amount"`
	CreatedAt    time.Time              `json:"created_at"`
	UpdatedAt    time.Time              `json:"updated_at"`
	Version      int64                  `json:"version"`
	History      []StatusChangeResponse `json:"history,omitempty"`
}

type OrderListResponse struct {
	Items []OrderResponse `json:"items"`
}

type DispatchBody struct {
	Outcome  string  `json:"outcome"`
	DriverID *string `json:"driver_id,omitempty"`
}

type DispatchResponse struct {
	Order    *OrderResponse `json:"order,omitempty"`
	Dispatch DispatchBody   `json:"dispatch"`
}

type DriverResponse struct {
	ID             string     `json:"id"`
	UserID         string     `json:"user_id"`
	IsActive       bool       `json:"is_active"`
	IsAvailable    bool       `json:"is_available"`
	AvailableSince *time.Time `json:"available_since,omitempty"`
	VehicleType    string     `json:"vehicle_type"`
	LicensePlate   string     `json:"license_plate"`
	ActiveOrderID  *string    `json:"active_order_id"`
}

type DriverListResponse struct {
	Items []DriverResponse `json:"items"`
}

func (r CreateOrderRequest) lines() []commands.OrderLine {
	lines := make([]commands.OrderLine, 0, len(r.Items))
	for _, item := range r.Items {
		lines = append(lines, commands.OrderLine{
			MenuItemID: kernel.UUIDFromGoogle(item.MenuItemID),
			Quantity:   item.Quantity,
		})
	}
	return lines
}

func orderResponseOf(v queries.OrderView) OrderResponse {
	resp := OrderResponse{
		ID:           v.ID.String(),
		CustomerID:   v.CustomerID.String(),
		RestaurantID: v.RestaurantID.String(),
		DriverID:     optionalString(v.DriverID),
		Status:       v.Status.String(),
		Items:        make([]ItemResponse, 0, len(v.Items)),
		DeliveryFee:  v.DeliveryFee,
		TotalAmount:  v.TotalAmount,
		CreatedAt:    v.CreatedAt,
		UpdatedAt:    v.UpdatedAt,
		Version:      v.Version,
	}
	for _, item := range v.Items {
		resp.Items = append(resp.Items, ItemResponse{
			MenuItemID: item.MenuItemID.String(),
			Quantity:   item.Quantity,
			UnitPrice:  item.UnitPrice,
			LineTotal:  item.LineTotal,
		})
	}
	for _, h := range v.History {
		change := StatusChangeResponse{
			To:        h.To.String(),
			Action:    h.Action,
			ActorID:   h.ActorID.String(),
			ActorRole: h.ActorRole,
			At:        h.At,
		}
		if h.From != order.Unknown {
			change.From = h.From.String()
		}
		resp.History = append(resp.History, change)
	}
	return resp
}

func dispatchBodyOf(r commands.AssignDriverResult) DispatchBody {
	return DispatchBody{Outcome: r.Outcome.String(), DriverID: optionalString(r.DriverID)}
}

func driverResponseOf(v queries.DriverView) DriverResponse {
	resp := DriverResponse{
		ID:            v.ID.String(),
		UserID:        v.UserID.String(),
		IsActive:      v.IsActive,
		IsAvailable:   v.IsAvailable,
		VehicleType:   v.VehicleType,
		LicensePlate:  v.LicensePlate,
		ActiveOrderID: optionalString(v.ActiveOrderID),
	}
	if !v.AvailableSince.IsZero() {
		since := v.AvailableSince
		resp.AvailableSince = &since
	}
	return resp
}

func optionalString(id *kernel.UUID) *string {
	if id == nil {
		return nil
	}
	s := id.String()
	return &s
}
