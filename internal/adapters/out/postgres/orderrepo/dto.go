// Package orderrepo persists order aggregates: the order row, its items and
// the append-only status history.
package orderrepo

import (
	"time"

	"fooddispatch/internal/core/domain/model/kernel"
	"fooddispatch/internal/core/domain/model/order"

	"github.com/google/uuid"
)

// OrderDTO is the orders row. Timestamps come from the aggregate, so gorm's
// automatic time tracking is switched off.
type OrderDTO struct {
	ID           uuid.UUID      `gorm:"type:uuid;primaryKey"`
	CustomerID   uuid.UUID      `gorm:"type:uuid;not null"`
	RestaurantID uuid.UUID      `gorm:"type:uuid;not null"`
	DriverID     *uuid.UUID     `gorm:"type:uuid"`
	Status       string         `gorm:"type:varchar(32);not null"`
	DeliveryFee  int64          `gorm:"not null"`
	TotalAmount  int64          `gorm:"not null"`
	CreatedAt    time.Time      `gorm:"autoCreateTime:false;not null"`
	UpdatedAt    time.Time      `gorm:"autoUpdateTime:false;not null"`
	Version      int64          `gorm:"not null"`
	Items        []OrderItemDTO `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
}

func (OrderDTO) TableName() string {
	return "orders"
}

// OrderItemDTO is one order line; Position keeps the caller's item order.
type OrderItemDTO struct {
	OrderID    uuid.UUID `gorm:"type:uuid;primaryKey"`
	Position   int       `gorm:"primaryKey;autoIncrement:false"`
	MenuItemID uuid.UUID `gorm:"type:uuid;not null"`
	Quantity   int       `gorm:"not null"`
	UnitPrice  int64     `gorm:"not null"`
}

func (OrderItemDTO) TableName() string {
	return "order_items"
}

// StatusChangeDTO is one order_status_history row. FromStatus is NULL for
// the creation entry.
type StatusChangeDTO struct {
	ID         int64      `gorm:"primaryKey;autoIncrement"`
	OrderID    uuid.UUID  `gorm:"type:uuid;not null"`
	FromStatus *string    `gorm:"type:varchar(32)"`
	ToStatus   string     `gorm:"type:varchar(32);not null"`
	Action     string     `gorm:"type:varchar(32);not null"`
	ActorID    uuid.UUID  `gorm:"type:uuid;not null"`
	ActorRole  string     `gorm:"type:varchar(16);not null"`
	DriverID   *uuid.UUID `gorm:"type:uuid"`
	At         time.Time  `gorm:"not null"`
}

func (StatusChangeDTO) TableName() string {
	return "order_status_history"
}

func fromDomain(o *order.Order) OrderDTO {
	items := make([]OrderItemDTO, 0, len(o.Items()))
	for i, item := range o.Items() {
		items = append(items, OrderItemDTO{
			OrderID:    o.ID().Bytes(),
			Position:   i,
			MenuItemID: item.MenuItemID().Bytes(),
			Quantity:   item.Quantity(),
			UnitPrice:  item.UnitPrice().Amount(),
		})
	}

	return OrderDTO{
		ID:           o.ID().Bytes(),
		CustomerID:   o.CustomerID().Bytes(),
		RestaurantID: o.RestaurantID().Bytes(),
		DriverID:     optionalBytes(o.DriverID()),
		Status:       o.Status().String(),
		DeliveryFee:  o.DeliveryFee().Amount(),
		TotalAmount:  o.TotalAmount().Amount(),
		CreatedAt:    o.CreatedAt().UTC(),
		UpdatedAt:    o.UpdatedAt().UTC(),
		Version:      o.Version(),
		Items:        items,
	}
}

func toDomain(dto OrderDTO) (*order.Order, error) {
	status, err := order.ParseStatus(dto.Status)
	if err != nil {
		return nil, err
	}

	items := make([]order.Item, 0, len(dto.Items))
	for _, itemDTO := range dto.Items {
		price, priceErr := kernel.NewMoney(itemDTO.UnitPrice)
		if priceErr != nil {
			return nil, priceErr
		}
		item, itemErr := order.NewItem(kernel.UUIDFromGoogle(itemDTO.MenuItemID), itemDTO.Quantity, price)
		if itemErr != nil {
			return nil, itemErr
		}
		items = append(items, item)
	}

	fee, err := kernel.NewMoney(dto.DeliveryFee)
	if err != nil {
		return nil, err
	}
	total, err := kernel.NewMoney(dto.TotalAmount)
	if err != nil {
		return nil, err
	}

	return order.RestoreOrder(
		kernel.UUIDFromGoogle(dto.ID),
		kernel.UUIDFromGoogle(dto.CustomerID),
		kernel.UUIDFromGoogle(dto.RestaurantID),
		optionalUUID(dto.DriverID),
		status,
		items,
		fee,
		total,
		dto.CreatedAt.UTC(),
		dto.UpdatedAt.UTC(),
		dto.Version,
	)
}

func historyFromDomain(e order.StatusChanged) StatusChangeDTO {
	var from *string
	if e.From != order.Unknown {
		s := e.From.String()
		from = &s
	}

	return StatusChangeDTO{
		OrderID:    e.OrderID.Bytes(),
		FromStatus: from,
		ToStatus:   e.To.String(),
		Action:     e.Action.String(),
		ActorID:    e.ActorID.Bytes(),
		ActorRole:  e.ActorRole.String(),
		DriverID:   optionalBytes(e.DriverID),
		At:         e.At.UTC(),
	}
}

func optionalBytes(id *kernel.UUID) *uuid.UUID {
	if id == nil {
		return nil
	}
	raw := id.Bytes()
	return &raw
}

func optionalUUID(raw *uuid.UUID) *kernel.UUID {
	if raw == nil {
		return nil
	}
	id := kernel.UUIDFromGoogle(*raw)
	return &id
}
