// Package catalogrepo reads restaurant delivery fees and menu prices, the
// pricing source consulted when an order is placed.
package catalogrepo

import (
	"context"
	"errors"

	"fooddispatch/internal/core/domain/model/kernel"
	"fooddispatch/internal/core/ports"
	"fooddispatch/internal/pkg/errs"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type RestaurantDTO struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name        string    `gorm:"type:varchar(255);not null"`
	DeliveryFee int64     `gorm:"not null"`
}

func (RestaurantDTO) TableName() string {
	return "restaurants"
}

type MenuItemDTO struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"`
	RestaurantID uuid.UUID `gorm:"type:uuid;not null"`
	Name         string    `gorm:"type:varchar(255);not null"`
	Price        int64     `gorm:"not null"`
}

func (MenuItemDTO) TableName() string {
	return "menu_items"
}

// GormCatalog implements ports.MenuCatalog over the restaurants and
// menu_items tables.
type GormCatalog struct {
	db *gorm.DB
}

var _ ports.MenuCatalog = (*GormCatalog)(nil)

func NewGormCatalog(db *gorm.DB) *GormCatalog {
	return &GormCatalog{db: db}
}

// AddRestaurant inserts or replaces a restaurant.
func (c *GormCatalog) AddRestaurant(ctx context.Context, id kernel.UUID, name string, deliveryFee kernel.Money) error {
	dto := RestaurantDTO{ID: id.Bytes(), Name: name, DeliveryFee: deliveryFee.Amount()}
	return c.db.WithContext(ctx).Save(&dto).Error
}

// AddMenuItem inserts or replaces a menu item of a restaurant.
func (c *GormCatalog) AddMenuItem(
	ctx context.Context,
	restaurantID, menuItemID kernel.UUID,
	name string,
	price kernel.Money,
) error {
	dto := MenuItemDTO{ID: menuItemID.Bytes(), RestaurantID: restaurantID.Bytes(), Name: name, Price: price.Amount()}
	return c.db.WithContext(ctx).Save(&dto).Error
}

// UnitPrices fails with errs.ErrObjectNotFound for an unknown restaurant or
// for an item that is not on its menu.
func (c *GormCatalog) UnitPrices(
	ctx context.Context,
	restaurantID kernel.UUID,
	menuItemIDs []kernel.UUID,
) (map[kernel.UUID]kernel.Money, error) {
	if _, err := c.restaurant(ctx, restaurantID); err != nil {
		return nil, err
	}

	raw := make([]uuid.UUID, 0, len(menuItemIDs))
	for _, id := range menuItemIDs {
		raw = append(raw, id.Bytes())
	}

	var dtos []MenuItemDTO
	if len(raw) > 0 {
		if err := c.db.WithContext(ctx).
			Where("restaurant_id = ? AND id IN ?", restaurantID.Bytes(), raw).
			Find(&dtos).Error; err != nil {
			return nil, err
		}
	}

	found := make(map[kernel.UUID]kernel.Money, len(dtos))
	for _, dto := range dtos {
		price, err := kernel.NewMoney(dto.Price)
		if err != nil {
			return nil, err
		}
		found[kernel.UUIDFromGoogle(dto.ID)] = price
	}

	prices := make(map[kernel.UUID]kernel.Money, len(menuItemIDs))
	for _, id := range menuItemIDs {
		price, ok := found[id]
		if !ok {
			return nil, errs.NewObjectNotFoundError("menuItemId", id)
		}
		prices[id] = price
	}
	return prices, nil
}

func (c *GormCatalog) DeliveryFee(ctx context.Context, restaurantID kernel.UUID) (kernel.Money, error) {
	dto, err := c.restaurant(ctx, restaurantID)
	if err != nil {
		return kernel.Money{}, err
	}
	return kernel.NewMoney(dto.DeliveryFee)
}

func (c *GormCatalog) restaurant(ctx context.Context, id kernel.UUID) (RestaurantDTO, error) {
	var dto RestaurantDTO
	if err := c.db.WithContext(ctx).Take(&dto, "id = ?", id.Bytes()).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return RestaurantDTO{}, errs.NewObjectNotFoundError("restaurantID", id)
		}
		return RestaurantDTO{}, err
	}
	return dto, nil
}
