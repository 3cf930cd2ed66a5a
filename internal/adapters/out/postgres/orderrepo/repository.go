package orderrepo

import (
	"context"
	"errors"
	"fmt"

	"fooddispatch/internal/adapters/out/postgres/pgerr"
	"fooddispatch/internal/core/domain/model/kernel"
	"fooddispatch/internal/core/domain/model/order"
	"fooddispatch/internal/core/ports"
	"fooddispatch/internal/pkg/errs"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormOrderRepository implements ports.OrderRepository using GORM.
type GormOrderRepository struct {
	db      *gorm.DB
	tracker aggregateTracker
}

// aggregateTracker collects orders whose events are written and published
// when the unit of work commits.
type aggregateTracker interface {
	TrackAggregate(aggregate *order.Order)
}

var _ ports.OrderRepository = (*GormOrderRepository)(nil)

func NewGormOrderRepository(db *gorm.DB, tracker aggregateTracker) *GormOrderRepository {
	return &GormOrderRepository{
		db:      db,
		tracker: tracker,
	}
}

// Add inserts the order and its items.
func (r *GormOrderRepository) Add(ctx context.Context, aggregate *order.Order) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	if err := r.db.WithContext(ctx).Create(&dto).Error; err != nil {
		return pgerr.Translate(err, "order", aggregate.ID())
	}

	r.tracker.TrackAggregate(aggregate)
	return nil
}

// Update writes status, driver, updatedAt and version, guarded by the
// version the aggregate was read at. Items and amounts never change.
func (r *GormOrderRepository) Update(ctx context.Context, aggregate *order.Order) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	result := r.db.WithContext(ctx).
		Model(&OrderDTO{}).
		Where("id = ? AND version = ?", dto.ID, aggregate.OriginalVersion()).
		Updates(map[string]any{
			"status":     dto.Status,
			"driver_id":  dto.DriverID,
			"updated_at": dto.UpdatedAt,
			"version":    dto.Version,
		})
	if result.Error != nil {
		return pgerr.Translate(result.Error, "order", aggregate.ID())
	}

	if result.RowsAffected == 0 {
		var count int64
		if err := r.db.WithContext(ctx).Model(&OrderDTO{}).Where("id = ?", dto.ID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return errs.NewObjectNotFoundError("order", aggregate.ID().String())
		}
		return errs.NewVersionIsInvalidErrorWithCause("order",
			fmt.Errorf("order %s is no longer at version %d", aggregate.ID(), aggregate.OriginalVersion()))
	}

	r.tracker.TrackAggregate(aggregate)
	return nil
}

func (r *GormOrderRepository) Get(ctx context.Context, id kernel.UUID) (*order.Order, error) {
	return r.get(ctx, r.db.WithContext(ctx), id)
}

// GetForUpdate holds the order row lock until the transaction ends. Items
// are immutable and read without a lock.
func (r *GormOrderRepository) GetForUpdate(ctx context.Context, id kernel.UUID) (*order.Order, error) {
	return r.get(ctx, r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}), id)
}

// ListReadyForDispatch returns unassigned ready orders, oldest first. A
// limit below 1 lists them all.
func (r *GormOrderRepository) ListReadyForDispatch(ctx context.Context, limit int) ([]kernel.UUID, error) {
	query := r.db.WithContext(ctx).
		Model(&OrderDTO{}).
		Where("status = ? AND driver_id IS NULL", order.ReadyForPickup.String()).
		Order("created_at, id")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var raw []uuid.UUID
	if err := query.Pluck("id", &raw).Error; err != nil {
		return nil, err
	}

	ids := make([]kernel.UUID, 0, len(raw))
	for _, id := range raw {
		ids = append(ids, kernel.UUIDFromGoogle(id))
	}
	return ids, nil
}

// AppendHistory writes one history row per event. The unit of work calls it
// inside the transaction, right before commit.
func (r *GormOrderRepository) AppendHistory(ctx context.Context, events []order.StatusChanged) error {
	if len(events) == 0 {
		return nil
	}

	rows := make([]StatusChangeDTO, 0, len(events))
	for _, e := range events {
		rows = append(rows, historyFromDomain(e))
	}
	if err := r.db.WithContext(ctx).Create(&rows).Error; err != nil {
		return pgerr.Translate(err, "order", events[0].OrderID)
	}
	return nil
}

func (r *GormOrderRepository) get(ctx context.Context, db *gorm.DB, id kernel.UUID) (*order.Order, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}

	var dto OrderDTO
	if err := db.First(&dto, "id = ?", id.Bytes()).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("order", id.String())
		}
		return nil, err
	}

	if err := r.db.WithContext(ctx).
		Where("order_id = ?", dto.ID).
		Order("position").
		Find(&dto.Items).Error; err != nil {
		return nil, err
	}

	return toDomain(dto)
}
