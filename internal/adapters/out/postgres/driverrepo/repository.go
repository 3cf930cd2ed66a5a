package driverrepo

import (
	"context"
	"errors"

	"fooddispatch/internal/adapters/out/postgres/pgerr"
	"fooddispatch/internal/core/domain/model/driver"
	"fooddispatch/internal/core/domain/model/kernel"
	"fooddispatch/internal/core/ports"
	"fooddispatch/internal/pkg/errs"

	"github.com/lib/pq"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const eligible = "is_active AND is_available AND active_order_id IS NULL"

// GormDriverRepository implements ports.DriverRepository using GORM.
type GormDriverRepository struct {
	db *gorm.DB
}

var _ ports.DriverRepository = (*GormDriverRepository)(nil)

func NewGormDriverRepository(db *gorm.DB) *GormDriverRepository {
	return &GormDriverRepository{db: db}
}

// Add inserts a driver. A second profile for the same user violates
// drivers_user_id_key and comes back as errs.ErrValueIsInvalid.
func (r *GormDriverRepository) Add(ctx context.Context, aggregate *driver.Driver) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	if err := r.db.WithContext(ctx).Create(&dto).Error; err != nil {
		return pgerr.Translate(err, "driver", aggregate.ID())
	}
	return nil
}

// Update writes the mutable columns. Giving the driver an order another
// driver already holds fails with errs.ErrAlreadyAssigned.
func (r *GormDriverRepository) Update(ctx context.Context, aggregate *driver.Driver) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	result := r.db.WithContext(ctx).
		Model(&DriverDTO{}).
		Where("id = ?", dto.ID).
		Updates(map[string]any{
			"is_active":       dto.IsActive,
			"is_available":    dto.IsAvailable,
			"available_since": dto.AvailableSince,
			"active_order_id": dto.ActiveOrderID,
		})
	if result.Error != nil {
		return pgerr.Translate(result.Error, "driver", aggregate.ID())
	}

	if result.RowsAffected == 0 {
		return errs.NewObjectNotFoundError("driver", aggregate.ID().String())
	}
	return nil
}

func (r *GormDriverRepository) Get(ctx context.Context, id kernel.UUID) (*driver.Driver, error) {
	return r.first(r.db.WithContext(ctx), "driver", id, "id = ?", id.Bytes())
}

func (r *GormDriverRepository) GetForUpdate(ctx context.Context, id kernel.UUID) (*driver.Driver, error) {
	db := r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"})
	return r.first(db, "driver", id, "id = ?", id.Bytes())
}

func (r *GormDriverRepository) GetByUserID(ctx context.Context, userID kernel.UUID) (*driver.Driver, error) {
	return r.first(r.db.WithContext(ctx), "userID", userID, "user_id = ?", userID.Bytes())
}

// ListEligible reads candidates without locking them, first available first.
func (r *GormDriverRepository) ListEligible(
	ctx context.Context,
	excluding []kernel.UUID,
	limit int,
) ([]*driver.Driver, error) {
	query := r.db.WithContext(ctx).Where(eligible)
	if len(excluding) > 0 {
		ids := make([]string, 0, len(excluding))
		for _, id := range excluding {
			ids = append(ids, id.String())
		}
		query = query.Where("NOT (id = ANY(?::uuid[]))", pq.Array(ids))
	}
	if limit > 0 {
		query = query.Limit(limit)
	}

	var dtos []DriverDTO
	if err := query.Order("available_since, id").Find(&dtos).Error; err != nil {
		return nil, err
	}

	drivers := make([]*driver.Driver, 0, len(dtos))
	for _, dto := range dtos {
		d, err := toDomain(dto)
		if err != nil {
			return nil, err
		}
		drivers = append(drivers, d)
	}
	return drivers, nil
}

// LockIfEligible is SELECT ... FOR UPDATE SKIP LOCKED on one row: a driver
// locked elsewhere, or no longer eligible, yields (nil, false, nil).
func (r *GormDriverRepository) LockIfEligible(ctx context.Context, id kernel.UUID) (*driver.Driver, bool, error) {
	if err := id.Validate(); err != nil {
		return nil, false, err
	}

	var dto DriverDTO
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE", Options: "SKIP LOCKED"}).
		Where("id = ?", id.Bytes()).
		Where(eligible).
		Take(&dto).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	d, err := toDomain(dto)
	if err != nil {
		return nil, false, err
	}
	return d, true, nil
}

func (r *GormDriverRepository) first(
	db *gorm.DB,
	paramName string,
	id kernel.UUID,
	query string,
	args ...any,
) (*driver.Driver, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}

	var dto DriverDTO
	if err := db.Where(query, args...).Take(&dto).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError(paramName, id.String())
		}
		return nil, err
	}
	return toDomain(dto)
}
