// Package orderreader serves the query side from PostgreSQL with hand-built
// keyset queries. It never locks and never writes.
package orderreader

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"fooddispatch/internal/core/application/usecases/queries"
	"fooddispatch/internal/core/domain/model/kernel"
	"fooddispatch/internal/core/domain/model/order"
	"fooddispatch/internal/pkg/errs"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/lib/pq"
)

var orderColumns = []string{
	"id",
	"customer_id",
	"restaurant_id",
	"driver_id",
	"status",
	"delivery_fee",
	"total_amount",
	"created_at",
	"updated_at",
	"version",
}

var driverColumns = []string{
	"id",
	"user_id",
	"is_active",
	"is_available",
	"available_since",
	"vehicle_type",
	"license_plate",
	"active_order_id",
}

// Reader implements queries.OrderReader.
type Reader struct {
	db *sql.DB
	sb sq.StatementBuilderType
}

var _ queries.OrderReader = (*Reader)(nil)

func NewReader(db *sql.DB) *Reader {
	return &Reader{
		db: db,
		sb: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

// ListOrders pages newest first on (created_at, id).
func (r *Reader) ListOrders(ctx context.Context, filter queries.OrderFilter) ([]queries.OrderView, error) {
	query := r.sb.
		Select(orderColumns...).
		From("orders").
		OrderBy("created_at DESC", "id DESC")

	if filter.CustomerID != nil {
		query = query.Where(sq.Eq{"customer_id": filter.CustomerID.String()})
	}
	if filter.RestaurantID != nil {
		query = query.Where(sq.Eq{"restaurant_id": filter.RestaurantID.String()})
	}
	if filter.Status != nil {
		query = query.Where(sq.Eq{"status": filter.Status.String()})
	}

	pool := sq.And{sq.Eq{"driver_id": nil}, sq.Eq{"status": order.ReadyForPickup.String()}}
	switch {
	case filter.DriverID != nil && filter.ReadyPool:
		query = query.Where(sq.Or{sq.Eq{"driver_id": filter.DriverID.String()}, pool})
	case filter.DriverID != nil:
		query = query.Where(sq.Eq{"driver_id": filter.DriverID.String()})
	case filter.ReadyPool:
		query = query.Where(pool)
	}

	if filter.After != nil {
		query = query.Where(sq.Expr("(created_at, id) < (?, ?::uuid)", filter.After.CreatedAt, filter.After.ID.String()))
	}
	if filter.Limit > 0 {
		query = query.Limit(uint64(filter.Limit))
	}

	views, err := r.queryOrders(ctx, query)
	if err != nil {
		return nil, err
	}
	if err = r.attachItems(ctx, views); err != nil {
		return nil, err
	}
	return views, nil
}

// GetOrder returns the order with items and full history.
func (r *Reader) GetOrder(ctx context.Context, id kernel.UUID) (queries.OrderView, error) {
	views, err := r.queryOrders(ctx, r.sb.
		Select(orderColumns...).
		From("orders").
		Where(sq.Eq{"id": id.String()}))
	if err != nil {
		return queries.OrderView{}, err
	}
	if len(views) == 0 {
		return queries.OrderView{}, errs.NewObjectNotFoundError("orderID", id)
	}

	if err = r.attachItems(ctx, views); err != nil {
		return queries.OrderView{}, err
	}

	view := views[0]
	view.History, err = r.history(ctx, id)
	if err != nil {
		return queries.OrderView{}, err
	}
	return view, nil
}

func (r *Reader) ListDrivers(ctx context.Context, after *kernel.UUID, limit int) ([]queries.DriverView, error) {
	query := r.sb.
		Select(driverColumns...).
		From("drivers").
		OrderBy("id")
	if after != nil {
		query = query.Where(sq.Expr("id > ?::uuid", after.String()))
	}
	if limit > 0 {
		query = query.Limit(uint64(limit))
	}

	rows, err := r.query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var views []queries.DriverView
	for rows.Next() {
		var (
			id, userID    uuid.UUID
			activeOrderID uuid.NullUUID
			v             queries.DriverView
		)
		if err = rows.Scan(&id, &userID, &v.IsActive, &v.IsAvailable, &v.AvailableSince,
			&v.VehicleType, &v.LicensePlate, &activeOrderID); err != nil {
			return nil, fmt.Errorf("failed to scan driver: %w", err)
		}
		v.ID = kernel.UUIDFromGoogle(id)
		v.UserID = kernel.UUIDFromGoogle(userID)
		v.AvailableSince = v.AvailableSince.UTC()
		v.ActiveOrderID = nullable(activeOrderID)
		views = append(views, v)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}
	return views, nil
}

func (r *Reader) DriverIDByUserID(ctx context.Context, userID kernel.UUID) (kernel.UUID, error) {
	query, args, err := r.sb.
		Select("id").
		From("drivers").
		Where(sq.Eq{"user_id": userID.String()}).
		ToSql()
	if err != nil {
		return kernel.UUID{}, fmt.Errorf("failed to build query: %w", err)
	}

	var id uuid.UUID
	if err = r.db.QueryRowContext(ctx, query, args...).Scan(&id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return kernel.UUID{}, errs.NewObjectNotFoundError("userID", userID)
		}
		return kernel.UUID{}, err
	}
	return kernel.UUIDFromGoogle(id), nil
}

func (r *Reader) queryOrders(ctx context.Context, query sq.SelectBuilder) ([]queries.OrderView, error) {
	rows, err := r.query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var views []queries.OrderView
	for rows.Next() {
		var (
			id, customerID, restaurantID uuid.UUID
			driverID                     uuid.NullUUID
			status                       string
			v                            queries.OrderView
		)
		if err = rows.Scan(&id, &customerID, &restaurantID, &driverID, &status,
			&v.DeliveryFee, &v.TotalAmount, &v.CreatedAt, &v.UpdatedAt, &v.Version); err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		if v.Status, err = order.ParseStatus(status); err != nil {
			return nil, err
		}
		v.ID = kernel.UUIDFromGoogle(id)
		v.CustomerID = kernel.UUIDFromGoogle(customerID)
		v.RestaurantID = kernel.UUIDFromGoogle(restaurantID)
		v.DriverID = nullable(driverID)
		v.CreatedAt = v.CreatedAt.UTC()
		v.UpdatedAt = v.UpdatedAt.UTC()
		views = append(views, v)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}
	return views, nil
}

// attachItems loads the lines of every view in one round trip.
func (r *Reader) attachItems(ctx context.Context, views []queries.OrderView) error {
	if len(views) == 0 {
		return nil
	}

	ids := make([]string, 0, len(views))
	index := make(map[uuid.UUID]int, len(views))
	for i, v := range views {
		ids = append(ids, v.ID.String())
		index[v.ID.Bytes()] = i
	}

	rows, err := r.query(ctx, r.sb.
		Select("order_id", "menu_item_id", "quantity", "unit_price").
		From("order_items").
		Where(sq.Expr("order_id = ANY(?::uuid[])", pq.Array(ids))).
		OrderBy("order_id", "position"))
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			orderID, menuItemID uuid.UUID
			item                queries.ItemView
		)
		if err = rows.Scan(&orderID, &menuItemID, &item.Quantity, &item.UnitPrice); err != nil {
			return fmt.Errorf("failed to scan order item: %w", err)
		}
		item.MenuItemID = kernel.UUIDFromGoogle(menuItemID)
		item.LineTotal = item.UnitPrice * int64(item.Quantity)

		i := index[orderID]
		views[i].Items = append(views[i].Items, item)
	}
	if err = rows.Err(); err != nil {
		return fmt.Errorf("rows iteration error: %w", err)
	}
	return nil
}

func (r *Reader) history(ctx context.Context, orderID kernel.UUID) ([]queries.StatusChangeView, error) {
	rows, err := r.query(ctx, r.sb.
		Select("from_status", "to_status", "action", "actor_id", "actor_role", "at").
		From("order_status_history").
		Where(sq.Eq{"order_id": orderID.String()}).
		OrderBy("id"))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var changes []queries.StatusChangeView
	for rows.Next() {
		var (
			from    sql.NullString
			to      string
			actorID uuid.UUID
			at      time.Time
			change  queries.StatusChangeView
		)
		if err = rows.Scan(&from, &to, &change.Action, &actorID, &change.ActorRole, &at); err != nil {
			return nil, fmt.Errorf("failed to scan status change: %w", err)
		}
		if from.Valid {
			if change.From, err = order.ParseStatus(from.String); err != nil {
				return nil, err
			}
		}
		if change.To, err = order.ParseStatus(to); err != nil {
			return nil, err
		}
		change.ActorID = kernel.UUIDFromGoogle(actorID)
		change.At = at.UTC()
		changes = append(changes, change)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}
	return changes, nil
}

func (r *Reader) query(ctx context.Context, query sq.SelectBuilder) (*sql.Rows, error) {
	text, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}
	rows, err := r.db.QueryContext(ctx, text, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query: %w", err)
	}
	return rows, nil
}

func nullable(id uuid.NullUUID) *kernel.UUID {
	if !id.Valid {
		return nil
	}
	v := kernel.UUIDFromGoogle(id.UUID)
	return &v
}
