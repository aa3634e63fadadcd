package pgorders

import (
	"context"
	"time"

	"github.com/BearBump/FoodTrack/internal/models"
	"github.com/jackc/pgx/v5"
	"github.com/pkg/errors"
)

const orderColumns = `
  id, user_id, customer_name, item, status,
  position_lat, position_lng, destination_lat, destination_lng,
  eta_minutes, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrder(r rowScanner) (*models.Order, error) {
	var (
		o       models.Order
		posLat  *float64
		posLng  *float64
		destLat float64
		destLng float64
		eta     *int32
	)
	if err := r.Scan(
		&o.ID, &o.UserID, &o.CustomerName, &o.Item, &o.Status,
		&posLat, &posLng, &destLat, &destLng,
		&eta, &o.CreatedAt, &o.UpdatedAt,
	); err != nil {
		return nil, err
	}
	o.Position = pointOf(posLat, posLng)
	o.Destination = &models.Point{Lat: destLat, Lng: destLng}
	if eta != nil {
		o.ETAMinutes = models.IntPtr(int(*eta))
	}
	return &o, nil
}

func pointOf(lat, lng *float64) *models.Point {
	if lat == nil || lng == nil {
		return nil
	}
	return &models.Point{Lat: *lat, Lng: *lng}
}

func latLng(p *models.Point) (*float64, *float64) {
	if p == nil {
		return nil, nil
	}
	lat, lng := p.Lat, p.Lng
	return &lat, &lng
}

// CreateOrder inserts o together with its initial history row and fills in
// the generated id and timestamps.
func (s *Storage) CreateOrder(ctx context.Context, o *models.Order) (*models.Order, error) {
	if o.Destination == nil {
		return nil, errors.Wrap(models.ErrValidation, "destination is required")
	}
	now := time.Now().UTC()

	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, errors.Wrap(err, "begin tx")
	}
	defer func() { _ = tx.Rollback(ctx) }()

	posLat, posLng := latLng(o.Position)
	row := tx.QueryRow(ctx, `
INSERT INTO orders (
  user_id, customer_name, item, status,
  position_lat, position_lng, destination_lat, destination_lng,
  eta_minutes, created_at, updated_at
)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$10)
RETURNING `+orderColumns,
		o.UserID, o.CustomerName, o.Item, o.Status,
		posLat, posLng, o.Destination.Lat, o.Destination.Lng,
		o.ETAMinutes, now)
	created, err := scanOrder(row)
	if err != nil {
		return nil, errors.Wrap(err, "insert order")
	}

	if err := insertHistory(ctx, tx, models.HistoryFor(created, now)); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, errors.Wrap(err, "commit tx")
	}
	return created, nil
}

func (s *Storage) GetOrder(ctx context.Context, id int64) (*models.Order, error) {
	o, err := scanOrder(s.db.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, errors.Wrapf(models.ErrNotFound, "order %d", id)
	}
	if err != nil {
		return nil, errors.Wrap(err, "select order")
	}
	return o, nil
}

// UpdateOrder persists one manual change and its history row atomically.
func (s *Storage) UpdateOrder(ctx context.Context, u models.OrderUpdate) error {
	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return errors.Wrap(err, "begin tx")
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := writeUpdate(ctx, tx, u); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return errors.Wrap(err, "commit tx")
	}
	return nil
}

// ApplyTrackingBatch commits every scheduler update of one tick in a single
// transaction. Any failure rolls back the whole batch.
func (s *Storage) ApplyTrackingBatch(ctx context.Context, updates []models.OrderUpdate) error {
	if len(updates) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return errors.Wrap(err, "begin tx")
	}
	defer func() { _ = tx.Rollback(ctx) }()

	for _, u := range updates {
		if err := writeUpdate(ctx, tx, u); err != nil {
			return err
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return errors.Wrap(err, "commit tx")
	}
	return nil
}

func writeUpdate(ctx context.Context, tx pgx.Tx, u models.OrderUpdate) error {
	o := u.Order
	updatedAt := o.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = time.Now().UTC()
	}
	posLat, posLng := latLng(o.Position)
	destLat, destLng := latLng(o.Destination)

	tag, err := tx.Exec(ctx, `
UPDATE orders SET
  status = $2,
  position_lat = $3,
  position_lng = $4,
  destination_lat = COALESCE($5, destination_lat),
  destination_lng = COALESCE($6, destination_lng),
  eta_minutes = $7,
  updated_at = $8
WHERE id = $1
`, o.ID, o.Status, posLat, posLng, destLat, destLng, o.ETAMinutes, updatedAt)
	if err != nil {
		return errors.Wrapf(err, "update order %d", o.ID)
	}
	if tag.RowsAffected() == 0 {
		return errors.Wrapf(models.ErrNotFound, "order %d", o.ID)
	}

	if u.History == nil {
		return nil
	}
	return insertHistory(ctx, tx, u.History)
}

func (s *Storage) ListActiveOrders(ctx context.Context) ([]*models.Order, error) {
	rows, err := s.db.Query(ctx, `
SELECT `+orderColumns+`
FROM orders
WHERE status NOT IN ($1, $2)
ORDER BY id ASC
`, models.OrderStatusDelivered, models.OrderStatusCancelled)
	if err != nil {
		return nil, errors.Wrap(err, "select active orders")
	}
	return collectOrders(rows)
}

func (s *Storage) ListUserOrders(ctx context.Context, userID int64, limit, offset int) ([]*models.Order, error) {
	if limit <= 0 || limit > 500 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	rows, err := s.db.Query(ctx, `
SELECT `+orderColumns+`
FROM orders
WHERE user_id = $1
ORDER BY created_at DESC, id DESC
LIMIT $2 OFFSET $3
`, userID, limit, offset)
	if err != nil {
		return nil, errors.Wrap(err, "select user orders")
	}
	return collectOrders(rows)
}

// TopItemsByUser ranks the user's past items by order count, then by most
// recent order, then by name.
func (s *Storage) TopItemsByUser(ctx context.Context, userID int64, limit int) ([]models.Recommendation, error) {
	if limit <= 0 {
		limit = 5
	}
	rows, err := s.db.Query(ctx, `
SELECT item, COUNT(*) AS cnt
FROM orders
WHERE user_id = $1
GROUP BY item
ORDER BY cnt DESC, MAX(created_at) DESC, item ASC
LIMIT $2
`, userID, limit)
	if err != nil {
		return nil, errors.Wrap(err, "select top items")
	}
	defer rows.Close()

	out := make([]models.Recommendation, 0, limit)
	for rows.Next() {
		var r models.Recommendation
		var cnt int64
		if err := rows.Scan(&r.Item, &cnt); err != nil {
			return nil, errors.Wrap(err, "scan top item")
		}
		r.Count = int(cnt)
		out = append(out, r)
	}
	if rows.Err() != nil {
		return nil, errors.Wrap(rows.Err(), "rows")
	}
	return out, nil
}

func collectOrders(rows pgx.Rows) ([]*models.Order, error) {
	defer rows.Close()

	out := []*models.Order{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, errors.Wrap(err, "scan order")
		}
		out = append(out, o)
	}
	if rows.Err() != nil {
		return nil, errors.Wrap(rows.Err(), "rows")
	}
	return out, nil
}
