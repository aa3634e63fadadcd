package pgorders

import (
	"context"

	"github.com/BearBump/FoodTrack/internal/models"
	"github.com/jackc/pgx/v5"
	"github.com/pkg/errors"
)

func insertHistory(ctx context.Context, tx pgx.Tx, h *models.OrderHistory) error {
	lat, lng := latLng(h.Position)
	if err := tx.QueryRow(ctx, `
INSERT INTO order_history (order_id, status, position_lat, position_lng, created_at)
VALUES ($1,$2,$3,$4,$5)
RETURNING id
`, h.OrderID, h.Status, lat, lng, h.CreatedAt).Scan(&h.ID); err != nil {
		return errors.Wrapf(err, "insert history for order %d", h.OrderID)
	}
	return nil
}

// ListHistory returns the full audit trail of one order, oldest first.
// Rows with equal timestamps keep insertion order.
func (s *Storage) ListHistory(ctx context.Context, orderID int64) ([]*models.OrderHistory, error) {
	rows, err := s.db.Query(ctx, `
SELECT id, order_id, status, position_lat, position_lng, created_at
FROM order_history
WHERE order_id = $1
ORDER BY created_at ASC, id ASC
`, orderID)
	if err != nil {
		return nil, errors.Wrap(err, "select history")
	}
	defer rows.Close()

	out := []*models.OrderHistory{}
	for rows.Next() {
		var (
			h   models.OrderHistory
			lat *float64
			lng *float64
		)
		if err := rows.Scan(&h.ID, &h.OrderID, &h.Status, &lat, &lng, &h.CreatedAt); err != nil {
			return nil, errors.Wrap(err, "scan history")
		}
		h.Position = pointOf(lat, lng)
		out = append(out, &h)
	}
	if rows.Err() != nil {
		return nil, errors.Wrap(rows.Err(), "rows")
	}
	return out, nil
}
