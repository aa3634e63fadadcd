package pgorders

import (
	"context"
	"testing"
	"time"

	"github.com/BearBump/FoodTrack/internal/models"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func startPostgres(t *testing.T) *Storage {
	t.Helper()
	if testing.Short() {
		t.Skip("postgres container test skipped in -short mode")
	}
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "postgres:15-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "admin",
			"POSTGRES_PASSWORD": "admin",
			"POSTGRES_DB":       "foodtrack_test",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}
	pgC, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = pgC.Terminate(ctx) })

	host, err := pgC.Host(ctx)
	require.NoError(t, err)
	port, err := pgC.MappedPort(ctx, "5432/tcp")
	require.NoError(t, err)

	dsn := "postgres://admin:admin@" + host + ":" + port.Port() + "/foodtrack_test?sslmode=disable"
	st, err := Connect(ctx, dsn, 5)
	require.NoError(t, err)
	t.Cleanup(st.Close)
	return st
}

func TestPGOrders_RepoFlow(t *testing.T) {
	st := startPostgres(t)
	ctx := context.Background()

	dest := &models.Point{Lat: 28.62, Lng: 77.21}
	created, err := st.CreateOrder(ctx, &models.Order{
		UserID:       7,
		CustomerName: "Asha",
		Item:         "Masala Dosa",
		Status:       models.OrderStatusPlaced,
		Destination:  dest,
	})
	require.NoError(t, err)
	require.NotZero(t, created.ID)
	require.Equal(t, *dest, *created.Destination)
	require.Nil(t, created.Position)
	require.Nil(t, created.ETAMinutes)

	got, err := st.GetOrder(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, created.ID, got.ID)
	require.Equal(t, models.OrderStatusPlaced, got.Status)

	_, err = st.GetOrder(ctx, created.ID+1000)
	require.ErrorIs(t, err, models.ErrNotFound)

	active, err := st.ListActiveOrders(ctx)
	require.NoError(t, err)
	require.Len(t, active, 1)

	// one tick: position + status in a single batch
	now := time.Now().UTC().Truncate(time.Microsecond)
	next := got.Clone()
	next.Status = models.OrderStatusConfirmed
	next.Position = &models.Point{Lat: 28.6328, Lng: 77.2197}
	next.ETAMinutes = models.IntPtr(3)
	next.UpdatedAt = now
	require.NoError(t, st.ApplyTrackingBatch(ctx, []models.OrderUpdate{
		{Order: next, History: models.HistoryFor(next, now)},
	}))

	got, err = st.GetOrder(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, models.OrderStatusConfirmed, got.Status)
	require.Equal(t, *next.Position, *got.Position)
	require.Equal(t, 3, *got.ETAMinutes)

	// manual cancel
	cancelled := got.Clone()
	cancelled.Status = models.OrderStatusCancelled
	cancelled.ETAMinutes = nil
	later := now.Add(time.Second)
	cancelled.UpdatedAt = later
	require.NoError(t, st.UpdateOrder(ctx, models.OrderUpdate{Order: cancelled, History: models.HistoryFor(cancelled, later)}))

	active, err = st.ListActiveOrders(ctx)
	require.NoError(t, err)
	require.Empty(t, active)

	hist, err := st.ListHistory(ctx, created.ID)
	require.NoError(t, err)
	require.Len(t, hist, 3)
	require.Equal(t, models.OrderStatusPlaced, hist[0].Status)
	require.Nil(t, hist[0].Position)
	require.Equal(t, models.OrderStatusConfirmed, hist[1].Status)
	require.NotNil(t, hist[1].Position)
	require.Equal(t, models.OrderStatusCancelled, hist[2].Status)

	missing := cancelled.Clone()
	missing.ID = created.ID + 1000
	err = st.UpdateOrder(ctx, models.OrderUpdate{Order: missing, History: models.HistoryFor(missing, later)})
	require.ErrorIs(t, err, models.ErrNotFound)
}

func TestPGOrders_BatchRollsBackOnFailure(t *testing.T) {
	st := startPostgres(t)
	ctx := context.Background()

	o, err := st.CreateOrder(ctx, &models.Order{
		UserID: 1, Item: "Thali", Status: models.OrderStatusPlaced,
		Destination: &models.Point{Lat: 28.62, Lng: 77.21},
	})
	require.NoError(t, err)

	now := time.Now().UTC()
	ok := o.Clone()
	ok.Status = models.OrderStatusConfirmed
	bad := o.Clone()
	bad.ID = o.ID + 999

	err = st.ApplyTrackingBatch(ctx, []models.OrderUpdate{
		{Order: ok, History: models.HistoryFor(ok, now)},
		{Order: bad, History: models.HistoryFor(bad, now)},
	})
	require.ErrorIs(t, err, models.ErrNotFound)

	got, err := st.GetOrder(ctx, o.ID)
	require.NoError(t, err)
	require.Equal(t, models.OrderStatusPlaced, got.Status)

	hist, err := st.ListHistory(ctx, o.ID)
	require.NoError(t, err)
	require.Len(t, hist, 1)
}

func TestPGOrders_UserOrdersAndRecommendations(t *testing.T) {
	st := startPostgres(t)
	ctx := context.Background()

	items := []string{"Biryani", "Dosa", "Biryani", "Naan", "Dosa", "Biryani"}
	for _, it := range items {
		_, err := st.CreateOrder(ctx, &models.Order{
			UserID: 42, Item: it, Status: models.OrderStatusPlaced,
			Destination: &models.Point{Lat: 28.62, Lng: 77.21},
		})
		require.NoError(t, err)
	}
	_, err := st.CreateOrder(ctx, &models.Order{
		UserID: 43, Item: "Naan", Status: models.OrderStatusPlaced,
		Destination: &models.Point{Lat: 28.62, Lng: 77.21},
	})
	require.NoError(t, err)

	page, err := st.ListUserOrders(ctx, 42, 4, 0)
	require.NoError(t, err)
	require.Len(t, page, 4)
	require.Equal(t, "Biryani", page[0].Item)

	rest, err := st.ListUserOrders(ctx, 42, 4, 4)
	require.NoError(t, err)
	require.Len(t, rest, 2)

	recs, err := st.TopItemsByUser(ctx, 42, 5)
	require.NoError(t, err)
	require.Equal(t, []models.Recommendation{
		{Item: "Biryani", Count: 3},
		{Item: "Dosa", Count: 2},
		{Item: "Naan", Count: 1},
	}, recs)

	recs, err = st.TopItemsByUser(ctx, 99, 5)
	require.NoError(t, err)
	require.Empty(t, recs)
}
