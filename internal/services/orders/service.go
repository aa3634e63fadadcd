package orders

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/BearBump/FoodTrack/internal/broadcast"
	"github.com/BearBump/FoodTrack/internal/cache"
	"github.com/BearBump/FoodTrack/internal/geo"
	"github.com/BearBump/FoodTrack/internal/integrations/identity"
	"github.com/BearBump/FoodTrack/internal/metrics"
	"github.com/BearBump/FoodTrack/internal/models"
	"github.com/BearBump/FoodTrack/internal/statemachine"
	"github.com/pkg/errors"
)

// UpdatedByAPI marks events caused by manual API calls.
const UpdatedByAPI = "api"

type Repository interface {
	CreateOrder(ctx context.Context, o *models.Order) (*models.Order, error)
	GetOrder(ctx context.Context, id int64) (*models.Order, error)
	UpdateOrder(ctx context.Context, u models.OrderUpdate) error
	ListHistory(ctx context.Context, orderID int64) ([]*models.OrderHistory, error)
	ListUserOrders(ctx context.Context, userID int64, limit, offset int) ([]*models.Order, error)
	TopItemsByUser(ctx context.Context, userID int64, limit int) ([]models.Recommendation, error)
}

type Config struct {
	OrderTTL           time.Duration
	TimelineTTL        time.Duration
	RecommendationsTTL time.Duration
	UserOrdersTTL      time.Duration

	RecommendationsLimit int
	AvgSpeedKmh          float64
	DefaultDestination   models.Point
}

func DefaultConfig() Config {
	return Config{
		OrderTTL:             5 * time.Minute,
		TimelineTTL:          5 * time.Minute,
		RecommendationsTTL:   30 * time.Minute,
		UserOrdersTTL:        2 * time.Minute,
		RecommendationsLimit: 5,
		AvgSpeedKmh:          geo.DefaultAvgSpeedKmh,
		DefaultDestination:   models.Point{Lat: 28.6200, Lng: 77.2100},
	}
}

type Service struct {
	repo      Repository
	cache     cache.Cache
	identity  identity.Client
	publisher broadcast.Publisher
	cfg       Config
	now       func() time.Time
	log       *slog.Logger
}

func New(repo Repository, c cache.Cache, id identity.Client, pub broadcast.Publisher, cfg Config) *Service {
	def := DefaultConfig()
	if cfg.RecommendationsLimit <= 0 {
		cfg.RecommendationsLimit = def.RecommendationsLimit
	}
	if cfg.AvgSpeedKmh <= 0 {
		cfg.AvgSpeedKmh = def.AvgSpeedKmh
	}
	if cfg.DefaultDestination == (models.Point{}) {
		cfg.DefaultDestination = def.DefaultDestination
	}
	return &Service{
		repo:      repo,
		cache:     c,
		identity:  id,
		publisher: pub,
		cfg:       cfg,
		now:       func() time.Time { return time.Now().UTC() },
		log:       slog.With("component", "orders_service"),
	}
}

func (s *Service) WithClock(now func() time.Time) *Service {
	if now != nil {
		s.now = now
	}
	return s
}

func (s *Service) PlaceOrder(ctx context.Context, in models.PlaceOrderInput) (*models.Order, error) {
	if in.UserID <= 0 {
		return nil, errors.Wrap(models.ErrValidation, "userId is required")
	}
	item := strings.TrimSpace(in.Item)
	if item == "" {
		return nil, errors.Wrap(models.ErrValidation, "item is required")
	}
	dest := s.cfg.DefaultDestination
	if in.Destination != nil {
		if !in.Destination.Valid() {
			return nil, errors.Wrap(models.ErrValidation, "destination out of range")
		}
		dest = *in.Destination
	}
	if err := s.validateUser(ctx, in.UserID); err != nil {
		return nil, err
	}

	created, err := s.repo.CreateOrder(ctx, &models.Order{
		UserID:       in.UserID,
		CustomerName: strings.TrimSpace(in.CustomerName),
		Item:         item,
		Status:       models.OrderStatusPlaced,
		Destination:  &dest,
	})
	if err != nil {
		return nil, err
	}

	cache.InvalidateUser(ctx, s.cache, created.UserID)
	s.log.Info("order placed", "order_id", created.ID, "user_id", created.UserID)
	return created, nil
}

func (s *Service) GetOrder(ctx context.Context, id int64) (*models.Order, error) {
	if id <= 0 {
		return nil, errors.Wrap(models.ErrValidation, "order id is required")
	}
	key := cache.OrderKey(id)
	if o, ok := cache.GetJSON[*models.Order](ctx, s.cache, key); ok && o != nil {
		metrics.CacheHit("order")
		return o, nil
	}
	metrics.CacheMiss("order")

	o, err := s.repo.GetOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	cache.SetJSON(ctx, s.cache, key, o, s.cfg.OrderTTL)
	return o, nil
}

// UpdateStatus applies a manual transition. Delivered pins the ETA to zero,
// Cancelled clears it.
func (s *Service) UpdateStatus(ctx context.Context, id int64, raw string, updatedBy string) (*models.Order, error) {
	target, err := statemachine.ParseStatus(raw)
	if err != nil {
		return nil, err
	}
	if updatedBy == "" {
		updatedBy = UpdatedByAPI
	}

	current, err := s.repo.GetOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.validateUser(ctx, current.UserID); err != nil {
		return nil, err
	}
	next, err := statemachine.Transition(current.Status, target)
	if err != nil {
		return nil, err
	}
	if next == current.Status {
		return current, nil
	}

	now := s.now()
	o := current.Clone()
	o.Status = next
	o.UpdatedAt = now
	switch next {
	case models.OrderStatusDelivered:
		o.ETAMinutes = models.IntPtr(0)
	case models.OrderStatusCancelled:
		o.ETAMinutes = nil
	}

	if err := s.repo.UpdateOrder(ctx, models.OrderUpdate{Order: o, History: models.HistoryFor(o, now)}); err != nil {
		return nil, err
	}
	cache.InvalidateOrder(ctx, s.cache, o.ID, o.UserID)

	ev, err := broadcast.NewStatusEvent(broadcast.OrderStatusUpdated{
		OrderID:   o.ID,
		Status:    string(o.Status),
		UpdatedAt: now,
		UpdatedBy: updatedBy,
	})
	s.publish(ctx, o.ID, ev, err)

	s.log.Info("order status updated", "order_id", o.ID, "from", current.Status, "to", o.Status, "by", updatedBy)
	return o, nil
}

func (s *Service) UpdateLocation(ctx context.Context, id int64, lat, lng float64) (*models.Order, error) {
	pos := models.Point{Lat: lat, Lng: lng}
	if !pos.Valid() {
		return nil, errors.Wrap(models.ErrValidation, "coordinates out of range")
	}

	current, err := s.repo.GetOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	if statemachine.IsTerminal(current.Status) {
		return nil, errors.Wrapf(models.ErrInvalidTransition, "order %d is %s", id, current.Status)
	}
	if err := s.validateUser(ctx, current.UserID); err != nil {
		return nil, err
	}

	now := s.now()
	o := current.Clone()
	o.Position = &pos
	o.UpdatedAt = now
	if o.Destination == nil {
		d := s.cfg.DefaultDestination
		o.Destination = &d
	}
	eta := geo.EstimateMinutes(pos.Lat, pos.Lng, o.Destination.Lat, o.Destination.Lng, s.cfg.AvgSpeedKmh)
	o.ETAMinutes = &eta

	if err := s.repo.UpdateOrder(ctx, models.OrderUpdate{Order: o, History: models.HistoryFor(o, now)}); err != nil {
		return nil, err
	}
	cache.InvalidateOrder(ctx, s.cache, o.ID, o.UserID)

	ev, err := broadcast.NewLocationEvent(broadcast.DeliveryLocationUpdated{
		OrderID:   o.ID,
		Latitude:  pos.Lat,
		Longitude: pos.Lng,
		ETA:       o.ETAMinutes,
		UpdatedAt: now,
	})
	s.publish(ctx, o.ID, ev, err)
	return o, nil
}

func (s *Service) GetTimeline(ctx context.Context, orderID int64) ([]*models.OrderHistory, error) {
	if orderID <= 0 {
		return nil, errors.Wrap(models.ErrValidation, "order id is required")
	}
	key := cache.TimelineKey(orderID)
	if h, ok := cache.GetJSON[[]*models.OrderHistory](ctx, s.cache, key); ok {
		metrics.CacheHit("timeline")
		return h, nil
	}
	metrics.CacheMiss("timeline")

	// distinguishes an unknown order from one with no rows
	if _, err := s.GetOrder(ctx, orderID); err != nil {
		return nil, err
	}
	h, err := s.repo.ListHistory(ctx, orderID)
	if err != nil {
		return nil, err
	}
	cache.SetJSON(ctx, s.cache, key, h, s.cfg.TimelineTTL)
	return h, nil
}

func (s *Service) GetRecommendations(ctx context.Context, userID int64) ([]models.Recommendation, error) {
	if userID <= 0 {
		return nil, errors.Wrap(models.ErrValidation, "user id is required")
	}
	key := cache.RecommendationsKey(userID)
	if r, ok := cache.GetJSON[[]models.Recommendation](ctx, s.cache, key); ok {
		metrics.CacheHit("recommendations")
		return r, nil
	}
	metrics.CacheMiss("recommendations")

	r, err := s.repo.TopItemsByUser(ctx, userID, s.cfg.RecommendationsLimit)
	if err != nil {
		return nil, err
	}
	cache.SetJSON(ctx, s.cache, key, r, s.cfg.RecommendationsTTL)
	return r, nil
}

func (s *Service) ListUserOrders(ctx context.Context, userID int64, limit, offset int) ([]*models.Order, error) {
	if userID <= 0 {
		return nil, errors.Wrap(models.ErrValidation, "user id is required")
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	key := cache.UserOrdersKey(userID, limit, offset)
	if out, ok := cache.GetJSON[[]*models.Order](ctx, s.cache, key); ok {
		metrics.CacheHit("user_orders")
		return out, nil
	}
	metrics.CacheMiss("user_orders")

	out, err := s.repo.ListUserOrders(ctx, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	cache.SetJSON(ctx, s.cache, key, out, s.cfg.UserOrdersTTL)
	return out, nil
}

func (s *Service) validateUser(ctx context.Context, userID int64) error {
	if s.identity == nil {
		return nil
	}
	return s.identity.ValidateUser(ctx, userID)
}

// publish is best-effort: the write is already committed.
func (s *Service) publish(ctx context.Context, orderID int64, ev broadcast.Event, buildErr error) {
	if s.publisher == nil {
		return
	}
	err := buildErr
	if err == nil {
		err = s.publisher.Publish(ctx, orderID, ev)
	}
	if err != nil {
		s.log.Warn("publish event", "order_id", orderID, "type", ev.Type, "error", err.Error())
	}
}
