package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/BearBump/FoodTrack/config"
	"github.com/BearBump/FoodTrack/internal/api/ordersapi"
	"github.com/BearBump/FoodTrack/internal/broadcast"
	"github.com/BearBump/FoodTrack/internal/broker/kafka"
	"github.com/BearBump/FoodTrack/internal/cache"
	"github.com/BearBump/FoodTrack/internal/cache/nopcache"
	"github.com/BearBump/FoodTrack/internal/cache/rediscache"
	"github.com/BearBump/FoodTrack/internal/integrations/identity"
	"github.com/BearBump/FoodTrack/internal/integrations/identity/fake"
	"github.com/BearBump/FoodTrack/internal/integrations/identity/identityhttp"
	"github.com/BearBump/FoodTrack/internal/metrics"
	"github.com/BearBump/FoodTrack/internal/services/orders"
	"github.com/BearBump/FoodTrack/internal/services/scheduler"
	"github.com/BearBump/FoodTrack/internal/services/simulator"
	"github.com/BearBump/FoodTrack/internal/storage/pgorders"
	"github.com/google/uuid"
)

const (
	defaultHTTPAddr      = ":8080"
	defaultConsumerGroup = "track-api"
	defaultTopic         = "order.tracking"
)

type trackAPIApp struct {
	ctx     context.Context
	cancel  context.CancelFunc
	opts    trackAPIOpts
	deps    trackAPIDeps
	closers []func()
}

func mustBootstrapTrackAPI() *trackAPIApp {
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("failed to load config: %v", err))
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	app := &trackAPIApp{ctx: ctx, cancel: cancel}

	ft := cfg.FoodTrack
	app.opts = trackAPIOpts{
		httpAddr:      valueOr(ft.HTTPAddr, defaultHTTPAddr),
		swaggerPath:   ft.SwaggerPath,
		topic:         valueOr(cfg.Kafka.OrderTrackingTopicName, defaultTopic),
		consumerGroup: valueOr(ft.KafkaConsumerGroup, defaultConsumerGroup),
	}

	st := mustOpenPostgres(ctx, cfg)
	app.closers = append(app.closers, st.Close)

	c, limiter := openCache(ctx, cfg)
	if rc, ok := c.(*rediscache.RedisCache); ok {
		app.closers = append(app.closers, func() { _ = rc.Close() })
	}

	metrics.Register()
	hub := broadcast.NewHub().WithDeliveryObserver(metrics.ObserveDelivery)

	pub, closePub := eventPublisher(cfg, app.opts.topic, hub)
	app.closers = append(app.closers, closePub)

	svc := orders.New(st, c, newIdentityClient(cfg), pub, ordersConfig(ft))
	api := ordersapi.New(svc, hub).
		WithRateLimit(limiter).
		WithTrustedProxy(ft.TrustProxyHeaders)
	app.deps.router = api.Router()

	if cfg.Kafka.Enabled() {
		group := instanceGroup(app.opts.consumerGroup)
		consumer := kafka.NewConsumer(cfg.Kafka.Brokers(), app.opts.topic, group)
		app.opts.consumerGroup = group
		app.deps.consumer = consumer
		app.deps.relay = kafka.RelayHandler(ctx, hub)
		app.closers = append(app.closers, func() { _ = consumer.Close() })
	}

	if ft.EmbeddedScheduler {
		app.deps.scheduler = scheduler.New(st, newSimulator(ft), c, pub).
			WithInterval(schedulerInterval(ft))
	}

	return app
}

// eventPublisher routes every event through the Kafka topic when a broker is
// configured, so each API replica (this one included) relays it to its own
// websocket clients. Without Kafka events go straight to the local hub.
func eventPublisher(cfg *config.Config, topic string, hub *broadcast.Hub) (broadcast.Publisher, func()) {
	if !cfg.Kafka.Enabled() {
		return hub, func() {}
	}
	p := kafka.NewProducer(cfg.Kafka.Brokers())
	return kafka.NewEventPublisher(p, topic), func() { _ = p.Close() }
}

// instanceGroup gives each replica its own consumer group so every replica
// sees every tracking event.
func instanceGroup(base string) string {
	return base + "-" + uuid.NewString()
}

func mustOpenPostgres(ctx context.Context, cfg *config.Config) *pgorders.Storage {
	attempts := uint64(cfg.FoodTrack.DBConnectAttempts)
	if attempts == 0 {
		attempts = 30
	}
	st, err := pgorders.Connect(ctx, cfg.Database.ConnString(), attempts)
	if err != nil {
		panic(fmt.Sprintf("postgres is not ready: %v", err))
	}
	return st
}

// openCache returns the Redis cache and the rate limiter sharing its pool, or
// the no-op cache and no limiter when Redis cannot be reached.
func openCache(ctx context.Context, cfg *config.Config) (cache.Cache, *ordersapi.RateLimit) {
	if cfg.Redis.Host == "" {
		slog.Warn("redis not configured, caching disabled")
		return nopcache.New(), nil
	}
	attempts := uint64(cfg.FoodTrack.RedisConnectAttempts)
	if attempts == 0 {
		attempts = 5
	}
	rc, err := rediscache.Connect(ctx, cfg.Redis.Addr(), attempts)
	if err != nil {
		slog.Warn("redis unavailable, caching disabled", "error", err.Error())
		return nopcache.New(), nil
	}
	rl := ordersapi.NewRateLimit(rediscache.NewRateLimiter(rc.Client()), int64(cfg.FoodTrack.APIRateLimitPerMinute))
	return rc, rl
}

func newIdentityClient(cfg *config.Config) identity.Client {
	if cfg.FoodTrack.IdentityBaseURL != "" {
		return identityhttp.New(cfg.FoodTrack.IdentityBaseURL, cfg.FoodTrack.IdentityAPIKey)
	}
	return fake.New()
}

func newSimulator(ft config.FoodTrackConfig) *simulator.Simulator {
	return simulator.New(simulator.Config{
		Route:              simulator.Route(ft.RoutePoints()),
		DefaultDestination: ft.Destination(),
		AvgSpeedKmh:        ft.AvgSpeedKmh,
	}, simulator.NewRandomArrival(nil, ft.ArrivalOneIn))
}

func schedulerInterval(ft config.FoodTrackConfig) time.Duration {
	d := time.Duration(ft.SchedulerIntervalSeconds) * time.Second
	if d <= 0 {
		d = 5 * time.Second
	}
	return d
}

func ordersConfig(ft config.FoodTrackConfig) orders.Config {
	cfg := orders.DefaultConfig()
	setTTL(&cfg.OrderTTL, ft.OrderTTLSeconds)
	setTTL(&cfg.TimelineTTL, ft.TimelineTTLSeconds)
	setTTL(&cfg.RecommendationsTTL, ft.RecommendationsTTLSeconds)
	setTTL(&cfg.UserOrdersTTL, ft.UserOrdersTTLSeconds)
	if ft.RecommendationsLimit > 0 {
		cfg.RecommendationsLimit = ft.RecommendationsLimit
	}
	if ft.AvgSpeedKmh > 0 {
		cfg.AvgSpeedKmh = ft.AvgSpeedKmh
	}
	if d := ft.Destination(); d != nil {
		cfg.DefaultDestination = *d
	}
	return cfg
}

func setTTL(dst *time.Duration, seconds int) {
	if seconds > 0 {
		*dst = time.Duration(seconds) * time.Second
	}
}

func valueOr(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

func (a *trackAPIApp) Close() {
	if a.cancel != nil {
		a.cancel()
	}
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

func (a *trackAPIApp) Run() error {
	return runTrackAPI(a.ctx, a.opts, a.deps)
}
