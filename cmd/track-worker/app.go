package main

import (
	"context"
	"log/slog"
	"time"

	"github.com/BearBump/FoodTrack/config"
	"github.com/BearBump/FoodTrack/internal/broadcast"
	"github.com/BearBump/FoodTrack/internal/broker/kafka"
	"github.com/BearBump/FoodTrack/internal/cache"
	"github.com/BearBump/FoodTrack/internal/cache/nopcache"
	"github.com/BearBump/FoodTrack/internal/cache/rediscache"
	"github.com/BearBump/FoodTrack/internal/services/scheduler"
	"github.com/BearBump/FoodTrack/internal/services/simulator"
	"github.com/BearBump/FoodTrack/internal/storage/pgorders"
)

const defaultTopic = "order.tracking"

type pinger interface {
	Ping(ctx context.Context) error
}

type workerFactories struct {
	newStorage   func(ctx context.Context, cfg *config.Config) (repo scheduler.Repository, closeFn func(), err error)
	newPublisher func(cfg *config.Config) (pub broadcast.Publisher, closeFn func())
	newCache     func(ctx context.Context, cfg *config.Config) (c cache.Cache, closeFn func())
	newStepper   func(cfg *config.Config) scheduler.Stepper
}

func defaultWorkerFactories() workerFactories {
	return workerFactories{
		newStorage: func(ctx context.Context, cfg *config.Config) (scheduler.Repository, func(), error) {
			attempts := uint64(cfg.FoodTrack.DBConnectAttempts)
			if attempts == 0 {
				attempts = 30
			}
			st, err := pgorders.Connect(ctx, cfg.Database.ConnString(), attempts)
			if err != nil {
				return nil, nil, err
			}
			return st, st.Close, nil
		},
		newPublisher: func(cfg *config.Config) (broadcast.Publisher, func()) {
			if !cfg.Kafka.Enabled() {
				slog.Warn("kafka not configured, scheduler events stay local")
				return broadcast.Multi{}, func() {}
			}
			topic := cfg.Kafka.OrderTrackingTopicName
			if topic == "" {
				topic = defaultTopic
			}
			p := kafka.NewProducer(cfg.Kafka.Brokers())
			return kafka.NewEventPublisher(p, topic), func() { _ = p.Close() }
		},
		newCache: func(ctx context.Context, cfg *config.Config) (cache.Cache, func()) {
			if cfg.Redis.Host == "" {
				return nopcache.New(), func() {}
			}
			attempts := uint64(cfg.FoodTrack.RedisConnectAttempts)
			if attempts == 0 {
				attempts = 5
			}
			rc, err := rediscache.Connect(ctx, cfg.Redis.Addr(), attempts)
			if err != nil {
				slog.Warn("redis unavailable, cache invalidation disabled", "error", err.Error())
				return nopcache.New(), func() {}
			}
			return rc, func() { _ = rc.Close() }
		},
		newStepper: func(cfg *config.Config) scheduler.Stepper {
			ft := cfg.FoodTrack
			return simulator.New(simulator.Config{
				Route:              simulator.Route(ft.RoutePoints()),
				DefaultDestination: ft.Destination(),
				AvgSpeedKmh:        ft.AvgSpeedKmh,
			}, simulator.NewRandomArrival(nil, ft.ArrivalOneIn))
		},
	}
}

// RunTrackWorker runs the tracking scheduler until ctx is done, plus the ops
// HTTP server when a worker address is configured.
func RunTrackWorker(ctx context.Context, cfg *config.Config, f workerFactories) error {
	interval := time.Duration(cfg.FoodTrack.SchedulerIntervalSeconds) * time.Second
	if interval <= 0 {
		interval = 5 * time.Second
	}

	repo, closeStorage, err := f.newStorage(ctx, cfg)
	if err != nil {
		return err
	}
	if closeStorage != nil {
		defer closeStorage()
	}

	pub, closePub := f.newPublisher(cfg)
	if closePub != nil {
		defer closePub()
	}
	c, closeCache := f.newCache(ctx, cfg)
	if closeCache != nil {
		defer closeCache()
	}

	sched := scheduler.New(repo, f.newStepper(cfg), c, pub).WithInterval(interval)

	if cfg.FoodTrack.WorkerHTTPAddr != "" {
		var ready func(ctx context.Context) error
		if p, ok := repo.(pinger); ok {
			ready = p.Ping
		}
		go func() {
			err := runWorkerHTTPServer(ctx, workerHTTPOpts{
				httpAddr:    cfg.FoodTrack.WorkerHTTPAddr,
				swaggerPath: cfg.FoodTrack.SwaggerPath,
				scheduler:   sched,
				ready:       ready,
				cfg:         cfg,
			})
			if err != nil && ctx.Err() == nil {
				slog.Error("worker http server stopped", "error", err.Error())
			}
		}()
	}

	return sched.Run(ctx)
}
