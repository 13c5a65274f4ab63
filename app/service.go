// Package app wires the store client, push channel, session and engines into
// one runnable dispatch service.
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/mjoly/fieldops/config"
	"github.com/mjoly/fieldops/core/assign"
	coremetrics "github.com/mjoly/fieldops/core/metrics"
	"github.com/mjoly/fieldops/core/notify"
	"github.com/mjoly/fieldops/core/registry"
	"github.com/mjoly/fieldops/core/session"
	"github.com/mjoly/fieldops/core/status"
	"github.com/mjoly/fieldops/core/store"
	"github.com/mjoly/fieldops/infra/logger"
	"github.com/mjoly/fieldops/infra/metrics"
	"github.com/mjoly/fieldops/infra/mqtt"
	"github.com/mjoly/fieldops/infra/storehttp"
	"github.com/mjoly/fieldops/internal/eventbus"
)

// Service orchestrates the dispatch core for one active day.
type Service struct {
	Engine  *assign.Engine
	Machine *status.Machine
	Session *session.Session

	store       store.Store
	bus         eventbus.EventBus
	sub         *mqtt.Subscriber
	queue       *notify.Queue
	sink        coremetrics.Sink
	log         logger.Logger
	promEnabled bool
	promPort    string
}

// New creates a Service from the configuration. The session covers the given
// active day.
func New(cfg *config.Config, date time.Time) (*Service, error) {
	logg := logger.New("service")

	client, err := storehttp.NewClient(cfg.Store)
	if err != nil {
		return nil, fmt.Errorf("store client: %w", err)
	}

	var sinks []coremetrics.Sink
	if cfg.Metrics.PrometheusEnabled {
		sink, err := metrics.NewPromSink(cfg.Metrics)
		if err != nil {
			return nil, fmt.Errorf("prom sink: %w", err)
		}
		sinks = append(sinks, sink)
	}
	if cfg.Metrics.InfluxEnabled {
		sinks = append(sinks, metrics.NewInfluxSinkWithFallback(
			cfg.Metrics.InfluxURL, cfg.Metrics.InfluxToken, cfg.Metrics.InfluxOrg, cfg.Metrics.InfluxBucket))
	}
	var sink coremetrics.Sink
	switch len(sinks) {
	case 0:
		sink = coremetrics.NopSink{}
	case 1:
		sink = sinks[0]
	default:
		sink = metrics.NewMultiSink(sinks...)
	}

	bus := eventbus.New()
	sub, err := mqtt.NewSubscriber(cfg.MQTT, bus)
	if err != nil {
		return nil, fmt.Errorf("mqtt subscriber: %w", err)
	}

	queue := notify.NewQueue()
	reg := registry.New(client)
	strategy := assign.Balanced{RatingWeight: cfg.Dispatch.RatingWeight}
	engine, err := assign.NewEngine(client, reg, strategy, bus, queue, sink, logger.New("assign"))
	if err != nil {
		return nil, fmt.Errorf("assign engine: %w", err)
	}
	machine := status.NewMachine(client, reg, bus, queue, logger.New("status"))
	sess := session.New(session.NewView(), client, client, bus, date, cfg.Session.Interval(), logger.New("session"))

	return &Service{
		Engine:      engine,
		Machine:     machine,
		Session:     sess,
		store:       client,
		bus:         bus,
		sub:         sub,
		queue:       queue,
		sink:        sink,
		log:         logg,
		promEnabled: cfg.Metrics.PrometheusEnabled,
		promPort:    cfg.Metrics.PrometheusPort,
	}, nil
}

// Notifications exposes the bounded notification queue.
func (s *Service) Notifications() *notify.Queue { return s.queue }

// Bus exposes the in-process event bus.
func (s *Service) Bus() eventbus.EventBus { return s.bus }

// Run starts the session loop and blocks until the context is cancelled.
func (s *Service) Run(ctx context.Context) error {
	metrics.StartEventCollector(ctx, s.bus, s.sink)
	if s.promEnabled {
		go func() {
			if err := metrics.StartPromServer(ctx, s.promPort); err != nil {
				s.log.Errorf("prom server: %v", err)
			}
		}()
	}
	s.Session.Run(ctx)
	return nil
}

// Close releases resources held by the service.
func (s *Service) Close() error {
	s.sub.Disconnect()
	s.bus.Close()
	return nil
}
