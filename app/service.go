package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/kilianp07/loadplan/api/plans"
	"github.com/kilianp07/loadplan/config"
	coremetrics "github.com/kilianp07/loadplan/core/metrics"
	coremon "github.com/kilianp07/loadplan/core/monitoring"
	"github.com/kilianp07/loadplan/core/planning"
	"github.com/kilianp07/loadplan/core/planning/logging"
	"github.com/kilianp07/loadplan/infra/logger"
	"github.com/kilianp07/loadplan/infra/metrics"
	"github.com/kilianp07/loadplan/infra/monitoring"
	"github.com/kilianp07/loadplan/infra/mqtt"
	"github.com/kilianp07/loadplan/internal/eventbus"
)

// Service wires the planner to its HTTP API and side channels.
type Service struct {
	Planner   *planning.Planner
	cfg       *config.Config
	bus       *eventbus.Bus
	sink      coremetrics.MetricsSink
	store     logging.LogStore
	publisher mqtt.Publisher
	paho      *mqtt.PahoClient
	handler   http.Handler
	log       logger.Logger

	mu   sync.Mutex
	addr net.Addr
}

// Option customizes a Service.
type Option func(*Service)

// WithPublisher replaces the MQTT publisher built from the configuration.
func WithPublisher(p mqtt.Publisher) Option {
	return func(s *Service) { s.publisher = p }
}

// New creates a Service from the configuration.
func New(cfg *config.Config, opts ...Option) (*Service, error) {
	logg := logger.New("service")

	mon, err := monitoring.NewSentryMonitor(cfg.Sentry)
	if err != nil {
		return nil, fmt.Errorf("monitoring: %w", err)
	}
	coremon.Init(mon)

	sink, err := coremetrics.NewMetricsSink(cfg.Metrics.Sinks)
	if err != nil {
		return nil, fmt.Errorf("metrics sink: %w", err)
	}

	bus := eventbus.New()
	planner, err := planning.NewPlanner(cfg.Solver, bus, logger.New("planner"))
	if err != nil {
		return nil, fmt.Errorf("planner: %w", err)
	}

	svc := &Service{Planner: planner, cfg: cfg, bus: bus, sink: sink, log: logg}
	for _, o := range opts {
		o(svc)
	}

	store, err := logging.NewStore(cfg.Logging.Store())
	if err != nil {
		svc.closeSink()
		return nil, fmt.Errorf("plan log: %w", err)
	}
	if store != nil {
		planner.SetLogStore(store)
		svc.store = store
	}

	if svc.publisher == nil && cfg.MQTT.Enabled() {
		client, err := mqtt.NewPahoClient(cfg.MQTT)
		if err != nil {
			svc.closeSink()
			_ = svc.closeStore()
			return nil, fmt.Errorf("mqtt client: %w", err)
		}
		svc.paho = client
		svc.publisher = client
	}

	mux := http.NewServeMux()
	plans.Register(mux, planner, cfg.HTTP.Token)
	svc.handler = mux
	return svc, nil
}

// Handler returns the HTTP API.
func (s *Service) Handler() http.Handler { return s.handler }

// Addr returns the address the API listens on once Run has started.
func (s *Service) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addr
}

// Run starts the service and blocks until the context is canceled.
func (s *Service) Run(ctx context.Context) error {
	metrics.StartEventCollector(ctx, s.bus, s.sink, logger.New("metrics"))
	if s.publisher != nil {
		mqtt.StartPlanForwarder(ctx, s.bus, s.publisher, s.cfg.MQTT.AckTimeout(), logger.New("plan-forwarder"))
	}
	if port := s.cfg.Metrics.PrometheusPort; port != "" {
		go func() {
			defer coremon.Recover()
			if err := metrics.StartPromServer(ctx, port); err != nil {
				s.log.Errorf("prom server: %v", err)
			}
		}()
	}

	ln, err := net.Listen("tcp", s.cfg.HTTP.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.cfg.HTTP.Addr, err)
	}
	s.mu.Lock()
	s.addr = ln.Addr()
	s.mu.Unlock()

	srv := &http.Server{Handler: s.handler, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.HTTP.ShutdownTimeout())
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.log.Errorf("http shutdown: %v", err)
		}
	}()
	s.log.Infof("listening on %s", ln.Addr())
	if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Close releases resources held by the service.
func (s *Service) Close() error {
	s.bus.Close()
	if s.paho != nil {
		s.paho.Disconnect()
	}
	s.closeSink()
	coremon.Flush(2 * time.Second)
	return s.closeStore()
}

func (s *Service) closeSink() {
	if c, ok := s.sink.(interface{ Close() }); ok {
		c.Close()
	}
}

func (s *Service) closeStore() error {
	if s.store == nil {
		return nil
	}
	return s.store.Close()
}
