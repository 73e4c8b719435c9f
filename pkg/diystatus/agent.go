package diystatus

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/parttimehacker/diystatus/internal/adapters/facts"
	"github.com/parttimehacker/diystatus/internal/adapters/hostmetrics"
	"github.com/parttimehacker/diystatus/internal/adapters/mqtt"
	"github.com/parttimehacker/diystatus/internal/adapters/observability"
	"github.com/parttimehacker/diystatus/internal/adapters/queue"
	"github.com/parttimehacker/diystatus/internal/adapters/sink"
	"github.com/parttimehacker/diystatus/internal/app/pipeline"
	"github.com/parttimehacker/diystatus/internal/domain"
	"github.com/parttimehacker/diystatus/internal/ports"
)

const (
	gaugeInterval   = time.Second
	shutdownTimeout = 5 * time.Second
)

// AgentOption customizes the dependencies used by Agent.
type AgentOption func(*agentOverrides)

type agentOverrides struct {
	sampler       Sampler
	facts         FactSource
	bus           Bus
	archive       Archive
	queue         ControlQueue
	observability Observability
	clock         Clock
	logger        *zap.Logger
	handlers      map[ControlTopic]ControlHandler
}

// WithSampler replaces the gopsutil host sampler (simulators, other platforms).
func WithSampler(s Sampler) AgentOption {
	return func(o *agentOverrides) {
		o.sampler = s
	}
}

// WithFactSource replaces the os-release/device-tree fact reader.
func WithFactSource(f FactSource) AgentOption {
	return func(o *agentOverrides) {
		o.facts = f
	}
}

// WithBus replaces the MQTT bus, e.g. with NewCallbackBus or NewChannelBus.
func WithBus(b Bus) AgentOption {
	return func(o *agentOverrides) {
		o.bus = b
	}
}

// WithArchive installs an archive regardless of the archive config.
func WithArchive(a Archive) AgentOption {
	return func(o *agentOverrides) {
		o.archive = a
	}
}

// WithControlQueue injects a custom control queue implementation.
func WithControlQueue(q ControlQueue) AgentOption {
	return func(o *agentOverrides) {
		o.queue = q
	}
}

// WithObservability plugs in a custom observability backend.
func WithObservability(obs Observability) AgentOption {
	return func(o *agentOverrides) {
		o.observability = obs
	}
}

// WithClock overrides the wall clock the schedule reads.
func WithClock(c Clock) AgentOption {
	return func(o *agentOverrides) {
		o.clock = c
	}
}

// WithLogger sets the zap logger used by the default observability backend.
func WithLogger(l *zap.Logger) AgentOption {
	return func(o *agentOverrides) {
		o.logger = l
	}
}

// WithControlHandler replaces the default notice handler for one control topic.
func WithControlHandler(ct ControlTopic, h ControlHandler) AgentOption {
	return func(o *agentOverrides) {
		if o.handlers == nil {
			o.handlers = make(map[ControlTopic]ControlHandler)
		}
		o.handlers[ct] = h
	}
}

// Agent wires sampler → accumulator → schedule → bus, plus the control topic
// dispatcher, and exposes simple lifecycle hooks for embedding the agent
// inside any Go service.
type Agent struct {
	cfg        *Config
	obs        ports.Observability
	reg        *prometheus.Registry
	bus        ports.Bus
	facts      ports.FactSource
	queue      ports.ControlQueue
	acc        *domain.SampleAccumulator
	topics     pipeline.Topics
	loop       *pipeline.Loop
	controller *pipeline.Controller
	db         *sql.DB

	closeOnce sync.Once
	closeErr  error
}

// NewAgent bootstraps the default adapters (gopsutil sampler, MQTT bus, file
// facts, in-memory control queue, Prometheus observability and, when a
// connection string is configured, the TimescaleDB archive). AgentOption
// values override any of them.
func NewAgent(cfg *Config, opts ...AgentOption) (*Agent, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if err := cfg.Finalize(); err != nil {
		return nil, err
	}

	var o agentOverrides
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}

	log := o.logger
	if log == nil {
		log = zap.NewNop()
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	obs := o.observability
	if obs == nil {
		obs = observability.NewPromObs(log, reg)
	}

	sampler := o.sampler
	if sampler == nil {
		sampler = hostmetrics.NewSampler(cfg.Sampler)
	}

	factSrc := o.facts
	if factSrc == nil {
		factSrc = facts.NewFileFacts(cfg.Facts)
	}

	bus := o.bus
	if bus == nil {
		bus = mqtt.NewBus(cfg.Bus, cfg.Topics.Host, obs)
	}

	q := o.queue
	if q == nil {
		q = queue.NewMemQueue(cfg.Policy.ControlQueueLen)
	}

	var (
		db      *sql.DB
		archive = o.archive
	)
	if archive == nil && cfg.Archive.ConnString != "" {
		var err error
		db, err = sql.Open("postgres", cfg.Archive.ConnString)
		if err != nil {
			return nil, fmt.Errorf("open archive: %w", err)
		}
		archive = sink.NewTimescaleSink(db, cfg.Archive.Table)
	}

	schedule, err := cfg.NewSchedule()
	if err != nil {
		return nil, err
	}

	topics := pipeline.Topics{Prefix: cfg.Topics.Prefix, Host: cfg.Topics.Host}
	acc := domain.NewSampleAccumulator()
	pub := pipeline.NewPublisher(bus, topics, archive, obs)
	controller := pipeline.NewController(topics, q, cfg.Policy, obs)
	for ct, h := range o.handlers {
		controller.Handle(ct, h)
	}

	return &Agent{
		cfg:        cfg,
		obs:        obs,
		reg:        reg,
		bus:        bus,
		facts:      factSrc,
		queue:      q,
		acc:        acc,
		topics:     topics,
		loop:       pipeline.NewLoop(sampler, acc, schedule, pub, cfg.Policy, obs, o.clock),
		controller: controller,
		db:         db,
	}, nil
}

// Registry exposes the Prometheus registry served on /metrics.
func (a *Agent) Registry() *prometheus.Registry { return a.reg }

// Run connects the bus, publishes the host facts and blocks until ctx is
// cancelled or the sampling loop fails. Resources are released before it
// returns.
func (a *Agent) Run(ctx context.Context) error {
	if err := a.bus.Connect(ctx, a.controller.Subscriptions()); err != nil {
		return errors.Join(fmt.Errorf("connect bus: %w", err), a.Close())
	}
	a.obs.LogInfo("agent_started",
		ports.Field{Key: "host", Value: a.cfg.Topics.Host},
		ports.Field{Key: "prefix", Value: a.cfg.Topics.Prefix},
		ports.Field{Key: "slots", Value: a.cfg.Schedule.Slots})

	pipeline.PublishHostFacts(ctx, a.bus, a.topics, a.facts, a.obs)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return a.loop.Run(gctx) })
	g.Go(func() error { return a.controller.Run(gctx) })
	g.Go(func() error {
		a.recordGauges(gctx, gaugeInterval)
		return nil
	})
	if !a.cfg.Metrics.Disabled {
		a.serveMetrics(gctx, g)
	}

	err := g.Wait()
	a.obs.LogInfo("agent_stopped")
	return errors.Join(err, a.Close())
}

// Close disconnects the bus and closes the archive connection. It is safe to
// call more than once.
func (a *Agent) Close() error {
	a.closeOnce.Do(func() {
		a.bus.Close()
		if a.db != nil {
			a.closeErr = a.db.Close()
		}
	})
	return a.closeErr
}

func (a *Agent) serveMetrics(ctx context.Context, g *errgroup.Group) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(a.reg, promhttp.HandlerOpts{Registry: a.reg}))
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	srv := &http.Server{
		Addr:              a.cfg.Metrics.Addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	g.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("metrics server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
}

func (a *Agent) recordGauges(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			a.obs.SetGauge(ports.MetricPendingSamples, float64(a.acc.Pending()))
			a.obs.SetGauge(ports.MetricControlQueueLength, float64(a.queue.Len()))
		}
	}
}
