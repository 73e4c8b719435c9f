package observability

import (
	"go.uber.org/zap"

	"github.com/parttimehacker/diystatus/internal/ports"
	"github.com/prometheus/client_golang/prometheus"
)

type PromObs struct {
	log      *zap.Logger
	counters map[string]prometheus.Counter
	gauges   map[string]prometheus.Gauge
	histos   map[string]prometheus.Observer
}

// NewPromObs registers the agent's collectors on reg, or on the default
// registerer when reg is nil.
func NewPromObs(log *zap.Logger, reg prometheus.Registerer) *PromObs {
	if log == nil {
		log = zap.NewNop()
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	counter := func(name, help string) prometheus.Counter {
		return prometheus.NewCounter(prometheus.CounterOpts{Name: name, Help: help})
	}
	gauge := func(name, help string) prometheus.Gauge {
		return prometheus.NewGauge(prometheus.GaugeOpts{Name: name, Help: help})
	}

	counters := map[string]prometheus.Counter{
		ports.MetricSamplesTotal:         counter(ports.MetricSamplesTotal, "Samples added to the accumulator."),
		ports.MetricSampleErrorsTotal:    counter(ports.MetricSampleErrorsTotal, "Failed attempts to read host metrics."),
		ports.MetricPublicationsTotal:    counter(ports.MetricPublicationsTotal, "Sets of averages published to the bus."),
		ports.MetricPublishErrorsTotal:   counter(ports.MetricPublishErrorsTotal, "Bus publish calls that reported an error."),
		ports.MetricArchiveErrorsTotal:   counter(ports.MetricArchiveErrorsTotal, "Archive writes that failed."),
		ports.MetricControlMessagesTotal: counter(ports.MetricControlMessagesTotal, "Control topic messages dispatched."),
		ports.MetricControlDroppedTotal:  counter(ports.MetricControlDroppedTotal, "Control topic messages dropped on a full queue."),
	}
	gauges := map[string]prometheus.Gauge{
		ports.MetricCPUPercentAvg:      gauge(ports.MetricCPUPercentAvg, "Last published CPU utilisation average, percent."),
		ports.MetricCPUCelsiusAvg:      gauge(ports.MetricCPUCelsiusAvg, "Last published CPU temperature average, degrees Celsius."),
		ports.MetricDiskFreeGiBAvg:     gauge(ports.MetricDiskFreeGiBAvg, "Last published free disk space average, GiB."),
		ports.MetricPendingSamples:     gauge(ports.MetricPendingSamples, "Samples accumulated since the last publication."),
		ports.MetricControlQueueLength: gauge(ports.MetricControlQueueLength, "Control messages waiting for dispatch."),
	}
	sampleDuration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    ports.MetricSampleDurationSeconds,
		Help:    "Time spent reading one host sample.",
		Buckets: prometheus.ExponentialBuckets(0.01, 2, 10),
	})

	for _, c := range counters {
		reg.MustRegister(c)
	}
	for _, g := range gauges {
		reg.MustRegister(g)
	}
	reg.MustRegister(sampleDuration)

	return &PromObs{
		log:      log,
		counters: counters,
		gauges:   gauges,
		histos: map[string]prometheus.Observer{
			ports.MetricSampleDurationSeconds: sampleDuration,
		},
	}
}

func (p *PromObs) LogInfo(msg string, fields ...ports.Field) {
	p.log.Info(msg, zapFields(fields)...)
}

func (p *PromObs) LogError(msg string, err error, fields ...ports.Field) {
	p.log.Error(msg, append(zapFields(fields), zap.Error(err))...)
}

func (p *PromObs) LogCritical(msg string, err error, fields ...ports.Field) {
	p.log.Error(msg, append(zapFields(fields), zap.Error(err), zap.Bool("critical", true))...)
}

func (p *PromObs) IncCounter(name string, v float64) {
	if c, ok := p.counters[name]; ok {
		c.Add(v)
	}
}

func (p *PromObs) ObserveLatency(name string, seconds float64) {
	if h, ok := p.histos[name]; ok {
		h.Observe(seconds)
	}
}

func (p *PromObs) SetGauge(name string, v float64) {
	if g, ok := p.gauges[name]; ok {
		g.Set(v)
	}
}

func zapFields(fields []ports.Field) []zap.Field {
	out := make([]zap.Field, 0, len(fields)+2)
	for _, f := range fields {
		out = append(out, zap.Any(f.Key, f.Value))
	}
	return out
}

var _ ports.Observability = (*PromObs)(nil)
