package pipeline

import (
	"context"
	"strconv"
	"time"

	"github.com/parttimehacker/diystatus/internal/domain"
	"github.com/parttimehacker/diystatus/internal/ports"
)

const archiveTimeout = 5 * time.Second

// Publisher drains the accumulator and emits the averages as retained,
// at-most-once messages. Failed publishes are logged and counted, never retried.
type Publisher struct {
	bus     ports.Bus
	topics  Topics
	archive ports.Archive
	obs     ports.Observability
	now     func() time.Time
}

// NewPublisher wires a publisher; archive may be nil.
func NewPublisher(bus ports.Bus, topics Topics, archive ports.Archive, obs ports.Observability) *Publisher {
	return &Publisher{
		bus:     bus,
		topics:  topics,
		archive: archive,
		obs:     obs,
		now:     time.Now,
	}
}

// PublishAverages reports whether anything was drained. With no pending
// samples nothing is sent.
func (p *Publisher) PublishAverages(ctx context.Context, acc *domain.SampleAccumulator) bool {
	avg, ok := acc.Drain()
	if !ok {
		return false
	}

	messages := []struct {
		topic string
		value float64
	}{
		{p.topics.CPU(), avg.CPUPercent},
		{p.topics.CPUCelsius(), avg.TemperatureCelsius},
		{p.topics.Disk(), avg.DiskFreeGiB},
	}
	for _, m := range messages {
		if err := p.bus.Publish(m.topic, FormatReading(m.value), ports.AtMostOnce, true); err != nil {
			p.obs.IncCounter(ports.MetricPublishErrorsTotal, 1)
			p.obs.LogError("bus_publish_failed", err, ports.Field{Key: "topic", Value: m.topic})
		}
	}

	p.obs.IncCounter(ports.MetricPublicationsTotal, 1)
	p.obs.SetGauge(ports.MetricCPUPercentAvg, avg.CPUPercent)
	p.obs.SetGauge(ports.MetricCPUCelsiusAvg, avg.TemperatureCelsius)
	p.obs.SetGauge(ports.MetricDiskFreeGiBAvg, avg.DiskFreeGiB)
	p.obs.LogInfo("averages_published",
		ports.Field{Key: "samples", Value: avg.Samples},
		ports.Field{Key: "cpu", Value: avg.CPUPercent},
		ports.Field{Key: "cpucelsius", Value: avg.TemperatureCelsius},
		ports.Field{Key: "disk", Value: avg.DiskFreeGiB})

	if p.archive != nil {
		p.archiveAverages(ctx, avg)
	}
	return true
}

func (p *Publisher) archiveAverages(ctx context.Context, avg domain.Averages) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), archiveTimeout)
	defer cancel()

	if err := p.archive.WriteAverages(ctx, p.topics.Host, p.now(), avg); err != nil {
		p.obs.IncCounter(ports.MetricArchiveErrorsTotal, 1)
		p.obs.LogError("archive_write_failed", err, ports.Field{Key: "archive", Value: p.archive.Name()})
	}
}

// FormatReading renders a reading with exactly one fractional digit.
func FormatReading(v float64) string {
	return strconv.FormatFloat(v, 'f', 1, 64)
}
