package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/parttimehacker/diystatus/internal/domain"
	"github.com/parttimehacker/diystatus/internal/ports"
)

// Sample error policies.
const (
	OnSampleErrorFatal     = "fatal"
	OnSampleErrorLastKnown = "last_known"
	OnSampleErrorSkip      = "skip"
)

const defaultSampleInterval = 10 * time.Second

// Clock supplies wall-clock time to the schedule.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock reads the local wall clock.
var SystemClock Clock = systemClock{}

// Loop samples the host every interval, feeds the accumulator and publishes
// the averages whenever the wall-clock minute hits an armed slot.
type Loop struct {
	sampler  ports.Sampler
	acc      *domain.SampleAccumulator
	schedule *domain.Schedule
	pub      *Publisher
	pol      ports.Policy
	obs      ports.Observability
	clock    Clock

	last    domain.Sample
	hasLast bool
}

func NewLoop(sampler ports.Sampler, acc *domain.SampleAccumulator, schedule *domain.Schedule, pub *Publisher, pol ports.Policy, obs ports.Observability, clock Clock) *Loop {
	if clock == nil {
		clock = SystemClock
	}
	return &Loop{
		sampler:  sampler,
		acc:      acc,
		schedule: schedule,
		pub:      pub,
		pol:      pol,
		obs:      obs,
		clock:    clock,
	}
}

// Run ticks once per sample interval, starting one interval in, until ctx is done.
// A sample error under the fatal policy ends the loop with that error.
// Cancellation is not an error; pending samples are flushed first unless the
// policy disables it.
func (l *Loop) Run(ctx context.Context) error {
	interval := l.pol.SampleInterval
	if interval <= 0 {
		interval = defaultSampleInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

loop:
	for {
		select {
		case <-ctx.Done():
			break loop
		case <-ticker.C:
			if err := l.Tick(ctx); err != nil && ctx.Err() == nil {
				return err
			}
		}
	}

	if l.pol.ShouldFlushOnShutdown() && l.pub.PublishAverages(ctx, l.acc) {
		l.obs.LogInfo("shutdown_flush")
	}
	return nil
}

// Tick takes one sample and evaluates the schedule once.
func (l *Loop) Tick(ctx context.Context) error {
	start := time.Now()
	s, err := l.sampler.Sample(ctx)
	l.obs.ObserveLatency(ports.MetricSampleDurationSeconds, time.Since(start).Seconds())

	if err != nil {
		l.obs.IncCounter(ports.MetricSampleErrorsTotal, 1)
		switch l.pol.OnSampleError {
		case OnSampleErrorLastKnown:
			l.obs.LogError("sample_failed_reusing_last", err)
			if l.hasLast {
				l.add(l.last)
			}
		case OnSampleErrorSkip:
			l.obs.LogError("sample_failed_skipped", err)
		default:
			l.obs.LogCritical("sample_failed", err)
			return fmt.Errorf("sample host metrics: %w", err)
		}
	} else {
		l.last, l.hasLast = s, true
		l.add(s)
	}

	m := domain.MinuteOf(l.clock.Now())
	l.schedule.Check(m, func() {
		if !l.pub.PublishAverages(ctx, l.acc) {
			l.obs.LogInfo("slot_skipped_no_samples", ports.Field{Key: "slot", Value: m.String()})
		}
	})
	return nil
}

func (l *Loop) add(s domain.Sample) {
	l.acc.Add(s)
	l.obs.IncCounter(ports.MetricSamplesTotal, 1)
}
