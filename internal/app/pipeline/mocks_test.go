package pipeline

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/parttimehacker/diystatus/internal/domain"
	"github.com/parttimehacker/diystatus/internal/ports"
)

type mockObs struct {
	mu       sync.Mutex
	infos    []string
	errors   []error
	critical []error
	counters map[string]float64
	gauges   map[string]float64
}

func newMockObs() *mockObs {
	return &mockObs{counters: map[string]float64{}, gauges: map[string]float64{}}
}

func (m *mockObs) LogInfo(msg string, _ ...ports.Field) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.infos = append(m.infos, msg)
}

func (m *mockObs) LogError(_ string, err error, _ ...ports.Field) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errors = append(m.errors, err)
}

func (m *mockObs) LogCritical(_ string, err error, _ ...ports.Field) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.critical = append(m.critical, err)
}

func (m *mockObs) IncCounter(name string, v float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counters[name] += v
}

func (m *mockObs) ObserveLatency(string, float64) {}

func (m *mockObs) SetGauge(name string, v float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gauges[name] = v
}

func (m *mockObs) counter(name string) float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.counters[name]
}

func (m *mockObs) logged(msg string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.infos {
		if s == msg {
			return true
		}
	}
	return false
}

type published struct {
	topic    string
	payload  string
	qos      byte
	retained bool
}

type mockBus struct {
	ports.Bus
	fail map[string]bool
	sent []published
}

func (m *mockBus) Publish(topic, payload string, qos byte, retained bool) error {
	if m.fail[topic] {
		return errors.New("broker unavailable")
	}
	m.sent = append(m.sent, published{topic: topic, payload: payload, qos: qos, retained: retained})
	return nil
}

func (m *mockBus) payloads() map[string]string {
	out := make(map[string]string, len(m.sent))
	for _, p := range m.sent {
		out[p.topic] = p.payload
	}
	return out
}

type sampleResult struct {
	s   domain.Sample
	err error
}

type mockSampler struct {
	results []sampleResult
	calls   int
	after   func()
}

func (m *mockSampler) Sample(context.Context) (domain.Sample, error) {
	if m.after != nil {
		defer m.after()
	}
	if len(m.results) == 0 {
		m.calls++
		return domain.Sample{CPUPercent: 10, TemperatureCelsius: 40, DiskFreeGiB: 100}, nil
	}
	idx := m.calls
	if idx >= len(m.results) {
		idx = len(m.results) - 1
	}
	m.calls++
	return m.results[idx].s, m.results[idx].err
}

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) setMinute(m int) {
	c.now = time.Date(2024, 3, 1, 14, m, 5, 0, time.UTC)
}

type mockArchive struct {
	err    error
	writes []domain.Averages
	hosts  []string
}

func (m *mockArchive) WriteAverages(_ context.Context, host string, _ time.Time, avg domain.Averages) error {
	if m.err != nil {
		return m.err
	}
	m.hosts = append(m.hosts, host)
	m.writes = append(m.writes, avg)
	return nil
}

func (m *mockArchive) Name() string { return "mock" }

var testTopics = Topics{Prefix: "diy", Host: "pi"}
