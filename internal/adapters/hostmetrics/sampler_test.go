package hostmetrics

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shirou/gopsutil/v4/disk"
	"github.com/shirou/gopsutil/v4/sensors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSampler(cfg Config) *Sampler {
	s := NewSampler(cfg)
	s.now = func() time.Time { return time.Unix(1700000000, 0) }
	s.cpuPercent = func(context.Context, time.Duration, bool) ([]float64, error) {
		return []float64{12.5}, nil
	}
	s.temperatures = func(context.Context) ([]sensors.TemperatureStat, error) {
		return []sensors.TemperatureStat{
			{SensorKey: "rp1_adc_input", Temperature: 30.1},
			{SensorKey: "cpu_thermal_input", Temperature: 47.2},
		}, nil
	}
	s.diskUsage = func(context.Context, string) (*disk.UsageStat, error) {
		return &disk.UsageStat{Free: 100 * 1024 * 1024 * 1024}, nil
	}
	return s
}

func TestSamplerDefaults(t *testing.T) {
	s := NewSampler(Config{})
	assert.Equal(t, "/", s.cfg.DiskPath)
	assert.Equal(t, "cpu_thermal", s.cfg.TemperatureSensor)
	assert.Equal(t, time.Second, s.cfg.CPUWindow)
}

func TestSamplerSample(t *testing.T) {
	s := newTestSampler(Config{})

	var window time.Duration
	s.cpuPercent = func(_ context.Context, interval time.Duration, percpu bool) ([]float64, error) {
		window = interval
		require.False(t, percpu)
		return []float64{12.5}, nil
	}

	got, err := s.Sample(context.Background())
	require.NoError(t, err)
	assert.Equal(t, time.Second, window)
	assert.Equal(t, 12.5, got.CPUPercent)
	assert.Equal(t, 47.2, got.TemperatureCelsius)
	assert.Equal(t, 100.0, got.DiskFreeGiB)
	assert.Equal(t, time.Unix(1700000000, 0), got.Timestamp)
}

func TestSamplerRoundsDiskPerSample(t *testing.T) {
	s := newTestSampler(Config{DiskPath: "/data"})

	var path string
	s.diskUsage = func(_ context.Context, p string) (*disk.UsageStat, error) {
		path = p
		// 12.26 GiB
		free := 12.26 * bytesPerGiB
		return &disk.UsageStat{Free: uint64(free)}, nil
	}

	got, err := s.Sample(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "/data", path)
	assert.Equal(t, 12.3, got.DiskFreeGiB)
}

func TestSamplerTemperaturePartialResults(t *testing.T) {
	s := newTestSampler(Config{})
	s.temperatures = func(context.Context) ([]sensors.TemperatureStat, error) {
		return []sensors.TemperatureStat{{SensorKey: "cpu_thermal", Temperature: 51}}, errors.New("some sensors unreadable")
	}

	got, err := s.Sample(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 51.0, got.TemperatureCelsius)
}

func TestSamplerNoMatchingSensor(t *testing.T) {
	s := newTestSampler(Config{TemperatureSensor: "coretemp"})

	_, err := s.Sample(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNoTemperatureSensor)
}

func TestSamplerPropagatesReadErrors(t *testing.T) {
	boom := errors.New("boom")

	cpuFail := newTestSampler(Config{})
	cpuFail.cpuPercent = func(context.Context, time.Duration, bool) ([]float64, error) { return nil, boom }
	_, err := cpuFail.Sample(context.Background())
	assert.ErrorIs(t, err, boom)

	diskFail := newTestSampler(Config{})
	diskFail.diskUsage = func(context.Context, string) (*disk.UsageStat, error) { return nil, boom }
	_, err = diskFail.Sample(context.Background())
	assert.ErrorIs(t, err, boom)

	empty := newTestSampler(Config{})
	empty.cpuPercent = func(context.Context, time.Duration, bool) ([]float64, error) { return nil, nil }
	_, err = empty.Sample(context.Background())
	assert.Error(t, err)
}

func TestRoundTenth(t *testing.T) {
	assert.Equal(t, 100.1, RoundTenth(100.06))
	assert.Equal(t, 0.0, RoundTenth(0.04))
	assert.Equal(t, 42.0, RoundTenth(41.96))
}
