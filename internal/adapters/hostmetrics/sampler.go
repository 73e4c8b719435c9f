// Package hostmetrics reads CPU utilisation, CPU temperature and free disk
// space through gopsutil.
package hostmetrics

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/disk"
	"github.com/shirou/gopsutil/v4/sensors"

	"github.com/parttimehacker/diystatus/internal/domain"
	"github.com/parttimehacker/diystatus/internal/ports"
)

// ErrNoTemperatureSensor is returned when no sensor matches the configured key.
var ErrNoTemperatureSensor = errors.New("no matching temperature sensor")

const bytesPerGiB = 1024.0 * 1024.0 * 1024.0

// Config selects what the sampler reads.
type Config struct {
	DiskPath          string        `yaml:"disk_path"`
	TemperatureSensor string        `yaml:"temperature_sensor"`
	CPUWindow         time.Duration `yaml:"cpu_window"`
}

func (c *Config) ApplyDefaults() {
	if c.DiskPath == "" {
		c.DiskPath = "/"
	}
	if c.TemperatureSensor == "" {
		c.TemperatureSensor = "cpu_thermal"
	}
	if c.CPUWindow <= 0 {
		c.CPUWindow = time.Second
	}
}

// Sampler implements ports.Sampler on top of gopsutil.
type Sampler struct {
	cfg Config
	now func() time.Time

	// Overridable readers for testing.
	cpuPercent   func(ctx context.Context, interval time.Duration, percpu bool) ([]float64, error)
	temperatures func(ctx context.Context) ([]sensors.TemperatureStat, error)
	diskUsage    func(ctx context.Context, path string) (*disk.UsageStat, error)
}

func NewSampler(cfg Config) *Sampler {
	cfg.ApplyDefaults()
	return &Sampler{
		cfg:          cfg,
		now:          time.Now,
		cpuPercent:   cpu.PercentWithContext,
		temperatures: sensors.TemperaturesWithContext,
		diskUsage:    disk.UsageWithContext,
	}
}

// Sample blocks for the CPU window while utilisation is measured.
func (s *Sampler) Sample(ctx context.Context) (domain.Sample, error) {
	cpuPct, err := s.readCPU(ctx)
	if err != nil {
		return domain.Sample{}, err
	}
	celsius, err := s.readTemperature(ctx)
	if err != nil {
		return domain.Sample{}, err
	}
	free, err := s.readDiskFree(ctx)
	if err != nil {
		return domain.Sample{}, err
	}
	return domain.Sample{
		CPUPercent:         cpuPct,
		TemperatureCelsius: celsius,
		DiskFreeGiB:        free,
		Timestamp:          s.now(),
	}, nil
}

func (s *Sampler) readCPU(ctx context.Context) (float64, error) {
	pcts, err := s.cpuPercent(ctx, s.cfg.CPUWindow, false)
	if err != nil {
		return 0, fmt.Errorf("read cpu percent: %w", err)
	}
	if len(pcts) == 0 {
		return 0, errors.New("read cpu percent: empty result")
	}
	return pcts[0], nil
}

// readTemperature returns the first sensor whose key starts with the
// configured name. gopsutil may report partial results together with a
// warning error; those are used when a match exists.
func (s *Sampler) readTemperature(ctx context.Context) (float64, error) {
	temps, err := s.temperatures(ctx)
	for _, t := range temps {
		if strings.HasPrefix(t.SensorKey, s.cfg.TemperatureSensor) {
			return t.Temperature, nil
		}
	}
	if err != nil {
		return 0, fmt.Errorf("read temperature sensors: %w", err)
	}
	return 0, fmt.Errorf("%w: %q among %d sensors", ErrNoTemperatureSensor, s.cfg.TemperatureSensor, len(temps))
}

// readDiskFree converts free bytes to GiB rounded to one decimal place. Each
// sample is rounded before it is accumulated.
func (s *Sampler) readDiskFree(ctx context.Context) (float64, error) {
	usage, err := s.diskUsage(ctx, s.cfg.DiskPath)
	if err != nil {
		return 0, fmt.Errorf("read disk usage of %s: %w", s.cfg.DiskPath, err)
	}
	return RoundTenth(float64(usage.Free) / bytesPerGiB), nil
}

// RoundTenth rounds half away from zero to one decimal place.
func RoundTenth(v float64) float64 {
	return math.Round(v*10) / 10
}

var _ ports.Sampler = (*Sampler)(nil)
