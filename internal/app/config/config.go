package config

import (
	"fmt"
	"os"
	"time"

	"github.com/parttimehacker/diystatus/internal/adapters/facts"
	"github.com/parttimehacker/diystatus/internal/adapters/hostmetrics"
	"github.com/parttimehacker/diystatus/internal/adapters/mqtt"
	"github.com/parttimehacker/diystatus/internal/domain"
	"github.com/parttimehacker/diystatus/internal/ports"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Bus      mqtt.Config        `yaml:"bus"`
	Topics   TopicsConfig       `yaml:"topics"`
	Schedule ScheduleConfig     `yaml:"schedule"`
	Sampler  hostmetrics.Config `yaml:"sampler"`
	Facts    facts.Config       `yaml:"facts"`
	Policy   ports.Policy       `yaml:"policy"`
	Metrics  MetricsConfig      `yaml:"metrics"`
	Archive  ArchiveConfig      `yaml:"archive"`
	Log      LogConfig          `yaml:"log"`
}

type TopicsConfig struct {
	Prefix string `yaml:"prefix"`
	Host   string `yaml:"host"`
}

type ScheduleConfig struct {
	Slots []int `yaml:"slots"`
}

type MetricsConfig struct {
	Addr     string `yaml:"addr"`
	Disabled bool   `yaml:"disabled"`
}

// ArchiveConfig enables the optional TimescaleDB archive when ConnString is set.
type ArchiveConfig struct {
	ConnString string `yaml:"conn_string"`
	Table      string `yaml:"table"`
}

type LogConfig struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
}

// Load reads YAML from path. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	if err := cfg.Finalize(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns a validated configuration with every default applied.
func Default() *Config {
	var cfg Config
	_ = cfg.Finalize()
	return &cfg
}

// Finalize applies defaults and validates; callers building a Config in code
// should call it before use.
func (c *Config) Finalize() error {
	c.applyDefaults()
	return c.validate()
}

func (c *Config) applyDefaults() {
	if c.Topics.Prefix == "" {
		c.Topics.Prefix = "diy"
	}
	if c.Topics.Host == "" {
		if h, err := os.Hostname(); err == nil {
			c.Topics.Host = h
		}
	}
	if len(c.Schedule.Slots) == 0 {
		for _, m := range domain.DefaultSlots {
			c.Schedule.Slots = append(c.Schedule.Slots, int(m))
		}
	}
	if c.Policy.SampleInterval == 0 {
		c.Policy.SampleInterval = 10 * time.Second
	}
	if c.Policy.OnSampleError == "" {
		c.Policy.OnSampleError = "fatal"
	}
	if c.Policy.ControlQueueLen == 0 {
		c.Policy.ControlQueueLen = 64
	}
	if c.Policy.OnControlQueueFull == "" {
		c.Policy.OnControlQueueFull = "drop"
	}
	if c.Policy.IdleSleep == 0 {
		c.Policy.IdleSleep = 5 * time.Millisecond
	}
	if c.Metrics.Addr == "" {
		c.Metrics.Addr = ":9100"
	}
	if c.Archive.Table == "" {
		c.Archive.Table = "host_averages"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}

	c.Bus.ApplyDefaults()
	c.Sampler.ApplyDefaults()
	c.Facts.ApplyDefaults()
}

func (c *Config) validate() error {
	if err := c.Bus.Validate(); err != nil {
		return fmt.Errorf("bus config: %w", err)
	}
	if c.Topics.Host == "" {
		return fmt.Errorf("topics.host is required (hostname lookup failed)")
	}
	if _, err := c.NewSchedule(); err != nil {
		return fmt.Errorf("schedule config: %w", err)
	}
	// A tick of a minute or more can step over a slot, or over the rearm
	// minute and leave every slot fired.
	if c.Policy.SampleInterval < 0 || c.Policy.SampleInterval >= time.Minute {
		return fmt.Errorf("policy.sample_interval %s must be between 0 and 1m", c.Policy.SampleInterval)
	}
	switch c.Policy.OnSampleError {
	case "fatal", "last_known", "skip":
	default:
		return fmt.Errorf("policy.on_sample_error %q must be fatal, last_known or skip", c.Policy.OnSampleError)
	}
	switch c.Policy.OnControlQueueFull {
	case "drop", "block":
	default:
		return fmt.Errorf("policy.on_control_queue_full %q must be drop or block", c.Policy.OnControlQueueFull)
	}
	if c.Policy.ControlQueueLen < 0 {
		return fmt.Errorf("policy.control_queue_len must be > 0")
	}
	return nil
}

// NewSchedule builds a fresh, fully armed schedule from the configured slots.
func (c *Config) NewSchedule() (*domain.Schedule, error) {
	minutes := make([]domain.Minute, len(c.Schedule.Slots))
	for i, m := range c.Schedule.Slots {
		minutes[i] = domain.Minute(m)
	}
	return domain.NewSchedule(minutes...)
}
