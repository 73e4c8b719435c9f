package diystatus

import (
	"github.com/parttimehacker/diystatus/internal/adapters/facts"
	"github.com/parttimehacker/diystatus/internal/adapters/hostmetrics"
	"github.com/parttimehacker/diystatus/internal/adapters/mqtt"
	"github.com/parttimehacker/diystatus/internal/app/config"
	"github.com/parttimehacker/diystatus/internal/ports"
)

// Config re-exports the root configuration struct so downstream projects can
// construct or modify it programmatically.
type Config = config.Config

type (
	// Policy controls sampling cadence, error handling and the control queue.
	Policy = ports.Policy
	// BusConfig holds the MQTT broker connection.
	BusConfig = mqtt.Config
	// TopicsConfig sets the topic prefix and host segment.
	TopicsConfig = config.TopicsConfig
	// ScheduleConfig lists the publication minutes.
	ScheduleConfig = config.ScheduleConfig
	// SamplerConfig selects the disk path and temperature sensor.
	SamplerConfig = hostmetrics.Config
	// FactsConfig points at the OS release and hardware model files.
	FactsConfig = facts.Config
	// MetricsConfig configures the metrics HTTP server.
	MetricsConfig = config.MetricsConfig
	// ArchiveConfig enables the TimescaleDB archive.
	ArchiveConfig = config.ArchiveConfig
	// LogConfig configures the zap logger.
	LogConfig = config.LogConfig
)

// LoadConfig loads YAML from disk and applies defaults and validation.
func LoadConfig(path string) (*Config, error) {
	return config.Load(path)
}

// DefaultConfig returns a validated configuration with every default applied.
func DefaultConfig() *Config {
	return config.Default()
}
