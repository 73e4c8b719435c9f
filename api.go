package diystatus

import (
	"go.uber.org/zap"

	base "github.com/parttimehacker/diystatus/pkg/diystatus"
)

// Re-exported errors for convenience.
var ErrBusClosed = base.ErrBusClosed

// Type aliases so consumers can import github.com/parttimehacker/diystatus directly.
type (
	Config          = base.Config
	Policy          = base.Policy
	BusConfig       = base.BusConfig
	TopicsConfig    = base.TopicsConfig
	ScheduleConfig  = base.ScheduleConfig
	SamplerConfig   = base.SamplerConfig
	FactsConfig     = base.FactsConfig
	MetricsConfig   = base.MetricsConfig
	ArchiveConfig   = base.ArchiveConfig
	LogConfig       = base.LogConfig
	Flow            = base.Flow
	FlowOption      = base.FlowOption
	StreamInOption  = base.StreamInOption
	StreamOutOption = base.StreamOutOption
	Agent           = base.Agent
	AgentOption     = base.AgentOption
	Sample          = base.Sample
	Averages        = base.Averages
	Sampler         = base.Sampler
	FactSource      = base.FactSource
	Bus             = base.Bus
	LocalBus        = base.LocalBus
	Publication     = base.Publication
	PublishFunc     = base.PublishFunc
	Message         = base.Message
	Subscription    = base.Subscription
	Archive         = base.Archive
	ControlQueue    = base.ControlQueue
	Observability   = base.Observability
	Field           = base.Field
	Clock           = base.Clock
	ControlTopic    = base.ControlTopic
	ControlHandler  = base.ControlHandler
)

// Control topics.
const (
	Fire  = base.Fire
	Panic = base.Panic
	Who   = base.Who
)

// Config helpers.
func LoadConfig(path string) (*Config, error) {
	return base.LoadConfig(path)
}

func DefaultConfig() *Config {
	return base.DefaultConfig()
}

func NewLogger(cfg LogConfig) (*zap.Logger, error) {
	return base.NewLogger(cfg)
}

// Flow builder helpers.
func Conf(path string, opts ...FlowOption) (*Flow, error) {
	return base.Conf(path, opts...)
}

func ConfFromConfig(cfg *Config, opts ...FlowOption) (*Flow, error) {
	return base.ConfFromConfig(cfg, opts...)
}

func WithFlowOptions(opts ...AgentOption) FlowOption {
	return base.WithFlowOptions(opts...)
}

func StreamInSampler(s Sampler) StreamInOption {
	return base.StreamInSampler(s)
}

func StreamInFacts(f FactSource) StreamInOption {
	return base.StreamInFacts(f)
}

func StreamInClock(c Clock) StreamInOption {
	return base.StreamInClock(c)
}

func StreamOutBus(b Bus) StreamOutOption {
	return base.StreamOutBus(b)
}

func StreamOutArchive(a Archive) StreamOutOption {
	return base.StreamOutArchive(a)
}

func StreamOutObservability(obs Observability) StreamOutOption {
	return base.StreamOutObservability(obs)
}

func StreamOutCallback(name string, fn PublishFunc) StreamOutOption {
	return base.StreamOutCallback(name, fn)
}

// Agent and options.
func NewAgent(cfg *Config, opts ...AgentOption) (*Agent, error) {
	return base.NewAgent(cfg, opts...)
}

func WithSampler(s Sampler) AgentOption {
	return base.WithSampler(s)
}

func WithFactSource(f FactSource) AgentOption {
	return base.WithFactSource(f)
}

func WithBus(b Bus) AgentOption {
	return base.WithBus(b)
}

func WithArchive(a Archive) AgentOption {
	return base.WithArchive(a)
}

func WithControlQueue(q ControlQueue) AgentOption {
	return base.WithControlQueue(q)
}

func WithObservability(obs Observability) AgentOption {
	return base.WithObservability(obs)
}

func WithClock(c Clock) AgentOption {
	return base.WithClock(c)
}

func WithLogger(l *zap.Logger) AgentOption {
	return base.WithLogger(l)
}

func WithControlHandler(ct ControlTopic, h ControlHandler) AgentOption {
	return base.WithControlHandler(ct, h)
}

// Local buses.
func NewCallbackBus(name string, fn PublishFunc) *LocalBus {
	return base.NewCallbackBus(name, fn)
}

func NewChannelBus(name string, buffer int) (*LocalBus, <-chan Publication, func()) {
	return base.NewChannelBus(name, buffer)
}
