package diystatus

import (
	"context"
	"fmt"
)

// Flow is a convenience builder that lets callers say Conf → StreamIN →
// StreamOUT without touching the underlying wiring.
type Flow struct {
	cfg  *Config
	opts []AgentOption
}

// FlowOption mutates the Flow after configuration is loaded.
type FlowOption func(*Flow)

// StreamInOption configures the sampling side (sampler, facts, clock).
type StreamInOption func(*Flow)

// StreamOutOption configures the publishing side (bus, archive, observability).
type StreamOutOption func(*Flow)

// Conf loads YAML from disk, applies FlowOption values, and returns a Flow builder.
func Conf(path string, opts ...FlowOption) (*Flow, error) {
	cfg, err := LoadConfig(path)
	if err != nil {
		return nil, err
	}
	return ConfFromConfig(cfg, opts...)
}

// ConfFromConfig bootstraps a Flow from an in-memory Config.
func ConfFromConfig(cfg *Config, opts ...FlowOption) (*Flow, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	f := &Flow{cfg: cfg}
	for _, opt := range opts {
		if opt != nil {
			opt(f)
		}
	}
	return f, nil
}

// Config returns the underlying configuration so callers can tweak it before building an agent.
func (f *Flow) Config() *Config {
	if f == nil {
		return nil
	}
	return f.cfg
}

// Options appends raw AgentOption values to the builder.
func (f *Flow) Options(opts ...AgentOption) *Flow {
	if f == nil {
		return nil
	}
	f.appendOptions(opts...)
	return f
}

// StreamIN records sampling-side overrides.
func (f *Flow) StreamIN(opts ...StreamInOption) *Flow {
	if f == nil {
		return nil
	}
	for _, opt := range opts {
		if opt != nil {
			opt(f)
		}
	}
	return f
}

// StreamOUT records publishing-side overrides and builds an Agent ready to run.
func (f *Flow) StreamOUT(opts ...StreamOutOption) (*Agent, error) {
	if f == nil {
		return nil, fmt.Errorf("flow is nil")
	}
	for _, opt := range opts {
		if opt != nil {
			opt(f)
		}
	}
	return NewAgent(f.cfg, f.opts...)
}

// Run is a shortcut for StreamOUT + Agent.Run.
func (f *Flow) Run(ctx context.Context, opts ...StreamOutOption) error {
	agent, err := f.StreamOUT(opts...)
	if err != nil {
		return err
	}
	return agent.Run(ctx)
}

// WithFlowOptions appends AgentOption values during Conf.
func WithFlowOptions(opts ...AgentOption) FlowOption {
	return func(f *Flow) {
		if f != nil {
			f.appendOptions(opts...)
		}
	}
}

// StreamInSampler injects a custom sampler.
func StreamInSampler(s Sampler) StreamInOption {
	return func(f *Flow) {
		if f != nil && s != nil {
			f.appendOptions(WithSampler(s))
		}
	}
}

// StreamInFacts injects a custom fact source.
func StreamInFacts(src FactSource) StreamInOption {
	return func(f *Flow) {
		if f != nil && src != nil {
			f.appendOptions(WithFactSource(src))
		}
	}
}

// StreamInClock overrides the wall clock used by the schedule.
func StreamInClock(c Clock) StreamInOption {
	return func(f *Flow) {
		if f != nil && c != nil {
			f.appendOptions(WithClock(c))
		}
	}
}

// StreamOutBus injects a custom Bus implementation.
func StreamOutBus(b Bus) StreamOutOption {
	return func(f *Flow) {
		if f != nil && b != nil {
			f.appendOptions(WithBus(b))
		}
	}
}

// StreamOutArchive installs an archive for published averages.
func StreamOutArchive(a Archive) StreamOutOption {
	return func(f *Flow) {
		if f != nil && a != nil {
			f.appendOptions(WithArchive(a))
		}
	}
}

// StreamOutObservability replaces the default observability backend.
func StreamOutObservability(obs Observability) StreamOutOption {
	return func(f *Flow) {
		if f != nil && obs != nil {
			f.appendOptions(WithObservability(obs))
		}
	}
}

// StreamOutCallback publishes through a callback instead of a broker.
func StreamOutCallback(name string, fn PublishFunc) StreamOutOption {
	return func(f *Flow) {
		if f != nil {
			f.appendOptions(WithBus(NewCallbackBus(name, fn)))
		}
	}
}

func (f *Flow) appendOptions(opts ...AgentOption) {
	for _, opt := range opts {
		if opt != nil {
			f.opts = append(f.opts, opt)
		}
	}
}
