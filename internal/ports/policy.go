package ports

import "time"

type Policy struct {
	SampleInterval  time.Duration `yaml:"sample_interval"`
	OnSampleError   string        `yaml:"on_sample_error"` // "fatal", "last_known", "skip"
	FlushOnShutdown *bool         `yaml:"flush_on_shutdown"`

	ControlQueueLen    int           `yaml:"control_queue_len"`
	OnControlQueueFull string        `yaml:"on_control_queue_full"` // "drop", "block"
	IdleSleep          time.Duration `yaml:"idle_sleep"`
}

// ShouldFlushOnShutdown reports the effective flush setting; unset means true.
func (p Policy) ShouldFlushOnShutdown() bool {
	return p.FlushOnShutdown == nil || *p.FlushOnShutdown
}
