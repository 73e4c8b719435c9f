package ports

import (
	"context"

	"github.com/parttimehacker/diystatus/internal/domain"
)

// Sampler takes one reading of CPU load, CPU temperature and free disk space.
// It may block, e.g. for a CPU utilisation window.
type Sampler interface {
	Sample(ctx context.Context) (domain.Sample, error)
}

// FactSource reads static host identity facts.
type FactSource interface {
	OSVersion(ctx context.Context) (string, error)
	HardwareModel(ctx context.Context) (string, error)
}
