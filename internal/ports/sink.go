package ports

import (
	"context"
	"time"

	"github.com/parttimehacker/diystatus/internal/domain"
)

// Archive optionally keeps a copy of every published set of averages.
type Archive interface {
	WriteAverages(ctx context.Context, host string, at time.Time, avg domain.Averages) error
	Name() string
}
