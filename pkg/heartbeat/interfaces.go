package heartbeat

import (
	"context"
	"time"

	"github.com/termatlas/termatlas/pkg/models"
	"github.com/termatlas/termatlas/pkg/sync"
)

// Clock abstracts time-related operations.
type Clock interface {
	Now() time.Time
	Ticker(d time.Duration) Ticker
}

// Ticker abstracts the ticker behavior.
type Ticker interface {
	Chan() <-chan time.Time
	Stop()
}

// Syncer is the slice of the sync engine the scheduler drives.
type Syncer interface {
	Pull(ctx context.Context) (models.Document, error)
	Mutate(ctx context.Context, transform sync.Transform) (models.Document, error)
}
