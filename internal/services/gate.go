package services

import (
	"context"
	"time"
)

// DefaultImportWait is how long an import waits for a running one to finish
const DefaultImportWait = 30 * time.Second

// importGate admits one import at a time within this process
type importGate struct {
	slot    chan struct{}
	maxWait time.Duration
}

func newImportGate(maxWait time.Duration) *importGate {
	if maxWait <= 0 {
		maxWait = DefaultImportWait
	}
	return &importGate{
		slot:    make(chan struct{}, 1),
		maxWait: maxWait,
	}
}

// acquire waits up to maxWait for the slot. The caller must release on success.
func (g *importGate) acquire(ctx context.Context) error {
	waitCtx, cancel := context.WithTimeout(ctx, g.maxWait)
	defer cancel()

	select {
	case g.slot <- struct{}{}:
		return nil
	case <-waitCtx.Done():
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return ErrImportInProgress
	}
}

func (g *importGate) release() {
	<-g.slot
}
