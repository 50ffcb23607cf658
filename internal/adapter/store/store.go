package store

import (
	"time"

	"go.ngs.io/sst-prescription/internal/domain"
)

// SnapshotLoader is the interface for loading one SST product at one time.
type SnapshotLoader interface {
	// Load reads the SST (and analysis error, when the product has one)
	// valid at t, cropped to the configured region.
	Load(t time.Time) (*domain.Snapshot, error)
}

// GridWriter is the interface for persisting a prescribed SST grid.
type GridWriter interface {
	// Write stores grid for dataset at t and returns the path written.
	// mask may be nil; otherwise it marks cells that were missing before
	// interpolation.
	Write(dataset string, t time.Time, grid *domain.Grid, mask [][]bool) (string, error)
}
