package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"go.ngs.io/sst-prescription/internal/adapter/interp"
	"go.ngs.io/sst-prescription/internal/adapter/render"
	"go.ngs.io/sst-prescription/internal/adapter/store"
	"go.ngs.io/sst-prescription/internal/adapter/store/sst"
	"go.ngs.io/sst-prescription/internal/domain"
)

// ErrNoField is returned when a snapshot lacks the requested field, such as
// the analysis error of OSTIAdiu.
var ErrNoField = errors.New("field not available")

// ErrUnknownDataset is returned for dataset ids outside the registry.
var ErrUnknownDataset = errors.New("unknown dataset")

// LoaderFactory opens the loader of a dataset.
type LoaderFactory func(dataset string) (store.SnapshotLoader, error)

// MapRenderer draws one field of a snapshot as an image.
type MapRenderer interface {
	Render(w io.Writer, field render.Field, snap *domain.Snapshot) error
}

// DatasetInfo describes a supported product.
type DatasetInfo struct {
	ID          string `json:"id"`
	Description string `json:"description"`
	HasError    bool   `json:"has_error"`
	Hourly      bool   `json:"hourly"`
}

// FilledGrid is the result of an on-demand fill.
type FilledGrid struct {
	Dataset string
	Time    time.Time
	Method  interp.Method
	Grid    *domain.Grid
	Filled  int // Cells that were missing before the fill.
	Stats   domain.GridStats
}

// PointSample is the SST interpolated at a location.
type PointSample struct {
	Dataset string
	Time    time.Time
	Method  interp.Method
	Lat     float64
	Lon     float64
	Value   float64 // Kelvin; NaN when no value can be derived.
}

// PreviewService serves single snapshots for the preview API. Every call
// loads its own snapshot, so it is safe for concurrent use.
type PreviewService struct {
	open     LoaderFactory
	renderer MapRenderer
}

// NewPreviewService creates the service.
func NewPreviewService(open LoaderFactory, renderer MapRenderer) *PreviewService {
	return &PreviewService{open: open, renderer: renderer}
}

// Datasets lists the supported products.
func (s *PreviewService) Datasets() []DatasetInfo {
	layouts := sst.Layouts()
	out := make([]DatasetInfo, len(layouts))
	for i, l := range layouts {
		out[i] = DatasetInfo{ID: l.ID, Description: l.Description, HasError: l.HasError(), Hourly: l.Hourly}
	}
	return out
}

// Filled loads dataset at t and fills its missing SST cells with method.
func (s *PreviewService) Filled(ctx context.Context, dataset string, t time.Time, method interp.Method) (*FilledGrid, error) {
	snap, err := s.load(ctx, dataset, t)
	if err != nil {
		return nil, err
	}
	missing := snap.SST.CountMissing()
	grid, err := interp.Fill(snap.SST, method)
	if err != nil {
		return nil, err
	}
	return &FilledGrid{
		Dataset: snap.Dataset,
		Time:    t,
		Method:  method,
		Grid:    grid,
		Filled:  missing - grid.CountMissing(),
		Stats:   domain.Summarize(grid),
	}, nil
}

// Sample returns the filled SST of dataset at t, bilinearly interpolated to
// (lat, lon).
func (s *PreviewService) Sample(ctx context.Context, dataset string, t time.Time, method interp.Method, lat, lon float64) (*PointSample, error) {
	filled, err := s.Filled(ctx, dataset, t, method)
	if err != nil {
		return nil, err
	}
	v, err := interp.Sample(filled.Grid, lat, lon)
	if err != nil {
		return nil, err
	}
	return &PointSample{Dataset: filled.Dataset, Time: t, Method: method, Lat: lat, Lon: lon, Value: v}, nil
}

// RenderMap writes a PNG map of field of dataset at t to w.
func (s *PreviewService) RenderMap(ctx context.Context, dataset string, t time.Time, field render.Field, w io.Writer) error {
	snap, err := s.load(ctx, dataset, t)
	if err != nil {
		return err
	}
	if field == render.FieldError && snap.Err == nil {
		return fmt.Errorf("%s has no analysis error: %w", dataset, ErrNoField)
	}
	return s.renderer.Render(w, field, snap)
}

func (s *PreviewService) load(ctx context.Context, dataset string, t time.Time) (*domain.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if _, err := sst.Lookup(dataset); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrUnknownDataset, dataset)
	}
	loader, err := s.open(dataset)
	if err != nil {
		return nil, err
	}
	return loader.Load(t)
}
