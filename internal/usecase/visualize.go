package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"go.ngs.io/sst-prescription/internal/adapter/render"
	"go.ngs.io/sst-prescription/internal/adapter/store"
	"go.ngs.io/sst-prescription/internal/domain"
)

// MapSaver renders one field of a snapshot to an image file.
type MapSaver interface {
	Save(dir string, field render.Field, snap *domain.Snapshot) (string, error)
}

// VisualizeOptions selects the maps drawn per timestamp.
type VisualizeOptions struct {
	Dir string
	SST bool
	Err bool // Skipped for products without an analysis error.
}

// Visualizer draws SST and analysis-error maps per timestamp.
type Visualizer struct {
	loader   store.SnapshotLoader
	maps     MapSaver
	opts     VisualizeOptions
	log      zerolog.Logger
	progress ProgressFunc
}

// NewVisualizer creates the visualization pipeline.
func NewVisualizer(loader store.SnapshotLoader, maps MapSaver, opts VisualizeOptions, log zerolog.Logger) *Visualizer {
	return &Visualizer{loader: loader, maps: maps, opts: opts, log: log}
}

// OnProgress registers a callback invoked after every timestamp.
func (v *Visualizer) OnProgress(f ProgressFunc) { v.progress = f }

// Run processes times in order with the same failure isolation as
// Prescriber.Run.
func (v *Visualizer) Run(ctx context.Context, times []time.Time) (*Report, error) {
	report := &Report{Total: len(times)}
	for i, t := range times {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		paths, err := v.process(t)
		report.Outputs = append(report.Outputs, paths...)
		if err != nil {
			v.log.Error().Err(err).Time("time", t).Msg("timestamp failed")
			report.fail(t, err)
		} else {
			report.Succeeded++
		}
		if v.progress != nil {
			v.progress(i+1, len(times))
		}
	}
	return report, nil
}

func (v *Visualizer) process(t time.Time) ([]string, error) {
	snap, err := v.loader.Load(t)
	if err != nil {
		return nil, fmt.Errorf("load: %w", err)
	}
	log := v.log.With().Str("dataset", snap.Dataset).Time("time", t).Logger()

	sst := domain.Summarize(snap.SST)
	log.Info().Float64("min", sst.Min).Float64("max", sst.Max).Int("missing", sst.Missing).Msg("sst range")
	if snap.Err != nil {
		e := domain.Summarize(snap.Err)
		log.Info().Float64("min", e.Min).Float64("max", e.Max).Msg("error range")
	}

	var paths []string
	if v.opts.SST {
		log.Debug().Msg("rendering sst")
		path, err := v.maps.Save(v.opts.Dir, render.FieldSST, snap)
		if err != nil {
			return paths, fmt.Errorf("render sst: %w", err)
		}
		log.Info().Str("path", path).Msg("saved")
		paths = append(paths, path)
	}
	if v.opts.Err && snap.Err != nil {
		log.Debug().Msg("rendering error")
		path, err := v.maps.Save(v.opts.Dir, render.FieldError, snap)
		if err != nil {
			return paths, fmt.Errorf("render error: %w", err)
		}
		log.Info().Str("path", path).Msg("saved")
		paths = append(paths, path)
	}
	return paths, nil
}
