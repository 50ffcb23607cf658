package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"go.ngs.io/sst-prescription/internal/adapter/interp"
	"go.ngs.io/sst-prescription/internal/adapter/store"
	"go.ngs.io/sst-prescription/internal/domain"
)

// PrescribeOptions controls what the prescription pipeline writes.
type PrescribeOptions struct {
	Interpolate bool          // Fill missing cells before writing.
	Method      interp.Method // Fill method; Nearest when empty.
	Mask        bool          // Write the fill-origin mask. Always written when Interpolate is off.
}

// Prescriber loads, fills and writes one SST grid per timestamp.
type Prescriber struct {
	loader   store.SnapshotLoader
	writer   store.GridWriter
	opts     PrescribeOptions
	log      zerolog.Logger
	progress ProgressFunc
}

// NewPrescriber creates the prescription pipeline.
func NewPrescriber(loader store.SnapshotLoader, writer store.GridWriter, opts PrescribeOptions, log zerolog.Logger) *Prescriber {
	if opts.Method == "" {
		opts.Method = interp.Nearest
	}
	return &Prescriber{loader: loader, writer: writer, opts: opts, log: log}
}

// OnProgress registers a callback invoked after every timestamp.
func (p *Prescriber) OnProgress(f ProgressFunc) { p.progress = f }

// Run processes times in order. A failing timestamp is logged and recorded
// in the report and the remaining ones are still attempted. The returned
// error is non-nil only when ctx is cancelled, which stops the loop between
// timestamps.
func (p *Prescriber) Run(ctx context.Context, times []time.Time) (*Report, error) {
	report := &Report{Total: len(times)}
	for i, t := range times {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		path, err := p.process(t)
		if err != nil {
			p.log.Error().Err(err).Time("time", t).Msg("timestamp failed")
			report.fail(t, err)
		} else {
			report.Succeeded++
			report.Outputs = append(report.Outputs, path)
		}
		if p.progress != nil {
			p.progress(i+1, len(times))
		}
	}
	return report, nil
}

func (p *Prescriber) process(t time.Time) (string, error) {
	p.log.Debug().Time("time", t).Msg("loading")
	snap, err := p.loader.Load(t)
	if err != nil {
		return "", fmt.Errorf("load: %w", err)
	}
	log := p.log.With().Str("dataset", snap.Dataset).Time("time", t).Logger()

	stats := domain.Summarize(snap.SST)
	log.Info().
		Int("rows", snap.SST.Rows()).
		Int("cols", snap.SST.Cols()).
		Int("missing", stats.Missing).
		Float64("min", stats.Min).
		Float64("max", stats.Max).
		Msg("loaded")

	var mask [][]bool
	if p.opts.Mask || !p.opts.Interpolate {
		mask = snap.SST.MissingMask()
	}

	grid := snap.SST
	if p.opts.Interpolate {
		log.Debug().Str("method", string(p.opts.Method)).Msg("filling")
		grid, err = interp.Fill(snap.SST, p.opts.Method)
		if err != nil {
			return "", err
		}
	}

	log.Debug().Msg("writing")
	path, err := p.writer.Write(snap.Dataset, t, grid, mask)
	if err != nil {
		return "", fmt.Errorf("write: %w", err)
	}
	log.Info().Str("path", path).Int("remaining_missing", grid.CountMissing()).Msg("written")
	return path, nil
}
