// Package cli holds the flag, logging and progress plumbing shared by the
// batch commands.
package cli

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/akamensky/argparse"
	"github.com/cheggaaa/pb"
	"github.com/rs/zerolog"

	"go.ngs.io/sst-prescription/internal/config"
	"go.ngs.io/sst-prescription/internal/domain"
	"go.ngs.io/sst-prescription/internal/usecase"
)

// Version is reported by every command.
const Version = "0.1.0"

// NewLogger returns a console logger on stderr at info level, or debug
// when verbose is set.
func NewLogger(verbose bool) zerolog.Logger {
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	out := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	return zerolog.New(out).Level(level).With().Timestamp().Logger()
}

// ProgressBar starts a terminal progress bar over total steps. The returned
// finish function must be called once the run ends.
func ProgressBar(total int) (usecase.ProgressFunc, func()) {
	bar := pb.New(total)
	bar.Output = os.Stderr
	bar.ShowCounters = true
	bar.ShowTimeLeft = true
	bar.Start()
	return func(done, _ int) { bar.Set(done) }, bar.Finish
}

// CommonFlags are the options shared by the batch commands. Non-empty
// values override the configuration file.
type CommonFlags struct {
	Config   *string
	Dataset  *string
	Start    *string
	End      *string
	Input    *string
	Lat      *string
	Lon      *string
	Verbose  *bool
	Progress *bool
	Version  *bool
}

// AddCommonFlags registers the shared options on p.
func AddCommonFlags(p *argparse.Parser) *CommonFlags {
	return &CommonFlags{
		Config:   p.String("c", "config", &argparse.Options{Help: "Configuration file (.yaml, .yml or .toml)"}),
		Dataset:  p.String("d", "dataset", &argparse.Options{Help: "Dataset id, e.g. OISST or GHRSST_UKMO"}),
		Start:    p.String("s", "start", &argparse.Options{Help: "First timestamp, \"YYYY-MM-DD HH:MM\" (UTC)"}),
		End:      p.String("e", "end", &argparse.Options{Help: "Last timestamp, \"YYYY-MM-DD HH:MM\" (UTC)"}),
		Input:    p.String("i", "input", &argparse.Options{Help: "Root directory of the SST archives"}),
		Lat:      p.String("", "lat", &argparse.Options{Help: "Latitude bounds as min,max"}),
		Lon:      p.String("", "lon", &argparse.Options{Help: "Longitude bounds as min,max"}),
		Verbose:  p.Flag("v", "verbose", &argparse.Options{Help: "Enable debug logging"}),
		Progress: p.Flag("p", "progress", &argparse.Options{Help: "Show a progress bar"}),
		Version:  p.Flag("", "version", &argparse.Options{Help: "Show version information"}),
	}
}

// Load reads the configuration file, if any, and applies the flag
// overrides. The result is not validated.
func (f *CommonFlags) Load() (*config.Config, error) {
	cfg, err := config.LoadConfig(*f.Config)
	if err != nil {
		return nil, err
	}
	Override(&cfg.Dataset, *f.Dataset)
	Override(&cfg.Period.Start, *f.Start)
	Override(&cfg.Period.End, *f.End)
	Override(&cfg.Paths.Input, *f.Input)
	if *f.Lat != "" {
		if cfg.Region.Lat, err = ParseRange(*f.Lat); err != nil {
			return nil, fmt.Errorf("--lat: %w", err)
		}
	}
	if *f.Lon != "" {
		if cfg.Region.Lon, err = ParseRange(*f.Lon); err != nil {
			return nil, fmt.Errorf("--lon: %w", err)
		}
	}
	return cfg, nil
}

// Override sets *dst to v unless v is empty.
func Override(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

// ParseRange parses "min,max".
func ParseRange(s string) (domain.Range, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return domain.Range{}, fmt.Errorf("expected min,max, got %q", s)
	}
	var r domain.Range
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return domain.Range{}, fmt.Errorf("invalid bound %q: %w", p, err)
		}
		r[i] = v
	}
	return r, nil
}
