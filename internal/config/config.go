// Package config loads the settings shared by the SST command-line tools and
// the preview server.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"go.ngs.io/sst-prescription/internal/adapter/interp"
	"go.ngs.io/sst-prescription/internal/adapter/render"
	"go.ngs.io/sst-prescription/internal/adapter/store/output"
	"go.ngs.io/sst-prescription/internal/adapter/store/sst"
	"go.ngs.io/sst-prescription/internal/domain"
)

// Config is the complete tool configuration.
type Config struct {
	Dataset string        `yaml:"dataset" toml:"dataset"`
	Region  domain.Region `yaml:"region" toml:"region"`
	Period  Period        `yaml:"period" toml:"period"`
	Paths   Paths         `yaml:"paths" toml:"paths"`
	Interp  Interp        `yaml:"interp" toml:"interp"`
	Plot    Plot          `yaml:"plot" toml:"plot"`
}

// Period is the inclusive range of timestamps to process.
type Period struct {
	Start string `yaml:"start" toml:"start"` // "YYYY-MM-DD HH:MM" or RFC 3339, UTC.
	End   string `yaml:"end" toml:"end"`
	Step  string `yaml:"step" toml:"step"` // Go duration, e.g. "1h".
}

// Paths are the input archive root and the output directories.
type Paths struct {
	Input  string `yaml:"input" toml:"input"`
	Output string `yaml:"output" toml:"output"`
	Images string `yaml:"images" toml:"images"`
}

// Interp controls the prescription workflow.
type Interp struct {
	Enabled bool   `yaml:"enabled" toml:"enabled"`
	Method  string `yaml:"method" toml:"method"`
	Mask    bool   `yaml:"mask" toml:"mask"`
	Format  string `yaml:"format" toml:"format"`
}

// Plot controls the visualization workflow.
type Plot struct {
	SST       bool      `yaml:"sst" toml:"sst"`
	Err       bool      `yaml:"err" toml:"err"`
	Step      string    `yaml:"step" toml:"step"`
	SSTLevels []float64 `yaml:"sst_levels" toml:"sst_levels"`
	ErrLevels []float64 `yaml:"err_levels" toml:"err_levels"`
	Coastline string    `yaml:"coastline" toml:"coastline"`
	DPI       int       `yaml:"dpi" toml:"dpi"`
}

// DefaultConfig returns the settings used when no file overrides them.
func DefaultConfig() *Config {
	return &Config{
		Dataset: "OISST",
		Region:  domain.Region{Lat: domain.Range{30, 45}, Lon: domain.Range{120, 135}},
		Period: Period{
			Start: "2021-09-07 18:00",
			End:   "2021-09-07 23:00",
			Step:  "1h",
		},
		Paths: Paths{Input: ".", Output: "./interp", Images: "."},
		Interp: Interp{
			Enabled: true,
			Method:  string(interp.Nearest),
			Mask:    true,
			Format:  output.FormatNetCDF,
		},
		Plot: Plot{
			SST:       true,
			Err:       true,
			Step:      "24h",
			SSTLevels: render.DefaultSSTLevels(),
			ErrLevels: render.DefaultErrLevels(),
			DPI:       render.DefaultDPI,
		},
	}
}

// LoadConfig reads path over the defaults. The format follows the
// extension: .yaml/.yml or .toml. An empty path returns the defaults.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	//nolint:gosec // G304: Config path supplied by the operator.
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("error parsing config file: %w", err)
		}
	case ".toml":
		if _, err := toml.Decode(string(data), cfg); err != nil {
			return nil, fmt.Errorf("error parsing config file: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported config file extension %q (want .yaml, .yml or .toml)", ext)
	}
	return cfg, nil
}

// Validate checks every setting the workflows depend on.
func (c *Config) Validate() error {
	if _, err := sst.Lookup(c.Dataset); err != nil {
		return err
	}
	if err := c.Region.Validate(); err != nil {
		return fmt.Errorf("region: %w", err)
	}
	if _, err := c.Times(); err != nil {
		return err
	}
	if _, err := c.PlotTimes(); err != nil {
		return err
	}
	if _, err := interp.ParseMethod(c.Interp.Method); err != nil {
		return err
	}
	if _, err := output.New(c.Interp.Format, c.Paths.Output); err != nil {
		return err
	}
	if err := render.CheckLevels(c.Plot.SSTLevels); err != nil {
		return fmt.Errorf("plot.sst_levels: %w", err)
	}
	if err := render.CheckLevels(c.Plot.ErrLevels); err != nil {
		return fmt.Errorf("plot.err_levels: %w", err)
	}
	if c.Plot.DPI <= 0 {
		return fmt.Errorf("plot.dpi must be positive, got %d", c.Plot.DPI)
	}
	return nil
}

// Times returns the prescription timestamps.
func (c *Config) Times() ([]time.Time, error) {
	return c.steps(c.Period.Step, "period.step")
}

// PlotTimes returns the visualization timestamps, which share the period
// but use the plot step.
func (c *Config) PlotTimes() ([]time.Time, error) {
	return c.steps(c.Plot.Step, "plot.step")
}

func (c *Config) steps(stepStr, field string) ([]time.Time, error) {
	start, err := domain.ParseTime(c.Period.Start)
	if err != nil {
		return nil, fmt.Errorf("period.start: %w", err)
	}
	end, err := domain.ParseTime(c.Period.End)
	if err != nil {
		return nil, fmt.Errorf("period.end: %w", err)
	}
	step, err := time.ParseDuration(stepStr)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", field, err)
	}
	times, err := domain.TimeSteps(start, end, step)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", field, err)
	}
	return times, nil
}

