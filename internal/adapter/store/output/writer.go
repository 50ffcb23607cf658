// Package output writes prescribed SST grids for downstream models.
package output

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.ngs.io/sst-prescription/internal/adapter/store"
)

// Supported output formats.
const (
	FormatNetCDF = "netcdf"
	FormatCSV    = "csv"
)

// New returns the writer for format, storing files under dir.
func New(format, dir string) (store.GridWriter, error) {
	switch strings.ToLower(format) {
	case FormatNetCDF, "":
		return NewNetCDFWriter(dir), nil
	case FormatCSV:
		return NewCSVWriter(dir), nil
	default:
		return nil, fmt.Errorf("unknown output format %q (want %q or %q)", format, FormatNetCDF, FormatCSV)
	}
}

// FileName returns the output file name for dataset at t.
func FileName(dataset string, t time.Time, ext string) string {
	return fmt.Sprintf("%s_%s_interp.%s", dataset, t.UTC().Format("20060102_15"), ext)
}

func prepare(dir, dataset string, t time.Time, ext string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}
	return filepath.Join(dir, FileName(dataset, t, ext)), nil
}
