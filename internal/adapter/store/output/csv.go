package output

import (
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"strconv"
	"time"

	"go.ngs.io/sst-prescription/internal/domain"
)

// csvHeader is the column layout of CSV output.
var csvHeader = []string{"lat", "lon", "sst_k", "filled"}

// CSVWriter writes one CSV file per timestamp with a row per grid cell.
type CSVWriter struct {
	dir string
}

// NewCSVWriter creates a writer storing files under dir.
func NewCSVWriter(dir string) *CSVWriter {
	return &CSVWriter{dir: dir}
}

// Write stores grid in row-major order. Missing values are written as empty
// fields; filled is 1 for cells set in mask and empty when mask is nil.
func (w *CSVWriter) Write(dataset string, t time.Time, grid *domain.Grid, mask [][]bool) (string, error) {
	if err := grid.Validate(); err != nil {
		return "", err
	}
	if mask != nil {
		if err := checkMask(grid, mask); err != nil {
			return "", err
		}
	}
	path, err := prepare(w.dir, dataset, t, "csv")
	if err != nil {
		return "", err
	}

	//nolint:gosec // G304: File path constructed from the configured output directory.
	file, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create CSV file %s: %w", path, err)
	}
	defer func() { _ = file.Close() }()

	writer := csv.NewWriter(file)
	if err := writer.Write(csvHeader); err != nil {
		return "", fmt.Errorf("failed to write CSV header: %w", err)
	}

	record := make([]string, len(csvHeader))
	for i, row := range grid.Values {
		for j, v := range row {
			record[0] = strconv.FormatFloat(grid.Lat[i], 'f', -1, 64)
			record[1] = strconv.FormatFloat(grid.Lon[j], 'f', -1, 64)
			record[2] = ""
			if !math.IsNaN(v) {
				record[2] = strconv.FormatFloat(v, 'f', 4, 64)
			}
			record[3] = ""
			if mask != nil {
				record[3] = "0"
				if mask[i][j] {
					record[3] = "1"
				}
			}
			if err := writer.Write(record); err != nil {
				return "", fmt.Errorf("failed to write CSV record: %w", err)
			}
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return "", fmt.Errorf("failed to flush CSV file: %w", err)
	}
	if err := file.Close(); err != nil {
		return "", fmt.Errorf("failed to close CSV file: %w", err)
	}
	return path, nil
}
