package domain

import (
	"errors"
	"fmt"
	"time"
)

// Sentinel errors. The typed errors below unwrap to these so callers can
// match with errors.Is.
var (
	ErrEmptyInput   = errors.New("no valid grid points")
	ErrMissingFile  = errors.New("source file not found")
	ErrInvalidShape = errors.New("invalid grid shape")
)

// EmptyInputError reports a grid without a single valid (non-NaN) cell.
type EmptyInputError struct {
	Rows, Cols int
}

func (e *EmptyInputError) Error() string {
	return fmt.Sprintf("%v: all %d×%d cells are missing", ErrEmptyInput, e.Rows, e.Cols)
}

func (e *EmptyInputError) Unwrap() error { return ErrEmptyInput }

// MissingFileError reports that no source file matched the naming pattern
// of a dataset for a given date.
type MissingFileError struct {
	Dataset string
	Date    time.Time
	Pattern string
}

func (e *MissingFileError) Error() string {
	return fmt.Sprintf("%v: %s for %s (pattern %s)",
		ErrMissingFile, e.Dataset, e.Date.Format("2006-01-02"), e.Pattern)
}

func (e *MissingFileError) Unwrap() error { return ErrMissingFile }

// InvalidShapeError reports inconsistent coordinate and value shapes.
type InvalidShapeError struct {
	Reason string
}

func (e *InvalidShapeError) Error() string {
	return fmt.Sprintf("%v: %s", ErrInvalidShape, e.Reason)
}

func (e *InvalidShapeError) Unwrap() error { return ErrInvalidShape }

func invalidShape(format string, args ...any) error {
	return &InvalidShapeError{Reason: fmt.Sprintf(format, args...)}
}
