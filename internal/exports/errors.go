package exports

import (
	"errors"
	"fmt"
)

var (
	ErrEmptySeed        = errors.New("filename seed is empty")
	ErrNilRegion        = errors.New("region is nil")
	ErrExportInProgress = errors.New("an export is already running for this region")
	ErrUnexpectedSize   = errors.New("captured bitmap has unexpected size")
	ErrInvalidName      = errors.New("invalid artifact name")

	// ErrCapture and ErrSave classify pipeline failures for errors.Is.
	ErrCapture = errors.New("capture failed")
	ErrSave    = errors.New("save failed")
)

// CaptureError reports a failure while settling or rasterizing the region.
type CaptureError struct {
	Err error
}

func (e *CaptureError) Error() string {
	return fmt.Sprintf("capture failed: %v", e.Err)
}

func (e *CaptureError) Unwrap() []error {
	return []error{ErrCapture, e.Err}
}

// SaveError reports a failure while encoding or delivering the artifact.
type SaveError struct {
	Name string
	Err  error
}

func (e *SaveError) Error() string {
	return fmt.Sprintf("save %s failed: %v", e.Name, e.Err)
}

func (e *SaveError) Unwrap() []error {
	return []error{ErrSave, e.Err}
}
