package edit

import (
	"errors"
	"fmt"
)

var (
	// ErrNotEditing is returned for edit actions when no session is open.
	ErrNotEditing = errors.New("not editing")

	// ErrExporting is returned for any action attempted while an export is in flight.
	ErrExporting = errors.New("export in progress")

	// ErrInvalidRotation is returned for rotations other than a quarter turn.
	ErrInvalidRotation = errors.New("rotation must be +90 or -90 degrees")

	// ErrInvalidCrop is returned when a crop selection has no area inside the canvas.
	ErrInvalidCrop = errors.New("invalid crop selection")

	// ErrInvalidAxis is returned for an unknown flip axis.
	ErrInvalidAxis = errors.New("invalid flip axis")

	// ErrNotFitted is returned when geometry is needed before the first fit.
	ErrNotFitted = errors.New("canvas has not been fitted to the viewport yet")
)

// EncodeError reports that the edited raster could not be turned into bytes.
type EncodeError struct{ Err error }

func (e *EncodeError) Error() string { return fmt.Sprintf("encode edited image: %v", e.Err) }
func (e *EncodeError) Unwrap() error { return e.Err }

// UploadError reports that the backend did not accept the edited image. The
// edit session is kept so the save can be retried.
type UploadError struct {
	FileName string
	Err      error
}

func (e *UploadError) Error() string {
	return fmt.Sprintf("upload %s: %v", e.FileName, e.Err)
}
func (e *UploadError) Unwrap() error { return e.Err }
