package dataset

import "errors"

var (
	// ErrDataNotFound marks a missing or unreadable source. Terminal for the
	// render pass; the user fixes the source and re-triggers.
	ErrDataNotFound = errors.New("dataset: source missing or unreadable")

	// ErrSchema marks a source without the required columns.
	ErrSchema = errors.New("dataset: required columns missing")
)
