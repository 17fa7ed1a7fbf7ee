package types

import "errors"

// Sentinel errors shared across pipeline components.
var (
	// ErrUnknownCategory is returned when a dataset category is not
	// one of the four supported categories
	ErrUnknownCategory = errors.New("unknown category")

	// ErrUnsupportedFormat is returned when an uploaded file's
	// extension is neither .csv nor .xlsx
	ErrUnsupportedFormat = errors.New("unsupported file format")

	// ErrNoActiveRecord is returned when a category has no active
	// upload record
	ErrNoActiveRecord = errors.New("no active upload record")
)
