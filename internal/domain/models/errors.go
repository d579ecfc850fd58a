package models

import "errors"

var (
	// ErrInvalidDate covers unparsable dates, unknown month names and
	// inverted date ranges.
	ErrInvalidDate = errors.New("invalid date")

	// ErrFarmNotFound indicates the farm id is not in the registry.
	ErrFarmNotFound = errors.New("farm not found")

	// ErrMissingData indicates there is no entry for the requested date.
	ErrMissingData = errors.New("missing data")

	// ErrNegativeWeight rejects milk weights below zero.
	ErrNegativeWeight = errors.New("negative milk weight")

	ErrStartDateOutOfRange = errors.New("start date out of range")
	ErrEndDateOutOfRange   = errors.New("end date out of range")
)
