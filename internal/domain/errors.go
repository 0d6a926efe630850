package domain

import "errors"

var (
	// ErrMissingDependency is returned when a build step requires an upstream table that has not been materialized
	ErrMissingDependency = errors.New("missing upstream table")

	// ErrMalformedPartition is returned when a monthly partition cannot be decoded or holds rows of another month
	ErrMalformedPartition = errors.New("malformed partition")

	// ErrTableNotFound is returned by a table store when the requested table does not exist
	ErrTableNotFound = errors.New("table not found")

	// ErrInvalidMonat is returned when a yyyymm integer is not a calendar month
	ErrInvalidMonat = errors.New("invalid monat")

	// ErrInvalidWindows is returned when moving-window lengths are not positive and strictly ascending
	ErrInvalidWindows = errors.New("invalid moving windows")

	// ErrUnknownBackend is returned when a storage backend name is not supported
	ErrUnknownBackend = errors.New("unknown storage backend")
)
