package domain

import "errors"

var (
	// ErrNotFound: no blob at the requested container/path.
	ErrNotFound = errors.New("lake: not found")
)
