package repository

import "errors"

var (
	// ErrNotFound indicates the requested record does not exist or is no
	// longer live.
	ErrNotFound = errors.New("repository: not found")
)
