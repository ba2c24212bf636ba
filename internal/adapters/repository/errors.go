package repository

import "errors"

// Sentinel kinds for repository errors.
var (
	ErrNotFound       = errors.New("record not found")
	ErrInvalidProject = errors.New("invalid project")
)
