package service

import "errors"

// Sentinel kinds for submission errors. The HTTP layer translates these
// to status codes; validation failures always name the offending field
// through wrapping.
var (
	ErrInvalidRequest  = errors.New("invalid request")
	ErrProjectNotFound = errors.New("project not found")
	ErrEventMismatch   = errors.New("project does not belong to event")
	ErrNotScorable     = errors.New("project is not open for scoring")
	ErrNotStarted      = errors.New("service not started")
)
