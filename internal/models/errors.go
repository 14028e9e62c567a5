package models

import "errors"

// Sentinel errors the handlers translate to HTTP status codes. Services wrap
// these with %w so callers can use errors.Is.
var (
	ErrNotFound = errors.New("not found")
	ErrInvalid  = errors.New("invalid request")
)
