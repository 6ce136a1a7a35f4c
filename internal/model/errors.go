package model

import "errors"

// Error classes shared by every layer. Callers wrap them with %w and match with errors.Is.
var (
	ErrValidation = errors.New("invalid input")
	ErrResolution = errors.New("address could not be resolved")
	ErrNotFound   = errors.New("listing not found")
	ErrForbidden  = errors.New("not allowed")
	ErrStore      = errors.New("listing store failure")
	ErrTimeout    = errors.New("operation timed out")
	ErrUpstream   = errors.New("geocoding provider failure")
)
