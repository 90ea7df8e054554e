package domain

import "errors"

// Sentinel errors for the switch game engine. Operations wrap these with
// context via fmt.Errorf("%w: ...") so callers can match with errors.Is
// and the HTTP layer can map them onto status codes.
var (
	ErrValidation = errors.New("validation failed")
	ErrForbidden  = errors.New("forbidden")
	ErrNotFound   = errors.New("not found")
	ErrConflict   = errors.New("conflict")
	ErrExpired    = errors.New("expired")
)
