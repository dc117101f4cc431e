package domain

import "errors"

// Failure kinds. Services wrap these with fmt.Errorf("...: %w", Err...) so the
// HTTP boundary can classify them with errors.Is.
var (
	ErrAuthenticationRequired = errors.New("authentication required")
	ErrPermissionDenied       = errors.New("permission denied")
	ErrNotFound               = errors.New("not found")
	ErrValidation             = errors.New("validation failed")
	ErrConflict               = errors.New("conflict")
	ErrUnknownVariant         = errors.New("unknown variant")
)
