package contract

import "errors"

var (
	ErrUnknownOperation = errors.New("unknown operation")
	ErrValidation       = errors.New("validation failed")
)
