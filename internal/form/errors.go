package form

import "errors"

var (
	ErrMissingField = errors.New("phone number and price are required")
	ErrBusy         = errors.New("a submission is already being processed")
)
