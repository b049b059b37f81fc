package task

import "errors"

var (
	ErrUnknownJobType = errors.New("unknown job type")
	ErrInvalidPrice   = errors.New("invalid product price")
)
