package errors

import "errors"

var (
	ErrInvalidPublisherInput   = errors.New("publisher directory input is invalid")
	ErrPublisherAlreadyExists  = errors.New("publisher is already registered")
	ErrPublisherNotFound       = errors.New("publisher is not registered")
	ErrRateUpdateAlreadyQueued = errors.New("a rate update is already pending for this publisher")
)
