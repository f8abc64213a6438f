package domain

import "errors"

// Sentinel errors for errors.Is() checking. Component failures never surface
// as errors; they are folded into verdicts. These cover the HTTP surface only.
var (
	ErrNotFound         = errors.New("not found")
	ErrMethodNotAllowed = errors.New("method not allowed")
	ErrTimeout          = errors.New("request timed out")
)
