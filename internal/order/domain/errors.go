package domain

import "errors"

var (
	ErrNotFound       = errors.New("order not found")
	ErrInvalidRequest = errors.New("invalid order request")
	ErrNoLineItems    = errors.New("order needs at least one line item")
)
