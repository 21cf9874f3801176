package domain

import "errors"

var (
	ErrNotFound         = errors.New("plan not found")
	ErrUnknownDimension = errors.New("unknown usage dimension")
)
