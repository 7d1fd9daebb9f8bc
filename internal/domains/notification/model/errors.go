package model

import "errors"

var (
	ErrInvalidJSONB = errors.New("invalid JSONB value")
	ErrNoAdmins     = errors.New("no active admin to notify")
	ErrUnknownTask  = errors.New("unknown notification task type")
)
