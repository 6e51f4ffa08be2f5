package domain

import "errors"

var (
	ErrValidation    = errors.New("missing required field")
	ErrNotFound      = errors.New("issue not found")
	ErrInvalidRecord = errors.New("invalid issue record")
	ErrStorageWrite  = errors.New("photo storage write failed")
	ErrStorageRead   = errors.New("photo storage read failed")
)
