package repository

import "errors"

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("record already exists")
	// ErrStale is returned when a conditional update matched no row because
	// the record changed since it was read.
	ErrStale = errors.New("record was modified concurrently")
)
