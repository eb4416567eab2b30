package persistence

import "errors"

var (
	// ErrNotFound is returned when the requested record does not exist.
	ErrNotFound = errors.New("persistence: not found")
	// ErrDuplicate is returned when a unique constraint rejects a write.
	ErrDuplicate = errors.New("persistence: duplicate record")
	// ErrConstraintViolation is returned when a check or foreign key constraint rejects a write.
	ErrConstraintViolation = errors.New("persistence: constraint violation")
	// ErrMissingReference accompanies ErrConstraintViolation when a foreign key
	// points at a row that does not exist.
	ErrMissingReference = errors.New("persistence: referenced record does not exist")
	// ErrOverlap is returned when a reservation overlaps an existing one for the same room.
	ErrOverlap = errors.New("persistence: overlapping reservation")
)
