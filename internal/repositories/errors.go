package repositories

import "errors"

var (
	// ErrNotFound is returned when a record does not exist or is soft-deleted.
	ErrNotFound = errors.New("record not found")
	// ErrInsufficientStock is returned by a reservation that cannot be satisfied
	// against the most recently committed stock value.
	ErrInsufficientStock = errors.New("insufficient stock")
	// ErrStatusConflict is returned when an order status changed underneath a
	// compare-and-set transition.
	ErrStatusConflict = errors.New("order status changed concurrently")
	// ErrDuplicate is returned when a unique key is already taken.
	ErrDuplicate = errors.New("duplicate key")
)
