package basket

import "errors"

var (
	// ErrEmptyKey is returned when a line carries an empty transaction id or item label.
	// Upstream preparation normally drops such rows before encoding.
	ErrEmptyKey = errors.New("basket: empty transaction id or item label")

	// ErrUnknownItem indicates an item index outside the matrix columns.
	ErrUnknownItem = errors.New("basket: unknown item")
)
