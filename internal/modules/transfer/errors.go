package transfer

import "errors"

var (
	// ErrInsufficientStock rejects an approval when the warehouse cannot
	// cover the requested quantity.
	ErrInsufficientStock = errors.New("insufficient warehouse stock")
)
