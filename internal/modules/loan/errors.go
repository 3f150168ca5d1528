package loan

import "errors"

var (
	// ErrInsufficientStock rejects a request whose quantity exceeds the
	// lab's available count for that model.
	ErrInsufficientStock = errors.New("insufficient stock at lab")

	// ErrOverdueReturnRequired blocks return intake on an overdue loan
	// until the student explicitly requests the return.
	ErrOverdueReturnRequired = errors.New("loan overdue: return must be requested first")

	ErrNotOwner = errors.New("loan belongs to another student")
)
