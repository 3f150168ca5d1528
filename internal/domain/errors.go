package domain

import "errors"

// Shared error taxonomy. Workflow services return these (or module-local
// sentinels) so handlers can map them to HTTP codes with errors.Is.
var (
	// ErrValidation means the caller sent malformed or missing input.
	// Nothing was mutated.
	ErrValidation = errors.New("validation error")

	// ErrNotFound means a referenced entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrStateConflict means a precondition on current status/location
	// failed, e.g. a unit was claimed by a concurrent approval or a unit
	// already has an open repair ticket. The whole batch was rolled back.
	ErrStateConflict = errors.New("state conflict")

	// ErrQuantityMismatch means the supplied unit count does not match the
	// requested quantity, or stock is insufficient to satisfy it.
	ErrQuantityMismatch = errors.New("quantity mismatch")
)
