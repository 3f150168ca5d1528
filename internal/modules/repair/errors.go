package repair

import "errors"

var (
	// ErrUnitNotBroken rejects a standalone ticket for a unit that is not
	// actually broken.
	ErrUnitNotBroken = errors.New("unit is not broken")
)
