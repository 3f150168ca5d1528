package inventory

import "errors"

var (
	ErrModelNotVerified = errors.New("equipment model is not verified")
)
