package consolidate

import "errors"

var (
	// ErrNoCases is returned when no case extract could be resolved.
	ErrNoCases = errors.New("no usable case table")
)
