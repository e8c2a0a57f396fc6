package power

import "errors"

var (
	// ErrUnsupported is returned by every operation when the platform lacks
	// the monitor or pause instructions. It never changes at runtime.
	ErrUnsupported = errors.New("power: monitor/pause intrinsics not supported")

	// ErrInvalidArgument is returned for a nil condition or address, an
	// operand width outside {1,2,4,8}, a caller without a core slot, or a
	// core slot beyond the table.
	ErrInvalidArgument = errors.New("power: invalid argument")
)
