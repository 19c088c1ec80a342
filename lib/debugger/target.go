package debugger

import "errors"

// Target is an injected debug capability: the handful of runtime
// registers a status report needs, read from whatever is hosting the
// CPU (simulator, on-chip debug probe). Implementations carry their
// own connection state; nothing here is ambient or global.
type Target interface {
	Halted() (bool, error)
	ReadPC() (uint32, error)
	ReadSP() (uint32, error)
	ReadLR() (uint32, error)
	ExecutedInstructions() (uint64, error)
}

// ErrNotSupported is returned for capabilities a given target cannot
// provide, e.g. instruction counters over the GDB remote protocol.
var ErrNotSupported = errors.New("not supported by this debug target")
