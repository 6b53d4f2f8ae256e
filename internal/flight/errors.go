package flight

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidOperation rejects a command that is illegal in the current
	// phase. The simulation state is left untouched.
	ErrInvalidOperation = errors.New("flight: operation not permitted in current phase")

	// ErrGimbalLocked rejects gimbal mutation between Start and Reset.
	ErrGimbalLocked = fmt.Errorf("flight: gimbal locked until reset: %w", ErrInvalidOperation)
)
