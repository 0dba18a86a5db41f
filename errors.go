package emotion

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	// ErrNotReady detector, model or labels are not loaded yet.
	ErrNotReady = errors.New("pipeline is not ready")
	// ErrFrameNotAvailable the source has no usable frame yet. Not a failure.
	ErrFrameNotAvailable = errors.New("frame not available")
	// ErrAlreadyRunning Start was called on a running loop.
	ErrAlreadyRunning = errors.New("frame loop is already running")
)

// ConfigurationError Persistent asset mismatch detected at startup validation
type ConfigurationError struct {
	Msg string
}

func (e *ConfigurationError) Error() string {
	return "configuration error: " + e.Msg
}

func configErrorf(format string, args ...interface{}) error {
	return &ConfigurationError{Msg: fmt.Sprintf(format, args...)}
}

// IsConfigurationError reports whether err, or its cause, is a ConfigurationError.
func IsConfigurationError(err error) bool {
	_, ok := errors.Cause(err).(*ConfigurationError)
	return ok
}

// IsNotReady reports whether err is caused by ErrNotReady.
func IsNotReady(err error) bool {
	return errors.Cause(err) == ErrNotReady
}

// IsFrameNotAvailable reports whether err is caused by ErrFrameNotAvailable.
func IsFrameNotAvailable(err error) bool {
	return errors.Cause(err) == ErrFrameNotAvailable
}
