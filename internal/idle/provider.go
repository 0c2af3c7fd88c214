package idle

import (
	"errors"
	"time"
)

// ErrUnsupported indicates idle detection is not available on this system.
var ErrUnsupported = errors.New("idle detection unsupported")

// Provider returns the duration since last user input.
type Provider interface {
	IdleDuration() (time.Duration, error)
}

// NewProvider returns a platform-specific idle provider.
func NewProvider() Provider {
	return newProvider()
}

type unsupportedProvider struct{}

func (unsupportedProvider) IdleDuration() (time.Duration, error) {
	return 0, ErrUnsupported
}
