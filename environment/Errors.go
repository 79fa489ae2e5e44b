package environment

import "errors"

// EnvironmentError implements errors unique to operating an
// environment.
type EnvironmentError struct {
	Op  string
	Err error
}

// Error satisifes the error interface
func (e *EnvironmentError) Error() string {
	return e.Op + ": " + e.Err.Error()
}

// Unwrap returns the underlying error
func (e *EnvironmentError) Unwrap() error {
	return e.Err
}

var errInvalidConfig error = errors.New("invalid configuration")

var errInvalidAction error = errors.New("action outside the configured " +
	"action space")

var errStaleEpisode error = errors.New("episode finished, Reset must be " +
	"called before Step")

var errEmulator error = errors.New("emulator failure")

var errClosed error = errors.New("environment closed")

// IsConfigError returns whether or not an error reports an invalid
// environment configuration.
func IsConfigError(err error) bool {
	if envErr, ok := err.(*EnvironmentError); ok {
		err = envErr.Err
	}
	return errors.Is(err, errInvalidConfig)
}

// IsInvalidAction returns whether or not an error reports an action
// outside the bounds of the configured action space.
func IsInvalidAction(err error) bool {
	if envErr, ok := err.(*EnvironmentError); ok {
		err = envErr.Err
	}
	return errors.Is(err, errInvalidAction)
}

// IsStaleEpisode returns whether or not an error reports that Step was
// called on an episode that already terminated or was truncated.
func IsStaleEpisode(err error) bool {
	if envErr, ok := err.(*EnvironmentError); ok {
		err = envErr.Err
	}
	return errors.Is(err, errStaleEpisode)
}

// IsEmulatorFailure returns whether or not an error reports a failed
// call into the emulation engine. Emulator failures are fatal and are
// never retried.
func IsEmulatorFailure(err error) bool {
	if envErr, ok := err.(*EnvironmentError); ok {
		err = envErr.Err
	}
	return errors.Is(err, errEmulator)
}
