package domain

import (
	"errors"
	"fmt"
)

// ErrNoConnection is returned when no network path was available at call time.
// The request is never attempted in that case.
var ErrNoConnection = errors.New("no network connection")

// ErrStoreUnavailable wraps every persistence failure. It is the only error
// that aborts a sync instead of becoming an Error outcome.
var ErrStoreUnavailable = errors.New("weather store unavailable")

// RemoteError reports a failed remote fetch: a non-2xx status, an unparseable
// body or a transport failure. StatusCode is zero when no response was read.
type RemoteError struct {
	StatusCode int
	Err        error
}

func (e *RemoteError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("remote weather error: status %d: %v", e.StatusCode, e.Err)
	}
	return fmt.Sprintf("remote weather error: %v", e.Err)
}

func (e *RemoteError) Unwrap() error { return e.Err }

// IsNoConnection reports whether err stems from a failed connectivity check.
func IsNoConnection(err error) bool {
	return errors.Is(err, ErrNoConnection)
}
