package resilience

import "errors"

// ErrMaxRetriesExceeded is returned when every attempt failed. The last
// attempt's error is wrapped alongside it.
var ErrMaxRetriesExceeded = errors.New("resilience: max retries exceeded")

type permanentError struct {
	err error
}

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

// Permanent marks err as not worth retrying. Execute returns the wrapped
// error as is.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

// IsPermanent reports whether err was marked with Permanent.
func IsPermanent(err error) bool {
	var p *permanentError
	return errors.As(err, &p)
}
