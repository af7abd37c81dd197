package sunspot

import "errors"

// Lookup failure kinds. Match with errors.Is.
var (
	// ErrInvalidDate indicates the date parameter could not be parsed.
	ErrInvalidDate = errors.New("sunspot: invalid date")

	// ErrInvalidCoordinates indicates lat/lon were not valid decimals in range.
	ErrInvalidCoordinates = errors.New("sunspot: invalid coordinates")

	// ErrLocationNotFound indicates the city could not be geocoded.
	ErrLocationNotFound = errors.New("sunspot: location not found")

	// ErrUpstreamUnavailable indicates the sun-times provider failed.
	ErrUpstreamUnavailable = errors.New("sunspot: upstream unavailable")
)

// LookupError carries the failure kind together with its cause.
// errors.Is matches both the kind and anything in the cause chain.
type LookupError struct {
	Kind error
	Err  error
}

func (e *LookupError) Error() string {
	if e.Err == nil {
		return e.Kind.Error()
	}
	return e.Kind.Error() + ": " + e.Err.Error()
}

func (e *LookupError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

func lookupError(kind, cause error) error {
	return &LookupError{Kind: kind, Err: cause}
}

// Kind returns the lookup failure kind of err, or nil if err is not one.
func Kind(err error) error {
	for _, k := range []error{ErrInvalidDate, ErrInvalidCoordinates, ErrLocationNotFound, ErrUpstreamUnavailable} {
		if errors.Is(err, k) {
			return k
		}
	}
	return nil
}
