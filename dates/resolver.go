package dates

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

// Layout is the canonical calendar-day format.
const Layout = "2006-01-02"

// ErrInvalidDate indicates the date expression could not be parsed.
var ErrInvalidDate = errors.New("dates: invalid date")

// Resolver resolves date expressions relative to a clock.
//
// Contract:
// - Concurrency: safe for concurrent use; Resolver holds no mutable state.
// - Errors: Resolve returns ErrInvalidDate (wrapped) for unparseable input.
type Resolver struct {
	// Now returns the current instant. Default: time.Now.
	Now func() time.Time

	// Location is the zone that defines "today". Default: time.Local.
	Location *time.Location
}

// NewResolver creates a resolver for the given zone. A nil zone means time.Local.
func NewResolver(loc *time.Location) *Resolver {
	if loc == nil {
		loc = time.Local
	}
	return &Resolver{Now: time.Now, Location: loc}
}

// Today returns the current calendar day in canonical form.
func (r *Resolver) Today() string {
	return r.today().Format(Layout)
}

// Resolve normalizes param to YYYY-MM-DD.
func (r *Resolver) Resolve(param string) (string, error) {
	today := r.today()

	switch strings.ToLower(strings.TrimSpace(param)) {
	case "", "today":
		return today.Format(Layout), nil
	case "yesterday":
		return today.AddDate(0, 0, -1).Format(Layout), nil
	case "tomorrow":
		return today.AddDate(0, 0, 1).Format(Layout), nil
	}

	t, err := parse(strings.TrimSpace(param), r.location())
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidDate, param)
	}
	return t.Format(Layout), nil
}

// IsToday reports whether a canonical day equals the current day.
func (r *Resolver) IsToday(day string) bool {
	return day == r.Today()
}

func (r *Resolver) today() time.Time {
	now := time.Now
	if r.Now != nil {
		now = r.Now
	}
	return now().In(r.location())
}

func (r *Resolver) location() *time.Location {
	if r.Location == nil {
		return time.Local
	}
	return r.Location
}

// parse wraps dateparse, which can panic on some malformed inputs.
func parse(s string, loc *time.Location) (t time.Time, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("dates: parse panic: %v", rec)
		}
	}()
	return dateparse.ParseIn(s, loc)
}
