package dates

import (
	"errors"
	"testing"
	"time"
)

func fixedResolver() *Resolver {
	now := time.Date(2024, time.March, 1, 10, 30, 0, 0, time.UTC)
	return &Resolver{
		Now:      func() time.Time { return now },
		Location: time.UTC,
	}
}

func TestResolve_Keywords(t *testing.T) {
	r := fixedResolver()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "empty", input: "", want: "2024-03-01"},
		{name: "today", input: "today", want: "2024-03-01"},
		{name: "today mixed case", input: "ToDaY", want: "2024-03-01"},
		{name: "yesterday crosses month", input: "yesterday", want: "2024-02-29"},
		{name: "tomorrow", input: "TOMORROW", want: "2024-03-02"},
		{name: "padded keyword", input: "  today ", want: "2024-03-01"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := r.Resolve(tt.input)
			if err != nil {
				t.Fatalf("Resolve(%q) error = %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("Resolve(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestResolve_HumanFormats(t *testing.T) {
	r := fixedResolver()

	tests := []struct {
		input string
		want  string
	}{
		{input: "2024-01-01", want: "2024-01-01"},
		{input: "2024/06/21", want: "2024-06-21"},
		{input: "June 21, 2024", want: "2024-06-21"},
		{input: "21 Jun 2024", want: "2024-06-21"},
		{input: "2024-06-21T18:30:00Z", want: "2024-06-21"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := r.Resolve(tt.input)
			if err != nil {
				t.Fatalf("Resolve(%q) error = %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("Resolve(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestResolve_Invalid(t *testing.T) {
	r := fixedResolver()

	for _, input := range []string{"not-a-date", "someday", "2024-13-45"} {
		t.Run(input, func(t *testing.T) {
			got, err := r.Resolve(input)
			if !errors.Is(err, ErrInvalidDate) {
				t.Fatalf("Resolve(%q) error = %v, want ErrInvalidDate", input, err)
			}
			if got != "" {
				t.Errorf("Resolve(%q) = %q, want empty", input, got)
			}
		})
	}
}

func TestResolve_UsesLocation(t *testing.T) {
	// 23:30 UTC on Mar 1 is already Mar 2 in Tokyo.
	now := time.Date(2024, time.March, 1, 23, 30, 0, 0, time.UTC)
	tokyo := time.FixedZone("JST", 9*60*60)
	r := &Resolver{Now: func() time.Time { return now }, Location: tokyo}

	got, err := r.Resolve("today")
	if err != nil {
		t.Fatalf("Resolve error = %v", err)
	}
	if got != "2024-03-02" {
		t.Errorf("Resolve(today) = %q, want 2024-03-02", got)
	}
	if !r.IsToday("2024-03-02") {
		t.Error("IsToday(2024-03-02) = false, want true")
	}
}

func TestNewResolver_Defaults(t *testing.T) {
	r := NewResolver(nil)
	if r.Location != time.Local {
		t.Errorf("Location = %v, want Local", r.Location)
	}
	if _, err := time.Parse(Layout, r.Today()); err != nil {
		t.Errorf("Today() = %q is not canonical: %v", r.Today(), err)
	}
}
