package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrNoData reports that a source returned zero samples for a variable.
// The affected variable fails; sibling variables in the same request are
// unaffected.
var ErrNoData = errors.New("no data available for the specified location and date range")

// Settings bounds and defaults analysis requests. The zero value is not
// usable; construct via DefaultSettings or from service configuration.
type Settings struct {
	DefaultYears      int
	MinYears          int
	MaxYears          int
	DefaultWindowDays int
}

// DefaultSettings mirrors the documented analysis defaults: 20 years of
// history bounded to 10–30, pooling ±7 days around the target date.
func DefaultSettings() Settings {
	return Settings{
		DefaultYears:      20,
		MinYears:          10,
		MaxYears:          30,
		DefaultWindowDays: 7,
	}
}

// VariableSelection is one requested variable with an optional exceedance
// threshold. A nil threshold falls back to the catalog default.
type VariableSelection struct {
	Variable  Variable
	Threshold *float64
}

// AnalysisRequest describes one analysis run. Years == 0 and
// WindowDays < 0 take the configured defaults during normalization.
type AnalysisRequest struct {
	Location   Location
	Date       time.Time
	WindowDays int
	Years      int
	Variables  []VariableSelection
}

// ValidationError collects every problem found in a request so callers can
// surface them in one response.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return "invalid request: " + strings.Join(e.Problems, "; ")
}

// Normalize fills defaulted fields from settings. Call before Validate.
func (r *AnalysisRequest) Normalize(s Settings) {
	if r.Years == 0 {
		r.Years = s.DefaultYears
	}
	if r.WindowDays < 0 {
		r.WindowDays = s.DefaultWindowDays
	}
}

// Validate checks coordinate ranges, year bounds, and the variable list.
// Returns a *ValidationError listing every violation, or nil.
func (r AnalysisRequest) Validate(s Settings) error {
	var problems []string

	if r.Location.Latitude < -90 || r.Location.Latitude > 90 {
		problems = append(problems, "latitude must be between -90 and 90")
	}
	if r.Location.Longitude < -180 || r.Location.Longitude > 180 {
		problems = append(problems, "longitude must be between -180 and 180")
	}
	if r.Date.IsZero() {
		problems = append(problems, "date is required")
	}
	if r.Years < s.MinYears || r.Years > s.MaxYears {
		problems = append(problems, fmt.Sprintf("years must be between %d and %d", s.MinYears, s.MaxYears))
	}
	if r.WindowDays < 0 {
		problems = append(problems, "date window must not be negative")
	}
	if len(r.Variables) == 0 {
		problems = append(problems, "at least one variable must be selected")
	}
	for _, sel := range r.Variables {
		if !sel.Variable.Valid() {
			problems = append(problems, fmt.Sprintf("unknown variable %q", string(sel.Variable)))
		}
	}

	if len(problems) > 0 {
		return &ValidationError{Problems: problems}
	}
	return nil
}

// EffectiveThreshold resolves the selection's threshold, falling back to
// the variable's catalog default.
func (sel VariableSelection) EffectiveThreshold() float64 {
	if sel.Threshold != nil {
		return *sel.Threshold
	}
	info, _ := sel.Variable.Info()
	return info.DefaultThreshold
}
