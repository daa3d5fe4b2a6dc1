package domain

import (
	"context"
	"time"
)

// Sample is one historical observation: the year it was recorded and the
// observed value in the variable's display units. Samples are immutable and
// owned by the analysis run that produced them.
type Sample struct {
	Year  int     `json:"year"`
	Value float64 `json:"value"`
}

// Location is a WGS-84 coordinate pair with an optional display name.
type Location struct {
	Name      string  `json:"name,omitempty"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// SampleQuery asks a source for historical samples of one variable around
// one calendar date. Date's year is ignored; history always ends at the
// year before the current one. WindowDays pools observations ±N days
// around the target date.
type SampleQuery struct {
	Location   Location
	Date       time.Time
	WindowDays int
	Variable   Variable
	Years      int
}

// SampleSource produces ordered (year, value) pairs for a query. The demo
// implementation synthesizes them; the production implementation fetches
// NASA POWER data. Returned samples are sorted ascending by year and never
// empty without an error.
type SampleSource interface {
	Samples(ctx context.Context, q SampleQuery) ([]Sample, error)
}

// Values extracts the value column of a sample series.
func Values(samples []Sample) []float64 {
	out := make([]float64, len(samples))
	for i, s := range samples {
		out[i] = s.Value
	}
	return out
}
