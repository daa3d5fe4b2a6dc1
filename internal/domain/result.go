package domain

import "time"

// Percentiles holds the standard percentile set, non-decreasing from P10
// through P90.
type Percentiles struct {
	P10 float64 `json:"p10"`
	P25 float64 `json:"p25"`
	P50 float64 `json:"p50"`
	P75 float64 `json:"p75"`
	P90 float64 `json:"p90"`
}

// TrendSummary is the user-facing view of an OLS trend fit.
type TrendSummary struct {
	SlopePerYear   float64 `json:"slope_per_year"`
	SlopePerDecade float64 `json:"slope_per_decade"`
	Intercept      float64 `json:"intercept"`
	RSquared       float64 `json:"r_squared"`
	Confident      bool    `json:"confident"`
	Direction      string  `json:"direction"` // "increasing", "decreasing", or "stable"
}

// AnalysisResult holds every statistic computed for one variable. Derived
// entirely from its sample set and recomputed on every request.
type AnalysisResult struct {
	Variable   Variable `json:"variable"`
	Name       string   `json:"name"`
	Units      string   `json:"units"`
	DataSource string   `json:"data_source"`

	Years   int      `json:"years"`
	Samples []Sample `json:"samples"`

	Mean        float64     `json:"mean"`
	Median      float64     `json:"median"`
	StdDev      float64     `json:"std_dev"`
	Min         float64     `json:"min"`
	Max         float64     `json:"max"`
	Percentiles Percentiles `json:"percentiles"`

	Threshold             float64 `json:"threshold"`
	ExceedanceProbability float64 `json:"exceedance_probability"`
	ExceedCount           int     `json:"exceed_count"`
	TotalCount            int     `json:"total_count"`

	Trend TrendSummary `json:"trend"`

	RiskLevel      string `json:"risk_level"`
	Interpretation string `json:"interpretation"`
}

// VariableFailure records one variable that could not be analyzed without
// failing the rest of the request.
type VariableFailure struct {
	Variable Variable `json:"variable"`
	Reason   string   `json:"reason"`
}

// Report is the full outcome of one analysis request: request metadata,
// one result per successful variable, and one failure entry per variable
// that produced no data.
type Report struct {
	Location    Location          `json:"location"`
	Date        string            `json:"date"` // MM-DD
	WindowDays  int               `json:"window_days"`
	Years       int               `json:"years"`
	Results     []AnalysisResult  `json:"results"`
	Failures    []VariableFailure `json:"failures,omitempty"`
	GeneratedAt time.Time         `json:"generated_at"`
}
