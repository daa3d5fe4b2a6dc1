package export

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/weather-probability-service/internal/domain"
)

func sampleReport() domain.Report {
	return domain.Report{
		Location:   domain.Location{Name: "Austin", Latitude: 30.2672, Longitude: -97.7431},
		Date:       "07-04",
		WindowDays: 7,
		Years:      3,
		Results: []domain.AnalysisResult{
			{
				Variable:   domain.VariableTemperature,
				Name:       "Temperature",
				Units:      "°F",
				DataSource: "MERRA-2",
				Years:      3,
				Samples: []domain.Sample{
					{Year: 2022, Value: 88.5},
					{Year: 2023, Value: 91.25},
					{Year: 2024, Value: 95.125},
				},
				Mean:   91.625,
				Median: 91.25,
				StdDev: 2.7238644,
				Min:    88.5,
				Max:    95.125,
				Percentiles: domain.Percentiles{
					P10: 89.05, P25: 89.875, P50: 91.25, P75: 93.1875, P90: 94.35,
				},
				Threshold:             90,
				ExceedanceProbability: 66.66666666666667,
				ExceedCount:           2,
				TotalCount:            3,
				Trend: domain.TrendSummary{
					SlopePerYear:   3.3125,
					SlopePerDecade: 33.125,
					RSquared:       0.9946,
					Confident:      true,
					Direction:      domain.TrendIncreasing,
				},
				RiskLevel:      domain.RiskHigh,
				Interpretation: "Based on 3 years of data...",
			},
		},
		GeneratedAt: time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC),
	}
}

func TestJSON_RoundTripExact(t *testing.T) {
	report := sampleReport()

	data, err := JSON(report)
	require.NoError(t, err)

	var back domain.Report
	require.NoError(t, json.Unmarshal(data, &back))

	// Every numeric field must reproduce exactly, including the
	// non-terminating exceedance fraction.
	assert.Equal(t, report, back)
}

func TestJSON_IncludesUnitsAndTimestamp(t *testing.T) {
	data, err := JSON(sampleReport())
	require.NoError(t, err)

	text := string(data)
	assert.Contains(t, text, `"units": "°F"`)
	assert.Contains(t, text, `"generated_at": "2026-08-31T12:00:00Z"`)
}

func TestSummaryCSV(t *testing.T) {
	data, err := SummaryCSV(sampleReport())
	require.NoError(t, err)

	text := string(data)
	lines := strings.Split(strings.TrimRight(text, "\n"), "\n")

	// Metadata comment block, then header, then one row per variable.
	assert.Equal(t, "# Weather Probability Analysis Report", lines[0])
	assert.Contains(t, lines[1], "# Generated: 2026-08-31T12:00:00Z")
	assert.Contains(t, lines[2], "# Years Analyzed: 3")
	assert.Contains(t, lines[3], "# Data Sources: MERRA-2")

	assert.Contains(t, text, "location,latitude,longitude,date,variable")
	assert.Contains(t, text, "Austin,30.2672,-97.7431,07-04,Temperature")
	assert.Contains(t, text, "66.67%")
	assert.Contains(t, text, "33.125")
}

func TestTimeSeriesCSV(t *testing.T) {
	data, err := TimeSeriesCSV(sampleReport())
	require.NoError(t, err)

	text := string(data)
	assert.Contains(t, text, "variable,year,value,units")
	assert.Contains(t, text, "Temperature,2022,88.5,°F")
	assert.Contains(t, text, "Temperature,2023,91.25,°F")
	assert.Contains(t, text, "Temperature,2024,95.125,°F")

	// Summary trailer rows reuse the year column for the statistic name.
	assert.Contains(t, text, "Temperature,mean,91.625,°F")
	assert.Contains(t, text, "Temperature,std_dev,2.7238644,°F")
	assert.Contains(t, text, "Temperature,p50,91.25,°F")
	assert.Contains(t, text, "Temperature,trend_per_decade,33.125,°F")
}

func TestSummaryCSV_MultipleSourcesDeduplicated(t *testing.T) {
	report := sampleReport()
	second := report.Results[0]
	second.Name = "Wind Speed"
	second.DataSource = "MERRA-2"
	third := report.Results[0]
	third.Name = "Precipitation"
	third.DataSource = "GPM IMERG"
	report.Results = append(report.Results, second, third)

	data, err := SummaryCSV(report)
	require.NoError(t, err)
	assert.Contains(t, string(data), "# Data Sources: GPM IMERG, MERRA-2")
}
