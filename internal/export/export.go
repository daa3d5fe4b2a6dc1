// Package export serializes analysis reports to CSV and JSON for download.
package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/couchcryptid/weather-probability-service/internal/domain"
)

// Formats accepted by the export endpoints.
const (
	FormatCSV        = "csv"
	FormatTimeSeries = "timeseries"
	FormatJSON       = "json"
)

// JSON renders the report as an indented JSON document. Every numeric
// field round-trips exactly; the report's generated-at timestamp is the
// generation timestamp required by consumers.
func JSON(report domain.Report) ([]byte, error) {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal report: %w", err)
	}
	return data, nil
}

// SummaryCSV renders one row per variable preceded by a "#"-prefixed
// metadata header block.
func SummaryCSV(report domain.Report) ([]byte, error) {
	var buf bytes.Buffer
	writeMetadataHeader(&buf, report)

	w := csv.NewWriter(&buf)
	header := []string{
		"location", "latitude", "longitude", "date", "variable",
		"mean", "median", "std_dev", "min", "max",
		"threshold", "probability_exceeding", "trend_per_decade",
		"data_source", "units",
		"p10", "p25", "p50", "p75", "p90",
	}
	if err := w.Write(header); err != nil {
		return nil, fmt.Errorf("write csv header: %w", err)
	}

	for _, r := range report.Results {
		row := []string{
			report.Location.Name,
			formatFloat(report.Location.Latitude),
			formatFloat(report.Location.Longitude),
			report.Date,
			r.Name,
			formatFloat(r.Mean),
			formatFloat(r.Median),
			formatFloat(r.StdDev),
			formatFloat(r.Min),
			formatFloat(r.Max),
			formatFloat(r.Threshold),
			fmt.Sprintf("%.2f%%", r.ExceedanceProbability),
			formatFloat(r.Trend.SlopePerDecade),
			r.DataSource,
			r.Units,
			formatFloat(r.Percentiles.P10),
			formatFloat(r.Percentiles.P25),
			formatFloat(r.Percentiles.P50),
			formatFloat(r.Percentiles.P75),
			formatFloat(r.Percentiles.P90),
		}
		if err := w.Write(row); err != nil {
			return nil, fmt.Errorf("write csv row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	return buf.Bytes(), nil
}

// TimeSeriesCSV renders flat (variable, year, value) rows followed by a
// summary-statistics trailer per variable. Trailer rows reuse the year
// column for the statistic name.
func TimeSeriesCSV(report domain.Report) ([]byte, error) {
	var buf bytes.Buffer
	writeMetadataHeader(&buf, report)

	w := csv.NewWriter(&buf)
	if err := w.Write([]string{"variable", "year", "value", "units"}); err != nil {
		return nil, fmt.Errorf("write csv header: %w", err)
	}

	for _, r := range report.Results {
		for _, s := range r.Samples {
			row := []string{r.Name, strconv.Itoa(s.Year), formatFloat(s.Value), r.Units}
			if err := w.Write(row); err != nil {
				return nil, fmt.Errorf("write csv row: %w", err)
			}
		}
	}

	for _, r := range report.Results {
		trailer := [][2]string{
			{"mean", formatFloat(r.Mean)},
			{"std_dev", formatFloat(r.StdDev)},
			{"p10", formatFloat(r.Percentiles.P10)},
			{"p25", formatFloat(r.Percentiles.P25)},
			{"p50", formatFloat(r.Percentiles.P50)},
			{"p75", formatFloat(r.Percentiles.P75)},
			{"p90", formatFloat(r.Percentiles.P90)},
			{"exceedance_probability", formatFloat(r.ExceedanceProbability)},
			{"trend_per_decade", formatFloat(r.Trend.SlopePerDecade)},
		}
		for _, t := range trailer {
			if err := w.Write([]string{r.Name, t[0], t[1], r.Units}); err != nil {
				return nil, fmt.Errorf("write csv trailer: %w", err)
			}
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	return buf.Bytes(), nil
}

func writeMetadataHeader(buf *bytes.Buffer, report domain.Report) {
	fmt.Fprintf(buf, "# Weather Probability Analysis Report\n")
	fmt.Fprintf(buf, "# Generated: %s\n", report.GeneratedAt.UTC().Format(time.RFC3339))
	fmt.Fprintf(buf, "# Years Analyzed: %d\n", report.Years)
	fmt.Fprintf(buf, "# Data Sources: %s\n", dataSources(report))
	fmt.Fprintf(buf, "#\n")
}

func dataSources(report domain.Report) string {
	seen := make(map[string]struct{})
	var sources []string
	for _, r := range report.Results {
		if _, ok := seen[r.DataSource]; ok {
			continue
		}
		seen[r.DataSource] = struct{}{}
		sources = append(sources, r.DataSource)
	}
	sort.Strings(sources)
	return strings.Join(sources, ", ")
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
