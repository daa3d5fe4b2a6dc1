// Command analyze runs a one-shot historical weather probability analysis
// against the synthetic sample source and writes the report to stdout or a
// file.
//
// Usage:
//
//	go run ./cmd/analyze \
//	  -lat 30.2672 -lon -97.7431 -name "Austin, TX" \
//	  -date 07-04 -years 20 \
//	  -variables temperature,precipitation \
//	  -format csv -output report.csv
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/couchcryptid/weather-probability-service/internal/adapter/synthetic"
	"github.com/couchcryptid/weather-probability-service/internal/domain"
	"github.com/couchcryptid/weather-probability-service/internal/export"
	"github.com/couchcryptid/weather-probability-service/internal/observability"
	"github.com/couchcryptid/weather-probability-service/internal/service"
)

func main() {
	lat := flag.Float64("lat", 0, "location latitude")
	lon := flag.Float64("lon", 0, "location longitude")
	name := flag.String("name", "", "location display name")
	date := flag.String("date", "", "target date (YYYY-MM-DD or MM-DD)")
	years := flag.Int("years", 0, "years of history to analyze (default from settings)")
	window := flag.Int("window", -1, "day window around the date (default from settings)")
	variables := flag.String("variables", "temperature", "comma-separated variables to analyze")
	threshold := flag.Float64("threshold", 0, "override threshold for every variable (0 = catalog defaults)")
	seed := flag.Uint64("seed", 1, "synthetic source seed (0 = non-deterministic)")
	format := flag.String("format", "json", "output format: json, csv, or timeseries")
	output := flag.String("output", "", "output file (default stdout)")
	flag.Parse()

	if *date == "" {
		fmt.Fprintln(os.Stderr, "FATAL: -date is required")
		flag.Usage()
		os.Exit(1)
	}

	if code := run(*lat, *lon, *name, *date, *years, *window, *variables, *threshold, *seed, *format, *output); code != 0 {
		os.Exit(code)
	}
}

func run(lat, lon float64, name, date string, years, window int, variables string, threshold float64, seed uint64, format, output string) int {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	metrics := observability.NewMetrics()

	req, err := buildRequest(lat, lon, name, date, years, window, variables, threshold)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: %v\n", err)
		return 1
	}

	source := synthetic.New(seed, logger)
	analyzer := service.New(source, domain.DefaultSettings(), nil, logger, metrics)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	report, err := analyzer.Analyze(ctx, req)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: analysis failed: %v\n", err)
		return 1
	}

	var data []byte
	switch format {
	case export.FormatJSON:
		data, err = export.JSON(report)
	case export.FormatCSV:
		data, err = export.SummaryCSV(report)
	case export.FormatTimeSeries:
		data, err = export.TimeSeriesCSV(report)
	default:
		fmt.Fprintf(os.Stderr, "FATAL: unknown format %q (want json, csv, or timeseries)\n", format)
		return 1
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: export failed: %v\n", err)
		return 1
	}

	var out io.Writer = os.Stdout
	if output != "" {
		f, err := os.Create(output)
		if err != nil {
			fmt.Fprintf(os.Stderr, "FATAL: create output: %v\n", err)
			return 1
		}
		defer f.Close()
		out = f
	}

	if _, err := out.Write(data); err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: write output: %v\n", err)
		return 1
	}
	return 0
}

func buildRequest(lat, lon float64, name, date string, years, window int, variables string, threshold float64) (domain.AnalysisRequest, error) {
	parsed, err := parseDate(date)
	if err != nil {
		return domain.AnalysisRequest{}, err
	}

	req := domain.AnalysisRequest{
		Location: domain.Location{
			Name:      name,
			Latitude:  lat,
			Longitude: lon,
		},
		Date:       parsed,
		Years:      years,
		WindowDays: window,
	}

	for _, raw := range strings.Split(variables, ",") {
		v, err := domain.ParseVariable(strings.TrimSpace(raw))
		if err != nil {
			return domain.AnalysisRequest{}, err
		}
		sel := domain.VariableSelection{Variable: v}
		if threshold != 0 {
			t := threshold
			sel.Threshold = &t
		}
		req.Variables = append(req.Variables, sel)
	}
	return req, nil
}

func parseDate(s string) (time.Time, error) {
	for _, layout := range []string{"2006-01-02", "01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q: want YYYY-MM-DD or MM-DD", s)
}
