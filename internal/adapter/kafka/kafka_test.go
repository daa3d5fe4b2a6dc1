package kafka

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/weather-probability-service/internal/domain"
)

func testReport() domain.Report {
	return domain.Report{
		Location: domain.Location{Name: "Austin", Latitude: 30.2672, Longitude: -97.7431},
		Date:     "07-04",
		Years:    20,
		Results: []domain.AnalysisResult{
			{Variable: domain.VariableTemperature, Name: "Temperature", Mean: 92.1},
			{Variable: domain.VariablePrecipitation, Name: "Precipitation", Mean: 1.4},
		},
		GeneratedAt: time.Date(2026, 8, 31, 15, 10, 0, 0, time.UTC),
	}
}

func TestSerializeReport(t *testing.T) {
	msg, err := serializeReport(testReport())
	require.NoError(t, err)

	assert.Contains(t, string(msg.Value), `"variable":"temperature"`)
	assert.Contains(t, string(msg.Value), `"date":"07-04"`)

	require.Len(t, msg.Headers, 2)
	assert.Equal(t, "variables", msg.Headers[0].Key)
	assert.Equal(t, []byte("temperature,precipitation"), msg.Headers[0].Value)
	assert.Equal(t, "generated_at", msg.Headers[1].Key)
	assert.Equal(t, []byte("2026-08-31T15:10:00Z"), msg.Headers[1].Value)
}

func TestReportKey_Deterministic(t *testing.T) {
	first := reportKey(testReport())
	second := reportKey(testReport())
	assert.Equal(t, first, second)
	assert.Len(t, first, 64)

	moved := testReport()
	moved.Location.Latitude = 47.6062
	assert.NotEqual(t, first, reportKey(moved))
}
