package domain

import "fmt"

// Variable identifies a weather variable that can be analyzed.
type Variable string

const (
	VariableTemperature   Variable = "temperature"
	VariablePrecipitation Variable = "precipitation"
	VariableWindSpeed     Variable = "wind_speed"
	VariableHumidity      Variable = "humidity"
	VariableAirQuality    Variable = "air_quality"
)

// VariableInfo describes one catalog entry: display name, units, the NASA
// dataset it derives from, and analysis defaults.
type VariableInfo struct {
	Name             string  `json:"name"`
	Units            string  `json:"units"`
	DataSource       string  `json:"data_source"`
	PowerParameter   string  `json:"-"` // NASA POWER parameter name, empty if not served
	DefaultThreshold float64 `json:"default_threshold"`

	// TypicalMagnitude anchors the stable-trend tolerance: a trend under
	// 2% of this value per decade is reported as stable.
	TypicalMagnitude float64 `json:"-"`
}

var catalog = map[Variable]VariableInfo{
	VariableTemperature: {
		Name:             "Temperature",
		Units:            "°F",
		DataSource:       "MERRA-2",
		PowerParameter:   "T2M",
		DefaultThreshold: 90,
		TypicalMagnitude: 60,
	},
	VariablePrecipitation: {
		Name:             "Precipitation",
		Units:            "inches",
		DataSource:       "GPM IMERG",
		PowerParameter:   "PRECTOTCORR",
		DefaultThreshold: 2.0,
		TypicalMagnitude: 1.5,
	},
	VariableWindSpeed: {
		Name:             "Wind Speed",
		Units:            "mph",
		DataSource:       "MERRA-2",
		PowerParameter:   "WS10M",
		DefaultThreshold: 25,
		TypicalMagnitude: 15,
	},
	VariableHumidity: {
		Name:             "Humidity",
		Units:            "%",
		DataSource:       "MERRA-2",
		PowerParameter:   "RH2M",
		DefaultThreshold: 80,
		TypicalMagnitude: 65,
	},
	VariableAirQuality: {
		Name:             "Air Quality",
		Units:            "AQI",
		DataSource:       "MODIS",
		DefaultThreshold: 100,
		TypicalMagnitude: 60,
	},
}

// variableOrder fixes the catalog iteration order for listings and exports.
var variableOrder = []Variable{
	VariableTemperature,
	VariablePrecipitation,
	VariableWindSpeed,
	VariableHumidity,
	VariableAirQuality,
}

// Info returns catalog details for the variable. The second return is false
// for unknown variables.
func (v Variable) Info() (VariableInfo, bool) {
	info, ok := catalog[v]
	return info, ok
}

// Valid reports whether the variable is in the catalog.
func (v Variable) Valid() bool {
	_, ok := catalog[v]
	return ok
}

// ParseVariable maps an identifier to a catalog Variable.
func ParseVariable(s string) (Variable, error) {
	v := Variable(s)
	if !v.Valid() {
		return "", fmt.Errorf("unknown variable %q", s)
	}
	return v, nil
}

// Variables lists all catalog variables in display order.
func Variables() []Variable {
	out := make([]Variable, len(variableOrder))
	copy(out, variableOrder)
	return out
}
