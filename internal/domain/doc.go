// Package domain models historical weather probability analysis.
//
// # Data Source
//
// Historical observations come from NASA Earth observation datasets. The
// production sample source reads the NASA POWER daily point API
// (https://power.larc.nasa.gov/), which serves MERRA-2 reanalysis and
// GPM IMERG precipitation at daily resolution. The demo sample source
// synthesizes plausible observations in-process with no I/O. Both honor the
// same contract: ordered (year, value) pairs for one variable at one
// location and calendar date.
//
// # Variable Conventions
//
// Values are stored in US customary display units, converted at the source:
//
//	Temperature:   MERRA-2 T2M, °C → °F
//	Precipitation: GPM IMERG PRECTOTCORR, mm/day → inches
//	Wind Speed:    MERRA-2 WS10M, m/s → mph
//	Humidity:      MERRA-2 RH2M, already %
//	Air Quality:   MODIS AOD scaled to an AQI estimate (demo source only;
//	               POWER does not serve aerosol products)
//
// # Date Window
//
// Samples may be pooled over ±N days around the target calendar date to
// increase sample count, so a series can hold several samples per year.
// Sample count equals requested years times the window expansion.
//
// # Statistical Methods
//
// Standard deviation is the population variant (÷n, not ÷(n−1)).
// Percentiles use linear interpolation between ranks: the pth percentile
// sits at rank p/100·(n−1) of the ascending-sorted series. Exceedance
// probability counts samples strictly greater than the threshold. Trend is
// ordinary least-squares regression of value on year index, reported as
// change per decade (slope × 10).
//
// # Risk Classification
//
// Exceedance probability maps to a three-level risk scale for user-facing
// summaries:
//
//	<30%    low
//	30–60%  moderate
//	>60%    high
//
// A trend is labeled "stable" when the change per decade is under 2% of the
// variable's typical magnitude, otherwise "increasing" or "decreasing" by
// sign.
package domain
