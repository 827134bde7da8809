package domain

import "context"

// Dataset identifies one of the three fixed point-sample tables.
type Dataset string

const (
	DatasetNDVI      Dataset = "ndvi"
	DatasetElevation Dataset = "elevation"
	DatasetWeather   Dataset = "weather"
)

// Datasets lists every dataset in the order reports present them.
var Datasets = []Dataset{DatasetNDVI, DatasetElevation, DatasetWeather}

// Valid reports whether d names a known dataset.
func (d Dataset) Valid() bool {
	switch d {
	case DatasetNDVI, DatasetElevation, DatasetWeather:
		return true
	}
	return false
}

// NeutralDefault returns the documented substitute value the boundary layer
// may use when a dataset is unavailable. This is an explicit policy hook;
// nothing in the scoring path applies it implicitly.
func (d Dataset) NeutralDefault() float64 {
	switch d {
	case DatasetNDVI:
		return 0.5
	case DatasetElevation:
		return 1000
	case DatasetWeather:
		return 5
	}
	return 0
}

// Sample is one immutable (lon, lat, value) triple from a dataset table.
type Sample struct {
	Lon   float64
	Lat   float64
	Value float64
}

// SampleSource loads the full table for a dataset. Implementations re-read
// the backing table on every call and never cache across calls.
type SampleSource interface {
	Load(ctx context.Context, dataset Dataset) ([]Sample, error)
}
