// Package store provides the sample table backends: flat CSV files on disk
// (the default) and an optional PostgreSQL table. Both re-read the full
// table on every Load call; the tables are small and the service
// deliberately holds no cross-request state.
package store

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/cropshield/parcel-risk-service/internal/domain"
)

// valueColumns maps each dataset to its value column header. The weather
// table has always used the generic "value" header; the other two name
// the quantity.
var valueColumns = map[domain.Dataset]string{
	domain.DatasetNDVI:      "ndvi",
	domain.DatasetElevation: "elevation",
	domain.DatasetWeather:   "value",
}

// CSVSource loads sample tables from <dataDir>/<dataset>.csv.
type CSVSource struct {
	dataDir string
}

// NewCSVSource creates a CSV-backed sample source rooted at dataDir.
func NewCSVSource(dataDir string) *CSVSource {
	return &CSVSource{dataDir: dataDir}
}

// Load reads the full table for a dataset. Any missing file, malformed
// header, unparsable row, or empty table is domain.ErrDataUnavailable;
// the caller decides whether that fails the request or falls back to a
// neutral default.
func (s *CSVSource) Load(_ context.Context, dataset domain.Dataset) ([]domain.Sample, error) {
	if !dataset.Valid() {
		return nil, fmt.Errorf("%w: unknown dataset %q", domain.ErrDataUnavailable, dataset)
	}

	path := filepath.Join(s.dataDir, string(dataset)+".csv")
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %v", domain.ErrDataUnavailable, path, err)
	}
	defer f.Close()

	samples, err := readSamples(f, valueColumns[dataset])
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrDataUnavailable, path, err)
	}
	return samples, nil
}

// readSamples parses a sample CSV: a header naming lon, lat, and the value
// column (in any order), then one sample per row.
func readSamples(r io.Reader, valueCol string) ([]domain.Sample, error) {
	reader := csv.NewReader(r)
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("no data rows")
	}

	colIdx := map[string]int{}
	for i, h := range rows[0] {
		colIdx[h] = i
	}
	lonIdx, ok := colIdx["lon"]
	if !ok {
		return nil, fmt.Errorf("missing lon column")
	}
	latIdx, ok := colIdx["lat"]
	if !ok {
		return nil, fmt.Errorf("missing lat column")
	}
	valIdx, ok := colIdx[valueCol]
	if !ok {
		return nil, fmt.Errorf("missing %s column", valueCol)
	}

	samples := make([]domain.Sample, 0, len(rows)-1)
	for n, row := range rows[1:] {
		lon, err := strconv.ParseFloat(row[lonIdx], 64)
		if err != nil {
			return nil, fmt.Errorf("row %d: bad lon %q", n+2, row[lonIdx])
		}
		lat, err := strconv.ParseFloat(row[latIdx], 64)
		if err != nil {
			return nil, fmt.Errorf("row %d: bad lat %q", n+2, row[latIdx])
		}
		val, err := strconv.ParseFloat(row[valIdx], 64)
		if err != nil {
			return nil, fmt.Errorf("row %d: bad %s %q", n+2, valueCol, row[valIdx])
		}
		samples = append(samples, domain.Sample{Lon: lon, Lat: lat, Value: val})
	}
	return samples, nil
}
