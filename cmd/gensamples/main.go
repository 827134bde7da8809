// Command gensamples generates the three point-sample CSV tables (ndvi,
// elevation, weather) over a bounding box, with deterministic seeded
// values so fixtures are reproducible.
//
// Usage:
//
//	go run ./cmd/gensamples -out data -bbox "-98.6,30.9,-98.2,31.2" -n 200 -seed 42
package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// tableDef describes one generated table: its file, value column header,
// and value range.
type tableDef struct {
	file     string
	valueCol string
	min, max float64
	decimals int
}

var defs = []tableDef{
	{file: "ndvi.csv", valueCol: "ndvi", min: -0.1, max: 0.9, decimals: 3},
	{file: "elevation.csv", valueCol: "elevation", min: 50, max: 1800, decimals: 1},
	{file: "weather.csv", valueCol: "value", min: 0, max: 10, decimals: 2},
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	out := flag.String("out", "data", "output directory for the CSV tables")
	bbox := flag.String("bbox", "-98.6,30.9,-98.2,31.2", "bounding box as lonMin,latMin,lonMax,latMax")
	n := flag.Int("n", 200, "samples per table")
	seed := flag.Int64("seed", 42, "random seed")
	flag.Parse()

	lonMin, latMin, lonMax, latMax, err := parseBBox(*bbox)
	if err != nil {
		return err
	}
	if *n <= 0 {
		return fmt.Errorf("-n must be positive")
	}

	if err := os.MkdirAll(*out, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	rng := rand.New(rand.NewSource(*seed))
	for _, d := range defs {
		path := filepath.Join(*out, d.file)
		if err := writeTable(path, d, rng, *n, lonMin, latMin, lonMax, latMax); err != nil {
			return fmt.Errorf("writing %s: %w", d.file, err)
		}
		log.Printf("wrote %s: %d samples", path, *n)
	}
	return nil
}

func parseBBox(s string) (lonMin, latMin, lonMax, latMax float64, err error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return 0, 0, 0, 0, fmt.Errorf("bbox needs 4 comma-separated values, got %q", s)
	}
	vals := make([]float64, 4)
	for i, p := range parts {
		vals[i], err = strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return 0, 0, 0, 0, fmt.Errorf("bad bbox value %q", p)
		}
	}
	if vals[0] >= vals[2] || vals[1] >= vals[3] {
		return 0, 0, 0, 0, fmt.Errorf("bbox min must be below max: %q", s)
	}
	return vals[0], vals[1], vals[2], vals[3], nil
}

func writeTable(path string, d tableDef, rng *rand.Rand, n int, lonMin, latMin, lonMax, latMax float64) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"lon", "lat", d.valueCol}); err != nil {
		return err
	}
	for i := 0; i < n; i++ {
		lon := lonMin + rng.Float64()*(lonMax-lonMin)
		lat := latMin + rng.Float64()*(latMax-latMin)
		value := d.min + rng.Float64()*(d.max-d.min)
		row := []string{
			strconv.FormatFloat(lon, 'f', 6, 64),
			strconv.FormatFloat(lat, 'f', 6, 64),
			strconv.FormatFloat(value, 'f', d.decimals, 64),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}
