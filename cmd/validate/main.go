// Command validate checks the sample fixtures and the pricing invariants
// end to end: it loads each CSV table, aggregates them over a reference
// parcel, and verifies the scoring and premium identities phase by phase.
//
// Usage:
//
//	go run ./cmd/validate -data-dir data
package main

import (
	"context"
	"flag"
	"fmt"
	"math"
	"os"

	"github.com/cropshield/parcel-risk-service/internal/domain"
	"github.com/cropshield/parcel-risk-service/internal/store"
)

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	dataDir := flag.String("data-dir", "data", "directory containing the sample CSV tables")
	flag.Parse()

	phases := []*phase{
		validateTables(*dataDir),
		validateWeights(),
		validateScoring(),
		validatePricing(*dataDir),
	}

	failed := false
	for _, p := range phases {
		status := "PASS"
		if !p.passed() {
			status = "FAIL"
			failed = true
		}
		fmt.Printf("[%s] %s\n", status, p.name)
		for _, e := range p.errors {
			fmt.Printf("       %s\n", e)
		}
	}
	if failed {
		os.Exit(1)
	}
}

// validateTables loads each dataset table and checks value ranges.
func validateTables(dataDir string) *phase {
	p := &phase{name: "sample tables"}
	src := store.NewCSVSource(dataDir)

	ranges := map[domain.Dataset][2]float64{
		domain.DatasetNDVI:      {-1, 1},
		domain.DatasetElevation: {-500, 9000},
		domain.DatasetWeather:   {0, 1000},
	}

	for _, dataset := range domain.Datasets {
		samples, err := src.Load(context.Background(), dataset)
		if err != nil {
			p.errorf("%s: %v", dataset, err)
			continue
		}
		r := ranges[dataset]
		for i, s := range samples {
			if s.Value < r[0] || s.Value > r[1] {
				p.errorf("%s row %d: value %g outside [%g, %g]", dataset, i+1, s.Value, r[0], r[1])
				break
			}
			if s.Lon < -180 || s.Lon > 180 || s.Lat < -90 || s.Lat > 90 {
				p.errorf("%s row %d: coordinate (%g, %g) out of range", dataset, i+1, s.Lon, s.Lat)
				break
			}
		}
	}
	return p
}

// validateWeights checks the static peril weights sum to 1.0.
func validateWeights() *phase {
	p := &phase{name: "peril weights"}
	if sum := domain.WeightsSum(); math.Abs(sum-1.0) > 1e-9 {
		p.errorf("weights sum to %g, want 1.0", sum)
	}
	return p
}

// validateScoring recomputes the reference example and checks every score
// stays in range under extreme inputs.
func validateScoring() *phase {
	p := &phase{name: "peril scoring"}

	set := domain.ScorePerils(0.4, 500, 3.0)
	want := map[domain.Peril]float64{
		domain.PerilDrought:    0.45,
		domain.PerilFlood:      0.90,
		domain.PerilHail:       0.375,
		domain.PerilFrost:      0.425,
		domain.PerilPestilence: 0.32,
	}
	for peril, w := range want {
		if got := set[peril].Score; math.Abs(got-w) > 1e-9 {
			p.errorf("%s: got %g, want %g", peril, got, w)
		}
	}

	extremes := [][3]float64{
		{-1, 100000, 1000},
		{1, 0, 0},
		{0, -5000, -100},
	}
	for _, in := range extremes {
		for peril, ps := range domain.ScorePerils(in[0], in[1], in[2]) {
			if ps.Score < 0 || ps.Score > 1 {
				p.errorf("%s out of range for input %v: %g", peril, in, ps.Score)
			}
		}
	}
	return p
}

// validatePricing quotes a reference parcel over the fixtures and checks
// the total equals the sum of the rounded line items.
func validatePricing(dataDir string) *phase {
	p := &phase{name: "premium pricing"}
	src := store.NewCSVSource(dataDir)

	polygon, err := domain.ParseGeoJSON([]byte(`{"type":"Polygon","coordinates":[[[-98.6,30.9],[-98.2,30.9],[-98.2,31.2],[-98.6,31.2],[-98.6,30.9]]]}`))
	if err != nil {
		p.errorf("reference polygon: %v", err)
		return p
	}

	values := map[domain.Dataset]float64{}
	for _, dataset := range domain.Datasets {
		samples, err := src.Load(context.Background(), dataset)
		if err != nil {
			p.errorf("%s: %v", dataset, err)
			return p
		}
		values[dataset], err = domain.Aggregate(polygon, samples)
		if err != nil {
			p.errorf("%s aggregate: %v", dataset, err)
			return p
		}
	}

	set := domain.ScorePerils(values[domain.DatasetNDVI], values[domain.DatasetElevation], values[domain.DatasetWeather])
	items, total := domain.Premiums(set, polygon.AreaHectares(), 1.0, domain.DefaultBaseRate)

	var sum float64
	for _, item := range items {
		if item.Amount < 0 {
			p.errorf("%s: negative premium %g", item.Peril, item.Amount)
		}
		sum += item.Amount
	}
	if math.Abs(total-sum) > 1e-6 {
		p.errorf("total %g does not equal sum of line items %g", total, sum)
	}
	return p
}
