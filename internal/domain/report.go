package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"
)

// AggregateValue is one dataset's aggregate as it appears in a report,
// with a flag marking whether the neutral default was substituted because
// the dataset was unavailable.
type AggregateValue struct {
	Dataset     Dataset `json:"dataset"`
	Value       float64 `json:"value"`
	Substituted bool    `json:"substituted,omitempty"`
}

// RiskReport is the single result object the core hands to the boundary
// layer: raw aggregates, peril scores, overall risk, and the premium
// breakdown, all plain fields ready for serialization.
type RiskReport struct {
	ID         string            `json:"id"`
	Aggregates []AggregateValue  `json:"aggregates"`
	Perils     []PerilScore      `json:"perils"`
	RiskScore  float64           `json:"risk_score"`
	AreaHa     float64           `json:"area_ha"`
	Coverage   float64           `json:"coverage"`
	Premiums   []PremiumLineItem `json:"premiums"`
	Total      float64           `json:"total_premium"`

	GeneratedAt time.Time `json:"generated_at"`
}

// NewRiskReport assembles a report from the scored perils and premium
// breakdown. Peril scores are emitted in the fixed Perils order so the
// serialized report is stable. The ID is a deterministic hash of the
// pricing inputs, so re-quoting the same parcel against the same data
// yields the same ID.
func NewRiskReport(aggregates []AggregateValue, set PerilSet, areaHa, coverage float64, items []PremiumLineItem, total float64) RiskReport {
	perils := make([]PerilScore, 0, len(Perils))
	for _, p := range Perils {
		perils = append(perils, set[p])
	}
	return RiskReport{
		ID:          reportID(aggregates, areaHa, coverage),
		Aggregates:  aggregates,
		Perils:      perils,
		RiskScore:   OverallRisk(set),
		AreaHa:      roundTo(areaHa, 2),
		Coverage:    coverage,
		Premiums:    items,
		Total:       total,
		GeneratedAt: clock.Now().UTC(),
	}
}

// reportID hashes the aggregates, area, and coverage into a short stable
// identifier used as the publish key downstream.
func reportID(aggregates []AggregateValue, areaHa, coverage float64) string {
	input := fmt.Sprintf("%.2f|%g", areaHa, coverage)
	for _, a := range aggregates {
		input += fmt.Sprintf("|%s=%g", a.Dataset, a.Value)
	}
	hash := sha256.Sum256([]byte(input))
	return "quote-" + hex.EncodeToString(hash[:8])
}
