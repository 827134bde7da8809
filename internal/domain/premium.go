package domain

// DefaultBaseRate is the standard base premium rate in currency units per
// hectare at full risk and full coverage.
const DefaultBaseRate = 100.0

// perilWeights splits the premium across perils. The weights are static
// and sum to 1.0; WeightsSum exposes the sum for invariant checks.
var perilWeights = map[Peril]float64{
	PerilDrought:    0.30,
	PerilFlood:      0.25,
	PerilHail:       0.15,
	PerilFrost:      0.15,
	PerilPestilence: 0.15,
}

// PerilWeight returns the static premium weight for a peril.
func PerilWeight(p Peril) float64 { return perilWeights[p] }

// WeightsSum returns the sum of the five static peril weights.
func WeightsSum() float64 {
	var sum float64
	for _, w := range perilWeights {
		sum += w
	}
	return sum
}

// PremiumLineItem is one peril's share of the premium.
type PremiumLineItem struct {
	Peril  Peril   `json:"peril"`
	Weight float64 `json:"weight"`
	Amount float64 `json:"amount"`
}

// Premiums prices each peril and totals the result. Per-peril amount is
// baseRate * score * areaHa * coverage * weight, rounded to two decimals
// independently; the total is the sum of the already-rounded line items.
// Summing rounded items keeps the total exactly equal to the printed
// breakdown, which re-rounding the raw sum does not guarantee.
//
// A zero area or zero coverage simply yields zero premiums; that is a
// degenerate input, not an error.
func Premiums(set PerilSet, areaHa, coverage, baseRate float64) ([]PremiumLineItem, float64) {
	items := make([]PremiumLineItem, 0, len(Perils))
	var total float64
	for _, peril := range Perils {
		weight := perilWeights[peril]
		amount := roundTo(baseRate*set[peril].Score*areaHa*coverage*weight, 2)
		items = append(items, PremiumLineItem{Peril: peril, Weight: weight, Amount: amount})
		total += amount
	}
	return items, roundTo(total, 2)
}
