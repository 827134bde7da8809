// Package domain implements the parcel risk computation: spatial aggregation
// of point-sampled datasets over a land parcel, multi-peril scoring, and
// premium pricing.
//
// # Datasets
//
// Three point-sample tables stand in for raster data, each a flat sequence of
// (lon, lat, value) triples in WGS-84 coordinates:
//
//	ndvi:      normalized difference vegetation index, nominally [-1, 1]
//	elevation: meters above sea level
//	weather:   application-defined wetness value, nominally [0, 10]
//
// Tables are reloaded from their backing source on every aggregation call.
// The tables are small enough that this is acceptable; it is a known scaling
// limit, not something the core works around.
//
// # Aggregation
//
// A dataset's aggregate for a parcel is the arithmetic mean of all samples
// contained in the parcel polygon. Containment uses even-odd ray casting;
// points on the boundary count as contained. When no sample falls inside the
// parcel, the aggregate falls back to the value of the sample nearest to the
// polygon's area-weighted centroid (Euclidean distance in coordinate space,
// ties broken by first occurrence in the input). An entirely empty table is
// ErrDataUnavailable; the aggregator never fabricates a value.
//
// # Perils
//
// Five perils are scored from the three aggregates, each clamped to [0, 1]
// and rounded to three decimals:
//
//	drought:    max(0, 1 - (ndvi + weather/20))
//	flood:      max(0, 1 - elevation/2000 + weather/20)
//	hail:       min(1, (elevation/2000)*0.7 + 0.2)
//	frost:      min(1, (elevation/2000)*0.5 + (1-ndvi)*0.5)
//	pestilence: min(1, ndvi*0.8)
//
// Each score carries an explanation naming its severity bucket: high above
// 0.6, moderate above 0.3, low otherwise. The overall risk score is the
// unweighted mean of the five.
//
// # Premiums
//
// Per-peril premium = baseRate * score * areaHa * coverage * perilWeight,
// with static weights (drought 0.30, flood 0.25, hail 0.15, frost 0.15,
// pestilence 0.15) summing to 1.0. Each line item is rounded to two decimals
// independently and the total is the sum of the rounded items. Summing
// rounded items rather than rounding the raw sum keeps totals exactly
// reproducible against the itemized breakdown.
//
// # Missing data
//
// ErrDataUnavailable is a policy decision for the caller, not the scorer:
// the scorer always receives concrete numbers. When the boundary layer opts
// to substitute, it uses the documented neutral defaults (ndvi 0.5,
// elevation 1000 m, weather 5) and records the substitution. Substitution
// keys on the error, never on a zero-valued aggregate.
package domain
