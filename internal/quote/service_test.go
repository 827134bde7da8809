package quote

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cropshield/parcel-risk-service/internal/config"
	"github.com/cropshield/parcel-risk-service/internal/domain"
	"github.com/cropshield/parcel-risk-service/internal/observability"
)

const squareGeoJSON = `{"type":"Polygon","coordinates":[[[0,0],[1,0],[1,1],[0,1],[0,0]]]}`

// fakeSource serves fixed in-memory tables; datasets without a table
// return ErrDataUnavailable like a missing backing file would. The load
// counter is locked because the service aggregates datasets concurrently.
type fakeSource struct {
	tables map[domain.Dataset][]domain.Sample

	mu    sync.Mutex
	loads int
}

func (f *fakeSource) Load(_ context.Context, dataset domain.Dataset) ([]domain.Sample, error) {
	f.mu.Lock()
	f.loads++
	f.mu.Unlock()
	samples, ok := f.tables[dataset]
	if !ok {
		return nil, fmt.Errorf("%w: no table for %s", domain.ErrDataUnavailable, dataset)
	}
	return samples, nil
}

// failingSource fails every load with a fixed error, standing in for a
// backend that breaks in a way other than missing data.
type failingSource struct{ err error }

func (f *failingSource) Load(context.Context, domain.Dataset) ([]domain.Sample, error) {
	return nil, f.err
}

type fakePublisher struct {
	published []domain.RiskReport
	err       error
}

func (f *fakePublisher) Publish(_ context.Context, report domain.RiskReport) error {
	if f.err != nil {
		return f.err
	}
	f.published = append(f.published, report)
	return nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// referenceSource yields aggregates ndvi 0.4, elevation 500, weather 3.0
// for the unit square.
func referenceSource() *fakeSource {
	return &fakeSource{tables: map[domain.Dataset][]domain.Sample{
		domain.DatasetNDVI: {
			{Lon: 0.3, Lat: 0.3, Value: 0.3},
			{Lon: 0.7, Lat: 0.7, Value: 0.5},
		},
		domain.DatasetElevation: {
			{Lon: 0.5, Lat: 0.5, Value: 500},
		},
		domain.DatasetWeather: {
			{Lon: 0.2, Lat: 0.8, Value: 2.0},
			{Lon: 0.8, Lat: 0.2, Value: 4.0},
		},
	}}
}

func newTestService(source domain.SampleSource, publisher ReportPublisher, policy string) *Service {
	cfg := &config.Config{MissingDataPolicy: policy, BaseRate: domain.DefaultBaseRate}
	return New(source, publisher, cfg, discardLogger(), observability.NewMetricsForTesting())
}

func TestQuote_ReferenceParcel(t *testing.T) {
	svc := newTestService(referenceSource(), nil, config.PolicyDefault)

	report, err := svc.Quote(context.Background(), Request{GeoJSON: []byte(squareGeoJSON), Coverage: 1.0})
	require.NoError(t, err)

	require.Len(t, report.Aggregates, 3)
	byDataset := map[domain.Dataset]domain.AggregateValue{}
	for _, a := range report.Aggregates {
		byDataset[a.Dataset] = a
	}
	assert.InDelta(t, 0.4, byDataset[domain.DatasetNDVI].Value, 1e-12)
	assert.Equal(t, 500.0, byDataset[domain.DatasetElevation].Value)
	assert.Equal(t, 3.0, byDataset[domain.DatasetWeather].Value)
	for _, a := range report.Aggregates {
		assert.False(t, a.Substituted)
	}

	assert.Equal(t, 0.494, report.RiskScore)
	assert.Equal(t, 1.0, report.Coverage)
	assert.Positive(t, report.AreaHa)
	require.Len(t, report.Premiums, 5)

	var sum float64
	for _, item := range report.Premiums {
		sum += item.Amount
	}
	assert.InDelta(t, report.Total, sum, 1e-6, "total equals the sum of rounded line items")
}

func TestQuote_ZeroCoveragePricesToZero(t *testing.T) {
	// Coverage is taken as supplied: zero is a real multiplier, not a
	// stand-in for absent, and must zero out every premium.
	svc := newTestService(referenceSource(), nil, config.PolicyDefault)

	report, err := svc.Quote(context.Background(), Request{GeoJSON: []byte(squareGeoJSON), Coverage: 0})
	require.NoError(t, err)

	assert.Equal(t, 0.0, report.Coverage)
	assert.Equal(t, 0.0, report.Total)
	require.Len(t, report.Premiums, 5)
	for _, item := range report.Premiums {
		assert.Equal(t, 0.0, item.Amount)
	}
	assert.Equal(t, 0.494, report.RiskScore, "scores are unaffected by coverage")
}

func TestQuote_InvalidGeometry(t *testing.T) {
	svc := newTestService(referenceSource(), nil, config.PolicyDefault)

	_, err := svc.Quote(context.Background(), Request{GeoJSON: []byte(`{"type":"Point","coordinates":[0,0]}`)})
	require.ErrorIs(t, err, domain.ErrInvalidGeometry)
}

func TestQuote_MissingDatasetFailPolicy(t *testing.T) {
	source := referenceSource()
	delete(source.tables, domain.DatasetWeather)
	svc := newTestService(source, nil, config.PolicyFail)

	_, err := svc.Quote(context.Background(), Request{GeoJSON: []byte(squareGeoJSON)})
	require.ErrorIs(t, err, domain.ErrDataUnavailable)
}

func TestQuote_MissingDatasetDefaultPolicy(t *testing.T) {
	source := referenceSource()
	delete(source.tables, domain.DatasetWeather)
	svc := newTestService(source, nil, config.PolicyDefault)

	report, err := svc.Quote(context.Background(), Request{GeoJSON: []byte(squareGeoJSON)})
	require.NoError(t, err)

	var weather domain.AggregateValue
	for _, a := range report.Aggregates {
		if a.Dataset == domain.DatasetWeather {
			weather = a
		}
	}
	assert.True(t, weather.Substituted, "substitution is flagged in the report")
	assert.Equal(t, domain.DatasetWeather.NeutralDefault(), weather.Value)
}

func TestQuote_UnexpectedSourceErrorFails(t *testing.T) {
	// Only ErrDataUnavailable is eligible for substitution; any other
	// source failure aborts the quote even under the default policy and
	// is counted as an internal error.
	sourceErr := errors.New("connection reset")
	metrics := observability.NewMetricsForTesting()
	cfg := &config.Config{MissingDataPolicy: config.PolicyDefault, BaseRate: domain.DefaultBaseRate}
	svc := New(&failingSource{err: sourceErr}, nil, cfg, discardLogger(), metrics)

	_, err := svc.Quote(context.Background(), Request{GeoJSON: []byte(squareGeoJSON), Coverage: 1.0})
	require.ErrorIs(t, err, sourceErr)
	assert.NotErrorIs(t, err, domain.ErrDataUnavailable)

	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.QuoteErrors.WithLabelValues("internal")))
	assert.Equal(t, 0.0, testutil.ToFloat64(metrics.QuoteErrors.WithLabelValues("data_unavailable")))
}

func TestQuote_ZeroAggregateIsNotSubstituted(t *testing.T) {
	// A dataset whose legitimate aggregate is zero must pass through
	// untouched; substitution keys on the error, not the value.
	source := referenceSource()
	source.tables[domain.DatasetWeather] = []domain.Sample{{Lon: 0.5, Lat: 0.5, Value: 0}}
	svc := newTestService(source, nil, config.PolicyDefault)

	report, err := svc.Quote(context.Background(), Request{GeoJSON: []byte(squareGeoJSON)})
	require.NoError(t, err)

	for _, a := range report.Aggregates {
		if a.Dataset == domain.DatasetWeather {
			assert.Equal(t, 0.0, a.Value)
			assert.False(t, a.Substituted)
		}
	}
}

func TestQuote_PublishesReport(t *testing.T) {
	publisher := &fakePublisher{}
	svc := newTestService(referenceSource(), publisher, config.PolicyDefault)

	report, err := svc.Quote(context.Background(), Request{GeoJSON: []byte(squareGeoJSON)})
	require.NoError(t, err)

	require.Len(t, publisher.published, 1)
	assert.Equal(t, report.ID, publisher.published[0].ID)
}

func TestQuote_PublishFailureDoesNotFailQuote(t *testing.T) {
	publisher := &fakePublisher{err: errors.New("broker down")}
	svc := newTestService(referenceSource(), publisher, config.PolicyDefault)

	_, err := svc.Quote(context.Background(), Request{GeoJSON: []byte(squareGeoJSON)})
	require.NoError(t, err)
}

func TestQuote_LoadsEveryTablePerCall(t *testing.T) {
	source := referenceSource()
	svc := newTestService(source, nil, config.PolicyDefault)

	_, err := svc.Quote(context.Background(), Request{GeoJSON: []byte(squareGeoJSON)})
	require.NoError(t, err)
	_, err = svc.Quote(context.Background(), Request{GeoJSON: []byte(squareGeoJSON)})
	require.NoError(t, err)

	assert.Equal(t, 6, source.loads, "three tables loaded fresh on each quote")
}

func TestCheckReadiness(t *testing.T) {
	t.Run("ready when the source serves a table", func(t *testing.T) {
		svc := newTestService(referenceSource(), nil, config.PolicyDefault)
		require.NoError(t, svc.CheckReadiness(context.Background()))
	})

	t.Run("not ready when the source fails", func(t *testing.T) {
		svc := newTestService(&fakeSource{}, nil, config.PolicyDefault)
		require.Error(t, svc.CheckReadiness(context.Background()))
	})
}
