// Package quote orchestrates a risk quote end to end: polygon validation,
// per-dataset spatial aggregation, peril scoring, and premium pricing.
package quote

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cropshield/parcel-risk-service/internal/config"
	"github.com/cropshield/parcel-risk-service/internal/domain"
	"github.com/cropshield/parcel-risk-service/internal/observability"
)

// ReportPublisher forwards a completed report to a downstream sink.
// Publishing is best effort; failures never fail the quote.
type ReportPublisher interface {
	Publish(ctx context.Context, report domain.RiskReport) error
}

// Request is one quote request as the boundary layer hands it over.
// Coverage arrives already defaulted: the boundary substitutes 1.0 only
// when the field was absent, so an explicit zero prices to zero.
type Request struct {
	GeoJSON  []byte
	Coverage float64
}

// Service computes risk quotes. It holds no per-request state: each quote
// loads its own copy of every sample table.
type Service struct {
	source    domain.SampleSource
	publisher ReportPublisher
	logger    *slog.Logger
	metrics   *observability.Metrics

	policy   string
	baseRate float64
	ready    atomic.Bool
}

// New creates a quote Service. Pass a nil publisher to disable report
// publishing.
func New(source domain.SampleSource, publisher ReportPublisher, cfg *config.Config, logger *slog.Logger, metrics *observability.Metrics) *Service {
	return &Service{
		source:    source,
		publisher: publisher,
		logger:    logger,
		metrics:   metrics,
		policy:    cfg.MissingDataPolicy,
		baseRate:  cfg.BaseRate,
	}
}

// CheckReadiness reports whether the sample source can serve a table. The
// first successful quote also marks the service ready.
func (s *Service) CheckReadiness(ctx context.Context) error {
	if s.ready.Load() {
		return nil
	}
	if _, err := s.source.Load(ctx, domain.DatasetNDVI); err != nil {
		return fmt.Errorf("sample source not ready: %w", err)
	}
	s.ready.Store(true)
	return nil
}

// Quote runs one full risk computation. Error classes the boundary layer
// distinguishes: domain.ErrInvalidGeometry (client input) and
// domain.ErrDataUnavailable (upstream data, surfaced only under the fail
// policy).
func (s *Service) Quote(ctx context.Context, req Request) (domain.RiskReport, error) {
	start := time.Now()

	polygon, err := domain.ParseGeoJSON(req.GeoJSON)
	if err != nil {
		s.metrics.QuoteErrors.WithLabelValues("invalid_geometry").Inc()
		return domain.RiskReport{}, err
	}

	aggregates, err := s.aggregateAll(ctx, polygon)
	if err != nil {
		reason := "internal"
		if errors.Is(err, domain.ErrDataUnavailable) {
			reason = "data_unavailable"
		}
		s.metrics.QuoteErrors.WithLabelValues(reason).Inc()
		return domain.RiskReport{}, err
	}

	byDataset := make(map[domain.Dataset]float64, len(aggregates))
	for _, a := range aggregates {
		byDataset[a.Dataset] = a.Value
	}

	perils := domain.ScorePerils(
		byDataset[domain.DatasetNDVI],
		byDataset[domain.DatasetElevation],
		byDataset[domain.DatasetWeather],
	)
	areaHa := polygon.AreaHectares()
	items, total := domain.Premiums(perils, areaHa, req.Coverage, s.baseRate)

	report := domain.NewRiskReport(aggregates, perils, areaHa, req.Coverage, items, total)

	s.metrics.QuotesTotal.Inc()
	s.metrics.QuoteDuration.Observe(time.Since(start).Seconds())
	s.ready.Store(true)

	s.logger.Info("quote computed",
		"report_id", report.ID,
		"area_ha", report.AreaHa,
		"risk_score", report.RiskScore,
		"total_premium", report.Total,
	)

	s.publish(ctx, report)
	return report, nil
}

// aggregateAll runs the three dataset aggregations concurrently. The
// datasets are independent tables sharing only the immutable polygon, so
// the order of completion is unobservable in the result.
func (s *Service) aggregateAll(ctx context.Context, polygon domain.Polygon) ([]domain.AggregateValue, error) {
	results := make([]domain.AggregateValue, len(domain.Datasets))
	errs := make([]error, len(domain.Datasets))

	var wg sync.WaitGroup
	for i, dataset := range domain.Datasets {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i], errs[i] = s.aggregateOne(ctx, polygon, dataset)
		}()
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			return nil, fmt.Errorf("dataset %s: %w", domain.Datasets[i], err)
		}
	}
	return results, nil
}

// aggregateOne loads one dataset table and aggregates it over the polygon,
// applying the configured missing-data policy on ErrDataUnavailable.
func (s *Service) aggregateOne(ctx context.Context, polygon domain.Polygon, dataset domain.Dataset) (domain.AggregateValue, error) {
	samples, err := s.source.Load(ctx, dataset)
	if err == nil {
		s.metrics.DatasetSamples.WithLabelValues(string(dataset)).Observe(float64(len(samples)))

		var value float64
		var fallback bool
		value, fallback, err = domain.AggregateDetailed(polygon, samples)
		if err == nil {
			if fallback {
				s.metrics.AggregationFallbacks.WithLabelValues(string(dataset)).Inc()
				s.logger.Debug("aggregation fell back to nearest sample", "dataset", dataset)
			}
			return domain.AggregateValue{Dataset: dataset, Value: value}, nil
		}
	}

	if !errors.Is(err, domain.ErrDataUnavailable) || s.policy == config.PolicyFail {
		return domain.AggregateValue{}, err
	}

	// Substitution is an explicit policy decision: it happens only here,
	// only on ErrDataUnavailable, and is flagged in the report. A
	// legitimate zero aggregate never triggers it.
	s.metrics.DatasetSubstituted.WithLabelValues(string(dataset)).Inc()
	s.logger.Warn("dataset unavailable, substituting neutral default",
		"dataset", dataset,
		"default", dataset.NeutralDefault(),
		"error", err,
	)
	return domain.AggregateValue{
		Dataset:     dataset,
		Value:       dataset.NeutralDefault(),
		Substituted: true,
	}, nil
}

// publish forwards the report to the sink when publishing is configured.
func (s *Service) publish(ctx context.Context, report domain.RiskReport) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, report); err != nil {
		s.metrics.PublishErrors.Inc()
		s.logger.Warn("report publish failed", "report_id", report.ID, "error", err)
		return
	}
	s.metrics.ReportsPublished.Inc()
}
