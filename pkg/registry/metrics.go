package registry

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

const (
	registryMeterName = "assetradar.registry"

	metricObservationsIngestedName = "registry_observations_ingested_total"
	metricAssetsCreatedName        = "registry_assets_created_total"
	metricResolutionRacesName      = "registry_resolution_races_total"
	metricIngestDurationName       = "registry_ingest_duration_ms"
	metricIngestInFlightName       = "registry_ingest_in_flight"
)

// Ingestion outcomes recorded on registry_observations_ingested_total.
const (
	outcomeCreated  = "created"
	outcomeMerged   = "merged"
	outcomeRejected = "rejected"
	outcomeStale    = "stale"
	outcomeFailed   = "failed"
)

var (
	//nolint:gochecknoglobals // metric instruments are shared singletons
	registryMetricsOnce sync.Once
	//nolint:gochecknoglobals // metric instruments are shared singletons
	registryInstruments struct {
		ingested metric.Int64Counter
		created  metric.Int64Counter
		races    metric.Int64Counter
		duration metric.Float64Histogram
		inFlight metric.Int64ObservableGauge
	}
	//nolint:gochecknoglobals // metric observers are shared singletons
	registryInFlight atomic.Int64
)

func initRegistryMetrics() {
	meter := otel.Meter(registryMeterName)
	fallback := noop.NewMeterProvider().Meter(registryMeterName)

	var err error

	if registryInstruments.ingested, err = meter.Int64Counter(
		metricObservationsIngestedName,
		metric.WithDescription("Observations processed by the registry, by source and outcome"),
	); err != nil {
		otel.Handle(err)
		registryInstruments.ingested, _ = fallback.Int64Counter(metricObservationsIngestedName)
	}

	if registryInstruments.created, err = meter.Int64Counter(
		metricAssetsCreatedName,
		metric.WithDescription("Canonical assets created by resolution"),
	); err != nil {
		otel.Handle(err)
		registryInstruments.created, _ = fallback.Int64Counter(metricAssetsCreatedName)
	}

	if registryInstruments.races, err = meter.Int64Counter(
		metricResolutionRacesName,
		metric.WithDescription("Ingestion units re-run after a concurrent resolution conflict"),
	); err != nil {
		otel.Handle(err)
		registryInstruments.races, _ = fallback.Int64Counter(metricResolutionRacesName)
	}

	if registryInstruments.duration, err = meter.Float64Histogram(
		metricIngestDurationName,
		metric.WithDescription("Wall time of one ingestion including retries"),
		metric.WithUnit("ms"),
	); err != nil {
		otel.Handle(err)
		registryInstruments.duration, _ = fallback.Float64Histogram(metricIngestDurationName)
	}

	registryInstruments.inFlight, err = meter.Int64ObservableGauge(
		metricIngestInFlightName,
		metric.WithDescription("Ingestion units currently running"),
		metric.WithInt64Callback(func(_ context.Context, observer metric.Int64Observer) error {
			observer.Observe(registryInFlight.Load())
			return nil
		}),
	)
	if err != nil {
		otel.Handle(err)
	}
}

func recordIngest(ctx context.Context, source, outcome string, elapsed time.Duration) {
	registryMetricsOnce.Do(initRegistryMetrics)

	attrs := metric.WithAttributes(
		attribute.String("source", source),
		attribute.String("outcome", outcome),
	)

	registryInstruments.ingested.Add(ctx, 1, attrs)
	registryInstruments.duration.Record(ctx, float64(elapsed.Microseconds())/1000, attrs)

	if outcome == outcomeCreated {
		registryInstruments.created.Add(ctx, 1, metric.WithAttributes(attribute.String("source", source)))
	}
}

func recordRace(ctx context.Context, source string) {
	registryMetricsOnce.Do(initRegistryMetrics)

	registryInstruments.races.Add(ctx, 1, metric.WithAttributes(attribute.String("source", source)))
}
