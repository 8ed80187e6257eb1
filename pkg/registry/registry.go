/*
 * Copyright 2025 Carver Automation Corporation.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */
// Package registry implements the canonical asset registry: entity
// resolution, field merge and the atomic ingestion unit that ties them to
// the source ledgers and the source registry.
package registry

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/carverauto/assetradar/pkg/db"
	"github.com/carverauto/assetradar/pkg/logger"
	"github.com/carverauto/assetradar/pkg/models"
	"github.com/carverauto/assetradar/pkg/sources"
)

const (
	defaultMaxRaceRetries = 3
	defaultRaceBackoff    = 50 * time.Millisecond
	tracerName            = "assetradar.registry"
)

// Request is one observation submitted for ingestion.
type Request struct {
	Source     string
	Fields     map[string]any
	ObservedAt time.Time
	// AssetID, when set, skips matching and merges into that asset.
	AssetID *int64
}

// Result reports where an observation ended up.
type Result struct {
	AssetID       int64  `json:"asset_id"`
	ObservationID string `json:"observation_id"`
	Created       bool   `json:"created"`
}

// Registry is the Manager backed by a db.Store.
type Registry struct {
	store  db.Store
	logger logger.Logger
	tracer trace.Tracer
	locks  *keyLocker

	now            func() time.Time
	newID          func() (string, error)
	sleep          func(ctx context.Context, d time.Duration) error
	maxRaceRetries int
	raceBackoff    time.Duration
}

var _ Manager = (*Registry)(nil)

// Option configures a Registry.
type Option func(*Registry)

// WithClock overrides the wall clock used for recorded_at, updated_at and
// source freshness.
func WithClock(now func() time.Time) Option {
	return func(r *Registry) {
		if now != nil {
			r.now = now
		}
	}
}

// WithRaceRetries sets how many times a unit that lost a resolution race is
// re-run and the base delay between attempts.
func WithRaceRetries(maxRetries int, backoff time.Duration) Option {
	return func(r *Registry) {
		if maxRetries >= 0 {
			r.maxRaceRetries = maxRetries
		}

		if backoff >= 0 {
			r.raceBackoff = backoff
		}
	}
}

// WithIDGenerator overrides observation id generation.
func WithIDGenerator(gen func() (string, error)) Option {
	return func(r *Registry) {
		if gen != nil {
			r.newID = gen
		}
	}
}

// WithConfig applies the registry section of the service configuration.
func WithConfig(cfg models.RegistryConfig) Option {
	return func(r *Registry) {
		if cfg.MaxRaceRetries > 0 {
			r.maxRaceRetries = cfg.MaxRaceRetries
		}

		if cfg.RaceBackoff > 0 {
			r.raceBackoff = time.Duration(cfg.RaceBackoff)
		}
	}
}

// New builds a Registry over store.
func New(store db.Store, log logger.Logger, opts ...Option) *Registry {
	r := &Registry{
		store:          store,
		logger:         log.WithComponent("registry"),
		tracer:         otel.Tracer(tracerName),
		locks:          newKeyLocker(),
		now:            func() time.Time { return time.Now().UTC() },
		newID:          newObservationID,
		sleep:          sleepContext,
		maxRaceRetries: defaultMaxRaceRetries,
		raceBackoff:    defaultRaceBackoff,
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Provision registers every known source with the store. It is idempotent
// and leaves existing freshness untouched.
func (r *Registry) Provision(ctx context.Context) error {
	if err := r.store.EnsureSources(ctx, sources.RegistryEntries()); err != nil {
		return fmt.Errorf("provision sources: %w", err)
	}

	return nil
}

func (r *Registry) IngestObservation(
	ctx context.Context, source string, fields map[string]any, observedAt time.Time,
) (int64, error) {
	res, err := r.Ingest(ctx, &Request{Source: source, Fields: fields, ObservedAt: observedAt})
	if err != nil {
		return 0, err
	}

	return res.AssetID, nil
}

func (r *Registry) Ingest(ctx context.Context, req *Request) (*Result, error) {
	start := time.Now()

	ctx, span := r.tracer.Start(ctx, "registry.Ingest", trace.WithAttributes(attribute.String("source", req.Source)))
	defer span.End()

	res, err := r.ingest(ctx, req)

	outcome := outcomeFor(res, err)
	recordIngest(ctx, req.Source, outcome, time.Since(start))

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, outcome)

		return nil, err
	}

	span.SetAttributes(
		attribute.Int64("asset_id", res.AssetID),
		attribute.Bool("created", res.Created),
	)

	return res, nil
}

func (r *Registry) ingest(ctx context.Context, req *Request) (*Result, error) {
	desc, err := sources.Lookup(req.Source)
	if err != nil {
		return nil, err
	}

	obs, err := desc.Decode(req.Fields, req.ObservedAt)
	if err != nil {
		return nil, err
	}

	if req.AssetID != nil {
		id := *req.AssetID
		obs.CanonicalAssetID = &id
	}

	if obs.ID, err = r.newID(); err != nil {
		return nil, fmt.Errorf("observation id: %w", err)
	}

	keys := desc.IdentityKeys(obs)

	unlock := r.locks.Lock(keys)
	defer unlock()

	registryInFlight.Add(1)
	defer registryInFlight.Add(-1)

	for attempt := 1; ; attempt++ {
		res, err := r.ingestOnce(ctx, desc, obs, keys)
		if err == nil {
			r.logger.Debug().
				Str("source", string(desc.Name)).
				Int64("asset_id", res.AssetID).
				Bool("created", res.Created).
				Int("attempt", attempt).
				Msg("observation ingested")

			return res, nil
		}

		if !errors.Is(err, models.ErrResolutionRace) {
			return nil, err
		}

		if attempt > r.maxRaceRetries {
			return nil, fmt.Errorf("giving up after %d attempts: %w", attempt, err)
		}

		recordRace(ctx, string(desc.Name))

		delay := raceBackoffDelay(attempt, r.raceBackoff)

		r.logger.Warn().
			Err(err).
			Str("source", string(desc.Name)).
			Int("attempt", attempt).
			Int("max_retries", r.maxRaceRetries).
			Dur("backoff", delay).
			Msg("resolution race, re-running ingestion")

		if err := r.sleep(ctx, delay); err != nil {
			return nil, err
		}
	}
}

// ingestOnce runs resolve, ledger append, merge and the freshness bump as
// one store transaction.
func (r *Registry) ingestOnce(
	ctx context.Context, desc *sources.Descriptor, obs *models.SourceObservation, keys []string,
) (*Result, error) {
	now := r.now()

	rec := obs.Clone()
	rec.RecordedAt = now

	res := &Result{ObservationID: rec.ID}

	err := r.store.WithTx(ctx, func(tx db.Tx) error {
		if err := tx.LockIdentities(ctx, keys); err != nil {
			return err
		}

		assetID, created, err := Resolve(ctx, tx, desc, rec)
		if err != nil {
			return err
		}

		rec.CanonicalAssetID = &assetID

		if err := tx.InsertObservation(ctx, rec); err != nil {
			return fmt.Errorf("record observation: %w", err)
		}

		if err := Merge(ctx, tx, assetID, rec, desc, now); err != nil {
			return fmt.Errorf("merge into asset %d: %w", assetID, err)
		}

		res.AssetID = assetID
		res.Created = created

		return nil
	})
	if err != nil {
		return nil, err
	}

	return res, nil
}

func (r *Registry) GetAsset(ctx context.Context, id int64) (*models.CanonicalAsset, error) {
	return r.store.GetAsset(ctx, id)
}

// AmendAsset applies an administrative correction. Nil patch fields leave
// the column alone and serial numbers stay unique.
func (r *Registry) AmendAsset(ctx context.Context, id int64, patch *models.AssetPatch) (*models.CanonicalAsset, error) {
	var amended *models.CanonicalAsset

	err := r.store.WithTx(ctx, func(tx db.Tx) error {
		asset, err := tx.GetAsset(ctx, id)
		if err != nil {
			return err
		}

		for field, value := range patch.Fields() {
			if v := sources.Normalize(field, value); v != "" {
				*asset.Field(field) = &v
			}
		}

		asset.UpdatedAt = r.now()

		if err := tx.UpdateAsset(ctx, asset); err != nil {
			return err
		}

		amended = asset

		return nil
	})
	if err != nil {
		return nil, err
	}

	r.logger.Info().Int64("asset_id", id).Msg("asset amended")

	return amended, nil
}

// DeleteAsset removes an asset. Its observations stay in the ledgers with
// the reference cleared.
func (r *Registry) DeleteAsset(ctx context.Context, id int64) error {
	err := r.store.WithTx(ctx, func(tx db.Tx) error {
		return tx.DeleteAsset(ctx, id)
	})
	if err != nil {
		return err
	}

	r.logger.Info().Int64("asset_id", id).Msg("asset deleted")

	return nil
}

// GetSourceFreshness returns the last successful ingestion time for source;
// ok is false when the source has never been ingested.
func (r *Registry) GetSourceFreshness(ctx context.Context, source string) (time.Time, bool, error) {
	desc, err := sources.Lookup(source)
	if err != nil {
		return time.Time{}, false, err
	}

	last, err := r.store.GetSourceFreshness(ctx, desc.Name)
	if err != nil {
		return time.Time{}, false, err
	}

	if last == nil {
		return time.Time{}, false, nil
	}

	return *last, true, nil
}

func (r *Registry) ListSources(ctx context.Context) ([]*models.SourceRegistryEntry, error) {
	return r.store.ListSources(ctx)
}

func outcomeFor(res *Result, err error) string {
	switch {
	case err == nil && res.Created:
		return outcomeCreated
	case err == nil:
		return outcomeMerged
	case models.IsValidation(err), errors.Is(err, models.ErrDuplicateSerialNumber):
		return outcomeRejected
	case errors.Is(err, models.ErrStaleAssetReference):
		return outcomeStale
	default:
		return outcomeFailed
	}
}

// raceBackoffDelay is exponential in attempt with up to one base of jitter
// so that retries of colliding units do not line up again.
func raceBackoffDelay(attempt int, base time.Duration) time.Duration {
	if base <= 0 {
		return 0
	}

	if attempt < 1 {
		attempt = 1
	}

	return base*time.Duration(1<<(attempt-1)) + time.Duration(rand.Int64N(int64(base)))
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func newObservationID() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", err
	}

	return id.String(), nil
}
