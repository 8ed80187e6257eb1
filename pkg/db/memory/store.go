// Package memory is an in-process Store. Transactions stage their writes in
// an overlay on top of the committed state and fold them in on commit, under
// an exclusive writer lock.
package memory

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/carverauto/assetradar/pkg/db"
	"github.com/carverauto/assetradar/pkg/models"
)

// Snapshot is the exportable form of the store's state.
type Snapshot struct {
	NextID       int64                         `json:"next_id"`
	Assets       []*models.CanonicalAsset      `json:"assets"`
	Observations []*models.SourceObservation   `json:"observations"`
	Sources      []*models.SourceRegistryEntry `json:"sources"`
}

// Delta holds the rows one committed transaction wrote. Values are shared
// with the store and must not be modified.
type Delta struct {
	NextID int64
	// Assets were created or updated, ordered by id.
	Assets []*models.CanonicalAsset
	// Deleted asset ids. Ledger rows pointing at them lose their reference.
	Deleted []int64
	// Observations were appended to the ledger, in insertion order.
	Observations []*models.SourceObservation
	Sources      []*models.SourceRegistryEntry
}

// Empty reports whether the delta changes nothing but the id sequence.
func (d *Delta) Empty() bool {
	return len(d.Assets) == 0 && len(d.Deleted) == 0 && len(d.Observations) == 0 && len(d.Sources) == 0
}

// CommitFunc durably records a delta. It runs under the writer lock before
// the delta becomes visible; an error aborts the transaction.
type CommitFunc func(ctx context.Context, d *Delta) error

// Option configures a Store.
type Option func(*Store)

// WithCommitHook installs fn as the store's CommitFunc.
func WithCommitHook(fn CommitFunc) Option {
	return func(s *Store) { s.commit = fn }
}

// indexedFields are the identity columns looked up on every ingestion.
var indexedFields = []models.AssetField{ //nolint:gochecknoglobals // fixed column set
	models.FieldSerialNumber,
	models.FieldHostName,
	models.FieldMAC,
	models.FieldIPAddress,
}

type state struct {
	nextID       int64
	assets       map[int64]*models.CanonicalAsset
	index        map[models.AssetField]map[string]map[int64]struct{}
	observations []*models.SourceObservation
	sources      map[models.SourceName]*models.SourceRegistryEntry
}

func newState() state {
	s := state{
		nextID:  1,
		assets:  make(map[int64]*models.CanonicalAsset),
		index:   make(map[models.AssetField]map[string]map[int64]struct{}, len(indexedFields)),
		sources: make(map[models.SourceName]*models.SourceRegistryEntry),
	}

	for _, f := range indexedFields {
		s.index[f] = make(map[string]map[int64]struct{})
	}

	return s
}

// candidates returns the ids that may hold value in field. ok is false when
// the field is not indexed and every asset has to be checked.
func (s *state) candidates(field models.AssetField, value string) (map[int64]struct{}, bool) {
	byValue, ok := s.index[field]
	if !ok {
		return nil, false
	}

	return byValue[value], true
}

func (s *state) indexAsset(a *models.CanonicalAsset) {
	for _, f := range indexedFields {
		if v := *a.Field(f); v != nil {
			ids := s.index[f][*v]
			if ids == nil {
				ids = make(map[int64]struct{}, 1)
				s.index[f][*v] = ids
			}

			ids[a.ID] = struct{}{}
		}
	}
}

func (s *state) unindexAsset(a *models.CanonicalAsset) {
	for _, f := range indexedFields {
		if v := *a.Field(f); v != nil {
			ids := s.index[f][*v]
			delete(ids, a.ID)

			if len(ids) == 0 {
				delete(s.index[f], *v)
			}
		}
	}
}

func (s *state) putAsset(a *models.CanonicalAsset) {
	if old, ok := s.assets[a.ID]; ok {
		s.unindexAsset(old)
	}

	s.assets[a.ID] = a
	s.indexAsset(a)
}

// apply folds a committed delta into the state. The ledger is only scanned
// when assets were deleted.
func (s *state) apply(d *Delta) {
	s.nextID = d.NextID

	if len(d.Deleted) > 0 {
		gone := make(map[int64]struct{}, len(d.Deleted))

		for _, id := range d.Deleted {
			if old, ok := s.assets[id]; ok {
				s.unindexAsset(old)
				delete(s.assets, id)
			}

			gone[id] = struct{}{}
		}

		for i, obs := range s.observations {
			if obs.CanonicalAssetID == nil {
				continue
			}

			if _, ok := gone[*obs.CanonicalAssetID]; ok {
				s.observations[i] = detach(obs)
			}
		}
	}

	for _, a := range d.Assets {
		s.putAsset(a)
	}

	s.observations = append(s.observations, d.Observations...)

	for _, e := range d.Sources {
		s.sources[e.Name] = e
	}
}

func detach(obs *models.SourceObservation) *models.SourceObservation {
	out := obs.Clone()
	out.CanonicalAssetID = nil

	return out
}

// Store is a thread-safe in-memory Store.
type Store struct {
	mu     sync.RWMutex
	state  state
	commit CommitFunc
}

var _ db.Store = (*Store)(nil)

func New(opts ...Option) *Store {
	s := &Store{state: newState()}
	for _, opt := range opts {
		opt(s)
	}

	return s
}

func (s *Store) Close() error { return nil }

func (s *Store) WithTx(ctx context.Context, fn func(tx db.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx := newTransaction(&s.state)
	if err := fn(tx); err != nil {
		return err
	}

	return s.apply(ctx, tx.delta())
}

// apply runs the commit hook and then publishes d. Callers hold s.mu.
func (s *Store) apply(ctx context.Context, d *Delta) error {
	if s.commit != nil && !d.Empty() {
		if err := s.commit(ctx, d); err != nil {
			return fmt.Errorf("commit: %w", err)
		}
	}

	s.state.apply(d)

	return nil
}

func (s *Store) GetAsset(_ context.Context, id int64) (*models.CanonicalAsset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.state.assets[id]
	if !ok {
		return nil, fmt.Errorf("%w: %d", models.ErrAssetNotFound, id)
	}

	return a.Clone(), nil
}

func (s *Store) ListSources(_ context.Context) ([]*models.SourceRegistryEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*models.SourceRegistryEntry, 0, len(s.state.sources))
	for _, e := range s.state.sources {
		out = append(out, e.Clone())
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })

	return out, nil
}

func (s *Store) GetSourceFreshness(_ context.Context, source models.SourceName) (*time.Time, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.state.sources[source]
	if !ok {
		return nil, fmt.Errorf("%w: %s", models.ErrUnknownSource, source)
	}

	return e.Clone().LastUpdate, nil
}

// EnsureSources upserts registry entries, keeping each one's freshness.
func (s *Store) EnsureSources(ctx context.Context, entries []*models.SourceRegistryEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	d := &Delta{NextID: s.state.nextID, Sources: make([]*models.SourceRegistryEntry, 0, len(entries))}

	for _, entry := range entries {
		next := entry.Clone()
		if existing, ok := s.state.sources[entry.Name]; ok {
			next.LastUpdate = existing.Clone().LastUpdate
		}

		d.Sources = append(d.Sources, next)
	}

	return s.apply(ctx, d)
}

func (s *Store) ListComparisonPage(
	_ context.Context, source models.SourceName, afterID int64, limit int,
) ([]*models.ComparisonRow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]int64, 0, len(s.state.assets))
	for id := range s.state.assets {
		if id > afterID {
			ids = append(ids, id)
		}
	}

	slices.Sort(ids)

	if limit > 0 && len(ids) > limit {
		ids = ids[:limit]
	}

	if len(ids) == 0 {
		return nil, nil
	}

	latest := make(map[int64]*models.SourceObservation, len(ids))

	for _, obs := range s.state.observations {
		if obs.Source != source || obs.CanonicalAssetID == nil {
			continue
		}

		id := *obs.CanonicalAssetID
		if id < ids[0] || id > ids[len(ids)-1] {
			continue
		}

		if obs.NewerThan(latest[id]) {
			latest[id] = obs
		}
	}

	rows := make([]*models.ComparisonRow, 0, len(ids))
	for _, id := range ids {
		rows = append(rows, models.NewComparisonRow(source, s.state.assets[id], latest[id]))
	}

	return rows, nil
}

// ExportState returns a deep copy of the committed state.
func (s *Store) ExportState() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := Snapshot{
		NextID:       s.state.nextID,
		Assets:       make([]*models.CanonicalAsset, 0, len(s.state.assets)),
		Observations: make([]*models.SourceObservation, 0, len(s.state.observations)),
		Sources:      make([]*models.SourceRegistryEntry, 0, len(s.state.sources)),
	}

	for _, a := range s.state.assets {
		snap.Assets = append(snap.Assets, a.Clone())
	}

	sort.Slice(snap.Assets, func(i, j int) bool { return snap.Assets[i].ID < snap.Assets[j].ID })

	for _, o := range s.state.observations {
		snap.Observations = append(snap.Observations, o.Clone())
	}

	for _, e := range s.state.sources {
		snap.Sources = append(snap.Sources, e.Clone())
	}

	sort.Slice(snap.Sources, func(i, j int) bool { return snap.Sources[i].Name < snap.Sources[j].Name })

	return snap
}

// ImportState replaces the committed state with snap.
func (s *Store) ImportState(snap Snapshot) {
	next := newState()

	for _, a := range snap.Assets {
		next.putAsset(a.Clone())
		if a.ID >= next.nextID {
			next.nextID = a.ID + 1
		}
	}

	if snap.NextID > next.nextID {
		next.nextID = snap.NextID
	}

	for _, o := range snap.Observations {
		next.observations = append(next.observations, o.Clone())
	}

	for _, e := range snap.Sources {
		next.sources[e.Name] = e.Clone()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.state = next
}
