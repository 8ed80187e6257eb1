package memory

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/carverauto/assetradar/pkg/db"
	"github.com/carverauto/assetradar/pkg/models"
)

// transaction reads through to the committed state and keeps its own writes
// aside. A nil entry in assets marks a deletion.
type transaction struct {
	base         *state
	nextID       int64
	assets       map[int64]*models.CanonicalAsset
	observations []*models.SourceObservation
	sources      map[models.SourceName]*models.SourceRegistryEntry
}

var _ db.Tx = (*transaction)(nil)

func newTransaction(base *state) *transaction {
	return &transaction{
		base:    base,
		nextID:  base.nextID,
		assets:  make(map[int64]*models.CanonicalAsset),
		sources: make(map[models.SourceName]*models.SourceRegistryEntry),
	}
}

func (tx *transaction) asset(id int64) (*models.CanonicalAsset, bool) {
	if a, ok := tx.assets[id]; ok {
		return a, a != nil
	}

	a, ok := tx.base.assets[id]

	return a, ok
}

func (tx *transaction) source(name models.SourceName) (*models.SourceRegistryEntry, bool) {
	if e, ok := tx.sources[name]; ok {
		return e, true
	}

	e, ok := tx.base.sources[name]

	return e, ok
}

// LockIdentities is a no-op: WithTx already holds the writer lock.
func (tx *transaction) LockIdentities(context.Context, []string) error { return nil }

func (tx *transaction) FindAssetByField(_ context.Context, field models.AssetField, value string) (int64, bool, error) {
	if (&models.CanonicalAsset{}).Field(field) == nil {
		return 0, false, fmt.Errorf("%w: %s", db.ErrUnsupportedField, field)
	}

	id, ok := tx.lowestMatch(field, value, 0)

	return id, ok, nil
}

// lowestMatch returns the lowest id other than skip whose column equals
// value. Null columns never match.
func (tx *transaction) lowestMatch(field models.AssetField, value string, skip int64) (int64, bool) {
	var (
		found int64
		ok    bool
	)

	consider := func(id int64, a *models.CanonicalAsset) {
		if id == skip || a == nil || (ok && id >= found) {
			return
		}

		if col := *a.Field(field); col != nil && *col == value {
			found, ok = id, true
		}
	}

	if ids, indexed := tx.base.candidates(field, value); indexed {
		for id := range ids {
			if _, staged := tx.assets[id]; !staged {
				consider(id, tx.base.assets[id])
			}
		}
	} else {
		for id, a := range tx.base.assets {
			if _, staged := tx.assets[id]; !staged {
				consider(id, a)
			}
		}
	}

	for id, a := range tx.assets {
		consider(id, a)
	}

	return found, ok
}

func (tx *transaction) GetAsset(_ context.Context, id int64) (*models.CanonicalAsset, error) {
	a, ok := tx.asset(id)
	if !ok {
		return nil, fmt.Errorf("%w: %d", models.ErrAssetNotFound, id)
	}

	return a.Clone(), nil
}

func (tx *transaction) CreateAsset(_ context.Context, asset *models.CanonicalAsset) (int64, error) {
	if asset == nil {
		return 0, db.ErrAssetNil
	}

	next := asset.Clone()
	next.ID = tx.nextID

	if err := tx.checkSerial(next); err != nil {
		return 0, err
	}

	tx.nextID++
	tx.assets[next.ID] = next

	return next.ID, nil
}

func (tx *transaction) UpdateAsset(_ context.Context, asset *models.CanonicalAsset) error {
	if asset == nil {
		return db.ErrAssetNil
	}

	if _, ok := tx.asset(asset.ID); !ok {
		return fmt.Errorf("%w: %d", models.ErrAssetNotFound, asset.ID)
	}

	if err := tx.checkSerial(asset); err != nil {
		return err
	}

	tx.assets[asset.ID] = asset.Clone()

	return nil
}

// DeleteAsset removes the asset and nulls every ledger reference to it.
// Committed ledger rows are detached when the transaction commits.
func (tx *transaction) DeleteAsset(_ context.Context, id int64) error {
	if _, ok := tx.asset(id); !ok {
		return fmt.Errorf("%w: %d", models.ErrAssetNotFound, id)
	}

	tx.assets[id] = nil

	for i, obs := range tx.observations {
		if obs.CanonicalAssetID != nil && *obs.CanonicalAssetID == id {
			tx.observations[i] = detach(obs)
		}
	}

	return nil
}

func (tx *transaction) InsertObservation(_ context.Context, obs *models.SourceObservation) error {
	if obs == nil {
		return db.ErrObservationNil
	}

	if obs.CanonicalAssetID != nil {
		if _, ok := tx.asset(*obs.CanonicalAssetID); !ok {
			return fmt.Errorf("%w: %d", models.ErrStaleAssetReference, *obs.CanonicalAssetID)
		}
	}

	tx.observations = append(tx.observations, obs.Clone())

	return nil
}

func (tx *transaction) TouchSource(_ context.Context, source models.SourceName, at time.Time) error {
	e, ok := tx.source(source)
	if !ok {
		return fmt.Errorf("%w: %s", models.ErrUnknownSource, source)
	}

	next := e.Clone()
	next.LastUpdate = &at
	tx.sources[source] = next

	return nil
}

func (tx *transaction) checkSerial(asset *models.CanonicalAsset) error {
	if asset.SerialNumber == nil {
		return nil
	}

	if id, ok := tx.lowestMatch(models.FieldSerialNumber, *asset.SerialNumber, asset.ID); ok {
		return fmt.Errorf("%w: %q held by asset %d", models.ErrDuplicateSerialNumber, *asset.SerialNumber, id)
	}

	return nil
}

// delta lists the staged writes in a stable order.
func (tx *transaction) delta() *Delta {
	d := &Delta{NextID: tx.nextID, Observations: tx.observations}

	ids := make([]int64, 0, len(tx.assets))
	for id := range tx.assets {
		ids = append(ids, id)
	}

	slices.Sort(ids)

	for _, id := range ids {
		if a := tx.assets[id]; a != nil {
			d.Assets = append(d.Assets, a)
		} else if _, committed := tx.base.assets[id]; committed {
			d.Deleted = append(d.Deleted, id)
		}
	}

	names := make([]models.SourceName, 0, len(tx.sources))
	for name := range tx.sources {
		names = append(names, name)
	}

	slices.Sort(names)

	for _, name := range names {
		d.Sources = append(d.Sources, tx.sources[name])
	}

	return d
}
