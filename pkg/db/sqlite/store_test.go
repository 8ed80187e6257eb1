package sqlite

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carverauto/assetradar/pkg/db"
	"github.com/carverauto/assetradar/pkg/models"
)

func TestStore_PersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "assets.db")

	s, err := NewStore(ctx, path)
	require.NoError(t, err)
	require.NoError(t, s.EnsureSources(ctx, []*models.SourceRegistryEntry{{Name: models.SourceHBSS}}))

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	var id int64

	require.NoError(t, s.WithTx(ctx, func(tx db.Tx) error {
		var err error

		id, err = tx.CreateAsset(ctx, &models.CanonicalAsset{
			MAC:          models.StringPtr("AA:BB"),
			SerialNumber: models.StringPtr("SN-1"),
			LastSeen:     &now,
		})
		if err != nil {
			return err
		}

		if err := tx.InsertObservation(ctx, &models.SourceObservation{
			ID: "0190c6d2-0000-7000-8000-000000000001", Source: models.SourceHBSS,
			CanonicalAssetID: &id, MAC: models.StringPtr("AA:BB"), ObservedAt: now, RecordedAt: now,
		}); err != nil {
			return err
		}

		return tx.TouchSource(ctx, models.SourceHBSS, now)
	}))
	require.NoError(t, s.Close())

	reopened, err := NewStore(ctx, path)
	require.NoError(t, err)

	t.Cleanup(func() { _ = reopened.Close() })

	asset, err := reopened.GetAsset(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "SN-1", *asset.SerialNumber)
	assert.True(t, now.Equal(*asset.LastSeen))

	last, err := reopened.GetSourceFreshness(ctx, models.SourceHBSS)
	require.NoError(t, err)
	require.NotNil(t, last)
	assert.True(t, now.Equal(*last))

	rows, err := reopened.ListComparisonPage(ctx, models.SourceHBSS, 0, 10)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.True(t, rows[0].HasObservation())

	// ids keep increasing after reload
	require.NoError(t, reopened.WithTx(ctx, func(tx db.Tx) error {
		next, err := tx.CreateAsset(ctx, &models.CanonicalAsset{})
		assert.Equal(t, id+1, next)

		return err
	}))
}

func TestStore_FailedTxIsNotPersisted(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "assets.db")

	s, err := NewStore(ctx, path)
	require.NoError(t, err)

	err = s.WithTx(ctx, func(tx db.Tx) error {
		if _, err := tx.CreateAsset(ctx, &models.CanonicalAsset{SerialNumber: models.StringPtr("X")}); err != nil {
			return err
		}

		_, err := tx.CreateAsset(ctx, &models.CanonicalAsset{SerialNumber: models.StringPtr("X")})

		return err
	})
	require.ErrorIs(t, err, models.ErrDuplicateSerialNumber)
	require.NoError(t, s.Close())

	reopened, err := NewStore(ctx, path)
	require.NoError(t, err)

	t.Cleanup(func() { _ = reopened.Close() })

	_, err = reopened.GetAsset(ctx, 1)
	require.ErrorIs(t, err, models.ErrAssetNotFound)
}

func TestNewStore_RequiresPath(t *testing.T) {
	_, err := NewStore(context.Background(), "")
	require.ErrorIs(t, err, models.ErrMissingSQLitePath)
}

func TestStore_FailedWriteIsNotVisible(t *testing.T) {
	ctx := context.Background()

	s, err := NewStore(ctx, filepath.Join(t.TempDir(), "assets.db"))
	require.NoError(t, err)
	require.NoError(t, s.EnsureSources(ctx, []*models.SourceRegistryEntry{{Name: models.SourceHBSS}}))

	require.NoError(t, s.db.Close())

	now := time.Now().UTC()

	err = s.WithTx(ctx, func(tx db.Tx) error {
		id, err := tx.CreateAsset(ctx, &models.CanonicalAsset{MAC: models.StringPtr("AA:BB")})
		if err != nil {
			return err
		}

		if err := tx.InsertObservation(ctx, &models.SourceObservation{
			ID: "0190c6d2-0000-7000-8000-000000000002", Source: models.SourceHBSS,
			CanonicalAssetID: &id, MAC: models.StringPtr("AA:BB"), ObservedAt: now, RecordedAt: now,
		}); err != nil {
			return err
		}

		return tx.TouchSource(ctx, models.SourceHBSS, now)
	})
	require.Error(t, err)

	_, err = s.GetAsset(ctx, 1)
	require.ErrorIs(t, err, models.ErrAssetNotFound)

	last, err := s.GetSourceFreshness(ctx, models.SourceHBSS)
	require.NoError(t, err)
	assert.Nil(t, last)

	assert.Empty(t, s.ExportState().Observations)
}

func countRows(t *testing.T, s *Store, table string) int {
	t.Helper()

	var n int
	require.NoError(t, s.db.QueryRowContext(context.Background(), `SELECT COUNT(*) FROM `+table).Scan(&n))

	return n
}

func TestStore_WritesRowsIncrementally(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "assets.db")

	s, err := NewStore(ctx, path)
	require.NoError(t, err)
	require.NoError(t, s.EnsureSources(ctx, []*models.SourceRegistryEntry{{Name: models.SourceForescout}}))

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	for i := range 40 {
		require.NoError(t, s.WithTx(ctx, func(tx db.Tx) error {
			id, err := tx.CreateAsset(ctx, &models.CanonicalAsset{MAC: models.StringPtr(fmt.Sprintf("AA:%02d", i))})
			if err != nil {
				return err
			}

			return tx.InsertObservation(ctx, &models.SourceObservation{
				ID: fmt.Sprintf("obs-%d", i), Source: models.SourceForescout,
				CanonicalAssetID: &id, ObservedAt: now, RecordedAt: now,
			})
		}))
	}

	// updating one asset rewrites its row and adds nothing else
	require.NoError(t, s.WithTx(ctx, func(tx db.Tx) error {
		a, err := tx.GetAsset(ctx, 3)
		if err != nil {
			return err
		}

		a.HostName = models.StringPtr("H3")

		return tx.UpdateAsset(ctx, a)
	}))

	assert.Equal(t, 40, countRows(t, s, "assets"))
	assert.Equal(t, 40, countRows(t, s, "observations"))
	assert.Equal(t, 1, countRows(t, s, "sources"))

	require.NoError(t, s.WithTx(ctx, func(tx db.Tx) error { return tx.DeleteAsset(ctx, 5) }))
	assert.Equal(t, 39, countRows(t, s, "assets"))
	require.NoError(t, s.Close())

	reopened, err := NewStore(ctx, path)
	require.NoError(t, err)

	t.Cleanup(func() { _ = reopened.Close() })

	got, err := reopened.GetAsset(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, "H3", *got.HostName)

	_, err = reopened.GetAsset(ctx, 5)
	require.ErrorIs(t, err, models.ErrAssetNotFound)

	snap := reopened.ExportState()
	require.Len(t, snap.Observations, 40)
	assert.Equal(t, "obs-0", snap.Observations[0].ID, "ledger order survives reload")
	assert.Nil(t, snap.Observations[4].CanonicalAssetID)
	require.NotNil(t, snap.Observations[5].CanonicalAssetID)
	assert.Equal(t, int64(6), *snap.Observations[5].CanonicalAssetID)

	// the reloaded index still resolves identities
	require.NoError(t, reopened.WithTx(ctx, func(tx db.Tx) error {
		id, ok, err := tx.FindAssetByField(ctx, models.FieldMAC, "AA:10")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, int64(11), id)

		return nil
	}))
}
