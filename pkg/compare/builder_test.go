package compare

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/carverauto/assetradar/pkg/db"
	"github.com/carverauto/assetradar/pkg/db/memory"
	"github.com/carverauto/assetradar/pkg/logger"
	"github.com/carverauto/assetradar/pkg/models"
	"github.com/carverauto/assetradar/pkg/registry"
	"github.com/carverauto/assetradar/pkg/sources"
)

var t0 = time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)

func ingestAll(t *testing.T) (*memory.Store, []int64) {
	t.Helper()

	ctx := context.Background()
	store := memory.New()
	r := registry.New(store, logger.NewTestLogger())
	require.NoError(t, r.Provision(ctx))

	var ids []int64

	for _, mac := range []string{"AA:01", "AA:02", "AA:03", "AA:04", "AA:05"} {
		id, err := r.IngestObservation(ctx, "forescout", map[string]any{"mac": mac}, t0)
		require.NoError(t, err)

		ids = append(ids, id)
	}

	// Two AD reports for the third asset; the later one is shown.
	_, err := r.IngestObservation(ctx, "hbss", map[string]any{"mac": "AA:03", "host_name": "H3"}, t0)
	require.NoError(t, err)
	_, err = r.IngestObservation(ctx, "active_directory", map[string]any{"host_name": "H3", "department": "Old"}, t0)
	require.NoError(t, err)
	_, err = r.IngestObservation(ctx, "active_directory",
		map[string]any{"host_name": "H3", "department": "New"}, t0.Add(time.Hour))
	require.NoError(t, err)

	return store, ids
}

func TestListComparison_OneRowPerAssetAcrossPages(t *testing.T) {
	store, ids := ingestAll(t)

	rows, err := NewBuilder(store, 2).Collect(context.Background(), "active_directory")
	require.NoError(t, err)
	require.Len(t, rows, len(ids))

	for i, row := range rows {
		assert.Equal(t, ids[i], row.AssetID)
		assert.Equal(t, models.SourceActiveDirectory, row.Source)
	}

	withObs := rows[2]
	require.True(t, withObs.HasObservation())
	assert.Equal(t, "New", *withObs.Department)
	assert.Equal(t, "H3", *withObs.SourceHostName)
	assert.Equal(t, t0.Add(time.Hour), *withObs.SourceObservedAt)

	assert.False(t, rows[0].HasObservation())
	assert.Nil(t, rows[0].Department)
	assert.Equal(t, "AA:01", *rows[0].MAC)
}

func TestListComparison_StopsEarly(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := db.NewMockStore(ctrl)

	page := []*models.ComparisonRow{
		{Source: models.SourceHBSS, AssetID: 1},
		{Source: models.SourceHBSS, AssetID: 2},
	}

	// Only the first page is read.
	store.EXPECT().ListComparisonPage(gomock.Any(), models.SourceHBSS, int64(0), 2).Return(page, nil).Times(1)

	var seen []int64

	for row, err := range NewBuilder(store, 2).ListComparison(context.Background(), "hbss") {
		require.NoError(t, err)

		seen = append(seen, row.AssetID)
		if len(seen) == 1 {
			break
		}
	}

	assert.Equal(t, []int64{1}, seen)
}

func TestListComparison_KeysetAdvances(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := db.NewMockStore(ctrl)

	gomock.InOrder(
		store.EXPECT().ListComparisonPage(gomock.Any(), models.SourceSecurityCenter, int64(0), 2).
			Return([]*models.ComparisonRow{{AssetID: 3}, {AssetID: 8}}, nil),
		store.EXPECT().ListComparisonPage(gomock.Any(), models.SourceSecurityCenter, int64(8), 2).
			Return([]*models.ComparisonRow{{AssetID: 9}, {AssetID: 12}}, nil),
		store.EXPECT().ListComparisonPage(gomock.Any(), models.SourceSecurityCenter, int64(12), 2).
			Return(nil, nil),
	)

	rows, err := NewBuilder(store, 2).Collect(context.Background(), "security_center")
	require.NoError(t, err)
	assert.Len(t, rows, 4)
}

func TestListComparison_Errors(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := db.NewMockStore(ctrl)

	_, err := NewBuilder(store, 0).Collect(context.Background(), "nessus")
	require.ErrorIs(t, err, models.ErrUnknownSource)

	errDown := errors.New("db down")
	store.EXPECT().ListComparisonPage(gomock.Any(), models.SourceForescout, int64(0), defaultPageSize).Return(nil, errDown)

	_, err = NewBuilder(store, 0).Collect(context.Background(), "forescout")
	require.ErrorIs(t, err, errDown)
}

func TestListComparison_EverySourceRendersOnlyItsUniqueColumn(t *testing.T) {
	store, _ := ingestAll(t)

	for _, desc := range sources.All() {
		rows, err := NewBuilder(store, 0).Collect(context.Background(), string(desc.Name))
		require.NoError(t, err)

		for _, row := range rows {
			if desc.Name != models.SourceActiveDirectory {
				assert.Nil(t, row.Department)
			}

			if desc.Name != models.SourceSecurityCenter {
				assert.Nil(t, row.VulnerabilityCount)
			}
		}
	}
}

func TestDiscrepancies(t *testing.T) {
	s := models.StringPtr

	tests := []struct {
		name string
		row  *models.ComparisonRow
		want []models.AssetField
	}{
		{
			name: "no observation",
			row:  &models.ComparisonRow{HostName: s("H1")},
		},
		{
			name: "agreeing",
			row: &models.ComparisonRow{
				ObservationID: s("o"), HostName: s("H1"), SourceHostName: s("H1"),
			},
		},
		{
			name: "one side missing and one differing",
			row: &models.ComparisonRow{
				ObservationID: s("o"),
				HostName:      s("H1"), SourceHostName: s("H2"),
				MAC:       s("AA"),
				IPAddress: s("10.0.0.1"), SourceIPAddress: s("10.0.0.1"),
			},
			want: []models.AssetField{models.FieldHostName, models.FieldMAC},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Discrepancies(tt.row))
		})
	}
}
