package registry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/carverauto/assetradar/pkg/db"
	"github.com/carverauto/assetradar/pkg/models"
	"github.com/carverauto/assetradar/pkg/sources"
)

// Merge folds obs into the asset: non-nil observed values overwrite their
// column, last_seen only moves forward, updated_at is set to now and the
// source's freshness is bumped to now.
func Merge(
	ctx context.Context, tx db.Tx, assetID int64, obs *models.SourceObservation, desc *sources.Descriptor, now time.Time,
) error {
	asset, err := tx.GetAsset(ctx, assetID)
	if errors.Is(err, models.ErrAssetNotFound) {
		return fmt.Errorf("%w: asset %d", models.ErrStaleAssetReference, assetID)
	}

	if err != nil {
		return err
	}

	for _, field := range desc.MergeFields() {
		if value := obs.Value(field); value != nil {
			v := *value
			*asset.Field(field) = &v
		}
	}

	if asset.LastSeen == nil || obs.ObservedAt.After(*asset.LastSeen) {
		observed := obs.ObservedAt
		asset.LastSeen = &observed
	}

	asset.UpdatedAt = now

	err = tx.UpdateAsset(ctx, asset)
	if errors.Is(err, models.ErrAssetNotFound) {
		return fmt.Errorf("%w: asset %d", models.ErrStaleAssetReference, assetID)
	}

	if err != nil {
		return err
	}

	return tx.TouchSource(ctx, desc.Name, now)
}
