package registry

import (
	"context"
	"fmt"

	"github.com/carverauto/assetradar/pkg/db"
	"github.com/carverauto/assetradar/pkg/models"
	"github.com/carverauto/assetradar/pkg/sources"
)

// Resolve maps an observation to a canonical asset id. A caller-supplied
// CanonicalAssetID is returned as is. Otherwise the descriptor's match keys
// are tried in order and the first key with a match wins, lowest id first.
// When nothing matches a new asset carrying only the match-key values is
// created with obs.RecordedAt as its creation time.
func Resolve(ctx context.Context, tx db.Tx, desc *sources.Descriptor, obs *models.SourceObservation) (int64, bool, error) {
	if obs.CanonicalAssetID != nil {
		return *obs.CanonicalAssetID, false, nil
	}

	for _, key := range desc.MatchKeys {
		value := obs.Value(key)
		if value == nil {
			continue
		}

		id, ok, err := tx.FindAssetByField(ctx, key, *value)
		if err != nil {
			return 0, false, fmt.Errorf("resolve by %s: %w", key, err)
		}

		if ok {
			return id, false, nil
		}
	}

	asset := &models.CanonicalAsset{
		CreatedAt: obs.RecordedAt,
		UpdatedAt: obs.RecordedAt,
	}

	for _, key := range desc.MatchKeys {
		if value := obs.Value(key); value != nil {
			v := *value
			*asset.Field(key) = &v
		}
	}

	id, err := tx.CreateAsset(ctx, asset)
	if err != nil {
		return 0, false, fmt.Errorf("create asset: %w", err)
	}

	return id, true, nil
}
