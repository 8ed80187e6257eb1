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
package db

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/carverauto/assetradar/pkg/models"
)

// The lateral join picks the latest observation per asset using the
// idx_source_observations_latest index.
const cnpgComparisonPageQuery = `
SELECT a.id, a.host_name, a.mac, a.ip_address, a.last_seen,
       o.id, o.host_name, o.mac, o.ip_address, o.department, o.status,
       o.vulnerability_count, o.observed_at, o.recorded_at
FROM canonical_assets a
LEFT JOIN LATERAL (
    SELECT so.id, so.host_name, so.mac, so.ip_address, so.department, so.status,
           so.vulnerability_count, so.observed_at, so.recorded_at
    FROM source_observations so
    WHERE so.source = $1 AND so.canonical_asset_id = a.id
    ORDER BY so.observed_at DESC, so.recorded_at DESC, so.id DESC
    LIMIT 1
) o ON true
WHERE a.id > $2
ORDER BY a.id
LIMIT $3`

func (s *CNPGStore) ListComparisonPage(
	ctx context.Context, source models.SourceName, afterID int64, limit int,
) ([]*models.ComparisonRow, error) {
	rows, err := s.pool.Query(ctx, cnpgComparisonPageQuery, source, afterID, limit)
	if err != nil {
		return nil, fmt.Errorf("%w comparison %s: %w", ErrFailedToQuery, source, err)
	}

	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*models.ComparisonRow, error) {
		return scanComparisonRow(row, source)
	})
	if err != nil {
		return nil, fmt.Errorf("%w comparison %s: %w", ErrFailedToScan, source, err)
	}

	return out, nil
}

func scanComparisonRow(row pgx.Row, source models.SourceName) (*models.ComparisonRow, error) {
	var (
		asset models.CanonicalAsset
		obsID pgtype.UUID
		obs   models.SourceObservation

		observedAt, recordedAt *time.Time
	)

	err := row.Scan(
		&asset.ID, &asset.HostName, &asset.MAC, &asset.IPAddress, &asset.LastSeen,
		&obsID, &obs.HostName, &obs.MAC, &obs.IPAddress, &obs.Department, &obs.Status,
		&obs.VulnerabilityCount, &observedAt, &recordedAt,
	)
	if err != nil {
		return nil, err
	}

	if !obsID.Valid {
		return models.NewComparisonRow(source, &asset, nil), nil
	}

	obs.ID = uuid.UUID(obsID.Bytes).String()
	obs.Source = source

	if observedAt != nil {
		obs.ObservedAt = *observedAt
	}

	if recordedAt != nil {
		obs.RecordedAt = *recordedAt
	}

	return models.NewComparisonRow(source, &asset, &obs), nil
}
