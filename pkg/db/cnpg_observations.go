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

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/carverauto/assetradar/pkg/models"
)

func (t *cnpgTx) InsertObservation(ctx context.Context, obs *models.SourceObservation) error {
	if obs == nil {
		return ErrObservationNil
	}

	id, err := uuid.Parse(obs.ID)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrObservationID, err)
	}

	_, err = t.tx.Exec(ctx, `INSERT INTO source_observations (
			id, source, canonical_asset_id, host_name, mac, ip_address, department,
			status, serial_number, make, model, vulnerability_count, observed_at, recorded_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
		pgtype.UUID{Bytes: id, Valid: true}, obs.Source, obs.CanonicalAssetID,
		obs.HostName, obs.MAC, obs.IPAddress, obs.Department,
		obs.Status, obs.SerialNumber, obs.Make, obs.Model, obs.VulnerabilityCount,
		obs.ObservedAt, obs.RecordedAt,
	)
	if err != nil {
		return mapCNPGError(fmt.Errorf("%w observation: %w", ErrFailedToInsert, err))
	}

	return nil
}
