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
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/carverauto/assetradar/pkg/models"
)

const cnpgAssetColumns = `id, serial_number, host_name, mac, ip_address, make, model,
	department, status, notes, location, last_seen, created_at, updated_at`

//nolint:gochecknoglobals // fixed whitelist for dynamic column names
var cnpgIdentityColumns = map[models.AssetField]string{
	models.FieldMAC:          "mac",
	models.FieldHostName:     "host_name",
	models.FieldIPAddress:    "ip_address",
	models.FieldSerialNumber: "serial_number",
}

func scanAsset(row pgx.Row) (*models.CanonicalAsset, error) {
	a := &models.CanonicalAsset{}

	err := row.Scan(
		&a.ID, &a.SerialNumber, &a.HostName, &a.MAC, &a.IPAddress, &a.Make, &a.Model,
		&a.Department, &a.Status, &a.Notes, &a.Location, &a.LastSeen, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	return a, nil
}

func (s *CNPGStore) GetAsset(ctx context.Context, id int64) (*models.CanonicalAsset, error) {
	asset, err := scanAsset(s.pool.QueryRow(ctx,
		`SELECT `+cnpgAssetColumns+` FROM canonical_assets WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: %d", models.ErrAssetNotFound, id)
	}

	if err != nil {
		return nil, fmt.Errorf("%w asset %d: %w", ErrFailedToQuery, id, err)
	}

	return asset, nil
}

func (t *cnpgTx) FindAssetByField(ctx context.Context, field models.AssetField, value string) (int64, bool, error) {
	column, ok := cnpgIdentityColumns[field]
	if !ok {
		return 0, false, fmt.Errorf("%w: %s", ErrUnsupportedField, field)
	}

	var id int64

	err := t.tx.QueryRow(ctx,
		fmt.Sprintf(`SELECT id FROM canonical_assets WHERE %s = $1 ORDER BY id LIMIT 1`, column),
		value).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, false, nil
	}

	if err != nil {
		return 0, false, mapCNPGError(fmt.Errorf("find asset by %s: %w", field, err))
	}

	return id, true, nil
}

// GetAsset reads the asset and holds its row lock until the transaction ends.
func (t *cnpgTx) GetAsset(ctx context.Context, id int64) (*models.CanonicalAsset, error) {
	asset, err := scanAsset(t.tx.QueryRow(ctx,
		`SELECT `+cnpgAssetColumns+` FROM canonical_assets WHERE id = $1 FOR UPDATE`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: %d", models.ErrAssetNotFound, id)
	}

	if err != nil {
		return nil, mapCNPGError(fmt.Errorf("get asset %d: %w", id, err))
	}

	return asset, nil
}

func (t *cnpgTx) CreateAsset(ctx context.Context, a *models.CanonicalAsset) (int64, error) {
	if a == nil {
		return 0, ErrAssetNil
	}

	var id int64

	err := t.tx.QueryRow(ctx, `INSERT INTO canonical_assets (
			serial_number, host_name, mac, ip_address, make, model,
			department, status, notes, location, last_seen, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING id`,
		a.SerialNumber, a.HostName, a.MAC, a.IPAddress, a.Make, a.Model,
		a.Department, a.Status, a.Notes, a.Location, a.LastSeen, a.CreatedAt, a.UpdatedAt,
	).Scan(&id)
	if err != nil {
		return 0, mapCNPGError(fmt.Errorf("%w asset: %w", ErrFailedToInsert, err))
	}

	return id, nil
}

func (t *cnpgTx) UpdateAsset(ctx context.Context, a *models.CanonicalAsset) error {
	if a == nil {
		return ErrAssetNil
	}

	tag, err := t.tx.Exec(ctx, `UPDATE canonical_assets SET
			serial_number = $2, host_name = $3, mac = $4, ip_address = $5, make = $6, model = $7,
			department = $8, status = $9, notes = $10, location = $11, last_seen = $12, updated_at = $13
		WHERE id = $1`,
		a.ID, a.SerialNumber, a.HostName, a.MAC, a.IPAddress, a.Make, a.Model,
		a.Department, a.Status, a.Notes, a.Location, a.LastSeen, a.UpdatedAt,
	)
	if err != nil {
		return mapCNPGError(fmt.Errorf("%w asset %d: %w", ErrFailedToUpdate, a.ID, err))
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %d", models.ErrAssetNotFound, a.ID)
	}

	return nil
}

// DeleteAsset removes the asset; the foreign key nulls ledger references.
func (t *cnpgTx) DeleteAsset(ctx context.Context, id int64) error {
	tag, err := t.tx.Exec(ctx, `DELETE FROM canonical_assets WHERE id = $1`, id)
	if err != nil {
		return mapCNPGError(fmt.Errorf("delete asset %d: %w", id, err))
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %d", models.ErrAssetNotFound, id)
	}

	return nil
}
