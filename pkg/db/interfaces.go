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

// Package db defines the persistence boundary of the asset registry and the
// CNPG (PostgreSQL) implementation of it.
package db

import (
	"context"
	"time"

	"github.com/carverauto/assetradar/pkg/models"
)

//go:generate mockgen -destination=mock_db.go -package=db github.com/carverauto/assetradar/pkg/db Store,Tx

// Store holds canonical assets, the per-source observation ledgers and the
// source registry.
type Store interface {
	Close() error

	// WithTx runs fn inside one transaction. The transaction commits when fn
	// returns nil and rolls back otherwise; nothing fn did is visible on
	// failure.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	// Read operations.

	GetAsset(ctx context.Context, id int64) (*models.CanonicalAsset, error)
	ListSources(ctx context.Context) ([]*models.SourceRegistryEntry, error)
	GetSourceFreshness(ctx context.Context, source models.SourceName) (*time.Time, error)
	// ListComparisonPage returns up to limit rows with asset id > afterID,
	// ordered by asset id.
	ListComparisonPage(ctx context.Context, source models.SourceName, afterID int64, limit int) ([]*models.ComparisonRow, error)

	// Provisioning.

	EnsureSources(ctx context.Context, entries []*models.SourceRegistryEntry) error
}

// Tx is the write surface available inside Store.WithTx.
type Tx interface {
	// LockIdentities serialises transactions that touch the same identity
	// keys. Keys must be sorted.
	LockIdentities(ctx context.Context, keys []string) error

	// FindAssetByField returns the lowest asset id whose column equals value.
	FindAssetByField(ctx context.Context, field models.AssetField, value string) (int64, bool, error)
	GetAsset(ctx context.Context, id int64) (*models.CanonicalAsset, error)
	CreateAsset(ctx context.Context, asset *models.CanonicalAsset) (int64, error)
	UpdateAsset(ctx context.Context, asset *models.CanonicalAsset) error
	DeleteAsset(ctx context.Context, id int64) error

	InsertObservation(ctx context.Context, obs *models.SourceObservation) error
	TouchSource(ctx context.Context, source models.SourceName, at time.Time) error
}
