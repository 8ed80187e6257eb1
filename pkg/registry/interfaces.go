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
package registry

//go:generate mockgen -destination=mock_registry.go -package=registry github.com/carverauto/assetradar/pkg/registry Manager

import (
	"context"
	"time"

	"github.com/carverauto/assetradar/pkg/models"
)

// Manager is the canonical asset registry. Every observation from every
// source enters through Ingest or IngestObservation.
type Manager interface {
	// IngestObservation resolves, records and merges one observation and
	// returns the canonical asset id it was folded into.
	IngestObservation(ctx context.Context, source string, fields map[string]any, observedAt time.Time) (int64, error)

	// Ingest is IngestObservation with an optional caller-supplied asset id
	// and a richer result.
	Ingest(ctx context.Context, req *Request) (*Result, error)

	GetAsset(ctx context.Context, id int64) (*models.CanonicalAsset, error)

	// Administrative operations.

	AmendAsset(ctx context.Context, id int64, patch *models.AssetPatch) (*models.CanonicalAsset, error)
	DeleteAsset(ctx context.Context, id int64) error

	// Source registry.

	GetSourceFreshness(ctx context.Context, source string) (time.Time, bool, error)
	ListSources(ctx context.Context) ([]*models.SourceRegistryEntry, error)
}
