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
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/carverauto/assetradar/pkg/logger"
	"github.com/carverauto/assetradar/pkg/models"
)

// CNPGStore is the PostgreSQL implementation of Store. Ingestion units run
// SERIALIZABLE and take transaction-scoped advisory locks per identity key.
type CNPGStore struct {
	pool   *pgxpool.Pool
	logger logger.Logger
}

var _ Store = (*CNPGStore)(nil)

// NewCNPGStore connects to the cluster and applies pending migrations.
func NewCNPGStore(ctx context.Context, cfg *models.CNPGDatabase, log logger.Logger) (*CNPGStore, error) {
	pool, err := NewCNPGPool(ctx, cfg, log)
	if err != nil {
		return nil, err
	}

	if err := RunCNPGMigrations(ctx, pool, log); err != nil {
		pool.Close()
		return nil, fmt.Errorf("%w: %w", ErrFailedToInit, err)
	}

	return NewCNPGStoreFromPool(pool, log), nil
}

// NewCNPGStoreFromPool wraps an existing, already migrated pool.
func NewCNPGStoreFromPool(pool *pgxpool.Pool, log logger.Logger) *CNPGStore {
	return &CNPGStore{pool: pool, logger: log}
}

func (s *CNPGStore) Close() error {
	s.pool.Close()
	return nil
}

func (s *CNPGStore) WithTx(ctx context.Context, fn func(tx Tx) error) error {
	err := pgx.BeginTxFunc(ctx, s.pool, pgx.TxOptions{IsoLevel: pgx.Serializable}, func(tx pgx.Tx) error {
		return fn(&cnpgTx{tx: tx})
	})

	return mapCNPGError(err)
}

func (s *CNPGStore) ListSources(ctx context.Context) ([]*models.SourceRegistryEntry, error) {
	rows, err := s.pool.Query(ctx, `SELECT name, description, last_update FROM source_registry ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("%w source registry: %w", ErrFailedToQuery, err)
	}

	entries, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*models.SourceRegistryEntry, error) {
		entry := &models.SourceRegistryEntry{}
		err := row.Scan(&entry.Name, &entry.Description, &entry.LastUpdate)

		return entry, err
	})
	if err != nil {
		return nil, fmt.Errorf("%w source registry: %w", ErrFailedToScan, err)
	}

	return entries, nil
}

func (s *CNPGStore) GetSourceFreshness(ctx context.Context, source models.SourceName) (*time.Time, error) {
	var lastUpdate *time.Time

	err := s.pool.QueryRow(ctx, `SELECT last_update FROM source_registry WHERE name = $1`, source).Scan(&lastUpdate)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", models.ErrUnknownSource, source)
	}

	if err != nil {
		return nil, fmt.Errorf("%w source freshness: %w", ErrFailedToQuery, err)
	}

	return lastUpdate, nil
}

// EnsureSources upserts the registry rows, refreshing descriptions but
// never touching last_update.
func (s *CNPGStore) EnsureSources(ctx context.Context, entries []*models.SourceRegistryEntry) error {
	batch := &pgx.Batch{}

	for _, entry := range entries {
		batch.Queue(`INSERT INTO source_registry (name, description) VALUES ($1, $2)
			ON CONFLICT (name) DO UPDATE SET description = EXCLUDED.description`,
			entry.Name, entry.Description)
	}

	if err := s.pool.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("%w source registry: %w", ErrFailedToInsert, err)
	}

	return nil
}

// cnpgTx implements Tx over a pgx transaction.
type cnpgTx struct {
	tx pgx.Tx
}

func (t *cnpgTx) LockIdentities(ctx context.Context, keys []string) error {
	if len(keys) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, key := range keys {
		batch.Queue(`SELECT pg_advisory_xact_lock(hashtextextended($1, 0))`, key)
	}

	if err := t.tx.SendBatch(ctx, batch).Close(); err != nil {
		return mapCNPGError(fmt.Errorf("identity locks: %w", err))
	}

	return nil
}

func (t *cnpgTx) TouchSource(ctx context.Context, source models.SourceName, at time.Time) error {
	tag, err := t.tx.Exec(ctx, `UPDATE source_registry SET last_update = $2 WHERE name = $1`, source, at)
	if err != nil {
		return mapCNPGError(fmt.Errorf("touch source %s: %w", source, err))
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", models.ErrUnknownSource, source)
	}

	return nil
}
