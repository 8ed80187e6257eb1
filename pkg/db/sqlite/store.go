// Package sqlite backs the in-memory store with a single SQLite file, for
// single-node deployments without PostgreSQL. Every committed transaction
// writes only the rows it changed.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // pure go sqlite driver

	"github.com/carverauto/assetradar/pkg/db"
	"github.com/carverauto/assetradar/pkg/db/memory"
	"github.com/carverauto/assetradar/pkg/models"
)

const sequenceKey = "next_asset_id"

var schema = []string{ //nolint:gochecknoglobals // static DDL
	`CREATE TABLE IF NOT EXISTS meta (
		key TEXT PRIMARY KEY,
		value INTEGER NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS assets (
		id INTEGER PRIMARY KEY,
		payload BLOB NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS observations (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		asset_id INTEGER,
		payload BLOB NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS observations_asset_id ON observations(asset_id)`,
	`CREATE TABLE IF NOT EXISTS sources (
		name TEXT PRIMARY KEY,
		payload BLOB NOT NULL
	)`,
}

// Store serves reads from memory and writes each transaction's rows to SQLite
// before the transaction becomes visible.
type Store struct {
	*memory.Store
	db   *sql.DB
	path string
}

var _ db.Store = (*Store)(nil)

// NewStore opens (or creates) the database at path and loads its rows.
func NewStore(ctx context.Context, path string) (*Store, error) {
	if path == "" {
		return nil, models.ErrMissingSQLitePath
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil && !errors.Is(err, os.ErrExist) {
		return nil, fmt.Errorf("create dirs: %w", err)
	}

	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	for _, stmt := range schema {
		if _, err := conn.ExecContext(ctx, stmt); err != nil {
			_ = conn.Close()
			return nil, fmt.Errorf("create schema: %w", err)
		}
	}

	s := &Store{db: conn, path: path}
	s.Store = memory.New(memory.WithCommitHook(s.write))

	if err := s.load(ctx); err != nil {
		_ = conn.Close()
		return nil, err
	}

	return s, nil
}

func (s *Store) load(ctx context.Context) error {
	var snapshot memory.Snapshot

	if err := s.db.QueryRowContext(ctx,
		`SELECT value FROM meta WHERE key = ?`, sequenceKey).Scan(&snapshot.NextID); err != nil && !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("select sequence: %w", err)
	}

	err := s.scan(ctx, `SELECT payload FROM assets ORDER BY id`, func(rows *sql.Rows) error {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return err
		}

		a := &models.CanonicalAsset{}
		if err := json.Unmarshal(payload, a); err != nil {
			return fmt.Errorf("decode asset: %w", err)
		}

		snapshot.Assets = append(snapshot.Assets, a)

		return nil
	})
	if err != nil {
		return err
	}

	err = s.scan(ctx, `SELECT asset_id, payload FROM observations ORDER BY seq`, func(rows *sql.Rows) error {
		var (
			assetID sql.NullInt64
			payload []byte
		)

		if err := rows.Scan(&assetID, &payload); err != nil {
			return err
		}

		obs := &models.SourceObservation{}
		if err := json.Unmarshal(payload, obs); err != nil {
			return fmt.Errorf("decode observation: %w", err)
		}

		// the column is authoritative; deletes only clear it
		obs.CanonicalAssetID = nil
		if assetID.Valid {
			obs.CanonicalAssetID = &assetID.Int64
		}

		snapshot.Observations = append(snapshot.Observations, obs)

		return nil
	})
	if err != nil {
		return err
	}

	err = s.scan(ctx, `SELECT payload FROM sources ORDER BY name`, func(rows *sql.Rows) error {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return err
		}

		e := &models.SourceRegistryEntry{}
		if err := json.Unmarshal(payload, e); err != nil {
			return fmt.Errorf("decode source: %w", err)
		}

		snapshot.Sources = append(snapshot.Sources, e)

		return nil
	})
	if err != nil {
		return err
	}

	s.ImportState(snapshot)

	return nil
}

func (s *Store) scan(ctx context.Context, query string, fn func(*sql.Rows) error) error {
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return fmt.Errorf("query %q: %w", query, err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		if err := fn(rows); err != nil {
			return err
		}
	}

	return rows.Err()
}

// write stores one committed delta in a single SQLite transaction. It runs
// under the memory store's writer lock, so deltas land in commit order.
func (s *Store) write(ctx context.Context, d *memory.Delta) (retErr error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}

	defer func() {
		if retErr != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO meta(key, value) VALUES(?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		sequenceKey, d.NextID); err != nil {
		return fmt.Errorf("upsert sequence: %w", err)
	}

	for _, id := range d.Deleted {
		if _, err := tx.ExecContext(ctx, `DELETE FROM assets WHERE id = ?`, id); err != nil {
			return fmt.Errorf("delete asset %d: %w", id, err)
		}

		if _, err := tx.ExecContext(ctx, `UPDATE observations SET asset_id = NULL WHERE asset_id = ?`, id); err != nil {
			return fmt.Errorf("detach observations of %d: %w", id, err)
		}
	}

	for _, a := range d.Assets {
		if err := upsert(ctx, tx,
			`INSERT INTO assets(id, payload) VALUES(?, ?) ON CONFLICT(id) DO UPDATE SET payload = excluded.payload`,
			a.ID, a); err != nil {
			return fmt.Errorf("upsert asset %d: %w", a.ID, err)
		}
	}

	for _, obs := range d.Observations {
		payload, err := json.Marshal(obs)
		if err != nil {
			return fmt.Errorf("encode observation %s: %w", obs.ID, err)
		}

		var assetID sql.NullInt64
		if obs.CanonicalAssetID != nil {
			assetID = sql.NullInt64{Int64: *obs.CanonicalAssetID, Valid: true}
		}

		if _, err := tx.ExecContext(ctx,
			`INSERT INTO observations(asset_id, payload) VALUES(?, ?)`, assetID, payload); err != nil {
			return fmt.Errorf("insert observation %s: %w", obs.ID, err)
		}
	}

	for _, e := range d.Sources {
		if err := upsert(ctx, tx,
			`INSERT INTO sources(name, payload) VALUES(?, ?) ON CONFLICT(name) DO UPDATE SET payload = excluded.payload`,
			string(e.Name), e); err != nil {
			return fmt.Errorf("upsert source %s: %w", e.Name, err)
		}
	}

	return tx.Commit()
}

func upsert(ctx context.Context, tx *sql.Tx, query string, key, value any) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx, query, key, payload)

	return err
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the configured database path.
func (s *Store) Path() string { return s.path }
