// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package source

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/dem-catalog/pkg/types"
)

// InventoryPool reads the on-hand filesystem inventory from a SQLite index
// database. Records are stored as JSON documents keyed by scene and strip id
// in the source_records table.
type InventoryPool struct {
	name     string
	priority int
	path     string
}

func (p *InventoryPool) Name() string  { return p.name }
func (p *InventoryPool) Priority() int { return p.priority }

// Load reads all records for this pool name from the index database.
func (p *InventoryPool) Load(ctx context.Context) ([]types.SourceRecord, error) {
	db, err := sql.Open("sqlite3", p.path+"?mode=ro")
	if err != nil {
		return nil, fmt.Errorf("opening inventory database: %w", err)
	}
	defer db.Close()

	rows, err := db.QueryContext(ctx,
		`SELECT record FROM source_records WHERE pool = ? ORDER BY scene_dem_id, strip_dem_id`,
		p.name,
	)
	if err != nil {
		return nil, fmt.Errorf("querying inventory records: %w", err)
	}
	defer rows.Close()

	var records []types.SourceRecord
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("scanning inventory row: %w", err)
		}
		var rec types.SourceRecord
		if err := json.Unmarshal([]byte(raw), &rec); err != nil {
			return nil, fmt.Errorf("parsing inventory record: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating inventory rows: %w", err)
	}
	return records, nil
}

// InitInventory creates the source_records schema in a new index database.
// Used by tests and by external indexers that populate a pool.
func InitInventory(path string) error {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return fmt.Errorf("opening inventory database: %w", err)
	}
	defer db.Close()

	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS source_records (
		pool TEXT NOT NULL,
		scene_dem_id TEXT NOT NULL,
		strip_dem_id TEXT NOT NULL,
		record TEXT NOT NULL,
		PRIMARY KEY (pool, scene_dem_id, strip_dem_id)
	)`)
	if err != nil {
		return fmt.Errorf("creating source_records schema: %w", err)
	}
	return nil
}

// AppendInventory inserts records into an index database under pool.
func AppendInventory(ctx context.Context, path, pool string, records []types.SourceRecord) error {
	if err := InitInventory(path); err != nil {
		return err
	}
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return fmt.Errorf("opening inventory database: %w", err)
	}
	defer db.Close()

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT OR REPLACE INTO source_records (pool, scene_dem_id, strip_dem_id, record)
		 VALUES (?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for _, rec := range records {
		raw, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("marshaling record %s: %w", rec.SceneDEMID, err)
		}
		if _, err := stmt.ExecContext(ctx, pool, rec.SceneDEMID, rec.StripDEMID, string(raw)); err != nil {
			return fmt.Errorf("inserting record %s: %w", rec.SceneDEMID, err)
		}
	}
	return tx.Commit()
}
