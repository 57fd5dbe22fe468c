// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package store persists pipeline state in a SQLite database: unified and
// canonical records, release publications, raster introspection metadata,
// and built catalog item documents. Structured values are stored as JSON
// blobs next to the columns the pipeline queries on.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/dem-catalog/pkg/types"
)

// Store manages the catalog SQLite database.
type Store struct {
	db *sql.DB
}

// NewStore opens or creates the catalog database at cfg.Path. It creates
// the schema if it does not exist.
func NewStore(cfg types.StoreConfig) (*Store, error) {
	if dir := filepath.Dir(cfg.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating store directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", cfg.Path+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS unified_records (
			scene_dem_id TEXT NOT NULL,
			strip_dem_id TEXT NOT NULL,
			is_lsf INTEGER NOT NULL,
			class TEXT NOT NULL,
			record TEXT NOT NULL,
			PRIMARY KEY (scene_dem_id, strip_dem_id, is_lsf)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_unified_class ON unified_records(class)`,
		`CREATE TABLE IF NOT EXISTS canonical_records (
			strip_dem_id TEXT NOT NULL,
			scene_dem_id TEXT NOT NULL,
			is_lsf INTEGER NOT NULL,
			deprecated INTEGER NOT NULL,
			superseded_by TEXT,
			record TEXT NOT NULL,
			PRIMARY KEY (strip_dem_id, scene_dem_id, is_lsf)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_canonical_deprecated ON canonical_records(deprecated)`,
		`CREATE TABLE IF NOT EXISTS release_publications (
			strip_dem_id TEXT PRIMARY KEY,
			domain TEXT NOT NULL,
			kind TEXT NOT NULL,
			release_version TEXT NOT NULL,
			license_class TEXT,
			release_date TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS raster_asset_info (
			collection TEXT NOT NULL,
			item_id TEXT NOT NULL,
			role TEXT NOT NULL,
			info TEXT NOT NULL,
			PRIMARY KEY (collection, item_id, role)
		)`,
		`CREATE TABLE IF NOT EXISTS catalog_items (
			collection TEXT NOT NULL,
			item_id TEXT NOT NULL,
			content TEXT NOT NULL,
			PRIMARY KEY (collection, item_id)
		)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// SaveUnified replaces the unified record set with the given pools.
func (s *Store) SaveUnified(ctx context.Context, records map[types.ProductClass][]types.UnifiedRecord) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM unified_records`); err != nil {
		return fmt.Errorf("clearing unified records: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT OR REPLACE INTO unified_records (scene_dem_id, strip_dem_id, is_lsf, class, record)
		 VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for class, recs := range records {
		for _, rec := range recs {
			blob, err := json.Marshal(rec)
			if err != nil {
				return fmt.Errorf("marshaling record %s: %w", rec.StripDEMID, err)
			}
			if _, err := stmt.ExecContext(ctx,
				rec.SceneDEMID, rec.StripDEMID, boolInt(rec.IsLSF), string(class), string(blob),
			); err != nil {
				return fmt.Errorf("inserting record %s: %w", rec.StripDEMID, err)
			}
		}
	}
	return tx.Commit()
}

// LoadUnified returns all unified records grouped by product class.
func (s *Store) LoadUnified(ctx context.Context) (map[types.ProductClass][]types.UnifiedRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT class, record FROM unified_records ORDER BY strip_dem_id, scene_dem_id, is_lsf`)
	if err != nil {
		return nil, fmt.Errorf("querying unified records: %w", err)
	}
	defer rows.Close()

	out := make(map[types.ProductClass][]types.UnifiedRecord)
	for rows.Next() {
		var class, blob string
		if err := rows.Scan(&class, &blob); err != nil {
			return nil, fmt.Errorf("scanning unified record: %w", err)
		}
		var rec types.UnifiedRecord
		if err := json.Unmarshal([]byte(blob), &rec); err != nil {
			return nil, fmt.Errorf("parsing unified record: %w", err)
		}
		out[types.ProductClass(class)] = append(out[types.ProductClass(class)], rec)
	}
	return out, rows.Err()
}

// SaveCanonical replaces the canonical record set.
func (s *Store) SaveCanonical(ctx context.Context, records []types.CanonicalRecord) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM canonical_records`); err != nil {
		return fmt.Errorf("clearing canonical records: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT OR REPLACE INTO canonical_records (strip_dem_id, scene_dem_id, is_lsf, deprecated, superseded_by, record)
		 VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for _, rec := range records {
		blob, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("marshaling record %s: %w", rec.StripDEMID, err)
		}
		if _, err := stmt.ExecContext(ctx,
			rec.StripDEMID, rec.SceneDEMID, boolInt(rec.IsLSF),
			boolInt(rec.Deprecated), rec.SupersededBy, string(blob),
		); err != nil {
			return fmt.Errorf("inserting record %s: %w", rec.StripDEMID, err)
		}
	}
	return tx.Commit()
}

// LoadCanonical returns canonical records. When includeDeprecated is false
// only the live records are returned.
func (s *Store) LoadCanonical(ctx context.Context, includeDeprecated bool) ([]types.CanonicalRecord, error) {
	query := `SELECT record FROM canonical_records`
	if !includeDeprecated {
		query += ` WHERE deprecated = 0`
	}
	query += ` ORDER BY strip_dem_id, scene_dem_id, is_lsf`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying canonical records: %w", err)
	}
	defer rows.Close()

	var out []types.CanonicalRecord
	for rows.Next() {
		var blob string
		if err := rows.Scan(&blob); err != nil {
			return nil, fmt.Errorf("scanning canonical record: %w", err)
		}
		var rec types.CanonicalRecord
		if err := json.Unmarshal([]byte(blob), &rec); err != nil {
			return nil, fmt.Errorf("parsing canonical record: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// SavePublications upserts release publications by strip identity.
func (s *Store) SavePublications(ctx context.Context, pubs []types.ReleasePublication) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO release_publications (strip_dem_id, domain, kind, release_version, license_class, release_date)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(strip_dem_id) DO UPDATE SET
			domain=excluded.domain, kind=excluded.kind,
			release_version=excluded.release_version,
			license_class=excluded.license_class, release_date=excluded.release_date`)
	if err != nil {
		return fmt.Errorf("preparing upsert: %w", err)
	}
	defer stmt.Close()

	for _, pub := range pubs {
		if _, err := stmt.ExecContext(ctx,
			pub.StripDEMID, pub.Domain, pub.Kind, pub.ReleaseVersion,
			pub.LicenseClass, pub.ReleaseDate,
		); err != nil {
			return fmt.Errorf("upserting publication %s: %w", pub.StripDEMID, err)
		}
	}
	return tx.Commit()
}

// LoadPublications returns publications keyed by strip identity.
func (s *Store) LoadPublications(ctx context.Context) (map[string]types.ReleasePublication, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT strip_dem_id, domain, kind, release_version, license_class, release_date
		 FROM release_publications ORDER BY strip_dem_id`)
	if err != nil {
		return nil, fmt.Errorf("querying publications: %w", err)
	}
	defer rows.Close()

	out := make(map[string]types.ReleasePublication)
	for rows.Next() {
		var pub types.ReleasePublication
		if err := rows.Scan(&pub.StripDEMID, &pub.Domain, &pub.Kind,
			&pub.ReleaseVersion, &pub.LicenseClass, &pub.ReleaseDate); err != nil {
			return nil, fmt.Errorf("scanning publication: %w", err)
		}
		out[pub.StripDEMID] = pub
	}
	return out, rows.Err()
}

// SaveAssetInfo upserts raster introspection metadata.
func (s *Store) SaveAssetInfo(ctx context.Context, infos []types.RasterAssetInfo) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT OR REPLACE INTO raster_asset_info (collection, item_id, role, info)
		 VALUES (?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for _, info := range infos {
		blob, err := json.Marshal(info)
		if err != nil {
			return fmt.Errorf("marshaling asset info %s/%s: %w", info.ItemID, info.Role, err)
		}
		if _, err := stmt.ExecContext(ctx,
			info.Collection, info.ItemID, info.Role, string(blob),
		); err != nil {
			return fmt.Errorf("inserting asset info %s/%s: %w", info.ItemID, info.Role, err)
		}
	}
	return tx.Commit()
}

// AssetKey identifies one item's asset info rows. The same item id can
// appear in more than one collection, so the collection is part of the key.
type AssetKey struct {
	Collection string
	ItemID     string
}

// LoadAssetInfo returns introspection metadata keyed by (collection, item
// id) then role.
func (s *Store) LoadAssetInfo(ctx context.Context) (map[AssetKey]map[string]types.RasterAssetInfo, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT info FROM raster_asset_info ORDER BY collection, item_id, role`)
	if err != nil {
		return nil, fmt.Errorf("querying asset info: %w", err)
	}
	defer rows.Close()

	out := make(map[AssetKey]map[string]types.RasterAssetInfo)
	for rows.Next() {
		var blob string
		if err := rows.Scan(&blob); err != nil {
			return nil, fmt.Errorf("scanning asset info: %w", err)
		}
		var info types.RasterAssetInfo
		if err := json.Unmarshal([]byte(blob), &info); err != nil {
			return nil, fmt.Errorf("parsing asset info: %w", err)
		}
		key := AssetKey{Collection: info.Collection, ItemID: info.ItemID}
		roles := out[key]
		if roles == nil {
			roles = make(map[string]types.RasterAssetInfo)
			out[key] = roles
		}
		roles[info.Role] = info
	}
	return out, rows.Err()
}

// SaveItems upserts built item documents keyed by (collection, item id).
func (s *Store) SaveItems(ctx context.Context, items []*types.Item) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT OR REPLACE INTO catalog_items (collection, item_id, content) VALUES (?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for _, item := range items {
		blob, err := json.Marshal(item)
		if err != nil {
			return fmt.Errorf("marshaling item %s: %w", item.ID, err)
		}
		if _, err := stmt.ExecContext(ctx, item.Collection, item.ID, string(blob)); err != nil {
			return fmt.Errorf("inserting item %s: %w", item.ID, err)
		}
	}
	return tx.Commit()
}

// Collections returns the distinct collection ids with stored items.
func (s *Store) Collections(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT DISTINCT collection FROM catalog_items ORDER BY collection`)
	if err != nil {
		return nil, fmt.Errorf("querying collections: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, fmt.Errorf("scanning collection: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// LoadItems returns stored item documents for one collection, in item-id
// order. An empty collection selects every stored item.
func (s *Store) LoadItems(ctx context.Context, collection string) ([]*types.Item, error) {
	query := `SELECT content FROM catalog_items`
	args := []any{}
	if collection != "" {
		query += ` WHERE collection = ?`
		args = append(args, collection)
	}
	query += ` ORDER BY collection, item_id`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying items: %w", err)
	}
	defer rows.Close()

	var out []*types.Item
	for rows.Next() {
		var blob string
		if err := rows.Scan(&blob); err != nil {
			return nil, fmt.Errorf("scanning item: %w", err)
		}
		var item types.Item
		if err := json.Unmarshal([]byte(blob), &item); err != nil {
			return nil, fmt.Errorf("parsing item: %w", err)
		}
		out = append(out, &item)
	}
	return out, rows.Err()
}

// LoadItem returns one stored item document, or sql.ErrNoRows wrapped.
func (s *Store) LoadItem(ctx context.Context, collection, itemID string) (*types.Item, error) {
	var blob string
	err := s.db.QueryRowContext(ctx,
		`SELECT content FROM catalog_items WHERE collection = ? AND item_id = ?`,
		collection, itemID,
	).Scan(&blob)
	if err != nil {
		return nil, fmt.Errorf("loading item %s/%s: %w", collection, itemID, err)
	}
	var item types.Item
	if err := json.Unmarshal([]byte(blob), &item); err != nil {
		return nil, fmt.Errorf("parsing item %s: %w", itemID, err)
	}
	return &item, nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
