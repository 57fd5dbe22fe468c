// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// StoreConfig holds settings for the catalog SQLite store.
type StoreConfig struct {
	// Path is the store database file (default "catalog/dem-catalog.db").
	Path string `json:"path" yaml:"path"`
}

// PoolKind selects the adapter used to read a source record pool.
type PoolKind string

const (
	PoolSQLite PoolKind = "sqlite"
	PoolNDJSON PoolKind = "ndjson"
	PoolPseudo PoolKind = "pseudo"
)

// PoolConfig describes one source record pool.
type PoolConfig struct {
	// Name identifies the pool (e.g. "dem", "aux", "tape", "staging").
	Name string `json:"name" yaml:"name"`

	// Priority ranks the pool; higher values win identity conflicts.
	Priority int `json:"priority" yaml:"priority"`

	// Kind selects the adapter: sqlite, ndjson, or pseudo.
	Kind PoolKind `json:"kind" yaml:"kind"`

	// Path is the database file, ndjson file, or id listing to read.
	Path string `json:"path" yaml:"path"`
}

// SourceConfig holds the ordered set of source record pools.
type SourceConfig struct {
	Pools []PoolConfig `json:"pools" yaml:"pools"`
}

// UnifyConfig holds settings for the union and deduplication stage.
type UnifyConfig struct {
	// DegenerateResolution is the legacy resolution class superseded by the
	// authority pool, excluded by identity alone (default "0.5m").
	DegenerateResolution string `json:"degenerate_resolution" yaml:"degenerate_resolution"`

	// AuthorityPool names the pool whose records supersede degenerate-class
	// records from all other pools (default "aux").
	AuthorityPool string `json:"authority_pool" yaml:"authority_pool"`
}

// CatalogConfig holds settings shared by the item and tree builders.
type CatalogConfig struct {
	// BaseURL is the public catalog base (default
	// "https://pgc-opendata-dems.s3.us-west-2.amazonaws.com").
	BaseURL string `json:"base_url" yaml:"base_url"`

	// S3Bucket is the object-storage mirror bucket (default "pgc-opendata-dems").
	S3Bucket string `json:"s3_bucket" yaml:"s3_bucket"`

	// BaseDir is the directory holding the static document tree.
	BaseDir string `json:"base_dir" yaml:"base_dir"`

	// Parallelism bounds concurrent per-partition builds (default 8).
	Parallelism int `json:"parallelism" yaml:"parallelism"`
}

// ItemsConfig holds settings for the item build stage.
type ItemsConfig struct {
	CatalogConfig `yaml:",inline"`

	// Publications is a YAML manifest of release publications.
	Publications string `json:"publications" yaml:"publications"`
}

// TreeConfig holds settings for the tree build stage.
type TreeConfig struct {
	CatalogConfig `yaml:",inline"`

	// FeedPath, when set, receives the touched documents as newline-delimited
	// JSON for the dynamic lookup service.
	FeedPath string `json:"feed_path,omitempty" yaml:"feed_path,omitempty"`
}

// PipelineConfig groups all stage configurations.
type PipelineConfig struct {
	Store  StoreConfig  `json:"store" yaml:"store"`
	Source SourceConfig `json:"source" yaml:"source"`
	Unify  UnifyConfig  `json:"unify" yaml:"unify"`
	Items  ItemsConfig  `json:"items" yaml:"items"`
	Tree   TreeConfig   `json:"tree" yaml:"tree"`
}
