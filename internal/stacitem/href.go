// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package stacitem

import "fmt"

// RootCatalogID is the id and path stem of the top-level catalog document.
const RootCatalogID = "pgc-data-stac"

// CollectionKey is the catalog partition key: one collection per
// (domain, kind, release, resolution) tuple.
type CollectionKey struct {
	Domain     string
	Kind       string
	Release    string
	Resolution string
}

// ID renders the collection id, e.g. "arcticdem-strips-s2s041-2m".
func (k CollectionKey) ID() string {
	return fmt.Sprintf("%s-%s-%s-%s", k.Domain, k.Kind, k.Release, k.Resolution)
}

// PathSegment renders the collection's single path segment under the domain,
// e.g. "strips-s2s041-2m". Keeping kind, release, and resolution in one
// segment keeps every link in an item's links block a pure truncation of the
// item's own path: root, collection, parent, and self differ by exactly one
// segment each.
func (k CollectionKey) PathSegment() string {
	return fmt.Sprintf("%s-%s-%s", k.Kind, k.Release, k.Resolution)
}

// HrefBuilder derives every href for one item from the fixed path template
// {base}/{domain}/{kind-release-resolution}/{partition}/{item-id}.json,
// truncated at successive depths for parent, collection, and root. Asset
// hrefs replace the .json suffix with the asset's fixed file suffix, and
// mirror to an object-storage URI under the bucket base.
type HrefBuilder struct {
	BaseURL   string
	S3Bucket  string
	Key       CollectionKey
	Partition string
	ItemID    string
}

func (b HrefBuilder) itemStem() string {
	return fmt.Sprintf("%s/%s/%s/%s", b.Key.Domain, b.Key.PathSegment(), b.Partition, b.ItemID)
}

// ItemHref is the item's self href.
func (b HrefBuilder) ItemHref() string {
	return fmt.Sprintf("%s/%s.json", b.BaseURL, b.itemStem())
}

// PartitionHref is the enclosing spatial-partition catalog (parent link).
func (b HrefBuilder) PartitionHref() string {
	return fmt.Sprintf("%s/%s/%s/%s.json", b.BaseURL, b.Key.Domain, b.Key.PathSegment(), b.Partition)
}

// CollectionHref is the enclosing release/resolution collection.
func (b HrefBuilder) CollectionHref() string {
	return fmt.Sprintf("%s/%s/%s.json", b.BaseURL, b.Key.Domain, b.Key.PathSegment())
}

// DomainHref is the domain collection document (not linked from items).
func (b HrefBuilder) DomainHref() string {
	return fmt.Sprintf("%s/%s.json", b.BaseURL, b.Key.Domain)
}

// RootHref is the top-level catalog document.
func (b HrefBuilder) RootHref() string {
	return fmt.Sprintf("%s/%s.json", b.BaseURL, RootCatalogID)
}

// AssetHref is the public href for an asset suffix like "_dem.tif".
func (b HrefBuilder) AssetHref(suffix string) string {
	return fmt.Sprintf("%s/%s%s", b.BaseURL, b.itemStem(), suffix)
}

// AssetS3Href is the object-storage mirror of AssetHref.
func (b HrefBuilder) AssetS3Href(suffix string) string {
	return fmt.Sprintf("s3://%s/%s%s", b.S3Bucket, b.itemStem(), suffix)
}
