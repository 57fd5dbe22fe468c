// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package stactree aggregates catalog items into the hierarchical node tree
// (root, domain, collection, spatial partition). Nodes are rebuilt from a
// full scan of their members, never patched incrementally, so a node's
// child links always equal its membership at build time. Children are built
// before parents; a node is written whole or not at all.
package stactree

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/gofrs/flock"
	"golang.org/x/sync/errgroup"

	"github.com/pdiddy/dem-catalog/pkg/types"
)

// Builder rebuilds the catalog node tree under BaseDir.
type Builder struct {
	BaseDir string
	BaseURL string

	// Overwrite must be set explicitly to replace existing node documents.
	// Without it an existing node is left untouched even if stale.
	Overwrite bool

	// Collections optionally restricts partition and collection rebuilds to
	// the named collection ids. Domain and root nodes are always rebuilt
	// from the full scan so their child links stay consistent.
	Collections []string

	// FeedPath, when set, receives every written document as one JSON line.
	FeedPath string

	// Parallelism bounds concurrent partition builds (default 8).
	Parallelism int
}

// Summary reports a tree build run.
type Summary struct {
	ItemsScanned int
	Written      int
	Skipped      int
	FeedLines    int
}

// itemRef is the loaded view of one scanned item document.
type itemRef struct {
	item      *types.Item
	domain    string
	collSeg   string // kind-release-resolution path segment
	partition string
}

// Build scans BaseDir for item documents and (re)builds every node above
// them. The build holds an advisory lock on the base dir so concurrent
// drivers cannot interleave parent rebuilds.
func (b *Builder) Build(ctx context.Context, w io.Writer) (Summary, error) {
	var summary Summary

	lock := flock.New(filepath.Join(b.BaseDir, ".catalog-build.lock"))
	ok, err := lock.TryLock()
	if err != nil {
		return summary, fmt.Errorf("acquiring build lock: %w", err)
	}
	if !ok {
		return summary, fmt.Errorf("another tree build holds the lock for %s", b.BaseDir)
	}
	defer lock.Unlock()

	refs, err := b.scanItems(ctx)
	if err != nil {
		return summary, err
	}
	summary.ItemsScanned = len(refs)
	fmt.Fprintf(w, "scanned %d catalog items under %s\n", len(refs), b.BaseDir)

	var feed *feedWriter
	if b.FeedPath != "" {
		feed, err = newFeedWriter(b.FeedPath)
		if err != nil {
			return summary, err
		}
		defer feed.Close()
	}

	// domain -> collection segment -> partition -> items
	tree := make(map[string]map[string]map[string][]*types.Item)
	for _, ref := range refs {
		domains := tree[ref.domain]
		if domains == nil {
			domains = make(map[string]map[string][]*types.Item)
			tree[ref.domain] = domains
		}
		parts := domains[ref.collSeg]
		if parts == nil {
			parts = make(map[string][]*types.Item)
			domains[ref.collSeg] = parts
		}
		parts[ref.partition] = append(parts[ref.partition], ref.item)
	}

	only := make(map[string]bool, len(b.Collections))
	for _, c := range b.Collections {
		only[c] = true
	}

	root := b.rootCatalog()

	for _, domain := range sortedKeys(tree) {
		domainNode := b.domainCollection(domain)
		domainExtent := newExtentAccum()

		for _, collSeg := range sortedKeys(tree[domain]) {
			collNode := b.collectionNode(domain, collSeg)
			collExtent := newExtentAccum()
			collID := domain + "-" + collSeg
			buildThis := len(only) == 0 || only[collID]

			partitions := tree[domain][collSeg]
			partNodes := make(map[string]*types.Node, len(partitions))

			// Partition nodes are independent of each other; build them in
			// parallel, then join before touching any parent (children must
			// be fully written before parents are rebuilt).
			g, _ := errgroup.WithContext(ctx)
			g.SetLimit(b.parallelism())
			var mu sync.Mutex
			for _, partition := range sortedKeys(partitions) {
				partition := partition
				g.Go(func() error {
					node := b.partitionCatalog(domain, collSeg, partition, partitions[partition])
					mu.Lock()
					partNodes[partition] = node
					mu.Unlock()
					if !buildThis {
						return nil
					}
					written, err := b.writeDoc(node, node.SelfHref(), feed, w)
					mu.Lock()
					countWrite(&summary, written)
					mu.Unlock()
					return err
				})
			}
			if err := g.Wait(); err != nil {
				return summary, err
			}

			for _, partition := range sortedKeys(partitions) {
				addChild(collNode, nodeChildLink(partNodes[partition]))
				for _, item := range sortedItems(partitions[partition]) {
					collExtent.addItem(item)
				}
			}
			collExtent.apply(collNode)
			domainExtent.merge(collExtent)

			if buildThis {
				written, err := b.writeDoc(collNode, collNode.SelfHref(), feed, w)
				if err != nil {
					return summary, err
				}
				countWrite(&summary, written)
			}
			addChild(domainNode, nodeChildLink(collNode))
		}

		domainExtent.apply(domainNode)
		written, err := b.writeDoc(domainNode, domainNode.SelfHref(), feed, w)
		if err != nil {
			return summary, err
		}
		countWrite(&summary, written)
		addChild(root, nodeChildLink(domainNode))
	}

	written, err := b.writeDoc(root, root.SelfHref(), feed, w)
	if err != nil {
		return summary, err
	}
	countWrite(&summary, written)

	if feed != nil {
		summary.FeedLines = feed.lines
	}
	fmt.Fprintf(w, "\nTree summary: %d written, %d skipped, %d feed lines\n",
		summary.Written, summary.Skipped, summary.FeedLines)
	return summary, nil
}

func (b *Builder) parallelism() int {
	if b.Parallelism <= 0 {
		return 8
	}
	return b.Parallelism
}

func countWrite(s *Summary, written bool) {
	if written {
		s.Written++
	} else {
		s.Skipped++
	}
}

// scanItems walks BaseDir for item documents at the fixed depth
// {domain}/{kind-release-resolution}/{partition}/{item}.json.
func (b *Builder) scanItems(ctx context.Context) ([]itemRef, error) {
	var refs []itemRef

	err := filepath.WalkDir(b.BaseDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), ".json") {
			return nil
		}

		rel, err := filepath.Rel(b.BaseDir, path)
		if err != nil {
			return err
		}
		parts := strings.Split(filepath.ToSlash(rel), "/")
		if len(parts) != 4 {
			return nil
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading %s: %w", path, err)
		}
		var item types.Item
		if err := json.Unmarshal(data, &item); err != nil {
			return fmt.Errorf("parsing %s: %w", path, err)
		}
		if item.Type != "Feature" {
			return nil
		}

		refs = append(refs, itemRef{
			item:      &item,
			domain:    parts[0],
			collSeg:   parts[1],
			partition: parts[2],
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", b.BaseDir, err)
	}
	return refs, nil
}

// writeDoc writes a document to the path derived from its self href,
// honoring the overwrite contract: an existing file is only replaced when
// Overwrite is set. The document is marshaled fully before any write, so a
// crashed rebuild cannot leave a mixed old/new node.
func (b *Builder) writeDoc(doc any, selfHref string, feed *feedWriter, w io.Writer) (bool, error) {
	rel := strings.TrimPrefix(selfHref, b.BaseURL+"/")
	path := filepath.Join(b.BaseDir, filepath.FromSlash(rel))

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return false, fmt.Errorf("marshaling %s: %w", path, err)
	}

	if _, err := os.Stat(path); err == nil && !b.Overwrite {
		return false, nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return false, fmt.Errorf("creating %s: %w", filepath.Dir(path), err)
	}
	fmt.Fprintf(w, "writing %s\n", path)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return false, fmt.Errorf("writing %s: %w", path, err)
	}

	if feed != nil {
		if err := feed.Write(data); err != nil {
			return false, err
		}
	}
	return true, nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// sortedItems orders children by item identity, ascending, so output is
// deterministic across reruns.
func sortedItems(items []*types.Item) []*types.Item {
	out := append([]*types.Item(nil), items...)
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func addChild(parent *types.Node, link types.Link) {
	parent.Links = append(parent.Links, link)
}

func nodeChildLink(n *types.Node) types.Link {
	return types.Link{Rel: "child", Href: n.SelfHref(), Title: n.Title, Type: "application/json"}
}

func itemChildLink(it *types.Item) types.Link {
	title, _ := it.Properties["title"].(string)
	return types.Link{Rel: "child", Href: it.SelfHref(), Title: title, Type: "application/geo+json"}
}
