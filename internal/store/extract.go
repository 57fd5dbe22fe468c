// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/pdiddy/dem-catalog/pkg/types"
)

// ExtractOptions selects which stored item documents to materialize and
// where. Exactly one of AllItems, Collection, or Collection+TextFile or
// Collection+ItemID selects the item set.
type ExtractOptions struct {
	Collection string
	ItemID     string

	// TextFile names a file of item ids, one per line, looked up within
	// Collection. Ids with no stored document are reported, not fatal.
	TextFile string

	AllItems bool

	// NDJSON writes one {collection}.ndjson per collection instead of the
	// per-item directory mirror.
	NDJSON bool

	Overwrite bool
	DryRun    bool
	BaseDir   string
}

// ExtractSummary reports an extraction run.
type ExtractSummary struct {
	Written int
	Skipped int
	Missing int
}

// Total returns the number of items considered.
func (s ExtractSummary) Total() int {
	return s.Written + s.Skipped + s.Missing
}

// Extract materializes stored item documents as files under BaseDir. Item
// paths mirror the item's self href so the output is directly servable.
func (s *Store) Extract(ctx context.Context, opts ExtractOptions, w io.Writer) (ExtractSummary, error) {
	var summary ExtractSummary

	items, err := s.selectItems(ctx, opts, &summary, w)
	if err != nil {
		return summary, err
	}

	if opts.NDJSON {
		if err := s.extractNDJSON(items, opts, &summary, w); err != nil {
			return summary, err
		}
	} else {
		for _, item := range items {
			if err := extractItem(item, opts, &summary, w); err != nil {
				return summary, err
			}
		}
	}

	fmt.Fprintf(w, "\nExtract summary: %d written, %d skipped, %d missing\n",
		summary.Written, summary.Skipped, summary.Missing)
	return summary, nil
}

func (s *Store) selectItems(ctx context.Context, opts ExtractOptions, summary *ExtractSummary, w io.Writer) ([]*types.Item, error) {
	switch {
	case opts.AllItems:
		return s.LoadItems(ctx, "")

	case opts.TextFile != "":
		if opts.Collection == "" {
			return nil, fmt.Errorf("a collection is required with an id list")
		}
		ids, err := readIDList(opts.TextFile)
		if err != nil {
			return nil, err
		}
		var items []*types.Item
		for _, id := range ids {
			item, err := s.LoadItem(ctx, opts.Collection, id)
			if err != nil {
				fmt.Fprintf(w, "missing %s/%s\n", opts.Collection, id)
				summary.Missing++
				continue
			}
			items = append(items, item)
		}
		return items, nil

	case opts.ItemID != "":
		if opts.Collection == "" {
			return nil, fmt.Errorf("a collection is required with an item id")
		}
		item, err := s.LoadItem(ctx, opts.Collection, opts.ItemID)
		if err != nil {
			return nil, err
		}
		return []*types.Item{item}, nil

	case opts.Collection != "":
		return s.LoadItems(ctx, opts.Collection)

	default:
		return nil, fmt.Errorf("nothing selected: pass a collection, an item id, an id list, or all items")
	}
}

func readIDList(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening id list %s: %w", path, err)
	}
	defer f.Close()

	var ids []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		ids = append(ids, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading id list %s: %w", path, err)
	}
	return ids, nil
}

// itemRelPath mirrors the item's self href as a relative file path:
// {domain}/{kind-release-resolution}/{partition}/{id}.json.
func itemRelPath(item *types.Item) (string, error) {
	self := item.SelfHref()
	if self == "" {
		return "", fmt.Errorf("item %s has no self link", item.ID)
	}
	u, err := url.Parse(self)
	if err != nil {
		return "", fmt.Errorf("parsing self href of %s: %w", item.ID, err)
	}
	segments := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(segments) < 4 {
		return "", fmt.Errorf("self href of %s has fewer than 4 path segments", item.ID)
	}
	return path.Join(segments[len(segments)-4:]...), nil
}

func extractItem(item *types.Item, opts ExtractOptions, summary *ExtractSummary, w io.Writer) error {
	rel, err := itemRelPath(item)
	if err != nil {
		return err
	}
	outPath := filepath.Join(opts.BaseDir, filepath.FromSlash(rel))

	if _, err := os.Stat(outPath); err == nil && !opts.Overwrite {
		summary.Skipped++
		return nil
	}

	if opts.DryRun {
		fmt.Fprintf(w, "would write %s\n", outPath)
		summary.Written++
		return nil
	}

	data, err := json.MarshalIndent(item, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling item %s: %w", item.ID, err)
	}
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", filepath.Dir(outPath), err)
	}
	fmt.Fprintf(w, "writing %s\n", outPath)
	if err := os.WriteFile(outPath, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", outPath, err)
	}
	summary.Written++
	return nil
}

func (s *Store) extractNDJSON(items []*types.Item, opts ExtractOptions, summary *ExtractSummary, w io.Writer) error {
	byCollection := make(map[string][]*types.Item)
	for _, item := range items {
		byCollection[item.Collection] = append(byCollection[item.Collection], item)
	}

	for collection, collItems := range byCollection {
		outPath := filepath.Join(opts.BaseDir, collection+".ndjson")

		if _, err := os.Stat(outPath); err == nil && !opts.Overwrite {
			summary.Skipped += len(collItems)
			continue
		}
		if opts.DryRun {
			fmt.Fprintf(w, "would write %s (%d items)\n", outPath, len(collItems))
			summary.Written += len(collItems)
			continue
		}

		if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
			return fmt.Errorf("creating %s: %w", filepath.Dir(outPath), err)
		}
		f, err := os.Create(outPath)
		if err != nil {
			return fmt.Errorf("creating %s: %w", outPath, err)
		}
		buf := bufio.NewWriter(f)
		for _, item := range collItems {
			line, err := json.Marshal(item)
			if err != nil {
				f.Close()
				return fmt.Errorf("marshaling item %s: %w", item.ID, err)
			}
			buf.Write(line)
			buf.WriteByte('\n')
		}
		if err := buf.Flush(); err != nil {
			f.Close()
			return fmt.Errorf("writing %s: %w", outPath, err)
		}
		if err := f.Close(); err != nil {
			return fmt.Errorf("closing %s: %w", outPath, err)
		}
		fmt.Fprintf(w, "writing %s (%d items)\n", outPath, len(collItems))
		summary.Written += len(collItems)
	}
	return nil
}
