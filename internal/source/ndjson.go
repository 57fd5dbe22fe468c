// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package source

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/pdiddy/dem-catalog/pkg/types"
)

// NDJSONPool reads a pool from a newline-delimited JSON file, one
// SourceRecord per line. Used for staging imports, the tape archive index,
// and the cloud-delivery index.
type NDJSONPool struct {
	name     string
	priority int
	path     string
}

func (p *NDJSONPool) Name() string  { return p.name }
func (p *NDJSONPool) Priority() int { return p.priority }

func (p *NDJSONPool) Load(ctx context.Context) ([]types.SourceRecord, error) {
	f, err := os.Open(p.path)
	if err != nil {
		return nil, fmt.Errorf("opening ndjson pool: %w", err)
	}
	defer f.Close()

	var records []types.SourceRecord
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	lineno := 0
	for scanner.Scan() {
		lineno++
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var rec types.SourceRecord
		if err := json.Unmarshal([]byte(line), &rec); err != nil {
			return nil, fmt.Errorf("parsing %s line %d: %w", p.path, lineno, err)
		}
		records = append(records, rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading %s: %w", p.path, err)
	}
	return records, nil
}
