// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package source

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/pdiddy/dem-catalog/pkg/types"
)

// PseudoPool synthesizes fallback records from a newline-delimited listing
// of StripDEMIDs. Pseudo records carry no location and only the fields
// derivable from the identity itself; they keep an identity visible to
// canonical resolution when no real pool holds it.
type PseudoPool struct {
	name     string
	priority int
	path     string
}

func (p *PseudoPool) Name() string  { return p.name }
func (p *PseudoPool) Priority() int { return p.priority }

func (p *PseudoPool) Load(ctx context.Context) ([]types.SourceRecord, error) {
	f, err := os.Open(p.path)
	if err != nil {
		return nil, fmt.Errorf("opening id listing: %w", err)
	}
	defer f.Close()

	var records []types.SourceRecord
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		id := strings.TrimSpace(scanner.Text())
		if id == "" {
			continue
		}
		records = append(records, pseudoRecord(id))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading %s: %w", p.path, err)
	}
	return records, nil
}

// pseudoRecord derives what it can from the identity string: resolution from
// the trailing "<n>m" token, version from the "_v..." suffix, and the LSF
// marker token.
func pseudoRecord(stripDEMID string) types.SourceRecord {
	rec := types.SourceRecord{
		SceneDEMID: stripDEMID,
		StripDEMID: stripDEMID,
		Class:      types.ClassStrip,
	}

	for _, tok := range strings.Split(stripDEMID, "_") {
		switch {
		case tok == "lsf":
			rec.IsLSF = true
		case len(tok) > 1 && strings.HasSuffix(tok, "m") && isDigits(strings.TrimSuffix(strings.ReplaceAll(tok, ".", ""), "m")):
			rec.Resolution = tok
		case len(tok) > 1 && tok[0] == 'v' && isDigits(strings.ReplaceAll(tok[1:], ".", "")):
			rec.Version = expandVersion(tok[1:])
		}
	}
	return rec
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

// expandVersion converts a compact version token like "040103" to the
// dot-delimited form "4.1.3". Already-dotted tokens pass through.
func expandVersion(s string) string {
	if strings.Contains(s, ".") {
		return s
	}
	if len(s)%2 != 0 {
		return s
	}
	parts := make([]string, 0, len(s)/2)
	for i := 0; i < len(s); i += 2 {
		part := strings.TrimLeft(s[i:i+2], "0")
		if part == "" {
			part = "0"
		}
		parts = append(parts, part)
	}
	return strings.Join(parts, ".")
}
