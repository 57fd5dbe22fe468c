// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package stactree

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"sync"
)

// feedWriter appends written documents as newline-delimited JSON, one
// compacted document per line. Each run truncates the feed; the feed is a
// projection of the documents written by that run, not a change log.
// Write is safe for concurrent use.
type feedWriter struct {
	mu    sync.Mutex
	f     *os.File
	buf   *bufio.Writer
	lines int
}

func newFeedWriter(path string) (*feedWriter, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("creating feed %s: %w", path, err)
	}
	return &feedWriter{f: f, buf: bufio.NewWriter(f)}, nil
}

func (fw *feedWriter) Write(doc []byte) error {
	fw.mu.Lock()
	defer fw.mu.Unlock()

	var compact bytes.Buffer
	if err := json.Compact(&compact, doc); err != nil {
		return fmt.Errorf("compacting feed line: %w", err)
	}
	if _, err := fw.buf.Write(compact.Bytes()); err != nil {
		return err
	}
	if err := fw.buf.WriteByte('\n'); err != nil {
		return err
	}
	fw.lines++
	return nil
}

func (fw *feedWriter) Close() error {
	if err := fw.buf.Flush(); err != nil {
		fw.f.Close()
		return err
	}
	return fw.f.Close()
}
