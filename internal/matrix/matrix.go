// Package matrix holds the deterministic post-processing passes applied to
// adjacency matrix files produced by external network builders.
package matrix

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// maxLineSize bounds a single matrix row. Genome-wide matrices have tens
// of thousands of columns.
const maxLineSize = 64 * 1024 * 1024

// StripHeaderAndFirstColumn rewrites the whitespace-delimited matrix at
// path without its first line and without the first field of every
// remaining line. Fields are re-joined with tabs. Blank lines are dropped.
//
// The file is replaced atomically: the result is written to a temporary
// file in the same directory and renamed over path. The permissions of the
// original file are kept.
func StripHeaderAndFirstColumn(path string) error {
	in, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open matrix: %w", err)
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return fmt.Errorf("stat matrix: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp matrix: %w", err)
	}
	tmpPath := tmp.Name()
	// Removing after a successful rename is a no-op.
	defer os.Remove(tmpPath)

	w := bufio.NewWriter(tmp)
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	header := true
	for scanner.Scan() {
		if header {
			header = false
			continue
		}
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		if _, err := w.WriteString(strings.Join(fields[1:], "\t")); err != nil {
			tmp.Close()
			return fmt.Errorf("write matrix: %w", err)
		}
		if err := w.WriteByte('\n'); err != nil {
			tmp.Close()
			return fmt.Errorf("write matrix: %w", err)
		}
	}
	if err := scanner.Err(); err != nil {
		tmp.Close()
		return fmt.Errorf("read matrix %s: %w", path, err)
	}

	if err := w.Flush(); err != nil {
		tmp.Close()
		return fmt.Errorf("flush matrix: %w", err)
	}
	if err := tmp.Chmod(info.Mode().Perm()); err != nil {
		tmp.Close()
		return fmt.Errorf("chmod temp matrix: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp matrix: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("replace matrix: %w", err)
	}
	return nil
}
