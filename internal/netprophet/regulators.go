package netprophet

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ReadRegulators reads one regulator identifier per line. Lines are
// trimmed; blank lines and lines starting with # are skipped; a repeated
// identifier keeps its first position. File order is task order.
func ReadRegulators(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open regulators: %w", err)
	}
	defer f.Close()

	var (
		regs []string
		seen = make(map[string]struct{})
	)
	scanner := bufio.NewScanner(f)
	for line := 1; scanner.Scan(); line++ {
		id := strings.TrimSpace(scanner.Text())
		if id == "" || strings.HasPrefix(id, "#") {
			continue
		}
		// Identifiers become path elements of per-regulator outputs.
		if strings.ContainsRune(id, filepath.Separator) || id == "." || id == ".." {
			return nil, fmt.Errorf("regulators %s line %d: invalid identifier %q", path, line, id)
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		regs = append(regs, id)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read regulators %s: %w", path, err)
	}
	return regs, nil
}
