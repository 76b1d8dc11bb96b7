package discovery

import (
	"bytes"
	"fmt"
	"io"
	"strings"
)

// ReadSeedPaths reads input paths from a reader, one per line, or separated
// by NUL bytes when nulSeparated is set (the find -print0 convention). Blank
// entries are dropped.
func ReadSeedPaths(r io.Reader, nulSeparated bool) ([]string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed paths: %w", err)
	}

	separator := []byte("\n")
	if nulSeparated {
		separator = []byte{0}
	}

	var paths []string
	for _, chunk := range bytes.Split(data, separator) {
		path := strings.TrimSpace(string(chunk))
		if path != "" {
			paths = append(paths, path)
		}
	}
	return paths, nil
}
