package deptrace

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"
)

// LoadExternalPackages builds the known-external-packages set for a project:
// explicitly supplied names plus a best-effort parse of requirements.txt at
// the project root. Distribution names are normalized to importable form
// (lowercased, dashes to underscores).
func LoadExternalPackages(projectRoot string, explicit []string) map[string]bool {
	externals := make(map[string]bool, len(explicit))
	for _, name := range explicit {
		if name = normalizePackageName(name); name != "" {
			externals[name] = true
		}
	}

	for _, name := range parseRequirementsFile(filepath.Join(projectRoot, "requirements.txt")) {
		externals[name] = true
	}

	return externals
}

// parseRequirementsFile extracts package names from a pip requirements file.
// Only the bare name matters here; version specifiers, extras, markers, and
// pip options are discarded. A missing or unreadable file yields no names.
func parseRequirementsFile(path string) []string {
	f, err := os.Open(path)
	if err != nil {
		return nil
	}
	defer f.Close()

	var names []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "-") {
			continue
		}
		if name := normalizePackageName(requirementName(line)); name != "" {
			names = append(names, name)
		}
	}
	return names
}

// requirementName trims a requirement line down to its distribution name.
func requirementName(line string) string {
	if idx := strings.IndexAny(line, "=<>!~;[( \t#"); idx >= 0 {
		return line[:idx]
	}
	return line
}

func normalizePackageName(name string) string {
	name = strings.TrimSpace(strings.ToLower(name))
	return strings.ReplaceAll(name, "-", "_")
}
