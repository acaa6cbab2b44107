// Package manifest renders tracked package sets as requirements files and
// discovers installed versions from a project's virtual environment.
package manifest

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/ben-ranford/reqtracker/internal/mapping"
)

// Strategy controls the version specifier attached to each package.
type Strategy string

const (
	// StrategyExact pins with ==.
	StrategyExact Strategy = "exact"
	// StrategyCompatible uses the compatible-release operator ~=.
	StrategyCompatible Strategy = "compatible"
	// StrategyMinimum sets a >= floor.
	StrategyMinimum Strategy = "minimum"
	// StrategyNone emits bare package names.
	StrategyNone Strategy = "none"
)

// ParseStrategy validates a user-supplied strategy string.
func ParseStrategy(value string) (Strategy, error) {
	switch Strategy(strings.ToLower(strings.TrimSpace(value))) {
	case StrategyExact:
		return StrategyExact, nil
	case StrategyCompatible:
		return StrategyCompatible, nil
	case StrategyMinimum:
		return StrategyMinimum, nil
	case StrategyNone:
		return StrategyNone, nil
	default:
		return "", fmt.Errorf("unknown version strategy %q (expected exact, compatible, minimum, or none)", value)
	}
}

// RenderOptions shape the generated requirements text.
type RenderOptions struct {
	Strategy Strategy
	// Versions maps package name to installed version. Packages without an
	// entry fall back to a bare name regardless of strategy.
	Versions map[string]string
	Header   bool
	Sort     bool
	// Now supplies the header timestamp; zero means time.Now.
	Now time.Time
}

// Render produces the requirements file content for the tracked packages.
// The trailing newline is always present when at least one line is emitted.
func Render(packages []string, opts RenderOptions) string {
	lines := make([]string, len(packages))
	copy(lines, packages)
	if opts.Sort {
		sort.Slice(lines, func(i, j int) bool {
			return strings.ToLower(lines[i]) < strings.ToLower(lines[j])
		})
	}

	// Installed versions are keyed by whatever casing the environment
	// recorded; index them by normalized name so lookups are spelling
	// independent.
	versions := make(map[string]string, len(opts.Versions))
	for name, version := range opts.Versions {
		versions[mapping.Normalize(name)] = version
	}

	var b strings.Builder
	if opts.Header {
		now := opts.Now
		if now.IsZero() {
			now = time.Now()
		}
		fmt.Fprintf(&b, "# Generated by reqtracker on %s\n", now.UTC().Format(time.RFC3339))
	}
	for _, pkg := range lines {
		b.WriteString(requirementLine(pkg, versions, opts))
		b.WriteByte('\n')
	}
	return b.String()
}

func requirementLine(pkg string, versions map[string]string, opts RenderOptions) string {
	version := versions[mapping.Normalize(pkg)]
	if version == "" || opts.Strategy == StrategyNone {
		return pkg
	}
	switch opts.Strategy {
	case StrategyExact:
		return pkg + "==" + version
	case StrategyCompatible:
		return pkg + "~=" + version
	case StrategyMinimum:
		return pkg + ">=" + version
	default:
		return pkg
	}
}

// venvDirs are checked in order under the project root.
var venvDirs = []string{".venv", "venv"}

// InstalledVersions scans the project's virtual environment site-packages
// for dist-info metadata and returns a map of distribution name to version.
// A missing environment is not an error; the map is simply empty.
func InstalledVersions(projectRoot string) (map[string]string, error) {
	versions := make(map[string]string)
	for _, dir := range venvDirs {
		base := filepath.Join(projectRoot, dir)
		if _, err := os.Stat(base); err != nil {
			continue
		}
		for _, site := range sitePackageDirs(base) {
			if err := collectDistInfo(site, versions); err != nil {
				return nil, err
			}
		}
	}
	return versions, nil
}

func sitePackageDirs(venv string) []string {
	var dirs []string
	// POSIX layout: <venv>/lib/pythonX.Y/site-packages.
	matches, _ := filepath.Glob(filepath.Join(venv, "lib", "python*", "site-packages"))
	dirs = append(dirs, matches...)
	// Windows layout.
	windows := filepath.Join(venv, "Lib", "site-packages")
	if info, err := os.Stat(windows); err == nil && info.IsDir() {
		dirs = append(dirs, windows)
	}
	return dirs
}

func collectDistInfo(site string, versions map[string]string) error {
	entries, err := os.ReadDir(site)
	if err != nil {
		return fmt.Errorf("read site-packages %s: %w", site, err)
	}
	for _, entry := range entries {
		if !entry.IsDir() || !strings.HasSuffix(entry.Name(), ".dist-info") {
			continue
		}
		name, version, err := readMetadata(filepath.Join(site, entry.Name(), "METADATA"))
		if err != nil || name == "" || version == "" {
			continue
		}
		versions[name] = version
	}
	return nil
}

func readMetadata(path string) (name, version string, err error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return "", "", err
	}
	scanner := bufio.NewScanner(bytes.NewReader(content))
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			break
		}
		if value, ok := strings.CutPrefix(line, "Name: "); ok {
			name = strings.TrimSpace(value)
		}
		if value, ok := strings.CutPrefix(line, "Version: "); ok {
			version = strings.TrimSpace(value)
		}
	}
	return name, version, scanner.Err()
}
