// Package resolver turns raw import sets into the tracked package set. It
// selects inputs by mode, filters standard-library, self, local and ignored
// names, and maps the survivors to their normalized distribution names.
package resolver

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ben-ranford/reqtracker/internal/mapping"
	"github.com/ben-ranford/reqtracker/internal/pystdlib"
)

// Mode selects which scanners feed the resolution pipeline.
type Mode string

const (
	ModeStatic  Mode = "static"
	ModeDynamic Mode = "dynamic"
	ModeHybrid  Mode = "hybrid"
)

// ParseMode validates a user-supplied mode string.
func ParseMode(value string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(value))) {
	case ModeStatic:
		return ModeStatic, nil
	case ModeDynamic:
		return ModeDynamic, nil
	case ModeHybrid:
		return ModeHybrid, nil
	default:
		return "", fmt.Errorf("unknown mode %q (expected static, dynamic, or hybrid)", value)
	}
}

// Classification labels why an import survived resolution or was dropped.
type Classification string

const (
	ClassStdlib  Classification = "stdlib"
	ClassSelf    Classification = "self"
	ClassLocal   Classification = "local"
	ClassIgnored Classification = "ignored"
	ClassPackage Classification = "package"
)

// Options parameterize a resolution run.
type Options struct {
	Mode        Mode
	SourceRoots []string
	// Overrides take precedence over the built-in import map.
	Overrides map[string]string
	// SelfName is the project's own distribution name; import names
	// matching it, before or after mapping, are excluded so a project
	// never tracks itself. The tool's own name is always excluded.
	SelfName string
	// IgnorePackages removes distributions from the final set, matched
	// after normalization.
	IgnorePackages []string
}

// Resolve merges the scanner outputs for the selected mode and reduces them
// to a sorted, deduplicated set of distribution names.
func Resolve(static, dynamic map[string]struct{}, opts Options) []string {
	merged := selectInputs(static, dynamic, opts.Mode)

	ignored := make(map[string]bool, len(opts.IgnorePackages))
	for _, name := range opts.IgnorePackages {
		ignored[mapping.Normalize(name)] = true
	}

	tracked := make(map[string]string)
	for name := range merged {
		class, pkg := Classify(name, opts)
		if class != ClassPackage {
			continue
		}
		if ignored[mapping.Normalize(pkg)] {
			continue
		}
		tracked[mapping.Normalize(pkg)] = pkg
	}

	packages := make([]string, 0, len(tracked))
	for _, pkg := range tracked {
		packages = append(packages, pkg)
	}
	sort.Slice(packages, func(i, j int) bool {
		return strings.ToLower(packages[i]) < strings.ToLower(packages[j])
	})
	return packages
}

// Classify reports how a single import root fares in the pipeline and, for
// surviving imports, the distribution it maps to. Ignore matching is left to
// Resolve; Classify reports ClassIgnored only for an exact normalized match
// so per-import reporting stays informative.
func Classify(name string, opts Options) (Classification, string) {
	if pystdlib.IsStandardLibrary(name) {
		return ClassStdlib, ""
	}
	if isLocalModule(name, opts.SourceRoots) {
		return ClassLocal, ""
	}
	// Self filtering runs on the raw import name before mapping so a
	// self_name that collides with a mapped distribution cannot slip
	// through, and again on the mapped name as a second guard.
	if isSelf(name, opts.SelfName) {
		return ClassSelf, ""
	}
	pkg := mapping.Resolve(name, opts.Overrides)
	if isSelf(pkg, opts.SelfName) {
		return ClassSelf, ""
	}
	for _, ignore := range opts.IgnorePackages {
		if mapping.Normalize(ignore) == mapping.Normalize(pkg) {
			return ClassIgnored, pkg
		}
	}
	return ClassPackage, pkg
}

// toolDistribution is this tool's own distribution name. It is always
// treated as a self reference so scanning a project that imports the
// tracker never lists the tracker as a dependency.
const toolDistribution = "reqtracker"

func isSelf(name string, selfName string) bool {
	normalized := mapping.Normalize(name)
	if normalized == toolDistribution {
		return true
	}
	return selfName != "" && normalized == mapping.Normalize(selfName)
}

func selectInputs(static, dynamic map[string]struct{}, mode Mode) map[string]struct{} {
	merged := make(map[string]struct{})
	if mode == ModeStatic || mode == ModeHybrid {
		for name := range static {
			merged[name] = struct{}{}
		}
	}
	if mode == ModeDynamic || mode == ModeHybrid {
		for name := range dynamic {
			merged[name] = struct{}{}
		}
	}
	return merged
}

// isLocalModule reports whether the import resolves to first-party code
// under one of the project's source roots, either as a module file or a
// package directory.
func isLocalModule(name string, sourceRoots []string) bool {
	for _, root := range sourceRoots {
		if fileExists(filepath.Join(root, name+".py")) {
			return true
		}
		if fileExists(filepath.Join(root, name, "__init__.py")) {
			return true
		}
	}
	return false
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
