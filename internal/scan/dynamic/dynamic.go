// Package dynamic observes the modules a Python entry point actually imports
// at runtime. The scanner drops an import-audit hook onto the interpreter's
// path, runs the entry command with trace environment variables set, and
// reads back the recorded module names once the process exits.
//
// Captured modules include transitive imports pulled in by direct
// dependencies. That is a documented limitation of runtime observation:
// downstream resolution does not compensate, which is why dynamic and hybrid
// tracking are best-effort relative to static.
package dynamic

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync/atomic"
)

const (
	// TraceEnv names the file the hook appends imported module names to.
	TraceEnv = "REQTRACKER_TRACE"
	// ActiveEnv marks an analysis already in progress in this process
	// tree. A nested scan sees it and returns an empty set instead of
	// recursing into itself.
	ActiveEnv = "REQTRACKER_ACTIVE"
)

// hookSource is installed as sitecustomize.py in a directory prepended to
// PYTHONPATH, so the interpreter loads it before any user code. The finder
// records names and always defers actual loading to the default machinery.
const hookSource = `import os
import sys

_trace = os.environ.get("REQTRACKER_TRACE")

if _trace:
    class _ImportAudit:
        def find_spec(self, fullname, path=None, target=None):
            try:
                with open(_trace, "a", encoding="utf-8") as fh:
                    fh.write(fullname.split(".")[0] + "\n")
            except OSError:
                pass
            return None

    sys.meta_path.insert(0, _ImportAudit())
`

// The import machinery is process-global, so only one activation may run at
// a time. A flag rather than a lock: the hazard is logical recursion, not
// parallel contention, and a nested caller should skip rather than wait.
var activation atomic.Bool

// Scan runs the entry command under the import observer and returns the set
// of root module names imported while it ran. If an analysis is already
// active (in this process or an ancestor, via ActiveEnv) the nested scan is
// skipped and an empty set is returned. The observer and its temp directory
// are removed on every exit path.
//
// A failing entry command still yields whatever was traced before the
// failure, alongside the error, so hybrid callers can degrade to a warning.
func Scan(ctx context.Context, projectRoot string, entry string) (map[string]struct{}, error) {
	imports := make(map[string]struct{})
	if os.Getenv(ActiveEnv) != "" {
		return imports, nil
	}
	if !activation.CompareAndSwap(false, true) {
		return imports, nil
	}
	defer activation.Store(false)

	entry = strings.TrimSpace(entry)
	if entry == "" {
		return imports, fmt.Errorf("dynamic scan requires an entry command")
	}

	hookDir, err := os.MkdirTemp("", "reqtracker-hook-*")
	if err != nil {
		return imports, fmt.Errorf("create hook directory: %w", err)
	}
	defer os.RemoveAll(hookDir)

	if err := os.WriteFile(filepath.Join(hookDir, "sitecustomize.py"), []byte(hookSource), 0o600); err != nil {
		return imports, fmt.Errorf("write import hook: %w", err)
	}
	tracePath := filepath.Join(hookDir, "imports.trace")

	cmd, err := buildEntryCommand(ctx, entry)
	if err != nil {
		return imports, err
	}
	cmd.Dir = projectRoot
	cmd.Env = withScanEnv(os.Environ(), hookDir, tracePath)

	output, runErr := cmd.CombinedOutput()
	traced, loadErr := LoadTrace(tracePath)
	for name := range traced {
		imports[name] = struct{}{}
	}
	if runErr != nil {
		trimmed := strings.TrimSpace(string(output))
		if trimmed == "" {
			return imports, fmt.Errorf("entry command failed: %w", runErr)
		}
		return imports, fmt.Errorf("entry command failed: %w: %s", runErr, trimmed)
	}
	if loadErr != nil && !os.IsNotExist(loadErr) {
		return imports, fmt.Errorf("read import trace: %w", loadErr)
	}
	return imports, nil
}

// LoadTrace reads a trace file (one module name per line) and reduces each
// entry to its root segment.
func LoadTrace(path string) (map[string]struct{}, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	imports := make(map[string]struct{})
	scanner := bufio.NewScanner(bytes.NewReader(content))
	for scanner.Scan() {
		name := strings.TrimSpace(scanner.Text())
		if name == "" {
			continue
		}
		root, _, _ := strings.Cut(name, ".")
		if root == "" {
			continue
		}
		imports[root] = struct{}{}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return imports, nil
}

var allowedExecutables = map[string]bool{
	"python":  true,
	"python3": true,
	"pytest":  true,
	"poetry":  true,
	"uv":      true,
	"make":    true,
}

func buildEntryCommand(ctx context.Context, entry string) (*exec.Cmd, error) {
	fields := strings.Fields(entry)
	if len(fields) == 0 {
		return nil, fmt.Errorf("dynamic scan requires an entry command")
	}
	executable := fields[0]
	if !allowedExecutables[executable] {
		return nil, fmt.Errorf("unsupported entry executable %q; use a direct command like 'python main.py'", executable)
	}
	cmd := exec.CommandContext(ctx, executable)
	cmd.Args = append([]string{executable}, fields[1:]...)
	return cmd, nil
}

func withScanEnv(base []string, hookDir string, tracePath string) []string {
	existingPythonPath := readEnvValue(base, "PYTHONPATH")
	pythonPath := hookDir
	if existingPythonPath != "" {
		pythonPath = hookDir + string(os.PathListSeparator) + existingPythonPath
	}
	return mergeEnv(base, map[string]string{
		TraceEnv:     tracePath,
		ActiveEnv:    "1",
		"PYTHONPATH": pythonPath,
	})
}

func mergeEnv(base []string, updates map[string]string) []string {
	merged := make(map[string]string, len(base)+len(updates))
	for _, item := range base {
		key, value, ok := strings.Cut(item, "=")
		if !ok {
			continue
		}
		merged[key] = value
	}
	for key, value := range updates {
		merged[key] = value
	}
	items := make([]string, 0, len(merged))
	for key, value := range merged {
		items = append(items, key+"="+value)
	}
	return items
}

func readEnvValue(env []string, key string) string {
	for _, item := range env {
		itemKey, value, ok := strings.Cut(item, "=")
		if ok && itemKey == key {
			return value
		}
	}
	return ""
}
