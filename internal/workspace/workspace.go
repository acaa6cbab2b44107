package workspace

import (
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
)

func NormalizeRepoPath(path string) (string, error) {
	if path == "" {
		path = "."
	}
	return filepath.Abs(path)
}

// DetectSelfName returns the project's own distribution name so a package
// that imports itself is never listed as its own dependency. It reads PEP 621
// metadata first, then the poetry table; an empty string means no project
// metadata was found.
func DetectSelfName(projectRoot string) string {
	data, err := os.ReadFile(filepath.Join(projectRoot, "pyproject.toml"))
	if err != nil {
		return ""
	}
	var pyproject struct {
		Project struct {
			Name string `toml:"name"`
		} `toml:"project"`
		Tool struct {
			Poetry struct {
				Name string `toml:"name"`
			} `toml:"poetry"`
		} `toml:"tool"`
	}
	if err := toml.Unmarshal(data, &pyproject); err != nil {
		return ""
	}
	if name := strings.TrimSpace(pyproject.Project.Name); name != "" {
		return name
	}
	return strings.TrimSpace(pyproject.Tool.Poetry.Name)
}

// SourceRoots lists the directories a local import could resolve against:
// the project root itself plus a src/ layout directory when present.
func SourceRoots(projectRoot string) []string {
	roots := []string{projectRoot}
	srcDir := filepath.Join(projectRoot, "src")
	if info, err := os.Stat(srcDir); err == nil && info.IsDir() {
		roots = append(roots, srcDir)
	}
	return roots
}
