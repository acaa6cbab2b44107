// Package static extracts imported module names from Python source without
// executing it. Files are parsed with tree-sitter, so imports inside function
// bodies, conditionals and exception handlers are collected the same as
// top-level ones.
package static

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/python"

	"github.com/ben-ranford/reqtracker/internal/safeio"
)

// ErrPathNotFound marks a requested scan path that does not exist. Unlike a
// per-file parse failure this aborts the whole scan.
var ErrPathNotFound = errors.New("path not found")

type Options struct {
	// Include holds glob patterns matched against file base names.
	// Empty means every .py file.
	Include []string
	// Exclude holds directory names and glob patterns skipped before
	// inclusion is evaluated.
	Exclude []string
}

type Result struct {
	Imports  map[string]struct{}
	Files    int
	Warnings []string
}

var defaultExcludeDirs = map[string]bool{
	".git":          true,
	".idea":         true,
	"__pycache__":   true,
	".venv":         true,
	"venv":          true,
	"node_modules":  true,
	"dist":          true,
	"build":         true,
	".mypy_cache":   true,
	".pytest_cache": true,
	".tox":          true,
	".eggs":         true,
	".ruff_cache":   true,
}

type scanState struct {
	parser          *sitter.Parser
	opts            Options
	result          *Result
	parseErrorCount int
	parseErrorFiles []string
}

// Scan parses every matching Python file under the given paths and unions
// the root module names of their import statements. A missing path is fatal;
// a file that fails to parse only produces a warning and the scan continues.
func Scan(ctx context.Context, paths []string, opts Options) (Result, error) {
	result := Result{Imports: make(map[string]struct{})}
	if len(paths) == 0 {
		return result, errors.New("no scan paths given")
	}

	parser := sitter.NewParser()
	parser.SetLanguage(python.GetLanguage())
	state := scanState{parser: parser, opts: opts, result: &result}

	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			if os.IsNotExist(err) {
				return result, fmt.Errorf("%w: %s", ErrPathNotFound, path)
			}
			return result, err
		}
		if info.IsDir() {
			if err := scanDir(ctx, &state, path); err != nil {
				return result, err
			}
			continue
		}
		// Explicitly named files bypass the include patterns.
		if err := scanFile(ctx, &state, filepath.Dir(path), path); err != nil {
			return result, err
		}
	}

	if result.Files == 0 {
		result.Warnings = append(result.Warnings, "no Python files found for analysis")
	}
	if state.parseErrorCount > 0 {
		warning := fmt.Sprintf("syntax errors in %d file(s)", state.parseErrorCount)
		if len(state.parseErrorFiles) > 0 {
			warning = fmt.Sprintf("%s: %s", warning, strings.Join(state.parseErrorFiles, ", "))
		}
		result.Warnings = append(result.Warnings, warning)
	}
	return result, nil
}

func scanDir(ctx context.Context, state *scanState, root string) error {
	return filepath.WalkDir(root, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			rel = path
		}
		if entry.IsDir() {
			if path != root && excluded(state.opts.Exclude, entry.Name(), rel) {
				return filepath.SkipDir
			}
			return nil
		}
		if excluded(state.opts.Exclude, entry.Name(), rel) {
			return nil
		}
		if !included(state.opts.Include, entry.Name()) {
			return nil
		}
		return scanFile(ctx, state, root, path)
	})
}

func scanFile(ctx context.Context, state *scanState, root string, path string) error {
	content, err := safeio.ReadFileUnder(root, path)
	if err != nil {
		return err
	}
	tree, err := state.parser.ParseCtx(ctx, nil, content)
	if err != nil {
		return err
	}
	if tree == nil {
		return fmt.Errorf("tree-sitter returned nil tree for %s", path)
	}
	defer tree.Close()

	if tree.RootNode().HasError() {
		state.parseErrorCount++
		if len(state.parseErrorFiles) < 5 {
			rel, relErr := filepath.Rel(root, path)
			if relErr != nil {
				rel = path
			}
			state.parseErrorFiles = append(state.parseErrorFiles, rel)
		}
	}

	state.result.Files++
	collectImports(tree.RootNode(), content, state.result.Imports)
	return nil
}

func collectImports(root *sitter.Node, content []byte, imports map[string]struct{}) {
	walkNode(root, func(node *sitter.Node) {
		switch node.Type() {
		case "import_statement":
			// `import a.b, c as d`: named children are dotted_name or
			// aliased_import nodes.
			for i := 0; i < int(node.NamedChildCount()); i++ {
				child := node.NamedChild(i)
				switch child.Type() {
				case "dotted_name":
					addRoot(imports, nodeText(child, content))
				case "aliased_import":
					addRoot(imports, nodeText(child.ChildByFieldName("name"), content))
				}
			}
		case "import_from_statement":
			// `from x import y` contributes x; relative imports
			// (`from . import y`) have no module to track.
			module := node.ChildByFieldName("module_name")
			if module == nil || module.Type() == "relative_import" {
				return
			}
			addRoot(imports, nodeText(module, content))
		}
	})
}

func walkNode(node *sitter.Node, visit func(*sitter.Node)) {
	for i := 0; i < int(node.NamedChildCount()); i++ {
		child := node.NamedChild(i)
		visit(child)
		walkNode(child, visit)
	}
}

func addRoot(imports map[string]struct{}, moduleName string) {
	moduleName = strings.TrimSpace(moduleName)
	if moduleName == "" {
		return
	}
	root, _, _ := strings.Cut(moduleName, ".")
	if root == "" {
		return
	}
	imports[root] = struct{}{}
}

func nodeText(node *sitter.Node, content []byte) string {
	if node == nil {
		return ""
	}
	return string(content[node.StartByte():node.EndByte()])
}

func excluded(patterns []string, name string, relPath string) bool {
	if defaultExcludeDirs[name] {
		return true
	}
	for _, pattern := range patterns {
		if pattern == "" {
			continue
		}
		if pattern == name {
			return true
		}
		if ok, err := filepath.Match(pattern, name); err == nil && ok {
			return true
		}
		if ok, err := filepath.Match(pattern, filepath.ToSlash(relPath)); err == nil && ok {
			return true
		}
	}
	return false
}

func included(patterns []string, name string) bool {
	if len(patterns) == 0 {
		return strings.HasSuffix(strings.ToLower(name), ".py")
	}
	for _, pattern := range patterns {
		if ok, err := filepath.Match(pattern, name); err == nil && ok {
			return true
		}
	}
	return false
}
