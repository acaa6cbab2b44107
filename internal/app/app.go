// Package app wires configuration, scanners, resolution and output together
// behind a single Execute entry point shared by every command.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/ben-ranford/reqtracker/internal/config"
	"github.com/ben-ranford/reqtracker/internal/manifest"
	"github.com/ben-ranford/reqtracker/internal/mapping"
	"github.com/ben-ranford/reqtracker/internal/pypi"
	"github.com/ben-ranford/reqtracker/internal/report"
	"github.com/ben-ranford/reqtracker/internal/resolver"
	"github.com/ben-ranford/reqtracker/internal/safeio"
	"github.com/ben-ranford/reqtracker/internal/scan/dynamic"
	"github.com/ben-ranford/reqtracker/internal/scan/static"
	"github.com/ben-ranford/reqtracker/internal/workspace"
)

var ErrUnknownCommand = errors.New("unknown command")

type App struct {
	Formatter report.Formatter
	Logger    *log.Logger
	Index     *pypi.Client
}

func New(errOut io.Writer) *App {
	return &App{
		Formatter: report.NewFormatter(),
		Logger: log.NewWithOptions(errOut, log.Options{
			ReportTimestamp: false,
		}),
		Index: pypi.NewClient(),
	}
}

func (a *App) Execute(ctx context.Context, req Request) (string, error) {
	if req.Quiet {
		a.Logger.SetLevel(log.ErrorLevel)
	}
	switch req.Command {
	case CommandTrack:
		return a.executeTrack(ctx, req)
	case CommandGenerate:
		return a.executeGenerate(ctx, req)
	case CommandAnalyze:
		return a.executeAnalyze(ctx, req)
	default:
		return "", fmt.Errorf("%w: %s", ErrUnknownCommand, req.Command)
	}
}

func (a *App) executeTrack(ctx context.Context, req Request) (string, error) {
	res, err := a.resolve(ctx, req)
	if err != nil {
		return "", err
	}
	content, err := a.renderRequirements(ctx, res)
	if err != nil {
		return "", err
	}

	outputPath := res.cfg.Output
	if !filepath.IsAbs(outputPath) {
		outputPath = filepath.Join(res.root, outputPath)
	}
	if err := safeio.WriteFile(outputPath, []byte(content), 0o644); err != nil {
		return "", fmt.Errorf("write requirements: %w", err)
	}
	a.logWarnings(res.warnings)
	return fmt.Sprintf("Tracked %d packages across %d files; wrote %s\n", len(res.packages), res.files, outputPath), nil
}

func (a *App) executeGenerate(ctx context.Context, req Request) (string, error) {
	res, err := a.resolve(ctx, req)
	if err != nil {
		return "", err
	}
	content, err := a.renderRequirements(ctx, res)
	if err != nil {
		return "", err
	}
	a.logWarnings(res.warnings)
	return content, nil
}

func (a *App) executeAnalyze(ctx context.Context, req Request) (string, error) {
	res, err := a.resolve(ctx, req)
	if err != nil {
		return "", err
	}

	names := make([]string, 0, len(res.imports))
	for name := range res.imports {
		names = append(names, name)
	}
	sort.Strings(names)

	entries := make([]report.Entry, 0, len(names))
	for _, name := range names {
		class, pkg := resolver.Classify(name, res.resolverOptions())
		entries = append(entries, report.Entry{
			Import:         name,
			Classification: string(class),
			Package:        pkg,
		})
	}

	reportData := report.Report{
		GeneratedAt:  time.Now().UTC(),
		ProjectRoot:  res.root,
		Mode:         string(res.cfg.Mode),
		FilesScanned: res.files,
		Entries:      entries,
		Packages:     res.packages,
		Warnings:     res.warnings,
	}
	return a.Formatter.Format(reportData, req.Format)
}

// resolution is the shared outcome of scanning and resolving one project.
type resolution struct {
	root        string
	cfg         config.Config
	selfName    string
	sourceRoots []string
	imports     map[string]struct{}
	packages    []string
	files       int
	warnings    []string
}

func (r resolution) resolverOptions() resolver.Options {
	return resolver.Options{
		Mode:           r.cfg.Mode,
		SourceRoots:    r.sourceRoots,
		Overrides:      r.cfg.ImportMap,
		SelfName:       r.selfName,
		IgnorePackages: r.cfg.IgnorePackages,
	}
}

func (a *App) resolve(ctx context.Context, req Request) (resolution, error) {
	root, err := workspace.NormalizeRepoPath(req.ProjectRoot)
	if err != nil {
		return resolution{}, err
	}

	cfg, err := config.Load(root, req.ConfigPath)
	if err != nil {
		return resolution{}, err
	}
	cfg, err = cfg.Apply(req.Overrides)
	if err != nil {
		return resolution{}, err
	}

	selfName := cfg.SelfName
	if selfName == "" {
		selfName = workspace.DetectSelfName(root)
	}

	res := resolution{
		root:        root,
		cfg:         cfg,
		selfName:    selfName,
		sourceRoots: workspace.SourceRoots(root),
	}

	var staticImports, dynamicImports map[string]struct{}
	if cfg.Mode == resolver.ModeStatic || cfg.Mode == resolver.ModeHybrid {
		paths := req.Paths
		if len(paths) == 0 {
			paths = []string{root}
		}
		result, err := static.Scan(ctx, paths, static.Options{
			Include: cfg.Include,
			Exclude: cfg.Exclude,
		})
		if err != nil {
			return resolution{}, err
		}
		staticImports = result.Imports
		res.files = result.Files
		res.warnings = append(res.warnings, result.Warnings...)
	}
	if cfg.Mode == resolver.ModeDynamic || cfg.Mode == resolver.ModeHybrid {
		imports, warnings, err := a.observeRuntime(ctx, root, cfg)
		if err != nil {
			return resolution{}, err
		}
		dynamicImports = imports
		res.warnings = append(res.warnings, warnings...)
	}

	res.imports = make(map[string]struct{})
	for name := range staticImports {
		res.imports[name] = struct{}{}
	}
	for name := range dynamicImports {
		res.imports[name] = struct{}{}
	}
	res.packages = resolver.Resolve(staticImports, dynamicImports, res.resolverOptions())
	return res, nil
}

// observeRuntime runs the dynamic scanner. In hybrid mode a missing entry
// command skips observation and a failing one degrades to a warning; in
// dynamic mode both are fatal because nothing else would produce results.
func (a *App) observeRuntime(ctx context.Context, root string, cfg config.Config) (map[string]struct{}, []string, error) {
	if strings.TrimSpace(cfg.Entry) == "" {
		if cfg.Mode == resolver.ModeDynamic {
			return nil, nil, fmt.Errorf("%w: dynamic mode requires an entry command", config.ErrConfiguration)
		}
		return nil, nil, nil
	}
	imports, err := dynamic.Scan(ctx, root, cfg.Entry)
	if err != nil {
		if cfg.Mode == resolver.ModeDynamic {
			return nil, nil, fmt.Errorf("runtime observation: %w", err)
		}
		warning := "runtime observation failed; continuing with static results: " + err.Error()
		return imports, []string{warning}, nil
	}
	return imports, nil, nil
}

func (a *App) renderRequirements(ctx context.Context, res resolution) (string, error) {
	versions := map[string]string{}
	if res.cfg.VersionStrategy != manifest.StrategyNone {
		installed, err := manifest.InstalledVersions(res.root)
		if err != nil {
			return "", err
		}
		versions = installed
		if res.cfg.Latest {
			a.fillLatestVersions(ctx, res.packages, versions)
		}
	}
	return manifest.Render(res.packages, manifest.RenderOptions{
		Strategy: res.cfg.VersionStrategy,
		Versions: versions,
		Header:   res.cfg.Header,
		Sort:     res.cfg.Sort,
	}), nil
}

// fillLatestVersions queries the index for packages the local environment
// has no version for. Lookup failures downgrade to bare names, never errors.
func (a *App) fillLatestVersions(ctx context.Context, packages []string, versions map[string]string) {
	known := make(map[string]bool, len(versions))
	for name := range versions {
		known[mapping.Normalize(name)] = true
	}
	for _, pkg := range packages {
		if known[mapping.Normalize(pkg)] {
			continue
		}
		version, err := a.Index.LatestVersion(ctx, pkg)
		if err != nil {
			a.Logger.Warn("index lookup failed", "package", pkg, "err", err)
			continue
		}
		versions[pkg] = version
	}
}

func (a *App) logWarnings(warnings []string) {
	for _, warning := range warnings {
		a.Logger.Warn(warning)
	}
}
