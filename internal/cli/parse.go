package cli

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/ben-ranford/reqtracker/internal/app"
	"github.com/ben-ranford/reqtracker/internal/config"
	"github.com/ben-ranford/reqtracker/internal/report"
)

var ErrHelpRequested = errors.New("help requested")

// listFlag collects a repeatable string flag.
type listFlag []string

func (l *listFlag) String() string {
	return strings.Join(*l, ",")
}

func (l *listFlag) Set(value string) error {
	value = strings.TrimSpace(value)
	if value == "" {
		return fmt.Errorf("value must not be empty")
	}
	*l = append(*l, value)
	return nil
}

// mapFlag collects repeatable name=value pairs.
type mapFlag map[string]string

func (m mapFlag) String() string {
	pairs := make([]string, 0, len(m))
	for name, value := range m {
		pairs = append(pairs, name+"="+value)
	}
	return strings.Join(pairs, ",")
}

func (m mapFlag) Set(value string) error {
	name, pkg, ok := strings.Cut(value, "=")
	name = strings.TrimSpace(name)
	pkg = strings.TrimSpace(pkg)
	if !ok || name == "" || pkg == "" {
		return fmt.Errorf("expected IMPORT=PACKAGE, got %q", value)
	}
	m[name] = pkg
	return nil
}

func ParseArgs(args []string) (app.Request, error) {
	req := app.DefaultRequest()
	if len(args) == 0 {
		return req, ErrHelpRequested
	}

	if isHelpArg(args[0]) {
		return req, ErrHelpRequested
	}

	switch args[0] {
	case "track":
		req.Command = app.CommandTrack
	case "generate":
		req.Command = app.CommandGenerate
	case "analyze":
		req.Command = app.CommandAnalyze
	default:
		return req, fmt.Errorf("unknown command: %s", args[0])
	}
	return parseCommand(args[1:], req)
}

func parseCommand(args []string, req app.Request) (app.Request, error) {
	args = normalizeArgs(args)

	fs := flag.NewFlagSet(string(req.Command), flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	projectRoot := fs.String("project-root", req.ProjectRoot, "project root path")
	configPath := fs.String("config", "", "config file path")
	mode := fs.String("mode", "", "tracking mode")
	output := fs.String("output", "", "requirements output path")
	strategy := fs.String("strategy", "", "version strategy")
	selfName := fs.String("self-name", "", "project's own distribution name")
	entry := fs.String("entry", "", "entry command for runtime observation")
	formatFlag := fs.String("format", string(req.Format), "analyze output format")
	noHeader := fs.Bool("no-header", false, "omit the generated header")
	noSort := fs.Bool("no-sort", false, "keep resolution order instead of sorting")
	latest := fs.Bool("latest", false, "query the package index for missing versions")
	quiet := fs.Bool("quiet", false, "suppress warnings")

	var include, exclude, ignore listFlag
	importMap := mapFlag{}
	fs.Var(&include, "include", "glob of files to scan (repeatable)")
	fs.Var(&exclude, "exclude", "glob of files or directories to skip (repeatable)")
	fs.Var(&ignore, "ignore", "package to drop from the tracked set (repeatable)")
	fs.Var(importMap, "map", "IMPORT=PACKAGE mapping override (repeatable)")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return req, ErrHelpRequested
		}
		return req, err
	}

	format, err := report.ParseFormat(*formatFlag)
	if err != nil {
		return req, err
	}

	req.ProjectRoot = strings.TrimSpace(*projectRoot)
	req.ConfigPath = strings.TrimSpace(*configPath)
	req.Paths = fs.Args()
	req.Format = format
	req.Quiet = *quiet
	req.Overrides = config.Overrides{
		Include:        include,
		Exclude:        exclude,
		IgnorePackages: ignore,
		ImportMap:      importMap,
		NoHeader:       *noHeader,
		NoSort:         *noSort,
		Latest:         *latest,
	}
	visited := visitedFlags(fs)
	if visited["mode"] {
		req.Overrides.Mode = mode
	}
	if visited["output"] {
		req.Overrides.Output = output
	}
	if visited["strategy"] {
		req.Overrides.VersionStrategy = strategy
	}
	if visited["self-name"] {
		req.Overrides.SelfName = selfName
	}
	if visited["entry"] {
		req.Overrides.Entry = entry
	}

	return req, nil
}

func isHelpArg(arg string) bool {
	switch arg {
	case "-h", "--help", "help":
		return true
	default:
		return false
	}
}

// normalizeArgs reorders arguments so flags may follow positional paths,
// which the flag package does not support on its own.
func normalizeArgs(args []string) []string {
	if len(args) == 0 {
		return args
	}

	flags := make([]string, 0, len(args))
	positionals := make([]string, 0, 1)

	for i := 0; i < len(args); i++ {
		arg := args[i]
		if arg == "--" {
			positionals = append(positionals, args[i+1:]...)
			break
		}
		if strings.HasPrefix(arg, "-") {
			flags = append(flags, arg)
			if flagNeedsValue(arg) && i+1 < len(args) {
				flags = append(flags, args[i+1])
				i++
			}
			continue
		}
		positionals = append(positionals, arg)
	}

	return append(flags, positionals...)
}

func flagNeedsValue(arg string) bool {
	if strings.Contains(arg, "=") {
		return false
	}
	switch arg {
	case "--project-root", "--config", "--mode", "--output", "--strategy", "--self-name", "--entry", "--format", "--include", "--exclude", "--ignore", "--map":
		return true
	default:
		return false
	}
}

func visitedFlags(fs *flag.FlagSet) map[string]bool {
	visited := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) {
		visited[f.Name] = true
	})
	return visited
}
