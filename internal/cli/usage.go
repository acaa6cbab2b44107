package cli

const usage = `Usage:
  reqtracker track [PATH ...] [options]
  reqtracker generate [PATH ...] [options]
  reqtracker analyze [PATH ...] [--format table|json] [options]

Commands:
  track      Scan the project and write the requirements file
  generate   Print the requirements content without writing it
  analyze    Report every discovered import and how it was classified

Options:
  --project-root PATH        Project root (default: .)
  --config PATH              Config file (default: probe .reqtracker.toml/.yaml)
  --mode static|dynamic|hybrid
                             Tracking mode (default: hybrid)
  --output PATH              Requirements output path (default: requirements.txt)
  --strategy exact|compatible|minimum|none
                             Version specifier strategy (default: compatible)
  --entry COMMAND            Entry command for runtime observation
  --self-name NAME           Project's own distribution name
  --include GLOB             File glob to scan (repeatable)
  --exclude GLOB             File or directory glob to skip (repeatable)
  --ignore PACKAGE           Drop a package from the tracked set (repeatable)
  --map IMPORT=PACKAGE       Import-to-distribution override (repeatable)
  --format table|json        Analyze output format (default: table)
  --no-header                Omit the generated header comment
  --no-sort                  Keep resolution order instead of sorting
  --latest                   Query the package index for missing versions
  --quiet                    Suppress warnings
  -h, --help                 Show this help text
`

func Usage() string {
	return usage
}
