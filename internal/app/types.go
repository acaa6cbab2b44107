package app

import (
	"github.com/ben-ranford/reqtracker/internal/config"
	"github.com/ben-ranford/reqtracker/internal/report"
)

type Command string

const (
	// CommandTrack scans the project and writes the requirements file.
	CommandTrack Command = "track"
	// CommandGenerate renders the requirements content without writing it.
	CommandGenerate Command = "generate"
	// CommandAnalyze reports every discovered import and its fate.
	CommandAnalyze Command = "analyze"
)

type Request struct {
	Command     Command
	ProjectRoot string
	// ConfigPath forces a specific config file; empty means probe the
	// project root.
	ConfigPath string
	// Paths are explicit files or directories to scan instead of the
	// project root.
	Paths     []string
	Format    report.Format
	Overrides config.Overrides
	// Quiet drops warning output, leaving only errors.
	Quiet bool
}

func DefaultRequest() Request {
	return Request{
		Command:     CommandTrack,
		ProjectRoot: ".",
		Format:      report.FormatTable,
	}
}
