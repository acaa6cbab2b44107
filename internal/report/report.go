// Package report models the analyze output: each discovered import with its
// classification, the resulting package set, and any scan warnings.
package report

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

type Format string

const (
	FormatTable Format = "table"
	FormatJSON  Format = "json"
)

var ErrUnknownFormat = errors.New("unknown format")

func ParseFormat(value string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", string(FormatTable):
		return FormatTable, nil
	case string(FormatJSON):
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnknownFormat, value)
	}
}

type Report struct {
	GeneratedAt  time.Time `json:"generatedAt"`
	ProjectRoot  string    `json:"projectRoot"`
	Mode         string    `json:"mode"`
	FilesScanned int       `json:"filesScanned"`
	Entries      []Entry   `json:"entries"`
	Packages     []string  `json:"packages"`
	Warnings     []string  `json:"warnings,omitempty"`
}

// Entry records the fate of one import root.
type Entry struct {
	Import         string `json:"import"`
	Classification string `json:"classification"`
	Package        string `json:"package,omitempty"`
}
