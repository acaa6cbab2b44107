package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"text/tabwriter"
)

type Formatter struct{}

func NewFormatter() Formatter {
	return Formatter{}
}

func (f Formatter) Format(report Report, format Format) (string, error) {
	switch format {
	case FormatTable:
		return formatTable(report), nil
	case FormatJSON:
		payload, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return "", err
		}
		return string(payload) + "\n", nil
	default:
		return "", ErrUnknownFormat
	}
}

func formatTable(report Report) string {
	var buffer bytes.Buffer
	_, _ = fmt.Fprintf(&buffer, "Project: %s (mode: %s, files scanned: %d)\n\n", report.ProjectRoot, report.Mode, report.FilesScanned)

	if len(report.Entries) == 0 {
		buffer.WriteString("No imports found.\n")
	} else {
		writer := tabwriter.NewWriter(&buffer, 0, 0, 2, ' ', 0)
		_, _ = fmt.Fprintln(writer, "Import\tClassification\tPackage")
		for _, entry := range report.Entries {
			pkg := entry.Package
			if pkg == "" {
				pkg = "-"
			}
			_, _ = fmt.Fprintf(writer, "%s\t%s\t%s\n", entry.Import, entry.Classification, pkg)
		}
		_ = writer.Flush()
	}

	if len(report.Packages) > 0 {
		_, _ = fmt.Fprintf(&buffer, "\nTracked packages (%d):\n", len(report.Packages))
		for _, pkg := range report.Packages {
			buffer.WriteString("- ")
			buffer.WriteString(pkg)
			buffer.WriteByte('\n')
		}
	}
	appendWarnings(&buffer, report.Warnings)
	return buffer.String()
}

func appendWarnings(buffer *bytes.Buffer, warnings []string) {
	if len(warnings) == 0 {
		return
	}
	buffer.WriteString("\nWarnings:\n")
	for _, warning := range warnings {
		buffer.WriteString("- ")
		buffer.WriteString(warning)
		buffer.WriteByte('\n')
	}
}
