package report

import (
	"strings"
	"testing"
	"time"
)

func sampleReport() Report {
	return Report{
		GeneratedAt:  time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC),
		ProjectRoot:  "/repo/app",
		Mode:         "hybrid",
		FilesScanned: 4,
		Entries: []Entry{
			{Import: "os", Classification: "stdlib"},
			{Import: "helpers", Classification: "local"},
			{Import: "cv2", Classification: "package", Package: "opencv-python"},
			{Import: "requests", Classification: "package", Package: "requests"},
		},
		Packages: []string{"opencv-python", "requests"},
		Warnings: []string{"skipped app/broken.py: syntax errors"},
	}
}

func TestFormatTable(t *testing.T) {
	output, err := NewFormatter().Format(sampleReport(), FormatTable)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, want := range []string{"mode: hybrid", "opencv-python", "stdlib", "Tracked packages (2):", "Warnings:"} {
		if !strings.Contains(output, want) {
			t.Errorf("expected output to include %q\n%s", want, output)
		}
	}
}

func TestFormatTableEmpty(t *testing.T) {
	output, err := NewFormatter().Format(Report{ProjectRoot: ".", Mode: "static"}, FormatTable)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(output, "No imports found.") {
		t.Fatalf("expected empty notice, got %q", output)
	}
}

func TestFormatJSON(t *testing.T) {
	output, err := NewFormatter().Format(sampleReport(), FormatJSON)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(output, "projectRoot") {
		t.Fatalf("expected json output to include projectRoot")
	}
	if !strings.HasSuffix(output, "\n") {
		t.Fatal("expected trailing newline")
	}
}

func TestFormatUnknown(t *testing.T) {
	if _, err := NewFormatter().Format(sampleReport(), Format("yaml")); err == nil {
		t.Fatal("expected unknown format error")
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		input   string
		want    Format
		wantErr bool
	}{
		{"", FormatTable, false},
		{"table", FormatTable, false},
		{"JSON", FormatJSON, false},
		{"sarif", "", true},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.input)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseFormat(%q) error = nil, want error", tt.input)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseFormat(%q) error = %v", tt.input, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseFormat(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}
