package config

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ben-ranford/reqtracker/internal/manifest"
	"github.com/ben-ranford/reqtracker/internal/resolver"
	"github.com/ben-ranford/reqtracker/internal/testutil"
)

func TestLoadDefaultsWhenNoFile(t *testing.T) {
	cfg, err := Load(t.TempDir(), "")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Mode != resolver.ModeHybrid {
		t.Errorf("Mode = %q, want hybrid default", cfg.Mode)
	}
	if cfg.Output != "requirements.txt" {
		t.Errorf("Output = %q, want requirements.txt", cfg.Output)
	}
	if cfg.VersionStrategy != manifest.StrategyCompatible {
		t.Errorf("VersionStrategy = %q, want compatible", cfg.VersionStrategy)
	}
	if !cfg.Header || !cfg.Sort {
		t.Errorf("Header = %v, Sort = %v, want both true", cfg.Header, cfg.Sort)
	}
}

func TestLoadTOML(t *testing.T) {
	root := t.TempDir()
	testutil.MustWriteFile(t, filepath.Join(root, ".reqtracker.toml"), strings.Join([]string{
		"[reqtracker]",
		`mode = "static"`,
		`output = "deps/requirements.txt"`,
		`exclude = ["migrations/*"]`,
		`ignore_packages = ["boto3"]`,
		`self_name = "my-tool"`,
		`version_strategy = "exact"`,
		`header = false`,
		"",
		"[reqtracker.import_map]",
		`cv2 = "opencv-python-headless"`,
	}, "\n"))

	cfg, err := Load(root, "")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Mode != resolver.ModeStatic {
		t.Errorf("Mode = %q, want static", cfg.Mode)
	}
	if cfg.Output != "deps/requirements.txt" {
		t.Errorf("Output = %q", cfg.Output)
	}
	if len(cfg.Exclude) != 1 || cfg.Exclude[0] != "migrations/*" {
		t.Errorf("Exclude = %v", cfg.Exclude)
	}
	if cfg.ImportMap["cv2"] != "opencv-python-headless" {
		t.Errorf("ImportMap = %v", cfg.ImportMap)
	}
	if cfg.Header {
		t.Error("Header = true, want false")
	}
	if !cfg.Sort {
		t.Error("Sort = false, want default true preserved")
	}
}

func TestLoadYAML(t *testing.T) {
	root := t.TempDir()
	testutil.MustWriteFile(t, filepath.Join(root, ".reqtracker.yaml"), strings.Join([]string{
		"mode: dynamic",
		"entry: python main.py",
		"ignore_packages:",
		"  - setuptools",
	}, "\n"))

	cfg, err := Load(root, "")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Mode != resolver.ModeDynamic {
		t.Errorf("Mode = %q, want dynamic", cfg.Mode)
	}
	if cfg.Entry != "python main.py" {
		t.Errorf("Entry = %q", cfg.Entry)
	}
	if len(cfg.IgnorePackages) != 1 || cfg.IgnorePackages[0] != "setuptools" {
		t.Errorf("IgnorePackages = %v", cfg.IgnorePackages)
	}
}

func TestLoadTOMLWinsOverYAML(t *testing.T) {
	root := t.TempDir()
	testutil.MustWriteFile(t, filepath.Join(root, ".reqtracker.toml"), "[reqtracker]\nmode = \"static\"\n")
	testutil.MustWriteFile(t, filepath.Join(root, ".reqtracker.yaml"), "mode: dynamic\nentry: python main.py\n")

	cfg, err := Load(root, "")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Mode != resolver.ModeStatic {
		t.Fatalf("Mode = %q, want static from TOML", cfg.Mode)
	}
}

func TestLoadExplicitMissingFileIsFatal(t *testing.T) {
	_, err := Load(t.TempDir(), "/nonexistent/reqtracker.toml")
	if !errors.Is(err, ErrConfiguration) {
		t.Fatalf("Load() error = %v, want ErrConfiguration", err)
	}
}

func TestLoadRejectsUnknownFields(t *testing.T) {
	root := t.TempDir()
	testutil.MustWriteFile(t, filepath.Join(root, ".reqtracker.toml"), "[reqtracker]\nmoode = \"static\"\n")

	if _, err := Load(root, ""); !errors.Is(err, ErrConfiguration) {
		t.Fatalf("Load() error = %v, want ErrConfiguration for unknown field", err)
	}
}

func TestLoadRejectsInvalidMode(t *testing.T) {
	root := t.TempDir()
	testutil.MustWriteFile(t, filepath.Join(root, ".reqtracker.toml"), "[reqtracker]\nmode = \"auto\"\n")

	if _, err := Load(root, ""); !errors.Is(err, ErrConfiguration) {
		t.Fatalf("Load() error = %v, want ErrConfiguration for invalid mode", err)
	}
}

func TestLoadDynamicRequiresEntry(t *testing.T) {
	root := t.TempDir()
	testutil.MustWriteFile(t, filepath.Join(root, ".reqtracker.toml"), "[reqtracker]\nmode = \"dynamic\"\n")

	if _, err := Load(root, ""); !errors.Is(err, ErrConfiguration) {
		t.Fatalf("Load() error = %v, want ErrConfiguration for missing entry", err)
	}
}

func TestApplyOverrides(t *testing.T) {
	mode := "static"
	output := "reqs.txt"
	strategy := "minimum"
	cfg, err := Defaults().Apply(Overrides{
		Mode:            &mode,
		Output:          &output,
		Exclude:         []string{"build/*"},
		IgnorePackages:  []string{"pip"},
		ImportMap:       map[string]string{"cv2": "opencv-python-headless"},
		VersionStrategy: &strategy,
		NoHeader:        true,
		NoSort:          true,
		Latest:          true,
	})
	if err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	if cfg.Mode != resolver.ModeStatic {
		t.Errorf("Mode = %q", cfg.Mode)
	}
	if cfg.Output != "reqs.txt" {
		t.Errorf("Output = %q", cfg.Output)
	}
	if cfg.VersionStrategy != manifest.StrategyMinimum {
		t.Errorf("VersionStrategy = %q", cfg.VersionStrategy)
	}
	if cfg.Header || cfg.Sort {
		t.Errorf("Header = %v, Sort = %v, want both false", cfg.Header, cfg.Sort)
	}
	if !cfg.Latest {
		t.Error("Latest = false, want true")
	}
	if cfg.ImportMap["cv2"] != "opencv-python-headless" {
		t.Errorf("ImportMap = %v", cfg.ImportMap)
	}
}

func TestApplyOverrideMapWinsOverFileMap(t *testing.T) {
	cfg := Defaults()
	cfg.ImportMap = map[string]string{"cv2": "opencv-python"}
	cfg, err := cfg.Apply(Overrides{ImportMap: map[string]string{"cv2": "opencv-contrib-python"}})
	if err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	if cfg.ImportMap["cv2"] != "opencv-contrib-python" {
		t.Fatalf("ImportMap = %v, want command-line entry to win", cfg.ImportMap)
	}
}

func TestApplyInvalidOverrideIsFatal(t *testing.T) {
	mode := "turbo"
	if _, err := Defaults().Apply(Overrides{Mode: &mode}); !errors.Is(err, ErrConfiguration) {
		t.Fatalf("Apply() error = %v, want ErrConfiguration", err)
	}
}
