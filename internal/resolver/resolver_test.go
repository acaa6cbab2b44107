package resolver

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/ben-ranford/reqtracker/internal/pystdlib"
	"github.com/ben-ranford/reqtracker/internal/testutil"
)

func set(names ...string) map[string]struct{} {
	s := make(map[string]struct{}, len(names))
	for _, name := range names {
		s[name] = struct{}{}
	}
	return s
}

func TestParseMode(t *testing.T) {
	tests := []struct {
		input   string
		want    Mode
		wantErr bool
	}{
		{"static", ModeStatic, false},
		{"DYNAMIC", ModeDynamic, false},
		{" hybrid ", ModeHybrid, false},
		{"", "", true},
		{"auto", "", true},
	}
	for _, tt := range tests {
		got, err := ParseMode(tt.input)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseMode(%q) error = nil, want error", tt.input)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseMode(%q) error = %v", tt.input, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseMode(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestResolveModeSelection(t *testing.T) {
	static := set("requests")
	dynamic := set("flask")

	tests := []struct {
		mode Mode
		want []string
	}{
		{ModeStatic, []string{"requests"}},
		{ModeDynamic, []string{"Flask"}},
		{ModeHybrid, []string{"Flask", "requests"}},
	}
	for _, tt := range tests {
		got := Resolve(static, dynamic, Options{Mode: tt.mode})
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("Resolve(mode=%s) = %v, want %v", tt.mode, got, tt.want)
		}
	}
}

func TestResolveExcludesEntireStandardLibrary(t *testing.T) {
	imports := make(map[string]struct{})
	for _, name := range pystdlib.Modules() {
		imports[name] = struct{}{}
	}
	imports["requests"] = struct{}{}

	got := Resolve(imports, nil, Options{Mode: ModeStatic})
	if !reflect.DeepEqual(got, []string{"requests"}) {
		t.Fatalf("Resolve() = %v, want only requests", got)
	}
}

func TestResolveExcludesSelfReference(t *testing.T) {
	got := Resolve(set("my_tool", "requests"), nil, Options{
		Mode:     ModeStatic,
		SelfName: "my-tool",
	})
	if !reflect.DeepEqual(got, []string{"requests"}) {
		t.Fatalf("Resolve() = %v, want self name excluded", got)
	}
}

func TestResolveAlwaysExcludesOwnDistribution(t *testing.T) {
	got := Resolve(set("reqtracker", "requests"), nil, Options{Mode: ModeStatic})
	if !reflect.DeepEqual(got, []string{"requests"}) {
		t.Fatalf("Resolve() = %v, want the tool's own distribution excluded", got)
	}

	class, pkg := Classify("reqtracker", Options{Mode: ModeStatic})
	if class != ClassSelf || pkg != "" {
		t.Fatalf("Classify(reqtracker) = (%s, %q), want (%s, \"\")", class, pkg, ClassSelf)
	}
}

func TestResolveSelfCheckPrecedesMapping(t *testing.T) {
	// yaml maps to PyYAML; a self name of yaml must still match the raw
	// import name rather than the mapped distribution.
	got := Resolve(set("yaml", "requests"), nil, Options{
		Mode:     ModeStatic,
		SelfName: "yaml",
	})
	if !reflect.DeepEqual(got, []string{"requests"}) {
		t.Fatalf("Resolve() = %v, want raw import name matched against self name", got)
	}
}

func TestResolveSelfCheckAlsoCoversMappedName(t *testing.T) {
	got := Resolve(set("yaml", "requests"), nil, Options{
		Mode:     ModeStatic,
		SelfName: "PyYAML",
	})
	if !reflect.DeepEqual(got, []string{"requests"}) {
		t.Fatalf("Resolve() = %v, want mapped name matched against self name", got)
	}
}

func TestResolveExcludesLocalModules(t *testing.T) {
	root := t.TempDir()
	testutil.MustWriteFile(t, filepath.Join(root, "helpers.py"), "")
	if err := os.MkdirAll(filepath.Join(root, "models"), 0o750); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	testutil.MustWriteFile(t, filepath.Join(root, "models", "__init__.py"), "")

	got := Resolve(set("helpers", "models", "requests"), nil, Options{
		Mode:        ModeStatic,
		SourceRoots: []string{root},
	})
	if !reflect.DeepEqual(got, []string{"requests"}) {
		t.Fatalf("Resolve() = %v, want local modules excluded", got)
	}
}

func TestResolveMapsImportsToDistributions(t *testing.T) {
	got := Resolve(set("cv2", "sklearn", "PIL"), nil, Options{Mode: ModeStatic})
	want := []string{"opencv-python", "Pillow", "scikit-learn"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Resolve() = %v, want %v", got, want)
	}
}

func TestResolveOverridesWin(t *testing.T) {
	got := Resolve(set("cv2"), nil, Options{
		Mode:      ModeStatic,
		Overrides: map[string]string{"cv2": "opencv-python-headless"},
	})
	if !reflect.DeepEqual(got, []string{"opencv-python-headless"}) {
		t.Fatalf("Resolve() = %v, want override applied", got)
	}
}

func TestResolveDeduplicatesByNormalizedName(t *testing.T) {
	got := Resolve(set("yaml", "ruamel"), nil, Options{
		Mode:      ModeStatic,
		Overrides: map[string]string{"ruamel": "pyyaml"},
	})
	if len(got) != 1 {
		t.Fatalf("Resolve() = %v, want one entry after normalized dedup", got)
	}
}

func TestResolveIgnorePackages(t *testing.T) {
	got := Resolve(set("requests", "flask"), nil, Options{
		Mode:           ModeStatic,
		IgnorePackages: []string{"FLASK"},
	})
	if !reflect.DeepEqual(got, []string{"requests"}) {
		t.Fatalf("Resolve() = %v, want flask ignored case-insensitively", got)
	}
}

func TestResolveSortsCaseInsensitively(t *testing.T) {
	got := Resolve(set("PIL", "django", "flask"), nil, Options{Mode: ModeStatic})
	want := []string{"Django", "Flask", "Pillow"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Resolve() = %v, want %v", got, want)
	}
}

func TestClassify(t *testing.T) {
	root := t.TempDir()
	testutil.MustWriteFile(t, filepath.Join(root, "local_mod.py"), "")

	opts := Options{
		Mode:           ModeStatic,
		SourceRoots:    []string{root},
		SelfName:       "my-tool",
		IgnorePackages: []string{"boto3"},
	}
	tests := []struct {
		name      string
		wantClass Classification
		wantPkg   string
	}{
		{"os", ClassStdlib, ""},
		{"local_mod", ClassLocal, ""},
		{"my_tool", ClassSelf, ""},
		{"boto3", ClassIgnored, "boto3"},
		{"requests", ClassPackage, "requests"},
		{"cv2", ClassPackage, "opencv-python"},
	}
	for _, tt := range tests {
		class, pkg := Classify(tt.name, opts)
		if class != tt.wantClass || pkg != tt.wantPkg {
			t.Errorf("Classify(%q) = (%s, %q), want (%s, %q)", tt.name, class, pkg, tt.wantClass, tt.wantPkg)
		}
	}
}
