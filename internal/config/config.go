// Package config loads and validates project configuration. Settings are
// resolved in three layers: built-in defaults, then a project config file,
// then command-line overrides.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/ben-ranford/reqtracker/internal/manifest"
	"github.com/ben-ranford/reqtracker/internal/resolver"
	"github.com/ben-ranford/reqtracker/internal/safeio"
)

// ErrConfiguration marks fatal configuration problems: a named file that
// does not exist, unparseable content, or invalid field values.
var ErrConfiguration = errors.New("configuration error")

// Candidate file names, checked in order at the project root.
var fileNames = []string{".reqtracker.toml", ".reqtracker.yaml", ".reqtracker.yml"}

// Config is the fully resolved configuration for one run.
type Config struct {
	Mode            resolver.Mode     `toml:"mode" yaml:"mode"`
	Output          string            `toml:"output" yaml:"output"`
	Include         []string          `toml:"include" yaml:"include"`
	Exclude         []string          `toml:"exclude" yaml:"exclude"`
	IgnorePackages  []string          `toml:"ignore_packages" yaml:"ignore_packages"`
	ImportMap       map[string]string `toml:"import_map" yaml:"import_map"`
	SelfName        string            `toml:"self_name" yaml:"self_name"`
	Entry           string            `toml:"entry" yaml:"entry"`
	VersionStrategy manifest.Strategy `toml:"version_strategy" yaml:"version_strategy"`
	Header          bool              `toml:"header" yaml:"header"`
	Sort            bool              `toml:"sort" yaml:"sort"`
	Latest          bool              `toml:"latest" yaml:"latest"`
}

// tomlFile wraps the config in its table so unrelated tool tables in a
// shared file do not collide.
type tomlFile struct {
	Reqtracker Config `toml:"reqtracker"`
}

// Defaults returns the built-in configuration.
func Defaults() Config {
	return Config{
		Mode:            resolver.ModeHybrid,
		Output:          "requirements.txt",
		ImportMap:       map[string]string{},
		VersionStrategy: manifest.StrategyCompatible,
		Header:          true,
		Sort:            true,
	}
}

// Load resolves the configuration for a project. When explicitPath is empty
// the project root is probed for known file names and a missing file just
// yields defaults; an explicit path that does not exist is fatal.
func Load(projectRoot string, explicitPath string) (Config, error) {
	cfg := Defaults()

	path := explicitPath
	if path == "" {
		path = findConfigFile(projectRoot)
		if path == "" {
			return cfg, nil
		}
	} else if _, err := os.Stat(path); err != nil {
		return Config{}, fmt.Errorf("%w: config file %s: %v", ErrConfiguration, path, err)
	}

	data, err := safeio.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("%w: read %s: %v", ErrConfiguration, path, err)
	}
	if err := decode(path, data, &cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func findConfigFile(projectRoot string) string {
	for _, name := range fileNames {
		candidate := filepath.Join(projectRoot, name)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate
		}
	}
	return ""
}

func decode(path string, data []byte, cfg *Config) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		var file tomlFile
		file.Reqtracker = *cfg
		decoder := toml.NewDecoder(bytes.NewReader(data))
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&file); err != nil {
			return fmt.Errorf("%w: parse %s: %v", ErrConfiguration, path, err)
		}
		*cfg = file.Reqtracker
	case ".yaml", ".yml":
		decoder := yaml.NewDecoder(bytes.NewReader(data))
		decoder.KnownFields(true)
		if err := decoder.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
			return fmt.Errorf("%w: parse %s: %v", ErrConfiguration, path, err)
		}
	default:
		return fmt.Errorf("%w: unsupported config format %s", ErrConfiguration, path)
	}
	return nil
}

// Validate checks field values that the decoders cannot, normalizing the
// enum fields as a side effect.
func (c *Config) Validate() error {
	mode, err := resolver.ParseMode(string(c.Mode))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrConfiguration, err)
	}
	c.Mode = mode
	strategy, err := manifest.ParseStrategy(string(c.VersionStrategy))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrConfiguration, err)
	}
	c.VersionStrategy = strategy
	if strings.TrimSpace(c.Output) == "" {
		return fmt.Errorf("%w: output path must not be empty", ErrConfiguration)
	}
	if c.Mode == resolver.ModeDynamic && strings.TrimSpace(c.Entry) == "" {
		return fmt.Errorf("%w: dynamic mode requires an entry command", ErrConfiguration)
	}
	return nil
}

// Overrides carry command-line values. Nil pointers mean the flag was not
// set and the config file value stands.
type Overrides struct {
	Mode            *string
	Output          *string
	Include         []string
	Exclude         []string
	IgnorePackages  []string
	ImportMap       map[string]string
	SelfName        *string
	Entry           *string
	VersionStrategy *string
	NoHeader        bool
	NoSort          bool
	Latest          bool
}

// Apply layers command-line overrides onto the configuration and
// revalidates the result. List and map overrides extend rather than
// replace, with command-line map entries winning on conflict.
func (c Config) Apply(o Overrides) (Config, error) {
	if o.Mode != nil {
		c.Mode = resolver.Mode(*o.Mode)
	}
	if o.Output != nil {
		c.Output = *o.Output
	}
	c.Include = append(c.Include, o.Include...)
	c.Exclude = append(c.Exclude, o.Exclude...)
	c.IgnorePackages = append(c.IgnorePackages, o.IgnorePackages...)
	if len(o.ImportMap) > 0 {
		if c.ImportMap == nil {
			c.ImportMap = make(map[string]string, len(o.ImportMap))
		}
		for name, pkg := range o.ImportMap {
			c.ImportMap[name] = pkg
		}
	}
	if o.SelfName != nil {
		c.SelfName = *o.SelfName
	}
	if o.Entry != nil {
		c.Entry = *o.Entry
	}
	if o.VersionStrategy != nil {
		c.VersionStrategy = manifest.Strategy(*o.VersionStrategy)
	}
	if o.NoHeader {
		c.Header = false
	}
	if o.NoSort {
		c.Sort = false
	}
	if o.Latest {
		c.Latest = true
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}
