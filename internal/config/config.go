// Package config loads pyorder settings from pyorder.toml or the
// [tool.pyorder] table of pyproject.toml.
package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/phobologic/pyorder/internal/errors"
)

// File names searched by Load, in order.
const (
	FileName      = "pyorder.toml"
	PyprojectName = "pyproject.toml"
)

// Formatter names accepted in Config.Formatters.
const (
	FormatterOrder     = "order"
	FormatterDocstring = "docstring"
)

// Config holds every setting pyorder reads from disk.
type Config struct {
	// Include holds regular expressions; a file is formatted only when its
	// slash-separated path matches one of them. Empty means every file.
	Include []string `toml:"include"`
	// Exclude holds .gitignore-style patterns for files to leave alone.
	Exclude []string `toml:"exclude"`
	// Formatters lists the formatters to run, in order.
	Formatters []string `toml:"formatters"`
	// HelperDecorators mark module-level functions as helpers.
	HelperDecorators []string `toml:"helper_decorators"`
	// AnchorAssignments places an independent assignment right before the
	// helper or class that first uses it.
	AnchorAssignments bool `toml:"anchor_assignments"`
	// BlankLines between module-level declarations.
	BlankLines int `toml:"blank_lines"`
	// Jobs is the number of files formatted concurrently; 0 means one per CPU.
	Jobs int `toml:"jobs,omitempty"`

	// Source is the file the config was read from, empty for defaults.
	Source string `toml:"-"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Include:           []string{`(^|/)ivy/functional/frontends/`},
		Exclude:           []string{"config.py", "__init__.py", "helpers.py", "test_helpers/"},
		Formatters:        []string{FormatterOrder, FormatterDocstring},
		HelperDecorators:  []string{"composite"},
		AnchorAssignments: true,
		BlankLines:        1,
	}
}

// Load reads configuration for dir. pyorder.toml wins over pyproject.toml;
// when neither exists, or pyproject.toml has no [tool.pyorder] table, the
// defaults are returned. Values present in the file replace the defaults.
func Load(dir string) (*Config, error) {
	path := filepath.Join(dir, FileName)
	if _, err := os.Stat(path); err == nil {
		return LoadFile(path)
	}

	path = filepath.Join(dir, PyprojectName)
	if _, err := os.Stat(path); err != nil {
		return Default(), nil
	}

	var doc struct {
		Tool struct {
			Pyorder toml.Primitive `toml:"pyorder"`
		} `toml:"tool"`
	}
	md, err := toml.DecodeFile(path, &doc)
	if err != nil {
		return nil, errors.Wrap(errors.InvalidConfig, err, "reading %s", path)
	}
	cfg := Default()
	if !md.IsDefined("tool", "pyorder") {
		return cfg, nil
	}
	if err := md.PrimitiveDecode(doc.Tool.Pyorder, cfg); err != nil {
		return nil, errors.Wrap(errors.InvalidConfig, err, "decoding [tool.pyorder] in %s", path)
	}
	cfg.Source = path
	return finish(cfg)
}

// LoadFile reads a standalone pyorder.toml.
func LoadFile(path string) (*Config, error) {
	cfg := Default()
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, errors.Wrap(errors.InvalidConfig, err, "reading %s", path)
	}
	cfg.Source = path
	return finish(cfg)
}

func finish(cfg *Config) (*Config, error) {
	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, errors.Wrap(errors.InvalidConfig, ValidationErrors(errs), "%s", cfg.Source)
	}
	return cfg, nil
}

// Encode writes cfg as TOML, used by "pyorder init".
func (c *Config) Encode() (string, error) {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(c); err != nil {
		return "", fmt.Errorf("encoding config: %w", err)
	}
	return buf.String(), nil
}
