// Package manifest handles grfgen.toml project configuration.
package manifest

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Manifest represents a grfgen.toml project configuration.
type Manifest struct {
	Project   Project   `toml:"project"`
	Languages Languages `toml:"languages"`
	Output    Output    `toml:"output"`

	// Dir is the directory containing the grfgen.toml file (set at load time).
	Dir string `toml:"-"`
}

// Project contains project metadata.
type Project struct {
	Name    string `toml:"name"`
	Version string `toml:"version"`
}

// Languages configures translation file locations.
type Languages struct {
	Dir string `toml:"dir"`
}

// Output configures the generated output file.
type Output struct {
	Path        string `toml:"path"`
	StartSprite int    `toml:"start-sprite"`
	InfoVersion int    `toml:"info-version"`
	Cache       bool   `toml:"cache"`
}

// Load parses a grfgen.toml file from the given directory.
func Load(dir string) (*Manifest, error) {
	path := filepath.Join(dir, "grfgen.toml")
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}

	var m Manifest
	if err := toml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse error in %s: %w", path, err)
	}

	m.Dir, err = filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("cannot resolve path %s: %w", dir, err)
	}

	// Defaults
	if m.Languages.Dir == "" {
		m.Languages.Dir = "lang"
	}
	if m.Output.Path == "" {
		m.Output.Path = "out.nfo"
	}
	if m.Output.InfoVersion == 0 {
		m.Output.InfoVersion = 32
	}

	return &m, nil
}

// FindAndLoad walks up from startDir to find a grfgen.toml file,
// then loads and returns the manifest. Returns nil if no manifest is found.
func FindAndLoad(startDir string) (*Manifest, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return nil, err
	}

	for {
		path := filepath.Join(dir, "grfgen.toml")
		if _, err := os.Stat(path); err == nil {
			return Load(dir)
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached root
			return nil, nil
		}
		dir = parent
	}
}

// LanguagesDirPath returns the absolute path of the translation files
// directory.
func (m *Manifest) LanguagesDirPath() string {
	return filepath.Join(m.Dir, m.Languages.Dir)
}

// OutputPath returns the absolute path of the output file.
func (m *Manifest) OutputPath() string {
	if filepath.IsAbs(m.Output.Path) {
		return m.Output.Path
	}
	return filepath.Join(m.Dir, m.Output.Path)
}
