// Package project locates and loads pyfmt.toml, the per-tree formatter
// configuration. Discovery walks upward from the formatted file, so
// nested projects can carry their own settings.
package project

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"pyfmt/internal/format"
)

// ConfigFileName is the manifest discovered by upward search.
const ConfigFileName = "pyfmt.toml"

// Manifest is one loaded pyfmt.toml.
type Manifest struct {
	Path   string
	Root   string
	Config FileConfig
}

// FileConfig mirrors the TOML schema.
type FileConfig struct {
	Format formatTable `toml:"format"`
}

type formatTable struct {
	LineWidth     int    `toml:"line-width"`
	IndentWidth   int    `toml:"indent-width"`
	Quotes        string `toml:"quotes"`
	TargetVersion string `toml:"target-version"`
}

// FindConfig walks up from startDir to locate pyfmt.toml.
func FindConfig(startDir string) (path string, ok bool, err error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, ConfigFileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

// Load reads and validates one manifest file.
func Load(path string) (*Manifest, error) {
	var cfg FileConfig
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("%s: unknown key %q", path, undecoded[0].String())
	}
	m := &Manifest{Path: path, Root: filepath.Dir(path), Config: cfg}
	if _, err := m.FormatConfig(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}

// Discover finds and loads the manifest governing startDir. ok is false
// when no manifest exists, which is not an error.
func Discover(startDir string) (*Manifest, bool, error) {
	path, ok, err := FindConfig(startDir)
	if err != nil || !ok {
		return nil, ok, err
	}
	m, err := Load(path)
	if err != nil {
		return nil, true, err
	}
	return m, true, nil
}

// FormatConfig converts the TOML table into a validated format.Config.
// Missing keys keep the defaults.
func (m *Manifest) FormatConfig() (format.Config, error) {
	ft := m.Config.Format
	quotes, err := format.ParseQuoteStyle(ft.Quotes)
	if err != nil {
		return format.Config{}, err
	}
	cfg := format.Config{
		LineWidth:     ft.LineWidth,
		IndentWidth:   ft.IndentWidth,
		Quotes:        quotes,
		TargetVersion: ft.TargetVersion,
	}
	if err := cfg.Validate(); err != nil {
		return format.Config{}, err
	}
	return cfg, nil
}
