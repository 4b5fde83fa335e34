// Package manifest handles stacker.toml project configuration.
package manifest

import (
	"fmt"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/spf13/afero"
)

// FileName is the name of the configuration file.
const FileName = "stacker.toml"

// Defaults applied after decoding.
const (
	DefaultCapacity      = 1000
	DefaultMaxCallDepth  = 10000
	DefaultLibrarySuffix = ".mlib"
)

// Manifest represents a stacker.toml project configuration.
type Manifest struct {
	Interpreter Interpreter `toml:"interpreter"`
	Library     Library     `toml:"library"`
	Log         Log         `toml:"log"`

	// Dir is the directory containing the stacker.toml file (set at load time).
	Dir string `toml:"-"`
}

// Interpreter configures program loading and execution.
type Interpreter struct {
	Capacity     int  `toml:"capacity"`
	MaxCallDepth int  `toml:"max-call-depth"`
	FlatBlocks   bool `toml:"flat-blocks"`
}

// Library configures where includi looks for libraries.
type Library struct {
	Dirs   []string `toml:"dirs"`
	Suffix string   `toml:"suffix"`
}

// Log configures logging.
type Log struct {
	Verbosity int    `toml:"verbosity"`
	File      string `toml:"file"`
}

// Default returns the configuration used when no stacker.toml exists.
func Default(dir string) *Manifest {
	m := &Manifest{Dir: dir}
	m.applyDefaults()
	return m
}

func (m *Manifest) applyDefaults() {
	if m.Interpreter.Capacity <= 0 {
		m.Interpreter.Capacity = DefaultCapacity
	}
	if m.Interpreter.MaxCallDepth == 0 {
		m.Interpreter.MaxCallDepth = DefaultMaxCallDepth
	}
	if len(m.Library.Dirs) == 0 {
		m.Library.Dirs = []string{"."}
	}
	if m.Library.Suffix == "" {
		m.Library.Suffix = DefaultLibrarySuffix
	}
}

// Load parses a stacker.toml file from the given directory of fs.
func Load(fs afero.Fs, dir string) (*Manifest, error) {
	return LoadFile(fs, filepath.Join(dir, FileName))
}

// LoadFile parses the configuration file at path. Relative paths in it are
// resolved against its directory.
func LoadFile(fs afero.Fs, path string) (*Manifest, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}

	var m Manifest
	if err := toml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse error in %s: %w", path, err)
	}

	dir := filepath.Dir(path)
	m.Dir, err = filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("cannot resolve path %s: %w", dir, err)
	}

	m.applyDefaults()
	return &m, nil
}

// FindAndLoad walks up from startDir to find a stacker.toml file,
// then loads and returns the manifest. Returns nil if no manifest is found.
func FindAndLoad(fs afero.Fs, startDir string) (*Manifest, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return nil, err
	}

	for {
		path := filepath.Join(dir, FileName)
		ok, err := afero.Exists(fs, path)
		if err != nil {
			return nil, err
		}
		if ok {
			return Load(fs, dir)
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached root
			return nil, nil
		}
		dir = parent
	}
}

// LibraryDirPaths returns absolute paths for the library search directories.
func (m *Manifest) LibraryDirPaths() []string {
	var paths []string
	for _, d := range m.Library.Dirs {
		if filepath.IsAbs(d) {
			paths = append(paths, d)
			continue
		}
		paths = append(paths, filepath.Join(m.Dir, d))
	}
	return paths
}

// LogFilePath returns the log file path, or nil to log to stderr.
func (m *Manifest) LogFilePath() *string {
	if m.Log.File == "" {
		return nil
	}
	path := m.Log.File
	if !filepath.IsAbs(path) {
		path = filepath.Join(m.Dir, path)
	}
	return &path
}
