// Package loader reads program and library source into instructions.
package loader

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"

	"github.com/stacker-lang/stacker/vm"
)

// DefaultLibrarySuffix is the suffix every included library must carry.
const DefaultLibrarySuffix = ".mlib"

// verbatimIndent marks a line that is kept exactly as written.
const verbatimIndent = "   "

var (
	ErrOpen            = errors.New("cannot open source")
	ErrLibraryNotFound = errors.New("library not found")
	ErrLibrarySuffix   = errors.New("library name has the wrong suffix")
)

// LoadError is the fatal error returned when a program cannot be loaded.
// Nothing may run after it.
type LoadError struct {
	Path string
	Err  error // ErrOpen or vm.ErrCapacity, possibly wrapped
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load %s: %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// Load reads the program at path from fs and builds a program of the
// given capacity.
func Load(fs afero.Fs, path string, capacity int) (*vm.Program, error) {
	instrs, err := ReadFile(fs, path)
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}
	prog, err := vm.NewProgram(capacity, instrs)
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}
	return prog, nil
}

// ReadFile reads the instructions of one source file.
func ReadFile(fs afero.Fs, path string) ([]vm.Instruction, error) {
	f, err := fs.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrOpen, err)
	}
	defer f.Close()
	instrs, err := Read(f, path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrOpen, err)
	}
	return instrs, nil
}

// Read splits r into instructions. Blank lines are dropped, lines that
// start with at least three spaces are kept verbatim and every other line
// is trimmed. Line numbers are those of the source.
func Read(r io.Reader, source string) ([]vm.Instruction, error) {
	var instrs []vm.Instruction
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	line := 0
	for sc.Scan() {
		line++
		text, ok := Normalize(sc.Text())
		if !ok {
			continue
		}
		instrs = append(instrs, vm.Instruction{Text: text, Line: line, Source: source})
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return instrs, nil
}

// Normalize applies the line rules of Read to one line. It reports false
// for a blank line.
func Normalize(line string) (string, bool) {
	line = strings.TrimSuffix(line, "\r")
	if strings.TrimSpace(line) == "" {
		return "", false
	}
	if strings.HasPrefix(line, verbatimIndent) {
		return line, true
	}
	return strings.TrimSpace(line), true
}

// ---------------------------------------------------------------------------
// Library: resolves includi names against search directories
// ---------------------------------------------------------------------------

// Library implements vm.LibraryLoader over a file system.
type Library struct {
	Fs     afero.Fs
	Dirs   []string // searched in order
	Suffix string   // DefaultLibrarySuffix if empty
}

// NewLibrary searches dirs on fs for libraries.
func NewLibrary(fs afero.Fs, dirs ...string) *Library {
	return &Library{Fs: fs, Dirs: dirs, Suffix: DefaultLibrarySuffix}
}

// LoadLibrary returns the non-blank lines of the first file called name
// found in the search directories.
func (l *Library) LoadLibrary(name string) ([]vm.Instruction, error) {
	suffix := l.Suffix
	if suffix == "" {
		suffix = DefaultLibrarySuffix
	}
	if !strings.HasSuffix(name, suffix) || len(name) == len(suffix) {
		return nil, fmt.Errorf("%s: want %s: %w", name, suffix, ErrLibrarySuffix)
	}
	for _, dir := range l.Dirs {
		path := filepath.Join(dir, name)
		ok, err := afero.Exists(l.Fs, path)
		if err != nil {
			return nil, err
		}
		if ok {
			return ReadFile(l.Fs, path)
		}
	}
	return nil, fmt.Errorf("%s in %v: %w", name, l.Dirs, ErrLibraryNotFound)
}
