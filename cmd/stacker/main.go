// Stacker CLI - the main entry point for running stacker programs
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
	flag "github.com/spf13/pflag"
	"github.com/tliron/commonlog"

	"github.com/stacker-lang/stacker/expr"
	"github.com/stacker-lang/stacker/loader"
	"github.com/stacker-lang/stacker/manifest"
	"github.com/stacker-lang/stacker/server"
	"github.com/stacker-lang/stacker/vm"

	_ "github.com/tliron/commonlog/simple"
)

const version = "0.1.0"

// Exit statuses.
const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2
)

type options struct {
	capacity   int
	config     string
	libs       []string
	sets       []string
	dumpState  string
	flatBlocks bool
	verbose    int
	lsp        bool
	version    bool
}

func main() {
	os.Exit(run(os.Args[1:], afero.NewOsFs(), os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, fs afero.Fs, stdin io.Reader, stdout, stderr io.Writer) int {
	var opts options
	flags := flag.NewFlagSet("stacker", flag.ContinueOnError)
	flags.SetOutput(stderr)
	flags.IntVarP(&opts.capacity, "capacity", "c", 0, "Maximum number of instructions (default from stacker.toml, or 1000)")
	flags.StringVar(&opts.config, "config", "", "Path to a stacker.toml file (default: searched upward from the program)")
	flags.StringArrayVarP(&opts.libs, "lib", "L", nil, "Library search directory, searched before those in stacker.toml")
	flags.StringArrayVar(&opts.sets, "set", nil, "Inject a value before the run, as name=expression")
	flags.StringVar(&opts.dumpState, "dump-state", "", "Write the final state to this file as CBOR")
	flags.BoolVar(&opts.flatBlocks, "flat-blocks", false, "End blocks at the first end, ignoring nesting")
	flags.CountVarP(&opts.verbose, "verbose", "v", "Increase log verbosity (repeatable)")
	flags.BoolVar(&opts.lsp, "lsp", false, "Start the language server on stdio")
	flags.BoolVar(&opts.version, "version", false, "Print the version and exit")
	flags.Usage = func() {
		fmt.Fprintf(stderr, "Usage: stacker [options] program.stk\n\n")
		fmt.Fprintf(stderr, "Runs a stacker program.\n\n")
		fmt.Fprintf(stderr, "Options:\n")
		flags.PrintDefaults()
		fmt.Fprintf(stderr, "\nExamples:\n")
		fmt.Fprintf(stderr, "  stacker prog.stk                    # Run prog.stk\n")
		fmt.Fprintf(stderr, "  stacker --set x=-1 prog.stk         # Run with x bound to -1\n")
		fmt.Fprintf(stderr, "  stacker -L ./lib prog.stk           # Search ./lib for includi\n")
		fmt.Fprintf(stderr, "  stacker --dump-state out.cbor prog.stk\n")
		fmt.Fprintf(stderr, "  stacker --lsp                       # Language server for editors\n")
	}
	if err := flags.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		return exitUsage
	}

	if opts.version {
		fmt.Fprintf(stdout, "stacker %s\n", version)
		return exitOK
	}

	if opts.lsp {
		configureLogging(opts.verbose, nil)
		if err := server.NewLSP(version).Run(); err != nil {
			fmt.Fprintf(stderr, "Errore: %v\n", err)
			return exitError
		}
		return exitOK
	}

	if flags.NArg() != 1 {
		flags.Usage()
		return exitUsage
	}
	path := flags.Arg(0)

	m, err := loadManifest(fs, opts.config, filepath.Dir(path))
	if err != nil {
		fmt.Fprintf(stderr, "Errore: %v\n", err)
		return exitError
	}
	if flags.Changed("capacity") {
		m.Interpreter.Capacity = opts.capacity
	}
	if opts.flatBlocks {
		m.Interpreter.FlatBlocks = true
	}
	configureLogging(m.Log.Verbosity+opts.verbose, m.LogFilePath())

	prog, err := loader.Load(fs, path, m.Interpreter.Capacity)
	if err != nil {
		fmt.Fprintf(stderr, "Errore: %v\n", err)
		return exitError
	}

	lib := &loader.Library{
		Fs:     fs,
		Dirs:   append(append([]string{}, opts.libs...), m.LibraryDirPaths()...),
		Suffix: m.Library.Suffix,
	}
	interp := vm.New(prog, vm.Options{
		Stdout:       stdout,
		Stderr:       stderr,
		Libraries:    lib,
		Waiter:       vm.NewKeypressWaiter(stdin, stdout),
		MaxCallDepth: m.Interpreter.MaxCallDepth,
		FlatBlocks:   m.Interpreter.FlatBlocks,
	})

	for _, set := range opts.sets {
		if err := inject(interp, set); err != nil {
			fmt.Fprintf(stderr, "Errore: --set %s: %v\n", set, err)
			return exitUsage
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	status := exitOK
	if err := interp.Run(ctx); err != nil {
		if errors.Is(err, context.Canceled) {
			fmt.Fprintf(stderr, "Errore: %v\n", err)
		}
		status = exitError
	}

	if opts.dumpState != "" {
		if err := dumpState(fs, opts.dumpState, interp.Snapshot()); err != nil {
			fmt.Fprintf(stderr, "Errore: %v\n", err)
			return exitError
		}
	}
	return status
}

// loadManifest reads the configuration named by --config, or the nearest
// stacker.toml above the program, or falls back to the defaults.
func loadManifest(fs afero.Fs, config, programDir string) (*manifest.Manifest, error) {
	if config != "" {
		return manifest.LoadFile(fs, config)
	}
	m, err := manifest.FindAndLoad(fs, programDir)
	if err != nil {
		return nil, err
	}
	if m == nil {
		dir, err := filepath.Abs(programDir)
		if err != nil {
			return nil, err
		}
		m = manifest.Default(dir)
	}
	return m, nil
}

// configureLogging sets up commonlog. Verbosity 0 keeps logging off:
// recoverable errors already reach stderr as reports.
func configureLogging(verbosity int, path *string) {
	if verbosity <= 0 {
		commonlog.Configure(-4, nil)
		return
	}
	commonlog.Configure(verbosity, path)
}

// inject binds one name=expression pair.
func inject(interp *vm.Interpreter, set string) error {
	name, text, ok := strings.Cut(set, "=")
	if !ok {
		return fmt.Errorf("want name=expression")
	}
	v, err := expr.Evaluate(strings.TrimSpace(text), interp.Symbols())
	if err != nil {
		return err
	}
	return interp.Inject(strings.TrimSpace(name), v)
}

func dumpState(fs afero.Fs, path string, snap *vm.Snapshot) error {
	data, err := vm.MarshalSnapshot(snap)
	if err != nil {
		return fmt.Errorf("encode state: %w", err)
	}
	if err := afero.WriteFile(fs, path, data, 0o644); err != nil {
		return fmt.Errorf("write state: %w", err)
	}
	return nil
}
