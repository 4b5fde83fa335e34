package vm

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"golang.org/x/term"
)

// Waiter blocks until an external continuation signal arrives. It backs
// the pausa instruction; there is no timeout.
type Waiter interface {
	Wait() error
}

// WaiterFunc adapts a function to Waiter.
type WaiterFunc func() error

func (f WaiterFunc) Wait() error { return f() }

// DefaultPausePrompt is written before waiting.
const DefaultPausePrompt = "Premi un tasto per continuare..."

// KeypressWaiter waits for a single key when In is a terminal, and for a
// full line otherwise.
type KeypressWaiter struct {
	In     io.Reader
	Out    io.Writer // prompt destination; nil for no prompt
	Prompt string

	lines *bufio.Reader
}

// NewKeypressWaiter waits on in and prompts on out.
func NewKeypressWaiter(in io.Reader, out io.Writer) *KeypressWaiter {
	return &KeypressWaiter{In: in, Out: out, Prompt: DefaultPausePrompt}
}

func (w *KeypressWaiter) Wait() error {
	if w.Out != nil && w.Prompt != "" {
		fmt.Fprint(w.Out, w.Prompt)
		defer fmt.Fprintln(w.Out)
	}
	if f, ok := w.In.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		return waitKey(f)
	}
	if w.lines == nil {
		w.lines = bufio.NewReader(w.In)
	}
	_, err := w.lines.ReadString('\n')
	if err == io.EOF {
		return fmt.Errorf("input closed: %w", err)
	}
	return err
}

// waitKey reads one byte from a terminal in raw mode.
func waitKey(f *os.File) error {
	fd := int(f.Fd())
	state, err := term.MakeRaw(fd)
	if err != nil {
		return fmt.Errorf("raw mode: %w", err)
	}
	defer term.Restore(fd, state)
	var b [1]byte
	_, err = f.Read(b[:])
	return err
}
