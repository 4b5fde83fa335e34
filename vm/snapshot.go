package vm

import (
	"fmt"
	"io"

	"github.com/fxamacker/cbor/v2"

	"github.com/stacker-lang/stacker/expr"
)

// cborEncMode uses canonical mode so equal snapshots encode to equal bytes.
var cborEncMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("vm: failed to create CBOR enc mode: %v", err))
	}
	cborEncMode = em
}

// Snapshot is a read-only copy of interpreter state, taken by the info
// instruction and by hosts retrieving results after a run.
type Snapshot struct {
	RunID        string            `cbor:"1,keyasint"`
	Capacity     int               `cbor:"2,keyasint"`
	Instructions []string          `cbor:"3,keyasint"`
	PC           int               `cbor:"4,keyasint"`
	CallStack    []string          `cbor:"5,keyasint,omitempty"`
	Variables    []SnapshotBinding `cbor:"6,keyasint,omitempty"`
	Constants    []SnapshotBinding `cbor:"7,keyasint,omitempty"`
	Subroutines  []SnapshotBody    `cbor:"8,keyasint,omitempty"`
}

// SnapshotBinding is a named value. Exactly one payload field is set,
// selected by Kind; functions carry only their Text rendering.
type SnapshotBinding struct {
	Name  string  `cbor:"1,keyasint"`
	Kind  string  `cbor:"2,keyasint"`
	Int   int64   `cbor:"3,keyasint,omitempty"`
	Float float64 `cbor:"4,keyasint,omitempty"`
	Bool  bool    `cbor:"5,keyasint,omitempty"`
	Text  string  `cbor:"6,keyasint"`
}

// SnapshotBody is a subroutine and its captured body.
type SnapshotBody struct {
	Name string   `cbor:"1,keyasint"`
	Body []string `cbor:"2,keyasint"`
}

func snapshotBinding(b Binding) SnapshotBinding {
	sb := SnapshotBinding{Name: b.Name, Kind: b.Value.Kind().String(), Text: b.Value.String()}
	switch b.Value.Kind() {
	case expr.KindInt:
		sb.Int = b.Value.Int64()
	case expr.KindFloat:
		sb.Float = b.Value.Float64()
	case expr.KindBool:
		sb.Bool = b.Value.Bool()
	}
	return sb
}

// Value converts the binding back to a value. Functions cannot be
// restored and report false.
func (b SnapshotBinding) Value() (expr.Value, bool) {
	switch b.Kind {
	case expr.KindInt.String():
		return expr.Int(b.Int), true
	case expr.KindFloat.String():
		return expr.Float(b.Float), true
	case expr.KindBool.String():
		return expr.Bool(b.Bool), true
	}
	return expr.Value{}, false
}

// MarshalSnapshot serializes a Snapshot to CBOR bytes.
func MarshalSnapshot(s *Snapshot) ([]byte, error) {
	return cborEncMode.Marshal(s)
}

// UnmarshalSnapshot deserializes a Snapshot from CBOR bytes.
func UnmarshalSnapshot(data []byte) (*Snapshot, error) {
	var s Snapshot
	if err := cbor.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("vm: unmarshal snapshot: %w", err)
	}
	return &s, nil
}

// WriteText renders the snapshot for people.
func (s *Snapshot) WriteText(w io.Writer) error {
	ew := &errWriter{w: w}
	ew.printf("capacity: %d\n", s.Capacity)
	ew.printf("instructions: %d\n", len(s.Instructions))
	for n, text := range s.Instructions {
		ew.printf("  %4d  %s\n", n+1, text)
	}
	if len(s.CallStack) > 0 {
		ew.printf("call stack: %v\n", s.CallStack)
	}
	ew.printf("variables:\n")
	for _, b := range s.Variables {
		ew.printf("  %s = %s\n", b.Name, b.Text)
	}
	ew.printf("constants:\n")
	for _, b := range s.Constants {
		ew.printf("  %s = %s\n", b.Name, b.Text)
	}
	ew.printf("subroutines:\n")
	for _, sub := range s.Subroutines {
		ew.printf("  %s (%d instructions)\n", sub.Name, len(sub.Body))
	}
	return ew.err
}

// errWriter keeps the first write error and drops later writes.
type errWriter struct {
	w   io.Writer
	err error
}

func (ew *errWriter) printf(format string, args ...interface{}) {
	if ew.err != nil {
		return
	}
	_, ew.err = fmt.Fprintf(ew.w, format, args...)
}
