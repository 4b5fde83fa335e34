package vm

import (
	"fmt"
	"strings"

	"github.com/elliotchance/orderedmap/v2"

	"github.com/stacker-lang/stacker/expr"
)

// ---------------------------------------------------------------------------
// Symbols: the run's namespace of variables, constants and subroutines
// ---------------------------------------------------------------------------

// ConstantPrefix marks a name as a write-once constant.
const ConstantPrefix = "const_"

// IsConstantName reports whether name carries the constant prefix.
func IsConstantName(name string) bool {
	return strings.HasPrefix(name, ConstantPrefix)
}

// Binding is a name with its value, in definition order.
type Binding struct {
	Name  string
	Value expr.Value
}

// Symbols holds variables, constants and subroutine bodies. Variables and
// constants keep insertion order so dumps read in the order a program
// defined them. Symbols is owned by one interpreter and is not safe for
// concurrent use.
type Symbols struct {
	vars   *orderedmap.OrderedMap[string, expr.Value]
	consts *orderedmap.OrderedMap[string, expr.Value]
	subs   *orderedmap.OrderedMap[string, []Instruction]
}

// NewSymbols creates an empty table.
func NewSymbols() *Symbols {
	return &Symbols{
		vars:   orderedmap.NewOrderedMap[string, expr.Value](),
		consts: orderedmap.NewOrderedMap[string, expr.Value](),
		subs:   orderedmap.NewOrderedMap[string, []Instruction](),
	}
}

// SetVariable binds name, overwriting any previous value.
func (s *Symbols) SetVariable(name string, v expr.Value) {
	s.vars.Set(name, v)
}

// SetConstant binds a constant once. A second binding leaves the first
// value in place and returns ErrConstantReassign.
func (s *Symbols) SetConstant(name string, v expr.Value) error {
	if _, ok := s.consts.Get(name); ok {
		return fmt.Errorf("%s: %w", name, ErrConstantReassign)
	}
	s.consts.Set(name, v)
	return nil
}

// Variable returns a variable's value.
func (s *Symbols) Variable(name string) (expr.Value, bool) {
	return s.vars.Get(name)
}

// Constant returns a constant's value.
func (s *Symbols) Constant(name string) (expr.Value, bool) {
	return s.consts.Get(name)
}

// Resolve looks name up in variables, then constants.
func (s *Symbols) Resolve(name string) (expr.Value, bool) {
	if v, ok := s.vars.Get(name); ok {
		return v, true
	}
	return s.consts.Get(name)
}

// Get is Resolve with an error: absent names return ErrUndefined, which
// callers may answer by trying the name as a numeric literal.
func (s *Symbols) Get(name string) (expr.Value, error) {
	if v, ok := s.Resolve(name); ok {
		return v, nil
	}
	return expr.Value{}, fmt.Errorf("%s: %w", name, ErrUndefined)
}

// Delete removes a variable. Constants and subroutines cannot be deleted.
func (s *Symbols) Delete(name string) error {
	if s.vars.Delete(name) {
		return nil
	}
	if _, ok := s.consts.Get(name); ok {
		return fmt.Errorf("constant %s: %w", name, ErrNotDeletable)
	}
	if _, ok := s.subs.Get(name); ok {
		return fmt.Errorf("subroutine %s: %w", name, ErrNotDeletable)
	}
	return fmt.Errorf("%s: %w", name, ErrUndefined)
}

// DefineSubroutine stores body under name, replacing any earlier body.
func (s *Symbols) DefineSubroutine(name string, body []Instruction) {
	s.subs.Delete(name)
	s.subs.Set(name, body)
}

// LookupSubroutine returns the body stored under name.
func (s *Symbols) LookupSubroutine(name string) ([]Instruction, bool) {
	return s.subs.Get(name)
}

// HasSubroutine reports whether name is a defined subroutine.
func (s *Symbols) HasSubroutine(name string) bool {
	_, ok := s.subs.Get(name)
	return ok
}

// Variables returns every variable in definition order.
func (s *Symbols) Variables() []Binding {
	return bindings(s.vars)
}

// Constants returns every constant in definition order.
func (s *Symbols) Constants() []Binding {
	return bindings(s.consts)
}

// Subroutines returns subroutine names in definition order.
func (s *Symbols) Subroutines() []string {
	names := make([]string, 0, s.subs.Len())
	for el := s.subs.Front(); el != nil; el = el.Next() {
		names = append(names, el.Key)
	}
	return names
}

func bindings(m *orderedmap.OrderedMap[string, expr.Value]) []Binding {
	out := make([]Binding, 0, m.Len())
	for el := m.Front(); el != nil; el = el.Next() {
		out = append(out, Binding{Name: el.Key, Value: el.Value})
	}
	return out
}
