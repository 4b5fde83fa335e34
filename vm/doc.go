// Package vm implements the stacker execution engine.
//
// This package contains:
//   - the bounded instruction store and the call stack
//   - the symbol table of variables, constants and subroutines
//   - the ordered instruction classifier
//   - the dispatcher and its control-flow scanner
//   - state snapshots for info and for host retrieval
package vm
