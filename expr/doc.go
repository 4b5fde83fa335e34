// Package expr implements the restricted expression language used on the
// right of assignments and in conditional predicates.
//
// The grammar covers numeric and boolean literals, names, the arithmetic
// operators + - * / // % ** with unary minus, and the comparisons
// == != < > <= >=. There is no call syntax: callables are invoked by the
// interpreter's assignment form, never from inside an expression, so
// evaluation has no side effects.
package expr
