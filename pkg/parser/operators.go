package parser

import "github.com/cplus-project/cplus-origin-sub000/pkg/lexer"

// Descriptor describes how an operator takes part in expression parsing.
// Priority runs from 0 (binds tightest) to 9 (loosest).
type Descriptor struct {
	Op       lexer.Op
	Class    lexer.Class
	Priority int
}

// Arity returns the number of operands the operator consumes.
func (d Descriptor) Arity() int {
	switch d.Class {
	case lexer.PrefixUnary, lexer.PostfixUnary:
		return 1
	case lexer.Binary:
		return 2
	}
	return 0
}

// priorities holds the ten static bands, keyed by operator.
var priorities = map[lexer.Op]int{
	lexer.Inc: 0,
	lexer.Dec: 0,
	lexer.Dot: 0,

	lexer.Not:    1,
	lexer.BitNot: 1,
	lexer.Pos:    1,
	lexer.Neg:    1,
	lexer.PreInc: 1,
	lexer.PreDec: 1,

	lexer.Mul: 2,
	lexer.Div: 2,
	lexer.Mod: 2,

	lexer.Add: 3,
	lexer.Sub: 3,

	lexer.Shl: 4,
	lexer.Shr: 4,

	lexer.Lt: 5,
	lexer.Le: 5,
	lexer.Gt: 5,
	lexer.Ge: 5,

	lexer.Eq: 6,
	lexer.Ne: 6,

	lexer.BitAnd: 7,
	lexer.BitXor: 7,
	lexer.BitOr:  7,

	lexer.LogAnd: 8,

	lexer.LogOr: 9,
}

// prefixForm maps operators that are binary or postfix by default to the
// prefix operator they denote when an operand is expected.
var prefixForm = map[lexer.Op]lexer.Op{
	lexer.Add: lexer.Pos,
	lexer.Sub: lexer.Neg,
	lexer.Inc: lexer.PreInc,
	lexer.Dec: lexer.PreDec,
}

// Lookup returns the descriptor for op, or false when op never appears on
// the operator stack as an operator proper.
func Lookup(op lexer.Op) (Descriptor, bool) {
	prio, ok := priorities[op]
	if !ok {
		return Descriptor{}, false
	}
	return Descriptor{Op: op, Class: lexer.ClassOf(op), Priority: prio}, true
}

// isAssignOp reports whether op starts the right-hand side of an assignment.
func isAssignOp(op lexer.Op) bool {
	switch op {
	case lexer.Assign, lexer.AddAssign, lexer.SubAssign, lexer.MulAssign, lexer.DivAssign, lexer.ModAssign:
		return true
	}
	return false
}
