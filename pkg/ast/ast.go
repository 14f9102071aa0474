// Package ast defines the syntax tree produced by the parser.
package ast

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/cplus-project/cplus-origin-sub000/pkg/lexer"
)

// Pos is a 1-based source position.
type Pos struct {
	Line int
	Col  int
}

func (p Pos) String() string { return fmt.Sprintf("%d:%d", p.Line, p.Col) }

// Node is implemented by every tree node.
type Node interface {
	Position() Pos
	String() string
}

//  Expression nodes

// Expr is implemented by every node that produces a value.
type Expr interface {
	Node
	exprNode()
}

// Ident is a name reference.
type Ident struct {
	Pos
	Name string
}

func (*Ident) exprNode()          {}
func (i *Ident) Position() Pos    { return i.Pos }
func (i *Ident) String() string   { return i.Name }

// Literal is a constant. Value holds the lexer's normalized text.
//
//	x = 0b101
//	    ^^^^^  Literal{Kind: lexer.Int, Value: "5"}
type Literal struct {
	Pos
	Kind  lexer.Kind // Int, Float, Char, String, or Keyword for true/false
	Value string
}

func (*Literal) exprNode()       {}
func (l *Literal) Position() Pos { return l.Pos }
func (l *Literal) String() string {
	switch l.Kind {
	case lexer.String:
		return strconv.Quote(l.Value)
	case lexer.Char:
		return "'" + l.Value + "'"
	}
	return l.Value
}

// Index is X[Index].
type Index struct {
	X     Expr
	Index Expr
}

func (*Index) exprNode()          {}
func (x *Index) Position() Pos    { return x.X.Position() }
func (x *Index) String() string   { return fmt.Sprintf("%s[%s]", x.X, x.Index) }

// Call is Fn(Args...). Only named functions can be called.
type Call struct {
	Fn   *Ident
	Args []Expr
}

func (*Call) exprNode()       {}
func (c *Call) Position() Pos { return c.Fn.Pos }
func (c *Call) String() string {
	args := make([]string, len(c.Args))
	for i, a := range c.Args {
		args[i] = a.String()
	}
	return fmt.Sprintf("%s(%s)", c.Fn.Name, strings.Join(args, ", "))
}

// Unary is Op X, or X Op when Postfix is set.
type Unary struct {
	Pos
	Op      lexer.Op
	X       Expr
	Postfix bool
}

func (*Unary) exprNode()       {}
func (u *Unary) Position() Pos { return u.Pos }
func (u *Unary) String() string {
	if u.Postfix {
		return fmt.Sprintf("(%s%s)", u.X, u.Op)
	}
	return fmt.Sprintf("(%s%s)", u.Op, u.X)
}

// Binary is X Op Y.
//
//	x + 1
//	^ ^ ^
//	| | Y
//	| Op
//	X
type Binary struct {
	Pos
	Op lexer.Op
	X  Expr
	Y  Expr
}

func (*Binary) exprNode()       {}
func (b *Binary) Position() Pos { return b.Pos }
func (b *Binary) String() string {
	if b.Op == lexer.Dot {
		return fmt.Sprintf("(%s.%s)", b.X, b.Y)
	}
	return fmt.Sprintf("(%s %s %s)", b.X, b.Op, b.Y)
}
