package ast

import (
	"fmt"
	"strings"

	"github.com/cplus-project/cplus-origin-sub000/pkg/lexer"
)

// Stmt is implemented by every statement and declaration node.
type Stmt interface {
	Node
	stmtNode()
}

// IncludePath is one target of an include declaration.
type IncludePath struct {
	Pos
	Path string
}

// Include is `include "a"` or the grouped form `include ( "a" "b" )`.
type Include struct {
	Pos
	Paths []IncludePath
}

func (*Include) stmtNode()       {}
func (s *Include) Position() Pos { return s.Pos }
func (s *Include) String() string {
	paths := make([]string, len(s.Paths))
	for i, p := range s.Paths {
		paths[i] = fmt.Sprintf("%q", p.Path)
	}
	return "Include(" + strings.Join(paths, ", ") + ")"
}

// Module is `module name`.
type Module struct {
	Pos
	Name string
}

func (*Module) stmtNode()        {}
func (s *Module) Position() Pos  { return s.Pos }
func (s *Module) String() string { return "Module(" + s.Name + ")" }

// TypeRef names a type, either a type keyword or a declared type.
type TypeRef struct {
	Pos
	Name    string
	Builtin bool
}

func (t TypeRef) String() string { return t.Name }

// VarDecl is `Type Name [= Value]`.
type VarDecl struct {
	Type  TypeRef
	Name  *Ident
	Value Expr // nil when absent
}

func (*VarDecl) stmtNode()       {}
func (s *VarDecl) Position() Pos { return s.Type.Pos }
func (s *VarDecl) String() string {
	if s.Value == nil {
		return fmt.Sprintf("VarDecl(%s %s)", s.Type, s.Name)
	}
	return fmt.Sprintf("VarDecl(%s %s = %s)", s.Type, s.Name, s.Value)
}

// TypeDecl is `type Name Type`.
type TypeDecl struct {
	Pos
	Name *Ident
	Type TypeRef
}

func (*TypeDecl) stmtNode()        {}
func (s *TypeDecl) Position() Pos  { return s.Pos }
func (s *TypeDecl) String() string { return fmt.Sprintf("TypeDecl(%s %s)", s.Name, s.Type) }

// Param is one function parameter.
type Param struct {
	Type TypeRef
	Name *Ident
}

// FuncDecl is `func Name(params) [Result] { Body }`.
type FuncDecl struct {
	Pos
	Name   *Ident
	Params []Param
	Result *TypeRef // nil when the function returns nothing
	Body   *Block
}

func (*FuncDecl) stmtNode()       {}
func (s *FuncDecl) Position() Pos { return s.Pos }
func (s *FuncDecl) String() string {
	params := make([]string, len(s.Params))
	for i, p := range s.Params {
		params[i] = p.Type.Name + " " + p.Name.Name
	}
	result := ""
	if s.Result != nil {
		result = " " + s.Result.Name
	}
	return fmt.Sprintf("FuncDecl(%s(%s)%s, %d stmts)", s.Name, strings.Join(params, ", "), result, len(s.Body.Stmts))
}

// Block is `{ Stmts }`.
type Block struct {
	Pos
	Stmts []Stmt
}

func (*Block) stmtNode()        {}
func (s *Block) Position() Pos  { return s.Pos }
func (s *Block) String() string { return fmt.Sprintf("Block(%d stmts)", len(s.Stmts)) }

// If is `if Cond Then [else Else]`. Else is nil, *If or *Block.
type If struct {
	Pos
	Cond Expr
	Then *Block
	Else Stmt
}

func (*If) stmtNode()        {}
func (s *If) Position() Pos  { return s.Pos }
func (s *If) String() string { return fmt.Sprintf("If(%s)", s.Cond) }

// While is `while Cond Body`.
type While struct {
	Pos
	Cond Expr
	Body *Block
}

func (*While) stmtNode()        {}
func (s *While) Position() Pos  { return s.Pos }
func (s *While) String() string { return fmt.Sprintf("While(%s)", s.Cond) }

// For is `for Init; Cond; Post Body`; each clause may be nil.
type For struct {
	Pos
	Init Stmt
	Cond Expr
	Post Stmt
	Body *Block
}

func (*For) stmtNode()        {}
func (s *For) Position() Pos  { return s.Pos }
func (s *For) String() string { return fmt.Sprintf("For(%v; %v; %v)", s.Init, s.Cond, s.Post) }

// Return is `return [Value]`.
type Return struct {
	Pos
	Value Expr
}

func (*Return) stmtNode()       {}
func (s *Return) Position() Pos { return s.Pos }
func (s *Return) String() string {
	if s.Value == nil {
		return "Return"
	}
	return fmt.Sprintf("Return(%s)", s.Value)
}

// Branch is `break` or `continue`.
type Branch struct {
	Pos
	Keyword string
}

func (*Branch) stmtNode()        {}
func (s *Branch) Position() Pos  { return s.Pos }
func (s *Branch) String() string { return "Branch(" + s.Keyword + ")" }

// Assign is `Target Op Value` where Op is = or a compound assignment.
type Assign struct {
	Op     lexer.Op
	Target Expr
	Value  Expr
}

func (*Assign) stmtNode()       {}
func (s *Assign) Position() Pos { return s.Target.Position() }
func (s *Assign) String() string {
	return fmt.Sprintf("Assign(%s %s %s)", s.Target, s.Op, s.Value)
}

// ExprStmt is an expression evaluated for its effect.
type ExprStmt struct {
	X Expr
}

func (*ExprStmt) stmtNode()        {}
func (s *ExprStmt) Position() Pos  { return s.X.Position() }
func (s *ExprStmt) String() string { return s.X.String() }

// File is one parsed source file.
type File struct {
	Path     string
	Module   *Module // nil when the file does not name its module
	Includes []*Include
	Stmts    []Stmt
}
