package lexer

import "fmt"

// Kind identifies the category of a lexed token.
type Kind int

const (
	Unknown Kind = iota // byte sequence no rule matched

	Ident     // variable / function / type name
	Keyword   // reserved word
	Int       // integer literal, renormalized to base 10
	Float     // decimal literal with fraction and/or exponent
	Char      // 'c'
	String    // "..."
	Operator  // punctuation and operators, see Op
	LineBreak // \n, \r\n or \r
	Comment   // // ... or /* ... */, discarded unless WithComments is set
)

var kindNames = [...]string{
	Unknown:   "UNKNOWN",
	Ident:     "IDENT",
	Keyword:   "KEYWORD",
	Int:       "INT",
	Float:     "FLOAT",
	Char:      "CHAR",
	String:    "STRING",
	Operator:  "OPERATOR",
	LineBreak: "LINEBREAK",
	Comment:   "COMMENT",
}

func (k Kind) String() string {
	if int(k) >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Op names an operator or punctuation token.
type Op int

const (
	NoOp Op = iota

	// Open brackets
	LParen   // (
	LBracket // [

	// Expression terminators
	RParen      // )
	RBracket    // ]
	LBrace      // {
	RBrace      // }
	Comma       // ,
	Semicolon   // ;
	Colon       // :
	Assign      // =
	AddAssign   // +=
	SubAssign   // -=
	MulAssign   // *=
	DivAssign   // /=
	ModAssign   // %=

	// Prefix unary
	Not    // !
	BitNot // ~

	// Postfix unary (prefix when an operand is expected)
	Inc // ++
	Dec // --

	// Binary
	Dot    // .
	Add    // +
	Sub    // -
	Mul    // *
	Div    // /
	Mod    // %
	Shl    // <<
	Shr    // >>
	Lt     // <
	Le     // <=
	Gt     // >
	Ge     // >=
	Eq     // ==
	Ne     // !=
	BitAnd // &
	BitXor // ^
	BitOr  // |
	LogAnd // &&
	LogOr  // ||

	// Prefix forms of Add/Sub chosen by the parser; never produced by the lexer.
	Pos // unary +
	Neg // unary -
	PreInc
	PreDec
)

var opText = [...]string{
	NoOp:      "",
	LParen:    "(",
	LBracket:  "[",
	RParen:    ")",
	RBracket:  "]",
	LBrace:    "{",
	RBrace:    "}",
	Comma:     ",",
	Semicolon: ";",
	Colon:     ":",
	Assign:    "=",
	AddAssign: "+=",
	SubAssign: "-=",
	MulAssign: "*=",
	DivAssign: "/=",
	ModAssign: "%=",
	Not:       "!",
	BitNot:    "~",
	Inc:       "++",
	Dec:       "--",
	Dot:       ".",
	Add:       "+",
	Sub:       "-",
	Mul:       "*",
	Div:       "/",
	Mod:       "%",
	Shl:       "<<",
	Shr:       ">>",
	Lt:        "<",
	Le:        "<=",
	Gt:        ">",
	Ge:        ">=",
	Eq:        "==",
	Ne:        "!=",
	BitAnd:    "&",
	BitXor:    "^",
	BitOr:     "|",
	LogAnd:    "&&",
	LogOr:     "||",
	Pos:       "+",
	Neg:       "-",
	PreInc:    "++",
	PreDec:    "--",
}

func (o Op) String() string {
	if int(o) >= 0 && int(o) < len(opText) {
		return opText[o]
	}
	return fmt.Sprintf("Op(%d)", int(o))
}

// Class is the arity/position class of an operator token.
type Class int

const (
	NoClass Class = iota
	PrefixUnary
	PostfixUnary
	Binary
	Open       // ( and [
	Terminator // ends an expression
)

var classNames = [...]string{
	NoClass:      "-",
	PrefixUnary:  "prefix",
	PostfixUnary: "postfix",
	Binary:       "binary",
	Open:         "open",
	Terminator:   "terminator",
}

func (c Class) String() string {
	if int(c) >= 0 && int(c) < len(classNames) {
		return classNames[c]
	}
	return fmt.Sprintf("Class(%d)", int(c))
}

// ClassOf returns the class the lexer tags op with.
func ClassOf(op Op) Class {
	switch {
	case op == LParen || op == LBracket:
		return Open
	case op >= RParen && op <= ModAssign:
		return Terminator
	case op == Not || op == BitNot || op == Pos || op == Neg || op == PreInc || op == PreDec:
		return PrefixUnary
	case op == Inc || op == Dec:
		return PostfixUnary
	case op >= Dot && op <= LogOr:
		return Binary
	}
	return NoClass
}

// keywords is the fixed reserved-word table.
var keywords = map[string]bool{
	"include":  true,
	"module":   true,
	"func":     true,
	"type":     true,
	"if":       true,
	"else":     true,
	"while":    true,
	"for":      true,
	"return":   true,
	"break":    true,
	"continue": true,
	"int":      true,
	"float":    true,
	"char":     true,
	"string":   true,
	"bool":     true,
	"void":     true,
	"true":     true,
	"false":    true,
}

// IsKeyword reports whether s is a reserved word.
func IsKeyword(s string) bool {
	return keywords[s]
}

// Token is a single lexical unit produced by the Lexer.
type Token struct {
	Kind   Kind
	Lexeme string // normalized text: base-10 for integers, decoded for char/string
	Line   int    // 1-based source line
	Col    int    // 1-based byte column of the first byte
	Op     Op     // set when Kind == Operator
	Class  Class  // set when Kind == Operator
}

// Is reports whether t is the operator op.
func (t Token) Is(op Op) bool {
	return t.Kind == Operator && t.Op == op
}

// IsKeyword reports whether t is the keyword kw.
func (t Token) IsKeyword(kw string) bool {
	return t.Kind == Keyword && t.Lexeme == kw
}

func (t Token) String() string {
	if t.Kind == Operator {
		return fmt.Sprintf("%-10s %-14q %-10s %d:%d", t.Kind, t.Lexeme, t.Class, t.Line, t.Col)
	}
	return fmt.Sprintf("%-10s %-14q %-10s %d:%d", t.Kind, t.Lexeme, "", t.Line, t.Col)
}
