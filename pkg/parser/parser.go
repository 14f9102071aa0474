// Package parser turns a token stream into syntax trees.
//
// Expressions are parsed with an explicit operand stack and operator stack
// (see expr.go). Statements and declarations use recursive descent on top of
// that routine and branch on the token that ended each expression.
//
//	file    = header { stmt } EOF
//	header  = { include | module }
//	include = "include" ( STRING | "(" { STRING } ")" )
//	module  = "module" IDENT
//	stmt    = decl | func | typedef | if | while | for | return | break | continue | simple
//	decl    = TYPE IDENT [ "=" expr ]
//	typedef = "type" IDENT TYPE
//	func    = "func" IDENT "(" [ TYPE IDENT { "," TYPE IDENT } ] ")" [ TYPE ] block
//	if      = "if" expr block [ "else" ( if | block ) ]
//	while   = "while" expr block
//	for     = "for" [ simple ] ";" [ expr ] ";" [ simple ] block
//	simple  = expr [ assignop expr ]
//
// Statements end at a line break, ";" or a closing "}".
package parser

import (
	"errors"
	"fmt"
	"io"

	"github.com/cplus-project/cplus-origin-sub000/pkg/lexer"
)

// DefaultMaxErrors bounds the errors collected from one file.
const DefaultMaxErrors = 50

// ParseError reports a syntax error at a 1-based line and column.
type ParseError struct {
	Line int
	Col  int
	Msg  string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%d:%d: %s", e.Line, e.Col, e.Msg)
}

// errStop unwinds parsing once the error budget is spent.
var errStop = errors.New("parser: too many errors")

// Parser consumes tokens from a lexer.Cursor.
type Parser struct {
	cur       *lexer.Cursor
	errs      []error
	maxErrors int
}

// New returns a Parser reading source text from r.
func New(r io.Reader, opts ...lexer.Option) *Parser {
	return NewFromCursor(lexer.NewCursor(lexer.New(r, opts...)))
}

// NewFromCursor returns a Parser over an existing cursor.
func NewFromCursor(c *lexer.Cursor) *Parser {
	return &Parser{cur: c, maxErrors: DefaultMaxErrors}
}

// SetMaxErrors changes how many errors ParseFile collects before giving up.
func (p *Parser) SetMaxErrors(n int) {
	if n > 0 {
		p.maxErrors = n
	}
}

// Errors returns the lexical and syntax errors collected so far.
func (p *Parser) Errors() []error {
	return p.errs
}

// record keeps err and reports whether parsing may continue.
func (p *Parser) record(err error) bool {
	if err == nil || errors.Is(err, errStop) {
		return err == nil
	}
	p.errs = append(p.errs, err)
	return len(p.errs) < p.maxErrors
}

// recorded reports whether err is the last error kept.
func (p *Parser) recorded(err error) bool {
	return len(p.errs) > 0 && p.errs[len(p.errs)-1] == err
}

func (p *Parser) errorf(tok lexer.Token, format string, args ...any) error {
	return &ParseError{Line: tok.Line, Col: tok.Col, Msg: fmt.Sprintf(format, args...)}
}

// errorAtCursor positions an error at the next unread byte; used at end of input.
func (p *Parser) errorAtCursor(format string, args ...any) error {
	line, col := p.cur.Pos()
	return &ParseError{Line: line, Col: col, Msg: fmt.Sprintf(format, args...)}
}

// peek returns the current token. At end of input it returns io.EOF.
func (p *Parser) peek() (lexer.Token, error) {
	return p.cur.Peek()
}

// advance consumes the current token.
func (p *Parser) advance() {
	p.cur.Advance()
}

// atOp reports whether the current token is the operator op.
func (p *Parser) atOp(op lexer.Op) bool {
	tok, err := p.peek()
	return err == nil && tok.Is(op)
}

// atKeyword reports whether the current token is the keyword kw.
func (p *Parser) atKeyword(kw string) bool {
	tok, err := p.peek()
	return err == nil && tok.IsKeyword(kw)
}

// expectOp consumes the operator op or returns an error.
func (p *Parser) expectOp(op lexer.Op) (lexer.Token, error) {
	tok, err := p.peek()
	if err == io.EOF {
		return tok, p.errorAtCursor("expected %q, found end of input", op.String())
	}
	if err != nil {
		return tok, err
	}
	if !tok.Is(op) {
		return tok, p.errorf(tok, "expected %q, found %s", op.String(), describe(tok))
	}
	p.advance()
	return tok, nil
}

// expectIdent consumes an identifier or returns an error.
func (p *Parser) expectIdent(what string) (lexer.Token, error) {
	tok, err := p.peek()
	if err == io.EOF {
		return tok, p.errorAtCursor("expected %s, found end of input", what)
	}
	if err != nil {
		return tok, err
	}
	if tok.Kind != lexer.Ident {
		return tok, p.errorf(tok, "expected %s, found %s", what, describe(tok))
	}
	p.advance()
	return tok, nil
}

// skipNewlines consumes line breaks and, when semis is set, semicolons.
func (p *Parser) skipNewlines(semis bool) {
	for {
		tok, err := p.peek()
		if err != nil {
			return
		}
		if tok.Kind != lexer.LineBreak && !(semis && tok.Is(lexer.Semicolon)) {
			return
		}
		p.advance()
	}
}

// describe renders a token for error messages.
func describe(tok lexer.Token) string {
	switch tok.Kind {
	case lexer.LineBreak:
		return "line break"
	case lexer.Operator:
		return fmt.Sprintf("%q", tok.Lexeme)
	case lexer.Unknown:
		return fmt.Sprintf("unexpected character %q", tok.Lexeme)
	case lexer.String:
		return fmt.Sprintf("string %q", tok.Lexeme)
	}
	return fmt.Sprintf("%s %q", tok.Kind, tok.Lexeme)
}
