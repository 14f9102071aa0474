package parser

import (
	"errors"
	"io"

	"github.com/cplus-project/cplus-origin-sub000/pkg/ast"
	"github.com/cplus-project/cplus-origin-sub000/pkg/lexer"
)

// typeKeywords are the keywords that name builtin types.
var typeKeywords = map[string]bool{
	"int":    true,
	"float":  true,
	"char":   true,
	"string": true,
	"bool":   true,
	"void":   true,
}

// Header is the result of the dependency pre-pass.
type Header struct {
	Module   *ast.Module
	Includes []*ast.Include
}

// Paths flattens every include target in declaration order.
func (h *Header) Paths() []ast.IncludePath {
	var out []ast.IncludePath
	for _, inc := range h.Includes {
		out = append(out, inc.Paths...)
	}
	return out
}

// ScanHeader tokenizes only the leading include/module declarations of r.
// It stops at the first token that starts anything else.
func ScanHeader(r io.Reader, opts ...lexer.Option) (*Header, []error) {
	p := New(r, opts...)
	h := p.parseHeader()
	return h, p.Errors()
}

// ParseFile parses a whole source file. It keeps going after errors,
// resynchronizing at the next statement boundary, and returns every error
// it collected alongside the partial tree.
func ParseFile(path string, r io.Reader, opts ...lexer.Option) (*ast.File, []error) {
	p := New(r, opts...)
	return p.ParseFile(path), p.Errors()
}

// ParseFile parses a whole source file from the parser's cursor.
func (p *Parser) ParseFile(path string) *ast.File {
	h := p.parseHeader()
	f := &ast.File{Path: path, Module: h.Module, Includes: h.Includes}
	if len(p.errs) >= p.maxErrors {
		return f
	}

	for {
		p.skipNewlines(true)
		tok, err := p.peek()
		if err == io.EOF {
			return f
		}
		if err != nil {
			if !p.record(err) {
				return f
			}
			p.advance()
			p.sync(true)
			continue
		}
		if tok.IsKeyword("include") || tok.IsKeyword("module") {
			if !p.record(p.errorf(tok, "%s declaration must precede other declarations", tok.Lexeme)) {
				return f
			}
			p.advance()
			p.sync(true)
			continue
		}

		stmt, err := p.parseStmt(true)
		if err == nil {
			err = p.expectStmtEnd()
		}
		if stmt != nil {
			f.Stmts = append(f.Stmts, stmt)
		}
		if err != nil {
			if !p.record(err) {
				return f
			}
			p.sync(true)
		}
	}
}

// sync skips to the next statement boundary after an error. A "}" is left for
// the enclosing block unless top is set.
func (p *Parser) sync(top bool) {
	for {
		tok, err := p.peek()
		if err == io.EOF {
			return
		}
		if err != nil {
			// The failed statement may already have recorded the held error.
			if !p.recorded(err) && !p.record(err) {
				return
			}
			p.advance()
			continue
		}
		switch {
		case tok.Kind == lexer.LineBreak || tok.Is(lexer.Semicolon):
			p.advance()
			return
		case tok.Is(lexer.RBrace):
			if top {
				p.advance()
			}
			return
		}
		p.advance()
	}
}

// expectStmtEnd consumes a statement terminator. A "}" or end of input also
// ends a statement but is left in place.
func (p *Parser) expectStmtEnd() error {
	tok, err := p.peek()
	if err == io.EOF {
		return nil
	}
	if err != nil {
		return err
	}
	switch {
	case tok.Kind == lexer.LineBreak || tok.Is(lexer.Semicolon):
		p.advance()
		return nil
	case tok.Is(lexer.RBrace):
		return nil
	}
	return p.errorf(tok, "unexpected %s at end of statement", describe(tok))
}

// parseHeader collects include and module declarations until the first other
// token.
func (p *Parser) parseHeader() *Header {
	h := &Header{}
	for {
		p.skipNewlines(true)
		tok, err := p.peek()
		if err != nil {
			if err != io.EOF && p.record(err) {
				p.advance()
				p.sync(true)
				continue
			}
			return h
		}

		switch {
		case tok.IsKeyword("include"):
			inc, err := p.parseInclude()
			if inc != nil {
				h.Includes = append(h.Includes, inc)
			}
			if err == nil {
				err = p.expectStmtEnd()
			}
			if err != nil {
				if !p.record(err) {
					return h
				}
				p.sync(true)
			}
		case tok.IsKeyword("module"):
			mod, err := p.parseModule()
			if err == nil {
				if h.Module != nil {
					err = p.errorf(tok, "module already declared as %q", h.Module.Name)
				} else {
					h.Module = mod
					err = p.expectStmtEnd()
				}
			}
			if err != nil {
				if !p.record(err) {
					return h
				}
				p.sync(true)
			}
		default:
			return h
		}
	}
}

// parseInclude parses `include "path"` or the grouped form, where each target
// sits on its own line:
//
//	include (
//	    "lib/strings"
//	    "util_mod"
//	)
func (p *Parser) parseInclude() (*ast.Include, error) {
	kw, _ := p.peek()
	p.advance()
	inc := &ast.Include{Pos: ast.Pos{Line: kw.Line, Col: kw.Col}}

	tok, err := p.peek()
	if err == io.EOF {
		return nil, p.errorAtCursor("expected include path, found end of input")
	}
	if err != nil {
		return nil, err
	}
	if tok.Kind == lexer.String {
		p.advance()
		inc.Paths = append(inc.Paths, ast.IncludePath{Pos: ast.Pos{Line: tok.Line, Col: tok.Col}, Path: tok.Lexeme})
		return inc, nil
	}
	if !tok.Is(lexer.LParen) {
		return nil, p.errorf(tok, "expected include path, found %s", describe(tok))
	}
	p.advance()

	for {
		p.skipNewlines(false)
		tok, err := p.peek()
		if err == io.EOF {
			return inc, p.errorAtCursor("unterminated include list")
		}
		if err != nil {
			return inc, err
		}
		switch {
		case tok.Is(lexer.RParen):
			p.advance()
			if len(inc.Paths) == 0 {
				return inc, p.errorf(tok, "empty include list")
			}
			return inc, nil
		case tok.Kind == lexer.String:
			p.advance()
			inc.Paths = append(inc.Paths, ast.IncludePath{Pos: ast.Pos{Line: tok.Line, Col: tok.Col}, Path: tok.Lexeme})
			if p.atOp(lexer.Comma) || p.atOp(lexer.Semicolon) {
				p.advance()
			}
		default:
			return inc, p.errorf(tok, "expected include path, found %s", describe(tok))
		}
	}
}

func (p *Parser) parseModule() (*ast.Module, error) {
	kw, _ := p.peek()
	p.advance()
	name, err := p.expectIdent("module name")
	if err != nil {
		return nil, err
	}
	return &ast.Module{Pos: ast.Pos{Line: kw.Line, Col: kw.Col}, Name: name.Lexeme}, nil
}

// parseStmt parses one statement without its terminator.
func (p *Parser) parseStmt(top bool) (ast.Stmt, error) {
	tok, err := p.peek()
	if err != nil {
		return nil, err
	}
	pos := ast.Pos{Line: tok.Line, Col: tok.Col}

	if tok.Kind == lexer.Keyword {
		switch tok.Lexeme {
		case "func":
			if !top {
				return nil, p.errorf(tok, "function declaration inside a block")
			}
			return p.parseFunc()
		case "type":
			return p.parseTypeDecl()
		case "if":
			return p.parseIf()
		case "while":
			p.advance()
			cond, err := p.ParseExpression()
			if err != nil {
				return nil, err
			}
			body, err := p.parseBlock()
			if err != nil {
				return nil, err
			}
			return &ast.While{Pos: pos, Cond: cond, Body: body}, nil
		case "for":
			return p.parseFor()
		case "return":
			p.advance()
			if p.atStmtEnd() {
				return &ast.Return{Pos: pos}, nil
			}
			value, err := p.ParseExpression()
			if err != nil {
				return nil, err
			}
			return &ast.Return{Pos: pos, Value: value}, nil
		case "break", "continue":
			p.advance()
			return &ast.Branch{Pos: pos, Keyword: tok.Lexeme}, nil
		}
	}
	if tok.Is(lexer.LBrace) {
		block, err := p.parseBlock()
		if err != nil {
			return nil, err
		}
		return block, nil
	}
	return p.parseSimple()
}

// atStmtEnd reports whether the current token ends a statement.
func (p *Parser) atStmtEnd() bool {
	tok, err := p.peek()
	if err != nil {
		return errors.Is(err, io.EOF)
	}
	return tok.Kind == lexer.LineBreak || tok.Is(lexer.Semicolon) || tok.Is(lexer.RBrace)
}

// parseType consumes a type keyword or a type name.
func (p *Parser) parseType() (ast.TypeRef, error) {
	tok, err := p.peek()
	if err == io.EOF {
		return ast.TypeRef{}, p.errorAtCursor("expected type, found end of input")
	}
	if err != nil {
		return ast.TypeRef{}, err
	}
	pos := ast.Pos{Line: tok.Line, Col: tok.Col}
	switch {
	case tok.Kind == lexer.Keyword && typeKeywords[tok.Lexeme]:
		p.advance()
		return ast.TypeRef{Pos: pos, Name: tok.Lexeme, Builtin: true}, nil
	case tok.Kind == lexer.Ident:
		p.advance()
		return ast.TypeRef{Pos: pos, Name: tok.Lexeme}, nil
	}
	return ast.TypeRef{}, p.errorf(tok, "expected type, found %s", describe(tok))
}

// atType reports whether the current token can start a type.
func (p *Parser) atType() bool {
	tok, err := p.peek()
	return err == nil && (tok.Kind == lexer.Ident || (tok.Kind == lexer.Keyword && typeKeywords[tok.Lexeme]))
}

// parseSimple parses a declaration, an assignment or an expression statement.
// A statement starting with a type keyword is always a declaration; one
// starting with a name is a declaration when the expression parser stops at a
// second name.
func (p *Parser) parseSimple() (ast.Stmt, error) {
	tok, err := p.peek()
	if err != nil {
		return nil, err
	}
	if tok.Kind == lexer.Keyword && typeKeywords[tok.Lexeme] {
		typ, err := p.parseType()
		if err != nil {
			return nil, err
		}
		return p.parseVarDecl(typ)
	}

	x, err := p.ParseExpression()
	if err != nil {
		return nil, err
	}

	next, err := p.peek()
	if err == io.EOF {
		return &ast.ExprStmt{X: x}, nil
	}
	if err != nil {
		return nil, err
	}
	if next.Kind == lexer.Ident {
		id, ok := x.(*ast.Ident)
		if !ok {
			return nil, p.errorf(next, "unexpected name %q after expression", next.Lexeme)
		}
		return p.parseVarDecl(ast.TypeRef{Pos: id.Pos, Name: id.Name})
	}
	if next.Kind == lexer.Operator && isAssignOp(next.Op) {
		if !assignable(x) {
			return nil, p.errorf(next, "cannot assign to %s", x)
		}
		p.advance()
		value, err := p.ParseExpression()
		if err != nil {
			return nil, err
		}
		return &ast.Assign{Op: next.Op, Target: x, Value: value}, nil
	}
	return &ast.ExprStmt{X: x}, nil
}

// assignable reports whether x may appear left of an assignment operator.
func assignable(x ast.Expr) bool {
	switch x := x.(type) {
	case *ast.Ident, *ast.Index:
		return true
	case *ast.Binary:
		return x.Op == lexer.Dot
	}
	return false
}

// parseVarDecl parses the rest of `Type name [= value]` after the type.
func (p *Parser) parseVarDecl(typ ast.TypeRef) (ast.Stmt, error) {
	name, err := p.expectIdent("variable name")
	if err != nil {
		return nil, err
	}
	decl := &ast.VarDecl{Type: typ, Name: &ast.Ident{Pos: ast.Pos{Line: name.Line, Col: name.Col}, Name: name.Lexeme}}
	if p.atOp(lexer.Assign) {
		p.advance()
		decl.Value, err = p.ParseExpression()
		if err != nil {
			return nil, err
		}
	}
	return decl, nil
}

func (p *Parser) parseTypeDecl() (ast.Stmt, error) {
	kw, _ := p.peek()
	p.advance()
	name, err := p.expectIdent("type name")
	if err != nil {
		return nil, err
	}
	typ, err := p.parseType()
	if err != nil {
		return nil, err
	}
	return &ast.TypeDecl{
		Pos:  ast.Pos{Line: kw.Line, Col: kw.Col},
		Name: &ast.Ident{Pos: ast.Pos{Line: name.Line, Col: name.Col}, Name: name.Lexeme},
		Type: typ,
	}, nil
}

func (p *Parser) parseFunc() (ast.Stmt, error) {
	kw, _ := p.peek()
	p.advance()
	name, err := p.expectIdent("function name")
	if err != nil {
		return nil, err
	}
	fn := &ast.FuncDecl{
		Pos:  ast.Pos{Line: kw.Line, Col: kw.Col},
		Name: &ast.Ident{Pos: ast.Pos{Line: name.Line, Col: name.Col}, Name: name.Lexeme},
	}
	if _, err := p.expectOp(lexer.LParen); err != nil {
		return nil, err
	}
	if !p.atOp(lexer.RParen) {
		for {
			typ, err := p.parseType()
			if err != nil {
				return nil, err
			}
			pname, err := p.expectIdent("parameter name")
			if err != nil {
				return nil, err
			}
			fn.Params = append(fn.Params, ast.Param{
				Type: typ,
				Name: &ast.Ident{Pos: ast.Pos{Line: pname.Line, Col: pname.Col}, Name: pname.Lexeme},
			})
			if !p.atOp(lexer.Comma) {
				break
			}
			p.advance()
		}
	}
	if _, err := p.expectOp(lexer.RParen); err != nil {
		return nil, err
	}
	if p.atType() {
		typ, err := p.parseType()
		if err != nil {
			return nil, err
		}
		fn.Result = &typ
	}
	fn.Body, err = p.parseBlock()
	if err != nil {
		return nil, err
	}
	return fn, nil
}

func (p *Parser) parseIf() (ast.Stmt, error) {
	kw, _ := p.peek()
	p.advance()
	cond, err := p.ParseExpression()
	if err != nil {
		return nil, err
	}
	then, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	stmt := &ast.If{Pos: ast.Pos{Line: kw.Line, Col: kw.Col}, Cond: cond, Then: then}
	if !p.atKeyword("else") {
		return stmt, nil
	}
	p.advance()
	if p.atKeyword("if") {
		stmt.Else, err = p.parseIf()
	} else {
		stmt.Else, err = p.parseBlock()
	}
	if err != nil {
		return nil, err
	}
	return stmt, nil
}

func (p *Parser) parseFor() (ast.Stmt, error) {
	kw, _ := p.peek()
	p.advance()
	stmt := &ast.For{Pos: ast.Pos{Line: kw.Line, Col: kw.Col}}

	var err error
	if !p.atOp(lexer.Semicolon) {
		if stmt.Init, err = p.parseSimple(); err != nil {
			return nil, err
		}
	}
	if _, err := p.expectOp(lexer.Semicolon); err != nil {
		return nil, err
	}
	if !p.atOp(lexer.Semicolon) {
		if stmt.Cond, err = p.ParseExpression(); err != nil {
			return nil, err
		}
	}
	if _, err := p.expectOp(lexer.Semicolon); err != nil {
		return nil, err
	}
	if !p.atOp(lexer.LBrace) {
		if stmt.Post, err = p.parseSimple(); err != nil {
			return nil, err
		}
	}
	if stmt.Body, err = p.parseBlock(); err != nil {
		return nil, err
	}
	return stmt, nil
}

// parseBlock parses `{ stmts }`. Errors inside the block are recorded and
// skipped; only a missing "{" or an unterminated block fails the caller.
func (p *Parser) parseBlock() (*ast.Block, error) {
	open, err := p.expectOp(lexer.LBrace)
	if err != nil {
		return nil, err
	}
	block := &ast.Block{Pos: ast.Pos{Line: open.Line, Col: open.Col}}
	for {
		p.skipNewlines(true)
		tok, err := p.peek()
		if err == io.EOF {
			return block, p.errorf(open, "unterminated block")
		}
		if err != nil {
			if !p.record(err) {
				return block, errStop
			}
			p.advance()
			p.sync(false)
			continue
		}
		if tok.Is(lexer.RBrace) {
			p.advance()
			return block, nil
		}

		stmt, err := p.parseStmt(false)
		if err == nil {
			err = p.expectStmtEnd()
		}
		if stmt != nil {
			block.Stmts = append(block.Stmts, stmt)
		}
		if err != nil {
			if !p.record(err) {
				return block, errStop
			}
			p.sync(false)
		}
	}
}
