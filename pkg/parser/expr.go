package parser

import (
	"io"
	"strings"

	"github.com/cplus-project/cplus-origin-sub000/pkg/ast"
	"github.com/cplus-project/cplus-origin-sub000/pkg/lexer"
)

// pending is an operator waiting on the operator stack for its operands.
type pending struct {
	Descriptor
	tok lexer.Token
}

// exprState holds the two stacks for one ParseExpression call.
type exprState struct {
	operands  []ast.Expr
	operators []pending
	parens    int // "(" entries currently on the operator stack
}

func (s *exprState) top() (pending, bool) {
	if len(s.operators) == 0 {
		return pending{}, false
	}
	return s.operators[len(s.operators)-1], true
}

// reduce pops the top operator, applies it to as many operands as its arity
// demands and pushes the result back as a single operand.
func (p *Parser) reduce(s *exprState) error {
	op := s.operators[len(s.operators)-1]
	s.operators = s.operators[:len(s.operators)-1]

	n := op.Arity()
	if len(s.operands) < n {
		return p.errorf(op.tok, "missing operand for %q", op.Op.String())
	}
	args := s.operands[len(s.operands)-n:]
	s.operands = s.operands[:len(s.operands)-n]

	pos := ast.Pos{Line: op.tok.Line, Col: op.tok.Col}
	var node ast.Expr
	switch op.Class {
	case lexer.PrefixUnary:
		node = &ast.Unary{Pos: pos, Op: op.Op, X: args[0]}
	case lexer.PostfixUnary:
		node = &ast.Unary{Pos: pos, Op: op.Op, X: args[0], Postfix: true}
	default:
		node = &ast.Binary{Pos: pos, Op: op.Op, X: args[0], Y: args[1]}
	}
	s.operands = append(s.operands, node)
	return nil
}

// reduceWhile pops operators whose priority is not greater than prio,
// stopping at an open parenthesis.
func (p *Parser) reduceWhile(s *exprState, prio int) error {
	for {
		top, ok := s.top()
		if !ok || top.Op == lexer.LParen || top.Priority > prio {
			return nil
		}
		if err := p.reduce(s); err != nil {
			return err
		}
	}
}

// ParseExpression parses one expression starting at the current token. The
// token that ends the expression (a terminator, line break, keyword, or a
// second identifier at a declaration boundary) is left unconsumed.
func (p *Parser) ParseExpression() (ast.Expr, error) {
	s := &exprState{}
	expectOperand := true

loop:
	for {
		tok, err := p.peek()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		switch tok.Kind {
		case lexer.LineBreak:
			if s.parens == 0 {
				break loop
			}
			p.advance()

		case lexer.Ident:
			if !expectOperand {
				// declaration boundary: `Type name`
				break loop
			}
			p.advance()
			x, err := p.parseNameOperand(tok)
			if err != nil {
				return nil, err
			}
			s.operands = append(s.operands, x)
			expectOperand = false

		case lexer.Int, lexer.Float, lexer.Char, lexer.String:
			if !expectOperand {
				return nil, p.errorf(tok, "unexpected %s, expected operator", describe(tok))
			}
			p.advance()
			s.operands = append(s.operands, &ast.Literal{Pos: ast.Pos{Line: tok.Line, Col: tok.Col}, Kind: tok.Kind, Value: tok.Lexeme})
			expectOperand = false

		case lexer.Keyword:
			if tok.Lexeme != "true" && tok.Lexeme != "false" {
				break loop
			}
			if !expectOperand {
				return nil, p.errorf(tok, "unexpected %s, expected operator", describe(tok))
			}
			p.advance()
			s.operands = append(s.operands, &ast.Literal{Pos: ast.Pos{Line: tok.Line, Col: tok.Col}, Kind: lexer.Keyword, Value: tok.Lexeme})
			expectOperand = false

		case lexer.Operator:
			done, err := p.pushOperator(s, tok, &expectOperand)
			if err != nil {
				return nil, err
			}
			if done {
				break loop
			}

		default:
			break loop
		}
	}

	if expectOperand && (len(s.operators) > 0 || len(s.operands) > 0) {
		if top, ok := s.top(); ok && top.Op != lexer.LParen {
			return nil, p.errorf(top.tok, "missing operand for %q", top.Op.String())
		}
	}
	for len(s.operators) > 0 {
		top, _ := s.top()
		if top.Op == lexer.LParen {
			return nil, p.errorf(top.tok, "unclosed '('")
		}
		if err := p.reduce(s); err != nil {
			return nil, err
		}
	}

	switch len(s.operands) {
	case 0:
		tok, err := p.peek()
		if err != nil {
			return nil, p.errorAtCursor("expected expression, found end of input")
		}
		return nil, p.errorf(tok, "expected expression, found %s", describe(tok))
	case 1:
		return s.operands[0], nil
	}
	return nil, p.errorf(lexer.Token{Line: s.operands[1].Position().Line, Col: s.operands[1].Position().Col}, "malformed expression")
}

// pushOperator handles one operator token. It reports done when the token
// ends the expression instead of belonging to it.
func (p *Parser) pushOperator(s *exprState, tok lexer.Token, expectOperand *bool) (done bool, err error) {
	switch {
	case tok.Op == lexer.LParen:
		if !*expectOperand {
			return true, nil
		}
		p.advance()
		s.operators = append(s.operators, pending{Descriptor: Descriptor{Op: lexer.LParen, Class: lexer.Open, Priority: 10}, tok: tok})
		s.parens++
		return false, nil

	case tok.Op == lexer.RParen:
		if s.parens == 0 {
			return true, nil
		}
		if *expectOperand {
			return false, p.errorf(tok, "expected operand before ')'")
		}
		p.advance()
		for {
			top, _ := s.top()
			if top.Op == lexer.LParen {
				break
			}
			if err := p.reduce(s); err != nil {
				return false, err
			}
		}
		s.operators = s.operators[:len(s.operators)-1]
		s.parens--
		return false, nil

	case tok.Class == lexer.Terminator || tok.Class == lexer.Open:
		return true, nil
	}

	op := tok.Op
	if *expectOperand {
		if prefix, ok := prefixForm[op]; ok {
			op = prefix
		}
	}
	desc, ok := Lookup(op)
	if !ok {
		return true, nil
	}

	switch desc.Class {
	case lexer.PrefixUnary:
		if !*expectOperand {
			return false, p.errorf(tok, "unexpected %q after operand", tok.Lexeme)
		}
		// The operand is not available yet; push unconditionally.
		p.advance()
		s.operators = append(s.operators, pending{Descriptor: desc, tok: tok})
		return false, nil

	case lexer.PostfixUnary:
		if err := p.reduceWhile(s, desc.Priority); err != nil {
			return false, err
		}
		p.advance()
		s.operators = append(s.operators, pending{Descriptor: desc, tok: tok})
		return false, nil
	}

	if *expectOperand {
		return false, p.errorf(tok, "expected operand, found %q", tok.Lexeme)
	}
	if err := p.reduceWhile(s, desc.Priority); err != nil {
		return false, err
	}
	p.advance()
	s.operators = append(s.operators, pending{Descriptor: desc, tok: tok})
	*expectOperand = true
	return false, nil
}

// parseNameOperand builds the operand that starts with an identifier the
// caller already consumed: a plain name, a call, and any index suffixes.
func (p *Parser) parseNameOperand(name lexer.Token) (ast.Expr, error) {
	ident := &ast.Ident{Pos: ast.Pos{Line: name.Line, Col: name.Col}, Name: name.Lexeme}
	var x ast.Expr = ident

	if p.atOp(lexer.LParen) {
		p.advance()
		args, err := p.parseCallArgs()
		if err != nil {
			return nil, err
		}
		x = &ast.Call{Fn: ident, Args: args}
	}

	for p.atOp(lexer.LBracket) {
		p.advance()
		p.skipNewlines(false)
		index, err := p.ParseExpression()
		if err != nil {
			return nil, err
		}
		p.skipNewlines(false)
		if _, err := p.expectOp(lexer.RBracket); err != nil {
			return nil, err
		}
		x = &ast.Index{X: x, Index: index}
	}
	return x, nil
}

// parseCallArgs parses a comma-separated argument list after "(" up to and
// including ")".
func (p *Parser) parseCallArgs() ([]ast.Expr, error) {
	var args []ast.Expr
	p.skipNewlines(false)
	if p.atOp(lexer.RParen) {
		p.advance()
		return args, nil
	}
	for {
		p.skipNewlines(false)
		arg, err := p.ParseExpression()
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
		p.skipNewlines(false)

		tok, err := p.peek()
		if err == io.EOF {
			return nil, p.errorAtCursor("unterminated argument list")
		}
		if err != nil {
			return nil, err
		}
		switch {
		case tok.Is(lexer.Comma):
			p.advance()
		case tok.Is(lexer.RParen):
			p.advance()
			return args, nil
		default:
			return nil, p.errorf(tok, "expected ',' or ')' in argument list, found %s", describe(tok))
		}
	}
}

// ParseExpr parses src as one expression that must span the whole input.
func ParseExpr(src string) (ast.Expr, error) {
	p := New(strings.NewReader(src))
	x, err := p.ParseExpression()
	if err != nil {
		return nil, err
	}
	p.skipNewlines(true)
	tok, err := p.peek()
	if err == io.EOF {
		return x, nil
	}
	if err != nil {
		return nil, err
	}
	return nil, p.errorf(tok, "unexpected %s after expression", describe(tok))
}
