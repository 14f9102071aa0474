package parser

import (
	"errors"
	"strings"
	"testing"

	"github.com/cplus-project/cplus-origin-sub000/pkg/lexer"
)

func parseExpr(t *testing.T, src string) string {
	t.Helper()
	p := New(strings.NewReader(src))
	x, err := p.ParseExpression()
	if err != nil {
		t.Fatalf("ParseExpression(%q) error: %v", src, err)
	}
	return x.String()
}

func TestParseExpressionPrecedence(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"1+2*3", "(1 + (2 * 3))"},
		{"1*2+3", "((1 * 2) + 3)"},
		{"1+2+3", "((1 + 2) + 3)"},
		{"1-2-3", "((1 - 2) - 3)"},
		{"8/4/2", "((8 / 4) / 2)"},
		{"(1+2)*3", "((1 + 2) * 3)"},
		{"((1))", "1"},
		{"a < b == c < d", "((a < b) == (c < d))"},
		{"a || b && c", "(a || (b && c))"},
		{"a & b | c ^ d", "(((a & b) | c) ^ d)"},
		{"1 << 2 + 3", "(1 << (2 + 3))"},
		{"x % 2 == 0 && y != 1", "(((x % 2) == 0) && (y != 1))"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := parseExpr(t, tt.input); got != tt.want {
				t.Errorf("ParseExpression(%q) = %s, want %s", tt.input, got, tt.want)
			}
		})
	}
}

func TestParseExpressionUnary(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"-a", "(-a)"},
		{"- -a", "(-(-a))"},
		{"a - -b", "(a - (-b))"},
		{"-a * b", "((-a) * b)"},
		{"a * -b", "(a * (-b))"},
		{"!a && b", "((!a) && b)"},
		{"~x + 1", "((~x) + 1)"},
		{"+a", "(+a)"},
		{"a++ + b", "((a++) + b)"},
		{"-a++", "(-(a++))"},
		{"++a", "(++a)"},
		{"-(1 + 2)", "(-(1 + 2))"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := parseExpr(t, tt.input); got != tt.want {
				t.Errorf("ParseExpression(%q) = %s, want %s", tt.input, got, tt.want)
			}
		})
	}
}

func TestParseExpressionOperands(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"f()", "f()"},
		{"f(1, a + b)", "f(1, (a + b))"},
		{"f(g(x), y)", "f(g(x), y)"},
		{"a[i]", "a[i]"},
		{"a[i + 1][j]", "a[(i + 1)][j]"},
		{"f(x)[0]", "f(x)[0]"},
		{"p.x + 1", "((p.x) + 1)"},
		{"a.b.c", "((a.b).c)"},
		{`"hi" + 'c'`, `("hi" + 'c')`},
		{"0b1011 + 0x1F", "(11 + 31)"},
		{"true || false", "(true || false)"},
		{"(1 +\n 2)", "(1 + 2)"},
		{"f(1,\n 2)", "f(1, 2)"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := parseExpr(t, tt.input); got != tt.want {
				t.Errorf("ParseExpression(%q) = %s, want %s", tt.input, got, tt.want)
			}
		})
	}
}

// The token that ends an expression stays current for the caller.
func TestParseExpressionStopsAtTerminator(t *testing.T) {
	tests := []struct {
		input string
		want  string
		next  string
	}{
		{"a + b)", "(a + b)", ")"},
		{"x = 1", "x", "="},
		{"x += 1", "x", "+="},
		{"i < n {", "(i < n)", "{"},
		{"a, b", "a", ","},
		{"a; b", "a", ";"},
		{"a]", "a", "]"},
		{"Point p", "Point", "p"},
		{"a + b\nc", "(a + b)", "\n"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			p := New(strings.NewReader(tt.input))
			x, err := p.ParseExpression()
			if err != nil {
				t.Fatalf("ParseExpression error: %v", err)
			}
			if x.String() != tt.want {
				t.Errorf("got %s, want %s", x, tt.want)
			}
			tok, err := p.peek()
			if err != nil {
				t.Fatalf("peek error: %v", err)
			}
			if tok.Lexeme != tt.next {
				t.Errorf("next token = %q, want %q", tok.Lexeme, tt.next)
			}
		})
	}
}

func TestParseExpressionErrors(t *testing.T) {
	tests := []struct {
		input string
		msg   string
	}{
		{"", "expected expression"},
		{"1 +", "missing operand"},
		{"* 2", "expected operand"},
		{"(1 + 2", "unclosed '('"},
		{"()", "expected operand before ')'"},
		{"1 2", "unexpected INT"},
		{"f(1 2)", "unexpected INT"},
		{"f(1", "unterminated argument list"},
		{"a[1", "expected \"]\""},
		{"a !b", "unexpected \"!\" after operand"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			p := New(strings.NewReader(tt.input))
			_, err := p.ParseExpression()
			var perr *ParseError
			if !errors.As(err, &perr) {
				t.Fatalf("ParseExpression(%q) error = %v, want *ParseError", tt.input, err)
			}
			if !strings.Contains(perr.Msg, tt.msg) {
				t.Errorf("message %q does not contain %q", perr.Msg, tt.msg)
			}
		})
	}
}

func TestParseExpressionLexError(t *testing.T) {
	p := New(strings.NewReader(`1 + "open`))
	_, err := p.ParseExpression()
	var lexErr *lexer.LexError
	if !errors.As(err, &lexErr) {
		t.Fatalf("error = %v, want *lexer.LexError", err)
	}
}

func TestLookupPriorities(t *testing.T) {
	for op, prio := range priorities {
		d, ok := Lookup(op)
		if !ok || d.Priority != prio {
			t.Errorf("Lookup(%s) = %+v, %v", op, d, ok)
		}
		if prio < 0 || prio > 9 {
			t.Errorf("%s priority %d outside 0..9", op, prio)
		}
		if d.Arity() == 0 {
			t.Errorf("%s has no arity", op)
		}
	}
	if _, ok := Lookup(lexer.Assign); ok {
		t.Error("Assign must not be an expression operator")
	}
}

func TestParseExpr(t *testing.T) {
	x, err := ParseExpr("a * (b + 1)\n\n")
	if err != nil {
		t.Fatal(err)
	}
	if x.String() != "(a * (b + 1))" {
		t.Errorf("ParseExpr = %s", x)
	}
	if _, err := ParseExpr("a + b; c"); err == nil || !strings.Contains(err.Error(), "after expression") {
		t.Errorf("trailing input: %v", err)
	}
}
