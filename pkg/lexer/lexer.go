package lexer

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode/utf8"
)

// LexError reports malformed input at a 1-based line and column.
type LexError struct {
	Line int
	Col  int
	Msg  string
}

func (e *LexError) Error() string {
	return fmt.Sprintf("%d:%d: %s", e.Line, e.Col, e.Msg)
}

// Option configures a Lexer.
type Option func(*Lexer)

// WithBufferSize sets the read-ahead window size in bytes.
func WithBufferSize(n int) Option {
	return func(l *Lexer) { l.bufSize = n }
}

// WithComments makes Next return Comment tokens instead of discarding them.
func WithComments() Option {
	return func(l *Lexer) { l.comments = true }
}

// Lexer produces one token at a time from a byte stream.
type Lexer struct {
	src      *source
	bufSize  int
	comments bool
	text     strings.Builder // token text, materialized while scanning
}

// New returns a Lexer reading from r.
func New(r io.Reader, opts ...Option) *Lexer {
	l := &Lexer{bufSize: DefaultBufferSize}
	for _, opt := range opts {
		opt(l)
	}
	l.src = newSource(r, l.bufSize)
	return l
}

// Pos returns the 1-based line and column of the next unread byte.
func (l *Lexer) Pos() (line, col int) {
	return l.src.line, l.src.col
}

// Next returns the next token. At end of input it returns io.EOF, which is
// not an error condition. Malformed input yields a *LexError. A bad literal
// is consumed through its closing quote, or up to the line break that ends
// it, so a later call resumes with the token after it.
func (l *Lexer) Next() (Token, error) {
	for {
		tok, err := l.scan()
		if err != nil {
			return tok, err
		}
		if tok.Kind == Comment && !l.comments {
			continue
		}
		return tok, nil
	}
}

func (l *Lexer) errorf(line, col int, format string, args ...any) error {
	return &LexError{Line: line, Col: col, Msg: fmt.Sprintf(format, args...)}
}

func (l *Lexer) skipSpace() {
	for {
		b, ok := l.src.peek()
		if !ok || (b != ' ' && b != '\t' && b != '\f' && b != '\v') {
			return
		}
		l.src.advance()
	}
}

func (l *Lexer) scan() (Token, error) {
	l.skipSpace()
	b, ok := l.src.peek()
	if !ok {
		if l.src.err != nil {
			return Token{}, fmt.Errorf("read source: %w", l.src.err)
		}
		return Token{}, io.EOF
	}
	line, col := l.src.line, l.src.col

	switch {
	case b == '\n' || b == '\r':
		l.src.advance()
		if b == '\r' {
			if next, ok := l.src.peek(); ok && next == '\n' {
				l.src.advance()
			}
		}
		return Token{Kind: LineBreak, Lexeme: "\n", Line: line, Col: col}, nil
	case isIdentStart(b):
		return l.scanIdent(line, col), nil
	case isDigit(b):
		return l.scanNumber(line, col)
	case b == '\'':
		return l.scanChar(line, col)
	case b == '"':
		return l.scanString(line, col)
	case b == '/':
		if next, ok := l.src.peekAt(1); ok {
			if next == '/' {
				return l.scanLineComment(line, col), nil
			}
			if next == '*' {
				return l.scanBlockComment(line, col)
			}
		}
	}

	if tok, ok := l.scanOperator(line, col); ok {
		return tok, nil
	}
	return l.scanUnknown(line, col), nil
}

// scanIdent collects a full identifier or keyword.
func (l *Lexer) scanIdent(line, col int) Token {
	l.text.Reset()
	for {
		b, ok := l.src.peek()
		if !ok || !isIdentPart(b) {
			break
		}
		l.text.WriteByte(l.src.advance())
	}
	lexeme := l.text.String()
	kind := Ident
	if IsKeyword(lexeme) {
		kind = Keyword
	}
	return Token{Kind: kind, Lexeme: lexeme, Line: line, Col: col}
}

// radixOf maps the letter after a leading 0 to its base.
func radixOf(b byte) int {
	switch b {
	case 'x', 'X':
		return 16
	case 'b', 'B':
		return 2
	case 'o', 'O':
		return 8
	case 'd', 'D':
		return 10
	}
	return 0
}

var radixNames = map[int]string{16: "hexadecimal", 2: "binary", 8: "octal", 10: "decimal"}

// scanNumber collects an integer or float literal. Integers are returned as
// base-10 text whatever radix they were written in.
func (l *Lexer) scanNumber(line, col int) (Token, error) {
	l.text.Reset()

	if b, _ := l.src.peek(); b == '0' {
		if next, ok := l.src.peekAt(1); ok {
			if radix := radixOf(next); radix != 0 {
				l.src.advance()
				l.src.advance()
				return l.scanRadix(line, col, radix)
			}
		}
	}

	kind := Int
	l.scanDigits()
	if b, ok := l.src.peek(); ok && b == '.' {
		if next, ok := l.src.peekAt(1); ok && isDigit(next) {
			kind = Float
			l.text.WriteByte(l.src.advance())
			l.scanDigits()
		}
	}
	if b, ok := l.src.peek(); ok && (b == 'e' || b == 'E') {
		n1, ok1 := l.src.peekAt(1)
		n2, ok2 := l.src.peekAt(2)
		if ok1 && (isDigit(n1) || ((n1 == '+' || n1 == '-') && ok2 && isDigit(n2))) {
			kind = Float
			l.text.WriteByte(l.src.advance())
			if n1 == '+' || n1 == '-' {
				l.text.WriteByte(l.src.advance())
			}
			l.scanDigits()
		}
	}
	if b, ok := l.src.peek(); ok && isIdentPart(b) {
		return Token{}, l.errorf(l.src.line, l.src.col, "invalid character %q in numeric literal", b)
	}

	text := l.text.String()
	if kind == Float {
		return Token{Kind: Float, Lexeme: text, Line: line, Col: col}, nil
	}
	v, err := strconv.ParseUint(text, 10, 64)
	if err != nil {
		return Token{}, l.errorf(line, col, "integer literal %s out of range", text)
	}
	return Token{Kind: Int, Lexeme: strconv.FormatUint(v, 10), Line: line, Col: col}, nil
}

func (l *Lexer) scanDigits() {
	for {
		b, ok := l.src.peek()
		if !ok || !isDigit(b) {
			return
		}
		l.text.WriteByte(l.src.advance())
	}
}

// scanRadix collects the digits following a 0x/0b/0o/0d prefix.
func (l *Lexer) scanRadix(line, col, radix int) (Token, error) {
	for {
		b, ok := l.src.peek()
		if !ok || !isIdentPart(b) {
			break
		}
		if digitValue(b) >= radix {
			return Token{}, l.errorf(l.src.line, l.src.col, "invalid digit %q in %s literal", b, radixNames[radix])
		}
		l.text.WriteByte(l.src.advance())
	}
	text := l.text.String()
	if text == "" {
		return Token{}, l.errorf(line, col, "%s literal has no digits", radixNames[radix])
	}
	v, err := strconv.ParseUint(text, radix, 64)
	if err != nil {
		return Token{}, l.errorf(line, col, "%s literal %s out of range", radixNames[radix], text)
	}
	return Token{Kind: Int, Lexeme: strconv.FormatUint(v, 10), Line: line, Col: col}, nil
}

// escapes is the fixed escape set shared by char and string literals.
var escapes = map[byte]byte{
	'a':  '\a',
	'b':  '\b',
	'f':  '\f',
	'n':  '\n',
	'r':  '\r',
	'v':  '\v',
	'\\': '\\',
	'\'': '\'',
	'"':  '"',
	'0':  0,
}

// scanEscape consumes a backslash escape and writes the decoded byte.
func (l *Lexer) scanEscape() error {
	line, col := l.src.line, l.src.col
	l.src.advance() // backslash
	e, ok := l.src.peek()
	if !ok || e == '\n' || e == '\r' {
		return l.errorf(line, col, "unterminated escape sequence")
	}
	v, known := escapes[e]
	if !known {
		return l.errorf(line, col, "unknown escape sequence \\%c", e)
	}
	l.src.advance()
	l.text.WriteByte(v)
	return nil
}

// scanChar collects a character literal. Non-ASCII characters take 1-4 bytes.
func (l *Lexer) scanChar(line, col int) (Token, error) {
	l.text.Reset()
	l.src.advance() // opening '

	b, ok := l.src.peek()
	switch {
	case !ok || b == '\n' || b == '\r':
		return Token{}, l.errorf(line, col, "unterminated character literal")
	case b == '\'':
		l.src.advance()
		return Token{}, l.errorf(line, col, "empty character literal")
	case b == '\\':
		if err := l.scanEscape(); err != nil {
			l.skipLiteral('\'')
			return Token{}, err
		}
	case b < utf8.RuneSelf:
		l.text.WriteByte(l.src.advance())
	default:
		width := utf8Width(b)
		if width == 0 {
			err := l.errorf(l.src.line, l.src.col, "invalid UTF-8 byte %#x in character literal", b)
			l.skipLiteral('\'')
			return Token{}, err
		}
		seq := make([]byte, 0, utf8.UTFMax)
		for i := 0; i < width; i++ {
			c, ok := l.src.peekAt(i)
			if !ok {
				return Token{}, l.errorf(line, col, "unterminated character literal")
			}
			seq = append(seq, c)
		}
		if !utf8.Valid(seq) {
			err := l.errorf(l.src.line, l.src.col, "invalid UTF-8 sequence in character literal")
			l.skipLiteral('\'')
			return Token{}, err
		}
		for range seq {
			l.src.advance()
		}
		l.text.Write(seq)
	}

	if b, ok := l.src.peek(); !ok || b != '\'' {
		if ok && b != '\n' && b != '\r' {
			l.skipLiteral('\'')
			return Token{}, l.errorf(line, col, "character literal holds more than one character")
		}
		return Token{}, l.errorf(line, col, "unterminated character literal")
	}
	l.src.advance() // closing '
	return Token{Kind: Char, Lexeme: l.text.String(), Line: line, Col: col}, nil
}

// scanString collects a string literal. It may not span lines.
func (l *Lexer) scanString(line, col int) (Token, error) {
	l.text.Reset()
	l.src.advance() // opening "
	for {
		b, ok := l.src.peek()
		if !ok || b == '\n' || b == '\r' {
			return Token{}, l.errorf(line, col, "unterminated string literal")
		}
		if b == '"' {
			l.src.advance()
			return Token{Kind: String, Lexeme: l.text.String(), Line: line, Col: col}, nil
		}
		if b == '\\' {
			if err := l.scanEscape(); err != nil {
				l.skipLiteral('"')
				return Token{}, err
			}
			continue
		}
		l.text.WriteByte(l.src.advance())
	}
}

// skipLiteral discards the rest of a malformed literal through its closing
// quote. It stops before a line break or at end of input.
func (l *Lexer) skipLiteral(quote byte) {
	for {
		b, ok := l.src.peek()
		if !ok || b == '\n' || b == '\r' {
			return
		}
		l.src.advance()
		switch b {
		case quote:
			return
		case '\\':
			if next, ok := l.src.peek(); ok && next != '\n' && next != '\r' {
				l.src.advance()
			}
		}
	}
}

// scanLineComment collects "//" up to, not including, the line break.
func (l *Lexer) scanLineComment(line, col int) Token {
	l.text.Reset()
	for {
		b, ok := l.src.peek()
		if !ok || b == '\n' || b == '\r' {
			break
		}
		l.text.WriteByte(l.src.advance())
	}
	return Token{Kind: Comment, Lexeme: l.text.String(), Line: line, Col: col}
}

// scanBlockComment collects a possibly nested /* ... */ comment.
func (l *Lexer) scanBlockComment(line, col int) (Token, error) {
	l.text.Reset()
	depth := 0
	for {
		b, ok := l.src.peek()
		if !ok {
			return Token{}, l.errorf(line, col, "unterminated block comment")
		}
		next, _ := l.src.peekAt(1)
		switch {
		case b == '/' && next == '*':
			depth++
			l.text.WriteByte(l.src.advance())
			l.text.WriteByte(l.src.advance())
		case b == '*' && next == '/':
			depth--
			l.text.WriteByte(l.src.advance())
			l.text.WriteByte(l.src.advance())
			if depth == 0 {
				return Token{Kind: Comment, Lexeme: l.text.String(), Line: line, Col: col}, nil
			}
		default:
			l.text.WriteByte(l.src.advance())
		}
	}
}

var twoByteOps = map[string]Op{
	"&&": LogAnd,
	"||": LogOr,
	"<<": Shl,
	">>": Shr,
	"<=": Le,
	">=": Ge,
	"==": Eq,
	"!=": Ne,
	"++": Inc,
	"--": Dec,
	"+=": AddAssign,
	"-=": SubAssign,
	"*=": MulAssign,
	"/=": DivAssign,
	"%=": ModAssign,
}

var oneByteOps = map[byte]Op{
	'(': LParen,
	')': RParen,
	'[': LBracket,
	']': RBracket,
	'{': LBrace,
	'}': RBrace,
	',': Comma,
	';': Semicolon,
	':': Colon,
	'=': Assign,
	'!': Not,
	'~': BitNot,
	'.': Dot,
	'+': Add,
	'-': Sub,
	'*': Mul,
	'/': Div,
	'%': Mod,
	'<': Lt,
	'>': Gt,
	'&': BitAnd,
	'^': BitXor,
	'|': BitOr,
}

// scanOperator matches the longest operator at the cursor.
func (l *Lexer) scanOperator(line, col int) (Token, bool) {
	b, _ := l.src.peek()
	if next, ok := l.src.peekAt(1); ok {
		if op, ok := twoByteOps[string([]byte{b, next})]; ok {
			l.src.advance()
			l.src.advance()
			return Token{Kind: Operator, Lexeme: op.String(), Line: line, Col: col, Op: op, Class: ClassOf(op)}, true
		}
	}
	if op, ok := oneByteOps[b]; ok {
		l.src.advance()
		return Token{Kind: Operator, Lexeme: op.String(), Line: line, Col: col, Op: op, Class: ClassOf(op)}, true
	}
	return Token{}, false
}

// scanUnknown consumes one character no rule recognizes. A non-ASCII lead
// byte takes its whole UTF-8 sequence with it.
func (l *Lexer) scanUnknown(line, col int) Token {
	l.text.Reset()
	b := l.src.advance()
	l.text.WriteByte(b)
	for i := 1; i < utf8Width(b); i++ {
		c, ok := l.src.peek()
		if !ok || utf8.RuneStart(c) {
			break
		}
		l.text.WriteByte(l.src.advance())
	}
	return Token{Kind: Unknown, Lexeme: l.text.String(), Line: line, Col: col}
}

// Tokenize lexes src completely and returns every token. Comments are
// dropped unless WithComments is passed.
func Tokenize(src string, opts ...Option) ([]Token, error) {
	l := New(strings.NewReader(src), opts...)
	var tokens []Token
	for {
		tok, err := l.Next()
		if err == io.EOF {
			return tokens, nil
		}
		if err != nil {
			return tokens, err
		}
		tokens = append(tokens, tok)
	}
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}

func isIdentStart(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || b == '_'
}

func isIdentPart(b byte) bool {
	return isIdentStart(b) || isDigit(b)
}

// digitValue returns the numeric value of an alphanumeric digit, or 99.
func digitValue(b byte) int {
	switch {
	case b >= '0' && b <= '9':
		return int(b - '0')
	case b >= 'a' && b <= 'f':
		return int(b-'a') + 10
	case b >= 'A' && b <= 'F':
		return int(b-'A') + 10
	}
	return 99
}

// utf8Width returns the sequence length announced by a UTF-8 lead byte,
// or 0 when b cannot start a sequence.
func utf8Width(b byte) int {
	switch {
	case b < 0x80:
		return 1
	case b&0xE0 == 0xC0:
		return 2
	case b&0xF0 == 0xE0:
		return 3
	case b&0xF8 == 0xF0:
		return 4
	}
	return 0
}
