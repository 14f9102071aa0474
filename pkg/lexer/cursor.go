package lexer

// Cursor gives the parser unlimited peeking at one token. Peek is idempotent
// until Advance releases the current token; the lexer is only asked for a new
// token after that.
type Cursor struct {
	lex    *Lexer
	tok    Token
	err    error
	locked bool
}

// NewCursor wraps l.
func NewCursor(l *Lexer) *Cursor {
	return &Cursor{lex: l}
}

// Peek returns the current token without consuming it. An io.EOF or
// *LexError is returned again on every call until Advance.
func (c *Cursor) Peek() (Token, error) {
	if !c.locked {
		c.tok, c.err = c.lex.Next()
		c.locked = true
	}
	return c.tok, c.err
}

// Advance consumes the current token. Calling it without a preceding Peek
// consumes the next token unseen.
func (c *Cursor) Advance() {
	if !c.locked {
		c.Peek()
	}
	c.locked = false
}

// Next is Peek followed by Advance.
func (c *Cursor) Next() (Token, error) {
	tok, err := c.Peek()
	c.Advance()
	return tok, err
}

// Pos returns the position of the peeked token, or of the next unread byte
// when nothing is peeked or the peek failed.
func (c *Cursor) Pos() (line, col int) {
	if c.locked && c.err == nil {
		return c.tok.Line, c.tok.Col
	}
	return c.lex.Pos()
}
