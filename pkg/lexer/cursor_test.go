package lexer

import (
	"errors"
	"io"
	"strings"
	"testing"
)

type countingReader struct {
	r     io.Reader
	reads int
}

func (c *countingReader) Read(p []byte) (int, error) {
	c.reads++
	return c.r.Read(p)
}

func TestCursorPeekIsIdempotent(t *testing.T) {
	c := NewCursor(New(strings.NewReader("a + b")))

	first, err := c.Peek()
	if err != nil {
		t.Fatalf("Peek error: %v", err)
	}
	for i := 0; i < 5; i++ {
		again, err := c.Peek()
		if err != nil || again != first {
			t.Fatalf("Peek #%d = %v, %v; want %v", i, again, err, first)
		}
	}

	c.Advance()
	tok, _ := c.Peek()
	if !tok.Is(Add) {
		t.Fatalf("after Advance got %v, want +", tok)
	}
	if line, col := c.Pos(); line != 1 || col != 3 {
		t.Errorf("Pos = %d:%d, want 1:3", line, col)
	}
}

func TestCursorDoesNotReadAheadWhileLocked(t *testing.T) {
	cr := &countingReader{r: strings.NewReader("x y z")}
	c := NewCursor(New(cr, WithBufferSize(4)))
	c.Peek()
	reads := cr.reads
	for i := 0; i < 10; i++ {
		c.Peek()
	}
	if cr.reads != reads {
		t.Errorf("Peek triggered %d extra reads", cr.reads-reads)
	}
}

func TestCursorNextAndEOF(t *testing.T) {
	c := NewCursor(New(strings.NewReader("x")))
	tok, err := c.Next()
	if err != nil || tok.Lexeme != "x" {
		t.Fatalf("Next = %v, %v", tok, err)
	}
	if _, err := c.Peek(); err != io.EOF {
		t.Fatalf("Peek at end = %v, want io.EOF", err)
	}
	c.Advance()
	if _, err := c.Next(); err != io.EOF {
		t.Fatalf("Next at end = %v, want io.EOF", err)
	}
}

func TestCursorErrorIsStickyUntilAdvance(t *testing.T) {
	c := NewCursor(New(strings.NewReader("'\\q\nok")))
	_, err1 := c.Peek()
	_, err2 := c.Peek()
	var lexErr *LexError
	if !errors.As(err1, &lexErr) || err1 != err2 {
		t.Fatalf("Peek errors = %v, %v; want the same *LexError", err1, err2)
	}
	c.Advance()
	// The rest of the bad literal is skipped up to the line break.
	if tok, err := c.Next(); err != nil || tok.Kind != LineBreak {
		t.Fatalf("after error = %v, %v; want line break", tok, err)
	}
	if tok, err := c.Next(); err != nil || tok.Lexeme != "ok" {
		t.Errorf("Next = %v, %v; want ok", tok, err)
	}
}
