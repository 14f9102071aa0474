package lexer

import (
	"errors"
	"io"
)

// DefaultBufferSize is the size of the read-ahead window used when no
// WithBufferSize option is given.
const DefaultBufferSize = 4096

// minBufferSize keeps room for the longest look-ahead the scanner needs
// (a 4-byte UTF-8 sequence).
const minBufferSize = 4

// source is a fixed-size read-ahead window over an io.Reader. It refills
// synchronously whenever the scanner looks past the bytes it holds, which can
// happen in the middle of a token.
type source struct {
	r    io.Reader
	buf  []byte
	pos  int // next unread byte
	end  int // one past the last valid byte
	eof  bool
	err  error // first non-EOF read error
	line int
	col  int
}

func newSource(r io.Reader, size int) *source {
	if size < minBufferSize {
		size = minBufferSize
	}
	return &source{r: r, buf: make([]byte, size), line: 1, col: 1}
}

// fill makes at least n unread bytes available unless the reader is drained.
// Unread bytes are moved to the front of the window before reading more.
func (s *source) fill(n int) {
	for s.end-s.pos < n && !s.eof {
		if s.pos > 0 {
			copy(s.buf, s.buf[s.pos:s.end])
			s.end -= s.pos
			s.pos = 0
		}
		m, err := s.r.Read(s.buf[s.end:])
		s.end += m
		if err != nil {
			s.eof = true
			if !errors.Is(err, io.EOF) {
				s.err = err
			}
		}
	}
}

// peekAt returns the byte i positions past the cursor.
func (s *source) peekAt(i int) (byte, bool) {
	if s.end-s.pos <= i {
		s.fill(i + 1)
		if s.end-s.pos <= i {
			return 0, false
		}
	}
	return s.buf[s.pos+i], true
}

func (s *source) peek() (byte, bool) {
	return s.peekAt(0)
}

// advance consumes one byte and keeps line/column current. A "\r\n" pair is
// counted as a single line break when the "\n" is consumed.
func (s *source) advance() byte {
	b, ok := s.peek()
	if !ok {
		return 0
	}
	s.pos++
	switch b {
	case '\n':
		s.line++
		s.col = 1
	case '\r':
		if next, ok := s.peek(); ok && next == '\n' {
			s.col++
		} else {
			s.line++
			s.col = 1
		}
	default:
		s.col++
	}
	return b
}
