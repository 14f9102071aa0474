// Package diag collects compiler diagnostics and renders them with a caret
// under the offending column.
package diag

import (
	"errors"
	"fmt"
	"io"
	"strings"
)

// DefaultMaxErrors is the number of errors after which a run gives up.
const DefaultMaxErrors = 50

// ErrTooManyErrors is returned by List.Add once the error cap is reached.
var ErrTooManyErrors = errors.New("too many errors")

type Severity int

const (
	Warning Severity = iota
	Error
	Fatal
)

func (s Severity) String() string {
	switch s {
	case Warning:
		return "warning"
	case Error:
		return "error"
	case Fatal:
		return "fatal"
	}
	return fmt.Sprintf("Severity(%d)", int(s))
}

// Diagnostic is one positioned message. Line and Col are 1-based; zero means
// the message is not tied to a position in File.
type Diagnostic struct {
	Severity Severity
	File     string
	Line     int
	Col      int
	Msg      string
}

func (d Diagnostic) Error() string {
	var b strings.Builder
	if d.File != "" {
		b.WriteString(d.File)
		b.WriteString(":")
	}
	if d.Line > 0 {
		fmt.Fprintf(&b, "%d:%d:", d.Line, d.Col)
	}
	if b.Len() > 0 {
		b.WriteString(" ")
	}
	fmt.Fprintf(&b, "%s: %s", d.Severity, d.Msg)
	return b.String()
}

// List accumulates diagnostics in the order they are reported.
type List struct {
	items  []Diagnostic
	max    int
	errors int
	capped bool
}

// NewList returns a list that stops after max errors. A max below one
// selects DefaultMaxErrors.
func NewList(max int) *List {
	if max < 1 {
		max = DefaultMaxErrors
	}
	return &List{max: max}
}

// Add appends d. Once the list holds max errors a trailing Fatal "too many
// errors" is appended and ErrTooManyErrors is returned, both for that call
// and for every later one, which appends nothing.
func (l *List) Add(d Diagnostic) error {
	if l.capped {
		return ErrTooManyErrors
	}
	l.items = append(l.items, d)
	if d.Severity != Error {
		return nil
	}
	l.errors++
	if l.errors >= l.max {
		l.capped = true
		l.items = append(l.items, Diagnostic{Severity: Fatal, File: d.File, Msg: ErrTooManyErrors.Error()})
		return ErrTooManyErrors
	}
	return nil
}

func (l *List) Warnf(file string, line, col int, format string, args ...any) error {
	return l.Add(Diagnostic{Severity: Warning, File: file, Line: line, Col: col, Msg: fmt.Sprintf(format, args...)})
}

func (l *List) Errorf(file string, line, col int, format string, args ...any) error {
	return l.Add(Diagnostic{Severity: Error, File: file, Line: line, Col: col, Msg: fmt.Sprintf(format, args...)})
}

func (l *List) Fatalf(file string, line, col int, format string, args ...any) error {
	return l.Add(Diagnostic{Severity: Fatal, File: file, Line: line, Col: col, Msg: fmt.Sprintf(format, args...)})
}

// Items returns the diagnostics in report order.
func (l *List) Items() []Diagnostic { return l.items }

func (l *List) Len() int { return len(l.items) }

// Count returns the number of diagnostics with severity s.
func (l *List) Count(s Severity) int {
	n := 0
	for _, d := range l.items {
		if d.Severity == s {
			n++
		}
	}
	return n
}

// Failed reports whether any Error or Fatal was recorded.
func (l *List) Failed() bool {
	for _, d := range l.items {
		if d.Severity != Warning {
			return true
		}
	}
	return false
}

// Capped reports whether the error cap was reached.
func (l *List) Capped() bool { return l.capped }

// Render writes every diagnostic in list to w. When sources holds the text
// of a diagnostic's file, the offending line follows with a caret under the
// column.
func Render(w io.Writer, list *List, sources map[string]string) error {
	for _, d := range list.Items() {
		if _, err := fmt.Fprintln(w, d.Error()); err != nil {
			return err
		}
		src, ok := sources[d.File]
		if !ok || d.Line < 1 {
			continue
		}
		if _, err := io.WriteString(w, snippet(src, d.Line, d.Col)); err != nil {
			return err
		}
	}
	return nil
}

// snippet returns the numbered source line and a caret line.
func snippet(src string, line, col int) string {
	lines := strings.Split(src, "\n")
	if line > len(lines) {
		return ""
	}
	text := strings.TrimRight(lines[line-1], "\r")
	pad := col - 1
	if pad < 0 {
		pad = 0
	}
	if pad > len(text) {
		pad = len(text)
	}
	// Keep tabs so the caret lines up with the source as displayed.
	var indent strings.Builder
	for _, c := range []byte(text[:pad]) {
		if c == '\t' {
			indent.WriteByte('\t')
		} else {
			indent.WriteByte(' ')
		}
	}
	return fmt.Sprintf("%4d | %s\n     | %s^\n", line, text, indent.String())
}
