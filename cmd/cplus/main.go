package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"

	"github.com/cplus-project/cplus-origin-sub000/pkg/compiler"
	"github.com/cplus-project/cplus-origin-sub000/pkg/diag"
	"github.com/cplus-project/cplus-origin-sub000/pkg/lexer"
	"github.com/cplus-project/cplus-origin-sub000/pkg/parser"
)

const (
	appName     = "cplus"
	historyFile = ".cplus_history"
	promptMain  = "cplus> "
	promptCont  = "  ...> "
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	cmd := os.Args[1]
	switch cmd {
	case "compile":
		os.Exit(cmdCompile(os.Args[2:]))
	case "tokens":
		os.Exit(cmdTokens(os.Args[2:]))
	case "expr":
		os.Exit(cmdExpr(os.Args[2:]))
	case "repl":
		os.Exit(cmdRepl(os.Args[2:]))
	case "-h", "--help", "help":
		usage()
	default:
		fmt.Fprintf(os.Stderr, "%s: unknown command %q\n", appName, cmd)
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Printf(`Usage:
  %[1]s compile [-v] [-max-errors N] <path>   Compile a file, module or project.
  %[1]s tokens [-comments] <file>             Print the tokens of a file.
  %[1]s expr <text>                           Print the parse tree of an expression.
  %[1]s repl                                  Parse expressions interactively.
`, appName)
}

func cmdCompile(args []string) int {
	fs := flag.NewFlagSet("compile", flag.ContinueOnError)
	verbose := fs.Bool("v", false, "trace scheduling and print the compiled units")
	maxErrors := fs.Int("max-errors", diag.DefaultMaxErrors, "abort after this many errors")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 1 {
		fmt.Fprintf(os.Stderr, "usage: %s compile [-v] [-max-errors N] <path>\n", appName)
		return 2
	}

	opts := []compiler.Option{compiler.WithMaxErrors(*maxErrors)}
	if *verbose {
		opts = append(opts, compiler.WithLogger(log.New(os.Stderr, "sched: ", 0)))
	}
	s := compiler.NewScheduler(opts...)
	diags := s.Run(fs.Arg(0))

	if err := diag.Render(os.Stderr, diags, readSources(diags)); err != nil {
		fmt.Fprintln(os.Stderr, "write error:", err)
	}
	if *verbose {
		for _, id := range s.Order() {
			if tab, ok := s.Table(id); ok {
				fmt.Print(tab)
			}
		}
	}
	if diags.Failed() {
		return 1
	}
	fmt.Printf("compiled %d units\n", len(s.Order()))
	return 0
}

// readSources loads the text of every file a diagnostic points into.
func readSources(diags *diag.List) map[string]string {
	sources := make(map[string]string)
	for _, d := range diags.Items() {
		if d.Line == 0 || d.File == "" {
			continue
		}
		if _, ok := sources[d.File]; ok {
			continue
		}
		data, err := os.ReadFile(d.File)
		if err != nil {
			continue
		}
		sources[d.File] = string(data)
	}
	return sources
}

func cmdTokens(args []string) int {
	fs := flag.NewFlagSet("tokens", flag.ContinueOnError)
	comments := fs.Bool("comments", false, "include comment tokens")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 1 {
		fmt.Fprintf(os.Stderr, "usage: %s tokens [-comments] <file>\n", appName)
		return 2
	}

	path := fs.Arg(0)
	f, err := os.Open(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to read input file %q: %v\n", path, err)
		return 1
	}
	defer f.Close()

	var opts []lexer.Option
	if *comments {
		opts = append(opts, lexer.WithComments())
	}
	lx := lexer.New(f, opts...)
	n := 0
	for {
		tok, err := lx.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s:%v\n", path, err)
			return 1
		}
		fmt.Println(" ", tok)
		n++
	}
	fmt.Printf("Tokens (%d)\n", n)
	return 0
}

func cmdExpr(args []string) int {
	if len(args) == 0 {
		fmt.Fprintf(os.Stderr, "usage: %s expr <text>\n", appName)
		return 2
	}
	src := strings.Join(args, " ")
	x, err := parser.ParseExpr(src)
	if err != nil {
		fmt.Fprintln(os.Stderr, "parse error:", err)
		return 1
	}
	fmt.Println(x)
	return 0
}

func cmdRepl(_ []string) int {
	fmt.Println("cplus expression parser. Type :quit to exit.")

	home, _ := os.UserHomeDir()
	histPath := filepath.Join(home, historyFile)

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	if f, err := os.Open(histPath); err == nil {
		_, _ = ln.ReadHistory(f)
		_ = f.Close()
	}
	defer func() {
		if f, err := os.Create(histPath); err == nil {
			_, _ = ln.WriteHistory(f)
			_ = f.Close()
		}
	}()

	for {
		src, ok := readExpr(ln)
		if !ok {
			fmt.Println()
			return 0
		}
		src = strings.TrimSpace(src)
		switch src {
		case "":
			continue
		case ":quit":
			return 0
		}

		ln.AppendHistory(strings.ReplaceAll(src, "\n", " "))
		x, err := parser.ParseExpr(src)
		if err != nil {
			fmt.Fprintln(os.Stderr, "parse error:", err)
			continue
		}
		fmt.Println(x)
	}
}

// readExpr reads lines until they form a complete expression or a
// definite error. It reports false at end of input or on Ctrl-C.
func readExpr(ln *liner.State) (string, bool) {
	var b strings.Builder
	for {
		prompt := promptMain
		if b.Len() > 0 {
			prompt = promptCont
		}
		line, err := ln.Prompt(prompt)
		if err != nil {
			return "", false
		}
		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(line)

		src := b.String()
		if _, err := parser.ParseExpr(src); err != nil && incomplete(err) {
			continue
		}
		return src, true
	}
}

// incomplete reports whether err means more input could complete the
// expression.
func incomplete(err error) bool {
	var perr *parser.ParseError
	if !errors.As(err, &perr) {
		return false
	}
	return strings.HasPrefix(perr.Msg, "unclosed") || strings.HasPrefix(perr.Msg, "unterminated argument list")
}
