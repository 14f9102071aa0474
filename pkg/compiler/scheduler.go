package compiler

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/cplus-project/cplus-origin-sub000/pkg/ast"
	"github.com/cplus-project/cplus-origin-sub000/pkg/diag"
	"github.com/cplus-project/cplus-origin-sub000/pkg/lexer"
	"github.com/cplus-project/cplus-origin-sub000/pkg/parser"
	"github.com/cplus-project/cplus-origin-sub000/pkg/symtab"
	"github.com/cplus-project/cplus-origin-sub000/pkg/unit"
)

type State int

const (
	Idle State = iota
	AwaitingUnit
	PreprocessingDependencies
	Compiling
	Done
)

var stateNames = [...]string{
	Idle:                      "idle",
	AwaitingUnit:              "awaiting-unit",
	PreprocessingDependencies: "preprocessing-dependencies",
	Compiling:                 "compiling",
	Done:                      "done",
}

func (s State) String() string {
	if s >= 0 && int(s) < len(stateNames) {
		return stateNames[s]
	}
	return fmt.Sprintf("State(%d)", int(s))
}

type Option func(*Scheduler)

// WithLogger sends the scheduling trace to l.
func WithLogger(l *log.Logger) Option {
	return func(s *Scheduler) { s.log = l }
}

// WithMaxErrors sets the number of errors after which the run aborts.
func WithMaxErrors(n int) Option {
	return func(s *Scheduler) { s.maxErrors = n }
}

// WithRoot sets the project root that include paths fall back to. It
// defaults to the entry directory, or the directory holding the entry file.
func WithRoot(dir string) Option {
	return func(s *Scheduler) { s.root = dir }
}

// dependency is one include edge of a unit.
type dependency struct {
	id   string
	file string
	pos  ast.Pos
}

// job carries a unit through the scheduler.
type job struct {
	unit    *unit.Unit
	scanned bool
	deps    []dependency
}

// Scheduler orders the compilation of a unit and everything it includes so
// that every unit is compiled after its dependencies. Units that import each
// other in a cycle are compiled in discovery order, and names they cannot
// resolve yet are retried once the rest of the cycle is compiled.
type Scheduler struct {
	log       *log.Logger
	maxErrors int
	root      string

	state    State
	queue    *Queue
	cache    *Cache
	delay    *delayResolver
	universe *symtab.Table
	jobs     map[string]*job
	order    []string
	diags    *diag.List
	aborted  bool
}

func NewScheduler(opts ...Option) *Scheduler {
	s := &Scheduler{
		log:       log.New(io.Discard, "", 0),
		maxErrors: diag.DefaultMaxErrors,
		cache:     NewCache(),
		delay:     newDelayResolver(),
		universe:  symtab.Universe(),
		jobs:      make(map[string]*job),
	}
	s.queue = NewQueue(s.cache)
	for _, opt := range opts {
		opt(s)
	}
	s.diags = diag.NewList(s.maxErrors)
	return s
}

// Compile compiles the unit at entryPath and every unit it depends on and
// returns the diagnostics of the run.
func Compile(entryPath string, opts ...Option) *diag.List {
	return NewScheduler(opts...).Run(entryPath)
}

func (s *Scheduler) State() State { return s.state }

// Order returns the identities of the compiled units in completion order.
func (s *Scheduler) Order() []string { return s.order }

// Diagnostics returns the diagnostics reported so far.
func (s *Scheduler) Diagnostics() *diag.List { return s.diags }

// Table returns the compiled symbol table of the unit id.
func (s *Scheduler) Table(id string) (*symtab.Table, bool) {
	e, ok := s.cache.Lookup(id)
	if !ok || !e.Resolved() {
		return nil, false
	}
	return e.Table, true
}

func (s *Scheduler) setState(st State) {
	if s.state != st {
		s.log.Printf("state %s -> %s", s.state, st)
	}
	s.state = st
}

// Run drives the state machine until the queue drains or the run aborts.
func (s *Scheduler) Run(entryPath string) *diag.List {
	if s.state != Idle {
		s.diags.Fatalf(entryPath, 0, 0, "scheduler already used")
		return s.diags
	}
	entry, err := unit.Load(entryPath)
	if err != nil {
		s.fatal(entryPath, ast.Pos{}, "cannot load unit: %v", err)
		s.setState(Done)
		return s.diags
	}
	if s.root == "" {
		s.root = entry.Dir()
	}
	s.cache.Touch(entry)
	s.queue.Enqueue(entry)
	s.log.Printf("entry %s %s (root %s)", entry.Kind, entry.Path, s.root)

	for s.queue.Len() > 0 && !s.aborted {
		s.setState(AwaitingUnit)
		u := s.queue.NextPending()
		j := s.job(u)

		s.setState(PreprocessingDependencies)
		waiting := s.preprocess(j)
		if s.aborted || waiting {
			continue
		}

		s.setState(Compiling)
		s.compile(j)
	}

	if s.aborted {
		s.abort()
	} else {
		s.flushDeferred()
	}
	s.setState(Done)
	return s.diags
}

func (s *Scheduler) job(u *unit.Unit) *job {
	j, ok := s.jobs[u.ID()]
	if !ok {
		j = &job{unit: u}
		s.jobs[u.ID()] = j
	}
	return j
}

// preprocess runs the dependency pre-pass of j and reports whether any
// dependency was queued ahead of it.
func (s *Scheduler) preprocess(j *job) (waiting bool) {
	id := j.unit.ID()
	if !j.scanned {
		s.scanDependencies(j)
		if s.aborted {
			return false
		}
		j.scanned = true
	}
	s.queue.MarkDiscovered(id)

	for _, dep := range j.deps {
		e, ok := s.cache.Lookup(dep.id)
		switch {
		case ok && e.Resolved():
		case ok && s.queue.Discovered(dep.id):
			s.log.Printf("cycle: %s imports %s, which is still in progress", id, dep.id)
			s.delay.Block(id, dep.id)
		case ok:
			s.log.Printf("move %s ahead of %s", dep.id, id)
			s.queue.Enqueue(e.Unit)
			waiting = true
		default:
			u, err := unit.Load(dep.id)
			if err != nil {
				s.fatal(dep.file, dep.pos, "cannot load unit: %v", err)
				return false
			}
			s.log.Printf("discovered %s %s from %s", u.Kind, u.Path, id)
			s.cache.Touch(u)
			s.queue.Enqueue(u)
			waiting = true
		}
	}
	return waiting
}

// scanDependencies collects the include targets of every member file of j
// and the nested units of a directory unit.
func (s *Scheduler) scanDependencies(j *job) {
	seen := map[string]bool{}
	add := func(d dependency) {
		if d.id == j.unit.ID() {
			s.warnf(d.file, d.pos, "%s %s includes itself", j.unit.Kind, j.unit.Name)
			return
		}
		if !seen[d.id] {
			seen[d.id] = true
			j.deps = append(j.deps, d)
		}
	}

	for _, path := range j.unit.Files {
		f, err := os.Open(path)
		if err != nil {
			s.fatal(path, ast.Pos{}, "%v", err)
			return
		}
		// Syntax errors in the header are reported by the full parse.
		h, _ := parser.ScanHeader(f)
		f.Close()

		for _, inc := range h.Paths() {
			target, err := unit.ResolveInclude(path, inc.Path, s.root)
			if err != nil {
				s.fatal(path, inc.Pos, "cannot find include %q", inc.Path)
				return
			}
			add(dependency{id: target, file: path, pos: inc.Pos})
		}
	}
	for _, dir := range j.unit.Imports {
		add(dependency{id: dir, file: j.unit.Path})
	}
}

// compile parses and resolves every member file of j, stores the table in
// the cache and dequeues the unit.
func (s *Scheduler) compile(j *job) {
	id := j.unit.ID()
	var files []*ast.File
	for _, path := range j.unit.Files {
		f := s.parse(path)
		if s.aborted {
			return
		}
		files = append(files, f)
	}

	r := newResolver(s, j)
	table := r.resolveUnit(files)
	if s.aborted {
		return
	}
	if err := s.cache.Resolve(id, table); err != nil {
		s.fatal(j.unit.Path, ast.Pos{}, "%v", err)
		return
	}
	s.queue.Remove(id)
	s.order = append(s.order, id)
	s.log.Printf("compiled %s %s: %d symbols", j.unit.Kind, id, table.Len())

	for _, w := range s.delay.Complete(id) {
		s.retry(w)
		if s.aborted {
			return
		}
	}
}

// parse parses one source file, reporting syntax errors as diagnostics.
func (s *Scheduler) parse(path string) *ast.File {
	f, err := os.Open(path)
	if err != nil {
		s.fatal(path, ast.Pos{}, "%v", err)
		return nil
	}
	defer f.Close()

	tree, errs := parser.ParseFile(path, f)
	for _, err := range errs {
		var perr *parser.ParseError
		var lerr *lexer.LexError
		switch {
		case errors.As(err, &perr):
			s.errorf(path, ast.Pos{Line: perr.Line, Col: perr.Col}, "%s", perr.Msg)
		case errors.As(err, &lerr):
			s.errorf(path, ast.Pos{Line: lerr.Line, Col: lerr.Col}, "%s", lerr.Msg)
		default:
			s.fatal(path, ast.Pos{}, "%v", err)
		}
		if s.aborted {
			return nil
		}
	}
	return tree
}

// retry looks up the deferred names of the unit waiter again. Names still
// missing are deferred again while waiter has uncompiled cyclic imports and
// reported otherwise.
func (s *Scheduler) retry(waiter string) {
	j, ok := s.jobs[waiter]
	if !ok {
		return
	}
	e, ok := s.cache.Lookup(waiter)
	if !ok || !e.Resolved() {
		return
	}
	r := &resolver{s: s, job: j, table: e.Table}
	for _, ref := range s.delay.Take(waiter) {
		r.file = ref.File
		r.resolveName(ref.Name, ref.Pos, ref.WantType)
		if s.aborted {
			return
		}
	}
}

// flushDeferred reports names that stayed unresolved after every unit was
// compiled.
func (s *Scheduler) flushDeferred() {
	for _, id := range s.delay.Pending() {
		for _, ref := range s.delay.Take(id) {
			s.errorf(ref.File, ref.Pos, "undefined: %s", ref.Name)
			if s.aborted {
				return
			}
		}
	}
}

// abort drops every unit of the run.
func (s *Scheduler) abort() {
	s.log.Printf("abort: %d units pending", s.queue.Len())
	s.queue.Clear()
	s.cache.Clear()
	s.delay.Clear()
	s.jobs = make(map[string]*job)
}

func (s *Scheduler) errorf(file string, pos ast.Pos, format string, args ...any) {
	if err := s.diags.Errorf(file, pos.Line, pos.Col, format, args...); err != nil {
		s.aborted = true
	}
}

func (s *Scheduler) warnf(file string, pos ast.Pos, format string, args ...any) {
	s.diags.Warnf(file, pos.Line, pos.Col, format, args...)
}

func (s *Scheduler) fatal(file string, pos ast.Pos, format string, args ...any) {
	s.diags.Fatalf(file, pos.Line, pos.Col, format, args...)
	s.aborted = true
}
