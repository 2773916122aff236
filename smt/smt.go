// Copyright 2016 The Gini Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

// Package smt provides an incremental session with an SMT-LIB 2 solver
// process, such as z3 -in.
//
// The session speaks the :print-success protocol: every command is
// answered by success or an error before the next one is sent.
// Declarations are sent lazily, the first time an assertion mentions
// them, and are forgotten with the scope they were sent in.
// Assumptions are bound to fresh proxy constants inside a temporary
// scope and checked with check-sat-assuming, so that unsat cores can be
// mapped back to assumption terms.
package smt

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/go-air/oracle/internal/proc"
	"github.com/go-air/oracle/inter"
	"github.com/go-air/oracle/interp"
	"github.com/go-air/oracle/sexp"
	"github.com/go-air/oracle/term"
)

// DefaultPath and DefaultArgs start z3 reading SMT-LIB 2 from stdin.
var (
	DefaultPath = "z3"
	DefaultArgs = []string{"-in", "-smt2"}
)

// ErrSolver wraps error responses of the solver.
var ErrSolver = errors.New("solver error")

// Session implements inter.Session.
type Session struct {
	// Log receives every command at debug level.
	Log *slog.Logger

	b *term.Builder
	p *proc.Proc
	w *bufio.Writer
	r *sexp.Reader

	declared map[*term.Decl]bool
	frames   [][]*term.Decl // declarations sent per scope
	nProxy   int

	timeout   time.Duration
	sentLimit time.Duration
	core      []*term.Term
	reason    inter.ReasonUnknown
	err       error
}

// Start launches the solver at path with args and opens a session.
// An empty path means DefaultPath with DefaultArgs.
func Start(b *term.Builder, path string, args ...string) (*Session, error) {
	if path == "" {
		path, args = DefaultPath, DefaultArgs
	}
	p, e := proc.Start(path, args...)
	if e != nil {
		return nil, e
	}
	s, e := NewSession(b, p.Stdout, p.Stdin)
	if e != nil {
		if se := p.Stderr(); se != "" {
			e = fmt.Errorf("%w (stderr: %s)", e, strings.TrimSpace(se))
		}
		p.Close(time.Second)
		return nil, e
	}
	s.p = p
	return s, nil
}

// NewSession opens a session with a solver reading commands from w and
// answering on r.
func NewSession(b *term.Builder, r io.Reader, w io.Writer) (*Session, error) {
	s := &Session{
		b:        b,
		w:        bufio.NewWriter(w),
		r:        sexp.NewReader(r),
		declared: make(map[*term.Decl]bool),
		frames:   [][]*term.Decl{nil}}
	for _, c := range []string{
		"(set-option :print-success true)",
		"(set-option :produce-models true)",
		"(set-option :produce-unsat-cores true)",
	} {
		if e := s.do(c); e != nil {
			return nil, e
		}
	}
	return s, nil
}

func (s *Session) log() *slog.Logger {
	if s.Log == nil {
		return slog.Default()
	}
	return s.Log
}

// Err returns the first failure of the session, after which every
// operation fails.
func (s *Session) Err() error {
	return s.err
}

func (s *Session) send(cmd string) error {
	if s.err != nil {
		return s.err
	}
	s.log().Debug("smt send", slog.String("cmd", cmd))
	s.w.WriteString(cmd)
	s.w.WriteByte('\n')
	if e := s.w.Flush(); e != nil {
		s.err = fmt.Errorf("smt: writing %q: %w", cmd, e)
		return s.err
	}
	return nil
}

func (s *Session) read() (sexp.Sexp, error) {
	if s.err != nil {
		return sexp.Sexp{}, s.err
	}
	x, e := s.r.Read()
	if e != nil {
		if e == io.EOF {
			e = io.ErrUnexpectedEOF
		}
		s.err = fmt.Errorf("smt: reading response: %w", e)
		return x, s.err
	}
	if x.Head() == "error" {
		msg := x.String()
		if len(x.List) > 1 {
			msg = x.List[1].Unquote()
		}
		s.err = fmt.Errorf("%w: %s", ErrSolver, msg)
		return x, s.err
	}
	return x, nil
}

// do sends cmd and expects success.
func (s *Session) do(cmd string) error {
	if e := s.send(cmd); e != nil {
		return e
	}
	x, e := s.read()
	if e != nil {
		return e
	}
	if !x.Is("success") {
		s.err = fmt.Errorf("smt: %s: unexpected response %s", cmd, x)
		return s.err
	}
	return nil
}

// Push opens a scope.  The scope is counted even if the solver failed,
// so that pushes and pops stay matched; the failure is reported by the
// next Check.
func (s *Session) Push() {
	s.do("(push 1)")
	s.frames = append(s.frames, nil)
}

// Pop closes the innermost scope, forgetting its declarations.
func (s *Session) Pop() {
	n := len(s.frames) - 1
	if n == 0 {
		panic("smt: pop at scope 0")
	}
	for _, d := range s.frames[n] {
		delete(s.declared, d)
	}
	s.frames = s.frames[:n]
	if s.err == nil {
		s.do("(pop 1)")
	}
}

func (s *Session) declare(ts ...*term.Term) error {
	for _, d := range term.FreeDecls(ts...) {
		if s.declared[d] {
			continue
		}
		if e := s.do(d.Signature()); e != nil {
			return e
		}
		s.declared[d] = true
		n := len(s.frames) - 1
		s.frames[n] = append(s.frames[n], d)
	}
	return nil
}

// Assert adds f to the innermost scope.  Failures are reported by the
// next Check.
func (s *Session) Assert(f *term.Term) {
	if s.declare(f) != nil {
		return
	}
	s.do("(assert " + f.String() + ")")
}

// Check decides the assertions together with as.
func (s *Session) Check(as []*term.Term) (inter.Outcome, error) {
	s.core = nil
	s.reason = inter.ReasonUnknown{}
	if s.timeout != s.sentLimit {
		ms := strconv.FormatInt(s.timeout.Milliseconds(), 10)
		if s.timeout <= 0 {
			ms = "4294967295"
		}
		if e := s.do("(set-option :timeout " + ms + ")"); e != nil {
			return inter.Outcome{}, e
		}
		s.sentLimit = s.timeout
	}
	if len(as) == 0 {
		return s.check("(check-sat)", nil)
	}
	if e := s.declare(as...); e != nil {
		return inter.Outcome{}, e
	}
	if e := s.do("(push 1)"); e != nil {
		return inter.Outcome{}, e
	}
	proxies := make(map[string]*term.Term, len(as))
	names := make([]string, len(as))
	for i, a := range as {
		s.nProxy++
		name := "oracle!a" + strconv.Itoa(s.nProxy)
		names[i] = name
		proxies[name] = a
		if e := s.do("(declare-fun " + name + " () Bool)"); e != nil {
			return inter.Outcome{}, e
		}
		if e := s.do("(assert (= " + name + " " + a.String() + "))"); e != nil {
			return inter.Outcome{}, e
		}
	}
	o, e := s.check("(check-sat-assuming ("+strings.Join(names, " ")+"))", proxies)
	if e != nil {
		return o, e
	}
	if e := s.do("(pop 1)"); e != nil {
		return inter.Outcome{}, e
	}
	return o, nil
}

func (s *Session) check(cmd string, proxies map[string]*term.Term) (inter.Outcome, error) {
	if e := s.send(cmd); e != nil {
		return inter.Outcome{}, e
	}
	x, e := s.read()
	if e != nil {
		return inter.Outcome{}, e
	}
	switch {
	case x.Is("sat"):
		m, e := s.model()
		if e != nil {
			return inter.Outcome{}, e
		}
		return inter.Outcome{Res: inter.Sat, Model: m}, nil
	case x.Is("unsat"):
		if proxies != nil {
			if e := s.unsatCore(proxies); e != nil {
				return inter.Outcome{}, e
			}
		}
		return inter.Outcome{Res: inter.Unsat}, nil
	case x.Is("unknown"):
		r, e := s.reasonUnknown()
		if e != nil {
			return inter.Outcome{}, e
		}
		s.reason = r
		return inter.Outcome{Res: inter.Unknown, Reason: r}, nil
	}
	s.err = fmt.Errorf("smt: %s: unexpected response %s", cmd, x)
	return inter.Outcome{}, s.err
}

func (s *Session) model() (*interp.Model, error) {
	if e := s.send("(get-model)"); e != nil {
		return nil, e
	}
	x, e := s.read()
	if e != nil {
		return nil, e
	}
	m, e := interp.Parse(s.b, x)
	if e != nil {
		s.err = fmt.Errorf("smt: %w", e)
		return nil, s.err
	}
	return m, nil
}

func (s *Session) unsatCore(proxies map[string]*term.Term) error {
	if e := s.send("(get-unsat-core)"); e != nil {
		return e
	}
	x, e := s.read()
	if e != nil {
		return e
	}
	for _, n := range x.List {
		if a, ok := proxies[n.Atom]; ok && !n.IsList() {
			s.core = append(s.core, a)
		}
	}
	return nil
}

func (s *Session) reasonUnknown() (inter.ReasonUnknown, error) {
	if e := s.send("(get-info :reason-unknown)"); e != nil {
		return inter.ReasonUnknown{}, e
	}
	x, e := s.read()
	if e != nil {
		return inter.ReasonUnknown{}, e
	}
	// (:reason-unknown "timeout") or (:reason-unknown (incomplete quantifiers))
	if !x.IsList() || len(x.List) != 2 {
		return inter.ParseReasonUnknown(""), nil
	}
	v := x.List[1]
	if v.IsList() {
		return inter.ParseReasonUnknown(v.String()), nil
	}
	return inter.ParseReasonUnknown(v.Unquote()), nil
}

func (s *Session) UnsatCore() []*term.Term {
	return s.core
}

func (s *Session) ReasonUnknown() inter.ReasonUnknown {
	return s.reason
}

// SetTimeout bounds subsequent checks; it is sent with the next check.
func (s *Session) SetTimeout(d time.Duration) {
	s.timeout = d
}

// Close ends the session and waits for the solver to exit.
func (s *Session) Close() error {
	if s.err == nil {
		s.send("(exit)")
	}
	if s.p == nil {
		return nil
	}
	if e := s.p.Close(time.Second); e != nil && s.err == nil {
		return fmt.Errorf("smt: %w", e)
	}
	return nil
}
