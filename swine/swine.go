// Copyright 2016 The Gini Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

// Package swine provides a session backed by the SwInE solver for
// nonlinear integer arithmetic with exponentials.
//
// SwInE is not incremental: each check renders all assertions of the
// open scopes, together with the assumptions, to an SMT-LIB file and
// runs the executable on it.  Top-level commands SwInE cannot handle
// are filtered out first; see Filter.  SwInE reports no models, so a
// satisfiable check yields an outcome without model.
package swine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/go-air/oracle/internal/proc"
	"github.com/go-air/oracle/inter"
	"github.com/go-air/oracle/term"
)

// DefaultPath is the executable looked up on PATH when none is given.
const DefaultPath = "swine"

// DefaultDrop is the filter used when none is given: SwInE declares exp
// itself.
var DefaultDrop = []string{"declare-fun exp"}

// Session implements inter.Session.
type Session struct {
	// Log receives a record of every run at debug level.
	Log *slog.Logger

	path    string
	drop    []string
	runner  proc.Runner
	frames  [][]*term.Term
	timeout time.Duration
	reason  inter.ReasonUnknown
}

// New creates a session running path (DefaultPath if empty) through
// runner (local processes if nil).  Top-level commands containing any of
// drop (DefaultDrop if empty) are filtered out of the rendered problems,
// as are quantified ones.
func New(path string, runner proc.Runner, drop ...string) *Session {
	if path == "" {
		path = DefaultPath
	}
	if runner == nil {
		runner = &proc.Exec{}
	}
	if len(drop) == 0 {
		drop = DefaultDrop
	}
	return &Session{
		path:   path,
		drop:   drop,
		runner: runner,
		frames: [][]*term.Term{nil}}
}

func (s *Session) Push() {
	s.frames = append(s.frames, nil)
}

func (s *Session) Pop() {
	n := len(s.frames) - 1
	if n == 0 {
		panic("swine: pop at scope 0")
	}
	s.frames = s.frames[:n]
}

func (s *Session) Assert(f *term.Term) {
	n := len(s.frames) - 1
	s.frames[n] = append(s.frames[n], f)
}

// Script renders the filtered problem for the assertions and as.
func (s *Session) Script(as []*term.Term) (string, error) {
	var all []*term.Term
	for _, fr := range s.frames {
		all = append(all, fr...)
	}
	all = append(all, as...)
	var sb strings.Builder
	if e := term.WriteScript(&sb, all); e != nil {
		return "", e
	}
	sb.WriteString("(check-sat)\n")
	return Filter(sb.String(), s.drop...), nil
}

// Check runs the solver on the assertions and as.  Failure to launch
// the solver is an error; a solver exiting with an error status is not.
func (s *Session) Check(as []*term.Term) (inter.Outcome, error) {
	s.reason = inter.ReasonUnknown{}
	src, e := s.Script(as)
	if e != nil {
		return inter.Outcome{}, e
	}
	f, e := os.CreateTemp("", "oracle-*.smt2")
	if e != nil {
		return inter.Outcome{}, fmt.Errorf("swine: %w", e)
	}
	defer os.Remove(f.Name())
	if _, e := f.WriteString(src); e != nil {
		f.Close()
		return inter.Outcome{}, fmt.Errorf("swine: writing %s: %w", f.Name(), e)
	}
	if e := f.Close(); e != nil {
		return inter.Outcome{}, fmt.Errorf("swine: %w", e)
	}

	ctx := context.Background()
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}
	res, e := s.runner.Run(ctx, s.path, f.Name())
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		s.reason = inter.ReasonUnknown{Code: inter.Timeout}
		return inter.Outcome{Res: inter.Unknown, Reason: s.reason}, nil
	}
	if e != nil {
		return inter.Outcome{}, fmt.Errorf("swine: %w", e)
	}
	o := inter.Outcome{Res: Classify(string(res.Stdout))}
	s.log().Debug("swine run",
		slog.String("file", f.Name()),
		slog.Int("exit", res.ExitCode),
		slog.Int("result", o.Res),
		slog.Duration("dur", res.Dur))
	if o.Res == inter.Unknown {
		s.reason = inter.ReasonUnknown{Code: inter.Other, Text: "unknown"}
		o.Reason = s.reason
	}
	return o, nil
}

func (s *Session) log() *slog.Logger {
	if s.Log == nil {
		return slog.Default()
	}
	return s.Log
}

// UnsatCore is always empty: the solver reports no cores.
func (s *Session) UnsatCore() []*term.Term {
	return nil
}

func (s *Session) ReasonUnknown() inter.ReasonUnknown {
	return s.reason
}

// SetTimeout bounds the run time of the solver; 0 means no bound.
func (s *Session) SetTimeout(d time.Duration) {
	s.timeout = d
}

func (s *Session) Close() error {
	return nil
}

// Classify maps solver output to a result: output containing unsat is
// unsatisfiable, otherwise output containing sat is satisfiable, and
// anything else is undetermined.
func Classify(stdout string) int {
	switch {
	case strings.Contains(stdout, "unsat"):
		return inter.Unsat
	case strings.Contains(stdout, "sat"):
		return inter.Sat
	}
	return inter.Unknown
}

// Filter splits src into its top-level parenthesized commands and keeps
// those which contain neither "forall" nor any of drop, one per line.
// Text outside commands is discarded.
func Filter(src string, drop ...string) string {
	var sb strings.Builder
	depth, start := 0, -1
	for i := 0; i < len(src); i++ {
		switch src[i] {
		case '(':
			if depth == 0 {
				start = i
			}
			depth++
		case ')':
			if depth == 0 {
				continue
			}
			depth--
			if depth == 0 {
				cmd := src[start : i+1]
				if keep(cmd, drop) {
					sb.WriteString(cmd)
					sb.WriteByte('\n')
				}
			}
		}
	}
	return sb.String()
}

func keep(cmd string, drop []string) bool {
	if strings.Contains(cmd, "forall") {
		return false
	}
	for _, d := range drop {
		if strings.Contains(cmd, d) {
			return false
		}
	}
	return true
}
