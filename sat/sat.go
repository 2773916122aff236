// Copyright 2016 The Gini Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

// Package sat provides an in-process incremental session for the
// propositional fragment, backed by gini.
//
// Formulas are translated to an and-inverter circuit (logic.C) and added
// to the solver in conjunctive normal form incrementally, as they are
// asserted.  Scopes are implemented with activation literals: an
// assertion f at scope k > 0 is added as the clause (not act_k or f),
// and checks assume act_1..act_k.  Popping scope k permanently adds the
// unit clause (not act_k).
//
// Terms outside the propositional fragment (integers, reals, functions,
// quantifiers) are accepted by Assert but make Check undetermined with
// reason Unsupported.
package sat

import (
	"time"

	"github.com/go-air/gini"
	"github.com/go-air/gini/logic"
	"github.com/go-air/gini/z"

	"github.com/go-air/oracle/inter"
	"github.com/go-air/oracle/interp"
	"github.com/go-air/oracle/num"
	"github.com/go-air/oracle/term"
)

type frame struct {
	act         z.Lit
	unsupported []*term.Term
}

// Session implements inter.Session.
type Session struct {
	g *gini.Gini
	c *logic.C

	lits   map[*term.Term]z.Lit
	inputs []*term.Decl
	inLits map[*term.Decl]z.Lit
	marks  []bool // circuit nodes whose clauses are in g

	frames  []frame
	timeout time.Duration
	core    []*term.Term
	reason  inter.ReasonUnknown
}

// New creates a session at scope 0.
func New() *Session {
	s := &Session{
		g:      gini.New(),
		c:      logic.NewC(),
		lits:   make(map[*term.Term]z.Lit),
		inLits: make(map[*term.Decl]z.Lit),
		frames: []frame{{act: z.LitNull}}}
	s.g.Add(s.c.T)
	s.g.Add(0)
	return s
}

// Push opens a scope with a fresh activation literal.
func (s *Session) Push() {
	s.frames = append(s.frames, frame{act: s.input()})
}

// Pop closes the innermost scope, disabling its assertions forever.
func (s *Session) Pop() {
	n := len(s.frames) - 1
	if n == 0 {
		panic("sat: pop at scope 0")
	}
	s.g.Add(s.frames[n].act.Not())
	s.g.Add(0)
	s.frames = s.frames[:n]
}

// Level returns the number of open scopes.
func (s *Session) Level() int {
	return len(s.frames) - 1
}

// Assert adds f to the innermost scope.
func (s *Session) Assert(f *term.Term) {
	fr := &s.frames[len(s.frames)-1]
	m, ok := s.lit(f)
	if !ok {
		fr.unsupported = append(fr.unsupported, f)
		return
	}
	s.cnf(m)
	if fr.act != z.LitNull {
		s.g.Add(fr.act.Not())
	}
	s.g.Add(m)
	s.g.Add(0)
}

// Check solves under the open scopes and the assumptions as.
func (s *Session) Check(as []*term.Term) (inter.Outcome, error) {
	s.core = nil
	s.reason = inter.ReasonUnknown{}
	for _, fr := range s.frames {
		if len(fr.unsupported) != 0 {
			return s.unknown(inter.ReasonUnknown{Code: inter.Unsupported, Text: fr.unsupported[0].String()}), nil
		}
	}
	byLit := make(map[z.Lit][]*term.Term, len(as))
	asLits := make([]z.Lit, 0, len(as)+len(s.frames))
	for _, a := range as {
		m, ok := s.lit(a)
		if !ok {
			return s.unknown(inter.ReasonUnknown{Code: inter.Unsupported, Text: a.String()}), nil
		}
		s.cnf(m)
		byLit[m] = append(byLit[m], a)
		asLits = append(asLits, m)
	}
	for _, fr := range s.frames[1:] {
		asLits = append(asLits, fr.act)
	}
	s.g.Assume(asLits...)
	var res int
	if s.timeout > 0 {
		res = s.g.GoSolve().Try(s.timeout)
	} else {
		res = s.g.Solve()
	}
	switch res {
	case 1:
		return inter.Outcome{Res: inter.Sat, Model: s.model()}, nil
	case -1:
		for _, m := range s.g.Why(nil) {
			s.core = append(s.core, byLit[m]...)
		}
		return inter.Outcome{Res: inter.Unsat}, nil
	}
	return s.unknown(inter.ReasonUnknown{Code: inter.Timeout}), nil
}

func (s *Session) unknown(r inter.ReasonUnknown) inter.Outcome {
	s.reason = r
	return inter.Outcome{Res: inter.Unknown, Reason: r}
}

func (s *Session) model() *interp.Model {
	m := interp.New()
	for _, d := range s.inputs {
		m.Set(d, num.BoolLit(s.g.Value(s.inLits[d])))
	}
	return m
}

// UnsatCore returns the assumptions of the last Check which the solver
// found sufficient for unsatisfiability.
func (s *Session) UnsatCore() []*term.Term {
	return s.core
}

func (s *Session) ReasonUnknown() inter.ReasonUnknown {
	return s.reason
}

// SetTimeout bounds subsequent checks; 0 removes the bound.
func (s *Session) SetTimeout(d time.Duration) {
	s.timeout = d
}

func (s *Session) Close() error {
	return nil
}

// lit translates f to a circuit literal.  It returns false if f is not
// propositional.
func (s *Session) lit(f *term.Term) (z.Lit, bool) {
	if m, ok := s.lits[f]; ok {
		return m, true
	}
	if f.Sort() != term.SortBool {
		return z.LitNull, false
	}
	c := s.c
	var res z.Lit
	args := f.Args()
	sub := func() ([]z.Lit, bool) {
		ms := make([]z.Lit, len(args))
		for i, a := range args {
			m, ok := s.lit(a)
			if !ok {
				return nil, false
			}
			ms[i] = m
		}
		return ms, true
	}
	switch f.Op() {
	case term.OpTrue:
		return c.T, true
	case term.OpFalse:
		return c.F, true
	case term.OpApp:
		if !f.IsConst() {
			return z.LitNull, false
		}
		d := f.Decl()
		res = s.input()
		s.inputs = append(s.inputs, d)
		s.inLits[d] = res
	case term.OpNot, term.OpAnd, term.OpOr, term.OpImplies, term.OpXor, term.OpIte:
		ms, ok := sub()
		if !ok {
			return z.LitNull, false
		}
		switch f.Op() {
		case term.OpNot:
			res = ms[0].Not()
		case term.OpAnd:
			res = c.Ands(ms...)
		case term.OpOr:
			res = c.Ors(ms...)
		case term.OpImplies:
			res = c.Implies(ms[0], ms[1])
		case term.OpXor:
			res = c.Xor(ms[0], ms[1])
		default:
			res = c.Choice(ms[0], ms[1], ms[2])
		}
	case term.OpEq, term.OpDistinct:
		if args[0].Sort() != term.SortBool {
			return z.LitNull, false
		}
		ms, ok := sub()
		if !ok {
			return z.LitNull, false
		}
		if f.Op() == term.OpEq {
			res = c.T
			for _, m := range ms[1:] {
				res = c.And(res, c.Xor(ms[0], m).Not())
			}
		} else if len(ms) == 2 {
			res = c.Xor(ms[0], ms[1])
		} else {
			// three booleans cannot be pairwise distinct
			res = c.F
		}
	default:
		return z.LitNull, false
	}
	s.lits[f] = res
	return res, true
}

// input creates a circuit input known to the solver.
func (s *Session) input() z.Lit {
	m := s.c.Lit()
	// a satisfied clause, so g allocates the variable
	s.g.Add(m)
	s.g.Add(s.c.T)
	s.g.Add(0)
	s.grow()
	return m
}

func (s *Session) grow() {
	for len(s.marks) < s.c.Len() {
		s.marks = append(s.marks, false)
	}
}

// cnf adds the clauses of the part of the circuit under root which is
// not yet in the solver.
func (s *Session) cnf(root z.Lit) {
	s.grow()
	var vis func(m z.Lit)
	vis = func(m z.Lit) {
		v := m.Var()
		if s.marks[v] {
			return
		}
		s.marks[v] = true
		a, b := s.c.Ins(m)
		if a == z.LitNull || a == s.c.T || a == s.c.F {
			return
		}
		vis(a)
		vis(b)
		addAnd(s.g, v.Pos(), a, b)
	}
	vis(root)
}

func addAnd(g *gini.Gini, m, a, b z.Lit) {
	g.Add(m.Not())
	g.Add(a)
	g.Add(0)
	g.Add(m.Not())
	g.Add(b)
	g.Add(0)
	g.Add(m)
	g.Add(a.Not())
	g.Add(b.Not())
	g.Add(0)
}
