// Copyright 2016 The Gini Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

package problem

import (
	"errors"
	"fmt"
	"io"
	"math/big"
	"strconv"
	"strings"

	"github.com/go-air/oracle"
	"github.com/go-air/oracle/inter"
	"github.com/go-air/oracle/term"
	"github.com/go-air/oracle/witness"
)

// Status summarizes checks.  Larger is worse.
type Status int

const (
	Pass Status = iota
	Undecided
	Fail
)

func (s Status) String() string {
	switch s {
	case Pass:
		return "pass"
	case Undecided:
		return "undecided"
	}
	return "fail"
}

func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Binding is a rendered value.
type Binding struct {
	Name  string `yaml:"name"`
	Value string `yaml:"value,omitempty"`
}

// Result is the result of one check step.
type Result struct {
	Step       int       `yaml:"step"`
	Action     string    `yaml:"action"`
	Level      int       `yaml:"level"`
	Verdict    string    `yaml:"verdict"`
	Expect     string    `yaml:"expect,omitempty"`
	Status     Status    `yaml:"status"`
	Shown      []Binding `yaml:"shown,omitempty"`
	Unaccessed []Binding `yaml:"unaccessed,omitempty"`
	Core       []string  `yaml:"core,omitempty"`
}

// Report lists the results of the checks of a problem.
type Report struct {
	Name    string   `yaml:"name,omitempty"`
	Backend string   `yaml:"backend"`
	Results []Result `yaml:"results"`
}

// Status is the worst status of the results, Pass if there are none.
func (r *Report) Status() Status {
	s := Pass
	for i := range r.Results {
		s = max(s, r.Results[i].Status)
	}
	return s
}

// Run runs p on a fresh oracle of the given kind, unless p names its own
// backend.  A timeout in p overrides one in opts.  Errors are malformed
// terms and backend failures; failed checks are reported.
func Run(p *Problem, kind oracle.Kind, opts ...oracle.Option) (*Report, error) {
	b := term.NewBuilder()
	if e := p.declare(b); e != nil {
		return nil, e
	}
	if p.Backend != "" {
		k, e := oracle.ParseKind(p.Backend)
		if e != nil {
			return nil, e
		}
		kind = k
	}
	if p.Timeout > 0 {
		opts = append(opts[:len(opts):len(opts)], oracle.WithTimeout(p.Timeout))
	}
	o, e := oracle.New(b, kind, opts...)
	if e != nil {
		return nil, e
	}
	defer o.Close()
	r := &runner{b: b, o: o, rep: &Report{Name: p.Name, Backend: kind.String()}}
	for i := range p.Steps {
		if e := r.step(&p.Steps[i]); e != nil {
			return nil, fmt.Errorf("step %d: %w", i+1, e)
		}
		r.n++
	}
	return r.rep, nil
}

// Script writes the declarations and assertions in force at the end of
// p as SMT-LIB.  Checks are skipped.
func Script(p *Problem, w io.Writer) error {
	b := term.NewBuilder()
	if e := p.declare(b); e != nil {
		return e
	}
	o, e := oracle.New(b, oracle.Sat)
	if e != nil {
		return e
	}
	defer o.Close()
	r := &runner{b: b, o: o, rep: &Report{}}
	for i := range p.Steps {
		s := &p.Steps[i]
		if s.Check != nil || s.ExistsForall != nil {
			continue
		}
		if e := r.step(s); e != nil {
			return fmt.Errorf("step %d: %w", i+1, e)
		}
	}
	return o.WriteSmtlib(w)
}

type runner struct {
	b   *term.Builder
	o   *oracle.Oracle
	rep *Report
	n   int
}

func (r *runner) step(s *Step) error {
	switch {
	case s.Assume != "":
		t, e := r.formula(s.Assume)
		if e != nil {
			return e
		}
		r.o.AddAssumption(t)
	case s.Prove != "":
		t, e := r.formula(s.Prove)
		if e != nil {
			return e
		}
		r.o.AddProvable(t)
	case s.Push:
		r.o.Push()
	case s.Pop:
		if r.o.Level() == 0 {
			return errors.New("pop at level 0")
		}
		r.o.Pop()
	case s.Check != nil:
		return r.check(s.Check)
	case s.ExistsForall != nil:
		return r.existsForall(s.ExistsForall)
	}
	return nil
}

func (r *runner) formula(src string) (*term.Term, error) {
	t, e := r.b.Parse(src)
	if e != nil {
		return nil, e
	}
	if t.Sort() != term.SortBool {
		return nil, fmt.Errorf("%s has sort %s, want Bool", src, t.Sort())
	}
	return t, nil
}

func (r *runner) check(c *Check) error {
	var as []*term.Term
	for _, src := range c.Assuming {
		t, e := r.formula(src)
		if e != nil {
			return e
		}
		as = append(as, t)
	}
	v, e := r.o.CheckProofAssuming(as)
	if e != nil {
		return e
	}
	res := Result{
		Step:    r.n + 1,
		Action:  "check",
		Level:   r.o.Level(),
		Verdict: v.String(),
		Expect:  c.Expect}
	switch v.Kind {
	case oracle.Proof:
		res.Status = Pass
		if len(as) > 0 {
			for _, t := range r.o.UnsatCore() {
				res.Core = append(res.Core, t.String())
			}
		}
	case oracle.Counterexample:
		res.Status = Fail
		if e := r.describe(&res, v.Witness, c.Show); e != nil {
			return e
		}
	default:
		res.Status = Undecided
	}
	if c.Expect != "" {
		res.Status = expectation(c.Expect, strings.ToLower(v.Kind.String()))
	}
	r.rep.Results = append(r.rep.Results, res)
	return nil
}

func (r *runner) existsForall(ef *ExistsForall) error {
	var us []*term.Decl
	for _, name := range ef.Universal {
		d, ok := r.b.Lookup(name)
		if !ok {
			return fmt.Errorf("undeclared %s", name)
		}
		us = append(us, d)
	}
	d, e := r.o.ExistsForall(us)
	if e != nil {
		return e
	}
	defer d.Close()
	out, e := d.CheckSat()
	if e != nil {
		return e
	}
	res := Result{
		Step:   r.n + 1,
		Action: "exists_forall",
		Level:  r.o.Level(),
		Expect: ef.Expect,
		Status: Pass}
	got := ""
	switch out.Res {
	case inter.Sat:
		res.Verdict, got = "Sat", "sat"
		if out.Model != nil {
			if e := r.describe(&res, witness.New(out.Model, witness.Consistent), ef.Show); e != nil {
				return e
			}
		}
	case inter.Unsat:
		res.Verdict, got = "Unsat", "unsat"
	default:
		reason := out.Reason
		if reason.IsZero() {
			reason = d.ReasonUnknown()
		}
		res.Verdict, got = "Unknown (reason: "+reason.String()+")", "unknown"
		res.Status = Undecided
	}
	if ef.Expect != "" {
		res.Status = expectation(ef.Expect, got)
	}
	r.rep.Results = append(r.rep.Results, res)
	return nil
}

func expectation(want, got string) Status {
	if want == got {
		return Pass
	}
	return Fail
}

// describe renders the shown terms and then the constants the shown
// terms did not mention.
func (r *runner) describe(res *Result, w *witness.Assignment, show []string) error {
	w.ResetAccessed()
	for _, src := range show {
		t, e := r.b.Parse(src)
		if e != nil {
			return e
		}
		res.Shown = append(res.Shown, Binding{Name: src, Value: value(w, t)})
	}
	var rest []*term.Decl
	for d := range w.Unaccessed() {
		rest = append(rest, d)
	}
	for _, d := range rest {
		if d.Arity() > 0 {
			res.Unaccessed = append(res.Unaccessed, Binding{Name: d.Name})
			continue
		}
		res.Unaccessed = append(res.Unaccessed, Binding{Name: d.Name, Value: value(w, r.b.App(d))})
	}
	return nil
}

// value renders the value of t in w, exactly if it decodes and as the
// backend prints it otherwise.
func value(w *witness.Assignment, t *term.Term) string {
	var (
		s string
		e error
	)
	switch t.Sort() {
	case term.SortBool:
		var v bool
		if v, e = w.EvalBool(t); e == nil {
			s = strconv.FormatBool(v)
		}
	case term.SortInt:
		var v *big.Int
		if v, e = w.EvalInt(t); e == nil {
			s = v.String()
		}
	default:
		var v *big.Rat
		if v, e = w.EvalRat(t); e == nil {
			s = v.RatString()
		}
	}
	if e == nil {
		return s
	}
	if errors.Is(e, witness.ErrUndecodable) {
		if v, ok := w.Eval(t, true); ok {
			return v.String()
		}
	}
	return "?"
}
