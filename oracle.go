// Copyright 2016 The Gini Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

// Package oracle provides a proof oracle: a scoped stack of assumptions
// and proof obligations over an incremental decision procedure.
//
// Assumptions are asserted as given.  Obligations (provables) are
// asserted negated, so that the assertions are unsatisfiable exactly
// when every obligation follows from the assumptions.  A check then
// yields a Proof, a Counterexample with a witness assignment, or Unknown
// with a reason.
//
// The oracle remembers the outermost scope level holding an obligation.
// Without obligations a check is a Proof outright; popping the scope of
// the outermost obligation forgets it.
//
// An Oracle is not safe for concurrent use.
package oracle

import (
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/go-air/oracle/inter"
	"github.com/go-air/oracle/term"
)

// Oracle is a proof oracle over a single backend session.
type Oracle struct {
	id     uuid.UUID
	b      *term.Builder
	kind   Kind
	opts   options
	s      inter.Session
	frames [][]*term.Term
	marker int // outermost level of an obligation, -1 if none
	log    *slog.Logger
}

// New creates an oracle at level 0 over the terms of b, backed by a
// session of the given kind.
func New(b *term.Builder, kind Kind, opts ...Option) (*Oracle, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	return open(b, kind, o)
}

func open(b *term.Builder, kind Kind, o options) (*Oracle, error) {
	s, e := o.open(b, kind)
	if e != nil {
		return nil, fmt.Errorf("oracle: opening %s backend: %w", kind, e)
	}
	if o.timeout > 0 {
		s.SetTimeout(o.timeout)
	}
	id := uuid.New()
	r := &Oracle{
		id:     id,
		b:      b,
		kind:   kind,
		opts:   o,
		s:      s,
		frames: [][]*term.Term{nil},
		marker: -1,
		log:    o.logger().With(slog.String("oracle", id.String()), slog.String("backend", kind.String()))}
	return r, nil
}

// ID identifies the oracle in logs.
func (o *Oracle) ID() uuid.UUID {
	return o.id
}

// Kind returns the backend kind.
func (o *Oracle) Kind() Kind {
	return o.kind
}

// Builder returns the builder of the oracle's terms.
func (o *Oracle) Builder() *term.Builder {
	return o.b
}

// Level returns the number of open scopes.
func (o *Oracle) Level() int {
	return len(o.frames) - 1
}

// Push opens a scope.
func (o *Oracle) Push() {
	o.s.Push()
	o.frames = append(o.frames, nil)
}

// Pop removes the innermost scope with its assumptions and obligations.
// Pop panics at level 0.
func (o *Oracle) Pop() {
	if o.Level() == 0 {
		panic("oracle: pop at level 0")
	}
	o.s.Pop()
	o.frames = o.frames[:len(o.frames)-1]
	if o.marker > o.Level() {
		o.marker = -1
	}
}

// AddAssumption asserts f in the current scope.
func (o *Oracle) AddAssumption(f *term.Term) {
	o.assert(f)
}

// AddProvable adds the obligation f to the current scope.
func (o *Oracle) AddProvable(f *term.Term) {
	o.assert(o.b.Not(f))
	if o.marker < 0 {
		o.marker = o.Level()
	}
}

func (o *Oracle) assert(f *term.Term) {
	n := len(o.frames) - 1
	o.frames[n] = append(o.frames[n], f)
	o.s.Assert(f)
}

// Assertions returns the current assertions, outermost scope first, with
// obligations in negated form.
func (o *Oracle) Assertions() []*term.Term {
	var res []*term.Term
	for _, fr := range o.frames {
		res = append(res, fr...)
	}
	return res
}

// WriteSmtlib writes the declarations and assertions of o as an SMT-LIB
// script.
func (o *Oracle) WriteSmtlib(w io.Writer) error {
	return term.WriteScript(w, o.Assertions())
}

// CheckProof checks whether the obligations follow from the assumptions.
func (o *Oracle) CheckProof() (*Verdict, error) {
	return o.CheckProofAssuming(nil)
}

// CheckProofAssuming is CheckProof with the extra assumptions as, which
// are not retained.  Errors are failures of the backend; an undecided
// check is an Unknown verdict.
func (o *Oracle) CheckProofAssuming(as []*term.Term) (*Verdict, error) {
	if o.marker < 0 {
		v := &Verdict{Kind: Proof}
		checksTotal.WithLabelValues(o.kind.String(), v.Kind.String()).Inc()
		o.log.Debug("check without obligations", slog.Int("level", o.Level()))
		return v, nil
	}
	start := time.Now()
	out, e := o.s.Check(as)
	dur := time.Since(start)
	checkDuration.WithLabelValues(o.kind.String()).Observe(dur.Seconds())
	if e != nil {
		o.log.Debug("check failed", slog.Int("level", o.Level()), slog.Any("error", e))
		return nil, fmt.Errorf("oracle: %s check: %w", o.kind, e)
	}
	v := verdict(out)
	checksTotal.WithLabelValues(o.kind.String(), v.Kind.String()).Inc()
	o.log.Debug("check",
		slog.Int("level", o.Level()),
		slog.Int("assumptions", len(as)),
		slog.String("verdict", v.String()),
		slog.Duration("elapsed", dur))
	return v, nil
}

// CheckSat decides the satisfiability of the current assertions,
// regardless of obligations.
func (o *Oracle) CheckSat() (inter.Outcome, error) {
	start := time.Now()
	out, e := o.s.Check(nil)
	dur := time.Since(start)
	checkDuration.WithLabelValues(o.kind.String()).Observe(dur.Seconds())
	if e != nil {
		return out, fmt.Errorf("oracle: %s check: %w", o.kind, e)
	}
	o.log.Debug("check sat",
		slog.Int("level", o.Level()),
		slog.Int("result", out.Res),
		slog.Duration("elapsed", dur))
	return out, nil
}

// ExistsForall returns a new oracle whose only assumption states that
// no assignment of universal satisfies the assertions of o:
//
//	(forall (universal) (not (and assertions...)))
//
// Checking it for satisfiability searches values of the remaining
// symbols for which the assertions of o fail for every universal
// assignment.  The new oracle shares the builder and options of o; a
// Swine oracle derives a Z3 one since SwInE rejects quantifiers.
func (o *Oracle) ExistsForall(universal []*term.Decl) (*Oracle, error) {
	body := o.b.Forall(universal, o.b.Not(o.b.And(o.Assertions()...)))
	kind := o.kind
	if kind == Swine {
		kind = Z3
	}
	r, e := open(o.b, kind, o.opts)
	if e != nil {
		return nil, e
	}
	r.AddAssumption(body)
	o.log.Debug("exists-forall", slog.String("derived", r.id.String()), slog.Int("universal", len(universal)))
	return r, nil
}

// UnsatCore returns the assumptions sufficient for the last proof, if
// the backend reports them.
func (o *Oracle) UnsatCore() []*term.Term {
	return o.s.UnsatCore()
}

// ReasonUnknown returns the reason of the last undecided check.
func (o *Oracle) ReasonUnknown() inter.ReasonUnknown {
	return o.s.ReasonUnknown()
}

// SetTimeout bounds subsequent checks of o and of oracles derived from
// it; 0 means no bound.
func (o *Oracle) SetTimeout(d time.Duration) {
	o.opts.timeout = d
	o.s.SetTimeout(d)
}

// Close releases the backend.
func (o *Oracle) Close() error {
	if e := o.s.Close(); e != nil {
		return fmt.Errorf("oracle: closing %s backend: %w", o.kind, e)
	}
	return nil
}
