// Copyright 2016 The Gini Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

// Package witness provides satisfying assignments which record what was
// looked at.
//
// An Assignment wraps a backend model.  Every evaluation marks the
// declarations and subterms it touched, so that callers can later ask
// which parts of the model were never inspected (Unaccessed).  Failed
// evaluations leave the marks as they were, and Atomically extends this
// to a sequence of evaluations.
package witness

import (
	"errors"
	"fmt"
	"iter"
	"math/big"

	"github.com/benbjohnson/immutable"

	"github.com/go-air/oracle/inter"
	"github.com/go-air/oracle/num"
	"github.com/go-air/oracle/term"
)

// Consistency tells whether the backend vouched for a model.
type Consistency int

const (
	// Consistent models come from a sat answer.
	Consistent Consistency = iota
	// Inconsistent models come from an undetermined answer.
	Inconsistent
)

func (c Consistency) String() string {
	if c == Consistent {
		return "consistent"
	}
	return "inconsistent"
}

var (
	// ErrNoValue is returned when the model gives a term no value.
	ErrNoValue = errors.New("no value in model")
	// ErrUndecodable is returned when a value does not decode to the
	// requested kind.
	ErrUndecodable = errors.New("value cannot be decoded")
)

// EvalError reports a failed evaluation of Term.
type EvalError struct {
	Term *term.Term
	Err  error
}

func (e *EvalError) Error() string {
	return fmt.Sprintf("evaluating %s: %s", e.Term, e.Err)
}

func (e *EvalError) Unwrap() error {
	return e.Err
}

type unit struct{}

// Assignment is an instrumented model.  It is not safe for concurrent
// use.
type Assignment struct {
	m     inter.Model
	c     Consistency
	names *immutable.Map[string, unit]
	ids   *immutable.Map[uint32, unit]

	visits int
}

// New wraps m.
func New(m inter.Model, c Consistency) *Assignment {
	a := &Assignment{m: m, c: c}
	a.ResetAccessed()
	return a
}

// Model returns the wrapped model.
func (a *Assignment) Model() inter.Model {
	return a.m
}

// Consistency returns whether the backend vouched for the model.
func (a *Assignment) Consistency() Consistency {
	return a.c
}

// ResetAccessed forgets all marks.
func (a *Assignment) ResetAccessed() {
	a.names = immutable.NewMap[string, unit](nil)
	a.ids = immutable.NewMap[uint32, unit](nil)
}

// Accessed returns whether d was visited.
func (a *Assignment) Accessed(d *term.Decl) bool {
	_, ok := a.names.Get(d.Name)
	return ok
}

// Unaccessed returns the declarations of the model which no evaluation
// visited, in model order.  The sequence reflects the marks at the time
// it is iterated.
func (a *Assignment) Unaccessed() iter.Seq[*term.Decl] {
	return func(yield func(*term.Decl) bool) {
		for _, d := range a.m.Decls() {
			if a.Accessed(d) {
				continue
			}
			if !yield(d) {
				return
			}
		}
	}
}

// Atomically runs f.  If f returns an error, all marks made while f ran
// are undone and the error is returned.
func (a *Assignment) Atomically(f func() error) error {
	names, ids := a.names, a.ids
	if e := f(); e != nil {
		a.names, a.ids = names, ids
		return e
	}
	return nil
}

// Eval evaluates t in the model, marking it on success.
func (a *Assignment) Eval(t *term.Term, completion bool) (inter.Value, bool) {
	v, ok := a.m.Eval(t, completion)
	if ok {
		a.mark(t)
	}
	return v, ok
}

// EvalBool evaluates the boolean t with model completion.
func (a *Assignment) EvalBool(t *term.Term) (bool, error) {
	var res bool
	e := a.eval(t, func(v inter.Value) (e error) {
		res, e = num.Bool(v)
		return
	})
	return res, e
}

// EvalInt evaluates the integer t with model completion.
func (a *Assignment) EvalInt(t *term.Term) (*big.Int, error) {
	var res *big.Int
	e := a.eval(t, func(v inter.Value) (e error) {
		res, e = num.Int(v)
		return
	})
	return res, e
}

// EvalRat evaluates the numeric t exactly, with model completion.
func (a *Assignment) EvalRat(t *term.Term) (*big.Rat, error) {
	var res *big.Rat
	e := a.eval(t, func(v inter.Value) (e error) {
		res, e = num.Rat(v)
		return
	})
	return res, e
}

func (a *Assignment) eval(t *term.Term, decode func(inter.Value) error) error {
	return a.Atomically(func() error {
		a.mark(t)
		v, ok := a.m.Eval(t, true)
		if !ok {
			return &EvalError{Term: t, Err: ErrNoValue}
		}
		if e := decode(v); e != nil {
			return &EvalError{Term: t, Err: fmt.Errorf("%w: %w", ErrUndecodable, e)}
		}
		return nil
	})
}

func (a *Assignment) mark(t *term.Term) {
	if _, ok := a.ids.Get(t.ID()); ok {
		return
	}
	a.ids = a.ids.Set(t.ID(), unit{})
	a.visit(t)
}

func (a *Assignment) visit(t *term.Term) {
	a.visits++
	if d := t.Decl(); d != nil {
		a.names = a.names.Set(d.Name, unit{})
	}
	for _, c := range t.Args() {
		if _, ok := a.ids.Get(c.ID()); ok {
			continue
		}
		a.ids = a.ids.Set(c.ID(), unit{})
		a.visit(c)
	}
}

// String renders the model.
func (a *Assignment) String() string {
	return a.m.String()
}
