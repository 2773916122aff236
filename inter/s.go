// Copyright 2016 The Gini Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

// Package inter holds the uniform contract between the oracle and the
// decision procedures it dispatches to.
package inter

import (
	"time"

	"github.com/go-air/oracle/term"
)

// Results of a satisfiability check.
//
//	1  If the problem is SAT
//	0  If the problem is undetermined
//	-1 If the problem is UNSAT
//
// These codes are used throughout the oracle.
const (
	Sat     = 1
	Unknown = 0
	Unsat   = -1
)

// Outcome is the normalized result of Session.Check.
//
// If Res is Sat, Model holds the satisfying assignment if the backend
// can produce one.  If Res is Unknown, Reason says why.
type Outcome struct {
	Res    int
	Model  Model
	Reason ReasonUnknown
}

// Value is a backend value: the result of evaluating a term in a model.
//
// The native accessors are bounded; a value which does not fit
// reports !ok and must be decoded from its String rendering.
type Value interface {
	Sort() term.Sort

	// Bool returns the value of a boolean.
	Bool() (v, ok bool)

	// Int64 returns the value of an integer if it fits in an int64.
	Int64() (v int64, ok bool)

	// Rat64 returns the numerator and denominator of a number if both
	// fit in an int64.
	Rat64() (num, den int64, ok bool)

	// String returns the SMT-LIB rendering of the value.
	String() string
}

// Model encapsulates a satisfying assignment.
type Model interface {
	// Eval evaluates t.  If completion is true, symbols the model does
	// not constrain are given some value.  ok is false if no value
	// could be produced.
	Eval(t *term.Term, completion bool) (v Value, ok bool)

	// Decls returns the declarations interpreted by the model, in a
	// stable order.
	Decls() []*term.Decl

	// String renders the model.
	String() string
}

// Scoped provides scoped assertions, like solver push/pop.
type Scoped interface {
	// Push opens a scope.
	Push()

	// Pop removes the innermost scope and everything asserted in it.
	// Pop of the outermost scope is undefined; callers guard against it.
	Pop()
}

// Session encapsulates an incremental decision procedure.
//
// A Session is owned by one caller and is not safe for concurrent use.
type Session interface {
	Scoped

	// Assert adds f to the current scope.  Assert does not fail: a backend
	// which cannot handle f reports it when checking.
	Assert(f *term.Term)

	// Check decides the satisfiability of all assertions together with
	// the extra assumptions, which are not retained.  Errors are reserved
	// for failures of the backend itself (I/O, process launch); an
	// undetermined answer is an Outcome with Res == Unknown.
	Check(assumptions []*term.Term) (Outcome, error)

	// UnsatCore returns a subset of the assumptions of the last Check
	// sufficient for unsatisfiability, if it was unsat.
	UnsatCore() []*term.Term

	// ReasonUnknown returns the reason of the last Unknown result.
	ReasonUnknown() ReasonUnknown

	// SetTimeout bounds the duration of subsequent checks.  0 means no
	// bound.
	SetTimeout(d time.Duration)

	// Close releases the backend.
	Close() error
}
