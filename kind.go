// Copyright 2016 The Gini Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

package oracle

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/go-air/oracle/inter"
	"github.com/go-air/oracle/sat"
	"github.com/go-air/oracle/smt"
	"github.com/go-air/oracle/swine"
	"github.com/go-air/oracle/term"
)

// Kind identifies the decision procedure behind an oracle.
type Kind int

const (
	// Sat is the in-process gini solver; it decides the propositional
	// fragment only.
	Sat Kind = iota
	// Z3 is an external SMT-LIB 2 solver process.
	Z3
	// Swine is the external SwInE executable for integer arithmetic
	// with exponentials.  It produces no models.
	Swine
)

var kindNames = [...]string{Sat: "sat", Z3: "z3", Swine: "swine"}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return kindNames[k]
}

// ParseKind parses the name of a kind as returned by Kind.String.
func ParseKind(s string) (Kind, error) {
	for i, n := range kindNames {
		if n == s {
			return Kind(i), nil
		}
	}
	return 0, fmt.Errorf("unknown backend %q (want sat, z3 or swine)", s)
}

// Opener opens a session of kind k over the terms of b.  It replaces the
// built-in backends.
type Opener func(b *term.Builder, k Kind) (inter.Session, error)

// Option configures an oracle.
type Option func(*options)

type options struct {
	log       *slog.Logger
	timeout   time.Duration
	z3Path    string
	z3Args    []string
	swinePath string
	swineDrop []string
	opener    Opener
}

// WithLogger sets the logger of the oracle and its backend.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.log = l }
}

// WithTimeout bounds every check; 0 means no bound.
func WithTimeout(d time.Duration) Option {
	return func(o *options) { o.timeout = d }
}

// WithZ3 sets the solver executable of Z3 oracles.  An empty path means
// z3 -in -smt2.
func WithZ3(path string, args ...string) Option {
	return func(o *options) {
		o.z3Path = path
		o.z3Args = args
	}
}

// WithSwine sets the executable of Swine oracles and the commands
// filtered from their problems.
func WithSwine(path string, drop ...string) Option {
	return func(o *options) {
		o.swinePath = path
		o.swineDrop = drop
	}
}

// WithOpener makes the oracle open its session with op.
func WithOpener(op Opener) Option {
	return func(o *options) { o.opener = op }
}

func (o *options) logger() *slog.Logger {
	if o.log == nil {
		return slog.Default()
	}
	return o.log
}

// open dispatches to the backend of kind k.
func (o *options) open(b *term.Builder, k Kind) (inter.Session, error) {
	if o.opener != nil {
		return o.opener(b, k)
	}
	switch k {
	case Sat:
		return sat.New(), nil
	case Z3:
		s, e := smt.Start(b, o.z3Path, o.z3Args...)
		if e != nil {
			return nil, e
		}
		s.Log = o.logger()
		return s, nil
	case Swine:
		s := swine.New(o.swinePath, nil, o.swineDrop...)
		s.Log = o.logger()
		return s, nil
	}
	return nil, fmt.Errorf("unknown backend %s", k)
}
