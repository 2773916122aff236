// Copyright 2016 The Gini Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

package smt

import (
	"errors"
	"io"
	"math/big"
	"os/exec"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-air/oracle/inter"
	"github.com/go-air/oracle/num"
	"github.com/go-air/oracle/sexp"
	"github.com/go-air/oracle/term"
)

// fakeSolver answers commands the way z3 does with :print-success.
type fakeSolver struct {
	mu      sync.Mutex
	cmds    []string
	answers []string // to check-sat commands
	model   string
	core    string
	reason  string
	done    chan struct{}
}

func (f *fakeSolver) serve(r io.Reader, w io.WriteCloser) {
	defer close(f.done)
	defer w.Close()
	rd := sexp.NewReader(r)
	for {
		x, e := rd.Read()
		if e != nil {
			return
		}
		f.mu.Lock()
		f.cmds = append(f.cmds, x.String())
		var resp string
		switch x.Head() {
		case "check-sat", "check-sat-assuming":
			resp = f.answers[0]
			f.answers = f.answers[1:]
		case "get-model":
			resp = f.model
		case "get-unsat-core":
			resp = f.core
		case "get-info":
			resp = f.reason
		case "exit":
			f.mu.Unlock()
			return
		default:
			resp = "success"
		}
		f.mu.Unlock()
		io.WriteString(w, resp+"\n")
	}
}

func (f *fakeSolver) commands() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.cmds...)
}

func fake(t *testing.T, b *term.Builder, f *fakeSolver) *Session {
	cr, cw := io.Pipe()
	rr, rw := io.Pipe()
	f.done = make(chan struct{})
	go f.serve(cr, rw)
	s, e := NewSession(b, rr, cw)
	require.NoError(t, e)
	return s
}

func TestProtocol(t *testing.T) {
	b := term.NewBuilder()
	x := b.RealConst("x")
	n := b.IntConst("n")
	f := &fakeSolver{
		answers: []string{"sat", "unsat", "unknown"},
		model: `(
  (define-fun x () Real (/ 1.0 3.0))
  (define-fun n () Int (- 123456789012345678901))
  (define-fun oracle!a1 () Bool true)
)`,
		core:   "(oracle!a2)",
		reason: `(:reason-unknown "timeout")`}
	s := fake(t, b, f)

	s.Assert(b.Gt(x, b.Int(0)))
	s.Push()
	s.Assert(b.Lt(n, b.Int(0)))
	o, e := s.Check(nil)
	require.NoError(t, e)
	require.Equal(t, inter.Sat, o.Res)
	v, ok := o.Model.Eval(x, false)
	require.True(t, ok)
	r, e := num.Rat(v)
	require.NoError(t, e)
	assert.Equal(t, 0, r.Cmp(big.NewRat(1, 3)))
	v, ok = o.Model.Eval(n, false)
	require.True(t, ok)
	i, e := num.Int(v)
	require.NoError(t, e)
	assert.Equal(t, "-123456789012345678901", i.String())

	s.Pop()
	p := b.Bool("p")
	a := b.Lt(x, b.Int(0))
	o, e = s.Check([]*term.Term{p, a})
	require.NoError(t, e)
	assert.Equal(t, inter.Unsat, o.Res)
	assert.Equal(t, []*term.Term{a}, s.UnsatCore())

	s.SetTimeout(10 * time.Millisecond)
	s.Push()
	s.Assert(b.Lt(n, b.Int(0)))
	o, e = s.Check(nil)
	require.NoError(t, e)
	assert.Equal(t, inter.Unknown, o.Res)
	assert.Equal(t, inter.Timeout, o.Reason.Code)
	assert.Equal(t, inter.Timeout, s.ReasonUnknown().Code)
	require.NoError(t, s.Close())
	<-f.done

	assert.Equal(t, []string{
		"(set-option :print-success true)",
		"(set-option :produce-models true)",
		"(set-option :produce-unsat-cores true)",
		"(declare-fun x () Real)",
		"(assert (> x 0.0))",
		"(push 1)",
		"(declare-fun n () Int)",
		"(assert (< n 0))",
		"(check-sat)",
		"(get-model)",
		"(pop 1)",
		"(declare-fun p () Bool)",
		"(push 1)",
		"(declare-fun oracle!a1 () Bool)",
		"(assert (= oracle!a1 p))",
		"(declare-fun oracle!a2 () Bool)",
		"(assert (= oracle!a2 (< x 0.0)))",
		"(check-sat-assuming (oracle!a1 oracle!a2))",
		"(get-unsat-core)",
		"(pop 1)",
		"(push 1)",
		"(declare-fun n () Int)",
		"(assert (< n 0))",
		"(set-option :timeout 10)",
		"(check-sat)",
		"(get-info :reason-unknown)",
		"(exit)",
	}, f.commands())
}

func TestSolverError(t *testing.T) {
	b := term.NewBuilder()
	cr, cw := io.Pipe()
	rr, rw := io.Pipe()
	go func() {
		rd := sexp.NewReader(cr)
		rd.Read()
		io.WriteString(rw, `(error "unknown option")`+"\n")
		rw.Close()
	}()
	_, e := NewSession(b, rr, cw)
	require.Error(t, e)
	assert.True(t, errors.Is(e, ErrSolver))
}

func TestSolverDiesMidSession(t *testing.T) {
	b := term.NewBuilder()
	cr, cw := io.Pipe()
	rr, rw := io.Pipe()
	go func() {
		rd := sexp.NewReader(cr)
		for i := 0; i < 3; i++ {
			rd.Read()
			io.WriteString(rw, "success\n")
		}
		rw.Close()
		for {
			if _, e := rd.Read(); e != nil {
				return
			}
		}
	}()
	s, e := NewSession(b, rr, cw)
	require.NoError(t, e)
	defer cw.Close()

	s.Push()
	require.ErrorIs(t, s.Err(), io.ErrUnexpectedEOF)
	s.Push()
	s.Assert(b.Bool("p"))
	assert.NotPanics(t, func() {
		s.Pop()
		s.Pop()
	})
	_, e = s.Check(nil)
	assert.ErrorIs(t, e, io.ErrUnexpectedEOF)
	assert.Panics(t, func() { s.Pop() })
	assert.NoError(t, s.Close())
}

func TestZ3(t *testing.T) {
	if _, e := exec.LookPath(DefaultPath); e != nil {
		t.Skip("z3 not installed")
	}
	b := term.NewBuilder()
	s, e := Start(b, "")
	require.NoError(t, e)
	defer s.Close()
	x := b.RealConst("x")
	s.Assert(b.Eq(b.Mul(b.Int(3), x), b.Int(1)))
	o, e := s.Check(nil)
	require.NoError(t, e)
	require.Equal(t, inter.Sat, o.Res)
	v, ok := o.Model.Eval(x, true)
	require.True(t, ok)
	r, e := num.Rat(v)
	require.NoError(t, e)
	assert.Equal(t, "1/3", r.RatString())

	o, e = s.Check([]*term.Term{b.Gt(x, b.Int(1))})
	require.NoError(t, e)
	assert.Equal(t, inter.Unsat, o.Res)
	assert.Len(t, s.UnsatCore(), 1)
}
