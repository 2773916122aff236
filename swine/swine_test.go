// Copyright 2016 The Gini Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

package swine

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-air/oracle/internal/proc"
	"github.com/go-air/oracle/inter"
	"github.com/go-air/oracle/term"
)

func TestFilter(t *testing.T) {
	src := `(declare-fun exp (Int Int) Int)
(declare-fun x () Int)
(assert (forall ((y Int)) (> (exp 2 y) 0)))
(assert (> x 0))
junk
(check-sat)
`
	want := "(declare-fun x () Int)\n(assert (> x 0))\n(check-sat)\n"
	assert.Equal(t, want, Filter(src, DefaultDrop...))
	assert.Equal(t, "(a)\n", Filter("(a) (b x)", "x"))
	assert.Equal(t, "", Filter(")("))
}

func TestClassify(t *testing.T) {
	assert.Equal(t, inter.Unsat, Classify("unsat\n"))
	assert.Equal(t, inter.Sat, Classify("sat\n"))
	assert.Equal(t, inter.Unknown, Classify("unknown\n"))
	assert.Equal(t, inter.Unknown, Classify(""))
}

// recorder is a runner which records the problem it was given.
type recorder struct {
	script string
	out    string
	err    error
}

func (r *recorder) Run(ctx context.Context, name string, args ...string) (*proc.Result, error) {
	if r.err != nil {
		return nil, r.err
	}
	b, e := os.ReadFile(args[0])
	if e != nil {
		return nil, e
	}
	r.script = string(b)
	return &proc.Result{Stdout: []byte(r.out), ExitCode: 1}, nil
}

func TestCheckScopes(t *testing.T) {
	b := term.NewBuilder()
	x := b.IntConst("x")
	exp, e := b.Declare("exp", []term.Sort{term.SortInt, term.SortInt}, term.SortInt)
	require.NoError(t, e)
	r := &recorder{out: "unsat\n"}
	s := New("", r)
	s.Assert(b.Gt(b.App(exp, b.Int(2), x), b.Int(0)))
	s.Push()
	s.Assert(b.Lt(x, b.Int(0)))
	s.Pop()
	o, e := s.Check([]*term.Term{b.Eq(x, b.Int(3))})
	require.NoError(t, e)
	assert.Equal(t, inter.Unsat, o.Res)
	assert.Equal(t, "(declare-fun x () Int)\n(assert (> (exp 2 x) 0))\n(assert (= x 3))\n(check-sat)\n", r.script)

	r.out = "sat\n"
	o, e = s.Check(nil)
	require.NoError(t, e)
	assert.Equal(t, inter.Sat, o.Res)
	assert.Nil(t, o.Model)

	r.out = "(error \"oops\")\n"
	o, e = s.Check(nil)
	require.NoError(t, e)
	assert.Equal(t, inter.Unknown, o.Res)
	assert.Equal(t, "unknown", s.ReasonUnknown().String())
	assert.Panics(t, func() { s.Pop() })
}

func TestLaunchError(t *testing.T) {
	s := New("no-such-swine-binary-xyz", nil)
	_, e := s.Check(nil)
	require.Error(t, e)
	assert.True(t, errors.Is(e, proc.ErrNotInstalled))
}

func TestFakeExecutable(t *testing.T) {
	if _, e := exec.LookPath("sh"); e != nil {
		t.Skip("no sh")
	}
	dir := t.TempDir()
	bin := filepath.Join(dir, "swine")
	// answers unsat iff the problem mentions (< x 0)
	script := "#!/bin/sh\nif grep -q '(< x 0)' \"$1\"; then echo unsat; else echo sat; fi\n"
	require.NoError(t, os.WriteFile(bin, []byte(script), 0o755))
	t.Setenv("PATH", dir+string(os.PathListSeparator)+os.Getenv("PATH"))

	b := term.NewBuilder()
	x := b.IntConst("x")
	s := New("", nil)
	s.Assert(b.Lt(x, b.Int(0)))
	o, e := s.Check(nil)
	require.NoError(t, e)
	assert.Equal(t, inter.Unsat, o.Res)

	s = New(bin, nil)
	o, e = s.Check(nil)
	require.NoError(t, e)
	assert.Equal(t, inter.Sat, o.Res)
}
