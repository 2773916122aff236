// Copyright 2016 The Gini Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

package witness

import (
	"errors"
	"math/big"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-air/oracle/interp"
	"github.com/go-air/oracle/num"
	"github.com/go-air/oracle/term"
)

func names(a *Assignment) []string {
	var res []string
	for d := range a.Unaccessed() {
		res = append(res, d.Name)
	}
	return res
}

func TestDedupVisits(t *testing.T) {
	b := term.NewBuilder()
	x := b.IntConst("x")
	m := interp.New()
	m.Set(x.Decl(), num.Int64Lit(1))
	s := x
	// 2^16 references over 17 distinct terms
	for i := 0; i < 16; i++ {
		s = b.Add(s, s)
	}
	a := New(m, Consistent)
	v, e := a.EvalInt(s)
	require.NoError(t, e)
	assert.Equal(t, int64(1<<16), v.Int64())
	assert.LessOrEqual(t, a.visits, 17)

	n := a.visits
	_, e = a.EvalInt(s)
	require.NoError(t, e)
	assert.Equal(t, n, a.visits)
}

func TestRationalExact(t *testing.T) {
	b := term.NewBuilder()
	x := b.RealConst("x")
	m := interp.New()
	m.Set(x.Decl(), num.RatLit(big.NewRat(1, 3), term.SortReal))
	a := New(m, Consistent)
	r, e := a.EvalRat(x)
	require.NoError(t, e)
	assert.Equal(t, "1/3", r.RatString())
	assert.True(t, a.Accessed(x.Decl()))
}

func TestAtomicRollback(t *testing.T) {
	b := term.NewBuilder()
	x, y := b.IntConst("x"), b.RealConst("y")
	p := b.Bool("p")
	m := interp.New()
	m.Set(x.Decl(), num.Int64Lit(3))
	m.Set(y.Decl(), num.RatLit(big.NewRat(0, 1), term.SortReal))
	m.Set(p.Decl(), num.BoolLit(true))
	a := New(m, Consistent)

	_, e := a.EvalBool(p)
	require.NoError(t, e)
	before := names(a)
	assert.Equal(t, []string{"x", "y"}, before)

	// a failing sequence leaves no marks
	e = a.Atomically(func() error {
		if _, e := a.EvalInt(x); e != nil {
			return e
		}
		_, e := a.EvalBool(x)
		return e
	})
	require.Error(t, e)
	assert.True(t, errors.Is(e, ErrUndecodable))
	assert.Equal(t, before, names(a))

	// division by zero has no value
	_, e = a.EvalRat(b.Div(b.Int(1), y))
	var ee *EvalError
	require.True(t, errors.As(e, &ee))
	assert.True(t, errors.Is(e, ErrNoValue))
	assert.Equal(t, before, names(a))

	_, e = a.EvalInt(x)
	require.NoError(t, e)
	assert.Equal(t, []string{"y"}, names(a))

	a.ResetAccessed()
	assert.Equal(t, []string{"x", "y", "p"}, names(a))
}

func TestFunctionMarks(t *testing.T) {
	b := term.NewBuilder()
	f, e := b.Declare("f", []term.Sort{term.SortInt}, term.SortInt)
	require.NoError(t, e)
	k := b.IntConst("k")
	v := b.IntConst("v")
	m := interp.New()
	m.Define(f, []*term.Decl{v.Decl()}, b.Add(b.App(v.Decl()), b.Int(1)))
	m.Set(k.Decl(), num.Int64Lit(4))
	a := New(m, Consistent)
	assert.Equal(t, []string{"f", "k"}, names(a))

	r, e := a.EvalInt(b.App(f, b.Int(1)))
	require.NoError(t, e)
	assert.Equal(t, int64(2), r.Int64())
	assert.Equal(t, []string{"k"}, names(a))

	val, ok := a.Eval(k, false)
	require.True(t, ok)
	assert.Equal(t, "4", val.String())
	assert.Empty(t, names(a))
	assert.True(t, slices.Equal([]string{"f", "k"}, declNames(m.Decls())))
}

func declNames(ds []*term.Decl) []string {
	res := make([]string, len(ds))
	for i, d := range ds {
		res[i] = d.Name
	}
	return res
}

func TestUnaccessedStops(t *testing.T) {
	b := term.NewBuilder()
	m := interp.New()
	for _, n := range []string{"a", "b", "c"} {
		m.Set(b.Bool(n).Decl(), num.BoolLit(false))
	}
	a := New(m, Inconsistent)
	assert.Equal(t, Inconsistent, a.Consistency())
	for d := range a.Unaccessed() {
		assert.Equal(t, "a", d.Name)
		break
	}
}
