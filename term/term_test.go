// Copyright 2016 The Gini Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

package term_test

import (
	"math/big"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-air/oracle/term"
)

func TestBuilderStrash(t *testing.T) {
	b := term.NewBuilder()
	N := 200
	ins := make([]*term.Term, 0, N)
	for i := 0; i < N; i++ {
		ins = append(ins, b.Bool("p"+strings.Repeat("x", i)))
	}
	gs := make([]*term.Term, N/2)
	for i := 0; i < N/2; i++ {
		gs[i] = b.And(ins[i], ins[N-1-i])
	}
	n := b.Len()
	for i := 0; i < N/2; i++ {
		g := b.And(ins[i], ins[N-1-i])
		assert.Same(t, gs[i], g)
		assert.Equal(t, gs[i].ID(), g.ID())
	}
	assert.Equal(t, n, b.Len(), "rebuilding must not create terms")
	assert.NotSame(t, b.And(ins[0], ins[1]), b.And(ins[1], ins[0]))
}

func TestBuilderUnits(t *testing.T) {
	b := term.NewBuilder()
	p := b.Bool("p")
	assert.Same(t, b.True(), b.And())
	assert.Same(t, b.False(), b.Or())
	assert.Same(t, p, b.And(p))
	assert.Same(t, b.Int(-3), b.Neg(b.Int(3)))
	assert.Same(t, b.Real(1, 3), b.Div(b.Int(1), b.Int(3)))
	assert.Equal(t, term.SortReal, b.Add(b.IntConst("i"), b.RealConst("r")).Sort())
}

func TestBuilderSortErrors(t *testing.T) {
	b := term.NewBuilder()
	x := b.IntConst("x")
	assert.Panics(t, func() { b.Not(x) })
	assert.Panics(t, func() { b.Add(b.Bool("p"), x) })
	assert.Panics(t, func() { b.Bool("x") })
	_, e := b.Declare("x", nil, term.SortReal)
	assert.Error(t, e)
	d, e := b.Declare("x", nil, term.SortInt)
	require.NoError(t, e)
	assert.Same(t, x.Decl(), d)
}

func TestPrint(t *testing.T) {
	b := term.NewBuilder()
	x := b.RealConst("x")
	f, e := b.Declare("my f", []term.Sort{term.SortReal}, term.SortReal)
	require.NoError(t, e)
	cases := []struct {
		t    *term.Term
		want string
	}{
		{b.Int(5), "5"},
		{b.Int(-5), "(- 5)"},
		{b.Real(5, 1), "5.0"},
		{b.Real(10, 3), "(/ 10.0 3.0)"},
		{b.Real(-1, 3), "(- (/ 1.0 3.0))"},
		{b.Implies(b.Gt(x, b.Int(0)), b.Gt(b.Mul(x, x), b.Int(0))), "(=> (> x 0.0) (> (* x x) 0.0))"},
		{b.App(f, x), "(|my f| x)"},
		{b.Forall([]*term.Decl{x.Decl()}, b.Ge(x, x)), "(forall ((x Real)) (>= x x))"},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, c.t.String())
	}
}

func TestFormatNumBig(t *testing.T) {
	v, ok := new(big.Rat).SetString("100000000000000000000/3")
	require.True(t, ok)
	assert.Equal(t, "(/ 100000000000000000000.0 3.0)", term.FormatNum(v, term.SortReal))
}

func TestParseRoundTrip(t *testing.T) {
	b := term.NewBuilder()
	b.Bool("p")
	b.Bool("q")
	b.IntConst("n")
	b.RealConst("x")
	_, e := b.Declare("exp", []term.Sort{term.SortReal}, term.SortReal)
	require.NoError(t, e)
	srcs := []string{
		"(and p (not q))",
		"(=> p q)",
		"(= (+ n 1) (* 2 n))",
		"(ite p n (- n))",
		"(< (exp x) (/ 1.0 3.0))",
		"(forall ((y Int)) (>= (* y y) 0))",
		"(distinct n 1 2)",
		"(= (mod n 2) (div n 3))",
	}
	for _, src := range srcs {
		tm, e := b.Parse(src)
		require.NoError(t, e, src)
		assert.Equal(t, src, tm.String())
		again, e := b.Parse(tm.String())
		require.NoError(t, e)
		assert.Same(t, tm, again)
	}
}

func TestParseSugar(t *testing.T) {
	b := term.NewBuilder()
	p, q, r := b.Bool("p"), b.Bool("q"), b.Bool("r")
	assert.Same(t, b.Implies(p, b.Implies(q, r)), b.MustParse("(=> p q r)"))
	assert.Same(t, b.And(p, q), b.MustParse("(let ((a p) (c q)) (and a c))"))
	assert.Same(t, b.Real(-1, 3), b.MustParse("(- (/ 1.0 3.0))"))
}

func TestParseErrors(t *testing.T) {
	b := term.NewBuilder()
	b.Bool("p")
	for _, src := range []string{
		"(and p",
		"(and p undeclared)",
		"(+ p 1)",
		"(not p p)",
		"()",
		"1e5",
	} {
		_, e := b.Parse(src)
		assert.Error(t, e, src)
	}
}

func TestFreeDecls(t *testing.T) {
	b := term.NewBuilder()
	x, y := b.IntConst("x"), b.IntConst("y")
	body := b.Gt(b.Add(x, y), b.Int(0))
	q := b.Forall([]*term.Decl{x.Decl()}, body)
	ds := term.FreeDecls(q, b.Lt(x, b.Int(3)))
	require.Len(t, ds, 2)
	assert.Equal(t, "y", ds[0].Name)
	assert.Equal(t, "x", ds[1].Name)

	var sb strings.Builder
	require.NoError(t, term.WriteScript(&sb, []*term.Term{q}))
	assert.Equal(t, "(declare-fun y () Int)\n(assert (forall ((x Int)) (> (+ x y) 0)))\n", sb.String())
}
