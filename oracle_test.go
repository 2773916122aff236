// Copyright 2016 The Gini Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

package oracle_test

import (
	"bytes"
	"errors"
	"math/big"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-air/oracle"
	"github.com/go-air/oracle/gen"
	"github.com/go-air/oracle/inter"
	"github.com/go-air/oracle/interp"
	"github.com/go-air/oracle/num"
	"github.com/go-air/oracle/term"
	"github.com/go-air/oracle/witness"
)

// stub is a session answering every check with out.
type stub struct {
	out      inter.Outcome
	err      error
	asserted []*term.Term
	level    int
	closed   bool
}

func (s *stub) Push() { s.level++ }
func (s *stub) Pop() { s.level-- }
func (s *stub) Assert(f *term.Term) { s.asserted = append(s.asserted, f) }
func (s *stub) Check(as []*term.Term) (inter.Outcome, error) {
	return s.out, s.err
}
func (s *stub) UnsatCore() []*term.Term { return nil }
func (s *stub) ReasonUnknown() inter.ReasonUnknown { return s.out.Reason }
func (s *stub) SetTimeout(d time.Duration) {}
func (s *stub) Close() error {
	s.closed = true
	return nil
}

func with(s inter.Session) oracle.Option {
	return oracle.WithOpener(func(*term.Builder, oracle.Kind) (inter.Session, error) {
		return s, nil
	})
}

func newSat(t *testing.T, b *term.Builder) *oracle.Oracle {
	o, e := oracle.New(b, oracle.Sat)
	require.NoError(t, e)
	t.Cleanup(func() { o.Close() })
	return o
}

func TestVacuousProof(t *testing.T) {
	b := term.NewBuilder()
	s := &stub{err: errors.New("must not be called")}
	o, e := oracle.New(b, oracle.Z3, with(s))
	require.NoError(t, e)
	for i := 0; i < 5; i++ {
		o.AddAssumption(b.Bool("p"))
		o.AddAssumption(b.False())
	}
	v, e := o.CheckProof()
	require.NoError(t, e)
	assert.Equal(t, oracle.Proof, v.Kind)
	assert.Equal(t, "Proof", v.String())
}

func TestTrueAssumption(t *testing.T) {
	b := term.NewBuilder()
	o := newSat(t, b)
	o.AddAssumption(b.True())
	v, e := o.CheckProof()
	require.NoError(t, e)
	assert.Equal(t, "Proof", v.String())
}

func TestFalseObligation(t *testing.T) {
	b := term.NewBuilder()
	o := newSat(t, b)
	o.AddProvable(b.False())
	v, e := o.CheckProof()
	require.NoError(t, e)
	require.Equal(t, oracle.Counterexample, v.Kind)
	assert.Equal(t, "Counterexample", v.String())
	assert.Equal(t, witness.Consistent, v.Witness.Consistency())
	f, e := v.Witness.EvalBool(b.False())
	require.NoError(t, e)
	assert.False(t, f)
}

func TestPopDiscardsObligation(t *testing.T) {
	b := term.NewBuilder()
	p := b.Bool("p")
	o := newSat(t, b)
	o.AddAssumption(p)
	o.Push()
	o.AddProvable(b.Not(p))
	v, e := o.CheckProof()
	require.NoError(t, e)
	assert.Equal(t, oracle.Counterexample, v.Kind)
	o.Pop()
	assert.Equal(t, 0, o.Level())
	v, e = o.CheckProof()
	require.NoError(t, e)
	assert.Equal(t, oracle.Proof, v.Kind)
}

func TestMarkerLevels(t *testing.T) {
	b := term.NewBuilder()
	p, q := b.Bool("p"), b.Bool("q")
	o := newSat(t, b)
	o.Push()
	o.AddProvable(p)
	o.Push()
	o.AddProvable(q)
	o.Push()
	o.Pop()
	assert.Equal(t, 2, o.Level())
	o.Pop()
	// the obligation at level 1 remains
	v, e := o.CheckProof()
	require.NoError(t, e)
	assert.Equal(t, oracle.Counterexample, v.Kind)
	ok, e := v.Witness.EvalBool(p)
	require.NoError(t, e)
	assert.False(t, ok)
	o.Pop()
	v, e = o.CheckProof()
	require.NoError(t, e)
	assert.Equal(t, oracle.Proof, v.Kind)
	assert.Panics(t, func() { o.Pop() })
	assert.Empty(t, o.Assertions())
}

func TestProofAssuming(t *testing.T) {
	b := term.NewBuilder()
	p, q, r := b.Bool("p"), b.Bool("q"), b.Bool("r")
	o := newSat(t, b)
	o.AddAssumption(b.Implies(p, q))
	o.AddProvable(q)
	v, e := o.CheckProof()
	require.NoError(t, e)
	assert.Equal(t, oracle.Counterexample, v.Kind)

	v, e = o.CheckProofAssuming([]*term.Term{r, p})
	require.NoError(t, e)
	assert.Equal(t, oracle.Proof, v.Kind)
	assert.Contains(t, o.UnsatCore(), p)
	assert.NotContains(t, o.UnsatCore(), r)

	// assumptions are not retained
	v, e = o.CheckProof()
	require.NoError(t, e)
	assert.Equal(t, oracle.Counterexample, v.Kind)
}

func TestUnknownVerdicts(t *testing.T) {
	b := term.NewBuilder()
	for _, tc := range []struct {
		out  inter.Outcome
		want string
	}{
		{inter.Outcome{Res: inter.Unknown}, "Unknown (reason: unknown)"},
		{inter.Outcome{Res: inter.Unknown, Reason: inter.ReasonUnknown{Code: inter.Timeout}}, "Unknown (reason: timeout)"},
		{inter.Outcome{Res: inter.Sat}, "Unknown (reason: model unavailable)"},
		{inter.Outcome{Res: inter.Sat, Model: interp.New()}, "Counterexample"},
	} {
		o, e := oracle.New(b, oracle.Swine, with(&stub{out: tc.out}))
		require.NoError(t, e)
		o.AddProvable(b.Bool("p"))
		v, e := o.CheckProof()
		require.NoError(t, e)
		assert.Equal(t, tc.want, v.String())
	}
}

func TestBackendError(t *testing.T) {
	b := term.NewBuilder()
	boom := errors.New("boom")
	o, e := oracle.New(b, oracle.Z3, with(&stub{err: boom}))
	require.NoError(t, e)
	o.AddProvable(b.Bool("p"))
	_, e = o.CheckProof()
	require.Error(t, e)
	assert.ErrorIs(t, e, boom)

	_, e = oracle.New(b, oracle.Z3, oracle.WithOpener(func(*term.Builder, oracle.Kind) (inter.Session, error) {
		return nil, boom
	}))
	assert.ErrorIs(t, e, boom)
}

func TestUnsupportedOnSat(t *testing.T) {
	b := term.NewBuilder()
	x := b.IntConst("x")
	o := newSat(t, b)
	o.AddProvable(b.Gt(b.Mul(x, x), b.Int(-1)))
	v, e := o.CheckProof()
	require.NoError(t, e)
	assert.Equal(t, oracle.Unknown, v.Kind)
	assert.Equal(t, inter.Unsupported, v.Reason.Code)
}

func TestRationalWitness(t *testing.T) {
	b := term.NewBuilder()
	x := b.RealConst("x")
	m := interp.New()
	m.Set(x.Decl(), num.RatLit(big.NewRat(1, 3), term.SortReal))
	o, e := oracle.New(b, oracle.Z3, with(&stub{out: inter.Outcome{Res: inter.Sat, Model: m}}))
	require.NoError(t, e)
	o.AddAssumption(b.Eq(b.Mul(b.Int(3), x), b.Int(1)))
	o.AddProvable(b.Gt(x, b.Int(1)))
	v, e := o.CheckProof()
	require.NoError(t, e)
	require.Equal(t, oracle.Counterexample, v.Kind)
	r, e := v.Witness.EvalRat(x)
	require.NoError(t, e)
	assert.Equal(t, "1/3", r.RatString())
}

func TestExistsForall(t *testing.T) {
	b := term.NewBuilder()
	p, q := b.Bool("p"), b.Bool("q")
	var kinds []oracle.Kind
	opener := oracle.WithOpener(func(_ *term.Builder, k oracle.Kind) (inter.Session, error) {
		kinds = append(kinds, k)
		return &stub{}, nil
	})
	o, e := oracle.New(b, oracle.Swine, opener, oracle.WithTimeout(time.Second))
	require.NoError(t, e)
	o.AddAssumption(p)
	o.AddProvable(q)
	d, e := o.ExistsForall([]*term.Decl{q.Decl()})
	require.NoError(t, e)
	assert.Equal(t, oracle.Z3, d.Kind())
	assert.Equal(t, []oracle.Kind{oracle.Swine, oracle.Z3}, kinds)
	assert.NotEqual(t, o.ID(), d.ID())
	as := d.Assertions()
	require.Len(t, as, 1)
	assert.Equal(t, term.OpForall, as[0].Op())
	assert.Equal(t, []*term.Decl{q.Decl()}, as[0].Vars())
	assert.Equal(t, b.Not(b.And(p, b.Not(q))), as[0].Args()[0])
	assert.Equal(t, 0, d.Level())
}

func TestExistsForallSat(t *testing.T) {
	b := term.NewBuilder()
	p := b.Bool("p")
	o := newSat(t, b)
	o.AddAssumption(p)
	d, e := o.ExistsForall(nil)
	require.NoError(t, e)
	defer d.Close()
	out, e := d.CheckSat()
	require.NoError(t, e)
	assert.Equal(t, inter.Sat, out.Res)
	v, ok := out.Model.Eval(p, true)
	require.True(t, ok)
	pv, e := num.Bool(v)
	require.NoError(t, e)
	assert.False(t, pv)
}

func TestWriteSmtlib(t *testing.T) {
	b := term.NewBuilder()
	x := b.IntConst("x")
	o := newSat(t, b)
	o.AddAssumption(b.Gt(x, b.Int(0)))
	o.Push()
	o.AddProvable(b.Ge(x, b.Int(1)))
	var buf bytes.Buffer
	require.NoError(t, o.WriteSmtlib(&buf))
	assert.Equal(t, "(declare-fun x () Int)\n(assert (> x 0))\n(assert (not (>= x 1)))\n", buf.String())
}

func TestRandTimeout(t *testing.T) {
	b := term.NewBuilder()
	opener := func(*term.Builder, oracle.Kind) (inter.Session, error) {
		return gen.RandSession(time.Hour, 1), nil
	}
	o, e := oracle.New(b, oracle.Sat, oracle.WithOpener(opener), oracle.WithTimeout(5*time.Millisecond))
	require.NoError(t, e)
	o.AddProvable(b.Bool("p"))
	v, e := o.CheckProof()
	require.NoError(t, e)
	assert.Equal(t, oracle.Unknown, v.Kind)
	assert.Equal(t, inter.Timeout, o.ReasonUnknown().Code)
	assert.Equal(t, "Unknown (reason: timeout)", v.String())
	require.NoError(t, o.Close())
	_, e = o.CheckProof()
	assert.Error(t, e)
}

func TestParseKind(t *testing.T) {
	for _, k := range []oracle.Kind{oracle.Sat, oracle.Z3, oracle.Swine} {
		p, e := oracle.ParseKind(k.String())
		require.NoError(t, e)
		assert.Equal(t, k, p)
	}
	_, e := oracle.ParseKind("cvc5")
	assert.Error(t, e)
}
