// Copyright 2016 The Gini Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

package interp

import (
	"math/big"

	"github.com/go-air/oracle/inter"
	"github.com/go-air/oracle/num"
	"github.com/go-air/oracle/term"
)

type env map[*term.Decl]inter.Value

// Eval evaluates t in m.  Quantified terms, division by zero and, unless
// completion is set, unassigned symbols have no value.
func (m *Model) Eval(t *term.Term, completion bool) (inter.Value, bool) {
	ev := &evaluator{m: m, completion: completion}
	v := ev.eval(t, nil)
	return v, v != nil
}

type evaluator struct {
	m          *Model
	completion bool
	depth      int
}

// maxDepth bounds nested function expansion; recursive definitions
// have no value.
const maxDepth = 256

func (ev *evaluator) eval(t *term.Term, bound env) inter.Value {
	switch t.Op() {
	case term.OpTrue, term.OpFalse, term.OpNum:
		l, _ := num.FromTerm(t)
		return l
	case term.OpApp:
		return ev.app(t, bound)
	case term.OpForall, term.OpExists:
		return nil
	case term.OpNot:
		b, ok := ev.boolean(t.Args()[0], bound)
		if !ok {
			return nil
		}
		return num.BoolLit(!b)
	case term.OpAnd, term.OpOr:
		return ev.junction(t, bound)
	case term.OpImplies:
		a, aok := ev.boolean(t.Args()[0], bound)
		if aok && !a {
			return num.BoolLit(true)
		}
		c, cok := ev.boolean(t.Args()[1], bound)
		if cok && c {
			return num.BoolLit(true)
		}
		if !aok || !cok {
			return nil
		}
		return num.BoolLit(false)
	case term.OpXor:
		a, aok := ev.boolean(t.Args()[0], bound)
		c, cok := ev.boolean(t.Args()[1], bound)
		if !aok || !cok {
			return nil
		}
		return num.BoolLit(a != c)
	case term.OpIte:
		c, ok := ev.boolean(t.Args()[0], bound)
		if !ok {
			return nil
		}
		if c {
			return ev.eval(t.Args()[1], bound)
		}
		return ev.eval(t.Args()[2], bound)
	case term.OpEq, term.OpDistinct:
		return ev.compare(t, bound)
	case term.OpLt, term.OpLe, term.OpGt, term.OpGe:
		a, c := ev.rat(t.Args()[0], bound), ev.rat(t.Args()[1], bound)
		if a == nil || c == nil {
			return nil
		}
		r := a.Cmp(c)
		var res bool
		switch t.Op() {
		case term.OpLt:
			res = r < 0
		case term.OpLe:
			res = r <= 0
		case term.OpGt:
			res = r > 0
		default:
			res = r >= 0
		}
		return num.BoolLit(res)
	}
	return ev.arith(t, bound)
}

func (ev *evaluator) arith(t *term.Term, bound env) inter.Value {
	as := make([]*big.Rat, len(t.Args()))
	for i, a := range t.Args() {
		if as[i] = ev.rat(a, bound); as[i] == nil {
			return nil
		}
	}
	res := new(big.Rat)
	switch t.Op() {
	case term.OpAdd:
		for _, a := range as {
			res.Add(res, a)
		}
	case term.OpMul:
		res.SetInt64(1)
		for _, a := range as {
			res.Mul(res, a)
		}
	case term.OpSub:
		res.Set(as[0])
		for _, a := range as[1:] {
			res.Sub(res, a)
		}
	case term.OpNeg:
		res.Neg(as[0])
	case term.OpDiv:
		if as[1].Sign() == 0 {
			return nil
		}
		res.Quo(as[0], as[1])
	case term.OpIntDiv, term.OpMod:
		if as[1].Sign() == 0 {
			return nil
		}
		q, r := new(big.Int), new(big.Int)
		q.DivMod(as[0].Num(), as[1].Num(), r)
		if t.Op() == term.OpIntDiv {
			res.SetInt(q)
		} else {
			res.SetInt(r)
		}
	case term.OpToReal:
		res.Set(as[0])
	case term.OpToInt:
		// Euclidean division by a positive denominator is the floor
		q := new(big.Int)
		q.DivMod(as[0].Num(), as[0].Denom(), new(big.Int))
		res.SetInt(q)
	default:
		return nil
	}
	return num.RatLit(res, t.Sort())
}

func (ev *evaluator) junction(t *term.Term, bound env) inter.Value {
	// absorbing element of the connective
	absorb := t.Op() == term.OpOr
	missing := false
	for _, a := range t.Args() {
		b, ok := ev.boolean(a, bound)
		if !ok {
			missing = true
			continue
		}
		if b == absorb {
			return num.BoolLit(absorb)
		}
	}
	if missing {
		return nil
	}
	return num.BoolLit(!absorb)
}

func (ev *evaluator) compare(t *term.Term, bound env) inter.Value {
	vs := make([]inter.Value, len(t.Args()))
	for i, a := range t.Args() {
		if vs[i] = ev.eval(a, bound); vs[i] == nil {
			return nil
		}
	}
	if t.Op() == term.OpEq {
		for _, v := range vs[1:] {
			eq, ok := equal(vs[0], v)
			if !ok {
				return nil
			}
			if !eq {
				return num.BoolLit(false)
			}
		}
		return num.BoolLit(true)
	}
	for i := range vs {
		for j := i + 1; j < len(vs); j++ {
			eq, ok := equal(vs[i], vs[j])
			if !ok {
				return nil
			}
			if eq {
				return num.BoolLit(false)
			}
		}
	}
	return num.BoolLit(true)
}

func equal(a, c inter.Value) (eq, ok bool) {
	if a.Sort() == term.SortBool {
		x, aok := a.Bool()
		y, cok := c.Bool()
		return x == y, aok && cok
	}
	x, y := ratOf(a), ratOf(c)
	if x == nil || y == nil {
		return false, false
	}
	return x.Cmp(y) == 0, true
}

func (ev *evaluator) app(t *term.Term, bound env) inter.Value {
	d := t.Decl()
	if v, ok := bound[d]; ok {
		return v
	}
	if v, ok := ev.m.consts[d]; ok {
		return v
	}
	if _, ok := ev.m.opaque[d]; ok {
		return nil
	}
	if f, ok := ev.m.funcs[d]; ok {
		if ev.depth >= maxDepth {
			return nil
		}
		inner := make(env, len(f.Params))
		for i, a := range t.Args() {
			v := ev.eval(a, bound)
			if v == nil {
				return nil
			}
			inner[f.Params[i]] = v
		}
		ev.depth++
		defer func() { ev.depth-- }()
		return ev.eval(f.Body, inner)
	}
	if ev.completion {
		return Default(d.Range)
	}
	return nil
}

func (ev *evaluator) boolean(t *term.Term, bound env) (bool, bool) {
	v := ev.eval(t, bound)
	if v == nil {
		return false, false
	}
	return v.Bool()
}

func (ev *evaluator) rat(t *term.Term, bound env) *big.Rat {
	v := ev.eval(t, bound)
	if v == nil {
		return nil
	}
	return ratOf(v)
}

func ratOf(v inter.Value) *big.Rat {
	if l, ok := v.(*num.Lit); ok {
		return l.Rat()
	}
	r, e := num.Rat(v)
	if e != nil {
		return nil
	}
	return r
}
