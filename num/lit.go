// Copyright 2016 The Gini Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

package num

import (
	"math/big"

	"github.com/go-air/oracle/term"
)

// Lit is a concrete value: a boolean, an integer or a rational.  Lit
// implements inter.Value.
type Lit struct {
	sort term.Sort
	b    bool
	v    *big.Rat
}

// BoolLit returns the boolean value v.
func BoolLit(v bool) *Lit {
	return &Lit{sort: term.SortBool, b: v}
}

// IntLit returns the integer value v.
func IntLit(v *big.Int) *Lit {
	return &Lit{sort: term.SortInt, v: new(big.Rat).SetInt(v)}
}

// Int64Lit returns the integer value v.
func Int64Lit(v int64) *Lit {
	return &Lit{sort: term.SortInt, v: new(big.Rat).SetInt64(v)}
}

// RatLit returns the value v of numeric sort s.  An Int value must be
// integral.
func RatLit(v *big.Rat, s term.Sort) *Lit {
	if !s.IsNumeric() || (s == term.SortInt && !v.IsInt()) {
		panic("num: bad numeric literal")
	}
	return &Lit{sort: s, v: new(big.Rat).Set(v)}
}

// FromTerm returns the value of a literal term.
func FromTerm(t *term.Term) (*Lit, bool) {
	switch t.Op() {
	case term.OpTrue:
		return BoolLit(true), true
	case term.OpFalse:
		return BoolLit(false), true
	case term.OpNum:
		return &Lit{sort: t.Sort(), v: t.Rat()}, true
	}
	return nil, false
}

func (l *Lit) Sort() term.Sort {
	return l.sort
}

func (l *Lit) Bool() (bool, bool) {
	return l.b, l.sort == term.SortBool
}

func (l *Lit) Int64() (int64, bool) {
	if l.sort != term.SortInt || !l.v.Num().IsInt64() {
		return 0, false
	}
	return l.v.Num().Int64(), true
}

func (l *Lit) Rat64() (int64, int64, bool) {
	if !l.sort.IsNumeric() || !l.v.Num().IsInt64() || !l.v.Denom().IsInt64() {
		return 0, 0, false
	}
	return l.v.Num().Int64(), l.v.Denom().Int64(), true
}

// Rat returns a copy of the numeric value of l, or nil if l is a
// boolean.
func (l *Lit) Rat() *big.Rat {
	if l.v == nil {
		return nil
	}
	return new(big.Rat).Set(l.v)
}

func (l *Lit) String() string {
	if l.sort == term.SortBool {
		if l.b {
			return "true"
		}
		return "false"
	}
	return term.FormatNum(l.v, l.sort)
}

// Term returns l as a literal term of b.
func (l *Lit) Term(b *term.Builder) *term.Term {
	if l.sort == term.SortBool {
		return b.BoolVal(l.b)
	}
	return b.Num(l.v, l.sort)
}
