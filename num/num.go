// Copyright 2016 The Gini Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

// Package num decodes backend values into exact booleans, integers and
// rationals.
//
// Backends expose bounded native accessors (int64 sized).  When a value
// does not fit, it is decoded from its SMT-LIB text, as in
//
//	12345678901234567890
//	(- 7)
//	(/ 10.0 3.0)
//	(- (/ 1.0 3.0))
package num

import (
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/go-air/oracle/inter"
	"github.com/go-air/oracle/sexp"
	"github.com/go-air/oracle/term"
)

// ErrShape is returned when a value is not of the requested kind or its
// text is not a recognized numeral.
var ErrShape = errors.New("value has unexpected shape")

// Bool decodes a boolean value.
func Bool(v inter.Value) (bool, error) {
	b, ok := v.Bool()
	if !ok {
		return false, fmt.Errorf("%s is not a boolean: %w", v, ErrShape)
	}
	return b, nil
}

// Int decodes an integer value of arbitrary size.
func Int(v inter.Value) (*big.Int, error) {
	if v.Sort() == term.SortBool {
		return nil, fmt.Errorf("%s is not an integer: %w", v, ErrShape)
	}
	if i, ok := v.Int64(); ok {
		return big.NewInt(i), nil
	}
	return ParseInt(v.String())
}

// Rat decodes a numeric value as an exact rational.
func Rat(v inter.Value) (*big.Rat, error) {
	if v.Sort() == term.SortBool {
		return nil, fmt.Errorf("%s is not a number: %w", v, ErrShape)
	}
	if n, d, ok := v.Rat64(); ok && d != 0 {
		return big.NewRat(n, d), nil
	}
	return ParseRat(v.String())
}

// ParseInt parses an integer rendered as N or (- N).
func ParseInt(s string) (*big.Int, error) {
	x, e := sexp.Parse(s)
	if e != nil {
		return nil, fmt.Errorf("integer %q: %w", s, ErrShape)
	}
	r, ok := intOf(x)
	if !ok {
		return nil, fmt.Errorf("integer %q: %w", s, ErrShape)
	}
	return r, nil
}

func intOf(x sexp.Sexp) (*big.Int, bool) {
	if neg, ok := negated(x); ok {
		r, ok := intOf(neg)
		if !ok {
			return nil, false
		}
		return r.Neg(r), true
	}
	if x.IsList() || !digits(x.Atom) {
		return nil, false
	}
	return new(big.Int).SetString(x.Atom, 10)
}

// ParseRat parses a rational rendered as (/ N.0 D.0), as N.0 or N, or as
// the negation (- X) of one of these.  The operands of / may be negated.
// Fractional decimals and nested quotients are shape errors.
func ParseRat(s string) (*big.Rat, error) {
	x, e := sexp.Parse(s)
	if e != nil {
		return nil, fmt.Errorf("rational %q: %w", s, ErrShape)
	}
	r, ok := ratOf(x)
	if !ok {
		return nil, fmt.Errorf("rational %q: %w", s, ErrShape)
	}
	return r, nil
}

func ratOf(x sexp.Sexp) (*big.Rat, bool) {
	if neg, ok := negated(x); ok {
		r, ok := quotient(neg)
		if !ok {
			return nil, false
		}
		return r.Neg(r), true
	}
	return quotient(x)
}

// quotient parses N, N.0 or (/ A B) where A and B are N.0 or (- N.0).
func quotient(x sexp.Sexp) (*big.Rat, bool) {
	if !x.IsList() {
		return whole(x)
	}
	if len(x.List) != 3 || !x.List[0].Is("/") {
		return nil, false
	}
	n, ok := operand(x.List[1])
	if !ok {
		return nil, false
	}
	d, ok := operand(x.List[2])
	if !ok || d.Sign() == 0 {
		return nil, false
	}
	return n.Quo(n, d), true
}

func operand(x sexp.Sexp) (*big.Rat, bool) {
	if neg, ok := negated(x); ok {
		r, ok := whole(neg)
		if !ok {
			return nil, false
		}
		return r.Neg(r), true
	}
	return whole(x)
}

func whole(x sexp.Sexp) (*big.Rat, bool) {
	if x.IsList() || !wholeDecimal(x.Atom) {
		return nil, false
	}
	return new(big.Rat).SetString(x.Atom)
}

func negated(x sexp.Sexp) (sexp.Sexp, bool) {
	if x.IsList() && len(x.List) == 2 && x.List[0].Is("-") {
		return x.List[1], true
	}
	return sexp.Sexp{}, false
}

func digits(a string) bool {
	if a == "" {
		return false
	}
	for i := 0; i < len(a); i++ {
		if a[i] < '0' || a[i] > '9' {
			return false
		}
	}
	return true
}

// wholeDecimal matches N or N.0, with any number of zeros after the point.
func wholeDecimal(a string) bool {
	for i := 0; i < len(a); i++ {
		if a[i] == '.' {
			return digits(a[:i]) && digits(a[i+1:]) && strings.Trim(a[i+1:], "0") == ""
		}
	}
	return digits(a)
}
