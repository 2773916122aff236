// Copyright 2016 The Gini Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

// Package term provides the formula algebra consumed by the oracle.
//
// Terms are immutable and hash-consed by a Builder: two structurally
// equal terms built by the same Builder are the same pointer and have
// the same ID.  Terms render to and parse from SMT-LIB 2.
package term

import "math/big"

// Op is the operator at the root of a term.
type Op uint8

const (
	OpNone Op = iota
	OpTrue
	OpFalse
	OpNum // numeral, Int or Real
	OpApp // application of a Decl, constants included
	OpNot
	OpAnd
	OpOr
	OpImplies
	OpXor
	OpIte
	OpEq
	OpDistinct
	OpLt
	OpLe
	OpGt
	OpGe
	OpAdd
	OpSub
	OpMul
	OpDiv
	OpIntDiv
	OpMod
	OpNeg
	OpToReal
	OpToInt
	OpForall
	OpExists
)

var opNames = [...]string{
	OpNone:     "none",
	OpTrue:     "true",
	OpFalse:    "false",
	OpNum:      "num",
	OpApp:      "app",
	OpNot:      "not",
	OpAnd:      "and",
	OpOr:       "or",
	OpImplies:  "=>",
	OpXor:      "xor",
	OpIte:      "ite",
	OpEq:       "=",
	OpDistinct: "distinct",
	OpLt:       "<",
	OpLe:       "<=",
	OpGt:       ">",
	OpGe:       ">=",
	OpAdd:      "+",
	OpSub:      "-",
	OpMul:      "*",
	OpDiv:      "/",
	OpIntDiv:   "div",
	OpMod:      "mod",
	OpNeg:      "-",
	OpToReal:   "to_real",
	OpToInt:    "to_int",
	OpForall:   "forall",
	OpExists:   "exists",
}

// String returns the SMT-LIB symbol of o.
func (o Op) String() string {
	if int(o) < len(opNames) {
		return opNames[o]
	}
	return "op?"
}

// Term is a node of a formula.
type Term struct {
	id   uint32
	op   Op
	sort Sort
	decl *Decl
	val  *big.Rat
	args []*Term
	vars []*Decl
}

// ID returns the structural identity of t within its Builder.
func (t *Term) ID() uint32 {
	return t.id
}

// Op returns the root operator of t.
func (t *Term) Op() Op {
	return t.op
}

// Sort returns the sort of t.
func (t *Term) Sort() Sort {
	return t.sort
}

// Args returns the children of t.  The result must not be modified.
func (t *Term) Args() []*Term {
	return t.args
}

// Decl returns the applied declaration if t.Op() == OpApp, else nil.
func (t *Term) Decl() *Decl {
	return t.decl
}

// Vars returns the bound variables of a quantifier.
func (t *Term) Vars() []*Decl {
	return t.vars
}

// IsConst returns whether t is a declared constant.
func (t *Term) IsConst() bool {
	return t.op == OpApp && len(t.args) == 0
}

// IsLit returns whether t is a boolean or numeric literal.
func (t *Term) IsLit() bool {
	return t.op == OpTrue || t.op == OpFalse || t.op == OpNum
}

// Rat returns a copy of the value of a numeral, or nil.
func (t *Term) Rat() *big.Rat {
	if t.val == nil {
		return nil
	}
	return new(big.Rat).Set(t.val)
}
