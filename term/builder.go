// Copyright 2016 The Gini Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

package term

import (
	"fmt"
	"math/big"
	"strconv"
	"strings"
	"sync"
)

// SortError is the panic value of Builder methods given ill-sorted
// arguments.  Parse recovers it and returns it as an error.
type SortError struct {
	Op  string
	Msg string
}

func (e *SortError) Error() string {
	return fmt.Sprintf("ill-sorted %s: %s", e.Op, e.Msg)
}

func sortPanic(op Op, format string, args ...interface{}) {
	panic(&SortError{Op: op.String(), Msg: fmt.Sprintf(format, args...)})
}

// Builder creates hash-consed terms and owns declarations.
//
// A Builder is safe for use by multiple goroutines.
type Builder struct {
	mu     sync.Mutex
	strash map[string]*Term
	decls  map[string]*Decl
	order  []*Decl
	nTerms uint32
	t, f   *Term
}

// NewBuilder creates a new Builder.
func NewBuilder() *Builder {
	b := &Builder{
		strash: make(map[string]*Term, 128),
		decls:  make(map[string]*Decl)}
	b.t = b.intern(&Term{op: OpTrue, sort: SortBool})
	b.f = b.intern(&Term{op: OpFalse, sort: SortBool})
	return b
}

// Len returns the number of distinct terms created by b.
func (b *Builder) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return int(b.nTerms)
}

// Declare declares name with the given signature.  Declaring a name
// again with the same signature returns the existing Decl; declaring it
// with a different signature is an error.
func (b *Builder) Declare(name string, dom []Sort, rng Sort) (*Decl, error) {
	if name == "" {
		return nil, fmt.Errorf("empty declaration name")
	}
	if rng == SortNone {
		return nil, fmt.Errorf("declaration %s has no range sort", name)
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if d, ok := b.decls[name]; ok {
		if !sameSig(d, dom, rng) {
			return nil, fmt.Errorf("%s already declared as %s", name, d.Signature())
		}
		return d, nil
	}
	d := &Decl{
		id:     uint32(len(b.order)),
		Name:   name,
		Domain: append([]Sort(nil), dom...),
		Range:  rng}
	b.decls[name] = d
	b.order = append(b.order, d)
	return d, nil
}

// Lookup finds a declaration by name.
func (b *Builder) Lookup(name string) (*Decl, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	d, ok := b.decls[name]
	return d, ok
}

// Decls returns all declarations in declaration order.
func (b *Builder) Decls() []*Decl {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]*Decl(nil), b.order...)
}

// Const declares (if needed) and returns the constant name of sort s.
// Const panics if name is declared with another signature.
func (b *Builder) Const(name string, s Sort) *Term {
	d, e := b.Declare(name, nil, s)
	if e != nil {
		panic(&SortError{Op: "declare", Msg: e.Error()})
	}
	return b.App(d)
}

// Bool returns the boolean constant name.
func (b *Builder) Bool(name string) *Term { return b.Const(name, SortBool) }

// IntConst returns the integer constant name.
func (b *Builder) IntConst(name string) *Term { return b.Const(name, SortInt) }

// RealConst returns the real constant name.
func (b *Builder) RealConst(name string) *Term { return b.Const(name, SortReal) }

// True returns the literal true.
func (b *Builder) True() *Term { return b.t }

// False returns the literal false.
func (b *Builder) False() *Term { return b.f }

// BoolVal returns the literal v.
func (b *Builder) BoolVal(v bool) *Term {
	if v {
		return b.t
	}
	return b.f
}

// Int returns the integer numeral v.
func (b *Builder) Int(v int64) *Term {
	return b.Num(new(big.Rat).SetInt64(v), SortInt)
}

// BigInt returns the integer numeral v.
func (b *Builder) BigInt(v *big.Int) *Term {
	return b.Num(new(big.Rat).SetInt(v), SortInt)
}

// Real returns the real numeral num/den.
func (b *Builder) Real(num, den int64) *Term {
	if den == 0 {
		sortPanic(OpNum, "zero denominator")
	}
	return b.Num(big.NewRat(num, den), SortReal)
}

// Rat returns the real numeral v.
func (b *Builder) Rat(v *big.Rat) *Term {
	return b.Num(v, SortReal)
}

// Num returns the numeral v of sort s.  Int numerals must be integral.
func (b *Builder) Num(v *big.Rat, s Sort) *Term {
	if !s.IsNumeric() {
		sortPanic(OpNum, "numeral of sort %s", s)
	}
	if s == SortInt && !v.IsInt() {
		sortPanic(OpNum, "non-integral Int numeral %s", v.RatString())
	}
	return b.intern(&Term{op: OpNum, sort: s, val: new(big.Rat).Set(v)})
}

// App applies d to args.
func (b *Builder) App(d *Decl, args ...*Term) *Term {
	if len(args) != len(d.Domain) {
		sortPanic(OpApp, "%s takes %d arguments, got %d", d.Name, len(d.Domain), len(args))
	}
	args = append([]*Term(nil), args...)
	for i, a := range args {
		if a.sort == SortInt && d.Domain[i] == SortReal {
			args[i] = b.ToReal(a)
			continue
		}
		if a.sort != d.Domain[i] {
			sortPanic(OpApp, "argument %d of %s has sort %s, want %s", i, d.Name, a.sort, d.Domain[i])
		}
	}
	return b.intern(&Term{op: OpApp, sort: d.Range, decl: d, args: args})
}

// Not returns the negation of a.
func (b *Builder) Not(a *Term) *Term {
	b.wantBool(OpNot, a)
	return b.intern(&Term{op: OpNot, sort: SortBool, args: []*Term{a}})
}

// And returns the conjunction of as; And() is true.
func (b *Builder) And(as ...*Term) *Term {
	return b.nary(OpAnd, b.t, as)
}

// Or returns the disjunction of as; Or() is false.
func (b *Builder) Or(as ...*Term) *Term {
	return b.nary(OpOr, b.f, as)
}

func (b *Builder) nary(op Op, unit *Term, as []*Term) *Term {
	b.wantBool(op, as...)
	switch len(as) {
	case 0:
		return unit
	case 1:
		return as[0]
	}
	return b.intern(&Term{op: op, sort: SortBool, args: append([]*Term(nil), as...)})
}

// Implies returns a => c.
func (b *Builder) Implies(a, c *Term) *Term {
	b.wantBool(OpImplies, a, c)
	return b.intern(&Term{op: OpImplies, sort: SortBool, args: []*Term{a, c}})
}

// Xor returns a xor c.
func (b *Builder) Xor(a, c *Term) *Term {
	b.wantBool(OpXor, a, c)
	return b.intern(&Term{op: OpXor, sort: SortBool, args: []*Term{a, c}})
}

// Iff returns a <=> c, which is (= a c).
func (b *Builder) Iff(a, c *Term) *Term {
	b.wantBool(OpEq, a, c)
	return b.Eq(a, c)
}

// Ite returns if c then t else e.
func (b *Builder) Ite(c, t, e *Term) *Term {
	b.wantBool(OpIte, c)
	args := b.unify(OpIte, []*Term{t, e})
	return b.intern(&Term{op: OpIte, sort: args[0].sort, args: []*Term{c, args[0], args[1]}})
}

// Eq returns (= as...), requiring at least two arguments.
func (b *Builder) Eq(as ...*Term) *Term {
	return b.chain(OpEq, as)
}

// Distinct returns (distinct as...).
func (b *Builder) Distinct(as ...*Term) *Term {
	return b.chain(OpDistinct, as)
}

func (b *Builder) chain(op Op, as []*Term) *Term {
	if len(as) < 2 {
		sortPanic(op, "needs at least 2 arguments")
	}
	as = b.unify(op, as)
	return b.intern(&Term{op: op, sort: SortBool, args: as})
}

// Lt returns a < c.
func (b *Builder) Lt(a, c *Term) *Term { return b.cmp(OpLt, a, c) }

// Le returns a <= c.
func (b *Builder) Le(a, c *Term) *Term { return b.cmp(OpLe, a, c) }

// Gt returns a > c.
func (b *Builder) Gt(a, c *Term) *Term { return b.cmp(OpGt, a, c) }

// Ge returns a >= c.
func (b *Builder) Ge(a, c *Term) *Term { return b.cmp(OpGe, a, c) }

func (b *Builder) cmp(op Op, a, c *Term) *Term {
	args := b.arith(op, []*Term{a, c})
	return b.intern(&Term{op: op, sort: SortBool, args: args})
}

// Add returns the sum of as.
func (b *Builder) Add(as ...*Term) *Term { return b.arithNary(OpAdd, as) }

// Sub returns (- as...), left associative.
func (b *Builder) Sub(as ...*Term) *Term { return b.arithNary(OpSub, as) }

// Mul returns the product of as.
func (b *Builder) Mul(as ...*Term) *Term { return b.arithNary(OpMul, as) }

func (b *Builder) arithNary(op Op, as []*Term) *Term {
	if len(as) == 0 {
		sortPanic(op, "no arguments")
	}
	as = b.arith(op, as)
	if len(as) == 1 {
		return as[0]
	}
	return b.intern(&Term{op: op, sort: as[0].sort, args: as})
}

// Neg returns the arithmetic negation of a.  Negated numerals are folded
// into numerals.
func (b *Builder) Neg(a *Term) *Term {
	b.arith(OpNeg, []*Term{a})
	if a.op == OpNum {
		return b.Num(new(big.Rat).Neg(a.val), a.sort)
	}
	return b.intern(&Term{op: OpNeg, sort: a.sort, args: []*Term{a}})
}

// Div returns the real division a / c.  Division of numerals by a
// non-zero numeral is folded.
func (b *Builder) Div(a, c *Term) *Term {
	args := b.arith(OpDiv, []*Term{b.real(a), b.real(c)})
	if args[0].op == OpNum && args[1].op == OpNum && args[1].val.Sign() != 0 {
		return b.Num(new(big.Rat).Quo(args[0].val, args[1].val), SortReal)
	}
	return b.intern(&Term{op: OpDiv, sort: SortReal, args: args})
}

// IntDiv returns (div a c).
func (b *Builder) IntDiv(a, c *Term) *Term { return b.intOp(OpIntDiv, a, c) }

// Mod returns (mod a c).
func (b *Builder) Mod(a, c *Term) *Term { return b.intOp(OpMod, a, c) }

func (b *Builder) intOp(op Op, a, c *Term) *Term {
	if a.sort != SortInt || c.sort != SortInt {
		sortPanic(op, "arguments of sort %s and %s, want Int", a.sort, c.sort)
	}
	return b.intern(&Term{op: op, sort: SortInt, args: []*Term{a, c}})
}

// ToReal converts an Int term to Real.
func (b *Builder) ToReal(a *Term) *Term {
	if a.sort != SortInt {
		sortPanic(OpToReal, "argument of sort %s", a.sort)
	}
	if a.op == OpNum {
		return b.Num(a.val, SortReal)
	}
	return b.intern(&Term{op: OpToReal, sort: SortReal, args: []*Term{a}})
}

// ToInt returns the floor of a Real term.
func (b *Builder) ToInt(a *Term) *Term {
	if a.sort != SortReal {
		sortPanic(OpToInt, "argument of sort %s", a.sort)
	}
	return b.intern(&Term{op: OpToInt, sort: SortInt, args: []*Term{a}})
}

// Forall universally quantifies vars in body.  With no vars it returns body.
func (b *Builder) Forall(vars []*Decl, body *Term) *Term {
	return b.quant(OpForall, vars, body)
}

// Exists existentially quantifies vars in body.  With no vars it returns body.
func (b *Builder) Exists(vars []*Decl, body *Term) *Term {
	return b.quant(OpExists, vars, body)
}

func (b *Builder) quant(op Op, vars []*Decl, body *Term) *Term {
	b.wantBool(op, body)
	if len(vars) == 0 {
		return body
	}
	for _, v := range vars {
		if v.Arity() != 0 {
			sortPanic(op, "cannot bind function %s", v.Name)
		}
	}
	return b.intern(&Term{op: op, sort: SortBool, args: []*Term{body}, vars: append([]*Decl(nil), vars...)})
}

func (b *Builder) wantBool(op Op, as ...*Term) {
	for _, a := range as {
		if a.sort != SortBool {
			sortPanic(op, "argument %s has sort %s, want Bool", a, a.sort)
		}
	}
}

// arith checks that as are numeric and coerces Int arguments to Real
// when the arguments are mixed.
func (b *Builder) arith(op Op, as []*Term) []*Term {
	for _, a := range as {
		if !a.sort.IsNumeric() {
			sortPanic(op, "argument %s has sort %s, want Int or Real", a, a.sort)
		}
	}
	return b.unify(op, as)
}

// unify gives as a common sort, coercing Int to Real if needed.
func (b *Builder) unify(op Op, as []*Term) []*Term {
	s := as[0].sort
	mixed := false
	for _, a := range as[1:] {
		if a.sort == s {
			continue
		}
		if !a.sort.IsNumeric() || !s.IsNumeric() {
			sortPanic(op, "arguments of sort %s and %s", s, a.sort)
		}
		mixed = true
	}
	if !mixed {
		return append([]*Term(nil), as...)
	}
	res := make([]*Term, len(as))
	for i, a := range as {
		res[i] = b.real(a)
	}
	return res
}

func (b *Builder) real(a *Term) *Term {
	if a.sort == SortInt {
		return b.ToReal(a)
	}
	return a
}

func (b *Builder) intern(t *Term) *Term {
	k := key(t)
	b.mu.Lock()
	defer b.mu.Unlock()
	if u, ok := b.strash[k]; ok {
		return u
	}
	t.id = b.nTerms
	b.nTerms++
	b.strash[k] = t
	return t
}

func key(t *Term) string {
	var sb strings.Builder
	sb.WriteByte(byte(t.op))
	sb.WriteByte(byte(t.sort))
	if t.decl != nil {
		sb.WriteString(strconv.FormatUint(uint64(t.decl.id), 36))
	}
	if t.val != nil {
		sb.WriteString(t.val.RatString())
	}
	for _, a := range t.args {
		sb.WriteByte(',')
		sb.WriteString(strconv.FormatUint(uint64(a.id), 36))
	}
	for _, v := range t.vars {
		sb.WriteByte(';')
		sb.WriteString(strconv.FormatUint(uint64(v.id), 36))
	}
	return sb.String()
}
