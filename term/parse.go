// Copyright 2016 The Gini Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

package term

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/go-air/oracle/sexp"
)

// Env binds local names (quantified variables, let bindings, function
// parameters) to terms while parsing.
type Env map[string]*Term

// Parse parses one SMT-LIB term over the declarations of b.
func (b *Builder) Parse(src string) (*Term, error) {
	s, e := sexp.Parse(src)
	if e != nil {
		return nil, e
	}
	return b.FromSexp(s, nil)
}

// MustParse is like Parse but panics on error.  It is meant for tests
// and examples.
func (b *Builder) MustParse(src string) *Term {
	t, e := b.Parse(src)
	if e != nil {
		panic(e)
	}
	return t
}

// FromSexp converts s to a term.  Names are resolved in env first and
// then among the declarations of b.
func (b *Builder) FromSexp(s sexp.Sexp, env Env) (t *Term, e error) {
	defer func() {
		if r := recover(); r != nil {
			se, ok := r.(*SortError)
			if !ok {
				panic(r)
			}
			t, e = nil, fmt.Errorf("%s: %w", s, se)
		}
	}()
	return b.conv(s, env)
}

func (b *Builder) conv(s sexp.Sexp, env Env) (*Term, error) {
	if !s.IsList() {
		return b.atom(s.Atom, env)
	}
	if len(s.List) == 0 {
		return nil, fmt.Errorf("empty application")
	}
	head := s.List[0]
	if head.IsList() {
		return nil, fmt.Errorf("unsupported application head %s", head)
	}
	switch head.Atom {
	case "forall", "exists":
		return b.convQuant(s, env)
	case "let":
		return b.convLet(s, env)
	}
	args := make([]*Term, 0, len(s.List)-1)
	for _, x := range s.List[1:] {
		a, e := b.conv(x, env)
		if e != nil {
			return nil, e
		}
		args = append(args, a)
	}
	return b.apply(head.Atom, args)
}

func (b *Builder) atom(a string, env Env) (*Term, error) {
	if t, ok := env[a]; ok {
		return t, nil
	}
	switch a {
	case "true":
		return b.t, nil
	case "false":
		return b.f, nil
	}
	if a != "" && a[0] >= '0' && a[0] <= '9' {
		return b.numeral(a)
	}
	d, ok := b.Lookup(a)
	if !ok {
		return nil, fmt.Errorf("undeclared symbol %q", a)
	}
	return b.App(d), nil
}

func (b *Builder) numeral(a string) (*Term, error) {
	s := SortInt
	if strings.Contains(a, ".") {
		s = SortReal
	}
	v, ok := new(big.Rat).SetString(a)
	if !ok || strings.ContainsAny(a, "/eE") {
		return nil, fmt.Errorf("invalid numeral %q", a)
	}
	return b.Num(v, s), nil
}

func (b *Builder) apply(name string, args []*Term) (*Term, error) {
	want := func(n int) error {
		if len(args) != n {
			return fmt.Errorf("%s takes %d arguments, got %d", name, n, len(args))
		}
		return nil
	}
	switch name {
	case "not":
		if e := want(1); e != nil {
			return nil, e
		}
		return b.Not(args[0]), nil
	case "and":
		return b.And(args...), nil
	case "or":
		return b.Or(args...), nil
	case "=>":
		if len(args) < 2 {
			return nil, fmt.Errorf("=> takes at least 2 arguments")
		}
		// right associative
		res := args[len(args)-1]
		for i := len(args) - 2; i >= 0; i-- {
			res = b.Implies(args[i], res)
		}
		return res, nil
	case "xor":
		if len(args) < 2 {
			return nil, fmt.Errorf("xor takes at least 2 arguments")
		}
		res := args[0]
		for _, a := range args[1:] {
			res = b.Xor(res, a)
		}
		return res, nil
	case "ite":
		if e := want(3); e != nil {
			return nil, e
		}
		return b.Ite(args[0], args[1], args[2]), nil
	case "=":
		return b.Eq(args...), nil
	case "distinct":
		return b.Distinct(args...), nil
	case "<", "<=", ">", ">=":
		if e := want(2); e != nil {
			return nil, e
		}
		return map[string]func(a, c *Term) *Term{
			"<": b.Lt, "<=": b.Le, ">": b.Gt, ">=": b.Ge}[name](args[0], args[1]), nil
	case "+":
		return b.Add(args...), nil
	case "*":
		return b.Mul(args...), nil
	case "-":
		if len(args) == 1 {
			return b.Neg(args[0]), nil
		}
		return b.Sub(args...), nil
	case "/":
		if e := want(2); e != nil {
			return nil, e
		}
		return b.Div(args[0], args[1]), nil
	case "div":
		if e := want(2); e != nil {
			return nil, e
		}
		return b.IntDiv(args[0], args[1]), nil
	case "mod":
		if e := want(2); e != nil {
			return nil, e
		}
		return b.Mod(args[0], args[1]), nil
	case "to_real":
		if e := want(1); e != nil {
			return nil, e
		}
		return b.ToReal(args[0]), nil
	case "to_int":
		if e := want(1); e != nil {
			return nil, e
		}
		return b.ToInt(args[0]), nil
	}
	d, ok := b.Lookup(name)
	if !ok {
		return nil, fmt.Errorf("undeclared function %q", name)
	}
	return b.App(d, args...), nil
}

// ParseBindings parses a sorted variable list ((x Int) (y Real)),
// declaring each variable in b.
func (b *Builder) ParseBindings(s sexp.Sexp) ([]*Decl, error) {
	if !s.IsList() {
		return nil, fmt.Errorf("expected sorted variable list, got %s", s)
	}
	vars := make([]*Decl, 0, len(s.List))
	for _, x := range s.List {
		if !x.IsList() || len(x.List) != 2 || x.List[0].IsList() || x.List[1].IsList() {
			return nil, fmt.Errorf("bad sorted variable %s", x)
		}
		srt, e := ParseSort(x.List[1].Atom)
		if e != nil {
			return nil, e
		}
		d, e := b.Declare(x.List[0].Atom, nil, srt)
		if e != nil {
			return nil, e
		}
		vars = append(vars, d)
	}
	return vars, nil
}

func (b *Builder) convQuant(s sexp.Sexp, env Env) (*Term, error) {
	if len(s.List) != 3 {
		return nil, fmt.Errorf("%s takes a variable list and a body", s.Head())
	}
	vars, e := b.ParseBindings(s.List[1])
	if e != nil {
		return nil, e
	}
	inner := extend(env)
	for _, v := range vars {
		inner[v.Name] = b.App(v)
	}
	body, e := b.conv(s.List[2], inner)
	if e != nil {
		return nil, e
	}
	if s.Head() == "forall" {
		return b.Forall(vars, body), nil
	}
	return b.Exists(vars, body), nil
}

func (b *Builder) convLet(s sexp.Sexp, env Env) (*Term, error) {
	if len(s.List) != 3 || !s.List[1].IsList() {
		return nil, fmt.Errorf("let takes a binding list and a body")
	}
	inner := extend(env)
	for _, x := range s.List[1].List {
		if !x.IsList() || len(x.List) != 2 || x.List[0].IsList() {
			return nil, fmt.Errorf("bad let binding %s", x)
		}
		// parallel let: bindings see the outer environment only
		t, e := b.conv(x.List[1], env)
		if e != nil {
			return nil, e
		}
		inner[x.List[0].Atom] = t
	}
	return b.conv(s.List[2], inner)
}

func extend(env Env) Env {
	res := make(Env, len(env)+4)
	for k, v := range env {
		res[k] = v
	}
	return res
}
