// Copyright 2016 The Gini Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

package interp

import (
	"fmt"
	"strconv"

	"github.com/go-air/oracle/num"
	"github.com/go-air/oracle/sexp"
	"github.com/go-air/oracle/term"
)

// Parse reads a model as printed by (get-model), either
//
//	(model (define-fun x () Int 3) ...)
//
// or the same definitions without the model keyword.  Definitions of
// symbols not declared in b, such as the f!0 and k!0 functions z3
// introduces, are inlined into the definitions that use them.  Constant
// values outside the term algebra are kept as Text, and definitions that
// still cannot be read are kept opaque, so that terms using them have no
// value.
func Parse(b *term.Builder, s sexp.Sexp) (*Model, error) {
	if !s.IsList() {
		return nil, fmt.Errorf("model: expected list, got %s", s)
	}
	defs := s.List
	if len(defs) > 0 && defs[0].Is("model") {
		defs = defs[1:]
	}
	var own []sexp.Sexp
	x := &inliner{aux: make(map[string]sexp.Sexp), active: make(map[string]bool)}
	for _, def := range defs {
		if def.Head() != "define-fun" {
			continue
		}
		if len(def.List) != 5 || def.List[1].IsList() || !def.List[2].IsList() {
			return nil, fmt.Errorf("model: malformed definition %s", def)
		}
		if _, ok := b.Lookup(def.List[1].Atom); ok {
			own = append(own, def)
			continue
		}
		x.aux[def.List[1].Atom] = def
	}
	m := New()
	for _, def := range own {
		d, _ := b.Lookup(def.List[1].Atom)
		body, ok := x.expand(def.List[4])
		if !ok {
			m.SetOpaque(d, def.String())
			continue
		}
		if e := m.parseDef(b, d, def, body); e != nil {
			return nil, e
		}
	}
	return m, nil
}

// inliner substitutes definitions of auxiliary symbols at their uses.
type inliner struct {
	aux    map[string]sexp.Sexp
	active map[string]bool
}

// expand inlines the auxiliary definitions used in s.  It fails on
// cyclic definitions and on applications with the wrong number of
// arguments.
func (x *inliner) expand(s sexp.Sexp) (sexp.Sexp, bool) {
	if !s.IsList() {
		def, ok := x.aux[s.Atom]
		if !ok {
			return s, true
		}
		if len(def.List[2].List) != 0 {
			return s, false
		}
		return x.inline(s.Atom, def, nil)
	}
	if len(s.List) > 0 && !s.List[0].IsList() {
		if def, ok := x.aux[s.List[0].Atom]; ok {
			return x.inline(s.List[0].Atom, def, s.List[1:])
		}
	}
	xs := make([]sexp.Sexp, len(s.List))
	for i, a := range s.List {
		e, ok := x.expand(a)
		if !ok {
			return s, false
		}
		xs[i] = e
	}
	return sexp.List(xs...), true
}

func (x *inliner) inline(name string, def sexp.Sexp, args []sexp.Sexp) (sexp.Sexp, bool) {
	ps := def.List[2].List
	if len(ps) != len(args) || x.active[name] {
		return sexp.Sexp{}, false
	}
	sub := make(map[string]sexp.Sexp, len(ps))
	for i, p := range ps {
		if !p.IsList() || len(p.List) != 2 || p.List[0].IsList() {
			return sexp.Sexp{}, false
		}
		a, ok := x.expand(args[i])
		if !ok {
			return sexp.Sexp{}, false
		}
		sub[p.List[0].Atom] = a
	}
	x.active[name] = true
	defer delete(x.active, name)
	return x.expand(substitute(def.List[4], sub))
}

func substitute(s sexp.Sexp, sub map[string]sexp.Sexp) sexp.Sexp {
	if !s.IsList() {
		if r, ok := sub[s.Atom]; ok {
			return r
		}
		return s
	}
	xs := make([]sexp.Sexp, len(s.List))
	for i, x := range s.List {
		xs[i] = substitute(x, sub)
	}
	return sexp.List(xs...)
}

func (m *Model) parseDef(b *term.Builder, d *term.Decl, def, src sexp.Sexp) error {
	ps := def.List[2].List
	if len(ps) != d.Arity() {
		return fmt.Errorf("model: %s defined with %d parameters, declared %s", d.Name, len(ps), d.Signature())
	}
	envt := make(term.Env, len(ps))
	params := make([]*term.Decl, len(ps))
	for i, p := range ps {
		if !p.IsList() || len(p.List) != 2 {
			return fmt.Errorf("model: bad parameter %s of %s", p, d.Name)
		}
		srt, e := term.ParseSort(p.List[1].Atom)
		if e != nil {
			return fmt.Errorf("model: %s: %w", d.Name, e)
		}
		if srt != d.Domain[i] {
			return fmt.Errorf("model: parameter %d of %s has sort %s, declared %s", i, d.Name, srt, d.Domain[i])
		}
		params[i] = param(b, p.List[0].Atom, srt)
		envt[p.List[0].Atom] = b.App(params[i])
	}
	body, e := b.FromSexp(src, envt)
	if e != nil {
		if d.Arity() == 0 && src.IsList() {
			// e.g. (root-obj ...) or irrational values
			m.Set(d, Text{S: d.Range, T: src.String()})
			return nil
		}
		m.SetOpaque(d, def.String())
		return nil
	}
	if d.Range == term.SortReal && body.Sort() == term.SortInt {
		body = b.ToReal(body)
	}
	if body.Sort() != d.Range {
		return fmt.Errorf("model: %s has sort %s, declared %s", d.Name, body.Sort(), d.Range)
	}
	if l, ok := num.FromTerm(body); ok && d.Arity() == 0 {
		m.Set(d, l)
		return nil
	}
	m.Define(d, params, body)
	return nil
}

// param declares a parameter variable, renaming it if name is taken
// with another sort.
func param(b *term.Builder, name string, s term.Sort) *term.Decl {
	n := name
	for i := 1; ; i++ {
		if d, e := b.Declare(n, nil, s); e == nil {
			return d
		}
		n = name + "!" + strconv.Itoa(i)
	}
}
