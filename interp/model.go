// Copyright 2016 The Gini Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

// Package interp provides models: interpretations of declarations
// together with an evaluator for terms.
//
// A Model assigns values to constants and bodies to functions.  Eval
// with completion gives unassigned symbols a default value (false, 0,
// 0.0), the way solvers complete partial models.
package interp

import (
	"math/big"
	"strings"

	"github.com/go-air/oracle/inter"
	"github.com/go-air/oracle/num"
	"github.com/go-air/oracle/term"
)

// Func is the interpretation of a function declaration: Body over
// Params.
type Func struct {
	Params []*term.Decl
	Body   *term.Term
}

// Text is a value known only by its rendering.  Backends produce it for
// values the term algebra cannot express.
type Text struct {
	S term.Sort
	T string
}

func (v Text) Sort() term.Sort             { return v.S }
func (v Text) Bool() (bool, bool)          { return false, false }
func (v Text) Int64() (int64, bool)        { return 0, false }
func (v Text) Rat64() (int64, int64, bool) { return 0, 0, false }
func (v Text) String() string              { return v.T }

// Model implements inter.Model.
type Model struct {
	consts map[*term.Decl]inter.Value
	funcs  map[*term.Decl]*Func
	opaque map[*term.Decl]string
	order  []*term.Decl
}

// New creates an empty model.
func New() *Model {
	return &Model{
		consts: make(map[*term.Decl]inter.Value),
		funcs:  make(map[*term.Decl]*Func),
		opaque: make(map[*term.Decl]string)}
}

// Set assigns v to the constant d.
func (m *Model) Set(d *term.Decl, v inter.Value) {
	if d.Arity() != 0 {
		panic("interp: Set on function " + d.Name)
	}
	if !m.has(d) {
		m.order = append(m.order, d)
	}
	m.consts[d] = v
}

// Define interprets d as body over params.  A constant may be defined by
// a non-literal body with no params.
func (m *Model) Define(d *term.Decl, params []*term.Decl, body *term.Term) {
	if len(params) != d.Arity() {
		panic("interp: arity mismatch defining " + d.Name)
	}
	if !m.has(d) {
		m.order = append(m.order, d)
	}
	m.funcs[d] = &Func{Params: append([]*term.Decl(nil), params...), Body: body}
}

// SetOpaque records that d is interpreted by def, a definition that
// cannot be evaluated.  Terms mentioning d have no value, even with
// completion.
func (m *Model) SetOpaque(d *term.Decl, def string) {
	if !m.has(d) {
		m.order = append(m.order, d)
	}
	m.opaque[d] = def
}

func (m *Model) has(d *term.Decl) bool {
	_, c := m.consts[d]
	_, f := m.funcs[d]
	_, o := m.opaque[d]
	return c || f || o
}

// Lookup returns the interpretation of d, if any.
func (m *Model) Lookup(d *term.Decl) (inter.Value, *Func) {
	return m.consts[d], m.funcs[d]
}

// Len returns the number of interpreted declarations.
func (m *Model) Len() int {
	return len(m.order)
}

func (m *Model) Decls() []*term.Decl {
	return append([]*term.Decl(nil), m.order...)
}

// String renders m as SMT-LIB definitions, one per line.
func (m *Model) String() string {
	var sb strings.Builder
	for _, d := range m.order {
		if def, ok := m.opaque[d]; ok {
			sb.WriteString(def)
			sb.WriteByte('\n')
			continue
		}
		sb.WriteString("(define-fun ")
		sb.WriteString(term.Symbol(d.Name))
		sb.WriteString(" (")
		f := m.funcs[d]
		if f != nil {
			for i, p := range f.Params {
				if i > 0 {
					sb.WriteByte(' ')
				}
				sb.WriteString("(" + term.Symbol(p.Name) + " " + p.Range.String() + ")")
			}
		}
		sb.WriteString(") ")
		sb.WriteString(d.Range.String())
		sb.WriteByte(' ')
		if v, ok := m.consts[d]; ok {
			sb.WriteString(v.String())
		} else {
			sb.WriteString(f.Body.String())
		}
		sb.WriteString(")\n")
	}
	return sb.String()
}

// Default returns the completion value of sort s.
func Default(s term.Sort) *num.Lit {
	switch s {
	case term.SortBool:
		return num.BoolLit(false)
	case term.SortInt:
		return num.Int64Lit(0)
	default:
		return num.RatLit(new(big.Rat), term.SortReal)
	}
}
