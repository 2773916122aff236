// Copyright 2016 The Gini Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

package term

import (
	"fmt"
	"strings"
)

// Sort is the type of a term.
type Sort uint8

const (
	SortNone Sort = iota
	SortBool
	SortInt
	SortReal
)

func (s Sort) String() string {
	switch s {
	case SortBool:
		return "Bool"
	case SortInt:
		return "Int"
	case SortReal:
		return "Real"
	default:
		return "None"
	}
}

// IsNumeric returns whether s is Int or Real.
func (s Sort) IsNumeric() bool {
	return s == SortInt || s == SortReal
}

// ParseSort parses the SMT-LIB name of a sort.
func ParseSort(name string) (Sort, error) {
	switch name {
	case "Bool":
		return SortBool, nil
	case "Int":
		return SortInt, nil
	case "Real":
		return SortReal, nil
	}
	return SortNone, fmt.Errorf("unknown sort %q", name)
}

// Decl is a declared (uninterpreted) symbol.  A Decl with an empty
// Domain is a constant.
//
// Decls are created and owned by a Builder; a name denotes exactly one
// Decl per Builder.
type Decl struct {
	id     uint32
	Name   string
	Domain []Sort
	Range  Sort
}

// ID returns the identifier of d, unique within its Builder.
func (d *Decl) ID() uint32 {
	return d.id
}

// Arity returns the number of arguments d takes.
func (d *Decl) Arity() int {
	return len(d.Domain)
}

// String returns the name of d.
func (d *Decl) String() string {
	return d.Name
}

// Signature returns the SMT-LIB declaration of d.
//
//	(declare-fun f (Int Real) Bool)
func (d *Decl) Signature() string {
	var sb strings.Builder
	sb.WriteString("(declare-fun ")
	sb.WriteString(Symbol(d.Name))
	sb.WriteString(" (")
	for i, s := range d.Domain {
		if i > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(s.String())
	}
	sb.WriteString(") ")
	sb.WriteString(d.Range.String())
	sb.WriteByte(')')
	return sb.String()
}

func sameSig(d *Decl, dom []Sort, rng Sort) bool {
	if d.Range != rng || len(d.Domain) != len(dom) {
		return false
	}
	for i := range dom {
		if d.Domain[i] != dom[i] {
			return false
		}
	}
	return true
}
