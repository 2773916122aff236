// Copyright 2016 The Gini Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

package term

import (
	"math/big"
	"strings"
)

// String renders t in SMT-LIB 2 syntax.
func (t *Term) String() string {
	var sb strings.Builder
	t.write(&sb)
	return sb.String()
}

func (t *Term) write(sb *strings.Builder) {
	switch t.op {
	case OpTrue, OpFalse:
		sb.WriteString(t.op.String())
	case OpNum:
		sb.WriteString(FormatNum(t.val, t.sort))
	case OpApp:
		if len(t.args) == 0 {
			sb.WriteString(Symbol(t.decl.Name))
			return
		}
		sb.WriteByte('(')
		sb.WriteString(Symbol(t.decl.Name))
		writeArgs(sb, t.args)
		sb.WriteByte(')')
	case OpForall, OpExists:
		sb.WriteByte('(')
		sb.WriteString(t.op.String())
		sb.WriteString(" (")
		for i, v := range t.vars {
			if i > 0 {
				sb.WriteByte(' ')
			}
			sb.WriteByte('(')
			sb.WriteString(Symbol(v.Name))
			sb.WriteByte(' ')
			sb.WriteString(v.Range.String())
			sb.WriteByte(')')
		}
		sb.WriteString(") ")
		t.args[0].write(sb)
		sb.WriteByte(')')
	default:
		sb.WriteByte('(')
		sb.WriteString(t.op.String())
		writeArgs(sb, t.args)
		sb.WriteByte(')')
	}
}

func writeArgs(sb *strings.Builder, args []*Term) {
	for _, a := range args {
		sb.WriteByte(' ')
		a.write(sb)
	}
}

// FormatNum renders a numeral of sort s the way solvers print model
// values:
//
//	Int:  5, (- 5)
//	Real: 5.0, (/ 10.0 3.0), (- (/ 1.0 3.0))
func FormatNum(v *big.Rat, s Sort) string {
	if v.Sign() < 0 {
		return "(- " + FormatNum(new(big.Rat).Neg(v), s) + ")"
	}
	if s == SortInt {
		return v.Num().String()
	}
	if v.IsInt() {
		return v.Num().String() + ".0"
	}
	return "(/ " + v.Num().String() + ".0 " + v.Denom().String() + ".0)"
}

// Symbol renders name as an SMT-LIB symbol, quoting it with bars if it
// is not a simple symbol.
func Symbol(name string) string {
	if isSimple(name) {
		return name
	}
	return "|" + name + "|"
}

func isSimple(name string) bool {
	if name == "" || (name[0] >= '0' && name[0] <= '9') {
		return false
	}
	for i := 0; i < len(name); i++ {
		c := name[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		case strings.IndexByte("~!@$%^&*_-+=<>.?/", c) >= 0:
		default:
			return false
		}
	}
	return true
}
