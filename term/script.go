// Copyright 2016 The Gini Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

package term

import (
	"bufio"
	"io"
)

// FreeDecls returns the declarations occurring free in ts, in order of
// first occurrence.
func FreeDecls(ts ...*Term) []*Decl {
	var res []*Decl
	seen := make(map[*Decl]bool)
	done := make(map[*Term]bool)
	bound := make(map[*Decl]int)
	var vis func(t *Term)
	vis = func(t *Term) {
		// results below a binder depend on what is bound
		top := len(bound) == 0
		if top && done[t] {
			return
		}
		switch t.op {
		case OpApp:
			if bound[t.decl] == 0 && !seen[t.decl] {
				seen[t.decl] = true
				res = append(res, t.decl)
			}
		case OpForall, OpExists:
			for _, v := range t.vars {
				bound[v]++
			}
			defer func() {
				for _, v := range t.vars {
					if bound[v]--; bound[v] == 0 {
						delete(bound, v)
					}
				}
			}()
		}
		for _, a := range t.args {
			vis(a)
		}
		if top {
			done[t] = true
		}
	}
	for _, t := range ts {
		vis(t)
	}
	return res
}

// WriteScript writes an SMT-LIB script declaring every free declaration
// of assertions followed by one assert command per assertion.  It does
// not write (check-sat).
func WriteScript(w io.Writer, assertions []*Term) error {
	bw := bufio.NewWriter(w)
	for _, d := range FreeDecls(assertions...) {
		bw.WriteString(d.Signature())
		bw.WriteByte('\n')
	}
	for _, a := range assertions {
		bw.WriteString("(assert ")
		bw.WriteString(a.String())
		bw.WriteString(")\n")
	}
	return bw.Flush()
}
