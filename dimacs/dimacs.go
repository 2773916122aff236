// Copyright 2016 The Gini Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

// Package dimacs reads DIMACS cnf and incremental cnf (inccnf) files.
//
// An inccnf file has the header "p inccnf" and may interleave clauses
// with assumption lines "a m1 m2 ... 0", each asking for a check of the
// clauses so far under the given literals.
package dimacs

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/go-air/gini/z"
)

// Vis receives the contents of a file.  Clauses and assumption sets are
// terminated by z.LitNull.
type Vis interface {
	// Init is called with the header counts; inccnf files have none and
	// give -1.
	Init(vars, clauses int)
	Add(m z.Lit)
	Assume(m z.Lit)
	Eof()
}

// Read reads a cnf or inccnf file from r into v.
func Read(r io.Reader, v Vis) error {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 16*1024*1024)
	var (
		line     int
		header   bool
		inc      bool
		open     bool // a clause is being added
		assuming bool
	)
scan:
	for sc.Scan() {
		line++
		fs := strings.Fields(sc.Text())
		if len(fs) == 0 {
			continue
		}
		switch {
		case strings.HasPrefix(fs[0], "c"):
			continue
		case fs[0] == "%":
			// SATLIB end marker
			break scan
		case fs[0] == "p":
			if header || open {
				return fmt.Errorf("line %d: unexpected header", line)
			}
			header = true
			var e error
			inc, e = readHeader(fs[1:], v)
			if e != nil {
				return fmt.Errorf("line %d: %w", line, e)
			}
			continue
		case fs[0] == "a":
			if !inc {
				return fmt.Errorf("line %d: assumptions outside inccnf", line)
			}
			if open || assuming {
				return fmt.Errorf("line %d: assumptions inside a clause", line)
			}
			assuming = true
			fs = fs[1:]
		}
		if !header {
			return fmt.Errorf("line %d: missing header", line)
		}
		for _, f := range fs {
			d, e := strconv.Atoi(f)
			if e != nil {
				return fmt.Errorf("line %d: bad literal %q", line, f)
			}
			m := z.LitNull
			if d != 0 {
				m = z.Dimacs2Lit(d)
			}
			if assuming {
				v.Assume(m)
				assuming = d != 0
				continue
			}
			v.Add(m)
			open = d != 0
		}
	}
	if e := sc.Err(); e != nil {
		return e
	}
	if open || assuming {
		return fmt.Errorf("line %d: unterminated clause", line)
	}
	if !header {
		return fmt.Errorf("missing header")
	}
	v.Eof()
	return nil
}

func readHeader(fs []string, v Vis) (inc bool, e error) {
	switch {
	case len(fs) == 1 && fs[0] == "inccnf":
		v.Init(-1, -1)
		return true, nil
	case len(fs) == 3 && fs[0] == "cnf":
		vars, e1 := strconv.Atoi(fs[1])
		clauses, e2 := strconv.Atoi(fs[2])
		if e1 != nil || e2 != nil || vars < 0 || clauses < 0 {
			return false, fmt.Errorf("bad header counts %q", strings.Join(fs, " "))
		}
		v.Init(vars, clauses)
		return false, nil
	}
	return false, fmt.Errorf("bad header %q", strings.Join(fs, " "))
}
