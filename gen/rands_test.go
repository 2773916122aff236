// Copyright 2016 The Gini Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

package gen

import (
	"testing"
	"time"

	"github.com/go-air/oracle/inter"
	"github.com/go-air/oracle/term"
)

func TestRands(t *testing.T) {
	b := term.NewBuilder()
	s := RandSession(time.Millisecond, 0)
	s.Push()
	s.Assert(Var(b, 1))
	s.Pop()
	for i := 0; i < 10; i++ {
		start := time.Now()
		o, e := s.Check(nil)
		if e != nil {
			t.Fatal(e)
		}
		if o.Res == inter.Unknown {
			t.Errorf("undetermined without timeout")
		}
		d := time.Since(start)
		if d > time.Millisecond+500*time.Microsecond {
			// the CI builders can't handle this.
			t.Logf("took too long %s\n", d)
		}
	}

	s = RandSession(time.Second, -1)
	s.SetTimeout(time.Microsecond)
	as := []*term.Term{Var(b, 2)}
	for i := 0; i < 10; i++ {
		o, _ := s.Check(as)
		if o.Res == inter.Sat {
			t.Errorf("fixed unsat result returned sat")
		}
		if o.Res == inter.Unknown && s.ReasonUnknown().Code != inter.Timeout {
			t.Errorf("unknown without timeout reason")
		}
		if o.Res == inter.Unsat && len(s.UnsatCore()) != 1 {
			t.Errorf("core")
		}
	}
	s.Close()
	if _, e := s.Check(nil); e == nil {
		t.Errorf("check after close")
	}
}

func TestPhpSize(t *testing.T) {
	b := term.NewBuilder()
	cs := Php(b, 3, 2)
	// 3 pigeon clauses, 3 pairs x 2 holes
	if len(cs) != 3+6 {
		t.Errorf("php(3,2) has %d clauses", len(cs))
	}
	if len(BinCycle(b, 4)) != 4 {
		t.Errorf("bin cycle")
	}
	if n := len(HardRand3Cnf(b, 10)); n != 40 {
		t.Errorf("rand 3cnf has %d clauses", n)
	}
}
