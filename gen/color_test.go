// Copyright 2016 The Gini Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

package gen_test

import (
	"testing"

	"github.com/go-air/oracle/gen"
	"github.com/go-air/oracle/inter"
	"github.com/go-air/oracle/sat"
	"github.com/go-air/oracle/term"
)

func TestRandGraph(t *testing.T) {
	g := gen.RandGraph(100, 2000)
	if len(g) != 100 {
		t.Errorf("wrong number of nodes %d != %d\n", len(g), 100)
	}
	m := 0
	for _, es := range g {
		m += len(es)
	}
	if m != 4000 {
		t.Errorf("wrong number of edges: %d != 4000\n", m)
	}
	if gen.RandGraph(3, 4) != nil {
		t.Errorf("too many edges accepted")
	}
}

func TestColorTriangle(t *testing.T) {
	tri := [][]int{{1, 2}, {0, 2}, {0, 1}}
	for k, want := range map[int]int{2: inter.Unsat, 3: inter.Sat} {
		b := term.NewBuilder()
		s := sat.New()
		for _, c := range gen.Color(b, tri, k) {
			s.Assert(c)
		}
		o, e := s.Check(nil)
		if e != nil {
			t.Fatal(e)
		}
		if o.Res != want {
			t.Errorf("%d-coloring triangle: got %d want %d", k, o.Res, want)
		}
	}
}

func TestRandColorComplete(t *testing.T) {
	// 10 edges on 5 nodes is K5.
	for k, want := range map[int]int{4: inter.Unsat, 5: inter.Sat} {
		b := term.NewBuilder()
		s := sat.New()
		for _, c := range gen.RandColor(b, 5, 10, k) {
			s.Assert(c)
		}
		o, e := s.Check(nil)
		if e != nil {
			t.Fatal(e)
		}
		if o.Res != want {
			t.Errorf("%d-coloring K5: got %d want %d", k, o.Res, want)
		}
	}
}
