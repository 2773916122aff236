// Copyright 2016 The Gini Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

package dimacs

import (
	"fmt"
	"io"
	"strings"

	"github.com/go-air/gini/z"

	"github.com/go-air/oracle/problem"
)

// Problem reads a cnf or inccnf file as a problem over the boolean
// constants v1, v2, ...  The clauses are assumptions and the obligation
// is false, so a check is a Proof if the clauses are unsatisfiable and a
// Counterexample, whose witness is a model, otherwise.  A cnf file is
// checked once at the end, an inccnf file at each assumption line.
func Problem(r io.Reader) (*problem.Problem, error) {
	pb := &builder{p: &problem.Problem{}}
	if e := Read(r, pb); e != nil {
		return nil, e
	}
	return pb.p, nil
}

type builder struct {
	p      *problem.Problem
	inc    bool
	nVars  int
	ms     []string
	checks int
}

func (pb *builder) Init(vars, clauses int) {
	pb.inc = vars < 0
	pb.p.Steps = append(pb.p.Steps, problem.Step{Prove: "false"})
	pb.declare(vars)
}

func (pb *builder) declare(n int) {
	for ; pb.nVars < n; pb.nVars++ {
		pb.p.Declare = append(pb.p.Declare, problem.Decl{Name: fmt.Sprintf("v%d", pb.nVars+1), Signature: "Bool"})
	}
}

func (pb *builder) lit(m z.Lit) string {
	d := m.Dimacs()
	if d < 0 {
		pb.declare(-d)
		return fmt.Sprintf("(not v%d)", -d)
	}
	pb.declare(d)
	return fmt.Sprintf("v%d", d)
}

func (pb *builder) Add(m z.Lit) {
	if m != z.LitNull {
		pb.ms = append(pb.ms, pb.lit(m))
		return
	}
	var c string
	switch len(pb.ms) {
	case 0:
		c = "false"
	case 1:
		c = pb.ms[0]
	default:
		c = "(or " + strings.Join(pb.ms, " ") + ")"
	}
	pb.p.Steps = append(pb.p.Steps, problem.Step{Assume: c})
	pb.ms = pb.ms[:0]
}

func (pb *builder) Assume(m z.Lit) {
	if m != z.LitNull {
		pb.ms = append(pb.ms, pb.lit(m))
		return
	}
	as := append([]string(nil), pb.ms...)
	pb.p.Steps = append(pb.p.Steps, problem.Step{Check: &problem.Check{Assuming: as}})
	pb.ms = pb.ms[:0]
	pb.checks++
}

func (pb *builder) Eof() {
	if !pb.inc || pb.checks == 0 {
		pb.p.Steps = append(pb.p.Steps, problem.Step{Check: &problem.Check{}})
	}
}
