// Copyright 2016 The Gini Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

// Package problem reads proof problems from YAML files and runs them
// against an oracle.
//
// A problem declares symbols and lists steps:
//
//	backend: sat            # optional override
//	timeout: 5s             # optional
//	declare: {p: Bool, x: Int, f: "(Real) Real"}
//	steps:
//	  - assume: "(> x 0)"
//	  - push: true
//	  - prove: "(> (* x x) 0)"
//	  - check: {show: ["x"], assuming: ["(< x 10)"], expect: proof}
//	  - pop: true
//	  - exists_forall: {universal: [x], show: [p]}
//
// Terms are SMT-LIB.  Declarations keep their order in the file.
package problem

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/go-air/oracle/sexp"
	"github.com/go-air/oracle/term"
)

// Problem is a parsed problem file.
type Problem struct {
	Name    string        `yaml:"name,omitempty"`
	Backend string        `yaml:"backend,omitempty"`
	Timeout time.Duration `yaml:"timeout,omitempty"`
	Declare Decls         `yaml:"declare"`
	Steps   []Step        `yaml:"steps"`
}

// Decl is a declaration "name: signature", where signature is a sort or
// "(dom...) range".
type Decl struct {
	Name      string
	Signature string
}

// Decls is a list of declarations read from a YAML mapping, in order.
type Decls []Decl

func (ds *Decls) UnmarshalYAML(n *yaml.Node) error {
	if n.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: declare must be a mapping", n.Line)
	}
	for i := 0; i+1 < len(n.Content); i += 2 {
		k, v := n.Content[i], n.Content[i+1]
		if v.Kind != yaml.ScalarNode {
			return fmt.Errorf("line %d: signature of %s must be a string", v.Line, k.Value)
		}
		*ds = append(*ds, Decl{Name: k.Value, Signature: v.Value})
	}
	return nil
}

func (ds Decls) MarshalYAML() (interface{}, error) {
	n := &yaml.Node{Kind: yaml.MappingNode, Style: yaml.FlowStyle}
	for _, d := range ds {
		n.Content = append(n.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Value: d.Name},
			&yaml.Node{Kind: yaml.ScalarNode, Value: d.Signature})
	}
	return n, nil
}

// Step is one step of a problem.  Exactly one field is set.
type Step struct {
	Assume       string        `yaml:"assume,omitempty"`
	Prove        string        `yaml:"prove,omitempty"`
	Push         bool          `yaml:"push,omitempty"`
	Pop          bool          `yaml:"pop,omitempty"`
	Check        *Check        `yaml:"check,omitempty"`
	ExistsForall *ExistsForall `yaml:"exists_forall,omitempty"`
}

// Check checks the obligations, under extra assumptions.
type Check struct {
	Show     []string `yaml:"show,omitempty"`
	Assuming []string `yaml:"assuming,omitempty"`
	// Expect is proof, counterexample or unknown.
	Expect string `yaml:"expect,omitempty"`
}

// ExistsForall checks the exists-forall problem of the current
// assertions with the given universal symbols.
type ExistsForall struct {
	Universal []string `yaml:"universal"`
	Show      []string `yaml:"show,omitempty"`
	// Expect is sat, unsat or unknown.
	Expect string `yaml:"expect,omitempty"`
}

func (s *Step) kinds() []string {
	var ks []string
	if s.Assume != "" {
		ks = append(ks, "assume")
	}
	if s.Prove != "" {
		ks = append(ks, "prove")
	}
	if s.Push {
		ks = append(ks, "push")
	}
	if s.Pop {
		ks = append(ks, "pop")
	}
	if s.Check != nil {
		ks = append(ks, "check")
	}
	if s.ExistsForall != nil {
		ks = append(ks, "exists_forall")
	}
	return ks
}

// Load reads a problem from r.
func Load(r io.Reader) (*Problem, error) {
	p := &Problem{}
	d := yaml.NewDecoder(r)
	d.KnownFields(true)
	if e := d.Decode(p); e != nil {
		if errors.Is(e, io.EOF) {
			return nil, fmt.Errorf("empty problem")
		}
		return nil, fmt.Errorf("failed to parse problem: %w", e)
	}
	if e := p.Validate(); e != nil {
		return nil, e
	}
	return p, nil
}

// Validate checks the structure of p; terms are checked when run.
func (p *Problem) Validate() error {
	for i := range p.Steps {
		ks := p.Steps[i].kinds()
		if len(ks) != 1 {
			return fmt.Errorf("step %d: want exactly one action, got %d (%s)", i+1, len(ks), strings.Join(ks, ", "))
		}
		if c := p.Steps[i].Check; c != nil {
			switch c.Expect {
			case "", "proof", "counterexample", "unknown":
			default:
				return fmt.Errorf("step %d: unknown expectation %q", i+1, c.Expect)
			}
		}
		if ef := p.Steps[i].ExistsForall; ef != nil {
			switch ef.Expect {
			case "", "sat", "unsat", "unknown":
			default:
				return fmt.Errorf("step %d: unknown expectation %q", i+1, ef.Expect)
			}
		}
	}
	return nil
}

// Write renders p as YAML.
func (p *Problem) Write(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if e := enc.Encode(p); e != nil {
		return e
	}
	return enc.Close()
}

// declare declares the symbols of p in b.
func (p *Problem) declare(b *term.Builder) error {
	for _, d := range p.Declare {
		dom, rng, e := ParseSignature(d.Signature)
		if e != nil {
			return fmt.Errorf("declare %s: %w", d.Name, e)
		}
		if _, e := b.Declare(d.Name, dom, rng); e != nil {
			return fmt.Errorf("declare %s: %w", d.Name, e)
		}
	}
	return nil
}

// ParseSignature parses "Sort" or "(Sort...) Sort".
func ParseSignature(src string) ([]term.Sort, term.Sort, error) {
	xs, e := sexp.ParseAll(src)
	if e != nil {
		return nil, 0, e
	}
	var dom []term.Sort
	switch len(xs) {
	case 1:
	case 2:
		if !xs[0].IsList() {
			return nil, 0, fmt.Errorf("bad signature %q", src)
		}
		for _, x := range xs[0].List {
			s, e := term.ParseSort(x.Atom)
			if e != nil || x.IsList() {
				return nil, 0, fmt.Errorf("bad signature %q", src)
			}
			dom = append(dom, s)
		}
	default:
		return nil, 0, fmt.Errorf("bad signature %q", src)
	}
	r := xs[len(xs)-1]
	if r.IsList() {
		return nil, 0, fmt.Errorf("bad signature %q", src)
	}
	rng, e := term.ParseSort(r.Atom)
	if e != nil {
		return nil, 0, e
	}
	return dom, rng, nil
}
