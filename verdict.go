// Copyright 2016 The Gini Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

package oracle

import (
	"github.com/go-air/oracle/inter"
	"github.com/go-air/oracle/witness"
)

// VerdictKind classifies the answer to a proof check.
type VerdictKind int

const (
	// Proof: the obligations follow from the assumptions.
	Proof VerdictKind = iota
	// Counterexample: some assignment satisfies the assumptions and
	// violates an obligation.
	Counterexample
	// Unknown: the backend could not decide.
	Unknown
)

func (k VerdictKind) String() string {
	switch k {
	case Proof:
		return "Proof"
	case Counterexample:
		return "Counterexample"
	}
	return "Unknown"
}

// Verdict is the answer to a proof check.  Witness is set for
// counterexamples and Reason for unknowns.
type Verdict struct {
	Kind    VerdictKind
	Witness *witness.Assignment
	Reason  inter.ReasonUnknown
}

// String renders v as Proof, Counterexample or Unknown (reason: r).
func (v *Verdict) String() string {
	if v.Kind == Unknown {
		return "Unknown (reason: " + v.Reason.String() + ")"
	}
	return v.Kind.String()
}

// verdict maps a backend outcome to a verdict.
func verdict(o inter.Outcome) *Verdict {
	switch o.Res {
	case inter.Unsat:
		return &Verdict{Kind: Proof}
	case inter.Sat:
		if o.Model == nil {
			return &Verdict{Kind: Unknown, Reason: inter.ReasonUnknown{Code: inter.ModelUnavailable}}
		}
		return &Verdict{Kind: Counterexample, Witness: witness.New(o.Model, witness.Consistent)}
	}
	r := o.Reason
	if r.IsZero() {
		r = inter.ReasonUnknown{Code: inter.Other, Text: "unknown"}
	}
	return &Verdict{Kind: Unknown, Reason: r}
}
