// Copyright 2016 The Gini Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

package inter

import "strings"

// Code classifies why a check was undetermined.
type Code int

const (
	Other Code = iota
	Timeout
	Canceled
	Memout
	Incomplete
	Unsupported
	ModelUnavailable
)

var codeNames = [...]string{
	Other:            "other",
	Timeout:          "timeout",
	Canceled:         "canceled",
	Memout:           "memout",
	Incomplete:       "incomplete",
	Unsupported:      "unsupported",
	ModelUnavailable: "model unavailable",
}

func (c Code) String() string {
	if c >= 0 && int(c) < len(codeNames) {
		return codeNames[c]
	}
	return "other"
}

// ReasonUnknown is the diagnostic attached to an undetermined result.
// Text carries the backend's own words, if any.
type ReasonUnknown struct {
	Code Code
	Text string
}

// IsZero returns whether r carries no diagnostic at all.
func (r ReasonUnknown) IsZero() bool {
	return r.Code == Other && r.Text == ""
}

// String renders r in one line.
func (r ReasonUnknown) String() string {
	switch {
	case r.Code == Other && r.Text != "":
		return r.Text
	case r.Text == "" || r.Text == r.Code.String():
		return r.Code.String()
	default:
		return r.Code.String() + ": " + r.Text
	}
}

// ParseReasonUnknown classifies a backend's reason text.  Unrecognized
// text is kept verbatim with code Other.
func ParseReasonUnknown(s string) ReasonUnknown {
	s = strings.TrimSpace(s)
	l := strings.ToLower(s)
	switch {
	case l == "timeout" || strings.Contains(l, "timeout"):
		return ReasonUnknown{Code: Timeout}
	case l == "canceled" || l == "cancelled" || l == "interrupted":
		return ReasonUnknown{Code: Canceled}
	case strings.Contains(l, "memout") || strings.Contains(l, "memory"):
		return ReasonUnknown{Code: Memout, Text: s}
	case strings.Contains(l, "incomplete"):
		return ReasonUnknown{Code: Incomplete, Text: s}
	case l == "":
		return ReasonUnknown{Code: Other, Text: "unknown"}
	}
	return ReasonUnknown{Code: Other, Text: s}
}
