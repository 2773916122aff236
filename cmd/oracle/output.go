// Copyright 2016 The Gini Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"gopkg.in/yaml.v3"

	"github.com/go-air/oracle/problem"
)

type printer struct {
	w                        io.Writer
	pass, fail, undec, faint *color.Color
}

// printer returns a printer on stdout coloring verdicts according to
// the color flag; auto colors terminals only.
func (a *app) printer() (*printer, error) {
	var on bool
	switch a.colorMode {
	case "always":
		on = true
	case "never":
	case "auto":
		if f, ok := a.stdout.(*os.File); ok {
			on = isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
		}
	default:
		return nil, fmt.Errorf("unknown color mode %q", a.colorMode)
	}
	p := &printer{
		w:     a.stdout,
		pass:  color.New(color.FgGreen, color.Bold),
		fail:  color.New(color.FgRed, color.Bold),
		undec: color.New(color.FgYellow, color.Bold),
		faint: color.New(color.Faint)}
	for _, c := range []*color.Color{p.pass, p.fail, p.undec, p.faint} {
		if on {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p, nil
}

func (p *printer) style(s problem.Status) *color.Color {
	switch s {
	case problem.Pass:
		return p.pass
	case problem.Undecided:
		return p.undec
	}
	return p.fail
}

func (p *printer) file(r *fileResult) {
	if r.err != nil {
		fmt.Fprintf(p.w, "%s: %s %v\n", r.File, p.fail.Sprint("error:"), r.err)
		return
	}
	rep := r.Report
	fmt.Fprintf(p.w, "%s %s\n", rep.Name, p.faint.Sprintf("(%s)", rep.Backend))
	for i := range rep.Results {
		res := &rep.Results[i]
		fmt.Fprintf(p.w, "  step %d %s %s: %s",
			res.Step, p.faint.Sprintf("[level %d]", res.Level), res.Action,
			p.style(res.Status).Sprint(res.Verdict))
		if res.Expect != "" {
			fmt.Fprintf(p.w, " (expected %s)", res.Expect)
		}
		if len(res.Core) > 0 {
			fmt.Fprintf(p.w, " (core: %s)", strings.Join(res.Core, " "))
		}
		fmt.Fprintln(p.w)
		for _, b := range res.Shown {
			fmt.Fprintf(p.w, "    %s = %s\n", b.Name, b.Value)
		}
		for _, b := range res.Unaccessed {
			if b.Value == "" {
				fmt.Fprintf(p.w, "    %s\n", p.faint.Sprint(b.Name))
				continue
			}
			fmt.Fprintf(p.w, "    %s\n", p.faint.Sprintf("%s = %s", b.Name, b.Value))
		}
	}
	st := rep.Status()
	fmt.Fprintf(p.w, "  %s\n", p.style(st).Sprint(st))
}

func writeYAML(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if e := enc.Encode(v); e != nil {
		return e
	}
	return enc.Close()
}
