// Copyright 2016 The Gini Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

package main

import (
	"compress/bzip2"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/go-air/oracle/dimacs"
	"github.com/go-air/oracle/problem"
)

type readCloser struct {
	io.Reader
	close func() error
}

func (r readCloser) Close() error {
	return r.close()
}

// open opens p, decompressing .gz and .bz2 files.  "-" is stdin.
func (a *app) open(p string) (io.ReadCloser, error) {
	if p == "-" {
		return io.NopCloser(a.stdin), nil
	}
	f, e := os.Open(p)
	if e != nil {
		return nil, e
	}
	if strings.HasSuffix(p, ".gz") {
		r, e := gzip.NewReader(f)
		if e != nil {
			f.Close()
			return nil, e
		}
		return readCloser{r, func() error {
			r.Close()
			return f.Close()
		}}, nil
	}
	if strings.HasSuffix(p, ".bz2") {
		return readCloser{bzip2.NewReader(f), f.Close}, nil
	}
	return f, nil
}

type format int

const (
	yamlFormat format = iota
	cnfFormat
)

// path2Format decides the format of p by its extension, ignoring
// compression suffixes.
func path2Format(p string) format {
	q := strings.TrimSuffix(strings.TrimSuffix(p, ".gz"), ".bz2")
	if strings.HasSuffix(q, ".cnf") || strings.HasSuffix(q, ".icnf") {
		return cnfFormat
	}
	return yamlFormat
}

func (a *app) load(p string) (*problem.Problem, error) {
	r, e := a.open(p)
	if e != nil {
		return nil, e
	}
	defer r.Close()
	var prob *problem.Problem
	if path2Format(p) == cnfFormat {
		prob, e = dimacs.Problem(r)
	} else {
		prob, e = problem.Load(r)
	}
	if e != nil {
		return nil, fmt.Errorf("%s: %w", p, e)
	}
	if prob.Name == "" {
		prob.Name = p
	}
	return prob, nil
}
