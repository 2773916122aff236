// Copyright 2016 The Gini Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

package gen

import (
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/go-air/oracle/inter"
	"github.com/go-air/oracle/interp"
	"github.com/go-air/oracle/term"
)

// RandSession creates an inter.Session which just returns a result to
// Check within a random period of time chosen from [0..d).  The result
// may be specified ahead of time, however if the result is 0, then a
// random value from {-1,1} is chosen.  A timeout shorter than the chosen
// period makes the check undetermined.
//
// Satisfiable checks come with an empty model; unsatisfiable ones have
// all assumptions as core.
//
// This is useful for testing applications using inter.Session
func RandSession(d time.Duration, res int) inter.Session {
	return RandSessionr(d, res, rand.NewSource(33))
}

func RandSessionr(d time.Duration, res int, src rand.Source) inter.Session {
	return &randS{
		dur:  d,
		res:  res,
		rand: rand.New(src),
		lvl:  []int{0}}
}

type randS struct {
	mu      sync.Mutex
	dur     time.Duration
	res     int
	rand    *rand.Rand
	lvl     []int
	n       int
	timeout time.Duration
	core    []*term.Term
	reason  inter.ReasonUnknown
	closed  bool
}

func (r *randS) Push() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lvl = append(r.lvl, r.n)
}

func (r *randS) Pop() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.lvl) == 1 {
		panic("gen: pop at scope 0")
	}
	r.n = r.lvl[len(r.lvl)-1]
	r.lvl = r.lvl[:len(r.lvl)-1]
}

func (r *randS) Assert(f *term.Term) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.n++
}

func (r *randS) Check(as []*term.Term) (inter.Outcome, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return inter.Outcome{}, fmt.Errorf("%s: closed", r)
	}
	r.core = nil
	w := time.Duration(0)
	if ns := r.dur.Nanoseconds(); ns > 0 {
		w = time.Duration(r.rand.Int63n(ns))
	}
	if r.timeout > 0 && w > r.timeout {
		time.Sleep(r.timeout)
		r.reason = inter.ReasonUnknown{Code: inter.Timeout}
		return inter.Outcome{Res: inter.Unknown, Reason: r.reason}, nil
	}
	time.Sleep(w)
	res := r.res
	if res == 0 {
		res = 1
		if r.rand.Intn(2) == 0 {
			res = -1
		}
	}
	if res == 1 {
		return inter.Outcome{Res: inter.Sat, Model: interp.New()}, nil
	}
	r.core = append(r.core, as...)
	return inter.Outcome{Res: inter.Unsat}, nil
}

func (r *randS) UnsatCore() []*term.Term {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.core
}

func (r *randS) ReasonUnknown() inter.ReasonUnknown {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.reason
}

func (r *randS) SetTimeout(d time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.timeout = d
}

func (r *randS) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
	return nil
}

func (r *randS) String() string {
	return fmt.Sprintf("*randS[%s]", r.dur)
}
