// Copyright 2016 The Gini Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

package gen

import (
	"fmt"
	"math/rand"
	"sync"

	"github.com/go-air/oracle/term"
)

// make the rng seedable
var rng = rand.New(rand.NewSource(33))
var mu sync.Mutex

func Seed(s int64) {
	mu.Lock()
	defer mu.Unlock()
	rng = rand.New(rand.NewSource(s))
}

// Var returns the boolean constant v<i>.
func Var(b *term.Builder, i int) *term.Term {
	return b.Bool(fmt.Sprintf("v%d", i))
}

// PartVar returns a boolean stating that element i is in partition k.
func PartVar(b *term.Builder, i, k int) *term.Term {
	return b.Bool(fmt.Sprintf("p%d_%d", i, k))
}

// BinCycle generates
// (1,-2) (2,-3), (3,-4) ... (n-1, -(n)), (n, -1)
// which forces all variables equal.
func BinCycle(b *term.Builder, n int) []*term.Term {
	res := make([]*term.Term, 0, n)
	for i := 1; i <= n; i++ {
		j := i + 1
		if j > n {
			j = 1
		}
		res = append(res, b.Or(Var(b, i), b.Not(Var(b, j))))
	}
	return res
}

// Rand3Cnf generates a random 3cnf with
// n variables and m clauses.
func Rand3Cnf(b *term.Builder, n, m int) []*term.Term {
	mu.Lock() // for package rng
	defer mu.Unlock()
	res := make([]*term.Term, 0, m)
	vs := make([]int, 3)
	for i := 0; i < m; i++ {
		lits := make([]*term.Term, 3)
		for j := 0; j < 3; j++ {
			vs[j] = rng.Intn(n) + 1
			for j == 1 && vs[0] == vs[1] {
				vs[j] = rng.Intn(n) + 1
			}
			for j == 2 && (vs[0] == vs[2] || vs[1] == vs[2]) {
				vs[j] = rng.Intn(n) + 1
			}
			lits[j] = Var(b, vs[j])
			if rng.Intn(2) == 1 {
				lits[j] = b.Not(lits[j])
			}
		}
		res = append(res, b.Or(lits...))
	}
	return res
}

// HardRand3Cnf generates a random 3cnf
// with n variables.
func HardRand3Cnf(b *term.Builder, n int) []*term.Term {
	return Rand3Cnf(b, n, 4*n)
}

// RandCube returns a conjunction of up to maxSize random literals over
// v1..vn, as a list of assumptions.
func RandCube(b *term.Builder, maxSize, n int) []*term.Term {
	mu.Lock()
	defer mu.Unlock()
	sz := 1 + rng.Intn(maxSize)
	res := make([]*term.Term, 0, sz)
	for i := 0; i < sz; i++ {
		m := Var(b, rng.Intn(n)+1)
		if rng.Intn(2) == 1 {
			m = b.Not(m)
		}
		res = append(res, m)
	}
	return res
}

// Php generates a pigeon hole problem asking
// whether or not P pigeons can be placed
// in H holes with 1 pigeon per hole.
func Php(b *term.Builder, P, H int) []*term.Term {
	var res []*term.Term
	for i := 0; i < P; i++ {
		holes := make([]*term.Term, H)
		for j := 0; j < H; j++ {
			holes[j] = PartVar(b, i, j)
		}
		res = append(res, b.Or(holes...))
	}
	for i := 0; i < P; i++ {
		for j := 0; j < i; j++ {
			for h := 0; h < H; h++ {
				res = append(res, b.Or(b.Not(PartVar(b, i, h)), b.Not(PartVar(b, j, h))))
			}
		}
	}
	return res
}

// Partition states that there exists a partition of n
// elements into k parts.  Every model of the result is a partition with
// PartVar(i, k) true if and only if element i is in partition k.
func Partition(b *term.Builder, n, k int) []*term.Term {
	var res []*term.Term
	for i := 0; i < n; i++ {
		parts := make([]*term.Term, k)
		for j := 0; j < k; j++ {
			parts[j] = PartVar(b, i, j)
		}
		res = append(res, b.Or(parts...))
	}
	for i := 0; i < n; i++ {
		for j := 0; j < k; j++ {
			for h := 0; h < j; h++ {
				res = append(res, b.Or(b.Not(PartVar(b, i, j)), b.Not(PartVar(b, i, h))))
			}
		}
	}
	return res
}
