// Copyright 2016 The Gini Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

package oracle_test

import (
	"fmt"
	"testing"

	"github.com/go-air/oracle"
	"github.com/go-air/oracle/term"
)

func BenchmarkSudoku(b *testing.B) {
	for i := 0; i < b.N; i++ {
		Example_sudoku()
	}
}

func Example_sudoku() {
	b := term.NewBuilder()
	o, e := oracle.New(b, oracle.Sat)
	if e != nil {
		fmt.Println(e)
		return
	}
	defer o.Close()

	// 4 rows, 4 cols, 4 boxes, 4 numbers
	// one boolean for each triple (row, col, n)
	// indicating whether or not the number n
	// appears in position (row,col).
	var cell = func(row, col, n int) *term.Term {
		return b.Bool(fmt.Sprintf("c%d%d%d", row, col, n))
	}
	var distinct = func(x, y *term.Term) {
		o.AddAssumption(b.Or(b.Not(x), b.Not(y)))
	}

	// every position on the board has a number
	for row := 0; row < 4; row++ {
		for col := 0; col < 4; col++ {
			var ns []*term.Term
			for n := 1; n <= 4; n++ {
				ns = append(ns, cell(row, col, n))
			}
			o.AddAssumption(b.Or(ns...))
		}
	}

	// every row and every column has unique numbers
	for n := 1; n <= 4; n++ {
		for i := 0; i < 4; i++ {
			for a := 0; a < 4; a++ {
				for c := a + 1; c < 4; c++ {
					distinct(cell(i, a, n), cell(i, c, n))
					distinct(cell(a, i, n), cell(c, i, n))
				}
			}
		}
	}

	// every box has unique numbers
	offs := []struct{ x, y int }{{0, 0}, {0, 1}, {1, 0}, {1, 1}}
	for x := 0; x < 4; x += 2 {
		for y := 0; y < 4; y += 2 {
			for n := 1; n <= 4; n++ {
				for i, offA := range offs {
					for _, offB := range offs[i+1:] {
						distinct(cell(x+offA.x, y+offA.y, n), cell(x+offB.x, y+offB.y, n))
					}
				}
			}
		}
	}

	// the givens leave six solutions
	o.AddAssumption(cell(0, 0, 1))
	o.AddAssumption(cell(0, 1, 2))
	o.AddAssumption(cell(1, 2, 1))
	o.AddAssumption(cell(2, 1, 1))
	o.AddAssumption(cell(3, 3, 1))

	for _, claim := range []struct{ row, col, n int }{{1, 3, 2}, {0, 2, 3}} {
		o.Push()
		o.AddProvable(cell(claim.row, claim.col, claim.n))
		v, e := o.CheckProof()
		if e != nil {
			fmt.Println(e)
			return
		}
		fmt.Printf("(%d,%d)=%d: %s\n", claim.row, claim.col, claim.n, v)
		if v.Kind == oracle.Counterexample {
			for col := 0; col < 4; col++ {
				for n := 1; n <= 4; n++ {
					if ok, _ := v.Witness.EvalBool(cell(0, col, n)); ok {
						fmt.Printf("%d", n)
						break
					}
				}
				if col != 3 {
					fmt.Printf(" ")
				}
			}
			fmt.Printf("\n")
		}
		o.Pop()
	}
	// Output: (1,3)=2: Proof
	// (0,2)=3: Counterexample
	// 1 2 4 3
}
