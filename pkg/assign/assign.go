/*
 * Copyright (c) 2024, NVIDIA CORPORATION.  All rights reserved.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package assign solves the one-to-one port-to-bus-signal assignment
// problem (spec.md §4.4): a greedy pass first, falling back to the
// continuous LP relaxation of the underlying transportation problem when
// the greedy result collides.
package assign

import (
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize/convex/lp"

	"github.com/hdlportinf/busmap/internal/lex"
	"github.com/hdlportinf/busmap/pkg/matchcost"
	"github.com/hdlportinf/busmap/pkg/metrics"
	"github.com/hdlportinf/busmap/pkg/model"
)

// lpThreshold is the cutoff applied to the LP relaxation's solution vector
// to recover a 0/1 assignment (spec.md §4.4: "threshold at 0.01").
const lpThreshold = 0.01

// wordCache memoizes lex.WordSet across the many (interface, bus-def) pairs
// CostMatrix evaluates over the lifetime of a process; port and signal names
// repeat constantly (e.g. "aclk", "aresetn" on every AXI bundle).
var wordCache = lex.NewCache(0)

// DupWords returns the words appearing in every one of ports — these carry
// no discriminatory power and are excluded from the per-pair name cost
// (spec.md §4.4).
func DupWords(ports []model.Port) map[string]struct{} {
	if len(ports) == 0 {
		return map[string]struct{}{}
	}
	counts := make(map[string]int)
	for _, p := range ports {
		for w := range wordCache.WordSet(p.Name) {
			counts[w]++
		}
	}
	dup := make(map[string]struct{})
	for w, c := range counts {
		if c == len(ports) {
			dup[w] = struct{}{}
		}
	}
	return dup
}

// PortCost computes the MatchCost triple between a physical port p and a
// bus signal q (spec.md §4.4): name is Jaccard distance over word tokens
// (duplicated tokens of the owning interface excluded from p's side only),
// width disagreement counts only when both sides are known, direction
// disagreement always counts.
func PortCost(p, q model.Port, dupWords map[string]struct{}) matchcost.Cost {
	pWords := subtract(wordCache.WordSet(p.Name), dupWords)
	qWords := wordCache.WordSet(q.Name)
	nc := lex.JaccardDist(pWords, qWords)

	wc := 0
	if p.Width != nil && q.Width != nil && *p.Width != *q.Width {
		wc = 1
	}
	dc := 0
	if p.Direction != q.Direction {
		dc = 1
	}
	return matchcost.Cost{NC: nc, WC: wc, DC: dc}
}

func subtract(a, b map[string]struct{}) map[string]struct{} {
	out := make(map[string]struct{}, len(a))
	for w := range a {
		if _, ok := b[w]; !ok {
			out[w] = struct{}{}
		}
	}
	return out
}

// CostMatrix builds the full MatchCost matrix between rows (physical
// ports) and columns (bus signals).
func CostMatrix(rows, cols []model.Port, dupWords map[string]struct{}) [][]matchcost.Cost {
	m := make([][]matchcost.Cost, len(rows))
	for i, p := range rows {
		row := make([]matchcost.Cost, len(cols))
		for j, q := range cols {
			row[j] = PortCost(p, q, dupWords)
		}
		m[i] = row
	}
	return m
}

// ValueMatrix collapses a MatchCost matrix to scalars under w, the form
// the assignment solver itself operates on.
func ValueMatrix(costs [][]matchcost.Cost, w matchcost.Weights) [][]float64 {
	v := make([][]float64, len(costs))
	for i, row := range costs {
		vr := make([]float64, len(row))
		for j, c := range row {
			vr[j] = c.Value(w)
		}
		v[i] = vr
	}
	return v
}

// Result is a solved assignment: Mapping[i] = j means row i is matched to
// column j. Degenerate is set when the LP fallback itself reports
// infeasibility (spec.md §7 LPInfeasible) and the greedy result, which may
// not satisfy the one-to-one invariant, is returned unchanged.
type Result struct {
	Mapping    map[int]int
	Degenerate bool
}

// Solve finds a minimum-cost one-to-one (row-complete) assignment over the
// cost matrix C (spec.md §4.4). Rows need not outnumber columns — Solve
// transposes internally when they do and un-transposes the result.
func Solve(C [][]float64) (Result, error) {
	m := len(C)
	if m == 0 {
		return Result{Mapping: map[int]int{}}, nil
	}
	n := len(C[0])

	transposed := false
	work := C
	if m > n {
		work = transpose(C)
		m, n = n, m
		transposed = true
	}

	X := greedyAssignment(work, m, n)
	degenerate := false
	if !satisfiable(X, m, n) {
		lpX, ok := lpAssignment(work, m, n)
		if ok {
			X = lpX
		} else {
			// LPInfeasible (spec.md §7): theoretically unreachable given the
			// constraint structure; fall back to the greedy result unchanged.
			degenerate = true
			metrics.AddDegenerateAssignment()
		}
	}

	mapping := make(map[int]int, m)
	for i := 0; i < m; i++ {
		for j := 0; j < n; j++ {
			if X[i][j] {
				mapping[i] = j
				break
			}
		}
	}
	if transposed {
		mapping = invert(mapping)
	}
	return Result{Mapping: mapping, Degenerate: degenerate}, nil
}

func invert(m map[int]int) map[int]int {
	out := make(map[int]int, len(m))
	for i, j := range m {
		out[j] = i
	}
	return out
}

func transpose(C [][]float64) [][]float64 {
	if len(C) == 0 {
		return nil
	}
	rows, cols := len(C), len(C[0])
	t := make([][]float64, cols)
	for j := 0; j < cols; j++ {
		t[j] = make([]float64, rows)
		for i := 0; i < rows; i++ {
			t[j][i] = C[i][j]
		}
	}
	return t
}

// greedyAssignment picks, for each row, its lowest-cost column; ties break
// by the lowest column index (spec.md §5).
func greedyAssignment(C [][]float64, m, n int) [][]bool {
	X := make([][]bool, m)
	for i := 0; i < m; i++ {
		X[i] = make([]bool, n)
		best := 0
		for j := 1; j < n; j++ {
			if C[i][j] < C[i][best] {
				best = j
			}
		}
		if n > 0 {
			X[i][best] = true
		}
	}
	return X
}

func satisfiable(X [][]bool, m, n int) bool {
	colCount := make([]int, n)
	for i := 0; i < m; i++ {
		rowCount := 0
		for j := 0; j < n; j++ {
			if X[i][j] {
				rowCount++
				colCount[j]++
			}
		}
		if rowCount != 1 {
			return false
		}
	}
	for _, c := range colCount {
		if c > 1 {
			return false
		}
	}
	return true
}

// lpAssignment solves the continuous relaxation: minimize c·x subject to
// row sums = 1 (equality) and, via a slack variable per column, column
// sums ≤ 1, with x ≥ 0 throughout. The bipartite assignment polytope's
// extreme points are integral, so rounding at lpThreshold always yields a
// valid 0/1 assignment (spec.md §4.4).
func lpAssignment(C [][]float64, m, n int) ([][]bool, bool) {
	nVars := m*n + n // x_ij followed by one slack per column
	nCons := m + n

	c := make([]float64, nVars)
	for i := 0; i < m; i++ {
		for j := 0; j < n; j++ {
			c[i*n+j] = C[i][j]
		}
	}
	// slack variables carry zero cost.

	A := mat.NewDense(nCons, nVars, nil)
	b := make([]float64, nCons)

	for i := 0; i < m; i++ {
		for j := 0; j < n; j++ {
			A.Set(i, i*n+j, 1)
		}
		b[i] = 1
	}
	for j := 0; j < n; j++ {
		for i := 0; i < m; i++ {
			A.Set(m+j, i*n+j, 1)
		}
		A.Set(m+j, m*n+j, 1) // slack
		b[m+j] = 1
	}

	_, x, err := lp.Simplex(c, A, b, 1e-10, nil)
	if err != nil {
		return nil, false
	}

	X := make([][]bool, m)
	for i := 0; i < m; i++ {
		X[i] = make([]bool, n)
		for j := 0; j < n; j++ {
			X[i][j] = x[i*n+j] > lpThreshold
		}
	}
	if !satisfiable(X, m, n) {
		return nil, false
	}
	return X, true
}
