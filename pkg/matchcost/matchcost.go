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

// Package matchcost implements the MatchCost value type: a plain struct
// with explicit Add/Scale/Normalize/Value operations, replacing the
// operator-overloaded class of the original implementation (spec.md §9
// design note).
package matchcost

import "fmt"

// Weights are the fixed linear weights MatchCost.Value applies. The latest
// revision of the source is authoritative here (spec.md §9 open question):
// Nw=2, Ww=1, Dw=4.
type Weights struct {
	Name  float64
	Width float64
	Dir   float64
}

// DefaultWeights is Nw=2, Ww=1, Dw=4, as fixed by spec.md §3/§9.
var DefaultWeights = Weights{Name: 2, Width: 1, Dir: 4}

// Cost is the triple (name-cost, width-cost, dir-cost). Name cost is a
// real-valued Jaccard distance; width/dir costs are integer counts of
// mismatches. Freely copied — it carries no pointers.
type Cost struct {
	NC float64
	WC int
	DC int
}

// Zero is the additive identity.
func Zero() Cost { return Cost{} }

// Degenerate flags a cost as coming from an infeasible solve that fell back
// to the greedy assignment unchanged (spec.md §7 LPInfeasible). It is not a
// field of Cost itself (Cost must stay a plain comparable value used as a
// map key and in straightforward arithmetic); callers that need to track it
// pair a Cost with a bool.
type Degenerate = bool

// Add returns c + o.
func (c Cost) Add(o Cost) Cost {
	return Cost{NC: c.NC + o.NC, WC: c.WC + o.WC, DC: c.DC + o.DC}
}

// Scale returns c multiplied by the integer factor n (used for penalty
// terms like MatchCost(0,1,1)*count in the original formulation).
func (c Cost) Scale(n int) Cost {
	return Cost{NC: c.NC * float64(n), WC: c.WC * n, DC: c.DC * n}
}

// ScaleName returns c with only NC scaled by a real factor, leaving WC and
// DC unchanged.
func (c Cost) ScaleName(factor float64) Cost {
	c.NC *= factor
	return c
}

// Normalize divides NC by n (the number of physical ports to map, |P|) while
// leaving WC/DC cumulative, per spec.md §4.5 and the §9 open-question
// resolution (normalize by |P|, not by the mapped-port count).
func (c Cost) Normalize(n int) Cost {
	if n == 0 {
		return c
	}
	return Cost{NC: c.NC / float64(n), WC: c.WC, DC: c.DC}
}

// Value collapses Cost to a single scalar using w.
func (c Cost) Value(w Weights) float64 {
	return w.Name*c.NC + w.Width*float64(c.WC) + w.Dir*float64(c.DC)
}

// DefaultValue is Value(DefaultWeights), the scalar used for ranking unless
// an engine config overrides the weights.
func (c Cost) DefaultValue() float64 {
	return c.Value(DefaultWeights)
}

// Less orders by DefaultValue, used for tie-break-free sorting contexts.
func (c Cost) Less(o Cost) bool {
	return c.DefaultValue() < o.DefaultValue()
}

func (c Cost) String() string {
	return fmt.Sprintf("(nc:%.3f,wc:%d,dc:%d)", c.NC, c.WC, c.DC)
}

// Sum adds up a slice of Costs, starting from Zero.
func Sum(costs ...Cost) Cost {
	total := Zero()
	for _, c := range costs {
		total = total.Add(c)
	}
	return total
}
