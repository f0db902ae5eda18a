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

// Package fcost computes the coarse feasibility score (spec.md §4.3) used
// to cheaply rank bus-defs against a candidate Interface before the
// expensive assignment solve runs on only the survivors.
package fcost

import (
	"sort"

	"github.com/hdlportinf/busmap/internal/lex"
	"github.com/hdlportinf/busmap/pkg/bundletree"
	"github.com/hdlportinf/busmap/pkg/matchcost"
	"github.com/hdlportinf/busmap/pkg/model"
)

// Flavor selects which of the two name-compatibility terms fcost adds.
type Flavor int

const (
	// Global multiplies the token-Jaccard distance by interface size and
	// penalizes leftover unmatched physical ports.
	Global Flavor = iota
	// Local uses a fraction-of-bus-tokens-missing term and never penalizes
	// leftover physical ports, favoring interfaces that merely contain the
	// bus rather than consist of exactly it.
	Local
)

type widthDirKey struct {
	width int
	known bool
	dir   model.Direction
}

func keyOf(p model.Port) widthDirKey {
	if p.Width == nil {
		return widthDirKey{dir: p.Direction}
	}
	return widthDirKey{width: *p.Width, known: true, dir: p.Direction}
}

// Value computes the coarse feasibility cost of matching iface against bd,
// per the given flavor. Lower is more feasible.
func Value(iface *bundletree.Interface, bd *model.BusDef, flavor Flavor) float64 {
	cost := baseCost(iface, bd, flavor)
	cost = cost.Add(nameCost(iface, bd, flavor))
	return cost.DefaultValue()
}

// baseCost implements spec.md §4.3 steps 1-3: width/direction bucket
// matching against required then optional signals, with the leftover
// flavor-dependent physical-port penalty.
func baseCost(iface *bundletree.Interface, bd *model.BusDef, flavor Flavor) matchcost.Cost {
	phys := multiset(iface.PortsToMap())
	req := multiset(signalPorts(bd.Required))
	opt := multiset(signalPorts(bd.Optional))

	// Step 2: exact (width, direction) key matching, required then optional.
	for k, pc := range phys {
		rc := req[k]
		matched := min(pc, rc)
		phys[k] -= matched
		req[k] -= matched

		oc := opt[k]
		matched = min(phys[k], oc)
		phys[k] -= matched
		opt[k] -= matched
	}

	// Step 3: re-bucket remainders by direction only.
	physByDir := map[model.Direction]int{}
	reqByDir := map[model.Direction]int{}
	optByDir := map[model.Direction]int{}
	for k, c := range phys {
		physByDir[k.dir] += c
	}
	for k, c := range req {
		reqByDir[k.dir] += c
	}
	for k, c := range opt {
		optByDir[k.dir] += c
	}

	cost := matchcost.Zero()
	for _, d := range []model.Direction{model.Input, model.Output} {
		p, r, o := physByDir[d], reqByDir[d], optByDir[d]

		matchedReq := min(p, r)
		cost = cost.Add(matchcost.Cost{WC: 1}.Scale(matchedReq))
		p -= matchedReq
		r -= matchedReq
		if r > 0 {
			cost = cost.Add(matchcost.Cost{WC: 1, DC: 1}.Scale(4).Scale(r))
		}

		matchedOpt := min(p, o)
		cost = cost.Add(matchcost.Cost{WC: 1}.Scale(matchedOpt))
		p -= matchedOpt

		if flavor == Global && p > 0 {
			cost = cost.Add(matchcost.Cost{WC: 1, DC: 1}.Scale(p))
		}
	}
	return cost
}

func nameCost(iface *bundletree.Interface, bd *model.BusDef, flavor Flavor) matchcost.Cost {
	ports := iface.PortsToMap()
	ifaceAll := unionTokens(ports)
	busTokens := unionTokens(signalPorts(bd.AllSignals()))

	if flavor == Local {
		return matchcost.Cost{NC: lex.FracMissing(busTokens, ifaceAll)}
	}

	deduped := subtractCommon(ports, ifaceAll)
	nc := lex.JaccardDist(deduped, busTokens) * float64(iface.Size())
	return matchcost.Cost{NC: nc}
}

func unionTokens(ports []model.Port) map[string]struct{} {
	union := make(map[string]struct{})
	for _, p := range ports {
		for tok := range lex.NGramTokens(p.Name) {
			union[tok] = struct{}{}
		}
	}
	return union
}

// subtractCommon removes tokens common to every port's n-gram set from the
// already-computed union — they carry no discriminatory power (spec.md
// §4.3 Global bullet).
func subtractCommon(ports []model.Port, union map[string]struct{}) map[string]struct{} {
	if len(ports) == 0 {
		return union
	}
	common := lex.NGramTokens(ports[0].Name)
	for _, p := range ports[1:] {
		toks := lex.NGramTokens(p.Name)
		for tok := range common {
			if _, ok := toks[tok]; !ok {
				delete(common, tok)
			}
		}
	}
	filtered := make(map[string]struct{}, len(union))
	for tok := range union {
		if _, ok := common[tok]; !ok {
			filtered[tok] = struct{}{}
		}
	}
	return filtered
}

func signalPorts(sigs []model.BusSignal) []model.Port {
	ports := make([]model.Port, len(sigs))
	for i, s := range sigs {
		ports[i] = s.AsPort()
	}
	return ports
}

func multiset(ports []model.Port) map[widthDirKey]int {
	m := make(map[widthDirKey]int)
	for _, p := range ports {
		m[keyOf(p)]++
	}
	return m
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// Ranked is one scored bus-def from Rank.
type Ranked struct {
	BusDef *model.BusDef
	Global float64
	Local  float64
}

// Rank scores every candidate bus-def against iface under both flavors and
// returns the top topGlobal by global fcost plus up to topLocal additional
// ones (not already selected) by local fcost, per spec.md §4.3's caller
// contract. Ties break by (AbstractType.Name, DriverType) for determinism
// (spec.md §5).
func Rank(iface *bundletree.Interface, candidates []*model.BusDef, topGlobal, topLocal int) []Ranked {
	scored := make([]Ranked, len(candidates))
	for i, bd := range candidates {
		scored[i] = Ranked{BusDef: bd, Global: Value(iface, bd, Global), Local: Value(iface, bd, Local)}
	}

	byGlobal := append([]Ranked(nil), scored...)
	sort.SliceStable(byGlobal, func(i, j int) bool { return less(byGlobal[i], byGlobal[j], true) })
	if topGlobal > len(byGlobal) {
		topGlobal = len(byGlobal)
	}
	selected := byGlobal[:topGlobal]

	chosen := make(map[*model.BusDef]bool, len(selected))
	out := append([]Ranked(nil), selected...)
	for _, r := range selected {
		chosen[r.BusDef] = true
	}

	byLocal := append([]Ranked(nil), scored...)
	sort.SliceStable(byLocal, func(i, j int) bool { return less(byLocal[i], byLocal[j], false) })
	added := 0
	for _, r := range byLocal {
		if added >= topLocal {
			break
		}
		if chosen[r.BusDef] {
			continue
		}
		out = append(out, r)
		chosen[r.BusDef] = true
		added++
	}
	return out
}

func less(a, b Ranked, byGlobal bool) bool {
	var av, bv float64
	if byGlobal {
		av, bv = a.Global, b.Global
	} else {
		av, bv = a.Local, b.Local
	}
	if av != bv {
		return av < bv
	}
	if a.BusDef.AbstractType.Name != b.BusDef.AbstractType.Name {
		return a.BusDef.AbstractType.Name < b.BusDef.AbstractType.Name
	}
	return a.BusDef.DriverType < b.BusDef.DriverType
}
