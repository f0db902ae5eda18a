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

// Package busmapping solves one (Interface, BusDef) pair into a fully
// disposed BusMapping: a primary port↔signal assignment plus sideband and
// user-group buckets for whatever the assignment solver couldn't place
// with confidence (spec.md §4.4/§4.5).
package busmapping

import (
	"sort"

	"github.com/hdlportinf/busmap/internal/lex"
	"github.com/hdlportinf/busmap/pkg/assign"
	"github.com/hdlportinf/busmap/pkg/bundletree"
	"github.com/hdlportinf/busmap/pkg/matchcost"
	"github.com/hdlportinf/busmap/pkg/model"
)

// noneSideband is the sentinel sideband value for a physical port the
// solver never assigned at all (spec.md §4.5 step 3: "value none").
const noneSideband = ""

// BusMapping is the fully-disposed result of matching one Interface
// against one BusDef.
type BusMapping struct {
	BusDef *model.BusDef

	// Mapping is the primary port(name) -> bus-signal(name) assignment,
	// after sideband demotion.
	Mapping map[string]string
	// SidebandMapping holds ports whose match was too weak to trust, or
	// that the solver never reached at all (value noneSideband).
	SidebandMapping map[string]string
	// UserGroupMapping buckets sideband ports under the BusDef user-group
	// prefix they matched, keyed by prefix.
	UserGroupMapping map[string][]string
	// UnmappedPorts are sideband ports matching no user group.
	UnmappedPorts []string

	Cost       matchcost.Cost
	Degenerate bool
}

// Solve matches iface's ports against bd's required+optional signals
// (spec.md §4.4), then disposes the result into primary/sideband/user-group
// buckets (spec.md §4.5). penalizeUnmapped controls whether sideband ports
// count against Cost — callers wanting "every port must map" semantics set
// it true.
func Solve(iface *bundletree.Interface, bd *model.BusDef, weights matchcost.Weights, penalizeUnmapped bool) (*BusMapping, error) {
	ports := iface.PortsToMap()
	signals := bd.AllSignals()
	signalPorts := make([]model.Port, len(signals))
	for i, s := range signals {
		signalPorts[i] = s.AsPort()
	}

	portByName := make(map[string]model.Port, len(ports))
	for _, p := range ports {
		portByName[p.Name] = p
	}

	dupWords := assign.DupWords(ports)
	costs := assign.CostMatrix(ports, signalPorts, dupWords)
	values := assign.ValueMatrix(costs, weights)

	res, err := assign.Solve(values)
	if err != nil {
		return nil, err
	}

	mapping := make(map[string]string, len(res.Mapping))
	matchCosts := make(map[string]matchcost.Cost, len(res.Mapping))
	for i, j := range res.Mapping {
		mapping[ports[i].Name] = signalPorts[j].Name
		matchCosts[ports[i].Name] = costs[i][j]
	}

	sideband := disposeSideband(mapping, ports)

	var primaryCost matchcost.Cost
	for name := range mapping {
		primaryCost = primaryCost.Add(matchCosts[name])
	}

	userGroups, unmapped := assignUserGroups(iface, sideband, portByName, bd.UserGroups)

	cost := primaryCost
	if penalizeUnmapped {
		umapRequired := unmappedRequired(bd.Required, mapping)
		cost = cost.Add(matchcost.Cost{WC: 1, DC: 1}.Scale(umapRequired))
		cost = cost.Add(matchcost.Cost{WC: 1, DC: 1}.Scale(len(sideband)))
	}
	cost = cost.Normalize(len(ports))

	return &BusMapping{
		BusDef:           bd,
		Mapping:          mapping,
		SidebandMapping:  sideband,
		UserGroupMapping: userGroups,
		UnmappedPorts:    unmapped,
		Cost:             cost,
		Degenerate:       res.Degenerate,
	}, nil
}

// disposeSideband implements spec.md §4.5 steps 1-3: demote mapped pairs
// whose bus-signal name has an outlying number of tokens missing from the
// physical port name, then fold in every port the solver never reached.
func disposeSideband(mapping map[string]string, ports []model.Port) map[string]string {
	missing := make(map[string]int, len(mapping))
	counts := make([]int, 0, len(mapping))
	for phy, bus := range mapping {
		n := lex.NumMissingTokens(bus, phy)
		missing[phy] = n
		counts = append(counts, n)
	}
	cutoff := median(counts) + 1

	sideband := make(map[string]string)
	for phy, n := range missing {
		if n > cutoff {
			sideband[phy] = mapping[phy]
			delete(mapping, phy)
		}
	}
	for _, p := range ports {
		if _, ok := mapping[p.Name]; ok {
			continue
		}
		if _, ok := sideband[p.Name]; ok {
			continue
		}
		sideband[p.Name] = noneSideband
	}
	return sideband
}

func median(vals []int) float64 {
	if len(vals) == 0 {
		return 0
	}
	sorted := append([]int(nil), vals...)
	sort.Ints(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return float64(sorted[mid])
	}
	return float64(sorted[mid-1]+sorted[mid]) / 2
}

// assignUserGroups implements spec.md §4.5 step 4: walk each sideband
// port's name tokens (after stripping the Interface's common prefix) and
// assign it to the first user group whose prefix a token starts with and
// whose direction matches.
func assignUserGroups(iface *bundletree.Interface, sideband map[string]string, portByName map[string]model.Port, groups []model.UserPortGroup) (map[string][]string, []string) {
	if len(groups) == 0 {
		names := sidebandNames(sideband)
		return map[string][]string{}, names
	}

	prefix := iface.Prefix()
	userGroups := make(map[string][]string)
	var unmapped []string

	for _, name := range sidebandNames(sideband) {
		port, ok := portByName[name]
		if !ok {
			unmapped = append(unmapped, name)
			continue
		}
		stripped := name
		if len(prefix) <= len(name) {
			stripped = name[len(prefix):]
		}
		groupPrefix, matched := matchUserGroup(stripped, port.Direction, groups)
		if matched {
			userGroups[groupPrefix] = append(userGroups[groupPrefix], name)
		} else {
			unmapped = append(unmapped, name)
		}
	}

	for k := range userGroups {
		sort.Strings(userGroups[k])
	}
	sort.Strings(unmapped)
	return userGroups, unmapped
}

func matchUserGroup(remainder string, dir model.Direction, groups []model.UserPortGroup) (string, bool) {
	for _, w := range lex.Words(remainder) {
		for _, g := range groups {
			if g.Template.Direction != dir {
				continue
			}
			if len(w) >= len(g.Prefix) && w[:len(g.Prefix)] == g.Prefix {
				return g.Prefix, true
			}
		}
	}
	return "", false
}

func sidebandNames(sideband map[string]string) []string {
	names := make([]string, 0, len(sideband))
	for name := range sideband {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func unmappedRequired(required []model.BusSignal, mapping map[string]string) int {
	used := make(map[string]bool, len(mapping))
	for _, bus := range mapping {
		used[bus] = true
	}
	n := 0
	for _, r := range required {
		if !used[r.Name] {
			n++
		}
	}
	return n
}
