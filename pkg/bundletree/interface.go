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

package bundletree

import (
	"sort"

	"github.com/hdlportinf/busmap/pkg/model"
)

// BundleKind classifies a Bundle per spec.md §3.
type BundleKind int

const (
	Directed BundleKind = iota
	Undirected
	Vector
)

func (k BundleKind) String() string {
	switch k {
	case Vector:
		return "vector"
	case Directed:
		return "directed"
	default:
		return "undirected"
	}
}

// Bundle is a sub-grouping inside an Interface: a Vector (contiguous
// numeric index, identical width/direction), a Directed set (same
// direction, not a vector) or an Undirected mix.
type Bundle struct {
	Kind   BundleKind
	Ports  []model.Port // ordered by name, or by index for Vector
	Prefix string
	Min    int // Vector only
	Max    int // Vector only
}

// NewBundle classifies a group of ports into the right Bundle kind.
func NewBundle(ports []model.Port, prefix string) Bundle {
	kind := Directed
	for _, p := range ports[1:] {
		if p.Direction != ports[0].Direction {
			kind = Undirected
			break
		}
	}
	return Bundle{Kind: kind, Ports: ports, Prefix: prefix}
}

// VectorBundle is a Vector-kind grouping: ports whose names differ only in
// one digit token, those digits forming the contiguous range [Min..Max],
// all sharing width and direction (spec.md §3).
type VectorBundle struct {
	Ports []model.Port // index order
	Min   int
	Max   int
}

// Bundle converts a VectorBundle to the generic Bundle shape.
func (v VectorBundle) Bundle() Bundle {
	return Bundle{Kind: Vector, Ports: v.Ports, Prefix: v.key(), Min: v.Min, Max: v.Max}
}

func (v VectorBundle) key() string {
	names := make([]string, len(v.Ports))
	for i, p := range v.Ports {
		names[i] = p.Name
	}
	return CommonPrefix(names)
}

// representative is the single Port PortsToMap substitutes for the whole
// vector: the vector's common name prefix, carrying the (shared) width and
// direction of its members.
func (v VectorBundle) representative() model.Port {
	rep := v.Ports[0]
	rep.Name = v.key()
	return rep
}

// Interface is a proposed grouping of physical ports: a candidate for
// matching against BusDefs. Per spec.md §3, its ports are the disjoint
// union of non-vector singleton ports and vector bundles.
type Interface struct {
	Ports   []model.Port   // non-vector ports
	Vectors []VectorBundle // each entry is one vector bundle
}

// Merge returns the disjoint union of several Interfaces' ports and
// vectors. Nil Interfaces are skipped, so Merge(children's .iface...) is
// safe even before every child has been visited in the rare partial case.
func Merge(ifaces ...*Interface) *Interface {
	merged := &Interface{}
	for _, i := range ifaces {
		if i == nil {
			continue
		}
		merged.Ports = append(merged.Ports, i.Ports...)
		merged.Vectors = append(merged.Vectors, i.Vectors...)
	}
	return merged
}

// Size is the mapping width: non-vector ports count one each, each vector
// bundle counts once regardless of its member count (spec.md §3).
func (i *Interface) Size() int {
	return len(i.Ports) + len(i.Vectors)
}

// MappingWidth is an alias for Size, kept as a distinct name because
// spec.md §3 defines it separately (#non-vector ports + #vector bundles).
func (i *Interface) MappingWidth() int { return i.Size() }

// AllPorts returns every physical port, vector members expanded. Used only
// for prefix computation and round-trip checks — never for matching (use
// PortsToMap for that).
func (i *Interface) AllPorts() []model.Port {
	all := make([]model.Port, 0, i.Size())
	all = append(all, i.Ports...)
	for _, v := range i.Vectors {
		all = append(all, v.Ports...)
	}
	return all
}

// PortsToMap collapses vector bundles to one representative port each
// (spec.md §4.2/§4.3/§4.4).
func (i *Interface) PortsToMap() []model.Port {
	ports := make([]model.Port, 0, i.Size())
	ports = append(ports, i.Ports...)
	for _, v := range i.Vectors {
		if len(v.Ports) == 0 {
			continue
		}
		ports = append(ports, v.representative())
	}
	return ports
}

// VectorFor returns the VectorBundle whose representative name (per
// PortsToMap) is name, if any — used to re-expand a primary mapping back
// into individual physical port names for emission.
func (i *Interface) VectorFor(name string) (VectorBundle, bool) {
	for _, v := range i.Vectors {
		if v.key() == name {
			return v, true
		}
	}
	return VectorBundle{}, false
}

// Prefix is the longest common name prefix across every port this
// Interface spans.
func (i *Interface) Prefix() string {
	names := make([]string, 0, i.Size())
	for _, p := range i.AllPorts() {
		names = append(names, p.Name)
	}
	return CommonPrefix(names)
}

// CommonPrefix returns the longest common string prefix of names. Empty
// for zero names or names with nothing in common.
func CommonPrefix(names []string) string {
	if len(names) == 0 {
		return ""
	}
	sorted := append([]string(nil), names...)
	sort.Strings(sorted)
	first, last := sorted[0], sorted[len(sorted)-1]
	n := 0
	for n < len(first) && n < len(last) && first[n] == last[n] {
		n++
	}
	return first[:n]
}

// Bundles groups this Interface's ports into Bundle values: one Vector per
// vector bundle, plus the remaining flat ports combined into a single
// Directed or Undirected bundle (spec.md §3/§4.2).
func (i *Interface) Bundles() []Bundle {
	bundles := make([]Bundle, 0, len(i.Vectors)+1)
	for _, v := range i.Vectors {
		bundles = append(bundles, v.Bundle())
	}
	if len(i.Ports) > 0 {
		ports := append([]model.Port(nil), i.Ports...)
		sort.Slice(ports, func(a, b int) bool { return ports[a].Name < ports[b].Name })
		bundles = append(bundles, NewBundle(ports, i.Prefix()))
	}
	return bundles
}
