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

// Package emit serializes pipeline results to the component candidate file
// shapes an adapter consumes (spec.md §6).
package emit

import (
	"sort"

	"github.com/hdlportinf/busmap/pkg/bundletree"
	"github.com/hdlportinf/busmap/pkg/busmapping"
	"github.com/hdlportinf/busmap/pkg/engine"
)

// umapKey is the reserved portMaps key residual unmapped ports are filed
// under (spec.md §6).
const umapKey = "__UMAP__"

// BusInterface is one generated bus-interface record.
type BusInterface struct {
	Name             string            `json:"name"`
	InterfaceMode    string            `json:"interfaceMode"`
	BusType          TagDoc            `json:"busType"`
	AbstractionTypes []AbstractionType `json:"abstractionTypes"`
}

// TagDoc mirrors model.Tag for JSON output.
type TagDoc struct {
	Vendor  string `json:"vendor"`
	Library string `json:"library"`
	Name    string `json:"name"`
	Version string `json:"version"`
}

// AbstractionType holds the resolved signal-name -> physical-port-name(s)
// map for one generated bus interface.
type AbstractionType struct {
	PortMaps map[string]interface{} `json:"portMaps"`
}

// ComponentCandidate is the component candidate document: the best
// mapping's BusInterface in BusInterfaces, alternates kept as a separate
// top-level list per spec.md §6.
type ComponentCandidate struct {
	BusInterfaces []BusInterface `json:"busInterfaces"`
	Alternates    []BusInterface `json:"alternates,omitempty"`
}

// BuildBusInterface renders one engine.Candidate's chosen BusMapping into
// the output record shape.
func BuildBusInterface(iface *bundletree.Interface, name string, bm *busmapping.BusMapping) BusInterface {
	bt := bm.BusDef.BusType
	return BusInterface{
		Name:          name,
		InterfaceMode: bm.BusDef.DriverType,
		BusType:       TagDoc{Vendor: bt.Vendor, Library: bt.Library, Name: bt.Name, Version: bt.Version},
		AbstractionTypes: []AbstractionType{
			{PortMaps: PortMaps(iface, bm)},
		},
	}
}

// PortMaps expands bm's primary and user-group mappings into the
// bus-signal-name -> physical-port-name(-list) shape, re-expanding vector
// bundles back to their member port names and filing leftover ports under
// umapKey (spec.md §6).
func PortMaps(iface *bundletree.Interface, bm *busmapping.BusMapping) map[string]interface{} {
	pm := make(map[string]interface{}, len(bm.Mapping)+len(bm.UserGroupMapping)+1)

	for phy, bus := range bm.Mapping {
		pm[bus] = expandOne(iface, phy)
	}

	templateName := make(map[string]string, len(bm.BusDef.UserGroups))
	for _, g := range bm.BusDef.UserGroups {
		templateName[g.Prefix] = g.Template.Name
	}
	for prefix, phyNames := range bm.UserGroupMapping {
		key := templateName[prefix]
		if key == "" {
			key = prefix
		}
		pm[key] = expandMany(iface, phyNames)
	}

	if len(bm.UnmappedPorts) > 0 {
		pm[umapKey] = expandMany(iface, bm.UnmappedPorts)
	}
	return pm
}

// expandOne resolves a single mapped physical port name back to either its
// own name or, if it is a vector's representative, the list of its member
// port names in index order.
func expandOne(iface *bundletree.Interface, name string) interface{} {
	if vb, ok := iface.VectorFor(name); ok {
		return memberNames(vb)
	}
	return name
}

func expandMany(iface *bundletree.Interface, names []string) interface{} {
	sorted := append([]string(nil), names...)
	sort.Strings(sorted)
	out := make([]string, 0, len(sorted))
	for _, n := range sorted {
		if vb, ok := iface.VectorFor(n); ok {
			out = append(out, memberNames(vb)...)
			continue
		}
		out = append(out, n)
	}
	return out
}

func memberNames(vb bundletree.VectorBundle) []string {
	names := make([]string, len(vb.Ports))
	for i, p := range vb.Ports {
		names[i] = p.Name
	}
	return names
}

// BuildComponentCandidate renders a full engine.Run result: the best
// mapping of the top candidate as the primary busInterfaces entry, every
// other surviving candidate's best mapping as an alternate (spec.md §6).
func BuildComponentCandidate(results []engine.Candidate) ComponentCandidate {
	var doc ComponentCandidate
	for i, c := range results {
		if len(c.Mappings) == 0 {
			continue
		}
		name := interfaceName(c.Iface)
		iface := BuildBusInterface(c.Iface, name, c.Mappings[0])
		if i == 0 {
			doc.BusInterfaces = append(doc.BusInterfaces, iface)
		} else {
			doc.Alternates = append(doc.Alternates, iface)
		}
	}
	return doc
}

func interfaceName(iface *bundletree.Interface) string {
	name := iface.Prefix()
	for len(name) > 0 && name[len(name)-1] == '_' {
		name = name[:len(name)-1]
	}
	for len(name) > 0 && name[0] == '_' {
		name = name[1:]
	}
	if name == "" {
		name = "root"
	}
	return name
}

// BuildBundleOnly renders the no-bus-def-library output (spec.md §6): the
// raw nested BundleTree structure, no matching involved.
func BuildBundleOnly(tree *bundletree.BundleTree) interface{} {
	return tree.ToJSON()
}
