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

// Package bundletree builds the unsupervised port-grouping structure
// (spec.md §4.2): a prefix trie over port-name tokens, enriched with
// vector detection and passthrough flattening, that yields ranked
// candidate Interfaces for the matching pipeline.
package bundletree

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/hdlportinf/busmap/internal/lex"
	"github.com/hdlportinf/busmap/pkg/model"
)

// DuplicatePortPathError reports two distinct port names that lexed to the
// identical trie path — the one case spec.md §3's "each leaf holds ≤1
// Port" invariant cannot accommodate two ports at once.
type DuplicatePortPathError struct {
	Existing, New string
}

func (e *DuplicatePortPathError) Error() string {
	return fmt.Sprintf("ports %q and %q lex to the same bundle-tree path", e.Existing, e.New)
}

// Candidate is one yield of GetInitialInterfaces: a tree node id paired
// with the Interface it represents.
type Candidate struct {
	NodeID int
	Iface  *Interface
}

// BundleTree owns its node arena exclusively; Interfaces it hands out
// borrow port slices from that arena's leaves.
type BundleTree struct {
	nodes  []*node
	rootID int
	name   string
	size   int // total number of ports inserted
}

// Name is the inferred top-level interface name: the single trunk token
// with leading and trailing underscores trimmed, or "root" when there is no
// single trunk.
func (t *BundleTree) Name() string { return t.name }

// New builds a BundleTree from a flat port list.
func New(ports []model.Port) (*BundleTree, error) {
	t := &BundleTree{nodes: []*node{newNode(0, noParent)}, rootID: 0, size: len(ports)}

	for _, p := range ports {
		if err := t.insert(p); err != nil {
			return nil, err
		}
	}

	t.formatVectors()
	t.flattenPassthruPaths()
	t.adjustRoot()
	t.computeInterfaces(t.rootID, make(map[int]bool))

	return t, nil
}

func (t *BundleTree) newNode(parent int) int {
	id := len(t.nodes)
	t.nodes = append(t.nodes, newNode(id, parent))
	return id
}

func (t *BundleTree) insert(p model.Port) error {
	words := lex.Words(p.Name)
	cur := t.rootID
	for _, w := range words {
		child, ok := t.nodes[cur].children[w]
		if !ok {
			child = t.newNode(cur)
			t.nodes[cur].children[w] = child
		}
		cur = child
	}
	leaf := t.nodes[cur]
	if leaf.port != nil {
		return &DuplicatePortPathError{Existing: leaf.port.Name, New: p.Name}
	}
	port := p
	leaf.port = &port
	return nil
}

// formatVectors runs the vector-detection pass (spec.md §4.2): a node is a
// vector root when ≥2 of its children are keyed by digits forming a
// contiguous integer range, each such child is a singleton path down to a
// leaf, and all underlying ports share width and direction.
func (t *BundleTree) formatVectors() {
	queue := []int{t.rootID}
	for len(queue) > 0 {
		curID := queue[0]
		queue = queue[1:]
		cur := t.nodes[curID]

		if vports, vmin, vmax, ok := t.vectorInfo(curID); ok {
			cur.isVector = true
			cur.vports = vports
			cur.vmin = vmin
			cur.vmax = vmax
			for _, k := range digitKeys(cur) {
				delete(cur.children, k)
			}
		}

		for _, k := range cur.sortedChildKeys() {
			childID := cur.children[k]
			if !t.nodes[childID].isLeaf() {
				queue = append(queue, childID)
			}
		}
	}
}

func digitKeys(n *node) []string {
	var keys []string
	for k := range n.children {
		if isAllDigits(k) {
			keys = append(keys, k)
		}
	}
	return keys
}

func isAllDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

func (t *BundleTree) vectorInfo(nodeID int) ([]model.Port, int, int, bool) {
	n := t.nodes[nodeID]
	dptrs := digitKeys(n)
	if len(dptrs) < 2 {
		return nil, 0, 0, false
	}

	idxs := make([]int, len(dptrs))
	for i, k := range dptrs {
		v, _ := strconv.Atoi(k)
		idxs[i] = v
	}
	sort.Ints(idxs)
	for i := 1; i < len(idxs); i++ {
		if idxs[i] != idxs[i-1]+1 {
			return nil, 0, 0, false
		}
	}

	type idxPort struct {
		idx  int
		port model.Port
	}
	members := make([]idxPort, 0, len(dptrs))
	for _, k := range dptrs {
		childID := n.children[k]
		if !t.isSingletonPath(childID) {
			return nil, 0, 0, false
		}
		p, ok := t.singletonLeafPort(childID)
		if !ok {
			return nil, 0, 0, false
		}
		v, _ := strconv.Atoi(k)
		members = append(members, idxPort{v, p})
	}
	sort.Slice(members, func(a, b int) bool { return members[a].idx < members[b].idx })

	width, dir := members[0].port.Width, members[0].port.Direction
	for _, m := range members[1:] {
		if m.port.Direction != dir || !sameWidth(m.port.Width, width) {
			return nil, 0, 0, false
		}
	}

	vports := make([]model.Port, len(members))
	for i, m := range members {
		vports[i] = m.port
	}
	return vports, idxs[0], idxs[len(idxs)-1], true
}

func sameWidth(a, b *int) bool {
	if a == nil && b == nil {
		return true
	}
	if a == nil || b == nil {
		return false
	}
	return *a == *b
}

func (t *BundleTree) isSingletonPath(nodeID int) bool {
	n := t.nodes[nodeID]
	if n.isLeaf() {
		return true
	}
	if len(n.children) > 1 {
		return false
	}
	for _, child := range n.children {
		return t.isSingletonPath(child)
	}
	return true
}

func (t *BundleTree) singletonLeafPort(nodeID int) (model.Port, bool) {
	n := t.nodes[nodeID]
	if n.isLeaf() {
		if n.port == nil {
			return model.Port{}, false
		}
		return *n.port, true
	}
	for _, child := range n.children {
		return t.singletonLeafPort(child)
	}
	return model.Port{}, false
}

// flattenPassthruPaths merges any internal node with exactly one non-vector
// child, no stored port and not itself a vector into that child, by
// concatenating the edge tokens with "_" (spec.md §4.2).
func (t *BundleTree) flattenPassthruPaths() {
	type item struct {
		parent, node int
		key          string
	}
	queue := []item{{noParent, t.rootID, ""}}
	for len(queue) > 0 {
		it := queue[0]
		queue = queue[1:]
		cur := t.nodes[it.node]

		var onlyChildID int
		var onlyChildIsVector bool
		if cur.isPassthru() {
			for _, v := range cur.children {
				onlyChildID = v
			}
			onlyChildIsVector = t.nodes[onlyChildID].isVector
		}

		if it.parent != noParent && cur.isPassthru() && !onlyChildIsVector {
			var ckey string
			childID := onlyChildID
			for k, v := range cur.children {
				if v == childID {
					ckey = k
				}
			}
			newKey := it.key + "_" + ckey
			parent := t.nodes[it.parent]
			delete(parent.children, it.key)
			parent.children[newKey] = childID
			t.nodes[childID].parent = it.parent
			if !t.nodes[childID].isLeaf() {
				queue = append([]item{{it.parent, childID, newKey}}, queue...)
			}
			continue
		}

		for _, k := range cur.sortedChildKeys() {
			childID := cur.children[k]
			if !t.nodes[childID].isLeaf() {
				queue = append(queue, item{it.node, childID, k})
			}
		}
	}
}

// adjustRoot implements spec.md §4.2's naming rule: if the final root has a
// single non-vector child, the root is replaced by that child and the
// inferred interface name is the edge token with leading and trailing
// underscores trimmed;
// otherwise the name is "root".
func (t *BundleTree) adjustRoot() {
	root := t.nodes[t.rootID]
	if len(root.children) == 1 && t.size > 1 {
		var key string
		var childID int
		for k, v := range root.children {
			key, childID = k, v
		}
		if !t.nodes[childID].isVector {
			t.name = trimUnderscores(key)
			t.nodes[childID].parent = noParent
			t.rootID = childID
			return
		}
	}
	t.name = "root"
}

func trimUnderscores(s string) string {
	i, j := 0, len(s)
	for i < j && s[i] == '_' {
		i++
	}
	for j > i && s[j-1] == '_' {
		j--
	}
	return s[i:j]
}

// computeInterfaces is the post-order pass that sets every node's Interface
// from its children's Interfaces plus any locally stored port or vector.
func (t *BundleTree) computeInterfaces(nodeID int, visited map[int]bool) *Interface {
	if visited[nodeID] {
		return t.nodes[nodeID].iface
	}
	visited[nodeID] = true
	n := t.nodes[nodeID]

	childIfaces := make([]*Interface, 0, len(n.children))
	for _, k := range n.sortedChildKeys() {
		childIfaces = append(childIfaces, t.computeInterfaces(n.children[k], visited))
	}
	merged := Merge(childIfaces...)

	switch {
	case n.isVector:
		merged = Merge(merged, &Interface{Vectors: []VectorBundle{{Ports: n.vports, Min: n.vmin, Max: n.vmax}}})
	case n.port != nil:
		merged = Merge(merged, &Interface{Ports: []model.Port{*n.port}})
	}
	n.iface = merged
	return merged
}

// GetInitialInterfaces yields (nodeID, Interface) for every node whose
// Interface size falls within [minSize, maxSize] (maxSize<0 means no
// upper bound). A huge undifferentiated root (≥100 ports) is yielded only
// in abbreviated form — its direct leaf children — since it almost never
// maps to a real bus (spec.md §4.2).
func (t *BundleTree) GetInitialInterfaces(minSize, maxSize int) []Candidate {
	const abbreviateAt = 100

	var out []Candidate
	root := t.nodes[t.rootID]
	if root.iface.Size() >= abbreviateAt {
		var leafIfaces []*Interface
		for _, k := range root.sortedChildKeys() {
			child := t.nodes[root.children[k]]
			if child.isLeaf() {
				leafIfaces = append(leafIfaces, child.iface)
			}
		}
		out = append(out, Candidate{NodeID: t.rootID, Iface: Merge(leafIfaces...)})
	} else if fits(root.iface.Size(), minSize, maxSize) {
		out = append(out, Candidate{NodeID: t.rootID, Iface: root.iface})
	}

	t.walkPreOrder(t.rootID, func(id int) {
		if id == t.rootID {
			return
		}
		iface := t.nodes[id].iface
		if fits(iface.Size(), minSize, maxSize) {
			out = append(out, Candidate{NodeID: id, Iface: iface})
		}
	})
	return out
}

func fits(size, min, max int) bool {
	if size < min {
		return false
	}
	if max >= 0 && size > max {
		return false
	}
	return true
}

func (t *BundleTree) walkPreOrder(nodeID int, visit func(id int)) {
	visit(nodeID)
	n := t.nodes[nodeID]
	for _, k := range n.sortedChildKeys() {
		t.walkPreOrder(n.children[k], visit)
	}
}

// leafIDs returns every leaf node id in deterministic (pre-)order.
func (t *BundleTree) leafIDs() []int {
	var leaves []int
	t.walkPreOrder(t.rootID, func(id int) {
		if t.nodes[id].isLeaf() {
			leaves = append(leaves, id)
		}
	})
	return leaves
}

// OptimalNIDs implements spec.md §4.2's optimal_nids: for each leaf, walk
// up to (but excluding) the root collecting the minimum-cost node on that
// path and vote for it. Returns the nodes voted optimal by at least
// minLeaves leaves, relaxing the threshold down to 1 vote, finally falling
// back to the single best node. Never returns an empty set.
func (t *BundleTree) OptimalNIDs(costMap map[int]float64, minLeaves int) []int {
	votes := make(map[int]int)

	for _, leaf := range t.leafIDs() {
		cur := leaf
		type scored struct {
			cost float64
			id   int
		}
		var costs []scored
		for t.nodes[cur].parent != noParent {
			if c, ok := costMap[cur]; ok {
				costs = append(costs, scored{c, cur})
			}
			cur = t.nodes[cur].parent
		}
		if len(costs) == 0 {
			continue
		}
		minCost := costs[0].cost
		for _, c := range costs[1:] {
			if c.cost < minCost {
				minCost = c.cost
			}
		}
		for _, c := range costs {
			if c.cost == minCost {
				votes[c.id]++
			}
		}
	}

	if len(votes) == 0 {
		return []int{t.rootID}
	}

	for threshold := minLeaves - 1; threshold >= 0; threshold-- {
		var ids []int
		for id, v := range votes {
			if v > threshold {
				ids = append(ids, id)
			}
		}
		if len(ids) > 0 {
			sort.Ints(ids)
			return ids
		}
	}
	// Unreachable given votes is non-empty (threshold=0 always selects every
	// voted node), kept only as a defensive fallback.
	best, bestVotes := t.rootID, -1
	for id, v := range votes {
		if v > bestVotes {
			best, bestVotes = id, v
		}
	}
	return []int{best}
}

// GetBundles returns Bundles for all non-leaf (or vector-leaf) direct
// children of the root, plus a single Bundle for the remaining plain leaf
// children (spec.md §4.2's documentation/bundle-only view).
func (t *BundleTree) GetBundles() []Bundle {
	root := t.nodes[t.rootID]
	var bundles []Bundle
	var leafPorts []model.Port

	for _, k := range root.sortedChildKeys() {
		child := t.nodes[root.children[k]]
		if child.port != nil && !child.isVector {
			leafPorts = append(leafPorts, *child.port)
			continue
		}
		bundles = append(bundles, child.iface.Bundles()...)
	}

	if len(leafPorts) > 0 {
		sort.Slice(leafPorts, func(a, b int) bool { return leafPorts[a].Name < leafPorts[b].Name })
		bundles = append(bundles, NewBundle(leafPorts, "root"))
	}
	return bundles
}

// RootInterface is the Interface spanning every port in the tree.
func (t *BundleTree) RootInterface() *Interface {
	return t.nodes[t.rootID].iface
}

// ToJSON serializes the tree for the bundle-only output mode (spec.md §6):
// vector-tagged nodes become a JSON array of port names in index order,
// plain leaves become their port name string, and internal nodes become a
// nested object keyed by edge token. A node with exactly one child and no
// port of its own is emitted as an object whose only key is "_"; since
// construction flattens single non-vector children, in practice this is a
// node wrapping a single vector child.
func (t *BundleTree) ToJSON() interface{} {
	return t.nodeJSON(t.rootID)
}

func (t *BundleTree) nodeJSON(id int) interface{} {
	n := t.nodes[id]

	if n.isVector {
		names := make([]string, len(n.vports))
		for i, p := range n.vports {
			names[i] = p.Name
		}
		return names
	}
	if n.port != nil && n.isLeaf() {
		return n.port.Name
	}

	if n.isPassthru() {
		var childID int
		for _, v := range n.children {
			childID = v
		}
		return map[string]interface{}{"_": t.nodeJSON(childID)}
	}

	obj := make(map[string]interface{}, len(n.children))
	for _, k := range n.sortedChildKeys() {
		obj[k] = t.nodeJSON(n.children[k])
	}
	return obj
}

// PortNames returns every port name inserted into the tree — used by the
// round-trip invariant test (spec.md §8).
func (t *BundleTree) PortNames() []string {
	names := make([]string, 0, t.size)
	for _, n := range t.nodes {
		if n.port != nil {
			names = append(names, n.port.Name)
		}
	}
	sort.Strings(names)
	return names
}
