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

const noParent = -1

// node is one entry of the tree arena. Per spec.md §9's design note
// ("replace dynamic per-node attributes with a dense side-table keyed by
// node id"), the tree is a slice of nodes addressed by integer id; parent
// links are indices, not pointers, so there is no cyclic ownership to
// reason about.
type node struct {
	id       int
	parent   int // noParent for the root
	children map[string]int

	port     *model.Port // set on leaves that hold a physical port
	isVector bool
	vports   []model.Port // populated only when isVector, sorted by index
	vmin     int
	vmax     int

	iface *Interface // filled in by the post-order pass
}

func newNode(id, parent int) *node {
	return &node{id: id, parent: parent, children: make(map[string]int)}
}

func (n *node) isLeaf() bool { return len(n.children) == 0 }

// isPassthru reports a node with exactly one child, no stored port and not
// itself a vector — a candidate for the passthrough-flattening pass.
func (n *node) isPassthru() bool {
	return len(n.children) == 1 && n.port == nil && !n.isVector
}

// sortedChildKeys returns child edge tokens in deterministic order, used
// whenever a traversal's outcome must not depend on Go's randomized map
// iteration order.
func (n *node) sortedChildKeys() []string {
	keys := make([]string, 0, len(n.children))
	for k := range n.children {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
