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

package model

import "github.com/agrea/ptr"

// Presence is whether a BusSignal is mandatory for a bus definition to
// match at all, or merely allowed. "illegal" signals are dropped at parse
// time (spec.md §6) and never represented here.
type Presence string

const (
	Required Presence = "required"
	Optional Presence = "optional"
)

// BusSignal is one logical wire in a formal bus definition.
type BusSignal struct {
	Name      string
	Width     *int
	Direction Direction
	Presence  Presence
	// UserGroup is non-empty when this signal is itself the template for a
	// user-declared group (spec.md §3 BusDef.user_port_groups); regular
	// required/optional signals leave it empty.
	UserGroup string
}

// NewBusSignal builds a BusSignal with an optional width.
func NewBusSignal(name string, width int, known bool, dir Direction, presence Presence) BusSignal {
	var w *int
	if known {
		w = ptr.Int(width)
	}
	return BusSignal{Name: name, Width: w, Direction: dir, Presence: presence}
}

// AsPort projects a BusSignal down to the Port shape used for
// width/direction-only comparisons in fcost (spec.md §4.3 treats bus
// signals and physical ports uniformly once names are stripped).
func (s BusSignal) AsPort() Port {
	return Port{Name: s.Name, Width: s.Width, Direction: s.Direction}
}

// UserPortGroup is an author-declared bucket in a BusDef that accepts
// arbitrary sideband ports sharing a name prefix and direction.
type UserPortGroup struct {
	Prefix   string // lowercased; "" (anonymous) only valid alone
	Template BusSignal
}
