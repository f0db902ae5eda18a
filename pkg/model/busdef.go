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

import "strings"

// Tag is a plain record replacing the original dotdict-style attribute
// access: bus-def parsing fills one Tag for busType and one for the
// abstraction's own (vendor, library, name, version) at load time, per the
// design notes in spec.md §9.
type Tag struct {
	Vendor  string
	Library string
	Name    string
	Version string
}

const (
	DriverMaster = "master"
	DriverSlave  = "slave"
)

// BusDef is one side (master or slave) of a formal bus abstraction: a
// collection of required/optional BusSignals plus any user-declared port
// groups. Built once per spec file and shared read-only across the
// pipeline.
type BusDef struct {
	BusType      Tag
	AbstractType Tag
	DriverType   string
	Required     []BusSignal
	Optional     []BusSignal
	UserGroups   []UserPortGroup
}

// NewBusDef validates and constructs a BusDef. It enforces the two
// structural invariants from spec.md §3/§7: at least one required signal,
// and user-group prefixes that are either singly anonymous or pairwise
// non-prefix-overlapping.
func NewBusDef(busType, abstractType Tag, driverType string, required, optional []BusSignal, userGroups []UserPortGroup) (*BusDef, error) {
	if len(required) == 0 {
		return nil, &MalformedBusDefError{
			Path:   abstractType.Name,
			Port:   "",
			Reason: "bus def has no required signals",
		}
	}

	if err := validateUserGroups(userGroups); err != nil {
		return nil, err
	}

	return &BusDef{
		BusType:      busType,
		AbstractType: abstractType,
		DriverType:   driverType,
		Required:     required,
		Optional:     optional,
		UserGroups:   userGroups,
	}, nil
}

func validateUserGroups(groups []UserPortGroup) error {
	if len(groups) < 2 {
		return nil
	}

	names := make([]string, len(groups))
	for i, g := range groups {
		names[i] = g.Prefix
	}

	for _, n := range names {
		if n == "" {
			return &AmbiguousUserGroupsError{Groups: names}
		}
	}

	for i := 0; i < len(names); i++ {
		for j := i + 1; j < len(names); j++ {
			if strings.HasPrefix(names[i], names[j]) || strings.HasPrefix(names[j], names[i]) {
				return &AmbiguousUserGroupsError{Groups: names}
			}
		}
	}
	return nil
}

// AllSignals returns required then optional signals, in that order.
func (b *BusDef) AllSignals() []BusSignal {
	all := make([]BusSignal, 0, len(b.Required)+len(b.Optional))
	all = append(all, b.Required...)
	all = append(all, b.Optional...)
	return all
}

func (b *BusDef) String() string {
	return b.AbstractType.Name + "/" + b.DriverType
}
