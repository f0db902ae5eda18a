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

// Package model holds the immutable, shared data entities of the matching
// engine: Port, BusSignal, BusDef and their shared Direction/Presence enums.
package model

import (
	"fmt"

	"github.com/agrea/ptr"
)

// Direction is the signal-flow direction of a port or bus signal, relative
// to the module: Input (+1) flows in, Output (-1) flows out.
type Direction int8

const (
	Input  Direction = 1
	Output Direction = -1
)

func (d Direction) String() string {
	if d == Input {
		return "in"
	}
	return "out"
}

// DirectionFromSign maps the adapter's signed-width convention (spec.md §6:
// a single signed integer pw, where sign(pw) is the direction) to Direction.
func DirectionFromSign(pw int) Direction {
	if pw < 0 {
		return Output
	}
	return Input
}

// Port is one physical wire of the module under analysis. Constructed once
// from adapter input and never mutated afterward.
type Port struct {
	Name      string
	Width     *int // nil = unknown (parametric)
	Direction Direction
}

// NewPort builds a Port, using ptr.Int to box the optional width the same
// way optional scalar fields are represented across this codebase.
func NewPort(name string, width int, known bool, dir Direction) Port {
	var w *int
	if known {
		w = ptr.Int(width)
	}
	return Port{Name: name, Width: w, Direction: dir}
}

// WidthKnown reports whether Width is a concrete value rather than unknown.
func (p Port) WidthKnown() bool { return p.Width != nil }

// WidthOrZero returns the width if known, else 0 — used only for display,
// never for cost comparisons (those must check WidthKnown explicitly).
func (p Port) WidthOrZero() int {
	if p.Width == nil {
		return 0
	}
	return *p.Width
}

func (p Port) String() string {
	w := "?"
	if p.Width != nil {
		w = fmt.Sprintf("%d", *p.Width)
	}
	return fmt.Sprintf("%s(%s,%s)", p.Name, w, p.Direction)
}

// SameWireShape reports whether two ports/signals have compatible width and
// identical direction, an unknown width on either side counting as
// compatible. fcost does not use it: its buckets key on the exact width, so
// an unknown width there forms a bucket of its own.
func SameWireShape(a, b Port) bool {
	return a.Direction == b.Direction && widthsMatch(a.Width, b.Width)
}

func widthsMatch(a, b *int) bool {
	if a == nil || b == nil {
		return true // an unknown width never counts as a mismatch
	}
	return *a == *b
}
