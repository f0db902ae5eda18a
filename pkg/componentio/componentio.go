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

// Package componentio parses the adapter's component.json port-list input
// (spec.md §6): a mapping from port name to a signed integer pw, where
// |pw| is the width and sign(pw) is the direction (+1 input, -1 output).
// A parametric port whose width cannot be resolved is represented by the
// direction alone, as the JSON string "+" or "-", rather than a number.
package componentio

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/hdlportinf/busmap/pkg/model"
)

type componentFile struct {
	Ports map[string]json.RawMessage `json:"ports"`
}

// LoadFile reads a component.json file's top-level "ports" map into
// model.Ports, sorted by name for deterministic downstream processing.
func LoadFile(path string) ([]model.Port, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("componentio: reading %s: %w", path, err)
	}
	return Load(data, path)
}

// Load decodes one component.json document's raw bytes.
func Load(data []byte, path string) ([]model.Port, error) {
	var cf componentFile
	if err := json.Unmarshal(data, &cf); err != nil {
		return nil, fmt.Errorf("componentio: %s: invalid JSON: %w", path, err)
	}

	names := make([]string, 0, len(cf.Ports))
	for name := range cf.Ports {
		names = append(names, name)
	}
	sort.Strings(names)

	ports := make([]model.Port, 0, len(names))
	for _, name := range names {
		p, err := decodePort(name, cf.Ports[name])
		if err != nil {
			return nil, fmt.Errorf("componentio: %s: port %q: %w", path, name, err)
		}
		ports = append(ports, p)
	}
	return ports, nil
}

func decodePort(name string, raw json.RawMessage) (model.Port, error) {
	var pw int
	if err := json.Unmarshal(raw, &pw); err == nil {
		width := pw
		if width < 0 {
			width = -width
		}
		return model.NewPort(name, width, true, model.DirectionFromSign(pw)), nil
	}

	var sign string
	if err := json.Unmarshal(raw, &sign); err == nil {
		switch sign {
		case "+":
			return model.NewPort(name, 0, false, model.Input), nil
		case "-":
			return model.NewPort(name, 0, false, model.Output), nil
		default:
			return model.Port{}, fmt.Errorf("unrecognized direction marker %q", sign)
		}
	}

	return model.Port{}, fmt.Errorf("value must be a signed width or a %q/%q direction marker", "+", "-")
}
