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

// Package busdefio parses formal bus-definition spec files
// (abstractionDefinition JSON, spec.md §6) into model.BusDefs.
package busdefio

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"k8s.io/klog/v2"

	"github.com/hdlportinf/busmap/pkg/metrics"
	"github.com/hdlportinf/busmap/pkg/model"
)

type wireSide struct {
	Direction string `json:"direction"`
	Width     *int   `json:"width"`
	Presence  string `json:"presence"`
}

type wire struct {
	OnMaster *wireSide `json:"onMaster"`
	OnSlave  *wireSide `json:"onSlave"`
}

type portDef struct {
	Wire   *wire  `json:"wire"`
	IsUser bool   `json:"isUser"`
	Group  string `json:"group"`
}

type busTypeTag struct {
	Vendor  string `json:"vendor"`
	Library string `json:"library"`
	Name    string `json:"name"`
	Version string `json:"version"`
}

type abstractionDefinition struct {
	BusType busTypeTag         `json:"busType"`
	Vendor  string             `json:"vendor"`
	Library string             `json:"library"`
	Name    string             `json:"name"`
	Version string             `json:"version"`
	Ports   map[string]portDef `json:"ports"`
}

type specFile struct {
	AbstractionDefinition *abstractionDefinition `json:"abstractionDefinition"`
}

// ParseDir loads every *.json/*.json5 file in dir as a bus-def spec.
// Malformed files are logged and skipped (spec.md §7 MalformedBusDefError
// is fatal only to the one file it came from).
func ParseDir(dir string) ([]*model.BusDef, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("busdefio: reading %s: %w", dir, err)
	}

	var all []*model.BusDef
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if !strings.HasSuffix(name, ".json") && !strings.HasSuffix(name, ".json5") {
			continue
		}
		path := filepath.Join(dir, name)
		defs, err := ParseFile(path)
		if err != nil {
			klog.Warningf("busdefio: skipping %s: %v", path, err)
			metrics.AddMalformedBusDef()
			continue
		}
		all = append(all, defs...)
	}
	metrics.SetBusDefsLoaded(len(all))
	return all, nil
}

// ParseFile loads one bus-def spec file, returning up to two BusDefs
// (master, slave) per spec.md §6.
func ParseFile(path string) ([]*model.BusDef, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("busdefio: reading %s: %w", path, err)
	}
	return Parse(data, path)
}

// Parse decodes one abstractionDefinition document.
func Parse(data []byte, path string) ([]*model.BusDef, error) {
	var spec specFile
	if err := json.Unmarshal(data, &spec); err != nil {
		return nil, &model.MalformedBusDefError{Path: path, Reason: "invalid JSON: " + err.Error()}
	}
	if spec.AbstractionDefinition == nil {
		return nil, &model.MalformedBusDefError{Path: path, Reason: "missing abstractionDefinition key"}
	}
	ad := spec.AbstractionDefinition

	busType := model.Tag{Vendor: ad.BusType.Vendor, Library: ad.BusType.Library, Name: ad.BusType.Name, Version: ad.BusType.Version}
	abstractType := model.Tag{Vendor: ad.Vendor, Library: ad.Library, Name: ad.Name, Version: ad.Version}

	var masterReq, masterOpt, slaveReq, slaveOpt []model.BusSignal
	var masterGroups, slaveGroups []model.UserPortGroup

	portNames := make([]string, 0, len(ad.Ports))
	for portName := range ad.Ports {
		portNames = append(portNames, portName)
	}
	sort.Strings(portNames)

	for _, portName := range portNames {
		pd := ad.Ports[portName]
		if pd.Wire == nil {
			return nil, &model.MalformedBusDefError{Path: path, Port: portName, Reason: "missing wire"}
		}
		group := strings.ToLower(pd.Group)

		presence, isUser, side, err := parseSide(path, portName, "onMaster", pd.Wire.OnMaster, pd.IsUser, group)
		if err != nil {
			return nil, err
		}
		if side != nil {
			switch {
			case isUser:
				masterGroups = append(masterGroups, model.UserPortGroup{Prefix: group, Template: *side})
			case presence == model.Required:
				masterReq = append(masterReq, *side)
			default:
				masterOpt = append(masterOpt, *side)
			}
		}

		presence, isUser, side, err = parseSide(path, portName, "onSlave", pd.Wire.OnSlave, pd.IsUser, group)
		if err != nil {
			return nil, err
		}
		if side != nil {
			switch {
			case isUser:
				slaveGroups = append(slaveGroups, model.UserPortGroup{Prefix: group, Template: *side})
			case presence == model.Required:
				slaveReq = append(slaveReq, *side)
			default:
				slaveOpt = append(slaveOpt, *side)
			}
		}
	}

	var out []*model.BusDef
	if len(masterReq) > 0 {
		bd, err := model.NewBusDef(busType, abstractType, model.DriverMaster, masterReq, masterOpt, masterGroups)
		if err != nil {
			return nil, err
		}
		out = append(out, bd)
	}
	if len(slaveReq) > 0 {
		bd, err := model.NewBusDef(busType, abstractType, model.DriverSlave, slaveReq, slaveOpt, slaveGroups)
		if err != nil {
			return nil, err
		}
		out = append(out, bd)
	}
	return out, nil
}

// parseSide decodes one wire.onMaster/onSlave side. A nil returned
// *model.BusSignal means the side is absent or was explicitly marked
// illegal — callers skip it rather than treating it as required.
func parseSide(path, portName, sideKey string, side *wireSide, isUser bool, group string) (model.Presence, bool, *model.BusSignal, error) {
	if side == nil {
		return "", false, nil, nil
	}
	if side.Presence == "illegal" {
		return "", false, nil, nil
	}
	if side.Direction == "" {
		return "", false, nil, &model.MalformedBusDefError{Path: path, Port: portName, Reason: sideKey + " missing direction"}
	}

	presence := model.Required
	switch side.Presence {
	case "", "required":
		presence = model.Required
	case "optional":
		presence = model.Optional
	default:
		return "", false, nil, &model.MalformedBusDefError{Path: path, Port: portName, Reason: sideKey + " unrecognized presence " + side.Presence}
	}

	dir := model.Output
	if side.Direction == "in" {
		dir = model.Input
	}

	var sig model.BusSignal
	if side.Width != nil {
		sig = model.NewBusSignal(portName, *side.Width, true, dir, presence)
	} else {
		sig = model.NewBusSignal(portName, 0, false, dir, presence)
	}
	if isUser {
		sig.UserGroup = group
	}
	return presence, isUser, &sig, nil
}
