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

package emit

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hdlportinf/busmap/pkg/bundletree"
	"github.com/hdlportinf/busmap/pkg/busmapping"
	"github.com/hdlportinf/busmap/pkg/matchcost"
	"github.com/hdlportinf/busmap/pkg/model"
)

func TestPortMapsExpandsVector(t *testing.T) {
	iface := &bundletree.Interface{
		Vectors: []bundletree.VectorBundle{
			{Ports: []model.Port{
				model.NewPort("wdata0", 32, true, model.Output),
				model.NewPort("wdata1", 32, true, model.Output),
			}, Min: 0, Max: 1},
		},
	}
	rep := iface.PortsToMap()[0].Name

	bd, err := model.NewBusDef(
		model.Tag{Name: "AXI4"}, model.Tag{Name: "AXI4"}, model.DriverMaster,
		[]model.BusSignal{model.NewBusSignal("wdata", 32, true, model.Output, model.Required)},
		nil, nil,
	)
	require.NoError(t, err)

	bm := &busmapping.BusMapping{
		BusDef:  bd,
		Mapping: map[string]string{rep: "wdata"},
		Cost:    matchcost.Zero(),
	}

	pm := PortMaps(iface, bm)
	names, ok := pm["wdata"].([]string)
	require.True(t, ok)
	require.ElementsMatch(t, []string{"wdata0", "wdata1"}, names)
}

func TestPortMapsFilesUnmappedUnderUmapKey(t *testing.T) {
	iface := &bundletree.Interface{Ports: []model.Port{model.NewPort("extra", 1, true, model.Input)}}
	bd, err := model.NewBusDef(
		model.Tag{Name: "AXI4"}, model.Tag{Name: "AXI4"}, model.DriverMaster,
		[]model.BusSignal{model.NewBusSignal("awvalid", 1, true, model.Input, model.Required)},
		nil, nil,
	)
	require.NoError(t, err)
	bm := &busmapping.BusMapping{
		BusDef:        bd,
		Mapping:       map[string]string{},
		UnmappedPorts: []string{"extra"},
		Cost:          matchcost.Zero(),
	}

	pm := PortMaps(iface, bm)
	require.Equal(t, []string{"extra"}, pm[umapKey])
}

func TestBuildBundleOnlySerializesVectorAsArray(t *testing.T) {
	ports := []model.Port{
		model.NewPort("m_axi_wdata0", 32, true, model.Output),
		model.NewPort("m_axi_wdata1", 32, true, model.Output),
	}
	tree, err := bundletree.New(ports)
	require.NoError(t, err)

	doc := BuildBundleOnly(tree)
	m, ok := doc.(map[string]interface{})
	require.True(t, ok)
	// The root ("m_axi") wraps a single vector child, so it is retained
	// (not merged away) and labeled "_" per spec.md §6.
	wdata, ok := m["_"].([]string)
	require.True(t, ok)
	require.Equal(t, []string{"m_axi_wdata0", "m_axi_wdata1"}, wdata)
}
