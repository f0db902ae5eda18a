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

package busmapping

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hdlportinf/busmap/pkg/bundletree"
	"github.com/hdlportinf/busmap/pkg/matchcost"
	"github.com/hdlportinf/busmap/pkg/model"
)

func sig(name string, width int, dir model.Direction, pres model.Presence) model.BusSignal {
	return model.NewBusSignal(name, width, true, dir, pres)
}

func port(name string, width int, dir model.Direction) model.Port {
	return model.NewPort(name, width, true, dir)
}

func TestSolveMapsExactNames(t *testing.T) {
	bd, err := model.NewBusDef(
		model.Tag{Name: "AXI4"}, model.Tag{Name: "AXI4"}, model.DriverMaster,
		[]model.BusSignal{
			sig("awvalid", 1, model.Input, model.Required),
			sig("awready", 1, model.Output, model.Required),
		},
		nil, nil,
	)
	require.NoError(t, err)

	iface := &bundletree.Interface{Ports: []model.Port{
		port("m_axi_awvalid", 1, model.Input),
		port("m_axi_awready", 1, model.Output),
	}}

	bm, err := Solve(iface, bd, matchcost.DefaultWeights, true)
	require.NoError(t, err)
	require.Equal(t, "awvalid", bm.Mapping["m_axi_awvalid"])
	require.Equal(t, "awready", bm.Mapping["m_axi_awready"])
	require.Empty(t, bm.SidebandMapping)
}

func TestSolvePutsUnrelatedPortsInSideband(t *testing.T) {
	bd, err := model.NewBusDef(
		model.Tag{Name: "AXI4"}, model.Tag{Name: "AXI4"}, model.DriverMaster,
		[]model.BusSignal{
			sig("awvalid", 1, model.Input, model.Required),
		},
		nil, nil,
	)
	require.NoError(t, err)

	iface := &bundletree.Interface{Ports: []model.Port{
		port("m_axi_awvalid", 1, model.Input),
		port("totally_custom_debug_signal", 1, model.Input),
	}}

	bm, err := Solve(iface, bd, matchcost.DefaultWeights, true)
	require.NoError(t, err)
	// Only one bus signal exists; the other port cannot get a primary slot.
	require.Len(t, bm.Mapping, 1)
	require.Contains(t, bm.SidebandMapping, "totally_custom_debug_signal")
}

func TestUserGroupAssignment(t *testing.T) {
	bd, err := model.NewBusDef(
		model.Tag{Name: "AXI4"}, model.Tag{Name: "AXI4"}, model.DriverMaster,
		[]model.BusSignal{
			sig("awvalid", 1, model.Input, model.Required),
		},
		nil,
		[]model.UserPortGroup{
			{Prefix: "dbg", Template: sig("dbg_template", 1, model.Input, model.Optional)},
		},
	)
	require.NoError(t, err)

	iface := &bundletree.Interface{Ports: []model.Port{
		port("m_axi_awvalid", 1, model.Input),
		port("m_axi_dbg_trigger", 1, model.Input),
	}}

	bm, err := Solve(iface, bd, matchcost.DefaultWeights, true)
	require.NoError(t, err)
	require.Contains(t, bm.UserGroupMapping["dbg"], "m_axi_dbg_trigger")
	require.NotContains(t, bm.UnmappedPorts, "m_axi_dbg_trigger")
}
