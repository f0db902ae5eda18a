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

package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hdlportinf/busmap/pkg/bundletree"
	"github.com/hdlportinf/busmap/pkg/model"
)

func sig(name string, width int, dir model.Direction, pres model.Presence) model.BusSignal {
	return model.NewBusSignal(name, width, true, dir, pres)
}

func port(name string, width int, dir model.Direction) model.Port {
	return model.NewPort(name, width, true, dir)
}

func TestRunFindsAXIInterface(t *testing.T) {
	ports := []model.Port{
		port("m_axi_awvalid", 1, model.Output),
		port("m_axi_awready", 1, model.Input),
		port("m_axi_wvalid", 1, model.Output),
		port("m_axi_wready", 1, model.Input),
		port("clk", 1, model.Input),
		port("rst_n", 1, model.Input),
	}
	tree, err := bundletree.New(ports)
	require.NoError(t, err)

	axi, err := model.NewBusDef(
		model.Tag{Name: "AXI4"}, model.Tag{Name: "AXI4"}, model.DriverMaster,
		[]model.BusSignal{
			sig("awvalid", 1, model.Output, model.Required),
			sig("awready", 1, model.Input, model.Required),
			sig("wvalid", 1, model.Output, model.Required),
			sig("wready", 1, model.Input, model.Required),
		},
		nil, nil,
	)
	require.NoError(t, err)

	cfg := DefaultConfig()
	cfg.MinBundleSize = 2
	cfg.Concurrent = false

	results, err := Run(context.Background(), tree, []*model.BusDef{axi}, cfg)
	require.NoError(t, err)
	require.NotEmpty(t, results)
	require.NotEmpty(t, results[0].Mappings)
	require.Equal(t, axi, results[0].Mappings[0].BusDef)
}

func TestRunIsDeterministic(t *testing.T) {
	ports := []model.Port{
		port("m_axi_awvalid", 1, model.Output),
		port("m_axi_awready", 1, model.Input),
		port("s_axi_awvalid", 1, model.Output),
		port("s_axi_awready", 1, model.Input),
	}
	tree, err := bundletree.New(ports)
	require.NoError(t, err)

	bd, err := model.NewBusDef(
		model.Tag{Name: "AXI4"}, model.Tag{Name: "AXI4"}, model.DriverMaster,
		[]model.BusSignal{
			sig("awvalid", 1, model.Output, model.Required),
			sig("awready", 1, model.Input, model.Required),
		},
		nil, nil,
	)
	require.NoError(t, err)

	cfg := DefaultConfig()
	cfg.MinBundleSize = 2

	r1, err := Run(context.Background(), tree, []*model.BusDef{bd}, cfg)
	require.NoError(t, err)
	r2, err := Run(context.Background(), tree, []*model.BusDef{bd}, cfg)
	require.NoError(t, err)

	require.Equal(t, len(r1), len(r2))
	for i := range r1 {
		require.Equal(t, r1[i].NodeID, r2[i].NodeID)
	}
}
