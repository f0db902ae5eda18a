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

package fcost

import (
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

func axiLikeBusDef(t *testing.T) *model.BusDef {
	t.Helper()
	bd, err := model.NewBusDef(
		model.Tag{Name: "AXI4"}, model.Tag{Name: "AXI4"}, model.DriverMaster,
		[]model.BusSignal{
			sig("awvalid", 1, model.Input, model.Required),
			sig("awready", 1, model.Output, model.Required),
		},
		[]model.BusSignal{
			sig("wdata", 32, model.Input, model.Optional),
		},
		nil,
	)
	require.NoError(t, err)
	return bd
}

func TestGlobalFcostRewardsExactMatch(t *testing.T) {
	iface := &bundletree.Interface{Ports: []model.Port{
		port("awvalid", 1, model.Input),
		port("awready", 1, model.Output),
	}}
	bd := axiLikeBusDef(t)

	exact := Value(iface, bd, Global)

	mismatched := &bundletree.Interface{Ports: []model.Port{
		port("totally_unrelated_name", 1, model.Input),
		port("also_unrelated", 1, model.Output),
	}}
	far := Value(mismatched, bd, Global)

	require.Less(t, exact, far)
}

func TestLocalFcostIgnoresLeftoverPorts(t *testing.T) {
	bd := axiLikeBusDef(t)
	small := &bundletree.Interface{Ports: []model.Port{
		port("awvalid", 1, model.Input),
		port("awready", 1, model.Output),
	}}
	extra := &bundletree.Interface{Ports: []model.Port{
		port("awvalid", 1, model.Input),
		port("awready", 1, model.Output),
		port("some_extra_signal", 8, model.Output),
	}}

	// Global must penalize the extra leftover port; local must not.
	require.Less(t, Value(small, bd, Global), Value(extra, bd, Global))
	require.InDelta(t, Value(small, bd, Local), Value(extra, bd, Local), 0.3)
}

func TestRankKeepsTopGlobalAndLocal(t *testing.T) {
	bd1 := axiLikeBusDef(t)
	bd2, err := model.NewBusDef(
		model.Tag{Name: "APB"}, model.Tag{Name: "APB"}, model.DriverMaster,
		[]model.BusSignal{sig("psel", 1, model.Input, model.Required)},
		nil, nil,
	)
	require.NoError(t, err)

	iface := &bundletree.Interface{Ports: []model.Port{
		port("awvalid", 1, model.Input),
		port("awready", 1, model.Output),
	}}

	ranked := Rank(iface, []*model.BusDef{bd1, bd2}, 1, 1)
	require.NotEmpty(t, ranked)
	require.Equal(t, bd1, ranked[0].BusDef)
}
