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

package assign

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hdlportinf/busmap/pkg/model"
)

func TestSolveGreedyNoCollision(t *testing.T) {
	C := [][]float64{
		{0, 5},
		{5, 0},
	}
	res, err := Solve(C)
	require.NoError(t, err)
	require.False(t, res.Degenerate)
	require.Equal(t, 0, res.Mapping[0])
	require.Equal(t, 1, res.Mapping[1])
}

func TestSolveFallsBackToLPOnCollision(t *testing.T) {
	// Both rows prefer column 0: greedy collides, LP must resolve it.
	C := [][]float64{
		{0, 1},
		{0.1, 0.2},
	}
	res, err := Solve(C)
	require.NoError(t, err)
	require.Len(t, res.Mapping, 2)
	seen := map[int]bool{}
	for _, j := range res.Mapping {
		require.False(t, seen[j], "column assigned twice")
		seen[j] = true
	}
}

func TestSolveTransposesWhenMoreRowsThanColumns(t *testing.T) {
	C := [][]float64{
		{0},
		{1},
		{2},
	}
	res, err := Solve(C)
	require.NoError(t, err)
	require.Equal(t, 0, res.Mapping[0])
	_, ok := res.Mapping[1]
	require.False(t, ok)
	_, ok = res.Mapping[2]
	require.False(t, ok)
}

func TestDupWords(t *testing.T) {
	ports := []model.Port{
		model.NewPort("m_axi_awvalid", 1, true, model.Output),
		model.NewPort("m_axi_awready", 1, true, model.Input),
	}
	dup := DupWords(ports)
	_, ok := dup["m"]
	require.True(t, ok)
	_, ok = dup["axi"]
	require.True(t, ok)
	_, ok = dup["awvalid"]
	require.False(t, ok)
}

func TestPortCostWidthUnknownNeverMismatches(t *testing.T) {
	p := model.NewPort("wdata", 32, true, model.Input)
	q := model.NewPort("wdata", 0, false, model.Input)
	c := PortCost(p, q, map[string]struct{}{})
	require.Equal(t, 0, c.WC)
}
