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

package lex

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWords(t *testing.T) {
	testCases := []struct {
		name  string
		input string
		words []string
	}{
		{
			name:  "Case 1: simple underscore split",
			input: "axi0_AWADDR",
			words: []string{"axi", "0", "awaddr"},
		},
		{
			name:  "Case 2: camelCase boundary",
			input: "fooBarBaz",
			words: []string{"foo", "bar", "baz"},
		},
		{
			name:  "Case 3: letter-digit boundary for vectors",
			input: "test_bit0_n",
			words: []string{"test", "bit", "0", "n"},
		},
		{
			name:  "Case 4: acronym followed by word",
			input: "ARQOS",
			words: []string{"arqos"},
		},
		{
			name:  "Case 5: digit run stays contiguous",
			input: "front_port_axi4_0_aw_bits_addr",
			words: []string{"front", "port", "axi", "4", "0", "aw", "bits", "addr"},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.words, Words(tc.input))
		})
	}
}

func TestJaccardDist(t *testing.T) {
	a := map[string]struct{}{"a": {}, "b": {}}
	b := map[string]struct{}{"a": {}, "c": {}}
	require.InDelta(t, 1.0-1.0/3.0, JaccardDist(a, b), 1e-9)
	require.Equal(t, float64(0), JaccardDist(nil, nil))
}

func TestFracMissing(t *testing.T) {
	target := map[string]struct{}{"a": {}, "b": {}, "c": {}}
	have := map[string]struct{}{"a": {}}
	require.InDelta(t, 2.0/3.0, FracMissing(target, have), 1e-9)
}

func TestNumMissingTokens(t *testing.T) {
	require.Equal(t, 0, NumMissingTokens("awaddr", "axi0_awaddr"))
	require.Equal(t, 1, NumMissingTokens("wdata_parity", "axi0_wdata"))
}

func TestCache(t *testing.T) {
	c := NewCache(8)
	s1 := c.WordSet("axi0_AWADDR")
	s2 := c.WordSet("axi0_AWADDR")
	require.Equal(t, s1, s2)
}
