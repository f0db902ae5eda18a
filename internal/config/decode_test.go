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

package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

type decodeTarget struct {
	Name     string `mapstructure:"name" validate:"required"`
	Count    int    `mapstructure:"count" validate:"gt=0"`
	Fraction float64 `mapstructure:"fraction"`
}

func TestDecodeFillsMatchingFields(t *testing.T) {
	var out decodeTarget
	err := Decode(map[string]any{"name": "axi", "count": 3, "fraction": 0.5}, &out)
	require.NoError(t, err)
	require.Equal(t, decodeTarget{Name: "axi", Count: 3, Fraction: 0.5}, out)
}

func TestDecodeRunsValidation(t *testing.T) {
	var out decodeTarget
	err := Decode(map[string]any{"name": "", "count": 0}, &out)
	require.Error(t, err)
}

func TestDecodeCoercesStringToInt(t *testing.T) {
	var out decodeTarget
	err := Decode(map[string]any{"name": "axi", "count": "3"}, &out)
	require.NoError(t, err)
	require.Equal(t, 3, out.Count)
}
