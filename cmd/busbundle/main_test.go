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

package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMainInternalWritesBundleFile(t *testing.T) {
	dir := t.TempDir()
	componentPath := filepath.Join(dir, "component.json")
	require.NoError(t, os.WriteFile(componentPath, []byte(`{"ports": {"m_axi_wdata0": 32, "m_axi_wdata1": 32}}`), 0o644))

	outPath := filepath.Join(dir, "bundle.json")
	require.NoError(t, mainInternal(componentPath, outPath))

	data, err := os.ReadFile(outPath)
	require.NoError(t, err)

	var doc map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &doc))
	require.Contains(t, doc, "_")
}

func TestMainInternalRejectsMissingComponent(t *testing.T) {
	err := mainInternal("/nonexistent/component.json", "")
	require.Error(t, err)
}
