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

const sampleBusDef = `{
  "abstractionDefinition": {
    "busType": {"vendor": "acme", "library": "bus", "name": "simplebus", "version": "1.0"},
    "vendor": "acme", "library": "bus", "name": "simplebus_rtl", "version": "1.0",
    "ports": {
      "valid": {"wire": {"onMaster": {"direction": "out", "width": 1, "presence": "required"}}},
      "ready": {"wire": {"onMaster": {"direction": "in", "width": 1, "presence": "required"}}}
    }
  }
}`

func TestMainInternalWritesComponentCandidate(t *testing.T) {
	dir := t.TempDir()
	componentPath := filepath.Join(dir, "component.json")
	require.NoError(t, os.WriteFile(componentPath, []byte(`{"ports": {"m_valid": 1, "m_ready": -1}}`), 0o644))

	busDefDir := filepath.Join(dir, "busdefs")
	require.NoError(t, os.Mkdir(busDefDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(busDefDir, "simplebus.json"), []byte(sampleBusDef), 0o644))

	outPath := filepath.Join(dir, "out.json")
	require.NoError(t, mainInternal(componentPath, busDefDir, outPath, "", 0))

	data, err := os.ReadFile(outPath)
	require.NoError(t, err)

	var doc map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &doc))
	require.Contains(t, doc, "busInterfaces")
}

func TestMainInternalRejectsMissingComponent(t *testing.T) {
	dir := t.TempDir()
	err := mainInternal("/nonexistent/component.json", dir, "", "", 0)
	require.Error(t, err)
}
