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

// Package config loads the busmap engine's tunables from a YAML file
// (spec.md §4.7's named constants, kept overridable rather than baked in).
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	decodeconfig "github.com/hdlportinf/busmap/internal/config"
	"github.com/hdlportinf/busmap/pkg/engine"
	"github.com/hdlportinf/busmap/pkg/matchcost"
)

// Endpoint is the metrics/health HTTP listener setting. cmd/busmap does not
// read it: its listener port comes from the --metrics-port flag.
type Endpoint struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// Config is the full set of engine tunables plus the ambient serving
// endpoint. Zero value is not valid on its own; start from Default.
type Config struct {
	HTTP Endpoint `yaml:"http" mapstructure:"http"`

	// BusDefDir names a directory of abstractionDefinition spec files
	// (pkg/busdefio). cmd/busmap does not read it: the directory comes from
	// its -b flag.
	BusDefDir string `yaml:"bus_def_dir" mapstructure:"bus_def_dir"`

	NameWeight  float64 `yaml:"name_weight"  mapstructure:"name_weight"`
	WidthWeight float64 `yaml:"width_weight" mapstructure:"width_weight"`
	DirWeight   float64 `yaml:"dir_weight"   mapstructure:"dir_weight"`

	FcostGlobalTopK int `yaml:"fcost_global_top_k" mapstructure:"fcost_global_top_k" validate:"gt=0"`
	FcostLocalTopK  int `yaml:"fcost_local_top_k"  mapstructure:"fcost_local_top_k"  validate:"gte=0"`

	MinLeaves int `yaml:"min_leaves" mapstructure:"min_leaves" validate:"gte=0"`

	MinBundleSize      int `yaml:"min_bundle_size"       mapstructure:"min_bundle_size"       validate:"gt=0"`
	MaxBundleSize      int `yaml:"max_bundle_size"       mapstructure:"max_bundle_size"       validate:"ne=0"`
	// AbbreviateRootSize and LargeClusterSkip are decoded but not passed to
	// the engine by EngineConfig: the bundle tree abbreviates the root at a
	// fixed size of 100, and no large-cluster skip is applied.
	AbbreviateRootSize int `yaml:"abbreviate_root_size"  mapstructure:"abbreviate_root_size"`
	LargeClusterSkip   int `yaml:"large_cluster_skip"    mapstructure:"large_cluster_skip"`

	PenalizeUnmapped bool `yaml:"penalize_unmapped" mapstructure:"penalize_unmapped"`
	Concurrent       bool `yaml:"concurrent"        mapstructure:"concurrent"`
}

// Default mirrors engine.DefaultConfig's constants (spec.md §4.7).
func Default() Config {
	ec := engine.DefaultConfig()
	return Config{
		HTTP:               Endpoint{Port: 9090},
		NameWeight:         ec.Weights.Name,
		WidthWeight:        ec.Weights.Width,
		DirWeight:          ec.Weights.Dir,
		FcostGlobalTopK:    ec.FcostGlobalTopK,
		FcostLocalTopK:     ec.FcostLocalTopK,
		MinLeaves:          ec.MinLeaves,
		MinBundleSize:      ec.MinBundleSize,
		MaxBundleSize:      ec.MaxBundleSize,
		AbbreviateRootSize: 100,
		LargeClusterSkip:   200,
		PenalizeUnmapped:   ec.PenalizeUnmapped,
		Concurrent:         ec.Concurrent,
	}
}

// NewFromFile loads a YAML config over top of Default, so a partial
// override file still produces a valid engine.Config: the file is parsed
// loosely into a map first and decoded via internal/config.Decode into a
// Config that starts out as Default, so any key the file leaves unset keeps
// its default; Decode then runs struct validation tags over the result.
func NewFromFile(fname string) (*Config, error) {
	data, err := os.ReadFile(fname)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", fname, err)
	}

	var raw map[string]any
	if err = yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", fname, err)
	}

	cfg := Default()
	if err = decodeconfig.Decode(raw, &cfg); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", fname, err)
	}
	if err = cfg.validateExtra(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// validateExtra covers constraints validator struct tags can't express
// directly, beyond what internal/config.Decode already checked.
func (cfg *Config) validateExtra() error {
	if cfg.MaxBundleSize < -1 {
		return fmt.Errorf("max_bundle_size must be -1 (unbounded) or positive")
	}
	return nil
}

// EngineConfig translates the loaded YAML into the engine package's
// runtime Config.
func (cfg *Config) EngineConfig() engine.Config {
	return engine.Config{
		Weights: matchcost.Weights{
			Name:  cfg.NameWeight,
			Width: cfg.WidthWeight,
			Dir:   cfg.DirWeight,
		},
		FcostGlobalTopK:  cfg.FcostGlobalTopK,
		FcostLocalTopK:   cfg.FcostLocalTopK,
		MinLeaves:        cfg.MinLeaves,
		MinBundleSize:    cfg.MinBundleSize,
		MaxBundleSize:    cfg.MaxBundleSize,
		PenalizeUnmapped: cfg.PenalizeUnmapped,
		Concurrent:       cfg.Concurrent,
	}
}
