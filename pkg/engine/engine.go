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

// Package engine orchestrates the full pipeline (spec.md §4.6): rank
// candidate Interfaces' bus-defs by fcost, solve the survivors, then
// de-conflict overlapping candidates with the BundleTree's leaf-voting
// selector.
package engine

import (
	"context"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"
	"k8s.io/klog/v2"

	"github.com/hdlportinf/busmap/pkg/bundletree"
	"github.com/hdlportinf/busmap/pkg/busmapping"
	"github.com/hdlportinf/busmap/pkg/fcost"
	"github.com/hdlportinf/busmap/pkg/matchcost"
	"github.com/hdlportinf/busmap/pkg/metrics"
	"github.com/hdlportinf/busmap/pkg/model"
)

// Config holds every tunable of the matching pipeline. Zero value is not
// valid; use DefaultConfig.
type Config struct {
	Weights matchcost.Weights

	// FcostGlobalTopK and FcostLocalTopK bound the bus-def survivor set fed
	// to the (expensive) assignment solve per candidate Interface.
	FcostGlobalTopK int
	FcostLocalTopK  int

	// MinLeaves is optimal_nids' leaf-vote threshold before relaxation.
	MinLeaves int

	// MinBundleSize and MaxBundleSize bound which tree nodes GetInitialInterfaces
	// yields as candidates. MaxBundleSize<0 means unbounded.
	MinBundleSize int
	MaxBundleSize int

	// PenalizeUnmapped enables the "every port should map" cost semantics
	// (spec.md §4.5).
	PenalizeUnmapped bool

	// Concurrent evaluates each candidate's bus-def survivors in parallel
	// via a fork-join group (spec.md §5). Safe because partitioning is by
	// distinct candidate index — no shared mutable state.
	Concurrent bool
}

// DefaultConfig matches spec.md's stated constants: Nw=2,Ww=1,Dw=4 weights,
// top-5-global + 4-local fcost survivors, min_leaves=4.
func DefaultConfig() Config {
	return Config{
		Weights:          matchcost.DefaultWeights,
		FcostGlobalTopK:  5,
		FcostLocalTopK:   4,
		MinLeaves:        4,
		MinBundleSize:    4,
		MaxBundleSize:    -1,
		PenalizeUnmapped: true,
		Concurrent:       true,
	}
}

// Candidate is one grouping the engine evaluated: a tree node and its
// bus-mappings ranked best-first.
type Candidate struct {
	NodeID   int
	Iface    *bundletree.Interface
	Mappings []*busmapping.BusMapping
}

func (c *Candidate) bestCost() float64 {
	if len(c.Mappings) == 0 {
		return matchcost.Cost{NC: 1e9}.DefaultValue()
	}
	return c.Mappings[0].Cost.DefaultValue()
}

// Run executes the full pipeline over every candidate the tree yields,
// returning the globally non-overlapping, locally best-ranked survivors
// sorted by cost (spec.md §4.6).
func Run(ctx context.Context, tree *bundletree.BundleTree, busDefs []*model.BusDef, cfg Config) (_ []Candidate, err error) {
	start := time.Now()
	defer func() {
		status := "ok"
		if err != nil {
			status = "error"
		}
		metrics.ObserveRun(status, time.Since(start))
	}()

	initial := tree.GetInitialInterfaces(cfg.MinBundleSize, cfg.MaxBundleSize)
	klog.V(2).Infof("engine: %d candidate interfaces from bundle tree", len(initial))

	evaluated := make([]Candidate, len(initial))

	evalOne := func(i int) error {
		cand := initial[i]
		ranked := fcost.Rank(cand.Iface, busDefs, cfg.FcostGlobalTopK, cfg.FcostLocalTopK)

		mappings := make([]*busmapping.BusMapping, 0, len(ranked))
		for _, r := range ranked {
			bm, err := busmapping.Solve(cand.Iface, r.BusDef, cfg.Weights, cfg.PenalizeUnmapped)
			if err != nil {
				return err
			}
			mappings = append(mappings, bm)
		}
		sort.SliceStable(mappings, func(a, b int) bool {
			return mappings[a].Cost.Value(cfg.Weights) < mappings[b].Cost.Value(cfg.Weights)
		})

		evaluated[i] = Candidate{NodeID: cand.NodeID, Iface: cand.Iface, Mappings: mappings}
		return nil
	}

	if cfg.Concurrent {
		g, _ := errgroup.WithContext(ctx)
		for i := range initial {
			i := i
			g.Go(func() error { return evalOne(i) })
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
	} else {
		for i := range initial {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			if err := evalOne(i); err != nil {
				return nil, err
			}
		}
	}

	costMap := make(map[int]float64, len(evaluated))
	for _, c := range evaluated {
		costMap[c.NodeID] = c.bestCost()
	}

	optimalIDs := tree.OptimalNIDs(costMap, cfg.MinLeaves)
	keep := make(map[int]bool, len(optimalIDs))
	for _, id := range optimalIDs {
		keep[id] = true
	}

	out := make([]Candidate, 0, len(optimalIDs))
	for _, c := range evaluated {
		if keep[c.NodeID] {
			out = append(out, c)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].bestCost() < out[j].bestCost() })

	metrics.ObserveCandidates(len(initial), len(out))
	klog.V(2).Infof("engine: %d candidates survived optimal_nids de-confliction", len(out))
	return out, nil
}
