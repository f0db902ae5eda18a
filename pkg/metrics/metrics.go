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

// Package metrics exposes Prometheus counters/histograms for the busmap
// pipeline (run duration, candidate counts, solver degeneracy).
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	runDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:      "run_duration_seconds",
			Help:      "engine.Run duration in seconds.",
			Subsystem: "busmap",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"status"},
	)

	candidatesEvaluated = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:      "candidates_evaluated",
			Help:      "Number of candidate interfaces GetInitialInterfaces yielded per run.",
			Subsystem: "busmap",
			Buckets:   []float64{1, 2, 5, 10, 25, 50, 100, 250},
		},
		[]string{},
	)

	candidatesSurvived = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:      "candidates_survived",
			Help:      "Number of candidates surviving optimal_nids de-confliction per run.",
			Subsystem: "busmap",
			Buckets:   []float64{1, 2, 5, 10, 25, 50, 100},
		},
		[]string{},
	)

	assignmentsDegenerate = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name:      "assignments_degenerate_total",
			Help:      "Total assign.Solve calls that fell back to the non-optimal greedy result.",
			Subsystem: "busmap",
		},
		[]string{},
	)

	busDefsLoaded = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name:      "bus_defs_loaded",
			Help:      "Bus definitions currently loaded from the bus-def directory.",
			Subsystem: "busmap",
		},
		[]string{},
	)

	malformedBusDefsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name:      "malformed_bus_defs_total",
			Help:      "Total bus-def spec files skipped for being malformed.",
			Subsystem: "busmap",
		},
		[]string{},
	)
)

func init() {
	prometheus.MustRegister(runDuration)
	prometheus.MustRegister(candidatesEvaluated)
	prometheus.MustRegister(candidatesSurvived)
	prometheus.MustRegister(assignmentsDegenerate)
	prometheus.MustRegister(busDefsLoaded)
	prometheus.MustRegister(malformedBusDefsTotal)
}

// ObserveRun records one engine.Run call's outcome and wall-clock duration.
func ObserveRun(status string, duration time.Duration) {
	runDuration.WithLabelValues(status).Observe(duration.Seconds())
}

// ObserveCandidates records how many candidates a run considered and how
// many survived de-confliction.
func ObserveCandidates(evaluated, survived int) {
	candidatesEvaluated.WithLabelValues().Observe(float64(evaluated))
	candidatesSurvived.WithLabelValues().Observe(float64(survived))
}

// AddDegenerateAssignment increments the LP-infeasible-fallback counter
// (assign.Result.Degenerate).
func AddDegenerateAssignment() {
	assignmentsDegenerate.WithLabelValues().Inc()
}

// SetBusDefsLoaded records the size of the currently loaded bus-def set.
func SetBusDefsLoaded(n int) {
	busDefsLoaded.WithLabelValues().Set(float64(n))
}

// AddMalformedBusDef increments the skipped-spec-file counter
// (busdefio.ParseDir).
func AddMalformedBusDef() {
	malformedBusDefsTotal.WithLabelValues().Inc()
}
