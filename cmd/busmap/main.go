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

// Command busmap reads a component's port list, ranks it against a
// library of bus-definition specs, and writes the resulting bus-interface
// proposals (spec.md §6's CLI surface).
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"syscall"

	"github.com/oklog/run"
	"github.com/spf13/pflag"
	"k8s.io/klog/v2"

	"github.com/hdlportinf/busmap/internal/metricsrv"
	"github.com/hdlportinf/busmap/internal/version"
	"github.com/hdlportinf/busmap/pkg/bundletree"
	"github.com/hdlportinf/busmap/pkg/busdefio"
	"github.com/hdlportinf/busmap/pkg/componentio"
	"github.com/hdlportinf/busmap/pkg/config"
	"github.com/hdlportinf/busmap/pkg/emit"
	"github.com/hdlportinf/busmap/pkg/engine"
	"github.com/hdlportinf/busmap/pkg/model"
)

func main() {
	var busDefDir, output, cfgPath string
	var metricsPort int
	var ver bool

	pflag.StringVarP(&busDefDir, "bus-def-dir", "b", "", "directory of abstractionDefinition bus-def spec files")
	pflag.StringVarP(&output, "output", "o", "", "output path for the component candidate file (default stdout)")
	pflag.StringVarP(&cfgPath, "config", "c", "", "engine config YAML file (optional, defaults built in)")
	pflag.IntVar(&metricsPort, "metrics-port", 0, "serve /healthz and /metrics on this port while running (0 disables)")
	pflag.BoolVar(&ver, "version", false, "show the version")

	fs := flag.NewFlagSet("klog", flag.ExitOnError)
	klog.InitFlags(fs)
	pflag.CommandLine.AddGoFlagSet(fs)
	pflag.Parse()
	defer klog.Flush()

	if ver {
		fmt.Println("Version:", version.Version)
		os.Exit(0)
	}

	if pflag.NArg() != 1 || busDefDir == "" {
		fmt.Fprintln(os.Stderr, "usage: busmap -b <bus-def-dir> [-o <out.json>] <component.json>")
		os.Exit(1)
	}

	if err := mainInternal(pflag.Arg(0), busDefDir, output, cfgPath, metricsPort); err != nil {
		klog.Error(err.Error())
		os.Exit(1)
	}
}

func mainInternal(componentPath, busDefDir, output, cfgPath string, metricsPort int) error {
	cfg := config.Default()
	if cfgPath != "" {
		loaded, err := config.NewFromFile(cfgPath)
		if err != nil {
			return err
		}
		cfg = *loaded
	}

	ports, err := componentio.LoadFile(componentPath)
	if err != nil {
		return err
	}

	busDefs, err := busdefio.ParseDir(busDefDir)
	if err != nil {
		return err
	}
	klog.Infof("loaded %d ports, %d bus defs", len(ports), len(busDefs))

	tree, err := bundletree.New(ports)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var g run.Group
	g.Add(run.SignalHandler(ctx, os.Interrupt, syscall.SIGTERM))
	if metricsPort != 0 {
		ms := metricsrv.New(ctx, metricsPort)
		g.Add(ms.RunGroup())
	}
	g.Add(func() error {
		defer cancel()
		return writeResult(ctx, tree, busDefs, cfg, output)
	}, func(error) { cancel() })

	return g.Run()
}

// writeResult runs the full matching pipeline and writes the resulting
// component candidate document to output (stdout if empty).
func writeResult(ctx context.Context, tree *bundletree.BundleTree, busDefs []*model.BusDef, cfg config.Config, output string) error {
	results, err := engine.Run(ctx, tree, busDefs, cfg.EngineConfig())
	if err != nil {
		return fmt.Errorf("engine run: %w", err)
	}

	doc := emit.BuildComponentCandidate(results)
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal result: %w", err)
	}

	if output == "" {
		_, err = os.Stdout.Write(append(data, '\n'))
		return err
	}
	return os.WriteFile(output, data, 0o644)
}
