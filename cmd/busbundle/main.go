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

// Command busbundle reads a component's port list and writes its raw
// bundle tree with no bus-def library involved (spec.md §6's bundle-only
// output path).
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/spf13/pflag"
	"k8s.io/klog/v2"

	"github.com/hdlportinf/busmap/internal/version"
	"github.com/hdlportinf/busmap/pkg/bundletree"
	"github.com/hdlportinf/busmap/pkg/componentio"
	"github.com/hdlportinf/busmap/pkg/emit"
)

func main() {
	var output string
	var ver bool

	pflag.StringVarP(&output, "output", "o", "", "output path for the bundle document (default stdout)")
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

	if pflag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: busbundle [-o <out.json>] <component.json>")
		os.Exit(1)
	}

	if err := mainInternal(pflag.Arg(0), output); err != nil {
		klog.Error(err.Error())
		os.Exit(1)
	}
}

func mainInternal(componentPath, output string) error {
	ports, err := componentio.LoadFile(componentPath)
	if err != nil {
		return err
	}
	klog.Infof("loaded %d ports", len(ports))

	tree, err := bundletree.New(ports)
	if err != nil {
		return err
	}

	doc := emit.BuildBundleOnly(tree)
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal bundle: %w", err)
	}

	if output == "" {
		_, err = os.Stdout.Write(append(data, '\n'))
		return err
	}
	return os.WriteFile(output, data, 0o644)
}
