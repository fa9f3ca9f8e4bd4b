// This file is part of bc80-sub000 - https://github.com/isolenta/bc80-sub000
//
// Copyright 2026 The bc80-sub000 Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// ProjectConfig is an optional YAML file (--config FILE) carrying the same
// knobs as the command-line flags, for multi-file or CI build setups that
// would otherwise need a long flag list repeated on every invocation.
// Any flag passed explicitly on the command line overrides the matching
// config value.
type ProjectConfig struct {
	// Output is the path written on success. Empty keeps the input-derived
	// default.
	Output string `yaml:"output"`

	// Include lists directories searched for INCLUDE/INCBIN arguments, in
	// order, after the path as given (relative to the working directory).
	Include []string `yaml:"include"`

	// Defines seeds the symbol table before parsing, equivalent to one
	// "-Dkey=value" per entry.
	Defines map[string]string `yaml:"defines"`

	// Target selects the output backend: "raw", "object" or "sna".
	Target string `yaml:"target"`

	// Profile enables PROFILE/ENDPROFILE accounting when true.
	Profile bool `yaml:"profile"`

	// ProfileData also reports PROFILE windows that emitted no bytes; code
	// and data are not told apart.
	ProfileData bool `yaml:"profile_data"`

	// SNA holds the ZX Spectrum snapshot backend's knobs; only consulted
	// when Target is "sna".
	SNA SNAConfig `yaml:"sna"`
}

// SNAConfig mirrors section.SNAOptions in YAML-friendly form (plain
// pointers round-trip through yaml.v3 directly).
type SNAConfig struct {
	Generic bool   `yaml:"generic"`
	PC      *int64 `yaml:"pc"`
	RAMTop  *int64 `yaml:"ramtop"`
}

// loadProjectConfig reads and parses a ProjectConfig from path.
func loadProjectConfig(path string) (*ProjectConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("--config %s: %w", path, err)
	}
	var cfg ProjectConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("--config %s: %w", path, err)
	}
	return &cfg, nil
}

// applyProjectConfig fills in any flag the user did not pass explicitly on
// cmd's command line from cfg, leaving command-line values untouched
// everywhere they were set.
func applyProjectConfig(cmd *cobra.Command, cfg *ProjectConfig) {
	changed := cmd.Flags().Changed
	if !changed("output") && cfg.Output != "" {
		outFile = cfg.Output
	}
	if !changed("include") && len(cfg.Include) > 0 {
		includeDirs = append(includeDirs, cfg.Include...)
	}
	if !changed("define") && len(cfg.Defines) > 0 {
		for k, v := range cfg.Defines {
			if v == "" {
				defineArgs = append(defineArgs, k)
				continue
			}
			defineArgs = append(defineArgs, k+"="+v)
		}
	}
	if !changed("target") && cfg.Target != "" {
		target = cfg.Target
	}
	if !changed("profile") && cfg.Profile {
		profileFlag = "on"
	}
	if !changed("profile-data") && cfg.ProfileData {
		profileData = true
	}
	if !changed("sna-generic") && cfg.SNA.Generic {
		snaGeneric = true
	}
	if !changed("sna-pc") && cfg.SNA.PC != nil {
		snaPC, snaPCSet = *cfg.SNA.PC, true
	}
	if !changed("sna-ramtop") && cfg.SNA.RAMTop != nil {
		snaRAMTop, snaRAMTopSet = *cfg.SNA.RAMTop, true
	}
}
