// Copyright (C) 2025 The labellint authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package rule_engine

// Config holds every tunable threshold used by the rule set plus the
// engine's execution settings. The statistical constants are configuration
// with documented defaults rather than hard-coded values; DefaultConfig is
// what the CLI uses when no overrides are given.
type Config struct {
	// AreaTolerance is the maximum relative difference between w*h and
	// the stored area attribute before the mismatch rule fires.
	// Default 0.01 (1%).
	AreaTolerance float64 `yaml:"area_tolerance"`

	// IQRMultiplier sets the outlier fences at
	// [Q1 - m*IQR, Q3 + m*IQR]. Default 1.5, the standard convention.
	IQRMultiplier float64 `yaml:"iqr_multiplier"`

	// MinRatioSamples is the minimum number of usable aspect-ratio
	// samples before quartiles are considered meaningful. Below it the
	// outlier rule emits nothing. Default 4.
	MinRatioSamples int `yaml:"min_ratio_samples"`

	// MinAnnotations gates the class-imbalance rule: datasets with fewer
	// total annotations produce no imbalance findings. Default 50.
	MinAnnotations int `yaml:"min_annotations"`

	// ImbalanceFloor and ImbalanceFraction define the starvation
	// threshold for a category: count < max(floor, total*fraction).
	// Defaults 10 and 0.001.
	ImbalanceFloor    int     `yaml:"imbalance_floor"`
	ImbalanceFraction float64 `yaml:"imbalance_fraction"`

	// Workers controls engine parallelism. 0 or 1 runs rules
	// sequentially; higher values evaluate rules concurrently while the
	// report keeps deterministic registry order either way.
	Workers int `yaml:"workers"`
}

// DefaultConfig returns the documented defaults.
func DefaultConfig() Config {
	return Config{
		AreaTolerance:     0.01,
		IQRMultiplier:     1.5,
		MinRatioSamples:   4,
		MinAnnotations:    50,
		ImbalanceFloor:    10,
		ImbalanceFraction: 0.001,
		Workers:           0,
	}
}
