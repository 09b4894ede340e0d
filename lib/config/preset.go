package config

import (
	"sort"
	"strings"

	"github.com/samber/oops"
)

// Preset names a ready-made launch configuration variant.
type Preset string

const (
	// PresetZero3BF16 is the canonical single-node stage-3 bf16 document.
	PresetZero3BF16 Preset = "zero3-bf16"

	// PresetZero3FP16 swaps the precision policy to fp16 for accelerators
	// without bfloat16 support.
	PresetZero3FP16 Preset = "zero3-fp16"

	// PresetZero3Offload pushes optimizer and parameter state to CPU
	// memory and forces the CPU-side optimizer, for models that do not
	// fit in accelerator memory even partitioned.
	PresetZero3Offload Preset = "zero3-offload"

	// PresetZero3Multinode configures a two-machine job with c10d
	// rendezvous; machine_rank and main_process_ip still need editing
	// per node.
	PresetZero3Multinode Preset = "zero3-multinode"
)

// presetBuilders maps each preset to its document constructor. Builders
// start from Defaults so presets only state their deltas.
var presetBuilders = map[Preset]func() *LaunchConfig{
	PresetZero3BF16: Defaults,
	PresetZero3FP16: func() *LaunchConfig {
		cfg := Defaults()
		cfg.MixedPrecision = MixedPrecisionFP16
		cfg.DeepSpeed.BF16 = PrecisionFlag{Enabled: false}
		cfg.DeepSpeed.FP16 = PrecisionFlag{Enabled: true}
		return cfg
	},
	PresetZero3Offload: func() *LaunchConfig {
		cfg := Defaults()
		cfg.DeepSpeed.OffloadOptimizerDevice = OffloadDeviceCPU
		cfg.DeepSpeed.OffloadParamDevice = OffloadDeviceCPU
		cfg.DeepSpeed.ZeroForceDSCPUOptimizer = true
		return cfg
	},
	PresetZero3Multinode: func() *LaunchConfig {
		cfg := Defaults()
		cfg.NumMachines = Count(2)
		cfg.NumProcesses = Count(16)
		cfg.RdzvBackend = RdzvBackendC10d
		cfg.SameNetwork = true
		cfg.MainProcessPort = DefaultMainProcessPort
		return cfg
	},
}

// FromPreset builds the named preset's document.
func FromPreset(name string) (*LaunchConfig, error) {
	build, ok := presetBuilders[Preset(name)]
	if !ok {
		return nil, oops.Errorf("unknown preset %q (available: %s)",
			name, strings.Join(PresetNames(), ", "))
	}
	return build(), nil
}

// PresetNames returns all preset names, sorted.
func PresetNames() []string {
	names := make([]string, 0, len(presetBuilders))
	for p := range presetBuilders {
		names = append(names, string(p))
	}
	sort.Strings(names)
	return names
}
