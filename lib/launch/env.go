package launch

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/dpquoc/zerolaunch/lib/config"
)

// Environ renders the environment for one worker process: the parent
// environment with the distributed-runtime variables layered on top.
// These are the variables the external training framework reads at import
// time to configure its process group, precision policy, and DeepSpeed
// engine.
func Environ(cfg *config.LaunchConfig, plan *Plan, spec ProcessSpec) []string {
	overrides := EnvOverrides(cfg, plan, spec)
	return mergeEnv(os.Environ(), overrides)
}

// EnvOverrides returns only the launcher-owned variables for one worker
// process, keyed by name.
func EnvOverrides(cfg *config.LaunchConfig, plan *Plan, spec ProcessSpec) map[string]string {
	env := map[string]string{
		"RANK":             strconv.Itoa(spec.Rank),
		"LOCAL_RANK":       strconv.Itoa(spec.LocalRank),
		"WORLD_SIZE":       strconv.Itoa(plan.WorldSize),
		"LOCAL_WORLD_SIZE": strconv.Itoa(len(plan.Local)),
		"MASTER_ADDR":      plan.MasterAddr,
		"MASTER_PORT":      strconv.Itoa(plan.MasterPort),

		"ACCELERATE_MIXED_PRECISION": cfg.MixedPrecision.String(),
		"ACCELERATE_USE_CPU":         boolEnv(cfg.UseCPU),
		"ACCELERATE_DOWNCAST_BF16":   cfg.DowncastBF16.String(),
		"ACCELERATE_DEBUG_MODE":      boolEnv(cfg.Debug),
	}

	if cfg.DistributedType == config.DistributedTypeDeepSpeed && cfg.DeepSpeed != nil {
		ds := cfg.DeepSpeed
		env["ACCELERATE_USE_DEEPSPEED"] = "true"
		env["ACCELERATE_DEEPSPEED_ZERO_STAGE"] = strconv.Itoa(ds.ZeroStage)
		env["ACCELERATE_GRADIENT_ACCUMULATION_STEPS"] = strconv.Itoa(ds.GradientAccumulationSteps)
		env["ACCELERATE_GRADIENT_CLIPPING"] = strconv.FormatFloat(ds.GradientClipping, 'g', -1, 64)
		env["ACCELERATE_DEEPSPEED_OFFLOAD_OPTIMIZER_DEVICE"] = ds.OffloadOptimizerDevice.String()
		env["ACCELERATE_DEEPSPEED_OFFLOAD_PARAM_DEVICE"] = ds.OffloadParamDevice.String()
		env["ACCELERATE_DEEPSPEED_ZERO3_INIT"] = boolEnv(ds.Zero3InitFlag)
		env["ACCELERATE_DEEPSPEED_ZERO3_SAVE_16BIT_MODEL"] = boolEnv(ds.Zero3Save16BitModel)
	}

	return env
}

func boolEnv(v bool) string {
	if v {
		return "true"
	}
	return "false"
}

// mergeEnv overlays overrides onto a KEY=VALUE environment list, replacing
// existing entries and appending new ones in sorted-stable append order.
func mergeEnv(base []string, overrides map[string]string) []string {
	seen := make(map[string]bool, len(overrides))
	merged := make([]string, 0, len(base)+len(overrides))
	for _, kv := range base {
		key := kv
		if i := strings.IndexByte(kv, '='); i >= 0 {
			key = kv[:i]
		}
		if v, ok := overrides[key]; ok {
			merged = append(merged, fmt.Sprintf("%s=%s", key, v))
			seen[key] = true
			continue
		}
		merged = append(merged, kv)
	}
	for k, v := range overrides {
		if !seen[k] {
			merged = append(merged, fmt.Sprintf("%s=%s", k, v))
		}
	}
	return merged
}
