package config

import (
	"fmt"

	"github.com/samber/oops"
)

// Validate checks that the document is well-formed: every enumerated field
// takes a recognized value, numeric thresholds are non-negative, and the
// precision blocks are consistent. It returns the first violation found.
//
// Cross-field checks that the external runtime treats as advisory (rank
// versus machine count, precision mode versus enabled blocks) are reported
// by Warnings instead.
func (c *LaunchConfig) Validate() error {
	if err := c.validateTopology(); err != nil {
		return err
	}
	if err := c.validatePrecision(); err != nil {
		return err
	}
	if c.MainTrainingFunction == "" {
		return oops.Errorf("main_training_function must not be empty")
	}
	if c.DistributedType == DistributedTypeDeepSpeed {
		if c.DeepSpeed == nil {
			return oops.Errorf("distributed_type DEEPSPEED requires a deepspeed_config section")
		}
		return c.DeepSpeed.validate()
	}
	return nil
}

func (c *LaunchConfig) validateTopology() error {
	if !c.ComputeEnvironment.IsValid() {
		return oops.Errorf("unrecognized compute_environment %q", c.ComputeEnvironment)
	}
	if !c.DistributedType.IsValid() {
		return oops.Errorf("unrecognized distributed_type %q", c.DistributedType)
	}
	if !c.RdzvBackend.IsValid() {
		return oops.Errorf("unrecognized rdzv_backend %q", c.RdzvBackend)
	}
	if c.MachineRank < 0 {
		return oops.Errorf("machine_rank must be non-negative, got %d", c.MachineRank)
	}
	if !c.NumMachines.IsAuto() && c.NumMachines.Value() < 1 {
		return oops.Errorf("num_machines must be at least 1, got %d", c.NumMachines.Value())
	}
	if !c.NumProcesses.IsAuto() && c.NumProcesses.Value() < 1 {
		return oops.Errorf("num_processes must be at least 1, got %d", c.NumProcesses.Value())
	}
	if c.MainProcessPort < 0 || c.MainProcessPort > 65535 {
		return oops.Errorf("main_process_port must be a valid port, got %d", c.MainProcessPort)
	}
	return nil
}

func (c *LaunchConfig) validatePrecision() error {
	if !c.MixedPrecision.IsValid() {
		return oops.Errorf("unrecognized mixed_precision %q", c.MixedPrecision)
	}
	if !c.DowncastBF16.IsValid() {
		return oops.Errorf("downcast_bf16 must be 'yes' or 'no', got %q", c.DowncastBF16)
	}
	return nil
}

// validate checks the DeepSpeed section on its own.
func (d *DeepSpeedConfig) validate() error {
	if d.ZeroStage < ZeroStageDisabled || d.ZeroStage > ZeroStageParameters {
		return oops.Errorf("zero_stage must be between %d and %d, got %d",
			ZeroStageDisabled, ZeroStageParameters, d.ZeroStage)
	}
	if !d.OffloadOptimizerDevice.IsValid() {
		return oops.Errorf("unrecognized offload_optimizer_device %q", d.OffloadOptimizerDevice)
	}
	if !d.OffloadParamDevice.IsValid() {
		return oops.Errorf("unrecognized offload_param_device %q", d.OffloadParamDevice)
	}
	if !d.MultinodeLauncher.IsValid() {
		return oops.Errorf("unrecognized deepspeed_multinode_launcher %q", d.MultinodeLauncher)
	}
	if d.GradientAccumulationSteps < 1 {
		return oops.Errorf("gradient_accumulation_steps must be at least 1, got %d",
			d.GradientAccumulationSteps)
	}
	if d.GradientClipping < 0 {
		return oops.Errorf("gradient_clipping must be non-negative, got %g", d.GradientClipping)
	}
	for _, t := range []struct {
		name  string
		value int64
	}{
		{"reduce_bucket_size", d.ReduceBucketSize},
		{"sub_group_size", d.SubGroupSize},
		{"stage3_prefetch_bucket_size", d.Stage3PrefetchBucketSize},
		{"stage3_param_persistence_threshold", d.Stage3ParamPersistenceThreshold},
		{"stage3_max_live_parameters", d.Stage3MaxLiveParameters},
		{"stage3_max_reuse_distance", d.Stage3MaxReuseDistance},
	} {
		if t.value < 0 {
			return oops.Errorf("%s must be non-negative, got %d", t.name, t.value)
		}
	}
	// One numeric representation per document. The engine would reject
	// this at step time too, but failing at load is far cheaper.
	if d.BF16.Enabled && d.FP16.Enabled {
		return oops.Errorf("bf16.enabled and fp16.enabled must not both be true")
	}
	return nil
}

// Warnings reports advisory cross-field inconsistencies the external
// runtime tolerates but that usually indicate a misconfigured job.
func (c *LaunchConfig) Warnings() []string {
	var warns []string
	if !c.NumMachines.IsAuto() && c.MachineRank >= c.NumMachines.Value() {
		warns = append(warns, fmt.Sprintf(
			"machine_rank %d is outside the %d-machine topology", c.MachineRank, c.NumMachines.Value()))
	}
	if c.DeepSpeed != nil {
		if c.MixedPrecision == MixedPrecisionBF16 && !c.DeepSpeed.BF16.Enabled {
			warns = append(warns, "mixed_precision is bf16 but deepspeed_config.bf16.enabled is false")
		}
		if c.MixedPrecision == MixedPrecisionFP16 && !c.DeepSpeed.FP16.Enabled {
			warns = append(warns, "mixed_precision is fp16 but deepspeed_config.fp16.enabled is false")
		}
		if c.DeepSpeed.ZeroStage != ZeroStageParameters &&
			(c.DeepSpeed.Zero3InitFlag || c.DeepSpeed.Zero3Save16BitModel) {
			warns = append(warns, fmt.Sprintf(
				"zero3_* flags have no effect at zero_stage %d", c.DeepSpeed.ZeroStage))
		}
	}
	if c.UseCPU && c.MixedPrecision != MixedPrecisionNo && c.MixedPrecision != MixedPrecisionBF16 {
		warns = append(warns, fmt.Sprintf(
			"mixed_precision %s is not supported on CPU", c.MixedPrecision))
	}
	if !c.NumMachines.IsAuto() && c.NumMachines.Value() > 1 &&
		c.RdzvBackend == RdzvBackendStatic && !c.SameNetwork {
		warns = append(warns, "static rendezvous across network segments usually needs main_process_ip set")
	}
	return warns
}
