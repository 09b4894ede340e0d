package config

import (
	"testing"
)

// TestDefaults_Topology verifies the canonical document describes a
// single-machine eight-process local job.
func TestDefaults_Topology(t *testing.T) {
	cfg := Defaults()

	if cfg.ComputeEnvironment != ComputeEnvironmentLocalMachine {
		t.Errorf("ComputeEnvironment = %q, want LOCAL_MACHINE", cfg.ComputeEnvironment)
	}
	if cfg.NumMachines.IsAuto() || cfg.NumMachines.Value() != 1 {
		t.Errorf("NumMachines = %v, want 1", cfg.NumMachines)
	}
	if cfg.NumProcesses.IsAuto() || cfg.NumProcesses.Value() != DefaultNumProcesses {
		t.Errorf("NumProcesses = %v, want %d", cfg.NumProcesses, DefaultNumProcesses)
	}
	if cfg.MachineRank != 0 {
		t.Errorf("MachineRank = %d, want 0", cfg.MachineRank)
	}
	if cfg.RdzvBackend != RdzvBackendStatic {
		t.Errorf("RdzvBackend = %q, want static", cfg.RdzvBackend)
	}
	if !cfg.SameNetwork {
		t.Error("SameNetwork should default to true")
	}
	if cfg.UseCPU {
		t.Error("UseCPU should default to false")
	}
	if cfg.MainTrainingFunction != "main" {
		t.Errorf("MainTrainingFunction = %q, want main", cfg.MainTrainingFunction)
	}
}

// TestDefaults_Precision verifies the bf16 precision policy: bf16 on
// everywhere, fp16 off, no downcasting.
func TestDefaults_Precision(t *testing.T) {
	cfg := Defaults()

	if cfg.MixedPrecision != MixedPrecisionBF16 {
		t.Errorf("MixedPrecision = %q, want bf16", cfg.MixedPrecision)
	}
	if cfg.DowncastBF16 != No {
		t.Errorf("DowncastBF16 = %q, want no", cfg.DowncastBF16)
	}
	if !cfg.DeepSpeed.BF16.Enabled {
		t.Error("DeepSpeed.BF16.Enabled should default to true")
	}
	if cfg.DeepSpeed.FP16.Enabled {
		t.Error("DeepSpeed.FP16.Enabled should default to false")
	}
}

// TestDefaults_ZeroStage3 verifies the memory-partitioning policy of the
// canonical document.
func TestDefaults_ZeroStage3(t *testing.T) {
	ds := DefaultDeepSpeedConfig()

	if ds.ZeroStage != ZeroStageParameters {
		t.Errorf("ZeroStage = %d, want %d", ds.ZeroStage, ZeroStageParameters)
	}
	if ds.GradientAccumulationSteps != DefaultGradientAccumulationSteps {
		t.Errorf("GradientAccumulationSteps = %d, want %d",
			ds.GradientAccumulationSteps, DefaultGradientAccumulationSteps)
	}
	if ds.GradientClipping != DefaultGradientClipping {
		t.Errorf("GradientClipping = %g, want %g", ds.GradientClipping, DefaultGradientClipping)
	}
	if ds.OffloadOptimizerDevice != OffloadDeviceNone {
		t.Errorf("OffloadOptimizerDevice = %q, want none", ds.OffloadOptimizerDevice)
	}
	if ds.OffloadParamDevice != OffloadDeviceNone {
		t.Errorf("OffloadParamDevice = %q, want none", ds.OffloadParamDevice)
	}
	if ds.ReduceBucketSize != DefaultReduceBucketSize {
		t.Errorf("ReduceBucketSize = %d, want %d", ds.ReduceBucketSize, DefaultReduceBucketSize)
	}
	if ds.Stage3PrefetchBucketSize != DefaultPrefetchBucketSize {
		t.Errorf("Stage3PrefetchBucketSize = %d, want %d",
			ds.Stage3PrefetchBucketSize, DefaultPrefetchBucketSize)
	}
	if ds.Stage3ParamPersistenceThreshold != DefaultParamPersistenceThreshold {
		t.Errorf("Stage3ParamPersistenceThreshold = %d, want %d",
			ds.Stage3ParamPersistenceThreshold, DefaultParamPersistenceThreshold)
	}
	if ds.Stage3MaxLiveParameters != DefaultMaxLiveParameters {
		t.Errorf("Stage3MaxLiveParameters = %d, want %d",
			ds.Stage3MaxLiveParameters, DefaultMaxLiveParameters)
	}
	if ds.Stage3MaxReuseDistance != DefaultMaxReuseDistance {
		t.Errorf("Stage3MaxReuseDistance = %d, want %d",
			ds.Stage3MaxReuseDistance, DefaultMaxReuseDistance)
	}
	if !ds.Zero3InitFlag {
		t.Error("Zero3InitFlag should default to true")
	}
	if !ds.Zero3Save16BitModel {
		t.Error("Zero3Save16BitModel should default to true")
	}
	if !ds.OverlapComm {
		t.Error("OverlapComm should default to true")
	}
	if !ds.ContiguousGradients {
		t.Error("ContiguousGradients should default to true")
	}
	if ds.ZeroForceDSCPUOptimizer {
		t.Error("ZeroForceDSCPUOptimizer should default to false")
	}
	if ds.MultinodeLauncher != MultinodeLauncherStandard {
		t.Errorf("MultinodeLauncher = %q, want standard", ds.MultinodeLauncher)
	}
}

// TestDefaults_Validate verifies the canonical document passes its own
// validation with no warnings.
func TestDefaults_Validate(t *testing.T) {
	cfg := Defaults()
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() failed for default config: %v", err)
	}
	if warns := cfg.Warnings(); len(warns) != 0 {
		t.Errorf("Warnings() = %v, want none", warns)
	}
}
