package config

// StandardFilePermissions for launch configuration files.
const StandardFilePermissions = 0o644

// StandardDirPermissions for configuration directories.
const StandardDirPermissions = 0o755

// Default values for the canonical ZeRO stage-3 bf16 document. These are
// the settings the toolkit writes for a fresh single-node job and the
// baseline every preset starts from.
//
// Threshold defaults follow the DeepSpeed stage-3 recommendations: bucket
// sizes of 5e8 elements keep communication efficient for billion-parameter
// models without exhausting accelerator memory, and the 1e6-element
// persistence threshold keeps small layers (norms, biases) replicated
// instead of paying partition traffic for them.
const (
	// DefaultGradientAccumulationSteps folds this many micro-batches into
	// each optimizer step.
	DefaultGradientAccumulationSteps = 4

	// DefaultGradientClipping is the global gradient-norm clip.
	DefaultGradientClipping = 1.0

	// DefaultReduceBucketSize is the gradient reduction bucket, in elements.
	DefaultReduceBucketSize = 500_000_000

	// DefaultPrefetchBucketSize is the parameter prefetch bucket, in elements.
	DefaultPrefetchBucketSize = 500_000_000

	// DefaultParamPersistenceThreshold keeps parameters below this many
	// elements resident on every worker.
	DefaultParamPersistenceThreshold = 1_000_000

	// DefaultMaxLiveParameters caps live fetched parameters, in elements.
	DefaultMaxLiveParameters = 1_000_000_000

	// DefaultMaxReuseDistance controls parameter release scheduling, in elements.
	DefaultMaxReuseDistance = 1_000_000_000

	// DefaultSubGroupSize tiles optimizer-step processing, in elements.
	DefaultSubGroupSize = 1_000_000_000

	// DefaultNumProcesses is the worker count for a fresh single-node job.
	DefaultNumProcesses = 8

	// DefaultMainProcessPort is the rendezvous port used when the document
	// names no explicit port.
	DefaultMainProcessPort = 29500
)

// DefaultDeepSpeedConfig returns the ZeRO stage-3 section of the canonical
// document: full parameter partitioning, bf16 on, fp16 off, no offload.
func DefaultDeepSpeedConfig() *DeepSpeedConfig {
	return &DeepSpeedConfig{
		BF16:                            PrecisionFlag{Enabled: true},
		ContiguousGradients:             true,
		MultinodeLauncher:               MultinodeLauncherStandard,
		FP16:                            PrecisionFlag{Enabled: false},
		GradientAccumulationSteps:       DefaultGradientAccumulationSteps,
		GradientClipping:                DefaultGradientClipping,
		OffloadOptimizerDevice:          OffloadDeviceNone,
		OffloadParamDevice:              OffloadDeviceNone,
		OverlapComm:                     true,
		ReduceBucketSize:                DefaultReduceBucketSize,
		Stage3MaxLiveParameters:         DefaultMaxLiveParameters,
		Stage3MaxReuseDistance:          DefaultMaxReuseDistance,
		Stage3ParamPersistenceThreshold: DefaultParamPersistenceThreshold,
		Stage3PrefetchBucketSize:        DefaultPrefetchBucketSize,
		SubGroupSize:                    DefaultSubGroupSize,
		Zero3InitFlag:                   true,
		Zero3Save16BitModel:             true,
		ZeroForceDSCPUOptimizer:         false,
		ZeroStage:                       ZeroStageParameters,
	}
}

// Defaults returns the canonical single-node ZeRO-3 bf16 document.
func Defaults() *LaunchConfig {
	return &LaunchConfig{
		ComputeEnvironment:   ComputeEnvironmentLocalMachine,
		Debug:                false,
		DeepSpeed:            DefaultDeepSpeedConfig(),
		DistributedType:      DistributedTypeDeepSpeed,
		DowncastBF16:         No,
		MachineRank:          0,
		MainTrainingFunction: "main",
		MixedPrecision:       MixedPrecisionBF16,
		NumMachines:          Count(1),
		NumProcesses:         Count(DefaultNumProcesses),
		RdzvBackend:          RdzvBackendStatic,
		SameNetwork:          true,
		UseCPU:               false,
	}
}
