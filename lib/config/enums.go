package config

import (
	"sort"
	"strings"

	"github.com/samber/oops"
)

// ComputeEnvironment identifies the deployment mode the job runs in.
type ComputeEnvironment string

const (
	// ComputeEnvironmentLocalMachine runs the job on the machine(s) named
	// in the topology section, launched directly by this process.
	ComputeEnvironmentLocalMachine ComputeEnvironment = "LOCAL_MACHINE"

	// ComputeEnvironmentSageMaker hands the job off to a managed cloud
	// training service; the topology section then describes the requested
	// instance fleet rather than local hardware.
	ComputeEnvironmentSageMaker ComputeEnvironment = "AMAZON_SAGEMAKER"
)

// IsValid reports whether the compute environment is a recognized value.
func (c ComputeEnvironment) IsValid() bool {
	switch c {
	case ComputeEnvironmentLocalMachine, ComputeEnvironmentSageMaker:
		return true
	default:
		return false
	}
}

func (c ComputeEnvironment) String() string {
	return string(c)
}

// DistributedType selects which distributed backend the runtime activates.
type DistributedType string

const (
	// DistributedTypeNo disables distributed execution (single process).
	DistributedTypeNo DistributedType = "NO"

	// DistributedTypeMultiCPU uses a CPU process group (gloo/mpi).
	DistributedTypeMultiCPU DistributedType = "MULTI_CPU"

	// DistributedTypeMultiGPU uses plain data-parallel GPU training (nccl).
	DistributedTypeMultiGPU DistributedType = "MULTI_GPU"

	// DistributedTypeDeepSpeed delegates partitioning and communication to
	// the DeepSpeed engine; requires the deepspeed_config section.
	DistributedTypeDeepSpeed DistributedType = "DEEPSPEED"

	// DistributedTypeFSDP uses fully-sharded data parallelism.
	DistributedTypeFSDP DistributedType = "FSDP"

	// DistributedTypeTPU targets a TPU pod slice.
	DistributedTypeTPU DistributedType = "TPU"
)

// validDistributedTypes maps each recognized backend to a short description,
// used for validation errors and CLI help output.
var validDistributedTypes = map[DistributedType]string{
	DistributedTypeNo:        "no distribution, single process",
	DistributedTypeMultiCPU:  "multi-process CPU training",
	DistributedTypeMultiGPU:  "data-parallel GPU training",
	DistributedTypeDeepSpeed: "DeepSpeed engine (ZeRO partitioning)",
	DistributedTypeFSDP:      "fully-sharded data parallel",
	DistributedTypeTPU:       "TPU pod slice",
}

// IsValid reports whether the distributed type is a recognized backend.
func (d DistributedType) IsValid() bool {
	_, ok := validDistributedTypes[d]
	return ok
}

func (d DistributedType) String() string {
	return string(d)
}

// DistributedTypeNames returns all recognized backend names, sorted.
func DistributedTypeNames() []string {
	names := make([]string, 0, len(validDistributedTypes))
	for d := range validDistributedTypes {
		names = append(names, string(d))
	}
	sort.Strings(names)
	return names
}

// MixedPrecision selects the reduced-bit numeric format used during
// training, or "no" for full fp32.
type MixedPrecision string

const (
	MixedPrecisionNo   MixedPrecision = "no"
	MixedPrecisionFP16 MixedPrecision = "fp16"
	MixedPrecisionBF16 MixedPrecision = "bf16"
	MixedPrecisionFP8  MixedPrecision = "fp8"
)

// IsValid reports whether the precision mode is recognized.
func (m MixedPrecision) IsValid() bool {
	switch m {
	case MixedPrecisionNo, MixedPrecisionFP16, MixedPrecisionBF16, MixedPrecisionFP8:
		return true
	default:
		return false
	}
}

func (m MixedPrecision) String() string {
	return string(m)
}

// RdzvBackend selects the rendezvous mechanism worker processes use to
// discover each other at startup.
type RdzvBackend string

const (
	// RdzvBackendStatic uses a fixed main address/port known up front.
	RdzvBackendStatic RdzvBackend = "static"

	// RdzvBackendC10d uses the torch c10d TCP store for dynamic rendezvous.
	RdzvBackendC10d RdzvBackend = "c10d"

	// RdzvBackendEtcd coordinates through an external etcd cluster.
	RdzvBackendEtcd RdzvBackend = "etcd"
)

// IsValid reports whether the rendezvous backend is recognized.
func (r RdzvBackend) IsValid() bool {
	switch r {
	case RdzvBackendStatic, RdzvBackendC10d, RdzvBackendEtcd:
		return true
	default:
		return false
	}
}

func (r RdzvBackend) String() string {
	return string(r)
}

// OffloadDevice names the memory tier optimizer or parameter state is
// offloaded to, or "none" to keep it on the accelerator.
type OffloadDevice string

const (
	OffloadDeviceNone OffloadDevice = "none"
	OffloadDeviceCPU  OffloadDevice = "cpu"
	OffloadDeviceNVMe OffloadDevice = "nvme"
)

// IsValid reports whether the offload device is recognized.
func (o OffloadDevice) IsValid() bool {
	switch o {
	case OffloadDeviceNone, OffloadDeviceCPU, OffloadDeviceNVMe:
		return true
	default:
		return false
	}
}

func (o OffloadDevice) String() string {
	return string(o)
}

// MultinodeLauncher names the mechanism DeepSpeed uses to start worker
// processes on the other machines of a multi-node job.
type MultinodeLauncher string

const (
	// MultinodeLauncherStandard lets the surrounding launcher (this tool,
	// or torchrun) start one agent per machine.
	MultinodeLauncherStandard MultinodeLauncher = "standard"

	// MultinodeLauncherPDSH fans out over pdsh from the rank-0 machine.
	MultinodeLauncherPDSH MultinodeLauncher = "pdsh"

	// MultinodeLauncherOpenMPI fans out through mpirun.
	MultinodeLauncherOpenMPI MultinodeLauncher = "openmpi"
)

// IsValid reports whether the multinode launcher is recognized.
func (m MultinodeLauncher) IsValid() bool {
	switch m {
	case MultinodeLauncherStandard, MultinodeLauncherPDSH, MultinodeLauncherOpenMPI:
		return true
	default:
		return false
	}
}

func (m MultinodeLauncher) String() string {
	return string(m)
}

// ParseMixedPrecision parses a precision mode name, case-insensitively.
func ParseMixedPrecision(s string) (MixedPrecision, error) {
	m := MixedPrecision(strings.ToLower(strings.TrimSpace(s)))
	if !m.IsValid() {
		return "", oops.Errorf("unrecognized mixed_precision %q (expected no, fp16, bf16 or fp8)", s)
	}
	return m, nil
}

// ParseDistributedType parses a distributed backend name.
func ParseDistributedType(s string) (DistributedType, error) {
	d := DistributedType(strings.ToUpper(strings.TrimSpace(s)))
	if !d.IsValid() {
		return "", oops.Errorf("unrecognized distributed_type %q (expected one of %s)",
			s, strings.Join(DistributedTypeNames(), ", "))
	}
	return d, nil
}
