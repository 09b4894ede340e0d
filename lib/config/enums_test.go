package config

import (
	"strings"
	"testing"
)

func TestDistributedType_IsValid(t *testing.T) {
	valid := []DistributedType{
		DistributedTypeNo, DistributedTypeMultiCPU, DistributedTypeMultiGPU,
		DistributedTypeDeepSpeed, DistributedTypeFSDP, DistributedTypeTPU,
	}
	for _, d := range valid {
		if !d.IsValid() {
			t.Errorf("%q should be valid", d)
		}
	}
	for _, d := range []DistributedType{"", "deepspeed", "HOROVOD"} {
		if d.IsValid() {
			t.Errorf("%q should not be valid", d)
		}
	}
}

func TestParseDistributedType(t *testing.T) {
	got, err := ParseDistributedType("deepspeed")
	if err != nil {
		t.Fatalf("ParseDistributedType(deepspeed) failed: %v", err)
	}
	if got != DistributedTypeDeepSpeed {
		t.Errorf("ParseDistributedType(deepspeed) = %q, want DEEPSPEED", got)
	}

	if _, err := ParseDistributedType("horovod"); err == nil {
		t.Error("ParseDistributedType(horovod) should fail")
	} else if !strings.Contains(err.Error(), "DEEPSPEED") {
		t.Errorf("error should list valid backends, got: %v", err)
	}
}

func TestDistributedTypeNames_Sorted(t *testing.T) {
	names := DistributedTypeNames()
	if len(names) != len(validDistributedTypes) {
		t.Fatalf("DistributedTypeNames() returned %d names, want %d",
			len(names), len(validDistributedTypes))
	}
	for i := 1; i < len(names); i++ {
		if names[i-1] >= names[i] {
			t.Errorf("names not sorted: %q before %q", names[i-1], names[i])
		}
	}
}

func TestMixedPrecision_IsValid(t *testing.T) {
	for _, m := range []MixedPrecision{MixedPrecisionNo, MixedPrecisionFP16, MixedPrecisionBF16, MixedPrecisionFP8} {
		if !m.IsValid() {
			t.Errorf("%q should be valid", m)
		}
	}
	for _, m := range []MixedPrecision{"", "BF16", "int8"} {
		if m.IsValid() {
			t.Errorf("%q should not be valid", m)
		}
	}
}

func TestParseMixedPrecision(t *testing.T) {
	got, err := ParseMixedPrecision("BF16")
	if err != nil {
		t.Fatalf("ParseMixedPrecision(BF16) failed: %v", err)
	}
	if got != MixedPrecisionBF16 {
		t.Errorf("ParseMixedPrecision(BF16) = %q, want bf16", got)
	}
	if _, err := ParseMixedPrecision("int8"); err == nil {
		t.Error("ParseMixedPrecision(int8) should fail")
	}
}

func TestRdzvBackend_IsValid(t *testing.T) {
	for _, r := range []RdzvBackend{RdzvBackendStatic, RdzvBackendC10d, RdzvBackendEtcd} {
		if !r.IsValid() {
			t.Errorf("%q should be valid", r)
		}
	}
	if RdzvBackend("consul").IsValid() {
		t.Error("consul should not be a valid rendezvous backend")
	}
}

func TestOffloadDevice_IsValid(t *testing.T) {
	for _, o := range []OffloadDevice{OffloadDeviceNone, OffloadDeviceCPU, OffloadDeviceNVMe} {
		if !o.IsValid() {
			t.Errorf("%q should be valid", o)
		}
	}
	if OffloadDevice("disk").IsValid() {
		t.Error("disk should not be a valid offload device")
	}
}

func TestComputeEnvironment_IsValid(t *testing.T) {
	if !ComputeEnvironmentLocalMachine.IsValid() || !ComputeEnvironmentSageMaker.IsValid() {
		t.Error("known compute environments should be valid")
	}
	if ComputeEnvironment("KUBERNETES").IsValid() {
		t.Error("KUBERNETES should not be a valid compute environment")
	}
}

func TestMultinodeLauncher_IsValid(t *testing.T) {
	for _, m := range []MultinodeLauncher{MultinodeLauncherStandard, MultinodeLauncherPDSH, MultinodeLauncherOpenMPI} {
		if !m.IsValid() {
			t.Errorf("%q should be valid", m)
		}
	}
	if MultinodeLauncher("ssh").IsValid() {
		t.Error("ssh should not be a valid multinode launcher")
	}
}
