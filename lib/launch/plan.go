package launch

import (
	"os"
	"runtime"
	"strings"

	"github.com/dpquoc/zerolaunch/lib/config"
	"github.com/samber/oops"
)

// ProcessSpec identifies one worker process within the job topology.
type ProcessSpec struct {
	// Rank is the process's global rank across all machines, 0-based.
	Rank int

	// LocalRank is the process's rank on this machine, 0-based. The
	// runtime uses it to pick the local accelerator device.
	LocalRank int
}

// Plan is the resolved execution topology for this machine: auto counts
// replaced by detected hardware, and the global process grid reduced to
// the slice this machine's rank is responsible for.
type Plan struct {
	// WorldSize is the total number of worker processes across all machines.
	WorldSize int

	// NumMachines is the resolved machine count.
	NumMachines int

	// MachineRank is this machine's rank, carried from the document.
	MachineRank int

	// MasterAddr and MasterPort locate the rank-0 rendezvous endpoint.
	MasterAddr string
	MasterPort int

	// Local holds the process specs this machine launches, in local-rank order.
	Local []ProcessSpec
}

// NewPlan resolves cfg into this machine's execution plan. The config must
// already have passed Validate; NewPlan only reports topology arithmetic
// that cannot be expanded.
func NewPlan(cfg *config.LaunchConfig) (*Plan, error) {
	numMachines := 1
	if !cfg.NumMachines.IsAuto() {
		numMachines = cfg.NumMachines.Value()
	}

	worldSize, err := resolveWorldSize(cfg, numMachines)
	if err != nil {
		return nil, err
	}

	if cfg.MachineRank >= numMachines {
		return nil, oops.Errorf("machine_rank %d is outside the %d-machine topology",
			cfg.MachineRank, numMachines)
	}
	if worldSize%numMachines != 0 {
		return nil, oops.Errorf("num_processes %d does not divide evenly across %d machines",
			worldSize, numMachines)
	}
	perMachine := worldSize / numMachines

	plan := &Plan{
		WorldSize:   worldSize,
		NumMachines: numMachines,
		MachineRank: cfg.MachineRank,
		MasterAddr:  cfg.MainProcessIP,
		MasterPort:  cfg.MainProcessPort,
	}
	if plan.MasterAddr == "" {
		plan.MasterAddr = "127.0.0.1"
	}
	if plan.MasterPort == 0 {
		plan.MasterPort = config.DefaultMainProcessPort
	}

	base := cfg.MachineRank * perMachine
	for local := 0; local < perMachine; local++ {
		plan.Local = append(plan.Local, ProcessSpec{
			Rank:      base + local,
			LocalRank: local,
		})
	}

	log.WithFields(map[string]interface{}{
		"world_size":   plan.WorldSize,
		"num_machines": plan.NumMachines,
		"machine_rank": plan.MachineRank,
		"local_procs":  len(plan.Local),
	}).Debug("Resolved launch plan")

	return plan, nil
}

// resolveWorldSize turns num_processes into a concrete count. An auto
// value resolves against this machine's detected hardware, scaled by the
// machine count under the assumption of a homogeneous fleet.
func resolveWorldSize(cfg *config.LaunchConfig, numMachines int) (int, error) {
	if !cfg.NumProcesses.IsAuto() {
		return cfg.NumProcesses.Value(), nil
	}
	perMachine := localDeviceCount(cfg.UseCPU)
	if perMachine < 1 {
		return 0, oops.Errorf("num_processes is auto but no local devices were detected")
	}
	log.WithField("per_machine", perMachine).Debug("Resolved auto process count")
	return perMachine * numMachines, nil
}

// localDeviceCount reports how many worker processes this machine can
// host: the CPU count in CPU mode, otherwise the accelerators named in
// CUDA_VISIBLE_DEVICES, falling back to a single process.
func localDeviceCount(useCPU bool) int {
	if useCPU {
		return runtime.NumCPU()
	}
	if visible := os.Getenv("CUDA_VISIBLE_DEVICES"); visible != "" {
		return len(strings.Split(visible, ","))
	}
	return 1
}
