package config

import (
	"bytes"
	"os"

	"github.com/samber/oops"
	"gopkg.in/yaml.v3"
)

// LaunchConfig is the launch configuration document. Field order matches
// the key order the reference tooling writes (alphabetical), so a
// marshal of this struct reproduces the familiar file layout.
//
// The document is created once by a human or a tooling step, read once at
// job launch, and never mutated during a run.
type LaunchConfig struct {
	// ComputeEnvironment is the deployment mode (local vs. managed cloud).
	ComputeEnvironment ComputeEnvironment `yaml:"compute_environment" json:"compute_environment" mapstructure:"compute_environment"`

	// Debug enables verbose launcher behavior and extra runtime checks.
	Debug bool `yaml:"debug" json:"debug" mapstructure:"debug"`

	// DeepSpeed holds the ZeRO tuning parameters. Present exactly when
	// DistributedType is DEEPSPEED.
	DeepSpeed *DeepSpeedConfig `yaml:"deepspeed_config,omitempty" json:"deepspeed_config,omitempty" mapstructure:"deepspeed_config"`

	// DistributedType selects the distributed backend to activate.
	DistributedType DistributedType `yaml:"distributed_type" json:"distributed_type" mapstructure:"distributed_type"`

	// DowncastBF16 downcasts fp32 tensors to bf16 on backends where bf16
	// arithmetic is emulated. Written as a quoted 'yes'/'no'.
	DowncastBF16 YesNo `yaml:"downcast_bf16" json:"downcast_bf16" mapstructure:"downcast_bf16"`

	// MachineRank is this node's rank in the topology, 0-based.
	MachineRank int `yaml:"machine_rank" json:"machine_rank" mapstructure:"machine_rank"`

	// MainProcessIP is the address of the rank-0 machine. Optional for
	// single-machine jobs.
	MainProcessIP string `yaml:"main_process_ip,omitempty" json:"main_process_ip,omitempty" mapstructure:"main_process_ip"`

	// MainProcessPort is the rendezvous port on the rank-0 machine.
	MainProcessPort int `yaml:"main_process_port,omitempty" json:"main_process_port,omitempty" mapstructure:"main_process_port"`

	// MainTrainingFunction is the entry-point function name the runtime
	// invokes in the training script.
	MainTrainingFunction string `yaml:"main_training_function" json:"main_training_function" mapstructure:"main_training_function"`

	// MixedPrecision is the global precision mode.
	MixedPrecision MixedPrecision `yaml:"mixed_precision" json:"mixed_precision" mapstructure:"mixed_precision"`

	// NumMachines is the number of machines in the job, or auto.
	NumMachines IntOrAuto `yaml:"num_machines" json:"num_machines" mapstructure:"num_machines"`

	// NumProcesses is the total number of worker processes across all
	// machines, or auto.
	NumProcesses IntOrAuto `yaml:"num_processes" json:"num_processes" mapstructure:"num_processes"`

	// RdzvBackend is the worker rendezvous mechanism.
	RdzvBackend RdzvBackend `yaml:"rdzv_backend" json:"rdzv_backend" mapstructure:"rdzv_backend"`

	// SameNetwork declares that all machines share one network segment,
	// letting the runtime skip interface discovery.
	SameNetwork bool `yaml:"same_network" json:"same_network" mapstructure:"same_network"`

	// UseCPU forces CPU-only execution regardless of available accelerators.
	UseCPU bool `yaml:"use_cpu" json:"use_cpu" mapstructure:"use_cpu"`
}

// Read decodes a launch configuration document. Unknown keys are rejected
// so typos in threshold names surface at load time instead of silently
// training with engine defaults.
func Read(data []byte) (*LaunchConfig, error) {
	var cfg LaunchConfig
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		return nil, oops.Wrapf(err, "parsing launch configuration")
	}
	return &cfg, nil
}

// ReadFile loads and decodes the document at path.
func ReadFile(path string) (*LaunchConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, oops.Wrapf(err, "reading launch configuration %s", path)
	}
	cfg, err := Read(data)
	if err != nil {
		return nil, oops.With("path", path).Wrap(err)
	}
	log.WithField("path", path).Debug("Loaded launch configuration")
	return cfg, nil
}

// Marshal serializes cfg in the canonical document layout.
func Marshal(cfg *LaunchConfig) ([]byte, error) {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return nil, oops.Wrapf(err, "serializing launch configuration")
	}
	return data, nil
}

// WriteFile serializes cfg and writes it to path with standard
// configuration-file permissions.
func WriteFile(path string, cfg *LaunchConfig) error {
	data, err := Marshal(cfg)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, StandardFilePermissions); err != nil {
		return oops.Wrapf(err, "writing launch configuration %s", path)
	}
	log.WithField("path", path).Debug("Wrote launch configuration")
	return nil
}
