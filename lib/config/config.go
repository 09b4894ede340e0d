package config

import (
	"os"
	"path/filepath"

	"github.com/dpquoc/zerolaunch/lib/util"
	"github.com/dpquoc/zerolaunch/lib/util/logger"
	"github.com/spf13/viper"
)

var (
	// CfgFile is an explicit config file path, set by the --config flag.
	CfgFile string
	log     = logger.GetLogger()
)

const ZEROLAUNCH_BASE_DIR = ".zerolaunch"

// InitConfig wires viper to the launch configuration file: the explicit
// --config path when given, otherwise config.yaml under the default
// directory. Defaults are seeded first so a partial file only overrides
// the keys it names.
func InitConfig() {
	if CfgFile != "" {
		// Use config file from the flag
		viper.SetConfigFile(CfgFile)
	} else {
		// Set up viper to use the default config path $HOME/.zerolaunch/
		viper.AddConfigPath(BuildConfigDirPath())
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
	}

	// Load defaults
	setDefaults()

	// handle config file creating it if needed
	handleConfigFile()
}

func setDefaults() {
	defaults := Defaults()

	// Topology defaults
	viper.SetDefault("compute_environment", string(defaults.ComputeEnvironment))
	viper.SetDefault("debug", defaults.Debug)
	viper.SetDefault("distributed_type", string(defaults.DistributedType))
	viper.SetDefault("machine_rank", defaults.MachineRank)
	viper.SetDefault("main_training_function", defaults.MainTrainingFunction)
	viper.SetDefault("num_machines", defaults.NumMachines.String())
	viper.SetDefault("num_processes", defaults.NumProcesses.String())
	viper.SetDefault("rdzv_backend", string(defaults.RdzvBackend))
	viper.SetDefault("same_network", defaults.SameNetwork)
	viper.SetDefault("use_cpu", defaults.UseCPU)

	// Precision defaults
	viper.SetDefault("mixed_precision", string(defaults.MixedPrecision))
	viper.SetDefault("downcast_bf16", string(defaults.DowncastBF16))

	// DeepSpeed section defaults
	ds := defaults.DeepSpeed
	viper.SetDefault("deepspeed_config.bf16.enabled", ds.BF16.Enabled)
	viper.SetDefault("deepspeed_config.contiguous_gradients", ds.ContiguousGradients)
	viper.SetDefault("deepspeed_config.deepspeed_multinode_launcher", string(ds.MultinodeLauncher))
	viper.SetDefault("deepspeed_config.fp16.enabled", ds.FP16.Enabled)
	viper.SetDefault("deepspeed_config.gradient_accumulation_steps", ds.GradientAccumulationSteps)
	viper.SetDefault("deepspeed_config.gradient_clipping", ds.GradientClipping)
	viper.SetDefault("deepspeed_config.offload_optimizer_device", string(ds.OffloadOptimizerDevice))
	viper.SetDefault("deepspeed_config.offload_param_device", string(ds.OffloadParamDevice))
	viper.SetDefault("deepspeed_config.overlap_comm", ds.OverlapComm)
	viper.SetDefault("deepspeed_config.reduce_bucket_size", ds.ReduceBucketSize)
	viper.SetDefault("deepspeed_config.stage3_max_live_parameters", ds.Stage3MaxLiveParameters)
	viper.SetDefault("deepspeed_config.stage3_max_reuse_distance", ds.Stage3MaxReuseDistance)
	viper.SetDefault("deepspeed_config.stage3_param_persistence_threshold", ds.Stage3ParamPersistenceThreshold)
	viper.SetDefault("deepspeed_config.stage3_prefetch_bucket_size", ds.Stage3PrefetchBucketSize)
	viper.SetDefault("deepspeed_config.sub_group_size", ds.SubGroupSize)
	viper.SetDefault("deepspeed_config.zero3_init_flag", ds.Zero3InitFlag)
	viper.SetDefault("deepspeed_config.zero3_save_16bit_model", ds.Zero3Save16BitModel)
	viper.SetDefault("deepspeed_config.zero_force_ds_cpu_optimizer", ds.ZeroForceDSCPUOptimizer)
	viper.SetDefault("deepspeed_config.zero_stage", ds.ZeroStage)
}

// FromViper builds a LaunchConfig from the current viper settings. This is
// the effective configuration: file values layered over defaults.
func FromViper() (*LaunchConfig, error) {
	numMachines, err := ParseIntOrAuto(viper.GetString("num_machines"))
	if err != nil {
		return nil, err
	}
	numProcesses, err := ParseIntOrAuto(viper.GetString("num_processes"))
	if err != nil {
		return nil, err
	}

	cfg := &LaunchConfig{
		ComputeEnvironment:   ComputeEnvironment(viper.GetString("compute_environment")),
		Debug:                viper.GetBool("debug"),
		DistributedType:      DistributedType(viper.GetString("distributed_type")),
		DowncastBF16:         YesNo(viper.GetString("downcast_bf16")),
		MachineRank:          viper.GetInt("machine_rank"),
		MainProcessIP:        viper.GetString("main_process_ip"),
		MainProcessPort:      viper.GetInt("main_process_port"),
		MainTrainingFunction: viper.GetString("main_training_function"),
		MixedPrecision:       MixedPrecision(viper.GetString("mixed_precision")),
		NumMachines:          numMachines,
		NumProcesses:         numProcesses,
		RdzvBackend:          RdzvBackend(viper.GetString("rdzv_backend")),
		SameNetwork:          viper.GetBool("same_network"),
		UseCPU:               viper.GetBool("use_cpu"),
	}

	cfg.DeepSpeed = &DeepSpeedConfig{
		BF16:                            PrecisionFlag{Enabled: viper.GetBool("deepspeed_config.bf16.enabled")},
		ContiguousGradients:             viper.GetBool("deepspeed_config.contiguous_gradients"),
		MultinodeLauncher:               MultinodeLauncher(viper.GetString("deepspeed_config.deepspeed_multinode_launcher")),
		FP16:                            PrecisionFlag{Enabled: viper.GetBool("deepspeed_config.fp16.enabled")},
		GradientAccumulationSteps:       viper.GetInt("deepspeed_config.gradient_accumulation_steps"),
		GradientClipping:                viper.GetFloat64("deepspeed_config.gradient_clipping"),
		OffloadOptimizerDevice:          OffloadDevice(viper.GetString("deepspeed_config.offload_optimizer_device")),
		OffloadParamDevice:              OffloadDevice(viper.GetString("deepspeed_config.offload_param_device")),
		OverlapComm:                     viper.GetBool("deepspeed_config.overlap_comm"),
		ReduceBucketSize:                viper.GetInt64("deepspeed_config.reduce_bucket_size"),
		Stage3MaxLiveParameters:         viper.GetInt64("deepspeed_config.stage3_max_live_parameters"),
		Stage3MaxReuseDistance:          viper.GetInt64("deepspeed_config.stage3_max_reuse_distance"),
		Stage3ParamPersistenceThreshold: viper.GetInt64("deepspeed_config.stage3_param_persistence_threshold"),
		Stage3PrefetchBucketSize:        viper.GetInt64("deepspeed_config.stage3_prefetch_bucket_size"),
		SubGroupSize:                    viper.GetInt64("deepspeed_config.sub_group_size"),
		Zero3InitFlag:                   viper.GetBool("deepspeed_config.zero3_init_flag"),
		Zero3Save16BitModel:             viper.GetBool("deepspeed_config.zero3_save_16bit_model"),
		ZeroForceDSCPUOptimizer:         viper.GetBool("deepspeed_config.zero_force_ds_cpu_optimizer"),
		ZeroStage:                       viper.GetInt("deepspeed_config.zero_stage"),
	}

	return cfg, nil
}

func createDefaultConfig(defaultConfigDir string) {
	defaultConfigFile := filepath.Join(defaultConfigDir, "config.yaml")
	// Ensure directory exists
	if err := os.MkdirAll(defaultConfigDir, StandardDirPermissions); err != nil {
		log.Fatalf("Could not create config directory: %s", err)
	}

	// Write the canonical default document rather than viper's flattened
	// dump, so the created file matches the layout the runtime expects.
	if err := WriteFile(defaultConfigFile, Defaults()); err != nil {
		log.Fatalf("Could not write default config file: %s", err)
	}

	log.Debugf("Created default configuration at: %s", defaultConfigFile)
}

func handleConfigFile() {
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			if CfgFile != "" {
				log.Fatalf("Config file %s is not found: %s", CfgFile, err)
			} else {
				createDefaultConfig(BuildConfigDirPath())
				if err := viper.ReadInConfig(); err != nil {
					log.Fatalf("Error reading created config file: %s", err)
				}
			}
		} else {
			log.Fatalf("Error reading config file: %s", err)
		}
	} else {
		log.Debugf("Using config file: %s", viper.ConfigFileUsed())
	}
}

// BuildConfigDirPath returns the default configuration directory.
func BuildConfigDirPath() string {
	return filepath.Join(util.UserHome(), ZEROLAUNCH_BASE_DIR)
}
