package config

// ZeRO optimization stages. The stage controls how much optimizer,
// gradient, and parameter state is partitioned across workers.
const (
	// ZeroStageDisabled keeps all state replicated on every worker.
	ZeroStageDisabled = 0

	// ZeroStageOptimizer partitions optimizer state only.
	ZeroStageOptimizer = 1

	// ZeroStageGradients additionally partitions gradients.
	ZeroStageGradients = 2

	// ZeroStageParameters additionally partitions the parameters
	// themselves; workers fetch remote shards on demand during
	// forward/backward.
	ZeroStageParameters = 3
)

// PrecisionFlag is a per-format enable toggle inside deepspeed_config.
type PrecisionFlag struct {
	Enabled bool `yaml:"enabled" json:"enabled" mapstructure:"enabled"`
}

// DeepSpeedConfig carries the ZeRO tuning parameters forwarded verbatim to
// the DeepSpeed engine. Every value is advisory: the engine itself decides
// what to do with thresholds that exceed the model size, and clamps where
// it sees fit.
//
// The stage-3 bucket and threshold values trade accelerator memory against
// communication overhead:
//
//   - ReduceBucketSize / Stage3PrefetchBucketSize size the gradient
//     reduction and parameter prefetch buffers, in elements.
//   - Stage3ParamPersistenceThreshold keeps parameters smaller than this
//     many elements resident on every worker instead of partitioning them.
//   - Stage3MaxLiveParameters caps how many fetched remote parameters may
//     be held live at once; Stage3MaxReuseDistance controls when a fetched
//     parameter is worth keeping for an upcoming reuse.
type DeepSpeedConfig struct {
	// BF16 enables bfloat16 training inside the engine. Mutually
	// exclusive with FP16 in any one document.
	BF16 PrecisionFlag `yaml:"bf16" json:"bf16" mapstructure:"bf16"`

	// ContiguousGradients copies gradients into a contiguous buffer as
	// they are produced, reducing fragmentation during reduction.
	ContiguousGradients bool `yaml:"contiguous_gradients" json:"contiguous_gradients" mapstructure:"contiguous_gradients"`

	// MultinodeLauncher selects how worker processes are started on the
	// other machines of a multi-node job.
	MultinodeLauncher MultinodeLauncher `yaml:"deepspeed_multinode_launcher" json:"deepspeed_multinode_launcher" mapstructure:"deepspeed_multinode_launcher"`

	// FP16 enables float16 training inside the engine.
	FP16 PrecisionFlag `yaml:"fp16" json:"fp16" mapstructure:"fp16"`

	// GradientAccumulationSteps is the number of micro-batches folded
	// into each optimizer step.
	GradientAccumulationSteps int `yaml:"gradient_accumulation_steps" json:"gradient_accumulation_steps" mapstructure:"gradient_accumulation_steps"`

	// GradientClipping is the global gradient-norm clip. Zero disables
	// clipping.
	GradientClipping float64 `yaml:"gradient_clipping" json:"gradient_clipping" mapstructure:"gradient_clipping"`

	// OffloadOptimizerDevice moves optimizer state to another memory tier.
	OffloadOptimizerDevice OffloadDevice `yaml:"offload_optimizer_device" json:"offload_optimizer_device" mapstructure:"offload_optimizer_device"`

	// OffloadParamDevice moves partitioned parameters to another memory tier.
	OffloadParamDevice OffloadDevice `yaml:"offload_param_device" json:"offload_param_device" mapstructure:"offload_param_device"`

	// OverlapComm overlaps gradient reduction with the backward pass.
	OverlapComm bool `yaml:"overlap_comm" json:"overlap_comm" mapstructure:"overlap_comm"`

	// ReduceBucketSize is the gradient reduction bucket size, in elements.
	ReduceBucketSize int64 `yaml:"reduce_bucket_size" json:"reduce_bucket_size" mapstructure:"reduce_bucket_size"`

	// Stage3MaxLiveParameters is the ceiling on live fetched parameters,
	// in elements.
	Stage3MaxLiveParameters int64 `yaml:"stage3_max_live_parameters" json:"stage3_max_live_parameters" mapstructure:"stage3_max_live_parameters"`

	// Stage3MaxReuseDistance releases a fetched parameter when its next
	// use is further away than this, in elements.
	Stage3MaxReuseDistance int64 `yaml:"stage3_max_reuse_distance" json:"stage3_max_reuse_distance" mapstructure:"stage3_max_reuse_distance"`

	// Stage3ParamPersistenceThreshold keeps parameters below this size
	// resident on every worker, in elements.
	Stage3ParamPersistenceThreshold int64 `yaml:"stage3_param_persistence_threshold" json:"stage3_param_persistence_threshold" mapstructure:"stage3_param_persistence_threshold"`

	// Stage3PrefetchBucketSize is the parameter prefetch bucket size, in
	// elements.
	Stage3PrefetchBucketSize int64 `yaml:"stage3_prefetch_bucket_size" json:"stage3_prefetch_bucket_size" mapstructure:"stage3_prefetch_bucket_size"`

	// SubGroupSize is the tile size for optimizer-step processing of very
	// large partitioned parameters, in elements.
	SubGroupSize int64 `yaml:"sub_group_size" json:"sub_group_size" mapstructure:"sub_group_size"`

	// Zero3InitFlag constructs the model directly in partitioned form so
	// it never materializes whole on one worker.
	Zero3InitFlag bool `yaml:"zero3_init_flag" json:"zero3_init_flag" mapstructure:"zero3_init_flag"`

	// Zero3Save16BitModel gathers a consolidated 16-bit copy of the
	// weights when saving checkpoints.
	Zero3Save16BitModel bool `yaml:"zero3_save_16bit_model" json:"zero3_save_16bit_model" mapstructure:"zero3_save_16bit_model"`

	// ZeroForceDSCPUOptimizer forces the DeepSpeed CPU-side optimizer
	// implementation even when state is not offloaded.
	ZeroForceDSCPUOptimizer bool `yaml:"zero_force_ds_cpu_optimizer" json:"zero_force_ds_cpu_optimizer" mapstructure:"zero_force_ds_cpu_optimizer"`

	// ZeroStage selects the ZeRO partitioning stage (0-3).
	ZeroStage int `yaml:"zero_stage" json:"zero_stage" mapstructure:"zero_stage"`
}
