package launch

import (
	"testing"

	"github.com/dpquoc/zerolaunch/lib/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPlan_SingleMachine(t *testing.T) {
	plan, err := NewPlan(config.Defaults())
	require.NoError(t, err)

	assert.Equal(t, config.DefaultNumProcesses, plan.WorldSize)
	assert.Equal(t, 1, plan.NumMachines)
	assert.Equal(t, 0, plan.MachineRank)
	require.Len(t, plan.Local, config.DefaultNumProcesses)
	for i, spec := range plan.Local {
		assert.Equal(t, i, spec.Rank)
		assert.Equal(t, i, spec.LocalRank)
	}
	assert.Equal(t, "127.0.0.1", plan.MasterAddr)
	assert.Equal(t, config.DefaultMainProcessPort, plan.MasterPort)
}

func TestNewPlan_SecondMachineGetsUpperRanks(t *testing.T) {
	cfg := config.Defaults()
	cfg.NumMachines = config.Count(2)
	cfg.NumProcesses = config.Count(16)
	cfg.MachineRank = 1
	cfg.MainProcessIP = "10.0.0.1"
	cfg.MainProcessPort = 6000

	plan, err := NewPlan(cfg)
	require.NoError(t, err)

	assert.Equal(t, 16, plan.WorldSize)
	require.Len(t, plan.Local, 8)
	assert.Equal(t, 8, plan.Local[0].Rank)
	assert.Equal(t, 0, plan.Local[0].LocalRank)
	assert.Equal(t, 15, plan.Local[7].Rank)
	assert.Equal(t, "10.0.0.1", plan.MasterAddr)
	assert.Equal(t, 6000, plan.MasterPort)
}

func TestNewPlan_UnevenSplitRejected(t *testing.T) {
	cfg := config.Defaults()
	cfg.NumMachines = config.Count(3)
	cfg.NumProcesses = config.Count(8)

	_, err := NewPlan(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "divide evenly")
}

func TestNewPlan_RankOutsideTopologyRejected(t *testing.T) {
	cfg := config.Defaults()
	cfg.MachineRank = 1

	_, err := NewPlan(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "machine_rank")
}

func TestNewPlan_AutoResolvesAgainstCPUs(t *testing.T) {
	cfg := config.Defaults()
	cfg.NumProcesses = config.Auto()
	cfg.UseCPU = true

	plan, err := NewPlan(cfg)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, plan.WorldSize, 1)
	assert.Len(t, plan.Local, plan.WorldSize)
}

func TestNewPlan_AutoResolvesAgainstVisibleDevices(t *testing.T) {
	t.Setenv("CUDA_VISIBLE_DEVICES", "0,1,2,3")

	cfg := config.Defaults()
	cfg.NumProcesses = config.Auto()

	plan, err := NewPlan(cfg)
	require.NoError(t, err)
	assert.Equal(t, 4, plan.WorldSize)
}

func TestNewPlan_AutoScalesByMachineCount(t *testing.T) {
	t.Setenv("CUDA_VISIBLE_DEVICES", "0,1")

	cfg := config.Defaults()
	cfg.NumMachines = config.Count(2)
	cfg.NumProcesses = config.Auto()

	plan, err := NewPlan(cfg)
	require.NoError(t, err)
	assert.Equal(t, 4, plan.WorldSize)
	assert.Len(t, plan.Local, 2)
}

func TestNewPlan_AutoWithoutDevicesFallsBackToOneProcess(t *testing.T) {
	t.Setenv("CUDA_VISIBLE_DEVICES", "")

	cfg := config.Defaults()
	cfg.NumProcesses = config.Auto()

	plan, err := NewPlan(cfg)
	require.NoError(t, err)
	assert.Equal(t, 1, plan.WorldSize)
}

func TestNewPlan_AutoMachinesTreatedAsOne(t *testing.T) {
	cfg := config.Defaults()
	cfg.NumMachines = config.Auto()

	plan, err := NewPlan(cfg)
	require.NoError(t, err)
	assert.Equal(t, 1, plan.NumMachines)
	assert.Len(t, plan.Local, config.DefaultNumProcesses)
}
