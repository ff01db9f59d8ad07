package scheduler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMachineTransitions(t *testing.T) {
	m := newMachine()
	for _, s := range []State{Delaying, SyncingConfig, AnalyzingStores, Importing, Validating, Done} {
		require.NoError(t, m.transition(s))
	}
	assert.True(t, IsTerminal(m.current))
	assert.Empty(t, m.failedStage)
	assert.Error(t, m.transition(Delaying))
}

func TestMachineRejectsSkippingStages(t *testing.T) {
	m := newMachine()
	assert.Error(t, m.transition(Importing))
	require.NoError(t, m.transition(Delaying))
	assert.Error(t, m.transition(Validating))
}

func TestMachineRemembersFailedStage(t *testing.T) {
	m := newMachine()
	require.NoError(t, m.transition(Delaying))
	require.NoError(t, m.transition(SyncingConfig))
	require.NoError(t, m.transition(Failed))
	assert.Equal(t, SyncingConfig, m.failedStage)
	assert.Equal(t, []State{Idle, Delaying, SyncingConfig, Failed}, m.history)
	assert.Error(t, m.transition(Done))
}
