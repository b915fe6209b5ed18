package domain_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/waabox/stagedeck/internal/domain"
)

func TestPipelineStatus_IsActive(t *testing.T) {
	active := []domain.PipelineStatus{
		domain.StatusRunning, domain.StatusPending,
		domain.StatusWaitingForResource, domain.StatusPreparing,
	}
	for _, s := range active {
		assert.True(t, s.IsActive(), s)
	}
	idle := []domain.PipelineStatus{
		domain.StatusCreated, domain.StatusSuccess, domain.StatusFailed,
		domain.StatusCanceled, domain.StatusCanceling, domain.StatusSkipped,
		domain.StatusManual, domain.StatusScheduled,
	}
	for _, s := range idle {
		assert.False(t, s.IsActive(), s)
	}
}

func TestPipelineStatus_AnimatedSymbolCyclesAtDifferentSpeeds(t *testing.T) {
	assert.Equal(t, "◜", domain.StatusRunning.AnimatedSymbol(0))
	assert.Equal(t, "◜", domain.StatusRunning.AnimatedSymbol(3))
	assert.Equal(t, "◠", domain.StatusRunning.AnimatedSymbol(4))
	assert.Equal(t, "◜", domain.StatusRunning.AnimatedSymbol(24))

	assert.Equal(t, "◜", domain.StatusPending.AnimatedSymbol(5))
	assert.Equal(t, "◠", domain.StatusPending.AnimatedSymbol(6))
	assert.Equal(t, "◠", domain.StatusPreparing.AnimatedSymbol(6))

	assert.Equal(t, domain.StatusSuccess.Symbol(), domain.StatusSuccess.AnimatedSymbol(17))
}

func TestPipelineStatus_UnmarshalJSON(t *testing.T) {
	var s domain.PipelineStatus
	require.NoError(t, json.Unmarshal([]byte(`"waiting_for_resource"`), &s))
	assert.Equal(t, domain.StatusWaitingForResource, s)
	assert.Equal(t, "waiting", s.String())

	assert.Error(t, json.Unmarshal([]byte(`"exploded"`), &s))
}
