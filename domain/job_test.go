package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanTransition_happyPath(t *testing.T) {
	steps := []JobStatus{
		StatusPending, StatusProcessing, StatusTextExtracted,
		StatusSkillsExtracted, StatusCompleted,
	}
	for i := 0; i < len(steps)-1; i++ {
		assert.True(t, CanTransition(steps[i], steps[i+1]),
			"%s -> %s should be allowed", steps[i], steps[i+1])
	}
}

func TestCanTransition_anyNonTerminalCanFail(t *testing.T) {
	for _, from := range []JobStatus{
		StatusPending, StatusProcessing, StatusTextExtracted, StatusSkillsExtracted,
	} {
		assert.True(t, CanTransition(from, StatusFailed), "%s -> failed", from)
	}
}

func TestCanTransition_terminalStatesAreFinal(t *testing.T) {
	all := []JobStatus{
		StatusPending, StatusProcessing, StatusTextExtracted,
		StatusSkillsExtracted, StatusCompleted, StatusFailed,
	}
	for _, terminal := range []JobStatus{StatusCompleted, StatusFailed} {
		for _, to := range all {
			assert.False(t, CanTransition(terminal, to), "%s -> %s", terminal, to)
		}
	}
}

func TestCanTransition_noSkippingStages(t *testing.T) {
	assert.False(t, CanTransition(StatusPending, StatusTextExtracted))
	assert.False(t, CanTransition(StatusPending, StatusCompleted))
	assert.False(t, CanTransition(StatusProcessing, StatusCompleted))
	assert.False(t, CanTransition(StatusTextExtracted, StatusCompleted))
	// No going backwards either.
	assert.False(t, CanTransition(StatusTextExtracted, StatusProcessing))
}

func TestTerminal(t *testing.T) {
	assert.True(t, StatusCompleted.Terminal())
	assert.True(t, StatusFailed.Terminal())
	assert.False(t, StatusPending.Terminal())
	assert.False(t, StatusProcessing.Terminal())
	assert.False(t, StatusTextExtracted.Terminal())
	assert.False(t, StatusSkillsExtracted.Terminal())
}

func TestNewAnalysisJob(t *testing.T) {
	target := uint(2)
	job := NewAnalysisJob("user-1", "/tmp/resume.pdf", &target)

	require.NotEmpty(t, job.ID)
	assert.Equal(t, StatusPending, job.Status)
	assert.Equal(t, "user-1", job.OwnerID)
	assert.Equal(t, "/tmp/resume.pdf", job.SourceFilePath)
	require.NotNil(t, job.TargetJobID)
	assert.Equal(t, uint(2), *job.TargetJobID)

	other := NewAnalysisJob("user-1", "/tmp/resume.pdf", nil)
	assert.NotEqual(t, job.ID, other.ID)
}
