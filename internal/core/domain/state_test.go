package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.trai.ch/runbook/internal/core/domain"
)

func TestTargetState_IsTerminal(t *testing.T) {
	tests := []struct {
		state      domain.TargetState
		isTerminal bool
	}{
		{domain.TargetStatePending, false},
		{domain.TargetStateResolvingPrerequisite, false},
		{domain.TargetStateRunningSteps, false},
		{domain.TargetStateSucceeded, true},
		{domain.TargetStateFailed, true},
	}

	for _, tt := range tests {
		t.Run(string(tt.state), func(t *testing.T) {
			assert.Equal(t, tt.isTerminal, tt.state.IsTerminal())
		})
	}
}

func TestNormalizeTargetState(t *testing.T) {
	tests := []struct {
		input    string
		expected domain.TargetState
	}{
		{"pending", domain.TargetStatePending},
		{"SUCCEEDED", domain.TargetStateSucceeded},
		{"failed", domain.TargetStateFailed},
		{"running_steps", domain.TargetStateRunningSteps},
		{"resolving_prerequisite", domain.TargetStateResolvingPrerequisite},
		{"bogus", domain.TargetStatePending},
		{"", domain.TargetStatePending},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, domain.NormalizeTargetState(tt.input))
		})
	}
}

func TestExitStatus_Success(t *testing.T) {
	assert.True(t, domain.ExitStatus{}.Success())
	assert.False(t, domain.ExitStatus{Code: 1}.Success())
	assert.False(t, domain.ExitStatus{Code: -1, Signal: "killed"}.Success())
}

func TestLogLevel_String(t *testing.T) {
	assert.Equal(t, "DEBUG", domain.LogLevelDebug.String())
	assert.Equal(t, "INFO", domain.LogLevelInfo.String())
	assert.Equal(t, "WARN", domain.LogLevelWarn.String())
	assert.Equal(t, "ERROR", domain.LogLevelError.String())
}
