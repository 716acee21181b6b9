package vo

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyOutcomeSuccess(t *testing.T) {
	out := ClassifyOutcome(nil, false, "")
	assert.True(t, out.Succeeded)
	assert.Empty(t, out.Diagnostic)
}

func TestClassifyOutcomeFailureUsesTail(t *testing.T) {
	out := ClassifyOutcome(errors.New("exit status 1"), false, "ffmpeg: moov atom not found")
	assert.False(t, out.Succeeded)
	assert.Equal(t, "ffmpeg: moov atom not found", out.Diagnostic)
}

func TestClassifyOutcomeFailureWithoutTail(t *testing.T) {
	out := ClassifyOutcome(errors.New("exit status 1"), false, "")
	assert.False(t, out.Succeeded)
	assert.Equal(t, "exit status 1", out.Diagnostic)
}

func TestClassifyOutcomeCancelPreempts(t *testing.T) {
	// A cancel request always wins, even when the engine exited cleanly.
	out := ClassifyOutcome(nil, true, "")
	assert.False(t, out.Succeeded)
	assert.Equal(t, "cancelled by caller", out.Diagnostic)

	// And also when the exit was an error.
	out = ClassifyOutcome(errors.New("signal: terminated"), true, "some tail")
	assert.False(t, out.Succeeded)
	assert.Equal(t, "cancelled by caller", out.Diagnostic)
}
