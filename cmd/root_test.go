package cmd

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"mcpforge/internal/api"
)

func TestGetExitCode(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{"generic error", errors.New("boom"), ExitCodeError},
		{"validation error", api.NewValidationError("serverName", "cannot be empty"), ExitCodeValidation},
		{"not found", api.NewBuildNotFoundError("b-1"), ExitCodeNotFound},
		{"wrapped validation", wrap(api.NewValidationError("tools", "at least one tool required")), ExitCodeValidation},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			assert.Equal(t, test.expected, getExitCode(test.err))
		})
	}
}

func wrap(err error) error {
	return errors.Join(errors.New("submit failed"), err)
}

func TestCommandsRegistered(t *testing.T) {
	names := make(map[string]bool)
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	for _, expected := range []string{"serve", "build", "deploy", "cancel", "list", "targets", "version"} {
		assert.True(t, names[expected], "missing command %s", expected)
	}
}

func TestVersion(t *testing.T) {
	SetVersion("1.2.3")
	assert.Equal(t, "1.2.3", GetVersion())
}
