package cli

import (
	"errors"
	"fmt"
	"testing"
)

func TestConfigError(t *testing.T) {
	err := &ConfigError{
		Field:   "growth.extra_blocks",
		Message: "missing required field",
	}

	expected := "config error in growth.extra_blocks: missing required field"
	if err.Error() != expected {
		t.Errorf("Error() = %q, want %q", err.Error(), expected)
	}

	noField := &ConfigError{Message: "unreadable"}
	if noField.Error() != "config error: unreadable" {
		t.Errorf("Error() = %q", noField.Error())
	}
}

func TestWrapConfigError(t *testing.T) {
	cause := errors.New("bad yaml")
	err := WrapConfigError("static-vines.yaml", cause)
	if !errors.Is(err, cause) {
		t.Error("WrapConfigError should unwrap to its cause")
	}
	if err.Field != "static-vines.yaml" {
		t.Errorf("Field = %q", err.Field)
	}
}

func TestCommandError(t *testing.T) {
	inner := errors.New("inner error")
	err := NewCommandError("replay", inner)

	expected := "command replay failed: inner error"
	if err.Error() != expected {
		t.Errorf("Error() = %q, want %q", err.Error(), expected)
	}
	if !errors.Is(err, inner) {
		t.Error("errors.Is should find the inner error")
	}
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, ExitOK},
		{"plain", errors.New("boom"), ExitFailure},
		{"command", NewCommandError("bench", errors.New("boom")), ExitFailure},
		{"config", NewConfigError("reload.debounce", "negative"), ExitConfig},
		{"wrapped config", fmt.Errorf("validate: %w", NewConfigError("x", "y")), ExitConfig},
		{"config inside command", NewCommandError("run", NewConfigError("x", "y")), ExitConfig},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExitCode(tt.err); got != tt.want {
				t.Errorf("ExitCode() = %d, want %d", got, tt.want)
			}
		})
	}
}
