// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestActionableError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *ActionableError
		expected string
	}{
		{
			name:     "operation only",
			err:      &ActionableError{Operation: "install uv"},
			expected: "failed to install uv",
		},
		{
			name:     "operation with resource",
			err:      &ActionableError{Operation: "create virtual environment", Resource: ".venv"},
			expected: "failed to create virtual environment: .venv",
		},
		{
			name: "full context",
			err: &ActionableError{
				Operation: "pin python",
				Resource:  "3.12",
				Cause:     errors.New("exit status 2"),
			},
			expected: "failed to pin python: 3.12: exit status 2",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.expected {
				t.Errorf("Error() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestActionableError_ErrorsIs(t *testing.T) {
	cause := errors.New("specific error")
	wrapped := &ActionableError{Operation: "test", Cause: cause}

	if !errors.Is(wrapped, cause) {
		t.Error("errors.Is should find the wrapped cause")
	}
	if (&ActionableError{Operation: "test"}).Unwrap() != nil {
		t.Error("Unwrap() should return nil when no cause")
	}
}

func TestActionableError_Format(t *testing.T) {
	inner := errors.New("no such file")
	err := &ActionableError{
		Operation:   "verify activation script",
		Resource:    ".venv/bin/activate",
		Suggestions: []string{"Remove .venv and retry"},
		Cause:       fmt.Errorf("stat: %w", inner),
	}

	short := err.Format(false)
	if !strings.Contains(short, "• Remove .venv and retry") {
		t.Errorf("Format(false) = %q, want suggestion bullet", short)
	}
	if strings.Contains(short, "Error chain:") {
		t.Errorf("Format(false) = %q, should not include the error chain", short)
	}

	long := err.Format(true)
	for _, want := range []string{"Error chain:", "1. stat: no such file", "2. no such file"} {
		if !strings.Contains(long, want) {
			t.Errorf("Format(true) = %q, want it to contain %q", long, want)
		}
	}
}

func TestErrorContext_Build(t *testing.T) {
	cause := errors.New("boom")
	ae := NewErrorContext().
		WithOperation("install uv").
		WithResource("https://astral.sh/uv/install.sh").
		WithIssue(PackageManagerInstallFailedId).
		WithSuggestion("one").
		WithSuggestion("two").
		Wrap(cause).
		Build()

	if ae == nil {
		t.Fatal("Build() = nil")
	}
	if ae.IssueID != PackageManagerInstallFailedId {
		t.Errorf("IssueID = %d, want %d", ae.IssueID, PackageManagerInstallFailedId)
	}
	if len(ae.Suggestions) != 2 {
		t.Errorf("Suggestions = %v, want 2 entries", ae.Suggestions)
	}
	if !errors.Is(ae, cause) {
		t.Error("built error should wrap its cause")
	}

	if NewErrorContext().Wrap(cause).BuildError() != nil {
		t.Error("BuildError() without operation should return nil")
	}
}

func TestIDOf(t *testing.T) {
	err := fmt.Errorf("outer: %w", NewErrorContext().
		WithOperation("verify").
		WithIssue(ActivationScriptMissingId).
		BuildError())

	if got := IDOf(err); got != ActivationScriptMissingId {
		t.Errorf("IDOf() = %d, want %d", got, ActivationScriptMissingId)
	}
	if got := IDOf(errors.New("plain")); got != 0 {
		t.Errorf("IDOf(plain) = %d, want 0", got)
	}
}

func TestWrapWithOperation(t *testing.T) {
	if WrapWithOperation(nil, "x") != nil {
		t.Error("WrapWithOperation(nil) should return nil")
	}
	if got := WrapWithOperation(errors.New("e"), "sync").Error(); got != "failed to sync: e" {
		t.Errorf("WrapWithOperation().Error() = %q", got)
	}
}
