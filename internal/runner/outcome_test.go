// SPDX-License-Identifier: MPL-2.0

package runner

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/fusion-energy/devsetup/pkg/types"
)

func TestPolicy_Judge(t *testing.T) {
	t.Parallel()

	spawnErr := errors.New("spawn failed")

	tests := []struct {
		name     string
		policy   Policy
		result   *Result
		want     Status
		wantCode types.ExitCode
	}{
		{"success under fatal", PolicyFatal, &Result{}, StatusSucceeded, 0},
		{"success under tolerate", PolicyTolerate, &Result{}, StatusSucceeded, 0},
		{"exit code under fatal", PolicyFatal, &Result{ExitCode: 3}, StatusFatal, 3},
		{"exit code under tolerate", PolicyTolerate, &Result{ExitCode: 3}, StatusTolerated, 0},
		{"spawn error under fatal", PolicyFatal, &Result{ExitCode: 0, Error: spawnErr}, StatusFatal, types.ExitFailure},
		{"nil result under fatal", PolicyFatal, nil, StatusFatal, types.ExitFailure},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := tt.policy.Judge("step", tt.result, nil)
			if got.Status != tt.want {
				t.Errorf("Judge() status = %v, want %v", got.Status, tt.want)
			}
			if got.ExitCode != tt.wantCode {
				t.Errorf("Judge() exit code = %d, want %d", got.ExitCode, tt.wantCode)
			}
			if got.Status != StatusSucceeded && got.Err == nil {
				t.Error("failed outcome should carry an error")
			}
		})
	}
}

func TestPolicy_JudgeWrap(t *testing.T) {
	t.Parallel()

	got := PolicyTolerate.Judge("sync", &Result{ExitCode: 1}, func(err error) error {
		return fmt.Errorf("uv sync: %w", err)
	})
	if !strings.HasPrefix(got.Err.Error(), "uv sync: exit status 1") {
		t.Errorf("wrapped error = %q", got.Err)
	}
}

func TestOutcomeHelpers(t *testing.T) {
	t.Parallel()

	if !Succeeded("x").OK() || !Skipped("x").OK() {
		t.Error("Succeeded and Skipped should be OK")
	}
	if Tolerated("x", errors.New("e")).OK() {
		t.Error("Tolerated should not be OK")
	}
	fatal := Fatal(nil, 0)
	if !fatal.IsFatal() || fatal.ExitCode != types.ExitFailure || fatal.Err == nil {
		t.Errorf("Fatal(nil, 0) = %+v", fatal)
	}
	if PolicyTolerate.String() != "tolerate" || StatusSkipped.String() != "skipped" {
		t.Error("unexpected String() values")
	}
}
