// SPDX-License-Identifier: MPL-2.0

package runner

import (
	"errors"
	"fmt"

	"github.com/fusion-energy/devsetup/pkg/types"
)

const (
	// PolicyFatal stops the orchestrator when the command fails. It is the
	// zero value, so commands are fatal unless explicitly tolerated.
	PolicyFatal Policy = iota
	// PolicyTolerate reports the failure as a warning and continues.
	PolicyTolerate
)

const (
	// StatusSucceeded means every delegated command exited zero.
	StatusSucceeded Status = iota
	// StatusTolerated means a command failed under PolicyTolerate.
	StatusTolerated
	// StatusSkipped means a precondition was absent and nothing ran.
	StatusSkipped
	// StatusFatal means a command failed under PolicyFatal.
	StatusFatal
)

type (
	// Policy is the error policy a command is run under.
	Policy int

	// Status classifies an Outcome.
	Status int

	// Outcome is the explicit result of one action or step.
	Outcome struct {
		Status Status
		// Summary is a one-line, user-facing description.
		Summary string
		// Err is the failure cause for Tolerated and Fatal outcomes.
		Err error
		// ExitCode is the process status to exit with for Fatal outcomes.
		ExitCode types.ExitCode
	}
)

// String returns the policy name.
func (p Policy) String() string {
	switch p {
	case PolicyFatal:
		return "fatal"
	case PolicyTolerate:
		return "tolerate"
	default:
		return fmt.Sprintf("Policy(%d)", int(p))
	}
}

// String returns the status name.
func (s Status) String() string {
	switch s {
	case StatusSucceeded:
		return "succeeded"
	case StatusTolerated:
		return "tolerated"
	case StatusSkipped:
		return "skipped"
	case StatusFatal:
		return "fatal"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// Succeeded returns a successful Outcome.
func Succeeded(summary string) Outcome {
	return Outcome{Status: StatusSucceeded, Summary: summary}
}

// Skipped returns an Outcome for an action whose precondition was absent.
func Skipped(summary string) Outcome {
	return Outcome{Status: StatusSkipped, Summary: summary}
}

// Tolerated returns a warning Outcome.
func Tolerated(summary string, err error) Outcome {
	return Outcome{Status: StatusTolerated, Summary: summary, Err: err}
}

// Fatal returns a fatal Outcome. A zero or invalid code becomes 1.
func Fatal(err error, code types.ExitCode) Outcome {
	if err == nil {
		err = errors.New("fatal failure")
	}
	return Outcome{Status: StatusFatal, Summary: err.Error(), Err: err, ExitCode: code.OrFailure()}
}

// Judge classifies res under p. summary describes the step on success;
// on failure wrap turns the raw failure into the reported error.
func (p Policy) Judge(summary string, res *Result, wrap func(error) error) Outcome {
	if res.Success() {
		return Succeeded(summary)
	}

	err := res.Err()
	if wrap != nil {
		err = wrap(err)
	}

	if p == PolicyTolerate {
		return Tolerated(summary, err)
	}

	code := types.ExitFailure
	if res != nil {
		code = res.ExitCode
	}
	return Fatal(err, code)
}

// IsFatal reports whether the outcome must end the menu loop.
func (o Outcome) IsFatal() bool { return o.Status == StatusFatal }

// OK reports whether the outcome is Succeeded or Skipped.
func (o Outcome) OK() bool { return o.Status == StatusSucceeded || o.Status == StatusSkipped }
