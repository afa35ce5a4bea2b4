// SPDX-License-Identifier: MPL-2.0

package menu

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/fusion-energy/devsetup/internal/actions"
	"github.com/fusion-energy/devsetup/internal/runner"
	"github.com/fusion-energy/devsetup/pkg/types"

	"github.com/google/go-cmp/cmp"
)

type recordingDispatcher struct {
	ran      []actions.ID
	outcomes map[actions.ID]runner.Outcome
}

func (d *recordingDispatcher) Run(_ context.Context, id actions.ID) runner.Outcome {
	d.ran = append(d.ran, id)
	if out, ok := d.outcomes[id]; ok {
		return out
	}
	if id == actions.Exit {
		return runner.Succeeded("source .venv/bin/activate")
	}
	return runner.Succeeded(id.String() + " done")
}

type scriptedPrompter struct {
	inputs []string
	err    error
	calls  int
}

func (p *scriptedPrompter) Prompt(context.Context, []actions.Action) (string, error) {
	p.calls++
	if len(p.inputs) == 0 {
		if p.err != nil {
			return "", p.err
		}
		return "", io.EOF
	}
	in := p.inputs[0]
	p.inputs = p.inputs[1:]
	return in, nil
}

func newLoop(input string, d *recordingDispatcher) (*Loop, *bytes.Buffer) {
	var out bytes.Buffer
	return &Loop{
		Prompter:   NewLinePrompter(strings.NewReader(input), &out, PlainTheme()),
		Dispatcher: d,
		Out:        &out,
		Theme:      PlainTheme(),
	}, &out
}

func TestLoop_ExitSelector(t *testing.T) {
	t.Parallel()

	d := &recordingDispatcher{}
	loop, out := newLoop("0\n", d)

	result := loop.Run(context.Background())
	if result.Status != runner.StatusSucceeded {
		t.Fatalf("Run() status = %v", result.Status)
	}
	if diff := cmp.Diff([]actions.ID{actions.Exit}, d.ran); diff != "" {
		t.Errorf("dispatched mismatch (-want +got):\n%s", diff)
	}
	if !strings.Contains(out.String(), "source .venv/bin/activate") {
		t.Errorf("output missing reactivation hint:\n%s", out.String())
	}
}

func TestLoop_UnknownSelectorRedisplaysMenu(t *testing.T) {
	t.Parallel()

	d := &recordingDispatcher{}
	loop, out := newLoop("9\nfoo\n\n0\n", d)

	loop.Run(context.Background())

	if diff := cmp.Diff([]actions.ID{actions.Exit}, d.ran); diff != "" {
		t.Errorf("unknown selectors must not dispatch (-want +got):\n%s", diff)
	}
	if n := strings.Count(out.String(), Title); n != 4 {
		t.Errorf("menu rendered %d times, want 4", n)
	}
	if !strings.Contains(out.String(), `Invalid option "9", please try again.`) {
		t.Errorf("output missing invalid option message:\n%s", out.String())
	}
}

func TestLoop_OversizeLineIsUnknownSelector(t *testing.T) {
	t.Parallel()

	d := &recordingDispatcher{}
	loop, out := newLoop(strings.Repeat("7", 100_000)+"\n0\n", d)

	result := loop.Run(context.Background())
	if result.Status != runner.StatusSucceeded {
		t.Fatalf("Run() status = %v, err = %v", result.Status, result.Err)
	}
	if diff := cmp.Diff([]actions.ID{actions.Exit}, d.ran); diff != "" {
		t.Errorf("dispatched mismatch (-want +got):\n%s", diff)
	}
	if !strings.Contains(out.String(), "Invalid option") {
		t.Errorf("output missing invalid option message:\n%s", out.String())
	}
}

func TestLoop_DispatchesInOrder(t *testing.T) {
	t.Parallel()

	d := &recordingDispatcher{}
	loop, out := newLoop(" 3 \n2\n7\n0\n", d)

	loop.Run(context.Background())

	want := []actions.ID{actions.RunTests, actions.SyncDependencies, actions.DeleteVenv, actions.Exit}
	if diff := cmp.Diff(want, d.ran); diff != "" {
		t.Errorf("dispatched mismatch (-want +got):\n%s", diff)
	}
	if !strings.Contains(out.String(), "✓ tests done") {
		t.Errorf("output missing success report:\n%s", out.String())
	}
}

func TestLoop_EOFIsExit(t *testing.T) {
	t.Parallel()

	d := &recordingDispatcher{}
	loop, _ := newLoop("3", d)

	result := loop.Run(context.Background())
	if result.Status != runner.StatusSucceeded {
		t.Fatalf("Run() status = %v", result.Status)
	}
	want := []actions.ID{actions.RunTests, actions.Exit}
	if diff := cmp.Diff(want, d.ran); diff != "" {
		t.Errorf("dispatched mismatch (-want +got):\n%s", diff)
	}
}

func TestLoop_FatalOutcomeStops(t *testing.T) {
	t.Parallel()

	d := &recordingDispatcher{outcomes: map[actions.ID]runner.Outcome{
		actions.RunTests: runner.Fatal(errors.New("pytest failed"), 4),
	}}
	p := &scriptedPrompter{inputs: []string{"3", "2", "0"}}
	loop := &Loop{Prompter: p, Dispatcher: d, Out: io.Discard, Theme: PlainTheme()}

	result := loop.Run(context.Background())
	if !result.IsFatal() || result.ExitCode != 4 {
		t.Fatalf("Run() = %v (exit %d), want fatal exit 4", result.Status, result.ExitCode)
	}
	if diff := cmp.Diff([]actions.ID{actions.RunTests}, d.ran); diff != "" {
		t.Errorf("dispatched mismatch (-want +got):\n%s", diff)
	}
}

func TestLoop_ToleratedOutcomeContinues(t *testing.T) {
	t.Parallel()

	d := &recordingDispatcher{outcomes: map[actions.ID]runner.Outcome{
		actions.SyncDependencies: runner.Tolerated("dependency sync failed", errors.New("exit status 1")),
	}}
	loop, out := newLoop("2\n0\n", d)

	if result := loop.Run(context.Background()); result.IsFatal() {
		t.Fatalf("Run() status = %v, want non-fatal", result.Status)
	}
	if !strings.Contains(out.String(), "! dependency sync failed: exit status 1") {
		t.Errorf("output missing warning:\n%s", out.String())
	}
}

func TestLoop_Interrupted(t *testing.T) {
	t.Parallel()

	d := &recordingDispatcher{}
	p := &scriptedPrompter{err: ErrInterrupted}
	loop := &Loop{Prompter: p, Dispatcher: d, Out: io.Discard, Theme: PlainTheme()}

	result := loop.Run(context.Background())
	if !result.IsFatal() || result.ExitCode != types.ExitInterrupted {
		t.Errorf("Run() = %v (exit %d), want fatal exit 130", result.Status, result.ExitCode)
	}
	if len(d.ran) != 0 {
		t.Errorf("dispatched %v after interrupt", d.ran)
	}
}

func TestLinePrompter_ContextCanceled(t *testing.T) {
	t.Parallel()

	pr, pw := io.Pipe()
	defer pw.Close()

	p := NewLinePrompter(pr, io.Discard, PlainTheme())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := p.Prompt(ctx, actions.All()); !errors.Is(err, context.Canceled) {
		t.Errorf("Prompt() error = %v, want context.Canceled", err)
	}
}

func TestLinePrompter_LineAfterCancelIsKept(t *testing.T) {
	t.Parallel()

	pr, pw := io.Pipe()
	defer pw.Close()

	p := NewLinePrompter(pr, io.Discard, PlainTheme())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := p.Prompt(ctx, actions.All()); !errors.Is(err, context.Canceled) {
		t.Fatalf("Prompt() error = %v, want context.Canceled", err)
	}

	go func() { _, _ = io.WriteString(pw, "3\n") }()
	got, err := p.Prompt(context.Background(), actions.All())
	if err != nil || got != "3" {
		t.Errorf("Prompt() = %q, %v; want \"3\", nil", got, err)
	}
}

func TestLinePrompter_LastLineWithoutNewline(t *testing.T) {
	t.Parallel()

	p := NewLinePrompter(strings.NewReader("2"), io.Discard, PlainTheme())
	if got, err := p.Prompt(context.Background(), actions.All()); err != nil || got != "2" {
		t.Fatalf("Prompt() = %q, %v; want \"2\", nil", got, err)
	}
	if _, err := p.Prompt(context.Background(), actions.All()); !errors.Is(err, io.EOF) {
		t.Errorf("Prompt() error = %v, want io.EOF", err)
	}
}

func TestLinePrompter_EOFIsSticky(t *testing.T) {
	t.Parallel()

	p := NewLinePrompter(strings.NewReader(""), io.Discard, PlainTheme())
	for range 2 {
		if _, err := p.Prompt(context.Background(), actions.All()); !errors.Is(err, io.EOF) {
			t.Fatalf("Prompt() error = %v, want io.EOF", err)
		}
	}
}

func TestRender(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	Render(&buf, PlainTheme(), actions.All())

	for _, want := range []string{Title, "1) Build OpenMC from source", "7) Delete venv", "0) Exit"} {
		if !strings.Contains(buf.String(), want) {
			t.Errorf("menu missing %q:\n%s", want, buf.String())
		}
	}
}

func TestReport(t *testing.T) {
	t.Parallel()

	tests := []struct {
		outcome runner.Outcome
		want    string
	}{
		{runner.Succeeded("built docs"), "✓ built docs\n"},
		{runner.Skipped("no examples directory"), "- no examples directory\n"},
		{runner.Tolerated("sync failed", errors.New("exit status 1")), "! sync failed: exit status 1\n"},
		{runner.Fatal(errors.New("boom"), 1), ""},
	}
	for _, tt := range tests {
		var buf bytes.Buffer
		Report(&buf, PlainTheme(), tt.outcome)
		if buf.String() != tt.want {
			t.Errorf("Report(%v) = %q, want %q", tt.outcome.Status, buf.String(), tt.want)
		}
	}
}
