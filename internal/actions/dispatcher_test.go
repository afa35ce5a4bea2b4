// SPDX-License-Identifier: MPL-2.0

package actions

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fusion-energy/devsetup/internal/config"
	"github.com/fusion-energy/devsetup/internal/issue"
	"github.com/fusion-energy/devsetup/internal/runner"
	"github.com/fusion-energy/devsetup/internal/testutil"
	"github.com/fusion-energy/devsetup/internal/testutil/runnertest"
	"github.com/fusion-energy/devsetup/internal/workspace"
	"github.com/fusion-energy/devsetup/pkg/platform"
	"github.com/fusion-energy/devsetup/pkg/types"

	"github.com/charmbracelet/log"
	"github.com/google/go-cmp/cmp"
)

type (
	fakeProvisioner struct {
		calls int
		fail  bool
	}

	fakeSource struct {
		clones   []string
		cloneErr error
		inspect  error
	}
)

func (p *fakeProvisioner) Provision(_ context.Context, s *workspace.Session) runner.Outcome {
	p.calls++
	if p.fail {
		return runner.Fatal(errors.New("uv venv failed"), 3)
	}
	d := s.Descriptor()
	if err := os.MkdirAll(d.BinDir(), 0o755); err != nil {
		return runner.Fatal(err, 1)
	}
	if err := os.WriteFile(d.ActivationScript(), []byte("# activate\n"), 0o644); err != nil {
		return runner.Fatal(err, 1)
	}
	s.Activate()
	return runner.Succeeded("provisioned")
}

func (f *fakeSource) Clone(_ context.Context, url, ref, dir string) error {
	f.clones = append(f.clones, url+"@"+ref+" -> "+dir)
	if f.cloneErr != nil {
		return f.cloneErr
	}
	return os.MkdirAll(dir, 0o755)
}

func (f *fakeSource) Inspect(string) (string, error) {
	if f.inspect != nil {
		return "", f.inspect
	}
	return "abc1234", nil
}

type dispatchFixture struct {
	d      *Dispatcher
	fake   *runnertest.FakeRunner
	prov   *fakeProvisioner
	source *fakeSource
	out    *bytes.Buffer
	base   string
	home   string
}

// newDispatchFixture returns a dispatcher over an already provisioned and
// active session on a Debian-like host without sudo.
func newDispatchFixture(t *testing.T) *dispatchFixture {
	t.Helper()

	base := t.TempDir()
	home := t.TempDir()
	desc, err := workspace.NewDescriptor(workspace.DescriptorOptions{
		PythonVersion:    "3.12",
		VenvDir:          ".venv",
		ToolkitSourceDir: "~/openmc",
		BaseDir:          base,
		HomeDir:          home,
		GOOS:             platform.Linux,
	})
	if err != nil {
		t.Fatal(err)
	}
	session := workspace.NewSession(desc, runner.NewEnviron([]string{"PATH=" + t.TempDir(), "HOME=" + home}))

	prov := &fakeProvisioner{}
	if out := prov.Provision(context.Background(), session); !out.OK() {
		t.Fatal(out.Err)
	}
	prov.calls = 0

	fake := runnertest.New()
	source := &fakeSource{}
	out := &bytes.Buffer{}
	d := &Dispatcher{
		Runner:      fake,
		Session:     session,
		Config:      config.DefaultConfig(),
		Host:        platform.Host{OS: platform.Linux, PackageManager: platform.PackageManagerApt},
		Source:      source,
		Provisioner: prov,
		Logger:      log.New(&bytes.Buffer{}),
		Out:         out,
		RemoveAll:   os.RemoveAll,
		NumCPU:      4,
	}
	return &dispatchFixture{d: d, fake: fake, prov: prov, source: source, out: out, base: base, home: home}
}

func TestRun_BuildOpenMC(t *testing.T) {
	t.Parallel()

	f := newDispatchFixture(t)
	out := f.d.Run(context.Background(), BuildOpenMC)
	if out.Status != runner.StatusSucceeded {
		t.Fatalf("Run() status = %v, err = %v", out.Status, out.Err)
	}

	src := filepath.Join(f.home, "openmc")
	build := filepath.Join(src, "build")
	venv := f.d.Session.Descriptor().VenvDir()
	want := []string{
		"apt-get install -y g++ cmake libhdf5-dev libpng-dev",
		"cmake -S " + src + " -B " + build + " '-DCMAKE_INSTALL_PREFIX=" + venv + "'",
		"cmake --build " + build + " -j 4",
		"cmake --install " + build,
	}
	if diff := cmp.Diff(want, f.fake.Lines()); diff != "" {
		t.Errorf("commands mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"https://github.com/openmc-dev/openmc.git@ -> " + src}, f.source.clones); diff != "" {
		t.Errorf("clones mismatch (-want +got):\n%s", diff)
	}

	for _, c := range f.fake.Commands()[1:] {
		if c.Dir != src {
			t.Errorf("%s ran in %q, want %q", c, c.Dir, src)
		}
	}
	if !f.d.Session.Cursor().AtBase() {
		t.Error("cursor should be back at the base directory")
	}
}

func TestRun_BuildOpenMC_PrerequisiteFailureTolerated(t *testing.T) {
	t.Parallel()

	f := newDispatchFixture(t)
	f.fake.Fail(100, "apt-get")

	out := f.d.Run(context.Background(), BuildOpenMC)
	if out.Status != runner.StatusTolerated {
		t.Fatalf("Run() status = %v, want tolerated", out.Status)
	}
	if n := f.fake.Count("cmake"); n != 3 {
		t.Errorf("cmake ran %d times, want 3", n)
	}
}

func TestRun_BuildOpenMC_NoPackageManager(t *testing.T) {
	t.Parallel()

	f := newDispatchFixture(t)
	f.d.Host = platform.Host{OS: platform.Linux}

	out := f.d.Run(context.Background(), BuildOpenMC)
	if out.Status != runner.StatusTolerated {
		t.Fatalf("Run() status = %v, want tolerated", out.Status)
	}
	if n := f.fake.Count("cmake"); n != 3 {
		t.Errorf("cmake ran %d times, want 3", n)
	}
}

func TestRun_BuildOpenMC_BrewAndSudo(t *testing.T) {
	t.Parallel()

	f := newDispatchFixture(t)
	f.d.Host = platform.Host{OS: platform.Darwin, PackageManager: platform.PackageManagerBrew}
	f.d.Run(context.Background(), BuildOpenMC)
	if got := f.fake.Lines()[0]; got != "brew install cmake hdf5 libpng libomp" {
		t.Errorf("prerequisites = %q", got)
	}

	g := newDispatchFixture(t)
	g.d.Host = platform.Host{OS: platform.Linux, PackageManager: platform.PackageManagerDnf}
	sudoDir := t.TempDir()
	testutil.MustWriteExecutable(t, sudoDir, "sudo")
	g.d.Session.ExtendPath(sudoDir)
	g.d.Run(context.Background(), BuildOpenMC)
	if got := g.fake.Lines()[0]; got != "sudo dnf install -y gcc-c++ cmake hdf5-devel libpng-devel" {
		t.Errorf("prerequisites = %q", got)
	}
}

func TestRun_BuildOpenMC_ExistingCloneReused(t *testing.T) {
	t.Parallel()

	f := newDispatchFixture(t)
	testutil.MustMkdirAll(t, filepath.Join(f.home, "openmc"), 0o755)
	f.source.inspect = errors.New("not a git repository")

	out := f.d.Run(context.Background(), BuildOpenMC)
	if out.Status != runner.StatusSucceeded {
		t.Fatalf("Run() status = %v, err = %v", out.Status, out.Err)
	}
	if len(f.source.clones) != 0 {
		t.Errorf("existing checkout was re-cloned: %v", f.source.clones)
	}
}

func TestRun_BuildOpenMC_SourcePathIsFile(t *testing.T) {
	t.Parallel()

	f := newDispatchFixture(t)
	src := filepath.Join(f.home, "openmc")
	testutil.MustWriteFile(t, src, "notes\n")

	out := f.d.Run(context.Background(), BuildOpenMC)
	if !out.IsFatal() {
		t.Fatalf("Run() status = %v, want fatal", out.Status)
	}
	if len(f.source.clones) != 0 {
		t.Errorf("clone attempted over a regular file: %v", f.source.clones)
	}
	if f.fake.Count("cmake") != 0 {
		t.Error("cmake ran without a source checkout")
	}
	data, err := os.ReadFile(src)
	if err != nil || string(data) != "notes\n" {
		t.Errorf("file at %s = %q, %v; want it untouched", src, data, err)
	}
}

func TestNewDispatcher_KeepsHost(t *testing.T) {
	t.Parallel()

	f := newDispatchFixture(t)
	host := platform.Host{OS: platform.Darwin, PackageManager: platform.PackageManagerBrew}
	d := NewDispatcher(f.fake, f.d.Session, config.DefaultConfig(), host, f.prov)
	if d.Host != host {
		t.Errorf("NewDispatcher().Host = %v, want %v", d.Host, host)
	}
}

func TestRun_BuildOpenMC_CloneFailureIsFatal(t *testing.T) {
	t.Parallel()

	f := newDispatchFixture(t)
	f.source.cloneErr = errors.New("network unreachable")

	out := f.d.Run(context.Background(), BuildOpenMC)
	if !out.IsFatal() {
		t.Fatalf("Run() status = %v, want fatal", out.Status)
	}
	if f.fake.Count("cmake") != 0 {
		t.Error("cmake ran after a failed clone")
	}
	if !f.d.Session.Cursor().AtBase() {
		t.Error("cursor should be back at the base directory")
	}
}

func TestRun_BuildOpenMC_CompileFailureIsFatal(t *testing.T) {
	t.Parallel()

	f := newDispatchFixture(t)
	f.fake.Fail(2, "cmake", "--build")

	out := f.d.Run(context.Background(), BuildOpenMC)
	if !out.IsFatal() || out.ExitCode != 2 {
		t.Fatalf("Run() = %v (exit %d), want fatal exit 2", out.Status, out.ExitCode)
	}
	if f.fake.Count("cmake", "--install") != 0 {
		t.Error("install ran after a failed compile")
	}
	if !f.d.Session.Cursor().AtBase() {
		t.Error("cursor should be back at the base directory")
	}
}

func TestRun_SyncDependencies(t *testing.T) {
	t.Parallel()

	f := newDispatchFixture(t)
	out := f.d.Run(context.Background(), SyncDependencies)
	if out.Status != runner.StatusSucceeded {
		t.Fatalf("Run() status = %v", out.Status)
	}
	c, ok := f.fake.Find("uv", "sync")
	if !ok {
		t.Fatal("uv sync did not run")
	}
	if c.Dir != f.base {
		t.Errorf("uv sync Dir = %q, want %q", c.Dir, f.base)
	}
	if c.Env.Get("VIRTUAL_ENV") != f.d.Session.Descriptor().VenvDir() {
		t.Error("uv sync should run inside the activated environment")
	}
}

func TestRun_SyncDependencies_FailureIsWarning(t *testing.T) {
	t.Parallel()

	f := newDispatchFixture(t)
	testutil.MustWriteFile(t, filepath.Join(f.base, "pyproject.toml"), `
[project]
name = "paramak"
dependencies = ["cadquery", "openmc>=0.14"]
`)
	f.fake.Fail(1, "uv", "sync")

	out := f.d.Run(context.Background(), SyncDependencies)
	if out.Status != runner.StatusTolerated {
		t.Fatalf("Run() status = %v, want tolerated", out.Status)
	}
	if !strings.Contains(out.Summary, "openmc") {
		t.Errorf("Summary = %q, want it to name openmc", out.Summary)
	}
}

func TestRun_Tests(t *testing.T) {
	t.Parallel()

	f := newDispatchFixture(t)
	if out := f.d.Run(context.Background(), RunTests); out.Status != runner.StatusSucceeded {
		t.Fatalf("Run() status = %v", out.Status)
	}
	if diff := cmp.Diff([]string{"pytest"}, f.fake.Lines()); diff != "" {
		t.Errorf("commands mismatch (-want +got):\n%s", diff)
	}
}

func TestRun_TestsFailureIsFatal(t *testing.T) {
	t.Parallel()

	f := newDispatchFixture(t)
	f.fake.Fail(5, "pytest")

	out := f.d.Run(context.Background(), RunTests)
	if !out.IsFatal() {
		t.Fatalf("Run() status = %v, want fatal", out.Status)
	}
	if out.ExitCode != 5 {
		t.Errorf("ExitCode = %d, want 5", out.ExitCode)
	}
	if got := issue.IDOf(out.Err); got != issue.CommandFailedId {
		t.Errorf("IDOf(err) = %v, want %v", got, issue.CommandFailedId)
	}
}

func TestRun_TestsNotInstalled(t *testing.T) {
	t.Parallel()

	f := newDispatchFixture(t)
	f.fake.Missing("pytest")

	out := f.d.Run(context.Background(), RunTests)
	if out.ExitCode != 127 {
		t.Errorf("ExitCode = %d, want 127", out.ExitCode)
	}
	if got := issue.IDOf(out.Err); got != issue.CommandNotFoundId {
		t.Errorf("IDOf(err) = %v, want %v", got, issue.CommandNotFoundId)
	}
}

func TestRun_BuildDocs(t *testing.T) {
	t.Parallel()

	f := newDispatchFixture(t)
	testutil.MustMkdirAll(t, filepath.Join(f.base, "docs"), 0o755)

	if out := f.d.Run(context.Background(), BuildDocs); out.Status != runner.StatusSucceeded {
		t.Fatalf("Run() status = %v, err = %v", out.Status, out.Err)
	}
	want := []string{
		"uv pip install -e '.[docs]'",
		"sphinx-build -b html docs docs/_build/html",
	}
	if diff := cmp.Diff(want, f.fake.Lines()); diff != "" {
		t.Errorf("commands mismatch (-want +got):\n%s", diff)
	}
}

func TestRun_SkipsWithoutDirectories(t *testing.T) {
	t.Parallel()

	for _, id := range []ID{BuildDocs, RunExamples} {
		f := newDispatchFixture(t)
		out := f.d.Run(context.Background(), id)
		if out.Status != runner.StatusSkipped {
			t.Errorf("%v status = %v, want skipped", id, out.Status)
		}
		if n := len(f.fake.Commands()); n != 0 {
			t.Errorf("%v ran %d commands, want 0", id, n)
		}
		if !strings.Contains(f.out.String(), "skipping") {
			t.Errorf("%v output = %q, want a skip message", id, f.out.String())
		}
	}
}

func TestRun_Examples(t *testing.T) {
	t.Parallel()

	f := newDispatchFixture(t)
	examples := filepath.Join(f.base, "examples")
	for _, name := range []string{"b_shapes.py", "a_reactor.py", "README.md"} {
		testutil.MustWriteFile(t, filepath.Join(examples, name), "")
	}

	if out := f.d.Run(context.Background(), RunExamples); out.Status != runner.StatusSucceeded {
		t.Fatalf("Run() status = %v, err = %v", out.Status, out.Err)
	}

	python := f.d.Session.Descriptor().Python()
	want := []string{python + " a_reactor.py", python + " b_shapes.py"}
	if diff := cmp.Diff(want, f.fake.Lines()); diff != "" {
		t.Errorf("commands mismatch (-want +got):\n%s", diff)
	}
	for _, c := range f.fake.Commands() {
		if c.Dir != examples {
			t.Errorf("%s ran in %q, want %q", c, c.Dir, examples)
		}
	}
}

func TestRun_ExampleFailureIsFatal(t *testing.T) {
	t.Parallel()

	f := newDispatchFixture(t)
	examples := filepath.Join(f.base, "examples")
	for _, name := range []string{"a.py", "b.py", "c.py"} {
		testutil.MustWriteFile(t, filepath.Join(examples, name), "")
	}
	python := f.d.Session.Descriptor().Python()
	f.fake.Fail(1, python, "b.py")

	out := f.d.Run(context.Background(), RunExamples)
	if !out.IsFatal() {
		t.Fatalf("Run() status = %v, want fatal", out.Status)
	}
	if f.fake.Count(python, "c.py") != 0 {
		t.Error("c.py ran after b.py failed")
	}
}

func TestRun_InstallDev(t *testing.T) {
	t.Parallel()

	f := newDispatchFixture(t)
	f.d.Run(context.Background(), InstallDev)
	if diff := cmp.Diff([]string{"uv pip install -e ."}, f.fake.Lines()); diff != "" {
		t.Errorf("commands mismatch (-want +got):\n%s", diff)
	}
}

func TestRun_DeleteThenReprovision(t *testing.T) {
	t.Parallel()

	f := newDispatchFixture(t)
	desc := f.d.Session.Descriptor()

	if out := f.d.Run(context.Background(), DeleteVenv); out.Status != runner.StatusSucceeded {
		t.Fatalf("DeleteVenv status = %v, err = %v", out.Status, out.Err)
	}
	if desc.HasEnvironment() {
		t.Fatal("environment directory still exists after delete")
	}
	if f.d.Session.Active() {
		t.Error("session should be inactive after delete")
	}

	if out := f.d.Run(context.Background(), RunTests); out.Status != runner.StatusSucceeded {
		t.Fatalf("RunTests status = %v, err = %v", out.Status, out.Err)
	}
	if f.prov.calls != 1 {
		t.Errorf("Provision called %d times, want 1", f.prov.calls)
	}
	if !desc.HasActivationScript() {
		t.Error("environment should be recreated")
	}
}

func TestRun_ReprovisionFailureStopsAction(t *testing.T) {
	t.Parallel()

	f := newDispatchFixture(t)
	f.d.Run(context.Background(), DeleteVenv)
	f.prov.fail = true

	out := f.d.Run(context.Background(), InstallDev)
	if !out.IsFatal() || out.ExitCode != 3 {
		t.Fatalf("Run() = %v (exit %d), want fatal exit 3", out.Status, out.ExitCode)
	}
	if len(f.fake.Commands()) != 0 {
		t.Errorf("commands ran after failed provisioning: %v", f.fake.Lines())
	}
}

func TestRun_DeleteDoesNotProvision(t *testing.T) {
	t.Parallel()

	f := newDispatchFixture(t)
	f.d.Session.Deactivate()
	f.d.Run(context.Background(), DeleteVenv)
	if f.prov.calls != 0 {
		t.Errorf("Provision called %d times for delete, want 0", f.prov.calls)
	}
}

func TestRun_ExitReturnsHint(t *testing.T) {
	t.Parallel()

	f := newDispatchFixture(t)
	out := f.d.Run(context.Background(), Exit)
	if out.Summary != "source .venv/bin/activate" {
		t.Errorf("Summary = %q, want %q", out.Summary, "source .venv/bin/activate")
	}
	if len(f.fake.Commands()) != 0 {
		t.Error("exit ran commands")
	}
}

func TestRun_UnknownID(t *testing.T) {
	t.Parallel()

	f := newDispatchFixture(t)
	out := f.d.Run(context.Background(), ID(99))
	if !out.IsFatal() || !errors.Is(out.Err, ErrUnknownSelector) {
		t.Errorf("Run(99) = %v / %v", out.Status, out.Err)
	}
}

func TestRun_Canceled(t *testing.T) {
	t.Parallel()

	f := newDispatchFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	out := f.d.Run(ctx, RunTests)
	if !out.IsFatal() || out.ExitCode != types.ExitInterrupted {
		t.Errorf("Run() = %v (exit %d), want fatal exit 130", out.Status, out.ExitCode)
	}
	if len(f.fake.Commands()) != 0 {
		t.Error("commands ran after cancellation")
	}
}

func TestCommandLine(t *testing.T) {
	t.Parallel()

	f := newDispatchFixture(t)
	f.d.Config.Project.DocsDir = "doc source"

	got, err := f.d.commandLine(`sphinx-build -b html "$DOCS_DIR" $DOCS_OUTPUT -W`)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"sphinx-build", "-b", "html", "doc source", "docs/_build/html", "-W"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("commandLine() mismatch (-want +got):\n%s", diff)
	}

	if _, err := f.d.commandLine(`pytest "unterminated`); err == nil {
		t.Error("commandLine() accepted an unterminated quote")
	}
	if _, err := f.d.commandLine("   "); err == nil {
		t.Error("commandLine() accepted an empty line")
	}
}
