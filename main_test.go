package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const unorderedModule = `import os


def public():
    return _helper()


def _helper():
    return os.getcwd()


x = 1
`

const orderedModule = `import os

x = 1

# --- Helpers --- #
# --------------- #
def _helper():
    return os.getcwd()

# --- Main --- #
# ------------ #
def public():
    return _helper()
`

func writeTestFile(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, rel)
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func readTestFile(t *testing.T, root, rel string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(root, rel))
	if err != nil {
		t.Fatal(err)
	}
	return string(data)
}

// createSampleRepo lays out a small frontend tree that the default include
// and exclude patterns select from.
func createSampleRepo(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	writeTestFile(t, dir, "ivy/functional/frontends/demo/math.py", unorderedModule)
	writeTestFile(t, dir, "ivy/functional/frontends/demo/clean.py", orderedModule)
	writeTestFile(t, dir, "ivy/functional/frontends/demo/__init__.py", unorderedModule)
	writeTestFile(t, dir, "ivy/functional/backends/demo/math.py", unorderedModule)
	return dir
}

func runCLI(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(context.Background(), args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

// emptyConfig writes a config file so tests do not depend on the working
// directory's settings.
func emptyConfig(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "pyorder.toml")
	writeTestFile(t, dir, "pyorder.toml", "")
	return path
}

func TestRunReformats(t *testing.T) {
	t.Parallel()
	dir := createSampleRepo(t)

	code, _, stderr := runCLI(t, "--config", emptyConfig(t, t.TempDir()), dir)
	if code != exitDirty {
		t.Fatalf("exit code = %d, want %d\nstderr: %s", code, exitDirty, stderr)
	}

	if got := readTestFile(t, dir, "ivy/functional/frontends/demo/math.py"); got != orderedModule {
		t.Errorf("math.py not reordered:\n%s", got)
	}
	// Excluded and out-of-scope files are untouched.
	if got := readTestFile(t, dir, "ivy/functional/frontends/demo/__init__.py"); got != unorderedModule {
		t.Error("__init__.py should be excluded")
	}
	if got := readTestFile(t, dir, "ivy/functional/backends/demo/math.py"); got != unorderedModule {
		t.Error("backends should not match the include pattern")
	}
	if !strings.Contains(stderr, "1 file reformatted") {
		t.Errorf("summary missing from stderr:\n%s", stderr)
	}

	// Second run has nothing to do.
	code, _, stderr = runCLI(t, "--config", emptyConfig(t, t.TempDir()), dir)
	if code != exitClean {
		t.Fatalf("second run exit code = %d, want %d\nstderr: %s", code, exitClean, stderr)
	}
}

func TestRunCheckDoesNotWrite(t *testing.T) {
	t.Parallel()
	dir := createSampleRepo(t)

	code, _, stderr := runCLI(t, "--check", "--config", emptyConfig(t, t.TempDir()), dir)
	if code != exitDirty {
		t.Fatalf("exit code = %d, want %d", code, exitDirty)
	}
	if got := readTestFile(t, dir, "ivy/functional/frontends/demo/math.py"); got != unorderedModule {
		t.Error("--check must not modify files")
	}
	if !strings.Contains(stderr, "would be reformatted") {
		t.Errorf("expected check summary:\n%s", stderr)
	}
}

func TestRunExplicitFiles(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	writeTestFile(t, dir, "a.py", unorderedModule)
	writeTestFile(t, dir, "b.py", orderedModule)

	cfg := emptyConfig(t, t.TempDir())
	a := filepath.Join(dir, "a.py")
	code, _, stderr := runCLI(t, "--config", cfg, "--include", ".", a, a, filepath.Join(dir, "b.py"))
	if code != exitDirty {
		t.Fatalf("exit code = %d, want %d\nstderr: %s", code, exitDirty, stderr)
	}
	if got := readTestFile(t, dir, "a.py"); got != orderedModule {
		t.Errorf("a.py not reordered:\n%s", got)
	}
}

func TestRunParseFailure(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	broken := "def broken(:\n    pass\n"
	writeTestFile(t, dir, "broken.py", broken)

	code, _, stderr := runCLI(t, "--config", emptyConfig(t, t.TempDir()), "--include", ".", dir)
	if code != exitDirty {
		t.Fatalf("exit code = %d, want %d", code, exitDirty)
	}
	if got := readTestFile(t, dir, "broken.py"); got != broken {
		t.Error("unparseable file must be left alone")
	}
	if !strings.Contains(stderr, "broken.py") || !strings.Contains(stderr, "1 file failed") {
		t.Errorf("expected failure diagnostic:\n%s", stderr)
	}
}

func TestRunReport(t *testing.T) {
	t.Parallel()
	dir := createSampleRepo(t)

	code, stdout, _ := runCLI(t, "--check", "--report", "-", "-q", "--config", emptyConfig(t, t.TempDir()), dir)
	if code != exitDirty {
		t.Fatalf("exit code = %d, want %d", code, exitDirty)
	}
	if !strings.HasPrefix(stdout, "mode: check\n") {
		t.Errorf("report should start with mode line:\n%s", stdout)
	}
	if !strings.Contains(stdout, "ivy/functional/frontends/demo/math.py") || !strings.Contains(stdout, ",changed,") {
		t.Errorf("report missing changed file:\n%s", stdout)
	}
	if !strings.Contains(stdout, "skipped,filtered") {
		t.Errorf("report missing filtered file:\n%s", stdout)
	}
}

func TestRunReportFile(t *testing.T) {
	t.Parallel()
	dir := createSampleRepo(t)
	out := filepath.Join(t.TempDir(), "report.toon")

	runCLI(t, "--check", "--report", out, "-q", "--config", emptyConfig(t, t.TempDir()), dir)

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("report not written: %v", err)
	}
	if !strings.Contains(string(data), "totals[1]{files,changed,unchanged,skipped,failed}:") {
		t.Errorf("unexpected report:\n%s", data)
	}
}

func TestRunFormattersFlag(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	src := "def f():\n    \"\"\"Add.\n\n    Functional Examples:\n    >>> f()\n    1\n    \"\"\"\n    return 1\n"
	writeTestFile(t, dir, "mod.py", src)

	code, _, stderr := runCLI(t, "--config", emptyConfig(t, t.TempDir()), "--include", ".", "--formatters", "docstring", dir)
	if code != exitDirty {
		t.Fatalf("exit code = %d, want %d\nstderr: %s", code, exitDirty, stderr)
	}
	got := readTestFile(t, dir, "mod.py")
	if !strings.Contains(got, "    Examples:\n\n    >>> f()\n    1\n") {
		t.Errorf("docstring not normalized:\n%s", got)
	}
}

func TestRunInvalidFlags(t *testing.T) {
	t.Parallel()
	cfg := emptyConfig(t, t.TempDir())

	tests := []struct {
		name string
		args []string
	}{
		{"unknown flag", []string{"--nope"}},
		{"bad formatter", []string{"--config", cfg, "--formatters", "black"}},
		{"bad include", []string{"--config", cfg, "--include", "("}},
		{"bad blank lines", []string{"--config", cfg, "--blank-lines", "5"}},
		{"missing config", []string{"--config", filepath.Join(t.TempDir(), "nope.toml")}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			code, _, stderr := runCLI(t, append(tc.args, t.TempDir())...)
			if code != exitError {
				t.Errorf("exit code = %d, want %d", code, exitError)
			}
			if !strings.Contains(stderr, "error:") {
				t.Errorf("expected error message:\n%s", stderr)
			}
		})
	}
}

func TestRunVersion(t *testing.T) {
	t.Parallel()

	code, stdout, _ := runCLI(t, "--version")
	if code != exitClean {
		t.Fatalf("exit code = %d", code)
	}
	if !strings.HasPrefix(stdout, "pyorder ") {
		t.Errorf("unexpected version output: %q", stdout)
	}
}

func TestRunNothingToDo(t *testing.T) {
	t.Parallel()

	code, _, stderr := runCLI(t, "--config", emptyConfig(t, t.TempDir()), t.TempDir())
	if code != exitClean {
		t.Fatalf("exit code = %d, want %d\nstderr: %s", code, exitClean, stderr)
	}
	if !strings.Contains(stderr, "nothing to change") {
		t.Errorf("unexpected summary:\n%s", stderr)
	}
}
