package discover

import (
	"os"
	"path/filepath"
	"slices"
	"testing"
)

func TestDiscoverPythonFiles(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	writeFile(t, dir, "main.py", "print('hello')")
	writeFile(t, dir, "lib/util.py", "def helper(): pass")
	writeFile(t, dir, "lib/stubs.pyi", "def helper() -> None: ...")
	// Non-Python file should be ignored
	writeFile(t, dir, "readme.txt", "hello")
	// Hidden file should be ignored
	writeFile(t, dir, ".hidden.py", "secret")

	files, err := Files(dir)
	if err != nil {
		t.Fatalf("Files: %v", err)
	}

	want := []string{
		filepath.Join("lib", "stubs.pyi"),
		filepath.Join("lib", "util.py"),
		"main.py",
	}
	if !slices.Equal(files, want) {
		t.Errorf("Files = %v, want %v", files, want)
	}
}

func TestDiscoverSkipDirs(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	writeFile(t, dir, "main.py", "pass")
	writeFile(t, dir, "node_modules/pkg.py", "pass")
	writeFile(t, dir, "__pycache__/cached.py", "pass")
	writeFile(t, dir, ".hidden/secret.py", "pass")
	writeFile(t, dir, "venv/lib/site.py", "pass")
	writeFile(t, dir, "pyorder.egg-info/setup.py", "pass")

	files, err := Files(dir)
	if err != nil {
		t.Fatalf("Files: %v", err)
	}

	if len(files) != 1 || files[0] != "main.py" {
		t.Fatalf("Files = %v, want [main.py]", files)
	}
}

func TestDiscoverGitignore(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, dir, ".gitignore", "generated/\n*_pb2.py\n")
	writeFile(t, dir, "keep.py", "pass")
	writeFile(t, dir, "service_pb2.py", "pass")
	writeFile(t, dir, "generated/out.py", "pass")

	files, err := Files(dir)
	if err != nil {
		t.Fatalf("Files: %v", err)
	}
	if len(files) != 1 || files[0] != "keep.py" {
		t.Fatalf("Files = %v, want [keep.py]", files)
	}
}

func TestDiscoverSymlinksSkipped(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, dir, "real.py", "pass")

	err := os.Symlink(filepath.Join(dir, "real.py"), filepath.Join(dir, "link.py"))
	if err != nil {
		t.Skip("symlinks not supported")
	}

	files, err := Files(dir)
	if err != nil {
		t.Fatalf("Files: %v", err)
	}

	if len(files) != 1 || files[0] != "real.py" {
		t.Fatalf("Files = %v, want [real.py]", files)
	}
}

func TestExpand(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, dir, "pkg/a.py", "pass")
	writeFile(t, dir, "pkg/b.py", "pass")
	single := filepath.Join(dir, "pkg", "a.py")

	got, err := Expand([]string{single, filepath.Join(dir, "pkg"), single, "missing.py"})
	if err != nil {
		t.Fatalf("Expand: %v", err)
	}

	want := []string{
		single,
		filepath.Join(dir, "pkg", "b.py"),
		"missing.py",
	}
	if !slices.Equal(got, want) {
		t.Errorf("Expand = %v, want %v", got, want)
	}
}

func TestFilter(t *testing.T) {
	t.Parallel()

	f, err := NewFilter(
		[]string{`(^|/)ivy/functional/frontends/`},
		[]string{"config.py", "__init__.py", "helpers.py", "test_helpers/"},
	)
	if err != nil {
		t.Fatalf("NewFilter: %v", err)
	}

	cases := []struct {
		path string
		want bool
	}{
		{"ivy/functional/frontends/jax/lax/operators.py", true},
		{"/home/dev/ivy/ivy/functional/frontends/numpy/func_wrapper.py", true},
		{"ivy/functional/frontends/torch/stubs.pyi", true},
		{"ivy/functional/frontends/jax/config.py", false},
		{"ivy/functional/frontends/jax/__init__.py", false},
		{"ivy/functional/frontends/helpers.py", false},
		{"ivy/functional/frontends/test_helpers/shapes.py", false},
		{"ivy/functional/frontends/jax/notes.md", false},
		{"ivy/functional/backends/jax/general.py", false},
		{"myivy/functional/frontends/x.py", false},
	}
	for _, tc := range cases {
		t.Run(tc.path, func(t *testing.T) {
			t.Parallel()
			if got := f.Match(tc.path); got != tc.want {
				t.Errorf("Match(%q) = %v, want %v", tc.path, got, tc.want)
			}
		})
	}
}

func TestFilterNoPatterns(t *testing.T) {
	t.Parallel()

	f, err := NewFilter(nil, nil)
	if err != nil {
		t.Fatalf("NewFilter: %v", err)
	}
	if !f.Match("anything/at/all.py") {
		t.Error("empty filter should accept every Python file")
	}
	if f.Match("setup.cfg") {
		t.Error("empty filter should still reject non-Python files")
	}
}

func TestFilterBadInclude(t *testing.T) {
	t.Parallel()

	if _, err := NewFilter([]string{"("}, nil); err == nil {
		t.Fatal("expected error for invalid include expression")
	}
}

func writeFile(t *testing.T, root, rel, content string) {
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
