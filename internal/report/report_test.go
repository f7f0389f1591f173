package report

import (
	"strings"
	"testing"

	"github.com/phobologic/pyorder/internal/errors"
	"github.com/phobologic/pyorder/internal/format"
)

func TestEncodeValue(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", `""`},
		{"simple", "changed", "changed"},
		{"leading space", " hello", `" hello"`},
		{"trailing space", "hello ", `"hello "`},
		{"newline", "a\nb", `"a\nb"`},
		{"tab", "a\tb", `"a\tb"`},
		{"true keyword", "true", `"true"`},
		{"Null keyword", "Null", `"Null"`},
		{"integer", "42", "42"},
		{"negative integer", "-1", "-1"},
		{"float", "3.14", "3.14"},
		{"comma", "a,b", `"a,b"`},
		{"colon", "bad.py: invalid syntax", `"bad.py: invalid syntax"`},
		{"quote", `a"b`, `"a\"b"`},
		{"backslash", `C:\src\a.py`, `"C:\\src\\a.py"`},
		{"dash prefix", "-foo", `"-foo"`},
		{"path", "ivy/functional/frontends/jax/numpy/math.py", "ivy/functional/frontends/jax/numpy/math.py"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := encodeValue(tt.in)
			if got != tt.want {
				t.Errorf("encodeValue(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestEncode(t *testing.T) {
	t.Parallel()

	s := format.Summary{Results: []format.Result{
		{Path: "a.py", Status: format.StatusChanged},
		{Path: "b.py", Status: format.StatusUnchanged},
		{Path: "c.py", Status: format.StatusSkipped, Detail: "filtered"},
		{Path: "d.py", Status: format.StatusFailed, Err: errors.New(errors.ParseFailure, "invalid syntax near line 3")},
	}}

	got := Encode(s, true)
	want := strings.Join([]string{
		"mode: check",
		"totals[1]{files,changed,unchanged,skipped,failed}:",
		"  4,1,1,1,1",
		"files[4]{path,status,detail}:",
		`  a.py,changed,""`,
		`  b.py,unchanged,""`,
		"  c.py,skipped,filtered",
		`  d.py,failed,""`,
		"errors[1]{path,code,message}:",
		"  d.py,PARSE_FAILURE,invalid syntax near line 3",
	}, "\n")
	if got != want {
		t.Errorf("Encode mismatch\ngot:\n%s\nwant:\n%s", got, want)
	}
}

func TestEncodeEmpty(t *testing.T) {
	t.Parallel()

	got := Encode(format.Summary{}, false)
	if !strings.HasPrefix(got, "mode: write\n") {
		t.Errorf("unexpected mode line:\n%s", got)
	}
	if !strings.Contains(got, "files[0]{path,status,detail}:") {
		t.Errorf("missing empty files table:\n%s", got)
	}
	if strings.Contains(got, "errors[") {
		t.Errorf("errors table should be omitted when nothing failed:\n%s", got)
	}
}
