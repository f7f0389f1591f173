// Package report encodes run results as TOON (Token-Oriented Object
// Notation), a compact tabular format that is easy to diff and to feed to
// other tools.
package report

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/phobologic/pyorder/internal/errors"
	"github.com/phobologic/pyorder/internal/format"
)

var (
	needsQuoting = regexp.MustCompile(`[,:"\\{}\[\]]`)
	looksNumeric = regexp.MustCompile(`^-?(?:0|[1-9]\d*)(?:\.\d+)?$`)
	keywords     = map[string]struct{}{
		"true":  {},
		"false": {},
		"null":  {},
	}
)

// Encode converts a run summary into TOON. check marks a run that did not
// write files.
func Encode(s format.Summary, check bool) string {
	var parts []string

	mode := "write"
	if check {
		mode = "check"
	}
	parts = append(parts, fmt.Sprintf("mode: %s", mode))
	parts = append(parts, formatTabular("totals",
		[]string{"files", "changed", "unchanged", "skipped", "failed"},
		[][]string{{
			fmt.Sprintf("%d", len(s.Results)),
			fmt.Sprintf("%d", s.Changed()),
			fmt.Sprintf("%d", s.Count(format.StatusUnchanged)),
			fmt.Sprintf("%d", s.Count(format.StatusSkipped)),
			fmt.Sprintf("%d", s.Failed()),
		}},
	))

	var fileRows [][]string
	var errorRows [][]string
	for i := range s.Results {
		r := &s.Results[i]
		fileRows = append(fileRows, []string{r.Path, string(r.Status), r.Detail})
		if r.Err != nil {
			code := string(errors.GetCode(r.Err))
			if code == "" {
				code = "UNKNOWN"
			}
			errorRows = append(errorRows, []string{r.Path, code, r.Err.Error()})
		}
	}
	parts = append(parts, formatTabular("files", []string{"path", "status", "detail"}, fileRows))

	if len(errorRows) > 0 {
		parts = append(parts, formatTabular("errors", []string{"path", "code", "message"}, errorRows))
	}

	return strings.Join(parts, "\n")
}

func formatTabular(name string, columns []string, rows [][]string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s[%d]{%s}:", name, len(rows), strings.Join(columns, ","))
	for _, row := range rows {
		encoded := make([]string, len(row))
		for i, cell := range row {
			encoded[i] = encodeValue(cell)
		}
		fmt.Fprintf(&b, "\n  %s", strings.Join(encoded, ","))
	}
	return b.String()
}

func encodeValue(value string) string {
	if value == "" {
		return `""`
	}

	if value != strings.TrimSpace(value) {
		return quote(value)
	}

	if strings.ContainsAny(value, "\n\r\t") {
		return quote(value)
	}

	if _, ok := keywords[strings.ToLower(value)]; ok {
		return quote(value)
	}

	if looksNumeric.MatchString(value) {
		return value
	}

	if needsQuoting.MatchString(value) {
		return quote(value)
	}

	if strings.HasPrefix(value, "-") {
		return quote(value)
	}

	return value
}

func quote(value string) string {
	escaped := strings.ReplaceAll(value, `\`, `\\`)
	escaped = strings.ReplaceAll(escaped, `"`, `\"`)
	escaped = strings.ReplaceAll(escaped, "\n", `\n`)
	escaped = strings.ReplaceAll(escaped, "\r", `\r`)
	escaped = strings.ReplaceAll(escaped, "\t", `\t`)
	return `"` + escaped + `"`
}
