// Package docstring normalizes the examples section of Python docstrings.
package docstring

import (
	"context"
	"regexp"
	"sort"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/phobologic/pyorder/internal/errors"
	"github.com/phobologic/pyorder/internal/lang"
)

var (
	functionalExamples = regexp.MustCompile(`(?i)functional examples:`)
	examplesTitle      = regexp.MustCompile(`(?i)^examples:?$`)
	underline          = regexp.MustCompile(`^-{3,}$`)
)

const prompt = ">>>"

// Format rewrites every module, class and function docstring in src and
// reports whether anything changed. Only triple-quoted docstrings are
// touched. Source that does not parse is a ParseFailure.
func Format(ctx context.Context, parser *sitter.Parser, src []byte) ([]byte, bool, error) {
	tree, err := parser.ParseCtx(ctx, nil, src)
	if err != nil {
		return nil, false, errors.Wrap(errors.ParseFailure, err, "parsing")
	}
	defer tree.Close()

	root := tree.RootNode()
	if root.HasError() {
		return nil, false, errors.New(errors.ParseFailure, "invalid syntax")
	}

	var edits []edit
	for _, n := range docstrings(root) {
		text := lang.NodeText(n, src)
		if !tripleQuoted(text) {
			continue
		}
		if out := Rewrite(text); out != text {
			edits = append(edits, edit{start: n.StartByte(), end: n.EndByte(), text: out})
		}
	}
	if len(edits) == 0 {
		return src, false, nil
	}

	sort.Slice(edits, func(i, j int) bool { return edits[i].start < edits[j].start })
	var b strings.Builder
	var pos uint32
	for _, e := range edits {
		b.Write(src[pos:e.start])
		b.WriteString(e.text)
		pos = e.end
	}
	b.Write(src[pos:])
	return []byte(b.String()), true, nil
}

type edit struct {
	start, end uint32
	text       string
}

// docstrings returns the string nodes that open the module and every class
// and function body, nested ones included.
func docstrings(root *sitter.Node) []*sitter.Node {
	var out []*sitter.Node
	stack := []*sitter.Node{root}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		var body *sitter.Node
		switch n.Type() {
		case "module":
			body = n
		case "class_definition", "function_definition":
			body = n.ChildByFieldName("body")
		}
		if body != nil {
			if stmts := lang.Statements(body); len(stmts) > 0 && lang.IsDocstring(stmts[0]) {
				if s := stmts[0].NamedChild(0); s.Type() == "string" {
					out = append(out, s)
				}
			}
		}
		for i := int(n.NamedChildCount()) - 1; i >= 0; i-- {
			stack = append(stack, n.NamedChild(i))
		}
	}
	return out
}

func tripleQuoted(text string) bool {
	rest := strings.TrimLeft(text, "rRuU")
	if len(text)-len(rest) > 1 {
		return false
	}
	return strings.HasPrefix(rest, `"""`) || strings.HasPrefix(rest, `'''`)
}

// Rewrite applies the examples rules to the full text of one docstring,
// quotes included:
//
//   - "Functional Examples:" becomes "Examples:";
//   - fence lines around examples are removed, other fenced blocks stay;
//   - the first example is preceded by a blank line, inputs are not
//     separated from their output, and each example block is followed by
//     exactly one blank line.
func Rewrite(text string) string {
	text = functionalExamples.ReplaceAllString(text, "Examples:")

	lines := strings.Split(text, "\n")
	start := examplesStart(lines)
	if start < 0 {
		return text
	}

	out := append([]string(nil), lines[:start]...)
	body := removeFences(lines[start:])
	out = append(out, spaceExamples(body)...)
	return strings.Join(out, "\n")
}

// examplesStart returns the index of the first line after the examples
// title, or -1. Both "Examples:" and an underlined "Examples" are titles.
func examplesStart(lines []string) int {
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if !examplesTitle.MatchString(trimmed) {
			continue
		}
		if strings.HasSuffix(trimmed, ":") {
			return i + 1
		}
		if i+1 < len(lines) && underline.MatchString(strings.TrimSpace(lines[i+1])) {
			return i + 2
		}
	}
	return -1
}

// removeFences drops the fence lines around example blocks. A fenced block
// whose first non-blank line is not a prompt, such as a shell snippet, is
// kept verbatim, as is a fence that is never closed.
func removeFences(lines []string) []string {
	out := make([]string, 0, len(lines))
	for i := 0; i < len(lines); i++ {
		if !isFence(lines[i]) {
			out = append(out, lines[i])
			continue
		}
		end := i + 1
		for end < len(lines) && !isFence(lines[end]) {
			end++
		}
		if end == len(lines) {
			out = append(out, lines[i:]...)
			break
		}
		inner := lines[i+1 : end]
		if strings.HasPrefix(firstNonBlank(inner), prompt) {
			out = append(out, inner...)
		} else {
			out = append(out, lines[i:end+1]...)
		}
		i = end
	}
	return out
}

func isFence(line string) bool {
	return strings.HasPrefix(strings.TrimSpace(line), "```")
}

func firstNonBlank(lines []string) string {
	for _, line := range lines {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			return trimmed
		}
	}
	return ""
}

// spaceExamples fixes blank lines around the example blocks of an examples
// section. lines starts right after the title; the last line holds the
// closing quotes.
func spaceExamples(lines []string) []string {
	var out []string
	inBlock := false
	blockIndent := 0

	for i := 0; i < len(lines); i++ {
		line := lines[i]
		trimmed := strings.TrimSpace(line)
		indent := len(line) - len(strings.TrimLeft(line, " \t"))

		switch {
		case strings.HasPrefix(trimmed, prompt):
			if !inBlock {
				out = ensureBlank(out)
			}
			inBlock = true
			blockIndent = indent
			out = append(out, line)

			// Blank lines between an input and its output go away.
			j := i + 1
			for j < len(lines) && strings.TrimSpace(lines[j]) == "" {
				j++
			}
			if j > i+1 && j < len(lines) && isOutput(lines[j], blockIndent) {
				i = j - 1
			}

		case trimmed == "":
			if !inBlock {
				out = append(out, line)
				continue
			}
			inBlock = false
			for i+1 < len(lines) && strings.TrimSpace(lines[i+1]) == "" {
				i++
			}
			// The closing quotes follow the last example directly.
			if i+1 < len(lines) && closesDocstring(strings.TrimSpace(lines[i+1])) {
				continue
			}
			out = ensureBlank(out)

		case inBlock && indent >= blockIndent && !closesDocstring(trimmed):
			out = append(out, line)

		default:
			if inBlock {
				inBlock = false
				if !closesDocstring(trimmed) {
					out = ensureBlank(out)
				}
			}
			out = append(out, line)
		}
	}
	return out
}

// isOutput reports whether line reads as the output of the example above it.
func isOutput(line string, blockIndent int) bool {
	trimmed := strings.TrimSpace(line)
	indent := len(line) - len(strings.TrimLeft(line, " \t"))
	return indent >= blockIndent && !strings.HasPrefix(trimmed, prompt) && !closesDocstring(trimmed)
}

func closesDocstring(trimmed string) bool {
	return strings.HasPrefix(trimmed, `"""`) || strings.HasPrefix(trimmed, `'''`)
}

// ensureBlank makes out end with exactly one blank line.
func ensureBlank(out []string) []string {
	n := len(out)
	for n > 0 && strings.TrimSpace(out[n-1]) == "" {
		n--
	}
	return append(out[:n], "")
}
