package discover

import (
	"fmt"
	"path/filepath"
	"regexp"

	ignore "github.com/sabhiram/go-gitignore"
)

// Filter decides which files are formatted. A path passes when it is a
// Python file, matches at least one include expression (or none are set)
// and matches no exclude pattern.
type Filter struct {
	include []*regexp.Regexp
	exclude *ignore.GitIgnore
}

// NewFilter compiles include regular expressions and exclude patterns in
// .gitignore syntax.
func NewFilter(include, exclude []string) (*Filter, error) {
	f := &Filter{}
	for _, expr := range include {
		re, err := regexp.Compile(expr)
		if err != nil {
			return nil, fmt.Errorf("include %q: %w", expr, err)
		}
		f.include = append(f.include, re)
	}
	if len(exclude) > 0 {
		f.exclude = ignore.CompileIgnoreLines(exclude...)
	}
	return f, nil
}

// Match reports whether path should be formatted.
func (f *Filter) Match(path string) bool {
	if !IsPython(path) {
		return false
	}
	slash := filepath.ToSlash(filepath.Clean(path))
	if f.exclude != nil && f.exclude.MatchesPath(slash) {
		return false
	}
	if len(f.include) == 0 {
		return true
	}
	for _, re := range f.include {
		if re.MatchString(slash) {
			return true
		}
	}
	return false
}
