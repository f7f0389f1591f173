// Package format drives formatters over files: read, format, validate and
// write back, one goroutine per file.
package format

import (
	"context"

	"github.com/charmbracelet/log"

	"github.com/phobologic/pyorder/internal/config"
	"github.com/phobologic/pyorder/internal/docstring"
	"github.com/phobologic/pyorder/internal/errors"
	"github.com/phobologic/pyorder/internal/lang"
	"github.com/phobologic/pyorder/internal/order"
	"github.com/phobologic/pyorder/internal/parse"
)

// Formatter rewrites the source of one file.
type Formatter interface {
	Name() string
	// Format returns the formatted source. Returning src unchanged means
	// there was nothing to do.
	Format(ctx context.Context, path string, src []byte) ([]byte, error)
}

// OrderingFormatter puts declarations into canonical order.
type OrderingFormatter struct {
	Options order.Options
}

// Name implements Formatter.
func (f *OrderingFormatter) Name() string { return config.FormatterOrder }

// Format implements Formatter. The reordered text is re-parsed and must hold
// the same declarations as src; otherwise a RenderFailure is returned and
// src is left alone.
func (f *OrderingFormatter) Format(ctx context.Context, path string, src []byte) ([]byte, error) {
	parser := lang.Python().NewParser()

	m, err := parse.Module(ctx, parser, src)
	if err != nil {
		return nil, err
	}

	res := order.Reorder(m, f.Options)
	for _, u := range res.Unresolved {
		log.FromContext(ctx).Warn("placed last", "path", path, "code", errors.UnresolvedDependency, "reason", u)
	}
	if !res.Changed {
		return src, nil
	}

	if err := parse.Validate(ctx, parser, m, res.Text); err != nil {
		return nil, err
	}
	return res.Text, nil
}

// DocstringFormatter normalizes the examples section of docstrings.
type DocstringFormatter struct{}

// Name implements Formatter.
func (f *DocstringFormatter) Name() string { return config.FormatterDocstring }

// Format implements Formatter.
func (f *DocstringFormatter) Format(ctx context.Context, path string, src []byte) ([]byte, error) {
	parser := lang.Python().NewParser()

	out, changed, err := docstring.Format(ctx, parser, src)
	if err != nil {
		return nil, err
	}
	if !changed {
		return src, nil
	}

	tree, err := parser.ParseCtx(ctx, nil, out)
	if err != nil {
		return nil, errors.Wrap(errors.RenderFailure, err, "re-parsing docstrings")
	}
	defer tree.Close()
	if tree.RootNode().HasError() {
		return nil, errors.New(errors.RenderFailure, "formatted docstrings do not parse")
	}
	return out, nil
}

// New builds the formatters named in cfg, in order.
func New(cfg *config.Config) ([]Formatter, error) {
	opts := order.Options{
		HelperDecorators:  cfg.HelperDecorators,
		AnchorAssignments: cfg.AnchorAssignments,
		BlankLines:        cfg.BlankLines,
	}

	var out []Formatter
	for _, name := range cfg.Formatters {
		switch name {
		case config.FormatterOrder:
			out = append(out, &OrderingFormatter{Options: opts})
		case config.FormatterDocstring:
			out = append(out, &DocstringFormatter{})
		default:
			return nil, errors.New(errors.InvalidConfig, "unknown formatter %q", name)
		}
	}
	if len(out) == 0 {
		return nil, errors.New(errors.InvalidConfig, "no formatters configured")
	}
	return out, nil
}
