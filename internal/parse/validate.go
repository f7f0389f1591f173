package parse

import (
	"context"
	"slices"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/phobologic/pyorder/internal/errors"
	"github.com/phobologic/pyorder/internal/model"
)

// Validate re-parses rendered and checks that it holds the same declarations
// as original, in any order. It returns a RenderFailure otherwise.
func Validate(ctx context.Context, parser *sitter.Parser, original *model.Module, rendered []byte) error {
	again, err := Module(ctx, parser, rendered)
	if err != nil {
		return errors.Wrap(errors.RenderFailure, err, "formatted output does not parse")
	}

	want := Signature(original.Body)
	got := Signature(again.Body)
	if !slices.Equal(want, got) {
		return errors.New(errors.RenderFailure, "formatted output changed the declaration set (%d declarations before, %d after)", len(want), len(got))
	}
	return nil
}

// Signature returns a sorted, order-independent summary of the declarations
// in s and, recursively, in class bodies.
func Signature(s *model.Scope) []string {
	var sig []string
	collectSignature(s, "", &sig)
	slices.Sort(sig)
	return sig
}

func collectSignature(s *model.Scope, prefix string, sig *[]string) {
	if s == nil {
		return
	}
	for i := range s.Declarations {
		d := &s.Declarations[i]
		key := prefix + d.Kind.String()
		switch d.Kind {
		case model.Assign:
			if len(d.Targets) > 0 {
				key += ":" + strings.Join(d.Targets, ",")
			} else {
				key += ":" + d.Name
			}
		case model.Function, model.Class, model.Import:
			key += ":" + d.Name
		}
		*sig = append(*sig, key)
		if d.Kind == model.Class {
			collectSignature(d.Body, key+"/", sig)
		}
	}
}
