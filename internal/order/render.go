package order

import (
	"strings"

	"github.com/phobologic/pyorder/internal/model"
)

// render joins items into the text of one scope. Consecutive imports and
// assignments of the same category are packed together; everything else is
// separated by as many blank lines as blank asks for. A header gets at least
// one blank line above it and sits directly on top of its item.
func render(items []item, indent string, blank int) string {
	var b strings.Builder
	for i := range items {
		it := &items[i]
		if i > 0 {
			gap := blank
			if it.header == nil && packs(&items[i-1], it) {
				gap = 0
			}
			if it.header != nil {
				gap = max(gap, 1)
			}
			b.WriteString("\n")
			b.WriteString(strings.Repeat("\n", gap))
		}
		if it.header != nil {
			for _, line := range it.header.Lines(indent) {
				b.WriteString(line)
				b.WriteString("\n")
			}
		}
		b.WriteString(it.text)
	}
	return b.String()
}

func packs(prev, curr *item) bool {
	return packable(prev.decl.Kind) && packable(curr.decl.Kind) && prev.cat == curr.cat
}

func packable(k model.Kind) bool {
	return k == model.Import || k == model.Assign
}
