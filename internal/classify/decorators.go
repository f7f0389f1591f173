package classify

import "strings"

// propertyDecorators are decorators that turn a method into a property.
var propertyDecorators = map[string]struct{}{
	"property":                  {},
	"cached_property":           {},
	"functools.cached_property": {},
	"abstractproperty":          {},
	"abc.abstractproperty":      {},
}

// Accessor kinds, in the order a property's methods must be defined.
const (
	AccessorNone = iota
	AccessorProperty
	AccessorGetter
	AccessorSetter
	AccessorDeleter
)

var accessorSuffixes = map[string]int{
	"getter":  AccessorGetter,
	"setter":  AccessorSetter,
	"deleter": AccessorDeleter,
}

// Accessor returns the accessor kind the decorators give a method, or
// AccessorNone. Recognized shapes are a bare or dotted property decorator
// ("property", "functools.cached_property") and "<name>.getter",
// "<name>.setter" or "<name>.deleter".
func Accessor(decorators []string) int {
	for _, dec := range decorators {
		if _, ok := propertyDecorators[dec]; ok {
			return AccessorProperty
		}
		dot := strings.LastIndexByte(dec, '.')
		if dot <= 0 {
			continue
		}
		if kind, ok := accessorSuffixes[dec[dot+1:]]; ok {
			return kind
		}
	}
	return AccessorNone
}

// IsPropertyAccessor reports whether decorators make a method a property accessor.
func IsPropertyAccessor(decorators []string) bool {
	return Accessor(decorators) != AccessorNone
}

// HasMarker reports whether any decorator names one of markers, either
// directly ("composite") or as the last segment of a dotted path
// ("ivy.composite").
func HasMarker(decorators, markers []string) bool {
	for _, dec := range decorators {
		for _, m := range markers {
			if dec == m || strings.HasSuffix(dec, "."+m) {
				return true
			}
		}
	}
	return false
}
