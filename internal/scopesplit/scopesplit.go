// Package scopesplit breaks a qualified identifier into its scope
// components, treating "::" as the separator except where it occurs
// inside angle-bracketed template/generic argument lists.
package scopesplit

import "strings"

// Split returns the ordered list of scope components of id. Consecutive
// delimiters (an empty component between two "::") are elided; depth
// inside "<...>" is tracked so delimiters there are never split points.
//
//	Split("ns::Outer<Foo, Bar<Baz>>::method") == ["ns", "Outer<Foo, Bar<Baz>>", "method"]
func Split(id string) []string {
	var result []string
	start := 0
	depth := 0

	for i := 0; i < len(id); i++ {
		switch id[i] {
		case '<':
			depth++
		case '>':
			depth--
		case ':':
			if depth == 0 {
				if start != i {
					result = append(result, id[start:i])
				}
				start = i + 1
			}
		}
	}
	result = append(result, id[start:])
	return result
}

// Suffixes returns every non-empty "::"-joined suffix of id's components,
// from the fully-qualified name down to the bare tail. This is how the
// identifiers index supports both qualified and tail-qualified lookup.
func Suffixes(id string) []string {
	components := Split(id)
	var out []string
	for i := range components {
		joined := strings.Join(components[i:], "::")
		if joined != "" {
			out = append(out, joined)
		}
	}
	return out
}
