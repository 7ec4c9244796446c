package notion

import "strings"

// NormalizeID strips separators from a Notion identifier and lowercases it.
// Notion IDs appear both with and without dashes depending on where they were
// copied from; every table keyed on a Notion ID stores this normalized form,
// so this is the only place the rule lives.
func NormalizeID(id string) string {
	var b strings.Builder
	b.Grow(len(id))
	for _, r := range id {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r >= 'a' && r <= 'z':
			b.WriteRune(r)
		case r >= 'A' && r <= 'Z':
			b.WriteRune(r + ('a' - 'A'))
		}
	}
	return b.String()
}

// ValidID reports whether a caller-supplied identifier is plausible input:
// non-empty, bounded, and limited to hex digits plus separators. Rejecting
// everything else up front keeps garbage out of lookup keys.
func ValidID(id string) bool {
	if id == "" || len(id) > 64 {
		return false
	}
	for _, r := range id {
		switch {
		case r >= '0' && r <= '9':
		case r >= 'a' && r <= 'f':
		case r >= 'A' && r <= 'F':
		case r == '-' || r == '_':
		default:
			return false
		}
	}
	return NormalizeID(id) != ""
}
