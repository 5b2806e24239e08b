package policy

import "strings"

// span returns how many bytes of fullMethod r matches, or -1. Longer spans
// win between rules of the same kind.
func (r *rule) span(fullMethod string) int {
	switch r.kind {
	case kindExact:
		if fullMethod != r.pattern {
			return -1
		}
	case kindPrefix:
		if !strings.HasPrefix(fullMethod, r.pattern) {
			return -1
		}
	case kindRegex:
		loc := r.re.FindStringIndex(fullMethod)
		if loc == nil {
			return -1
		}
		return loc[1] - loc[0]
	}
	return len(r.pattern)
}
