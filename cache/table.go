package cache

import (
	"errors"
	"fmt"
	"slices"
	"sort"
)

// Mode selects how a [Rule] matches entries of its target resource.
type Mode int

const (
	// Exact removes the single entry whose key equals the rule's fields.
	Exact Mode = iota
	// Prefix removes every entry whose key starts with the rule's fields.
	Prefix
)

func (m Mode) String() string {
	switch m {
	case Exact:
		return "exact"
	case Prefix:
		return "prefix"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// Rule says which entries of Target become stale when its source operation
// runs. Fields name identifiers of the source request; their values build
// the key that is matched against Target's entries. A rule without fields
// clears the whole resource.
type Rule struct {
	Target string
	Mode   Mode
	Fields []string
}

// All clears every entry of target.
func All(target string) Rule {
	return Rule{Target: target}
}

// ExactOn removes the entry of target keyed by fields.
func ExactOn(target string, fields ...string) Rule {
	return Rule{Target: target, Mode: Exact, Fields: fields}
}

// PrefixOn removes every entry of target whose key starts with fields.
func PrefixOn(target string, fields ...string) Rule {
	return Rule{Target: target, Mode: Prefix, Fields: fields}
}

// Clears reports whether the rule clears the entire target.
func (r Rule) Clears() bool { return len(r.Fields) == 0 }

func (r Rule) String() string {
	if r.Clears() {
		return r.Target + "(all)"
	}
	return fmt.Sprintf("%s(%s %v)", r.Target, r.Mode, r.Fields)
}

// Table maps a write operation to the rules it fires. It is built once at
// startup and never changes afterwards.
type Table map[string][]Rule

// Resources returns every target named by the table, sorted.
func (t Table) Resources() []string {
	seen := make(map[string]struct{})
	for _, rules := range t {
		for _, r := range rules {
			seen[r.Target] = struct{}{}
		}
	}
	out := make([]string, 0, len(seen))
	for r := range seen {
		out = append(out, r)
	}
	sort.Strings(out)
	return out
}

// Validate checks every rule against the identifiers each operation
// declares, given in declared order. Every field of a rule must be declared
// by its source. Exact rules must name all of the target's fields in the
// target's order; prefix rules must name leading fields of the target in
// that order. All problems are reported together.
func (t Table) Validate(declared map[string][]string) error {
	var errs []error
	sources := make([]string, 0, len(t))
	for src := range t {
		sources = append(sources, src)
	}
	sort.Strings(sources)

	for _, src := range sources {
		srcFields, ok := declared[src]
		if !ok {
			errs = append(errs, fmt.Errorf("cache: table source %q is not a declared operation", src))
			continue
		}
		for _, r := range t[src] {
			if err := validateRule(src, srcFields, r, declared); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}

func validateRule(src string, srcFields []string, r Rule, declared map[string][]string) error {
	target, ok := declared[r.Target]
	if !ok {
		return fmt.Errorf("cache: %s: target %q is not a declared operation", src, r.Target)
	}
	for _, f := range r.Fields {
		if !slices.Contains(srcFields, f) {
			return fmt.Errorf("%w: %s: rule %s uses %q", ErrUndeclaredField, src, r, f)
		}
	}
	if r.Clears() {
		return nil
	}
	switch r.Mode {
	case Exact:
		if !slices.Equal(r.Fields, target) {
			return fmt.Errorf("cache: %s: exact rule %s must name %v", src, r, target)
		}
	case Prefix:
		if len(r.Fields) > len(target) || !slices.Equal(r.Fields, target[:len(r.Fields)]) {
			return fmt.Errorf("cache: %s: prefix rule %s is not a leading part of %v", src, r, target)
		}
	default:
		return fmt.Errorf("cache: %s: rule %s has unknown mode", src, r)
	}
	return nil
}
