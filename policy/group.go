// Package policy assigns gRPC methods to named groups and attaches a Policy
// to each group: a rate limit and a deadline.
package policy

import (
	"regexp"
	"time"
)

// RateLimitRule allows Rate requests per Window, with bursts of up to Rate.
type RateLimitRule struct {
	Rate   int
	Window time.Duration
}

// PerSecond is the steady refill rate of the rule.
func (r RateLimitRule) PerSecond() float64 {
	if r.Window <= 0 {
		return float64(r.Rate)
	}
	return float64(r.Rate) / r.Window.Seconds()
}

// Policy applies to every method of a group.
type Policy struct {
	// RateLimit replaces the global limiter for the group. Nil keeps the
	// global one.
	RateLimit *RateLimitRule
	// Timeout bounds the handler when the caller set no earlier deadline.
	Timeout time.Duration
}

type matchKind int

const (
	kindExact matchKind = iota
	kindPrefix
	kindRegex
)

type rule struct {
	kind    matchKind
	pattern string
	re      *regexp.Regexp
}

// GroupBuilder collects the rules and the policy of one group.
type GroupBuilder struct {
	name   string
	rules  []rule
	policy Policy
}

// Group starts a new group called name.
func Group(name string) *GroupBuilder {
	return &GroupBuilder{name: name}
}

// Name returns the group name.
func (g *GroupBuilder) Name() string { return g.name }

// Exact matches full method names equal to any of patterns.
func (g *GroupBuilder) Exact(patterns ...string) *GroupBuilder {
	for _, p := range patterns {
		g.rules = append(g.rules, rule{kind: kindExact, pattern: p})
	}
	return g
}

// Prefix matches full method names starting with pattern.
func (g *GroupBuilder) Prefix(pattern string) *GroupBuilder {
	g.rules = append(g.rules, rule{kind: kindPrefix, pattern: pattern})
	return g
}

// Regex matches full method names containing a match of pattern. It panics
// if pattern does not compile.
func (g *GroupBuilder) Regex(pattern string) *GroupBuilder {
	g.rules = append(g.rules, rule{kind: kindRegex, pattern: pattern, re: regexp.MustCompile(pattern)})
	return g
}

// Policy sets the group's policy.
func (g *GroupBuilder) Policy(p Policy) *GroupBuilder {
	g.policy = p
	return g
}
