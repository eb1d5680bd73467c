// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rosterd Contributors

package access

import (
	"github.com/gobwas/glob"
	"github.com/samber/oops"
)

// Requirement is the access level a route demands.
type Requirement int

// Requirement levels, weakest first.
const (
	RequireNone Requirement = iota
	RequireAuthenticated
	RequireAdmin
)

// Rule binds a path pattern to a requirement. Patterns use glob syntax with
// '/' as the separator, so "/students/*" matches one path segment.
type Rule struct {
	Pattern string
	Methods []string // empty means all methods
	Require Requirement
}

type compiledRule struct {
	g       glob.Glob
	methods map[string]struct{}
	require Requirement
}

// RuleSet answers "what does this route require" for the gate middleware.
// Rules are evaluated in order; the first match wins, and an unmatched path
// requires nothing.
type RuleSet struct {
	rules []compiledRule
}

// NewRuleSet compiles the given rules.
func NewRuleSet(rules []Rule) (*RuleSet, error) {
	compiled := make([]compiledRule, 0, len(rules))
	for _, r := range rules {
		g, err := glob.Compile(r.Pattern, '/')
		if err != nil {
			return nil, oops.Code("ACCESS_RULE_INVALID").
				With("pattern", r.Pattern).
				Wrap(err)
		}
		cr := compiledRule{g: g, require: r.Require}
		if len(r.Methods) > 0 {
			cr.methods = make(map[string]struct{}, len(r.Methods))
			for _, m := range r.Methods {
				cr.methods[m] = struct{}{}
			}
		}
		compiled = append(compiled, cr)
	}
	return &RuleSet{rules: compiled}, nil
}

// Required returns the requirement for a method and path.
func (rs *RuleSet) Required(method, path string) Requirement {
	for _, r := range rs.rules {
		if !r.g.Match(path) {
			continue
		}
		if r.methods != nil {
			if _, ok := r.methods[method]; !ok {
				continue
			}
		}
		return r.require
	}
	return RequireNone
}
