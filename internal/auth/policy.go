package auth

import (
	"errors"
	"fmt"
	"sort"
)

// RuleSpec is the configuration form of a policy entry: role names as
// written by a developer, plus an optional token ability.
type RuleSpec struct {
	Roles   []string
	Ability string
}

// Rule is a validated policy entry.
type Rule struct {
	Roles   []Role
	Ability string
}

// Allows reports whether role is one of the rule's roles.
func (r Rule) Allows(role Role) bool {
	for _, x := range r.Roles {
		if x == role {
			return true
		}
	}
	return false
}

// Policy is the immutable mapping from endpoint identifier to the roles
// permitted to call it. It is built once at startup.
type Policy struct {
	rules map[string]Rule
}

// NewPolicy validates every entry: each endpoint needs at least one role and
// every role must canonicalize. All problems are reported together.
func NewPolicy(specs map[string]RuleSpec) (*Policy, error) {
	rules := make(map[string]Rule, len(specs))
	var errs []error
	for endpoint, spec := range specs {
		if endpoint == "" {
			errs = append(errs, errors.New("policy: empty endpoint identifier"))
			continue
		}
		if len(spec.Roles) == 0 {
			errs = append(errs, fmt.Errorf("policy %s: no roles", endpoint))
			continue
		}
		rule := Rule{Ability: spec.Ability}
		seen := map[Role]bool{}
		for _, raw := range spec.Roles {
			r, ok := CanonicalRole(raw)
			if !ok {
				errs = append(errs, fmt.Errorf("policy %s: undefined role %q", endpoint, raw))
				continue
			}
			if !seen[r] {
				seen[r] = true
				rule.Roles = append(rule.Roles, r)
			}
		}
		rules[endpoint] = rule
	}
	if len(errs) > 0 {
		sort.Slice(errs, func(i, j int) bool { return errs[i].Error() < errs[j].Error() })
		return nil, errors.Join(errs...)
	}
	return &Policy{rules: rules}, nil
}

// MustPolicy is NewPolicy that panics, for static tables.
func MustPolicy(specs map[string]RuleSpec) *Policy {
	p, err := NewPolicy(specs)
	if err != nil {
		panic(err)
	}
	return p
}

// FindRolePolicy returns the rule registered for endpoint.
func (p *Policy) FindRolePolicy(endpoint string) (Rule, bool) {
	if p == nil {
		return Rule{}, false
	}
	r, ok := p.rules[endpoint]
	return r, ok
}

// Endpoints lists the endpoints with a rule, sorted.
func (p *Policy) Endpoints() []string {
	out := make([]string, 0, len(p.rules))
	for k := range p.rules {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
