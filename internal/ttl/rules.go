// internal/ttl/rules.go
package ttl

import (
	"errors"
	"fmt"
)

var (
	// ErrRuleNoTarget indicates a rule is missing its "to" code
	ErrRuleNoTarget = errors.New("rule has no target code")
	// ErrRuleNoCondition indicates a rule would match every code
	ErrRuleNoCondition = errors.New("rule has no condition")
)

// Rule is one threshold bucket. All set conditions must hold for the rule
// to match. Bounds are exclusive.
type Rule struct {
	Eq *int  `toml:"eq"`
	In []int `toml:"in"`
	Gt *int  `toml:"gt"`
	Lt *int  `toml:"lt"`
	To *int  `toml:"to"`
}

// Matches reports whether code satisfies every condition of r.
func (r Rule) Matches(code int) bool {
	if r.Eq != nil && code != *r.Eq {
		return false
	}
	if r.Gt != nil && code <= *r.Gt {
		return false
	}
	if r.Lt != nil && code >= *r.Lt {
		return false
	}
	if len(r.In) > 0 {
		found := false
		for _, v := range r.In {
			if v == code {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// Validate checks that r has a target and at least one condition.
func (r Rule) Validate() error {
	if r.To == nil {
		return ErrRuleNoTarget
	}
	if r.Eq == nil && r.Gt == nil && r.Lt == nil && len(r.In) == 0 {
		return ErrRuleNoCondition
	}
	return nil
}

// RuleSet is an ordered list of buckets; the first matching rule wins.
// Codes matching no rule map to Default, or pass through when it is nil.
type RuleSet struct {
	Rules   []Rule `toml:"rule"`
	Default *int   `toml:"default"`
}

// Validate checks every rule.
func (rs RuleSet) Validate() error {
	var errs []error
	for i, r := range rs.Rules {
		if err := r.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("rule %d: %w", i+1, err))
		}
	}
	return errors.Join(errs...)
}

// Normalizer returns rs as a Normalizer. rs is copied.
func (rs RuleSet) Normalizer() Normalizer {
	rules := append([]Rule(nil), rs.Rules...)
	def := rs.Default
	return func(code int) int {
		for _, r := range rules {
			if r.Matches(code) {
				return *r.To
			}
		}
		if def != nil {
			return *def
		}
		return code
	}
}
