package admission

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"daybook-hq/daybook/pkg/limits/ratelimit"
)

// Rule binds a path prefix to a quota. A rule with an empty PathPrefix
// matches every path and acts as the catch-all.
type Rule struct {
	// Name identifies the policy group. It becomes part of the rate-limit
	// key, so callers hitting different rules never share a bucket.
	Name string

	// PathPrefix selects requests by URL path prefix. Empty matches all.
	PathPrefix string

	// Max is the event quota within Window.
	Max int

	// Window is the trailing window length.
	Window time.Duration
}

// Decision is the gate's verdict for one request.
type Decision struct {
	// Allowed reports whether the protected operation may execute.
	Allowed bool

	// Rule is the name of the policy group that matched.
	Rule string

	// Limit and Remaining describe the matched quota for observability
	// headers, on both allowed and rejected outcomes.
	Limit     int
	Remaining int

	// RetryAfter is set on rejection: how long a well-behaved caller should
	// back off.
	RetryAfter time.Duration
}

// Gate resolves requests to rules and consults the counter.
//
// Rules can be swapped at runtime (config hot reload) without disturbing the
// counter state; buckets are keyed by rule name, so an unchanged rule keeps
// its history.
type Gate struct {
	mu      sync.RWMutex
	rules   []Rule
	counter ratelimit.Hitter
}

// NewGate creates a gate over the given counter.
//
// The rule list must be non-empty and end with a catch-all (empty
// PathPrefix); ValidateRules reports violations.
func NewGate(counter ratelimit.Hitter, rules []Rule) (*Gate, error) {
	if err := ValidateRules(rules); err != nil {
		return nil, err
	}
	return &Gate{rules: rules, counter: counter}, nil
}

// ValidateRules checks rule-list structure: at least one rule, positive
// quotas and windows, no duplicate names, and exactly one catch-all in the
// final position. A catch-all anywhere earlier would shadow every rule after
// it and silently hand expensive routes the default quota.
func ValidateRules(rules []Rule) error {
	if len(rules) == 0 {
		return fmt.Errorf("admission: at least one rule is required")
	}

	seen := make(map[string]bool, len(rules))
	for i, r := range rules {
		if r.Name == "" {
			return fmt.Errorf("admission: rule %d has no name", i)
		}
		if seen[r.Name] {
			return fmt.Errorf("admission: duplicate rule name %q", r.Name)
		}
		seen[r.Name] = true

		if r.Max < 1 {
			return fmt.Errorf("admission: rule %q: max must be >= 1, got %d", r.Name, r.Max)
		}
		if r.Window <= 0 {
			return fmt.Errorf("admission: rule %q: window must be positive, got %v", r.Name, r.Window)
		}
		if r.PathPrefix == "" && i != len(rules)-1 {
			return fmt.Errorf("admission: catch-all rule %q must be last", r.Name)
		}
	}

	if last := rules[len(rules)-1]; last.PathPrefix != "" {
		return fmt.Errorf("admission: final rule %q must be the catch-all (empty path prefix)", last.Name)
	}
	return nil
}

// SetRules replaces the rule list at runtime. Invalid rule lists are
// rejected and the previous rules stay in force.
func (g *Gate) SetRules(rules []Rule) error {
	if err := ValidateRules(rules); err != nil {
		return err
	}
	g.mu.Lock()
	g.rules = rules
	g.mu.Unlock()
	return nil
}

// MaxWindow returns the longest window across the current rules. The counter
// sweeper needs it to know what is safe to evict.
func (g *Gate) MaxWindow() time.Duration {
	g.mu.RLock()
	defer g.mu.RUnlock()

	var max time.Duration
	for _, r := range g.rules {
		if r.Window > max {
			max = r.Window
		}
	}
	return max
}

// Admit resolves path to a rule, records a hit for identity under that rule,
// and returns the decision. Identity comes from the transport layer (client
// address), never from the request body.
func (g *Gate) Admit(identity, path string) Decision {
	rule := g.resolve(path)
	key := identity + "::" + rule.Name

	res := g.counter.Hit(key, rule.Window, rule.Max)
	return Decision{
		Allowed:    res.Allowed,
		Rule:       rule.Name,
		Limit:      res.Limit,
		Remaining:  res.Remaining,
		RetryAfter: res.RetryAfter,
	}
}

// resolve returns the first rule whose prefix matches path. Validation
// guarantees the final catch-all matches when nothing else does.
func (g *Gate) resolve(path string) Rule {
	g.mu.RLock()
	defer g.mu.RUnlock()

	for _, r := range g.rules {
		if r.PathPrefix == "" || strings.HasPrefix(path, r.PathPrefix) {
			return r
		}
	}
	// Unreachable with validated rules.
	return g.rules[len(g.rules)-1]
}
