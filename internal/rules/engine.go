// Package rules provides a YAML-based rules engine that suggests a ledger
// category for an imported transaction description.
package rules

import (
	_ "embed"
	"fmt"
	"os"
	"sort"
	"strings"

	"golang.org/x/text/unicode/norm"
	"gopkg.in/yaml.v3"

	"github.com/rumor-ml/commons.systems/kakeibo/internal/domain"
)

//go:embed rules.yaml
var embeddedRules []byte

// MatchType defines how patterns are matched against transaction descriptions
type MatchType string

const (
	// MatchTypeExact requires the pattern to match the entire description exactly
	MatchTypeExact MatchType = "exact"
	// MatchTypeContains requires the pattern to be a substring of the description
	MatchTypeContains MatchType = "contains"
)

// AppliesTo restricts a rule to one transaction direction
type AppliesTo string

const (
	AppliesToAny     AppliesTo = "any"
	AppliesToIncome  AppliesTo = "income"
	AppliesToExpense AppliesTo = "expense"
)

// Rule represents a single categorization rule.
//
// Rules should be created via NewEngine / LoadEmbedded / LoadFromFile or the
// NewRule constructor, which all check:
//   - Priority in range [0, 999]
//   - Pattern must not be empty after trimming
//   - MatchType must be "exact" or "contains"
//   - AppliesTo must be "income", "expense", "any" or empty (any)
//   - Category must be a default category whose type agrees with AppliesTo
type Rule struct {
	Name      string    `yaml:"name"`
	Pattern   string    `yaml:"pattern"`
	MatchType MatchType `yaml:"match_type"`
	Priority  int       `yaml:"priority"`
	Category  string    `yaml:"category"`
	AppliesTo AppliesTo `yaml:"applies_to"`

	normalized string
}

// NewRule creates a validated rule
func NewRule(name, pattern string, matchType MatchType, priority int, category string, appliesTo AppliesTo) (*Rule, error) {
	r := Rule{
		Name:      name,
		Pattern:   pattern,
		MatchType: matchType,
		Priority:  priority,
		Category:  category,
		AppliesTo: appliesTo,
	}
	if err := r.validate(domain.DefaultCategoryTree()); err != nil {
		return nil, err
	}
	r.normalized = normalize(r.Pattern)
	return &r, nil
}

func (r *Rule) validate(tree *domain.CategoryTree) error {
	if r.AppliesTo == "" {
		r.AppliesTo = AppliesToAny
	}

	cat, ok := tree.Get(r.Category)
	if !ok {
		return fmt.Errorf("invalid category %q", r.Category)
	}
	if r.Priority < 0 || r.Priority > 999 {
		return fmt.Errorf("priority must be in [0,999], got %d", r.Priority)
	}
	if r.MatchType != MatchTypeExact && r.MatchType != MatchTypeContains {
		return fmt.Errorf("invalid match_type %q (must be 'exact' or 'contains')", r.MatchType)
	}
	if strings.TrimSpace(r.Pattern) == "" {
		return fmt.Errorf("pattern cannot be empty")
	}

	switch r.AppliesTo {
	case AppliesToAny:
	case AppliesToIncome, AppliesToExpense:
		if string(cat.Type) != string(r.AppliesTo) {
			return fmt.Errorf("category %q is a %s category but rule applies to %s", r.Category, cat.Type, r.AppliesTo)
		}
	default:
		return fmt.Errorf("invalid applies_to %q (must be 'income', 'expense' or 'any')", r.AppliesTo)
	}
	return nil
}

func (r *Rule) appliesTo(t domain.TransactionType) bool {
	return r.AppliesTo == AppliesToAny || string(r.AppliesTo) == string(t)
}

// RuleSet represents the top-level YAML structure
type RuleSet struct {
	Rules []Rule `yaml:"rules"`
}

// Engine performs rule matching on transaction descriptions
type Engine struct {
	rules []Rule // Sorted by priority (highest first)
}

// MatchResult contains the result of applying a rule
type MatchResult struct {
	CategoryID string
	RuleName   string // For debugging
}

// NewEngine creates a rules engine from YAML data
func NewEngine(rulesData []byte) (*Engine, error) {
	var ruleSet RuleSet
	if err := yaml.Unmarshal(rulesData, &ruleSet); err != nil {
		return nil, fmt.Errorf("failed to parse YAML rules (check syntax, indentation, and field names): %w", err)
	}

	tree := domain.DefaultCategoryTree()
	for i := range ruleSet.Rules {
		rule := &ruleSet.Rules[i]
		if err := rule.validate(tree); err != nil {
			return nil, fmt.Errorf("rule %d (%s): %w", i, rule.Name, err)
		}
		rule.normalized = normalize(rule.Pattern)
	}

	// SliceStable keeps YAML order for equal priorities so matching is deterministic
	sorted := make([]Rule, len(ruleSet.Rules))
	copy(sorted, ruleSet.Rules)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Priority > sorted[j].Priority
	})

	return &Engine{rules: sorted}, nil
}

// LoadEmbedded loads the embedded rules.yaml file
func LoadEmbedded() (*Engine, error) {
	engine, err := NewEngine(embeddedRules)
	if err != nil {
		return nil, fmt.Errorf("failed to load embedded rules (possible binary corruption): %w", err)
	}
	return engine, nil
}

// LoadFromFile loads rules from a filesystem path
func LoadFromFile(path string) (*Engine, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read rules file: %w", err)
	}
	engine, err := NewEngine(data)
	if err != nil {
		return nil, fmt.Errorf("failed to load rules from %q: %w", path, err)
	}
	return engine, nil
}

// Match returns the first rule, in priority order, whose pattern matches the
// description and which applies to txnType. Full-width and half-width forms
// compare equal. Returns (nil, false) if no rule matches.
func (e *Engine) Match(description string, txnType domain.TransactionType) (*MatchResult, bool) {
	desc := normalize(description)
	if desc == "" {
		return nil, false
	}

	for i := range e.rules {
		rule := &e.rules[i]
		if !rule.appliesTo(txnType) {
			continue
		}

		matched := false
		switch rule.MatchType {
		case MatchTypeExact:
			matched = desc == rule.normalized
		case MatchTypeContains:
			matched = strings.Contains(desc, rule.normalized)
		}

		if matched {
			return &MatchResult{CategoryID: rule.Category, RuleName: rule.Name}, true
		}
	}

	return nil, false
}

// GetRules returns a copy of the rules in priority order
func (e *Engine) GetRules() []Rule {
	result := make([]Rule, len(e.rules))
	copy(result, e.rules)
	return result
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(norm.NFKC.String(s)))
}
