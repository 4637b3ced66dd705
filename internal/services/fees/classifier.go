// Package fees decides whether a transaction is an internal bank/processor
// fee rather than an economic movement. The decision is a pure function over
// a data-driven rule table so that adding a fee rule for one source never
// touches another source's path.
package fees

import (
	"fmt"
	"os"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"charge-ledger-backend/internal/models"
)

// Rule matches when every populated field matches. An empty Sources list
// applies to all sources; nil amount bounds mean unbounded. Amounts are
// compared on absolute value, since fee rules predate sign normalization.
type Rule struct {
	Sources       []models.SourceTag
	ActivityCodes []int
	TextCodes     []int
	AmountMin     *decimal.Decimal
	AmountMax     *decimal.Decimal
}

// ruleYAML is the on-disk shape. Amount bounds are strings to keep decimal
// precision out of YAML float parsing.
type ruleYAML struct {
	Sources       []string `yaml:"sources"`
	ActivityCodes []int    `yaml:"activity_codes"`
	TextCodes     []int    `yaml:"text_codes"`
	AmountMin     *string  `yaml:"amount_min"`
	AmountMax     *string  `yaml:"amount_max"`
}

type Classifier struct {
	rules []Rule
}

// defaultRules carries the rule set accumulated from the source feeds.
var defaultRules = []Rule{
	// Account commission rows: activity 452 with the commission text codes.
	{ActivityCodes: []int{452}, TextCodes: []int{105, 547}},
	// Small service fees: activity 1279 up to 30 units.
	{ActivityCodes: []int{1279}, AmountMin: dec("0"), AmountMax: dec("30")},
	// Standing bank charges on the Discount feed.
	{Sources: []models.SourceTag{models.SourceDiscountChecking}, ActivityCodes: []int{473}},
}

func dec(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

// NewClassifier returns a classifier over the built-in rule table.
func NewClassifier() *Classifier {
	return &Classifier{rules: defaultRules}
}

// LoadClassifier replaces the rule table with one parsed from a YAML file.
func LoadClassifier(path string) (*Classifier, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fee rules: %w", err)
	}
	var doc struct {
		Rules []ruleYAML `yaml:"rules"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse fee rules: %w", err)
	}

	rules := make([]Rule, 0, len(doc.Rules))
	for i, raw := range doc.Rules {
		rule := Rule{
			ActivityCodes: raw.ActivityCodes,
			TextCodes:     raw.TextCodes,
		}
		for _, s := range raw.Sources {
			rule.Sources = append(rule.Sources, models.SourceTag(s))
		}
		if raw.AmountMin != nil {
			d, err := decimal.NewFromString(*raw.AmountMin)
			if err != nil {
				return nil, fmt.Errorf("rule %d: bad amount_min %q: %w", i, *raw.AmountMin, err)
			}
			rule.AmountMin = &d
		}
		if raw.AmountMax != nil {
			d, err := decimal.NewFromString(*raw.AmountMax)
			if err != nil {
				return nil, fmt.Errorf("rule %d: bad amount_max %q: %w", i, *raw.AmountMax, err)
			}
			rule.AmountMax = &d
		}
		rules = append(rules, rule)
	}
	return &Classifier{rules: rules}, nil
}

// IsFee reports whether the record is a fee. Pure and deterministic.
func (c *Classifier) IsFee(source models.SourceTag, activityCode, textCode int, amount decimal.Decimal) bool {
	for _, r := range c.rules {
		if r.matches(source, activityCode, textCode, amount) {
			return true
		}
	}
	return false
}

func (r Rule) matches(source models.SourceTag, activityCode, textCode int, amount decimal.Decimal) bool {
	if len(r.Sources) > 0 && !containsTag(r.Sources, source) {
		return false
	}
	if len(r.ActivityCodes) > 0 && !containsInt(r.ActivityCodes, activityCode) {
		return false
	}
	if len(r.TextCodes) > 0 && !containsInt(r.TextCodes, textCode) {
		return false
	}
	abs := amount.Abs()
	if r.AmountMin != nil && abs.LessThan(*r.AmountMin) {
		return false
	}
	if r.AmountMax != nil && abs.GreaterThan(*r.AmountMax) {
		return false
	}
	return true
}

func containsTag(in []models.SourceTag, v models.SourceTag) bool {
	for _, x := range in {
		if x == v {
			return true
		}
	}
	return false
}

func containsInt(in []int, v int) bool {
	for _, x := range in {
		if x == v {
			return true
		}
	}
	return false
}
