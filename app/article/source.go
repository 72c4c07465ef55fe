package article

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// SourceMeta is the display category and visual weight derived from a source
// label. Recomputed on demand, never persisted.
type SourceMeta struct {
	Label        string `json:"label" yaml:"label"`
	VisualWeight string `json:"visual_weight" yaml:"visual_weight"`
}

type sourceRule struct {
	Pattern string `yaml:"pattern"`
	Label   string `yaml:"label"`
	Weight  string `yaml:"visual_weight"`
}

const defaultVisualWeight = "slate"

// defaultSourceRules is the built-in ordered lookup table for the financial
// sources the dashboard styles. First match wins.
var defaultSourceRules = []sourceRule{
	{Pattern: "reuters", Label: "Reuters", Weight: "orange"},
	{Pattern: "bloomberg", Label: "Bloomberg", Weight: "indigo"},
	{Pattern: "yahoo", Label: "Yahoo Finance", Weight: "violet"},
	{Pattern: "marketwatch", Label: "MarketWatch", Weight: "green"},
	{Pattern: "cnbc", Label: "CNBC", Weight: "sky"},
	{Pattern: "ft.com", Label: "Financial Times", Weight: "rose"},
	{Pattern: "financial times", Label: "Financial Times", Weight: "rose"},
	{Pattern: "wsj", Label: "Wall Street Journal", Weight: "stone"},
	{Pattern: "economictimes", Label: "Economic Times", Weight: "amber"},
	{Pattern: "moneycontrol", Label: "Moneycontrol", Weight: "teal"},
}

// Classifier maps a source label to its display metadata via a fixed ordered
// substring table. Pure and total: unknown sources get the default meta.
type Classifier struct {
	rules []sourceRule
}

func NewClassifier() *Classifier {
	return &Classifier{rules: defaultSourceRules}
}

// NewClassifierFromFile builds a classifier from a YAML rules file,
// replacing the built-in table. The file holds an ordered list of
// {pattern, label, visual_weight} entries.
func NewClassifierFromFile(path string) (*Classifier, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read source rules: %w", err)
	}

	var rules []sourceRule
	if err := yaml.Unmarshal(data, &rules); err != nil {
		return nil, fmt.Errorf("failed to parse source rules: %w", err)
	}
	if len(rules) == 0 {
		return nil, fmt.Errorf("source rules file %s contains no rules", path)
	}

	return &Classifier{rules: rules}, nil
}

// Classify returns the first rule whose pattern is a case-insensitive
// substring of the source label, else the external default.
func (c *Classifier) Classify(sourceLabel string) SourceMeta {
	lower := strings.ToLower(sourceLabel)
	for _, rule := range c.rules {
		if strings.Contains(lower, strings.ToLower(rule.Pattern)) {
			weight := rule.Weight
			if weight == "" {
				weight = defaultVisualWeight
			}
			return SourceMeta{Label: rule.Label, VisualWeight: weight}
		}
	}
	return SourceMeta{Label: "External", VisualWeight: defaultVisualWeight}
}

// RuleCount is used by the health endpoint.
func (c *Classifier) RuleCount() int {
	return len(c.rules)
}
