// Package rules holds the rule tables driving the enrichment engine: company
// aliases, corporate suffixes, NDC layout rules, dose-form and strength
// canonicalization tables, and the ordered instruction rule set. The tables
// are plain data loaded once at startup and shared read-only by all workers;
// adding a manufacturer alias or an instruction template is a data change,
// not a code change.
package rules

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// AliasEntry maps one raw company-name variant to its canonical name.
// Variants are normalized before matching, so they need not enumerate
// every casing or suffix permutation.
type AliasEntry struct {
	Variant   string `yaml:"variant"`
	Canonical string `yaml:"canonical"`
}

// CodeFormatRule describes one legacy FDA 10-digit NDC layout and which
// segment gets the zero-padding to reach the 11-digit 5-4-2 form.
type CodeFormatRule struct {
	Name       string `yaml:"name"`
	Segments   []int  `yaml:"segments"`
	PadSegment int    `yaml:"pad_segment"`
}

// RouteRule maps detection keywords to a route of administration.
type RouteRule struct {
	Route    string   `yaml:"route"`
	Keywords []string `yaml:"keywords"`
}

// InstructionRule selects instruction templates for a dose form. Rules are
// evaluated in declaration order; the first match wins.
type InstructionRule struct {
	Name         string   `yaml:"name"`
	DoseForms    []string `yaml:"dose_forms"`
	Route        string   `yaml:"route,omitempty"`
	NamePatterns []string `yaml:"name_patterns,omitempty"`
	Templates    []string `yaml:"templates"`
}

// CategoryRule appends supplemental instruction variants when any of its
// keywords appears in the drug name.
type CategoryRule struct {
	Tag      string   `yaml:"tag"`
	Keywords []string `yaml:"keywords"`
	Clauses  []string `yaml:"clauses"`
}

// RuleSet bundles all enrichment tables.
type RuleSet struct {
	CompanyAliases    []AliasEntry        `yaml:"company_aliases"`
	CorporateSuffixes []string            `yaml:"corporate_suffixes"`
	CodeFormats       []CodeFormatRule    `yaml:"code_formats"`
	DoseForms         map[string]string   `yaml:"dose_forms"`
	StrengthUnits     map[string]string   `yaml:"strength_units"`
	UppercaseWords    []string            `yaml:"uppercase_words"`
	DoseFormKeywords  map[string][]string `yaml:"dose_form_keywords"`
	Routes            []RouteRule         `yaml:"routes"`
	InstructionRules  []InstructionRule   `yaml:"instruction_rules"`
	FallbackTemplates []string            `yaml:"fallback_templates"`
	CategoryRules     []CategoryRule      `yaml:"category_rules"`
	BrandNote         string              `yaml:"brand_note"`
}

// Default returns the embedded rule tables.
func Default() (*RuleSet, error) {
	return parse(defaultsYAML)
}

// LoadFile reads a rule set from path. An empty path falls back to the
// embedded defaults.
func LoadFile(path string) (*RuleSet, error) {
	if path == "" {
		return Default()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read rules file %s: %w", path, err)
	}

	return parse(data)
}

func parse(data []byte) (*RuleSet, error) {
	rs := &RuleSet{}
	if err := yaml.Unmarshal(data, rs); err != nil {
		return nil, fmt.Errorf("failed to parse rules: %w", err)
	}

	if err := rs.validate(); err != nil {
		return nil, fmt.Errorf("rules validation failed: %w", err)
	}

	return rs, nil
}

// validate checks the structural invariants the engine depends on.
func (rs *RuleSet) validate() error {
	if len(rs.CompanyAliases) == 0 {
		return fmt.Errorf("no company aliases defined")
	}
	for _, a := range rs.CompanyAliases {
		if a.Variant == "" || a.Canonical == "" {
			return fmt.Errorf("company alias with empty variant or canonical name")
		}
	}

	if len(rs.CodeFormats) == 0 {
		return fmt.Errorf("no code formats defined")
	}
	for _, f := range rs.CodeFormats {
		if len(f.Segments) != 3 {
			return fmt.Errorf("code format %s: expected 3 segments, got %d", f.Name, len(f.Segments))
		}
		if f.PadSegment < 0 || f.PadSegment > 2 {
			return fmt.Errorf("code format %s: pad segment %d out of range", f.Name, f.PadSegment)
		}
		// Padding the short segment must yield exactly 5-4-2
		want := [3]int{5, 4, 2}
		total := 0
		for i, seg := range f.Segments {
			expected := want[i]
			if i == f.PadSegment {
				expected--
			}
			if seg != expected {
				return fmt.Errorf("code format %s: segment %d has length %d, cannot pad to 5-4-2", f.Name, i, seg)
			}
			total += seg
		}
		if total != 10 {
			return fmt.Errorf("code format %s: segments sum to %d, expected 10", f.Name, total)
		}
	}

	for _, r := range rs.InstructionRules {
		if len(r.DoseForms) == 0 {
			return fmt.Errorf("instruction rule %s has no dose form patterns", r.Name)
		}
		if len(r.Templates) == 0 {
			return fmt.Errorf("instruction rule %s has no templates", r.Name)
		}
	}

	if len(rs.FallbackTemplates) == 0 {
		return fmt.Errorf("no fallback instruction templates defined")
	}

	return nil
}

// FormatByName returns the code format rule with the given name.
func (rs *RuleSet) FormatByName(name string) (CodeFormatRule, bool) {
	for _, f := range rs.CodeFormats {
		if f.Name == name {
			return f, true
		}
	}
	return CodeFormatRule{}, false
}
