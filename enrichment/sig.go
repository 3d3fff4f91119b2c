package enrichment

import (
	"strings"

	"github.com/vineetdaniels2108/RxNormSIGProject/enrichment/rules"
)

// SigGenerator produces ordered dosage-instruction lists by template
// selection over the instruction rule set. Output is deterministic: for
// identical inputs the list and its order are byte-identical across runs.
// Safe for concurrent use.
type SigGenerator struct {
	rs *rules.RuleSet
}

// NewSigGenerator creates a generator over the configured rule set.
func NewSigGenerator(rs *rules.RuleSet) *SigGenerator {
	return &SigGenerator{rs: rs}
}

// Generate returns the instruction list for a record. The first entry is
// always the primary instruction from the first matching base template;
// category clauses and safety notes are appended as additional variants.
// An unknown (empty) dose form yields an empty list; any known dose form
// yields at least one instruction via the fallback rule.
func (g *SigGenerator) Generate(doseForm, strength, drugName, termType string) []string {
	if strings.TrimSpace(doseForm) == "" {
		return nil
	}

	formLower := strings.ToLower(doseForm)
	nameLower := strings.ToLower(drugName)
	route := g.detectRoute(formLower, nameLower)

	sigs := g.baseTemplates(formLower, nameLower, route)

	// Strength-specific variant for oral solid forms with a dosed unit
	if strength != "" && hasDoseUnit(strength) && containsAny(formLower, []string{"tab", "cap"}) {
		sigs = append(sigs, "Take 1 tablet ("+strength+") by mouth as directed")
	}

	for _, cat := range g.rs.CategoryRules {
		if containsAny(nameLower, cat.Keywords) {
			sigs = append(sigs, cat.Clauses...)
		}
	}

	if termType == "BN" && g.rs.BrandNote != "" {
		sigs = append(sigs, g.rs.BrandNote)
	}

	return dedupeStrings(sigs)
}

// CategoryTags returns the drug-category tags matching the drug name, in
// rule order.
func (g *SigGenerator) CategoryTags(drugName string) []string {
	nameLower := strings.ToLower(drugName)

	var tags []string
	for _, cat := range g.rs.CategoryRules {
		if containsAny(nameLower, cat.Keywords) {
			tags = append(tags, cat.Tag)
		}
	}
	return tags
}

// baseTemplates returns the templates of the first matching instruction
// rule, or the generic fallback when none matches.
func (g *SigGenerator) baseTemplates(formLower, nameLower, route string) []string {
	nameWords := make(map[string]bool)
	for _, w := range strings.FieldsFunc(nameLower, func(r rune) bool {
		return !('a' <= r && r <= 'z') && !('0' <= r && r <= '9')
	}) {
		nameWords[w] = true
	}

	for _, rule := range g.rs.InstructionRules {
		if !containsAny(formLower, rule.DoseForms) {
			continue
		}
		if rule.Route != "" && rule.Route != route {
			continue
		}
		if len(rule.NamePatterns) > 0 && !anyWordMatch(nameWords, rule.NamePatterns) {
			continue
		}

		out := make([]string, len(rule.Templates))
		copy(out, rule.Templates)
		return out
	}

	out := make([]string, len(g.rs.FallbackTemplates))
	copy(out, g.rs.FallbackTemplates)
	return out
}

// detectRoute finds the route of administration from the dose form and drug
// name using the route keyword table. First matching rule wins; the oral
// default is represented by the empty string when nothing matches.
func (g *SigGenerator) detectRoute(formLower, nameLower string) string {
	text := formLower + " " + nameLower
	for _, r := range g.rs.Routes {
		if containsAny(text, r.Keywords) {
			return r.Route
		}
	}
	return ""
}

func containsAny(s string, patterns []string) bool {
	for _, p := range patterns {
		if strings.Contains(s, p) {
			return true
		}
	}
	return false
}

// anyWordMatch checks patterns as whole words so the "er" release marker
// does not match inside "fever".
func anyWordMatch(words map[string]bool, patterns []string) bool {
	for _, p := range patterns {
		if words[p] {
			return true
		}
	}
	return false
}

func hasDoseUnit(strength string) bool {
	lower := strings.ToLower(strength)
	for _, unit := range []string{"mg", "mcg", "g"} {
		if strings.Contains(lower, unit) {
			return true
		}
	}
	return false
}

// dedupeStrings removes duplicates while preserving first-seen order.
func dedupeStrings(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := in[:0]
	for _, s := range in {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}
