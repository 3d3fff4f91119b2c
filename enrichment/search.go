package enrichment

import (
	"strings"

	"github.com/vineetdaniels2108/RxNormSIGProject/enrichment/entities"
	"github.com/vineetdaniels2108/RxNormSIGProject/enrichment/rules"
)

// SearchTextBuilder derives the keyword set and concatenated search text
// from a record's canonicalized fields. Substring containment over the
// search text is the only search semantic at this layer; ranking and
// fuzziness belong to consumers. Safe for concurrent use.
type SearchTextBuilder struct {
	doseFormKeywords map[string][]string
}

// NewSearchTextBuilder creates a builder over the configured abbreviation
// table.
func NewSearchTextBuilder(rs *rules.RuleSet) *SearchTextBuilder {
	return &SearchTextBuilder{doseFormKeywords: rs.DoseFormKeywords}
}

// Keywords returns the deduplicated, lower-cased token set for a record in
// first-seen order, keeping serialization deterministic.
func (b *SearchTextBuilder) Keywords(rec *entities.EnrichedRecord) []string {
	var keywords []string
	seen := make(map[string]bool)

	add := func(word string) {
		word = strings.ToLower(word)
		if word == "" || seen[word] {
			return
		}
		seen[word] = true
		keywords = append(keywords, word)
	}

	// Drug name tokens, brackets removed, short tokens skipped
	for _, word := range tokenize(rec.DrugNameClean) {
		if len(word) > 2 {
			add(word)
		}
	}

	if rec.DoseFormClean != "" {
		formLower := strings.ToLower(rec.DoseFormClean)
		add(formLower)
		for _, abbrev := range b.doseFormKeywords[formLower] {
			add(abbrev)
		}
	}

	for _, word := range tokenize(rec.StrengthClean) {
		add(word)
	}

	for _, word := range tokenize(rec.Company) {
		add(word)
	}

	if rec.TermType != "" {
		add(rec.TermType)
	}

	return keywords
}

// SearchText returns the lower-cased space-joined blob used for substring
// search: cleaned fields, term type, the keyword set, and the primary NDC
// in both dashed and bare form.
func (b *SearchTextBuilder) SearchText(rec *entities.EnrichedRecord, keywords []string) string {
	parts := make([]string, 0, len(keywords)+8)

	for _, field := range []string{rec.DrugNameClean, rec.DoseFormClean, rec.StrengthClean, rec.Company, rec.TermType} {
		if field != "" {
			parts = append(parts, field)
		}
	}

	if rec.NDCPrimary != "" {
		parts = append(parts, rec.NDCPrimary, strings.ReplaceAll(rec.NDCPrimary, "-", ""))
	}

	parts = append(parts, keywords...)

	return strings.ToLower(strings.Join(parts, " "))
}

// tokenize splits on whitespace and punctuation, dropping empty tokens.
func tokenize(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return !isAlphanumeric(r)
	})
}

func isAlphanumeric(r rune) bool {
	return ('a' <= r && r <= 'z') || ('A' <= r && r <= 'Z') || ('0' <= r && r <= '9') || r == '%'
}
