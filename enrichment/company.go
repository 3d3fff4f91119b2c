// Package enrichment implements the medication enrichment engine: company
// canonicalization, NDC standardization, dosage instruction generation,
// search text building, and the batch pipeline tying them together.
package enrichment

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/vineetdaniels2108/RxNormSIGProject/enrichment/rules"
)

// stripDiacritics removes combining marks so "Synthélabo" and "Synthelabo"
// normalize to the same key.
var stripDiacritics = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// CompanyCanonicalizer maps raw manufacturer strings to canonical
// pharmaceutical company names via a normalize-then-lookup pass over the
// alias table. It is a pure function over the table and safe for concurrent
// use.
type CompanyCanonicalizer struct {
	aliases  map[string]string
	suffixes []string
}

// NewCompanyCanonicalizer builds the normalized alias lookup from the rule
// set. Alias keys go through the same normalization as inputs, so table
// entries can be written in any casing or punctuation.
func NewCompanyCanonicalizer(rs *rules.RuleSet) *CompanyCanonicalizer {
	c := &CompanyCanonicalizer{
		aliases:  make(map[string]string, len(rs.CompanyAliases)),
		suffixes: rs.CorporateSuffixes,
	}

	for _, entry := range rs.CompanyAliases {
		key := c.normalize(entry.Variant)
		if key == "" {
			continue
		}
		c.aliases[key] = entry.Canonical
	}

	return c
}

// Canonicalize returns the canonical company name for a raw manufacturer
// string. The second return value reports whether a match was found;
// unmatched input is an expected case, not an error.
func (c *CompanyCanonicalizer) Canonicalize(raw string) (string, bool) {
	key := c.normalize(raw)
	if key == "" {
		return "", false
	}

	canonical, ok := c.aliases[key]
	return canonical, ok
}

// CanonicalizeAll canonicalizes each labeler independently. The primary is
// the first successful canonicalization in input order; all distinct
// canonical names are retained in input order. The counters report matched
// and unmatched non-empty inputs.
func (c *CompanyCanonicalizer) CanonicalizeAll(raws []string) (primary string, all []string, matched, unmatched int) {
	seen := make(map[string]bool)

	for _, raw := range raws {
		if strings.TrimSpace(raw) == "" {
			continue
		}

		canonical, ok := c.Canonicalize(raw)
		if !ok {
			unmatched++
			continue
		}
		matched++

		if primary == "" {
			primary = canonical
		}
		if !seen[canonical] {
			seen[canonical] = true
			all = append(all, canonical)
		}
	}

	return primary, all, matched, unmatched
}

// normalize lowers, strips diacritics, folds punctuation to spaces,
// collapses whitespace, and strips trailing corporate suffixes. The suffix
// pass is table-driven and repeats until no suffix matches, so
// "Lilly, Eli & Co." reduces to "lilly eli".
func (c *CompanyCanonicalizer) normalize(raw string) string {
	s := strings.ToLower(strings.TrimSpace(raw))
	if s == "" {
		return ""
	}

	if folded, _, err := transform.String(stripDiacritics, s); err == nil {
		s = folded
	}

	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		} else {
			b.WriteByte(' ')
		}
	}
	s = strings.Join(strings.Fields(b.String()), " ")

	for stripped := true; stripped; {
		stripped = false
		for _, suffix := range c.suffixes {
			if s == suffix {
				continue
			}
			if strings.HasSuffix(s, " "+suffix) {
				s = strings.TrimSpace(strings.TrimSuffix(s, " "+suffix))
				stripped = true
			}
		}
	}

	return s
}
