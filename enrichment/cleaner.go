package enrichment

import (
	"strings"
	"sync"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/vineetdaniels2108/RxNormSIGProject/enrichment/rules"
)

// Cleaner canonicalizes drug names, dose forms and strength strings before
// the downstream transformers run. Safe for concurrent use.
type Cleaner struct {
	doseForms      map[string]string
	strengthUnits  map[string]string
	uppercaseWords map[string]string

	// cases.Caser carries internal transform state and must not be shared
	// between goroutines, so each call borrows one from the pool.
	casers sync.Pool
}

// NewCleaner builds a cleaner from the rule tables.
func NewCleaner(rs *rules.RuleSet) *Cleaner {
	upper := make(map[string]string, len(rs.UppercaseWords))
	for _, w := range rs.UppercaseWords {
		upper[strings.ToLower(w)] = strings.ToUpper(w)
	}

	units := make(map[string]string, len(rs.StrengthUnits))
	for k, v := range rs.StrengthUnits {
		units[strings.ToLower(k)] = v
	}

	forms := make(map[string]string, len(rs.DoseForms))
	for k, v := range rs.DoseForms {
		forms[strings.ToLower(k)] = v
	}

	return &Cleaner{
		doseForms:      forms,
		strengthUnits:  units,
		uppercaseWords: upper,
		casers: sync.Pool{
			New: func() any {
				caser := cases.Title(language.English)
				return &caser
			},
		},
	}
}

func (c *Cleaner) titleCase(s string) string {
	caser := c.casers.Get().(*cases.Caser)
	out := caser.String(s)
	c.casers.Put(caser)
	return out
}

// CleanDrugName title-cases the name, restores known abbreviations to
// uppercase, and collapses whitespace.
func (c *Cleaner) CleanDrugName(name string) string {
	name = strings.Join(strings.Fields(name), " ")
	if name == "" {
		return ""
	}

	name = c.titleCase(name)

	words := strings.Split(name, " ")
	for i, word := range words {
		// Bracketed brand names keep their own capitalization handling
		trimmed := strings.Trim(word, "[]()")
		if upper, ok := c.uppercaseWords[strings.ToLower(trimmed)]; ok {
			words[i] = strings.Replace(word, trimmed, upper, 1)
		}
	}

	return strings.Join(words, " ")
}

// CleanDoseForm maps raw dose-form abbreviations to their canonical label,
// falling back to title case for unknown forms.
func (c *Cleaner) CleanDoseForm(doseForm string) string {
	doseForm = strings.TrimSpace(doseForm)
	if doseForm == "" {
		return ""
	}

	if canonical, ok := c.doseForms[strings.ToLower(doseForm)]; ok {
		return canonical
	}

	return c.titleCase(doseForm)
}

// CleanStrength standardizes unit casing and spacing, e.g. "500mg" becomes
// "500 MG".
func (c *Cleaner) CleanStrength(strength string) string {
	strength = strings.TrimSpace(strength)
	if strength == "" {
		return ""
	}

	// Insert a space between a number and a trailing unit
	var b strings.Builder
	b.Grow(len(strength) + 4)
	for i := 0; i < len(strength); i++ {
		ch := strength[i]
		if i > 0 && isDigit(strength[i-1]) && (isLetter(ch) || ch == '%') {
			b.WriteByte(' ')
		}
		b.WriteByte(ch)
	}

	words := strings.Fields(b.String())
	for i, word := range words {
		if unit, ok := c.strengthUnits[strings.ToLower(word)]; ok {
			words[i] = unit
		}
	}

	return strings.Join(words, " ")
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

func isLetter(ch byte) bool {
	return (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}
