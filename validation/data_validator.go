// Package validation provides validation for the enrichment service: source
// record checks, whole-table integrity checks after a run, and user input
// validation for the HTTP surface.
package validation

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/vineetdaniels2108/RxNormSIGProject/enrichment/entities"
	"github.com/vineetdaniels2108/RxNormSIGProject/interfaces"
	"github.com/vineetdaniels2108/RxNormSIGProject/logging"
)

// Pre-compiled regex patterns, compiled once at package initialization
var (
	// Input validation: alphanumeric plus safe punctuation
	inputRegex = regexp.MustCompile(`^[a-zA-Z0-9\s\-\.\+'%\[\]]+$`)

	// NDC codes in the standardized 5-4-2 form or bare 10/11 digits
	ndcRegex = regexp.MustCompile(`^(\d{5}-\d{4}-\d{2}|\d{10,11})$`)

	// Dangerous patterns as strings, faster than regex for substring checks
	dangerousPatterns = []string{
		"<script", "</script>", "javascript:", "vbscript:", "onload=", "onerror=",
		"onclick=", "onmouseover=", "onfocus=", "onblur=", "onchange=", "onsubmit=",
		"eval(", "expression(", "url(", "import ", "@import", "binding(", "behavior(",
		// SQL injection patterns
		"' or ", "\" or ", "union select", "drop table", "delete from", "insert into",
		"update set", "--", "/*", "*/", "xp_", "sp_", "exec(", "execute(",
		// Command injection patterns
		"; ", "| ", "& ", "`", "$(", "${",
		// Path traversal patterns
		"../", "..\\", "%2e%2e", "file://",
		// LDAP injection patterns
		"*)(", "*|(", "*)%",
		// NoSQL injection patterns
		"{$ne:", "{$gt:", "{$where:", "{$or:", "{$regex:", "{$expr:",
	}
)

// DataValidatorImpl implements the interfaces.DataValidator interface
type DataValidatorImpl struct{}

// NewDataValidator creates a new data validator
func NewDataValidator() interfaces.DataValidator {
	return &DataValidatorImpl{}
}

// ValidateSourceRecord checks if a raw record can enter the pipeline
func (v *DataValidatorImpl) ValidateSourceRecord(rec *entities.SourceRecord) error {
	if rec == nil {
		return fmt.Errorf("source record is nil")
	}

	if strings.TrimSpace(rec.RxCUI) == "" {
		return fmt.Errorf("missing rxcui")
	}

	if strings.TrimSpace(rec.DrugName) == "" {
		return fmt.Errorf("empty drug name for rxcui %s", rec.RxCUI)
	}

	if len(rec.DrugName) > 300 {
		return fmt.Errorf("drug name too long for rxcui %s: %d characters", rec.RxCUI, len(rec.DrugName))
	}

	if len(rec.DoseForm) > 100 {
		return fmt.Errorf("dose form too long for rxcui %s: %d characters", rec.RxCUI, len(rec.DoseForm))
	}

	if len(rec.Strength) > 200 {
		return fmt.Errorf("strength too long for rxcui %s: %d characters", rec.RxCUI, len(rec.Strength))
	}

	return nil
}

// ValidateDataIntegrity performs whole-table validation after a run
func (v *DataValidatorImpl) ValidateDataIntegrity(records []entities.EnrichedRecord) error {
	if len(records) == 0 {
		return fmt.Errorf("no enriched records found")
	}

	seen := make(map[string]bool, len(records))
	withoutSigs := 0

	for i := range records {
		rec := &records[i]

		if seen[rec.RxCUI] {
			return fmt.Errorf("duplicate rxcui found: %s", rec.RxCUI)
		}
		seen[rec.RxCUI] = true

		if strings.TrimSpace(rec.DrugNameClean) == "" {
			return fmt.Errorf("empty canonical drug name for rxcui %s", rec.RxCUI)
		}

		if rec.NDCPrimary != "" && !ndcRegex.MatchString(rec.NDCPrimary) {
			return fmt.Errorf("rxcui %s has a non-standardized primary code: %s", rec.RxCUI, rec.NDCPrimary)
		}

		if rec.SearchText == "" {
			return fmt.Errorf("empty search text for rxcui %s", rec.RxCUI)
		}

		if rec.QualityFilledCount < 0 || rec.QualityPercent < 0 || rec.QualityPercent > 100 {
			return fmt.Errorf("rxcui %s has an out-of-range quality summary: %d (%.1f%%)",
				rec.RxCUI, rec.QualityFilledCount, rec.QualityPercent)
		}

		if rec.DoseFormClean != "" && len(rec.SigInstructions) == 0 {
			withoutSigs++
		}
	}

	// A known dose form must always produce instructions; any hole here
	// points at a broken rule table
	if withoutSigs > 0 {
		logging.Error("Records with a dose form but no instructions detected", "count", withoutSigs)
		return fmt.Errorf("found %d records with a dose form but no instructions", withoutSigs)
	}

	return nil
}

// ValidateInput validates user input strings with enhanced security
func (v *DataValidatorImpl) ValidateInput(input string) error {
	if strings.TrimSpace(input) == "" {
		return fmt.Errorf("input cannot be empty")
	}

	if len(input) < 3 {
		return fmt.Errorf("input too short: minimum 3 characters")
	}

	if len(input) > 50 {
		return fmt.Errorf("input too long: maximum 50 characters")
	}

	// Word count validation to prevent DoS attacks with many short words
	words := strings.Fields(input)
	if len(words) > 6 {
		return fmt.Errorf("search query too complex: maximum 6 words allowed")
	}

	// Check for potentially dangerous patterns using string matching
	lowerInput := strings.ToLower(input)
	for _, pattern := range dangerousPatterns {
		if strings.Contains(lowerInput, pattern) {
			return fmt.Errorf("input contains potentially dangerous content")
		}
	}

	// Allow only letters, numbers, spaces, and safe punctuation
	if !inputRegex.MatchString(input) {
		return fmt.Errorf("input contains invalid characters. Only letters, numbers, spaces, hyphens, apostrophes, periods, plus and percent signs are allowed")
	}

	if v.hasExcessiveRepetition(input) {
		return fmt.Errorf("input contains excessive character repetition")
	}

	return nil
}

// ValidateRxCUI validates an RxNorm concept identifier: numeric, 1 to 8
// digits, no surrounding whitespace.
func (v *DataValidatorImpl) ValidateRxCUI(input string) (string, error) {
	trimmedInput := strings.TrimSpace(input)
	if trimmedInput == "" {
		return "", fmt.Errorf("input cannot be empty")
	}

	// Reject if original input contained whitespace
	if len(input) != len(trimmedInput) {
		return "", fmt.Errorf("input contains invalid characters. Only numeric characters are allowed")
	}

	if len(trimmedInput) > 8 {
		return "", fmt.Errorf("rxcui should have at most 8 digits")
	}

	for i := 0; i < len(trimmedInput); i++ {
		if trimmedInput[i] < '0' || trimmedInput[i] > '9' {
			return "", fmt.Errorf("input contains invalid characters. Only numeric characters are allowed")
		}
	}

	return trimmedInput, nil
}

// hasExcessiveRepetition checks for DoS patterns with excessive character repetition
func (v *DataValidatorImpl) hasExcessiveRepetition(input string) bool {
	// The same character repeated more than 10 times consecutively
	for i := 0; i < len(input)-10; i++ {
		allSame := true
		for j := 1; j <= 10; j++ {
			if input[i] != input[i+j] {
				allSame = false
				break
			}
		}
		if allSame {
			return true
		}
	}
	return false
}
