package enrichment

import (
	"errors"
	"fmt"
	"strings"

	"github.com/vineetdaniels2108/RxNormSIGProject/enrichment/rules"
)

// ErrMalformedCode marks a raw product code that cannot be reduced to a
// valid legacy layout or fails post-padding validation. Such codes are
// dropped and counted, never emitted.
var ErrMalformedCode = errors.New("malformed product code")

// commonPackageEndings are package codes frequently seen in the source data,
// used by the 5-3-2 layout heuristic for dashless 10-digit codes.
var commonPackageEndings = map[string]bool{
	"01": true, "02": true, "03": true, "04": true, "05": true,
	"10": true, "30": true, "50": true, "90": true,
}

// CodeStandardizer reformats raw NDC product codes into the HIPAA 11-digit
// 5-4-2 segmented form. Safe for concurrent use.
type CodeStandardizer struct {
	rules *rules.RuleSet
}

// NewCodeStandardizer creates a standardizer over the configured legacy
// layouts.
func NewCodeStandardizer(rs *rules.RuleSet) *CodeStandardizer {
	return &CodeStandardizer{rules: rs}
}

// Standardize converts one raw code to the 5-4-2 form. Input may be dashed
// in any known legacy layout or a bare 10/11 digit string. Standardizing an
// already standardized code returns it unchanged.
func (s *CodeStandardizer) Standardize(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("%w: empty code", ErrMalformedCode)
	}

	if strings.Contains(raw, "-") {
		return s.standardizeDashed(raw)
	}
	return s.standardizeBare(raw)
}

// StandardizeAll standardizes each code independently, drops malformed ones,
// removes duplicates while preserving input order, and picks the first
// survivor as primary.
func (s *CodeStandardizer) StandardizeAll(raws []string) (primary string, all []string, accepted, rejected int) {
	seen := make(map[string]bool)

	for _, raw := range raws {
		if strings.TrimSpace(raw) == "" {
			continue
		}

		code, err := s.Standardize(raw)
		if err != nil {
			rejected++
			continue
		}
		accepted++

		if !seen[code] {
			seen[code] = true
			all = append(all, code)
		}
	}

	if len(all) > 0 {
		primary = all[0]
	}
	return primary, all, accepted, rejected
}

// standardizeDashed handles codes that carry their original dash positions.
// The segment lengths identify the legacy layout directly.
func (s *CodeStandardizer) standardizeDashed(raw string) (string, error) {
	parts := strings.Split(raw, "-")
	if len(parts) != 3 {
		return "", fmt.Errorf("%w: %q has %d segments", ErrMalformedCode, raw, len(parts))
	}

	segs := make([]string, 3)
	for i, part := range parts {
		digits := digitsOnly(part)
		if digits == "" {
			return "", fmt.Errorf("%w: %q has a non-numeric segment", ErrMalformedCode, raw)
		}
		segs[i] = digits
	}

	// Already 5-4-2: pass through unchanged
	if len(segs[0]) == 5 && len(segs[1]) == 4 && len(segs[2]) == 2 {
		return formatNDC(segs), nil
	}

	for _, f := range s.rules.CodeFormats {
		if len(segs[0]) == f.Segments[0] && len(segs[1]) == f.Segments[1] && len(segs[2]) == f.Segments[2] {
			segs[f.PadSegment] = "0" + segs[f.PadSegment]
			return validateNDC(segs, raw)
		}
	}

	return "", fmt.Errorf("%w: %q matches no known layout", ErrMalformedCode, raw)
}

// standardizeBare handles codes without dashes. 11 digits are already the
// full HIPAA code; 10 digits need the original layout guessed in priority
// order (5-3-2, then 4-4-2, then the 5-4-1 default).
func (s *CodeStandardizer) standardizeBare(raw string) (string, error) {
	digits := digitsOnly(raw)

	switch len(digits) {
	case 11:
		return formatNDC([]string{digits[:5], digits[5:9], digits[9:11]}), nil
	case 10:
		f, ok := s.guessLayout(digits)
		if !ok {
			return "", fmt.Errorf("%w: %q matches no known layout", ErrMalformedCode, raw)
		}
		segs := splitSegments(digits, f.Segments)
		segs[f.PadSegment] = "0" + segs[f.PadSegment]
		return validateNDC(segs, raw)
	default:
		return "", fmt.Errorf("%w: %q has %d digits, expected 10 or 11", ErrMalformedCode, raw, len(digits))
	}
}

// guessLayout picks the legacy layout for a dashless 10-digit code.
// 5-3-2 is tried first (package code with a padded product segment shows a
// zero at position 8 and a common package ending), then 4-4-2 (leading zero
// with a varied product block), then 5-4-1 as the most common default.
func (s *CodeStandardizer) guessLayout(digits string) (rules.CodeFormatRule, bool) {
	if digits[8] == '0' && commonPackageEndings[digits[8:10]] {
		if f, ok := s.rules.FormatByName("5-3-2"); ok {
			return f, true
		}
	}

	if digits[0] == '0' && distinctDigits(digits[4:8]) > 1 {
		if f, ok := s.rules.FormatByName("4-4-2"); ok {
			return f, true
		}
	}

	return s.rules.FormatByName("5-4-1")
}

func splitSegments(digits string, lengths []int) []string {
	segs := make([]string, len(lengths))
	pos := 0
	for i, l := range lengths {
		segs[i] = digits[pos : pos+l]
		pos += l
	}
	return segs
}

// validateNDC enforces the hard external contract: exactly 5-4-2 digits.
func validateNDC(segs []string, raw string) (string, error) {
	if len(segs[0]) != 5 || len(segs[1]) != 4 || len(segs[2]) != 2 {
		return "", fmt.Errorf("%w: %q padded to %d-%d-%d, expected 5-4-2",
			ErrMalformedCode, raw, len(segs[0]), len(segs[1]), len(segs[2]))
	}
	return formatNDC(segs), nil
}

func formatNDC(segs []string) string {
	return segs[0] + "-" + segs[1] + "-" + segs[2]
}

func digitsOnly(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func distinctDigits(s string) int {
	var seen [10]bool
	count := 0
	for _, r := range s {
		if r >= '0' && r <= '9' && !seen[r-'0'] {
			seen[r-'0'] = true
			count++
		}
	}
	return count
}
