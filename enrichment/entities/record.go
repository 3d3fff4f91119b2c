// Package entities defines the record types flowing through the enrichment
// engine: raw RxNorm source records on the way in, enriched medication
// records on the way out.
package entities

// SourceRecord is one raw medication concept as loaded from the RxNorm
// export files. It is read-only to the enrichment engine.
type SourceRecord struct {
	RxCUI    string   `json:"rxcui"`
	DrugName string   `json:"drug_name"`
	TermType string   `json:"term_type"`
	DoseForm string   `json:"dose_form"`
	Strength string   `json:"available_strength"`
	Labelers []string `json:"labelers"`
	NDCCodes []string `json:"ndc_codes"`
}

// EnrichedRecord is the fully enriched medication record. It is built once
// by the enricher and never mutated afterwards.
type EnrichedRecord struct {
	RxCUI    string `json:"rxcui"`
	DrugName string `json:"drug_name"`
	TermType string `json:"term_type"`

	DrugNameClean string `json:"drug_name_clean"`
	DoseFormClean string `json:"dose_form_clean"`
	StrengthClean string `json:"strength_clean"`

	// Company is the primary canonical pharmaceutical company. Empty when
	// the record carries no labeler data or no alias matched.
	Company   string   `json:"company,omitempty"`
	Companies []string `json:"companies,omitempty"`

	// NDCPrimary is the first surviving standardized code in input order,
	// always in the 11-digit 5-4-2 dashed form.
	NDCPrimary string   `json:"ndc_primary,omitempty"`
	NDCCodes   []string `json:"ndc_codes,omitempty"`

	SigPrimary      string   `json:"sig_primary,omitempty"`
	SigInstructions []string `json:"sig_instructions,omitempty"`

	SearchKeywords []string `json:"search_keywords"`
	SearchText     string   `json:"search_text"`

	// QualityFilledCount counts how many of the five core fields (company,
	// dose form, strength, code, instructions) are populated.
	QualityFilledCount int     `json:"quality_filled_count"`
	QualityPercent     float64 `json:"quality_percent"`
}
