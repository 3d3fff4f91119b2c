package enrichment

import (
	"github.com/vineetdaniels2108/RxNormSIGProject/enrichment/entities"
	"github.com/vineetdaniels2108/RxNormSIGProject/enrichment/rules"
)

// coreFieldCount is the fixed field set behind the data-quality summary:
// company, dose form, strength, code, at least one instruction.
const coreFieldCount = 5

// RecordOutcome carries the per-record counter deltas back to the pipeline
// so the enricher itself stays free of shared state.
type RecordOutcome struct {
	CompaniesMatched   int
	CompaniesUnmatched int
	NDCAccepted        int
	NDCRejected        int
	NoInstructions     bool
}

// RecordEnricher orchestrates the four transformers for one source record
// and assembles the enriched record plus its quality summary. Safe for
// concurrent use; all state is read-only rule tables.
type RecordEnricher struct {
	cleaner   *Cleaner
	companies *CompanyCanonicalizer
	codes     *CodeStandardizer
	sigs      *SigGenerator
	search    *SearchTextBuilder
}

// NewRecordEnricher wires the transformers over one shared rule set.
func NewRecordEnricher(rs *rules.RuleSet) *RecordEnricher {
	return &RecordEnricher{
		cleaner:   NewCleaner(rs),
		companies: NewCompanyCanonicalizer(rs),
		codes:     NewCodeStandardizer(rs),
		sigs:      NewSigGenerator(rs),
		search:    NewSearchTextBuilder(rs),
	}
}

// Enrich builds the enriched record for one source record. The result is
// fully populated before it is returned and never mutated afterwards.
func (e *RecordEnricher) Enrich(src *entities.SourceRecord) (*entities.EnrichedRecord, RecordOutcome) {
	rec := &entities.EnrichedRecord{
		RxCUI:    src.RxCUI,
		DrugName: src.DrugName,
		TermType: src.TermType,
	}
	var outcome RecordOutcome

	rec.DrugNameClean = e.cleaner.CleanDrugName(src.DrugName)
	rec.DoseFormClean = e.cleaner.CleanDoseForm(src.DoseForm)
	rec.StrengthClean = e.cleaner.CleanStrength(src.Strength)

	primary, all, matched, unmatched := e.companies.CanonicalizeAll(src.Labelers)
	rec.Company = primary
	rec.Companies = all
	outcome.CompaniesMatched = matched
	outcome.CompaniesUnmatched = unmatched

	ndcPrimary, ndcAll, accepted, rejected := e.codes.StandardizeAll(src.NDCCodes)
	rec.NDCPrimary = ndcPrimary
	rec.NDCCodes = ndcAll
	outcome.NDCAccepted = accepted
	outcome.NDCRejected = rejected

	rec.SigInstructions = e.sigs.Generate(rec.DoseFormClean, rec.StrengthClean, rec.DrugNameClean, src.TermType)
	if len(rec.SigInstructions) > 0 {
		rec.SigPrimary = rec.SigInstructions[0]
	} else {
		outcome.NoInstructions = true
	}

	rec.SearchKeywords = e.search.Keywords(rec)
	rec.SearchText = e.search.SearchText(rec, rec.SearchKeywords)

	rec.QualityFilledCount = qualityCount(rec)
	rec.QualityPercent = float64(rec.QualityFilledCount) / coreFieldCount * 100

	return rec, outcome
}

// qualityCount counts the populated core fields.
func qualityCount(rec *entities.EnrichedRecord) int {
	count := 0
	if rec.Company != "" {
		count++
	}
	if rec.DoseFormClean != "" {
		count++
	}
	if rec.StrengthClean != "" {
		count++
	}
	if rec.NDCPrimary != "" {
		count++
	}
	if len(rec.SigInstructions) > 0 {
		count++
	}
	return count
}
