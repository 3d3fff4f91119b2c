package enrichment

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/vineetdaniels2108/RxNormSIGProject/enrichment/entities"
	"github.com/vineetdaniels2108/RxNormSIGProject/logging"
)

// Term types kept from the concepts file: clinical drugs, branded drugs and
// brand names.
var keptTermTypes = map[string]bool{
	"SCD": true,
	"SBD": true,
	"BN":  true,
}

// Attribute names collected from the attributes file.
const (
	attrDoseForm = "RXTERM_FORM"
	attrStrength = "RXN_AVAILABLE_STRENGTH"
	attrNDC      = "NDC"
	attrLabeler  = "LABELER"
)

// SourceLoader reads RxNorm concept and attribute exports from a data
// directory and joins them into source records.
type SourceLoader struct {
	dataDir string
}

// NewSourceLoader creates a loader over dataDir, which must contain
// concepts.csv and attributes.csv.
func NewSourceLoader(dataDir string) *SourceLoader {
	return &SourceLoader{dataDir: dataDir}
}

// Load reads and joins both files. Rows that cannot be parsed are skipped
// and counted; only a completely unreadable file is an error.
func (l *SourceLoader) Load() ([]entities.SourceRecord, error) {
	concepts, err := l.loadConcepts()
	if err != nil {
		return nil, err
	}

	attrs, err := l.loadAttributes()
	if err != nil {
		return nil, err
	}

	records := make([]entities.SourceRecord, 0, len(concepts))
	for i := range concepts {
		rec := concepts[i]
		if a, ok := attrs[rec.RxCUI]; ok {
			rec.DoseForm = a.doseForm
			rec.Strength = a.strength
			rec.Labelers = a.labelers
			rec.NDCCodes = a.ndcCodes
		}
		records = append(records, rec)
	}

	logging.Info("Source records loaded",
		"concepts", len(concepts),
		"with_attributes", len(attrs),
		"records", len(records))

	return records, nil
}

// loadConcepts reads concepts.csv, keeping English RXNORM rows of the kept
// term types that are not suppressed.
func (l *SourceLoader) loadConcepts() ([]entities.SourceRecord, error) {
	path := filepath.Join(l.dataDir, "concepts.csv")
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open concepts file: %w", err)
	}
	defer func() {
		if err := f.Close(); err != nil {
			logging.Warn("Failed to close concepts file", "error", err)
		}
	}()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read concepts header: %w", err)
	}
	col := headerIndex(header)

	required := []string{"rxcui", "drug_name", "term_type"}
	for _, name := range required {
		if _, ok := col[name]; !ok {
			return nil, fmt.Errorf("concepts file missing column %s", name)
		}
	}

	var records []entities.SourceRecord
	lineCount := 0
	skippedFiltered := 0
	skippedFormatErrors := 0

	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			skippedFormatErrors++
			continue
		}
		lineCount++

		rxcui := field(row, col, "rxcui")
		name := field(row, col, "drug_name")
		termType := field(row, col, "term_type")

		if rxcui == "" || name == "" {
			skippedFormatErrors++
			continue
		}

		if !keptTermTypes[termType] {
			skippedFiltered++
			continue
		}
		if src := field(row, col, "source_abbreviation"); src != "" && src != "RXNORM" {
			skippedFiltered++
			continue
		}
		if lang := field(row, col, "language"); lang != "" && lang != "ENG" {
			skippedFiltered++
			continue
		}
		if field(row, col, "suppress_flag") == "Y" {
			skippedFiltered++
			continue
		}

		records = append(records, entities.SourceRecord{
			RxCUI:    rxcui,
			DrugName: name,
			TermType: termType,
		})
	}

	if skippedFiltered > 0 || skippedFormatErrors > 0 {
		logging.Info("concepts.csv skip statistics",
			"filtered", skippedFiltered,
			"format_errors", skippedFormatErrors,
			"total_lines", lineCount,
			"records_parsed", len(records))
	}

	return records, nil
}

// recordAttributes collects the per-rxcui attribute values in file order.
type recordAttributes struct {
	doseForm string
	strength string
	labelers []string
	ndcCodes []string
}

// loadAttributes reads attributes.csv into a per-rxcui summary.
func (l *SourceLoader) loadAttributes() (map[string]*recordAttributes, error) {
	path := filepath.Join(l.dataDir, "attributes.csv")
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open attributes file: %w", err)
	}
	defer func() {
		if err := f.Close(); err != nil {
			logging.Warn("Failed to close attributes file", "error", err)
		}
	}()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read attributes header: %w", err)
	}
	col := headerIndex(header)

	for _, name := range []string{"rxcui", "attribute_name", "attribute_value"} {
		if _, ok := col[name]; !ok {
			return nil, fmt.Errorf("attributes file missing column %s", name)
		}
	}

	attrs := make(map[string]*recordAttributes)
	lineCount := 0
	skippedFormatErrors := 0

	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			skippedFormatErrors++
			continue
		}
		lineCount++

		rxcui := field(row, col, "rxcui")
		name := field(row, col, "attribute_name")
		value := strings.TrimSpace(field(row, col, "attribute_value"))

		if rxcui == "" || name == "" || value == "" {
			skippedFormatErrors++
			continue
		}
		if field(row, col, "suppress_flag") == "Y" {
			continue
		}

		a := attrs[rxcui]
		if a == nil {
			a = &recordAttributes{}
			attrs[rxcui] = a
		}

		switch name {
		case attrDoseForm:
			if a.doseForm == "" {
				a.doseForm = value
			}
		case attrStrength:
			if a.strength == "" {
				a.strength = value
			}
		case attrNDC:
			a.ndcCodes = append(a.ndcCodes, value)
		case attrLabeler:
			a.labelers = append(a.labelers, value)
		}
	}

	if skippedFormatErrors > 0 {
		logging.Info("attributes.csv skip statistics",
			"format_errors", skippedFormatErrors,
			"total_lines", lineCount,
			"records_with_attributes", len(attrs))
	}

	return attrs, nil
}

func headerIndex(header []string) map[string]int {
	col := make(map[string]int, len(header))
	for i, name := range header {
		col[strings.ToLower(strings.TrimSpace(name))] = i
	}
	return col
}

func field(row []string, col map[string]int, name string) string {
	i, ok := col[name]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}
