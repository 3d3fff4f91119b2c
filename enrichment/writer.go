package enrichment

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/vineetdaniels2108/RxNormSIGProject/enrichment/entities"
	"github.com/vineetdaniels2108/RxNormSIGProject/logging"
)

// enrichedHeader is the column layout of the enriched table export. List
// columns carry JSON arrays so the file round-trips without a custom parser.
var enrichedHeader = []string{
	"identifier",
	"drug_name_canonical",
	"term_type",
	"dose_form_canonical",
	"strength_canonical",
	"company_canonical",
	"code_primary",
	"code_all",
	"instructions_primary",
	"instructions_all",
	"search_keywords",
	"search_text",
	"quality_filled_count",
	"quality_percent",
}

// WriteEnrichedCSV writes the enriched table to path, atomically: the file
// is written to a temp name and renamed into place so readers never see a
// partial table.
func WriteEnrichedCSV(path string, records []entities.EnrichedRecord) error {
	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("failed to create enriched file: %w", err)
	}

	w := csv.NewWriter(f)
	if err := w.Write(enrichedHeader); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("failed to write enriched header: %w", err)
	}

	for i := range records {
		row, err := enrichedRow(&records[i])
		if err != nil {
			f.Close()
			os.Remove(tmp)
			return fmt.Errorf("failed to encode record %s: %w", records[i].RxCUI, err)
		}
		if err := w.Write(row); err != nil {
			f.Close()
			os.Remove(tmp)
			return fmt.Errorf("failed to write record %s: %w", records[i].RxCUI, err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("failed to flush enriched file: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to close enriched file: %w", err)
	}

	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to move enriched file into place: %w", err)
	}

	logging.Info("Enriched table written", "path", path, "records", len(records))
	return nil
}

func enrichedRow(rec *entities.EnrichedRecord) ([]string, error) {
	codes, err := jsonList(rec.NDCCodes)
	if err != nil {
		return nil, err
	}
	sigs, err := jsonList(rec.SigInstructions)
	if err != nil {
		return nil, err
	}
	keywords, err := jsonList(rec.SearchKeywords)
	if err != nil {
		return nil, err
	}

	return []string{
		rec.RxCUI,
		rec.DrugNameClean,
		rec.TermType,
		rec.DoseFormClean,
		rec.StrengthClean,
		rec.Company,
		rec.NDCPrimary,
		codes,
		rec.SigPrimary,
		sigs,
		keywords,
		rec.SearchText,
		strconv.Itoa(rec.QualityFilledCount),
		strconv.FormatFloat(rec.QualityPercent, 'f', 1, 64),
	}, nil
}

// jsonList encodes a string slice as a JSON array, with nil rendered as the
// empty array.
func jsonList(values []string) (string, error) {
	if values == nil {
		values = []string{}
	}
	data, err := json.Marshal(values)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
