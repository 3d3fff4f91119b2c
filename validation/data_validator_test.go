package validation

import (
	"strings"
	"testing"

	"github.com/vineetdaniels2108/RxNormSIGProject/enrichment/entities"
)

func TestValidateSourceRecord(t *testing.T) {
	v := NewDataValidator()

	valid := &entities.SourceRecord{
		RxCUI:    "197361",
		DrugName: "amoxicillin 500 MG oral tablet",
		TermType: "SCD",
	}
	if err := v.ValidateSourceRecord(valid); err != nil {
		t.Errorf("valid record rejected: %v", err)
	}

	tests := []struct {
		name string
		rec  *entities.SourceRecord
	}{
		{"nil record", nil},
		{"missing rxcui", &entities.SourceRecord{DrugName: "something"}},
		{"missing drug name", &entities.SourceRecord{RxCUI: "123"}},
		{"drug name too long", &entities.SourceRecord{RxCUI: "123", DrugName: strings.Repeat("a", 301)}},
		{"dose form too long", &entities.SourceRecord{RxCUI: "123", DrugName: "x y z", DoseForm: strings.Repeat("a", 101)}},
	}

	for _, tt := range tests {
		if err := v.ValidateSourceRecord(tt.rec); err == nil {
			t.Errorf("%s: expected an error", tt.name)
		}
	}
}

func TestValidateDataIntegrity(t *testing.T) {
	v := NewDataValidator()

	good := []entities.EnrichedRecord{
		{
			RxCUI:           "197361",
			DrugNameClean:   "Amoxicillin 500 MG Oral Tablet",
			DoseFormClean:   "Tablet",
			NDCPrimary:      "49452-3606-01",
			SigInstructions: []string{"Take 1 tablet by mouth once daily"},
			SearchText:      "amoxicillin tablet",
			QualityPercent:  80,
		},
	}
	if err := v.ValidateDataIntegrity(good); err != nil {
		t.Errorf("valid table rejected: %v", err)
	}

	if err := v.ValidateDataIntegrity(nil); err == nil {
		t.Error("empty table must be rejected")
	}

	duplicate := append(append([]entities.EnrichedRecord{}, good...), good[0])
	if err := v.ValidateDataIntegrity(duplicate); err == nil {
		t.Error("duplicate rxcui must be rejected")
	}

	badCode := append([]entities.EnrichedRecord{}, good...)
	badCode[0].NDCPrimary = "4946-0053-01"
	if err := v.ValidateDataIntegrity(badCode); err == nil {
		t.Error("non-standardized primary code must be rejected")
	}

	noSigs := append([]entities.EnrichedRecord{}, good...)
	noSigs[0].SigInstructions = nil
	if err := v.ValidateDataIntegrity(noSigs); err == nil {
		t.Error("dose form without instructions must be rejected")
	}
}

func TestValidateInput(t *testing.T) {
	v := NewDataValidator()

	valid := []string{
		"amoxicillin",
		"atorvastatin 10 MG",
		"tylenol extra-strength",
		"0.5%",
	}
	for _, input := range valid {
		if err := v.ValidateInput(input); err != nil {
			t.Errorf("ValidateInput(%q) rejected valid input: %v", input, err)
		}
	}

	invalid := []string{
		"",
		"ab",
		strings.Repeat("a", 51),
		"one two three four five six seven",
		"<script>alert(1)</script>",
		"'; drop table meds --",
		"../../etc/passwd",
		strings.Repeat("z", 20),
	}
	for _, input := range invalid {
		if err := v.ValidateInput(input); err == nil {
			t.Errorf("ValidateInput(%q) accepted invalid input", input)
		}
	}
}

func TestValidateRxCUI(t *testing.T) {
	v := NewDataValidator()

	got, err := v.ValidateRxCUI("197361")
	if err != nil {
		t.Fatalf("valid rxcui rejected: %v", err)
	}
	if got != "197361" {
		t.Errorf("got %q, want 197361", got)
	}

	invalid := []string{"", " 197361", "197361 ", "abc123", "123456789", "12-34"}
	for _, input := range invalid {
		if _, err := v.ValidateRxCUI(input); err == nil {
			t.Errorf("ValidateRxCUI(%q) accepted invalid input", input)
		}
	}
}
