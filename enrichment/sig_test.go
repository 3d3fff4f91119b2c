package enrichment

import (
	"reflect"
	"strings"
	"testing"
)

func TestGenerateTabletAntibiotic(t *testing.T) {
	g := NewSigGenerator(testRules(t))

	sigs := g.Generate("Tablet", "500 MG", "Amoxicillin 500 MG Oral Tablet", "SCD")
	if len(sigs) == 0 {
		t.Fatal("expected instructions for a tablet")
	}

	if !strings.HasPrefix(sigs[0], "Take") {
		t.Errorf("primary instruction %q should start with Take", sigs[0])
	}
	if !containsString(sigs, "Take until completely finished even if feeling better") {
		t.Errorf("antibiotic clause missing from %v", sigs)
	}
	if !containsString(sigs, "Take 1 tablet (500 MG) by mouth as directed") {
		t.Errorf("strength variant missing from %v", sigs)
	}
}

func TestGenerateOphthalmicSolution(t *testing.T) {
	g := NewSigGenerator(testRules(t))

	sigs := g.Generate("Solution", "", "Timolol Ophthalmic Solution", "SCD")
	if len(sigs) == 0 {
		t.Fatal("expected instructions for an ophthalmic solution")
	}
	if !strings.HasPrefix(sigs[0], "Instill") {
		t.Errorf("primary instruction %q should start with Instill", sigs[0])
	}
}

func TestGenerateExtendedRelease(t *testing.T) {
	g := NewSigGenerator(testRules(t))

	sigs := g.Generate("Tablet", "", "Metoprolol ER 25 MG Oral Tablet", "SCD")
	if len(sigs) == 0 {
		t.Fatal("expected instructions for an extended release tablet")
	}
	if sigs[0] != "Take 1 tablet by mouth once daily" {
		t.Errorf("primary = %q, want once daily extended release template", sigs[0])
	}
	// The extended release rule carries no twice daily template
	if containsString(sigs, "Take 1 tablet by mouth twice daily with meals") {
		t.Errorf("immediate release template leaked into %v", sigs)
	}
}

func TestReleaseMarkerMatchesWholeWordsOnly(t *testing.T) {
	g := NewSigGenerator(testRules(t))

	// "fever" must not trigger the "er" release marker
	sigs := g.Generate("Tablet", "", "Fever Relief Oral Tablet", "SCD")
	if len(sigs) == 0 {
		t.Fatal("expected instructions")
	}
	if !containsString(sigs, "Take 1 tablet by mouth twice daily with meals") {
		t.Errorf("expected plain tablet templates, got %v", sigs)
	}
}

func TestGenerateBrandNote(t *testing.T) {
	g := NewSigGenerator(testRules(t))

	sigs := g.Generate("Tablet", "", "Lipitor", "BN")
	if len(sigs) == 0 {
		t.Fatal("expected instructions for a brand name")
	}
	last := sigs[len(sigs)-1]
	if !strings.HasPrefix(last, "Brand name medication") {
		t.Errorf("last instruction = %q, want brand note", last)
	}
}

func TestGenerateControlledSubstance(t *testing.T) {
	g := NewSigGenerator(testRules(t))

	sigs := g.Generate("Tablet", "", "Oxycodone 5 MG Oral Tablet", "SCD")
	if !containsString(sigs, "Controlled substance - take exactly as prescribed") {
		t.Errorf("controlled substance caution missing from %v", sigs)
	}
}

func TestGenerateUnknownDoseForm(t *testing.T) {
	g := NewSigGenerator(testRules(t))

	if sigs := g.Generate("", "", "Mystery Product", "SCD"); sigs != nil {
		t.Errorf("expected no instructions without a dose form, got %v", sigs)
	}
}

func TestGenerateFallback(t *testing.T) {
	g := NewSigGenerator(testRules(t))

	sigs := g.Generate("Kit", "", "Surgical Prep Kit", "SCD")
	if len(sigs) == 0 {
		t.Fatal("known dose form must always yield at least one instruction")
	}
	if sigs[0] != "Use as directed by prescriber" {
		t.Errorf("primary = %q, want generic fallback", sigs[0])
	}
}

func TestGenerateIsDeterministic(t *testing.T) {
	g := NewSigGenerator(testRules(t))

	first := g.Generate("Tablet", "500 MG", "Amoxicillin 500 MG Oral Tablet", "SCD")
	second := g.Generate("Tablet", "500 MG", "Amoxicillin 500 MG Oral Tablet", "SCD")
	if !reflect.DeepEqual(first, second) {
		t.Errorf("repeated generation differed:\n%v\n%v", first, second)
	}
}

func TestCategoryTags(t *testing.T) {
	g := NewSigGenerator(testRules(t))

	tags := g.CategoryTags("Amoxicillin 500 MG Oral Tablet")
	if !reflect.DeepEqual(tags, []string{"antibiotic"}) {
		t.Errorf("tags = %v, want [antibiotic]", tags)
	}

	if tags := g.CategoryTags("Distilled Water"); tags != nil {
		t.Errorf("expected no tags, got %v", tags)
	}
}

func containsString(list []string, want string) bool {
	for _, s := range list {
		if s == want {
			return true
		}
	}
	return false
}
