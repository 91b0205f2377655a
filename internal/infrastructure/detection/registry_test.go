package detection

import (
	"sort"
	"strings"
	"testing"

	"github.com/meridiancde/nmtc-backend/internal/core/domain"
)

func TestNewRegistryCompilesCatalogue(t *testing.T) {
	reg, err := NewRegistry()
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}

	types := reg.AllTypes()
	wantOrder := []domain.DocumentType{
		domain.TypeAllocationAgreement,
		domain.TypeQLICILoan,
		domain.TypeQALICBCertification,
		domain.TypeCommunityBenefits,
		domain.TypeAnnualComplianceReport,
		domain.TypeFinancialStatement,
		domain.TypePromissoryNote,
		domain.TypeInsurance,
	}
	if len(types) != len(wantOrder) {
		t.Fatalf("got %d types, want %d", len(types), len(wantOrder))
	}
	for i, docType := range wantOrder {
		if types[i] != docType {
			t.Fatalf("type %d = %s, want %s", i, types[i], docType)
		}
	}

	for _, docType := range types {
		if len(reg.PatternsFor(docType)) == 0 {
			t.Fatalf("no patterns compiled for %s", docType)
		}
	}
}

func TestRegistryDefaults(t *testing.T) {
	reg, err := NewRegistry()
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}

	th := reg.Thresholds()
	if th.High != 0.7 || th.Medium != 0.4 || th.Low != 0.2 {
		t.Fatalf("unexpected thresholds: %+v", th)
	}
	if w := reg.Weight(categoryTitle); w != 0.4 {
		t.Fatalf("title weight = %v, want 0.4", w)
	}
	if w := reg.Weight(categoryKeyTerms); w != 0.3 {
		t.Fatalf("key terms weight = %v, want 0.3", w)
	}
	if w := reg.Weight("never_registered"); w != defaultCategoryWeight {
		t.Fatalf("fallback weight = %v, want %v", w, defaultCategoryWeight)
	}
}

func TestCategoriesForIsSorted(t *testing.T) {
	reg, err := NewRegistry()
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}

	for _, docType := range reg.AllTypes() {
		categories := reg.CategoriesFor(docType)
		if len(categories) == 0 {
			t.Fatalf("no categories for %s", docType)
		}
		if !sort.StringsAreSorted(categories) {
			t.Fatalf("categories for %s not sorted: %v", docType, categories)
		}
	}
}

func TestSupportedTypesDescribesEveryType(t *testing.T) {
	reg, err := NewRegistry()
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}

	described := reg.SupportedTypes()
	if len(described) != 8 {
		t.Fatalf("got %d descriptions, want 8", len(described))
	}
	for _, d := range described {
		if d.Type == domain.TypeUnknown {
			t.Fatal("unknown listed as a supported type")
		}
		if d.Name == "" || d.Description == "" {
			t.Fatalf("incomplete description for %s: %+v", d.Type, d)
		}
	}
}

func TestRegistryOverridesApplied(t *testing.T) {
	overrides := strings.NewReader(`
weights:
  title_patterns: 0.5
thresholds:
  high: 0.8
  medium: 0.5
  low: 0.3
`)
	reg, err := NewRegistryWithOverrides(overrides)
	if err != nil {
		t.Fatalf("NewRegistryWithOverrides: %v", err)
	}

	if w := reg.Weight(categoryTitle); w != 0.5 {
		t.Fatalf("title weight = %v, want 0.5", w)
	}
	// Untouched weights keep their defaults.
	if w := reg.Weight(categoryKeyTerms); w != 0.3 {
		t.Fatalf("key terms weight = %v, want 0.3", w)
	}
	th := reg.Thresholds()
	if th.High != 0.8 || th.Medium != 0.5 || th.Low != 0.3 {
		t.Fatalf("unexpected thresholds: %+v", th)
	}
}

func TestRegistryOverridesValidation(t *testing.T) {
	cases := []struct {
		name string
		yaml string
	}{
		{"weight above one", "weights:\n  title_patterns: 1.5\n"},
		{"negative weight", "weights:\n  key_terms: -0.1\n"},
		{"inverted thresholds", "thresholds:\n  high: 0.3\n  medium: 0.5\n  low: 0.2\n"},
		{"zero low threshold", "thresholds:\n  high: 0.7\n  medium: 0.4\n  low: 0\n"},
		{"malformed yaml", "weights: [not, a, map]\n"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := NewRegistryWithOverrides(strings.NewReader(tc.yaml)); err == nil {
				t.Fatal("expected an error")
			}
		})
	}
}

func TestConfidenceLevelLabels(t *testing.T) {
	reg, err := NewRegistry()
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}

	cases := []struct {
		confidence float64
		wantPrefix string
	}{
		{0.85, "High"},
		{0.70, "High"},
		{0.55, "Medium"},
		{0.40, "Medium"},
		{0.25, "Low"},
		{0.20, "Low"},
		{0.10, "Very Low"},
	}
	for _, tc := range cases {
		got := reg.ConfidenceLevel(tc.confidence)
		if !strings.HasPrefix(got, tc.wantPrefix) {
			t.Fatalf("ConfidenceLevel(%v) = %q, want prefix %q", tc.confidence, got, tc.wantPrefix)
		}
	}
}
