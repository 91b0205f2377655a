package detection

import (
	"strings"
	"testing"

	"github.com/meridiancde/nmtc-backend/internal/core/domain"
)

func TestBuildReasoning(t *testing.T) {
	c := newTestClassifier(t)

	matches := []domain.PatternMatch{
		{PatternType: categoryTitle, Confidence: 0.94},
		{PatternType: categoryTitle, Confidence: 0.84},
		{PatternType: categoryKeyTerms, Confidence: 0.75},
		{PatternType: categoryFinancial, Confidence: 0.45},
	}
	got := c.buildReasoning(domain.TypeQLICILoan, 0.85, matches)

	if !strings.HasPrefix(got, "Document classified as Qlici Loan with 85.0% confidence.") {
		t.Fatalf("unexpected opening: %q", got)
	}
	if !strings.Contains(got, "Confidence Level: High - Very confident in document type classification") {
		t.Fatalf("missing confidence label: %q", got)
	}
	// Duplicate title matches collapse to one named indicator.
	if !strings.Contains(got, "Strong indicators found: title_patterns, key_terms") {
		t.Fatalf("missing strong indicators: %q", got)
	}
	if !strings.Contains(got, "Supporting indicators: financial_patterns") {
		t.Fatalf("missing supporting indicators: %q", got)
	}
	if !strings.Contains(got, "QLICI loan terms and QALICB compliance requirements detected.") {
		t.Fatalf("missing type note: %q", got)
	}
}

func TestBuildReasoningWithoutTypeNote(t *testing.T) {
	c := newTestClassifier(t)

	matches := []domain.PatternMatch{
		{PatternType: categoryTitle, Confidence: 0.9},
	}
	got := c.buildReasoning(domain.TypePromissoryNote, 0.45, matches)

	if !strings.HasPrefix(got, "Document classified as Promissory Note with 45.0% confidence.") {
		t.Fatalf("unexpected opening: %q", got)
	}
	if !strings.Contains(got, "Medium - Moderately confident") {
		t.Fatalf("missing confidence label: %q", got)
	}
	if strings.Contains(got, "Supporting indicators:") {
		t.Fatalf("unexpected supporting indicators: %q", got)
	}
	// Only four types carry a closing note; this one should end after the
	// indicator lists.
	if strings.Contains(got, "identified.") || strings.Contains(got, "detected.") || strings.Contains(got, "found.") {
		t.Fatalf("unexpected type note: %q", got)
	}
}
