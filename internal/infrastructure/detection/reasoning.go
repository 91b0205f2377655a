package detection

import (
	"fmt"
	"strings"

	"github.com/meridiancde/nmtc-backend/internal/core/domain"
)

// ConfidenceLevel maps a confidence value to the qualitative narrative label.
// These bands describe classification quality; workflow gating uses its own
// thresholds in the domain package.
func (r *Registry) ConfidenceLevel(confidence float64) string {
	t := r.thresholds
	switch {
	case confidence >= t.High:
		return "High - Very confident in document type classification"
	case confidence >= t.Medium:
		return "Medium - Moderately confident, some indicators present"
	case confidence >= t.Low:
		return "Low - Weak indicators, may need human review"
	default:
		return "Very Low - Insufficient indicators for reliable classification"
	}
}

var typeReasoningNotes = map[domain.DocumentType]string{
	domain.TypeAllocationAgreement: "Key NMTC allocation terms and structures identified.",
	domain.TypeQLICILoan:           "QLICI loan terms and QALICB compliance requirements detected.",
	domain.TypeQALICBCertification: "QALICB certification language and compliance tests found.",
	domain.TypeFinancialStatement:  "Financial statement structure and accounting terminology identified.",
}

// buildReasoning turns the winning type, score, and match list into the
// human-readable explanation stored with the result.
func (c *Classifier) buildReasoning(docType domain.DocumentType, confidence float64, matches []domain.PatternMatch) string {
	parts := []string{
		fmt.Sprintf("Document classified as %s with %.1f%% confidence.", docType.DisplayName(), confidence*100),
		"Confidence Level: " + c.registry.ConfidenceLevel(confidence),
	}

	var primary, secondary []string
	for _, m := range matches {
		if m.Confidence > primaryIndicatorFloor {
			primary = appendDistinct(primary, m.PatternType)
		} else {
			secondary = appendDistinct(secondary, m.PatternType)
		}
	}
	if len(primary) > 0 {
		parts = append(parts, "Strong indicators found: "+strings.Join(primary, ", "))
	}
	if len(secondary) > 0 {
		parts = append(parts, "Supporting indicators: "+strings.Join(secondary, ", "))
	}

	if note, ok := typeReasoningNotes[docType]; ok {
		parts = append(parts, note)
	}
	return strings.Join(parts, " ")
}

func appendDistinct(list []string, value string) []string {
	for _, v := range list {
		if v == value {
			return list
		}
	}
	return append(list, value)
}
