package detection

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/meridiancde/nmtc-backend/internal/core/domain"
)

const allocationText = `NEW MARKETS TAX CREDIT ALLOCATION AGREEMENT

This Allocation Agreement is entered into by the community development
entity. A qualified equity investment equal to the QEI amount shall be
reported to the CDFI Fund. The 7 year compliance period begins on the
initial investment date. Recapture event provisions apply throughout.`

const qliciLoanText = `QLICI LOAN AND SECURITY AGREEMENT

This qualified low-income community investment loan agreement provides
loan principal of $2,500,000 principal amount bearing an interest rate
of 5.25% per annum with a maturity date of 12/31/2032. The borrower is
a QALICB operating within the project area.`

const qalicbCertText = `QALICB CERTIFICATION

The undersigned hereby certifies that the business is a qualified
business located in census tract 4501.02 within a low-income community.
The 70% income test and the 40% property test are satisfied. This
certification shall remain in effect for the certification period.`

const cbaText = `COMMUNITY BENEFITS AGREEMENT

The developer agrees to provide local hiring and workforce development
programs. The developer commits to job creation through a minimum of 30%
local procurement and shall hire at least 25 neighborhood residents.
Affordable housing contributions reinforce the community impact goals.`

func newTestClassifier(t *testing.T) *Classifier {
	t.Helper()
	reg, err := NewRegistry()
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}
	return NewClassifier(reg)
}

func classify(t *testing.T, c *Classifier, text string) domain.DetectionResult {
	t.Helper()
	result, err := c.Classify(context.Background(), domain.DetectionRequest{
		DocumentID: "doc-1",
		Filename:   "upload.pdf",
		Text:       text,
	})
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}
	return result
}

func TestClassifyRecognizesDocumentTypes(t *testing.T) {
	c := newTestClassifier(t)

	cases := []struct {
		name string
		text string
		want domain.DocumentType
	}{
		{"allocation agreement", allocationText, domain.TypeAllocationAgreement},
		{"qlici loan", qliciLoanText, domain.TypeQLICILoan},
		{"qalicb certification", qalicbCertText, domain.TypeQALICBCertification},
		{"community benefits", cbaText, domain.TypeCommunityBenefits},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			result := classify(t, c, tc.text)
			if result.DocumentType != tc.want {
				t.Fatalf("detected %s, want %s (reasoning: %s)", result.DocumentType, tc.want, result.Reasoning)
			}
			if result.Confidence < 0 || result.Confidence > 1 {
				t.Fatalf("confidence out of range: %v", result.Confidence)
			}
			if result.Confidence < c.registry.Thresholds().Low {
				t.Fatalf("confidence %v below viability floor", result.Confidence)
			}
			if len(result.PrimaryIndicators)+len(result.SecondaryIndicators) == 0 {
				t.Fatal("expected at least one indicator")
			}
			if result.Reasoning == "" {
				t.Fatal("expected reasoning text")
			}

			switch tc.want {
			case domain.TypeAllocationAgreement:
				if result.Confidence < 0.4 {
					t.Fatalf("allocation confidence = %v, want >= 0.4", result.Confidence)
				}
				if result.Metadata.Allocation == nil || !result.Metadata.Allocation.HasQEIAmount {
					t.Fatalf("allocation metadata incomplete: %+v", result.Metadata.Allocation)
				}
			case domain.TypeQLICILoan:
				if len(result.PrimaryIndicators) == 0 {
					t.Fatal("expected primary indicators for qlici loan")
				}
				if result.Metadata.Loan == nil || !result.Metadata.Loan.HasPrincipalAmount {
					t.Fatalf("loan metadata incomplete: %+v", result.Metadata.Loan)
				}
			}
		})
	}
}

func TestClassifyShortTextReturnsUnknown(t *testing.T) {
	c := newTestClassifier(t)

	result := classify(t, c, "too short")
	if result.DocumentType != domain.TypeUnknown {
		t.Fatalf("detected %s, want unknown", result.DocumentType)
	}
	if result.Confidence != 0 {
		t.Fatalf("confidence = %v, want 0", result.Confidence)
	}
	if !result.Metadata.ClassificationFailed {
		t.Fatal("expected classification failure flag")
	}
	if result.Metadata.FailureReason != "insufficient text content for classification" {
		t.Fatalf("unexpected failure reason: %q", result.Metadata.FailureReason)
	}
	if want := "Document could not be classified: insufficient text content for classification"; result.Reasoning != want {
		t.Fatalf("reasoning = %q, want %q", result.Reasoning, want)
	}
}

func TestClassifyLowScoreReturnsUnknown(t *testing.T) {
	c := newTestClassifier(t)

	// Long enough to pass the length guard but free of any catalogue term.
	text := "The quick brown fox jumps over the lazy dog while humming a cheerful tune about warm afternoons in the park."
	result := classify(t, c, text)
	if result.DocumentType != domain.TypeUnknown {
		t.Fatalf("detected %s, want unknown", result.DocumentType)
	}
	if !strings.HasPrefix(result.Metadata.FailureReason, "low confidence score:") {
		t.Fatalf("unexpected failure reason: %q", result.Metadata.FailureReason)
	}
	if !strings.Contains(result.Reasoning, "low confidence score:") {
		t.Fatalf("unexpected reasoning: %q", result.Reasoning)
	}
}

func TestClassifyIsDeterministic(t *testing.T) {
	c := newTestClassifier(t)

	first := classify(t, c, allocationText)
	for i := 0; i < 3; i++ {
		again := classify(t, c, allocationText)
		if again.DocumentType != first.DocumentType {
			t.Fatalf("run %d: type %s, want %s", i, again.DocumentType, first.DocumentType)
		}
		if again.Confidence != first.Confidence {
			t.Fatalf("run %d: confidence %v, want %v", i, again.Confidence, first.Confidence)
		}
		if again.Reasoning != first.Reasoning {
			t.Fatalf("run %d: reasoning diverged", i)
		}
		if len(again.PrimaryIndicators) != len(first.PrimaryIndicators) {
			t.Fatalf("run %d: primary indicator count diverged", i)
		}
	}
}

func TestClassifySplitsIndicatorsByConfidence(t *testing.T) {
	c := newTestClassifier(t)

	result := classify(t, c, qliciLoanText)
	for _, m := range result.PrimaryIndicators {
		if m.Confidence <= primaryIndicatorFloor {
			t.Fatalf("primary indicator %q has confidence %v", m.MatchText, m.Confidence)
		}
	}
	for _, m := range result.SecondaryIndicators {
		if m.Confidence > primaryIndicatorFloor {
			t.Fatalf("secondary indicator %q has confidence %v", m.MatchText, m.Confidence)
		}
	}
}

func TestClassifyTieBreaksToRegistryOrder(t *testing.T) {
	c := newTestClassifier(t)

	// "qlici" is a key term for both the allocation agreement and the
	// QLICI loan, so this text scores the two types identically. An exact
	// tie must resolve to the type registered first.
	text := "qlici " + strings.Repeat("z", 100)
	result := classify(t, c, text)
	if result.DocumentType != domain.TypeAllocationAgreement {
		t.Fatalf("tie resolved to %s, want %s", result.DocumentType, domain.TypeAllocationAgreement)
	}
}

func TestClassifyHonorsContextCancellation(t *testing.T) {
	c := newTestClassifier(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.Classify(ctx, domain.DetectionRequest{Text: allocationText})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}
