package detection

import (
	"reflect"
	"testing"

	"github.com/meridiancde/nmtc-backend/internal/core/domain"
)

func TestExtractKeyFields(t *testing.T) {
	c := newTestClassifier(t)

	text := `Effective Date: 01/15/2025
Maturity Date: 12/31/2032
Loan Amount: $2,500,000
Interest Rate: 5.25%
Borrower: Riverside Manufacturing LLC
Census Tract: 4501.02
Effective Date: 01/15/2025`

	fields := c.extractKeyFields(text)

	// Duplicated effective date collapses to one sorted entry.
	if want := []string{"01/15/2025", "12/31/2032"}; !reflect.DeepEqual(fields.Dates, want) {
		t.Fatalf("dates = %v, want %v", fields.Dates, want)
	}
	if want := []string{"2,500,000"}; !reflect.DeepEqual(fields.Amounts, want) {
		t.Fatalf("amounts = %v, want %v", fields.Amounts, want)
	}
	if want := []string{"5.25"}; !reflect.DeepEqual(fields.Percentages, want) {
		t.Fatalf("percentages = %v, want %v", fields.Percentages, want)
	}
	if want := []string{"Riverside Manufacturing LLC"}; !reflect.DeepEqual(fields.Entities, want) {
		t.Fatalf("entities = %v, want %v", fields.Entities, want)
	}
	if want := []string{"4501.02"}; !reflect.DeepEqual(fields.Locations, want) {
		t.Fatalf("locations = %v, want %v", fields.Locations, want)
	}
}

func TestExtractKeyFieldsEmptyText(t *testing.T) {
	c := newTestClassifier(t)

	fields := c.extractKeyFields("nothing of interest here")
	if fields.Dates != nil || fields.Amounts != nil || fields.Percentages != nil ||
		fields.Entities != nil || fields.Locations != nil {
		t.Fatalf("expected empty fields, got %+v", fields)
	}
}

func TestCheckStructure(t *testing.T) {
	c := newTestClassifier(t)

	text := `Schedule A - Allocation Details
Exhibit B: Form of Note
Acknowledged before me this day.
Total: $1,250,000`

	s := c.checkStructure(text)
	if !s.HasSchedules {
		t.Fatal("expected schedule indicator")
	}
	if !s.HasExhibits {
		t.Fatal("expected exhibit indicator")
	}
	if !s.HasNotarization {
		t.Fatal("expected notarization indicator")
	}
	if !s.HasFinancialTables {
		t.Fatal("expected financial table indicator")
	}
	if s.HasWitness || s.MultiParty || s.HasLegalDisclaimers {
		t.Fatalf("unexpected indicators set: %+v", s)
	}
}

func TestFindComplianceTerms(t *testing.T) {
	c := newTestClassifier(t)

	text := "Reported to the CDFI Fund. The CDFI Fund reviews census tract data."
	terms := c.findComplianceTerms(text)

	var cdfi *domain.ComplianceTerm
	var tract *domain.ComplianceTerm
	for i := range terms {
		switch terms[i].Term {
		case "cdfi fund":
			cdfi = &terms[i]
		case "census tract":
			tract = &terms[i]
		}
	}
	if cdfi == nil {
		t.Fatal("cdfi fund not found")
	}
	if cdfi.Category != "nmtc_regulations" {
		t.Fatalf("cdfi fund category = %s", cdfi.Category)
	}
	if cdfi.Count != 2 || len(cdfi.Positions) != 2 {
		t.Fatalf("cdfi fund count = %d positions = %v", cdfi.Count, cdfi.Positions)
	}
	if tract == nil {
		t.Fatal("census tract not found")
	}
	if tract.Category != "geographic_terms" || tract.Count != 1 {
		t.Fatalf("census tract = %+v", *tract)
	}
}

func TestExtractMetadataTypeSpecificBlocks(t *testing.T) {
	c := newTestClassifier(t)

	t.Run("allocation agreement", func(t *testing.T) {
		meta := c.extractMetadata(allocationText, domain.TypeAllocationAgreement, "alloc.pdf")
		if meta.Allocation == nil {
			t.Fatal("expected allocation details")
		}
		if meta.Loan != nil || meta.Certification != nil || meta.Financial != nil {
			t.Fatal("unexpected extra type blocks")
		}
		if !meta.Allocation.HasQEIAmount {
			t.Fatal("expected QEI amount probe to hit")
		}
		if !meta.Allocation.MentionsCDFIFund {
			t.Fatal("expected CDFI Fund probe to hit")
		}
		if !meta.Allocation.HasRecaptureTerms {
			t.Fatal("expected recapture probe to hit")
		}
	})

	t.Run("qlici loan", func(t *testing.T) {
		meta := c.extractMetadata(qliciLoanText, domain.TypeQLICILoan, "loan.pdf")
		if meta.Loan == nil {
			t.Fatal("expected loan details")
		}
		if !meta.Loan.HasPrincipalAmount || !meta.Loan.HasInterestRate || !meta.Loan.HasMaturityDate {
			t.Fatalf("loan probes missed: %+v", *meta.Loan)
		}
	})

	t.Run("qalicb certification", func(t *testing.T) {
		meta := c.extractMetadata(qalicbCertText, domain.TypeQALICBCertification, "cert.pdf")
		if meta.Certification == nil {
			t.Fatal("expected certification details")
		}
		if !meta.Certification.HasCensusTract || !meta.Certification.MentionsIncomeTest || !meta.Certification.MentionsPropertyTest {
			t.Fatalf("certification probes missed: %+v", *meta.Certification)
		}
	})

	t.Run("promissory note carries no extra block", func(t *testing.T) {
		meta := c.extractMetadata("Promissory note text for value received.", domain.TypePromissoryNote, "note.pdf")
		if meta.Allocation != nil || meta.Loan != nil || meta.Certification != nil || meta.Financial != nil {
			t.Fatal("unexpected type block for promissory note")
		}
	})
}

func TestExtractMetadataPopulatesEnvelope(t *testing.T) {
	c := newTestClassifier(t)

	meta := c.extractMetadata(cbaText, domain.TypeCommunityBenefits, "cba.pdf")
	if meta.Filename != "cba.pdf" {
		t.Fatalf("filename = %q", meta.Filename)
	}
	if meta.DocumentType != domain.TypeCommunityBenefits {
		t.Fatalf("document type = %s", meta.DocumentType)
	}
	if meta.TextLength != len(cbaText) {
		t.Fatalf("text length = %d, want %d", meta.TextLength, len(cbaText))
	}
	if meta.DetectedAt.IsZero() {
		t.Fatal("detected at not set")
	}
	if meta.ClassificationFailed {
		t.Fatalf("unexpected failure: %s", meta.FailureReason)
	}
	if meta.ComplianceTerms == nil {
		t.Fatal("compliance terms must be non-nil")
	}
}
