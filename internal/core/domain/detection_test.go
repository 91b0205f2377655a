package domain

import "testing"

func TestParseDocumentType(t *testing.T) {
	valid := []DocumentType{
		TypeAllocationAgreement, TypeQLICILoan, TypeQALICBCertification,
		TypeCommunityBenefits, TypeAnnualComplianceReport,
		TypeFinancialStatement, TypePromissoryNote, TypeInsurance,
	}
	for _, dt := range valid {
		got, ok := ParseDocumentType(string(dt))
		if !ok || got != dt {
			t.Fatalf("ParseDocumentType(%q) = %v, %v", dt, got, ok)
		}
	}

	for _, raw := range []string{"mortgage", "unknown", "", "Allocation Agreement"} {
		if got, ok := ParseDocumentType(raw); ok || got != TypeUnknown {
			t.Fatalf("ParseDocumentType(%q) = %v, %v, want unknown, false", raw, got, ok)
		}
	}
}

func TestDisplayName(t *testing.T) {
	cases := []struct {
		in   DocumentType
		want string
	}{
		{TypeAllocationAgreement, "Allocation Agreement"},
		{TypeQLICILoan, "Qlici Loan"},
		{TypePromissoryNote, "Promissory Note"},
		{TypeCommunityBenefits, "Cba"},
		{TypeUnknown, "Unknown"},
	}
	for _, tc := range cases {
		if got := tc.in.DisplayName(); got != tc.want {
			t.Fatalf("DisplayName(%s) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestWrapErrorKinds(t *testing.T) {
	err := WrapError(ErrInvalidInput, "confirm document type", ErrDocumentNotFound)
	if !IsKind(err, ErrInvalidInput) {
		t.Fatal("expected invalid input kind")
	}
	if !IsKind(err, ErrDocumentNotFound) {
		t.Fatal("expected wrapped cause to survive")
	}
	if IsKind(err, ErrTemporary) {
		t.Fatal("unexpected temporary kind")
	}
	if WrapError(ErrTemporary, "noop", nil) != nil {
		t.Fatal("nil cause must stay nil")
	}
}
