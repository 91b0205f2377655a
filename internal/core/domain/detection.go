package domain

import (
	"strings"
	"time"
)

// DocumentType is the closed set of NMTC document classes. Extending it
// requires registering a pattern set alongside the new entry.
type DocumentType string

const (
	TypeAllocationAgreement    DocumentType = "allocation_agreement"
	TypeQLICILoan              DocumentType = "qlici_loan"
	TypeQALICBCertification    DocumentType = "qalicb_certification"
	TypeCommunityBenefits      DocumentType = "cba"
	TypeAnnualComplianceReport DocumentType = "annual_compliance_report"
	TypeFinancialStatement     DocumentType = "financial_statement"
	TypePromissoryNote         DocumentType = "promissory_note"
	TypeInsurance              DocumentType = "insurance"
	TypeUnknown                DocumentType = "unknown"
)

// ParseDocumentType validates a caller-supplied type value against the
// closed set. The unknown sentinel is not accepted as user input.
func ParseDocumentType(s string) (DocumentType, bool) {
	switch t := DocumentType(s); t {
	case TypeAllocationAgreement, TypeQLICILoan, TypeQALICBCertification,
		TypeCommunityBenefits, TypeAnnualComplianceReport,
		TypeFinancialStatement, TypePromissoryNote, TypeInsurance:
		return t, true
	default:
		return TypeUnknown, false
	}
}

// DisplayName renders the enum value for human-facing text
// (underscores to spaces, title case).
func (t DocumentType) DisplayName() string {
	words := strings.Split(string(t), "_")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

// PatternMatch is a single regex hit contributing to a classification.
type PatternMatch struct {
	PatternType string  `json:"pattern_type"`
	MatchText   string  `json:"match_text"`
	Confidence  float64 `json:"confidence"`
	Location    string  `json:"location"`
	Context     string  `json:"context"`
}

// DetectionRequest carries the classifier input. DocumentID and Filename are
// optional context for diagnostics and metadata.
type DetectionRequest struct {
	Text       string
	DocumentID string
	Filename   string
}

// DetectionResult is the immutable outcome of one classification call.
// Confidence is 0 exactly when DocumentType is unknown.
type DetectionResult struct {
	DocumentType        DocumentType      `json:"document_type"`
	Confidence          float64           `json:"confidence"`
	PrimaryIndicators   []PatternMatch    `json:"primary_indicators"`
	SecondaryIndicators []PatternMatch    `json:"secondary_indicators"`
	Metadata            DetectionMetadata `json:"metadata"`
	Reasoning           string            `json:"reasoning"`
}

// ExtractedFields holds the five key-field categories. Values are trimmed and
// deduplicated; empty categories are omitted from serialization.
type ExtractedFields struct {
	Dates       []string `json:"dates,omitempty"`
	Amounts     []string `json:"amounts,omitempty"`
	Percentages []string `json:"percentages,omitempty"`
	Entities    []string `json:"entities,omitempty"`
	Locations   []string `json:"locations,omitempty"`
}

type StructureIndicators struct {
	HasSchedules        bool `json:"has_schedules"`
	HasExhibits         bool `json:"has_exhibits"`
	HasSignatures       bool `json:"has_signatures"`
	HasNotarization     bool `json:"has_notarization"`
	HasWitness          bool `json:"has_witness"`
	HasFinancialTables  bool `json:"has_financial_tables"`
	HasLegalDisclaimers bool `json:"has_legal_disclaimers"`
	MultiParty          bool `json:"multi_party"`
}

// ComplianceTerm records one literal regulatory term found in the text.
type ComplianceTerm struct {
	Category  string `json:"category"`
	Term      string `json:"term"`
	Count     int    `json:"count"`
	Positions []int  `json:"positions"`
}

// DetectionMetadata is the typed replacement for the loosely shaped metadata
// blob: a common base plus at most one populated type-specific block. Only
// four of the eight types carry a block; the remaining four intentionally do
// not.
type DetectionMetadata struct {
	DetectedAt      time.Time           `json:"detection_timestamp"`
	Filename        string              `json:"filename,omitempty"`
	DocumentType    DocumentType        `json:"document_type,omitempty"`
	TextLength      int                 `json:"text_length,omitempty"`
	Fields          ExtractedFields     `json:"extracted_fields"`
	Structure       StructureIndicators `json:"structure_indicators"`
	ComplianceTerms []ComplianceTerm    `json:"compliance_terms"`

	Allocation    *AllocationDetails    `json:"allocation_specific,omitempty"`
	Loan          *LoanDetails          `json:"loan_specific,omitempty"`
	Certification *CertificationDetails `json:"certification_specific,omitempty"`
	Financial     *FinancialDetails     `json:"financial_specific,omitempty"`

	ClassificationFailed bool   `json:"classification_failed,omitempty"`
	FailureReason        string `json:"failure_reason,omitempty"`
}

type AllocationDetails struct {
	HasQEIAmount        bool `json:"has_qei_amount"`
	HasCompliancePeriod bool `json:"has_compliance_period"`
	HasRecaptureTerms   bool `json:"has_recapture_terms"`
	MentionsCDFIFund    bool `json:"mentions_cdfi_fund"`
}

type LoanDetails struct {
	HasPrincipalAmount    bool `json:"has_principal_amount"`
	HasInterestRate       bool `json:"has_interest_rate"`
	HasMaturityDate       bool `json:"has_maturity_date"`
	MentionsQALICBTests   bool `json:"mentions_qalicb_tests"`
	HasSecurityProvisions bool `json:"has_security_provisions"`
}

type CertificationDetails struct {
	HasCensusTract           bool `json:"has_census_tract"`
	MentionsIncomeTest       bool `json:"mentions_income_test"`
	MentionsPropertyTest     bool `json:"mentions_property_test"`
	HasCertificationPeriod   bool `json:"has_certification_period"`
	MentionsSubstantiallyAll bool `json:"mentions_substantially_all"`
}

type FinancialDetails struct {
	HasBalanceSheet    bool `json:"has_balance_sheet"`
	HasIncomeStatement bool `json:"has_income_statement"`
	HasCashFlow        bool `json:"has_cash_flow"`
	HasAuditOpinion    bool `json:"has_audit_opinion"`
	MentionsFiscalYear bool `json:"mentions_fiscal_year"`
}
