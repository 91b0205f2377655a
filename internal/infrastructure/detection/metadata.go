package detection

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/meridiancde/nmtc-backend/internal/core/domain"
)

// Type-specific presence probes. Only four of the eight types carry an extra
// block; the other four intentionally have none.
var (
	reQEIAmount        = regexp.MustCompile(`(?i)qei.*amount`)
	reCompliancePeriod = regexp.MustCompile(`(?i)7.*year.*compliance`)
	reRecapture        = regexp.MustCompile(`(?i)recapture`)
	reCDFIFund         = regexp.MustCompile(`(?i)cdfi.*fund`)

	rePrincipalAmount = regexp.MustCompile(`(?i)principal.*amount`)
	reInterestRate    = regexp.MustCompile(`(?i)interest.*rate`)
	reMaturityDate    = regexp.MustCompile(`(?i)maturity.*date`)
	reQALICBTests     = regexp.MustCompile(`(?i)(?:70%|40%).*test`)
	reSecurity        = regexp.MustCompile(`(?i)security|collateral`)

	reCensusTract         = regexp.MustCompile(`(?i)census.*tract`)
	reIncomeTest          = regexp.MustCompile(`(?i)70%.*income`)
	rePropertyTest        = regexp.MustCompile(`(?i)40%.*property`)
	reCertificationPeriod = regexp.MustCompile(`(?i)certification.*period`)
	reSubstantiallyAll    = regexp.MustCompile(`(?i)substantially.*all`)

	reBalanceSheet    = regexp.MustCompile(`(?i)balance.*sheet`)
	reIncomeStatement = regexp.MustCompile(`(?i)income.*statement`)
	reCashFlow        = regexp.MustCompile(`(?i)cash.*flow`)
	reAuditOpinion    = regexp.MustCompile(`(?i)(?:audit|opinion|independent)`)
	reFiscalYear      = regexp.MustCompile(`(?i)(?:fiscal.*year|year.*ended)`)
)

// extractMetadata builds the structured metadata bundle for the winning type.
// A failure in any sub-extraction degrades to an error-flagged bundle instead
// of aborting the classification.
func (c *Classifier) extractMetadata(text string, docType domain.DocumentType, filename string) (meta domain.DetectionMetadata) {
	meta = domain.DetectionMetadata{
		DetectedAt:      time.Now().UTC(),
		Filename:        filename,
		DocumentType:    docType,
		TextLength:      len(text),
		ComplianceTerms: []domain.ComplianceTerm{},
	}

	defer func() {
		if r := recover(); r != nil {
			meta.ClassificationFailed = true
			meta.FailureReason = fmt.Sprintf("metadata extraction: %v", r)
		}
	}()

	meta.Fields = c.extractKeyFields(text)
	meta.Structure = c.checkStructure(text)
	meta.ComplianceTerms = c.findComplianceTerms(text)

	switch docType {
	case domain.TypeAllocationAgreement:
		meta.Allocation = &domain.AllocationDetails{
			HasQEIAmount:        reQEIAmount.MatchString(text),
			HasCompliancePeriod: reCompliancePeriod.MatchString(text),
			HasRecaptureTerms:   reRecapture.MatchString(text),
			MentionsCDFIFund:    reCDFIFund.MatchString(text),
		}
	case domain.TypeQLICILoan:
		meta.Loan = &domain.LoanDetails{
			HasPrincipalAmount:    rePrincipalAmount.MatchString(text),
			HasInterestRate:       reInterestRate.MatchString(text),
			HasMaturityDate:       reMaturityDate.MatchString(text),
			MentionsQALICBTests:   reQALICBTests.MatchString(text),
			HasSecurityProvisions: reSecurity.MatchString(text),
		}
	case domain.TypeQALICBCertification:
		meta.Certification = &domain.CertificationDetails{
			HasCensusTract:           reCensusTract.MatchString(text),
			MentionsIncomeTest:       reIncomeTest.MatchString(text),
			MentionsPropertyTest:     rePropertyTest.MatchString(text),
			HasCertificationPeriod:   reCertificationPeriod.MatchString(text),
			MentionsSubstantiallyAll: reSubstantiallyAll.MatchString(text),
		}
	case domain.TypeFinancialStatement:
		meta.Financial = &domain.FinancialDetails{
			HasBalanceSheet:    reBalanceSheet.MatchString(text),
			HasIncomeStatement: reIncomeStatement.MatchString(text),
			HasCashFlow:        reCashFlow.MatchString(text),
			HasAuditOpinion:    reAuditOpinion.MatchString(text),
			MentionsFiscalYear: reFiscalYear.MatchString(text),
		}
	}

	return meta
}

// extractKeyFields collects the five field categories. Matches are trimmed,
// set-deduplicated, and sorted so repeated runs produce identical output.
func (c *Classifier) extractKeyFields(text string) domain.ExtractedFields {
	var fields domain.ExtractedFields

	for _, category := range fieldCategoryOrder {
		seen := make(map[string]struct{})
		var values []string

		for _, re := range c.registry.fields[category] {
			for _, m := range re.FindAllStringSubmatch(text, -1) {
				value := m[0]
				if re.NumSubexp() > 0 && len(m) > 1 {
					value = m[1]
				}
				value = strings.TrimSpace(value)
				if value == "" {
					continue
				}
				if _, dup := seen[value]; dup {
					continue
				}
				seen[value] = struct{}{}
				values = append(values, value)
			}
		}
		if len(values) == 0 {
			continue
		}
		sort.Strings(values)

		switch category {
		case "dates":
			fields.Dates = values
		case "amounts":
			fields.Amounts = values
		case "percentages":
			fields.Percentages = values
		case "entities":
			fields.Entities = values
		case "locations":
			fields.Locations = values
		}
	}
	return fields
}

func (c *Classifier) checkStructure(text string) domain.StructureIndicators {
	has := func(name string) bool {
		re, ok := c.registry.structure[name]
		return ok && re.MatchString(text)
	}
	return domain.StructureIndicators{
		HasSchedules:        has("has_schedules"),
		HasExhibits:         has("has_exhibits"),
		HasSignatures:       has("has_signatures"),
		HasNotarization:     has("has_notarization"),
		HasWitness:          has("has_witness"),
		HasFinancialTables:  has("has_financial_tables"),
		HasLegalDisclaimers: has("has_legal_disclaimers"),
		MultiParty:          has("multi_party"),
	}
}

func (c *Classifier) findComplianceTerms(text string) []domain.ComplianceTerm {
	found := []domain.ComplianceTerm{}
	for _, ct := range c.registry.terms {
		locs := ct.re.FindAllStringIndex(text, -1)
		if len(locs) == 0 {
			continue
		}
		positions := make([]int, 0, len(locs))
		for _, loc := range locs {
			positions = append(positions, loc[0])
		}
		found = append(found, domain.ComplianceTerm{
			Category:  ct.category,
			Term:      ct.term,
			Count:     len(locs),
			Positions: positions,
		})
	}
	return found
}
