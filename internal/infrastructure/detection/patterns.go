package detection

import "github.com/meridiancde/nmtc-backend/internal/core/domain"

// Pattern category names shared across document types. Each category carries
// one scoring weight regardless of which type declares it.
const (
	categoryTitle         = "title_patterns"
	categoryKeyTerms      = "key_terms"
	categoryStructural    = "structural_patterns"
	categoryFinancial     = "financial_patterns"
	categoryCertification = "certification_patterns"
	categoryCommitment    = "commitment_patterns"
	categoryReporting     = "reporting_patterns"
	categoryLegal         = "legal_patterns"
	categoryInsurance     = "insurance_patterns"
)

// typeOrder pins registry iteration order. Classification tie-breaks resolve
// to the first type in this list, so the order is part of the contract.
var typeOrder = []domain.DocumentType{
	domain.TypeAllocationAgreement,
	domain.TypeQLICILoan,
	domain.TypeQALICBCertification,
	domain.TypeCommunityBenefits,
	domain.TypeAnnualComplianceReport,
	domain.TypeFinancialStatement,
	domain.TypePromissoryNote,
	domain.TypeInsurance,
}

var documentPatterns = map[domain.DocumentType]map[string][]string{
	domain.TypeAllocationAgreement: {
		categoryTitle: {
			`allocation\s+agreement`,
			`new\s+markets\s+tax\s+credit\s+allocation\s+agreement`,
			`nmtc\s+allocation\s+agreement`,
			`tax\s+credit\s+allocation\s+agreement`,
		},
		categoryKeyTerms: {
			`qualified\s+equity\s+investment`,
			`qei\s+amount`,
			`cde\s+allocation`,
			`cdfi\s+fund`,
			`allocation\s+amount`,
			`7\s+year\s+compliance\s+period`,
			`recapture\s+event`,
			`qualified\s+low-income\s+community\s+investment`,
			`qlici`,
		},
		categoryStructural: {
			`section\s+\d+(\.\d+)*\.\s*qualified\s+equity\s+investment`,
			`schedule\s+[a-zA-Z]\s*-\s*allocation\s+details`,
			`exhibit\s+[a-zA-Z]\s*-.*allocation`,
			`compliance\s+period\s+begins`,
			`initial\s+investment\s+date`,
		},
	},

	domain.TypeQLICILoan: {
		categoryTitle: {
			`qualified\s+low-income\s+community\s+investment\s+loan\s+agreement`,
			`qlici\s+loan\s+agreement`,
			`qualified\s+low.income\s+community\s+investment`,
			`qlici\s+loan\s+and\s+security\s+agreement`,
		},
		categoryKeyTerms: {
			`qualified\s+active\s+low-income\s+community\s+business`,
			`qalicb`,
			`substantially\s+all\s+test`,
			`70%.*income\s+test`,
			`40%.*property\s+test`,
			`qualified\s+low-income\s+community\s+investment`,
			`qlici`,
			`loan\s+principal`,
			`interest\s+rate`,
			`maturity\s+date`,
		},
		categoryFinancial: {
			`\$[\d,]+\.?\d*\s+principal\s+amount`,
			`\d+(\.\d+)?%\s+per\s+annum`,
			`interest.*rate.*\d+(\.\d+)?%`,
			`loan\s+amount.*\$[\d,]+`,
			`principal.*\$[\d,]+`,
			`maturity.*\d{1,2}/\d{1,2}/\d{4}`,
		},
	},

	domain.TypeQALICBCertification: {
		categoryTitle: {
			`qualified\s+active\s+low-income\s+community\s+business\s+certification`,
			`qalicb\s+certification`,
			`qalicb\s+certificate`,
			`qualified\s+active\s+low.income\s+community\s+business`,
		},
		categoryKeyTerms: {
			`substantially\s+all\s+test`,
			`qualified\s+business`,
			`low-income\s+community`,
			`census\s+tract`,
			`median\s+family\s+income`,
			`poverty\s+rate`,
			`qualifying\s+business\s+activities`,
			`40%.*property\s+test`,
			`70%.*income\s+test`,
		},
		categoryCertification: {
			`hereby\s+certifies?\s+that`,
			`certification\s+is\s+valid`,
			`certification\s+period`,
			`effective\s+date\s+of\s+certification`,
			`this\s+certification\s+shall\s+remain`,
		},
	},

	domain.TypeCommunityBenefits: {
		categoryTitle: {
			`community\s+benefits?\s+agreement`,
			`community\s+development\s+agreement`,
			`cba`,
			`community\s+impact\s+agreement`,
		},
		categoryKeyTerms: {
			`community\s+benefits?`,
			`local\s+hiring`,
			`job\s+creation`,
			`workforce\s+development`,
			`affordable\s+housing`,
			`community\s+impact`,
			`local\s+procurement`,
			`minority.*business\s+enterprise`,
			`disadvantaged\s+business\s+enterprise`,
		},
		categoryCommitment: {
			`agrees?\s+to\s+provide`,
			`commits?\s+to`,
			`shall\s+ensure`,
			`minimum\s+of\s+\d+%`,
			`target\s+of\s+\d+%`,
			`shall\s+hire\s+at\s+least`,
		},
	},

	domain.TypeAnnualComplianceReport: {
		categoryTitle: {
			`annual\s+compliance\s+report`,
			`nmtc\s+compliance\s+report`,
			`annual\s+nmtc\s+report`,
			`compliance\s+monitoring\s+report`,
		},
		categoryKeyTerms: {
			`compliance\s+period`,
			`qualified\s+equity\s+investments?`,
			`substantially\s+all\s+test`,
			`qalicb\s+status`,
			`community\s+impact\s+metrics`,
			`jobs\s+created`,
			`jobs\s+retained`,
			`recapture\s+event`,
			`non-compliance`,
		},
		categoryReporting: {
			`for\s+the\s+year\s+ended`,
			`reporting\s+period`,
			`as\s+of\s+\w+\s+\d{1,2},?\s+\d{4}`,
			`annual\s+certification`,
			`compliance\s+status`,
		},
	},

	domain.TypeFinancialStatement: {
		categoryTitle: {
			`financial\s+statements?`,
			`audited\s+financial\s+statements?`,
			`balance\s+sheet`,
			`income\s+statement`,
			`statement\s+of.*operations`,
			`cash\s+flow\s+statement`,
		},
		categoryKeyTerms: {
			`assets`,
			`liabilities`,
			`equity`,
			`revenue`,
			`expenses`,
			`net\s+income`,
			`cash\s+flows?`,
			`operating\s+activities`,
			`financing\s+activities`,
			`investing\s+activities`,
		},
		categoryFinancial: {
			`\$\s*[\d,]+\.?\d*\s*\(\d+\)`,
			`total\s+assets.*\$[\d,]+`,
			`total\s+liabilities.*\$[\d,]+`,
			`net\s+income.*\$[\d,]+`,
			`for\s+the\s+years?\s+ended`,
			`december\s+31,\s+\d{4}`,
		},
	},

	domain.TypePromissoryNote: {
		categoryTitle: {
			`promissory\s+note`,
			`secured\s+promissory\s+note`,
			`unsecured\s+promissory\s+note`,
		},
		categoryKeyTerms: {
			`principal\s+sum`,
			`interest\s+rate`,
			`maturity\s+date`,
			`maker`,
			`payee`,
			`payment\s+terms`,
			`default`,
			`acceleration`,
			`collateral`,
		},
		categoryLegal: {
			`for\s+value\s+received`,
			`hereby\s+promises?\s+to\s+pay`,
			`on\s+demand\s+or`,
			`with\s+interest\s+at`,
			`event\s+of\s+default`,
		},
	},

	domain.TypeInsurance: {
		categoryTitle: {
			`certificate\s+of\s+insurance`,
			`insurance\s+policy`,
			`evidence\s+of\s+insurance`,
		},
		categoryKeyTerms: {
			`insured`,
			`insurer`,
			`policy\s+number`,
			`coverage\s+limits?`,
			`effective\s+date`,
			`expiration\s+date`,
			`premium`,
			`deductible`,
		},
		categoryInsurance: {
			`policy\s+#?\s*[\w\d-]+`,
			`limits?.*\$[\d,]+`,
			`effective.*\d{1,2}/\d{1,2}/\d{4}`,
			`expires?.*\d{1,2}/\d{1,2}/\d{4}`,
		},
	},
}

// defaultScoringWeights are the per-category aggregation weights. A category
// missing from this table contributes with weight 0.1.
var defaultScoringWeights = map[string]float64{
	categoryTitle:         0.4,
	categoryKeyTerms:      0.3,
	categoryStructural:    0.2,
	categoryFinancial:     0.15,
	categoryCertification: 0.15,
	categoryCommitment:    0.15,
	categoryReporting:     0.15,
	categoryLegal:         0.15,
	categoryInsurance:     0.15,
}

const defaultCategoryWeight = 0.1

// fieldCategory names map onto domain.ExtractedFields. Patterns with a
// capture group contribute group 1, otherwise the whole match.
var keyFieldPatterns = map[string][]string{
	"dates": {
		`(?:effective|start|begin|commencement)\s+date[:\s]*(\d{1,2}[/\-]\d{1,2}[/\-]\d{4})`,
		`(?:maturity|expiration|end)\s+date[:\s]*(\d{1,2}[/\-]\d{1,2}[/\-]\d{4})`,
		`(?:initial|first)\s+investment\s+date[:\s]*(\d{1,2}[/\-]\d{1,2}[/\-]\d{4})`,
		`compliance\s+period\s+begins?[:\s]*(\d{1,2}[/\-]\d{1,2}[/\-]\d{4})`,
	},
	"amounts": {
		`(?:allocation|qei)\s+amount[:\s]*\$?([\d,]+\.?\d*)`,
		`(?:loan|principal)\s+amount[:\s]*\$?([\d,]+\.?\d*)`,
		`total\s+(?:allocation|investment)[:\s]*\$?([\d,]+\.?\d*)`,
	},
	"percentages": {
		`interest\s+rate[:\s]*([\d.]+)%`,
		`(\d{1,2}(?:\.\d+)?)%\s+per\s+annum`,
		`substantially\s+all.*(\d{1,2})%`,
	},
	"entities": {
		`(?:cde|community\s+development\s+entity)[:\s]*([A-Z].*?)(?:\n|$)`,
		`(?:qalicb|qualified.*business)[:\s]*([A-Z].*?)(?:\n|$)`,
		`(?:borrower|maker)[:\s]*([A-Z].*?)(?:\n|$)`,
		`(?:lender|payee)[:\s]*([A-Z].*?)(?:\n|$)`,
	},
	"locations": {
		`census\s+tract[:\s]*(\d+(?:\.\d+)?)`,
		`(?:state|located\s+in)[:\s]*([A-Z]{2})\b`,
		`(?:city|municipality)[:\s]*([A-Z][a-z]+(?:\s+[A-Z][a-z]+)*)`,
	},
}

var fieldCategoryOrder = []string{"dates", "amounts", "percentages", "entities", "locations"}

var structurePatterns = map[string]string{
	"has_schedules":         `schedule\s+[a-zA-Z]\s*[-:]`,
	"has_exhibits":          `exhibit\s+[a-zA-Z]\s*[-:]`,
	"has_signatures":        `(?:signature|signed|executed).*(?:date|this)`,
	"has_notarization":      `notary\s+public|acknowledged\s+before\s+me`,
	"has_witness":           `witness.*signature|in\s+the\s+presence\s+of`,
	"has_financial_tables":  `(?:total|subtotal).*\$[\d,]+\.?\d*`,
	"has_legal_disclaimers": `(?:disclaimer|limitation\s+of\s+liability)`,
	"multi_party":           `(?:party|parties)\s+(?:of\s+the\s+)?(?:first|second|third)\s+part`,
}

var complianceTermCategories = []string{"nmtc_regulations", "financial_terms", "geographic_terms"}

var complianceTerms = map[string][]string{
	"nmtc_regulations": {
		"section 45d", "treasury regulation", "cdfi fund", "notice 2004-83",
		"revenue ruling", "nmtc program", "qualified equity investment",
		"recapture event", "compliance period",
	},
	"financial_terms": {
		"substantially all test", "working capital", "tangible property",
		"qualified business", "safe harbor", "arm's length", "fair market value",
	},
	"geographic_terms": {
		"low-income community", "census tract", "median family income",
		"poverty rate", "non-metropolitan area", "targeted population",
	},
}

var typeDescriptions = map[domain.DocumentType]string{
	domain.TypeAllocationAgreement:    "NMTC allocation agreement from CDE to investor",
	domain.TypeQLICILoan:              "Qualified Low-Income Community Investment loan agreement",
	domain.TypeQALICBCertification:    "Qualified Active Low-Income Community Business certification",
	domain.TypeCommunityBenefits:      "Community Benefits Agreement with local commitments",
	domain.TypeAnnualComplianceReport: "Annual NMTC compliance monitoring report",
	domain.TypeFinancialStatement:     "Audited financial statements",
	domain.TypePromissoryNote:         "Promissory note or loan document",
	domain.TypeInsurance:              "Insurance certificate or policy document",
}
