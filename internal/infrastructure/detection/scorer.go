package detection

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/meridiancde/nmtc-backend/internal/core/domain"
)

const baseMatchConfidence = 0.7

// categoryMultipliers adjust the base confidence by how discriminating a
// pattern category is. Title hits outweigh generic supporting categories.
var categoryMultipliers = map[string]float64{
	categoryTitle:         1.2,
	categoryKeyTerms:      1.0,
	categoryStructural:    0.9,
	categoryFinancial:     0.8,
	categoryCertification: 0.9,
	categoryCommitment:    0.8,
	categoryReporting:     0.8,
	categoryLegal:         0.8,
	categoryInsurance:     0.8,
}

const contextWindow = 100

// scoreDocumentType runs one type's full pattern set against the text.
// Every non-overlapping match is collected; per category only the best match
// contributes weight-scaled to the aggregate score, which is capped at 1.0.
func scoreDocumentType(reg *Registry, text string, docType domain.DocumentType) (float64, []domain.PatternMatch) {
	var matches []domain.PatternMatch
	total := 0.0

	for _, category := range reg.CategoriesFor(docType) {
		weight := reg.Weight(category)
		var best float64
		found := false

		for _, re := range reg.PatternsFor(docType)[category] {
			for _, loc := range re.FindAllStringIndex(text, -1) {
				start, end := loc[0], loc[1]
				confidence := matchConfidence(category, start, end-start, len(text))
				matches = append(matches, domain.PatternMatch{
					PatternType: category,
					MatchText:   text[start:end],
					Confidence:  confidence,
					Location:    fmt.Sprintf("Position %d-%d", start, end),
					Context:     extractContext(text, start, end),
				})
				if !found || confidence > best {
					best = confidence
					found = true
				}
			}
		}

		if found {
			total += best * weight
		}
	}

	if total > 1.0 {
		total = 1.0
	}
	return total, matches
}

// matchConfidence combines the category multiplier with position and length
// bonuses, capped at 1.0. Early matches (titles, headings) score higher.
func matchConfidence(category string, start, length, textLen int) float64 {
	multiplier, ok := categoryMultipliers[category]
	if !ok {
		multiplier = 1.0
	}

	var position float64
	if textLen > 0 {
		position = float64(start) / float64(textLen)
	}
	positionBonus := 0.0
	switch {
	case position < 0.1:
		positionBonus = 0.10
	case position < 0.3:
		positionBonus = 0.05
	}

	lengthBonus := 0.0
	switch {
	case length > 50:
		lengthBonus = 0.10
	case length > 20:
		lengthBonus = 0.05
	}

	confidence := baseMatchConfidence*multiplier + positionBonus + lengthBonus
	if confidence > 1.0 {
		confidence = 1.0
	}
	return confidence
}

var whitespaceRun = regexp.MustCompile(`\s+`)

// extractContext returns ±contextWindow characters around a match,
// whitespace-collapsed, with ellipses marking truncation at text boundaries.
func extractContext(text string, start, end int) string {
	ctxStart := start - contextWindow
	if ctxStart < 0 {
		ctxStart = 0
	}
	ctxEnd := end + contextWindow
	if ctxEnd > len(text) {
		ctxEnd = len(text)
	}

	context := strings.TrimSpace(whitespaceRun.ReplaceAllString(text[ctxStart:ctxEnd], " "))
	if ctxStart > 0 {
		context = "..." + context
	}
	if ctxEnd < len(text) {
		context = context + "..."
	}
	return context
}
