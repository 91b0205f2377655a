// Package detection implements the rule-based NMTC document type classifier:
// a compiled pattern registry, a weighted match scorer, metadata extraction,
// and reasoning generation. The engine is pure and stateless per call; the
// registry is compiled once and shared read-only across goroutines.
package detection

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/meridiancde/nmtc-backend/internal/core/domain"
)

const (
	minTextLength = 50

	// Per-match confidence above this splits an indicator into the
	// primary list. This is a per-match bound, not the aggregate score.
	primaryIndicatorFloor = 0.5
)

type Classifier struct {
	registry *Registry
}

func NewClassifier(registry *Registry) *Classifier {
	return &Classifier{registry: registry}
}

// Classify scores the text against every registered document type and
// returns the winning classification. Short input and below-threshold scores
// return a normal unknown result; only unexpected internal failures produce
// an error, wrapped as domain.ErrClassification with the document id.
func (c *Classifier) Classify(ctx context.Context, req domain.DetectionRequest) (result domain.DetectionResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = domain.WrapError(
				domain.ErrClassification,
				classifyOp(req.DocumentID),
				fmt.Errorf("internal failure: %v", r),
			)
		}
	}()

	if err := ctx.Err(); err != nil {
		return domain.DetectionResult{}, err
	}

	if len(strings.TrimSpace(req.Text)) < minTextLength {
		return c.unknownResult("insufficient text content for classification"), nil
	}

	var (
		bestType    domain.DocumentType
		bestScore   float64
		bestMatches []domain.PatternMatch
		haveBest    bool
	)
	for _, docType := range c.registry.AllTypes() {
		score, matches := scoreDocumentType(c.registry, req.Text, docType)
		slog.Debug("document_type_scored",
			"document_id", req.DocumentID,
			"doc_type", string(docType),
			"score", score,
			"match_count", len(matches),
		)
		// Strictly-greater comparison: exact ties resolve to the first
		// type in registry order.
		if !haveBest || score > bestScore {
			bestType = docType
			bestScore = score
			bestMatches = matches
			haveBest = true
		}
	}

	threshold := c.registry.Thresholds().Low
	if bestScore < threshold {
		return c.unknownResult(fmt.Sprintf("low confidence score: %.3f (threshold: %g)", bestScore, threshold)), nil
	}

	primary := []domain.PatternMatch{}
	secondary := []domain.PatternMatch{}
	for _, m := range bestMatches {
		if m.Confidence > primaryIndicatorFloor {
			primary = append(primary, m)
		} else {
			secondary = append(secondary, m)
		}
	}

	result = domain.DetectionResult{
		DocumentType:        bestType,
		Confidence:          bestScore,
		PrimaryIndicators:   primary,
		SecondaryIndicators: secondary,
		Metadata:            c.extractMetadata(req.Text, bestType, req.Filename),
		Reasoning:           c.buildReasoning(bestType, bestScore, bestMatches),
	}

	slog.Info("document_type_detected",
		"document_id", req.DocumentID,
		"detected_type", string(bestType),
		"confidence", bestScore,
		"primary_indicators", len(primary),
		"secondary_indicators", len(secondary),
	)
	return result, nil
}

func (c *Classifier) unknownResult(reason string) domain.DetectionResult {
	return domain.DetectionResult{
		DocumentType:        domain.TypeUnknown,
		Confidence:          0.0,
		PrimaryIndicators:   []domain.PatternMatch{},
		SecondaryIndicators: []domain.PatternMatch{},
		Metadata: domain.DetectionMetadata{
			DetectedAt:           time.Now().UTC(),
			ComplianceTerms:      []domain.ComplianceTerm{},
			ClassificationFailed: true,
			FailureReason:        reason,
		},
		Reasoning: "Document could not be classified: " + reason,
	}
}

func classifyOp(documentID string) string {
	if documentID == "" {
		return "classify document"
	}
	return "classify document " + documentID
}
