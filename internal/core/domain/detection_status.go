package domain

import "time"

// DetectionStatus is the read-model projection consumed by the UI: the
// persisted detection joined with the workflow gating decision.
type DetectionStatus struct {
	DocumentID          string           `json:"document_id"`
	OCRStatus           OCRStatus        `json:"status"`
	Filename            string           `json:"filename"`
	DetectedType        DocumentType     `json:"detected_type,omitempty"`
	Confidence          float64          `json:"confidence"`
	Reasoning           string           `json:"reasoning,omitempty"`
	PrimaryIndicators   []PatternMatch   `json:"primary_indicators,omitempty"`
	SecondaryIndicators []PatternMatch   `json:"secondary_indicators,omitempty"`
	Decision            WorkflowDecision `json:"decision"`
	ProcessedAt         *time.Time       `json:"processed_at,omitempty"`
	UserConfirmedType   DocumentType     `json:"user_confirmed_type,omitempty"`
	ConfirmedAt         *time.Time       `json:"confirmed_at,omitempty"`
}
