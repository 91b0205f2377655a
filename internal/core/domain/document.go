package domain

import "time"

type OCRStatus string

const (
	StatusQueued     OCRStatus = "queued"
	StatusProcessing OCRStatus = "processing"
	StatusCompleted  OCRStatus = "completed"
	StatusError      OCRStatus = "error"
)

type Document struct {
	ID          string          `json:"id"`
	OrgID       string          `json:"org_id,omitempty"`
	Filename    string          `json:"filename"`
	MimeType    string          `json:"mime_type"`
	StoragePath string          `json:"storage_path"`
	OCRStatus   OCRStatus       `json:"ocr_status"`
	Error       string          `json:"error,omitempty"`
	Index       ProcessingIndex `json:"parsed_index"`
	UploadedAt  time.Time       `json:"uploaded_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// ProcessingIndex accumulates per-stage processing output under stable keys.
// It is stored as a single JSONB column and merged, never replaced wholesale.
type ProcessingIndex struct {
	OCR       *OCRResult        `json:"ocr_results,omitempty"`
	Detection *DetectionRecord  `json:"detection_results,omitempty"`
	History   []ProcessingStage `json:"processing_history,omitempty"`
}

// OCRResult is the upstream text-recognition contract. The detection engine
// consumes FullText only.
type OCRResult struct {
	FullText          string  `json:"full_text"`
	PageCount         int     `json:"page_count"`
	OverallConfidence float64 `json:"overall_confidence,omitempty"`
}

// DetectionRecord is the persisted projection of a DetectionResult plus the
// processing timestamp and any later user confirmation.
type DetectionRecord struct {
	DocumentType        DocumentType      `json:"document_type_detected"`
	Confidence          float64           `json:"confidence"`
	PrimaryIndicators   []PatternMatch    `json:"primary_indicators"`
	SecondaryIndicators []PatternMatch    `json:"secondary_indicators"`
	Metadata            DetectionMetadata `json:"metadata"`
	Reasoning           string            `json:"reasoning"`
	ProcessedAt         time.Time         `json:"processed_at"`
	UserConfirmedType   DocumentType      `json:"user_confirmed_type,omitempty"`
	ConfirmedAt         *time.Time        `json:"confirmed_at,omitempty"`
}

type ProcessingStage struct {
	Stage         string    `json:"stage"`
	Status        string    `json:"status"`
	ProcessedAt   time.Time `json:"processed_at"`
	CorrelationID string    `json:"correlation_id,omitempty"`
	DurationMS    int64     `json:"processing_duration_ms,omitempty"`
}

const (
	StageOCR           = "ocr"
	StageTypeDetection = "type_detection"
)
