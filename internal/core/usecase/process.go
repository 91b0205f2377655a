package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/meridiancde/nmtc-backend/internal/core/domain"
	"github.com/meridiancde/nmtc-backend/internal/core/ports"
)

// ProcessDocumentUseCase runs the OCR + type-detection pipeline for one
// document. Detection failure never fails the pipeline; a degraded unknown
// result is persisted instead. OCR, storage, and persistence failures mark
// the document as errored and propagate to the queue layer, which owns
// retry/backoff.
type ProcessDocumentUseCase struct {
	repo       ports.DocumentRepository
	storage    ports.ObjectStorage
	recognizer ports.TextRecognizer
	classifier ports.DocumentClassifier
	audit      ports.AuditLogger
}

var _ ports.DocumentProcessor = (*ProcessDocumentUseCase)(nil)

func NewProcessDocumentUseCase(
	repo ports.DocumentRepository,
	storage ports.ObjectStorage,
	recognizer ports.TextRecognizer,
	classifier ports.DocumentClassifier,
	audit ports.AuditLogger,
) *ProcessDocumentUseCase {
	return &ProcessDocumentUseCase{
		repo:       repo,
		storage:    storage,
		recognizer: recognizer,
		classifier: classifier,
		audit:      audit,
	}
}

func (uc *ProcessDocumentUseCase) ProcessByID(ctx context.Context, documentID string) error {
	doc, err := uc.repo.GetByID(ctx, documentID)
	if err != nil {
		return fmt.Errorf("fetch document by id: %w", err)
	}

	if err := uc.repo.UpdateStatus(ctx, documentID, domain.StatusProcessing, ""); err != nil {
		return fmt.Errorf("set status=processing: %w", err)
	}

	if err := uc.runPipeline(ctx, doc); err != nil {
		if failErr := uc.repo.UpdateStatus(ctx, documentID, domain.StatusError, err.Error()); failErr != nil {
			return fmt.Errorf("%w; mark error status: %v", err, failErr)
		}
		return err
	}

	if err := uc.repo.UpdateStatus(ctx, documentID, domain.StatusCompleted, ""); err != nil {
		return fmt.Errorf("set status=completed: %w", err)
	}
	return nil
}

func (uc *ProcessDocumentUseCase) runPipeline(ctx context.Context, doc *domain.Document) error {
	correlationID := uuid.NewString()
	started := time.Now()

	ocr, err := uc.recognize(ctx, doc)
	if err != nil {
		return err
	}

	detection := uc.detect(ctx, doc, ocr.FullText)
	now := time.Now().UTC()

	index := doc.Index
	index.OCR = &ocr
	index.Detection = detection
	index.History = append(index.History,
		domain.ProcessingStage{
			Stage:         domain.StageOCR,
			Status:        "completed",
			ProcessedAt:   now,
			CorrelationID: correlationID,
			DurationMS:    time.Since(started).Milliseconds(),
		},
		domain.ProcessingStage{
			Stage:         domain.StageTypeDetection,
			Status:        "completed",
			ProcessedAt:   now,
			CorrelationID: correlationID,
		},
	)

	if err := uc.repo.SaveProcessingIndex(ctx, doc.ID, index); err != nil {
		return fmt.Errorf("save processing index: %w", err)
	}

	uc.appendAudit(ctx, doc, detection, ocr)
	return nil
}

func (uc *ProcessDocumentUseCase) recognize(ctx context.Context, doc *domain.Document) (domain.OCRResult, error) {
	content, err := uc.storage.Open(ctx, doc.StoragePath)
	if err != nil {
		return domain.OCRResult{}, fmt.Errorf("open source document: %w", err)
	}
	defer content.Close()

	ocr, err := uc.recognizer.Recognize(ctx, doc, content)
	if err != nil {
		return domain.OCRResult{}, fmt.Errorf("recognize text: %w", err)
	}
	return ocr, nil
}

// detect classifies the OCR text. A classifier error degrades to a persisted
// unknown placeholder rather than failing the document.
func (uc *ProcessDocumentUseCase) detect(ctx context.Context, doc *domain.Document, text string) *domain.DetectionRecord {
	result, err := uc.classifier.Classify(ctx, domain.DetectionRequest{
		Text:       text,
		DocumentID: doc.ID,
		Filename:   doc.Filename,
	})
	if err != nil {
		slog.Warn("type_detection_failed",
			"document_id", doc.ID,
			"error", err,
		)
		result = domain.DetectionResult{
			DocumentType:        domain.TypeUnknown,
			Confidence:          0.0,
			PrimaryIndicators:   []domain.PatternMatch{},
			SecondaryIndicators: []domain.PatternMatch{},
			Metadata: domain.DetectionMetadata{
				DetectedAt:           time.Now().UTC(),
				ClassificationFailed: true,
				FailureReason:        err.Error(),
			},
			Reasoning: "Document type detection failed: " + err.Error(),
		}
	}

	return &domain.DetectionRecord{
		DocumentType:        result.DocumentType,
		Confidence:          result.Confidence,
		PrimaryIndicators:   result.PrimaryIndicators,
		SecondaryIndicators: result.SecondaryIndicators,
		Metadata:            result.Metadata,
		Reasoning:           result.Reasoning,
		ProcessedAt:         time.Now().UTC(),
	}
}

func (uc *ProcessDocumentUseCase) appendAudit(ctx context.Context, doc *domain.Document, detection *domain.DetectionRecord, ocr domain.OCRResult) {
	if uc.audit == nil {
		return
	}
	entry := domain.AuditEntry{
		Scope:    "document_processing",
		Action:   "type_detection_completed",
		RecordID: doc.ID,
		OrgID:    doc.OrgID,
		Diff: map[string]any{
			"document_type_detected":   string(detection.DocumentType),
			"detection_confidence":     detection.Confidence,
			"primary_indicators_count": len(detection.PrimaryIndicators),
			"pages_processed":          ocr.PageCount,
			"characters_extracted":     len(ocr.FullText),
		},
		CreatedAt: time.Now().UTC(),
	}
	if err := uc.audit.Append(ctx, entry); err != nil {
		// Audit is best-effort and never fails the pipeline.
		slog.Warn("audit_append_failed", "document_id", doc.ID, "error", err)
	}
}
