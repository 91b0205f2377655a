package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/meridiancde/nmtc-backend/internal/core/domain"
	"github.com/meridiancde/nmtc-backend/internal/core/ports"
)

// DetectionStatusUseCase projects persisted detection state into the
// UI-facing read model and records user confirmations.
type DetectionStatusUseCase struct {
	repo  ports.DocumentRepository
	queue ports.MessageQueue
}

var _ ports.DetectionReader = (*DetectionStatusUseCase)(nil)

func NewDetectionStatusUseCase(repo ports.DocumentRepository, queue ports.MessageQueue) *DetectionStatusUseCase {
	return &DetectionStatusUseCase{repo: repo, queue: queue}
}

func (uc *DetectionStatusUseCase) Get(ctx context.Context, documentID string) (*domain.DetectionStatus, error) {
	doc, err := uc.repo.GetByID(ctx, documentID)
	if err != nil {
		return nil, fmt.Errorf("fetch document by id: %w", err)
	}

	status := &domain.DetectionStatus{
		DocumentID: doc.ID,
		OCRStatus:  doc.OCRStatus,
		Filename:   doc.Filename,
		Decision:   domain.ResolveWorkflowDecision(0),
	}

	detection := doc.Index.Detection
	if detection == nil {
		return status, nil
	}

	status.DetectedType = detection.DocumentType
	status.Confidence = detection.Confidence
	status.Reasoning = detection.Reasoning
	status.PrimaryIndicators = detection.PrimaryIndicators
	status.SecondaryIndicators = detection.SecondaryIndicators
	status.Decision = domain.ResolveWorkflowDecision(detection.Confidence)
	processedAt := detection.ProcessedAt
	status.ProcessedAt = &processedAt
	status.UserConfirmedType = detection.UserConfirmedType
	status.ConfirmedAt = detection.ConfirmedAt
	return status, nil
}

// Confirm records the user's type decision (confirming or correcting the
// detected type) against the stored detection results.
func (uc *DetectionStatusUseCase) Confirm(ctx context.Context, documentID string, confirmed domain.DocumentType, at time.Time) error {
	if _, ok := domain.ParseDocumentType(string(confirmed)); !ok {
		return domain.WrapError(domain.ErrInvalidInput, "confirm document type",
			fmt.Errorf("unsupported document type %q", confirmed))
	}

	doc, err := uc.repo.GetByID(ctx, documentID)
	if err != nil {
		return fmt.Errorf("fetch document by id: %w", err)
	}
	if doc.Index.Detection == nil {
		return domain.WrapError(domain.ErrInvalidInput, "confirm document type",
			errors.New("document has no detection results"))
	}

	if err := uc.repo.SaveConfirmation(ctx, documentID, confirmed, at.UTC()); err != nil {
		return fmt.Errorf("save type confirmation: %w", err)
	}
	return nil
}

// Reprocess re-enqueues a document for OCR + detection, used after failed
// runs or pattern catalogue updates.
func (uc *DetectionStatusUseCase) Reprocess(ctx context.Context, documentID string) error {
	if _, err := uc.repo.GetByID(ctx, documentID); err != nil {
		return fmt.Errorf("fetch document by id: %w", err)
	}
	if err := uc.queue.PublishDocumentUploaded(ctx, documentID); err != nil {
		return fmt.Errorf("publish reprocess event: %w", err)
	}
	return nil
}
