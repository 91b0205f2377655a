package ports

import (
	"context"
	"io"
	"time"

	"github.com/meridiancde/nmtc-backend/internal/core/domain"
)

// DocumentRepository persists and reads document state. Detection and OCR
// output are merged into the document's processing index, never replacing
// unrelated keys.
type DocumentRepository interface {
	Create(ctx context.Context, doc *domain.Document) error
	GetByID(ctx context.Context, id string) (*domain.Document, error)
	UpdateStatus(ctx context.Context, id string, status domain.OCRStatus, errMessage string) error
	SaveProcessingIndex(ctx context.Context, id string, index domain.ProcessingIndex) error
	SaveConfirmation(ctx context.Context, id string, confirmed domain.DocumentType, at time.Time) error
}

// ObjectStorage stores source document binaries.
type ObjectStorage interface {
	Save(ctx context.Context, key string, data io.Reader) error
	Open(ctx context.Context, key string) (io.ReadCloser, error)
}

// MessageQueue publishes/consumes document processing events.
type MessageQueue interface {
	PublishDocumentUploaded(ctx context.Context, documentID string) error
	SubscribeDocumentUploaded(ctx context.Context, handler func(context.Context, string) error) error
}

// TextRecognizer extracts text from a stored document binary (OCR or
// digital text layer).
type TextRecognizer interface {
	Recognize(ctx context.Context, doc *domain.Document, content io.Reader) (domain.OCRResult, error)
}

// DocumentClassifier scores extracted text against the known NMTC document
// types and returns the full detection result.
type DocumentClassifier interface {
	Classify(ctx context.Context, req domain.DetectionRequest) (domain.DetectionResult, error)
}

// AuditLogger appends processing audit entries. Implementations are
// best-effort; callers must not fail a pipeline on audit errors.
type AuditLogger interface {
	Append(ctx context.Context, entry domain.AuditEntry) error
}
