package ports

import (
	"context"
	"io"
	"time"

	"github.com/meridiancde/nmtc-backend/internal/core/domain"
)

// DocumentIngestor is the inbound contract for document upload orchestration.
type DocumentIngestor interface {
	Upload(ctx context.Context, filename, mimeType string, body io.Reader) (*domain.Document, error)
}

// DocumentProcessor is the inbound contract for asynchronous OCR + detection.
type DocumentProcessor interface {
	ProcessByID(ctx context.Context, documentID string) error
}

// DetectionReader is the inbound read model for detection state and the
// downstream workflow decision.
type DetectionReader interface {
	Get(ctx context.Context, documentID string) (*domain.DetectionStatus, error)
	Confirm(ctx context.Context, documentID string, confirmed domain.DocumentType, at time.Time) error
}
