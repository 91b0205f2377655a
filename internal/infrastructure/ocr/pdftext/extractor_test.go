package pdftext

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/meridiancde/nmtc-backend/internal/core/domain"
)

func TestRecognizeExtractsTextLayer(t *testing.T) {
	data, err := os.ReadFile(filepath.Join("testdata", "sample.pdf"))
	if err != nil {
		t.Fatalf("read sample pdf: %v", err)
	}

	extractor := New()
	doc := &domain.Document{ID: "doc-1", Filename: "sample.pdf"}

	result, err := extractor.Recognize(context.Background(), doc, strings.NewReader(string(data)))
	if err != nil {
		t.Fatalf("Recognize() error = %v", err)
	}
	if !strings.Contains(result.FullText, "QLICI Loan Agreement") {
		t.Fatalf("extracted text missing expected content: %q", result.FullText)
	}
	if result.PageCount != 1 {
		t.Fatalf("page count = %d, want 1", result.PageCount)
	}
	if result.OverallConfidence != 1.0 {
		t.Fatalf("confidence = %f, want 1.0", result.OverallConfidence)
	}
}

func TestRecognizeRejectsNonPDF(t *testing.T) {
	extractor := New()
	doc := &domain.Document{ID: "doc-1", Filename: "notes.txt"}

	_, err := extractor.Recognize(context.Background(), doc, strings.NewReader("plain text, not a pdf"))
	if err == nil {
		t.Fatalf("expected error for non-pdf input")
	}
}
