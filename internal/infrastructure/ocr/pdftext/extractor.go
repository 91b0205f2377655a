// Package pdftext extracts the digital text layer from PDFs locally. It is
// the development fallback when no Azure endpoint is configured; scanned
// documents without a text layer come back empty here.
package pdftext

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/meridiancde/nmtc-backend/internal/core/domain"
)

type Extractor struct{}

func New() *Extractor {
	return &Extractor{}
}

func (e *Extractor) Recognize(ctx context.Context, doc *domain.Document, content io.Reader) (domain.OCRResult, error) {
	data, err := io.ReadAll(content)
	if err != nil {
		return domain.OCRResult{}, fmt.Errorf("read document content: %w", err)
	}

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return domain.OCRResult{}, fmt.Errorf("open pdf: %w", err)
	}

	var builder strings.Builder
	numPages := reader.NumPage()
	for i := 1; i <= numPages; i++ {
		if err := ctx.Err(); err != nil {
			return domain.OCRResult{}, err
		}
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			// Damaged pages are skipped; remaining pages still count.
			continue
		}
		builder.WriteString(text)
		builder.WriteString("\n")
	}

	fullText := strings.TrimSpace(builder.String())
	if fullText == "" {
		return domain.OCRResult{}, fmt.Errorf("no text layer in pdf: id=%s", doc.ID)
	}

	return domain.OCRResult{
		FullText:  fullText,
		PageCount: numPages,
		// The digital text layer is exact; there is no recognition step
		// to be uncertain about.
		OverallConfidence: 1.0,
	}, nil
}
