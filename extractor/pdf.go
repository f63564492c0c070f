package extractor

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"strings"

	pdfextractor "github.com/unidoc/unipdf/v3/extractor"
	"github.com/unidoc/unipdf/v3/model"
)

// extractPDF pulls text from every page of a PDF. Pages that fail
// individually are skipped; a PDF whose pages all parse but contain no text
// (a scanned, image-only document) yields an empty string, which the caller
// turns into an unreadable-content failure.
func extractPDF(_ context.Context, path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}

	reader, err := model.NewPdfReader(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("reading PDF: %w", err)
	}

	numPages, err := reader.GetNumPages()
	if err != nil {
		return "", fmt.Errorf("counting PDF pages: %w", err)
	}
	if numPages == 0 {
		return "", fmt.Errorf("PDF has no pages")
	}

	var b strings.Builder
	for i := 1; i <= numPages; i++ {
		page, err := reader.GetPage(i)
		if err != nil {
			continue
		}
		ex, err := pdfextractor.New(page)
		if err != nil {
			continue
		}
		pageText, err := ex.ExtractText()
		if err != nil {
			continue
		}
		if pageText != "" {
			b.WriteString(pageText)
			b.WriteString("\n\n")
		}
	}

	return b.String(), nil
}
