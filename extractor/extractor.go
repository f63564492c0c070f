// Package extractor converts uploaded resume files into normalized plain
// text, dispatching on the declared file format.
package extractor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"resume-analyzer/domain"
)

// Format is a supported input file format. The set is closed: any value
// outside the table below is rejected before any I/O happens.
type Format string

const (
	FormatPDF  Format = "pdf"
	FormatDoc  Format = "doc"
	FormatDocx Format = "docx"
	FormatTxt  Format = "txt"
	FormatJPG  Format = "jpg"
	FormatJPEG Format = "jpeg"
	FormatPNG  Format = "png"
)

// ParseFormat derives the declared format from a file name's extension.
func ParseFormat(path string) (Format, error) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	switch f := Format(ext); f {
	case FormatPDF, FormatDoc, FormatDocx, FormatTxt, FormatJPG, FormatJPEG, FormatPNG:
		return f, nil
	default:
		return "", domain.NewExtractionError(domain.UnsupportedFormat,
			fmt.Sprintf("unsupported file format %q", ext), nil)
	}
}

type extractFunc func(ctx context.Context, path string) (string, error)

// extractTxt reads the file as-is; normalization happens uniformly afterwards.
func extractTxt(_ context.Context, path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// Extractor dispatches extraction by format and applies the mandatory
// normalization and minimum-content policy uniformly afterwards.
type Extractor struct {
	handlers map[Format]extractFunc
	logger   *slog.Logger
}

// New wires the per-format handlers. Image formats go through the given OCR
// engine; legacy .doc is routed through the docx reader best-effort.
func New(ocr *OCREngine, logger *slog.Logger) *Extractor {
	e := &Extractor{logger: logger}
	e.handlers = map[Format]extractFunc{
		FormatPDF:  extractPDF,
		FormatDoc:  extractDocx,
		FormatDocx: extractDocx,
		FormatTxt:  extractTxt,
		FormatJPG:  ocr.Recognize,
		FormatJPEG: ocr.Recognize,
		FormatPNG:  ocr.Recognize,
	}
	return e
}

// Extract reads the file at path, extracts raw text according to the
// declared format, and returns the normalized result. Failures are always a
// *domain.ExtractionError; none of them is worth retrying on the same bytes.
func (e *Extractor) Extract(ctx context.Context, path string, format Format) (string, error) {
	handler, ok := e.handlers[format]
	if !ok {
		return "", domain.NewExtractionError(domain.UnsupportedFormat,
			fmt.Sprintf("unsupported file format %q", format), nil)
	}

	raw, err := handler(ctx, path)
	if err != nil {
		var extErr *domain.ExtractionError
		if errors.As(err, &extErr) {
			return "", err
		}
		return "", domain.NewExtractionError(domain.ExtractionEngineFailure,
			"text extraction failed", err)
	}

	text := Normalize(raw)
	if utf8.RuneCountInString(text) < MinContentLength {
		return "", domain.NewExtractionError(domain.EmptyOrUnreadable,
			"no readable text found in file", nil)
	}

	e.logger.Debug("extracted text", "format", string(format), "chars", len(text))
	return text, nil
}
