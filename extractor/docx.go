package extractor

import (
	"context"
	"fmt"
	"html"
	"regexp"

	"github.com/nguyenthenguyen/docx"
)

var (
	paragraphEnd = regexp.MustCompile(`</w:p>`)
	lineBreak    = regexp.MustCompile(`<w:(br|tab)[^>]*/?>`)
	xmlTag       = regexp.MustCompile(`<[^>]+>`)
)

// extractDocx pulls text from a Word document. Legacy .doc files go through
// the same reader best-effort; a genuine pre-OOXML binary fails inside the
// reader and surfaces as an engine failure.
func extractDocx(_ context.Context, path string) (string, error) {
	r, err := docx.ReadDocxFile(path)
	if err != nil {
		return "", fmt.Errorf("reading document: %w", err)
	}
	defer r.Close()

	content := r.Editable().GetContent()

	// The reader hands back the document's raw XML; turn paragraph and
	// break markers into newlines before stripping the remaining markup.
	content = paragraphEnd.ReplaceAllString(content, "\n")
	content = lineBreak.ReplaceAllString(content, "\n")
	content = xmlTag.ReplaceAllString(content, "")

	return html.UnescapeString(content), nil
}
