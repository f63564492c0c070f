package extractor

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"resume-analyzer/domain"
)

// OCREngine recognizes text in image files by shelling out to a tesseract
// binary. Recognition runs at full resolution with the English model and is
// capped by a hard deadline; no mid-run cancellation beyond that deadline is
// supported.
type OCREngine struct {
	binary  string
	timeout time.Duration
	limiter *RateLimiter
}

// NewOCREngine configures the OCR subprocess. limiter may be nil to disable
// spacing between invocations.
func NewOCREngine(binary string, timeout time.Duration, limiter *RateLimiter) *OCREngine {
	return &OCREngine{binary: binary, timeout: timeout, limiter: limiter}
}

// Recognize runs OCR over the image at path and returns the raw recognized
// text. A deadline expiry counts as an engine failure: the file is assumed
// poisonous rather than the engine transiently slow.
func (o *OCREngine) Recognize(ctx context.Context, path string) (string, error) {
	if o.limiter != nil {
		if err := o.limiter.Wait(ctx); err != nil {
			return "", domain.NewExtractionError(domain.ExtractionEngineFailure,
				"text recognition was interrupted", err)
		}
	}

	ctx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, o.binary, path, "stdout", "-l", "eng")
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return "", domain.NewExtractionError(domain.ExtractionEngineFailure,
				"text recognition timed out", ctx.Err())
		}
		detail := strings.TrimSpace(stderr.String())
		if detail == "" {
			detail = err.Error()
		}
		return "", domain.NewExtractionError(domain.ExtractionEngineFailure,
			"text recognition failed", fmt.Errorf("%s: %s", o.binary, detail))
	}

	return stdout.String(), nil
}
