package extract

import (
	"context"
	"log/slog"

	"github.com/hstay/docextract/internal/llm"
)

// LLMAdapter adapts an llm.FieldExtractor to the orchestrator's contract,
// discarding the raw model payload.
type LLMAdapter struct {
	fx llm.FieldExtractor
}

func NewLLMAdapter(fx llm.FieldExtractor, _ *slog.Logger) *LLMAdapter {
	return &LLMAdapter{fx: fx}
}

func (a *LLMAdapter) ExtractSpans(ctx context.Context, ocrText, documentType string) ([]llm.Span, error) {
	spans, _, err := a.fx.ExtractSpans(ctx, llm.ExtractRequest{
		OCRText:      ocrText,
		DocumentType: documentType,
	})
	return spans, err
}
